package router

import "github.com/gin-gonic/gin"

// Module is one routable feature of the chat backend. Each module owns its
// own middleware chain (auth, rate limits) for the routes it registers.
type Module interface {
	Register(rg *gin.RouterGroup)
}
