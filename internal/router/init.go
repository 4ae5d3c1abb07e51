package router

import (
	"github.com/pairtalk/chat-backend/internal/application"
	"github.com/pairtalk/chat-backend/internal/container"
	pginfra "github.com/pairtalk/chat-backend/internal/infrastructure/postgres"
	handlers "github.com/pairtalk/chat-backend/internal/interface/http"
	"github.com/pairtalk/chat-backend/internal/router/modules"
)

// InitModules initializes all application modules and registers them with the
// router registry. Called once during startup.
func InitModules(r *Registry) {
	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	messageRepo := pginfra.NewMessageRepository(container.GetPGPool())

	userSvc := application.NewUserService(
		userRepo,
		container.GetJWT(),
		container.GetRedis(),
		container.GetLogger(),
		container.GetES(),
		container.GetConfig().ESUsersIndex,
	)
	messageSvc := application.NewMessageService(messageRepo, userRepo, container.GetLogger())

	userHandler := handlers.NewUserHandler(
		userSvc,
		container.GetJWT(),
		container.GetLogger(),
		container.GetConfig().CookieDomain,
		container.GetConfig().CookieSecure,
	)
	messageHandler := handlers.NewMessageHandler(messageSvc, container.GetLogger())

	r.Add(modules.NewUserModule(userHandler, container.GetJWT()))
	r.Add(modules.NewMessageModule(messageHandler, container.GetJWT()))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
