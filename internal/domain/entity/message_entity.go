package entity

import (
	"time"
)

// Message is one direction of a two-party exchange. Sender, recipient,
// content and timestamp are immutable after insert; only IsRead changes,
// and only from false to true.
type Message struct {
	ID             int64
	SenderEmail    string
	RecipientEmail string
	Content        string
	Timestamp      time.Time
	IsRead         bool
}
