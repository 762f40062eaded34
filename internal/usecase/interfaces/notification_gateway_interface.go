package interfaces

import "context"

// INotificationGateway sends email-shaped messages to a recipient.
//
// All engine callers treat delivery as fire-and-forget: failures are logged
// and never affect the caller's own outcome.
type INotificationGateway interface {
	Send(ctx context.Context, to, subject, body string) error
}
