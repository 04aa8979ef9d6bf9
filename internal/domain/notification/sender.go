// Package notification declares the outbound message port used by certification.
package notification

import "context"

// Sender dispatches a single message. Implementations report failures as *domain.DeliveryError.
type Sender interface {
	Send(ctx context.Context, to, title, body string) error
}
