package ports

import "context"

// Message is an outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a message synchronously. A non-nil error means the message
// was not handed off to the mail infrastructure.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// MailDispatcher accepts a message for asynchronous, best-effort delivery.
// Used for mail where the request must not fail on delivery problems
// (verification emails at registration).
type MailDispatcher interface {
	Enqueue(msg Message)
}

// ResetThrottle limits how often password-reset mail may be requested for a
// single address.
type ResetThrottle interface {
	Allow(ctx context.Context, email string) (bool, error)
}
