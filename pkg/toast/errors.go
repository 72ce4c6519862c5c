package toast

import "errors"

var (
	// ErrNoManager is raised when toasts are read or removed through a
	// context that no Manager was provisioned on.
	ErrNoManager = errors.New("toast: no manager in context; wrap the handler with toast.Middleware or call toast.WithContext first")

	// ErrEmptySessionID is returned when pushing an envelope without a session.
	ErrEmptySessionID = errors.New("toast: envelope has no session id")

	// ErrRegistryClosed is returned by Push after Registry.Close.
	ErrRegistryClosed = errors.New("toast: registry is closed")

	// ErrRelayClosed is returned by Listen when the relay ends the subscription.
	ErrRelayClosed = errors.New("toast: relay subscription closed")
)
