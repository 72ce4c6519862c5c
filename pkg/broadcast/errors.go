package broadcast

import "errors"

var (
	// ErrClosed is returned when publishing on a closed broadcaster.
	ErrClosed = errors.New("broadcast: broadcaster is closed")

	// ErrEncode is returned when a payload cannot be serialized for transport.
	ErrEncode = errors.New("broadcast: failed to encode message")

	// ErrPublish is returned when the transport rejects a message.
	ErrPublish = errors.New("broadcast: failed to publish message")
)
