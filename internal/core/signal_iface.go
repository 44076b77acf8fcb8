package core

import "errors"

// ConnID identifies one live signaling connection.
type ConnID string

// Frame is one encoded outbound message.
type Frame []byte

var (
	ErrBackpressure     = errors.New("backpressure")
	ErrConnectionClosed = errors.New("connection closed")
)

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend queues f without blocking. It fails with ErrBackpressure
	// when the queue is full and ErrConnectionClosed after Close.
	TrySend(f Frame) error
	Close()
}
