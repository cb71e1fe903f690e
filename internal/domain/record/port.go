package record

import "context"

// Store persists records newest-first.
type Store interface {
	Prepend(ctx context.Context, r LogRecord) error
}

// Reader loads the full history in stored order, newest first.
type Reader interface {
	Load(ctx context.Context) ([]LogRecord, error)
}

// Sink receives a copy of every persisted record. Sinks are best-effort.
type Sink interface {
	Name() string
	Write(ctx context.Context, r LogRecord) error
}
