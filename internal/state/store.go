// Package state records translation and conversion history in SQLite.
package state

import (
	"context"
	"time"
)

// Kind identifies the command that produced a history entry.
type Kind string

// History entry kinds.
const (
	KindTranslate Kind = "translate"
	KindConvert   Kind = "convert"
	KindEvaluate  Kind = "evaluate"
	KindEstimate  Kind = "estimate"
)

// Entry is one recorded operation.
type Entry struct {
	ID        string
	Kind      Kind
	Dialect   string
	Input     string
	Output    string
	Error     string
	Duration  time.Duration
	CreatedAt time.Time
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Kind    Kind
	Dialect string
	// Limit caps the number of entries, newest first. Zero means no limit.
	Limit int
}

// Store persists history entries.
type Store interface {
	Record(ctx context.Context, e Entry) (*Entry, error)
	Get(ctx context.Context, id string) (*Entry, error)
	List(ctx context.Context, f Filter) ([]*Entry, error)
	Clear(ctx context.Context) (int64, error)
	Close() error
}
