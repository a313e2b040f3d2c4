// Package handler implements the per-entity-type decision handlers dispatched
// by the registry. Each handler owns the domain mutations for one ticket
// entity type; the coordinator has already claimed the ticket before any
// handler runs.
package handler

import (
	"context"

	"github.com/crestbridge/ir-portal/internal/application/port"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// statusStore is the common shape of repositories whose records are decided
// by a plain status flip.
type statusStore interface {
	SetStatus(ctx context.Context, id int64, upd port.StatusUpdate) error
}
