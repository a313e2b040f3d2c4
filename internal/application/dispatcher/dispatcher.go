// Package dispatcher maps ticket entity types onto their decision handlers.
// The mapping is closed: Complete reports an error for any entity type
// without a handler, and wiring fails fast on it at startup.
package dispatcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/crestbridge/ir-portal/internal/domain/entity"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Registry routes decisions to the handler registered for a ticket's entity
// type.
type Registry interface {
	// Register binds a handler to an entity type. Registering the same type
	// twice is a programming error.
	Register(entityType entity.EntityType, name string, handler Handler) error

	// Complete verifies every entity type in the closed set has a handler.
	Complete() error

	// Approve dispatches an approval to the matching handler.
	Approve(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) (*Outcome, error)

	// Reject dispatches a rejection to the matching handler.
	Reject(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) error

	// Irreversible reports whether the handler for the entity type is
	// ineligible for the compensating rollback.
	Irreversible(entityType entity.EntityType) bool

	// ListHandlers returns metadata for all registered handlers.
	ListHandlers() []HandlerInfo
}

type handlerRegistry struct {
	mu       sync.RWMutex
	handlers map[entity.EntityType]HandlerInfo
	logger   Logger
}

// Option configures the registry.
type Option func(*handlerRegistry)

// WithLogger sets a logger for the registry.
func WithLogger(logger Logger) Option {
	return func(r *handlerRegistry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty handler registry.
func NewRegistry(opts ...Option) Registry {
	r := &handlerRegistry{
		handlers: make(map[entity.EntityType]HandlerInfo),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *handlerRegistry) Register(entityType entity.EntityType, name string, handler Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.handlers[entityType]; ok {
		return fmt.Errorf("entity type %s already registered to %s", entityType, existing.Name)
	}

	r.handlers[entityType] = HandlerInfo{
		Name:       name,
		EntityType: entityType,
		Handler:    handler,
	}

	if r.logger != nil {
		r.logger.Info("Handler registered",
			"entity_type", entityType,
			"handler_name", name,
		)
	}
	return nil
}

func (r *handlerRegistry) Complete() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var missing []entity.EntityType
	for _, et := range entity.AllEntityTypes() {
		if _, ok := r.handlers[et]; !ok {
			missing = append(missing, et)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("entity types without handlers: %v", missing)
	}
	return nil
}

func (r *handlerRegistry) Approve(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) (*Outcome, error) {
	info, err := r.lookup(ticket.EntityType)
	if err != nil {
		return nil, err
	}

	if r.logger != nil {
		r.logger.Info("Dispatching approval",
			"entity_type", ticket.EntityType,
			"ticket_id", ticket.ID,
			"handler_name", info.Name,
		)
	}

	outcome, err := r.safeApprove(ctx, ticket, actor, info)
	if err != nil {
		if r.logger != nil {
			r.logger.Error("Handler error",
				"entity_type", ticket.EntityType,
				"ticket_id", ticket.ID,
				"handler_name", info.Name,
				"error", err,
			)
		}
		return nil, fmt.Errorf("handler %s failed: %w", info.Name, err)
	}
	return outcome, nil
}

func (r *handlerRegistry) Reject(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) error {
	info, err := r.lookup(ticket.EntityType)
	if err != nil {
		return err
	}

	if err := r.safeReject(ctx, ticket, actor, info); err != nil {
		if r.logger != nil {
			r.logger.Error("Rejection handler error",
				"entity_type", ticket.EntityType,
				"ticket_id", ticket.ID,
				"handler_name", info.Name,
				"error", err,
			)
		}
		return fmt.Errorf("handler %s failed: %w", info.Name, err)
	}
	return nil
}

func (r *handlerRegistry) Irreversible(entityType entity.EntityType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.handlers[entityType]
	return ok && info.Handler.Irreversible()
}

func (r *handlerRegistry) ListHandlers() []HandlerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]HandlerInfo, 0, len(r.handlers))
	for _, et := range entity.AllEntityTypes() {
		if info, ok := r.handlers[et]; ok {
			result = append(result, HandlerInfo{
				Name:       info.Name,
				EntityType: info.EntityType,
			})
		}
	}
	return result
}

func (r *handlerRegistry) lookup(entityType entity.EntityType) (HandlerInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.handlers[entityType]
	if !ok {
		return HandlerInfo{}, fmt.Errorf("no handler for entity type %s", entityType)
	}
	return info, nil
}

// safeApprove runs an approval handler with panic recovery.
func (r *handlerRegistry) safeApprove(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User, info HandlerInfo) (outcome *Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic: %v", rec)
			if r.logger != nil {
				r.logger.Error("Handler panic recovered",
					"entity_type", ticket.EntityType,
					"ticket_id", ticket.ID,
					"handler_name", info.Name,
					"panic", rec,
				)
			}
		}
	}()

	return info.Handler.Approve(ctx, ticket, actor)
}

// safeReject runs a rejection handler with panic recovery.
func (r *handlerRegistry) safeReject(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User, info HandlerInfo) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()

	return info.Handler.Reject(ctx, ticket, actor)
}
