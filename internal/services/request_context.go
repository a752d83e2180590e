package services

import (
	"context"
	"github.com/google/uuid"
)

// RequestContext travels with every write so audit columns and logs know who
// made the change.
type RequestContext struct {
	Ctx       context.Context
	ActorID   *uint
	RequestID uuid.UUID
}

func NewRequestContext(ctx context.Context, actorID *uint) RequestContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return RequestContext{Ctx: ctx, ActorID: actorID, RequestID: uuid.New()}
}

func (rc RequestContext) context() context.Context {
	if rc.Ctx == nil {
		return context.Background()
	}
	return rc.Ctx
}
