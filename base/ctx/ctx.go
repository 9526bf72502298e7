package ctx

import (
	"context"
	"time"

	log "github.com/x-xyz/marketengine/base/log"
)

type callerKey struct{}

const callerField = "callerId"

type Ctx struct {
	context.Context
	log.Logger
}

func Background() Ctx {
	return Ctx{
		Context: context.Background(),
		Logger:  log.Log(),
	}
}

func Todo() Ctx {
	return Ctx{
		Context: context.TODO(),
		Logger:  log.Log(),
	}
}

// From wraps a plain context, e.g. a mongo session context, keeping the logger of parent
func From(parent Ctx, c context.Context) Ctx {
	return Ctx{
		Context: c,
		Logger:  parent.Logger,
	}
}

func WithValue(parent Ctx, key string, val interface{}) Ctx {
	return Ctx{
		Context: context.WithValue(parent, key, val),
		Logger:  parent.Logger.WithField(key, val),
	}
}

func WithValues(parent Ctx, kvs map[string]interface{}) Ctx {
	c := parent
	for k, v := range kvs {
		c = WithValue(c, k, v)
	}
	return c
}

// WithCaller attaches the authenticated user id of the request
func WithCaller(parent Ctx, userId string) Ctx {
	return Ctx{
		Context: context.WithValue(parent, callerKey{}, userId),
		Logger:  parent.Logger.WithField(callerField, userId),
	}
}

// Caller returns the authenticated user id, ok is false for anonymous requests
func Caller(c context.Context) (string, bool) {
	userId, ok := c.Value(callerKey{}).(string)
	return userId, ok && userId != ""
}

func WithCancel(parent Ctx) (Ctx, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	return Ctx{
		Context: ctx,
		Logger:  parent.Logger,
	}, cancel
}

func WithTimeout(parent Ctx, timeout time.Duration) (Ctx, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return Ctx{
		Context: ctx,
		Logger:  parent.Logger,
	}, cancel
}
