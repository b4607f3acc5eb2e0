// Package actor carries the operator behind a request so that destructive
// actions can be attributed in logs and events. The operator name is supplied
// by the operator UI in the X-Operator header and is not authenticated.
package actor

import (
	"context"
	"net/http"
	"strings"
)

// Header is the request header naming the operator
const Header = "X-Operator"

// System names actions taken without an operator
const System = "system"

// Actor is the operator performing an action
type Actor struct {
	Name string `json:"name"`
}

// String returns the operator name, or "system" for a nil actor
func (a *Actor) String() string {
	if a == nil || a.Name == "" {
		return System
	}
	return a.Name
}

type contextKey string

const actorContextKey contextKey = "actor"

// FromContext retrieves the Actor from the context.
// Returns nil if no actor is present.
func FromContext(ctx context.Context) *Actor {
	if ctx == nil {
		return nil
	}
	a, ok := ctx.Value(actorContextKey).(*Actor)
	if !ok {
		return nil
	}
	return a
}

// WithActor returns a new context with the Actor attached
func WithActor(ctx context.Context, a *Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey, a)
}

// Name returns the name of the actor in ctx, or "system"
func Name(ctx context.Context) string {
	return FromContext(ctx).String()
}

// Middleware attaches the operator named in the X-Operator header
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if name := strings.TrimSpace(r.Header.Get(Header)); name != "" {
			r = r.WithContext(WithActor(r.Context(), &Actor{Name: name}))
		}
		next.ServeHTTP(w, r)
	})
}
