// internal/app/system/auth/auth.go
//
// CareHub sits behind the organization's identity-aware proxy, which
// authenticates callers and forwards the acting coordinator's id in the
// X-Actor-ID header. This package lifts that id into the request context
// and gates the routes that must know who is acting.
package auth

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActorHeader carries the authenticated coordinator's ObjectID hex.
const ActorHeader = "X-Actor-ID"

type ctxKey string

const actorKey ctxKey = "actorID"

// WithActor parses the actor header, when present and well-formed, into
// the request context. It never rejects: handlers that require an actor
// use RequireActor.
func WithActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get(ActorHeader); raw != "" {
			if id, err := primitive.ObjectIDFromHex(raw); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), actorKey, id))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireActor rejects requests that carry no valid actor id.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ActorID(r); !ok {
			http.Error(w, `{"error":"missing or invalid `+ActorHeader+` header"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ActorID returns the acting coordinator's id from the request context.
func ActorID(r *http.Request) (primitive.ObjectID, bool) {
	id, ok := r.Context().Value(actorKey).(primitive.ObjectID)
	return id, ok
}

// WithTestActor injects an actor id directly, bypassing the middleware.
// Handler tests use it instead of setting headers.
func WithTestActor(r *http.Request, id primitive.ObjectID) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), actorKey, id))
}
