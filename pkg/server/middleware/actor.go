package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var bearerRegex = regexp.MustCompile(`^Bearer (.+)$`)

// RemoteUserHeader is set by an authenticating proxy in front of the console
const RemoteUserHeader = "X-Remote-User"

// Anonymous is the actor of requests carrying no identity
const Anonymous = "anonymous"

type actorKey struct{}

type actorIDKey struct{}

// Actor records who issued a request, for audit attribution. The subject
// of a bearer token wins over the proxy header. Token signatures are
// verified by the permission backend, so only expiry is checked here.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := r.Header.Get(RemoteUserHeader)
		var actorID *uint

		if matches := bearerRegex.FindStringSubmatch(r.Header.Get("Authorization")); len(matches) == 2 {
			claims := jwt.MapClaims{}
			if _, _, err := jwt.NewParser().ParseUnverified(matches[1], claims); err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte("Malformed authorization token"))
				return
			}
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Before(time.Now()) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte("Token expired"))
				return
			}
			if sub := subject(claims); sub != "" {
				actor = sub
			}
			actorID = userID(claims)
		}

		if actor == "" {
			actor = Anonymous
		}
		ctx := context.WithValue(r.Context(), actorKey{}, actor)
		if actorID != nil {
			ctx = context.WithValue(ctx, actorIDKey{}, *actorID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func subject(claims jwt.MapClaims) string {
	if username, ok := claims["username"].(string); ok && username != "" {
		return username
	}
	sub, _ := claims.GetSubject()
	return sub
}

// userID reads the numeric user_id claim. JSON numbers decode as float64.
func userID(claims jwt.MapClaims) *uint {
	v, ok := claims["user_id"].(float64)
	if !ok || v <= 0 || v != float64(uint(v)) {
		return nil
	}
	id := uint(v)
	return &id
}

// GetActor retrieves the actor from the context
func GetActor(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok {
		return actor
	}
	return Anonymous
}

// GetActorID retrieves the numeric id of the actor, nil when the request
// carried none
func GetActorID(ctx context.Context) *uint {
	if id, ok := ctx.Value(actorIDKey{}).(uint); ok {
		return &id
	}
	return nil
}
