package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"library-service/auth"
)

type ctxKey int

const (
	logKey ctxKey = iota
	claimsKey
)

const requestIDHeader = "X-Request-ID"

// requestID tags each request with an id, echoes it in the response and
// attaches a logger carrying it.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		entry := s.log.WithField("request_id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), logKey, entry)))
	})
}

func logFrom(r *http.Request) logrus.FieldLogger {
	if l, ok := r.Context().Value(logKey).(logrus.FieldLogger); ok {
		return l
	}
	return logrus.StandardLogger()
}

// authenticated rejects requests without a valid bearer token.
func (s *Server) authenticated(next http.Handler) http.Handler {
	return appHandler(func(w http.ResponseWriter, r *http.Request) *appError {
		raw, err := auth.BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			return appErrorf(http.StatusUnauthorized, err, "Missing bearer token")
		}
		claims, err := s.verifier.Verify(raw)
		if err != nil {
			return appErrorf(http.StatusUnauthorized, err, "Invalid token")
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		ctx = context.WithValue(ctx, logKey, logFrom(r).WithField("user", claims.UserEmail()))
		next.ServeHTTP(w, r.WithContext(ctx))
		return nil
	})
}

// adminOnly must run inside authenticated.
func adminOnly(next http.Handler) http.Handler {
	return appHandler(func(w http.ResponseWriter, r *http.Request) *appError {
		if c := claimsFrom(r); c == nil || !c.IsAdmin() {
			return appErrorf(http.StatusForbidden, nil, "Administration page only")
		}
		next.ServeHTTP(w, r)
		return nil
	})
}

func claimsFrom(r *http.Request) *auth.Claims {
	c, _ := r.Context().Value(claimsKey).(*auth.Claims)
	return c
}

func userEmail(r *http.Request) string {
	if c := claimsFrom(r); c != nil {
		return c.UserEmail()
	}
	return ""
}
