package http

import (
	"context"
	"net/http"
	"strconv"
)

type contextKey string

const userIDKey contextKey = "user_id"

// userHeader carries the already-authenticated user identity. Session
// handling lives in the gateway in front of this service; a request
// arriving without the header has no identity and is rejected.
const userHeader = "X-User-ID"

// withUser requires a valid user id on the request and stores it in the
// context for handlers.
func withUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(userHeader)
		if raw == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing " + userHeader + " header"})
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid " + userHeader + " header"})
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, id)
		next(w, r.WithContext(ctx))
	}
}

// userID reads the authenticated user from the request context. Only
// reachable behind withUser, so the value is always present.
func userID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}
