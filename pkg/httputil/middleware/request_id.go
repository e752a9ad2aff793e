package middleware

import (
	"context"
	"net/http"

	"github.com/edgeflare/fakeuser/pkg/httputil"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

// RequestID middleware assigns each request a unique ID, reusing one already present
// in the context or a valid X-Request-Id request header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := httputil.RequestID(r)
		if reqID == "" {
			if h := r.Header.Get(RequestIDHeader); h != "" {
				if _, err := uuid.Parse(h); err == nil {
					reqID = h
				}
			}
		}
		if reqID == "" {
			reqID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), httputil.RequestIDCtxKey, reqID)
		w.Header().Set(RequestIDHeader, reqID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
