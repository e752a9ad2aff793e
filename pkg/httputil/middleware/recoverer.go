package middleware

import (
	"fmt"
	"net/http"

	"github.com/edgeflare/fakeuser/pkg/httputil"
	"go.uber.org/zap"
)

// Recoverer turns handler panics into a 500 JSON error and logs them.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			LogEntry(r.Context()).Error("panic recovered",
				zap.String("panic", fmt.Sprint(rvr)),
				zap.Stack("stack"))
			httputil.Error(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}()

		next.ServeHTTP(w, r)
	})
}
