package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const sentryFlushTimeout = 2 * time.Second

// withSentry gives every request its own hub so captured errors carry the
// request, and reports panics before handing them on to chi's Recoverer.
func (h *Handler) withSentry(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetRequest(r)
		ctx := sentry.SetHubOnContext(r.Context(), hub)

		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); !ok || !errors.Is(err, http.ErrAbortHandler) {
				hub.RecoverWithContext(ctx, rec)
				hub.Flush(sentryFlushTimeout)
				h.logger.Error().Str("panic", fmt.Sprint(rec)).Str("uri", r.RequestURI).Msg("handler panicked")
			}
			panic(rec)
		}()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
