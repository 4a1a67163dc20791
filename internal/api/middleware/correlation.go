package middleware

import (
	"context"
	"net/http"

	"github.com/rs/xid"
)

// CorrelationHeader carries the request correlation ID. Callers may supply
// their own; otherwise the server generates one. The same ID is stamped on
// every audit entry the request produces, which is what lets a failed link
// attempt be looked up and replayed later.
const CorrelationHeader = "X-Correlation-ID"

const correlationKey = "correlation_id"

// CorrelationID assigns the request its correlation ID and echoes it back
// in the response header.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(CorrelationHeader)
		if id == "" {
			id = xid.New().String()
		}
		w.Header().Set(CorrelationHeader, id)

		ctx := context.WithValue(r.Context(), correlationKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID returns the correlation ID stored on the context, or "" when
// the request never passed through CorrelationID.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey).(string)
	return id
}
