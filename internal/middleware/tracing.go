package middleware

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request, named after chi's matched route
// pattern to keep span-name cardinality bounded.
func Tracing() func(http.Handler) http.Handler {
	tracer := otel.Tracer("payflow/http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}

			ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
			)
			defer span.End()

			next.ServeHTTP(ww, r.WithContext(ctx))

			// chi resolves the route pattern during routing, so rename
			// the span once the handler has run.
			if rctx := chi.RouteContext(ctx); rctx != nil && rctx.RoutePattern() != "" {
				span.SetName(fmt.Sprintf("%s %s", r.Method, rctx.RoutePattern()))
			}
			span.SetAttributes(
				attribute.String("http.method", r.Method),
				attribute.Int("http.status_code", ww.statusCode),
			)
		})
	}
}
