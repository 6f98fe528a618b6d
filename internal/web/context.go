package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/restaurants/internal/core"
	appmw "github.com/JonMunkholm/restaurants/internal/web/middleware"
)

// WithRequestMetadata records the client IP and marks the work as
// API-triggered for reload logging.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithClientIP(ctx, clientIP(r))
	return core.ContextWithReloadTrigger(ctx, core.TriggerAPI)
}

// clientIP returns the request's client address without the port.
// TrustedRealIP has already rewritten RemoteAddr for trusted proxies.
func clientIP(r *http.Request) string {
	return appmw.ClientIP(r)
}
