package core

import "context"

type contextKey string

const (
	ctxKeyClientIP      contextKey = "reload_client_ip"
	ctxKeyReloadTrigger contextKey = "reload_trigger"
)

// Reload triggers recorded in reload logs.
const (
	TriggerStartup   = "startup"
	TriggerScheduler = "scheduler"
	TriggerAPI       = "api"
	TriggerCLI       = "cli"
)

// ContextWithClientIP adds the requesting client's IP for reload logging.
func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyClientIP, ip)
}

// ContextWithReloadTrigger records what started a load.
func ContextWithReloadTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, ctxKeyReloadTrigger, trigger)
}

// ClientIPFromContext extracts the client IP from context.
func ClientIPFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyClientIP).(string); ok {
		return v
	}
	return ""
}

// ReloadTriggerFromContext extracts the reload trigger, defaulting to "api".
func ReloadTriggerFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyReloadTrigger).(string); ok {
		return v
	}
	return TriggerAPI
}
