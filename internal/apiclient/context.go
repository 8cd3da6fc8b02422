package apiclient

import "context"

// Common context keys - use a struct to prevent conflicts
type contextKey struct {
	name string
}

var locationKey = contextKey{"location"}

// ContextWithLocation records the application location (the page or command path, e.g. "/admin/orders")
// the call is made from. Calls made from an admin location use the admin token.
func ContextWithLocation(ctx context.Context, location string) context.Context {
	return context.WithValue(ctx, locationKey, location)
}

// ContextLocation returns the location recorded with ContextWithLocation, or ""
func ContextLocation(ctx context.Context) string {
	location, _ := ctx.Value(locationKey).(string)
	return location
}
