package context

import (
	"context"

	"github.com/octabyte/alumni-portal/api"
)

func WithAPIClient(ctx context.Context, c *api.Client) context.Context {
	return context.WithValue(ctx, clientKey, c)
}

// GetAPIClientFromContext returns the visitor's REST client. It carries the
// visitor's bearer credential once the session is restored.
func GetAPIClientFromContext(ctx context.Context) *api.Client {
	c, _ := ctx.Value(clientKey).(*api.Client)
	return c
}
