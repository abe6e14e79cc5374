package goSaaS

import (
	"context"

	"github.com/MrEthical07/goSaaS/domain"
)

type clientIPContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. Activity rows and the sign-in
// limiter read it back. Values longer than an activity row can hold are truncated.
func WithClientIP(ctx context.Context, ip string) context.Context {
	if len(ip) > domain.MaxIPAddressLength {
		ip = ip[:domain.MaxIPAddressLength]
	}
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// ClientIP returns the address attached by WithClientIP, or "".
func ClientIP(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
