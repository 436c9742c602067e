package router

import (
	"context"
)

// Authenticator reports whether a session token is present.
type Authenticator interface {
	IsAuthenticated() bool
}

// Guard redirects to the login view before the wrapped handler runs when no
// token is present. It is a presence check only: an expired token is
// discovered by the first request that fails.
func Guard(auth Authenticator) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) error {
			if !auth.IsAuthenticated() {
				return RedirectTo(PathLogin)
			}
			return next(ctx, req)
		}
	}
}
