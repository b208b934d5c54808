package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/giftcrm/internal/core"
)

// withClient attaches the caller's address and User-Agent for the core
// mutation logs. RemoteAddr is already rewritten by TrustedRealIP.
func withClient(r *http.Request) context.Context {
	ctx := core.ContextWithIPAddress(r.Context(), r.RemoteAddr)
	return core.ContextWithUserAgent(ctx, r.UserAgent())
}
