package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storemock-backend/internal/webhooks/agent"
)

const ucpAgentHeader = "UCP-Agent"

type contextKey string

const ctxAgentProfileURL contextKey = "agent_profile_url"

// Agent extracts the agent profile URL from the UCP-Agent header and stashes
// it on the request context for handlers that dispatch webhooks.
func Agent() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if profileURL := agent.ParseProfileRef(r.Header.Get(ucpAgentHeader)); profileURL != "" {
				ctx = context.WithValue(ctx, ctxAgentProfileURL, profileURL)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AgentProfileURLFromContext returns the profile URL parsed from the
// UCP-Agent header, or an empty string.
func AgentProfileURLFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAgentProfileURL).(string); ok {
		return v
	}
	return ""
}
