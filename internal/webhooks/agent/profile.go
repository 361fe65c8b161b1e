package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/angelmondragon/storemock-backend/pkg/logger"
)

// orderCapability is the agent capability whose config carries the webhook
// endpoint for order lifecycle events.
const orderCapability = "dev.ucp.shopping.order"

var profileRefPattern = regexp.MustCompile(`profile="([^"]+)"`)

// ParseProfileRef extracts the profile URL from a UCP-Agent header value.
// Returns an empty string when the header carries no profile reference.
func ParseProfileRef(header string) string {
	match := profileRefPattern.FindStringSubmatch(header)
	if match == nil {
		return ""
	}
	return match[1]
}

// ProfileCache stores fetched agent profiles keyed by profile URL.
type ProfileCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	AgentProfileKey(profileURL string) string
}

type agentProfile struct {
	UCP struct {
		Capabilities []struct {
			Name   string `json:"name"`
			Config struct {
				WebhookURL string `json:"webhook_url"`
			} `json:"config"`
		} `json:"capabilities"`
	} `json:"ucp"`
}

type cachedProfile struct {
	body      string
	fetchedAt time.Time
}

// ProfileResolver fetches agent profiles and resolves the order webhook URL
// from their capability list. Profiles are cached in redis when a cache is
// provided, with a bounded in-memory fallback otherwise.
type ProfileResolver struct {
	client *http.Client
	cache  ProfileCache
	ttl    time.Duration
	max    int
	logg   *logger.Logger

	mu    sync.Mutex
	local map[string]cachedProfile
}

// NewProfileResolver builds a resolver. The cache may be nil.
func NewProfileResolver(client *http.Client, cache ProfileCache, ttl time.Duration, maxEntries int, logg *logger.Logger) (*ProfileResolver, error) {
	if client == nil {
		return nil, fmt.Errorf("http client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxEntries <= 0 {
		maxEntries = 256
	}
	return &ProfileResolver{
		client: client,
		cache:  cache,
		ttl:    ttl,
		max:    maxEntries,
		logg:   logg,
		local:  make(map[string]cachedProfile),
	}, nil
}

// WebhookURL resolves the order webhook endpoint for the given profile URL.
// Returns an empty string when the profile has no order capability webhook.
func (r *ProfileResolver) WebhookURL(ctx context.Context, profileURL string) (string, error) {
	if profileURL == "" {
		return "", nil
	}

	body, err := r.profileBody(ctx, profileURL)
	if err != nil {
		return "", err
	}

	var profile agentProfile
	if err := json.Unmarshal([]byte(body), &profile); err != nil {
		return "", fmt.Errorf("decode agent profile: %w", err)
	}
	for _, capability := range profile.UCP.Capabilities {
		if capability.Name == orderCapability && capability.Config.WebhookURL != "" {
			return capability.Config.WebhookURL, nil
		}
	}
	return "", nil
}

func (r *ProfileResolver) profileBody(ctx context.Context, profileURL string) (string, error) {
	if cached, ok := r.lookup(ctx, profileURL); ok {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		return "", fmt.Errorf("build profile request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch agent profile: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch agent profile: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read agent profile: %w", err)
	}

	r.store(ctx, profileURL, string(body))
	return string(body), nil
}

func (r *ProfileResolver) lookup(ctx context.Context, profileURL string) (string, bool) {
	if r.cache != nil {
		body, err := r.cache.Get(ctx, r.cache.AgentProfileKey(profileURL))
		if err == nil && body != "" {
			return body, true
		}
		return "", false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.local[profileURL]
	if !ok || time.Since(entry.fetchedAt) > r.ttl {
		delete(r.local, profileURL)
		return "", false
	}
	return entry.body, true
}

func (r *ProfileResolver) store(ctx context.Context, profileURL, body string) {
	if r.cache != nil {
		if err := r.cache.Set(ctx, r.cache.AgentProfileKey(profileURL), body, r.ttl); err != nil {
			r.logg.Warn(ctx, fmt.Sprintf("cache agent profile: %v", err))
		}
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.local) >= r.max {
		r.evictOldestLocked()
	}
	r.local[profileURL] = cachedProfile{body: body, fetchedAt: time.Now()}
}

func (r *ProfileResolver) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for key, entry := range r.local {
		if oldestKey == "" || entry.fetchedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.fetchedAt
		}
	}
	if oldestKey != "" {
		delete(r.local, oldestKey)
	}
}
