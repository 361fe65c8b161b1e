package agent

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storemock-backend/pkg/config"
	"github.com/angelmondragon/storemock-backend/pkg/db/models"
	"github.com/angelmondragon/storemock-backend/pkg/enums"
	"github.com/angelmondragon/storemock-backend/pkg/logger"
)

func TestParseProfileRef(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{`profile="https://agent.example.com/profile.json"`, "https://agent.example.com/profile.json"},
		{`agent/1.0 profile="http://localhost:9000/p.json"; other`, "http://localhost:9000/p.json"},
		{`agent/1.0`, ""},
		{``, ""},
	}
	for _, tc := range cases {
		if got := ParseProfileRef(tc.header); got != tc.want {
			t.Fatalf("ParseProfileRef(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func profileServer(t *testing.T, webhookURL string, fetches *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fetches != nil {
			fetches.Add(1)
		}
		profile := map[string]any{
			"ucp": map[string]any{
				"capabilities": []map[string]any{
					{"name": "dev.ucp.shopping.checkout"},
					{"name": "dev.ucp.shopping.order", "config": map[string]any{"webhook_url": webhookURL}},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(profile); err != nil {
			t.Errorf("encode profile: %v", err)
		}
	}))
}

func newResolver(t *testing.T) *ProfileResolver {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	resolver, err := NewProfileResolver(&http.Client{Timeout: 5 * time.Second}, nil, time.Minute, 8, logg)
	if err != nil {
		t.Fatalf("build resolver: %v", err)
	}
	return resolver
}

func TestWebhookURLFromProfileCapabilities(t *testing.T) {
	server := profileServer(t, "https://hooks.example.com/orders", nil)
	defer server.Close()
	resolver := newResolver(t)

	url, err := resolver.WebhookURL(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("resolve webhook url: %v", err)
	}
	if url != "https://hooks.example.com/orders" {
		t.Fatalf("expected webhook url, got %q", url)
	}
}

func TestWebhookURLCachesProfile(t *testing.T) {
	var fetches atomic.Int64
	server := profileServer(t, "https://hooks.example.com/orders", &fetches)
	defer server.Close()
	resolver := newResolver(t)

	for i := 0; i < 3; i++ {
		if _, err := resolver.WebhookURL(context.Background(), server.URL); err != nil {
			t.Fatalf("resolve webhook url: %v", err)
		}
	}
	if got := fetches.Load(); got != 1 {
		t.Fatalf("expected 1 profile fetch, got %d", got)
	}
}

func TestWebhookURLMissingCapability(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"ucp": {"capabilities": [{"name": "dev.ucp.shopping.checkout"}]}}`)
	}))
	defer server.Close()
	resolver := newResolver(t)

	url, err := resolver.WebhookURL(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("resolve webhook url: %v", err)
	}
	if url != "" {
		t.Fatalf("expected empty webhook url, got %q", url)
	}
}

func TestNotifierDeliversOrderPlaced(t *testing.T) {
	received := make(chan eventPayload, 1)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload eventPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		received <- payload
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()
	profiles := profileServer(t, hook.URL, nil)
	defer profiles.Close()

	resolver := newResolver(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	notifier, err := NewNotifier(config.WebhookConfig{QueueSize: 4, RequestTimeout: 5 * time.Second}, resolver, nil, logg)
	if err != nil {
		t.Fatalf("build notifier: %v", err)
	}

	checkoutID := uuid.New()
	order := &models.Order{
		ID:         uuid.New(),
		CheckoutID: checkoutID,
		Status:     enums.OrderStatusConfirmed,
		Currency:   "USD",
		TotalCents: 2098,
		Items: []models.OrderLineItem{
			{ID: uuid.New(), Title: "Espresso Blend", Quantity: 1},
		},
	}
	notifier.NotifyOrderPlaced(context.Background(), profiles.URL, checkoutID, order)
	notifier.Close()

	select {
	case payload := <-received:
		if payload.EventType != enums.WebhookEventOrderPlaced {
			t.Fatalf("expected order_placed event, got %s", payload.EventType)
		}
		if payload.CheckoutID != checkoutID.String() {
			t.Fatalf("expected checkout id %s, got %s", checkoutID, payload.CheckoutID)
		}
		if payload.Order.ID != order.ID.String() || len(payload.Order.LineItems) != 1 {
			t.Fatalf("unexpected order payload %+v", payload.Order)
		}
	default:
		t.Fatal("expected webhook delivery before Close returned")
	}
}

func TestNotifierSkipsEmptyProfile(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	notifier, err := NewNotifier(config.WebhookConfig{QueueSize: 1}, newResolver(t), nil, logg)
	if err != nil {
		t.Fatalf("build notifier: %v", err)
	}

	notifier.NotifyOrderPlaced(context.Background(), "", uuid.New(), &models.Order{ID: uuid.New()})
	notifier.Close()
	// Close drains the queue; an enqueued delivery with no profile would have
	// hit the resolver and failed loudly in logs, but nothing should be queued.
}
