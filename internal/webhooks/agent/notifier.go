package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storemock-backend/pkg/config"
	"github.com/angelmondragon/storemock-backend/pkg/db/models"
	"github.com/angelmondragon/storemock-backend/pkg/enums"
	"github.com/angelmondragon/storemock-backend/pkg/logger"
	"github.com/angelmondragon/storemock-backend/pkg/metrics"
	"github.com/angelmondragon/storemock-backend/pkg/types"
)

// eventPayload is the body POSTed to the agent's webhook endpoint.
type eventPayload struct {
	EventType  enums.WebhookEventType `json:"event_type"`
	CheckoutID string                 `json:"checkout_id"`
	Order      orderPayload           `json:"order"`
	Timestamp  string                 `json:"timestamp"`
}

type orderPayload struct {
	ID          string                 `json:"id"`
	CheckoutID  string                 `json:"checkout_id"`
	Status      enums.OrderStatus      `json:"status"`
	Currency    string                 `json:"currency"`
	TotalCents  int                    `json:"total_cents"`
	LineItems   []orderPayloadLine     `json:"line_items"`
	Fulfillment types.OrderFulfillment `json:"fulfillment"`
}

type orderPayloadLine struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

type delivery struct {
	event      enums.WebhookEventType
	profileURL string
	checkoutID uuid.UUID
	order      *models.Order
}

// Notifier delivers order lifecycle webhooks to UCP agents from a background
// worker. Enqueueing never blocks the request path and deliveries are not
// retried; failures are logged and counted only.
type Notifier struct {
	client   *http.Client
	profiles *ProfileResolver
	metrics  *metrics.CommerceMetrics
	logg     *logger.Logger
	timeout  time.Duration

	queue chan delivery
	wg    sync.WaitGroup

	closeOnce sync.Once
}

// NewNotifier builds a notifier and starts its delivery worker. Metrics are
// optional.
func NewNotifier(cfg config.WebhookConfig, profiles *ProfileResolver, commerceMetrics *metrics.CommerceMetrics, logg *logger.Logger) (*Notifier, error) {
	if profiles == nil {
		return nil, fmt.Errorf("profile resolver required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 128
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	n := &Notifier{
		client:   &http.Client{Timeout: timeout},
		profiles: profiles,
		metrics:  commerceMetrics,
		logg:     logg,
		timeout:  timeout,
		queue:    make(chan delivery, queueSize),
	}
	n.wg.Add(1)
	go n.run()
	return n, nil
}

// NotifyOrderPlaced enqueues an order_placed event for the agent behind
// profileURL.
func (n *Notifier) NotifyOrderPlaced(ctx context.Context, profileURL string, checkoutID uuid.UUID, order *models.Order) {
	n.enqueue(ctx, enums.WebhookEventOrderPlaced, profileURL, checkoutID, order)
}

// NotifyOrderShipped enqueues an order_shipped event for the agent behind
// profileURL.
func (n *Notifier) NotifyOrderShipped(ctx context.Context, profileURL string, checkoutID uuid.UUID, order *models.Order) {
	n.enqueue(ctx, enums.WebhookEventOrderShipped, profileURL, checkoutID, order)
}

// Close stops the worker after draining queued deliveries.
func (n *Notifier) Close() {
	n.closeOnce.Do(func() {
		close(n.queue)
	})
	n.wg.Wait()
}

func (n *Notifier) enqueue(ctx context.Context, event enums.WebhookEventType, profileURL string, checkoutID uuid.UUID, order *models.Order) {
	if profileURL == "" || order == nil {
		return
	}
	select {
	case n.queue <- delivery{event: event, profileURL: profileURL, checkoutID: checkoutID, order: order}:
	default:
		n.logg.Warn(ctx, fmt.Sprintf("webhook queue full, dropping %s for checkout %s", event, checkoutID))
		if n.metrics != nil {
			n.metrics.IncWebhookDelivery(string(event), "dropped")
		}
	}
}

func (n *Notifier) run() {
	defer n.wg.Done()
	for d := range n.queue {
		n.deliver(d)
	}
}

func (n *Notifier) deliver(d delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()
	ctx = n.logg.WithFields(ctx, map[string]any{
		"checkout_id": d.checkoutID.String(),
		"order_id":    d.order.ID.String(),
		"event_type":  string(d.event),
	})

	started := time.Now()
	err := n.send(ctx, d)
	if n.metrics != nil {
		n.metrics.ObserveWebhookDuration(string(d.event), time.Since(started))
	}
	if err != nil {
		n.logg.Error(ctx, "webhook delivery failed", err)
		if n.metrics != nil {
			n.metrics.IncWebhookDelivery(string(d.event), "failed")
		}
		return
	}
	n.logg.Info(ctx, "webhook delivered")
	if n.metrics != nil {
		n.metrics.IncWebhookDelivery(string(d.event), "delivered")
	}
}

func (n *Notifier) send(ctx context.Context, d delivery) error {
	webhookURL, err := n.profiles.WebhookURL(ctx, d.profileURL)
	if err != nil {
		return err
	}
	if webhookURL == "" {
		return fmt.Errorf("agent profile has no order webhook")
	}

	body, err := json.Marshal(buildPayload(d))
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("post webhook: status %d", resp.StatusCode)
	}
	return nil
}

func buildPayload(d delivery) eventPayload {
	lines := make([]orderPayloadLine, 0, len(d.order.Items))
	for _, item := range d.order.Items {
		lines = append(lines, orderPayloadLine{
			ID:       item.ID.String(),
			Title:    item.Title,
			Quantity: item.Quantity,
		})
	}
	return eventPayload{
		EventType:  d.event,
		CheckoutID: d.checkoutID.String(),
		Order: orderPayload{
			ID:          d.order.ID.String(),
			CheckoutID:  d.order.CheckoutID.String(),
			Status:      d.order.Status,
			Currency:    d.order.Currency,
			TotalCents:  d.order.TotalCents,
			LineItems:   lines,
			Fulfillment: d.order.Fulfillment,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
