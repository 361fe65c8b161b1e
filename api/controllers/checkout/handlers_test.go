package checkout

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	checkoutsvc "github.com/angelmondragon/storemock-backend/internal/checkout"
	"github.com/angelmondragon/storemock-backend/pkg/db/models"
	"github.com/angelmondragon/storemock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storemock-backend/pkg/errors"
	"github.com/angelmondragon/storemock-backend/pkg/logger"
)

type testCheckoutService struct {
	createFn         func(ctx context.Context, input checkoutsvc.CreateInput) (*models.Checkout, error)
	getFn            func(ctx context.Context, id uuid.UUID) (*models.Checkout, error)
	updateFn         func(ctx context.Context, id uuid.UUID, input checkoutsvc.UpdateInput) (*models.Checkout, error)
	addLineItemFn    func(ctx context.Context, id uuid.UUID, input checkoutsvc.LineItemInput) (*models.Checkout, error)
	applyDiscountFn  func(ctx context.Context, id uuid.UUID, code string) (*models.Checkout, error)
	setFulfillmentFn func(ctx context.Context, id uuid.UUID, input checkoutsvc.FulfillmentInput) (*models.Checkout, error)
	completeFn       func(ctx context.Context, id uuid.UUID, input checkoutsvc.CompleteInput) (*models.Checkout, *models.Order, error)
	cancelFn         func(ctx context.Context, id uuid.UUID) (*models.Checkout, error)
}

func (s *testCheckoutService) Create(ctx context.Context, input checkoutsvc.CreateInput) (*models.Checkout, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return nil, nil
}

func (s *testCheckoutService) Get(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return nil, nil
}

func (s *testCheckoutService) Update(ctx context.Context, id uuid.UUID, input checkoutsvc.UpdateInput) (*models.Checkout, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, id, input)
	}
	return nil, nil
}

func (s *testCheckoutService) AddLineItem(ctx context.Context, id uuid.UUID, input checkoutsvc.LineItemInput) (*models.Checkout, error) {
	if s.addLineItemFn != nil {
		return s.addLineItemFn(ctx, id, input)
	}
	return nil, nil
}

func (s *testCheckoutService) UpdateLineItem(ctx context.Context, id, itemID uuid.UUID, quantity int) (*models.Checkout, error) {
	return nil, nil
}

func (s *testCheckoutService) RemoveLineItem(ctx context.Context, id, itemID uuid.UUID) (*models.Checkout, error) {
	return nil, nil
}

func (s *testCheckoutService) ApplyDiscount(ctx context.Context, id uuid.UUID, code string) (*models.Checkout, error) {
	if s.applyDiscountFn != nil {
		return s.applyDiscountFn(ctx, id, code)
	}
	return nil, nil
}

func (s *testCheckoutService) SetFulfillment(ctx context.Context, id uuid.UUID, input checkoutsvc.FulfillmentInput) (*models.Checkout, error) {
	if s.setFulfillmentFn != nil {
		return s.setFulfillmentFn(ctx, id, input)
	}
	return nil, nil
}

func (s *testCheckoutService) SetPayment(ctx context.Context, id uuid.UUID, input checkoutsvc.PaymentInput) (*models.Checkout, error) {
	return nil, nil
}

func (s *testCheckoutService) Complete(ctx context.Context, id uuid.UUID, input checkoutsvc.CompleteInput) (*models.Checkout, *models.Order, error) {
	if s.completeFn != nil {
		return s.completeFn(ctx, id, input)
	}
	return nil, nil, nil
}

func (s *testCheckoutService) Cancel(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, id)
	}
	return nil, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func sampleCheckout(id uuid.UUID) *models.Checkout {
	return &models.Checkout{
		ID:            id,
		Status:        enums.CheckoutStatusIncomplete,
		Currency:      "USD",
		SubtotalCents: 1499,
		TotalCents:    1499,
		Items: []models.CheckoutLineItem{{
			ID:             uuid.New(),
			CheckoutID:     id,
			ProductID:      "prod_espresso",
			Title:          "Espresso Beans",
			UnitPriceCents: 1499,
			Quantity:       1,
		}},
	}
}

func TestCreateReturnsCheckoutEnvelope(t *testing.T) {
	id := uuid.New()
	svc := &testCheckoutService{
		createFn: func(ctx context.Context, input checkoutsvc.CreateInput) (*models.Checkout, error) {
			if len(input.Items) != 1 || input.Items[0].ProductID != "prod_espresso" {
				t.Fatalf("unexpected items %+v", input.Items)
			}
			if input.Items[0].Quantity != 1 {
				t.Fatalf("expected default quantity 1, got %d", input.Items[0].Quantity)
			}
			return sampleCheckout(id), nil
		},
	}

	body := `{"currency":"usd","line_items":[{"item":{"id":"prod_espresso"}}]}`
	req := httptest.NewRequest(http.MethodPost, "/checkout-sessions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	Create(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data checkoutView `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.ID != id.String() {
		t.Fatalf("unexpected checkout id %s", envelope.Data.ID)
	}
	if envelope.Data.UCP.Version != "2026-01-11" {
		t.Fatalf("unexpected ucp version %s", envelope.Data.UCP.Version)
	}
	if envelope.Data.Payment.Instruments == nil {
		t.Fatal("payment instruments must be an empty array, not null")
	}
	if len(envelope.Data.Links) != 2 {
		t.Fatalf("expected legal links, got %d", len(envelope.Data.Links))
	}
}

func TestFetchRejectsInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/checkout-sessions/not-a-uuid", nil)
	req = addRouteParam(req, "id", "not-a-uuid")
	resp := httptest.NewRecorder()
	Fetch(&testCheckoutService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestFetchNotFound(t *testing.T) {
	svc := &testCheckoutService{
		getFn: func(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout not found")
		},
	}
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/checkout-sessions/"+id, nil)
	req = addRouteParam(req, "id", id)
	resp := httptest.NewRecorder()
	Fetch(svc, testLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestSetFulfillmentRequiresSelectionOrAddress(t *testing.T) {
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/checkout-sessions/"+id+"/fulfillment", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req = addRouteParam(req, "id", id)
	resp := httptest.NewRecorder()
	SetFulfillment(&testCheckoutService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCompleteAttachesOrderReference(t *testing.T) {
	id := uuid.New()
	orderID := uuid.New()
	svc := &testCheckoutService{
		completeFn: func(ctx context.Context, cid uuid.UUID, input checkoutsvc.CompleteInput) (*models.Checkout, *models.Order, error) {
			if input.InstrumentID == nil || *input.InstrumentID != "instr_ok" {
				t.Fatalf("expected instrument from payment_data, got %v", input.InstrumentID)
			}
			checkout := sampleCheckout(cid)
			checkout.Status = enums.CheckoutStatusCompleted
			return checkout, &models.Order{ID: orderID, CheckoutID: cid, Status: enums.OrderStatusConfirmed}, nil
		},
	}

	body := `{"payment_data":{"id":"instr_ok"}}`
	req := httptest.NewRequest(http.MethodPost, "/checkout-sessions/"+id.String()+"/complete", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = addRouteParam(req, "id", id.String())
	resp := httptest.NewRecorder()
	Complete(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data checkoutView `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Order == nil {
		t.Fatal("expected order reference on completed checkout")
	}
	if envelope.Data.Order.ID != orderID.String() {
		t.Fatalf("unexpected order id %s", envelope.Data.Order.ID)
	}
	if !strings.HasSuffix(envelope.Data.Order.PermalinkURL, "/orders/"+orderID.String()) {
		t.Fatalf("unexpected permalink %s", envelope.Data.Order.PermalinkURL)
	}
}

func TestCompletePaymentFailureMapsTo402(t *testing.T) {
	id := uuid.New()
	svc := &testCheckoutService{
		completeFn: func(ctx context.Context, cid uuid.UUID, input checkoutsvc.CompleteInput) (*models.Checkout, *models.Order, error) {
			return nil, nil, pkgerrors.New(pkgerrors.CodePaymentFailure, "payment was declined")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/checkout-sessions/"+id.String()+"/complete", strings.NewReader(`{"payment_data":{"id":"instr_fail"}}`))
	req.Header.Set("Content-Type", "application/json")
	req = addRouteParam(req, "id", id.String())
	resp := httptest.NewRecorder()
	Complete(svc, testLogger())(resp, req)

	if resp.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "PAYMENT_FAILURE") {
		t.Fatalf("expected payment failure code in body, got %s", resp.Body.String())
	}
}

func TestCancelTerminalConflictMapsTo422(t *testing.T) {
	id := uuid.New()
	svc := &testCheckoutService{
		cancelFn: func(ctx context.Context, cid uuid.UUID) (*models.Checkout, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is completed")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/checkout-sessions/"+id.String()+"/cancel", nil)
	req = addRouteParam(req, "id", id.String())
	resp := httptest.NewRecorder()
	Cancel(svc, testLogger())(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
}
