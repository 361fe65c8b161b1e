package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storemock-backend/api/responses"
	"github.com/angelmondragon/storemock-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storemock-backend/pkg/errors"
	"github.com/angelmondragon/storemock-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/storemock-backend/pkg/redis"
)

type ttlClass int

const (
	ttlDefault ttlClass = iota
	// ttlCritical covers one-shot state transitions (complete, cancel) where
	// a replayed retry must keep working long after the original request.
	ttlCritical
)

type routeMatcher func(string) bool

type idempotencyRule struct {
	method  string
	matcher routeMatcher
	class   ttlClass
}

var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, matcher: matchExact("/checkout-sessions"), class: ttlDefault},
	{method: http.MethodPut, matcher: matchPrefix("/checkout-sessions/"), class: ttlDefault},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/checkout-sessions/", "/line-items"), class: ttlDefault},
	{method: http.MethodPatch, matcher: matchPrefix("/checkout-sessions/"), class: ttlDefault},
	{method: http.MethodDelete, matcher: matchPrefix("/checkout-sessions/"), class: ttlDefault},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/checkout-sessions/", "/discounts"), class: ttlDefault},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/checkout-sessions/", "/fulfillment"), class: ttlDefault},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/checkout-sessions/", "/payment"), class: ttlDefault},
	{method: http.MethodPut, matcher: matchPrefix("/orders/"), class: ttlDefault},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/checkout-sessions/", "/complete"), class: ttlCritical},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/checkout-sessions/", "/cancel"), class: ttlCritical},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/orders/", "/cancel"), class: ttlCritical},
}

// An idempotencyRecord with Status zero is a reservation: the original
// request has claimed the key but has not finished executing yet.
type idempotencyRecord struct {
	Status      int               `json:"status"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

func (rec *idempotencyRecord) pending() bool {
	return rec.Status == 0
}

// Idempotency replays stored responses for repeated Idempotency-Key requests
// on mutating checkout and order routes. Requests without a key proceed
// uncached; a reused key with a different body is rejected. The key is
// reserved atomically (SetNX) before the handler runs, so two concurrent
// requests with the same fresh key can never both execute: the loser of the
// reservation race is answered from the store or told to retry.
func Idempotency(store pkgredis.IdempotencyStore, cfg config.IdempotencyConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, ok := routeTTL(cfg, r.Method, routePattern(r))
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
			if idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashBody(body)
			scope := strings.Join([]string{r.Method, r.URL.Path}, "|")
			key := store.IdempotencyKey(scope, idempotencyKey)

			reservation, marshalErr := json.Marshal(idempotencyRecord{RequestHash: requestHash})
			if marshalErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, marshalErr, "reserve idempotency key"))
				return
			}
			reserved, setErr := store.SetNX(r.Context(), key, string(reservation), ttl)
			if setErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, setErr, "reserve idempotency key"))
				return
			}

			if !reserved {
				stored, getErr := store.Get(r.Context(), key)
				if getErr != nil && !errors.Is(getErr, redis.Nil) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, getErr, "check idempotency"))
					return
				}
				if stored == "" {
					// The reservation expired between SetNX and Get.
					next.ServeHTTP(w, r)
					return
				}
				record, decodeErr := decodeRecord(stored)
				if decodeErr != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, decodeErr, "decode idempotency record"))
					return
				}
				if record.RequestHash != requestHash {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
					return
				}
				if record.pending() {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "request with this idempotency key is still in progress"))
					return
				}
				writeStoredResponse(w, record)
				return
			}

			// Release the reservation unless the final response was stored, so
			// a handler panic or store failure does not wedge the key until
			// its TTL.
			completed := false
			defer func() {
				if completed {
					return
				}
				if delErr := store.Del(r.Context(), key); delErr != nil {
					logError(r.Context(), logg, "release idempotency reservation", delErr)
				}
			}()

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			record := idempotencyRecord{
				Status:      defaultStatus(rec.status),
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				RequestHash: requestHash,
			}
			if ct := rec.Header().Get("Content-Type"); ct != "" {
				record.Headers = map[string]string{"Content-Type": ct}
			}

			payload, marshalErr := json.Marshal(record)
			if marshalErr != nil {
				logError(r.Context(), logg, "marshal idempotency record", marshalErr)
				return
			}

			if setErr := store.Set(r.Context(), key, string(payload), ttl); setErr != nil {
				logError(r.Context(), logg, "persist idempotency record", setErr)
				return
			}
			completed = true
		})
	}
}

func decodeRecord(payload string) (*idempotencyRecord, error) {
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func writeStoredResponse(w http.ResponseWriter, record *idempotencyRecord) {
	if record == nil {
		return
	}
	if ct, ok := record.Headers["Content-Type"]; ok && ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func defaultStatus(value int) int {
	if value == 0 {
		return http.StatusOK
	}
	return value
}

func routePattern(r *http.Request) string {
	if r == nil {
		return ""
	}
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		if pattern := ctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func routeTTL(cfg config.IdempotencyConfig, method, pattern string) (time.Duration, bool) {
	if pattern == "" {
		return 0, false
	}
	for _, rule := range idempotencyRules {
		if rule.method != method {
			continue
		}
		if rule.matcher(pattern) {
			if rule.class == ttlCritical {
				return cfg.CriticalTTL, true
			}
			return cfg.TTL, true
		}
	}
	return 0, false
}

func matchExact(path string) routeMatcher {
	return func(pattern string) bool {
		return pattern == path
	}
}

func matchPrefix(prefix string) routeMatcher {
	return func(pattern string) bool {
		return strings.HasPrefix(pattern, prefix)
	}
}

func matchPrefixSuffix(prefix, suffix string) routeMatcher {
	return func(pattern string) bool {
		return strings.HasPrefix(pattern, prefix) && strings.HasSuffix(pattern, suffix)
	}
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
