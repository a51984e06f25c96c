package handlers

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"slotwise/config"
	"slotwise/services/booking"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const testWebhookSecret = "whsec_test"

type fakeDedupStore struct {
	keys    map[string]bool
	deleted []string
}

func newFakeDedupStore() *fakeDedupStore {
	return &fakeDedupStore{keys: map[string]bool{}}
}

func (f *fakeDedupStore) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	if f.keys[key] {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = true
	return redis.NewBoolResult(true, nil)
}

func (f *fakeDedupStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.keys, k)
		f.deleted = append(f.deleted, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func newWebhookEnv(t *testing.T, svc *stubBookingService) (*gin.Engine, *fakeDedupStore) {
	t.Helper()
	prev := config.AppConfig.StripeWebhookSecret
	config.AppConfig.StripeWebhookSecret = testWebhookSecret
	t.Cleanup(func() { config.AppConfig.StripeWebhookSecret = prev })

	dedup := newFakeDedupStore()
	hb := &HandlerBundle{Bookings: svc, Dedup: dedup, Logger: zap.NewNop()}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/webhooks/stripe", hb.StripeWebhookHandler)
	return r, dedup
}

func checkoutCompletedPayload(eventID, bookingID string) string {
	return fmt.Sprintf(`{"id":%q,"api_version":"2023-10-16","type":"checkout.session.completed",`+
		`"data":{"object":{"id":"cs_1","metadata":{"bookingId":%q}}}}`, eventID, bookingID)
}

func deliverWebhook(t *testing.T, r *gin.Engine, payload string) *httptest.ResponseRecorder {
	t.Helper()
	ts := time.Now()
	sig := webhook.ComputeSignature(ts, []byte(payload), testWebhookSecret)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(sig)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookConfirmsBooking(t *testing.T) {
	svc := &stubBookingService{}
	r, dedup := newWebhookEnv(t, svc)

	w := deliverWebhook(t, r, checkoutCompletedPayload("evt_1", "bk-1"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.confirms)
	assert.Empty(t, dedup.deleted)
	assert.True(t, dedup.keys["stripe:event:evt_1"])
}

func TestWebhookSkipsDuplicateDelivery(t *testing.T) {
	svc := &stubBookingService{}
	r, _ := newWebhookEnv(t, svc)

	payload := checkoutCompletedPayload("evt_1", "bk-1")
	require.Equal(t, http.StatusOK, deliverWebhook(t, r, payload).Code)

	w := deliverWebhook(t, r, payload)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"duplicate":true`)
	assert.Equal(t, 1, svc.confirms)
}

func TestWebhookReleasesDedupKeyOnConfirmFailure(t *testing.T) {
	// A transient confirmation failure must not mark the event as processed:
	// the redelivery has to reach the confirmation path again.
	svc := &stubBookingService{err: assert.AnError}
	r, dedup := newWebhookEnv(t, svc)

	payload := checkoutCompletedPayload("evt_1", "bk-1")
	w := deliverWebhook(t, r, payload)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, []string{"stripe:event:evt_1"}, dedup.deleted)
	assert.False(t, dedup.keys["stripe:event:evt_1"])

	// The failure clears; the redelivery confirms instead of being skipped.
	svc.err = nil
	w = deliverWebhook(t, r, payload)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, svc.confirms)
}

func TestWebhookAcksStaleConflictAndKeepsDedupKey(t *testing.T) {
	// A booking cancelled before payment settled stays unconfirmable; the
	// delivery is acknowledged so Stripe stops retrying.
	svc := &stubBookingService{err: booking.NewConflictError("booking bk-1 is CANCELLED")}
	r, dedup := newWebhookEnv(t, svc)

	w := deliverWebhook(t, r, checkoutCompletedPayload("evt_1", "bk-1"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"stale":true`)
	assert.Empty(t, dedup.deleted)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	svc := &stubBookingService{}
	r, _ := newWebhookEnv(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe",
		strings.NewReader(checkoutCompletedPayload("evt_1", "bk-1")))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, svc.confirms)
}
