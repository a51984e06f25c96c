package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"slotwise/config"
	"slotwise/services/booking"
	"slotwise/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// Webhook deliveries are at-least-once; processed event ids are parked in
// redis for a day so redeliveries turn into no-ops before they even reach the
// (already idempotent) confirmation path. A delivery that fails mid-handling
// frees its id again, keeping the retry a retry instead of a skipped
// duplicate.
const webhookDedupTTL = 24 * time.Hour

// DedupStore is the slice of the redis client the webhook dedup gate needs.
type DedupStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

func (hb *HandlerBundle) dedupStore() DedupStore {
	if hb.Dedup != nil {
		return hb.Dedup
	}
	return utils.GetWebhookCacheClient()
}

// StripeWebhookHandler answers POST /api/webhooks/stripe. The signature is
// verified against the webhook signing secret before anything is trusted;
// unverified payloads are rejected with a 400.
func (hb *HandlerBundle) StripeWebhookHandler(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 65536))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "failed to read webhook payload", err.Error())
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), config.AppConfig.StripeWebhookSecret)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "webhook signature verification failed", err.Error())
		return
	}

	// SetNX is the dedup gate: only the first delivery of an event id wins.
	dedup := hb.dedupStore()
	dedupKey := "stripe:event:" + event.ID
	claimed := false
	fresh, err := dedup.SetNX(c.Request.Context(), dedupKey, 1, webhookDedupTTL).Result()
	switch {
	case err != nil:
		hb.Logger.Warn("webhook dedup store unavailable, processing anyway",
			zap.String("eventId", event.ID), zap.Error(err))
	case !fresh:
		hb.Logger.Info("duplicate webhook delivery skipped", zap.String("eventId", event.ID))
		c.JSON(http.StatusOK, gin.H{"received": true, "duplicate": true})
		return
	default:
		claimed = true
	}

	switch event.Type {
	case "checkout.session.completed":
		if !hb.handleCheckoutCompleted(c, event) && claimed {
			// Handling failed, so Stripe will redeliver; free the dedup slot
			// so the redelivery is processed rather than skipped.
			if err := dedup.Del(c.Request.Context(), dedupKey).Err(); err != nil {
				hb.Logger.Error("failed to release webhook dedup key after error",
					zap.String("eventId", event.ID), zap.Error(err))
			}
		}
	default:
		hb.Logger.Debug("ignoring webhook event", zap.String("type", string(event.Type)))
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

// handleCheckoutCompleted reports whether the delivery was terminally
// consumed. False means a non-2xx response went out and the event id must be
// released for the redelivery.
func (hb *HandlerBundle) handleCheckoutCompleted(c *gin.Context, event stripe.Event) bool {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "malformed checkout session payload", err.Error())
		return false
	}

	bookingID := sess.Metadata["bookingId"]
	if bookingID == "" {
		hb.Logger.Warn("checkout session without bookingId metadata", zap.String("sessionId", sess.ID))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return true
	}

	var paymentIntentID string
	if sess.PaymentIntent != nil {
		paymentIntentID = sess.PaymentIntent.ID
	}

	if err := hb.Bookings.Confirm(c.Request.Context(), bookingID, paymentIntentID); err != nil {
		// A booking cancelled before payment settled cannot be confirmed any
		// more; acknowledge so the delivery is not retried forever.
		var conflict *booking.ConflictError
		if errors.As(err, &conflict) {
			hb.Logger.Warn("payment settled for a non-pending booking",
				zap.String("bookingId", bookingID), zap.String("detail", conflict.Message))
			c.JSON(http.StatusOK, gin.H{"received": true, "stale": true})
			return true
		}
		// A 5xx makes Stripe redeliver; confirmation is idempotent so a retry
		// is always safe.
		utils.JSONError(c, http.StatusInternalServerError, "failed to confirm booking", err.Error())
		return false
	}

	hb.Logger.Info("booking confirmed via webhook",
		zap.String("bookingId", bookingID),
		zap.String("eventId", event.ID))
	c.JSON(http.StatusOK, gin.H{"received": true})
	return true
}
