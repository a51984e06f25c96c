package booking

import (
	"context"
	"fmt"

	"slotwise/config"
	"slotwise/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"go.uber.org/zap"
)

// StripeCheckout creates Stripe Checkout sessions for pending bookings. The
// booking id travels in the session metadata and comes back on the webhook as
// the correlation/idempotency key.
type StripeCheckout struct {
	Logger *zap.Logger
}

// NewStripeCheckout constructs the checkout creator.
func NewStripeCheckout(logger *zap.Logger) *StripeCheckout {
	return &StripeCheckout{Logger: logger}
}

func (s *StripeCheckout) CreateCheckout(ctx context.Context, b *models.Booking) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(config.AppConfig.CheckoutSuccessURL),
		CancelURL:  stripe.String(config.AppConfig.CheckoutCancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(b.Currency),
					UnitAmount: stripe.Int64(b.PriceCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("%d-minute video session", b.DurationMinutes)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("bookingId", b.ID)
	params.AddMetadata("providerId", b.ProviderID)

	sess, err := session.New(params)
	if err != nil {
		return "", "", fmt.Errorf("stripe checkout session creation failed: %w", err)
	}

	s.Logger.Info("checkout session created",
		zap.String("bookingId", b.ID),
		zap.String("sessionId", sess.ID))
	return sess.URL, sess.ID, nil
}
