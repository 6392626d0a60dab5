package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"app/internal/config"
	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	billingsession "github.com/stripe/stripe-go/v82/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	customerpkg "github.com/stripe/stripe-go/v82/customer"
	subscriptionpkg "github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"
)

// BillingService manages Stripe integration: checkout/portal session
// creation outbound, and idempotent webhook reconciliation inbound. Every
// event application is a full-field overwrite keyed by identity resolution,
// never an increment, so duplicate delivery converges on the same state.
type BillingService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	logger   zerolog.Logger
	now      func() time.Time
}

// NewBillingService initializes the Stripe key and returns the service with
// a scoped logger.
func NewBillingService(cfg *config.Config, userRepo repository.UserRepository, logger zerolog.Logger) *BillingService {
	stripe.Key = cfg.StripeSecretKey
	lg := logger.With().Str("service", "BillingService").Logger()
	return &BillingService{cfg: cfg, userRepo: userRepo, logger: lg, now: time.Now}
}

// CreateCheckoutSession creates a Stripe Checkout session for the pro plan.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, externalUserID, email string) (string, error) {
	if email == "" {
		user, err := s.userRepo.GetByExternalID(ctx, externalUserID)
		if err != nil {
			return "", fmt.Errorf("fetch user for checkout: %w", err)
		}
		if user == nil {
			return "", ErrUserNotFound
		}
		email = user.Email
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(stripe.CheckoutSessionModeSubscription),
		CustomerEmail: stripe.String(email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(s.cfg.StripePricePro), Quantity: stripe.Int64(1)},
		},
		AllowPromotionCodes: stripe.Bool(true),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"external_user_id": externalUserID},
		},
		Metadata:   map[string]string{"external_user_id": externalUserID},
		SuccessURL: stripe.String(s.cfg.BaseURL + "/dashboard?upgraded=1"),
		CancelURL:  stripe.String(s.cfg.BaseURL + "/pricing"),
	}
	sess, err := checkoutsession.New(params)
	if err != nil {
		s.logger.Error().Err(err).Str("external_user_id", externalUserID).Msg("Failed to create Stripe checkout session")
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// CreatePortalSession creates a Stripe Customer Portal session. When no
// customer id is stored yet it falls back to a best-effort lookup by email.
func (s *BillingService) CreatePortalSession(ctx context.Context, externalUserID string) (string, error) {
	user, err := s.userRepo.GetByExternalID(ctx, externalUserID)
	if err != nil {
		return "", fmt.Errorf("fetch user for portal: %w", err)
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	var customerID string
	if user.StripeCustomerID != nil {
		customerID = *user.StripeCustomerID
	}
	if customerID == "" && user.Email != "" {
		iter := customerpkg.List(&stripe.CustomerListParams{Email: stripe.String(user.Email)})
		if iter.Next() {
			customerID = iter.Customer().ID
		}
	}
	if customerID == "" {
		s.logger.Error().Str("external_user_id", externalUserID).Msg("No Stripe customer found for portal session")
		return "", errors.New("no stripe customer for user")
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(s.cfg.BaseURL + "/dashboard"),
	}
	sess, err := billingsession.New(params)
	if err != nil {
		s.logger.Error().Err(err).Str("external_user_id", externalUserID).Msg("Failed to create Stripe billing portal session")
		return "", fmt.Errorf("create billing portal session: %w", err)
	}
	return sess.URL, nil
}

// HandleWebhook processes Stripe webhook events. Signature verification
// happens before any parsing; events whose user cannot be resolved are
// logged and acknowledged, never failed, so the provider does not retry
// forever.
func (s *BillingService) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read Stripe webhook payload")
		http.Error(w, "failed to read payload", http.StatusBadRequest)
		return
	}
	sig := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sig, s.cfg.StripeWebhookSecret)
	if err != nil {
		s.logger.Error().Err(err).Msg("Signature verification failed for Stripe webhook")
		http.Error(w, "signature verification failed", http.StatusBadRequest)
		return
	}
	s.logger.Info().Str("event_type", string(event.Type)).Msg("Stripe webhook received")

	ctx := r.Context()
	switch event.Type {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			s.logger.Error().Err(err).Msg("Invalid checkout.session data")
			http.Error(w, "invalid checkout.session data", http.StatusBadRequest)
			return
		}
		s.applyCheckoutCompleted(ctx, &cs)
	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			s.logger.Error().Err(err).Msg("Invalid subscription data")
			http.Error(w, "invalid subscription data", http.StatusBadRequest)
			return
		}
		plan := model.PlanFree
		if sub.Status == stripe.SubscriptionStatusActive || sub.Status == stripe.SubscriptionStatusTrialing {
			plan = model.PlanPro
		}
		s.applySubscriptionChange(ctx, &sub, plan)
	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			s.logger.Error().Err(err).Msg("Invalid subscription data")
			http.Error(w, "invalid subscription data", http.StatusBadRequest)
			return
		}
		s.applySubscriptionChange(ctx, &sub, model.PlanFree)
	default:
		s.logger.Debug().Str("event_type", string(event.Type)).Msg("Ignoring unhandled Stripe webhook event")
	}
	w.WriteHeader(http.StatusOK)
}

func (s *BillingService) applyCheckoutCompleted(ctx context.Context, cs *stripe.CheckoutSession) {
	externalID := cs.Metadata["external_user_id"]
	customerID := ""
	if cs.Customer != nil {
		customerID = cs.Customer.ID
	}
	status := "active"

	// The session object may carry only a subscription reference; fetch the
	// full object for its metadata and status.
	if cs.Subscription != nil {
		if sub, err := subscriptionpkg.Get(cs.Subscription.ID, nil); err != nil {
			s.logger.Warn().Err(err).Str("subscription_id", cs.Subscription.ID).Msg("Failed to fetch subscription details")
		} else {
			if externalID == "" {
				externalID = sub.Metadata["external_user_id"]
			}
			if customerID == "" && sub.Customer != nil {
				customerID = sub.Customer.ID
			}
			status = string(sub.Status)
		}
	}

	email := ""
	if cs.CustomerDetails != nil {
		email = cs.CustomerDetails.Email
	}

	// A fresh quota comes with the upgrade: paying users start the month at
	// zero immediately.
	s.applyUpdate(ctx, externalID, email, customerID, repository.BillingFields{
		Plan:                     model.PlanPro,
		StripeCustomerID:         optional(customerID),
		StripeSubscriptionStatus: optional(status),
		ResetUsage:               true,
		MonthStart:               startOfMonth(s.now()),
	})
}

func (s *BillingService) applySubscriptionChange(ctx context.Context, sub *stripe.Subscription, plan string) {
	externalID := sub.Metadata["external_user_id"]
	customerID := ""
	if sub.Customer != nil {
		customerID = sub.Customer.ID
	}
	s.applyUpdate(ctx, externalID, "", customerID, repository.BillingFields{
		Plan:                     plan,
		StripeCustomerID:         optional(customerID),
		StripeSubscriptionStatus: optional(string(sub.Status)),
	})
}

// applyUpdate resolves the target user in order: event metadata, then the
// verified billing email. Unresolvable events are dropped with a warning.
func (s *BillingService) applyUpdate(ctx context.Context, externalID, email, customerID string, fields repository.BillingFields) {
	if externalID != "" {
		ok, err := s.userRepo.UpdateBilling(ctx, externalID, fields)
		if err != nil {
			s.logger.Error().Err(err).Str("external_user_id", externalID).Msg("Failed to apply billing update")
			return
		}
		if ok {
			return
		}
	}

	if email == "" && customerID != "" {
		// Last metadata-free resort: the customer's verified email.
		if cust, err := customerpkg.Get(customerID, nil); err != nil {
			s.logger.Warn().Err(err).Str("stripe_customer_id", customerID).Msg("Failed to fetch Stripe customer for email fallback")
		} else if !cust.Deleted {
			email = cust.Email
		}
	}

	if email != "" {
		mapped, err := s.userRepo.FindExternalIDByEmail(ctx, email)
		if err != nil {
			s.logger.Error().Err(err).Msg("Email fallback lookup failed")
			return
		}
		if mapped != "" {
			ok, err := s.userRepo.UpdateBilling(ctx, mapped, fields)
			if err != nil {
				s.logger.Error().Err(err).Str("external_user_id", mapped).Msg("Failed to apply billing update by email")
				return
			}
			if ok {
				return
			}
		}
	}

	s.logger.Warn().
		Str("external_user_id", externalID).
		Str("stripe_customer_id", customerID).
		Msg("No user matched billing event, dropping")
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
