package payment

import (
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
	"github.com/stripe/stripe-go/v74/customer"
)

type StripeService struct {
	successURL string
	cancelURL  string
}

func NewStripeService(secretKey, successURL, cancelURL string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// CreateCheckoutSession builds a hosted checkout for one price. When the
// buyer is known we attach their existing Stripe customer (or at least
// the email), and stamp the metadata the verifier reads back.
func (s *StripeService) CreateCheckoutSession(priceID, packageType, userID, email string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
	}

	params.AddMetadata("package_type", packageType)
	if userID != "" {
		params.AddMetadata("user_id", userID)
	}

	if email != "" {
		if customerID := s.findCustomerByEmail(email); customerID != "" {
			params.Customer = stripe.String(customerID)
		} else {
			params.CustomerEmail = stripe.String(email)
		}
	}

	return session.New(params)
}

// GetCheckoutSession retrieves a session for verification.
func (s *StripeService) GetCheckoutSession(sessionID string) (*stripe.CheckoutSession, error) {
	return session.Get(sessionID, nil)
}

func (s *StripeService) findCustomerByEmail(email string) string {
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Limit = stripe.Int64(1)

	iter := customer.List(params)
	for iter.Next() {
		return iter.Customer().ID
	}
	return ""
}
