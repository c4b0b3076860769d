package service

import (
	"encoding/json"
	"errors"

	"github.com/stripe/stripe-go/v74"
	"github.com/vintageai/vintageai-backend/internal/models"
	"github.com/vintageai/vintageai-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CheckoutProvider is the slice of the Stripe wrapper the payment flow
// uses.
type CheckoutProvider interface {
	CreateCheckoutSession(priceID, packageType, userID, email string) (*stripe.CheckoutSession, error)
	GetCheckoutSession(sessionID string) (*stripe.CheckoutSession, error)
}

// ReceiptSender mails purchase confirmations, best-effort.
type ReceiptSender interface {
	SendPurchaseReceipt(to, packageType string, videos, images int) error
}

// PackageGrant is the credit bundle attached to one package type.
type PackageGrant struct {
	Videos int `json:"videos"`
	Images int `json:"images"`
}

var packageGrants = map[string]PackageGrant{
	"starter": {Videos: 50, Images: 100},
	"classic": {Videos: 250, Images: 500},
	"premier": {Videos: 1000, Images: 2000},
}

type VerifyResult struct {
	CreditsAdded   PackageGrant
	UserMatched    bool
	AlreadyApplied bool
	Message        string
}

type PaymentService struct {
	checkout  CheckoutProvider
	balances  *repository.CreditBalanceRepository
	purchases *repository.PurchaseRepository
	receipts  ReceiptSender
	prices    map[string]string
	logger    *zap.Logger
}

func NewPaymentService(
	checkout CheckoutProvider,
	balances *repository.CreditBalanceRepository,
	purchases *repository.PurchaseRepository,
	receipts ReceiptSender,
	prices map[string]string,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		checkout:  checkout,
		balances:  balances,
		purchases: purchases,
		receipts:  receipts,
		prices:    prices,
		logger:    logger,
	}
}

// CreateCheckoutSession validates the price against the configured
// allowlist and returns the hosted checkout URL.
func (s *PaymentService) CreateCheckoutSession(userID, email, priceID, packageType string) (string, error) {
	allowed, ok := s.prices[priceID]
	if !ok {
		return "", ErrInvalidPriceID
	}
	if allowed != packageType {
		return "", ErrPackageMismatch
	}

	sess, err := s.checkout.CreateCheckoutSession(priceID, packageType, userID, email)
	if err != nil {
		return "", err
	}

	s.logger.Info("checkout session created",
		zap.String("session_id", sess.ID),
		zap.String("package_type", packageType),
	)
	return sess.URL, nil
}

// VerifyPayment retrieves the session and applies its credit grant
// exactly once.
func (s *PaymentService) VerifyPayment(sessionID string) (*VerifyResult, error) {
	sess, err := s.checkout.GetCheckoutSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.applySession(sess)
}

// HandleStripeWebhook applies completed checkouts pushed by Stripe. The
// webhook and the redirect-driven verify call race for the same session;
// the purchase row's uniqueness decides the winner.
func (s *PaymentService) HandleStripeWebhook(event *stripe.Event) error {
	if event.Type != "checkout.session.completed" {
		return nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return err
	}

	_, err := s.applySession(&sess)
	if errors.Is(err, ErrPaymentNotCompleted) {
		// Async payment methods complete later; the next event or the
		// verify call will pick it up.
		return nil
	}
	return err
}

// applySession is the exactly-once grant path. The purchase record, keyed
// by the unique session id, is inserted before any ledger change: a
// duplicate insert means another caller already granted these credits.
func (s *PaymentService) applySession(sess *stripe.CheckoutSession) (*VerifyResult, error) {
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil, ErrPaymentNotCompleted
	}

	email := sess.CustomerEmail
	if email == "" && sess.CustomerDetails != nil {
		email = sess.CustomerDetails.Email
	}
	packageType := sess.Metadata["package_type"]

	grant, ok := packageGrants[packageType]
	if !ok {
		return nil, ErrUnknownPackage
	}

	// Prefer the user id captured at checkout creation; fall back to an
	// email lookup for guest checkouts.
	userID := sess.Metadata["user_id"]
	if userID == "" && email != "" {
		if balance, err := s.balances.GetByEmail(email); err == nil {
			userID = balance.UserID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	purchase := &models.Purchase{
		StripeSessionID: sess.ID,
		UserID:          userID,
		Email:           email,
		PackageType:     packageType,
		Videos:          grant.Videos,
		Images:          grant.Images,
		Amount:          sess.AmountTotal,
		Paid:            true,
	}
	if sess.PaymentIntent != nil {
		purchase.StripePaymentID = sess.PaymentIntent.ID
	}

	if err := s.purchases.Create(purchase); err != nil {
		if errors.Is(err, repository.ErrDuplicateSession) {
			return &VerifyResult{
				CreditsAdded:   grant,
				UserMatched:    userID != "",
				AlreadyApplied: true,
				Message:        "Payment already verified",
			}, nil
		}
		return nil, err
	}

	result := &VerifyResult{CreditsAdded: grant}
	if userID != "" {
		// A buyer whose first action is a purchase has no ledger row yet;
		// materialize it before the grant lands.
		if _, err := s.balances.GetOrCreate(userID, email); err != nil {
			s.logger.Error("failed to ensure credit balance row",
				zap.String("session_id", sess.ID),
				zap.String("user_id", userID),
				zap.Error(err),
			)
			return nil, err
		}
		if err := s.balances.AddCredits(userID, grant.Videos, grant.Images); err != nil {
			// The purchase row exists but the grant did not land; surface
			// the error so the client retries against support, and leave
			// the record for reconciliation.
			s.logger.Error("failed to apply credit grant",
				zap.String("session_id", sess.ID),
				zap.String("user_id", userID),
				zap.Error(err),
			)
			return nil, err
		}
		result.UserMatched = true
		result.Message = "Payment verified and credits added"

		s.logger.Info("credits granted",
			zap.String("session_id", sess.ID),
			zap.String("user_id", userID),
			zap.String("package_type", packageType),
			zap.Int("videos", grant.Videos),
			zap.Int("images", grant.Images),
		)

		if s.receipts != nil && email != "" {
			_ = s.receipts.SendPurchaseReceipt(email, packageType, grant.Videos, grant.Images)
		}
	} else {
		result.Message = "Payment verified but no user account found"
		s.logger.Warn("paid session has no matching account",
			zap.String("session_id", sess.ID),
			zap.String("email", email),
		)
	}

	return result, nil
}

func (s *PaymentService) GetUserPurchaseHistory(userID string) ([]models.Purchase, error) {
	return s.purchases.GetUserPurchaseHistory(userID)
}
