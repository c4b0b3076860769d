package email

import (
	"fmt"

	"github.com/resendlabs/resend-go"
	"go.uber.org/zap"
)

type EmailService struct {
	client   *resend.Client
	from     string
	fromName string
	logger   *zap.Logger
}

func NewEmailService(apiKey, from, fromName string, logger *zap.Logger) *EmailService {
	return &EmailService{
		client:   resend.NewClient(apiKey),
		from:     from,
		fromName: fromName,
		logger:   logger,
	}
}

// SendPurchaseReceipt mails a credit purchase confirmation. Callers treat
// this as best-effort; a lost receipt never rolls back a grant.
func (s *EmailService) SendPurchaseReceipt(to, packageType string, videos, images int) error {
	html := fmt.Sprintf(
		`<h2>Thank you for your purchase!</h2>
<p>Your <strong>%s</strong> package is active.</p>
<p>%d video credits and %d image credits have been added to your account.</p>`,
		packageType, videos, images,
	)

	params := &resend.SendEmailRequest{
		From:    s.fromName + " <" + s.from + ">",
		To:      []string{to},
		Subject: "Your Vintage AI credits are ready",
		Html:    html,
	}

	resp, err := s.client.Emails.Send(params)
	if err != nil {
		s.logger.Warn("failed to send purchase receipt",
			zap.String("to", to),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("purchase receipt sent",
		zap.String("to", to),
		zap.String("email_id", resp.Id),
	)
	return nil
}
