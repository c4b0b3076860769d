package service

import (
	"errors"
	"strings"
)

var (
	ErrPromptRequired           = errors.New("prompt is required")
	ErrImageInputRequired       = errors.New("prompt or image is required")
	ErrInsufficientVideoCredits = errors.New("insufficient video credits")
	ErrInsufficientImageCredits = errors.New("insufficient image credits")
	ErrJobNotFound              = errors.New("generation not found")
	ErrInvalidPriceID           = errors.New("invalid price id")
	ErrPackageMismatch          = errors.New("price id does not match package type")
	ErrUnknownPackage           = errors.New("unknown package type")
	ErrPaymentNotCompleted      = errors.New("payment not completed")
)

// providerSaysInsufficientCredits spots the gateway's credit-exhausted
// message so the UI can show its purchase call-to-action instead of a
// generic failure.
func providerSaysInsufficientCredits(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "insufficient") && strings.Contains(lower, "credit")
}
