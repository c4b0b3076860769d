package logger

import (
	"os"

	"go.uber.org/zap"
)

// New builds the process logger. Development gets the human console
// encoder, anything else the production JSON encoder.
func New() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
