package policies

import (
	"context"

	"rentora/internal/domain/shared/money"
)

// PaymentInitiation is returned by the gateway when a checkout session is opened.
type PaymentInitiation struct {
	TransactionRef string
	RedirectURL    string
}

// PaymentGateway abstracts the external payment provider.
type PaymentGateway interface {
	Initiate(ctx context.Context, amount money.Money, metadata map[string]string) (PaymentInitiation, error)
}

// PaymentStatus values carried by gateway callbacks.
type PaymentStatus string

const (
	PaymentSucceeded PaymentStatus = "SUCCEEDED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentExpired   PaymentStatus = "EXPIRED"
)

// PaymentResult is the normalized webhook payload handed to the application.
type PaymentResult struct {
	TransactionRef string
	Status         PaymentStatus
	Reason         string
}
