package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"rentora/internal/app/policies"
	"rentora/internal/domain/shared/money"
)

// HTTPGateway opens checkout sessions against an external payment provider
// over plain HTTP.
type HTTPGateway struct {
	Client   *http.Client
	Endpoint string
	APIKey   string
	Logger   *slog.Logger
}

type chargeRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type chargeResponse struct {
	TransactionRef string `json:"transaction_ref"`
	RedirectURL    string `json:"redirect_url"`
}

func (g *HTTPGateway) Initiate(ctx context.Context, amount money.Money, metadata map[string]string) (policies.PaymentInitiation, error) {
	var zero policies.PaymentInitiation

	if g == nil || g.Client == nil {
		return zero, errors.New("payments: http client not configured")
	}
	if g.Endpoint == "" {
		return zero, errors.New("payments: gateway endpoint not configured")
	}

	body, err := json.Marshal(chargeRequest{Amount: amount.Amount, Currency: amount.Currency, Metadata: metadata})
	if err != nil {
		return zero, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Endpoint, bytes.NewReader(body))
	if err != nil {
		return zero, err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.APIKey)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if g.Logger != nil {
			g.Logger.Error("payment gateway rejected charge",
				slog.Int("status", resp.StatusCode),
				slog.String("body", string(snippet)))
		}
		return zero, fmt.Errorf("payments: gateway returned status %d", resp.StatusCode)
	}

	var parsed chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return zero, err
	}
	if parsed.TransactionRef == "" {
		return zero, errors.New("payments: gateway response missing transaction ref")
	}
	return policies.PaymentInitiation{TransactionRef: parsed.TransactionRef, RedirectURL: parsed.RedirectURL}, nil
}

var _ policies.PaymentGateway = (*HTTPGateway)(nil)

// CallbackPayload is the wire shape of gateway webhooks.
type CallbackPayload struct {
	TransactionRef string `json:"transaction_ref"`
	Status         string `json:"status"`
	Reason         string `json:"reason,omitempty"`
}

// ParseCallback normalizes a webhook body into a payment result.
func ParseCallback(body []byte) (policies.PaymentResult, error) {
	var payload CallbackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return policies.PaymentResult{}, err
	}
	if payload.TransactionRef == "" {
		return policies.PaymentResult{}, errors.New("payments: callback missing transaction ref")
	}
	switch policies.PaymentStatus(payload.Status) {
	case policies.PaymentSucceeded, policies.PaymentFailed, policies.PaymentExpired:
	default:
		return policies.PaymentResult{}, fmt.Errorf("payments: unknown callback status %q", payload.Status)
	}
	return policies.PaymentResult{
		TransactionRef: payload.TransactionRef,
		Status:         policies.PaymentStatus(payload.Status),
		Reason:         payload.Reason,
	}, nil
}
