// Package gateway holds the outbound HTTP client for the payment gateway's
// REST API. It is the only code in the engine that talks to the gateway.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"order-settlement/config"
	"order-settlement/internal/core/ports"
	"order-settlement/pkg/apperror"
	"order-settlement/pkg/logger"

	"github.com/rs/zerolog"
)

// Client implements ports.GatewayClient against a razorpay-style REST API.
// Requests carry HTTP basic auth (key id / key secret) and a bounded
// timeout from config. The client performs no retries; redelivery and
// retry policy live with the caller.
type Client struct {
	baseURL string
	keyID   string
	secret  string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a gateway client from config.
func NewClient(cfg config.GatewayConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		keyID:   cfg.KeyID,
		secret:  cfg.KeySecret,
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     logger.Component(log, "gateway"),
	}
}

type intentRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type intentResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type paymentResponse struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	Method           string `json:"method"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

type refundRequest struct {
	Amount int64             `json:"amount"`
	Notes  map[string]string `json:"notes,omitempty"`
}

type refundResponse struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateIntent opens a payment intent. The receipt ref deduplicates on the
// gateway side, so replaying the same request cannot double-charge.
func (c *Client) CreateIntent(ctx context.Context, req ports.CreateIntentRequest) (*ports.GatewayIntent, error) {
	body := intentRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.ReceiptRef,
		Notes:    req.Notes,
	}

	var resp intentResponse
	if err := c.do(ctx, http.MethodPost, "/v1/orders", body, &resp); err != nil {
		return nil, err
	}
	return &ports.GatewayIntent{
		IntentID: resp.ID,
		Amount:   resp.Amount,
		Currency: resp.Currency,
	}, nil
}

// FetchPayment reads the gateway's authoritative view of a payment.
func (c *Client) FetchPayment(ctx context.Context, gatewayPaymentID string) (*ports.GatewayPayment, error) {
	var resp paymentResponse
	path := "/v1/payments/" + gatewayPaymentID
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &ports.GatewayPayment{
		PaymentID:        resp.ID,
		IntentID:         resp.OrderID,
		Amount:           resp.Amount,
		Currency:         resp.Currency,
		Status:           resp.Status,
		Method:           resp.Method,
		ErrorCode:        resp.ErrorCode,
		ErrorDescription: resp.ErrorDescription,
	}, nil
}

// CreateRefund asks the gateway to refund a captured payment.
func (c *Client) CreateRefund(ctx context.Context, gatewayPaymentID string, amount int64, notes map[string]string) (*ports.GatewayRefund, error) {
	body := refundRequest{Amount: amount, Notes: notes}

	var resp refundResponse
	path := "/v1/payments/" + gatewayPaymentID + "/refund"
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		var appErr *apperror.AppError
		// A 4xx on the refund endpoint is a refund rejection, not a
		// generic gateway rejection.
		if errors.As(err, &appErr) && appErr.Code == apperror.CodeGatewayRejected {
			return nil, apperror.ErrRefundRejected(appErr.Err)
		}
		return nil, err
	}
	return &ports.GatewayRefund{
		RefundID: resp.ID,
		Amount:   resp.Amount,
		Status:   resp.Status,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal gateway request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.secret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).
			Msg("gateway request failed")
		return apperror.ErrGatewayUnavailable(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperror.ErrGatewayUnavailable(fmt.Errorf("read gateway response: %w", err))
	}

	switch {
	case resp.StatusCode >= 500:
		c.log.Warn().Int("status", resp.StatusCode).Str("path", path).
			Msg("gateway server error")
		return apperror.ErrGatewayUnavailable(fmt.Errorf("gateway returned %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		var gwErr errorResponse
		_ = json.Unmarshal(raw, &gwErr)
		c.log.Warn().Int("status", resp.StatusCode).Str("path", path).
			Str("gateway_code", gwErr.Error.Code).
			Msg("gateway rejected request")
		return apperror.ErrGatewayRejected(
			fmt.Errorf("gateway returned %d: %s %s", resp.StatusCode, gwErr.Error.Code, gwErr.Error.Description))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return apperror.ErrGatewayUnavailable(fmt.Errorf("decode gateway response: %w", err))
	}
	return nil
}
