package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/keraflour/storefront/internal/domain"
)

// minorUnitFactor converts rupees to paise for the processor.
var minorUnitFactor = decimal.NewFromInt(100)

// StripeGateway is the HTTP adapter for a Stripe-style checkout-session
// API: form-encoded session creation, JSON session retrieval, secret key
// as a bearer token.
type StripeGateway struct {
	baseURL    string
	secretKey  string
	successURL string
	cancelURL  string
	httpClient *http.Client
}

// NewStripeGateway builds the adapter. successURL should contain the
// {CHECKOUT_SESSION_ID} placeholder the processor substitutes on redirect.
func NewStripeGateway(baseURL, secretKey, successURL, cancelURL string) *StripeGateway {
	return &StripeGateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		successURL: successURL,
		cancelURL:  cancelURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *StripeGateway) CreateSession(ctx context.Context, order *domain.Order) (*Session, error) {
	// One aggregated line item for the whole order. The processor only
	// needs the charge amount; the itemised snapshot lives in our order.
	amount := order.TotalAmount.Mul(minorUnitFactor).IntPart()

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", g.successURL)
	form.Set("cancel_url", g.cancelURL)
	form.Set("client_reference_id", order.ID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", "inr")
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(amount, 10))
	form.Set("line_items[0][price_data][product_data][name]", "Flour order "+order.ID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("payments: build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+g.secretKey)

	return g.do(req)
}

func (g *StripeGateway) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.baseURL+"/v1/checkout/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, fmt.Errorf("payments: build session lookup: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)

	return g.do(req)
}

func (g *StripeGateway) do(req *http.Request) (*Session, error) {
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payments: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("payments: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("payments: %s %s: processor returned %d: %s",
			req.Method, req.URL.Path, resp.StatusCode, processorErrMessage(body))
	}

	var sess Session
	if err := json.Unmarshal(body, &sess); err != nil {
		return nil, fmt.Errorf("payments: decode session: %w", err)
	}
	return &sess, nil
}

// processorErrMessage pulls the human message out of the processor's
// {"error": {"message": ...}} envelope, falling back to the raw body.
func processorErrMessage(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
