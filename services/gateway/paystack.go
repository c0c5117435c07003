// Package gateway is the REST client for the payment processor.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"skillchain/apperrors"
	"skillchain/logger"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// Options configures a Client
type Options struct {
	BaseURL          string
	SecretKey        string
	Timeout          time.Duration
	RetryCount       int
	RetryWait        time.Duration
	BreakerFailures  int
	BreakerOpenAfter time.Duration
}

// Client talks to a Paystack-compatible API. It holds no per-transaction state.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker[*resty.Response]
	secret  string
	log     zerolog.Logger
}

var errServerSide = errors.New("gateway server error")

func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.BreakerFailures <= 0 {
		opts.BreakerFailures = 5
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetAuthToken(opts.SecretKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	failures := uint32(opts.BreakerFailures)
	breaker := gobreaker.NewCircuitBreaker[*resty.Response](gobreaker.Settings{
		Name:    "payment-gateway",
		Timeout: opts.BreakerOpenAfter,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
	})

	return &Client{
		http:    httpClient,
		breaker: breaker,
		secret:  opts.SecretKey,
		log:     logger.For("gateway"),
	}
}

// envelope is the common response wrapper of the processor API
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// InitializeRequest starts a hosted checkout. AmountMinor is in the smallest currency unit.
type InitializeRequest struct {
	Email             string         `json:"email"`
	AmountMinor       int64          `json:"amount"`
	Reference         string         `json:"reference,omitempty"`
	Currency          string         `json:"currency,omitempty"`
	CallbackURL       string         `json:"callback_url,omitempty"`
	Metadata          ChargeMetadata `json:"metadata"`
	Subaccount        string         `json:"subaccount,omitempty"`
	TransactionCharge int64          `json:"transaction_charge,omitempty"` // platform share, minor units
	Bearer            string         `json:"bearer,omitempty"`
}

type InitializeResult struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
}

// Initialize creates a transaction and returns the URL the customer is redirected to.
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	var out InitializeResult
	if err := c.call(ctx, http.MethodPost, "/transaction/initialize", nil, req, &out); err != nil {
		return nil, err
	}
	if out.Reference == "" {
		out.Reference = req.Reference
	}
	return &out, nil
}

// Verify fetches the current state of a transaction by reference.
func (c *Client) Verify(ctx context.Context, reference string) (*TransactionResult, error) {
	var out TransactionResult
	params := map[string]string{"reference": reference}
	if err := c.call(ctx, http.MethodGet, "/transaction/verify/{reference}", params, nil, &out); err != nil {
		return nil, err
	}
	if out.Reference == "" {
		out.Reference = reference
	}
	return &out, nil
}

type SubaccountRequest struct {
	BusinessName     string  `json:"business_name"`
	BankCode         string  `json:"settlement_bank"`
	AccountNumber    string  `json:"account_number"`
	PercentageCharge float64 `json:"percentage_charge"`
}

type SubaccountResult struct {
	SubaccountCode string `json:"subaccount_code"`
	BusinessName   string `json:"business_name"`
}

// CreateSubaccount registers an instructor's settlement account for split payments.
func (c *Client) CreateSubaccount(ctx context.Context, req SubaccountRequest) (*SubaccountResult, error) {
	var out SubaccountResult
	if err := c.call(ctx, http.MethodPost, "/subaccount", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// call performs one API request. Path parameters are escaped into the
// {name} placeholders of path.
func (c *Client) call(ctx context.Context, method, path string, pathParams map[string]string, body any, out any) error {
	resp, err := c.breaker.Execute(func() (*resty.Response, error) {
		r := c.http.R().SetContext(ctx).SetPathParams(pathParams)
		if body != nil {
			r.SetBody(body)
		}
		resp, err := r.Execute(method, path)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return resp, errServerSide
		}
		return resp, nil
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.log.Warn().Str("path", path).Msg("circuit open, refusing gateway call")
		return &apperrors.GatewayError{StatusCode: http.StatusServiceUnavailable, Message: "payment gateway unavailable"}
	case errors.Is(err, errServerSide):
		return &apperrors.GatewayError{StatusCode: resp.StatusCode(), Message: remoteMessage(resp.Body(), resp.Status())}
	case err != nil:
		c.log.Error().Err(err).Str("path", path).Msg("gateway request failed")
		return &apperrors.GatewayError{Message: err.Error()}
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return &apperrors.GatewayError{StatusCode: resp.StatusCode(), Message: "invalid gateway response"}
	}
	if resp.IsError() || !env.Status {
		msg := env.Message
		if msg == "" {
			msg = resp.Status()
		}
		return &apperrors.GatewayError{StatusCode: resp.StatusCode(), Message: msg}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &apperrors.GatewayError{StatusCode: resp.StatusCode(), Message: fmt.Sprintf("decode %s: %v", path, err)}
		}
	}
	return nil
}

func remoteMessage(body []byte, fallback string) string {
	var env envelope
	if json.Unmarshal(body, &env) == nil && env.Message != "" {
		return env.Message
	}
	return fallback
}
