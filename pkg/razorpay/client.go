package razorpay

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	razorpaysdk "github.com/razorpay/razorpay-go"

	"github.com/adoptly/adoptly-backend/pkg/config"
	pkgerrors "github.com/adoptly/adoptly-backend/pkg/errors"
	"github.com/adoptly/adoptly-backend/pkg/logger"
)

var (
	errKeyIDRequired     = errors.New("razorpay key id is required")
	errKeySecretRequired = errors.New("razorpay key secret is required")
	errLoggerRequired    = errors.New("razorpay logger is required")
)

// Client wraps the Razorpay SDK with centralized auth, logging, and error
// mapping. It only creates gateway orders; payment completion is verified
// locally against the signing secret, never by fetching the payment back.
type Client struct {
	sdk       *razorpaysdk.Client
	keyID     string
	keySecret string
	currency  string
	logger    *logger.Logger
}

// OrderCreateParams carries the inputs for a gateway order.
type OrderCreateParams struct {
	AmountCents int
	Currency    string
	Receipt     string
	Notes       map[string]interface{}
}

// NewClient initializes the Razorpay wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}

	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errKeySecretRequired
	}

	sdk := razorpaysdk.NewClient(keyID, keySecret)
	if cfg.RequestTimeout > 0 {
		// The SDK takes whole seconds as int16; clamp rather than overflow.
		secs := int64(cfg.RequestTimeout.Seconds())
		if secs > math.MaxInt16 {
			secs = math.MaxInt16
		}
		sdk.SetTimeout(int16(secs))
	}

	c := &Client{
		sdk:       sdk,
		keyID:     keyID,
		keySecret: keySecret,
		currency:  strings.ToUpper(strings.TrimSpace(cfg.Currency)),
		logger:    logg,
	}

	logg.Info(ctx, "razorpay client initialized")
	return c, nil
}

// KeyID returns the public key identifier for checkout clients.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// SigningSecret returns the secret used to verify completion signatures.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.keySecret
}

// Currency reports the configured settlement currency.
func (c *Client) Currency() string {
	if c == nil || c.currency == "" {
		return "INR"
	}
	return c.currency
}

// CreateOrder opens a gateway order for the given amount and returns its id.
// The SDK call is bounded by the timeout configured at construction; a timeout
// surfaces as a dependency error like any other gateway failure.
func (c *Client) CreateOrder(ctx context.Context, params OrderCreateParams) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "gateway call aborted")
	}
	if params.AmountCents <= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	currency := params.Currency
	if currency == "" {
		currency = c.Currency()
	}

	data := map[string]interface{}{
		"amount":   params.AmountCents,
		"currency": currency,
		"receipt":  params.Receipt,
	}
	if len(params.Notes) > 0 {
		data["notes"] = params.Notes
	}

	c.log(ctx, "request", "create_order", map[string]any{
		"amount":   params.AmountCents,
		"currency": currency,
		"receipt":  params.Receipt,
	})

	body, err := c.sdk.Order.Create(data, nil)
	if err != nil {
		c.log(ctx, "error", "create_order", map[string]any{"error": err.Error()})
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gateway order")
	}

	orderID, ok := body["id"].(string)
	if !ok || orderID == "" {
		c.log(ctx, "error", "create_order", map[string]any{"error": "missing order id"})
		return "", pkgerrors.New(pkgerrors.CodeDependency, "gateway response missing order id")
	}

	c.log(ctx, "response", "create_order", map[string]any{"order_id": orderID})
	return orderID, nil
}

func (c *Client) log(ctx context.Context, phase, operation string, fields map[string]any) {
	if c.logger == nil {
		return
	}
	merged := map[string]any{
		"gateway":   "razorpay",
		"operation": operation,
	}
	for k, v := range fields {
		merged[k] = v
	}
	ctx = c.logger.WithFields(ctx, merged)
	c.logger.Info(ctx, fmt.Sprintf("razorpay.%s.%s", operation, phase))
}
