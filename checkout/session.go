package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"goflare.io/storefront/models"
)

// DefaultSessionEndpoint is the hosted checkout sessions endpoint.
const DefaultSessionEndpoint = "https://api.stripe.com/v1/checkout/sessions"

var (
	// ErrClientUnavailable means the payment client was never configured with
	// a secret key; the checkout action is a no-op beyond logging.
	ErrClientUnavailable = errors.New("payment client unavailable")

	// ErrSessionCreation covers a rejected session request.
	ErrSessionCreation = errors.New("checkout session creation failed")

	// ErrNoRedirectURL means the provider accepted the request but returned no
	// redirect target.
	ErrNoRedirectURL = errors.New("checkout session has no redirect url")
)

// SessionCreator opens a hosted checkout session and returns the redirect URL.
type SessionCreator interface {
	CreateSession(ctx context.Context, req models.CheckoutSessionRequest) (string, error)
}

var _ SessionCreator = (*SessionClient)(nil)

// SessionClient posts the flattened session request to the payments API. The
// secret key lives server-side only; it is never handed to a browser.
type SessionClient struct {
	httpClient *http.Client
	endpoint   string
	secretKey  string
	logger     *zap.Logger
}

func NewSessionClient(endpoint, secretKey string, logger *zap.Logger) *SessionClient {
	if endpoint == "" {
		endpoint = DefaultSessionEndpoint
	}
	return &SessionClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   endpoint,
		secretKey:  secretKey,
		logger:     logger,
	}
}

type sessionResponse struct {
	URL   string `json:"url"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateSession performs a single POST of the URL-encoded form. Failures are
// terminal for the triggering checkout attempt; the caller stays on the cart
// view and a new attempt requires a new user action. Cancelling ctx aborts the
// in-flight request.
func (c *SessionClient) CreateSession(ctx context.Context, req models.CheckoutSessionRequest) (string, error) {
	if c.secretKey == "" {
		c.logger.Error("Payment client has no secret key configured")
		return "", ErrClientUnavailable
	}

	body := strings.NewReader(req.Flatten().Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("failed to build session request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("Checkout session request failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrSessionCreation, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var session sessionResponse
	if err = json.NewDecoder(resp.Body).Decode(&session); err != nil {
		c.logger.Error("Failed to decode session response", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrSessionCreation, err)
	}

	if session.Error != nil {
		c.logger.Error("Payments API rejected the session",
			zap.Int("status", resp.StatusCode),
			zap.String("message", session.Error.Message))
		return "", fmt.Errorf("%w: %s", ErrSessionCreation, session.Error.Message)
	}

	if session.URL == "" {
		c.logger.Error("Session created without a redirect url", zap.Int("status", resp.StatusCode))
		return "", ErrNoRedirectURL
	}

	return session.URL, nil
}
