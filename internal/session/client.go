package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/PavaniTiago/jurista-ai-frontend/pkg/kv"
	"github.com/PavaniTiago/jurista-ai-frontend/pkg/logger"
)

// sessionSlot is the persisted storage key. Note this is not scoped per
// user: on a shared state directory a second account signing in replaces,
// and until then sees, the first account's session. Same trade-off the web
// client made with browser storage.
const sessionSlot = "session"

const defaultExpirySkew = 30 * time.Second

// Config connects the client to a password-grant identity provider.
type Config struct {
	// AuthURL is the provider's auth base, e.g. https://x.example.co/auth/v1.
	AuthURL string
	// AnonKey is the provider's public API key, sent on every auth call.
	AnonKey string
	// ExpirySkew is how early a token counts as expired. Defaults to 30s.
	ExpirySkew time.Duration
	// HTTPClient overrides the transport; nil means http.DefaultClient.
	HTTPClient *http.Client
}

// Client talks to the identity provider and persists the resulting session
// so it survives process restarts. It implements TokenSource for the API
// client.
type Client struct {
	cfg    Config
	http   *http.Client
	store  kv.Store
	logger logger.Logger

	mu       sync.Mutex
	current  *Session
	restored bool
}

// TokenSource is the capability the API client consumes: a bearer token or
// ErrNotAuthenticated.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

func NewClient(cfg Config, store kv.Store, log logger.Logger) *Client {
	if cfg.ExpirySkew <= 0 {
		cfg.ExpirySkew = defaultExpirySkew
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		cfg:    cfg,
		http:   httpClient,
		store:  store,
		logger: log,
	}
}

// tokenResponse is the provider's grant response shape.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

// SignIn exchanges credentials for a session and persists it.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	resp, err := c.grant(ctx, "password", body)
	if err != nil {
		return nil, err
	}

	sess := c.toSession(resp)
	c.mu.Lock()
	c.current = sess
	c.restored = true
	c.mu.Unlock()

	c.persist(ctx, sess)
	c.logger.Info("signed in", logger.String("email", sess.User.Email))
	return sess, nil
}

// SignOut drops the session and removes its persisted slot.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	c.current = nil
	c.restored = true
	c.mu.Unlock()

	if err := c.store.Delete(ctx, sessionSlot); err != nil {
		return fmt.Errorf("remove persisted session: %w", err)
	}
	return nil
}

// CurrentSession returns the live session, restoring it from storage on
// first use and refreshing it when the access token is about to expire. No
// session means ErrNotAuthenticated.
func (c *Client) CurrentSession(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	if !c.restored {
		c.current = c.restore(ctx)
		c.restored = true
	}
	sess := c.current
	c.mu.Unlock()

	if sess == nil {
		return nil, ErrNotAuthenticated
	}

	if !sess.Expired(c.cfg.ExpirySkew) {
		return sess, nil
	}

	if sess.RefreshToken == "" {
		return nil, ErrNotAuthenticated
	}

	refreshed, err := c.refresh(ctx, sess.RefreshToken)
	if err != nil {
		c.logger.Warn("session refresh failed", logger.Error(err))
		return nil, ErrNotAuthenticated
	}

	c.mu.Lock()
	c.current = refreshed
	c.mu.Unlock()
	c.persist(ctx, refreshed)

	return refreshed, nil
}

// AccessToken implements TokenSource.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	sess, err := c.CurrentSession(ctx)
	if err != nil {
		return "", err
	}
	return sess.AccessToken, nil
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (*Session, error) {
	body := map[string]string{"refresh_token": refreshToken}
	resp, err := c.grant(ctx, "refresh_token", body)
	if err != nil {
		return nil, err
	}
	return c.toSession(resp), nil
}

// grant posts to the provider's token endpoint. Error bodies are parsed
// defensively: a missing or unparsable body falls back to the HTTP status.
func (c *Client) grant(ctx context.Context, grantType string, body map[string]string) (*tokenResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode grant request: %w", err)
	}

	url := fmt.Sprintf("%s/token?grant_type=%s", c.cfg.AuthURL, grantType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build grant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.cfg.AnonKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var provider struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
			Msg              string `json:"msg"`
		}
		message := fmt.Sprintf("authentication failed (status %d)", resp.StatusCode)
		if err := json.NewDecoder(resp.Body).Decode(&provider); err == nil {
			switch {
			case provider.ErrorDescription != "":
				message = provider.ErrorDescription
			case provider.Msg != "":
				message = provider.Msg
			case provider.Error != "":
				message = provider.Error
			}
		}
		return nil, fmt.Errorf("%s", message)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("decode grant response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("identity provider returned no access token")
	}
	return &token, nil
}

// toSession prefers the JWT's own exp claim over expires_in; the claim is
// what the service actually enforces.
func (c *Client) toSession(resp *tokenResponse) *Session {
	expiresAt := time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	if claimed, ok := tokenExpiry(resp.AccessToken); ok {
		expiresAt = claimed
	}
	return &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		ExpiresAt:    expiresAt,
		User:         resp.User,
	}
}

// restore loads the persisted session. Any failure just means starting
// signed out.
func (c *Client) restore(ctx context.Context) *Session {
	data, err := c.store.Get(ctx, sessionSlot)
	if err != nil {
		if err != kv.ErrNotFound {
			c.logger.Warn("failed to read persisted session", logger.Error(err))
		}
		return nil
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		c.logger.Warn("failed to parse persisted session", logger.Error(err))
		return nil
	}
	if sess.AccessToken == "" {
		return nil
	}
	return &sess
}

func (c *Client) persist(ctx context.Context, sess *Session) {
	data, err := json.Marshal(sess)
	if err != nil {
		c.logger.Error("failed to encode session", logger.Error(err))
		return
	}
	if err := c.store.Set(ctx, sessionSlot, data); err != nil {
		c.logger.Error("failed to persist session", logger.Error(err))
	}
}

// tokenExpiry reads the exp claim without verifying the signature; only the
// provider can verify, the client just schedules refresh.
func tokenExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
