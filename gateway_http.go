package authflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const defaultIdentityEndpoint = "https://identitytoolkit.googleapis.com/v1"

// HTTPGatewayConfig configures [HTTPGateway].
type HTTPGatewayConfig struct {
	// APIKey is the identity-provider browser key appended to every request.
	APIKey string

	// Endpoint overrides the provider base URL. Tests point this at a local
	// server; empty means the production endpoint.
	Endpoint string

	// HTTPClient overrides http.DefaultClient.
	HTTPClient *http.Client
}

// HTTPGateway is an [IdentityGateway] backed by the Identity Toolkit REST
// API. Provider failures come back as *GatewayError with the provider's
// status string collapsed to the engine's code constants; transport failures
// map to CodeNetworkFailure.
//
// The provider is stateless: SignOut is local credential disposal and always
// succeeds.
type HTTPGateway struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewHTTPGateway creates an HTTPGateway from cfg.
func NewHTTPGateway(cfg HTTPGatewayConfig) (*HTTPGateway, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("api key required")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultIdentityEndpoint
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPGateway{
		apiKey:   cfg.APIKey,
		endpoint: strings.TrimSuffix(endpoint, "/"),
		client:   client,
	}, nil
}

type identityResponse struct {
	IDToken       string `json:"idToken"`
	LocalID       string `json:"localId"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName"`
	EmailVerified bool   `json:"emailVerified"`
}

type lookupResponse struct {
	Users []struct {
		LocalID       string `json:"localId"`
		Email         string `json:"email"`
		DisplayName   string `json:"displayName"`
		EmailVerified bool   `json:"emailVerified"`
	} `json:"users"`
}

type restErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateIdentity provisions a new identity via accounts:signUp and returns it
// signed in.
func (g *HTTPGateway) CreateIdentity(ctx context.Context, email, password string) (*Identity, error) {
	var resp identityResponse
	err := g.post(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return g.identityFrom(resp), nil
}

// UpdateDisplayName sets the display name via accounts:update using the
// identity's session token.
func (g *HTTPGateway) UpdateDisplayName(ctx context.Context, id *Identity, name string) error {
	var resp identityResponse
	err := g.post(ctx, "accounts:update", map[string]any{
		"idToken":           id.Token,
		"displayName":       name,
		"returnSecureToken": false,
	}, &resp)
	if err != nil {
		return err
	}
	id.DisplayName = name
	return nil
}

// SignIn authenticates via accounts:signInWithPassword.
func (g *HTTPGateway) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	var resp identityResponse
	err := g.post(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return g.identityFrom(resp), nil
}

// SignOut discards nothing provider-side; the caller drops the token.
func (g *HTTPGateway) SignOut(ctx context.Context) error {
	return nil
}

// Reload refreshes the identity record via accounts:lookup, including the
// verification flag.
func (g *HTTPGateway) Reload(ctx context.Context, id *Identity) error {
	var resp lookupResponse
	err := g.post(ctx, "accounts:lookup", map[string]any{
		"idToken": id.Token,
	}, &resp)
	if err != nil {
		return err
	}
	if len(resp.Users) == 0 {
		return &GatewayError{Code: CodeUserNotFound, Message: "lookup returned no users"}
	}
	u := resp.Users[0]
	if u.LocalID != "" {
		id.UID = u.LocalID
	}
	if u.Email != "" {
		id.Email = u.Email
	}
	if u.DisplayName != "" {
		id.DisplayName = u.DisplayName
	}
	id.Verified = u.EmailVerified
	return nil
}

// SendVerificationEmail requests a VERIFY_EMAIL out-of-band code.
func (g *HTTPGateway) SendVerificationEmail(ctx context.Context, id *Identity) error {
	var resp identityResponse
	return g.post(ctx, "accounts:sendOobCode", map[string]any{
		"requestType": "VERIFY_EMAIL",
		"idToken":     id.Token,
	}, &resp)
}

// SendPasswordResetEmail requests a PASSWORD_RESET out-of-band code.
func (g *HTTPGateway) SendPasswordResetEmail(ctx context.Context, email string) error {
	var resp identityResponse
	return g.post(ctx, "accounts:sendOobCode", map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, &resp)
}

func (g *HTTPGateway) post(ctx context.Context, action string, body map[string]any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &GatewayError{Code: CodeUnknown, Message: err.Error()}
	}

	url := g.endpoint + "/" + action + "?key=" + g.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &GatewayError{Code: CodeUnknown, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		if isContextError(err) {
			return err
		}
		return &GatewayError{Code: CodeNetworkFailure, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &GatewayError{Code: CodeNetworkFailure, Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		var restErr restErrorResponse
		if err := json.Unmarshal(raw, &restErr); err != nil || restErr.Error.Message == "" {
			return &GatewayError{
				Code:    CodeUnknown,
				Message: fmt.Sprintf("%s: http %d", action, resp.StatusCode),
			}
		}
		return &GatewayError{
			Code:    mapRESTErrorMessage(restErr.Error.Message),
			Message: restErr.Error.Message,
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &GatewayError{Code: CodeUnknown, Message: err.Error()}
	}
	return nil
}

// identityFrom builds an Identity from a sign-up or sign-in response,
// backfilling missing fields from the ID token's claims. Some provider tiers
// omit localId or email in the response body while always embedding them in
// the token.
func (g *HTTPGateway) identityFrom(resp identityResponse) *Identity {
	id := &Identity{
		UID:         resp.LocalID,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
		Verified:    resp.EmailVerified,
		Token:       resp.IDToken,
	}
	if id.UID != "" && id.Email != "" {
		return id
	}

	claims := jwt.MapClaims{}
	// The token is only mined for claims here, never trusted for
	// authorization, so skipping signature verification is sound.
	if _, _, err := jwt.NewParser().ParseUnverified(resp.IDToken, claims); err != nil {
		return id
	}
	if id.UID == "" {
		if uid, ok := claims["user_id"].(string); ok {
			id.UID = uid
		} else if sub, ok := claims["sub"].(string); ok {
			id.UID = sub
		}
	}
	if id.Email == "" {
		if email, ok := claims["email"].(string); ok {
			id.Email = email
		}
	}
	if !id.Verified {
		if verified, ok := claims["email_verified"].(bool); ok {
			id.Verified = verified
		}
	}
	return id
}

// mapRESTErrorMessage collapses the provider's SCREAMING_SNAKE status strings
// into the engine's code constants. Statuses sometimes carry a trailing
// detail after " : ", so matching is by prefix.
func mapRESTErrorMessage(message string) string {
	status := message
	if i := strings.IndexByte(status, ' '); i > 0 {
		status = status[:i]
	}
	switch status {
	case "EMAIL_EXISTS":
		return CodeEmailInUse
	case "INVALID_EMAIL", "MISSING_EMAIL":
		return CodeInvalidEmail
	case "WEAK_PASSWORD":
		return CodeWeakPassword
	case "INVALID_LOGIN_CREDENTIALS":
		return CodeInvalidCredential
	case "EMAIL_NOT_FOUND":
		return CodeUserNotFound
	case "INVALID_PASSWORD":
		return CodeWrongPassword
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return CodeTooManyRequests
	default:
		return CodeUnknown
	}
}
