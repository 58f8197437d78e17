package authflow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

type restCall struct {
	action string
	body   map[string]any
}

// newRESTServer serves canned responses per action and records every call.
func newRESTServer(t *testing.T, responses map[string]func(body map[string]any) (int, any)) (*httptest.Server, *[]restCall) {
	t.Helper()

	calls := &[]restCall{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key on %s", r.URL.Path)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad request body: %v", err)
		}

		action := r.URL.Path[1:]
		*calls = append(*calls, restCall{action: action, body: body})

		handler, ok := responses[action]
		if !ok {
			t.Errorf("unexpected action %q", action)
			w.WriteHeader(http.StatusNotFound)
			return
		}

		status, payload := handler(body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(server.Close)
	return server, calls
}

func newTestHTTPGateway(t *testing.T, endpoint string) *HTTPGateway {
	t.Helper()

	gw, err := NewHTTPGateway(HTTPGatewayConfig{
		APIKey:   "test-key",
		Endpoint: endpoint,
	})
	if err != nil {
		t.Fatalf("NewHTTPGateway failed: %v", err)
	}
	return gw
}

func restError(status int, message string) (int, any) {
	return status, map[string]any{
		"error": map[string]any{"message": message},
	}
}

func TestHTTPGatewayCreateIdentity(t *testing.T) {
	server, calls := newRESTServer(t, map[string]func(map[string]any) (int, any){
		"accounts:signUp": func(body map[string]any) (int, any) {
			if body["email"] != "dana@example.com" {
				t.Errorf("unexpected email %v", body["email"])
			}
			return http.StatusOK, map[string]any{
				"idToken": "token-1",
				"localId": "uid-1",
				"email":   "dana@example.com",
			}
		},
	})

	gw := newTestHTTPGateway(t, server.URL)
	id, err := gw.CreateIdentity(context.Background(), "dana@example.com", "hunter22")
	if err != nil {
		t.Fatalf("CreateIdentity failed: %v", err)
	}
	if id.UID != "uid-1" || id.Email != "dana@example.com" || id.Token != "token-1" {
		t.Fatalf("unexpected identity %+v", id)
	}
	if len(*calls) != 1 {
		t.Fatalf("expected one call, got %d", len(*calls))
	}
}

func TestHTTPGatewayRESTErrorMapping(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"EMAIL_EXISTS", CodeEmailInUse},
		{"INVALID_EMAIL", CodeInvalidEmail},
		{"MISSING_EMAIL", CodeInvalidEmail},
		{"WEAK_PASSWORD : Password should be at least 6 characters", CodeWeakPassword},
		{"INVALID_LOGIN_CREDENTIALS", CodeInvalidCredential},
		{"EMAIL_NOT_FOUND", CodeUserNotFound},
		{"INVALID_PASSWORD", CodeWrongPassword},
		{"TOO_MANY_ATTEMPTS_TRY_LATER : Try again later", CodeTooManyRequests},
		{"SOMETHING_NEW", CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			server, _ := newRESTServer(t, map[string]func(map[string]any) (int, any){
				"accounts:signUp": func(map[string]any) (int, any) {
					return restError(http.StatusBadRequest, tt.message)
				},
			})

			gw := newTestHTTPGateway(t, server.URL)
			_, err := gw.CreateIdentity(context.Background(), "dana@example.com", "hunter22")

			var ge *GatewayError
			if !errors.As(err, &ge) {
				t.Fatalf("expected *GatewayError, got %v", err)
			}
			if ge.Code != tt.want {
				t.Fatalf("message %q: got code %q, want %q", tt.message, ge.Code, tt.want)
			}
		})
	}
}

func TestHTTPGatewaySignInBackfillsFromToken(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id":        "uid-from-token",
		"email":          "dana@example.com",
		"email_verified": true,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("token build failed: %v", err)
	}

	server, _ := newRESTServer(t, map[string]func(map[string]any) (int, any){
		"accounts:signInWithPassword": func(map[string]any) (int, any) {
			// Response body omits localId and email; only the token carries them.
			return http.StatusOK, map[string]any{"idToken": token}
		},
	})

	gw := newTestHTTPGateway(t, server.URL)
	id, err := gw.SignIn(context.Background(), "dana@example.com", "hunter22")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if id.UID != "uid-from-token" {
		t.Fatalf("expected uid from token claims, got %q", id.UID)
	}
	if id.Email != "dana@example.com" {
		t.Fatalf("expected email from token claims, got %q", id.Email)
	}
	if !id.Verified {
		t.Fatal("expected verified flag from token claims")
	}
}

func TestHTTPGatewayReload(t *testing.T) {
	server, calls := newRESTServer(t, map[string]func(map[string]any) (int, any){
		"accounts:lookup": func(body map[string]any) (int, any) {
			if body["idToken"] != "token-1" {
				t.Errorf("unexpected idToken %v", body["idToken"])
			}
			return http.StatusOK, map[string]any{
				"users": []map[string]any{{
					"localId":       "uid-1",
					"email":         "dana@example.com",
					"displayName":   "Maya",
					"emailVerified": true,
				}},
			}
		},
	})

	gw := newTestHTTPGateway(t, server.URL)
	id := &Identity{UID: "uid-1", Email: "dana@example.com", Token: "token-1"}

	if err := gw.Reload(context.Background(), id); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if !id.Verified {
		t.Fatal("expected verified flag refreshed")
	}
	if id.DisplayName != "Maya" {
		t.Fatalf("expected display name refreshed, got %q", id.DisplayName)
	}
	if len(*calls) != 1 {
		t.Fatalf("expected one lookup, got %d", len(*calls))
	}
}

func TestHTTPGatewayReloadNoUsers(t *testing.T) {
	server, _ := newRESTServer(t, map[string]func(map[string]any) (int, any){
		"accounts:lookup": func(map[string]any) (int, any) {
			return http.StatusOK, map[string]any{"users": []map[string]any{}}
		},
	})

	gw := newTestHTTPGateway(t, server.URL)
	err := gw.Reload(context.Background(), &Identity{Token: "token-1"})

	var ge *GatewayError
	if !errors.As(err, &ge) || ge.Code != CodeUserNotFound {
		t.Fatalf("expected user-not-found, got %v", err)
	}
}

func TestHTTPGatewayOobCodeRequests(t *testing.T) {
	server, calls := newRESTServer(t, map[string]func(map[string]any) (int, any){
		"accounts:sendOobCode": func(map[string]any) (int, any) {
			return http.StatusOK, map[string]any{"email": "dana@example.com"}
		},
	})

	gw := newTestHTTPGateway(t, server.URL)
	ctx := context.Background()

	if err := gw.SendVerificationEmail(ctx, &Identity{Token: "token-1"}); err != nil {
		t.Fatalf("SendVerificationEmail failed: %v", err)
	}
	if err := gw.SendPasswordResetEmail(ctx, "dana@example.com"); err != nil {
		t.Fatalf("SendPasswordResetEmail failed: %v", err)
	}

	if len(*calls) != 2 {
		t.Fatalf("expected two calls, got %d", len(*calls))
	}
	if (*calls)[0].body["requestType"] != "VERIFY_EMAIL" {
		t.Fatalf("unexpected first request type %v", (*calls)[0].body["requestType"])
	}
	if (*calls)[1].body["requestType"] != "PASSWORD_RESET" {
		t.Fatalf("unexpected second request type %v", (*calls)[1].body["requestType"])
	}
	if (*calls)[1].body["email"] != "dana@example.com" {
		t.Fatalf("unexpected reset email %v", (*calls)[1].body["email"])
	}
}

func TestHTTPGatewayUpdateDisplayName(t *testing.T) {
	server, _ := newRESTServer(t, map[string]func(map[string]any) (int, any){
		"accounts:update": func(body map[string]any) (int, any) {
			if body["displayName"] != "Maya" {
				t.Errorf("unexpected display name %v", body["displayName"])
			}
			return http.StatusOK, map[string]any{"displayName": "Maya"}
		},
	})

	gw := newTestHTTPGateway(t, server.URL)
	id := &Identity{UID: "uid-1", Token: "token-1"}

	if err := gw.UpdateDisplayName(context.Background(), id, "Maya"); err != nil {
		t.Fatalf("UpdateDisplayName failed: %v", err)
	}
	if id.DisplayName != "Maya" {
		t.Fatalf("expected display name applied locally, got %q", id.DisplayName)
	}
}

func TestHTTPGatewayNetworkFailure(t *testing.T) {
	server, _ := newRESTServer(t, nil)
	endpoint := server.URL
	server.Close()

	gw := newTestHTTPGateway(t, endpoint)
	_, err := gw.SignIn(context.Background(), "dana@example.com", "hunter22")

	var ge *GatewayError
	if !errors.As(err, &ge) || ge.Code != CodeNetworkFailure {
		t.Fatalf("expected network-request-failed, got %v", err)
	}
}

func TestHTTPGatewaySignOutIsLocal(t *testing.T) {
	// No server at all: sign-out never touches the network.
	gw := newTestHTTPGateway(t, "http://127.0.0.1:1")
	if err := gw.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
}

func TestNewHTTPGatewayRequiresAPIKey(t *testing.T) {
	if _, err := NewHTTPGateway(HTTPGatewayConfig{}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
