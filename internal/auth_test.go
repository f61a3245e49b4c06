package weverse

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestSession builds a session over an httptest server serving both the
// account service and the web API. The generous rate limit keeps tests fast.
func newTestSession(t *testing.T, handler http.Handler, creds Credentials) (*Session, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	api := NewAPI(srv.Client(), 6000, 100, nil)
	endpoints := Endpoints{AuthBase: srv.URL, APIBase: srv.URL + "/wapi/v1"}
	session, err := NewSession(api, endpoints, creds, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return session, srv
}

func writeTokens(w http.ResponseWriter, access, refresh string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"access_token":  access,
		"token_type":    "bearer",
		"expires_in":    3600,
		"refresh_token": refresh,
		"weMemberId":    7,
	})
}

func TestNewSessionRequiresCredentials(t *testing.T) {
	if _, err := NewSession(nil, Endpoints{}, Credentials{}, nil); err != ErrNoCredentials {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}
}

func TestNewSessionModeSelection(t *testing.T) {
	s, err := NewSession(nil, Endpoints{}, Credentials{Token: "tok"}, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if s.Mode() != ModeToken {
		t.Errorf("expected token mode, got %q", s.Mode())
	}

	s, err = NewSession(nil, Endpoints{}, Credentials{Username: "u", Password: "p"}, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if s.Mode() != ModePassword {
		t.Errorf("expected password mode, got %q", s.Mode())
	}
}

func TestLoginPasswordGrant(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		var payload loginPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode login payload: %v", err)
		}
		if payload.GrantType != "password" {
			t.Errorf("grant_type = %q", payload.GrantType)
		}
		if payload.ClientID != "weverse-test" {
			t.Errorf("client_id = %q", payload.ClientID)
		}
		if payload.Username != "fan@example.com" {
			t.Errorf("username = %q", payload.Username)
		}
		if payload.Password == "" || payload.Password == "hunter2" {
			t.Errorf("password must be encrypted, got %q", payload.Password)
		}
		writeTokens(w, "T", "R")
	})

	session, _ := newTestSession(t, mux, Credentials{Username: "fan@example.com", Password: "hunter2"})
	if err := session.Login(context.Background(), nil); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if !session.Authorized() {
		t.Error("session should be authorized after login")
	}
	if session.Mode() != ModeToken {
		t.Errorf("expected token mode after login, got %q", session.Mode())
	}
	if session.MemberID() != 7 {
		t.Errorf("member id = %d", session.MemberID())
	}
	if session.RefreshToken() != "R" {
		t.Errorf("refresh token = %q", session.RefreshToken())
	}
	if got := session.Headers()["Authorization"]; got != "Bearer T" {
		t.Errorf("Authorization = %q", got)
	}
	session.mu.Lock()
	if session.password != "" {
		t.Error("plaintext password retained after login")
	}
	session.mu.Unlock()
}

func TestLoginRejectedStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	session, _ := newTestSession(t, mux, Credentials{Username: "u", Password: "p"})
	err := session.Login(context.Background(), nil)
	if err == nil {
		t.Fatal("expected login error")
	}
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %T", err)
	}
	if authErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d", authErr.StatusCode)
	}
	if session.Authorized() {
		t.Error("session must not be authorized after a rejected login")
	}
}

func TestLoginRejectsMalformedCredentialShape(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		// missing refresh_token and member id
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"access_token": "T", "token_type": "bearer"})
	})

	session, _ := newTestSession(t, mux, Credentials{Username: "u", Password: "p"})
	if err := session.Login(context.Background(), nil); err == nil {
		t.Fatal("expected shape-check failure")
	}
	if session.Authorized() {
		t.Error("session must not adopt a malformed credential response")
	}
	if session.Mode() != ModePassword {
		t.Errorf("mode must stay password, got %q", session.Mode())
	}
}

func TestLoginWithoutPasswordCredentialsIsNoop(t *testing.T) {
	called := false
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	session, _ := newTestSession(t, mux, Credentials{Token: "tok"})
	if err := session.Login(context.Background(), nil); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if called {
		t.Error("token-mode login without credentials must not hit the wire")
	}
}

func TestLoginReplacesCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		var payload loginPayload
		json.NewDecoder(r.Body).Decode(&payload)
		if payload.Username != "new@example.com" {
			t.Errorf("username = %q", payload.Username)
		}
		writeTokens(w, "T2", "R2")
	})

	session, _ := newTestSession(t, mux, Credentials{Token: "stale"})
	err := session.Login(context.Background(), &Credentials{Username: "new@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got := session.Headers()["Authorization"]; got != "Bearer T2" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestCheckTokenAuthorizesOn200(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wapi/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		w.WriteHeader(http.StatusOK)
	})

	session, _ := newTestSession(t, mux, Credentials{Token: "tok"})
	if !session.CheckToken(context.Background()) {
		t.Fatal("expected token check to pass")
	}
	if !session.Authorized() {
		t.Error("session should be authorized")
	}
}

func TestCheckTokenRefusesPasswordMode(t *testing.T) {
	session, _ := newTestSession(t, http.NewServeMux(), Credentials{Username: "u", Password: "p"})
	if session.CheckToken(context.Background()) {
		t.Fatal("token check must fail in password mode")
	}
}

func TestCheckTokenFallsBackToRefresh(t *testing.T) {
	refreshed := false
	mux := http.NewServeMux()
	mux.HandleFunc("/wapi/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/api/v1/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		var payload refreshPayload
		json.NewDecoder(r.Body).Decode(&payload)
		if payload.GrantType != "refresh_token" {
			t.Errorf("grant_type = %q", payload.GrantType)
		}
		if payload.RefreshToken != "R" {
			t.Errorf("refresh_token = %q", payload.RefreshToken)
		}
		refreshed = true
		writeTokens(w, "T2", "R2")
	})

	session, _ := newTestSession(t, mux, Credentials{Token: "expired"})
	session.mu.Lock()
	session.refreshToken = "R"
	session.mu.Unlock()

	if !session.CheckToken(context.Background()) {
		t.Fatal("expected refresh fallback to pass")
	}
	if !refreshed {
		t.Fatal("refresh grant never issued")
	}
	if got := session.Headers()["Authorization"]; got != "Bearer T2" {
		t.Errorf("Authorization = %q", got)
	}
	if session.RefreshToken() != "R2" {
		t.Errorf("refresh token = %q", session.RefreshToken())
	}
}

func TestRefreshFailureLeavesSessionUntouched(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wapi/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/api/v1/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	session, _ := newTestSession(t, mux, Credentials{Token: "expired"})
	session.mu.Lock()
	session.refreshToken = "R"
	session.mu.Unlock()

	if session.CheckToken(context.Background()) {
		t.Fatal("expected token check to fail")
	}
	if session.Authorized() {
		t.Error("session must not be authorized")
	}
	if got := session.Headers()["Authorization"]; got != "Bearer expired" {
		t.Errorf("stored token must survive a failed refresh, got %q", got)
	}
	if session.RefreshToken() != "R" {
		t.Errorf("refresh token must survive a failed refresh, got %q", session.RefreshToken())
	}
}

func TestRefreshWithoutStoredTokenFailsFast(t *testing.T) {
	called := false
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	session, _ := newTestSession(t, mux, Credentials{Token: "tok"})
	if session.TryRefreshToken(context.Background()) {
		t.Fatal("refresh without a stored refresh token must fail")
	}
	if called {
		t.Error("refresh without a stored refresh token must not hit the wire")
	}
}

func TestCheckLoginPasswordModeLogsInFirst(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		writeTokens(w, "T", "R")
	})
	mux.HandleFunc("/wapi/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer T" {
			t.Errorf("Authorization = %q", got)
		}
		w.WriteHeader(http.StatusOK)
	})

	session, _ := newTestSession(t, mux, Credentials{Username: "u", Password: "p"})
	if !session.CheckLogin(context.Background()) {
		t.Fatal("expected CheckLogin to pass")
	}
	if session.Mode() != ModeToken {
		t.Errorf("expected token mode, got %q", session.Mode())
	}
}

func TestCheckLoginFailedLoginShortCircuits(t *testing.T) {
	meCalled := false
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/wapi/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		meCalled = true
	})

	session, _ := newTestSession(t, mux, Credentials{Username: "u", Password: "p"})
	if session.CheckLogin(context.Background()) {
		t.Fatal("expected CheckLogin to fail")
	}
	if meCalled {
		t.Error("token probe must not run after a failed login")
	}
}
