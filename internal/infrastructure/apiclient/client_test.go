package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/parksphere/portal/internal/core/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second, zerolog.Nop())
}

func TestClient_LoginAuthenticated(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "alice" || body["password"] != "secret" {
			t.Errorf("unexpected body %v", body)
		}
		_, _ = w.Write([]byte(`{"token":"tok-1","user":{"userId":1,"username":"alice","email":"a@x.io","phone":"1","role":"admin"}}`))
	})

	res, err := c.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.Kind != domain.LoginAuthenticated || res.Token != "tok-1" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Identity == nil || res.Identity.Role != domain.RoleAdmin {
		t.Fatalf("role not normalised: %+v", res.Identity)
	}
}

func TestClient_LoginChallenge(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"require2FA":true,"userId":42,"message":"Code sent"}`))
	})

	res, err := c.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.Kind != domain.LoginChallenge || res.UserID != 42 || res.Message != "Code sent" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestClient_LoginUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad"}`))
	})

	res, err := c.Login(context.Background(), "alice", "wrong")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Kind != domain.LoginRejected || res.Message != "Invalid credentials" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestClient_VerifyExpiredCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Code expired"}`))
	})

	res, err := c.VerifyTwoFactor(context.Background(), 1, "123456")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Kind != domain.LoginRejected || res.Message != "Code expired" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestClient_ServerErrorIsUpstreamFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	if _, err := c.Login(context.Background(), "alice", "secret"); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestClient_ActionQueryParams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/resend-2fa":
			if r.URL.Query().Get("userId") != "42" {
				t.Errorf("missing userId: %s", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`{"message":"Code resent"}`))
		case "/auth/forgot-password":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"User not found"}`))
		}
	})

	res, err := c.ResendTwoFactor(context.Background(), 42)
	if err != nil || !res.OK || res.Message != "Code resent" {
		t.Fatalf("unexpected resend result %+v / %v", res, err)
	}

	res, err = c.ForgotPassword(context.Background(), "nobody@x.io")
	if err != nil || res.OK || res.Message != "User not found" {
		t.Fatalf("unexpected forgot result %+v / %v", res, err)
	}
}

func TestClient_SearchSendsBearer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/staff/spots/search" || r.URL.Query().Get("q") != "A 1" {
			t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`[{"spotId":7,"spotNumber":"A1","spotType":"EV","status":"OCCUPIED"}]`))
	})

	spots, err := c.SearchSpots(context.Background(), "tok-1", "A 1")
	if err != nil {
		t.Fatalf("SearchSpots returned error: %v", err)
	}
	if len(spots) != 1 || spots[0].SpotID != 7 {
		t.Fatalf("unexpected spots %+v", spots)
	}

	if _, err := c.SearchSpots(context.Background(), "other", "A"); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream error on 401, got %v", err)
	}
}
