package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/parksphere/portal/internal/core/domain"
	"github.com/parksphere/portal/internal/core/ports"
)

type stubSessions struct {
	session  domain.Session
	hydrated bool
}

func (s stubSessions) Snapshot() domain.Session { return s.session }
func (s stubSessions) Hydrated() bool           { return s.hydrated }

type nopAuth struct{}

func (nopAuth) Login(context.Context, string, string) (domain.LoginResult, error) {
	return domain.LoginResult{Kind: domain.LoginRejected}, nil
}
func (nopAuth) VerifyTwoFactor(context.Context, int64, string) (domain.LoginResult, error) {
	return domain.LoginResult{Kind: domain.LoginRejected}, nil
}
func (nopAuth) ResendTwoFactor(context.Context, int64) (domain.ActionResult, error) {
	return domain.ActionResult{}, nil
}
func (nopAuth) ForgotPassword(context.Context, string) (domain.ActionResult, error) {
	return domain.ActionResult{}, nil
}
func (nopAuth) ResetPassword(context.Context, string, string, string) (domain.ActionResult, error) {
	return domain.ActionResult{}, nil
}
func (nopAuth) Signup(context.Context, ports.SignupInput) (domain.ActionResult, error) {
	return domain.ActionResult{}, nil
}
func (nopAuth) Logout(context.Context) error { return nil }

type nopPanel struct{}

func (nopPanel) State() domain.PanelState                           { return domain.PanelState{} }
func (nopPanel) Open() domain.PanelState                            { return domain.PanelState{Open: true} }
func (nopPanel) Close() domain.PanelState                           { return domain.PanelState{} }
func (nopPanel) SetQuery(context.Context, string) domain.PanelState { return domain.PanelState{} }
func (nopPanel) Key(context.Context, string) (domain.PanelState, *domain.SearchResult) {
	return domain.PanelState{}, nil
}

type nopLive struct{}

func (nopLive) Connected() bool              { return false }
func (nopLive) Updates() []domain.SpotUpdate { return nil }
func (nopLive) Send(map[string]any) bool     { return false }

func serve(t *testing.T, sessions stubSessions, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	e := NewRouter(Deps{
		Sessions: sessions,
		Auth:     nopAuth{},
		Search:   nopPanel{},
		Live:     nopLive{},
		Log:      zerolog.Nop(),
		Registry: prometheus.NewRegistry(),
	})
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func signedIn(role domain.Role) stubSessions {
	return stubSessions{
		hydrated: true,
		session:  domain.Session{Token: "t", Identity: &domain.Identity{Username: "u", Role: role}},
	}
}

func TestRouter_RoleDispatch(t *testing.T) {
	cases := []struct {
		name     string
		sessions stubSessions
		target   string
		code     int
		location string
	}{
		{"anonymous root", stubSessions{hydrated: true}, "/", http.StatusFound, "/login"},
		{"admin root", signedIn(domain.RoleAdmin), "/", http.StatusFound, "/admin/dashboard"},
		{"staff root", signedIn(domain.RoleStaff), "/", http.StatusFound, "/staff/dashboard"},
		{"user root", signedIn(domain.RoleUser), "/", http.StatusFound, "/user/dashboard"},
		{"user in admin tree", signedIn(domain.RoleUser), "/admin/users", http.StatusFound, "/"},
		{"anonymous in staff tree", stubSessions{hydrated: true}, "/staff/assign", http.StatusFound, "/login"},
		{"admin page", signedIn(domain.RoleAdmin), "/admin/spots/add", http.StatusOK, ""},
		{"admin subtree root", signedIn(domain.RoleAdmin), "/admin", http.StatusFound, "/admin/dashboard"},
		{"unknown admin page", signedIn(domain.RoleAdmin), "/admin/nope", http.StatusFound, "/admin/dashboard"},
		{"unknown path", signedIn(domain.RoleAdmin), "/nowhere", http.StatusFound, "/login"},
		{"public view", stubSessions{hydrated: true}, "/login", http.StatusOK, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, tc.sessions, http.MethodGet, tc.target)
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			if got := rec.Header().Get("Location"); got != tc.location {
				t.Fatalf("expected location %q, got %q", tc.location, got)
			}
		})
	}
}

func TestRouter_LoadingPlaceholderBeforeHydration(t *testing.T) {
	rec := serve(t, stubSessions{}, http.MethodGet, "/user/dashboard")
	if rec.Code != http.StatusOK || rec.Body.String() != "{\"view\":\"loading\"}\n" {
		t.Fatalf("expected loading view, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestRouter_SearchRequiresSession(t *testing.T) {
	rec := serve(t, stubSessions{hydrated: true}, http.MethodGet, "/search/panel")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d", rec.Code)
	}

	rec = serve(t, signedIn(domain.RoleStaff), http.MethodGet, "/search/panel")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_Health(t *testing.T) {
	rec := serve(t, stubSessions{hydrated: true}, http.MethodGet, "/health/ready")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
