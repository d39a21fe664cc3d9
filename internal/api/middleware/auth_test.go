package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/salonkit/leadgate/internal/core/domain"
	"github.com/salonkit/leadgate/internal/core/ports"
)

type stubAuthService struct {
	classifyFn func(creds ports.Credentials) domain.Tier
}

func (s *stubAuthService) Classify(creds ports.Credentials) domain.Tier {
	return s.classifyFn(creds)
}

func (s *stubAuthService) IssueSession() (string, int, error) { return "", 0, nil }

func (s *stubAuthService) VerifySession(token string) error { return nil }

func TestExtractCredentials(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok-bearer")
	req.Header.Set("X-Api-Key", "tok-api")
	req.Header.Set("X-Admin-Key", "tok-admin")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok-cookie"})
	c := e.NewContext(req, httptest.NewRecorder())

	creds := ExtractCredentials(c)
	if creds.Bearer != "tok-bearer" {
		t.Fatalf("Bearer = %q", creds.Bearer)
	}
	if creds.APIKey != "tok-api" || creds.AdminKey != "tok-admin" {
		t.Fatalf("header keys = %q / %q", creds.APIKey, creds.AdminKey)
	}
	if creds.SessionCookie != "tok-cookie" {
		t.Fatalf("SessionCookie = %q", creds.SessionCookie)
	}
}

func TestExtractCredentials_BearerVariants(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"lowercase scheme", "bearer tok", "tok"},
		{"extra space trimmed", "Bearer  tok", "tok"},
		{"wrong scheme", "Basic dXNlcg==", ""},
		{"no value", "Bearer", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", tc.header)
			c := e.NewContext(req, httptest.NewRecorder())
			if got := ExtractCredentials(c).Bearer; got != tc.want {
				t.Fatalf("Bearer = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRequireTier_Allows(t *testing.T) {
	auth := &stubAuthService{classifyFn: func(ports.Credentials) domain.Tier { return domain.TierAdmin }}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	next := func(c echo.Context) error {
		called = true
		if got := TierFromContext(c); got != domain.TierAdmin {
			t.Fatalf("TierFromContext = %q, want admin", got)
		}
		return c.NoContent(http.StatusOK)
	}

	if err := RequireTier(auth, domain.TierAPI)(next)(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
	if !called {
		t.Fatal("next was not called")
	}
}

func TestRequireTier_Rejects(t *testing.T) {
	auth := &stubAuthService{classifyFn: func(ports.Credentials) domain.Tier { return domain.TierAPI }}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	next := func(c echo.Context) error {
		t.Fatal("next must not be called")
		return nil
	}

	if err := RequireTier(auth, domain.TierAdmin)(next)(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Auth-Mode"); got != "admin" {
		t.Fatalf("X-Auth-Mode = %q, want admin", got)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["ok"] != false || resp["need"] != "admin" {
		t.Fatalf("unexpected envelope: %v", resp)
	}
}

func TestTierFromContext_Default(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if got := TierFromContext(c); got != domain.TierNone {
		t.Fatalf("TierFromContext = %q, want none", got)
	}
}
