package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vendorx/marketplace/internal/domain"
)

func TestSessions_SetCookieAttributes(t *testing.T) {
	tests := []struct {
		name   string
		secure bool
	}{
		{name: "development", secure: false},
		{name: "production", secure: true},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			sessions := NewSessions(newTestTokenManager(t, nil), test.secure)
			app := fiber.New()
			app.Get("/login", func(c *fiber.Ctx) error {
				sessions.SetCookie(c, "tok", time.Now().Add(DefaultTokenTTL))
				return c.SendStatus(http.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/login", nil))
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}

			cookies := resp.Cookies()
			if len(cookies) != 1 {
				t.Fatalf("got %d cookies, want 1", len(cookies))
			}
			cookie := cookies[0]
			if cookie.Name != CookieName || cookie.Value != "tok" {
				t.Errorf("cookie = %s=%s", cookie.Name, cookie.Value)
			}
			if !cookie.HttpOnly {
				t.Error("cookie should be HttpOnly")
			}
			if cookie.Secure != test.secure {
				t.Errorf("Secure = %v, want %v", cookie.Secure, test.secure)
			}
			if cookie.SameSite != http.SameSiteLaxMode {
				t.Errorf("SameSite = %v, want Lax", cookie.SameSite)
			}
			if cookie.MaxAge != 7*24*60*60 {
				t.Errorf("MaxAge = %d, want %d", cookie.MaxAge, 7*24*60*60)
			}
			if cookie.Path != "/" {
				t.Errorf("Path = %q, want /", cookie.Path)
			}
		})
	}
}

func TestSessions_ClearCookieMatchesSetCookie(t *testing.T) {
	sessions := NewSessions(newTestTokenManager(t, nil), true)
	app := fiber.New()
	app.Post("/api/auth/logout", func(c *fiber.Ctx) error {
		sessions.ClearCookie(c)
		return c.SendStatus(http.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}

	cookies := resp.Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	cookie := cookies[0]
	if cookie.Name != CookieName || cookie.Value != "" {
		t.Fatalf("cookie = %s=%q, want empty %s", cookie.Name, cookie.Value, CookieName)
	}
	if cookie.Path != "/" {
		t.Errorf("Path = %q, want / so the session cookie is replaced", cookie.Path)
	}
	if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("attributes differ from SetCookie: %+v", cookie)
	}
	if cookie.MaxAge >= 0 && (cookie.Expires.IsZero() || !cookie.Expires.Before(time.Now())) {
		t.Errorf("cookie not expired: MaxAge=%d Expires=%v", cookie.MaxAge, cookie.Expires)
	}
}

func TestSessions_Authenticate(t *testing.T) {
	tm := newTestTokenManager(t, nil)
	sessions := NewSessions(tm, false)
	token, _, err := tm.Issue("user-7", domain.RoleBuyer)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name        string
		cookie      string
		wantSubject string
	}{
		{name: "valid cookie", cookie: token, wantSubject: "user-7"},
		{name: "no cookie", cookie: ""},
		{name: "garbage cookie", cookie: "junk"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				principal := sessions.Authenticate(c)
				if principal == nil {
					return c.SendString("anonymous")
				}
				return c.SendString(principal.SubjectID)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if test.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: test.cookie})
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}

			want := test.wantSubject
			if want == "" {
				want = "anonymous"
			}
			if got := readBody(t, resp); got != want {
				t.Fatalf("body = %q, want %q", got, want)
			}
		})
	}
}

func TestSessions_ExtractIgnoresOtherCookies(t *testing.T) {
	sessions := NewSessions(newTestTokenManager(t, nil), false)
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		if _, ok := sessions.Extract(c); ok {
			return c.SendString("found")
		}
		return c.SendString("missing")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "abc"})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if got := readBody(t, resp); got != "missing" {
		t.Fatalf("body = %q, want missing", got)
	}
}
