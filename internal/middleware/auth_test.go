package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trentd187/discgolf/internal/config"
	"github.com/trentd187/discgolf/internal/session"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func claimsFor(sub, role string) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: role,
	}
}

// newApp serves GET /whoami (open) and GET /private (auth required).
func newApp() *fiber.App {
	cfg := &config.Config{JWTSecret: testSecret, SessionCookie: "sb-access-token"}
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	app.Use(Session(cfg, zap.NewNop()))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		id := session.From(c)
		if id == nil {
			return c.JSON(fiber.Map{"user": nil})
		}
		return c.JSON(fiber.Map{"user": id.UserID.String()})
	})
	app.Get("/private", RequireAuth(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func whoami(t *testing.T, app *fiber.App, req *http.Request) any {
	t.Helper()
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body struct {
		User any `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	return body.User
}

func TestSession(t *testing.T) {
	user := uuid.New()
	valid := sign(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor(user.String(), "authenticated"))

	expired := claimsFor(user.String(), "authenticated")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	tests := []struct {
		name   string
		header string
		cookie string
		want   any
	}{
		{"no token", "", "", nil},
		{"bearer header", "Bearer " + valid, "", user.String()},
		{"cookie", "", valid, user.String()},
		{"wrong secret", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), claimsFor(user.String(), "authenticated")), "", nil},
		{"expired", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), expired), "", nil},
		{"anon role", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor(user.String(), "anon")), "", nil},
		{"subject not a uuid", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor("user_123", "authenticated")), "", nil},
		{"hs512 rejected", "Bearer " + sign(t, jwt.SigningMethodHS512, []byte(testSecret), claimsFor(user.String(), "authenticated")), "", nil},
		{"garbage", "Bearer not-a-jwt", "", nil},
	}
	app := newApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "sb-access-token", Value: tt.cookie})
			}
			if got := whoami(t, app, req); got != tt.want {
				t.Errorf("user = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	app := newApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/private", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("anonymous: status = %d, want 401", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "unauthorized" {
		t.Errorf("error = %q, want unauthorized", body["error"])
	}

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor(uuid.NewString(), "authenticated")))
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNoContent {
		t.Errorf("authenticated: status = %d, want 204", resp.StatusCode)
	}
}
