package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func runMiddleware(t *testing.T, manager *TokenManager, req *http.Request) (Identity, error) {
	t.Helper()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got Identity
	err := JWTMiddleware(manager)(func(c echo.Context) error {
		got.UserID, _ = UserIDFromContext(c)
		got.Email, _ = EmailFromContext(c)
		return nil
	})(c)
	return got, err
}

func statusOf(err error) int {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	return 0
}

// TestJWTMiddlewareHeader checks the happy path and token type enforcement.
func TestJWTMiddlewareHeader(t *testing.T) {
	manager := NewTokenManager("secret", "subscription-reaper", time.Minute, time.Hour)
	identity := Identity{UserID: uuid.New(), Email: "ana@example.com"}

	pair, err := manager.NewTokenPair(identity)
	if err != nil {
		t.Fatalf("expected token pair, got %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	got, err := runMiddleware(t, manager, req)
	if err != nil || got != identity {
		t.Fatalf("expected identity %+v, got %+v (%v)", identity, got, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	if _, err := runMiddleware(t, manager, req); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401 for refresh token, got %v", err)
	}
}

// TestJWTMiddlewareQueryToken checks that only streaming requests may use the query parameter.
func TestJWTMiddlewareQueryToken(t *testing.T) {
	manager := NewTokenManager("secret", "subscription-reaper", time.Minute, time.Hour)
	identity := Identity{UserID: uuid.New(), Email: "ana@example.com"}

	pair, err := manager.NewTokenPair(identity)
	if err != nil {
		t.Fatalf("expected token pair, got %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stream?access_token="+pair.AccessToken, nil)
	req.Header.Set("Accept", "text/event-stream")
	got, err := runMiddleware(t, manager, req)
	if err != nil || got != identity {
		t.Fatalf("expected identity %+v, got %+v (%v)", identity, got, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions?access_token="+pair.AccessToken, nil)
	if _, err := runMiddleware(t, manager, req); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401 for plain request, got %v", err)
	}
}

// TestRefreshHash checks that refresh tokens are stored as digests and compared by value.
func TestRefreshHash(t *testing.T) {
	manager := NewTokenManager("secret", "subscription-reaper", time.Minute, time.Hour)

	pair, err := manager.NewTokenPair(Identity{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("expected token pair, got %v", err)
	}

	hash := pair.RefreshHash()
	if hash == pair.RefreshToken || len(hash) != 64 {
		t.Fatalf("expected sha256 hex digest, got %q", hash)
	}
	if !MatchesRefreshHash(hash, pair.RefreshToken) {
		t.Fatalf("expected hash to match")
	}
	if MatchesRefreshHash(hash, pair.AccessToken) {
		t.Fatalf("expected hash mismatch")
	}

	claims, err := manager.ParseRefreshToken(pair.RefreshToken)
	if err != nil || claims.ID != pair.RefreshID.String() {
		t.Fatalf("expected refresh id %s, got %v (%v)", pair.RefreshID, claims, err)
	}
}

// TestValidatePassword checks the password policy.
func TestValidatePassword(t *testing.T) {
	cases := map[string]error{
		"hunter42":               nil,
		"short1":                 ErrPasswordTooShort,
		"onlyletters":            ErrPasswordTooWeak,
		"1234567890":             ErrPasswordTooWeak,
		strings.Repeat("a1", 37): ErrPasswordTooLong,
		"пароль2024":             nil,
	}

	for password, want := range cases {
		if err := ValidatePassword(password); !errors.Is(err, want) {
			t.Fatalf("%q: expected %v, got %v", password, want, err)
		}
	}

	if _, err := HashPassword("weak"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected hashing to enforce the policy, got %v", err)
	}
}
