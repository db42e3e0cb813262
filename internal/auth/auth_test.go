package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testConfig = Config{Secret: "test-secret", Issuer: "ea.identity"}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testConfig.Secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestParseValidToken(t *testing.T) {
	raw := signToken(t, jwt.MapClaims{
		"sub":    "user-1",
		"name":   "Jan Jansen",
		"iss":    testConfig.Issuer,
		"exp":    time.Now().Add(time.Hour).Unix(),
		"scopes": []interface{}{"reports:read", "reports:write"},
	})

	claims, err := Parse(raw, testConfig)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user-1" || claims.FullName != "Jan Jansen" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if !claims.HasScope(ScopeReportsRead) || !claims.HasScope(ScopeReportsWrite) {
		t.Fatalf("scopes not parsed: %+v", claims.Scopes)
	}
	if claims.HasScope(ScopeReportsAdmin) {
		t.Fatal("admin scope should be absent")
	}
	if claims.RawToken != raw {
		t.Fatal("raw token must be preserved for upstream calls")
	}
}

func TestParseSpaceSeparatedScopes(t *testing.T) {
	raw := signToken(t, jwt.MapClaims{
		"sub":    "user-1",
		"iss":    testConfig.Issuer,
		"exp":    time.Now().Add(time.Hour).Unix(),
		"scopes": "reports:read reports:admin",
	})

	claims, err := Parse(raw, testConfig)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !claims.HasScope(ScopeReportsRead) || !claims.HasScope(ScopeReportsAdmin) {
		t.Fatalf("scopes not parsed: %+v", claims.Scopes)
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	raw := signToken(t, jwt.MapClaims{
		"sub": "user-1",
		"iss": "someone-else",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	if _, err := Parse(raw, testConfig); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid-token error got %v", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	raw := signToken(t, jwt.MapClaims{
		"sub": "user-1",
		"iss": testConfig.Issuer,
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	if _, err := Parse(raw, testConfig); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid-token error got %v", err)
	}
}

func TestParseRejectsMissingSubject(t *testing.T) {
	raw := signToken(t, jwt.MapClaims{
		"iss": testConfig.Issuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	if _, err := Parse(raw, testConfig); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid-token error got %v", err)
	}
}

func TestMiddlewareAttachesClaims(t *testing.T) {
	raw := signToken(t, jwt.MapClaims{
		"sub": "user-1",
		"iss": testConfig.Issuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	var seen *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
	})

	mw := NewMiddleware(testConfig, nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/reports", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	mw.Wrap(next).ServeHTTP(httptest.NewRecorder(), req)

	if seen == nil || seen.Subject != "user-1" {
		t.Fatalf("claims not attached, got %+v", seen)
	}
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	mw := NewMiddleware(testConfig, nil)
	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run without a token")
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/reports", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestMiddlewareSkipper(t *testing.T) {
	mw := NewMiddleware(testConfig, func(r *http.Request) bool {
		return r.URL.Path == "/healthz"
	})

	called := false
	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if !called || rr.Code != http.StatusOK {
		t.Fatalf("skipped path should bypass auth, called=%v code=%d", called, rr.Code)
	}
}
