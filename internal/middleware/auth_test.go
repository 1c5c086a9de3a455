package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// next-хендлер отвечает 200 с email из контекста или 401
func echoEmail() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if email, ok := GetEmailFromContext(r.Context()); ok {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(email))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	})
}

// Тест: валидный Bearer-токен — email попадает в контекст
func TestWithAuth_ValidBearerSetsEmail(t *testing.T) {
	const secret = "test-secret"
	tok, err := BuildJWTString("ana@example.com", secret, time.Hour)
	if err != nil {
		t.Fatalf("build token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	WithAuth(secret)(echoEmail()).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", rr.Code)
	}
	if rr.Body.String() != "ana@example.com" {
		t.Fatalf("unexpected email %q", rr.Body.String())
	}
}

// Тест: токен в cookie тоже принимается
func TestWithAuth_CookieToken(t *testing.T) {
	const secret = "test-secret"
	tok, _ := BuildJWTString("bo@example.com", secret, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: tok})
	rr := httptest.NewRecorder()
	WithAuth(secret)(echoEmail()).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK || rr.Body.String() != "bo@example.com" {
		t.Fatalf("cookie auth failed: %d %q", rr.Code, rr.Body.String())
	}
}

// Тест: без токена запрос остаётся анонимным
func TestWithAuth_NoTokenLeavesAnonymous(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	WithAuth("any-secret")(echoEmail()).ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected anonymous request, got %d", rr.Code)
	}
}

// Тест: чужая подпись и истёкший токен не аутентифицируют
func TestWithAuth_InvalidTokens(t *testing.T) {
	wrongSig, _ := BuildJWTString("a@x.com", "secret-A", time.Hour)
	expired, _ := BuildJWTString("a@x.com", "secret-B", -time.Minute)

	for name, tok := range map[string]string{"wrong signature": wrongSig, "expired": expired, "garbage": "abc.def"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rr := httptest.NewRecorder()
		WithAuth("secret-B")(echoEmail()).ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected anonymous request, got %d", name, rr.Code)
		}
	}
}

func TestParseEmail_RoundTrip(t *testing.T) {
	tok, _ := BuildJWTString("x@y.com", "s", time.Minute)
	email, err := ParseEmail(tok, "s")
	if err != nil || email != "x@y.com" {
		t.Fatalf("unexpected result %q, %v", email, err)
	}
	if _, err := ParseEmail(tok, "other"); err == nil {
		t.Fatalf("expected signature error")
	}
}
