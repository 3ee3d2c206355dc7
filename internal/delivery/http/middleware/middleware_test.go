package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/christinepetrosyan/Timebook/config"
	"github.com/christinepetrosyan/Timebook/internal/domain/entity"
	"github.com/christinepetrosyan/Timebook/pkg/jwt"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeRevocation struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocation) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return f.revoked[tokenID], f.err
}

const testSecret = "test-secret"

func newJWT() *jwt.JWTService {
	return jwt.NewJWTService(config.JWTConfig{Secret: testSecret, AccessExpiry: time.Minute})
}

// issueToken signs an access token the way the identity service does.
func issueToken(t *testing.T, userID uuid.UUID, role string) (string, string) {
	t.Helper()
	tokenID := uuid.NewString()
	claims := jwt.Claims{
		UserID:    userID,
		Role:      role,
		TokenType: jwt.AccessToken,
		TokenID:   tokenID,
		RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Minute)),
			IssuedAt:  gojwt.NewNumericDate(time.Now()),
		},
	}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token, tokenID
}

// echoActor writes 200 when an actor reached the handler.
var echoActor = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if _, ok := GetActorFromContext(r.Context()); !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	w.WriteHeader(http.StatusOK)
})

func TestAuthenticate(t *testing.T) {
	jwtService := newJWT()
	userID := uuid.New()
	token, tokenID := issueToken(t, userID, string(entity.RoleMaster))
	unknownRole, _ := issueToken(t, userID, "guest")

	tests := []struct {
		name       string
		header     string
		revocation RevocationChecker
		want       int
	}{
		{"missing header", "", nil, http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, nil, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", nil, http.StatusUnauthorized},
		{"unknown role", "Bearer " + unknownRole, nil, http.StatusUnauthorized},
		{"valid without deny list", "Bearer " + token, nil, http.StatusOK},
		{"valid and not revoked", "Bearer " + token, &fakeRevocation{}, http.StatusOK},
		{"revoked", "Bearer " + token, &fakeRevocation{revoked: map[string]bool{tokenID: true}}, http.StatusUnauthorized},
		{"deny list down", "Bearer " + token, &fakeRevocation{err: errors.New("redis down")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAuthMiddleware(jwtService, tt.revocation, quietLogger())
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			m.Authenticate(echoActor).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func withActor(r *http.Request, actor entity.Actor) *http.Request {
	ctx := context.WithValue(r.Context(), UserIDKey, actor.UserID)
	ctx = context.WithValue(ctx, RoleKey, actor.Role)
	return r.WithContext(ctx)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name string
		role entity.Role
		mw   func(http.Handler) http.Handler
		want int
	}{
		{"master on master route", entity.RoleMaster, RequireMaster, http.StatusOK},
		{"user on master route", entity.RoleUser, RequireMaster, http.StatusForbidden},
		{"admin on master route", entity.RoleAdmin, RequireMaster, http.StatusForbidden},
		{"admin on admin route", entity.RoleAdmin, RequireAdmin, http.StatusOK},
		{"user on user route", entity.RoleUser, RequireUser, http.StatusOK},
		{"either role", entity.RoleAdmin, RequireRole(entity.RoleMaster, entity.RoleAdmin), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withActor(httptest.NewRequest(http.MethodGet, "/", nil), entity.Actor{UserID: uuid.New(), Role: tt.role})
			rec := httptest.NewRecorder()

			tt.mw(echoActor).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRequireRole_NoIdentity(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireUser(echoActor).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	t.Run("listed origin is echoed", func(t *testing.T) {
		m := NewCORSMiddleware([]string{"https://app.example.com"})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		m.Handle(ok).ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
			t.Fatalf("allow origin = %q", got)
		}
	})

	t.Run("unlisted origin gets no header", func(t *testing.T) {
		m := NewCORSMiddleware([]string{"https://app.example.com"})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		m.Handle(ok).ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("allow origin = %q, want empty", got)
		}
	})

	t.Run("wildcard and preflight", func(t *testing.T) {
		m := NewCORSMiddleware([]string{"*"})
		rec := httptest.NewRecorder()
		called := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
		m.Handle(next).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
		if called {
			t.Fatalf("preflight must not reach the handler")
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Fatalf("allow origin = %q, want *", got)
		}
	})
}

func TestRateLimit(t *testing.T) {
	m := NewRateLimitMiddleware(0.001, 2, quietLogger())
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := m.Handle(ok)

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, code)
		}
	}
	if code := send("10.0.0.1:5678"); code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 once the burst is spent", code)
	}
	if code := send("10.0.0.2:1234"); code != http.StatusOK {
		t.Fatalf("other client status = %d, want 200", code)
	}
}

func TestRateLimit_EvictsIdleClients(t *testing.T) {
	m := NewRateLimitMiddleware(1, 1, quietLogger())
	start := time.Now()
	m.getLimiter("ip:a", start)
	m.getLimiter("ip:b", start.Add(limiterIdleTTL+time.Second))

	if _, ok := m.limiters["ip:a"]; ok {
		t.Fatalf("idle limiter was not evicted")
	}
	if len(m.limiters) != 1 {
		t.Fatalf("limiters = %d, want 1", len(m.limiters))
	}
}
