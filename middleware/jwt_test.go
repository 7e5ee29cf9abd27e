package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func authedRequest(t *testing.T, userID, role string) *http.Request {
	t.Helper()
	token, err := GenerateToken(userID, role, "Test User", "test@example.com")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	req := httptest.NewRequest("GET", "/api/v1/submittals", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestJWTMiddleware(t *testing.T) {
	t.Run("valid token passes claims through", func(t *testing.T) {
		var gotUserID, gotRole string
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUserID = GetUserID(r)
			gotRole = GetRole(r)
		})

		rec := httptest.NewRecorder()
		JWTMiddleware(inner).ServeHTTP(rec, authedRequest(t, "user-42", "project_manager"))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if gotUserID != "user-42" {
			t.Errorf("userID = %q", gotUserID)
		}
		if gotRole != "project_manager" {
			t.Errorf("role = %q", gotRole)
		}
	})

	t.Run("missing header rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/submittals", nil)
		JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not run without a token")
		})).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("malformed header rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/submittals", nil)
		req.Header.Set("Authorization", "Token abc123")
		JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not run with a malformed header")
		})).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/submittals", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not run with a bad token")
		})).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d", rec.Code)
		}
	})
}

func TestRequireRole(t *testing.T) {
	withClaims := func(role string) *http.Request {
		req := httptest.NewRequest("DELETE", "/api/v1/submittals/x", nil)
		claims := &Claims{UserID: "u1", Role: role}
		return req.WithContext(context.WithValue(req.Context(), userClaimsKey, claims))
	}

	tests := []struct {
		name     string
		allowed  []string
		role     string
		expected int
	}{
		{"role in list", []string{"admin", "project_manager"}, "admin", http.StatusOK},
		{"second role in list", []string{"admin", "project_manager"}, "project_manager", http.StatusOK},
		{"role not in list", []string{"admin"}, "contractor", http.StatusForbidden},
		{"empty role", []string{"admin"}, "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RequireRole(tt.allowed, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})).ServeHTTP(rec, withClaims(tt.role))

			if rec.Code != tt.expected {
				t.Errorf("status = %d, expected %d", rec.Code, tt.expected)
			}
		})
	}

	t.Run("no claims at all", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/api/v1/submittals/x", nil)
		RequireRole([]string{"admin"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not run without claims")
		})).ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d", rec.Code)
		}
	})
}
