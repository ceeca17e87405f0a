package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/taskdesk/internal/access"
	"github.com/hitoshi/taskdesk/internal/model"
)

// fakeAuthenticator はテスト用のAuthenticator実装。
type fakeAuthenticator struct {
	authenticateFn func(ctx context.Context, token string) (access.Identity, error)
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context, token string) (access.Identity, error) {
	return f.authenticateFn(ctx, token)
}

func TestBearerAuthMiddleware(t *testing.T) {
	auth := &fakeAuthenticator{
		authenticateFn: func(ctx context.Context, token string) (access.Identity, error) {
			switch token {
			case "valid-token":
				return access.Identity{UserID: "user-1", Email: "a@example.com", TeamID: "team-1"}, nil
			case "broken-store":
				return access.Identity{}, errors.New("connection refused")
			default:
				return access.Identity{}, model.NewUnauthorizedError()
			}
		},
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCalled bool
	}{
		{"有効なトークン", "Bearer valid-token", http.StatusOK, true},
		{"スキームの大文字小文字を区別しない", "bearer valid-token", http.StatusOK, true},
		{"ヘッダーなし", "", http.StatusUnauthorized, false},
		{"Bearer以外のスキーム", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, false},
		{"トークンが空", "Bearer ", http.StatusUnauthorized, false},
		{"無効なトークン", "Bearer expired", http.StatusUnauthorized, false},
		{"認証基盤のエラー", "Bearer broken-store", http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := NewBearerAuthMiddleware(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				id, ok := IdentityFromContext(r.Context())
				if !ok {
					t.Error("identity should be present in context")
				}
				if id.UserID != "user-1" || id.TeamID != "team-1" {
					t.Errorf("identity = %+v, want user-1/team-1", id)
				}
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			resp := w.Result()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if called != tt.wantCalled {
				t.Errorf("next handler called = %v, want %v", called, tt.wantCalled)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if got := resp.Header.Get("WWW-Authenticate"); got != "Bearer" {
					t.Errorf("WWW-Authenticate = %q, want %q", got, "Bearer")
				}
				var body ErrorResponseBody
				if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode response body: %v", err)
				}
				if body.Code != model.ErrCodeUnauthorized {
					t.Errorf("code = %q, want %q", body.Code, model.ErrCodeUnauthorized)
				}
			}
		})
	}
}

func TestIdentityFromContext_Missing(t *testing.T) {
	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Error("IdentityFromContext should report false for empty context")
	}

	// UserIDが空のIdentityは未認証とみなす
	ctx := ContextWithIdentity(context.Background(), access.Identity{})
	if _, ok := IdentityFromContext(ctx); ok {
		t.Error("IdentityFromContext should report false for empty identity")
	}
}
