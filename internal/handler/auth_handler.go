package handler

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/taskdesk/internal/auth"
	"github.com/hitoshi/taskdesk/internal/model"
	"github.com/hitoshi/taskdesk/internal/user"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, in user.CreateInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*auth.Token, error)
}

// UserFinder はIDでユーザーを取得するインターフェース。
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// AuthHandler は登録・ログイン・現在のユーザー取得のHTTPハンドラー。
type AuthHandler struct {
	service   AuthServiceInterface
	users     UserFinder
	validator *validator.Validate
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, users UserFinder, v *validator.Validate) *AuthHandler {
	return &AuthHandler{
		service:   service,
		users:     users,
		validator: v,
	}
}

// Register は一般ユーザーとして自己登録する。
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	u, err := h.service.Register(r.Context(), user.CreateInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		TeamID:   req.TeamID,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(u))
}

// Login はメールアドレスとパスワードを検証し、アクセストークンを発行する。
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, token)
}

// Me は現在のログインユーザー情報を返す。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	u, err := h.users.GetByID(r.Context(), id.UserID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(u))
}
