package handler

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/taskdesk/internal/access"
	"github.com/hitoshi/taskdesk/internal/model"
	"github.com/hitoshi/taskdesk/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	UserFinder
	CreateByAdmin(ctx context.Context, actor access.Identity, in user.CreateInput) (*model.User, error)
	ListAll(ctx context.Context, actor access.Identity) ([]*model.User, error)
	ListVisible(ctx context.Context, actor access.Identity) ([]*model.User, error)
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service   UserServiceInterface
	validator *validator.Validate
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, v *validator.Validate) *UserHandler {
	return &UserHandler{
		service:   service,
		validator: v,
	}
}

// CreateByAdmin は管理者がユーザーを作成する。
// POST /api/admin/users
func (h *UserHandler) CreateByAdmin(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req registerRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	u, err := h.service.CreateByAdmin(r.Context(), actor, user.CreateInput{
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

// ListAll は全ユーザーを返す。管理者専用。
// GET /api/admin/users
func (h *UserHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	users, err := h.service.ListAll(r.Context(), actor)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toUserResponses(users))
}

// ListVisible は実行者から見えるユーザーを返す。
// GET /api/users
func (h *UserHandler) ListVisible(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	users, err := h.service.ListVisible(r.Context(), actor)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toUserResponses(users))
}
