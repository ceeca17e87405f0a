package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/taskdesk/internal/access"
	"github.com/hitoshi/taskdesk/internal/model"
	"github.com/hitoshi/taskdesk/internal/team"
)

// TeamServiceInterface はチームハンドラーが必要とするサービスインターフェース。
type TeamServiceInterface interface {
	Create(ctx context.Context, actor access.Identity, in team.CreateInput) (*model.Team, error)
	List(ctx context.Context, actor access.Identity) ([]*model.Team, error)
	Get(ctx context.Context, actor access.Identity, id string) (*model.Team, error)
}

// TeamHandler はチーム管理のHTTPハンドラー。
type TeamHandler struct {
	service   TeamServiceInterface
	validator *validator.Validate
}

// NewTeamHandler はTeamHandlerを生成する。
func NewTeamHandler(service TeamServiceInterface, v *validator.Validate) *TeamHandler {
	return &TeamHandler{
		service:   service,
		validator: v,
	}
}

// Create はチームを作成する。管理者専用。
// POST /api/teams
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req createTeamRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	t, err := h.service.Create(r.Context(), actor, team.CreateInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toTeamResponse(t))
}

// List は実行者から見えるチームを返す。
// GET /api/teams
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	teams, err := h.service.List(r.Context(), actor)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toTeamResponses(teams))
}

// Get はチームを1件返す。
// GET /api/teams/{id}
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	t, err := h.service.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toTeamResponse(t))
}
