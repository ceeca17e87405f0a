package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/taskdesk/internal/access"
	"github.com/hitoshi/taskdesk/internal/model"
	"github.com/hitoshi/taskdesk/internal/task"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	Create(ctx context.Context, actor access.Identity, in task.CreateInput) (*model.Task, error)
	List(ctx context.Context, actor access.Identity) ([]*model.Task, error)
	Get(ctx context.Context, actor access.Identity, id string) (*model.Task, error)
	Update(ctx context.Context, actor access.Identity, id string, upd model.TaskUpdate) (*model.Task, error)
	Delete(ctx context.Context, actor access.Identity, id string) error
}

// TaskHandler はタスク管理のHTTPハンドラー。
type TaskHandler struct {
	service   TaskServiceInterface
	validator *validator.Validate
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface, v *validator.Validate) *TaskHandler {
	return &TaskHandler{
		service:   service,
		validator: v,
	}
}

// Create はタスクを作成する。
// POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	t, err := h.service.Create(r.Context(), actor, task.CreateInput{
		Title:             req.Title,
		Description:       req.Description,
		ResponsibleUserID: req.ResponsibleUserID,
		Deadline:          req.Deadline.TimePtr(),
		Category:          req.Category,
		Urgency:           model.Urgency(req.Urgency),
		Status:            model.TaskStatus(req.Status),
		RequestedBy:       req.RequestedBy,
		TeamID:            req.TeamID,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toTaskResponse(t))
}

// List は実行者から見えるタスクを返す。
// GET /api/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	tasks, err := h.service.List(r.Context(), actor)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toTaskResponses(tasks))
}

// Get はタスクを1件返す。
// GET /api/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	t, err := h.service.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toTaskResponse(t))
}

// Update はタスクを部分更新する。ボディに含まれるフィールドのみ反映する。
// team_idは受け付けず、タスクのチーム移動はできない。
// PUT /api/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var upd model.TaskUpdate
	if !decodeAndValidate(w, r, h.validator, &upd) {
		return
	}

	t, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "id"), upd)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toTaskResponse(t))
}

// Delete はタスクを削除する。関連するコメントも削除される。
// DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{Message: "Task deleted successfully"})
}
