package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/taskdesk/internal/access"
	"github.com/hitoshi/taskdesk/internal/comment"
	"github.com/hitoshi/taskdesk/internal/model"
)

// CommentServiceInterface はコメントハンドラーが必要とするサービスインターフェース。
type CommentServiceInterface interface {
	Create(ctx context.Context, actor access.Identity, in comment.CreateInput) (*model.Comment, error)
	ListForTask(ctx context.Context, actor access.Identity, taskID string) ([]*model.Comment, error)
}

// CommentHandler はコメントのHTTPハンドラー。
type CommentHandler struct {
	service   CommentServiceInterface
	validator *validator.Validate
}

// NewCommentHandler はCommentHandlerを生成する。
func NewCommentHandler(service CommentServiceInterface, v *validator.Validate) *CommentHandler {
	return &CommentHandler{
		service:   service,
		validator: v,
	}
}

// Create はタスクにコメントを追加する。
// POST /api/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req createCommentRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	c, err := h.service.Create(r.Context(), actor, comment.CreateInput{
		TaskID:  req.TaskID,
		Content: req.Content,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toCommentResponse(c))
}

// ListForTask はタスクのコメントを作成日時の昇順で返す。
// GET /api/tasks/{id}/comments
func (h *CommentHandler) ListForTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	comments, err := h.service.ListForTask(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toCommentResponses(comments))
}
