// Package comment はタスクへのコメントのドメインロジックを提供する。
// コメントのアクセス範囲は所属タスクのチームで判定する。
package comment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/taskdesk/internal/access"
	"github.com/hitoshi/taskdesk/internal/model"
	"github.com/hitoshi/taskdesk/internal/repository"
	"github.com/hitoshi/taskdesk/internal/security"
)

// CreateInput はコメント作成の入力値。
type CreateInput struct {
	TaskID  string
	Content string
}

// Service はコメントのサービス層。
type Service struct {
	commentRepo repository.CommentRepository
	taskRepo    repository.TaskRepository
	sanitizer   security.TextSanitizer
	now         func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	commentRepo repository.CommentRepository,
	taskRepo repository.TaskRepository,
	sanitizer security.TextSanitizer,
) *Service {
	return &Service{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
		sanitizer:   sanitizer,
		now:         time.Now,
	}
}

// Create はタスクにコメントを追加する。投稿者は常に実行者になる。
func (s *Service) Create(ctx context.Context, actor access.Identity, in CreateInput) (*model.Comment, error) {
	t, err := s.accessibleTask(ctx, actor, in.TaskID)
	if err != nil {
		return nil, err
	}

	content := s.sanitizer.Sanitize(in.Content)
	if content == "" {
		return nil, model.NewValidationError("コメント本文は必須です")
	}

	c := &model.Comment{
		ID:        uuid.New().String(),
		TaskID:    t.ID,
		UserID:    actor.UserID,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.commentRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("コメントの作成に失敗しました: %w", err)
	}

	slog.Info("comment created",
		slog.String("comment_id", c.ID),
		slog.String("task_id", c.TaskID),
		slog.String("user_id", c.UserID),
	)
	return c, nil
}

// ListForTask はタスクのコメントを作成日時の昇順で返す。
func (s *Service) ListForTask(ctx context.Context, actor access.Identity, taskID string) ([]*model.Comment, error) {
	t, err := s.accessibleTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByTaskID(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("コメント一覧の取得に失敗しました: %w", err)
	}
	return comments, nil
}

func (s *Service) accessibleTask(ctx context.Context, actor access.Identity, taskID string) (*model.Task, error) {
	t, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("タスクの取得に失敗しました: %w", err)
	}
	if t == nil {
		return nil, model.NewTaskNotFoundError(taskID)
	}
	if err := access.CheckTeamAccess(actor, t.TeamID); err != nil {
		return nil, err
	}
	return t, nil
}
