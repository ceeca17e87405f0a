// Package task はタスク管理のドメインロジックを提供する。
//
// 一般ユーザーは自チームのタスクのみを作成・参照・更新・削除できる。
// 単体取得・更新・削除ではタスクの存在確認を範囲確認より先に行うため、
// 存在しないIDにはTASK_NOT_FOUND、他チームのタスクにはFORBIDDENを返す。
package task

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/taskdesk/internal/access"
	"github.com/hitoshi/taskdesk/internal/model"
	"github.com/hitoshi/taskdesk/internal/notify"
	"github.com/hitoshi/taskdesk/internal/repository"
	"github.com/hitoshi/taskdesk/internal/security"
)

// CreatedObserver はタスク作成を受け取る。メトリクス収集に使用する。
type CreatedObserver interface {
	ObserveTaskCreated(urgency model.Urgency)
}

// CreateInput はタスク作成の入力値。
type CreateInput struct {
	Title             string
	Description       *string
	ResponsibleUserID string
	Deadline          *time.Time
	Category          string
	Urgency           model.Urgency
	Status            model.TaskStatus // 空の場合はpendente
	RequestedBy       string           // 空の場合は実行者
	TeamID            string
}

// Service はタスク管理のサービス層。
type Service struct {
	taskRepo  repository.TaskRepository
	teamRepo  repository.TeamRepository
	userRepo  repository.UserRepository
	sanitizer security.TextSanitizer
	sink      notify.Sink
	observer  CreatedObserver
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。observerはnilでもよい。
func NewService(
	taskRepo repository.TaskRepository,
	teamRepo repository.TeamRepository,
	userRepo repository.UserRepository,
	sanitizer security.TextSanitizer,
	sink notify.Sink,
	observer CreatedObserver,
) *Service {
	return &Service{
		taskRepo:  taskRepo,
		teamRepo:  teamRepo,
		userRepo:  userRepo,
		sanitizer: sanitizer,
		sink:      sink,
		observer:  observer,
		now:       time.Now,
	}
}

// Create はタスクを作成し、担当者に通知する。
// 検証順序: チーム範囲(FORBIDDEN) → チーム存在(TEAM_NOT_FOUND) → 入力値(VALIDATION_ERROR)
func (s *Service) Create(ctx context.Context, actor access.Identity, in CreateInput) (*model.Task, error) {
	if err := access.CheckTeamAccess(actor, in.TeamID); err != nil {
		return nil, err
	}

	team, err := s.teamRepo.FindByID(ctx, in.TeamID)
	if err != nil {
		return nil, fmt.Errorf("チームの取得に失敗しました: %w", err)
	}
	if team == nil {
		return nil, model.NewTeamNotFoundError(in.TeamID)
	}

	title := strings.TrimSpace(in.Title)
	category := strings.TrimSpace(in.Category)
	switch {
	case title == "":
		return nil, model.NewValidationError("タイトルは必須です")
	case category == "":
		return nil, model.NewValidationError("カテゴリは必須です")
	case strings.TrimSpace(in.ResponsibleUserID) == "":
		return nil, model.NewValidationError("担当者は必須です")
	case !isUserID(in.ResponsibleUserID):
		return nil, model.NewValidationError("担当者IDの形式が不正です")
	case !in.Urgency.Valid():
		return nil, model.NewValidationError(fmt.Sprintf("未定義の緊急度です: %s", in.Urgency))
	}

	status := in.Status
	if status == "" {
		status = model.TaskStatusPendente
	}
	if !status.Valid() {
		return nil, model.NewValidationError(fmt.Sprintf("未定義のステータスです: %s", status))
	}

	requestedBy := actor.UserID
	if in.RequestedBy != "" && in.RequestedBy != actor.UserID {
		requester, err := s.userRepo.FindByID(ctx, in.RequestedBy)
		if err != nil {
			return nil, fmt.Errorf("依頼者の取得に失敗しました: %w", err)
		}
		if requester == nil {
			return nil, model.NewValidationError("依頼者が存在しません")
		}
		requestedBy = requester.ID
	}

	now := s.now()
	t := &model.Task{
		ID:                uuid.New().String(),
		Title:             title,
		Description:       s.sanitizeDescription(in.Description),
		ResponsibleUserID: in.ResponsibleUserID,
		Deadline:          in.Deadline,
		Category:          category,
		Urgency:           in.Urgency,
		Status:            status,
		RequestedBy:       requestedBy,
		TeamID:            team.ID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.taskRepo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("タスクの作成に失敗しました: %w", err)
	}

	slog.Info("task created",
		slog.String("task_id", t.ID),
		slog.String("team_id", t.TeamID),
		slog.String("user_id", actor.UserID),
	)
	if s.observer != nil {
		s.observer.ObserveTaskCreated(t.Urgency)
	}
	s.notifyResponsible(ctx, t)

	return t, nil
}

// List はactorから見えるタスクを返す。
func (s *Service) List(ctx context.Context, actor access.Identity) ([]*model.Task, error) {
	tasks, err := s.taskRepo.List(ctx, access.ListScope(actor))
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
	}
	return tasks, nil
}

// Get は指定IDのタスクを返す。
func (s *Service) Get(ctx context.Context, actor access.Identity, id string) (*model.Task, error) {
	return s.findAccessible(ctx, actor, id)
}

// Update はリクエストに含まれるフィールドのみを更新する。
// フィールドが一つも含まれない場合もupdated_atは更新される。
func (s *Service) Update(ctx context.Context, actor access.Identity, id string, upd model.TaskUpdate) (*model.Task, error) {
	t, err := s.findAccessible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if err := validateUpdate(&upd); err != nil {
		return nil, err
	}
	if upd.Description.Set {
		upd.Description.Value = s.sanitizeDescription(upd.Description.Value)
	}

	upd.ApplyTo(t, s.now())
	if err := s.taskRepo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("タスクの更新に失敗しました: %w", err)
	}

	slog.Info("task updated",
		slog.String("task_id", t.ID),
		slog.String("user_id", actor.UserID),
	)
	return t, nil
}

// Delete はタスクを削除する。関連するコメントも削除される。
func (s *Service) Delete(ctx context.Context, actor access.Identity, id string) error {
	t, err := s.findAccessible(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.taskRepo.Delete(ctx, t.ID); err != nil {
		return fmt.Errorf("タスクの削除に失敗しました: %w", err)
	}

	slog.Info("task deleted",
		slog.String("task_id", t.ID),
		slog.String("user_id", actor.UserID),
	)
	return nil
}

// findAccessible はタスクを取得し、存在確認の後にチーム範囲を確認する。
func (s *Service) findAccessible(ctx context.Context, actor access.Identity, id string) (*model.Task, error) {
	t, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("タスクの取得に失敗しました: %w", err)
	}
	if t == nil {
		return nil, model.NewTaskNotFoundError(id)
	}
	if err := access.CheckTeamAccess(actor, t.TeamID); err != nil {
		return nil, err
	}
	return t, nil
}

func validateUpdate(upd *model.TaskUpdate) error {
	if upd.Title.Set {
		upd.Title.Value = strings.TrimSpace(upd.Title.Value)
		if upd.Title.Value == "" {
			return model.NewValidationError("タイトルは空にできません")
		}
	}
	if upd.Category.Set {
		upd.Category.Value = strings.TrimSpace(upd.Category.Value)
		if upd.Category.Value == "" {
			return model.NewValidationError("カテゴリは空にできません")
		}
	}
	if upd.ResponsibleUserID.Set {
		if strings.TrimSpace(upd.ResponsibleUserID.Value) == "" {
			return model.NewValidationError("担当者は空にできません")
		}
		if !isUserID(upd.ResponsibleUserID.Value) {
			return model.NewValidationError("担当者IDの形式が不正です")
		}
	}
	if upd.Urgency.Set && !upd.Urgency.Value.Valid() {
		return model.NewValidationError(fmt.Sprintf("未定義の緊急度です: %s", upd.Urgency.Value))
	}
	if upd.Status.Set && !upd.Status.Value.Valid() {
		return model.NewValidationError(fmt.Sprintf("未定義のステータスです: %s", upd.Status.Value))
	}
	return nil
}

// isUserID はユーザーIDとして解釈できるUUID文字列かどうかを返す。
func isUserID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// sanitizeDescription はマークアップを除去する。結果が空の場合はnilを返す。
func (s *Service) sanitizeDescription(desc *string) *string {
	if desc == nil {
		return nil
	}
	clean := s.sanitizer.Sanitize(*desc)
	if clean == "" {
		return nil
	}
	return &clean
}

// notifyResponsible は担当者にタスク作成を通知する。
// 通知の失敗はタスク作成の結果に影響させない。
func (s *Service) notifyResponsible(ctx context.Context, t *model.Task) {
	responsible, err := s.userRepo.FindByID(ctx, t.ResponsibleUserID)
	if err != nil {
		slog.Error("failed to look up responsible user",
			slog.String("task_id", t.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	if responsible == nil {
		slog.Warn("responsible user not found, notification skipped",
			slog.String("task_id", t.ID),
			slog.String("responsible_user_id", t.ResponsibleUserID),
		)
		return
	}

	subject := "New task: " + t.Title
	body := fmt.Sprintf("You have been assigned the task %q (urgency: %s).", t.Title, t.Urgency)
	if err := s.sink.Send(ctx, responsible.Email, subject, body); err != nil {
		slog.Error("failed to send notification",
			slog.String("task_id", t.ID),
			slog.String("error", err.Error()),
		)
	}
}
