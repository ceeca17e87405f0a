package handler

import (
	"strings"
	"time"

	"github.com/hitoshi/taskdesk/internal/model"
)

// --- リクエスト ---

// registerRequest は自己登録および管理者によるユーザー作成のリクエストボディ。
type registerRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Name     string  `json:"name" validate:"required"`
	Password string  `json:"password" validate:"required"`
	TeamID   *string `json:"team_id"`
}

// normalize はメールアドレス前後の空白を除去する。
func (r *registerRequest) normalize() { r.Email = strings.TrimSpace(r.Email) }

// loginRequest はログインのリクエストボディ。
type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *loginRequest) normalize() { r.Email = strings.TrimSpace(r.Email) }

// createTeamRequest はチーム作成のリクエストボディ。
type createTeamRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

// createTaskRequest はタスク作成のリクエストボディ。
// requested_byとstatusは省略可能。
type createTaskRequest struct {
	Title             string          `json:"title" validate:"required"`
	Description       *string         `json:"description"`
	ResponsibleUserID string          `json:"responsible_user_id" validate:"required"`
	Deadline          *model.Deadline `json:"deadline"`
	Category          string          `json:"category" validate:"required"`
	Urgency           string          `json:"urgency" validate:"required"`
	Status            string          `json:"status"`
	RequestedBy       string          `json:"requested_by"`
	TeamID            string          `json:"team_id" validate:"required"`
}

// createCommentRequest はコメント作成のリクエストボディ。
type createCommentRequest struct {
	TaskID  string `json:"task_id" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// --- レスポンス ---

// userResponse はユーザー情報のAPIレスポンス。パスワードハッシュは含めない。
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"is_admin"`
	TeamID    *string   `json:"team_id"`
	CreatedAt time.Time `json:"created_at"`
}

type teamResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type taskResponse struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       *string    `json:"description"`
	ResponsibleUserID string     `json:"responsible_user_id"`
	Deadline          *time.Time `json:"deadline"`
	Category          string     `json:"category"`
	Urgency           string     `json:"urgency"`
	Status            string     `json:"status"`
	RequestedBy       string     `json:"requested_by"`
	TeamID            string     `json:"team_id"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type commentResponse struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// messageResponse は処理結果のメッセージのみを返すレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// --- 変換 ---

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		IsAdmin:   u.IsAdmin,
		TeamID:    u.TeamID,
		CreatedAt: u.CreatedAt,
	}
}

func toUserResponses(users []*model.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toTeamResponse(t *model.Team) teamResponse {
	return teamResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
	}
}

func toTeamResponses(teams []*model.Team) []teamResponse {
	out := make([]teamResponse, 0, len(teams))
	for _, t := range teams {
		out = append(out, toTeamResponse(t))
	}
	return out
}

func toTaskResponse(t *model.Task) taskResponse {
	return taskResponse{
		ID:                t.ID,
		Title:             t.Title,
		Description:       t.Description,
		ResponsibleUserID: t.ResponsibleUserID,
		Deadline:          t.Deadline,
		Category:          t.Category,
		Urgency:           string(t.Urgency),
		Status:            string(t.Status),
		RequestedBy:       t.RequestedBy,
		TeamID:            t.TeamID,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

func toTaskResponses(tasks []*model.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}

func toCommentResponse(c *model.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		TaskID:    c.TaskID,
		UserID:    c.UserID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

func toCommentResponses(comments []*model.Comment) []commentResponse {
	out := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentResponse(c))
	}
	return out
}
