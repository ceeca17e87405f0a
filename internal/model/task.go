// Package model はドメインモデルを定義する。
package model

import "time"

// Urgency はタスクの緊急度を表す。
type Urgency string

const (
	UrgencyBaixa   Urgency = "baixa"
	UrgencyMedia   Urgency = "media"
	UrgencyAlta    Urgency = "alta"
	UrgencyCritica Urgency = "critica"
)

// Urgencies は全ての緊急度を重大度の高い順に返す。
func Urgencies() []Urgency {
	return []Urgency{UrgencyCritica, UrgencyAlta, UrgencyMedia, UrgencyBaixa}
}

// Valid は定義済みの緊急度かどうかを返す。
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyBaixa, UrgencyMedia, UrgencyAlta, UrgencyCritica:
		return true
	}
	return false
}

// TaskStatus はタスクの進捗状態を表す。
// 状態遷移に制約はなく、更新時に任意の値を設定できる。
type TaskStatus string

const (
	// TaskStatusPendente は未着手。作成時のデフォルト。
	TaskStatusPendente TaskStatus = "pendente"
	// TaskStatusEmProgresso は作業中。
	TaskStatusEmProgresso TaskStatus = "em_progresso"
	// TaskStatusConcluida は完了。
	TaskStatusConcluida TaskStatus = "concluida"
)

// Valid は定義済みの状態かどうかを返す。
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPendente, TaskStatusEmProgresso, TaskStatusConcluida:
		return true
	}
	return false
}

// Task はチームに属するタスクを表す。
type Task struct {
	ID                string
	Title             string
	Description       *string
	ResponsibleUserID string
	Deadline          *time.Time
	Category          string
	Urgency           Urgency
	Status            TaskStatus
	RequestedBy       string // 依頼者のユーザーID
	TeamID            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsOverdue は期限が設定されており、nowより前で、かつ未完了の場合にtrueを返す。
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Deadline != nil && t.Deadline.Before(now) && t.Status != TaskStatusConcluida
}

// TaskUpdate はタスクの部分更新内容を表す。
// Setがtrueのフィールドのみ既存タスクに反映する。
// team_idは含めないため、更新でタスクのチームが変わることはない。
type TaskUpdate struct {
	Title             Optional[string]     `json:"title"`
	Description       Optional[*string]    `json:"description"`
	ResponsibleUserID Optional[string]     `json:"responsible_user_id"`
	Deadline          Optional[*Deadline]  `json:"deadline"`
	Category          Optional[string]     `json:"category"`
	Urgency           Optional[Urgency]    `json:"urgency"`
	Status            Optional[TaskStatus] `json:"status"`
}

// ApplyTo は指定されたフィールドのみをtaskに反映し、UpdatedAtをnowに更新する。
// 値の検証は呼び出し側で済ませておくこと。
func (u TaskUpdate) ApplyTo(task *Task, now time.Time) {
	if u.Title.Set {
		task.Title = u.Title.Value
	}
	if u.Description.Set {
		task.Description = u.Description.Value
	}
	if u.ResponsibleUserID.Set {
		task.ResponsibleUserID = u.ResponsibleUserID.Value
	}
	if u.Deadline.Set {
		task.Deadline = u.Deadline.Value.TimePtr()
	}
	if u.Category.Set {
		task.Category = u.Category.Value
	}
	if u.Urgency.Set {
		task.Urgency = u.Urgency.Value
	}
	if u.Status.Set {
		task.Status = u.Status.Value
	}
	task.UpdatedAt = now
}
