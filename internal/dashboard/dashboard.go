// Package dashboard はactorから見えるタスクの集計を提供する。
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/taskdesk/internal/access"
	"github.com/hitoshi/taskdesk/internal/model"
	"github.com/hitoshi/taskdesk/internal/repository"
)

// Stats はダッシュボードの集計結果。
// UrgencyStatsは該当タスクがなくても4つの緊急度すべてのキーを持つ。
type Stats struct {
	TotalTasks      int            `json:"total_tasks"`
	CompletedTasks  int            `json:"completed_tasks"`
	InProgressTasks int            `json:"in_progress_tasks"`
	PendingTasks    int            `json:"pending_tasks"`
	OverdueTasks    int            `json:"overdue_tasks"`
	UrgencyStats    map[string]int `json:"urgency_stats"`
	CategoryStats   map[string]int `json:"category_stats"`
}

// Service はダッシュボード集計のサービス層。
type Service struct {
	taskRepo repository.TaskRepository
	now      func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(taskRepo repository.TaskRepository) *Service {
	return &Service{taskRepo: taskRepo, now: time.Now}
}

// ComputeStats はactorから見えるタスクを集計する。
func (s *Service) ComputeStats(ctx context.Context, actor access.Identity) (*Stats, error) {
	tasks, err := s.taskRepo.List(ctx, access.ListScope(actor))
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
	}
	return Aggregate(tasks, s.now()), nil
}

// Aggregate はtasksを1回の走査で集計する。
// 期限超過はdeadlineがnowより前で、かつ未完了のタスク。
func Aggregate(tasks []*model.Task, now time.Time) *Stats {
	stats := &Stats{
		TotalTasks:    len(tasks),
		UrgencyStats:  make(map[string]int, 4),
		CategoryStats: make(map[string]int),
	}
	for _, u := range model.Urgencies() {
		stats.UrgencyStats[string(u)] = 0
	}

	for _, t := range tasks {
		switch t.Status {
		case model.TaskStatusConcluida:
			stats.CompletedTasks++
		case model.TaskStatusEmProgresso:
			stats.InProgressTasks++
		case model.TaskStatusPendente:
			stats.PendingTasks++
		}
		if t.IsOverdue(now) {
			stats.OverdueTasks++
		}
		if _, ok := stats.UrgencyStats[string(t.Urgency)]; ok {
			stats.UrgencyStats[string(t.Urgency)]++
		}
		stats.CategoryStats[t.Category]++
	}
	return stats
}
