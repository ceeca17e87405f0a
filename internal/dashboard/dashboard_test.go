package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/taskdesk/internal/access"
	"github.com/hitoshi/taskdesk/internal/model"
)

type mockTaskRepo struct {
	listFn func(ctx context.Context, scope access.Scope) ([]*model.Task, error)
}

func (m *mockTaskRepo) FindByID(_ context.Context, _ string) (*model.Task, error) { return nil, nil }
func (m *mockTaskRepo) Create(_ context.Context, _ *model.Task) error             { return nil }
func (m *mockTaskRepo) Update(_ context.Context, _ *model.Task) error             { return nil }
func (m *mockTaskRepo) Delete(_ context.Context, _ string) error                  { return nil }
func (m *mockTaskRepo) List(ctx context.Context, scope access.Scope) ([]*model.Task, error) {
	return m.listFn(ctx, scope)
}

func timePtr(t time.Time) *time.Time { return &t }

// TestComputeStats_OverdueScenario は期限超過の判定が未完了タスクのみを数えることを検証する。
//   - 期限切れで未完了: 期限超過
//   - 期限切れだが完了: 期限超過ではない
//   - 期限なし: 期限超過ではない
func TestComputeStats_OverdueScenario(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tasks := []*model.Task{
		{ID: "1", Status: model.TaskStatusPendente, Deadline: timePtr(yesterday), Urgency: model.UrgencyAlta, Category: "Backend"},
		{ID: "2", Status: model.TaskStatusConcluida, Deadline: timePtr(yesterday), Urgency: model.UrgencyBaixa, Category: "QA"},
		{ID: "3", Status: model.TaskStatusEmProgresso, Urgency: model.UrgencyAlta, Category: "Backend"},
	}

	svc := NewService(&mockTaskRepo{listFn: func(_ context.Context, _ access.Scope) ([]*model.Task, error) {
		return tasks, nil
	}})
	svc.now = func() time.Time { return now }

	stats, err := svc.ComputeStats(context.Background(), access.Identity{UserID: "admin", IsAdmin: true})
	if err != nil {
		t.Fatalf("ComputeStats returned error: %v", err)
	}

	if stats.TotalTasks != 3 {
		t.Errorf("TotalTasks = %d, want 3", stats.TotalTasks)
	}
	if stats.OverdueTasks != 1 {
		t.Errorf("OverdueTasks = %d, want 1", stats.OverdueTasks)
	}
	if stats.CompletedTasks != 1 || stats.InProgressTasks != 1 || stats.PendingTasks != 1 {
		t.Errorf("status counts = %d/%d/%d, want 1/1/1", stats.CompletedTasks, stats.InProgressTasks, stats.PendingTasks)
	}
	wantUrgency := map[string]int{"critica": 0, "alta": 2, "media": 0, "baixa": 1}
	for k, v := range wantUrgency {
		if stats.UrgencyStats[k] != v {
			t.Errorf("UrgencyStats[%s] = %d, want %d", k, stats.UrgencyStats[k], v)
		}
	}
	if stats.CategoryStats["Backend"] != 2 || stats.CategoryStats["QA"] != 1 {
		t.Errorf("CategoryStats = %v", stats.CategoryStats)
	}
}

// TestAggregate_DeadlineEqualToNowIsNotOverdue は期限ちょうどは期限超過に含めないことを検証する。
func TestAggregate_DeadlineEqualToNowIsNotOverdue(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stats := Aggregate([]*model.Task{
		{Status: model.TaskStatusPendente, Deadline: timePtr(now), Urgency: model.UrgencyMedia, Category: "x"},
	}, now)
	if stats.OverdueTasks != 0 {
		t.Errorf("OverdueTasks = %d, want 0", stats.OverdueTasks)
	}
}

func TestAggregate_EmptyHasAllUrgencyKeys(t *testing.T) {
	stats := Aggregate(nil, time.Now())
	if stats.TotalTasks != 0 {
		t.Errorf("TotalTasks = %d, want 0", stats.TotalTasks)
	}
	for _, u := range model.Urgencies() {
		v, ok := stats.UrgencyStats[string(u)]
		if !ok || v != 0 {
			t.Errorf("UrgencyStats[%s] = (%d, %v), want (0, true)", u, v, ok)
		}
	}
	if stats.CategoryStats == nil {
		t.Error("CategoryStats should be an empty map, not nil")
	}
}

func TestComputeStats_UsesActorScope(t *testing.T) {
	var got access.Scope
	svc := NewService(&mockTaskRepo{listFn: func(_ context.Context, scope access.Scope) ([]*model.Task, error) {
		got = scope
		return nil, nil
	}})

	if _, err := svc.ComputeStats(context.Background(), access.Identity{UserID: "joao", TeamID: "team-a"}); err != nil {
		t.Fatalf("ComputeStats returned error: %v", err)
	}
	if got != (access.Scope{TeamID: "team-a"}) {
		t.Errorf("scope = %+v, want team-a", got)
	}
}

func TestComputeStats_RepositoryError(t *testing.T) {
	svc := NewService(&mockTaskRepo{listFn: func(_ context.Context, _ access.Scope) ([]*model.Task, error) {
		return nil, errors.New("db down")
	}})
	if _, err := svc.ComputeStats(context.Background(), access.Identity{IsAdmin: true}); err == nil {
		t.Error("expected error")
	}
}
