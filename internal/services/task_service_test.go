package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"palmsgig.com/palmsgig/internal/constants"
	apperrors "palmsgig.com/palmsgig/internal/errors"
	"palmsgig.com/palmsgig/internal/fees"
	model "palmsgig.com/palmsgig/internal/models"
	repository "palmsgig.com/palmsgig/internal/repositories"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(&model.Task{}, &model.TaskHistory{})
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	return db
}

func newTestService(t *testing.T) (*TaskService, *repository.TaskRepository) {
	db := setupTestDB(t)
	repo := repository.NewTaskRepository(db)
	calc := fees.NewCalculator(decimal.RequireFromString(constants.DefaultFeePercent))
	return NewTaskService(repo, calc, nil), repo
}

func fullTaskInput(budget string, maxPerformers int) TaskInput {
	return TaskInput{
		Title:         "Like our launch post",
		Description:   "Like the pinned launch post on our page",
		Instructions:  "Open the profile, find the pinned post, tap like",
		Platform:      constants.PlatformInstagram,
		TaskType:      constants.TaskTypeLike,
		Budget:        decimal.RequireFromString(budget),
		MaxPerformers: maxPerformers,
	}
}

func strPtr(s string) *string { return &s }

func TestCreateTask_ComputesFeesAndHistory(t *testing.T) {
	service, repo := newTestService(t)
	ctx := context.Background()

	task, err := service.CreateTask(ctx, "creator-1", fullTaskInput("25.00", 5000))
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	if task.ID == "" {
		t.Error("expected task ID to be set")
	}
	if task.Status != constants.StatusDraft {
		t.Errorf("expected status %s, got %s", constants.StatusDraft, task.Status)
	}
	if task.CurrentPerformers != 0 {
		t.Errorf("expected 0 current performers, got %d", task.CurrentPerformers)
	}
	if got := task.ServiceFee.StringFixed(2); got != "3.75" {
		t.Errorf("expected service fee 3.75, got %s", got)
	}
	if got := task.TotalCost.StringFixed(2); got != "28.75" {
		t.Errorf("expected total cost 28.75, got %s", got)
	}

	entries, err := repo.HistoryForTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("failed to load history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	if entries[0].PreviousStatus != constants.StatusNone || entries[0].NewStatus != constants.StatusDraft {
		t.Errorf("unexpected first history transition %s -> %s", entries[0].PreviousStatus, entries[0].NewStatus)
	}
}

func TestCreateDraft_TitleOnly(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	draft, err := service.CreateDraft(ctx, "creator-1", DraftInput{Title: "My draft task"})
	if err != nil {
		t.Fatalf("failed to create draft: %v", err)
	}

	if draft.Status != constants.StatusDraft {
		t.Errorf("expected draft status, got %s", draft.Status)
	}
	if draft.Budget != nil || draft.ServiceFee != nil || draft.TotalCost != nil {
		t.Error("expected economic fields to stay unset on a title-only draft")
	}
}

func TestPublishTask_DraftRoundTrip(t *testing.T) {
	service, repo := newTestService(t)
	ctx := context.Background()

	draft, err := service.CreateDraft(ctx, "creator-1", DraftInput{Title: "Launch day push"})
	if err != nil {
		t.Fatalf("failed to create draft: %v", err)
	}

	budget := decimal.RequireFromString("10.33")
	maxPerformers := 50
	platform := constants.PlatformTwitter
	taskType := constants.TaskTypeShare

	published, err := service.PublishTask(ctx, draft.ID, "creator-1", PublishInput{
		Description:   strPtr("Share the launch announcement thread"),
		Instructions:  strPtr("Retweet the pinned announcement post"),
		Platform:      &platform,
		TaskType:      &taskType,
		Budget:        &budget,
		MaxPerformers: &maxPerformers,
	})
	if err != nil {
		t.Fatalf("failed to publish: %v", err)
	}

	if published.Status != constants.StatusPendingPayment {
		t.Errorf("expected status %s, got %s", constants.StatusPendingPayment, published.Status)
	}

	breakdown, err := service.FeeBreakdown(budget, maxPerformers)
	if err != nil {
		t.Fatalf("fee breakdown failed: %v", err)
	}
	if !published.ServiceFee.Equal(breakdown.ServiceFee) {
		t.Errorf("service fee %s does not match calculator %s", published.ServiceFee, breakdown.ServiceFee)
	}
	if got := published.ServiceFee.StringFixed(2); got != "1.55" {
		t.Errorf("expected service fee 1.55 for budget 10.33, got %s", got)
	}
	if !published.TotalCost.Equal(breakdown.TotalCost) {
		t.Errorf("total cost %s does not match calculator %s", published.TotalCost, breakdown.TotalCost)
	}

	entries, err := repo.HistoryForTask(ctx, draft.ID)
	if err != nil {
		t.Fatalf("failed to load history: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(entries))
	}
	last := entries[1]
	if last.PreviousStatus != constants.StatusDraft || last.NewStatus != constants.StatusPendingPayment {
		t.Errorf("unexpected publish transition %s -> %s", last.PreviousStatus, last.NewStatus)
	}
}

func TestPublishTask_FailureSemantics(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.PublishTask(ctx, "missing-id", "creator-1", PublishInput{})
	if !errors.Is(err, apperrors.ErrTaskNotFound) {
		t.Errorf("expected not-found for unknown id, got %v", err)
	}

	task, err := service.CreateTask(ctx, "creator-1", fullTaskInput("10.00", 10))
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	_, err = service.PublishTask(ctx, task.ID, "intruder", PublishInput{})
	if !errors.Is(err, apperrors.ErrNotTaskOwner) {
		t.Errorf("expected forbidden for non-owner, got %v", err)
	}

	if _, err := service.PublishTask(ctx, task.ID, "creator-1", PublishInput{}); err != nil {
		t.Fatalf("first publish failed: %v", err)
	}

	_, err = service.PublishTask(ctx, task.ID, "creator-1", PublishInput{})
	if err == nil {
		t.Fatal("expected error publishing a non-draft task")
	}
	if apperrors.StatusCode(err) != 400 {
		t.Errorf("expected 400 for non-draft publish, got %d", apperrors.StatusCode(err))
	}

	draft, err := service.CreateDraft(ctx, "creator-1", DraftInput{Title: "Incomplete draft"})
	if err != nil {
		t.Fatalf("failed to create draft: %v", err)
	}
	_, err = service.PublishTask(ctx, draft.ID, "creator-1", PublishInput{})
	if err == nil {
		t.Fatal("expected validation error for incomplete draft")
	}
	if apperrors.StatusCode(err) != 400 {
		t.Errorf("expected 400 for incomplete draft, got %d", apperrors.StatusCode(err))
	}
}

func TestPublishTask_CountsCharactersNotBytes(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	// 200 characters, 600 bytes in UTF-8
	draft, err := service.CreateDraft(ctx, "creator-1", DraftInput{Title: strings.Repeat("题", 200)})
	if err != nil {
		t.Fatalf("failed to create draft: %v", err)
	}

	budget := decimal.RequireFromString("10.00")
	maxPerformers := 10
	platform := constants.PlatformInstagram
	taskType := constants.TaskTypeLike

	input := PublishInput{
		Description:   strPtr("Like the pinned launch post on our page"),
		Instructions:  strPtr("Open the profile, find the pinned post, tap like"),
		Platform:      &platform,
		TaskType:      &taskType,
		Budget:        &budget,
		MaxPerformers: &maxPerformers,
	}
	if _, err := service.PublishTask(ctx, draft.ID, "creator-1", input); err != nil {
		t.Fatalf("expected 200-character title to publish, got %v", err)
	}

	// 2 characters even though 4 bytes
	draft, err = service.CreateDraft(ctx, "creator-1", DraftInput{Title: "placeholder title"})
	if err != nil {
		t.Fatalf("failed to create draft: %v", err)
	}
	input.Title = "éé"
	_, err = service.PublishTask(ctx, draft.ID, "creator-1", input)
	if err == nil {
		t.Fatal("expected 2-character title to fail publish validation")
	}
	if apperrors.StatusCode(err) != 400 {
		t.Errorf("expected 400 for short title, got %d", apperrors.StatusCode(err))
	}
}

func TestUpdateTask_BudgetRecomputesFees(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	task, err := service.CreateTask(ctx, "creator-1", fullTaskInput("10.00", 100))
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	newBudget := decimal.RequireFromString("0.50")
	updated, err := service.UpdateTask(ctx, task.ID, "creator-1", TaskPatch{Budget: &newBudget})
	if err != nil {
		t.Fatalf("failed to update: %v", err)
	}

	if got := updated.ServiceFee.StringFixed(2); got != "0.08" {
		t.Errorf("expected service fee 0.08 for budget 0.50, got %s", got)
	}
	if got := updated.TotalCost.StringFixed(2); got != "0.58" {
		t.Errorf("expected total cost 0.58, got %s", got)
	}
	if updated.Title != task.Title {
		t.Error("title should be unchanged by a budget-only update")
	}
	if *updated.MaxPerformers != 100 {
		t.Error("max_performers should be unchanged by a budget-only update")
	}
}

func TestUpdateTask_StatusChangeLogged(t *testing.T) {
	service, repo := newTestService(t)
	ctx := context.Background()

	task, err := service.CreateTask(ctx, "creator-1", fullTaskInput("10.00", 10))
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	status := constants.StatusActive
	updated, err := service.UpdateTask(ctx, task.ID, "creator-1", TaskPatch{Status: &status})
	if err != nil {
		t.Fatalf("failed to update status: %v", err)
	}
	if updated.Status != constants.StatusActive {
		t.Errorf("expected status active, got %s", updated.Status)
	}

	entries, err := repo.HistoryForTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("failed to load history: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(entries))
	}
	last := entries[1]
	if last.Reason != "Status changed to active" {
		t.Errorf("unexpected history reason %q", last.Reason)
	}

	// same status again: no new entry
	if _, err := service.UpdateTask(ctx, task.ID, "creator-1", TaskPatch{Status: &status}); err != nil {
		t.Fatalf("failed to re-apply status: %v", err)
	}
	entries, _ = repo.HistoryForTask(ctx, task.ID)
	if len(entries) != 2 {
		t.Errorf("expected no new history entry for unchanged status, got %d", len(entries))
	}
}

func TestUpdateTask_OwnershipEnforced(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	task, err := service.CreateTask(ctx, "creator-1", fullTaskInput("10.00", 10))
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	title := "Hijacked"
	_, err = service.UpdateTask(ctx, task.ID, "intruder", TaskPatch{Title: &title})
	if !errors.Is(err, apperrors.ErrNotTaskOwner) {
		t.Errorf("expected forbidden for non-owner update, got %v", err)
	}

	_, err = service.DeleteTask(ctx, task.ID, "intruder")
	if !errors.Is(err, apperrors.ErrNotTaskOwner) {
		t.Errorf("expected forbidden for non-owner delete, got %v", err)
	}

	unchanged, err := service.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("failed to reload task: %v", err)
	}
	if unchanged.Title != task.Title {
		t.Error("task should be unchanged after rejected mutations")
	}
}

func TestDeleteTask_Idempotent(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	deleted, err := service.DeleteTask(ctx, "never-existed", "creator-1")
	if err != nil {
		t.Fatalf("unexpected error deleting unknown task: %v", err)
	}
	if deleted {
		t.Error("expected false for unknown task id")
	}

	task, err := service.CreateTask(ctx, "creator-1", fullTaskInput("10.00", 10))
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	deleted, err = service.DeleteTask(ctx, task.ID, "creator-1")
	if err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if !deleted {
		t.Error("expected true on first delete")
	}

	deleted, err = service.DeleteTask(ctx, task.ID, "creator-1")
	if err != nil {
		t.Fatalf("unexpected error on second delete: %v", err)
	}
	if deleted {
		t.Error("expected false on second delete")
	}

	_, err = service.GetTask(ctx, task.ID)
	if !errors.Is(err, apperrors.ErrTaskNotFound) {
		t.Errorf("expected not-found after delete, got %v", err)
	}
}

func TestListTasks_PaginationConsistency(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	const taskCount = 25
	for i := 0; i < taskCount; i++ {
		in := fullTaskInput("5.00", 10)
		in.Title = fmt.Sprintf("Task number %02d", i)
		if _, err := service.CreateTask(ctx, "creator-1", in); err != nil {
			t.Fatalf("failed to seed task %d: %v", i, err)
		}
	}

	const pageSize = 10
	seen := 0
	for skip := 0; ; skip += pageSize {
		tasks, total, err := service.ListTasks(ctx, repository.TaskFilter{Skip: skip, Limit: pageSize})
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if total != taskCount {
			t.Fatalf("expected total %d, got %d", taskCount, total)
		}
		if len(tasks) == 0 {
			break
		}
		seen += len(tasks)
	}
	if seen != taskCount {
		t.Errorf("pages summed to %d tasks, expected %d", seen, taskCount)
	}
}

func TestListTasks_Filters(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	first := fullTaskInput("5.00", 10)
	first.Title = "Boost the GIVEAWAY reach"
	if _, err := service.CreateTask(ctx, "creator-1", first); err != nil {
		t.Fatalf("failed to create: %v", err)
	}

	second := fullTaskInput("5.00", 10)
	second.Title = "Follow our page"
	second.Platform = constants.PlatformFacebook
	if _, err := service.CreateTask(ctx, "creator-2", second); err != nil {
		t.Fatalf("failed to create: %v", err)
	}

	// case-insensitive search on title
	tasks, total, err := service.ListTasks(ctx, repository.TaskFilter{Search: "giveaway", Limit: 10})
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	if total != 1 || len(tasks) != 1 {
		t.Fatalf("expected exactly 1 search hit, got total=%d len=%d", total, len(tasks))
	}

	// conjunctive filters
	creator := "creator-2"
	platform := constants.PlatformFacebook
	tasks, total, err = service.ListTasks(ctx, repository.TaskFilter{
		CreatorID: &creator,
		Platform:  &platform,
		Limit:     10,
	})
	if err != nil {
		t.Fatalf("failed to filter: %v", err)
	}
	if total != 1 || len(tasks) != 1 {
		t.Fatalf("expected exactly 1 filter hit, got total=%d len=%d", total, len(tasks))
	}
	if tasks[0].CreatorID != "creator-2" {
		t.Errorf("unexpected creator %s", tasks[0].CreatorID)
	}
}
