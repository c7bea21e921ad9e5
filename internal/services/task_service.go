package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"palmsgig.com/palmsgig/internal/constants"
	apperrors "palmsgig.com/palmsgig/internal/errors"
	"palmsgig.com/palmsgig/internal/fees"
	model "palmsgig.com/palmsgig/internal/models"
	"palmsgig.com/palmsgig/internal/notifications"
	repository "palmsgig.com/palmsgig/internal/repositories"
)

// TaskService is the sole mutator of tasks and their history. Every mutating
// operation commits the task write and its history entry in one transaction.
type TaskService struct {
	repo     *repository.TaskRepository
	calc     *fees.Calculator
	notifier notifications.Notifier
}

func NewTaskService(
	repo *repository.TaskRepository,
	calc *fees.Calculator,
	notifier notifications.Notifier,
) *TaskService {
	return &TaskService{
		repo:     repo,
		calc:     calc,
		notifier: notifier,
	}
}

// TaskInput carries the fields of a full task creation. The HTTP layer has
// already validated shapes and ranges; the service assumes validated input.
type TaskInput struct {
	Title          string
	Description    string
	Instructions   string
	Platform       constants.Platform
	TaskType       constants.TaskType
	Budget         decimal.Decimal
	MaxPerformers  int
	TargetCriteria *string
	ExpiresAt      *time.Time
}

/// DraftInput carries a partial creation: only the title is required.
type DraftInput struct {
	Title          string
	Description    *string
	Instructions   *string
	Platform       *constants.Platform
	TaskType       *constants.TaskType
	Budget         *decimal.Decimal
	MaxPerformers  *int
	TargetCriteria *string
	ExpiresAt      *time.Time
}

// PublishInput fills any fields still missing on a draft before validation.
type PublishInput = DraftInput

// TaskPatch is a partial update. Only non-nil fields are applied.
type TaskPatch struct {
	Title          *string
	Description    *string
	Instructions   *string
	Platform       *constants.Platform
	TaskType       *constants.TaskType
	Budget         *decimal.Decimal
	MaxPerformers  *int
	TargetCriteria *string
	ExpiresAt      *time.Time
	Status         *constants.TaskStatus
}

func (s *TaskService) CreateTask(ctx context.Context, creatorID string, in TaskInput) (*model.Task, error) {
	serviceFee, totalCost, err := s.calc.Fees(in.Budget)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	budget := in.Budget
	platform := in.Platform
	taskType := in.TaskType
	maxPerformers := in.MaxPerformers

	task := &model.Task{
		ID:                uuid.NewString(),
		CreatorID:         creatorID,
		Title:             in.Title,
		Description:       &in.Description,
		Instructions:      &in.Instructions,
		Platform:          &platform,
		TaskType:          &taskType,
		Budget:            &budget,
		ServiceFee:        &serviceFee,
		TotalCost:         &totalCost,
		MaxPerformers:     &maxPerformers,
		CurrentPerformers: 0,
		Status:            constants.StatusDraft,
		TargetCriteria:    in.TargetCriteria,
		ExpiresAt:         in.ExpiresAt,
	}
	task.Touch(now)

	entry := s.historyEntry(task.ID, constants.StatusNone, constants.StatusDraft, creatorID, "Task created", now)

	if err := s.repo.Create(ctx, task, entry); err != nil {
		return nil, err
	}

	return task, nil
}

func (s *TaskService) CreateDraft(ctx context.Context, creatorID string, in DraftInput) (*model.Task, error) {
	now := time.Now().UTC()

	task := &model.Task{
		ID:                uuid.NewString(),
		CreatorID:         creatorID,
		Title:             in.Title,
		Description:       in.Description,
		Instructions:      in.Instructions,
		Platform:          in.Platform,
		TaskType:          in.TaskType,
		Budget:            in.Budget,
		MaxPerformers:     in.MaxPerformers,
		CurrentPerformers: 0,
		Status:            constants.StatusDraft,
		TargetCriteria:    in.TargetCriteria,
		ExpiresAt:         in.ExpiresAt,
	}

	if in.Budget != nil {
		serviceFee, totalCost, err := s.calc.Fees(*in.Budget)
		if err != nil {
			return nil, err
		}
		task.ServiceFee = &serviceFee
		task.TotalCost = &totalCost
	}
	task.Touch(now)

	entry := s.historyEntry(task.ID, constants.StatusNone, constants.StatusDraft, creatorID, "Draft created", now)

	if err := s.repo.Create(ctx, task, entry); err != nil {
		return nil, err
	}

	return task, nil
}

// PublishTask completes a draft and advances it to pending payment. Checks run
// in order: existence, ownership, draft status, required-field completeness.
func (s *TaskService) PublishTask(ctx context.Context, taskID, userID string, in PublishInput) (*model.Task, error) {
	task, err := s.loadOwned(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	if task.Status != constants.StatusDraft {
		return nil, apperrors.NewTaskNotDraft(string(task.Status))
	}

	mergePublishFields(task, in)

	if err := validateReady(task); err != nil {
		return nil, err
	}

	serviceFee, totalCost, err := s.calc.Fees(*task.Budget)
	if err != nil {
		return nil, err
	}
	task.ServiceFee = &serviceFee
	task.TotalCost = &totalCost

	now := time.Now().UTC()
	previous := task.Status
	task.Status = constants.StatusPendingPayment
	task.Touch(now)

	entry := s.historyEntry(task.ID, previous, task.Status, userID, "Task published", now)

	if err := s.repo.Update(ctx, task, entry); err != nil {
		return nil, err
	}

	s.notifyAsync(task.CreatorID, "Task published",
		fmt.Sprintf("Task %q is awaiting payment.", task.Title))

	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID string) (*model.Task, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// UpdateTask applies a partial update field by field. A budget change
// recomputes the fee fields; a status change is recorded in history.
func (s *TaskService) UpdateTask(ctx context.Context, taskID, userID string, patch TaskPatch) (*model.Task, error) {
	task, err := s.loadOwned(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = patch.Description
	}
	if patch.Instructions != nil {
		task.Instructions = patch.Instructions
	}
	if patch.Platform != nil {
		task.Platform = patch.Platform
	}
	if patch.TaskType != nil {
		task.TaskType = patch.TaskType
	}
	if patch.MaxPerformers != nil {
		task.MaxPerformers = patch.MaxPerformers
	}
	if patch.TargetCriteria != nil {
		task.TargetCriteria = patch.TargetCriteria
	}
	if patch.ExpiresAt != nil {
		task.ExpiresAt = patch.ExpiresAt
	}

	if patch.Budget != nil {
		serviceFee, totalCost, err := s.calc.Fees(*patch.Budget)
		if err != nil {
			return nil, err
		}
		task.Budget = patch.Budget
		task.ServiceFee = &serviceFee
		task.TotalCost = &totalCost
	}

	now := time.Now().UTC()
	var entry *model.TaskHistory
	if patch.Status != nil && *patch.Status != task.Status {
		previous := task.Status
		task.Status = *patch.Status
		reason := fmt.Sprintf("Status changed to %s", *patch.Status)
		entry = s.historyEntry(task.ID, previous, task.Status, userID, reason, now)
	}
	task.Touch(now)

	if err := s.repo.Update(ctx, task, entry); err != nil {
		return nil, err
	}

	return task, nil
}

// DeleteTask removes a task after recording a final history entry. Deleting
// an unknown id is a no-op that returns false.
func (s *TaskService) DeleteTask(ctx context.Context, taskID, userID string) (bool, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if task.CreatorID != userID {
		return false, apperrors.ErrNotTaskOwner
	}

	now := time.Now().UTC()
	entry := s.historyEntry(task.ID, task.Status, constants.StatusDeleted, userID, "Task deleted", now)

	if err := s.repo.Delete(ctx, task, entry); err != nil {
		return false, err
	}

	return true, nil
}

func (s *TaskService) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]model.Task, int64, error) {
	return s.repo.List(ctx, filter)
}

// FeeBreakdown exposes the calculator for display composition.
func (s *TaskService) FeeBreakdown(budget decimal.Decimal, maxPerformers int) (fees.Breakdown, error) {
	return s.calc.Calculate(budget, maxPerformers)
}

func (s *TaskService) loadOwned(ctx context.Context, taskID, userID string) (*model.Task, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}

	if task.CreatorID != userID {
		return nil, apperrors.ErrNotTaskOwner
	}

	return task, nil
}

func (s *TaskService) historyEntry(
	taskID string,
	previous, next constants.TaskStatus,
	changedBy, reason string,
	at time.Time,
) *model.TaskHistory {
	return &model.TaskHistory{
		ID:             uuid.NewString(),
		TaskID:         taskID,
		PreviousStatus: previous,
		NewStatus:      next,
		ChangedBy:      changedBy,
		Reason:         reason,
		CreatedAt:      at,
	}
}

func (s *TaskService) notifyAsync(userID, subject, body string) {
	if s.notifier == nil {
		return
	}
	go func() {
		if err := s.notifier.Send(context.Background(), userID, subject, body); err != nil {
			log.Printf("notification to %s failed: %v", userID, err)
		}
	}()
}

func mergePublishFields(task *model.Task, in PublishInput) {
	if in.Title != "" {
		task.Title = in.Title
	}
	if in.Description != nil {
		task.Description = in.Description
	}
	if in.Instructions != nil {
		task.Instructions = in.Instructions
	}
	if in.Platform != nil {
		task.Platform = in.Platform
	}
	if in.TaskType != nil {
		task.TaskType = in.TaskType
	}
	if in.Budget != nil {
		task.Budget = in.Budget
	}
	if in.MaxPerformers != nil {
		task.MaxPerformers = in.MaxPerformers
	}
	if in.TargetCriteria != nil {
		task.TargetCriteria = in.TargetCriteria
	}
	if in.ExpiresAt != nil {
		task.ExpiresAt = in.ExpiresAt
	}
}

// validateReady checks that every field required outside of draft status is
// populated and in range. The first failure is returned. Length bounds count
// characters, not bytes.
func validateReady(task *model.Task) error {
	if n := utf8.RuneCountInString(task.Title); n < constants.TitleMinLen || n > constants.TitleMaxLen {
		return apperrors.NewValidation("title must be between 3 and 255 characters")
	}
	if task.Description == nil {
		return apperrors.NewValidation("description is required")
	}
	if n := utf8.RuneCountInString(*task.Description); n < constants.TextMinLen || n > constants.TextMaxLen {
		return apperrors.NewValidation("description must be between 10 and 5000 characters")
	}
	if task.Instructions == nil {
		return apperrors.NewValidation("instructions are required")
	}
	if n := utf8.RuneCountInString(*task.Instructions); n < constants.TextMinLen || n > constants.TextMaxLen {
		return apperrors.NewValidation("instructions must be between 10 and 5000 characters")
	}
	if task.Platform == nil || !task.Platform.Valid() {
		return apperrors.NewValidation("a valid platform is required")
	}
	if task.TaskType == nil || !task.TaskType.Valid() {
		return apperrors.NewValidation("a valid task type is required")
	}
	if task.Budget == nil || !task.Budget.IsPositive() {
		return apperrors.NewValidation("budget must be greater than zero")
	}
	if task.MaxPerformers == nil || *task.MaxPerformers < 1 || *task.MaxPerformers > constants.MaxPerformersCap {
		return apperrors.NewValidation("max_performers must be between 1 and 10000")
	}
	return nil
}
