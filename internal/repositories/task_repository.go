package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"palmsgig.com/palmsgig/internal/constants"
	model "palmsgig.com/palmsgig/internal/models"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// TaskFilter narrows List results. All set filters are ANDed together.
type TaskFilter struct {
	CreatorID *string
	Status    *constants.TaskStatus
	Platform  *constants.Platform
	Search    string
	Skip      int
	Limit     int
}

// Create persists a task together with its first history entry in one
// transaction.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task, entry *model.TaskHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Preload("History").First(&task, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Update writes the full task row and, when entry is non-nil, appends a
// history entry in the same transaction.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task, entry *model.TaskHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("History").Save(task).Error; err != nil {
			return err
		}
		if entry == nil {
			return nil
		}
		return tx.Create(entry).Error
	})
}

// Delete hard-deletes the task row after appending the final history entry.
// Removal of dependent history rows is left to the cascade constraint.
func (r *TaskRepository) Delete(ctx context.Context, task *model.Task, entry *model.TaskHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Task{}, "id = ?", task.ID).Error
	})
}

// List returns one page of tasks plus the total size of the filtered set.
// The count runs as a separate query before the page query.
func (r *TaskRepository) List(ctx context.Context, filter TaskFilter) ([]model.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Task{})

	if filter.CreatorID != nil {
		query = query.Where("creator_id = ?", *filter.CreatorID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Platform != nil {
		query = query.Where("platform = ?", *filter.Platform)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []model.Task
	err := query.Order("created_at desc").Offset(filter.Skip).Limit(filter.Limit).Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// HistoryForTask returns a task's audit trail, oldest first.
func (r *TaskRepository) HistoryForTask(ctx context.Context, taskID string) ([]model.TaskHistory, error) {
	var entries []model.TaskHistory
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at asc").
		Find(&entries).Error
	return entries, err
}
