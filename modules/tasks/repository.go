package tasks

import (
	"errors"
	"fmt"

	domain "github.com/example/task-api/domain/task"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a task does not exist for the given owner.
// A task owned by another user is indistinguishable from an absent one:
// every lookup is filtered by owner before anything else, so foreign tasks
// never resolve at all.
var ErrNotFound = errors.New("task not found")

// Repository provides owner-scoped access to task storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create saves a new task to the database. CreatedAt is assigned by GORM
// at insert time.
func (r *Repository) Create(task *domain.Task) error {
	if err := r.db.Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID retrieves a task by its ID, scoped to the owner.
func (r *Repository) FindByID(ownerID string, id uint) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.First(&task, "user_id = ? AND id = ?", ownerID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

// FindAllByOwner retrieves all tasks belonging to the owner, newest first.
// The id tie-break keeps ordering stable for identical timestamps.
func (r *Repository) FindAllByOwner(ownerID string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.
		Where("user_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	return tasks, nil
}

// Update persists the given writable fields of an owner's task. The field
// map is built by the service from an explicit allow-list, so id, owner
// and created_at can never be touched here.
func (r *Repository) Update(ownerID string, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.Model(&domain.Task{}).
		Where("user_id = ? AND id = ?", ownerID, id).
		Updates(fields)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete permanently removes an owner's task by ID.
func (r *Repository) Delete(ownerID string, id uint) error {
	result := r.db.Delete(&domain.Task{}, "user_id = ? AND id = ?", ownerID, id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
