package tasks

import (
	"context"
	"errors"
	"unicode/utf8"

	domain "github.com/example/task-api/domain/task"
	"github.com/go-monolith/mono"
)

const minTitleLength = 3

var (
	// ErrTitleTooShort is returned when a task title has fewer than 3 characters.
	ErrTitleTooShort = errors.New("title must be at least 3 characters")
	// ErrOwnerRequired is returned when a request arrives without an owner.
	// This guards against callers bypassing the authentication layer.
	ErrOwnerRequired = errors.New("owner is required")
)

// validateTitle checks the minimum title length against the raw string.
// Counted in runes so multi-byte titles are not over-counted; whitespace
// counts toward the length.
func validateTitle(title string) error {
	if utf8.RuneCountInString(title) < minTitleLength {
		return ErrTitleTooShort
	}
	return nil
}

// createTask handles the tasks.create service request. The owner comes from
// the authenticated caller; completed defaults to false and created_at is
// assigned by the store at insert time.
func (m *TasksModule) createTask(_ context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	if req.Owner == "" {
		return TaskResponse{}, ErrOwnerRequired
	}
	if err := validateTitle(req.Title); err != nil {
		return TaskResponse{}, err
	}

	task := &domain.Task{
		Title:       req.Title,
		Description: req.Description,
		Completed:   false,
		UserID:      req.Owner,
	}

	if err := m.repo.Create(task); err != nil {
		return TaskResponse{}, err
	}

	return toTaskResponse(task), nil
}

// listTasks handles the tasks.list service request. Zero tasks is a valid
// result, never an error.
func (m *TasksModule) listTasks(_ context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	if req.Owner == "" {
		return ListTasksResponse{}, ErrOwnerRequired
	}

	tasks, err := m.repo.FindAllByOwner(req.Owner)
	if err != nil {
		return ListTasksResponse{}, err
	}

	response := ListTasksResponse{
		Tasks: make([]TaskResponse, 0, len(tasks)),
		Total: len(tasks),
	}
	for _, task := range tasks {
		response.Tasks = append(response.Tasks, toTaskResponse(task))
	}

	return response, nil
}

// getTask handles the tasks.get service request.
func (m *TasksModule) getTask(_ context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	if req.Owner == "" {
		return TaskResponse{}, ErrOwnerRequired
	}

	task, err := m.repo.FindByID(req.Owner, req.ID)
	if err != nil {
		return TaskResponse{}, err
	}

	return toTaskResponse(task), nil
}

// updateTask handles the tasks.update service request. The task is resolved
// through the same owner-scoped lookup as get, then only the writable
// fields (title, description, completed) are persisted.
func (m *TasksModule) updateTask(_ context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	if req.Owner == "" {
		return TaskResponse{}, ErrOwnerRequired
	}

	task, err := m.repo.FindByID(req.Owner, req.ID)
	if err != nil {
		return TaskResponse{}, err
	}

	fields := map[string]any{}
	if req.Title != nil {
		if err := validateTitle(*req.Title); err != nil {
			return TaskResponse{}, err
		}
		task.Title = *req.Title
		fields["title"] = *req.Title
	}
	switch {
	case req.ClearDescription:
		task.Description = nil
		fields["description"] = nil
	case req.Description != nil:
		task.Description = req.Description
		fields["description"] = *req.Description
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
		fields["completed"] = *req.Completed
	}

	if err := m.repo.Update(req.Owner, req.ID, fields); err != nil {
		return TaskResponse{}, err
	}

	return toTaskResponse(task), nil
}

// deleteTask handles the tasks.delete service request. Deletion is permanent.
func (m *TasksModule) deleteTask(_ context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if req.Owner == "" {
		return DeleteTaskResponse{}, ErrOwnerRequired
	}

	if err := m.repo.Delete(req.Owner, req.ID); err != nil {
		return DeleteTaskResponse{Deleted: false, ID: req.ID}, err
	}

	return DeleteTaskResponse{Deleted: true, ID: req.ID}, nil
}

// toTaskResponse converts a Task entity to a TaskResponse.
func toTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		CreatedAt:   task.CreatedAt,
	}
}
