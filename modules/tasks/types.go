package tasks

import "time"

// CreateTaskRequest is the request for creating a task. Owner is always
// set by the caller from validated token claims, never from client input.
type CreateTaskRequest struct {
	Owner       string  `json:"owner"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// TaskResponse represents a task in responses.
type TaskResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListTasksRequest is the request for listing an owner's tasks.
type ListTasksRequest struct {
	Owner string `json:"owner"`
}

// ListTasksResponse is the response containing an owner's tasks, newest first.
type ListTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
}

// GetTaskRequest is the request for retrieving a single task.
type GetTaskRequest struct {
	Owner string `json:"owner"`
	ID    uint   `json:"id"`
}

// UpdateTaskRequest is the request for updating a task. Absent fields are
// left unchanged; ClearDescription sets the description to null, since a
// nil Description pointer alone cannot carry that intent across the wire.
// id, owner and created_at are immutable.
type UpdateTaskRequest struct {
	Owner            string  `json:"owner"`
	ID               uint    `json:"id"`
	Title            *string `json:"title,omitempty"`
	Description      *string `json:"description,omitempty"`
	ClearDescription bool    `json:"clear_description,omitempty"`
	Completed        *bool   `json:"completed,omitempty"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	Owner string `json:"owner"`
	ID    uint   `json:"id"`
}

// DeleteTaskResponse is the response after deleting a task.
type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
	ID      uint `json:"id"`
}
