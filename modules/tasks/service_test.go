package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/example/task-api/domain/task"
)

// newTestModule builds a TasksModule over an in-memory database.
func newTestModule(t *testing.T) *TasksModule {
	t.Helper()

	db := setupTestDB(t)
	return &TasksModule{
		db:   db,
		repo: NewRepository(db),
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func TestCreateTask(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()

	resp, err := m.createTask(ctx, CreateTaskRequest{
		Owner:       "user-a",
		Title:       "Buy milk",
		Description: strPtr("Two liters"),
	}, nil)
	if err != nil {
		t.Fatalf("createTask() error = %v", err)
	}

	if resp.ID == 0 {
		t.Error("createTask() did not assign an id")
	}
	if resp.Title != "Buy milk" {
		t.Errorf("resp.Title = %q, want %q", resp.Title, "Buy milk")
	}
	if resp.Completed {
		t.Error("new task must default to not completed")
	}
	if resp.CreatedAt.IsZero() {
		t.Error("createTask() did not assign created_at")
	}
}

func TestCreateTask_TitleValidation(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{
			name:    "empty title",
			title:   "",
			wantErr: true,
		},
		{
			name:    "two characters",
			title:   "ab",
			wantErr: true,
		},
		{
			name:    "exactly three characters",
			title:   "abc",
			wantErr: false,
		},
		{
			name:    "whitespace counts toward length",
			title:   "a  ",
			wantErr: false,
		},
		{
			name:    "longer title",
			title:   "Buy milk",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.createTask(ctx, CreateTaskRequest{Owner: "user-a", Title: tt.title}, nil)
			if tt.wantErr {
				if !errors.Is(err, ErrTitleTooShort) {
					t.Errorf("createTask(%q) error = %v, want ErrTitleTooShort", tt.title, err)
				}
			} else if err != nil {
				t.Errorf("createTask(%q) error = %v, want nil", tt.title, err)
			}
		})
	}
}

func TestCreateTask_OwnerRequired(t *testing.T) {
	m := newTestModule(t)

	_, err := m.createTask(context.Background(), CreateTaskRequest{Title: "Buy milk"}, nil)
	if !errors.Is(err, ErrOwnerRequired) {
		t.Errorf("createTask() without owner error = %v, want ErrOwnerRequired", err)
	}
}

func TestListTasks_ScopedToOwner(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()

	if _, err := m.createTask(ctx, CreateTaskRequest{Owner: "user-a", Title: "Buy milk"}, nil); err != nil {
		t.Fatalf("createTask() error = %v", err)
	}

	t.Run("owner sees the task", func(t *testing.T) {
		resp, err := m.listTasks(ctx, ListTasksRequest{Owner: "user-a"}, nil)
		if err != nil {
			t.Fatalf("listTasks() error = %v", err)
		}
		if resp.Total != 1 {
			t.Fatalf("expected 1 task, got %d", resp.Total)
		}
		if resp.Tasks[0].Title != "Buy milk" {
			t.Errorf("task title = %q, want %q", resp.Tasks[0].Title, "Buy milk")
		}
	})

	t.Run("another user sees nothing", func(t *testing.T) {
		resp, err := m.listTasks(ctx, ListTasksRequest{Owner: "user-b"}, nil)
		if err != nil {
			t.Fatalf("listTasks() error = %v", err)
		}
		if resp.Total != 0 {
			t.Errorf("expected empty list for user-b, got %d tasks", resp.Total)
		}
		if resp.Tasks == nil {
			t.Error("expected empty slice, got nil")
		}
	})
}

func TestListTasks_NewestFirst(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"t1", "t2", "t3"} {
		task := &domain.Task{
			Title:     title,
			UserID:    "user-a",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := m.repo.Create(task); err != nil {
			t.Fatalf("failed to create task: %v", err)
		}
	}

	resp, err := m.listTasks(ctx, ListTasksRequest{Owner: "user-a"}, nil)
	if err != nil {
		t.Fatalf("listTasks() error = %v", err)
	}

	want := []string{"t3", "t2", "t1"}
	if len(resp.Tasks) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(resp.Tasks))
	}
	for i, task := range resp.Tasks {
		if task.Title != want[i] {
			t.Errorf("tasks[%d].Title = %q, want %q", i, task.Title, want[i])
		}
	}
}

func TestGetTask(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()

	created, err := m.createTask(ctx, CreateTaskRequest{Owner: "user-a", Title: "Buy milk"}, nil)
	if err != nil {
		t.Fatalf("createTask() error = %v", err)
	}

	t.Run("owner retrieves all fields", func(t *testing.T) {
		resp, err := m.getTask(ctx, GetTaskRequest{Owner: "user-a", ID: created.ID}, nil)
		if err != nil {
			t.Fatalf("getTask() error = %v", err)
		}
		if resp.ID != created.ID || resp.Title != created.Title {
			t.Errorf("getTask() = %+v, want %+v", resp, created)
		}
		if !resp.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("created_at changed across retrieves: %v vs %v", resp.CreatedAt, created.CreatedAt)
		}
	})

	t.Run("other user gets not found", func(t *testing.T) {
		_, err := m.getTask(ctx, GetTaskRequest{Owner: "user-b", ID: created.ID}, nil)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("getTask() foreign error = %v, want ErrNotFound", err)
		}
	})
}

func TestUpdateTask(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()

	created, err := m.createTask(ctx, CreateTaskRequest{Owner: "user-a", Title: "Buy milk"}, nil)
	if err != nil {
		t.Fatalf("createTask() error = %v", err)
	}

	t.Run("partial update leaves other fields unchanged", func(t *testing.T) {
		resp, err := m.updateTask(ctx, UpdateTaskRequest{
			Owner:     "user-a",
			ID:        created.ID,
			Completed: boolPtr(true),
		}, nil)
		if err != nil {
			t.Fatalf("updateTask() error = %v", err)
		}
		if !resp.Completed {
			t.Error("completed was not updated")
		}
		if resp.Title != "Buy milk" {
			t.Errorf("title changed to %q on partial update", resp.Title)
		}
	})

	t.Run("description can be cleared to null", func(t *testing.T) {
		if _, err := m.updateTask(ctx, UpdateTaskRequest{
			Owner:       "user-a",
			ID:          created.ID,
			Description: strPtr("Two liters"),
		}, nil); err != nil {
			t.Fatalf("updateTask() error = %v", err)
		}

		resp, err := m.updateTask(ctx, UpdateTaskRequest{
			Owner:            "user-a",
			ID:               created.ID,
			ClearDescription: true,
		}, nil)
		if err != nil {
			t.Fatalf("updateTask() error = %v", err)
		}
		if resp.Description != nil {
			t.Errorf("description = %q, want nil after clearing", *resp.Description)
		}

		task, err := m.repo.FindByID("user-a", created.ID)
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if task.Description != nil {
			t.Errorf("stored description = %q, want nil", *task.Description)
		}
	})

	t.Run("title is revalidated", func(t *testing.T) {
		_, err := m.updateTask(ctx, UpdateTaskRequest{
			Owner: "user-a",
			ID:    created.ID,
			Title: strPtr("ab"),
		}, nil)
		if !errors.Is(err, ErrTitleTooShort) {
			t.Errorf("updateTask() short title error = %v, want ErrTitleTooShort", err)
		}
	})

	t.Run("created_at is immutable", func(t *testing.T) {
		resp, err := m.updateTask(ctx, UpdateTaskRequest{
			Owner: "user-a",
			ID:    created.ID,
			Title: strPtr("Buy oat milk"),
		}, nil)
		if err != nil {
			t.Fatalf("updateTask() error = %v", err)
		}
		if !resp.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("created_at changed on update: %v vs %v", resp.CreatedAt, created.CreatedAt)
		}

		task, err := m.repo.FindByID("user-a", created.ID)
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if task.UserID != "user-a" {
			t.Errorf("owner changed on update: %q", task.UserID)
		}
	})

	t.Run("other user gets not found", func(t *testing.T) {
		_, err := m.updateTask(ctx, UpdateTaskRequest{
			Owner: "user-b",
			ID:    created.ID,
			Title: strPtr("Hijacked"),
		}, nil)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("updateTask() foreign error = %v, want ErrNotFound", err)
		}
	})
}

func TestDeleteTask(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()

	created, err := m.createTask(ctx, CreateTaskRequest{Owner: "user-a", Title: "Buy milk"}, nil)
	if err != nil {
		t.Fatalf("createTask() error = %v", err)
	}

	t.Run("other user gets not found and task survives", func(t *testing.T) {
		_, err := m.deleteTask(ctx, DeleteTaskRequest{Owner: "user-b", ID: created.ID}, nil)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("deleteTask() foreign error = %v, want ErrNotFound", err)
		}

		if _, err := m.getTask(ctx, GetTaskRequest{Owner: "user-a", ID: created.ID}, nil); err != nil {
			t.Errorf("task should survive a foreign delete attempt: %v", err)
		}
	})

	t.Run("owner deletes", func(t *testing.T) {
		resp, err := m.deleteTask(ctx, DeleteTaskRequest{Owner: "user-a", ID: created.ID}, nil)
		if err != nil {
			t.Fatalf("deleteTask() error = %v", err)
		}
		if !resp.Deleted {
			t.Error("deleteTask() reported Deleted = false")
		}

		_, err = m.getTask(ctx, GetTaskRequest{Owner: "user-a", ID: created.ID}, nil)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})
}
