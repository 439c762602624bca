package api

import (
	"encoding/json"
	"log"
	"strconv"
	"strings"

	domain "github.com/example/task-api/domain/user"
	"github.com/example/task-api/modules/auth"
	"github.com/example/task-api/modules/tasks"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	authContainer  mono.ServiceContainer
	tasksContainer mono.ServiceContainer
	authAdapter    auth.AuthPort
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(authContainer, tasksContainer mono.ServiceContainer, authAdapter auth.AuthPort) *Handlers {
	return &Handlers{
		authContainer:  authContainer,
		tasksContainer: tasksContainer,
		authAdapter:    authAdapter,
	}
}

// Register handles user registration.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Username and password are required",
		})
	}

	authReq := auth.RegisterRequest{
		Username: req.Username,
		Password: req.Password,
	}
	var resp auth.RegisterResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.authContainer,
		"register",
		json.Marshal,
		json.Unmarshal,
		&authReq,
		&resp,
	); err != nil {
		return h.handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(UserResponse{
		ID:        resp.ID,
		Username:  resp.Username,
		CreatedAt: resp.CreatedAt,
	})
}

// Token handles token issuance for a username/password pair.
func (h *Handlers) Token(c *fiber.Ctx) error {
	var req TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Username and password are required",
		})
	}

	authReq := auth.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	}
	var resp auth.LoginResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.authContainer,
		"login",
		json.Marshal,
		json.Unmarshal,
		&authReq,
		&resp,
	); err != nil {
		return h.handleServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(TokenPairResponse{
		Access:  resp.AccessToken,
		Refresh: resp.RefreshToken,
	})
}

// TokenRefresh handles access token refresh.
func (h *Handlers) TokenRefresh(c *fiber.Ctx) error {
	var req TokenRefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	if req.Refresh == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Refresh token is required",
		})
	}

	authReq := auth.RefreshRequest{
		RefreshToken: req.Refresh,
	}
	var resp auth.RefreshResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.authContainer,
		"refresh-token",
		json.Marshal,
		json.Unmarshal,
		&authReq,
		&resp,
	); err != nil {
		return h.handleServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(TokenRefreshResponse{
		Access: resp.AccessToken,
	})
}

// Me returns the authenticated user's account details.
// This is a protected endpoint that requires a valid access token.
func (h *Handlers) Me(c *fiber.Ctx) error {
	claims, ok := callerClaims(c)
	if !ok {
		return unauthenticated(c)
	}

	user, err := h.authAdapter.GetUser(c.UserContext(), claims.UserID)
	if err != nil {
		log.Printf("[api] Failed to retrieve user %s: %v", claims.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to retrieve user details",
		})
	}

	return c.Status(fiber.StatusOK).JSON(UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	})
}

// ListTasks returns all tasks owned by the authenticated user, newest first.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	claims, ok := callerClaims(c)
	if !ok {
		return unauthenticated(c)
	}

	tasksReq := tasks.ListTasksRequest{Owner: claims.UserID}
	var resp tasks.ListTasksResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.tasksContainer,
		"list",
		json.Marshal,
		json.Unmarshal,
		&tasksReq,
		&resp,
	); err != nil {
		return h.handleServiceError(c, err)
	}

	result := make([]TaskResponse, 0, len(resp.Tasks))
	for _, t := range resp.Tasks {
		result = append(result, toAPITask(t, claims.Username))
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// CreateTask creates a task owned by the authenticated user. Any owner or
// user value in the body is ignored: the inbound type has no such field.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	claims, ok := callerClaims(c)
	if !ok {
		return unauthenticated(c)
	}

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	tasksReq := tasks.CreateTaskRequest{
		Owner:       claims.UserID,
		Title:       req.Title,
		Description: req.Description,
	}
	var resp tasks.TaskResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.tasksContainer,
		"create",
		json.Marshal,
		json.Unmarshal,
		&tasksReq,
		&resp,
	); err != nil {
		return h.handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toAPITask(resp, claims.Username))
}

// GetTask retrieves a single task owned by the authenticated user.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	claims, ok := callerClaims(c)
	if !ok {
		return unauthenticated(c)
	}

	id, ok := taskID(c)
	if !ok {
		return taskNotFound(c)
	}

	tasksReq := tasks.GetTaskRequest{Owner: claims.UserID, ID: id}
	var resp tasks.TaskResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.tasksContainer,
		"get",
		json.Marshal,
		json.Unmarshal,
		&tasksReq,
		&resp,
	); err != nil {
		return h.handleServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(toAPITask(resp, claims.Username))
}

// UpdateTask handles a full update (PUT). Title is required, matching the
// behavior of the partial update for every other field.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	return h.update(c, false)
}

// PatchTask handles a partial update (PATCH). All fields are optional.
func (h *Handlers) PatchTask(c *fiber.Ctx) error {
	return h.update(c, true)
}

func (h *Handlers) update(c *fiber.Ctx, partial bool) error {
	claims, ok := callerClaims(c)
	if !ok {
		return unauthenticated(c)
	}

	id, ok := taskID(c)
	if !ok {
		return taskNotFound(c)
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	if !partial && req.Title == nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Title is required",
			Fields:  map[string]string{"title": "this field is required"},
		})
	}

	tasksReq := tasks.UpdateTaskRequest{
		Owner:     claims.UserID,
		ID:        id,
		Title:     req.Title,
		Completed: req.Completed,
	}
	if req.Description.Set {
		tasksReq.Description = req.Description.Value
		tasksReq.ClearDescription = req.Description.Value == nil
	}
	var resp tasks.TaskResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.tasksContainer,
		"update",
		json.Marshal,
		json.Unmarshal,
		&tasksReq,
		&resp,
	); err != nil {
		return h.handleServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(toAPITask(resp, claims.Username))
}

// DeleteTask permanently deletes a task owned by the authenticated user.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	claims, ok := callerClaims(c)
	if !ok {
		return unauthenticated(c)
	}

	id, ok := taskID(c)
	if !ok {
		return taskNotFound(c)
	}

	tasksReq := tasks.DeleteTaskRequest{Owner: claims.UserID, ID: id}
	var resp tasks.DeleteTaskResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.tasksContainer,
		"delete",
		json.Marshal,
		json.Unmarshal,
		&tasksReq,
		&resp,
	); err != nil {
		return h.handleServiceError(c, err)
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}

// callerClaims returns the claims stored by the auth middleware.
func callerClaims(c *fiber.Ctx) (*domain.Claims, bool) {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	return claims, ok
}

// taskID parses the :id route parameter. Non-numeric ids behave exactly
// like absent tasks.
func taskID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   "unauthorized",
		Message: "User not authenticated",
	})
}

func taskNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
		Error:   "not_found",
		Message: "Task not found",
	})
}

// toAPITask converts a tasks service response to the API task shape,
// attaching the owner's username from the authenticated claims.
func toAPITask(t tasks.TaskResponse, username string) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		User:        username,
	}
}

// handleServiceError maps service-call failures to client responses.
// Errors cross the service container as strings, so known messages are
// matched here; nothing internal leaks to the client.
func (h *Handlers) handleServiceError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "task not found"):
		return taskNotFound(c)
	case strings.Contains(errStr, "title must be at least"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Title must be at least 3 characters",
			Fields:  map[string]string{"title": "must be at least 3 characters"},
		})
	case strings.Contains(errStr, "invalid username or password"):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid username or password",
		})
	case strings.Contains(errStr, "invalid refresh token"):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid or expired refresh token",
		})
	case strings.Contains(errStr, "already exists"):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "User with this username already exists",
		})
	case strings.Contains(errStr, "username is required"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Username is required",
			Fields:  map[string]string{"username": "this field is required"},
		})
	case strings.Contains(errStr, "username must be at most"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Username must be at most 150 characters",
			Fields:  map[string]string{"username": "must be at most 150 characters"},
		})
	case strings.Contains(errStr, "password must be at least"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Password must be at least 8 characters",
			Fields:  map[string]string{"password": "must be at least 8 characters"},
		})
	case strings.Contains(errStr, "password must be at most"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Password must be at most 72 characters",
			Fields:  map[string]string{"password": "must be at most 72 characters"},
		})
	default:
		// Log the actual error but don't expose it to the client
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}
