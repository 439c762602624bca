package api

import (
	"encoding/json"
	"time"
)

// OptionalString is a JSON string field that distinguishes null from
// absent. UnmarshalJSON only runs when the key is present, so Set stays
// false for absent fields while an explicit null yields Set with a nil
// Value.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenRequest represents a token issuance request.
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenRefreshRequest represents a token refresh request.
type TokenRefreshRequest struct {
	Refresh string `json:"refresh"`
}

// TokenPairResponse is the response for a successful token request.
type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenRefreshResponse is the response for a successful refresh request.
type TokenRefreshResponse struct {
	Access string `json:"access"`
}

// UserResponse represents a registered user.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTaskRequest is the inbound body for creating a task. It has no
// owner field on purpose: ownership always comes from the access token.
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// UpdateTaskRequest is the inbound body for PUT/PATCH on a task. Absent
// fields stay unchanged; description is nullable, so an explicit null
// clears it; id, owner and created_at are never writable.
type UpdateTaskRequest struct {
	Title       *string        `json:"title"`
	Description OptionalString `json:"description"`
	Completed   *bool          `json:"completed"`
}

// TaskResponse represents a task in API responses. User is the owner's
// username, always derived server-side from the authenticated claims.
type TaskResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	User        string    `json:"user"`
}

// ErrorResponse represents an error response. Fields carries field-level
// validation detail when present.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}
