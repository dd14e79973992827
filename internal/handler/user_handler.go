package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jatrackr/jatrackr-backend/internal/domain"
	"github.com/jatrackr/jatrackr-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUserRequest represents the create user request body
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ReplaceUserRequest represents the full-replace request body. Any id present
// here is ignored; the record keeps its pre-existing identifier.
type ReplaceUserRequest struct {
	ID             string   `json:"id,omitempty"`
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	JobDocumentIDs []string `json:"jobDocumentIds"`
}

// PatchUserRequest represents the partial update request body
type PatchUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID             string   `json:"id"`
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	JobDocumentIDs []string `json:"jobDocumentIds"`
	CreatedAt      string   `json:"createdAt"`
	UpdatedAt      string   `json:"updatedAt"`
}

// GetUsers handles GET /api/users
func (h *UserHandler) GetUsers(c echo.Context) error {
	users, err := h.userService.GetUsers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		return NewInternalError(c, "Failed to list users")
	}

	response := make([]UserResponse, len(users))
	for i, user := range users {
		response[i] = toUserResponse(user)
	}
	return c.JSON(http.StatusOK, response)
}

// GetUserByID handles GET /api/users/:id
func (h *UserHandler) GetUserByID(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid user ID", nil)
	}
	return h.respondWithUser(c, domain.UserLookup{Kind: domain.LookupByID, ID: id})
}

// GetUserDetails handles GET /api/users/:key/details where key is a username
// or an email address
func (h *UserHandler) GetUserDetails(c echo.Context) error {
	key := c.Param("key")
	lookup := domain.UserLookup{Kind: domain.LookupByUsername, Username: key}
	if strings.Contains(key, "@") {
		lookup = domain.UserLookup{Kind: domain.LookupByEmail, Email: key}
	}
	return h.respondWithUser(c, lookup)
}

// GetUserByQuery handles GET /api/users/user?id=&username=&email=
func (h *UserHandler) GetUserByQuery(c echo.Context) error {
	lookup := domain.ResolveUserLookup(
		c.QueryParam("id"),
		c.QueryParam("username"),
		c.QueryParam("email"),
	)
	if lookup.Kind == domain.LookupNone {
		return NewValidationError(c, "At least one of id, username or email is required", nil)
	}
	return h.respondWithUser(c, lookup)
}

// CreateUser handles POST /api/users
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, err := h.userService.CreateUser(service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUsernameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "username", Message: "Username is required"},
			})
		}
		if errors.Is(err, domain.ErrEmailRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "email", Message: "Email is required"},
			})
		}
		if errors.Is(err, domain.ErrUsernameTooLong) || errors.Is(err, domain.ErrEmailTooLong) {
			return NewValidationError(c, err.Error(), nil)
		}
		if errors.Is(err, domain.ErrDuplicateUser) {
			return NewValidationError(c, "Username or email already registered", nil)
		}
		log.Error().Err(err).Msg("Failed to create user")
		return NewInternalError(c, "Failed to create user")
	}

	log.Info().Str("user_id", user.ID.Hex()).Str("username", user.Username).Msg("User created")

	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/api/users/%s", user.ID.Hex()))
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// ReplaceUser handles PUT /api/users/:idOrName
func (h *UserHandler) ReplaceUser(c echo.Context) error {
	lookup, err := pathLookup(c.Param("idOrName"))
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	var req ReplaceUserRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	jobIDs, err := parseObjectIDs(req.JobDocumentIDs)
	if err != nil {
		return NewValidationError(c, "Invalid job document ID", nil)
	}

	err = h.userService.ReplaceUser(lookup, service.ReplaceUserInput{
		Username:       req.Username,
		Email:          req.Email,
		JobDocumentIDs: jobIDs,
	})
	if err != nil {
		return h.mapUserWriteError(c, err, "Failed to update user")
	}

	return c.NoContent(http.StatusNoContent)
}

// PatchUser handles PATCH /api/users/:idOrName
func (h *UserHandler) PatchUser(c echo.Context) error {
	lookup, err := pathLookup(c.Param("idOrName"))
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	var req PatchUserRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	err = h.userService.PatchUser(lookup, domain.UserPatch{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return h.mapUserWriteError(c, err, "Failed to update user")
	}

	return c.NoContent(http.StatusNoContent)
}

// DeleteUser handles DELETE /api/users/:idOrName
func (h *UserHandler) DeleteUser(c echo.Context) error {
	lookup, err := pathLookup(c.Param("idOrName"))
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	if err := h.userService.DeleteUser(lookup); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Msg("Failed to delete user")
		return NewInternalError(c, "Failed to delete user")
	}

	log.Info().Str("key", c.Param("idOrName")).Msg("User deleted")
	return c.NoContent(http.StatusNoContent)
}

// DeleteUserByQuery handles DELETE /api/users/user?id=&username=
func (h *UserHandler) DeleteUserByQuery(c echo.Context) error {
	lookup := domain.ResolveUserLookup(c.QueryParam("id"), c.QueryParam("username"), "")
	if lookup.Kind == domain.LookupNone {
		return NewValidationError(c, "At least one of id or username is required", nil)
	}

	if err := h.userService.DeleteUser(lookup); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Msg("Failed to delete user")
		return NewInternalError(c, "Failed to delete user")
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) respondWithUser(c echo.Context, lookup domain.UserLookup) error {
	user, err := h.userService.GetUser(lookup)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Msg("Failed to get user")
		return NewInternalError(c, "Failed to get user")
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) mapUserWriteError(c echo.Context, err error, logMsg string) error {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return NewNotFoundError(c, "User not found")
	case errors.Is(err, domain.ErrUsernameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "username", Message: "Username is required"},
		})
	case errors.Is(err, domain.ErrEmailRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "email", Message: "Email is required"},
		})
	case errors.Is(err, domain.ErrUsernameTooLong), errors.Is(err, domain.ErrEmailTooLong):
		return NewValidationError(c, err.Error(), nil)
	default:
		log.Error().Err(err).Msg(logMsg)
		return NewInternalError(c, logMsg)
	}
}

// pathLookup classifies a path segment that addresses a user by id or
// username. Email addressing is only available through the details and
// multi-key endpoints.
func pathLookup(key string) (domain.UserLookup, error) {
	lookup := domain.ClassifyUserKey(key)
	switch lookup.Kind {
	case domain.LookupByID, domain.LookupByUsername:
		return lookup, nil
	default:
		return domain.UserLookup{}, errors.New("path must address a user by id or username")
	}
}

func parseObjectIDs(hexes []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func toUserResponse(user *domain.User) UserResponse {
	jobIDs := make([]string, len(user.JobDocumentIDs))
	for i, id := range user.JobDocumentIDs {
		jobIDs[i] = id.Hex()
	}
	return UserResponse{
		ID:             user.ID.Hex(),
		Username:       user.Username,
		Email:          user.Email,
		JobDocumentIDs: jobIDs,
		CreatedAt:      user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      user.UpdatedAt.Format(time.RFC3339),
	}
}
