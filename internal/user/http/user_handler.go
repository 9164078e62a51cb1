// Package http provides the HTTP handlers for user management and role assignment.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/identity/internal/httputil"
	"github.com/allisson/identity/internal/user/http/dto"
	"github.com/allisson/identity/internal/user/usecase"
	customValidation "github.com/allisson/identity/internal/validation"
)

type validator interface {
	Validate() error
}

// UserHandler handles the /user endpoints.
type UserHandler struct {
	userUseCase usecase.UseCase
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler with required dependencies.
func NewUserHandler(userUseCase usecase.UseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		logger:      logger,
	}
}

func (h *UserHandler) bind(c *gin.Context, req validator) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return false
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return false
	}
	return true
}

func (h *UserHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid user ID format: must be a valid UUID"),
			h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// ListHandler retrieves users with pagination support.
// GET /user?offset=0&limit=50
func (h *UserHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	output, err := h.userUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUsersToListResponse(output))
}

// GetHandler retrieves a user by ID.
// GET /user/:id
func (h *UserHandler) GetHandler(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	user, err := h.userUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUserToResponse(user))
}

// CreateHandler creates a user on behalf of an administrator.
// POST /user - Returns 201 Created.
func (h *UserHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.bind(c, &req) {
		return
	}

	user, err := h.userUseCase.Create(c.Request.Context(), usecase.CreateUserInput{
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapUserToResponse(user))
}

// UpdateHandler changes the username and email of a user.
// PUT /user/:id
func (h *UserHandler) UpdateHandler(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if !h.bind(c, &req) {
		return
	}

	input := usecase.UpdateUserInput{
		UserName:         req.UserName,
		Email:            req.Email,
		ConcurrencyStamp: req.ConcurrencyStamp,
	}
	if req.ID != nil {
		bodyID, err := uuid.Parse(*req.ID)
		if err != nil {
			httputil.HandleBadRequestGin(c, fmt.Errorf("invalid user ID in body: must be a valid UUID"), h.logger)
			return
		}
		input.ID = &bodyID
	}

	user, err := h.userUseCase.Update(c.Request.Context(), id, input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUserToResponse(user))
}

// DeleteHandler removes a user.
// DELETE /user/:id - Returns 204 No Content.
func (h *UserHandler) DeleteHandler(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.userUseCase.Delete(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// GetRolesHandler lists the roles held by a user.
// GET /user/:id/roles
func (h *UserHandler) GetRolesHandler(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	roles, err := h.userUseCase.GetRoles(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	if roles == nil {
		roles = []string{}
	}

	c.JSON(http.StatusOK, dto.UserRolesResponse{UserID: id.String(), Roles: roles})
}

// AddRolesHandler assigns roles to a user. Unknown roles fail the whole request.
// POST /user/:id/roles
func (h *UserHandler) AddRolesHandler(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req dto.RolesRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.userUseCase.AddRoles(c.Request.Context(), id, req.Roles); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.HandleSuccessGin(c, http.StatusOK, "Roles assigned successfully.")
}

// RemoveRolesHandler removes roles from a user.
// DELETE /user/:id/roles
func (h *UserHandler) RemoveRolesHandler(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req dto.RolesRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.userUseCase.RemoveRoles(c.Request.Context(), id, req.Roles); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.HandleSuccessGin(c, http.StatusOK, "Roles removed successfully.")
}
