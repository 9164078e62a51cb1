// Package http provides the HTTP handlers for role management.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/identity/internal/httputil"
	"github.com/allisson/identity/internal/role/http/dto"
	"github.com/allisson/identity/internal/role/usecase"
	customValidation "github.com/allisson/identity/internal/validation"
)

// RoleHandler handles the /role endpoints.
type RoleHandler struct {
	roleUseCase usecase.UseCase
	logger      *slog.Logger
}

// NewRoleHandler creates a new role handler with required dependencies.
func NewRoleHandler(roleUseCase usecase.UseCase, logger *slog.Logger) *RoleHandler {
	return &RoleHandler{
		roleUseCase: roleUseCase,
		logger:      logger,
	}
}

func (h *RoleHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid role ID format: must be a valid UUID"),
			h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// ListHandler retrieves roles ordered by name.
// GET /role?offset=0&limit=50
func (h *RoleHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	roles, err := h.roleUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRolesToListResponse(roles))
}

// GetHandler retrieves a role by ID.
// GET /role/:id
func (h *RoleHandler) GetHandler(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	role, err := h.roleUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRoleToResponse(role))
}

// CreateHandler creates a role.
// POST /role - Returns 201 Created.
func (h *RoleHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	role, err := h.roleUseCase.Create(c.Request.Context(), req.Name)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRoleToResponse(role))
}

// UpdateHandler renames a role.
// PUT /role/:id - Returns 409 Conflict when the concurrency stamp is stale.
func (h *RoleHandler) UpdateHandler(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	role, err := h.roleUseCase.Update(c.Request.Context(), id, usecase.UpdateRoleInput{
		Name:             req.Name,
		ConcurrencyStamp: req.ConcurrencyStamp,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRoleToResponse(role))
}

// DeleteHandler removes a role and its memberships.
// DELETE /role/:id - Returns 204 No Content.
func (h *RoleHandler) DeleteHandler(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.roleUseCase.Delete(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
