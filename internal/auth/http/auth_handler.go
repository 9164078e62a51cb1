package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/identity/internal/auth/domain"
	"github.com/allisson/identity/internal/auth/http/dto"
	authUseCase "github.com/allisson/identity/internal/auth/usecase"
	apperrors "github.com/allisson/identity/internal/errors"
	"github.com/allisson/identity/internal/httputil"
	customValidation "github.com/allisson/identity/internal/validation"
)

// validator is implemented by every request DTO.
type validator interface {
	Validate() error
}

// AuthHandler handles the /auth endpoints.
type AuthHandler struct {
	authUseCase authUseCase.AuthUseCase
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler with required dependencies.
func NewAuthHandler(authUseCase authUseCase.AuthUseCase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		logger:      logger,
	}
}

// bind decodes and validates the JSON body, writing the error response on failure.
func (h *AuthHandler) bind(c *gin.Context, req validator) bool {
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

// RegisterHandler creates a user account.
// POST /auth/register - Returns 201 Created.
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.bind(c, &req) {
		return
	}

	user, err := h.authUseCase.Register(c.Request.Context(), &authDomain.RegisterInput{
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.RegisterResponse{
		Success: true,
		Message: "User registered successfully.",
		UserID:  user.ID.String(),
	})
}

// LoginHandler exchanges credentials for an access token.
// POST /auth/login
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest
	if !h.bind(c, &req) {
		return
	}

	output, err := h.authUseCase.Login(c.Request.Context(), &authDomain.LoginInput{
		UserName: req.UserName,
		Password: req.Password,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuthOutputToResponse(output))
}

// RefreshHandler exchanges a signed, possibly expired, token for a new one.
// POST /auth/refresh
func (h *AuthHandler) RefreshHandler(c *gin.Context) {
	var req dto.RefreshRequest
	if !h.bind(c, &req) {
		return
	}

	output, err := h.authUseCase.Refresh(c.Request.Context(), req.Token)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuthOutputToResponse(output))
}

// ConfirmEmailHandler confirms the email of a user.
// POST /auth/confirm-email
func (h *AuthHandler) ConfirmEmailHandler(c *gin.Context) {
	var req dto.ConfirmEmailRequest
	if !h.bind(c, &req) {
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		httputil.HandleValidationErrorGin(c, errors.New("user_id: must be a valid UUID"), h.logger)
		return
	}

	err = h.authUseCase.ConfirmEmail(c.Request.Context(), &authDomain.ConfirmEmailInput{
		UserID: userID,
		Token:  req.Token,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.HandleSuccessGin(c, http.StatusOK, "Email confirmed successfully.")
}

// SendResetLinkHandler enqueues a password reset message.
// POST /auth/send-reset-link
func (h *AuthHandler) SendResetLinkHandler(c *gin.Context) {
	var req dto.SendResetLinkRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.authUseCase.SendResetLink(c.Request.Context(), req.Email); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.HandleSuccessGin(c, http.StatusOK, "Password reset link has been sent to your email.")
}

// ResetPasswordHandler sets a new password using a reset token.
// POST /auth/reset-password
func (h *AuthHandler) ResetPasswordHandler(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.bind(c, &req) {
		return
	}

	err := h.authUseCase.ResetPassword(c.Request.Context(), &authDomain.ResetPasswordInput{
		UserName:    req.UserName,
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.HandleSuccessGin(c, http.StatusOK, "Password has been reset successfully.")
}

// ChangePasswordHandler changes the password of the caller, or of any user for an Admin.
// POST /auth/change-password - Requires AuthenticationMiddleware.
func (h *AuthHandler) ChangePasswordHandler(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.ChangePasswordRequest
	if !h.bind(c, &req) {
		return
	}

	err := h.authUseCase.ChangePassword(c.Request.Context(), principal, &authDomain.ChangePasswordInput{
		UserName:    req.UserName,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.HandleSuccessGin(c, http.StatusOK, "Password changed successfully.")
}
