package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
	}
}

// Register creates a student account and sends a verification code
// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param user body services.RegisterRequest true "Account data"
// @Success 201 {object} SuccessResponse{data=services.UserResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	h.LogRequest(c, "Registering user")

	var req services.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Registration successful, check your email for the verification code", user)
}

// Login exchanges credentials for a token pair
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body services.LoginRequest true "Email and password"
// @Success 200 {object} services.AuthResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	h.LogRequest(c, "Login attempt")

	var req services.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req services.RefreshRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req services.VerifyEmailRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.authService.VerifyEmail(c.Request.Context(), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.MessageResponse{Message: "Email verified successfully"})
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req services.EmailRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.authService.ResendVerification(c.Request.Context(), req.Email); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.MessageResponse{Message: "Verification code sent"})
}

// ForgotPassword always answers 200 so the response does not reveal whether the account exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req services.EmailRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.MessageResponse{Message: "If the email exists, a reset code has been sent"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req services.ResetPasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.MessageResponse{Message: "Password reset successfully"})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	user, err := h.authService.GetProfile(c.Request.Context(), caller.SubjectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	var req services.UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), caller.SubjectID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	var req services.ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), caller.SubjectID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.MessageResponse{Message: "Password changed successfully"})
}
