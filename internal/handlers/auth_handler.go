package handlers

import (
	"net/http"
	"strings"

	"gbtravel/internal/services"
	"gbtravel/internal/utils"
	"gbtravel/internal/validators"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type emailRequest struct {
	Email string `json:"email"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register creates an unverified account and sends the verification email
func (h *AuthHandler) Register(c *gin.Context) {
	var request services.RegisterRequest
	if err := validators.BindJSON(c, &request); err != nil {
		utils.HandleError(c, err)
		return
	}

	response, err := h.authService.Register(c.Request.Context(), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Registration successful. Please verify your email.", response)
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var request services.VerifyEmailRequest
	if err := c.ShouldBindJSON(&request); err != nil || request.Email == "" || request.Token == "" {
		utils.HandleError(c, utils.NewBadRequestError("Email and verification token are required"))
		return
	}

	response, err := h.authService.VerifyEmail(c.Request.Context(), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if response.AlreadyVerified {
		utils.SuccessResponse(c, "Email is already verified", response)
		return
	}
	utils.SuccessResponse(c, "Email verified successfully!", response)
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var request emailRequest
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Email) == "" {
		utils.HandleError(c, utils.NewBadRequestError("Email is required"))
		return
	}

	response, err := h.authService.ResendVerification(c.Request.Context(), request.Email)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if response.AlreadyVerified {
		utils.SuccessResponse(c, "Email is already verified", response)
		return
	}
	utils.SuccessResponse(c, "Verification email resent. Please check your inbox.", response)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var request services.LoginRequest
	if err := validators.BindJSON(c, &request); err != nil {
		utils.HandleError(c, err)
		return
	}

	response, err := h.authService.Login(c.Request.Context(), &request, &services.ClientInfo{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Login successful", response)
}

// Logout revokes the refresh token sent in the body
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, utils.MsgAuthRequired)
		return
	}

	var request refreshTokenRequest
	_ = c.ShouldBindJSON(&request)

	if err := h.authService.Logout(c.Request.Context(), userID, request.RefreshToken); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Logout successful", nil)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var request refreshTokenRequest
	if err := c.ShouldBindJSON(&request); err != nil || request.RefreshToken == "" {
		utils.HandleError(c, utils.NewBadRequestError("Refresh token is required"))
		return
	}

	tokens, err := h.authService.RefreshToken(c.Request.Context(), request.RefreshToken)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Token refreshed successfully", gin.H{"tokens": tokens})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, utils.MsgAuthRequired)
		return
	}

	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "User retrieved successfully", gin.H{"user": user.Public()})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, utils.MsgAuthRequired)
		return
	}

	var request services.ChangePasswordRequest
	if err := validators.BindJSON(c, &request); err != nil {
		utils.HandleError(c, err)
		return
	}

	tokens, err := h.authService.ChangePassword(c.Request.Context(), userID, &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Password changed successfully", gin.H{"tokens": tokens})
}

// ForgotPassword answers the same way whether or not the account exists
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var request emailRequest
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Email) == "" {
		utils.HandleError(c, utils.NewBadRequestError("Email is required"))
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), request.Email); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "If an account exists for that email, a password reset link has been sent.", nil)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var request services.ResetPasswordRequest
	if err := validators.BindJSON(c, &request); err != nil {
		utils.HandleError(c, err)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), &request); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Password reset successful. Please log in with your new password.", nil)
}

// SocialAuthURL returns the provider consent URL and a fresh state value the
// client must compare on the way back.
func (h *AuthHandler) SocialAuthURL(c *gin.Context) {
	state, err := utils.GenerateToken(16)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	authURL, err := h.authService.SocialAuthURL(c.Param("provider"), state)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Authorization URL created", gin.H{"authUrl": authURL, "state": state})
}

func (h *AuthHandler) SocialLogin(c *gin.Context) {
	var request services.SocialLoginRequest
	if err := validators.BindJSON(c, &request); err != nil {
		utils.HandleError(c, err)
		return
	}

	response, err := h.authService.SocialLogin(c.Request.Context(), c.Param("provider"), &request, &services.ClientInfo{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Login successful", response)
}
