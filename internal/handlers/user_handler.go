package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"complaintdesk/internal/authz"
	"complaintdesk/internal/services"
)

type UserHandler struct {
	users    services.UserService
	recovery services.RecoveryService
}

func NewUserHandler(users services.UserService, recovery services.RecoveryService) *UserHandler {
	return &UserHandler{users: users, recovery: recovery}
}

type signupRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	RoleID    int    `json:"role_id"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type forgetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resendOTPRequest struct {
	Email             string `json:"email" binding:"required,email"`
	VerificationToken string `json:"verification_token" binding:"required"`
}

type verifyOTPRequest struct {
	OTP               string `json:"otp" binding:"required"`
	VerificationToken string `json:"verification_token" binding:"required"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// @Summary      Signup
// @Description  Registers a new user account
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        signup  body      signupRequest  true  "Signup payload"
// @Success      201     {object}  models.User
// @Failure      400     {object}  map[string]string
// @Failure      409     {object}  map[string]string
// @Router       /user/signup [post]
func (h *UserHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	roleID := req.RoleID
	if roleID == 0 {
		roleID = authz.RoleCustomer
	}

	user, err := h.users.Signup(c.Request.Context(), services.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		RoleID:    roleID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// @Summary      Login
// @Description  Authenticates a user and returns an access token
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Login payload"
// @Success      200    {object}  map[string]interface{}
// @Failure      401    {object}  map[string]string
// @Router       /user/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, user, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"user_id": user.ID,
	})
}

// @Summary      Change password
// @Description  Replaces the password given proof of the current one
// @Tags         User
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      changePasswordRequest  true  "Change payload"
// @Success      200   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /user/change-password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, _ := getUserAndRole(c)

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}

// @Summary      Initiate password recovery
// @Description  Issues an OTP challenge and emails the code
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        body  body      forgetPasswordRequest  true  "Account email"
// @Success      200   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /user/forget-password [put]
func (h *UserHandler) ForgetPassword(c *gin.Context) {
	var req forgetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.recovery.Initiate(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verification_token": token})
}

// @Summary      Resend recovery OTP
// @Description  Rotates the OTP and continuation token
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        body  body      resendOTPRequest  true  "Email + continuation token"
// @Success      200   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /user/resend-password-otp [put]
func (h *UserHandler) ResendPasswordOTP(c *gin.Context) {
	var req resendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.recovery.Resend(c.Request.Context(), req.Email, req.VerificationToken)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verification_token": token})
}

// @Summary      Verify recovery OTP
// @Description  Verifies the code and mints a session for the reset step
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        body  body      verifyOTPRequest  true  "OTP + continuation token"
// @Success      200   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /user/verify-password-otp [put]
func (h *UserHandler) VerifyPasswordOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.recovery.Verify(c.Request.Context(), req.VerificationToken, req.OTP)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// @Summary      Reset password
// @Description  Replaces the password; proof is the session minted by verify
// @Tags         User
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "New password"
// @Success      200   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /user/reset-password [put]
func (h *UserHandler) ResetPassword(c *gin.Context) {
	userID, _ := getUserAndRole(c)

	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.ResetPassword(c.Request.Context(), userID, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password reset"})
}
