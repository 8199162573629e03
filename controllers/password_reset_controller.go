package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tranqv/bookstore/models"
	"github.com/tranqv/bookstore/utils"
)

// The forgot-password response is identical whether or not the email
// exists, so the endpoint cannot be used to probe for accounts.
const forgotPasswordMessage = "If the email exists, a password reset link has been sent"

// ForgotPassword issues a single-use reset token with a short expiry
func (ac *AuthController) ForgotPassword(c *gin.Context) {
	utils.LogInfo("ForgotPassword called")

	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	var user models.User
	if err := ac.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.Success(c, forgotPasswordMessage, nil)
		return
	}

	token, tokenHash, err := utils.GenerateResetToken()
	if err != nil {
		utils.LogError("Failed to generate reset token: %v", err)
		utils.InternalServerError(c, "Failed to process request", nil)
		return
	}

	resetToken := models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(ac.cfg.ResetTokenExpiry),
	}
	if err := ac.db.Create(&resetToken).Error; err != nil {
		utils.LogError("Failed to store reset token for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to process request", nil)
		return
	}

	if err := ac.mailer.SendPasswordResetEmail(user.Email, token, user.FullName); err != nil {
		utils.LogError("Failed to send reset email to user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Could not send email. Please try again later.", nil)
		return
	}

	utils.LogInfo("Issued reset token for user %d", user.ID)
	utils.Success(c, forgotPasswordMessage, nil)
}

// ResetPassword consumes a reset token and sets a new password
func (ac *AuthController) ResetPassword(c *gin.Context) {
	utils.LogInfo("ResetPassword called")

	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	tokenHash := utils.HashResetToken(req.Token)

	var resetToken models.PasswordResetToken
	if err := ac.db.Where("token_hash = ? AND used = ? AND expires_at > ?",
		tokenHash, false, time.Now()).First(&resetToken).Error; err != nil {
		utils.BadRequest(c, "Invalid or expired token", nil)
		return
	}

	hash, err := utils.HashPassword(req.NewPassword, ac.cfg.BcryptCost)
	if err != nil {
		utils.LogError("Failed to hash password: %v", err)
		utils.InternalServerError(c, "Failed to reset password", nil)
		return
	}

	// Update password, clear any lockout, and burn the token together
	tx := ac.db.Begin()
	if tx.Error != nil {
		utils.InternalServerError(c, "Failed to reset password", nil)
		return
	}

	if err := tx.Model(&models.User{}).Where("id = ?", resetToken.UserID).Updates(map[string]interface{}{
		"password_hash":         hash,
		"failed_login_attempts": 0,
		"is_locked":             false,
		"locked_until":          nil,
	}).Error; err != nil {
		tx.Rollback()
		utils.LogError("Failed to update password for user %d: %v", resetToken.UserID, err)
		utils.InternalServerError(c, "Failed to reset password", nil)
		return
	}

	if err := tx.Model(&resetToken).Update("used", true).Error; err != nil {
		tx.Rollback()
		utils.LogError("Failed to mark token used for user %d: %v", resetToken.UserID, err)
		utils.InternalServerError(c, "Failed to reset password", nil)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.LogError("Failed to commit password reset for user %d: %v", resetToken.UserID, err)
		utils.InternalServerError(c, "Failed to reset password", nil)
		return
	}

	utils.LogInfo("Password reset for user %d", resetToken.UserID)
	utils.Success(c, "Password reset successful", nil)
}
