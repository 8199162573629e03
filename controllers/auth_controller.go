package controllers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tranqv/bookstore/config"
	"github.com/tranqv/bookstore/models"
	"github.com/tranqv/bookstore/utils"
	"gorm.io/gorm"
)

// AuthController handles registration, login and profile management
type AuthController struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer *utils.Mailer
}

// NewAuthController creates an AuthController
func NewAuthController(db *gorm.DB, cfg *config.Config, mailer *utils.Mailer) *AuthController {
	return &AuthController{db: db, cfg: cfg, mailer: mailer}
}

// Register creates a new customer account
func (ac *AuthController) Register(c *gin.Context) {
	utils.LogInfo("Register called")

	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		FullName string `json:"full_name" binding:"required"`
		Phone    string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid registration request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	var existing models.User
	if err := ac.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.LogError("Registration with existing email: %s", req.Email)
		utils.Conflict(c, "Email is already in use", nil)
		return
	}

	hash, err := utils.HashPassword(req.Password, ac.cfg.BcryptCost)
	if err != nil {
		utils.LogError("Failed to hash password: %v", err)
		utils.InternalServerError(c, "Failed to create account", nil)
		return
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Role:         models.RoleCustomer,
		IsActive:     true,
	}
	if err := ac.db.Create(&user).Error; err != nil {
		utils.LogError("Failed to create user: %v", err)
		utils.InternalServerError(c, "Failed to create account", nil)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role, ac.cfg.JWTSecret, ac.cfg.JWTExpiry)
	if err != nil {
		utils.LogError("Failed to generate token for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to create account", nil)
		return
	}

	utils.LogInfo("Registered user ID: %d", user.ID)
	utils.Created(c, "Registration successful", gin.H{
		"user":  user,
		"token": token,
	})
}

// Login verifies credentials with the lockout counter flow
func (ac *AuthController) Login(c *gin.Context) {
	utils.LogInfo("Login called")

	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	var user models.User
	if err := ac.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.Unauthorized(c, "Incorrect email or password")
		return
	}

	if user.IsLocked {
		if user.LockedUntil != nil && user.LockedUntil.After(time.Now()) {
			minutesLeft := int(time.Until(*user.LockedUntil).Minutes()) + 1
			utils.LogError("Login attempt on locked account %d", user.ID)
			utils.Forbidden(c, fmt.Sprintf("Account is temporarily locked. Please try again in %d minutes.", minutesLeft))
			return
		}
		// Lock has expired; clear it before checking the password
		if err := ac.db.Model(&user).Updates(map[string]interface{}{
			"is_locked":             false,
			"locked_until":          nil,
			"failed_login_attempts": 0,
		}).Error; err != nil {
			utils.LogError("Failed to clear expired lock for user %d: %v", user.ID, err)
			utils.InternalServerError(c, "Login failed", nil)
			return
		}
		user.IsLocked = false
		user.FailedLoginAttempts = 0
	}

	if !user.IsActive {
		utils.LogError("Login attempt on deactivated account %d", user.ID)
		utils.Forbidden(c, "Your account has been deactivated. Please contact an administrator.")
		return
	}

	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		attempts := user.FailedLoginAttempts + 1
		maxAttempts := ac.cfg.MaxLoginAttempts

		if attempts >= maxAttempts {
			lockedUntil := time.Now().Add(ac.cfg.LockDuration)
			if err := ac.db.Model(&user).Updates(map[string]interface{}{
				"failed_login_attempts": attempts,
				"is_locked":             true,
				"locked_until":          lockedUntil,
			}).Error; err != nil {
				utils.LogError("Failed to lock account %d: %v", user.ID, err)
			}
			utils.LogError("Account %d locked after %d failed attempts", user.ID, attempts)
			utils.Forbidden(c, fmt.Sprintf("Login failed %d times. Account locked for %d minutes.",
				maxAttempts, int(ac.cfg.LockDuration.Minutes())))
			return
		}

		if err := ac.db.Model(&user).Update("failed_login_attempts", attempts).Error; err != nil {
			utils.LogError("Failed to record failed attempt for user %d: %v", user.ID, err)
		}
		utils.Error(c, 401, fmt.Sprintf("Incorrect email or password. %d attempts remaining.", maxAttempts-attempts), nil)
		return
	}

	// Successful login resets the counter
	if err := ac.db.Model(&user).Updates(map[string]interface{}{
		"failed_login_attempts": 0,
		"locked_until":          nil,
	}).Error; err != nil {
		utils.LogError("Failed to reset login counter for user %d: %v", user.ID, err)
	}

	token, err := utils.GenerateToken(user.ID, user.Role, ac.cfg.JWTSecret, ac.cfg.JWTExpiry)
	if err != nil {
		utils.LogError("Failed to generate token for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Login failed", nil)
		return
	}

	utils.LogInfo("User %d logged in", user.ID)
	utils.Success(c, "Login successful", gin.H{
		"user":  user,
		"token": token,
	})
}

// GetMe returns the authenticated user's profile
func (ac *AuthController) GetMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	utils.Success(c, "Profile retrieved", gin.H{"user": user})
}

// UpdateProfile updates name and phone
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		FullName string `json:"full_name" binding:"required"`
		Phone    string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	if err := ac.db.Model(&user).Updates(map[string]interface{}{
		"full_name": req.FullName,
		"phone":     req.Phone,
	}).Error; err != nil {
		utils.LogError("Failed to update profile for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to update profile", nil)
		return
	}

	utils.Success(c, "Profile updated", nil)
}

// ChangePassword verifies the current password before setting a new one
func (ac *AuthController) ChangePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	if !utils.CheckPassword(req.CurrentPassword, user.PasswordHash) {
		utils.Unauthorized(c, "Current password is incorrect")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword, ac.cfg.BcryptCost)
	if err != nil {
		utils.LogError("Failed to hash new password for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to change password", nil)
		return
	}

	if err := ac.db.Model(&user).Update("password_hash", hash).Error; err != nil {
		utils.LogError("Failed to change password for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to change password", nil)
		return
	}

	utils.Success(c, "Password changed", nil)
}
