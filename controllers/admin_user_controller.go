package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/tranqv/bookstore/models"
	"github.com/tranqv/bookstore/utils"
	"gorm.io/gorm"
)

// AdminUserController manages customer accounts from the back office
type AdminUserController struct {
	db *gorm.DB
}

// NewAdminUserController creates an AdminUserController
func NewAdminUserController(db *gorm.DB) *AdminUserController {
	return &AdminUserController{db: db}
}

type customerSummary struct {
	models.User
	OrderCount int64 `json:"order_count"`
	TotalSpend int64 `json:"total_spend"`
}

// ListCustomers returns customers with their order counts and total spend
func (uc *AdminUserController) ListCustomers(c *gin.Context) {
	pagination := utils.NewPagination(c, 20)
	search := c.Query("search")

	query := uc.db.Model(&models.User{}).Where("role = ?", models.RoleCustomer)
	if search != "" {
		term := "%" + search + "%"
		query = query.Where("email LIKE ? OR full_name LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count customers: %v", err)
		utils.InternalServerError(c, "Failed to fetch customers", nil)
		return
	}
	pagination.SetTotal(total)

	var users []models.User
	if err := query.Order("created_at DESC").
		Limit(pagination.Limit).Offset(pagination.Offset).
		Find(&users).Error; err != nil {
		utils.LogError("Failed to fetch customers: %v", err)
		utils.InternalServerError(c, "Failed to fetch customers", nil)
		return
	}

	customers := make([]customerSummary, 0, len(users))
	for _, u := range users {
		var stats struct {
			OrderCount int64
			TotalSpend int64
		}
		if err := uc.db.Model(&models.Order{}).
			Select("COUNT(*) AS order_count, COALESCE(SUM(CASE WHEN payment_status = ? THEN total_amount ELSE 0 END), 0) AS total_spend", models.PaymentStatusPaid).
			Where("user_id = ?", u.ID).
			Scan(&stats).Error; err != nil {
			utils.LogError("Failed to compute order stats for user ID: %d: %v", u.ID, err)
			utils.InternalServerError(c, "Failed to fetch customers", nil)
			return
		}
		customers = append(customers, customerSummary{
			User:       u,
			OrderCount: stats.OrderCount,
			TotalSpend: stats.TotalSpend,
		})
	}

	utils.SuccessWithPagination(c, "Customers retrieved successfully", gin.H{"customers": customers}, pagination)
}

// LockUser locks a customer account. Admin accounts cannot be locked.
func (uc *AdminUserController) LockUser(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var user models.User
	if err := uc.db.First(&user, userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}
	if user.Role == models.RoleAdmin {
		utils.LogError("Attempt to lock admin account ID: %d", user.ID)
		utils.Forbidden(c, "Admin accounts cannot be locked")
		return
	}

	if err := uc.db.Model(&user).Updates(map[string]interface{}{
		"is_locked":    true,
		"locked_until": nil,
	}).Error; err != nil {
		utils.LogError("Failed to lock user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to lock user", nil)
		return
	}
	utils.LogInfo("Locked user ID: %d", user.ID)

	utils.Success(c, "User locked successfully", gin.H{"user_id": user.ID, "is_locked": true})
}

// UnlockUser unlocks an account and resets its failed login counter
func (uc *AdminUserController) UnlockUser(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var user models.User
	if err := uc.db.First(&user, userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	if err := uc.db.Model(&user).Updates(map[string]interface{}{
		"is_locked":             false,
		"locked_until":          nil,
		"failed_login_attempts": 0,
	}).Error; err != nil {
		utils.LogError("Failed to unlock user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to unlock user", nil)
		return
	}
	utils.LogInfo("Unlocked user ID: %d", user.ID)

	utils.Success(c, "User unlocked successfully", gin.H{"user_id": user.ID, "is_locked": false})
}

// SetUserActive activates or deactivates an account
func (uc *AdminUserController) SetUserActive(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		utils.BadRequest(c, "is_active is required", nil)
		return
	}

	var user models.User
	if err := uc.db.First(&user, userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}
	if user.Role == models.RoleAdmin && !*req.IsActive {
		utils.LogError("Attempt to deactivate admin account ID: %d", user.ID)
		utils.Forbidden(c, "Admin accounts cannot be deactivated")
		return
	}

	if err := uc.db.Model(&user).Update("is_active", *req.IsActive).Error; err != nil {
		utils.LogError("Failed to update active flag for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to update user", nil)
		return
	}
	utils.LogInfo("Set active=%t for user ID: %d", *req.IsActive, user.ID)

	message := "User activated successfully"
	if !*req.IsActive {
		message = "User deactivated successfully"
	}
	utils.Success(c, message, gin.H{"user_id": user.ID, "is_active": *req.IsActive})
}
