package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/tranqv/bookstore/models"
	"github.com/tranqv/bookstore/utils"
	"gorm.io/gorm"
)

// AddressController manages delivery addresses
type AddressController struct {
	db *gorm.DB
}

// NewAddressController creates an AddressController
func NewAddressController(db *gorm.DB) *AddressController {
	return &AddressController{db: db}
}

type addressRequest struct {
	RecipientName string `json:"recipient_name" binding:"required"`
	Phone         string `json:"phone" binding:"required"`
	AddressLine   string `json:"address_line" binding:"required"`
	City          string `json:"city" binding:"required"`
	District      string `json:"district"`
	IsDefault     bool   `json:"is_default"`
}

// ListAddresses returns the user's addresses, default first
func (ac *AddressController) ListAddresses(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var addresses []models.Address
	if err := ac.db.Where("user_id = ?", user.ID).
		Order("is_default DESC, created_at DESC").
		Find(&addresses).Error; err != nil {
		utils.LogError("Failed to fetch addresses for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch addresses", nil)
		return
	}

	utils.Success(c, "Addresses retrieved successfully", gin.H{"addresses": addresses})
}

// CreateAddress adds a delivery address. Marking it default clears the
// previous default in the same transaction.
func (ac *AddressController) CreateAddress(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid address request for user ID: %d: %v", user.ID, err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	address := models.Address{
		UserID:        user.ID,
		RecipientName: req.RecipientName,
		Phone:         req.Phone,
		AddressLine:   req.AddressLine,
		City:          req.City,
		District:      req.District,
		IsDefault:     req.IsDefault,
	}

	err := ac.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			if err := tx.Model(&models.Address{}).Where("user_id = ?", user.ID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		utils.LogError("Failed to create address for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to create address", nil)
		return
	}
	utils.LogInfo("Created address ID: %d for user ID: %d", address.ID, user.ID)

	utils.Created(c, "Address created successfully", gin.H{"address": address})
}

// UpdateAddress edits an address the user owns
func (ac *AddressController) UpdateAddress(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	addressID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid address request for user ID: %d: %v", user.ID, err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	var address models.Address
	if err := ac.db.Where("id = ? AND user_id = ?", addressID, user.ID).First(&address).Error; err != nil {
		utils.LogError("Address not found, ID: %d, user ID: %d", addressID, user.ID)
		utils.NotFound(c, "Address not found")
		return
	}

	address.RecipientName = req.RecipientName
	address.Phone = req.Phone
	address.AddressLine = req.AddressLine
	address.City = req.City
	address.District = req.District

	err := ac.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault && !address.IsDefault {
			if err := tx.Model(&models.Address{}).Where("user_id = ?", user.ID).
				Update("is_default", false).Error; err != nil {
				return err
			}
			address.IsDefault = true
		}
		return tx.Save(&address).Error
	})
	if err != nil {
		utils.LogError("Failed to update address ID: %d: %v", address.ID, err)
		utils.InternalServerError(c, "Failed to update address", nil)
		return
	}

	utils.Success(c, "Address updated successfully", gin.H{"address": address})
}

// SetDefaultAddress makes one address the default, clearing the rest
func (ac *AddressController) SetDefaultAddress(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	addressID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var address models.Address
	if err := ac.db.Where("id = ? AND user_id = ?", addressID, user.ID).First(&address).Error; err != nil {
		utils.LogError("Address not found, ID: %d, user ID: %d", addressID, user.ID)
		utils.NotFound(c, "Address not found")
		return
	}

	err := ac.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Address{}).Where("user_id = ?", user.ID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&address).Update("is_default", true).Error
	})
	if err != nil {
		utils.LogError("Failed to set default address ID: %d: %v", address.ID, err)
		utils.InternalServerError(c, "Failed to set default address", nil)
		return
	}
	utils.LogInfo("Set default address ID: %d for user ID: %d", address.ID, user.ID)

	utils.Success(c, "Default address updated", gin.H{"address": address})
}

// DeleteAddress removes an address the user owns
func (ac *AddressController) DeleteAddress(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	addressID, ok := paramID(c, "id")
	if !ok {
		return
	}

	result := ac.db.Where("id = ? AND user_id = ?", addressID, user.ID).Delete(&models.Address{})
	if result.Error != nil {
		utils.LogError("Failed to delete address ID: %d: %v", addressID, result.Error)
		utils.InternalServerError(c, "Failed to delete address", nil)
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Address not found")
		return
	}
	utils.LogInfo("Deleted address ID: %d for user ID: %d", addressID, user.ID)

	utils.Success(c, "Address deleted successfully", nil)
}
