package controllers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/tranqv/bookstore/models"
	"github.com/tranqv/bookstore/utils"
	"gorm.io/gorm"
)

// AdminCategoryController manages categories from the back office
type AdminCategoryController struct {
	db *gorm.DB
}

// NewAdminCategoryController creates an AdminCategoryController
func NewAdminCategoryController(db *gorm.DB) *AdminCategoryController {
	return &AdminCategoryController{db: db}
}

// CreateCategory adds a category. Names must be unique.
func (cc *AdminCategoryController) CreateCategory(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid category create request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	var existing models.Category
	if err := cc.db.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		utils.LogError("Duplicate category name: %s", req.Name)
		utils.Conflict(c, fmt.Sprintf("Category %q already exists", req.Name), nil)
		return
	}

	category := models.Category{Name: req.Name, Description: req.Description}
	if err := cc.db.Create(&category).Error; err != nil {
		utils.LogError("Failed to create category: %v", err)
		utils.InternalServerError(c, "Failed to create category", nil)
		return
	}
	utils.LogInfo("Created category ID: %d, name: %s", category.ID, category.Name)

	utils.Created(c, "Category created successfully", gin.H{"category": category})
}

// UpdateCategory edits a category
func (cc *AdminCategoryController) UpdateCategory(c *gin.Context) {
	categoryID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var category models.Category
	if err := cc.db.First(&category, categoryID).Error; err != nil {
		utils.NotFound(c, "Category not found")
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid category update request for ID: %d: %v", categoryID, err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	if req.Name != category.Name {
		var existing models.Category
		if err := cc.db.Where("name = ? AND id <> ?", req.Name, category.ID).First(&existing).Error; err == nil {
			utils.LogError("Duplicate category name on update: %s", req.Name)
			utils.Conflict(c, fmt.Sprintf("Category %q already exists", req.Name), nil)
			return
		}
	}

	category.Name = req.Name
	category.Description = req.Description
	if err := cc.db.Save(&category).Error; err != nil {
		utils.LogError("Failed to update category ID: %d: %v", category.ID, err)
		utils.InternalServerError(c, "Failed to update category", nil)
		return
	}

	utils.Success(c, "Category updated successfully", gin.H{"category": category})
}

// DeleteCategory removes a category that no books reference
func (cc *AdminCategoryController) DeleteCategory(c *gin.Context) {
	categoryID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var category models.Category
	if err := cc.db.First(&category, categoryID).Error; err != nil {
		utils.NotFound(c, "Category not found")
		return
	}

	var bookCount int64
	if err := cc.db.Model(&models.Book{}).Where("category_id = ?", category.ID).Count(&bookCount).Error; err != nil {
		utils.LogError("Failed to count books for category ID: %d: %v", category.ID, err)
		utils.InternalServerError(c, "Failed to delete category", nil)
		return
	}
	if bookCount > 0 {
		utils.LogError("Category ID: %d still has %d books, refusing delete", category.ID, bookCount)
		utils.BadRequest(c, fmt.Sprintf("Cannot delete category with %d books assigned to it", bookCount), gin.H{"book_count": bookCount})
		return
	}

	if err := cc.db.Delete(&category).Error; err != nil {
		utils.LogError("Failed to delete category ID: %d: %v", category.ID, err)
		utils.InternalServerError(c, "Failed to delete category", nil)
		return
	}
	utils.LogInfo("Deleted category ID: %d", category.ID)

	utils.Success(c, "Category deleted successfully", nil)
}
