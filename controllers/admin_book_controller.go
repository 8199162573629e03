package controllers

import (
	"fmt"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/tranqv/bookstore/config"
	"github.com/tranqv/bookstore/models"
	"github.com/tranqv/bookstore/utils"
	"gorm.io/gorm"
)

// AdminBookController manages the catalog from the back office
type AdminBookController struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewAdminBookController creates an AdminBookController
func NewAdminBookController(db *gorm.DB, cfg *config.Config) *AdminBookController {
	return &AdminBookController{db: db, cfg: cfg}
}

type bookRequest struct {
	Title           string `json:"title" binding:"required"`
	Author          string `json:"author" binding:"required"`
	ISBN            string `json:"isbn" binding:"required"`
	Description     string `json:"description"`
	Price           int64  `json:"price" binding:"required,min=0"`
	StockQuantity   int    `json:"stock_quantity" binding:"min=0"`
	CategoryID      *uint  `json:"category_id"`
	Publisher       string `json:"publisher"`
	PublicationYear int    `json:"publication_year"`
}

// CreateBook adds a book to the catalog. ISBN must be unique.
func (bc *AdminBookController) CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid book create request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	var existing models.Book
	if err := bc.db.Where("isbn = ?", req.ISBN).First(&existing).Error; err == nil {
		utils.LogError("Duplicate ISBN on book create: %s", req.ISBN)
		utils.Conflict(c, fmt.Sprintf("A book with ISBN %s already exists", req.ISBN), nil)
		return
	}

	if req.CategoryID != nil {
		var category models.Category
		if err := bc.db.First(&category, *req.CategoryID).Error; err != nil {
			utils.LogError("Category not found: %d", *req.CategoryID)
			utils.BadRequest(c, "Category not found", nil)
			return
		}
	}

	book := models.Book{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Description:     req.Description,
		Price:           req.Price,
		StockQuantity:   req.StockQuantity,
		CategoryID:      req.CategoryID,
		Publisher:       req.Publisher,
		PublicationYear: req.PublicationYear,
	}

	if err := bc.db.Create(&book).Error; err != nil {
		utils.LogError("Failed to create book: %v", err)
		utils.InternalServerError(c, "Failed to create book", nil)
		return
	}
	utils.LogInfo("Created book ID: %d, ISBN: %s", book.ID, book.ISBN)

	utils.Created(c, "Book created successfully", gin.H{"book": book})
}

// UpdateBook edits a catalog entry
func (bc *AdminBookController) UpdateBook(c *gin.Context) {
	bookID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var book models.Book
	if err := bc.db.First(&book, bookID).Error; err != nil {
		utils.NotFound(c, "Book not found")
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid book update request for ID: %d: %v", bookID, err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	if req.ISBN != book.ISBN {
		var existing models.Book
		if err := bc.db.Where("isbn = ? AND id <> ?", req.ISBN, book.ID).First(&existing).Error; err == nil {
			utils.LogError("Duplicate ISBN on book update: %s", req.ISBN)
			utils.Conflict(c, fmt.Sprintf("A book with ISBN %s already exists", req.ISBN), nil)
			return
		}
	}

	if req.CategoryID != nil {
		var category models.Category
		if err := bc.db.First(&category, *req.CategoryID).Error; err != nil {
			utils.LogError("Category not found: %d", *req.CategoryID)
			utils.BadRequest(c, "Category not found", nil)
			return
		}
	}

	book.Title = req.Title
	book.Author = req.Author
	book.ISBN = req.ISBN
	book.Description = req.Description
	book.Price = req.Price
	book.StockQuantity = req.StockQuantity
	book.CategoryID = req.CategoryID
	book.Publisher = req.Publisher
	book.PublicationYear = req.PublicationYear

	if err := bc.db.Save(&book).Error; err != nil {
		utils.LogError("Failed to update book ID: %d: %v", book.ID, err)
		utils.InternalServerError(c, "Failed to update book", nil)
		return
	}
	utils.LogInfo("Updated book ID: %d", book.ID)

	utils.Success(c, "Book updated successfully", gin.H{"book": book})
}

// DeleteBook removes a book unless any order references it
func (bc *AdminBookController) DeleteBook(c *gin.Context) {
	bookID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var book models.Book
	if err := bc.db.First(&book, bookID).Error; err != nil {
		utils.NotFound(c, "Book not found")
		return
	}

	var orderRefs int64
	if err := bc.db.Model(&models.OrderItem{}).Where("book_id = ?", book.ID).Count(&orderRefs).Error; err != nil {
		utils.LogError("Failed to check order references for book ID: %d: %v", book.ID, err)
		utils.InternalServerError(c, "Failed to delete book", nil)
		return
	}
	if orderRefs > 0 {
		utils.LogError("Book ID: %d is referenced by %d order items, refusing delete", book.ID, orderRefs)
		utils.BadRequest(c, "Cannot delete a book that appears in existing orders", gin.H{"order_item_count": orderRefs})
		return
	}

	if err := bc.db.Delete(&book).Error; err != nil {
		utils.LogError("Failed to delete book ID: %d: %v", book.ID, err)
		utils.InternalServerError(c, "Failed to delete book", nil)
		return
	}
	utils.LogInfo("Deleted book ID: %d", book.ID)

	utils.Success(c, "Book deleted successfully", nil)
}

// UpdateStock sets the absolute stock quantity for a book
func (bc *AdminBookController) UpdateStock(c *gin.Context) {
	bookID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		StockQuantity *int `json:"stock_quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.StockQuantity == nil {
		utils.BadRequest(c, "stock_quantity is required", nil)
		return
	}
	if *req.StockQuantity < 0 {
		utils.LogError("Negative stock rejected for book ID: %d: %d", bookID, *req.StockQuantity)
		utils.BadRequest(c, "Stock quantity cannot be negative", nil)
		return
	}

	var book models.Book
	if err := bc.db.First(&book, bookID).Error; err != nil {
		utils.NotFound(c, "Book not found")
		return
	}

	if err := bc.db.Model(&book).Update("stock_quantity", *req.StockQuantity).Error; err != nil {
		utils.LogError("Failed to update stock for book ID: %d: %v", book.ID, err)
		utils.InternalServerError(c, "Failed to update stock", nil)
		return
	}
	utils.LogInfo("Updated stock for book ID: %d to %d", book.ID, *req.StockQuantity)

	utils.Success(c, "Stock updated successfully", gin.H{
		"book_id":        book.ID,
		"stock_quantity": *req.StockQuantity,
	})
}

// UploadBookImage attaches a cover image to a book via multipart upload
func (bc *AdminBookController) UploadBookImage(c *gin.Context) {
	bookID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var book models.Book
	if err := bc.db.First(&book, bookID).Error; err != nil {
		utils.NotFound(c, "Book not found")
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		utils.LogError("Missing image file for book ID: %d: %v", book.ID, err)
		utils.BadRequest(c, "Image file is required", nil)
		return
	}

	url, err := utils.SaveUploadedFile(file, bc.cfg.UploadDir, bc.cfg.MaxUploadSize)
	if err != nil {
		utils.LogError("Failed to save image for book ID: %d: %v", book.ID, err)
		utils.BadRequest(c, err.Error(), nil)
		return
	}

	oldURL := book.ImageURL
	if err := bc.db.Model(&book).Update("image_url", url).Error; err != nil {
		utils.LogError("Failed to update image URL for book ID: %d: %v", book.ID, err)
		_ = utils.DeleteFile(filepath.Join(bc.cfg.UploadDir, filepath.Base(url)))
		utils.InternalServerError(c, "Failed to update book image", nil)
		return
	}
	if oldURL != "" {
		_ = utils.DeleteFile(filepath.Join(bc.cfg.UploadDir, filepath.Base(oldURL)))
	}
	utils.LogInfo("Updated image for book ID: %d", book.ID)

	utils.Success(c, "Book image uploaded successfully", gin.H{
		"book_id":   book.ID,
		"image_url": url,
	})
}
