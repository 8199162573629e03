package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/tranqv/bookstore/models"
	"github.com/tranqv/bookstore/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookController serves the public catalog
type BookController struct {
	db *gorm.DB
}

// NewBookController creates a BookController
func NewBookController(db *gorm.DB) *BookController {
	return &BookController{db: db}
}

// ListBooks returns the paginated catalog, newest first
func (bc *BookController) ListBooks(c *gin.Context) {
	pagination := utils.NewPagination(c, 12)

	var total int64
	if err := bc.db.Model(&models.Book{}).Count(&total).Error; err != nil {
		utils.LogError("Failed to count books: %v", err)
		utils.InternalServerError(c, "Failed to fetch books", nil)
		return
	}
	pagination.SetTotal(total)

	var books []models.Book
	if err := bc.db.Preload("Category").
		Order("created_at DESC").
		Limit(pagination.Limit).Offset(pagination.Offset).
		Find(&books).Error; err != nil {
		utils.LogError("Failed to fetch books: %v", err)
		utils.InternalServerError(c, "Failed to fetch books", nil)
		return
	}

	utils.SuccessWithPagination(c, "Books retrieved", gin.H{"books": books}, pagination)
}

// GetBook returns one book with its latest reviews
func (bc *BookController) GetBook(c *gin.Context) {
	bookID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var book models.Book
	if err := bc.db.Preload("Category").First(&book, bookID).Error; err != nil {
		utils.NotFound(c, "Book not found")
		return
	}

	var reviews []models.Review
	if err := bc.db.Preload("User").
		Where("book_id = ?", bookID).
		Order("created_at DESC").Limit(10).
		Find(&reviews).Error; err != nil {
		utils.LogError("Failed to fetch reviews for book %d: %v", bookID, err)
	}

	utils.Success(c, "Book retrieved", gin.H{
		"book":    book,
		"reviews": reviews,
	})
}

// SearchBooks searches title, author, description and ISBN. Title
// matches rank before author matches.
func (bc *BookController) SearchBooks(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		utils.BadRequest(c, "Please enter a search keyword", nil)
		return
	}
	pagination := utils.NewPagination(c, 12)

	term := "%" + q + "%"
	match := "title LIKE ? OR author LIKE ? OR description LIKE ? OR isbn LIKE ?"

	var total int64
	if err := bc.db.Model(&models.Book{}).
		Where(match, term, term, term, term).
		Count(&total).Error; err != nil {
		utils.LogError("Failed to count search results: %v", err)
		utils.InternalServerError(c, "Search failed", nil)
		return
	}
	pagination.SetTotal(total)

	var books []models.Book
	rankByMatch := clause.OrderBy{Expression: clause.Expr{
		SQL:                "CASE WHEN title LIKE ? THEN 1 WHEN author LIKE ? THEN 2 ELSE 3 END, created_at DESC",
		Vars:               []interface{}{term, term},
		WithoutParentheses: true,
	}}
	if err := bc.db.Preload("Category").
		Where(match, term, term, term, term).
		Clauses(rankByMatch).
		Limit(pagination.Limit).Offset(pagination.Offset).
		Find(&books).Error; err != nil {
		utils.LogError("Search failed for %q: %v", q, err)
		utils.InternalServerError(c, "Search failed", nil)
		return
	}

	utils.SuccessWithPagination(c, "Search results", gin.H{
		"books": books,
		"query": q,
	}, pagination)
}

// ListBooksByCategory returns the paginated books in one category
func (bc *BookController) ListBooksByCategory(c *gin.Context) {
	categoryID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var category models.Category
	if err := bc.db.First(&category, categoryID).Error; err != nil {
		utils.NotFound(c, "Category not found")
		return
	}

	pagination := utils.NewPagination(c, 12)

	var total int64
	if err := bc.db.Model(&models.Book{}).Where("category_id = ?", categoryID).Count(&total).Error; err != nil {
		utils.LogError("Failed to count books in category %d: %v", categoryID, err)
		utils.InternalServerError(c, "Failed to fetch books", nil)
		return
	}
	pagination.SetTotal(total)

	var books []models.Book
	if err := bc.db.Where("category_id = ?", categoryID).
		Order("created_at DESC").
		Limit(pagination.Limit).Offset(pagination.Offset).
		Find(&books).Error; err != nil {
		utils.LogError("Failed to fetch books in category %d: %v", categoryID, err)
		utils.InternalServerError(c, "Failed to fetch books", nil)
		return
	}

	utils.SuccessWithPagination(c, "Books retrieved", gin.H{
		"category": category,
		"books":    books,
	}, pagination)
}

// ListCategories returns all categories with their book counts
func (bc *BookController) ListCategories(c *gin.Context) {
	type categoryWithCount struct {
		models.Category
		BookCount int64 `json:"book_count"`
	}

	var categories []models.Category
	if err := bc.db.Order("name").Find(&categories).Error; err != nil {
		utils.LogError("Failed to fetch categories: %v", err)
		utils.InternalServerError(c, "Failed to fetch categories", nil)
		return
	}

	result := make([]categoryWithCount, 0, len(categories))
	for _, cat := range categories {
		var count int64
		bc.db.Model(&models.Book{}).Where("category_id = ?", cat.ID).Count(&count)
		result = append(result, categoryWithCount{Category: cat, BookCount: count})
	}

	utils.Success(c, "Categories retrieved", gin.H{"categories": result})
}
