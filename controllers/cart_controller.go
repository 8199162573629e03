package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/tranqv/bookstore/models"
	"github.com/tranqv/bookstore/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartController manages the per-user shopping cart
type CartController struct {
	db *gorm.DB
}

// NewCartController creates a CartController
func NewCartController(db *gorm.DB) *CartController {
	return &CartController{db: db}
}

type cartItemView struct {
	ID       uint        `json:"id"`
	BookID   uint        `json:"book_id"`
	Quantity int         `json:"quantity"`
	Subtotal int64       `json:"subtotal"`
	Book     models.Book `json:"book"`
}

func (cc *CartController) buildCartView(userID uint) ([]cartItemView, int64, error) {
	var items []models.CartItem
	if err := cc.db.Preload("Book").Preload("Book.Category").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}

	views := make([]cartItemView, 0, len(items))
	var total int64
	for _, item := range items {
		subtotal := item.Book.Price * int64(item.Quantity)
		total += subtotal
		views = append(views, cartItemView{
			ID:       item.ID,
			BookID:   item.BookID,
			Quantity: item.Quantity,
			Subtotal: subtotal,
			Book:     item.Book,
		})
	}
	return views, total, nil
}

// GetCart returns the user's cart with per-line subtotals and the cart total
func (cc *CartController) GetCart(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	utils.LogInfo("Fetching cart for user ID: %d", user.ID)

	views, total, err := cc.buildCartView(user.ID)
	if err != nil {
		utils.LogError("Failed to fetch cart for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch cart", nil)
		return
	}

	utils.Success(c, "Cart retrieved successfully", gin.H{
		"items":      views,
		"item_count": len(views),
		"total":      total,
	})
}

// AddToCart adds a book to the user's cart, merging quantities for repeat adds
func (cc *CartController) AddToCart(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		BookID   uint `json:"book_id" binding:"required"`
		Quantity int  `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid add to cart request for user ID: %d: %v", user.ID, err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}
	utils.LogInfo("Adding book ID: %d with quantity: %d to cart for user ID: %d", req.BookID, req.Quantity, user.ID)

	tx := cc.db.Begin()
	if tx.Error != nil {
		utils.LogError("Failed to start transaction: %v", tx.Error)
		utils.InternalServerError(c, "Failed to update cart", nil)
		return
	}

	// Lock the book row so concurrent adds see a consistent stock figure
	var book models.Book
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&book, req.BookID).Error; err != nil {
		tx.Rollback()
		utils.LogError("Book not found: %d for user ID: %d", req.BookID, user.ID)
		utils.NotFound(c, "Book not found")
		return
	}

	// Total requested quantity includes what is already in the cart
	var existing models.CartItem
	totalRequested := req.Quantity
	if err := tx.Where("user_id = ? AND book_id = ?", user.ID, req.BookID).First(&existing).Error; err == nil {
		totalRequested += existing.Quantity
		utils.LogInfo("Found existing cart item for book ID: %d, current quantity: %d", req.BookID, existing.Quantity)
	}

	if totalRequested > book.StockQuantity {
		tx.Rollback()
		utils.LogError("Insufficient stock for book ID: %d, requested: %d, available: %d", req.BookID, totalRequested, book.StockQuantity)
		utils.RespondWithError(c, utils.InsufficientStockError(book.Title, book.StockQuantity), "Failed to update cart")
		return
	}

	var message string
	if existing.ID != 0 {
		existing.Quantity = totalRequested
		if err := tx.Save(&existing).Error; err != nil {
			tx.Rollback()
			utils.LogError("Failed to update cart for book ID: %d: %v", req.BookID, err)
			utils.InternalServerError(c, "Failed to update cart", nil)
			return
		}
		message = "Cart item quantity updated"
	} else {
		item := models.CartItem{
			UserID:   user.ID,
			BookID:   req.BookID,
			Quantity: req.Quantity,
		}
		if err := tx.Create(&item).Error; err != nil {
			tx.Rollback()
			utils.LogError("Failed to add to cart for book ID: %d: %v", req.BookID, err)
			utils.InternalServerError(c, "Failed to add to cart", nil)
			return
		}
		message = "Item added to cart successfully"
	}

	if err := tx.Commit().Error; err != nil {
		utils.LogError("Failed to commit cart update for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to update cart", nil)
		return
	}

	views, total, err := cc.buildCartView(user.ID)
	if err != nil {
		utils.LogError("Failed to fetch updated cart for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch updated cart", nil)
		return
	}
	utils.Success(c, message, gin.H{
		"items":      views,
		"item_count": len(views),
		"total":      total,
	})
}

// UpdateCartItem sets the quantity of a cart line directly
func (cc *CartController) UpdateCartItem(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	bookID, ok := paramID(c, "bookId")
	if !ok {
		return
	}

	var req struct {
		Quantity int `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid cart update request for user ID: %d: %v", user.ID, err)
		utils.BadRequest(c, "Quantity must be at least 1", err.Error())
		return
	}
	utils.LogInfo("Updating cart quantity for book ID: %d to %d for user ID: %d", bookID, req.Quantity, user.ID)

	var item models.CartItem
	if err := cc.db.Where("user_id = ? AND book_id = ?", user.ID, bookID).First(&item).Error; err != nil {
		utils.LogError("Cart item not found for book ID: %d, user ID: %d", bookID, user.ID)
		utils.NotFound(c, "Cart item not found")
		return
	}

	var book models.Book
	if err := cc.db.First(&book, bookID).Error; err != nil {
		utils.LogError("Book not found: %d for user ID: %d", bookID, user.ID)
		utils.NotFound(c, "Book not found")
		return
	}
	if req.Quantity > book.StockQuantity {
		utils.LogError("Insufficient stock for book ID: %d, requested: %d, available: %d", bookID, req.Quantity, book.StockQuantity)
		utils.RespondWithError(c, utils.InsufficientStockError(book.Title, book.StockQuantity), "Failed to update cart")
		return
	}

	item.Quantity = req.Quantity
	if err := cc.db.Save(&item).Error; err != nil {
		utils.LogError("Failed to update cart item for book ID: %d: %v", bookID, err)
		utils.InternalServerError(c, "Failed to update cart", nil)
		return
	}

	views, total, err := cc.buildCartView(user.ID)
	if err != nil {
		utils.LogError("Failed to fetch updated cart for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch updated cart", nil)
		return
	}
	utils.Success(c, "Cart item quantity updated", gin.H{
		"items":      views,
		"item_count": len(views),
		"total":      total,
	})
}

// RemoveFromCart deletes a single line from the cart
func (cc *CartController) RemoveFromCart(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	bookID, ok := paramID(c, "bookId")
	if !ok {
		return
	}
	utils.LogInfo("Removing book ID: %d from cart for user ID: %d", bookID, user.ID)

	result := cc.db.Where("user_id = ? AND book_id = ?", user.ID, bookID).Delete(&models.CartItem{})
	if result.Error != nil {
		utils.LogError("Failed to remove cart item for book ID: %d: %v", bookID, result.Error)
		utils.InternalServerError(c, "Failed to remove item from cart", nil)
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Cart item not found")
		return
	}

	utils.Success(c, "Item removed from cart", nil)
}

// ClearCart removes every line from the user's cart
func (cc *CartController) ClearCart(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	utils.LogInfo("Clearing cart for user ID: %d", user.ID)

	if err := cc.db.Where("user_id = ?", user.ID).Delete(&models.CartItem{}).Error; err != nil {
		utils.LogError("Failed to clear cart for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to clear cart", nil)
		return
	}

	utils.Success(c, "Cart cleared", nil)
}
