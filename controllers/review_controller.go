package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/tranqv/bookstore/models"
	"github.com/tranqv/bookstore/utils"
	"gorm.io/gorm"
)

// ReviewController handles book reviews
type ReviewController struct {
	db *gorm.DB
}

// NewReviewController creates a ReviewController
func NewReviewController(db *gorm.DB) *ReviewController {
	return &ReviewController{db: db}
}

// hasPurchased reports whether the user has a paid order containing the book.
func (rc *ReviewController) hasPurchased(userID, bookID uint) (bool, error) {
	var count int64
	err := rc.db.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND order_items.book_id = ? AND orders.payment_status = ?",
			userID, bookID, models.PaymentStatusPaid).
		Count(&count).Error
	return count > 0, err
}

// SubmitReview creates or updates the user's review for a purchased book
func (rc *ReviewController) SubmitReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		BookID  uint   `json:"book_id" binding:"required"`
		Rating  int    `json:"rating" binding:"required,min=1,max=5"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid review request for user ID: %d: %v", user.ID, err)
		utils.BadRequest(c, "Rating must be between 1 and 5", err.Error())
		return
	}

	var book models.Book
	if err := rc.db.First(&book, req.BookID).Error; err != nil {
		utils.LogError("Book not found: %d for user ID: %d", req.BookID, user.ID)
		utils.NotFound(c, "Book not found")
		return
	}

	purchased, err := rc.hasPurchased(user.ID, req.BookID)
	if err != nil {
		utils.LogError("Failed to check purchase history for user ID: %d, book ID: %d: %v", user.ID, req.BookID, err)
		utils.InternalServerError(c, "Failed to submit review", nil)
		return
	}
	if !purchased {
		utils.LogError("User ID: %d has not purchased book ID: %d", user.ID, req.BookID)
		utils.Forbidden(c, "You can only review books you have purchased")
		return
	}

	// Second submission replaces the first
	var review models.Review
	err = rc.db.Where("user_id = ? AND book_id = ?", user.ID, req.BookID).First(&review).Error
	switch {
	case err == nil:
		review.Rating = req.Rating
		review.Comment = req.Comment
		if err := rc.db.Save(&review).Error; err != nil {
			utils.LogError("Failed to update review for user ID: %d, book ID: %d: %v", user.ID, req.BookID, err)
			utils.InternalServerError(c, "Failed to update review", nil)
			return
		}
		utils.LogInfo("Updated review ID: %d for book ID: %d by user ID: %d", review.ID, req.BookID, user.ID)
		utils.Success(c, "Review updated successfully", gin.H{"review": review})
	case errors.Is(err, gorm.ErrRecordNotFound):
		review = models.Review{
			UserID:  user.ID,
			BookID:  req.BookID,
			Rating:  req.Rating,
			Comment: req.Comment,
		}
		if err := rc.db.Create(&review).Error; err != nil {
			utils.LogError("Failed to create review for user ID: %d, book ID: %d: %v", user.ID, req.BookID, err)
			utils.InternalServerError(c, "Failed to submit review", nil)
			return
		}
		utils.LogInfo("Created review ID: %d for book ID: %d by user ID: %d", review.ID, req.BookID, user.ID)
		utils.Created(c, "Review submitted successfully", gin.H{"review": review})
	default:
		utils.LogError("Failed to look up review for user ID: %d, book ID: %d: %v", user.ID, req.BookID, err)
		utils.InternalServerError(c, "Failed to submit review", nil)
	}
}

// ListBookReviews returns a book's reviews with aggregate rating stats
func (rc *ReviewController) ListBookReviews(c *gin.Context) {
	bookID, ok := paramID(c, "id")
	if !ok {
		return
	}
	pagination := utils.NewPagination(c, 10)

	var book models.Book
	if err := rc.db.First(&book, bookID).Error; err != nil {
		utils.NotFound(c, "Book not found")
		return
	}

	var total int64
	if err := rc.db.Model(&models.Review{}).Where("book_id = ?", bookID).Count(&total).Error; err != nil {
		utils.LogError("Failed to count reviews for book ID: %d: %v", bookID, err)
		utils.InternalServerError(c, "Failed to fetch reviews", nil)
		return
	}
	pagination.SetTotal(total)

	var reviews []models.Review
	if err := rc.db.Preload("User").
		Where("book_id = ?", bookID).
		Order("created_at DESC").
		Limit(pagination.Limit).Offset(pagination.Offset).
		Find(&reviews).Error; err != nil {
		utils.LogError("Failed to fetch reviews for book ID: %d: %v", bookID, err)
		utils.InternalServerError(c, "Failed to fetch reviews", nil)
		return
	}

	var stats struct {
		AverageRating float64 `json:"average_rating"`
	}
	if err := rc.db.Model(&models.Review{}).Where("book_id = ?", bookID).
		Select("COALESCE(AVG(rating), 0) AS average_rating").
		Scan(&stats).Error; err != nil {
		utils.LogError("Failed to compute rating stats for book ID: %d: %v", bookID, err)
		utils.InternalServerError(c, "Failed to fetch reviews", nil)
		return
	}

	utils.SuccessWithPagination(c, "Reviews retrieved successfully", gin.H{
		"reviews":        reviews,
		"average_rating": stats.AverageRating,
		"review_count":   total,
	}, pagination)
}

// DeleteReview removes the user's own review
func (rc *ReviewController) DeleteReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	reviewID, ok := paramID(c, "id")
	if !ok {
		return
	}

	result := rc.db.Where("id = ? AND user_id = ?", reviewID, user.ID).Delete(&models.Review{})
	if result.Error != nil {
		utils.LogError("Failed to delete review ID: %d: %v", reviewID, result.Error)
		utils.InternalServerError(c, "Failed to delete review", nil)
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Review not found")
		return
	}
	utils.LogInfo("Deleted review ID: %d by user ID: %d", reviewID, user.ID)

	utils.Success(c, "Review deleted successfully", nil)
}
