package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tranqv/bookstore/models"
	"github.com/tranqv/bookstore/utils"
	"gorm.io/gorm"
)

// lowStockThreshold flags books that need restocking on the dashboard.
const lowStockThreshold = 10

// AdminReportController builds revenue and customer reports
type AdminReportController struct {
	db *gorm.DB
}

// NewAdminReportController creates an AdminReportController
func NewAdminReportController(db *gorm.DB) *AdminReportController {
	return &AdminReportController{db: db}
}

// quarterBounds returns the inclusive start and exclusive end of the
// quarter containing t.
func quarterBounds(t time.Time) (time.Time, time.Time) {
	quarterStartMonth := time.Month((int(t.Month())-1)/3*3 + 1)
	start := time.Date(t.Year(), quarterStartMonth, 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 3, 0)
}

type revenueBucket struct {
	OrderCount int64 `json:"order_count"`
	Revenue    int64 `json:"revenue"`
}

func (rc *AdminReportController) revenueBetween(start, end time.Time) (revenueBucket, error) {
	var bucket revenueBucket
	err := rc.db.Model(&models.Order{}).
		Select("COUNT(*) AS order_count, COALESCE(SUM(total_amount), 0) AS revenue").
		Where("payment_status = ? AND created_at >= ? AND created_at < ?", models.PaymentStatusPaid, start, end).
		Scan(&bucket).Error
	return bucket, err
}

// GetQuarterReport returns the current quarter's revenue with a
// month-by-month breakdown
func (rc *AdminReportController) GetQuarterReport(c *gin.Context) {
	now := time.Now()
	start, end := quarterBounds(now)
	utils.LogInfo("Building quarter report for %s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))

	summary, err := rc.revenueBetween(start, end)
	if err != nil {
		utils.LogError("Failed to compute quarter summary: %v", err)
		utils.InternalServerError(c, "Failed to build quarter report", nil)
		return
	}

	type monthBucket struct {
		Month      string `json:"month"`
		OrderCount int64  `json:"order_count"`
		Revenue    int64  `json:"revenue"`
	}
	months := make([]monthBucket, 0, 3)
	for monthStart := start; monthStart.Before(end); monthStart = monthStart.AddDate(0, 1, 0) {
		bucket, err := rc.revenueBetween(monthStart, monthStart.AddDate(0, 1, 0))
		if err != nil {
			utils.LogError("Failed to compute monthly breakdown: %v", err)
			utils.InternalServerError(c, "Failed to build quarter report", nil)
			return
		}
		months = append(months, monthBucket{
			Month:      monthStart.Format("2006-01"),
			OrderCount: bucket.OrderCount,
			Revenue:    bucket.Revenue,
		})
	}

	utils.Success(c, "Quarter report retrieved successfully", gin.H{
		"quarter_start":     start.Format("2006-01-02"),
		"quarter_end":       end.AddDate(0, 0, -1).Format("2006-01-02"),
		"order_count":       summary.OrderCount,
		"total_revenue":     summary.Revenue,
		"monthly_breakdown": months,
	})
}

type bestsellerRow struct {
	BookID   uint   `json:"book_id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Sold     int64  `json:"sold"`
	Revenue  int64  `json:"revenue"`
	NumOrder int64  `json:"order_count"`
}

func (rc *AdminReportController) bestsellers(start, end *time.Time, limit int) ([]bestsellerRow, error) {
	query := rc.db.Model(&models.OrderItem{}).
		Select("order_items.book_id, books.title, books.author, SUM(order_items.quantity) AS sold, SUM(order_items.subtotal) AS revenue, COUNT(DISTINCT order_items.order_id) AS num_order").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN books ON books.id = order_items.book_id").
		Where("orders.payment_status = ?", models.PaymentStatusPaid)
	if start != nil {
		query = query.Where("orders.created_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("orders.created_at < ?", *end)
	}

	var rows []bestsellerRow
	err := query.Group("order_items.book_id, books.title, books.author").
		Order("sold DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		utils.BadRequest(c, name+" must be in YYYY-MM-DD format", nil)
		return nil, false
	}
	return &t, true
}

// GetBestsellers returns the top selling books over an optional date range
func (rc *AdminReportController) GetBestsellers(c *gin.Context) {
	start, ok := parseDateQuery(c, "start_date")
	if !ok {
		return
	}
	end, ok := parseDateQuery(c, "end_date")
	if !ok {
		return
	}
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	rows, err := rc.bestsellers(start, end, limit)
	if err != nil {
		utils.LogError("Failed to compute bestsellers: %v", err)
		utils.InternalServerError(c, "Failed to build bestseller report", nil)
		return
	}

	utils.Success(c, "Bestsellers retrieved successfully", gin.H{"bestsellers": rows})
}

// GetNewCustomers returns customers registered in the last N days
func (rc *AdminReportController) GetNewCustomers(c *gin.Context) {
	days := 30
	if raw := c.Query("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 365 {
			days = parsed
		}
	}
	since := time.Now().AddDate(0, 0, -days)

	var customers []models.User
	if err := rc.db.Where("role = ? AND created_at >= ?", models.RoleCustomer, since).
		Order("created_at DESC").
		Find(&customers).Error; err != nil {
		utils.LogError("Failed to fetch new customers: %v", err)
		utils.InternalServerError(c, "Failed to build customer report", nil)
		return
	}

	utils.Success(c, "New customers retrieved successfully", gin.H{
		"since":     since.Format("2006-01-02"),
		"count":     len(customers),
		"customers": customers,
	})
}

// GetDashboardStats returns the headline numbers for the admin dashboard
func (rc *AdminReportController) GetDashboardStats(c *gin.Context) {
	var totalCustomers, totalBooks, totalOrders, pendingOrders, lowStock int64

	if err := rc.db.Model(&models.User{}).Where("role = ?", models.RoleCustomer).Count(&totalCustomers).Error; err != nil {
		utils.LogError("Failed to count customers: %v", err)
		utils.InternalServerError(c, "Failed to build dashboard stats", nil)
		return
	}
	if err := rc.db.Model(&models.Book{}).Count(&totalBooks).Error; err != nil {
		utils.LogError("Failed to count books: %v", err)
		utils.InternalServerError(c, "Failed to build dashboard stats", nil)
		return
	}
	if err := rc.db.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		utils.LogError("Failed to count orders: %v", err)
		utils.InternalServerError(c, "Failed to build dashboard stats", nil)
		return
	}
	if err := rc.db.Model(&models.Order{}).Where("status = ?", models.OrderStatusPending).Count(&pendingOrders).Error; err != nil {
		utils.LogError("Failed to count pending orders: %v", err)
		utils.InternalServerError(c, "Failed to build dashboard stats", nil)
		return
	}
	if err := rc.db.Model(&models.Book{}).Where("stock_quantity < ?", lowStockThreshold).Count(&lowStock).Error; err != nil {
		utils.LogError("Failed to count low stock books: %v", err)
		utils.InternalServerError(c, "Failed to build dashboard stats", nil)
		return
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	thisMonth, err := rc.revenueBetween(monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		utils.LogError("Failed to compute monthly revenue: %v", err)
		utils.InternalServerError(c, "Failed to build dashboard stats", nil)
		return
	}

	allTime, err := rc.revenueBetween(time.Time{}, now.AddDate(0, 0, 1))
	if err != nil {
		utils.LogError("Failed to compute total revenue: %v", err)
		utils.InternalServerError(c, "Failed to build dashboard stats", nil)
		return
	}

	utils.Success(c, "Dashboard stats retrieved successfully", gin.H{
		"total_customers":     totalCustomers,
		"total_books":         totalBooks,
		"total_orders":        totalOrders,
		"total_revenue":       allTime.Revenue,
		"pending_orders":      pendingOrders,
		"low_stock_books":     lowStock,
		"orders_this_month":   thisMonth.OrderCount,
		"revenue_this_month":  thisMonth.Revenue,
		"low_stock_threshold": lowStockThreshold,
	})
}
