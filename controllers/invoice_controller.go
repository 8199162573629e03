package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"github.com/tranqv/bookstore/models"
	"github.com/tranqv/bookstore/utils"
	"gorm.io/gorm"
)

// InvoiceController serves invoice metadata and PDF downloads
type InvoiceController struct {
	db *gorm.DB
}

// NewInvoiceController creates an InvoiceController
func NewInvoiceController(db *gorm.DB) *InvoiceController {
	return &InvoiceController{db: db}
}

func (ic *InvoiceController) invoiceForUser(orderID, userID uint) (*models.Invoice, *models.Order, error) {
	var order models.Order
	if err := ic.db.Preload("OrderItems.Book").Preload("Address").Preload("User").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error; err != nil {
		return nil, nil, err
	}
	var invoice models.Invoice
	if err := ic.db.Where("order_id = ?", order.ID).First(&invoice).Error; err != nil {
		return nil, &order, err
	}
	return &invoice, &order, nil
}

// GetInvoice returns the invoice metadata for a paid order
func (ic *InvoiceController) GetInvoice(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	invoice, order, err := ic.invoiceForUser(orderID, user.ID)
	if err != nil {
		if order == nil {
			utils.LogError("Order not found for invoice, ID: %d, user ID: %d", orderID, user.ID)
			utils.NotFound(c, "Order not found")
			return
		}
		utils.LogError("No invoice for order %s, user ID: %d", order.OrderCode, user.ID)
		utils.NotFound(c, "No invoice exists for this order")
		return
	}

	utils.Success(c, "Invoice retrieved successfully", gin.H{
		"invoice_code": invoice.InvoiceCode,
		"invoice_date": invoice.InvoiceDate,
		"order_code":   order.OrderCode,
		"subtotal":     order.Subtotal,
		"vat":          order.VAT,
		"shipping_fee": order.ShippingFee,
		"total_amount": order.TotalAmount,
	})
}

// DownloadInvoicePDF renders the invoice as a PDF attachment
func (ic *InvoiceController) DownloadInvoicePDF(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	invoice, order, err := ic.invoiceForUser(orderID, user.ID)
	if err != nil {
		if order == nil {
			utils.LogError("Order not found for invoice PDF, ID: %d, user ID: %d", orderID, user.ID)
			utils.NotFound(c, "Order not found")
			return
		}
		utils.LogError("No invoice for order %s, user ID: %d", order.OrderCode, user.ID)
		utils.NotFound(c, "No invoice exists for this order")
		return
	}
	utils.LogInfo("Generating invoice PDF %s for user ID: %d", invoice.InvoiceCode, user.ID)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Store header
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(100, 10, "Bookstore")
	pdf.SetFont("Arial", "", 12)
	pdf.Ln(8)
	pdf.Cell(100, 8, "123 Nguyen Hue, District 1, Ho Chi Minh City")
	pdf.Ln(8)
	pdf.Cell(100, 8, "Email: support@bookstore.vn")
	pdf.Ln(12)

	// Invoice and order info
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, "INVOICE "+invoice.InvoiceCode)
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(70, 8, "Order: "+order.OrderCode)
	pdf.Cell(70, 8, "Date: "+invoice.InvoiceDate.Format("2006-01-02 15:04:05"))
	pdf.Ln(8)
	pdf.Cell(70, 8, "Payment Method: "+order.PaymentMethod)
	pdf.Cell(70, 8, "Status: "+order.Status)
	pdf.Ln(10)

	// Customer block
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(100, 8, "Billed To:")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(100, 8, order.User.FullName)
	pdf.Ln(6)
	pdf.Cell(100, 8, order.User.Email)
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(100, 8, "Shipping Address:")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(100, 8, order.Address.RecipientName+" - "+order.Address.Phone)
	pdf.Ln(6)
	pdf.Cell(100, 8, order.Address.AddressLine)
	pdf.Ln(6)
	if order.Address.District != "" {
		pdf.Cell(100, 8, order.Address.District+", "+order.Address.City)
	} else {
		pdf.Cell(100, 8, order.Address.City)
	}
	pdf.Ln(10)

	// Line items
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(80, 8, "Book", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, "Price", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, "Subtotal", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 12)
	for _, item := range order.OrderItems {
		pdf.CellFormat(80, 8, item.Book.Title, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, strconv.Itoa(item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 8, utils.FormatVND(item.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, utils.FormatVND(item.Subtotal), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	// Totals
	pdf.Ln(4)
	for _, row := range []struct {
		label string
		value int64
	}{
		{"Subtotal:", order.Subtotal},
		{"VAT (10%):", order.VAT},
		{"Shipping:", order.ShippingFee},
	} {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(140, 8, row.label, "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 12)
		pdf.CellFormat(40, 8, utils.FormatVND(row.value), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(140, 10, "Total:", "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 10, utils.FormatVND(order.TotalAmount), "", 1, "R", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 12)
	pdf.Cell(0, 10, "Thank you for shopping with us!")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.LogError("Failed to render invoice PDF for order %s: %v", order.OrderCode, err)
		utils.InternalServerError(c, "Failed to generate invoice PDF", nil)
		return
	}
	utils.LogInfo("Invoice PDF generated for order %s", order.OrderCode)

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", invoice.InvoiceCode))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
