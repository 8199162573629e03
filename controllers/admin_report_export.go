package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"github.com/tealeg/xlsx"
	"github.com/tranqv/bookstore/models"
	"github.com/tranqv/bookstore/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func addHeaderRow(sheet *xlsx.Sheet, headers []string) {
	row := sheet.AddRow()
	for _, h := range headers {
		cell := row.AddCell()
		cell.SetString(h)
		style := xlsx.NewStyle()
		font := xlsx.DefaultFont()
		font.Bold = true
		style.Font = *font
		cell.SetStyle(style)
	}
}

// ExportExcel streams a report workbook. The report type is selected with
// the "type" query parameter: orders, bestselling or customers.
func (rc *AdminReportController) ExportExcel(c *gin.Context) {
	reportType := c.DefaultQuery("type", "orders")
	utils.LogInfo("Exporting %s report as Excel", reportType)

	file := xlsx.NewFile()
	var err error
	switch reportType {
	case "orders":
		err = rc.writeOrdersSheet(file)
	case "bestselling":
		err = rc.writeBestsellingSheet(file)
	case "customers":
		err = rc.writeCustomersSheet(file)
	default:
		utils.BadRequest(c, "Report type must be one of: orders, bestselling, customers", nil)
		return
	}
	if err != nil {
		utils.LogError("Failed to build %s report: %v", reportType, err)
		utils.InternalServerError(c, "Failed to build report", nil)
		return
	}

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_report_%s.xlsx", reportType, time.Now().Format("20060102")))
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel file: %v", err)
		utils.InternalServerError(c, "Failed to write report", nil)
		return
	}
	utils.LogInfo("Exported %s report as Excel", reportType)
}

func (rc *AdminReportController) writeOrdersSheet(file *xlsx.File) error {
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return err
	}

	var orders []models.Order
	if err := rc.db.Preload("User").Preload("OrderItems").
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return err
	}

	addHeaderRow(sheet, []string{"Order Code", "Customer", "Email", "Date", "Items", "Subtotal", "VAT", "Shipping", "Total", "Payment", "Status"})
	for _, order := range orders {
		row := sheet.AddRow()
		row.AddCell().SetString(order.OrderCode)
		row.AddCell().SetString(order.User.FullName)
		row.AddCell().SetString(order.User.Email)
		row.AddCell().SetString(order.CreatedAt.Format("2006-01-02 15:04"))
		row.AddCell().SetInt(len(order.OrderItems))
		row.AddCell().SetInt64(order.Subtotal)
		row.AddCell().SetInt64(order.VAT)
		row.AddCell().SetInt64(order.ShippingFee)
		row.AddCell().SetInt64(order.TotalAmount)
		row.AddCell().SetString(order.PaymentStatus)
		row.AddCell().SetString(order.Status)
	}
	return nil
}

func (rc *AdminReportController) writeBestsellingSheet(file *xlsx.File) error {
	sheet, err := file.AddSheet("Bestselling Books")
	if err != nil {
		return err
	}

	rows, err := rc.bestsellers(nil, nil, 100)
	if err != nil {
		return err
	}

	addHeaderRow(sheet, []string{"Book ID", "Title", "Author", "Copies Sold", "Orders", "Revenue"})
	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(r.BookID))
		row.AddCell().SetString(r.Title)
		row.AddCell().SetString(r.Author)
		row.AddCell().SetInt64(r.Sold)
		row.AddCell().SetInt64(r.NumOrder)
		row.AddCell().SetInt64(r.Revenue)
	}
	return nil
}

func (rc *AdminReportController) writeCustomersSheet(file *xlsx.File) error {
	sheet, err := file.AddSheet("Customers")
	if err != nil {
		return err
	}

	var customers []models.User
	if err := rc.db.Where("role = ?", models.RoleCustomer).
		Order("created_at DESC").
		Find(&customers).Error; err != nil {
		return err
	}

	addHeaderRow(sheet, []string{"ID", "Name", "Email", "Phone", "Registered", "Active", "Locked"})
	for _, u := range customers {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(u.ID))
		row.AddCell().SetString(u.FullName)
		row.AddCell().SetString(u.Email)
		row.AddCell().SetString(u.Phone)
		row.AddCell().SetString(u.CreatedAt.Format("2006-01-02"))
		row.AddCell().SetBool(u.IsActive)
		row.AddCell().SetBool(u.IsLocked)
	}
	return nil
}

// ExportQuarterPDF streams the current-quarter revenue report as a PDF
func (rc *AdminReportController) ExportQuarterPDF(c *gin.Context) {
	now := time.Now()
	start, end := quarterBounds(now)

	summary, err := rc.revenueBetween(start, end)
	if err != nil {
		utils.LogError("Failed to compute quarter summary: %v", err)
		utils.InternalServerError(c, "Failed to build quarter report", nil)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(100, 10, "Bookstore - Quarterly Sales Report")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(150, 8, fmt.Sprintf("Period: %s to %s", start.Format("2006-01-02"), end.AddDate(0, 0, -1).Format("2006-01-02")))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(60, 8, "Month", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, "Orders", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 8, "Revenue", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 12)
	for monthStart := start; monthStart.Before(end); monthStart = monthStart.AddDate(0, 1, 0) {
		bucket, err := rc.revenueBetween(monthStart, monthStart.AddDate(0, 1, 0))
		if err != nil {
			utils.LogError("Failed to compute monthly breakdown: %v", err)
			utils.InternalServerError(c, "Failed to build quarter report", nil)
			return
		}
		pdf.CellFormat(60, 8, monthStart.Format("January 2006"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, strconv.FormatInt(bucket.OrderCount, 10), "1", 0, "R", false, 0, "")
		pdf.CellFormat(60, 8, utils.FormatVND(bucket.Revenue), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(100, 10, fmt.Sprintf("Total paid orders: %d", summary.OrderCount), "", 1, "L", false, 0, "")
	pdf.CellFormat(100, 10, "Total revenue: "+utils.FormatVND(summary.Revenue), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.LogError("Failed to render quarter report PDF: %v", err)
		utils.InternalServerError(c, "Failed to write report", nil)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=quarter_report_%s.pdf", start.Format("2006_01")))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	utils.LogInfo("Exported quarter report as PDF")
}
