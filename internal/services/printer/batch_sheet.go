package printer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
	"github.com/xelth-com/shopdeskgo/internal/production"
)

// QRContent is the payload encoded on a batch sheet
func QRContent(batchID string) string {
	return "BATCH:" + batchID
}

// GenerateBatchSheetPDF renders a production batch snapshot (materials,
// quantities, costs) on an A4 page with a QR code of the batch id.
func GenerateBatchSheetPDF(batch production.BatchSummary, productName string) ([]byte, error) {
	if batch.ID == "" {
		return nil, fmt.Errorf("batch id is required")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(140, 8, "Production Batch", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	if productName == "" {
		productName = batch.ProductID
	}
	pdf.CellFormat(140, 6, "Product: "+productName, "", 1, "L", false, 0, "")
	pdf.CellFormat(140, 6, fmt.Sprintf("Batch size: %d units", batch.BatchSize), "", 1, "L", false, 0, "")
	pdf.CellFormat(140, 6, "Status: "+statusLabel(string(batch.Status)), "", 1, "L", false, 0, "")
	if !batch.CreatedAt.IsZero() {
		pdf.CellFormat(140, 6, "Planned: "+batch.CreatedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	}

	// QR code top right
	qrPng, err := qrcode.Encode(QRContent(batch.ID), qrcode.Medium, 256)
	if err != nil {
		return nil, err
	}
	imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("qr_batch", imgOptions, bytes.NewReader(qrPng))
	pdf.ImageOptions("qr_batch", 160, 12, 35, 35, false, imgOptions, 0, "")
	pdf.SetXY(155, 47)
	pdf.SetFont("Arial", "", 6)
	pdf.CellFormat(45, 3, batch.ID, "", 0, "C", false, 0, "")

	// Materials table
	pdf.SetXY(15, 55)
	widths := []float64{70, 30, 30, 25, 25}
	headers := []string{"Material", "Per unit", "Total needed", "Unit price", "Cost"}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 7, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, line := range batch.CalculatedSupplies {
		unitPrice := "not priced"
		if line.Priced {
			unitPrice = "$" + line.PricePerUnit.StringFixed(2)
		}
		pdf.CellFormat(widths[0], 6, truncate(line.SupplyName, 40), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, withUnit(line.UnitAmount.String(), line.Unit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, withUnit(line.TotalNeeded.String(), line.Unit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, unitPrice, "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, "$"+line.TotalCost.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	// Totals
	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(155, 6, "Total cost", "", 0, "R", false, 0, "")
	pdf.CellFormat(25, 6, "$"+batch.TotalCost.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(155, 6, "Cost per unit", "", 0, "R", false, 0, "")
	pdf.CellFormat(25, 6, "$"+batch.CostPerUnit.StringFixed(2), "", 1, "R", false, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func statusLabel(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, "_", " "))
}

func withUnit(amount, unit string) string {
	if unit == "" {
		return amount
	}
	return amount + " " + unit
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "..."
}
