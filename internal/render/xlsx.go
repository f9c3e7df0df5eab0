package render

import (
	"fmt"
	"io"
	"time"

	"github.com/tealeg/xlsx"

	"github.com/alejoevilches/laabuelachela/internal/domain"
)

// SummarySheet — имя листа с недельной сводкой.
const SummarySheet = "Weekly production"

// WriteWeeklySummaryXLSX выгружает недельную сводку: заголовок недели, шапку и строку на продукт.
func WriteWeeklySummaryXLSX(w io.Writer, weekStart time.Time, entries []domain.WeeklySummaryEntry) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SummarySheet)
	if err != nil {
		return fmt.Errorf("add xlsx sheet: %w", err)
	}

	sheet.AddRow().AddCell().SetString("Week of " + weekStart.Format(time.DateOnly))

	header := sheet.AddRow()
	for _, title := range []string{"Product ID", "Product", "Quantity"} {
		header.AddCell().SetString(title)
	}

	for _, entry := range entries {
		row := sheet.AddRow()
		row.AddCell().SetInt64(entry.ProductID)
		row.AddCell().SetString(entry.Description)
		row.AddCell().SetInt64(entry.TotalQuantity)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
