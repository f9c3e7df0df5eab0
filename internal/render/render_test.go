package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/alejoevilches/laabuelachela/internal/domain"
	"github.com/alejoevilches/laabuelachela/internal/layout"
)

func ordersWithItems(count, items int) []domain.Order {
	orders := make([]domain.Order, 0, count)
	for i := 0; i < count; i++ {
		order := domain.Order{ID: int64(i + 1), Client: "Ana", Address: "Calle 1"}
		for n := 0; n < items; n++ {
			order.Items = append(order.Items, domain.LineItem{ProductID: int64(n + 1), Description: "Pan", Quantity: 2})
		}
		orders = append(orders, order)
	}
	return orders
}

func TestRenderPDF_OnePagePerLayoutPage(t *testing.T) {
	doc, err := layout.Layout(ordersWithItems(12, 3), layout.DefaultOptions())
	require.NoError(t, err)
	require.Greater(t, doc.Pages, 1)

	pdf, err := buildPDF(doc)
	require.NoError(t, err)
	require.Equal(t, doc.Pages, pdf.PageCount())

	var buf bytes.Buffer
	require.NoError(t, RenderPDF(&buf, doc))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

var pdfStream = regexp.MustCompile(`(?s)stream\n(.*?)endstream`)

// pageContents возвращает несжатые потоки содержимого страниц в порядке вывода.
func pageContents(t *testing.T, doc layout.Document) []string {
	t.Helper()

	pdf, err := buildPDF(doc)
	require.NoError(t, err)
	pdf.SetCompression(false)

	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))

	var pages []string
	for _, match := range pdfStream.FindAllSubmatch(buf.Bytes(), -1) {
		if bytes.Contains(match[1], []byte("BT ")) || bytes.Contains(match[1], []byte(" re ")) {
			pages = append(pages, string(match[1]))
		}
	}
	return pages
}

func TestRenderPDF_CardsDrawnOnTheirPage(t *testing.T) {
	doc, err := layout.Layout(ordersWithItems(12, 3), layout.DefaultOptions())
	require.NoError(t, err)
	require.Greater(t, doc.Pages, 1)

	pages := pageContents(t, doc)
	require.Len(t, pages, doc.Pages)

	for _, card := range doc.Cards {
		header := fmt.Sprintf("(Order %d)", card.Number)
		for page, content := range pages {
			if page == card.Page {
				require.Contains(t, content, header, "card %d missing on page %d", card.Number, page)
				require.Contains(t, content, "(Client: Ana)")
			} else {
				require.NotContains(t, content, header, "card %d leaked onto page %d", card.Number, page)
			}
		}
	}
}

func TestRenderPDF_EmptyDocument(t *testing.T) {
	doc, err := layout.Layout(nil, layout.DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderPDF(&buf, doc))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriteWeeklySummaryXLSX(t *testing.T) {
	entries := []domain.WeeklySummaryEntry{
		{ProductID: 10, Description: "productX", TotalQuantity: 5},
		{ProductID: 20, Description: "[INTEGRAL] productY", TotalQuantity: 1},
	}

	var buf bytes.Buffer
	weekStart := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	require.NoError(t, WriteWeeklySummaryXLSX(&buf, weekStart, entries))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	sheet, ok := file.Sheet[SummarySheet]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 2+len(entries))

	require.Equal(t, "Week of 2026-10-19", sheet.Rows[0].Cells[0].Value)
	require.Equal(t, "Product", sheet.Rows[1].Cells[1].Value)
	for i, entry := range entries {
		cells := sheet.Rows[i+2].Cells
		require.Equal(t, entry.Description, cells[1].Value)
		require.Equal(t, strconv.FormatInt(entry.TotalQuantity, 10), cells[2].Value)
	}
}
