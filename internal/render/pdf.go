// Package render переводит размещённые документы и сводки в файлы для печати и выгрузки.
package render

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/alejoevilches/laabuelachela/internal/layout"
)

const (
	fontFamily  = "Helvetica"
	textIndent  = 5
	headerFont  = 14
	bodyFont    = 11
	headerShift = 8
	// Базовая линия текста лежит на 2 мм выше нижней границы своей полосы.
	baselineLift = 2
)

// RenderPDF рисует рамки и текст карточек документа, по странице на каждую страницу раскладки.
func RenderPDF(w io.Writer, doc layout.Document) error {
	pdf, err := buildPDF(doc)
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func buildPDF(doc layout.Document) (*fpdf.Fpdf, error) {
	opts := doc.Options
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: opts.PageWidth, Ht: opts.PageHeight},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Kitchen orders", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pages := doc.Pages
	if pages == 0 {
		pages = 1
	}
	for page := 0; page < pages; page++ {
		pdf.AddPage()
		for _, card := range doc.Cards {
			if card.Page == page {
				drawCard(pdf, tr, card, opts)
			}
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return pdf, nil
}

func drawCard(pdf *fpdf.Fpdf, tr func(string) string, card layout.Card, opts layout.Options) {
	pdf.SetDrawColor(0, 0, 0)
	pdf.Rect(card.X, card.Y, card.Width, card.Height, "D")

	text := card.Text()
	x := card.X + textIndent

	pdf.SetFont(fontFamily, "B", headerFont)
	pdf.Text(x, card.Y+headerShift, tr(text.Header))

	pdf.SetFont(fontFamily, "", bodyFont)
	pdf.Text(x, card.Y+opts.HeaderHeight-baselineLift, tr(text.Client))
	pdf.Text(x, card.Y+opts.HeaderHeight+opts.AddressHeight-baselineLift, tr(text.Address))

	itemsTop := card.Y + opts.HeaderHeight + opts.AddressHeight
	for i, line := range text.Items {
		pdf.Text(x, itemsTop+float64(i+1)*opts.LineHeight, tr(line))
	}
}
