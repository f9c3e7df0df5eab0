// Package layout раскладывает карточки заказов по двухколоночным страницам для печати.
package layout

import (
	"errors"
	"fmt"

	"github.com/alejoevilches/laabuelachela/internal/domain"
)

// ErrInvalidOptions возвращается для геометрии, на которой раскладка невозможна.
var ErrInvalidOptions = errors.New("invalid layout options")

// Column — колонка страницы.
type Column int

const (
	ColumnLeft Column = iota
	ColumnRight
)

func (c Column) String() string {
	if c == ColumnRight {
		return "right"
	}
	return "left"
}

// Options задаёт геометрию страницы и карточки в единицах документа (мм для A4).
type Options struct {
	PageWidth    float64
	PageHeight   float64
	MarginTop    float64
	MarginBottom float64
	MarginSide   float64
	CardWidth    float64
	CardSpacing  float64

	HeaderHeight  float64
	AddressHeight float64
	LineHeight    float64
	BottomPadding float64
}

// DefaultOptions возвращает геометрию печатного тикета на A4.
func DefaultOptions() Options {
	return Options{
		PageWidth:     210,
		PageHeight:    297,
		MarginTop:     10,
		MarginBottom:  10,
		MarginSide:    10,
		CardWidth:     90,
		CardSpacing:   10,
		HeaderHeight:  20,
		AddressHeight: 10,
		LineHeight:    8,
		BottomPadding: 10,
	}
}

// PrintableBottom возвращает нижнюю границу, за которую карточка выходить не должна.
func (o Options) PrintableBottom() float64 {
	return o.PageHeight - o.MarginBottom
}

// PrintableHeight возвращает высоту области печати одной страницы.
func (o Options) PrintableHeight() float64 {
	return o.PrintableBottom() - o.MarginTop
}

// ColumnX возвращает левую координату колонки.
func (o Options) ColumnX(c Column) float64 {
	if c == ColumnRight {
		return o.PageWidth - o.MarginSide - o.CardWidth
	}
	return o.MarginSide
}

func (o Options) validate() error {
	switch {
	case o.PageHeight <= 0 || o.PageWidth <= 0:
		return fmt.Errorf("%w: page size must be positive", ErrInvalidOptions)
	case o.CardWidth <= 0:
		return fmt.Errorf("%w: card width must be positive", ErrInvalidOptions)
	case o.MarginTop < 0 || o.MarginBottom < 0 || o.MarginSide < 0 || o.CardSpacing < 0:
		return fmt.Errorf("%w: margins and spacing must be non-negative", ErrInvalidOptions)
	case o.HeaderHeight < 0 || o.AddressHeight < 0 || o.LineHeight < 0 || o.BottomPadding < 0:
		return fmt.Errorf("%w: card blocks must be non-negative", ErrInvalidOptions)
	case o.PrintableHeight() <= 0:
		return fmt.Errorf("%w: margins leave no printable area", ErrInvalidOptions)
	case 2*o.CardWidth+2*o.MarginSide > o.PageWidth:
		return fmt.Errorf("%w: two columns do not fit the page width", ErrInvalidOptions)
	}
	return nil
}

// Card — размещённая карточка одного заказа.
type Card struct {
	// Number: порядковый номер в печати, начиная с 1.
	Number int
	Page   int
	Column Column
	X      float64
	Y      float64
	Width  float64
	Height float64
	Order  domain.Order
}

// Bottom возвращает нижнюю координату карточки.
func (c Card) Bottom() float64 {
	return c.Y + c.Height
}

// Document — результат раскладки, готовый для рендерера.
type Document struct {
	Options Options
	Pages   int
	Cards   []Card
}

// CardHeight считает высоту карточки: шапка, адрес, по строке на позицию и нижний отступ.
func CardHeight(order domain.Order, opts Options) float64 {
	return opts.HeaderHeight + opts.AddressHeight + float64(len(order.Items))*opts.LineHeight + opts.BottomPadding
}

type cursor struct {
	page      int
	column    Column
	y         float64
	rowHeight float64
}

// Layout размещает заказы во входном порядке: слева направо внутри ряда,
// затем следующий ряд. Карточка, не влезающая в остаток страницы, открывает
// новую страницу с левой колонки. Для карточки выше печатной области возвращается ErrLayoutOverflow.
func Layout(orders []domain.Order, opts Options) (Document, error) {
	if err := opts.validate(); err != nil {
		return Document{}, err
	}

	doc := Document{Options: opts, Cards: make([]Card, 0, len(orders))}
	if len(orders) == 0 {
		return doc, nil
	}

	cur := cursor{y: opts.MarginTop}
	for idx, order := range orders {
		for _, item := range order.Items {
			if item.Quantity <= 0 {
				panic(fmt.Sprintf("layout: order %d has non-positive quantity %d", order.ID, item.Quantity))
			}
		}

		height := CardHeight(order, opts)
		if height > opts.PrintableHeight() {
			return Document{}, fmt.Errorf("%w: order %d needs %.1f, page fits %.1f",
				domain.ErrLayoutOverflow, order.ID, height, opts.PrintableHeight())
		}

		if cur.y+height > opts.PrintableBottom() {
			cur = cursor{page: cur.page + 1, y: opts.MarginTop}
		}

		doc.Cards = append(doc.Cards, Card{
			Number: idx + 1,
			Page:   cur.page,
			Column: cur.column,
			X:      opts.ColumnX(cur.column),
			Y:      cur.y,
			Width:  opts.CardWidth,
			Height: height,
			Order:  order,
		})

		if height > cur.rowHeight {
			cur.rowHeight = height
		}
		if cur.column == ColumnLeft {
			cur.column = ColumnRight
			continue
		}
		// Ряд сдвигается на самую высокую карточку ряда, иначе левая могла бы наехать на следующую.
		cur.y += cur.rowHeight + opts.CardSpacing
		cur.column = ColumnLeft
		cur.rowHeight = 0
	}

	doc.Pages = doc.Cards[len(doc.Cards)-1].Page + 1
	return doc, nil
}
