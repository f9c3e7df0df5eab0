package domain

import (
	"strings"
	"time"
)

// IntegralPrefix помечает цельнозерновой вариант продукта.
const IntegralPrefix = "[INTEGRAL] "

// Product — позиция каталога. Неактивные продукты не предлагаются при создании заказа,
// но остаются валидными для исторических позиций.
type Product struct {
	ID          int64
	Description string
	Active      bool
	CreatedAt   time.Time
}

// ValidateProductDescription проверяет описание нового продукта.
func ValidateProductDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return ErrDescriptionRequired
	}
	return nil
}

// IntegralVariant возвращает описание цельнозернового варианта.
func IntegralVariant(description string) string {
	return IntegralPrefix + strings.TrimSpace(description)
}
