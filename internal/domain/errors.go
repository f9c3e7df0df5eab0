package domain

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrValidation — корень ошибок входных данных; отклоняются до обращения к хранилищу.
	ErrValidation = errors.New("validation failed")
	// ErrRemoteFailure — ошибка транспорта или удалённого хранилища.
	ErrRemoteFailure = errors.New("remote store failure")
	// ErrLayoutOverflow — карточка не помещается на одну печатную страницу.
	ErrLayoutOverflow = errors.New("layout overflow")

	// Ошибка отсутствующего имени клиента.
	ErrClientRequired = fmt.Errorf("%w: client is required", ErrValidation)
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = fmt.Errorf("%w: amount must be non-negative", ErrValidation)
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = fmt.Errorf("%w: item quantity must be greater than zero", ErrValidation)
	// Ошибка суммарного количества продукта, не помещающегося в int32.
	ErrItemQtyTooLarge = fmt.Errorf("%w: total item quantity exceeds %d", ErrValidation, math.MaxInt32)
	// Ошибка некорректного идентификатора продукта в позиции.
	ErrProductIDInvalid = fmt.Errorf("%w: item product id must be positive", ErrValidation)
	// Ошибка пустого описания продукта.
	ErrDescriptionRequired = fmt.Errorf("%w: product description is required", ErrValidation)
	// Ошибка повторного описания продукта в каталоге.
	ErrProductExists = fmt.Errorf("%w: product with this description already exists", ErrValidation)
	// Ошибка неизвестного статуса заказа.
	ErrInvalidStatus = fmt.Errorf("%w: unknown order status", ErrValidation)

	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrProductNotFound возвращается, если продукт не найден в каталоге.
	ErrProductNotFound = errors.New("product not found")
)

// RemoteFailure оборачивает ошибку хранилища, сохраняя исходную причину.
func RemoteFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrRemoteFailure, err)
}

// IsRemoteFailure проверяет, является ли ошибка RemoteFailure.
func IsRemoteFailure(err error) bool {
	return errors.Is(err, ErrRemoteFailure)
}

// IsValidation проверяет, является ли ошибка ошибкой валидации.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func joinValidation(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
