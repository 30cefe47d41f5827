package domain

import "errors"

var (
	// ErrCatalogLoad - каталог клиентов или артикулов не удалось загрузить.
	ErrCatalogLoad = errors.New("catalog load failed")
	// ErrCatalogAlreadyLoaded - каталог загружается ровно один раз за время жизни процесса.
	ErrCatalogAlreadyLoaded = errors.New("catalog already loaded")
	// ErrCatalogUnavailable - каталог не загружен, операции над ним невозможны.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrCustomerNotFound - в каталоге нет клиента с такой позицией.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrCustomerNameRequired - имя (название фирмы) обязательно при создании клиента.
	ErrCustomerNameRequired = errors.New("customer name is required")
	// ErrEmailInvalid - e-mail указан, но не похож на адрес.
	ErrEmailInvalid = errors.New("email is invalid")

	// ErrArticleNumberRequired - не указан номер артикула.
	ErrArticleNumberRequired = errors.New("article number is required")
	// ErrQuantityInvalid - количество должно быть больше нуля.
	ErrQuantityInvalid = errors.New("quantity must be greater than zero")
	// ErrQuantityTooLarge - количество позиции больше MaxLineQuantity.
	ErrQuantityTooLarge = errors.New("quantity exceeds the per-line maximum")
	// ErrArticleNotFound - артикул с таким номером отсутствует в каталоге.
	ErrArticleNotFound = errors.New("article not found")
	// ErrArticlePriceInvalid - цена артикула отрицательная.
	ErrArticlePriceInvalid = errors.New("article price must be non-negative")
	// ErrLineNotFound - в корзине нет позиции с таким идентификатором.
	ErrLineNotFound = errors.New("cart line not found")
	// ErrConfirmationDeclined - пользователь не подтвердил удаление.
	ErrConfirmationDeclined = errors.New("confirmation declined")

	// ErrCustomerRequired - для оформления заказа нужен выбранный клиент.
	ErrCustomerRequired = errors.New("customer is required")
	// ErrItemsRequired - для оформления заказа нужна хотя бы одна позиция.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// ErrAmountMismatch - итог заказа не совпадает с суммой позиций.
	ErrAmountMismatch = errors.New("order total does not match lines sum")
	// ErrOrderLocked - заказ зафиксирован, корзина и клиент доступны только для чтения.
	ErrOrderLocked = errors.New("order is locked")
	// ErrOrderNotFinalized - завершить можно только зафиксированный заказ.
	ErrOrderNotFinalized = errors.New("order is not finalized")

	// ErrOrderNotFound возвращается, если заказ не найден в архиве.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderAlreadyArchived - заказ с таким идентификатором уже передан.
	ErrOrderAlreadyArchived = errors.New("order already archived")
	// ErrOrderIDConflict - идентификатор уже занят другим заказом.
	ErrOrderIDConflict = errors.New("order id belongs to a different order")
	// ErrOrderSubmit - заказ не удалось передать во внешний контур.
	ErrOrderSubmit = errors.New("order submit failed")
	// ErrOutboxPublish - ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")

	// ErrSessionNotFound - сессия не существует или истекла.
	ErrSessionNotFound = errors.New("session not found")
)

// IsValidation сообщает, относится ли ошибка к пользовательской валидации:
// такие ошибки не фатальны и показываются рядом с формой.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrCustomerNameRequired,
		ErrEmailInvalid,
		ErrArticleNumberRequired,
		ErrQuantityInvalid,
		ErrQuantityTooLarge,
		ErrArticleNotFound,
		ErrCustomerRequired,
		ErrItemsRequired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
