package domain

// Readiness - состояние кнопки «дальше» (proceed gate).
type Readiness int

const (
	// ReadinessNeedBoth - нет ни клиента, ни позиций.
	ReadinessNeedBoth Readiness = iota
	// ReadinessNeedCustomer - позиции есть, клиент не выбран.
	ReadinessNeedCustomer
	// ReadinessNeedItems - клиент выбран, корзина пуста.
	ReadinessNeedItems
	// ReadinessReady - можно оформлять заказ.
	ReadinessReady
)

// EvaluateReadiness вычисляет состояние по наличию клиента и числу позиций.
func EvaluateReadiness(hasCustomer bool, lines int) Readiness {
	switch {
	case hasCustomer && lines > 0:
		return ReadinessReady
	case hasCustomer:
		return ReadinessNeedItems
	case lines > 0:
		return ReadinessNeedCustomer
	default:
		return ReadinessNeedBoth
	}
}

// CanProceed сообщает, разрешено ли оформление.
func (r Readiness) CanProceed() bool {
	return r == ReadinessReady
}

// Err возвращает причину блокировки; клиент проверяется первым.
func (r Readiness) Err() error {
	switch r {
	case ReadinessReady:
		return nil
	case ReadinessNeedItems:
		return ErrItemsRequired
	default:
		return ErrCustomerRequired
	}
}

// Label - подпись кнопки для каждого состояния.
func (r Readiness) Label() string {
	switch r {
	case ReadinessReady:
		return "Bestellung anzeigen"
	case ReadinessNeedCustomer:
		return "Bitte wählen Sie einen Kunden aus"
	case ReadinessNeedItems:
		return "Warenkorb ist leer"
	default:
		return "Kunde und Artikel erforderlich"
	}
}

func (r Readiness) String() string {
	switch r {
	case ReadinessReady:
		return "ready"
	case ReadinessNeedCustomer:
		return "need_customer"
	case ReadinessNeedItems:
		return "need_items"
	default:
		return "need_both"
	}
}
