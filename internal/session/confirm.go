package session

import "github.com/vladislavdragonenkov/messeorder/internal/domain"

const (
	// PromptRemoveLine - вопрос перед удалением позиции.
	PromptRemoveLine = "Möchten Sie diesen Artikel wirklich aus dem Warenkorb entfernen?"
	// PromptClearCart - вопрос перед очисткой корзины.
	PromptClearCart = "Möchten Sie den gesamten Warenkorb leeren?"
)

// Confirmer - интерактивное «да/нет» перед разрушающими командами.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc адаптирует функцию к Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm вызывает функцию.
func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

var (
	// Accept подтверждает всё.
	Accept Confirmer = ConfirmFunc(func(string) bool { return true })
	// Decline отклоняет всё.
	Decline Confirmer = ConfirmFunc(func(string) bool { return false })
)

// DeclinedError возвращается, когда подтверждение не получено; состояние не менялось.
type DeclinedError struct {
	Prompt string
}

func (e *DeclinedError) Error() string {
	return "confirmation declined: " + e.Prompt
}

func (e *DeclinedError) Unwrap() error {
	return domain.ErrConfirmationDeclined
}

func confirmed(c Confirmer, prompt string) error {
	if c == nil || !c.Confirm(prompt) {
		return &DeclinedError{Prompt: prompt}
	}
	return nil
}
