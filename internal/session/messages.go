package session

import (
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/messeorder/internal/domain"
)

// Тексты сообщений для пользователя.
const (
	MsgCatalogUnavailable = "Fehler beim Laden der Daten. Bitte stellen Sie sicher, dass die JSON-Dateien verfügbar sind."
	MsgCustomerCreated    = "Kunde erfolgreich angelegt!"
	MsgCartAlreadyEmpty   = "Warenkorb ist bereits leer."
	MsgCartCleared        = "Warenkorb wurde geleert."
	MsgOrderSubmitted     = "Bestellung wurde übermittelt."
	MsgOrderSubmitFailed  = "Die Bestellung konnte nicht übermittelt werden. Bitte versuchen Sie es erneut."
	MsgNotReady           = "Bitte wählen Sie einen Kunden aus und fügen Sie Artikel hinzu."
)

// UserMessage переводит ошибку команды в текст для пользователя.
func UserMessage(err error) string {
	var declined *DeclinedError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &declined):
		return declined.Prompt
	case errors.Is(err, domain.ErrCatalogUnavailable), errors.Is(err, domain.ErrCatalogLoad):
		return MsgCatalogUnavailable
	case errors.Is(err, domain.ErrArticleNumberRequired):
		return "Bitte geben Sie eine Artikelnummer ein."
	case errors.Is(err, domain.ErrQuantityInvalid):
		return "Menge muss größer als 0 sein."
	case errors.Is(err, domain.ErrQuantityTooLarge):
		return fmt.Sprintf("Menge darf %d pro Position nicht überschreiten.", domain.MaxLineQuantity)
	case errors.Is(err, domain.ErrArticleNotFound):
		return "Artikel nicht gefunden."
	case errors.Is(err, domain.ErrCustomerNameRequired):
		return "Firmenname ist erforderlich."
	case errors.Is(err, domain.ErrEmailInvalid):
		return "Bitte geben Sie eine gültige E-Mail-Adresse ein."
	case errors.Is(err, domain.ErrCustomerNotFound):
		return "Kunde nicht gefunden."
	case errors.Is(err, domain.ErrLineNotFound):
		return "Position nicht gefunden."
	case errors.Is(err, domain.ErrCustomerRequired), errors.Is(err, domain.ErrItemsRequired):
		return MsgNotReady
	case errors.Is(err, domain.ErrOrderLocked):
		return "Die Bestellung ist abgeschlossen und kann nicht mehr geändert werden."
	case errors.Is(err, domain.ErrOrderNotFinalized):
		return "Bitte lassen Sie sich die Bestellung zuerst anzeigen."
	case errors.Is(err, domain.ErrOrderNotFound):
		return "Bestellung nicht gefunden."
	case errors.Is(err, domain.ErrOrderSubmit):
		return MsgOrderSubmitFailed
	case errors.Is(err, domain.ErrSessionNotFound):
		return "Sitzung abgelaufen. Bitte laden Sie die Seite neu."
	default:
		return "Ein unerwarteter Fehler ist aufgetreten."
	}
}
