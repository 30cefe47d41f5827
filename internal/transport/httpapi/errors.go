package httpapi

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/messeorder/internal/domain"
	"github.com/vladislavdragonenkov/messeorder/internal/session"
)

// Коды ошибок в теле ответа.
const (
	codeValidation         = "validation_failed"
	codeConfirmation       = "confirmation_required"
	codeOrderLocked        = "order_locked"
	codeOrderNotFinalized  = "order_not_finalized"
	codeNotFound           = "not_found"
	codeCatalogUnavailable = "catalog_unavailable"
	codeSubmitFailed       = "submit_failed"
	codeBadRequest         = "bad_request"
	codeMethodNotAllowed   = "method_not_allowed"
	codeInternal           = "internal"
)

// ErrorResponse - тело ответа с ошибкой.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Prompt  string `json:"prompt,omitempty"`
}

// classify сопоставляет ошибку домена HTTP-статусу и коду.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrConfirmationDeclined):
		return http.StatusConflict, codeConfirmation
	case errors.Is(err, domain.ErrOrderLocked):
		return http.StatusConflict, codeOrderLocked
	case errors.Is(err, domain.ErrOrderNotFinalized):
		return http.StatusConflict, codeOrderNotFinalized
	case errors.Is(err, domain.ErrCatalogUnavailable), errors.Is(err, domain.ErrCatalogLoad):
		return http.StatusServiceUnavailable, codeCatalogUnavailable
	case domain.IsValidation(err):
		return http.StatusUnprocessableEntity, codeValidation
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrLineNotFound),
		errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, domain.ErrOrderSubmit):
		return http.StatusBadGateway, codeSubmitFailed
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		a.logger.WithError(err).WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
	}

	resp := ErrorResponse{Error: code, Message: session.UserMessage(err)}
	var declined *session.DeclinedError
	if errors.As(err, &declined) {
		resp.Prompt = declined.Prompt
	}
	writeJSON(w, status, resp)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}
