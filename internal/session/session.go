// Package session хранит состояние вкладки оформления заказа: выбранного
// клиента, корзину, зафиксированный заказ и сообщения. Команды одной сессии
// выполняются строго последовательно.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/messeorder/internal/domain"
	"github.com/vladislavdragonenkov/messeorder/internal/metrics"
	"github.com/vladislavdragonenkov/messeorder/internal/search"
)

// Phase - этап оформления.
type Phase string

const (
	// PhaseBuilding - клиент и корзина редактируются.
	PhaseBuilding Phase = "building"
	// PhaseReview - заказ зафиксирован и показан для подтверждения.
	PhaseReview Phase = "review"
	// PhaseCompleted - заказ передан, ждём «Neue Bestellung».
	PhaseCompleted Phase = "completed"
)

// submitAttempts - сколько раз CompleteOrder выдаёт новый номер, если текущий занят.
const submitAttempts = 3

// Catalog - то, что сессии нужно от каталога.
type Catalog interface {
	Err() error
	Customers() []domain.Customer
	Articles() []domain.Article
	Customer(index int) (domain.Customer, error)
	ArticleByNumber(number string) (domain.Article, error)
	AppendCustomer(customer domain.Customer) (int, error)
}

// SelectedCustomer - выбранный клиент и его позиция в каталоге.
type SelectedCustomer struct {
	Index    int
	Customer domain.Customer
}

// AddResult - итог добавления артикула.
type AddResult struct {
	Line   domain.CartLine
	Merged bool
}

// View - снимок состояния сессии.
type View struct {
	ID        string
	Phase     Phase
	Customer  *SelectedCustomer
	Lines     []domain.CartLine
	Totals    domain.Totals
	Readiness domain.Readiness
	Order     *domain.Order
	Notices   []Notice
}

// Session - одна вкладка оформления.
type Session struct {
	id   string
	deps *Deps

	mu       sync.Mutex
	phase    Phase
	customer *SelectedCustomer
	cart     domain.Cart
	order    *domain.Order

	board    *Board
	lastSeen atomic.Int64
	logger   *log.Entry
}

func newSession(id string, deps *Deps) *Session {
	s := &Session{
		id:     id,
		deps:   deps,
		phase:  PhaseBuilding,
		board:  NewBoard(deps.Now, deps.AfterFunc),
		logger: deps.Logger.WithField("session_id", id),
	}
	s.touch()
	return s
}

// ID возвращает идентификатор сессии.
func (s *Session) ID() string {
	return s.id
}

// LastSeen - время последней команды.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Board возвращает доску сообщений сессии.
func (s *Session) Board() *Board {
	return s.board
}

func (s *Session) touch() {
	s.lastSeen.Store(s.deps.Now().UnixNano())
}

func (s *Session) begin() func() {
	s.mu.Lock()
	s.touch()
	return s.mu.Unlock
}

// View возвращает текущее состояние.
func (s *Session) View() View {
	defer s.begin()()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	view := View{
		ID:        s.id,
		Phase:     s.phase,
		Lines:     s.cart.Lines(),
		Totals:    s.cart.Totals(),
		Readiness: s.readinessLocked(),
		Notices:   s.board.List(),
	}
	if s.customer != nil {
		selected := *s.customer
		view.Customer = &selected
	}
	if s.order != nil {
		order := *s.order
		view.Order = &order
	}
	return view
}

// Totals возвращает итоги корзины.
func (s *Session) Totals() domain.Totals {
	defer s.begin()()
	return s.cart.Totals()
}

// Readiness возвращает состояние кнопки оформления.
func (s *Session) Readiness() domain.Readiness {
	defer s.begin()()
	return s.readinessLocked()
}

func (s *Session) readinessLocked() domain.Readiness {
	return domain.EvaluateReadiness(s.customer != nil, s.cart.Len())
}

// SearchCustomers ищет клиентов по имени, e-mail и городу.
func (s *Session) SearchCustomers(query string) (search.CustomerResult, error) {
	defer s.begin()()
	if err := s.catalogErr(); err != nil {
		return search.CustomerResult{}, s.finish("search_customers", err)
	}
	res := search.Customers(s.deps.Catalog.Customers(), query)
	s.deps.Metrics.RecordSearch("customer", string(res.Status))
	return res, nil
}

// SearchArticles ищет артикулы по названию.
func (s *Session) SearchArticles(query string) (search.ArticleResult, error) {
	defer s.begin()()
	if err := s.catalogErr(); err != nil {
		return search.ArticleResult{}, s.finish("search_articles", err)
	}
	res := search.Articles(s.deps.Catalog.Articles(), query)
	s.deps.Metrics.RecordSearch("article", string(res.Status))
	return res, nil
}

// SelectCustomer выбирает клиента по позиции в каталоге.
func (s *Session) SelectCustomer(index int) (SelectedCustomer, error) {
	defer s.begin()()
	const command = "select_customer"

	if err := s.editable(); err != nil {
		return SelectedCustomer{}, s.finish(command, err)
	}
	if err := s.catalogErr(); err != nil {
		return SelectedCustomer{}, s.finish(command, err)
	}
	customer, err := s.deps.Catalog.Customer(index)
	if err != nil {
		s.board.Post(SlotCustomer, KindError, UserMessage(err), 0)
		return SelectedCustomer{}, s.finish(command, err)
	}

	s.customer = &SelectedCustomer{Index: index, Customer: customer}
	s.board.Clear(SlotCustomer)
	return *s.customer, s.finish(command, nil)
}

// ClearCustomer снимает выбор клиента.
func (s *Session) ClearCustomer() error {
	defer s.begin()()
	if err := s.editable(); err != nil {
		return s.finish("clear_customer", err)
	}
	s.customer = nil
	return s.finish("clear_customer", nil)
}

// CreateCustomer проверяет форму, дописывает клиента в каталог и выбирает его.
func (s *Session) CreateCustomer(form domain.Customer) (SelectedCustomer, error) {
	defer s.begin()()
	const command = "create_customer"

	if err := s.editable(); err != nil {
		return SelectedCustomer{}, s.finish(command, err)
	}
	if err := s.catalogErr(); err != nil {
		return SelectedCustomer{}, s.finish(command, err)
	}

	customer := form.Normalize()
	if err := customer.ValidateForm(); err != nil {
		s.board.Post(SlotCustomer, KindError, UserMessage(err), 0)
		return SelectedCustomer{}, s.finish(command, err)
	}

	index, err := s.deps.Catalog.AppendCustomer(customer)
	if err != nil {
		return SelectedCustomer{}, s.finish(command, err)
	}

	s.customer = &SelectedCustomer{Index: index, Customer: customer}
	s.board.Post(SlotCustomer, KindSuccess, MsgCustomerCreated, s.deps.NoticeTTL)
	s.logger.WithFields(log.Fields{
		"customer_index": index,
		"customer_name":  customer.Name,
	}).Info("customer created")
	return *s.customer, s.finish(command, nil)
}

// AddArticle добавляет артикул по номеру. Повторный номер увеличивает количество.
func (s *Session) AddArticle(number string, qty int) (AddResult, error) {
	defer s.begin()()
	const command = "add_article"

	if err := s.editable(); err != nil {
		return AddResult{}, s.finish(command, err)
	}
	if err := s.catalogErr(); err != nil {
		return AddResult{}, s.finish(command, err)
	}

	number = strings.TrimSpace(number)
	if number == "" {
		return AddResult{}, s.reject(SlotArticle, command, domain.ErrArticleNumberRequired)
	}
	if qty < 1 {
		return AddResult{}, s.reject(SlotArticle, command, domain.ErrQuantityInvalid)
	}
	if qty > domain.MaxLineQuantity {
		return AddResult{}, s.reject(SlotArticle, command, domain.ErrQuantityTooLarge)
	}

	article, err := s.deps.Catalog.ArticleByNumber(number)
	if err != nil {
		if errors.Is(err, domain.ErrArticleNotFound) {
			s.board.Post(SlotArticle, KindError, fmt.Sprintf(`Artikel mit der Nummer "%s" nicht gefunden.`, number), 0)
			return AddResult{}, s.finish(command, fmt.Errorf("%w: %s", domain.ErrArticleNotFound, number))
		}
		return AddResult{}, s.finish(command, err)
	}

	line, merged, err := s.cart.Add(article, qty, s.deps.NewID())
	if err != nil {
		return AddResult{}, s.reject(SlotArticle, command, err)
	}

	text := fmt.Sprintf(`"%s" zum Warenkorb hinzugefügt.`, article.Name)
	if merged {
		text = fmt.Sprintf(`Menge für "%s" aktualisiert.`, article.Name)
	}
	s.board.Post(SlotArticle, KindSuccess, text, s.deps.NoticeTTL)
	return AddResult{Line: line, Merged: merged}, s.finish(command, nil)
}

// UpdateQuantity меняет количество позиции. Количество <= 0 означает удаление
// и проходит через подтверждение; при отказе позиция остаётся как была.
func (s *Session) UpdateQuantity(lineID string, qty int, confirm Confirmer) (removed bool, err error) {
	defer s.begin()()
	const command = "update_quantity"

	if err := s.editable(); err != nil {
		return false, s.finish(command, err)
	}
	if qty <= 0 {
		if err := s.removeLocked(lineID, confirm); err != nil {
			return false, s.finish(command, err)
		}
		return true, s.finish(command, nil)
	}
	if _, err := s.cart.SetQuantity(lineID, qty); err != nil {
		return false, s.finish(command, err)
	}
	return false, s.finish(command, nil)
}

// RemoveLine удаляет позицию после подтверждения.
func (s *Session) RemoveLine(lineID string, confirm Confirmer) error {
	defer s.begin()()
	if err := s.editable(); err != nil {
		return s.finish("remove_line", err)
	}
	return s.finish("remove_line", s.removeLocked(lineID, confirm))
}

func (s *Session) removeLocked(lineID string, confirm Confirmer) error {
	if _, err := s.cart.Line(lineID); err != nil {
		return err
	}
	if err := confirmed(confirm, PromptRemoveLine); err != nil {
		return err
	}
	_, err := s.cart.Remove(lineID)
	return err
}

// ClearCart очищает корзину после подтверждения. Для пустой корзины
// подтверждение не запрашивается, cleared = false.
func (s *Session) ClearCart(confirm Confirmer) (cleared bool, err error) {
	defer s.begin()()
	const command = "clear_cart"

	if err := s.editable(); err != nil {
		return false, s.finish(command, err)
	}
	if s.cart.IsEmpty() {
		s.board.Post(SlotCart, KindInfo, MsgCartAlreadyEmpty, s.deps.NoticeTTL)
		return false, s.finish(command, nil)
	}
	if err := confirmed(confirm, PromptClearCart); err != nil {
		return false, s.finish(command, err)
	}

	s.cart.Clear()
	s.board.Post(SlotCart, KindSuccess, MsgCartCleared, s.deps.NoticeTTL)
	return true, s.finish(command, nil)
}

// FinalizeOrder фиксирует клиента и корзину в заказ и переводит сессию в просмотр.
// Повторный вызов в просмотре возвращает тот же заказ.
func (s *Session) FinalizeOrder() (domain.Order, error) {
	defer s.begin()()
	const command = "finalize_order"

	switch s.phase {
	case PhaseReview:
		return *s.order, s.finish(command, nil)
	case PhaseCompleted:
		return domain.Order{}, s.finish(command, domain.ErrOrderLocked)
	}

	if err := s.readinessLocked().Err(); err != nil {
		s.board.Post(SlotOrder, KindError, MsgNotReady, s.deps.NoticeTTL)
		return domain.Order{}, s.finish(command, err)
	}

	now := s.deps.Now()
	order := domain.NewOrder(
		domain.NewOrderID(now, s.deps.IntN),
		now,
		s.customer.Index,
		s.customer.Customer,
		s.cart.Lines(),
	)
	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, s.finish(command, errors.Join(errs...))
	}

	s.order = &order
	s.phase = PhaseReview
	s.board.Clear(SlotOrder)
	s.deps.Metrics.RecordOrderFinalized()
	s.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"lines":    order.Totals.Lines,
		"amount":   order.Totals.Amount.StringFixed(2),
	}).Info("order finalized")
	return order, s.finish(command, nil)
}

// ReopenOrder возвращает заказ из просмотра в редактирование.
func (s *Session) ReopenOrder() error {
	defer s.begin()()
	switch s.phase {
	case PhaseCompleted:
		return s.finish("reopen_order", domain.ErrOrderLocked)
	case PhaseReview:
		s.order = nil
		s.phase = PhaseBuilding
	}
	return s.finish("reopen_order", nil)
}

// CompleteOrder передаёт зафиксированный заказ дальше. При ошибке передачи
// сессия остаётся в просмотре, повтор возможен.
func (s *Session) CompleteOrder(ctx context.Context) (domain.Order, error) {
	defer s.begin()()
	const command = "complete_order"

	switch s.phase {
	case PhaseBuilding:
		return domain.Order{}, s.finish(command, domain.ErrOrderNotFinalized)
	case PhaseCompleted:
		return domain.Order{}, s.finish(command, domain.ErrOrderLocked)
	}

	order := *s.order
	logger := s.logger.WithField("order_id", order.ID)
	started := time.Now()

	if s.deps.Submitter != nil {
		err := s.deps.Submitter.Submit(ctx, order)
		for attempt := 1; errors.Is(err, domain.ErrOrderIDConflict) && attempt < submitAttempts; attempt++ {
			taken := order.ID
			order.ID = domain.NewOrderID(s.deps.Now(), s.deps.IntN)
			s.order.ID = order.ID
			logger = s.logger.WithField("order_id", order.ID)
			logger.WithField("taken_id", taken).Warn("order id already taken, retrying with a new id")
			err = s.deps.Submitter.Submit(ctx, order)
		}
		if err != nil {
			s.deps.Metrics.RecordOrderSubmitFailed(time.Since(started))
			s.board.Post(SlotOrder, KindError, MsgOrderSubmitFailed, 0)
			logger.WithError(err).Error("order submit failed")
			return domain.Order{}, s.finish(command, fmt.Errorf("%w: %s: %w", domain.ErrOrderSubmit, order.ID, err))
		}
	} else {
		logger.Warn("no order submitter configured, order is not handed off")
	}

	s.phase = PhaseCompleted
	s.deps.Metrics.RecordOrderCompleted(order.Totals.Amount.InexactFloat64(), time.Since(started))
	s.board.Post(SlotOrder, KindSuccess, MsgOrderSubmitted, 0)
	logger.WithField("amount", order.Totals.Amount.StringFixed(2)).Info("order completed")
	return order, s.finish(command, nil)
}

// StartNewOrder сбрасывает клиента, корзину и заказ. Глобальное сообщение остаётся.
func (s *Session) StartNewOrder() {
	defer s.begin()()
	s.customer = nil
	s.cart.Clear()
	s.order = nil
	s.phase = PhaseBuilding
	for _, slot := range []Slot{SlotCustomer, SlotArticle, SlotCart, SlotOrder} {
		s.board.Clear(slot)
	}
	s.deps.Metrics.RecordCommand("start_new_order", metrics.ResultOK)
}

// Notices возвращает текущие сообщения.
func (s *Session) Notices() []Notice {
	s.touch()
	return s.board.List()
}

// DismissNotice закрывает сообщение.
func (s *Session) DismissNotice(id string) bool {
	s.touch()
	return s.board.Dismiss(id)
}

func (s *Session) editable() error {
	if s.phase != PhaseBuilding {
		return domain.ErrOrderLocked
	}
	return nil
}

func (s *Session) catalogErr() error {
	if s.deps.Catalog == nil {
		return domain.ErrCatalogUnavailable
	}
	err := s.deps.Catalog.Err()
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrCatalogUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
}

func (s *Session) reject(slot Slot, command string, err error) error {
	s.board.Post(slot, KindError, UserMessage(err), 0)
	return s.finish(command, err)
}

func (s *Session) finish(command string, err error) error {
	s.deps.Metrics.RecordCommand(command, resultOf(err))
	if err != nil && !rejected(err) {
		s.logger.WithError(err).WithField("command", command).Warn("session command failed")
	}
	return err
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case rejected(err):
		return metrics.ResultRejected
	default:
		return metrics.ResultError
	}
}

func rejected(err error) bool {
	return domain.IsValidation(err) ||
		errors.Is(err, domain.ErrConfirmationDeclined) ||
		errors.Is(err, domain.ErrOrderLocked) ||
		errors.Is(err, domain.ErrOrderNotFinalized) ||
		errors.Is(err, domain.ErrLineNotFound) ||
		errors.Is(err, domain.ErrCustomerNotFound)
}
