package session

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/messeorder/internal/domain"
	"github.com/vladislavdragonenkov/messeorder/internal/metrics"
)

const defaultNoticeTTL = 3 * time.Second

// Deps - общие зависимости всех сессий.
type Deps struct {
	Catalog   Catalog
	Submitter domain.OrderSubmitter
	Metrics   *metrics.DeskMetrics
	Logger    *log.Entry

	// NoticeTTL - сколько живут сообщения об успехе.
	NoticeTTL time.Duration

	// Now, IntN, NewID и AfterFunc подменяются в тестах.
	Now       func() time.Time
	IntN      func(n int) int
	NewID     func() string
	AfterFunc func(d time.Duration, f func())
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = log.WithField("component", "session")
	}
	if d.NoticeTTL <= 0 {
		d.NoticeTTL = defaultNoticeTTL
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.IntN == nil {
		d.IntN = rand.IntN
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	if d.AfterFunc == nil {
		d.AfterFunc = func(delay time.Duration, f func()) { time.AfterFunc(delay, f) }
	}
	return d
}

// Registry хранит открытые сессии.
type Registry struct {
	deps *Deps

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry создаёт реестр сессий.
func NewRegistry(deps Deps) *Registry {
	d := deps.withDefaults()
	return &Registry{
		deps:     &d,
		sessions: make(map[string]*Session),
	}
}

// Create открывает новую сессию. Если каталог не загружен, сессия сразу
// получает постоянное глобальное сообщение об ошибке.
func (r *Registry) Create() *Session {
	s := newSession(r.deps.NewID(), r.deps)
	if r.deps.Catalog == nil || r.deps.Catalog.Err() != nil {
		s.board.Post(SlotGlobal, KindError, MsgCatalogUnavailable, 0)
	}

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()

	r.deps.Metrics.RecordSessionOpened()
	r.deps.Logger.WithField("session_id", s.id).Debug("session opened")
	return s
}

// Get возвращает сессию по идентификатору.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Close закрывает сессию.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		r.deps.Metrics.RecordSessionClosed(false)
	}
	return ok
}

// Len возвращает число открытых сессий.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// ExpireIdle удаляет до limit сессий, неактивных с момента before.
func (r *Registry) ExpireIdle(before time.Time, limit int) (int, error) {
	if limit <= 0 {
		return 0, nil
	}

	r.mu.Lock()
	expired := 0
	for id, s := range r.sessions {
		if expired >= limit {
			break
		}
		if s.LastSeen().After(before) {
			continue
		}
		delete(r.sessions, id)
		expired++
	}
	r.mu.Unlock()

	for i := 0; i < expired; i++ {
		r.deps.Metrics.RecordSessionClosed(true)
	}
	return expired, nil
}
