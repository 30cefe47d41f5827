package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Slot - место, где показывается сообщение (рядом с формой).
type Slot string

const (
	SlotGlobal   Slot = "global"
	SlotCustomer Slot = "customer"
	SlotArticle  Slot = "article"
	SlotCart     Slot = "cart"
	SlotOrder    Slot = "order"
)

var slotOrder = map[Slot]int{
	SlotGlobal:   0,
	SlotCustomer: 1,
	SlotArticle:  2,
	SlotCart:     3,
	SlotOrder:    4,
}

// Kind - тип сообщения.
type Kind string

const (
	KindError   Kind = "error"
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
)

// Notice - сообщение для пользователя.
type Notice struct {
	ID         string
	Slot       Slot
	Kind       Kind
	Text       string
	CreatedAt  time.Time
	Persistent bool
}

// Board хранит по одному сообщению на слот. Отложенная очистка привязана
// к конкретному сообщению: устаревший таймер не трогает более позднее.
type Board struct {
	mu        sync.Mutex
	notices   map[Slot]Notice
	now       func() time.Time
	afterFunc func(time.Duration, func())
}

// NewBoard создаёт доску сообщений.
func NewBoard(now func() time.Time, afterFunc func(time.Duration, func())) *Board {
	if now == nil {
		now = time.Now
	}
	if afterFunc == nil {
		afterFunc = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	return &Board{
		notices:   make(map[Slot]Notice),
		now:       now,
		afterFunc: afterFunc,
	}
}

// Post заменяет сообщение в слоте. ttl > 0 - сообщение исчезнет само,
// ttl == 0 - висит до Dismiss или следующего Post в тот же слот.
func (b *Board) Post(slot Slot, kind Kind, text string, ttl time.Duration) Notice {
	notice := Notice{
		ID:         uuid.NewString(),
		Slot:       slot,
		Kind:       kind,
		Text:       text,
		CreatedAt:  b.now(),
		Persistent: ttl <= 0,
	}

	b.mu.Lock()
	b.notices[slot] = notice
	b.mu.Unlock()

	if ttl > 0 {
		b.afterFunc(ttl, func() { b.Dismiss(notice.ID) })
	}
	return notice
}

// Dismiss убирает сообщение, только если оно всё ещё показано.
func (b *Board) Dismiss(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for slot, notice := range b.notices {
		if notice.ID == id {
			delete(b.notices, slot)
			return true
		}
	}
	return false
}

// Clear очищает слот.
func (b *Board) Clear(slot Slot) {
	b.mu.Lock()
	delete(b.notices, slot)
	b.mu.Unlock()
}

// Get возвращает текущее сообщение слота.
func (b *Board) Get(slot Slot) (Notice, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	notice, ok := b.notices[slot]
	return notice, ok
}

// List возвращает все сообщения в фиксированном порядке слотов.
func (b *Board) List() []Notice {
	b.mu.Lock()
	out := make([]Notice, 0, len(b.notices))
	for _, notice := range b.notices {
		out = append(out, notice)
	}
	b.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return slotOrder[out[i].Slot] < slotOrder[out[j].Slot]
	})
	return out
}
