package negotiation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/zulandar/mandi/internal/i18n"
	"github.com/zulandar/mandi/internal/models"
	"github.com/zulandar/mandi/internal/notify"
	"gorm.io/gorm"
)

// DefaultIdleTimeout is how long a session may sit without messages before
// the sweeper discards it.
const DefaultIdleTimeout = 30 * time.Minute

// subscriberBuffer is the per-subscriber event buffer. Events are dropped for
// subscribers that fall this far behind.
const subscriberBuffer = 32

// ErrNotFound is returned for an unknown or closed session.
var ErrNotFound = errors.New("session not found")

// Catalog is the listing source sessions are seeded from.
type Catalog interface {
	Get(ctx context.Context, id string) (*models.Commodity, error)
}

// Config holds tunables shared by every session a Manager creates.
type Config struct {
	VendorLang  string
	ReplyDelay  time.Duration
	AcceptDelay time.Duration
	PriceStep   int
	IdleTimeout time.Duration // defaults to DefaultIdleTimeout
}

// Manager owns the live negotiation sessions. It seeds sessions from the
// catalog, mirrors every message and status change into the database, fans
// events out to subscribers and reports accepted deals.
type Manager struct {
	db         *gorm.DB
	catalog    Catalog
	translator i18n.Translator
	scripter   Scripter
	queue      *Queue
	notifier   notify.Notifier
	cfg        Config

	mu       sync.RWMutex
	sessions map[string]*Session

	subMu   sync.Mutex
	subs    map[string]map[int]chan Event
	nextSub int
}

// ManagerOpts holds parameters for creating a Manager.
type ManagerOpts struct {
	DB         *gorm.DB
	Catalog    Catalog         // required by Open
	Translator i18n.Translator // defaults to i18n.StaticTranslator
	Scripter   Scripter        // defaults to DefaultScript
	Queue      *Queue          // defaults to a queue on SystemClock
	Notifier   notify.Notifier // defaults to notify.Nop
	Config     Config
}

// NewManager creates a Manager.
func NewManager(opts ManagerOpts) (*Manager, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("negotiation: manager: db is required")
	}
	m := &Manager{
		db:         opts.DB,
		catalog:    opts.Catalog,
		translator: opts.Translator,
		scripter:   opts.Scripter,
		queue:      opts.Queue,
		notifier:   opts.Notifier,
		cfg:        opts.Config,
		sessions:   make(map[string]*Session),
		subs:       make(map[string]map[int]chan Event),
	}
	if m.translator == nil {
		m.translator = i18n.StaticTranslator{}
	}
	if m.scripter == nil {
		m.scripter = DefaultScript
	}
	if m.queue == nil {
		m.queue = NewQueue(SystemClock)
	}
	if m.notifier == nil {
		m.notifier = notify.Nop{}
	}
	if m.cfg.IdleTimeout <= 0 {
		m.cfg.IdleTimeout = DefaultIdleTimeout
	}
	return m, nil
}

// Queue returns the queue that carries deferred vendor replies.
func (m *Manager) Queue() *Queue { return m.queue }

// Run drives deferred replies until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	return m.queue.Run(ctx)
}

// Open starts a negotiation for a catalog listing.
func (m *Manager) Open(ctx context.Context, commodityID, buyerLang string) (*Session, error) {
	if m.catalog == nil {
		return nil, fmt.Errorf("negotiation: open: no catalog configured")
	}
	c, err := m.catalog.Get(ctx, commodityID)
	if err != nil {
		return nil, fmt.Errorf("negotiation: open: %w", err)
	}
	return m.Seed(ctx, Listing{
		CommodityID: c.ID,
		Commodity:   c.Name,
		Quantity:    c.Quantity,
		Price:       c.Price,
	}, buyerLang)
}

// Listing is the catalog entry a session is seeded from.
type Listing struct {
	CommodityID string
	Commodity   string
	Quantity    string
	Price       int
}

// Seed starts a negotiation for l and registers it with the manager.
func (m *Manager) Seed(ctx context.Context, l Listing, buyerLang string) (*Session, error) {
	id := ulid.Make().String()
	vendorLang := m.cfg.VendorLang
	if vendorLang == "" {
		vendorLang = DefaultVendorLang
	}
	row := models.Negotiation{
		ID:           id,
		CommodityID:  l.CommodityID,
		Commodity:    l.Commodity,
		Quantity:     l.Quantity,
		ListedPrice:  l.Price,
		CurrentPrice: l.Price,
		Status:       string(StatusActive),
		BuyerLang:    i18n.Normalize(buyerLang),
		VendorLang:   i18n.Normalize(vendorLang),
	}
	if err := m.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("negotiation: create session %s: %w", id, err)
	}

	s, err := Seed(SeedOpts{
		ID:          id,
		Commodity:   l.Commodity,
		Quantity:    l.Quantity,
		Price:       l.Price,
		BuyerLang:   buyerLang,
		VendorLang:  vendorLang,
		Queue:       m.queue,
		Translator:  m.translator,
		Scripter:    m.scripter,
		ReplyDelay:  m.cfg.ReplyDelay,
		AcceptDelay: m.cfg.AcceptDelay,
		PriceStep:   m.cfg.PriceStep,
		OnEvent:     m.record,
		OnAccepted: func(finalPrice int) {
			deal := notify.Deal{
				SessionID:   id,
				Commodity:   l.Commodity,
				Quantity:    l.Quantity,
				ListedPrice: l.Price,
				FinalPrice:  finalPrice,
			}
			go m.announce(deal)
		},
	})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	log.Printf("negotiation: session %s opened [commodity=%s price=%d lang=%s]", id, l.Commodity, l.Price, row.BuyerLang)
	return s, nil
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("negotiation: session %s: %w", id, ErrNotFound)
	}
	return s, nil
}

// Sessions returns the IDs of all live sessions.
func (m *Manager) Sessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Send posts a buyer message to session id.
func (m *Manager) Send(id, text string) (*Message, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	return s.Send(text)
}

// CounterOffer posts a buyer counter-offer to session id.
func (m *Manager) CounterOffer(id string, price int) (*Message, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	return s.CounterOffer(price)
}

// Accept accepts the current price in session id.
func (m *Manager) Accept(id string) (*Message, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	return s.Accept()
}

// Close discards session id: the buyer left. Pending vendor replies are
// dropped and subscribers are disconnected.
func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("negotiation: close %s: %w", id, ErrNotFound)
	}
	s.Cancel()

	now := m.queue.Clock().Now()
	if err := m.db.WithContext(ctx).Model(&models.Negotiation{}).
		Where("id = ?", id).
		Update("closed_at", now).Error; err != nil {
		log.Printf("negotiation: close %s: %v", id, err)
	}

	snap := s.Snapshot()
	m.publish(Event{
		Type:         EventClosed,
		SessionID:    id,
		Status:       snap.Status,
		CurrentPrice: snap.CurrentPrice,
		FinalPrice:   snap.FinalPrice,
		At:           now,
	})
	m.dropSubscribers(id)
	log.Printf("negotiation: session %s closed", id)
	return nil
}

// History loads the stored record of a session, including closed ones,
// with messages in conversation order.
func (m *Manager) History(ctx context.Context, id string) (*models.Negotiation, error) {
	var n models.Negotiation
	err := m.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("id = ?", id).
		First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("negotiation: history %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("negotiation: history %s: %w", id, err)
	}
	return &n, nil
}

// Subscribe returns a channel of events for session id and a function that
// ends the subscription. The channel is closed when the session is closed or
// the subscription is cancelled.
func (m *Manager) Subscribe(id string) (<-chan Event, func(), error) {
	if _, err := m.Get(id); err != nil {
		return nil, nil, err
	}
	ch := make(chan Event, subscriberBuffer)

	m.subMu.Lock()
	m.nextSub++
	key := m.nextSub
	if m.subs[id] == nil {
		m.subs[id] = make(map[int]chan Event)
	}
	m.subs[id][key] = ch
	m.subMu.Unlock()

	cancel := func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		if c, ok := m.subs[id][key]; ok {
			delete(m.subs[id], key)
			close(c)
		}
	}
	return ch, cancel, nil
}

func (m *Manager) publish(ev Event) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for _, ch := range m.subs[ev.SessionID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (m *Manager) dropSubscribers(id string) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for key, ch := range m.subs[id] {
		close(ch)
		delete(m.subs[id], key)
	}
	delete(m.subs, id)
}

// record mirrors a session event into the database and publishes it.
// Persistence failures are logged; the in-memory session stays
// authoritative.
func (m *Manager) record(ev Event) {
	switch ev.Type {
	case EventMessage:
		msg := ev.Message
		row := models.NegotiationMessage{
			NegotiationID: ev.SessionID,
			Sequence:      msg.ID,
			Sender:        string(msg.Sender),
			Lang:          msg.Lang,
			Text:          msg.Text,
			Translated:    msg.Translated,
			CreatedAt:     msg.Timestamp,
		}
		if err := m.db.Create(&row).Error; err != nil {
			log.Printf("negotiation: record message %s/%d: %v", ev.SessionID, msg.ID, err)
		}
		if err := m.db.Model(&models.Negotiation{}).
			Where("id = ?", ev.SessionID).
			Updates(map[string]interface{}{
				"current_price": ev.CurrentPrice,
				"updated_at":    ev.At,
			}).Error; err != nil {
			log.Printf("negotiation: record price %s: %v", ev.SessionID, err)
		}
	case EventStatus:
		updates := map[string]interface{}{
			"status":     string(ev.Status),
			"updated_at": ev.At,
		}
		if ev.Status == StatusAccepted && ev.FinalPrice != nil {
			updates["final_price"] = *ev.FinalPrice
			updates["accepted_at"] = ev.At
		}
		if err := m.db.Model(&models.Negotiation{}).
			Where("id = ?", ev.SessionID).
			Updates(updates).Error; err != nil {
			log.Printf("negotiation: record status %s: %v", ev.SessionID, err)
		}
	}
	m.publish(ev)
}

func (m *Manager) announce(deal notify.Deal) {
	log.Printf("negotiation: session %s accepted at ₹%d/kg", deal.SessionID, deal.FinalPrice)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.notifier.DealAccepted(ctx, deal); err != nil {
		log.Printf("negotiation: notify deal %s: %v", deal.SessionID, err)
	}
}
