// Package negotiation implements the buyer-vendor negotiation chat: a
// per-session state machine, the scripted vendor replies that drive it, an
// ordered queue for deferred replies and a Manager that owns live sessions.
package negotiation

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/zulandar/mandi/internal/advisor"
	"github.com/zulandar/mandi/internal/i18n"
)

// Defaults for session timing and pricing.
const (
	DefaultReplyDelay  = 2 * time.Second
	DefaultAcceptDelay = 1500 * time.Millisecond
	DefaultPriceStep   = 2
	DefaultVendorLang  = "hi"
)

var (
	// ErrInvalidState is returned for any action on a session that has been
	// accepted or is in the process of being accepted.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidOffer is returned for a counter-offer that is not a positive
	// price below the current one.
	ErrInvalidOffer = errors.New("invalid offer")
)

// Sender identifies who wrote a message.
type Sender string

const (
	SenderVendor       Sender = "vendor"
	SenderCounterparty Sender = "counterparty"
)

// Status is the session lifecycle state.
type Status string

const (
	StatusActive   Status = "active"
	StatusAccepted Status = "accepted"
)

// Message is one chat line. Messages are never modified once appended.
type Message struct {
	ID         int       `json:"id"`
	Sender     Sender    `json:"sender"`
	Lang       string    `json:"lang"`
	Text       string    `json:"text"`
	Translated *string   `json:"translated"`
	Timestamp  time.Time `json:"timestamp"`
}

// EventType distinguishes session events.
type EventType string

const (
	EventMessage EventType = "message"
	EventStatus  EventType = "status"
	EventClosed  EventType = "closed"
)

// Event describes a change to a session.
type Event struct {
	Type         EventType `json:"type"`
	SessionID    string    `json:"session_id"`
	Message      *Message  `json:"message,omitempty"`
	Status       Status    `json:"status"`
	CurrentPrice int       `json:"current_price"`
	FinalPrice   *int      `json:"final_price,omitempty"`
	At           time.Time `json:"at"`
}

// Snapshot is a point-in-time copy of session state.
type Snapshot struct {
	ID             string    `json:"id"`
	Commodity      string    `json:"commodity"`
	Quantity       string    `json:"quantity"`
	ListedPrice    int       `json:"listed_price"`
	CurrentPrice   int       `json:"current_price"`
	FinalPrice     *int      `json:"final_price,omitempty"`
	Round          int       `json:"round"`
	Status         Status    `json:"status"`
	Closing        bool      `json:"closing"`
	BuyerLang      string    `json:"buyer_lang"`
	VendorLang     string    `json:"vendor_lang"`
	PendingReplies int       `json:"pending_replies"`
	Messages       []Message `json:"messages"`
}

// SeedOpts holds parameters for seeding a Session.
type SeedOpts struct {
	ID          string
	Commodity   string
	Quantity    string
	Price       int
	BuyerLang   string // defaults to i18n.Default
	VendorLang  string // defaults to DefaultVendorLang
	Queue       *Queue
	Translator  i18n.Translator // defaults to i18n.StaticTranslator
	Scripter    Scripter        // defaults to DefaultScript
	ReplyDelay  time.Duration   // defaults to DefaultReplyDelay
	AcceptDelay time.Duration   // defaults to DefaultAcceptDelay
	PriceStep   int             // defaults to DefaultPriceStep

	// OnEvent is called for every state change, in order, after the state
	// lock is released. It must not call back into the session.
	OnEvent func(Event)
	// OnAccepted is called once with the agreed price, after the status
	// event.
	OnAccepted func(finalPrice int)
}

// Session is a single negotiation over one listing. All methods are safe for
// concurrent use.
type Session struct {
	id          string
	commodity   string
	quantity    string
	listedPrice int
	buyerLang   string
	vendorLang  string
	queue       *Queue
	translator  i18n.Translator
	scripter    Scripter
	replyDelay  time.Duration
	acceptDelay time.Duration
	step        int
	onEvent     func(Event)
	onAccepted  func(int)

	// dispatchMu orders event delivery. It is taken before mu is released
	// so events leave in the order the state changed.
	dispatchMu sync.Mutex

	mu           sync.Mutex
	pending      []Event
	currentPrice int
	finalPrice   *int
	messages     []Message
	round        int
	status       Status
	closing      bool
	lastActivity time.Time
}

// Seed creates a session for a listing and appends the vendor greeting.
func Seed(opts SeedOpts) (*Session, error) {
	if opts.Queue == nil {
		return nil, fmt.Errorf("negotiation: seed: queue is required")
	}
	if strings.TrimSpace(opts.Commodity) == "" {
		return nil, fmt.Errorf("negotiation: seed: commodity is required")
	}
	if opts.Price < 0 {
		return nil, fmt.Errorf("negotiation: seed: price %d: %w", opts.Price, ErrInvalidOffer)
	}
	s := &Session{
		id:           opts.ID,
		commodity:    opts.Commodity,
		quantity:     opts.Quantity,
		listedPrice:  opts.Price,
		currentPrice: opts.Price,
		buyerLang:    i18n.Normalize(opts.BuyerLang),
		vendorLang:   opts.VendorLang,
		queue:        opts.Queue,
		translator:   opts.Translator,
		scripter:     opts.Scripter,
		replyDelay:   opts.ReplyDelay,
		acceptDelay:  opts.AcceptDelay,
		step:         opts.PriceStep,
		onEvent:      opts.OnEvent,
		onAccepted:   opts.OnAccepted,
		status:       StatusActive,
	}
	if s.vendorLang == "" {
		s.vendorLang = DefaultVendorLang
	} else {
		s.vendorLang = i18n.Normalize(s.vendorLang)
	}
	if s.translator == nil {
		s.translator = i18n.StaticTranslator{}
	}
	if s.scripter == nil {
		s.scripter = DefaultScript
	}
	if s.replyDelay <= 0 {
		s.replyDelay = DefaultReplyDelay
	}
	if s.acceptDelay <= 0 {
		s.acceptDelay = DefaultAcceptDelay
	}
	if s.step <= 0 {
		s.step = DefaultPriceStep
	}

	text, translated := s.renderVendor(s.scripter.Greeting(s.commodity, s.quantity, s.listedPrice))
	s.mu.Lock()
	defer s.unlock()
	s.append(SenderVendor, s.vendorLang, text, translated)
	return s, nil
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// CurrentPrice returns the price currently on the table.
func (s *Session) CurrentPrice() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPrice
}

// Status returns the session status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Messages returns a copy of the conversation in order.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// LastActivity returns the time of the most recent message.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]Message, len(s.messages))
	copy(msgs, s.messages)
	return Snapshot{
		ID:             s.id,
		Commodity:      s.commodity,
		Quantity:       s.quantity,
		ListedPrice:    s.listedPrice,
		CurrentPrice:   s.currentPrice,
		FinalPrice:     s.finalPrice,
		Round:          s.round,
		Status:         s.status,
		Closing:        s.closing,
		BuyerLang:      s.buyerLang,
		VendorLang:     s.vendorLang,
		PendingReplies: s.queue.Pending(s.id),
		Messages:       msgs,
	}
}

// Send appends a buyer message and schedules a vendor reply. Text that is
// empty after trimming is ignored and returns a nil message.
func (s *Session) Send(text string) (*Message, error) {
	text = strings.TrimSpace(text)
	if err := s.checkActive("send"); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}
	var translated *string
	if s.buyerLang != s.vendorLang {
		t := s.translator.Translate(text, s.buyerLang, s.vendorLang)
		translated = &t
	}

	s.mu.Lock()
	defer s.unlock()
	if s.terminal() {
		return nil, s.stateErr("send")
	}
	msg := s.append(SenderCounterparty, s.buyerLang, text, translated)
	s.scheduleReply()
	return &msg, nil
}

// CounterOffer proposes price, which must be below the current price. The
// proposal takes effect immediately and a vendor reply is scheduled.
func (s *Session) CounterOffer(price int) (*Message, error) {
	if err := s.checkActive("counter offer"); err != nil {
		return nil, err
	}
	if price <= 0 {
		return nil, fmt.Errorf("negotiation: counter offer: price %d: %w", price, ErrInvalidOffer)
	}
	text := counterText(price, s.buyerLang)
	translated := s.vendorVersion(counterText(price, s.vendorLang), counterText(price, i18n.Default))

	s.mu.Lock()
	defer s.unlock()
	if s.terminal() {
		return nil, s.stateErr("counter offer")
	}
	if price >= s.currentPrice {
		return nil, fmt.Errorf("negotiation: counter offer: price %d not below current %d: %w", price, s.currentPrice, ErrInvalidOffer)
	}
	s.currentPrice = price
	msg := s.append(SenderCounterparty, s.buyerLang, text, translated)
	s.scheduleReply()
	return &msg, nil
}

// Accept agrees to the current price. Pending vendor replies are dropped
// and the session moves to accepted after the accept delay. Every later
// action, including a second Accept, returns ErrInvalidState.
func (s *Session) Accept() (*Message, error) {
	for {
		s.mu.Lock()
		if s.terminal() {
			err := s.stateErr("accept")
			s.mu.Unlock()
			return nil, err
		}
		price := s.currentPrice
		s.mu.Unlock()

		text := advisor.AcceptanceMessage(price, s.buyerLang)
		translated := s.vendorVersion(advisor.AcceptanceMessage(price, s.vendorLang), advisor.AcceptanceMessage(price, i18n.Default))

		s.mu.Lock()
		if s.terminal() {
			err := s.stateErr("accept")
			s.mu.Unlock()
			return nil, err
		}
		if s.currentPrice != price {
			// A vendor reply landed while the message was rendered.
			s.mu.Unlock()
			continue
		}
		s.closing = true
		msg := s.append(SenderCounterparty, s.buyerLang, text, translated)
		s.queue.Cancel(s.id)
		s.queue.Schedule(s.acceptKey(), s.acceptDelay, s.finalize)
		s.unlock()
		return &msg, nil
	}
}

// Cancel drops pending vendor replies. A scheduled acceptance still
// completes.
func (s *Session) Cancel() int {
	return s.queue.Cancel(s.id)
}

func (s *Session) acceptKey() string { return s.id + ":accept" }

func (s *Session) terminal() bool {
	return s.closing || s.status == StatusAccepted
}

func (s *Session) stateErr(op string) error {
	return fmt.Errorf("negotiation: %s: session %s is %s: %w", op, s.id, s.status, ErrInvalidState)
}

// checkActive fails fast before any collaborator call. Callers check again
// once they hold the lock.
func (s *Session) checkActive(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminal() {
		return s.stateErr(op)
	}
	return nil
}

// unlock releases mu and delivers the events queued while it was held.
func (s *Session) unlock() {
	events := s.pending
	s.pending = nil
	if len(events) == 0 {
		s.mu.Unlock()
		return
	}
	s.dispatchMu.Lock()
	s.mu.Unlock()
	defer s.dispatchMu.Unlock()
	for _, ev := range events {
		s.onEvent(ev)
	}
}

func (s *Session) scheduleReply() {
	s.queue.Schedule(s.id, s.replyDelay, s.deliverReply)
}

// deliverReply is the deferred vendor response. The reply is rendered
// without the lock and committed only if no other change landed meanwhile.
func (s *Session) deliverReply() {
	for {
		s.mu.Lock()
		if s.terminal() {
			s.mu.Unlock()
			return
		}
		round, base := s.round, s.currentPrice
		s.mu.Unlock()

		price := max(base-s.step, 0)
		text, translated := s.renderVendor(s.scripter.Reply(round, price))

		s.mu.Lock()
		if s.terminal() {
			s.mu.Unlock()
			return
		}
		if s.round != round || s.currentPrice != base {
			s.mu.Unlock()
			continue
		}
		s.currentPrice = price
		s.round++
		s.append(SenderVendor, s.vendorLang, text, translated)
		s.unlock()
		return
	}
}

func (s *Session) finalize() {
	s.mu.Lock()
	if s.status == StatusAccepted {
		s.mu.Unlock()
		return
	}
	s.status = StatusAccepted
	final := s.currentPrice
	s.finalPrice = &final
	s.emit(Event{Type: EventStatus, Status: s.status, CurrentPrice: final, FinalPrice: &final})
	s.unlock()
	if s.onAccepted != nil {
		s.onAccepted(final)
	}
}

// renderVendor renders a scripted vendor line in the vendor language with a
// buyer-language annotation. It reads only fields fixed at seed time.
func (s *Session) renderVendor(r Reply) (string, *string) {
	en, _ := r.In(i18n.Default)
	text, ok := r.In(s.vendorLang)
	if !ok {
		text = s.translator.Translate(en, i18n.Default, s.vendorLang)
	}
	if s.buyerLang == s.vendorLang {
		return text, nil
	}
	t, ok := r.In(s.buyerLang)
	if !ok {
		t = s.translator.Translate(en, i18n.Default, s.buyerLang)
	}
	return text, &t
}

// vendorVersion returns the vendor-language annotation for a buyer line.
// localized is the line rendered in the vendor language and english the
// English rendering used when the vendor language has no template.
func (s *Session) vendorVersion(localized, english string) *string {
	if s.buyerLang == s.vendorLang {
		return nil
	}
	if localized == english && s.vendorLang != i18n.Default {
		t := s.translator.Translate(english, i18n.Default, s.vendorLang)
		return &t
	}
	return &localized
}

func (s *Session) append(sender Sender, lang, text string, translated *string) Message {
	now := s.queue.Clock().Now()
	msg := Message{
		ID:         len(s.messages) + 1,
		Sender:     sender,
		Lang:       lang,
		Text:       text,
		Translated: translated,
		Timestamp:  now,
	}
	s.messages = append(s.messages, msg)
	s.lastActivity = now
	m := msg
	s.emit(Event{Type: EventMessage, Message: &m, Status: s.status, CurrentPrice: s.currentPrice})
	return msg
}

func (s *Session) emit(ev Event) {
	if s.onEvent == nil {
		return
	}
	ev.SessionID = s.id
	ev.At = s.queue.Clock().Now()
	s.pending = append(s.pending, ev)
}
