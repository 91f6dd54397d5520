package funnel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"staybook/internal/domain/availability"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/properties"
	"staybook/internal/domain/shared/daterange"
)

var (
	ErrNotReady      = errors.New("funnel: session has no availability window yet")
	ErrSuperseded    = errors.New("funnel: selection superseded by a newer one")
	ErrNotAvailable  = errors.New("funnel: checkout requires an available selection")
	ErrNoCheckout    = errors.New("funnel: checkout collaborator missing")
	ErrInvalidGuests = errors.New("funnel: guests count must be at least 1")
)

// AvailabilityService is the remote availability collaborator: the bulk
// window load plus the per-selection re-check.
type AvailabilityService interface {
	Window(ctx context.Context, id properties.PropertyID, from, to time.Time) (availability.Window, error)
	CheckRange(ctx context.Context, id properties.PropertyID, dr daterange.DateRange) (bool, error)
}

// QuoteService prices a validated selection.
type QuoteService interface {
	Quote(ctx context.Context, id properties.PropertyID, dr daterange.DateRange, guests int) (pricing.Quote, error)
}

// CheckoutStarter receives the booking handoff. The session does not track
// anything past a successful handoff.
type CheckoutStarter interface {
	BeginCheckout(ctx context.Context, h Handoff) error
}

// FallbackPolicy decides what the session does when the window load fails.
type FallbackPolicy string

const (
	// FailOpen treats every in-horizon date as bookable on load failure so a
	// transient data error never closes the funnel. The range re-check at
	// selection time still runs, so a sold night cannot be booked this way.
	FailOpen FallbackPolicy = "fail-open"
	// FailClosed treats every date as unavailable instead.
	FailClosed FallbackPolicy = "fail-closed"
)

// Phase is the session's single explicit state. Checking and a result can
// never coexist; a new selection moves the session back to PhaseChecking
// before any remote work starts.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseChecking
	PhaseAvailable
	PhaseUnavailable
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseChecking:
		return "checking"
	case PhaseAvailable:
		return "available"
	case PhaseUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// Selection is one candidate stay.
type Selection struct {
	Range  daterange.DateRange
	Guests int
}

// Result is the outcome for the current selection. Breakdown is nil when the
// dates are available but pricing failed; availability still wins.
type Result struct {
	Selection Selection
	Available bool
	Message   string
	Quote     *pricing.Quote
	Breakdown *pricing.Breakdown
}

// Handoff is what checkout receives on "Book Now".
type Handoff struct {
	PropertyID properties.PropertyID
	Range      daterange.DateRange
	Guests     int
	Quote      *pricing.Quote
}

type Config struct {
	PropertyID    properties.PropertyID
	HorizonDays   int
	MinStayNights int
	Policy        FallbackPolicy
	Logger        *slog.Logger
	Now           func() time.Time
}

func (c *Config) defaults() {
	if c.HorizonDays <= 0 {
		c.HorizonDays = daterange.DefaultHorizonDays
	}
	if c.MinStayNights <= 0 {
		c.MinStayNights = 2
	}
	if c.Policy == "" {
		c.Policy = FailOpen
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Session drives one booking widget instance. All state transitions go
// through the mutex; remote calls run outside it. Each selection takes a
// monotonically increasing token and only the holder of the current token
// may commit a result, so a stale response can never clobber a newer
// selection no matter the arrival order.
type Session struct {
	cfg          Config
	availability AvailabilityService
	quotes       QuoteService

	mu     sync.Mutex
	phase  Phase
	window availability.Window
	token  uint64
	result *Result
}

func NewSession(cfg Config, avail AvailabilityService, quotes QuoteService) *Session {
	cfg.defaults()
	return &Session{cfg: cfg, availability: avail, quotes: quotes, phase: PhaseIdle}
}

// Load fetches the availability window for the full booking horizon. A load
// failure is recovered locally via the configured fallback policy and is
// never surfaced as an error.
func (s *Session) Load(ctx context.Context) {
	s.mu.Lock()
	s.phase = PhaseLoading
	s.result = nil
	s.mu.Unlock()

	today := daterange.Day(s.cfg.Now())
	to := today.AddDate(0, 0, s.cfg.HorizonDays+1)
	window, err := s.availability.Window(ctx, s.cfg.PropertyID, today, to)
	if err != nil {
		s.cfg.Logger.Warn("availability window load failed, applying fallback",
			"property_id", s.cfg.PropertyID, "policy", string(s.cfg.Policy), "error", err)
		window = s.fallbackWindow(today)
	}

	s.mu.Lock()
	s.window = window
	s.phase = PhaseReady
	s.mu.Unlock()
}

func (s *Session) fallbackWindow(today time.Time) availability.Window {
	w := availability.Window{}
	open := s.cfg.Policy != FailClosed
	for i := 0; i <= s.cfg.HorizonDays; i++ {
		w[daterange.FormatISODate(today.AddDate(0, 0, i))] = open
	}
	return w
}

// SelectableDate reports whether the day grid should allow picking the date:
// not in the past, inside the horizon, and open in the loaded window.
func (s *Session) SelectableDate(date time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseIdle || s.phase == PhaseLoading {
		return false
	}
	if !daterange.WithinHorizon(date, s.cfg.Now(), s.cfg.HorizonDays) {
		return false
	}
	return s.window.Bookable(date)
}

// Select runs the availability-then-quote check for a candidate stay. Stays
// below the minimum are rejected locally without touching a collaborator.
// If another Select supersedes this one while its remote calls are in
// flight, the stale outcome is discarded and ErrSuperseded returned.
func (s *Session) Select(ctx context.Context, checkIn, checkOut time.Time, guests int) (Result, error) {
	if guests < 1 {
		return Result{}, ErrInvalidGuests
	}
	dr, err := daterange.New(checkIn, checkOut)
	if err != nil {
		return Result{}, err
	}
	sel := Selection{Range: dr, Guests: guests}

	s.mu.Lock()
	if s.phase == PhaseIdle || s.phase == PhaseLoading {
		s.mu.Unlock()
		return Result{}, ErrNotReady
	}
	s.token++
	token := s.token
	s.phase = PhaseChecking
	s.result = nil
	s.mu.Unlock()

	if dr.Nights() < s.cfg.MinStayNights {
		res := Result{
			Selection: sel,
			Available: false,
			Message:   fmt.Sprintf("minimum stay is %d nights", s.cfg.MinStayNights),
		}
		return s.commit(token, res)
	}

	ok, err := s.availability.CheckRange(ctx, s.cfg.PropertyID, dr)
	if err != nil || !ok {
		if err != nil {
			s.cfg.Logger.Warn("availability re-check failed", "property_id", s.cfg.PropertyID, "error", err)
		}
		res := Result{Selection: sel, Available: false, Message: "selected dates are not available"}
		return s.commit(token, res)
	}

	res := Result{Selection: sel, Available: true, Message: "selected dates are available"}
	quote, err := s.quotes.Quote(ctx, s.cfg.PropertyID, dr, guests)
	if err != nil {
		// Availability beats pricing: show the dates as bookable even when
		// the quote could not be computed.
		s.cfg.Logger.Warn("quote failed, showing availability without pricing",
			"property_id", s.cfg.PropertyID, "error", err)
		return s.commit(token, res)
	}
	breakdown, err := pricing.NewBreakdown(quote)
	if err != nil {
		s.cfg.Logger.Warn("quote decomposition failed", "property_id", s.cfg.PropertyID, "error", err)
		return s.commit(token, res)
	}
	res.Quote = &quote
	res.Breakdown = &breakdown
	return s.commit(token, res)
}

func (s *Session) commit(token uint64, res Result) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token {
		return Result{}, ErrSuperseded
	}
	if res.Available {
		s.phase = PhaseAvailable
	} else {
		s.phase = PhaseUnavailable
	}
	s.result = &res
	return res, nil
}

// BeginCheckout hands the current available selection to the checkout
// collaborator. The session keeps its result; a failed handoff can be
// retried without re-selecting.
func (s *Session) BeginCheckout(ctx context.Context, starter CheckoutStarter) error {
	if starter == nil {
		return ErrNoCheckout
	}
	s.mu.Lock()
	if s.phase != PhaseAvailable || s.result == nil {
		s.mu.Unlock()
		return ErrNotAvailable
	}
	h := Handoff{
		PropertyID: s.cfg.PropertyID,
		Range:      s.result.Selection.Range,
		Guests:     s.result.Selection.Guests,
		Quote:      s.result.Quote,
	}
	s.mu.Unlock()
	return starter.BeginCheckout(ctx, h)
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Result returns the committed outcome for the current selection, if any.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return Result{}, false
	}
	return *s.result, true
}
