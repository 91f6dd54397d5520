package funnel_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"staybook/internal/domain/availability"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/properties"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	"staybook/internal/funnel"
)

type stubBackend struct {
	windowFn func(from, to time.Time) (availability.Window, error)
	checkFn  func(dr daterange.DateRange) (bool, error)
	quoteFn  func(dr daterange.DateRange, guests int) (pricing.Quote, error)

	windowCalls int32
	checkCalls  int32
	quoteCalls  int32
}

func (s *stubBackend) Window(_ context.Context, _ properties.PropertyID, from, to time.Time) (availability.Window, error) {
	atomic.AddInt32(&s.windowCalls, 1)
	return s.windowFn(from, to)
}

func (s *stubBackend) CheckRange(_ context.Context, _ properties.PropertyID, dr daterange.DateRange) (bool, error) {
	atomic.AddInt32(&s.checkCalls, 1)
	return s.checkFn(dr)
}

func (s *stubBackend) Quote(_ context.Context, _ properties.PropertyID, dr daterange.DateRange, guests int) (pricing.Quote, error) {
	atomic.AddInt32(&s.quoteCalls, 1)
	return s.quoteFn(dr, guests)
}

func openWindow(from, to time.Time) (availability.Window, error) {
	w := availability.Window{}
	for d := daterange.Day(from); d.Before(daterange.Day(to)); d = d.AddDate(0, 0, 1) {
		w[daterange.FormatISODate(d)] = true
	}
	return w, nil
}

func quoteFor(dr daterange.DateRange, guests int) (pricing.Quote, error) {
	nights := dr.Nights()
	q := pricing.Quote{
		PropertyID: "river-loft",
		Range:      dr,
		Guests:     guests,
		Nights:     nights,
		Currency:   "EUR",
		LineItems: []pricing.LineItem{
			{Kind: pricing.KindAccommodation, Label: "nights", Amount: money.Must(int64(nights)*9500, "EUR")},
			{Kind: pricing.KindCleaning, Label: "Cleaning Fee", Amount: money.Must(3000, "EUR")},
		},
	}
	if err := q.Normalize(); err != nil {
		return pricing.Quote{}, err
	}
	return q, nil
}

func testConfig(now time.Time) funnel.Config {
	return funnel.Config{
		PropertyID:    "river-loft",
		HorizonDays:   90,
		MinStayNights: 2,
		Policy:        funnel.FailOpen,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:           func() time.Time { return now },
	}
}

func TestSelectBeforeLoadReturnsNotReady(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	backend := &stubBackend{windowFn: openWindow, checkFn: func(daterange.DateRange) (bool, error) { return true, nil }, quoteFn: quoteFor}
	s := funnel.NewSession(testConfig(now), backend, backend)

	_, err := s.Select(context.Background(), now.AddDate(0, 0, 5), now.AddDate(0, 0, 8), 2)
	require.ErrorIs(t, err, funnel.ErrNotReady)
	require.Equal(t, funnel.PhaseIdle, s.Phase())
}

func TestLoadBuildsSelectableWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	backend := &stubBackend{windowFn: openWindow}
	s := funnel.NewSession(testConfig(now), backend, backend)
	s.Load(context.Background())

	require.Equal(t, funnel.PhaseReady, s.Phase())
	today := daterange.Day(now)
	require.True(t, s.SelectableDate(today))
	require.True(t, s.SelectableDate(today.AddDate(0, 0, 90)))
	require.False(t, s.SelectableDate(today.AddDate(0, 0, 91)))
	require.False(t, s.SelectableDate(today.AddDate(0, 0, -1)))
}

func TestMinStayRejectedLocally(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	backend := &stubBackend{windowFn: openWindow, checkFn: func(daterange.DateRange) (bool, error) { return true, nil }, quoteFn: quoteFor}
	s := funnel.NewSession(testConfig(now), backend, backend)
	s.Load(context.Background())

	res, err := s.Select(context.Background(), now.AddDate(0, 0, 5), now.AddDate(0, 0, 6), 2)
	require.NoError(t, err)
	require.False(t, res.Available)
	require.Equal(t, "minimum stay is 2 nights", res.Message)
	require.Equal(t, funnel.PhaseUnavailable, s.Phase())

	// Too-short stays never reach the availability or pricing services.
	require.Zero(t, atomic.LoadInt32(&backend.checkCalls))
	require.Zero(t, atomic.LoadInt32(&backend.quoteCalls))
}

func TestSelectAvailableWithQuote(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	backend := &stubBackend{windowFn: openWindow, checkFn: func(daterange.DateRange) (bool, error) { return true, nil }, quoteFn: quoteFor}
	s := funnel.NewSession(testConfig(now), backend, backend)
	s.Load(context.Background())

	res, err := s.Select(context.Background(), now.AddDate(0, 0, 5), now.AddDate(0, 0, 8), 2)
	require.NoError(t, err)
	require.True(t, res.Available)
	require.Equal(t, funnel.PhaseAvailable, s.Phase())
	require.NotNil(t, res.Quote)
	require.NotNil(t, res.Breakdown)
	require.Equal(t, int64(95), res.Breakdown.BasePrice)
	require.Equal(t, 3, res.Breakdown.Nights)
	require.Equal(t, int64(315), res.Breakdown.Total)
}

func TestQuoteFailureStillShowsAvailability(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	backend := &stubBackend{
		windowFn: openWindow,
		checkFn:  func(daterange.DateRange) (bool, error) { return true, nil },
		quoteFn:  func(daterange.DateRange, int) (pricing.Quote, error) { return pricing.Quote{}, errors.New("rates down") },
	}
	s := funnel.NewSession(testConfig(now), backend, backend)
	s.Load(context.Background())

	res, err := s.Select(context.Background(), now.AddDate(0, 0, 5), now.AddDate(0, 0, 8), 2)
	require.NoError(t, err)
	require.True(t, res.Available)
	require.Nil(t, res.Quote)
	require.Nil(t, res.Breakdown)
	require.Equal(t, funnel.PhaseAvailable, s.Phase())
}

func TestSelectUnavailableDates(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	backend := &stubBackend{
		windowFn: openWindow,
		checkFn:  func(daterange.DateRange) (bool, error) { return false, nil },
		quoteFn:  quoteFor,
	}
	s := funnel.NewSession(testConfig(now), backend, backend)
	s.Load(context.Background())

	res, err := s.Select(context.Background(), now.AddDate(0, 0, 5), now.AddDate(0, 0, 8), 2)
	require.NoError(t, err)
	require.False(t, res.Available)
	require.Equal(t, funnel.PhaseUnavailable, s.Phase())
	require.Zero(t, atomic.LoadInt32(&backend.quoteCalls))
}

func TestFailOpenFallbackKeepsFunnelUsable(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	backend := &stubBackend{
		windowFn: func(time.Time, time.Time) (availability.Window, error) { return nil, errors.New("store down") },
		checkFn:  func(daterange.DateRange) (bool, error) { return true, nil },
		quoteFn:  quoteFor,
	}
	s := funnel.NewSession(testConfig(now), backend, backend)
	s.Load(context.Background())

	require.Equal(t, funnel.PhaseReady, s.Phase())
	today := daterange.Day(now)
	require.True(t, s.SelectableDate(today.AddDate(0, 0, 5)))
	require.False(t, s.SelectableDate(today.AddDate(0, 0, 91)))

	// The selection re-check still runs, so fail-open cannot sell a taken night.
	res, err := s.Select(context.Background(), today.AddDate(0, 0, 5), today.AddDate(0, 0, 8), 2)
	require.NoError(t, err)
	require.True(t, res.Available)
	require.Equal(t, int32(1), atomic.LoadInt32(&backend.checkCalls))
}

func TestFailClosedFallbackClosesEveryDate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	cfg := testConfig(now)
	cfg.Policy = funnel.FailClosed
	backend := &stubBackend{
		windowFn: func(time.Time, time.Time) (availability.Window, error) { return nil, errors.New("store down") },
	}
	s := funnel.NewSession(cfg, backend, backend)
	s.Load(context.Background())

	require.Equal(t, funnel.PhaseReady, s.Phase())
	today := daterange.Day(now)
	for i := 0; i <= 90; i += 30 {
		require.False(t, s.SelectableDate(today.AddDate(0, 0, i)))
	}
}

func TestStaleSelectionCannotClobberNewerOne(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	firstEntered := make(chan struct{})
	releaseFirst := make(chan struct{})
	var calls int32
	backend := &stubBackend{
		windowFn: openWindow,
		checkFn: func(daterange.DateRange) (bool, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				close(firstEntered)
				<-releaseFirst
			}
			return true, nil
		},
		quoteFn: quoteFor,
	}
	s := funnel.NewSession(testConfig(now), backend, backend)
	s.Load(context.Background())

	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Select(context.Background(), now.AddDate(0, 0, 5), now.AddDate(0, 0, 8), 2)
		firstErr <- err
	}()
	<-firstEntered

	res, err := s.Select(context.Background(), now.AddDate(0, 0, 10), now.AddDate(0, 0, 13), 2)
	require.NoError(t, err)
	require.True(t, res.Available)

	close(releaseFirst)
	require.ErrorIs(t, <-firstErr, funnel.ErrSuperseded)

	// The committed result is the newer selection, regardless of arrival order.
	got, ok := s.Result()
	require.True(t, ok)
	require.Equal(t, daterange.Day(now.AddDate(0, 0, 10)), got.Selection.Range.CheckIn)
	require.Equal(t, funnel.PhaseAvailable, s.Phase())
}

func TestBeginCheckoutRequiresAvailableSelection(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	backend := &stubBackend{windowFn: openWindow, checkFn: func(daterange.DateRange) (bool, error) { return false, nil }, quoteFn: quoteFor}
	s := funnel.NewSession(testConfig(now), backend, backend)
	s.Load(context.Background())

	starter := funnel.StarterFunc(func(context.Context, funnel.Handoff) error { return nil })
	require.ErrorIs(t, s.BeginCheckout(context.Background(), starter), funnel.ErrNotAvailable)

	_, err := s.Select(context.Background(), now.AddDate(0, 0, 5), now.AddDate(0, 0, 8), 2)
	require.NoError(t, err)
	require.ErrorIs(t, s.BeginCheckout(context.Background(), starter), funnel.ErrNotAvailable)
}

func TestBeginCheckoutHandsOffSelection(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	backend := &stubBackend{windowFn: openWindow, checkFn: func(daterange.DateRange) (bool, error) { return true, nil }, quoteFn: quoteFor}
	s := funnel.NewSession(testConfig(now), backend, backend)
	s.Load(context.Background())

	_, err := s.Select(context.Background(), now.AddDate(0, 0, 5), now.AddDate(0, 0, 8), 3)
	require.NoError(t, err)

	require.ErrorIs(t, s.BeginCheckout(context.Background(), nil), funnel.ErrNoCheckout)

	var got funnel.Handoff
	starter := funnel.StarterFunc(func(_ context.Context, h funnel.Handoff) error {
		got = h
		return nil
	})
	require.NoError(t, s.BeginCheckout(context.Background(), starter))
	require.Equal(t, properties.PropertyID("river-loft"), got.PropertyID)
	require.Equal(t, 3, got.Guests)
	require.NotNil(t, got.Quote)
	require.Equal(t, int64(31500), got.Quote.Total.Amount)

	// A failed handoff keeps the selection so checkout can be retried.
	failed := funnel.StarterFunc(func(context.Context, funnel.Handoff) error { return errors.New("booking service down") })
	require.Error(t, s.BeginCheckout(context.Background(), failed))
	require.Equal(t, funnel.PhaseAvailable, s.Phase())
}

func TestSelectValidatesInput(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	backend := &stubBackend{windowFn: openWindow, checkFn: func(daterange.DateRange) (bool, error) { return true, nil }, quoteFn: quoteFor}
	s := funnel.NewSession(testConfig(now), backend, backend)
	s.Load(context.Background())

	_, err := s.Select(context.Background(), now.AddDate(0, 0, 5), now.AddDate(0, 0, 8), 0)
	require.ErrorIs(t, err, funnel.ErrInvalidGuests)

	_, err = s.Select(context.Background(), now.AddDate(0, 0, 8), now.AddDate(0, 0, 5), 2)
	require.ErrorIs(t, err, daterange.ErrInvalidRange)
}
