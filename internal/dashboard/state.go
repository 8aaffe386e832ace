package dashboard

import (
	"errors"
	"sync"

	"energy_dashboard/internal/chart"
	"energy_dashboard/internal/model"
	"energy_dashboard/internal/stats"
)

var (
	// ErrClosed is returned by setters and effects once the state has been
	// torn down. The write is dropped.
	ErrClosed = errors.New("dashboard state closed")
	// ErrSuperseded is returned by RestoreDataset when the collection was
	// replaced after the caller read its revision.
	ErrSuperseded = errors.New("dashboard dataset superseded")
)

// Listener receives every committed change.
type Listener interface {
	OnSnapshot(snap Snapshot)
	OnNotification(n model.Notification)
}

// State owns everything the dashboard view renders. All writes go through
// the typed setters; each one is dropped after Close.
type State struct {
	emitMu   sync.Mutex // serializes listener calls so views see changes in order
	mu       sync.Mutex
	listener Listener
	closed   bool

	records    []model.EnergyRecord
	revision   uint64 // bumped on every collection replacement
	fileName   string
	loading    bool
	user       *model.UserProfile
	weather    *model.Weather
	discom     *model.Discom
	touHistory []model.TOURate
	flatRate   float64
	notice     *model.Notification

	// derived, recomputed on every change to records or rates
	summary stats.Summary
	points  []model.ConsumptionPoint
}

// Option configures a State.
type Option func(*State)

// WithFlatRate sets the ₹/kWh rate used for cost when no TOU history has
// been fetched.
func WithFlatRate(rate float64) Option {
	return func(s *State) {
		s.flatRate = rate
	}
}

// NewState returns a live state in its initial loading phase. listener may
// be nil.
func NewState(listener Listener, opts ...Option) *State {
	s := &State{
		listener: listener,
		loading:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.recompute()
	return s
}

// Alive reports whether writes are still accepted.
func (s *State) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Close tears the state down. Later writes, including those of in-flight
// effects, become no-ops.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// SetRecords replaces the energy collection wholesale.
func (s *State) SetRecords(records []model.EnergyRecord) error {
	return s.update(func() { s.replace(records) })
}

// SetDataset replaces the collection and the file name it came from in one
// change.
func (s *State) SetDataset(fileName string, records []model.EnergyRecord) error {
	return s.update(func() {
		s.fileName = fileName
		s.replace(records)
	})
}

// RestoreDataset is SetDataset for data read in the background: it commits
// only if the collection is still at revision rev.
func (s *State) RestoreDataset(rev uint64, fileName string, records []model.EnergyRecord) error {
	return s.apply(func() bool {
		if s.revision != rev {
			return false
		}
		s.fileName = fileName
		s.replace(records)
		return true
	})
}

// Revision identifies the current collection. It changes on every
// replacement.
func (s *State) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

func (s *State) SetFileName(name string) error {
	return s.update(func() { s.fileName = name })
}

func (s *State) SetLoading(loading bool) error {
	return s.update(func() { s.loading = loading })
}

func (s *State) SetUser(p model.UserProfile) error {
	return s.update(func() { s.user = &p })
}

func (s *State) SetWeather(w model.Weather) error {
	return s.update(func() { s.weather = &w })
}

func (s *State) SetDiscom(d model.Discom) error {
	return s.update(func() { s.discom = &d })
}

// SetTOUHistory stores the tariff history, newest first, and reprices the
// chart with its head.
func (s *State) SetTOUHistory(history []model.TOURate) error {
	return s.update(func() {
		s.touHistory = history
		s.recompute()
	})
}

// Notify records n as the latest notification and forwards it to the
// listener.
func (s *State) Notify(n model.Notification) error {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.notice = &n
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.OnNotification(n)
	}
	return nil
}

// Records returns the current collection.
func (s *State) Records() []model.EnergyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records
}

// Snapshot returns the current view model.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// update applies fn under the lock if the state is alive, then pushes the
// resulting snapshot.
func (s *State) update(fn func()) error {
	return s.apply(func() bool {
		fn()
		return true
	})
}

// apply is update for changes that may decline: when fn returns false
// nothing is pushed and ErrSuperseded is returned.
func (s *State) apply(fn func() bool) error {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if !fn() {
		s.mu.Unlock()
		return ErrSuperseded
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.OnSnapshot(snap)
	}
	return nil
}

func (s *State) replace(records []model.EnergyRecord) {
	s.records = records
	s.revision++
	s.recompute()
}

func (s *State) recompute() {
	s.summary = stats.Compute(s.records)
	s.points = chart.Project(s.records, s.rateFunc())
}

func (s *State) rateFunc() chart.RateFunc {
	if rf := chart.LatestRate(s.touHistory); rf != nil {
		return rf
	}
	if s.flatRate > 0 {
		return chart.FlatRate(s.flatRate)
	}
	return nil
}
