package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy_dashboard/internal/cache"
	"energy_dashboard/internal/model"
	"energy_dashboard/internal/profile"
)

// gate blocks a fake source until released, so a test can tear the state
// down while the call is in flight.
type gate struct {
	started chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gate) wait() {
	if g == nil {
		return
	}
	close(g.started)
	<-g.release
}

type fakeProfiles struct {
	profile model.UserProfile
	err     error
	gate    *gate
}

func (f *fakeProfiles) Get(ctx context.Context, userID string) (model.UserProfile, error) {
	f.gate.wait()
	if f.err != nil {
		return model.UserProfile{}, f.err
	}
	p := f.profile
	p.ID = userID
	return p, nil
}

type fakeWeather struct {
	weather model.Weather
	err     error
	gate    *gate
	lat     float64
	lon     float64
}

func (f *fakeWeather) Fetch(ctx context.Context, lat, lon float64) (model.Weather, error) {
	f.gate.wait()
	f.lat, f.lon = lat, lon
	return f.weather, f.err
}

type fakeTariffs struct {
	history []model.TOURate
	err     error
	gate    *gate
}

func (f *fakeTariffs) History(ctx context.Context) ([]model.TOURate, error) {
	f.gate.wait()
	return f.history, f.err
}

type fakeDiscoms struct {
	discom model.Discom
	err    error
	gate   *gate
	asked  string
}

func (f *fakeDiscoms) Lookup(ctx context.Context, providerID string) (model.Discom, error) {
	f.gate.wait()
	f.asked = providerID
	return f.discom, f.err
}

// gatedBackend reads the slot, then holds the value at the gate before
// returning it.
type gatedBackend struct {
	cache.Backend
	gate *gate
}

func (b *gatedBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := b.Backend.Get(ctx, key)
	b.gate.wait()
	return data, ok, err
}

const sampleCSV = "SendDate,Solar Power (kW),Solar energy Generation  (kWh),consumptionValue (kW)\n" +
	"2024-01-01 10:00,2.5,1.2,0.8\n" +
	"2024-01-01 11:00,3.1,,0.9\n" +
	"2024-01-02 10:00,2.0,1.0,1.0\n"

func TestEffects_LoadCache(t *testing.T) {
	ctx := context.Background()
	c := cache.New(cache.NewFileBackend(t.TempDir()))
	require.NoError(t, c.Save(ctx, testRecords()))

	e := &Effects{State: NewState(nil), Cache: c}
	require.NoError(t, e.LoadCache(ctx))

	snap := e.State.Snapshot()
	assert.Equal(t, "energyData.csv", snap.FileName)
	assert.Equal(t, 3, snap.Stats.RecordCount)
}

func TestEffects_LoadCacheEmpty(t *testing.T) {
	e := &Effects{State: NewState(nil), Cache: cache.New(cache.NewFileBackend(t.TempDir()))}

	require.NoError(t, e.LoadCache(context.Background()))

	snap := e.State.Snapshot()
	assert.Empty(t, snap.FileName)
	assert.True(t, snap.ChartLoading)
}

func TestEffects_LoadCacheCorrupt(t *testing.T) {
	ctx := context.Background()
	b := cache.NewFileBackend(t.TempDir())
	require.NoError(t, b.Set(ctx, cache.DefaultKey, []byte("{not json")))

	e := &Effects{State: NewState(nil), Cache: cache.New(b)}
	err := e.LoadCache(ctx)

	assert.ErrorIs(t, err, cache.ErrCorrupt)
	assert.True(t, e.State.Snapshot().ChartLoading)
}

func TestEffects_FetchWeather(t *testing.T) {
	w := &fakeWeather{weather: model.Weather{Name: "New Delhi", TempC: 31}}
	e := &Effects{State: NewState(nil), Weather: w, Location: &Location{Latitude: 28.6, Longitude: 77.2}}

	require.NoError(t, e.FetchWeather(context.Background()))

	assert.Equal(t, 28.6, w.lat)
	assert.Equal(t, 77.2, w.lon)
	assert.Equal(t, "New Delhi", e.State.Snapshot().LocationName)
}

func TestEffects_FetchWeatherFailureHasNoFallback(t *testing.T) {
	e := &Effects{
		State:    NewState(nil),
		Weather:  &fakeWeather{err: errors.New("boom")},
		Location: &Location{},
	}

	err := e.FetchWeather(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Nil(t, e.State.Snapshot().Weather)
	assert.Empty(t, e.State.Snapshot().LocationName)
}

func TestEffects_FetchWeatherWithoutLocation(t *testing.T) {
	w := &fakeWeather{weather: model.Weather{Name: "x"}}
	e := &Effects{State: NewState(nil), Weather: w}

	require.NoError(t, e.FetchWeather(context.Background()))
	assert.Nil(t, e.State.Snapshot().Weather)
}

func TestEffects_InitUser(t *testing.T) {
	discoms := &fakeDiscoms{discom: model.Discom{ID: "BSES", Name: "BSES Rajdhani Power Ltd"}}
	e := &Effects{
		State:    NewState(nil),
		UserID:   "u1",
		Profiles: &fakeProfiles{profile: model.UserProfile{Name: "Asha", ElectricityProvider: "BSES"}},
		Discoms:  discoms,
	}

	require.NoError(t, e.InitUser(context.Background()))

	snap := e.State.Snapshot()
	assert.False(t, snap.Loading)
	assert.False(t, snap.NoUserData)
	assert.Equal(t, "Asha", snap.UserName)
	assert.Equal(t, "u1", snap.User.ID)
	assert.Equal(t, "BSES", discoms.asked)
	require.NotNil(t, snap.Discom)
	assert.Equal(t, "BSES Rajdhani Power Ltd", snap.Discom.Name)
}

func TestEffects_InitUserProfileFailures(t *testing.T) {
	tests := []struct {
		name     string
		profiles ProfileSource
		userID   string
	}{
		{"store error", &fakeProfiles{err: errors.New("db locked")}, "u1"},
		{"not found", &fakeProfiles{err: profile.ErrNotFound}, "u1"},
		{"no user", &fakeProfiles{}, ""},
		{"no store", nil, "u1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Effects{State: NewState(nil), UserID: tt.userID, Profiles: tt.profiles}

			require.NoError(t, e.InitUser(context.Background()))

			snap := e.State.Snapshot()
			assert.False(t, snap.Loading)
			assert.True(t, snap.NoUserData)
		})
	}
}

func TestEffects_InitUserDiscomFailure(t *testing.T) {
	e := &Effects{
		State:    NewState(nil),
		UserID:   "u1",
		Profiles: &fakeProfiles{profile: model.UserProfile{Name: "Asha", ElectricityProvider: "BSES"}},
		Discoms:  &fakeDiscoms{err: errors.New("404")},
	}

	err := e.InitUser(context.Background())

	require.Error(t, err)
	snap := e.State.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, "Asha", snap.UserName)
	assert.Nil(t, snap.Discom)
}

func TestEffects_FetchTOUHistory(t *testing.T) {
	rec := &recorder{}
	e := &Effects{
		State:   NewState(rec),
		Tariffs: &fakeTariffs{history: []model.TOURate{{Rate: 8.5}, {Rate: 6}}},
	}
	require.NoError(t, e.State.SetRecords(testRecords()))

	require.NoError(t, e.FetchTOUHistory(context.Background()))

	_, notes := rec.counts()
	require.Equal(t, 1, notes)
	n := e.State.Snapshot().Notification
	require.NotNil(t, n)
	assert.Equal(t, "Latest TOU rate fetched", n.Title)
	assert.Equal(t, "Current TOU rate: ₹8.5 /kWh", n.Description)
	assert.Equal(t, model.LevelSuccess, n.Level)
	assert.Equal(t, "8.5", e.State.Snapshot().Table[2].Cost)
}

func TestEffects_FetchTOUHistoryErrors(t *testing.T) {
	tests := []struct {
		name    string
		tariffs *fakeTariffs
	}{
		{"provider error", &fakeTariffs{err: errors.New("timeout")}},
		{"empty history", &fakeTariffs{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Effects{State: NewState(nil), Tariffs: tt.tariffs}

			assert.Error(t, e.FetchTOUHistory(context.Background()))
			assert.Nil(t, e.State.Snapshot().Notification)
			assert.Nil(t, e.State.Snapshot().LatestRate)
		})
	}
}

func TestEffects_LateResultsAfterCloseAreDropped(t *testing.T) {
	tests := []struct {
		name  string
		setup func(g *gate) (*Effects, func(context.Context) error)
		check func(t *testing.T, snap Snapshot)
	}{
		{
			name: "weather",
			setup: func(g *gate) (*Effects, func(context.Context) error) {
				e := &Effects{
					State:    NewState(nil),
					Weather:  &fakeWeather{weather: model.Weather{Name: "late"}, gate: g},
					Location: &Location{},
				}
				return e, e.FetchWeather
			},
			check: func(t *testing.T, snap Snapshot) {
				assert.Nil(t, snap.Weather)
			},
		},
		{
			name: "profile",
			setup: func(g *gate) (*Effects, func(context.Context) error) {
				e := &Effects{
					State:    NewState(nil),
					UserID:   "u1",
					Profiles: &fakeProfiles{profile: model.UserProfile{Name: "late"}, gate: g},
				}
				return e, e.InitUser
			},
			check: func(t *testing.T, snap Snapshot) {
				assert.Nil(t, snap.User)
				assert.True(t, snap.Loading)
			},
		},
		{
			name: "discom",
			setup: func(g *gate) (*Effects, func(context.Context) error) {
				e := &Effects{
					State:    NewState(nil),
					UserID:   "u1",
					Profiles: &fakeProfiles{profile: model.UserProfile{Name: "Asha", ElectricityProvider: "BSES"}},
					Discoms:  &fakeDiscoms{discom: model.Discom{Name: "late"}, gate: g},
				}
				return e, e.InitUser
			},
			check: func(t *testing.T, snap Snapshot) {
				assert.Nil(t, snap.Discom)
				assert.True(t, snap.Loading)
			},
		},
		{
			name: "tou history",
			setup: func(g *gate) (*Effects, func(context.Context) error) {
				e := &Effects{
					State:   NewState(nil),
					Tariffs: &fakeTariffs{history: []model.TOURate{{Rate: 1}}, gate: g},
				}
				return e, e.FetchTOUHistory
			},
			check: func(t *testing.T, snap Snapshot) {
				assert.Nil(t, snap.LatestRate)
				assert.Nil(t, snap.Notification)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGate()
			e, effect := tt.setup(g)

			done := make(chan error, 1)
			go func() { done <- effect(context.Background()) }()

			<-g.started
			e.State.Close()
			close(g.release)

			err := <-done
			assert.ErrorIs(t, err, ErrClosed)
			tt.check(t, e.State.Snapshot())
		})
	}
}

func TestEffects_UploadDuringLoadCacheWins(t *testing.T) {
	ctx := context.Background()
	files := cache.NewFileBackend(t.TempDir())
	require.NoError(t, cache.New(files).Save(ctx, []model.EnergyRecord{
		{SendDate: "2023-01-01 00:00", SolarPower: 1, SolarEnergy: 1, Consumption: 1},
	}))

	g := newGate()
	c := cache.New(&gatedBackend{Backend: files, gate: g})
	e := &Effects{State: NewState(nil), Cache: c}

	done := make(chan error, 1)
	go func() { done <- e.LoadCache(ctx) }()
	<-g.started

	_, err := e.Upload(ctx, "test", "new.csv", strings.NewReader(
		"SendDate,Solar Power (kW),Solar energy Generation  (kWh),consumptionValue (kW)\n2024-05-05 10:00,2,2,2\n"))
	require.NoError(t, err)
	close(g.release)

	require.NoError(t, <-done)
	assert.Equal(t, "new.csv", e.State.Snapshot().FileName)
	require.Len(t, e.State.Records(), 1)
	assert.Equal(t, "2024-05-05 10:00", e.State.Records()[0].SendDate)

	cached, err := cache.New(files).Load(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "2024-05-05 10:00", cached[0].SendDate)
}

func TestEffects_LoadCacheAfterClose(t *testing.T) {
	ctx := context.Background()
	c := cache.New(cache.NewFileBackend(t.TempDir()))
	require.NoError(t, c.Save(ctx, testRecords()))

	e := &Effects{State: NewState(nil), Cache: c}
	e.State.Close()

	assert.ErrorIs(t, e.LoadCache(ctx), ErrClosed)
	assert.True(t, e.State.Snapshot().ChartLoading)
}

func TestEffects_CancelledContextDropsResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := &Effects{
		State:    NewState(nil),
		Weather:  &fakeWeather{weather: model.Weather{Name: "late"}},
		Location: &Location{},
	}

	assert.ErrorIs(t, e.FetchWeather(ctx), context.Canceled)
	assert.Nil(t, e.State.Snapshot().Weather)
}

func TestEffects_Upload(t *testing.T) {
	ctx := context.Background()
	c := cache.New(cache.NewFileBackend(t.TempDir()))
	e := &Effects{State: NewState(nil), Cache: c}

	summary, err := e.Upload(ctx, "test", "january.csv", strings.NewReader(sampleCSV))

	require.NoError(t, err)
	assert.Equal(t, 3, summary.RecordCount)
	assert.Equal(t, 2, summary.UniqueDays)
	assert.False(t, summary.TotalSolarEnergy.Valid(), "empty solar energy cell poisons the total")

	snap := e.State.Snapshot()
	assert.Equal(t, "january.csv", snap.FileName)
	assert.Equal(t, 3, snap.Stats.RecordCount)

	cached, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 3)
}

func TestEffects_UploadReplacesCollection(t *testing.T) {
	ctx := context.Background()
	e := &Effects{State: NewState(nil)}
	require.NoError(t, e.State.SetRecords(testRecords()))

	_, err := e.Upload(ctx, "test", "one.csv", strings.NewReader(
		"SendDate,Solar Power (kW),Solar energy Generation  (kWh),consumptionValue (kW)\n2024-03-01 00:00,1,1,1\n"))

	require.NoError(t, err)
	assert.Len(t, e.State.Records(), 1)
}

func TestEffects_UploadCacheTooLarge(t *testing.T) {
	ctx := context.Background()
	c := cache.New(cache.NewFileBackend(t.TempDir()), cache.WithMaxRecords(2))
	e := &Effects{State: NewState(nil), Cache: c}

	_, err := e.Upload(ctx, "test", "big.csv", strings.NewReader(sampleCSV))

	assert.ErrorIs(t, err, cache.ErrTooLarge)
	assert.ErrorIs(t, err, ErrNotCached)
	snap := e.State.Snapshot()
	assert.Equal(t, 3, snap.Stats.RecordCount, "records stay on screen")
	require.NotNil(t, snap.Notification)
	assert.Equal(t, model.LevelError, snap.Notification.Level)
}

func TestEffects_ClearCache(t *testing.T) {
	ctx := context.Background()
	c := cache.New(cache.NewFileBackend(t.TempDir()))
	require.NoError(t, c.Save(ctx, testRecords()))
	e := &Effects{State: NewState(nil), Cache: c}

	require.NoError(t, e.ClearCache(ctx))

	got, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, model.LevelInfo, e.State.Snapshot().Notification.Level)
}

func TestEffects_Run(t *testing.T) {
	e := &Effects{
		State:    NewState(nil),
		UserID:   "u1",
		Profiles: &fakeProfiles{profile: model.UserProfile{Name: "Asha"}},
		Tariffs:  &fakeTariffs{err: errors.New("tariff down")},
		Weather:  &fakeWeather{weather: model.Weather{Name: "Pune"}},
		Location: &Location{},
	}

	err := e.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "tariff down")
	snap := e.State.Snapshot()
	assert.Equal(t, "Asha", snap.UserName)
	assert.Equal(t, "Pune", snap.LocationName)
	assert.False(t, snap.Loading)
}
