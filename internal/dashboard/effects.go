package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"energy_dashboard/internal/cache"
	"energy_dashboard/internal/ingest"
	"energy_dashboard/internal/model"
	"energy_dashboard/internal/observability/metrics"
	"energy_dashboard/internal/profile"
	"energy_dashboard/internal/stats"
)

// ErrNotCached marks an upload that was applied to the dashboard but could
// not be written to the cache.
var ErrNotCached = errors.New("energy data not cached")

// ProfileSource looks up the signed-in user's profile document.
type ProfileSource interface {
	Get(ctx context.Context, userID string) (model.UserProfile, error)
}

type WeatherSource interface {
	Fetch(ctx context.Context, lat, lon float64) (model.Weather, error)
}

type TariffSource interface {
	History(ctx context.Context) ([]model.TOURate, error)
}

type DiscomSource interface {
	Lookup(ctx context.Context, providerID string) (model.Discom, error)
}

// Location is a fixed coordinate pair used for the weather lookup.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Effects runs the dashboard's asynchronous work and commits results into
// State. Nil sources disable the corresponding effect.
type Effects struct {
	State  *State
	Parser ingest.Parser
	Cache  *cache.Cache

	UserID   string
	Location *Location

	Profiles ProfileSource
	Weather  WeatherSource
	Tariffs  TariffSource
	Discoms  DiscomSource
}

// Run starts every startup effect concurrently and waits for them. Each
// failure is logged; the first one is returned.
func (e *Effects) Run(ctx context.Context) error {
	var g errgroup.Group
	run := func(name string, fn func(context.Context) error) {
		g.Go(func() error {
			err := fn(ctx)
			if err != nil && !errors.Is(err, ErrClosed) {
				log.Printf("dashboard: %s: %v", name, err)
				return err
			}
			return nil
		})
	}

	run("load cache", e.LoadCache)
	run("fetch weather", e.FetchWeather)
	run("init user", e.InitUser)
	run("fetch TOU history", e.FetchTOUHistory)
	return g.Wait()
}

// LoadCache restores the last uploaded collection, if any. An upload that
// lands while the cache is being read wins.
func (e *Effects) LoadCache(ctx context.Context) error {
	if e.Cache == nil {
		return nil
	}
	rev := e.State.Revision()
	records, err := e.Cache.Load(ctx)
	metrics.IncCacheOp("load", err)
	if err != nil {
		return fmt.Errorf("loading cached energy data: %w", err)
	}
	if len(records) == 0 {
		return nil
	}
	if err := e.commit(ctx); err != nil {
		return err
	}
	err = e.State.RestoreDataset(rev, e.Cache.Key()+".csv", records)
	if errors.Is(err, ErrSuperseded) {
		log.Printf("dashboard: cached energy data superseded by upload")
		return nil
	}
	return err
}

// FetchWeather looks up the weather for the configured location.
func (e *Effects) FetchWeather(ctx context.Context) error {
	if e.Weather == nil || e.Location == nil {
		return nil
	}
	w, err := e.Weather.Fetch(ctx, e.Location.Latitude, e.Location.Longitude)
	metrics.IncProviderCall("weather", err)
	if err != nil {
		return fmt.Errorf("fetching weather: %w", err)
	}
	if err := e.commit(ctx); err != nil {
		return err
	}
	return e.State.SetWeather(w)
}

// InitUser loads the user profile and then the DISCOM of the user's
// electricity provider. A profile failure is logged and leaves the
// dashboard showing no user data. Loading is cleared however it ends.
func (e *Effects) InitUser(ctx context.Context) error {
	defer e.State.SetLoading(false)

	if e.Profiles == nil || e.UserID == "" {
		return nil
	}

	p, err := e.Profiles.Get(ctx, e.UserID)
	if errors.Is(err, profile.ErrNotFound) {
		return nil
	}
	if err != nil {
		log.Printf("Error fetching user data: %v", err)
		return nil
	}
	if err := e.commit(ctx); err != nil {
		return err
	}
	if err := e.State.SetUser(p); err != nil {
		return err
	}

	if e.Discoms == nil || p.ElectricityProvider == "" {
		return nil
	}
	d, err := e.Discoms.Lookup(ctx, p.ElectricityProvider)
	metrics.IncProviderCall("discom", err)
	if err != nil {
		return fmt.Errorf("fetching DISCOM %q: %w", p.ElectricityProvider, err)
	}
	if err := e.commit(ctx); err != nil {
		return err
	}
	return e.State.SetDiscom(d)
}

// FetchTOUHistory stores the tariff history and announces its newest rate.
func (e *Effects) FetchTOUHistory(ctx context.Context) error {
	if e.Tariffs == nil {
		return nil
	}
	history, err := e.Tariffs.History(ctx)
	metrics.IncProviderCall("tariff", err)
	if err != nil {
		return fmt.Errorf("fetching TOU history: %w", err)
	}
	if len(history) == 0 {
		return errors.New("fetching TOU history: empty history")
	}
	if err := e.commit(ctx); err != nil {
		return err
	}
	if err := e.State.Notify(model.Notification{
		Title:       "Latest TOU rate fetched",
		Description: fmt.Sprintf("Current TOU rate: ₹%v /kWh", history[0].Rate),
		Level:       model.LevelSuccess,
	}); err != nil {
		return err
	}
	return e.State.SetTOUHistory(history)
}

// Upload parses a CSV file, replaces the dashboard collection with it and
// caches it. A cache failure does not undo the upload; it is reported as an
// error notification and returned wrapped in ErrNotCached.
func (e *Effects) Upload(ctx context.Context, source, fileName string, r io.Reader) (stats.Summary, error) {
	start := time.Now()
	summary, err := e.upload(ctx, fileName, r)
	metrics.ObserveUpload(source, err, time.Since(start))
	return summary, err
}

func (e *Effects) upload(ctx context.Context, fileName string, r io.Reader) (stats.Summary, error) {
	parser := e.Parser
	if parser == nil {
		parser = &ingest.CSVParser{}
	}
	records, err := ingest.Load(parser, r)
	if err != nil {
		return stats.Summary{}, fmt.Errorf("reading %s: %w", fileName, err)
	}
	metrics.AddRows(len(records), ingest.InvalidFields(records))

	if err := e.commit(ctx); err != nil {
		return stats.Summary{}, err
	}
	if err := e.State.SetDataset(fileName, records); err != nil {
		return stats.Summary{}, err
	}
	summary := stats.Compute(records)
	log.Printf("Loaded %d records from %s", len(records), fileName)

	if e.Cache == nil {
		return summary, nil
	}
	err = e.Cache.Save(ctx, records)
	metrics.IncCacheOp("save", err)
	if err != nil {
		e.State.Notify(model.Notification{
			Title:       "Energy data not cached",
			Description: err.Error(),
			Level:       model.LevelError,
		})
		return summary, fmt.Errorf("%w: %s: %w", ErrNotCached, fileName, err)
	}
	return summary, nil
}

// ClearCache drops the cached collection. The records on screen stay until
// the next upload.
func (e *Effects) ClearCache(ctx context.Context) error {
	if e.Cache == nil {
		return nil
	}
	err := e.Cache.Clear(ctx)
	metrics.IncCacheOp("clear", err)
	if err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return e.State.Notify(model.Notification{
		Title: "Cached energy data cleared",
		Level: model.LevelInfo,
	})
}

// commit reports whether a result may still be written: the context must
// be live and the state open.
func (e *Effects) commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !e.State.Alive() {
		return ErrClosed
	}
	return nil
}
