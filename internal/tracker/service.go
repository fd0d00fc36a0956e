// Package tracker coordinates the catalog, match index, event log, and week
// aggregation behind one service boundary.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mjashby/forage/internal/apperr"
	"github.com/mjashby/forage/internal/catalog"
	"github.com/mjashby/forage/internal/history"
	"github.com/mjashby/forage/internal/match"
	"github.com/mjashby/forage/internal/settings"
	"github.com/mjashby/forage/internal/week"
)

// Notifier receives change notifications for live clients. kind is one of
// the sse package's change kinds.
type Notifier func(kind string, detail map[string]string)

// Service owns the mutable application state. The catalog and index are
// replaced wholesale on re-import (the watcher goroutine may do this while
// HTTP requests are in flight), so reads go through an RWMutex.
type Service struct {
	mu     sync.RWMutex
	cat    *catalog.Catalog
	index  *match.Index
	log    *history.Log
	set    *settings.Settings
	agg    *week.Aggregator
	goal   int
	notify Notifier
	logger *slog.Logger
}

// NewService wires the service from already-initialized parts. notify may be
// nil. goal is the weekly distinct-food target.
func NewService(cat *catalog.Catalog, ix *match.Index, log *history.Log, set *settings.Settings, goal int, notify Notifier, logger *slog.Logger) *Service {
	if notify == nil {
		notify = func(string, map[string]string) {}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cat:    cat,
		index:  ix,
		log:    log,
		set:    set,
		agg:    week.NewAggregator(log, set, time.Now),
		goal:   goal,
		notify: notify,
		logger: logger,
	}
}

// ProcessText scans free text for known foods and returns the candidate
// matches for the user to confirm. Nothing is logged yet.
func (s *Service) ProcessText(_ context.Context, text string) []match.Alias {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.ProcessText(text)
}

// Aliases returns every known alias in alphabetical order, for the manual
// add picker.
func (s *Service) Aliases(_ context.Context) []match.Alias {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.ByName()
}

// LogFoods records the confirmed aliases as consumption events timestamped
// now. Every alias must resolve against the current index.
func (s *Service) LogFoods(_ context.Context, aliases []string) ([]history.Event, error) {
	s.mu.RLock()
	matches := make([]match.Alias, 0, len(aliases))
	for _, raw := range aliases {
		a, ok := s.index.Lookup(raw)
		if !ok {
			s.mu.RUnlock()
			return nil, fmt.Errorf("tracker: alias %q: %w", raw, apperr.ErrNotFound)
		}
		matches = append(matches, a)
	}
	s.mu.RUnlock()

	created, err := s.log.Add(matches)
	if err != nil {
		return nil, err
	}
	if len(created) > 0 {
		s.notify("log.appended", map[string]string{"count": fmt.Sprintf("%d", len(created))})
	}
	return created, nil
}

// History returns all recorded events, most recent first.
func (s *Service) History(_ context.Context) []history.Event {
	return s.log.Events()
}

// ClearHistory empties the event log.
func (s *Service) ClearHistory(_ context.Context) error {
	if err := s.log.Clear(); err != nil {
		return err
	}
	s.notify("log.cleared", nil)
	return nil
}

// WeekForDate returns the week entry containing date.
func (s *Service) WeekForDate(_ context.Context, date time.Time) week.Entry {
	return s.agg.EntryForDate(date)
}

// CurrentWeek returns this week's entry.
func (s *Service) CurrentWeek(_ context.Context) week.Entry {
	return s.agg.Current()
}

// Weeks returns per-week entries from now back to the oldest event,
// most recent first.
func (s *Service) Weeks(_ context.Context) []week.Entry {
	return s.agg.PerWeek()
}

// Goal returns the weekly distinct-food target.
func (s *Service) Goal() int {
	return s.goal
}

// WeekStart returns the configured first weekday (0=Sunday..6).
func (s *Service) WeekStart(_ context.Context) int {
	return s.set.WeekStart()
}

// SetWeekStart updates the week-start setting. Past weeks are recomputed
// under the new boundary on the next read.
func (s *Service) SetWeekStart(_ context.Context, day int) error {
	return s.set.SetWeekStart(day)
}

// CatalogSize returns the number of catalog entries.
func (s *Service) CatalogSize(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat.Len()
}

// ReloadCatalog replaces the catalog and index from fresh rows. The event
// log is rebound to the new catalog first; if any persisted food no longer
// resolves, the reload is rejected and the previous catalog stays active.
func (s *Service) ReloadCatalog(_ context.Context, rws [][]string) (catalog.ImportStats, error) {
	cat, stats := catalog.Import(rws, s.logger)
	if cat.Len() == 0 {
		return stats, fmt.Errorf("tracker: reload produced empty catalog")
	}
	if err := s.log.Rebind(cat); err != nil {
		return stats, fmt.Errorf("tracker: reload: %w", err)
	}

	ix := match.NewIndex(cat)
	s.mu.Lock()
	s.cat = cat
	s.index = ix
	s.mu.Unlock()

	s.notify("catalog.imported", map[string]string{"foods": fmt.Sprintf("%d", cat.Len())})
	return stats, nil
}
