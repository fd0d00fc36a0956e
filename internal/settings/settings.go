// Package settings persists user preferences in the key-value store.
package settings

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/mjashby/forage/internal/kv"
)

// WeekStartKey is the kv store key for the week-start weekday.
const WeekStartKey = "week_start"

// DefaultWeekStart is Sunday.
const DefaultWeekStart = 0

// Settings holds mutable user preferences backed by the store.
type Settings struct {
	mu        sync.RWMutex
	store     kv.Store
	weekStart int
}

// Load reads persisted settings. A missing week-start value means the
// default; a malformed or out-of-range one is logged and replaced by the
// default rather than propagated.
func Load(store kv.Store, logger *slog.Logger) (*Settings, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Settings{store: store, weekStart: DefaultWeekStart}

	raw, found, err := store.Get(WeekStartKey)
	if err != nil {
		return nil, fmt.Errorf("settings: load: %w", err)
	}
	if !found {
		return s, nil
	}

	day, err := strconv.Atoi(raw)
	if err != nil || day < 0 || day > 6 {
		logger.Warn("settings: invalid week start, using default",
			slog.String("value", raw),
			slog.Int("default", DefaultWeekStart))
		return s, nil
	}

	s.weekStart = day
	return s, nil
}

// WeekStart returns the configured first day of the week, 0=Sunday through
// 6=Saturday.
func (s *Settings) WeekStart() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weekStart
}

// SetWeekStart updates and persists the week-start weekday. The change
// applies retroactively: all week boundaries are recomputed under the new
// setting.
func (s *Settings) SetWeekStart(day int) error {
	if day < 0 || day > 6 {
		return fmt.Errorf("settings: week start %d out of range 0-6", day)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Set(WeekStartKey, strconv.Itoa(day)); err != nil {
		return fmt.Errorf("settings: persist week start: %w", err)
	}
	s.weekStart = day
	return nil
}
