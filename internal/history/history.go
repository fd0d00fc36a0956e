// Package history maintains the append-only log of consumption events,
// persisted as JSON in the key-value store and kept sorted most-recent-first.
package history

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mjashby/forage/internal/apperr"
	"github.com/mjashby/forage/internal/catalog"
	"github.com/mjashby/forage/internal/kv"
	"github.com/mjashby/forage/internal/match"
)

// Key is the kv store key the serialized log lives under.
const Key = "history"

// dateLayout is RFC 3339 with millisecond precision, matching the precision
// events are truncated to at creation time.
const dateLayout = "2006-01-02T15:04:05.000Z07:00"

// Event is one confirmed consumption. Immutable once appended.
type Event struct {
	Food         *catalog.Food
	ConsumedName string // the alias the user actually said or typed
	Date         time.Time
}

// record is the persisted JSON shape of an Event. The food is stored by name
// and re-resolved against the current catalog at load time.
type record struct {
	FoodName     string `json:"foodName"`
	ConsumedName string `json:"consumedName"`
	Date         string `json:"date"`
}

// Log owns the in-memory event sequence and its persistence.
type Log struct {
	mu     sync.RWMutex
	store  kv.Store
	events []Event
	now    func() time.Time
}

// Load reads the persisted log and resolves every event's food name against
// the catalog. An unresolvable name fails the whole load: the stored history
// no longer matches the catalog and silently shortening it would corrupt the
// weekly counts.
func Load(store kv.Store, cat *catalog.Catalog) (*Log, error) {
	l := &Log{store: store, now: time.Now}

	raw, found, err := store.Get(Key)
	if err != nil {
		return nil, fmt.Errorf("history: load: %w", err)
	}
	if !found || raw == "" {
		return l, nil
	}

	var recs []record
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, fmt.Errorf("history: decode: %w", err)
	}

	events := make([]Event, 0, len(recs))
	for _, r := range recs {
		f, ok := cat.FindForName(r.FoodName)
		if !ok {
			return nil, fmt.Errorf("history: resolve %q: %w", r.FoodName, apperr.ErrUnknownFood)
		}
		d, err := time.Parse(time.RFC3339Nano, r.Date)
		if err != nil {
			return nil, fmt.Errorf("history: parse date %q: %w", r.Date, err)
		}
		events = append(events, Event{Food: f, ConsumedName: r.ConsumedName, Date: d})
	}

	l.events = events
	l.sortLocked()
	return l, nil
}

// Add converts confirmed matches into events timestamped now, appends them,
// re-sorts, and persists. Returns the created events.
func (l *Log) Add(matches []match.Alias) ([]Event, error) {
	if len(matches) == 0 {
		return nil, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().Truncate(time.Millisecond)
	created := make([]Event, 0, len(matches))
	for _, m := range matches {
		e := Event{Food: m.Food, ConsumedName: m.Original, Date: now}
		created = append(created, e)
		l.events = append(l.events, e)
	}
	l.sortLocked()

	if err := l.persistLocked(); err != nil {
		return nil, err
	}
	return created, nil
}

// Clear empties the log and persists the empty state.
func (l *Log) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
	return l.persistLocked()
}

// Events returns a copy of the log, sorted by date descending.
func (l *Log) Events() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of recorded events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// OldestDate returns the date of the oldest event, if any.
func (l *Log) OldestDate() (time.Time, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.events) == 0 {
		return time.Time{}, false
	}
	return l.events[len(l.events)-1].Date, true
}

// Rebind re-resolves every event's food against a freshly imported catalog.
// It fails without modifying the log when any name no longer resolves, so a
// bad catalog reload cannot orphan history.
func (l *Log) Rebind(cat *catalog.Catalog) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rebound := make([]*catalog.Food, len(l.events))
	for i, e := range l.events {
		f, ok := cat.FindForName(e.Food.Name)
		if !ok {
			return fmt.Errorf("history: rebind %q: %w", e.Food.Name, apperr.ErrUnknownFood)
		}
		rebound[i] = f
	}
	for i := range l.events {
		l.events[i].Food = rebound[i]
	}
	return nil
}

// sortLocked sorts events by date descending; equal timestamps keep their
// relative insertion order.
func (l *Log) sortLocked() {
	sort.SliceStable(l.events, func(i, j int) bool {
		return l.events[i].Date.After(l.events[j].Date)
	})
}

func (l *Log) persistLocked() error {
	recs := make([]record, len(l.events))
	for i, e := range l.events {
		recs[i] = record{
			FoodName:     e.Food.Name,
			ConsumedName: e.ConsumedName,
			Date:         e.Date.Format(dateLayout),
		}
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("history: encode: %w", err)
	}
	if err := l.store.Set(Key, string(data)); err != nil {
		return fmt.Errorf("history: persist: %w", err)
	}
	return nil
}
