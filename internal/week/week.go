// Package week buckets the event log into 7-day windows under a configurable
// week-start weekday and computes distinct-food counts per window.
package week

import (
	"sort"
	"time"

	"github.com/mjashby/forage/internal/catalog"
	"github.com/mjashby/forage/internal/history"
	"github.com/mjashby/forage/internal/settings"
)

// Entry is one computed week window. Derived on demand, never stored.
type Entry struct {
	Start time.Time       // first instant of the week's first day
	End   time.Time       // last instant of the week's last day
	Foods []*catalog.Food // distinct foods consumed in [Start, End], by name
}

// Count returns the number of distinct foods in the window.
func (e Entry) Count() int {
	return len(e.Foods)
}

// StartOfWeek returns the first day of the week containing t, time zeroed,
// given the configured first weekday (0=Sunday..6=Saturday).
func StartOfWeek(t time.Time, weekStart int) time.Time {
	offset := (int(t.Weekday()) - weekStart + 7) % 7
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

// EndOfWeek returns the last instant (23:59:59.999) of the week containing t.
func EndOfWeek(t time.Time, weekStart int) time.Time {
	d := StartOfWeek(t, weekStart).AddDate(0, 0, 6)
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, int(999*time.Millisecond), d.Location())
}

// Aggregator computes week entries from the event log under the current
// week-start setting.
type Aggregator struct {
	log      *history.Log
	settings *settings.Settings
	now      func() time.Time
}

// NewAggregator creates an aggregator over the given log and settings.
// A nil now falls back to time.Now.
func NewAggregator(log *history.Log, set *settings.Settings, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{log: log, settings: set, now: now}
}

// EntryForDate computes the week window containing date and the distinct set
// of foods consumed within it, sorted by food name ascending.
func (a *Aggregator) EntryForDate(date time.Time) Entry {
	ws := a.settings.WeekStart()
	entry := Entry{
		Start: StartOfWeek(date, ws),
		End:   EndOfWeek(date, ws),
	}

	seen := make(map[string]struct{})
	for _, e := range a.log.Events() {
		if e.Date.Before(entry.Start) || e.Date.After(entry.End) {
			continue
		}
		if _, dup := seen[e.Food.Name]; dup {
			continue
		}
		seen[e.Food.Name] = struct{}{}
		entry.Foods = append(entry.Foods, e.Food)
	}

	sort.Slice(entry.Foods, func(i, j int) bool {
		return entry.Foods[i].Name < entry.Foods[j].Name
	})
	return entry
}

// Current returns the week entry for now.
func (a *Aggregator) Current() Entry {
	return a.EntryForDate(a.now())
}

// PerWeek returns one entry per calendar week, most recent first, from the
// week containing now back to the week containing the oldest event. Weeks
// with no events appear with an empty food set. An empty log yields nil.
func (a *Aggregator) PerWeek() []Entry {
	oldest, ok := a.log.OldestDate()
	if !ok {
		return nil
	}

	ws := a.settings.WeekStart()
	var out []Entry
	for end := EndOfWeek(a.now(), ws); !end.Before(oldest); end = end.AddDate(0, 0, -7) {
		out = append(out, a.EntryForDate(end))
	}
	return out
}
