package api

import (
	"time"

	"github.com/mjashby/forage/internal/history"
	"github.com/mjashby/forage/internal/match"
	"github.com/mjashby/forage/internal/week"
)

// MatchRequest is the request body for matching free text.
type MatchRequest struct {
	Text string `json:"text"`
}

// LogRequest is the request body for logging confirmed foods.
type LogRequest struct {
	Aliases []string `json:"aliases"`
}

// WeekStartSetting carries the week-start weekday, 0=Sunday through 6=Saturday.
type WeekStartSetting struct {
	WeekStart int `json:"week_start"`
}

// AliasItem is one recognizable alias and the food it resolves to.
type AliasItem struct {
	Alias    string `json:"alias"`
	Food     string `json:"food"`
	Category string `json:"category"`
}

// EventItem is one logged consumption event.
type EventItem struct {
	FoodName     string    `json:"foodName"`
	ConsumedName string    `json:"consumedName"`
	Date         time.Time `json:"date"`
}

// WeekItem is one computed week window with goal progress.
type WeekItem struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Foods []string  `json:"foods"`
	Count int       `json:"count"`
	Goal  int       `json:"goal"`
	Met   bool      `json:"met"`
}

func toAliasItems(aliases []match.Alias) []AliasItem {
	out := make([]AliasItem, len(aliases))
	for i, a := range aliases {
		out[i] = AliasItem{Alias: a.Original, Food: a.Food.Name, Category: a.Food.Category}
	}
	return out
}

func toEventItems(events []history.Event) []EventItem {
	out := make([]EventItem, len(events))
	for i, e := range events {
		out[i] = EventItem{FoodName: e.Food.Name, ConsumedName: e.ConsumedName, Date: e.Date}
	}
	return out
}

func toWeekItem(e week.Entry, goal int) WeekItem {
	foods := make([]string, len(e.Foods))
	for i, f := range e.Foods {
		foods[i] = f.Name
	}
	return WeekItem{
		Start: e.Start,
		End:   e.End,
		Foods: foods,
		Count: e.Count(),
		Goal:  goal,
		Met:   e.Count() >= goal,
	}
}

func toWeekItems(entries []week.Entry, goal int) []WeekItem {
	out := make([]WeekItem, len(entries))
	for i, e := range entries {
		out[i] = toWeekItem(e, goal)
	}
	return out
}
