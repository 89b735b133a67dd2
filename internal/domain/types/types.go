// Package types contains the response shapes shared by the service and the HTTP API.
package types

import "time"

// DateLayout is the date format used in every response.
const DateLayout = "2006-01-02"

// Meta describes the snapshot and reference date a response was computed from.
type Meta struct {
	Team          string `json:"team,omitempty"`
	Fingerprint   string `json:"fingerprint"`
	ReferenceDate string `json:"reference_date"`
	Origin        string `json:"origin"`
	Warning       string `json:"warning,omitempty"`
}

// Entry represents a leaderboard entry
type Entry struct {
	Rank  int     `json:"rank"`
	ID    string  `json:"id"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// Leaderboard is a ranked list of entities for one role and metric.
type Leaderboard struct {
	Meta
	Role    string  `json:"role"`
	Metric  string  `json:"metric"`
	Total   int     `json:"total"`
	Entries []Entry `json:"entries"`
}

// Position is a single entity's place on a leaderboard.
type Position struct {
	Meta
	Role   string `json:"role"`
	Metric string `json:"metric"`
	Total  int    `json:"total"`
	Entry
}

// RatioEntry is one entity's ratio. Ratio is null when the denominator is empty.
type RatioEntry struct {
	ID          string   `json:"id"`
	Ratio       *float64 `json:"ratio"`
	Numerator   float64  `json:"numerator"`
	Denominator float64  `json:"denominator"`
	Count       int      `json:"count"`
}

// Ratios lists per-entity ratios ordered by id.
type Ratios struct {
	Meta
	Role     string `json:"role"`
	Weighted bool   `json:"weighted"`
	Adjusted bool   `json:"adjusted"`
	// Numerator and Denominator list the counted outcomes; an empty
	// Denominator means every outcome.
	Numerator   []string     `json:"numerator"`
	Denominator []string     `json:"denominator,omitempty"`
	Entries     []RatioEntry `json:"entries"`
}

// TrendPoint is one period of a series. Value is null for undefined ratios.
type TrendPoint struct {
	Period string   `json:"period"`
	Start  string   `json:"start"`
	Value  *float64 `json:"value"`
	Count  int      `json:"count"`
}

// Trend is an ordered series for one entity, or the whole log when Entity is empty.
type Trend struct {
	Meta
	Entity string       `json:"entity,omitempty"`
	Role   string       `json:"role"`
	Bucket string       `json:"bucket"`
	Metric string       `json:"metric"`
	Fill   string       `json:"fill"`
	Points []TrendPoint `json:"points"`
}

// Distribution counts events per category value.
type Distribution struct {
	Meta
	Entity  string             `json:"entity,omitempty"`
	Role    string             `json:"role"`
	Field   string             `json:"field"`
	Outcome string             `json:"outcome,omitempty"`
	Total   int                `json:"total"`
	Counts  map[string]int     `json:"counts"`
	Shares  map[string]float64 `json:"shares"`
}

// SessionRecord is the best single-day tally.
type SessionRecord struct {
	ID    string `json:"id"`
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// HoldersRecord is a superlative shared by one or more entities.
type HoldersRecord struct {
	IDs   []string `json:"ids"`
	Value int      `json:"value"`
}

// DayRecord is a calendar day with its event count.
type DayRecord struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// RivalryRecord is the most frequent shooter and keeper pairing.
type RivalryRecord struct {
	Shooter    string `json:"shooter"`
	Keeper     string `json:"keeper"`
	Encounters int    `json:"encounters"`
}

// Records collects the superlatives of the log. Absent records are null.
type Records struct {
	Meta
	MostGoalsInSession *SessionRecord `json:"most_goals_in_session"`
	MostSavesInSession *SessionRecord `json:"most_saves_in_session"`
	LongestGoalStreak  HoldersRecord  `json:"longest_goal_streak"`
	MostSessions       HoldersRecord  `json:"most_sessions"`
	FewestSessions     HoldersRecord  `json:"fewest_sessions"`
	BusiestDay         *DayRecord     `json:"busiest_day"`
	BiggestRivalry     *RivalryRecord `json:"biggest_rivalry"`
}

// Penalty is one event as exposed to clients.
type Penalty struct {
	Date    string `json:"date"`
	Shooter string `json:"shooter"`
	Keeper  string `json:"keeper"`
	Outcome string `json:"outcome"`
	Zone    string `json:"zone,omitempty"`
}

// Recent lists the newest penalties first.
type Recent struct {
	Meta
	Penalties []Penalty `json:"penalties"`
}

// Overview summarizes the log, optionally restricted to a window.
type Overview struct {
	Meta
	From     string         `json:"from,omitempty"`
	To       string         `json:"to,omitempty"`
	Total    int            `json:"total"`
	Outcomes map[string]int `json:"outcomes"`
	GoalRate *float64       `json:"goal_rate"`
	Shooters int            `json:"shooters"`
	Keepers  int            `json:"keepers"`
}

// Stats describes the loaded snapshot.
type Stats struct {
	Meta
	Location string   `json:"location"`
	LoadedAt string   `json:"loaded_at"`
	Events   int      `json:"events"`
	Shooters int      `json:"shooters"`
	Keepers  int      `json:"keepers"`
	Earliest string   `json:"earliest,omitempty"`
	Latest   string   `json:"latest,omitempty"`
	Cache    []string `json:"cache"`
	Teams    []string `json:"teams"`
}

// Reload reports the outcome of a manual reload.
type Reload struct {
	Meta
	Events  int  `json:"events"`
	Changed bool `json:"changed"`
}

// Float returns a pointer to v when defined, nil otherwise.
func Float(v float64, defined bool) *float64 {
	if !defined {
		return nil
	}
	return &v
}

// Date formats t with DateLayout. The zero time renders as "".
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
