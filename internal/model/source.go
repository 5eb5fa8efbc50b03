package model

import "strings"

// Source identifies the upstream system an event came from.
type Source string

const (
	SourceTeams    Source = "TEAMS"
	SourceOutlook  Source = "OUTLOOK"
	SourceCalendar Source = "CALENDAR"
)

// ParseSource maps a URL path parameter onto a known Source.
// Returns false for anything outside the known set.
func ParseSource(s string) (Source, bool) {
	switch Source(strings.ToUpper(s)) {
	case SourceTeams:
		return SourceTeams, true
	case SourceOutlook:
		return SourceOutlook, true
	case SourceCalendar:
		return SourceCalendar, true
	default:
		return "", false
	}
}
