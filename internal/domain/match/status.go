package match

import "strings"

var footballDataStatuses = map[string]Status{
	"SCHEDULED":        StatusScheduled,
	"TIMED":            StatusScheduled,
	"IN_PLAY":          StatusLive,
	"PAUSED":           StatusLive,
	"LIVE":             StatusLive,
	"EXTRA_TIME":       StatusLive,
	"PENALTY_SHOOTOUT": StatusLive,
	"FINISHED":         StatusFinished,
	"AWARDED":          StatusFinished,
	"POSTPONED":        StatusPostponed,
	"SUSPENDED":        StatusPostponed,
	"CANCELLED":        StatusCancelled,
}

var apiFootballStatuses = map[string]Status{
	"TBD":  StatusScheduled,
	"NS":   StatusScheduled,
	"1H":   StatusLive,
	"HT":   StatusLive,
	"2H":   StatusLive,
	"ET":   StatusLive,
	"BT":   StatusLive,
	"P":    StatusLive,
	"LIVE": StatusLive,
	"INT":  StatusLive,
	"FT":   StatusFinished,
	"AET":  StatusFinished,
	"PEN":  StatusFinished,
	"AWD":  StatusFinished,
	"WO":   StatusFinished,
	"PST":  StatusPostponed,
	"SUSP": StatusPostponed,
	"CANC": StatusCancelled,
	"ABD":  StatusCancelled,
}

var statusTables = map[string]map[string]Status{
	SourceFootballData: footballDataStatuses,
	SourceAPIFootball:  apiFootballStatuses,
}

// NormalizeStatus maps a provider status to the canonical vocabulary. Unknown
// providers or values map to StatusScheduled.
func NormalizeStatus(providerStatus, source string) Status {
	table, ok := statusTables[strings.TrimSpace(source)]
	if !ok {
		return StatusScheduled
	}
	if status, ok := table[strings.ToUpper(strings.TrimSpace(providerStatus))]; ok {
		return status
	}
	return StatusScheduled
}

// KnownStatus reports whether the provider value is in its mapping table.
func KnownStatus(providerStatus, source string) bool {
	table, ok := statusTables[strings.TrimSpace(source)]
	if !ok {
		return false
	}
	_, ok = table[strings.ToUpper(strings.TrimSpace(providerStatus))]
	return ok
}

var statusRank = map[Status]int{
	StatusScheduled: 0,
	StatusLive:      1,
	StatusFinished:  2,
}

// Transition returns the status to store when a record currently at current
// receives next. Progression is scheduled -> live -> finished; postponed and
// cancelled are terminal and only reachable from scheduled or live. ok is
// false when next was refused and current is kept.
func Transition(current, next Status) (Status, bool) {
	if !next.Valid() {
		return current, false
	}
	if current == "" || current == next {
		return next, true
	}
	if current.Terminal() {
		return current, false
	}
	if next == StatusPostponed || next == StatusCancelled {
		return next, true
	}
	if statusRank[next] < statusRank[current] {
		return current, false
	}
	return next, true
}
