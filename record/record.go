// Package record implements the score record cache: it keeps a departed
// player's wins, losses and team kills for a limited time and hands them back
// when the same player rejoins from the same address.
package record

import (
	"strings"
	"time"
)

// Record is the statistics snapshot saved when a player leaves.
type Record struct {
	// Key is the normalized callsign the record is stored under.
	Key string
	// Address is the network address the player left from.
	Address   string
	Wins      int
	Losses    int
	TeamKills int
	// SavedAt is the departure time. Expiry is measured from here.
	SavedAt time.Time
}

// Empty reports whether every counter is zero.
func (r Record) Empty() bool {
	return r.Wins == 0 && r.Losses == 0 && r.TeamKills == 0
}

// expired reports whether now lies strictly past SavedAt+ttl.
func (r Record) expired(now time.Time, ttl time.Duration) bool {
	return now.After(r.SavedAt.Add(ttl))
}

// Normalize returns the identity key for a callsign: its lower-case form.
// Whitespace is significant, so "Bob " and "Bob" are different players.
func Normalize(callsign string) string {
	return strings.ToLower(callsign)
}

// Departure describes a player leaving the game.
type Departure struct {
	Callsign  string
	Address   string
	Wins      int
	Losses    int
	TeamKills int
	// At is the departure time; zero means the cache clock.
	At time.Time
}

// Arrival describes a player joining the game.
type Arrival struct {
	Callsign string
	Address  string
	// Observer is set when the player joins in a non-scoring role.
	Observer bool
	// At is the arrival time; zero means the cache clock.
	At time.Time
}

// DepartOutcome reports what Depart did with a departure.
type DepartOutcome int

const (
	// Saved means a new record was stored.
	Saved DepartOutcome = iota
	// Duplicate means a live record already existed and was kept as is.
	Duplicate
	// Overwritten means a live record existed and was replaced. Only
	// reported when duplicates are configured to overwrite.
	Overwritten
	// SkippedEmpty means all counters were zero and nothing was stored.
	SkippedEmpty
	// Dropped means the store refused the record.
	Dropped
)

func (o DepartOutcome) String() string {
	switch o {
	case Saved:
		return "saved"
	case Duplicate:
		return "duplicate"
	case Overwritten:
		return "overwritten"
	case SkippedEmpty:
		return "skipped_empty"
	case Dropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Outcome reports what Arrive did with an arrival.
type Outcome int

const (
	// NoRecord means nothing was saved for the callsign.
	NoRecord Outcome = iota
	// IdentityMismatch means a record exists but was saved from another
	// address. The record is kept.
	IdentityMismatch
	// Expired means the record outlived its TTL and was deleted.
	Expired
	// DeferredRestore means the player joined as an observer. The record is
	// kept for a later arrival.
	DeferredRestore
	// Restored means the counters were handed back and the record deleted.
	Restored
)

func (o Outcome) String() string {
	switch o {
	case NoRecord:
		return "no_record"
	case IdentityMismatch:
		return "identity_mismatch"
	case Expired:
		return "expired"
	case DeferredRestore:
		return "deferred"
	case Restored:
		return "restored"
	default:
		return "unknown"
	}
}

// ArriveResult is returned by Arrive. Record is populated for Restored and
// DeferredRestore.
type ArriveResult struct {
	Outcome Outcome
	Record  Record
}
