package scorerestorer

import (
	"time"

	"github.com/Keksclan/goScoreRestorer/record"
)

// Event is a host notification. The set of events is closed: it is either a
// Departure or an Arrival.
type Event interface {
	event()
	// Name is a short label used in logs, spans and metrics.
	Name() string
}

// Departure is sent when a player leaves the game.
type Departure struct {
	Slot      int
	Callsign  string
	Address   string
	Wins      int
	Losses    int
	TeamKills int
	// At is the departure time; zero means now.
	At time.Time
}

// Arrival is sent when a player joins the game.
type Arrival struct {
	Slot     int
	Callsign string
	Address  string
	// Observer is set when the player joins in a non-scoring role.
	Observer bool
	// At is the arrival time; zero means now.
	At time.Time
}

func (Departure) event() {}
func (Arrival) event()   {}

// Name implements Event.
func (Departure) Name() string { return "departure" }

// Name implements Event.
func (Arrival) Name() string { return "arrival" }

func (d Departure) record() record.Departure {
	return record.Departure{
		Callsign:  d.Callsign,
		Address:   d.Address,
		Wins:      d.Wins,
		Losses:    d.Losses,
		TeamKills: d.TeamKills,
		At:        d.At,
	}
}

func (a Arrival) record() record.Arrival {
	return record.Arrival{
		Callsign: a.Callsign,
		Address:  a.Address,
		Observer: a.Observer,
		At:       a.At,
	}
}

func callsignOf(ev Event) string {
	switch e := ev.(type) {
	case Departure:
		return e.Callsign
	case Arrival:
		return e.Callsign
	default:
		return ""
	}
}

func slotOf(ev Event) int {
	switch e := ev.(type) {
	case Departure:
		return e.Slot
	case Arrival:
		return e.Slot
	default:
		return -1
	}
}
