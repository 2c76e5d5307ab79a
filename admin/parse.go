package admin

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUsage is returned for a malformed command line.
	ErrUsage = errors.New("admin: usage")
	// ErrUnknownStat is returned for a score type other than wins, losses or
	// team kills.
	ErrUnknownStat = errors.New("admin: unknown score type")
	// ErrInvalidNumber is returned when the amount is not a valid integer.
	ErrInvalidNumber = errors.New("admin: invalid number")
)

const usage = "Usage: /score <set|increase> <wins|losses|teamkills> <player> <amount> | /score clear <player>"

// Action is the score command verb.
type Action string

const (
	ActionSet      Action = "set"
	ActionIncrease Action = "increase"
	ActionClear    Action = "clear"
)

// Stat is the counter a set or increase applies to.
type Stat int

const (
	StatWins Stat = iota + 1
	StatLosses
	StatTeamKills
)

// noun is the word used in notifications ("kill count", "death count").
func (s Stat) noun() string {
	switch s {
	case StatWins:
		return "kill"
	case StatLosses:
		return "death"
	case StatTeamKills:
		return "teamkill"
	default:
		return "score"
	}
}

func parseStat(s string) (Stat, bool) {
	switch strings.ToLower(s) {
	case "wins", "kills":
		return StatWins, true
	case "losses", "deaths":
		return StatLosses, true
	case "teamkills", "tks":
		return StatTeamKills, true
	default:
		return 0, false
	}
}

// Request is a parsed score command.
type Request struct {
	Action Action
	Stat   Stat
	// Target is a slot number or callsign, resolved by the host.
	Target string
	Value  int
}

// Parse reads the arguments following "/score".
//
//	set <stat> <player> <n>
//	increase <stat> <player> <n>
//	clear <player>
//
// The amount must be an integer; set additionally rejects negatives.
func Parse(args []string) (Request, error) {
	if len(args) == 0 {
		return Request{}, ErrUsage
	}

	action := Action(strings.ToLower(args[0]))
	switch action {
	case ActionClear:
		if len(args) != 2 {
			return Request{}, ErrUsage
		}
		return Request{Action: ActionClear, Target: args[1]}, nil

	case ActionSet, ActionIncrease:
		if len(args) != 4 {
			return Request{}, ErrUsage
		}
		stat, ok := parseStat(args[1])
		if !ok {
			return Request{}, fmt.Errorf("%w %q, expected wins, losses or teamkills", ErrUnknownStat, args[1])
		}
		n, err := strconv.Atoi(strings.TrimSpace(args[3]))
		if err != nil {
			return Request{}, fmt.Errorf("%w %q", ErrInvalidNumber, args[3])
		}
		if action == ActionSet && n < 0 {
			return Request{}, fmt.Errorf("%w %q, must not be negative", ErrInvalidNumber, args[3])
		}
		return Request{Action: action, Stat: stat, Target: args[2], Value: n}, nil

	default:
		return Request{}, ErrUsage
	}
}
