// Package host declares the game-server services the score restorer calls
// into. The server owns the live players; this module only asks it to change
// scores, deliver messages, check permissions and look players up.
package host

import (
	"context"
	"errors"
)

// ErrPlayerNotFound is returned by Roster.Resolve when no live player
// matches the reference.
var ErrPlayerNotFound = errors.New("host: player not found")

// Group addresses a broadcast audience.
type Group string

// GroupAdministrators reaches every connected administrator.
const GroupAdministrators Group = "administrators"

// ScoreMutator changes the counters of a live player identified by slot.
type ScoreMutator interface {
	SetWins(ctx context.Context, slot, n int) error
	SetLosses(ctx context.Context, slot, n int) error
	SetTeamKills(ctx context.Context, slot, n int) error

	AddWins(ctx context.Context, slot, delta int) error
	AddLosses(ctx context.Context, slot, delta int) error
	AddTeamKills(ctx context.Context, slot, delta int) error

	// ResetScore zeroes all three counters.
	ResetScore(ctx context.Context, slot int) error
}

// Messenger delivers server text lines.
type Messenger interface {
	SendToPlayer(ctx context.Context, slot int, text string) error
	SendToGroup(ctx context.Context, group Group, text string) error
}

// Permissions answers capability checks for a player.
type Permissions interface {
	HasPerm(ctx context.Context, slot int, perm string) bool
}

// Handle is a resolved reference to a live player. It must be released once
// the caller is done with it.
type Handle interface {
	Slot() int
	Callsign() string
	Release()
}

// Roster resolves players.
type Roster interface {
	// Resolve finds a player by slot number or callsign. It returns
	// ErrPlayerNotFound when nobody matches.
	Resolve(ctx context.Context, ref string) (Handle, error)

	// Callsign returns the callsign of the player in slot, or "" when the
	// slot is empty.
	Callsign(ctx context.Context, slot int) string
}
