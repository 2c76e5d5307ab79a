package host

import (
	"errors"
	"testing"
)

func TestMemory_ResolveBySlotAndCallsign(t *testing.T) {
	m := NewMemory()
	m.Join(Player{Slot: 3, Callsign: "Bob"})

	h, err := m.Resolve(t.Context(), "3")
	if err != nil {
		t.Fatalf("Resolve(3): %v", err)
	}
	if h.Callsign() != "Bob" {
		t.Fatalf("callsign = %q, want Bob", h.Callsign())
	}
	h.Release()

	h, err = m.Resolve(t.Context(), "bOB")
	if err != nil {
		t.Fatalf("Resolve(bOB): %v", err)
	}
	if h.Slot() != 3 {
		t.Fatalf("slot = %d, want 3", h.Slot())
	}
	h.Release()
	h.Release()

	if n := m.OpenHandles(); n != 0 {
		t.Fatalf("open handles = %d, want 0", n)
	}

	if _, err := m.Resolve(t.Context(), "nobody"); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestMemory_ScoreMutation(t *testing.T) {
	m := NewMemory()
	m.Join(Player{Slot: 1, Callsign: "A"})
	ctx := t.Context()

	_ = m.SetWins(ctx, 1, 5)
	_ = m.AddWins(ctx, 1, 2)
	_ = m.SetLosses(ctx, 1, 3)
	_ = m.AddTeamKills(ctx, 1, 1)

	p, _ := m.Player(1)
	if p.Wins != 7 || p.Losses != 3 || p.TeamKills != 1 {
		t.Fatalf("unexpected score %+v", p)
	}

	_ = m.ResetScore(ctx, 1)
	p, _ = m.Player(1)
	if p.Wins != 0 || p.Losses != 0 || p.TeamKills != 0 {
		t.Fatalf("score not reset: %+v", p)
	}

	if err := m.SetWins(ctx, 9, 1); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound for empty slot, got %v", err)
	}
}
