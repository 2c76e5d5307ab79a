package host

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Player is a live player as tracked by Memory.
type Player struct {
	Slot      int
	Callsign  string
	Address   string
	Observer  bool
	Wins      int
	Losses    int
	TeamKills int
	Perms     []string
}

// Message is a line delivered through Memory.
type Message struct {
	// Slot is the recipient for player messages, -1 for group messages.
	Slot  int
	Group Group
	Text  string
}

// Memory is an in-process game server implementing every interface in this
// package. It backs the demo and the tests.
type Memory struct {
	mu       sync.Mutex
	players  map[int]*Player
	messages []Message

	// open counts handles returned by Resolve and not yet released.
	open atomic.Int64
}

var (
	_ ScoreMutator = (*Memory)(nil)
	_ Messenger    = (*Memory)(nil)
	_ Permissions  = (*Memory)(nil)
	_ Roster       = (*Memory)(nil)
)

// NewMemory creates an empty server.
func NewMemory() *Memory {
	return &Memory{players: make(map[int]*Player)}
}

// Join places p in its slot, replacing whoever was there.
func (m *Memory) Join(p Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := p
	cp.Perms = slices.Clone(p.Perms)
	m.players[p.Slot] = &cp
}

// Part removes the player in slot and returns its final state.
func (m *Memory) Part(slot int) (Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[slot]
	if !ok {
		return Player{}, false
	}
	delete(m.players, slot)
	return *p, true
}

// Player returns a copy of the player in slot.
func (m *Memory) Player(slot int) (Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[slot]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// Messages returns every delivered line in order.
func (m *Memory) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.messages)
}

// OpenHandles returns the number of unreleased handles.
func (m *Memory) OpenHandles() int {
	return int(m.open.Load())
}

func (m *Memory) update(slot int, fn func(p *Player)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[slot]
	if !ok {
		return fmt.Errorf("slot %d: %w", slot, ErrPlayerNotFound)
	}
	fn(p)
	return nil
}

// SetWins implements ScoreMutator.
func (m *Memory) SetWins(_ context.Context, slot, n int) error {
	return m.update(slot, func(p *Player) { p.Wins = n })
}

// SetLosses implements ScoreMutator.
func (m *Memory) SetLosses(_ context.Context, slot, n int) error {
	return m.update(slot, func(p *Player) { p.Losses = n })
}

// SetTeamKills implements ScoreMutator.
func (m *Memory) SetTeamKills(_ context.Context, slot, n int) error {
	return m.update(slot, func(p *Player) { p.TeamKills = n })
}

// AddWins implements ScoreMutator.
func (m *Memory) AddWins(_ context.Context, slot, delta int) error {
	return m.update(slot, func(p *Player) { p.Wins += delta })
}

// AddLosses implements ScoreMutator.
func (m *Memory) AddLosses(_ context.Context, slot, delta int) error {
	return m.update(slot, func(p *Player) { p.Losses += delta })
}

// AddTeamKills implements ScoreMutator.
func (m *Memory) AddTeamKills(_ context.Context, slot, delta int) error {
	return m.update(slot, func(p *Player) { p.TeamKills += delta })
}

// ResetScore implements ScoreMutator.
func (m *Memory) ResetScore(_ context.Context, slot int) error {
	return m.update(slot, func(p *Player) {
		p.Wins, p.Losses, p.TeamKills = 0, 0, 0
	})
}

// SendToPlayer implements Messenger.
func (m *Memory) SendToPlayer(_ context.Context, slot int, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, Message{Slot: slot, Text: text})
	return nil
}

// SendToGroup implements Messenger.
func (m *Memory) SendToGroup(_ context.Context, group Group, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, Message{Slot: -1, Group: group, Text: text})
	return nil
}

// HasPerm implements Permissions.
func (m *Memory) HasPerm(_ context.Context, slot int, perm string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[slot]
	return ok && slices.Contains(p.Perms, perm)
}

// Resolve implements Roster. A reference is tried as a slot number first,
// then as a case-insensitive callsign.
func (m *Memory) Resolve(_ context.Context, ref string) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ref = strings.TrimSpace(ref)
	if slot, err := strconv.Atoi(strings.TrimPrefix(ref, "#")); err == nil {
		if p, ok := m.players[slot]; ok {
			return m.handle(p), nil
		}
	}
	for _, p := range m.players {
		if strings.EqualFold(p.Callsign, ref) {
			return m.handle(p), nil
		}
	}
	return nil, ErrPlayerNotFound
}

// Callsign implements Roster.
func (m *Memory) Callsign(_ context.Context, slot int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.players[slot]; ok {
		return p.Callsign
	}
	return ""
}

func (m *Memory) handle(p *Player) Handle {
	m.open.Add(1)
	return &memoryHandle{slot: p.Slot, callsign: p.Callsign, open: &m.open}
}

type memoryHandle struct {
	slot     int
	callsign string
	open     *atomic.Int64
	released atomic.Bool
}

func (h *memoryHandle) Slot() int        { return h.slot }
func (h *memoryHandle) Callsign() string { return h.callsign }

func (h *memoryHandle) Release() {
	if h.released.CompareAndSwap(false, true) {
		h.open.Add(-1)
	}
}
