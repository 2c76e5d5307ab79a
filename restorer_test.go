package scorerestorer_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	scorerestorer "github.com/Keksclan/goScoreRestorer"
	"github.com/Keksclan/goScoreRestorer/cvar"
	"github.com/Keksclan/goScoreRestorer/host"
	"github.com/Keksclan/goScoreRestorer/record"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var epoch = time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)

func at(sec int) time.Time { return epoch.Add(time.Duration(sec) * time.Second) }

func newRestorer(t *testing.T, srv *host.Memory, opts ...scorerestorer.Option) *scorerestorer.Restorer {
	t.Helper()
	r, err := scorerestorer.New(srv, srv, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = r.Close(context.Background()) })
	return r
}

func TestRestoreOnRejoin(t *testing.T) {
	srv := host.NewMemory()
	r := newRestorer(t, srv)
	ctx := t.Context()

	if err := r.HandleEvent(ctx, scorerestorer.Departure{
		Slot: 4, Callsign: "Bob", Address: "1.2.3.4:5154",
		Wins: 5, Losses: 2, TeamKills: 1, At: at(0),
	}); err != nil {
		t.Fatalf("departure: %v", err)
	}

	srv.Join(host.Player{Slot: 7, Callsign: "bob", Address: "1.2.3.4:6000"})
	if err := r.HandleEvent(ctx, scorerestorer.Arrival{
		Slot: 7, Callsign: "bob", Address: "1.2.3.4:6000", At: at(50),
	}); err != nil {
		t.Fatalf("arrival: %v", err)
	}

	p, _ := srv.Player(7)
	if p.Wins != 5 || p.Losses != 2 || p.TeamKills != 1 {
		t.Fatalf("restored score = %d/%d/%d, want 5/2/1", p.Wins, p.Losses, p.TeamKills)
	}
	msgs := srv.Messages()
	if len(msgs) != 1 || msgs[0].Slot != 7 || msgs[0].Text != scorerestorer.MsgRestored {
		t.Fatalf("messages = %+v", msgs)
	}
	if n := r.Cache().Len(); n != 0 {
		t.Fatalf("cache len = %d, want 0", n)
	}
}

func TestExpiredRecordIsNotApplied(t *testing.T) {
	srv := host.NewMemory()
	r := newRestorer(t, srv)
	ctx := t.Context()

	_, _ = r.Depart(ctx, scorerestorer.Departure{Callsign: "Bob", Address: "1.2.3.4", Wins: 5, At: at(0)})
	srv.Join(host.Player{Slot: 1, Callsign: "Bob", Address: "1.2.3.4"})

	res, err := r.Arrive(ctx, scorerestorer.Arrival{Slot: 1, Callsign: "Bob", Address: "1.2.3.4", At: at(130)})
	if err != nil {
		t.Fatalf("Arrive: %v", err)
	}
	if res.Outcome != record.Expired {
		t.Fatalf("outcome = %v, want Expired", res.Outcome)
	}
	if p, _ := srv.Player(1); p.Wins != 0 {
		t.Fatalf("wins = %d, want 0", p.Wins)
	}
	if len(srv.Messages()) != 0 {
		t.Fatalf("unexpected messages: %+v", srv.Messages())
	}
}

func TestObserverDefersRestore(t *testing.T) {
	srv := host.NewMemory()
	r := newRestorer(t, srv)
	ctx := t.Context()

	_, _ = r.Depart(ctx, scorerestorer.Departure{Callsign: "Dana", Address: "5.6.7.8", Wins: 3, At: at(0)})
	srv.Join(host.Player{Slot: 2, Callsign: "Dana", Observer: true})

	res, err := r.Arrive(ctx, scorerestorer.Arrival{Slot: 2, Callsign: "Dana", Address: "5.6.7.8", Observer: true, At: at(10)})
	if err != nil || res.Outcome != record.DeferredRestore {
		t.Fatalf("Arrive = %v, %v; want DeferredRestore", res.Outcome, err)
	}
	if msgs := srv.Messages(); len(msgs) != 1 || msgs[0].Text != scorerestorer.MsgDeferred {
		t.Fatalf("messages = %+v", msgs)
	}
	if p, _ := srv.Player(2); p.Wins != 0 {
		t.Fatalf("score applied to observer: %+v", p)
	}

	res, _ = r.Arrive(ctx, scorerestorer.Arrival{Slot: 2, Callsign: "Dana", Address: "5.6.7.8", At: at(20)})
	if res.Outcome != record.Restored {
		t.Fatalf("second Arrive = %v, want Restored", res.Outcome)
	}
	if p, _ := srv.Player(2); p.Wins != 3 {
		t.Fatalf("wins = %d, want 3", p.Wins)
	}
}

func TestSaveTimeVariableIsReadLive(t *testing.T) {
	srv := host.NewMemory()
	vars := cvar.NewMemory()
	r := newRestorer(t, srv, scorerestorer.WithVars(vars))
	ctx := t.Context()

	if v, _ := vars.Get(cvar.SaveTime); v != 120 {
		t.Fatalf("%s = %v, want default 120", cvar.SaveTime, v)
	}

	_, _ = r.Depart(ctx, scorerestorer.Departure{Callsign: "Eve", Address: "9.9.9.9", Wins: 1, At: at(0)})
	vars.Set(cvar.SaveTime, 30)
	if got := r.SaveTime(); got != 30*time.Second {
		t.Fatalf("SaveTime = %v, want 30s", got)
	}

	res, _ := r.Arrive(ctx, scorerestorer.Arrival{Callsign: "Eve", Address: "9.9.9.9", At: at(45)})
	if res.Outcome != record.Expired {
		t.Fatalf("outcome = %v, want Expired after shortening the window", res.Outcome)
	}
}

func TestConfiguredSaveTimeIsKept(t *testing.T) {
	vars := cvar.NewMemory()
	vars.Set(cvar.SaveTime, 600)
	newRestorer(t, host.NewMemory(), scorerestorer.WithVars(vars))

	if v, _ := vars.Get(cvar.SaveTime); v != 600 {
		t.Fatalf("%s = %v, want 600", cvar.SaveTime, v)
	}
}

func TestClockOption(t *testing.T) {
	srv := host.NewMemory()
	now := at(0)
	r := newRestorer(t, srv, scorerestorer.WithClock(func() time.Time { return now }))
	ctx := t.Context()

	_, _ = r.Depart(ctx, scorerestorer.Departure{Callsign: "Bob", Address: "1.1.1.1", Wins: 1})
	now = at(121)
	res, _ := r.Arrive(ctx, scorerestorer.Arrival{Callsign: "Bob", Address: "1.1.1.1"})
	if res.Outcome != record.Expired {
		t.Fatalf("outcome = %v, want Expired", res.Outcome)
	}
}

type failingScores struct{ host.ScoreMutator }

func (failingScores) SetLosses(context.Context, int, int) error { return errors.New("slot gone") }

func TestScoreMutationFailureIsReported(t *testing.T) {
	srv := host.NewMemory()
	r, err := scorerestorer.New(failingScores{srv}, srv)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close(context.Background())

	_, _ = r.Depart(t.Context(), scorerestorer.Departure{Callsign: "Bob", Address: "1.1.1.1", Wins: 2, At: at(0)})
	srv.Join(host.Player{Slot: 1, Callsign: "Bob"})

	err = r.HandleEvent(t.Context(), scorerestorer.Arrival{Slot: 1, Callsign: "Bob", Address: "1.1.1.1", At: at(1)})
	if err == nil {
		t.Fatal("expected error from failing score mutator")
	}
	if len(srv.Messages()) != 0 {
		t.Fatalf("restored message sent despite failure: %+v", srv.Messages())
	}
}

func TestLostCountersAreLogged(t *testing.T) {
	var buf bytes.Buffer
	srv := host.NewMemory()
	r, err := scorerestorer.New(failingScores{srv}, srv,
		scorerestorer.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close(context.Background())

	_, _ = r.Depart(t.Context(), scorerestorer.Departure{Callsign: "Bob", Address: "1.1.1.1", Wins: 2, Losses: 3, TeamKills: 1, At: at(0)})
	srv.Join(host.Player{Slot: 1, Callsign: "Bob"})
	_ = r.HandleEvent(t.Context(), scorerestorer.Arrival{Slot: 1, Callsign: "Bob", Address: "1.1.1.1", At: at(1)})

	out := buf.String()
	for _, want := range []string{"level=WARN", "counters lost", "callsign=Bob", "wins=2", "losses=3", "team_kills=1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestRecoveryTurnsPanicIntoError(t *testing.T) {
	srv := host.NewMemory()
	r := newRestorer(t, srv,
		scorerestorer.WithRecovery(),
		scorerestorer.WithMiddleware(100, func(scorerestorer.HandlerFunc) scorerestorer.HandlerFunc {
			return func(context.Context, scorerestorer.Event) error { panic("boom") }
		}),
	)

	err := r.HandleEvent(t.Context(), scorerestorer.Arrival{Callsign: "x"})
	if !errors.Is(err, scorerestorer.ErrPanic) {
		t.Fatalf("err = %v, want ErrPanic", err)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv := host.NewMemory()
	r := newRestorer(t, srv, scorerestorer.WithMetrics(reg))
	ctx := t.Context()

	_, _ = r.Depart(ctx, scorerestorer.Departure{Callsign: "A", Address: "1.1.1.1", Wins: 1, At: at(0)})
	_, _ = r.Depart(ctx, scorerestorer.Departure{Callsign: "B", Address: "1.1.1.1", At: at(0)})
	_, _ = r.Arrive(ctx, scorerestorer.Arrival{Callsign: "C", At: at(1)})

	n, err := testutil.GatherAndCount(reg,
		"score_restorer_departures_total",
		"score_restorer_arrivals_total",
		"score_restorer_records",
	)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	// saved + skipped_empty, no_record, records gauge
	if n != 4 {
		t.Fatalf("series = %d, want 4", n)
	}
	if r.MetricsHandler() == nil {
		t.Fatal("nil metrics handler")
	}
}

func TestBoundedStore(t *testing.T) {
	srv := host.NewMemory()
	r := newRestorer(t, srv, scorerestorer.WithBoundedStore(100))

	out, err := r.Depart(t.Context(), scorerestorer.Departure{Callsign: "Bob", Address: "1.1.1.1", Wins: 1, At: at(0)})
	if err != nil || out != record.Saved {
		t.Fatalf("Depart = %v, %v; want Saved", out, err)
	}
	if _, ok := r.Cache().Peek("bob"); !ok {
		t.Fatal("record missing from bounded store")
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := scorerestorer.New(nil, host.NewMemory()); err == nil {
		t.Fatal("expected error for nil score mutator")
	}
}
