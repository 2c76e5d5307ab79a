// Package admin implements the /score command that lets operators holding
// the setall permission set, increase or clear a live player's wins, losses
// and team kills. It keeps no state of its own and never touches saved
// records.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Keksclan/goScoreRestorer/host"
	"github.com/Keksclan/goScoreRestorer/metrics"
	"github.com/Keksclan/goScoreRestorer/ratelimit"
)

// CommandName is the slash command handled here.
const CommandName = "score"

// PermSetAll is the permission an invoker needs.
const PermSetAll = "setall"

var (
	// ErrPermissionDenied is returned when the invoker lacks PermSetAll.
	ErrPermissionDenied = errors.New("admin: permission denied")
	// ErrTargetNotFound is returned when the target cannot be resolved.
	ErrTargetNotFound = errors.New("admin: target not found")
	// ErrRateLimited is returned when the invoker sends commands too fast.
	ErrRateLimited = errors.New("admin: rate limited")
)

// Deps are the host services the command calls into.
type Deps struct {
	Scores   host.ScoreMutator
	Messages host.Messenger
	Perms    host.Permissions
	Roster   host.Roster
}

// Handler executes score commands.
type Handler struct {
	deps    Deps
	limiter *ratelimit.Keyed[int]
	metrics *metrics.Collector
	logger  *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithRateLimit allows each invoker rps commands per second with the given
// burst. Without it commands are not limited.
func WithRateLimit(rps float64, burst int) Option {
	return func(h *Handler) {
		h.limiter = ratelimit.NewKeyed[int](rps, burst)
	}
}

// WithMetrics counts executions on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(h *Handler) {
		h.metrics = c
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// New creates a Handler.
func New(deps Deps, opts ...Option) *Handler {
	h := &Handler{deps: deps, logger: slog.Default()}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Execute runs "/score args..." on behalf of the player in slot invoker.
// Every failure is reported to the invoker as a server message and returned
// as an error matching one of this package's sentinels; no failure changes
// any score.
func (h *Handler) Execute(ctx context.Context, invoker int, args []string) error {
	action := "unknown"
	if len(args) > 0 {
		switch a := Action(strings.ToLower(args[0])); a {
		case ActionSet, ActionIncrease, ActionClear:
			action = string(a)
		}
	}

	err := h.execute(ctx, invoker, args)
	h.metrics.Command(action, resultLabel(err))
	if err != nil {
		h.logger.DebugContext(ctx, "score command rejected",
			"invoker", invoker, "args", args, "error", err)
	}
	return err
}

func (h *Handler) execute(ctx context.Context, invoker int, args []string) error {
	if !h.deps.Perms.HasPerm(ctx, invoker, PermSetAll) {
		// Unprivileged players get the host's unknown-command reply.
		h.reply(ctx, invoker, fmt.Sprintf("Unknown command [%s]", CommandName))
		return ErrPermissionDenied
	}

	if h.limiter != nil && !h.limiter.Allow(invoker) {
		h.reply(ctx, invoker, "Too many score commands, slow down.")
		return ErrRateLimited
	}

	req, err := Parse(args)
	if err != nil {
		if errors.Is(err, ErrUsage) {
			h.reply(ctx, invoker, usage)
		} else {
			h.reply(ctx, invoker, userMessage(err))
		}
		return err
	}

	target, err := h.deps.Roster.Resolve(ctx, req.Target)
	if err != nil {
		if !errors.Is(err, host.ErrPlayerNotFound) {
			h.logger.WarnContext(ctx, "resolving score command target failed",
				"target", req.Target, "error", err)
		}
		h.reply(ctx, invoker, fmt.Sprintf("player %s not found", req.Target))
		return fmt.Errorf("%w: %s", ErrTargetNotFound, req.Target)
	}
	defer target.Release()

	if err := h.apply(ctx, target.Slot(), req); err != nil {
		h.reply(ctx, invoker, fmt.Sprintf("Could not update %s's score.", target.Callsign()))
		return fmt.Errorf("admin: %s %s: %w", req.Action, target.Callsign(), err)
	}

	return h.notify(ctx, invoker, target, req)
}

func (h *Handler) apply(ctx context.Context, slot int, req Request) error {
	s := h.deps.Scores
	switch req.Action {
	case ActionClear:
		return s.ResetScore(ctx, slot)
	case ActionSet:
		switch req.Stat {
		case StatWins:
			return s.SetWins(ctx, slot, req.Value)
		case StatLosses:
			return s.SetLosses(ctx, slot, req.Value)
		case StatTeamKills:
			return s.SetTeamKills(ctx, slot, req.Value)
		}
	case ActionIncrease:
		switch req.Stat {
		case StatWins:
			return s.AddWins(ctx, slot, req.Value)
		case StatLosses:
			return s.AddLosses(ctx, slot, req.Value)
		case StatTeamKills:
			return s.AddTeamKills(ctx, slot, req.Value)
		}
	}
	return ErrUsage
}

// notify tells the target, the invoker and the administrators what changed.
func (h *Handler) notify(ctx context.Context, invoker int, target host.Handle, req Request) error {
	by := h.deps.Roster.Callsign(ctx, invoker)
	victim := target.Callsign()

	var toTarget, toInvoker, toAdmins string
	if req.Action == ActionClear {
		toTarget = fmt.Sprintf("Your score has been cleared by %s", by)
		toInvoker = fmt.Sprintf("You have cleared %s's score", victim)
		toAdmins = fmt.Sprintf("%s has cleared %s's score", by, victim)
	} else {
		verb, prep := "set", "to"
		if req.Action == ActionIncrease {
			verb, prep = "increased", "by"
		}
		noun := req.Stat.noun()
		toTarget = fmt.Sprintf("%s has %s your %s count %s %d", by, verb, noun, prep, req.Value)
		toInvoker = fmt.Sprintf("You have %s %s's %s count %s %d", verb, victim, noun, prep, req.Value)
		toAdmins = fmt.Sprintf("%s has %s %s's %s count %s %d", by, verb, victim, noun, prep, req.Value)
	}

	return errors.Join(
		h.deps.Messages.SendToPlayer(ctx, target.Slot(), toTarget),
		h.deps.Messages.SendToPlayer(ctx, invoker, toInvoker),
		h.deps.Messages.SendToGroup(ctx, host.GroupAdministrators, toAdmins),
	)
}

// Forget drops the rate limit state of slot, typically when that player
// leaves.
func (h *Handler) Forget(slot int) {
	if h.limiter != nil {
		h.limiter.Forget(slot)
	}
}

func (h *Handler) reply(ctx context.Context, slot int, text string) {
	if err := h.deps.Messages.SendToPlayer(ctx, slot, text); err != nil {
		h.logger.WarnContext(ctx, "sending score command reply failed", "slot", slot, "error", err)
	}
}

// userMessage strips the package prefix from a parse error.
func userMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidNumber):
		return "Invalid number: " + trimSentinel(err, ErrInvalidNumber)
	case errors.Is(err, ErrUnknownStat):
		return "Unknown score type: " + trimSentinel(err, ErrUnknownStat)
	default:
		return err.Error()
	}
}

func trimSentinel(err, sentinel error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, sentinel.Error()+" "); ok {
		return rest
	}
	return msg
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrPermissionDenied):
		return "denied"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrUsage), errors.Is(err, ErrUnknownStat):
		return "usage"
	case errors.Is(err, ErrInvalidNumber):
		return "invalid_number"
	case errors.Is(err, ErrTargetNotFound):
		return "not_found"
	default:
		return "error"
	}
}
