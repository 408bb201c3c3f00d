/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package higherlower

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultHostGracePeriod is how long a session survives without a host
// connection.
const DefaultHostGracePeriod = 30 * time.Minute

// Config holds the engine's dependencies. Only Broadcaster is required.
type Config struct {
	Broadcaster Broadcaster

	// HostGracePeriod defaults to DefaultHostGracePeriod.
	HostGracePeriod time.Duration

	// CodeAttempts defaults to DefaultCodeAttempts.
	CodeAttempts int

	Clock Clock
	IDs   IDGenerator
	Codes CodeSource

	// Logf receives verbose log lines; nil disables logging.
	Logf func(format string, args ...any)
}

// Engine owns every live session. All commands and timer callbacks run one at
// a time on the goroutine executing Run, so no transition ever interleaves
// with another.
type Engine struct {
	store    *Store
	out      Broadcaster
	clock    Clock
	ids      IDGenerator
	codes    CodeSource
	validate *validator.Validate
	logf     func(format string, args ...any)

	grace    time.Duration
	attempts int

	cmds chan func()
	done chan struct{}
}

func New(cfg *Config) (*Engine, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Broadcaster == nil {
		return nil, ErrNilBroadcaster
	}

	e := &Engine{
		store:    NewStore(),
		out:      cfg.Broadcaster,
		clock:    cfg.Clock,
		ids:      cfg.IDs,
		codes:    cfg.Codes,
		validate: newValidator(),
		logf:     cfg.Logf,
		grace:    cfg.HostGracePeriod,
		attempts: cfg.CodeAttempts,
		cmds:     make(chan func()),
		done:     make(chan struct{}),
	}

	if e.clock == nil {
		e.clock = SystemClock{}
	}
	if e.ids == nil {
		e.ids = UUIDGenerator{}
	}
	if e.codes == nil {
		e.codes = RandomCodes{}
	}
	if e.logf == nil {
		e.logf = func(string, ...any) {}
	}
	if e.grace <= 0 {
		e.grace = DefaultHostGracePeriod
	}
	if e.attempts <= 0 {
		e.attempts = DefaultCodeAttempts
	}

	return e, nil
}

// Run executes queued commands until ctx is cancelled. It must be called
// exactly once.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.done)

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-e.cmds:
			fn()
		}
	}
}

// do runs fn on the engine loop and waits for its result.
func (e *Engine) do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)

	task := func() {
		result <- e.safely(fn)
	}

	select {
	case e.cmds <- task:
	case <-e.done:
		return ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// enqueue hands fn to the loop without waiting for it to run. Used by timer
// callbacks, which never execute on the loop themselves.
func (e *Engine) enqueue(fn func()) {
	select {
	case e.cmds <- func() { _ = e.safely(func() error { fn(); return nil }) }:
	case <-e.done:
	}
}

// safely aborts a single command on an invariant violation instead of taking
// the process down.
func (e *Engine) safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logf("ERROR: Recovered from engine panic: %v", r)
			err = ErrInternal
		}
	}()

	return fn()
}

// session looks up code, optionally requiring connID to be the bound host.
func (e *Engine) session(code, connID string, hostOnly bool) (*Session, error) {
	sess, ok := e.store.Get(code)
	if !ok {
		return nil, ErrSessionNotFound
	}

	if hostOnly && (sess.HostConnID == "" || sess.HostConnID != connID) {
		return nil, ErrNotAuthorized
	}

	return sess, nil
}

func (e *Engine) publishSnapshot(sess *Session) {
	e.out.Publish(sess.Code, Event{Name: EventLobbyUpdated, Data: sess.Snapshot()})
}

// CreateSession opens a new lobby hosted by the calling connection.
func (e *Engine) CreateSession(ctx context.Context, in *CreateSessionInput) (*CreateSessionOutput, error) {
	if err := check(e.validate, in); err != nil {
		return nil, err
	}

	var out *CreateSessionOutput

	err := e.do(ctx, func() error {
		code, err := generateCode(e.codes, e.attempts, e.store.Exists)
		if err != nil {
			return err
		}

		sess, err := e.store.Create(code, in.ConnID, in.HostName, e.clock.Now())
		if err != nil {
			e.logf("ERROR: %v", err)
			return ErrInternal
		}

		e.out.Subscribe(in.ConnID, code)
		e.out.Send(in.ConnID, Event{Name: EventLobbyCreated, Data: LobbyCreatedData{Code: code}})

		e.logf("GAMES: Created session %s for host %q", code, sess.HostName)

		out = &CreateSessionOutput{Code: code}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// StartRound opens guessing on a new round with currentValue revealed.
func (e *Engine) StartRound(ctx context.Context, in *StartRoundInput) error {
	if err := check(e.validate, in); err != nil {
		return err
	}

	return e.do(ctx, func() error {
		sess, err := e.session(in.Code, in.ConnID, true)
		if err != nil {
			return err
		}

		rematch, err := sess.startRound(*in.CurrentValue, in.TimerSeconds)
		if err != nil {
			return err
		}

		e.out.Publish(sess.Code, Event{Name: EventRoundStarted, Data: RoundStartedData{
			RoundIndex:   sess.RoundIndex,
			CurrentValue: *sess.CurrentValue,
			TimerSeconds: copyInt(sess.TimerSeconds),
			Rematch:      rematch,
		}})
		e.publishSnapshot(sess)

		e.logf("GAMES: Round %d started in %s at %v", sess.RoundIndex, sess.Code, *sess.CurrentValue)

		return nil
	})
}

// SubmitGuess records a player's guess. Only the host is told about it.
func (e *Engine) SubmitGuess(ctx context.Context, in *SubmitGuessInput) error {
	if err := check(e.validate, in); err != nil {
		return err
	}

	return e.do(ctx, func() error {
		sess, err := e.session(in.Code, in.ConnID, false)
		if err != nil {
			return err
		}

		p, err := sess.submitGuess(in.PlayerID, in.Guess, e.clock.Now())
		if err != nil {
			return err
		}

		if sess.HostConnID != "" {
			e.out.Send(sess.HostConnID, Event{Name: EventGuessSubmitted, Data: GuessSubmittedData{
				PlayerID: p.ID,
				Guess:    p.Guess,
			}})
		}

		return nil
	})
}

// ResolveRound closes the active round, eliminating wrong or missing guesses.
func (e *Engine) ResolveRound(ctx context.Context, in *ResolveRoundInput) (*RoundResolvedData, error) {
	if err := check(e.validate, in); err != nil {
		return nil, err
	}

	var out *RoundResolvedData

	err := e.do(ctx, func() error {
		sess, err := e.session(in.Code, in.ConnID, true)
		if err != nil {
			return err
		}

		resolved, err := sess.resolveRound(*in.NextValue, in.CorrectAnswer)
		if err != nil {
			return err
		}

		e.out.Publish(sess.Code, Event{Name: EventRoundResolved, Data: *resolved})
		e.publishSnapshot(sess)

		e.logf("GAMES: Round %d resolved in %s (answer %s, revived %t, winner %q)",
			resolved.RoundIndex, sess.Code, resolved.CorrectAnswer, resolved.Revived, resolved.WinnerID)

		out = resolved

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Snapshot returns the current view of a live session.
func (e *Engine) Snapshot(ctx context.Context, code string) (*Snapshot, error) {
	var out Snapshot

	err := e.do(ctx, func() error {
		sess, ok := e.store.Get(code)
		if !ok {
			return ErrSessionNotFound
		}
		out = sess.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}
