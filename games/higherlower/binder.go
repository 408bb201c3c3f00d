/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package higherlower

import (
	"context"
	"time"
)

// Join adds a new player to an unlocked session and binds it to the calling
// connection.
func (e *Engine) Join(ctx context.Context, in *JoinInput) (*JoinOutput, error) {
	if err := check(e.validate, in); err != nil {
		return nil, err
	}

	var out *JoinOutput

	err := e.do(ctx, func() error {
		sess, err := e.session(in.Code, in.ConnID, false)
		if err != nil {
			return err
		}

		if sess.Locked {
			return ErrLobbyLocked
		}

		id := e.ids.NewID()
		if _, taken := sess.Players[id]; taken || id == "" {
			e.logf("ERROR: Player id %q is unusable in %s", id, sess.Code)
			return ErrInternal
		}

		p := &Player{
			ID:       id,
			Name:     in.PlayerName,
			Status:   StatusIn,
			LastSeen: e.clock.Now(),
		}
		sess.addPlayer(p)
		e.store.bindPlayer(sess, p, in.ConnID)
		e.out.Subscribe(in.ConnID, sess.Code)

		out = &JoinOutput{PlayerID: p.ID, Snapshot: sess.Snapshot()}

		e.out.Publish(sess.Code, Event{Name: EventPlayerJoined, Data: PlayerJoinedData{
			Player: PlayerRef{ID: p.ID, Name: p.Name},
		}})
		e.publishSnapshot(sess)

		e.logf("GAMES: Player %q joined %s", p.Name, sess.Code)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Lock closes the lobby to new players for good.
func (e *Engine) Lock(ctx context.Context, in *LockInput) error {
	if err := check(e.validate, in); err != nil {
		return err
	}

	return e.do(ctx, func() error {
		sess, err := e.session(in.Code, in.ConnID, true)
		if err != nil {
			return err
		}

		e.lock(sess)

		return nil
	})
}

// StartGame locks the lobby and announces that play is about to begin. The
// first round is opened separately by StartRound.
func (e *Engine) StartGame(ctx context.Context, in *StartGameInput) error {
	if err := check(e.validate, in); err != nil {
		return err
	}

	return e.do(ctx, func() error {
		sess, err := e.session(in.Code, in.ConnID, true)
		if err != nil {
			return err
		}

		e.lock(sess)
		e.out.Publish(sess.Code, Event{Name: EventGameStarted, Data: GameStartedData{Code: sess.Code}})

		e.logf("GAMES: Game started in %s with %d players", sess.Code, len(sess.Players))

		return nil
	})
}

func (e *Engine) lock(sess *Session) {
	sess.Locked = true

	e.out.Publish(sess.Code, Event{Name: EventLobbyLocked, Data: LobbyLockedData{Code: sess.Code}})
	e.publishSnapshot(sess)
}

// HostReconnect binds the calling connection as host of an existing session,
// replacing whatever connection held the role before. Anyone presenting the
// code is trusted.
func (e *Engine) HostReconnect(ctx context.Context, in *HostReconnectInput) (*Snapshot, error) {
	if err := check(e.validate, in); err != nil {
		return nil, err
	}

	var out Snapshot

	err := e.do(ctx, func() error {
		sess, err := e.session(in.Code, in.ConnID, false)
		if err != nil {
			return err
		}

		e.cancelHostExpiry(sess)
		e.store.bindHost(sess, in.ConnID)
		e.out.Subscribe(in.ConnID, sess.Code)

		e.logf("GAMES: Host reconnected to %s", sess.Code)

		out = sess.Snapshot()

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// PlayerReconnect rebinds an existing player to the calling connection.
func (e *Engine) PlayerReconnect(ctx context.Context, in *PlayerReconnectInput) (*PlayerReconnectOutput, error) {
	if err := check(e.validate, in); err != nil {
		return nil, err
	}

	var out *PlayerReconnectOutput

	err := e.do(ctx, func() error {
		sess, ok := e.store.Get(in.Code)
		if !ok || in.PlayerID == "" {
			return ErrPlayerNotFound
		}

		p, ok := sess.Players[in.PlayerID]
		if !ok {
			return ErrPlayerNotFound
		}

		e.store.bindPlayer(sess, p, in.ConnID)
		p.LastSeen = e.clock.Now()
		e.out.Subscribe(in.ConnID, sess.Code)

		out = &PlayerReconnectOutput{PlayerID: p.ID, Snapshot: sess.Snapshot()}

		e.out.Publish(sess.Code, Event{Name: EventPlayerReconnected, Data: PlayerReconnectedData{PlayerID: p.ID}})

		e.logf("GAMES: Player %q reconnected to %s", p.Name, sess.Code)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Heartbeat refreshes a player's LastSeen. It never reports failure.
func (e *Engine) Heartbeat(ctx context.Context, in *HeartbeatInput) {
	if check(e.validate, in) != nil {
		return
	}

	_ = e.do(ctx, func() error {
		sess, ok := e.store.Get(in.Code)
		if !ok || in.PlayerID == "" {
			return nil
		}

		if p, ok := sess.Players[in.PlayerID]; ok {
			p.LastSeen = e.clock.Now()
		}

		return nil
	})
}

// EndGame deletes the session on the host's request.
func (e *Engine) EndGame(ctx context.Context, in *EndGameInput) error {
	if err := check(e.validate, in); err != nil {
		return err
	}

	return e.do(ctx, func() error {
		sess, err := e.session(in.Code, in.ConnID, true)
		if err != nil {
			return err
		}

		reason := in.Reason
		if reason == "" {
			reason = ReasonHostEnded
		}

		e.endSession(sess, reason)

		return nil
	})
}

// Disconnect unbinds connID from every role it holds. A host losing its
// connection starts the grace timer; players only lose their binding.
func (e *Engine) Disconnect(ctx context.Context, connID string) {
	if connID == "" {
		return
	}

	_ = e.do(ctx, func() error {
		for _, b := range e.store.release(connID) {
			sess, ok := e.store.Get(b.code)
			if !ok {
				continue
			}

			if b.playerID == "" {
				if sess.HostConnID == connID {
					sess.HostConnID = ""
					e.scheduleHostExpiry(sess)
					e.logf("GAMES: Host disconnected from %s, ending in %s unless they return", sess.Code, e.grace)
				}
				continue
			}

			if p, ok := sess.Players[b.playerID]; ok && p.ConnID == connID {
				p.ConnID = ""
			}
		}

		return nil
	})
}

func (e *Engine) scheduleHostExpiry(sess *Session) {
	e.cancelHostExpiry(sess)

	sess.hostTimerSeq++
	seq := sess.hostTimerSeq

	sess.HostDisconnectDeadline = e.clock.Now().Add(e.grace)
	sess.hostTimer = e.clock.AfterFunc(e.grace, func() {
		e.enqueue(func() {
			e.expireHost(sess, seq)
		})
	})
}

func (e *Engine) cancelHostExpiry(sess *Session) {
	if sess.hostTimer != nil {
		sess.hostTimer.Stop()
		sess.hostTimer = nil
	}
	sess.hostTimerSeq++
	sess.HostDisconnectDeadline = time.Time{}
}

// expireHost ends the session unless the host came back, or the session was
// replaced, since the timer was armed.
func (e *Engine) expireHost(sess *Session, seq uint64) {
	live, ok := e.store.Get(sess.Code)
	if !ok || live != sess || sess.hostTimerSeq != seq || sess.HostConnID != "" {
		return
	}

	e.logf("GAMES: Host of %s did not return, ending session", sess.Code)

	e.endSession(sess, ReasonHostTimeout)
}

func (e *Engine) endSession(sess *Session, reason string) {
	e.cancelHostExpiry(sess)
	e.store.Delete(sess.Code)

	e.out.Publish(sess.Code, Event{Name: EventGameEnded, Data: GameEndedData{Reason: reason}})
	e.out.Disband(sess.Code)

	e.logf("GAMES: Ended session %s (%s)", sess.Code, reason)
}
