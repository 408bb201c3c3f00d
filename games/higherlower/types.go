/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package higherlower implements the session and round engine for the
// higher-or-lower party game.
//
// A host announces a number, players predict whether the next revealed number
// will be higher or lower, wrong (or missing) guesses are eliminated, and the
// last player standing wins. If a round would eliminate everybody, everybody
// is revived instead.
package higherlower

import (
	"time"
)

// Direction is a guess or a resolved answer. The empty value means "none".
type Direction string

const (
	Higher Direction = "higher"
	Lower  Direction = "lower"
)

// Status tracks whether a player is still in the game.
type Status string

const (
	StatusIn  Status = "in"
	StatusOut Status = "out"
)

// Phase is derived from the round fields of a Session and never stored.
type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseGuessing Phase = "guessing"
	PhaseReveal   Phase = "reveal"
)

const defaultHostName = "Host"

// Player is one participant. Players are never removed while their session
// lives; elimination only flips Status.
type Player struct {
	ID             string
	Name           string
	Status         Status
	CorrectGuesses int
	Guess          Direction
	ConnID         string
	LastSeen       time.Time
}

// Session is one running game.
type Session struct {
	Code       string
	HostConnID string
	HostName   string

	Locked        bool
	RoundIndex    int
	CurrentValue  *float64
	PreviousValue *float64
	GuessesOpen   bool
	CorrectAnswer Direction
	TimerSeconds  *int
	WinnerID      string

	Players map[string]*Player
	order   []string

	CreatedAt              time.Time
	HostDisconnectDeadline time.Time

	hostTimer    Timer
	hostTimerSeq uint64
}

func newSession(code, hostConnID, hostName string, now time.Time) *Session {
	if hostName == "" {
		hostName = defaultHostName
	}

	return &Session{
		Code:       code,
		HostConnID: hostConnID,
		HostName:   hostName,
		Players:    make(map[string]*Player),
		CreatedAt:  now,
	}
}

// Phase reports where the session sits in the round state machine.
func (s *Session) Phase() Phase {
	switch {
	case s.RoundIndex == 0:
		return PhaseLobby
	case s.GuessesOpen:
		return PhaseGuessing
	default:
		return PhaseReveal
	}
}

func (s *Session) addPlayer(p *Player) {
	s.Players[p.ID] = p
	s.order = append(s.order, p.ID)
}

// players returns the session's players in join order.
func (s *Session) players() []*Player {
	out := make([]*Player, 0, len(s.order))
	for _, id := range s.order {
		if p, ok := s.Players[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (s *Session) countIn() int {
	n := 0
	for _, p := range s.Players {
		if p.Status == StatusIn {
			n++
		}
	}
	return n
}

// PlayerView is the broadcast-safe reduction of a Player. It never carries
// the in-flight guess.
type PlayerView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Status         Status `json:"status"`
	CorrectGuesses int    `json:"correctGuesses"`
}

// Snapshot is the canonical view of a session sent to every subscriber.
type Snapshot struct {
	Code          string       `json:"code"`
	Locked        bool         `json:"locked"`
	RoundIndex    int          `json:"roundIndex"`
	TimerSeconds  *int         `json:"timerSeconds"`
	CurrentValue  *float64     `json:"currentValue"`
	PreviousValue *float64     `json:"previousValue"`
	GuessesOpen   bool         `json:"guessesOpen"`
	Phase         Phase        `json:"phase"`
	WinnerID      string       `json:"winnerId,omitempty"`
	Players       []PlayerView `json:"players"`
}

func (s *Session) playerViews() []PlayerView {
	players := s.players()

	views := make([]PlayerView, 0, len(players))
	for _, p := range players {
		views = append(views, PlayerView{
			ID:             p.ID,
			Name:           p.Name,
			Status:         p.Status,
			CorrectGuesses: p.CorrectGuesses,
		})
	}
	return views
}

// Snapshot builds the reduced view of s.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Code:          s.Code,
		Locked:        s.Locked,
		RoundIndex:    s.RoundIndex,
		TimerSeconds:  copyInt(s.TimerSeconds),
		CurrentValue:  copyFloat(s.CurrentValue),
		PreviousValue: copyFloat(s.PreviousValue),
		GuessesOpen:   s.GuessesOpen,
		Phase:         s.Phase(),
		WinnerID:      s.WinnerID,
		Players:       s.playerViews(),
	}
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
