/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package higherlower

import (
	"cmp"
	"slices"
	"time"
)

// startRound opens guessing for the next round. A round started after a
// winner was declared is a rematch: everybody is back in.
func (s *Session) startRound(value float64, timerSeconds *int) (rematch bool, err error) {
	if s.GuessesOpen {
		return false, ErrRoundInProgress
	}

	if s.WinnerID != "" {
		rematch = true
		s.WinnerID = ""
		for _, p := range s.Players {
			p.Status = StatusIn
		}
	}

	s.RoundIndex++
	s.PreviousValue = s.CurrentValue
	s.CurrentValue = &value
	s.TimerSeconds = copyInt(timerSeconds)
	s.GuessesOpen = true
	s.CorrectAnswer = ""

	for _, p := range s.Players {
		p.Guess = ""
	}

	return rematch, nil
}

func (s *Session) submitGuess(playerID string, guess Direction, now time.Time) (*Player, error) {
	if !s.GuessesOpen {
		return nil, ErrGuessesClosed
	}

	p, ok := s.Players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}

	p.Guess = guess
	p.LastSeen = now

	return p, nil
}

// resolveRound closes guessing and scores every player in one step.
func (s *Session) resolveRound(next float64, answer Direction) (*RoundResolvedData, error) {
	if !s.GuessesOpen {
		return nil, ErrGuessesClosed
	}

	s.GuessesOpen = false
	s.CorrectAnswer = answer

	players := s.players()
	results := make([]GuessResult, 0, len(players))

	for _, p := range players {
		correct := p.Guess != "" && p.Guess == answer

		if p.Guess == "" || (p.Status == StatusIn && !correct) {
			p.Status = StatusOut
		}
		if correct {
			p.CorrectGuesses++
		}

		var guessed *Direction
		if p.Guess != "" {
			g := p.Guess
			guessed = &g
		}

		results = append(results, GuessResult{
			PlayerID: p.ID,
			Guessed:  guessed,
			Correct:  correct,
			Status:   p.Status,
		})

		p.Guess = ""
	}

	revived := false
	switch remaining := s.countIn(); {
	case remaining == 0 && len(players) > 0:
		revived = true
		for _, p := range players {
			p.Status = StatusIn
		}
	case remaining == 1:
		for _, p := range players {
			if p.Status == StatusIn {
				s.WinnerID = p.ID
			}
		}
	}

	s.PreviousValue = s.CurrentValue
	s.CurrentValue = &next

	return &RoundResolvedData{
		RoundIndex:    s.RoundIndex,
		CorrectAnswer: answer,
		NextValue:     next,
		Results:       results,
		Revived:       revived,
		WinnerID:      s.WinnerID,
		Leaderboard:   s.leaderboard(),
	}, nil
}

// leaderboard orders players with those still in first, then by correct
// guesses, then by join order.
func (s *Session) leaderboard() []PlayerView {
	views := s.playerViews()

	slices.SortStableFunc(views, func(a, b PlayerView) int {
		if a.Status != b.Status {
			if a.Status == StatusIn {
				return -1
			}
			return 1
		}
		return cmp.Compare(b.CorrectGuesses, a.CorrectGuesses)
	})

	return views
}
