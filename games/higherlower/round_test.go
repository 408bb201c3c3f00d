/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package higherlower

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

func sessionWith(names ...string) *Session {
	sess := newSession("424242", "host-conn", "", testNow)
	for _, name := range names {
		sess.addPlayer(&Player{ID: "id-" + name, Name: name, Status: StatusIn})
	}
	return sess
}

func guessAll(t *testing.T, sess *Session, guesses map[string]Direction) {
	t.Helper()
	for name, g := range guesses {
		_, err := sess.submitGuess("id-"+name, g, testNow)
		require.NoError(t, err)
	}
}

func resultFor(t *testing.T, res *RoundResolvedData, id string) GuessResult {
	t.Helper()
	for _, r := range res.Results {
		if r.PlayerID == id {
			return r
		}
	}
	t.Fatalf("no result for %s", id)
	return GuessResult{}
}

func TestPhase(t *testing.T) {
	sess := sessionWith("ana")
	assert.Equal(t, PhaseLobby, sess.Phase())

	_, err := sess.startRound(10, nil)
	require.NoError(t, err)
	assert.Equal(t, PhaseGuessing, sess.Phase())

	_, err = sess.resolveRound(5, Lower)
	require.NoError(t, err)
	assert.Equal(t, PhaseReveal, sess.Phase())
}

func TestStartRoundClearsGuesses(t *testing.T) {
	sess := sessionWith("ana", "ben")
	timer := 20

	_, err := sess.startRound(50, &timer)
	require.NoError(t, err)
	guessAll(t, sess, map[string]Direction{"ana": Higher, "ben": Higher})

	_, err = sess.resolveRound(60, Higher)
	require.NoError(t, err)

	rematch, err := sess.startRound(70, nil)
	require.NoError(t, err)
	assert.False(t, rematch)

	assert.True(t, sess.GuessesOpen)
	assert.Equal(t, 2, sess.RoundIndex)
	assert.Nil(t, sess.TimerSeconds)
	assert.Equal(t, Direction(""), sess.CorrectAnswer)
	require.NotNil(t, sess.PreviousValue)
	assert.Equal(t, 60.0, *sess.PreviousValue)
	assert.Equal(t, 70.0, *sess.CurrentValue)
	for _, p := range sess.Players {
		assert.Equal(t, Direction(""), p.Guess, p.Name)
	}
}

func TestStartRoundRejectedWhileGuessing(t *testing.T) {
	sess := sessionWith("ana")

	_, err := sess.startRound(50, nil)
	require.NoError(t, err)

	_, err = sess.startRound(80, nil)
	require.ErrorIs(t, err, ErrRoundInProgress)
	assert.Equal(t, 1, sess.RoundIndex)
	assert.Equal(t, 50.0, *sess.CurrentValue)
}

func TestSubmitGuess(t *testing.T) {
	sess := sessionWith("ana")

	_, err := sess.submitGuess("id-ana", Higher, testNow)
	require.ErrorIs(t, err, ErrGuessesClosed)

	_, err = sess.startRound(50, nil)
	require.NoError(t, err)

	_, err = sess.submitGuess("id-nobody", Higher, testNow)
	require.ErrorIs(t, err, ErrPlayerNotFound)

	later := testNow.Add(time.Minute)
	p, err := sess.submitGuess("id-ana", Lower, later)
	require.NoError(t, err)
	assert.Equal(t, Lower, p.Guess)
	assert.Equal(t, later, p.LastSeen)

	p, err = sess.submitGuess("id-ana", Higher, later)
	require.NoError(t, err)
	assert.Equal(t, Higher, p.Guess)
}

func TestResolveRoundScenarioA(t *testing.T) {
	sess := sessionWith("p1", "p2", "p3")

	_, err := sess.startRound(50, nil)
	require.NoError(t, err)
	guessAll(t, sess, map[string]Direction{"p1": Higher, "p2": Lower, "p3": Higher})

	res, err := sess.resolveRound(60, Higher)
	require.NoError(t, err)

	assert.False(t, res.Revived)
	assert.Empty(t, res.WinnerID)
	assert.False(t, sess.GuessesOpen)
	assert.Equal(t, Higher, sess.CorrectAnswer)
	assert.Equal(t, 50.0, *sess.PreviousValue)
	assert.Equal(t, 60.0, *sess.CurrentValue)

	assert.Equal(t, StatusIn, sess.Players["id-p1"].Status)
	assert.Equal(t, 1, sess.Players["id-p1"].CorrectGuesses)
	assert.Equal(t, StatusOut, sess.Players["id-p2"].Status)
	assert.Equal(t, 0, sess.Players["id-p2"].CorrectGuesses)
	assert.Equal(t, StatusIn, sess.Players["id-p3"].Status)
	assert.Equal(t, 1, sess.Players["id-p3"].CorrectGuesses)

	r2 := resultFor(t, res, "id-p2")
	assert.False(t, r2.Correct)
	require.NotNil(t, r2.Guessed)
	assert.Equal(t, Lower, *r2.Guessed)
	assert.Equal(t, StatusOut, r2.Status)

	for _, p := range sess.Players {
		assert.Equal(t, Direction(""), p.Guess)
	}

	require.Len(t, res.Leaderboard, 3)
	assert.Equal(t, "id-p1", res.Leaderboard[0].ID)
	assert.Equal(t, "id-p3", res.Leaderboard[1].ID)
	assert.Equal(t, "id-p2", res.Leaderboard[2].ID)
}

func TestResolveRoundScenarioBRevives(t *testing.T) {
	sess := sessionWith("p1", "p2", "p3")

	_, err := sess.startRound(50, nil)
	require.NoError(t, err)
	guessAll(t, sess, map[string]Direction{"p1": Lower, "p2": Lower, "p3": Lower})

	res, err := sess.resolveRound(60, Higher)
	require.NoError(t, err)

	assert.True(t, res.Revived)
	assert.Empty(t, res.WinnerID)
	for _, p := range sess.Players {
		assert.Equal(t, StatusIn, p.Status, p.Name)
		assert.Equal(t, 0, p.CorrectGuesses, p.Name)
	}
	for _, r := range res.Results {
		assert.Equal(t, StatusOut, r.Status, "results report the status before revival")
	}
}

func TestResolveRoundMissingGuessEliminates(t *testing.T) {
	sess := sessionWith("p1", "p2", "p3")

	_, err := sess.startRound(50, nil)
	require.NoError(t, err)
	guessAll(t, sess, map[string]Direction{"p1": Higher, "p2": Higher})

	res, err := sess.resolveRound(40, Lower)
	require.NoError(t, err)

	// everybody out: revival
	assert.True(t, res.Revived)
	assert.Nil(t, resultFor(t, res, "id-p3").Guessed)

	_, err = sess.startRound(40, nil)
	require.NoError(t, err)
	guessAll(t, sess, map[string]Direction{"p1": Lower, "p2": Lower})

	res, err = sess.resolveRound(30, Lower)
	require.NoError(t, err)
	assert.False(t, res.Revived)
	assert.Equal(t, StatusOut, sess.Players["id-p3"].Status)
}

func TestResolveRoundDeclaresWinner(t *testing.T) {
	sess := sessionWith("p1", "p2", "p3")

	_, err := sess.startRound(50, nil)
	require.NoError(t, err)
	guessAll(t, sess, map[string]Direction{"p1": Higher, "p2": Lower, "p3": Lower})

	res, err := sess.resolveRound(60, Higher)
	require.NoError(t, err)

	assert.False(t, res.Revived)
	assert.Equal(t, "id-p1", res.WinnerID)
	assert.Equal(t, "id-p1", sess.WinnerID)
	assert.Equal(t, "id-p1", sess.Snapshot().WinnerID)
}

func TestStartRoundAfterWinnerIsRematch(t *testing.T) {
	sess := sessionWith("p1", "p2")

	_, err := sess.startRound(50, nil)
	require.NoError(t, err)
	guessAll(t, sess, map[string]Direction{"p1": Higher, "p2": Lower})

	_, err = sess.resolveRound(60, Higher)
	require.NoError(t, err)
	require.Equal(t, "id-p1", sess.WinnerID)

	rematch, err := sess.startRound(60, nil)
	require.NoError(t, err)

	assert.True(t, rematch)
	assert.Empty(t, sess.WinnerID)
	assert.Equal(t, StatusIn, sess.Players["id-p2"].Status)
	assert.Equal(t, 1, sess.Players["id-p1"].CorrectGuesses)
}

func TestOutPlayersScoreButStayOut(t *testing.T) {
	sess := sessionWith("p1", "p2", "p3")

	_, err := sess.startRound(50, nil)
	require.NoError(t, err)
	guessAll(t, sess, map[string]Direction{"p1": Higher, "p2": Higher, "p3": Lower})
	_, err = sess.resolveRound(60, Higher)
	require.NoError(t, err)
	require.Equal(t, StatusOut, sess.Players["id-p3"].Status)

	_, err = sess.startRound(60, nil)
	require.NoError(t, err)
	guessAll(t, sess, map[string]Direction{"p1": Higher, "p2": Higher, "p3": Higher})
	_, err = sess.resolveRound(70, Higher)
	require.NoError(t, err)

	assert.Equal(t, StatusOut, sess.Players["id-p3"].Status)
	assert.Equal(t, 1, sess.Players["id-p3"].CorrectGuesses)
	assert.Equal(t, 2, sess.Players["id-p1"].CorrectGuesses)
}

func TestResolveRoundRequiresOpenGuesses(t *testing.T) {
	sess := sessionWith("p1")

	_, err := sess.resolveRound(10, Higher)
	require.ErrorIs(t, err, ErrGuessesClosed)
	assert.Nil(t, sess.CurrentValue)
	assert.Equal(t, StatusIn, sess.Players["id-p1"].Status)
}

func TestResolveRoundWithoutPlayers(t *testing.T) {
	sess := sessionWith()

	_, err := sess.startRound(10, nil)
	require.NoError(t, err)

	res, err := sess.resolveRound(20, Higher)
	require.NoError(t, err)
	assert.False(t, res.Revived)
	assert.Empty(t, res.Results)
	assert.Empty(t, res.Leaderboard)
}

// Eliminations only ever hit players who guessed nothing or guessed wrong,
// and a resolved round never leaves a non-empty session with nobody in.
func TestEliminationInvariants(t *testing.T) {
	guesses := []Direction{"", Higher, Lower}
	answers := []Direction{Higher, Lower}

	for _, g1 := range guesses {
		for _, g2 := range guesses {
			for _, g3 := range guesses {
				for _, answer := range answers {
					sess := sessionWith("a", "b", "c")
					_, err := sess.startRound(1, nil)
					require.NoError(t, err)

					submitted := map[string]Direction{"id-a": g1, "id-b": g2, "id-c": g3}
					for id, g := range submitted {
						if g != "" {
							_, err := sess.submitGuess(id, g, testNow)
							require.NoError(t, err)
						}
					}

					res, err := sess.resolveRound(2, answer)
					require.NoError(t, err)

					for _, r := range res.Results {
						if r.Status == StatusOut {
							g := submitted[r.PlayerID]
							assert.True(t, g == "" || g != answer)
						}
					}
					assert.Positive(t, sess.countIn())
				}
			}
		}
	}
}
