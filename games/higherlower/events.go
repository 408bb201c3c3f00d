/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package higherlower

// EventName identifies an asynchronous message pushed to connections.
type EventName string

const (
	EventLobbyCreated      EventName = "lobby_created"
	EventLobbyUpdated      EventName = "lobby_updated"
	EventLobbyLocked       EventName = "lobby_locked"
	EventGameStarted       EventName = "game_started"
	EventRoundStarted      EventName = "round_started"
	EventGuessSubmitted    EventName = "guess_submitted"
	EventRoundResolved     EventName = "round_resolved"
	EventPlayerJoined      EventName = "player_joined"
	EventPlayerReconnected EventName = "player_reconnected"
	EventGameEnded         EventName = "game_ended"
)

// Reasons carried by EventGameEnded.
const (
	ReasonHostEnded   = "host-ended"
	ReasonHostTimeout = "host-timeout"
)

type Event struct {
	Name EventName
	Data any
}

// Broadcaster delivers events to connections. The engine calls it from its
// loop, so implementations must not block and must not call back into the
// engine.
type Broadcaster interface {
	// Subscribe adds connID to the broadcast group for code.
	Subscribe(connID, code string)

	// Publish sends ev to every connection subscribed to code, in call order.
	Publish(code string, ev Event)

	// Send delivers ev to a single connection.
	Send(connID string, ev Event)

	// Disband unsubscribes every connection from code.
	Disband(code string)
}

type LobbyCreatedData struct {
	Code string `json:"code"`
}

type LobbyLockedData struct {
	Code string `json:"code"`
}

type GameStartedData struct {
	Code string `json:"code"`
}

type RoundStartedData struct {
	RoundIndex   int     `json:"roundIndex"`
	CurrentValue float64 `json:"currentValue"`
	TimerSeconds *int    `json:"timerSeconds"`
	Rematch      bool    `json:"rematch,omitempty"`
}

type GuessSubmittedData struct {
	PlayerID string    `json:"playerId"`
	Guess    Direction `json:"guess"`
}

// GuessResult is one player's outcome for a resolved round. Status is the
// status after elimination and before any revival.
type GuessResult struct {
	PlayerID string     `json:"playerId"`
	Guessed  *Direction `json:"guessed"`
	Correct  bool       `json:"correct"`
	Status   Status     `json:"status"`
}

type RoundResolvedData struct {
	RoundIndex    int           `json:"roundIndex"`
	CorrectAnswer Direction     `json:"correctAnswer"`
	NextValue     float64       `json:"nextValue"`
	Results       []GuessResult `json:"results"`
	Revived       bool          `json:"revived"`
	WinnerID      string        `json:"winnerId,omitempty"`
	Leaderboard   []PlayerView  `json:"leaderboard"`
}

type PlayerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PlayerJoinedData struct {
	Player PlayerRef `json:"player"`
}

type PlayerReconnectedData struct {
	PlayerID string `json:"playerId"`
}

type GameEndedData struct {
	Reason string `json:"reason"`
}
