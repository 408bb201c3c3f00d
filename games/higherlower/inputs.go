/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package higherlower

// ConnID is always filled in by the transport, never decoded from a client
// payload.

type CreateSessionInput struct {
	ConnID   string `json:"-" validate:"required"`
	HostName string `json:"hostName" validate:"omitempty,max=40"`
}

type CreateSessionOutput struct {
	Code string `json:"code"`
}

type JoinInput struct {
	ConnID     string `json:"-" validate:"required"`
	Code       string `json:"code" validate:"required,len=6,number"`
	PlayerName string `json:"playerName" validate:"required,min=1,max=40"`
}

type JoinOutput struct {
	PlayerID string `json:"playerId"`
	Snapshot
}

type LockInput struct {
	ConnID string `json:"-" validate:"required"`
	Code   string `json:"code" validate:"required,len=6,number"`
}

type StartGameInput struct {
	ConnID string `json:"-" validate:"required"`
	Code   string `json:"code" validate:"required,len=6,number"`
}

type StartRoundInput struct {
	ConnID       string   `json:"-" validate:"required"`
	Code         string   `json:"code" validate:"required,len=6,number"`
	CurrentValue *float64 `json:"currentValue" validate:"required"`
	TimerSeconds *int     `json:"timerSeconds" validate:"omitempty,min=1,max=300"`
}

type SubmitGuessInput struct {
	ConnID   string    `json:"-" validate:"required"`
	Code     string    `json:"code" validate:"required,len=6,number"`
	PlayerID string    `json:"playerId" validate:"required"`
	Guess    Direction `json:"guess" validate:"required,oneof=higher lower"`
}

type ResolveRoundInput struct {
	ConnID        string    `json:"-" validate:"required"`
	Code          string    `json:"code" validate:"required,len=6,number"`
	NextValue     *float64  `json:"nextValue" validate:"required"`
	CorrectAnswer Direction `json:"correctAnswer" validate:"required,oneof=higher lower"`
}

type HostReconnectInput struct {
	ConnID string `json:"-" validate:"required"`
	Code   string `json:"code" validate:"required,len=6,number"`
}

type PlayerReconnectInput struct {
	ConnID   string `json:"-" validate:"required"`
	Code     string `json:"code" validate:"required,len=6,number"`
	PlayerID string `json:"playerId"`
}

type PlayerReconnectOutput struct {
	PlayerID string `json:"playerId"`
	Snapshot
}

type HeartbeatInput struct {
	Code     string `json:"code" validate:"required,len=6,number"`
	PlayerID string `json:"playerId"`
}

type EndGameInput struct {
	ConnID string `json:"-" validate:"required"`
	Code   string `json:"code" validate:"required,len=6,number"`
	Reason string `json:"reason" validate:"omitempty,max=200"`
}
