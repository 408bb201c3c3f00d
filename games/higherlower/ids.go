/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package higherlower

import (
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_ids.go github.com/Seednode/higherlower/games/higherlower IDGenerator,CodeSource

// IDGenerator produces opaque player ids.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator hands out random (v4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock abstracts wall time and deferred callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock uses the time package.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
