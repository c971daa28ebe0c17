package services

import "time"

// ActorContext identifies who performs an operation and in which branch.
type ActorContext struct {
	ActorID  uint
	BranchID uint
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }
