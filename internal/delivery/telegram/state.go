package telegram

import "time"

const UserStateKey = "user_state:%d"

const (
	StateIdle = iota

	// /lot and /target without an argument wait for the value in the next message
	StateWaitingLotSize
	StateWaitingProfitTarget
)

const userStateTTL = 10 * time.Minute
