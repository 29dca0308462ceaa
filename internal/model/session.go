package model

type SessionStatus string

const (
	SessionIdle      SessionStatus = "Idle"
	SessionRunning   SessionStatus = "Running"
	SessionSucceeded SessionStatus = "Succeeded"
	SessionFailed    SessionStatus = "Failed"
)
