package entity

import "time"

// AttemptDestination is the topic audit events are published to.
const AttemptDestination = "credential.attempt"

// AttemptEvent records the outcome of one Authenticate call. It never carries secrets.
type AttemptEvent struct {
	AttemptID  string    `json:"attempt_id"`
	Username   string    `json:"username"`
	Platform   string    `json:"platform"`
	Stage      string    `json:"stage"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}
