// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into activation emails.
package queue

// UserRegisteredEvent is published when a signup commits. It carries
// enough information for the email worker to build and send the
// activation message without querying the primary database.
type UserRegisteredEvent struct {
	Email        string `json:"email"`
	Username     string `json:"username"`
	RegisteredAt string `json:"registered_at"`
}

// UserRegisteredQueue is the durable queue the signup events travel on.
const UserRegisteredQueue = "user.registered"
