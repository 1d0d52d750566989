package usecase

import "context"

// PingOutput contains the health check response.
type PingOutput struct {
	Message string
}

// Ping is the use case behind the bot's health check command.
type Ping struct{}

// NewPing creates a new Ping use case.
func NewPing() *Ping {
	return &Ping{}
}

// Execute reports that the bot is alive.
func (uc *Ping) Execute(_ context.Context) *PingOutput {
	return &PingOutput{Message: "Pong!"}
}
