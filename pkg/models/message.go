package models

import "time"

type MessageDirection string

const (
	MessageOutbound MessageDirection = "outbound"
	MessageInbound  MessageDirection = "inbound"
)

type MessageStatus string

const (
	MessageQueued MessageStatus = "queued"
	MessageSent   MessageStatus = "sent"
	MessageFailed MessageStatus = "failed"
)

// Message is an entry in the outbound message queue. The automation
// subsystem only enqueues; transport runs out of process and flips the
// status afterwards.
type Message struct {
	ID        string           `json:"id"`
	LeadID    string           `json:"lead_id"`
	Direction MessageDirection `json:"direction"`
	Channel   string           `json:"channel"`
	Subject   string           `json:"subject"`
	Body      string           `json:"body"`
	Status    MessageStatus    `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}
