package domain

import (
	"time"

	"github.com/google/uuid"
)

// Priority is the ticket priority as reported by the ingesting channel.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ValidPriority reports whether p is one of the known priority values.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// CustomerTier classifies the customer's account level.
type CustomerTier string

const (
	TierStandard   CustomerTier = "standard"
	TierPremium    CustomerTier = "premium"
	TierEnterprise CustomerTier = "enterprise"
)

// Ticket is a single customer-support message entering the pipeline.
// Immutable once ingested; stages read it and never write back.
type Ticket struct {
	ID           uuid.UUID
	ExternalID   string
	Channel      string
	Source       string
	CustomerID   string
	CustomerTier CustomerTier
	Priority     Priority
	Subject      string
	Content      string
	ReceivedAt   time.Time
}

// CooldownKey is the suppression key for this ticket's alerts.
// Two tickets share a cooldown window iff their keys are equal.
func (t Ticket) CooldownKey() string {
	return t.Channel + ":" + t.Source
}
