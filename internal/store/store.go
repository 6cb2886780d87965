// Package store provides decision history persistence.
package store

import (
	"context"
	"time"

	"opentrade/internal/models"
)

// DecisionStore defines the interface for decision persistence.
type DecisionStore interface {
	SaveDecision(ctx context.Context, decision *models.TradingDecision) (string, error)
	GetDecision(ctx context.Context, id string) (*DecisionRecord, error)
	ListDecisions(ctx context.Context, filter DecisionFilter) ([]DecisionRecord, error)
	Close() error
}

// DecisionRecord is one persisted pipeline run.
type DecisionRecord struct {
	ID        string
	CreatedAt time.Time
	Decision  *models.TradingDecision
}

// DecisionFilter represents filters for querying decision history.
type DecisionFilter struct {
	Ticker    string
	Signal    models.Signal
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}
