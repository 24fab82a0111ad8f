// Package store provides the rule storage interface and SQLite implementation.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rcliao/eliza/internal/model"
)

// ErrNotFound is returned when a rule does not exist.
var ErrNotFound = errors.New("rule not found")

// DefaultSet is the rule set used when none is named.
const DefaultSet = "default"

// StoredRule is a versioned rule row.
type StoredRule struct {
	model.Rule
	RowID      string     `json:"row_id"`
	Set        string     `json:"set"`
	Version    int        `json:"version"`
	Supersedes string     `json:"supersedes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// PutParams holds parameters for storing a rule.
type PutParams struct {
	Set  string
	Rule model.Rule // Rule.ID is the key; empty gets a generated one
}

// GetParams holds parameters for retrieving a rule.
type GetParams struct {
	Set     string
	Key     string
	History bool
	Version int // 0 means latest
}

// ListParams holds parameters for listing rules.
type ListParams struct {
	Set             string
	Topic           *model.Topic
	Limit           int // 0 means 100, negative means unlimited
	IncludeInactive bool
}

// RmParams holds parameters for deleting a rule.
type RmParams struct {
	Set         string
	Key         string
	AllVersions bool
	Hard        bool
}

// Store defines the rule storage interface.
type Store interface {
	// Put stores a rule, superseding the previous version of the same key.
	Put(ctx context.Context, p PutParams) (*StoredRule, error)

	// Get retrieves a rule by set and key.
	// Returns a slice (single element normally, multiple with History=true).
	Get(ctx context.Context, p GetParams) ([]StoredRule, error)

	// List lists the latest version of each rule matching the filters.
	List(ctx context.Context, p ListParams) ([]StoredRule, error)

	// Rm soft-deletes (or hard-deletes) a rule.
	Rm(ctx context.Context, p RmParams) error

	// Rules returns the active rule set ready for an engine.
	Rules(ctx context.Context, set string) ([]model.Rule, error)

	// Close closes the store.
	Close() error
}
