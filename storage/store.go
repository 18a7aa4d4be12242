package storage

import (
	"context"
	"errors"

	"github.com/octabyte/alumni-portal/enums"
)

// Storage keys of a visitor's session. They are written and cleared together.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyRole         = "role"
)

var (
	ErrLocked           = errors.New("storage: a submission is already in progress")
	ErrIncompleteRecord = errors.New("storage: record must carry both tokens and a role")
)

// Record is everything persisted about a session beyond one page load.
type Record struct {
	AccessToken  string
	RefreshToken string
	Role         enums.Role
}

func (r Record) Empty() bool {
	return r.AccessToken == "" && r.RefreshToken == "" && r.Role == ""
}

func (r Record) Complete() bool {
	return r.AccessToken != "" && r.RefreshToken != "" && r.Role.Valid()
}

// Store is the durable storage of one visitor.
type Store interface {
	Load(ctx context.Context) (Record, error)
	// Save writes all three keys in a single atomic step. Incomplete
	// records are refused with ErrIncompleteRecord.
	Save(ctx context.Context, rec Record) error
	// Clear removes all three keys. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
	// AcquireSubmit serializes credential submissions of the visitor. It
	// fails with ErrLocked while another submission holds the lock.
	AcquireSubmit(ctx context.Context) (release func(), err error)
}

// Backend hands out visitor-scoped stores.
type Backend interface {
	Scope(sessionID string) Store
}
