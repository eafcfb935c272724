package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/siteassist/siteassist/internal/blob"
	"github.com/siteassist/siteassist/internal/vectorstore"
)

// PurgeService removes every trace of a user: the database record, the
// cached corpus blobs and the vector collection.
type PurgeService struct {
	users UserStore
	blobs blob.Store
	index vectorstore.Store
}

// NewPurgeService creates a purge service.
func NewPurgeService(users UserStore, blobs blob.Store, index vectorstore.Store) *PurgeService {
	return &PurgeService{users: users, blobs: blobs, index: index}
}

// Purge deletes the user record first, then the derived state. Blob and
// collection deletion are idempotent, so a retried purge converges.
func (p *PurgeService) Purge(ctx context.Context, userID string) error {
	slog.Info("purging user", "user", userID)

	if err := p.users.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user record: %w", err)
	}
	if err := p.blobs.DeleteAll(ctx, userID); err != nil {
		return fmt.Errorf("delete user blobs: %w", err)
	}
	if err := p.index.DeleteCollection(ctx, userID); err != nil {
		return fmt.Errorf("delete user collection: %w", err)
	}

	slog.Info("user purged", "user", userID)
	return nil
}
