// internal/repository/interfaces.go
package repository

import (
	"context"

	"receipt-bridge/internal/model"
)

// ProfileRepository persists printer profiles across restarts
type ProfileRepository interface {
	// Load returns every stored profile; a missing store yields an empty set
	Load(ctx context.Context) (model.ProfileSet, error)
	// Save replaces the stored profiles atomically
	Save(ctx context.Context, profiles model.ProfileSet) error
}
