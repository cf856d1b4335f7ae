package identity

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lectorium/lectorium/internal/models"
)

// Provider enumerates the identities known to the system. The workflow core
// treats identity management as a collaborator concern; this interface is the
// seam it consumes.
type Provider interface {
	ListIdentities(ctx context.Context) ([]string, error)
}

// DatabaseProvider serves identities from the users table.
type DatabaseProvider struct {
	db *gorm.DB
}

// NewDatabaseProvider constructs a Provider backed by the users table.
func NewDatabaseProvider(db *gorm.DB) (*DatabaseProvider, error) {
	if db == nil {
		return nil, errors.New("identity provider: db is required")
	}
	return &DatabaseProvider{db: db}, nil
}

// ListIdentities returns the ids of all active users.
func (p *DatabaseProvider) ListIdentities(ctx context.Context) ([]string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var ids []string
	if err := p.db.WithContext(ctx).
		Model(&models.User{}).
		Where("is_active = ?", true).
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("identity provider: list identities: %w", err)
	}

	return ids, nil
}
