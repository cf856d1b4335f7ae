package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lectorium/lectorium/internal/database/testutil"
	"github.com/lectorium/lectorium/internal/models"
)

func TestDatabaseProviderListsActiveIdentities(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	users := []models.User{
		{BaseModel: models.BaseModel{ID: "alice"}, Username: "alice", Email: "alice@example.com", Password: "x", IsActive: true},
		{BaseModel: models.BaseModel{ID: "bob"}, Username: "bob", Email: "bob@example.com", Password: "x", IsActive: true},
		{BaseModel: models.BaseModel{ID: "mallory"}, Username: "mallory", Email: "mallory@example.com", Password: "x", IsActive: false},
	}
	for i := range users {
		require.NoError(t, db.Create(&users[i]).Error)
	}

	provider, err := NewDatabaseProvider(db)
	require.NoError(t, err)

	ids, err := provider.ListIdentities(context.Background())
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"alice", "bob"}, ids)
}

func TestNewDatabaseProviderRequiresDB(t *testing.T) {
	_, err := NewDatabaseProvider(nil)
	require.Error(t, err)
}
