package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestDatabase(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping container test in short mode")
	}
	ctx := context.Background()

	first := SetupTestDatabase(t)
	second := SetupTestDatabase(t)
	require.NotEqual(t, first.Name, second.Name)

	t.Run("clones carry the migrated schema", func(t *testing.T) {
		for _, td := range []*TestDatabase{first, second} {
			var table *string
			err := td.DB.QueryRow(ctx, `SELECT to_regclass('public.questions')::text`).Scan(&table)
			require.NoError(t, err)
			assert.NotNil(t, table, td.Name)
		}
	})

	t.Run("writes stay in their own database", func(t *testing.T) {
		_, err := first.DB.Exec(ctx, `CREATE TABLE scratch (id int)`)
		require.NoError(t, err)

		var table *string
		err = second.DB.QueryRow(ctx, `SELECT to_regclass('public.scratch')::text`).Scan(&table)
		require.NoError(t, err)
		assert.Nil(t, table)
	})
}
