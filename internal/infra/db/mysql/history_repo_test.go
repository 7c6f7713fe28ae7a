package mysql

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/tidyroom/internal/domain/analysis"
	"github.com/bryanwahyu/tidyroom/internal/infra/db/migrations"
)

// testRepo returns a migrated repository or skips if MYSQL_DSN is not set.
// MYSQL_DSN is a go-sql-driver DSN, e.g. tidy:tidy@tcp(localhost:3306)/tidyroom?parseTime=true
func testRepo(t *testing.T) *HistoryRepository {
	t.Helper()
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		t.Skip("MYSQL_DSN not set")
	}

	ctx := context.Background()
	require.NoError(t, migrations.Up(migrations.MySQL, "mysql://"+dsn))
	db, err := Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewHistoryRepository(db)
}

func TestHistoryRepository_AppendLoad(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	rec := domain.Record{
		ID:         uuid.New().String(),
		Timestamp:  "2025-03-01 09:00:05",
		Result:     "깨끗한 방",
		Confidence: 97.8125,
	}
	require.NoError(t, repo.Append(ctx, rec))

	log, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, log)
	assert.Equal(t, rec, log[len(log)-1])

	again, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, log, again)
}
