package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedPairs(t *testing.T) {
	for _, d := range []Dialect{MySQL, Postgres} {
		ups, err := fs.Glob(migrationsFS, string(d)+"/*.up.sql")
		require.NoError(t, err)
		downs, err := fs.Glob(migrationsFS, string(d)+"/*.down.sql")
		require.NoError(t, err)
		assert.NotEmpty(t, ups, "dialect %s", d)
		assert.Len(t, downs, len(ups), "dialect %s", d)
	}
}

func TestUnknownDialect(t *testing.T) {
	err := Up(Dialect("sqlite"), "sqlite://x")
	assert.ErrorContains(t, err, "unknown migration dialect")
}
