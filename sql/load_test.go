package sql

import (
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	db := initDB(t)

	t.Run("Initialize database extensions", func(t *testing.T) {
		err := Init(db.Instance)
		assert.NoError(t, err)

		// Verify pgvector extension is created
		var exists bool
		err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_extension WHERE extname = 'vector');").Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "pgvector extension should be created")
	})

	t.Run("Initialize database extensions is idempotent", func(t *testing.T) {
		err := Init(db.Instance)
		assert.NoError(t, err)

		err = Init(db.Instance)
		assert.NoError(t, err)
	})
}

func TestLoadSessionsSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Load sessions SQL functions", func(t *testing.T) {
		err := LoadSessionsSql(db.Instance, false)
		assert.NoError(t, err)

		for _, funcName := range SessionsFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist", funcName)
		}
	})

	t.Run("Load sessions SQL is idempotent without force", func(t *testing.T) {
		err := LoadSessionsSql(db.Instance, false)
		assert.NoError(t, err)
	})

	t.Run("Load sessions SQL with force reloads", func(t *testing.T) {
		err := LoadSessionsSql(db.Instance, true)
		assert.NoError(t, err)

		for _, funcName := range SessionsFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist after force reload", funcName)
		}
	})
}

func TestLoadPassagesSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Load passages SQL functions", func(t *testing.T) {
		err := LoadPassagesSql(db.Instance, false)
		assert.NoError(t, err)

		for _, funcName := range PassagesFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist", funcName)
		}
	})

	t.Run("Load passages SQL is idempotent without force", func(t *testing.T) {
		err := LoadPassagesSql(db.Instance, false)
		assert.NoError(t, err)
	})
}

func TestLoadAllSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Load all SQL functions", func(t *testing.T) {
		err := LoadAllSql(db.Instance, false)
		assert.NoError(t, err)

		for _, funcName := range append(append([]string{}, SessionsFunctions...), PassagesFunctions...) {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist", funcName)
		}
	})

	t.Run("Load all SQL is idempotent without force", func(t *testing.T) {
		err := LoadAllSql(db.Instance, false)
		assert.NoError(t, err)
	})
}

func TestCheckFunctions(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Check functions returns false when functions don't exist", func(t *testing.T) {
		exists, err := checkFunctions(db.Instance, []string{"nonexistent_function"})
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Check functions returns true when all functions exist", func(t *testing.T) {
		err := LoadSessionsSql(db.Instance, false)
		require.NoError(t, err)

		exists, err := checkFunctions(db.Instance, SessionsFunctions)
		assert.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Check functions returns false when some functions don't exist", func(t *testing.T) {
		mixed := append([]string{"init_sessions"}, "nonexistent_function")
		exists, err := checkFunctions(db.Instance, mixed)
		assert.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestEmbeddedSQL(t *testing.T) {
	t.Run("Init SQL is embedded", func(t *testing.T) {
		assert.NotEmpty(t, initSQL)
		assert.Contains(t, initSQL, "CREATE EXTENSION")
	})

	t.Run("Sessions SQL is embedded", func(t *testing.T) {
		assert.NotEmpty(t, sessionsSQL)
		assert.Contains(t, sessionsSQL, "CREATE")
	})

	t.Run("Passages SQL is embedded", func(t *testing.T) {
		assert.NotEmpty(t, passagesSQL)
		assert.Contains(t, passagesSQL, "CREATE")
	})
}
