package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// DatabaseConfiguration holds the PostgreSQL connection parameters.
type DatabaseConfiguration struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// NewDatabaseConfiguration reads the connection parameters from the
// environment (DB_HOST, DB_PORT, DB_NAME, DB_USER, DB_PASSWORD). A .env file
// in the working directory is loaded first if present.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	// best-effort, env vars win over the file
	_ = godotenv.Load()

	config := &DatabaseConfiguration{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		Name:     os.Getenv("DB_NAME"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
	}

	if config.Host == "" || config.Port == "" || config.Name == "" || config.User == "" {
		return nil, NewError("database configuration", fmt.Errorf("missing one of DB_HOST, DB_PORT, DB_NAME, DB_USER"))
	}

	return config, nil
}

// Database wraps the sql.DB instance together with the logger the handlers
// log through.
type Database struct {
	Instance *sql.DB
	Logger   *slog.Logger
}

// NewDatabase opens a connection with the given configuration. It panics if
// the database is unreachable, matching the fail-fast startup of the library.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) *Database {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.Host, config.Port, config.User, config.Password, config.Name,
	)

	instance, err := sql.Open("postgres", connStr)
	if err != nil {
		logger.Error("Error opening database", slog.String("name", name), slog.Any("error", err))
		panic(err)
	}

	if err := instance.Ping(); err != nil {
		logger.Error("Error connecting to database", slog.String("name", name), slog.Any("error", err))
		panic(err)
	}

	logger.Info("Connected to database", slog.String("name", name))

	return &Database{Instance: instance, Logger: logger}
}

// NewTestDatabase opens a connection for tests, logging to a discarding
// handler.
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	logger := slog.New(slog.DiscardHandler)
	return NewDatabase("test", config, logger)
}

// Close closes the underlying connection.
func (d *Database) Close() error {
	if d.Instance != nil {
		return d.Instance.Close()
	}
	return nil
}

// SetTestDatabaseConfigEnvs sets the connection envs for a test against a
// local container listening on the given port.
func SetTestDatabaseConfigEnvs(t *testing.T, port string) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", port)
	t.Setenv("DB_NAME", "test")
	t.Setenv("DB_USER", "test")
	t.Setenv("DB_PASSWORD", "test")
}

// MustStartPostgresContainer starts a pgvector-enabled PostgreSQL container
// for tests and returns its teardown function and mapped port.
func MustStartPostgresContainer() (func(ctx context.Context, opts ...testcontainers.TerminateOption) error, string, error) {
	ctx := context.Background()

	container, err := postgres.Run(
		ctx,
		"pgvector/pgvector:pg17",
		postgres.WithDatabase("test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", err
	}

	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return container.Terminate, "", err
	}

	return container.Terminate, mappedPort.Port(), nil
}
