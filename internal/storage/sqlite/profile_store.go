// Package sqlite provides the embedded SQLite implementation of the profile
// store, built on the CGO-free modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/scrypster/memorykeeper/internal/storage"
	"github.com/scrypster/memorykeeper/pkg/types"
)

var _ storage.ProfileStore = (*ProfileStore)(nil)

// ProfileStore implements storage.ProfileStore using SQLite.
type ProfileStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProfileStore opens (or creates) the database at dsn with WAL self-healing.
// If the initial open fails due to stale WAL files left behind by a crashed
// process, it verifies no other process holds them and retries once after
// removing the stale -shm/-wal files.
func NewProfileStore(dsn string, logger *zap.Logger) (*ProfileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := openProfileStore(dsn, logger)
	if err == nil {
		return store, nil
	}

	if !staleWALSymptom(err) {
		return nil, err
	}

	files, ok := walFilesFor(dsn)
	if !ok || !files.orphaned() {
		return nil, err
	}

	files.remove(logger)

	store, retryErr := openProfileStore(dsn, logger)
	if retryErr != nil {
		return nil, fmt.Errorf("sqlite: failed after WAL recovery: %w (original: %v)", retryErr, err)
	}

	logger.Warn("sqlite: recovered from stale WAL files", zap.String("path", files.db))
	return store, nil
}

func openProfileStore(dsn string, logger *zap.Logger) (*ProfileStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer; a single connection
	// serialises writes and avoids SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to create schema: %w", err)
	}

	return &ProfileStore{db: db, logger: logger}, nil
}

// ReadStrength returns the stored strength for userID.
func (s *ProfileStore) ReadStrength(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: user ID is required", storage.ErrInvalidInput)
	}

	var strength int
	err := s.db.QueryRowContext(ctx,
		`SELECT memory_strength FROM agent_profiles WHERE user_id = ?`, userID,
	).Scan(&strength)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, storage.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("sqlite: failed to read strength: %w", err)
	}
	return strength, nil
}

// SaveProfile upserts the profile row.
func (s *ProfileStore) SaveProfile(ctx context.Context, profile *types.AgentProfile) error {
	if err := storage.ValidateProfile(profile); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO agent_profiles (user_id, memory_strength, current_persona, last_interaction)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			memory_strength  = excluded.memory_strength,
			current_persona  = excluded.current_persona,
			last_interaction = excluded.last_interaction,
			updated_at       = CURRENT_TIMESTAMP
	`, profile.UserID, profile.MemoryStrength, string(profile.CurrentPersona), profile.LastInteraction.UTC())
	if err != nil {
		return fmt.Errorf("sqlite: failed to save profile: %w", err)
	}
	return nil
}

// AppendPerformance adds one record to the user's performance log.
func (s *ProfileStore) AppendPerformance(ctx context.Context, userID string, record types.PerformanceRecord) error {
	if err := storage.ValidateRecord(userID, record); err != nil {
		return err
	}

	ts := record.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO performance_records
			(user_id, game_id, difficulty, completion_time_seconds, moves, success, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, userID, record.GameID, string(record.Difficulty), record.CompletionTimeSeconds,
		record.Moves, boolToInt(record.Success), ts.UTC())
	if err != nil {
		return fmt.Errorf("sqlite: failed to append performance record: %w", err)
	}
	return nil
}

// ListPerformance returns up to limit of the user's most recent records, oldest first.
func (s *ProfileStore) ListPerformance(ctx context.Context, userID string, limit int) ([]types.PerformanceRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", storage.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT game_id, difficulty, completion_time_seconds, moves, success, recorded_at
		FROM (
			SELECT id, game_id, difficulty, completion_time_seconds, moves, success, recorded_at
			FROM performance_records
			WHERE user_id = ?
			ORDER BY recorded_at DESC, id DESC
			LIMIT ?
		)
		ORDER BY recorded_at ASC, id ASC
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list performance records: %w", err)
	}
	defer rows.Close()

	var out []types.PerformanceRecord
	for rows.Next() {
		var (
			rec        types.PerformanceRecord
			difficulty string
			success    int
		)
		if err := rows.Scan(&rec.GameID, &difficulty, &rec.CompletionTimeSeconds, &rec.Moves, &success, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan performance record: %w", err)
		}
		rec.Difficulty = types.DifficultyTier(difficulty)
		rec.Success = success != 0
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate performance records: %w", err)
	}
	return out, nil
}

// Close flushes the WAL into the main database file and releases resources.
func (s *ProfileStore) Close() error {
	if s.db == nil {
		return nil
	}

	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		s.logger.Warn("sqlite: WAL checkpoint on close failed", zap.Error(err))
	}

	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
