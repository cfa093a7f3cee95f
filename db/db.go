package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quiz-server/models"
)

const (
	keyBestPrefix  = "best."
	keyHistory     = "history"
	keyOrangeTheme = "pref.orange_theme"
	keyLargeText   = "pref.large_text"
)

// InitDB initializes the PostgreSQL database connection pool
func InitDB(connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Ping the database to verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to PostgreSQL database!")
	return pool, nil
}

// CreateSchema sets up the key/value table holding every player's durable state.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	schemaSQL := `
	CREATE TABLE IF NOT EXISTS player_state (
		player VARCHAR(255) NOT NULL,
		key VARCHAR(255) NOT NULL,
		value TEXT NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (player, key)
	);
	`
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}
	return nil
}

// PostgresStorage keeps snapshots as key/value rows in the player_state table.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage wraps an initialized pool.
func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

// Load reads every key of player. Unknown keys are ignored.
func (s *PostgresStorage) Load(ctx context.Context, player string) (models.Snapshot, error) {
	rows, err := s.pool.Query(ctx, `SELECT key, value FROM player_state WHERE player = $1`, player)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to query state for player %s: %w", player, err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Snapshot{}, fmt.Errorf("failed to scan state row: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to read state rows: %w", err)
	}
	return decodeValues(values)
}

// Save upserts every key of snap for player in one transaction.
func (s *PostgresStorage) Save(ctx context.Context, player string, snap models.Snapshot) error {
	values, err := encodeValues(snap)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	batch := &pgx.Batch{}
	for key, value := range values {
		batch.Queue(`
			INSERT INTO player_state (player, key, value, updated_at)
			VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
			ON CONFLICT (player, key) DO UPDATE SET
				value = EXCLUDED.value,
				updated_at = EXCLUDED.updated_at
		`, player, key, value)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save state for player %s: %w", player, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit state for player %s: %w", player, err)
	}
	return nil
}

// encodeValues flattens a snapshot into the stored key/value rows.
func encodeValues(snap models.Snapshot) (map[string]string, error) {
	values := make(map[string]string)
	for _, t := range models.QuizTypes {
		values[keyBestPrefix+string(t)] = strconv.Itoa(snap.BestScores[t])
	}
	history := snap.History
	if history == nil {
		history = []string{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history: %w", err)
	}
	values[keyHistory] = string(historyJSON)
	values[keyOrangeTheme] = strconv.FormatBool(snap.OrangeTheme)
	values[keyLargeText] = strconv.FormatBool(snap.LargeText)
	return values, nil
}

// decodeValues is the inverse of encodeValues; missing keys take zero values.
func decodeValues(values map[string]string) (models.Snapshot, error) {
	snap := models.Snapshot{BestScores: map[models.QuizType]int{}, History: []string{}}
	var errs []error
	for key, value := range values {
		switch {
		case strings.HasPrefix(key, keyBestPrefix):
			t, err := models.ParseQuizType(strings.TrimPrefix(key, keyBestPrefix))
			if err != nil {
				log.Printf("Warning: ignoring stored best score %s: %v", key, err)
				continue
			}
			n, err := strconv.Atoi(value)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid best score %s=%q: %w", key, value, err))
				continue
			}
			snap.BestScores[t] = n
		case key == keyHistory:
			if err := json.Unmarshal([]byte(value), &snap.History); err != nil {
				errs = append(errs, fmt.Errorf("invalid history: %w", err))
			}
		case key == keyOrangeTheme, key == keyLargeText:
			b, err := strconv.ParseBool(value)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid preference %s=%q: %w", key, value, err))
				continue
			}
			if key == keyOrangeTheme {
				snap.OrangeTheme = b
			} else {
				snap.LargeText = b
			}
		}
	}
	if snap.History == nil {
		snap.History = []string{}
	}
	return snap, errors.Join(errs...)
}
