// Package database provides the storage layer for gtoken.
//
// It persists scene snapshots in SQLite so that a navigation stack can be
// rebuilt verbatim after the process exits. The DBService struct is the
// primary entry point for all database operations.
package database

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaFS embed.FS

// ErrNoSnapshot is returned when no saved stage matches a lookup.
var ErrNoSnapshot = errors.New("database: no saved stage")

// Store defines the interface for snapshot persistence.
type Store interface {
	// SaveStage persists the scenes of one stage, bottom of the stack first,
	// and returns the new stage id.
	SaveStage(scenes []SceneSnapshot) (int64, error)
	// LatestStage returns the most recently saved stage.
	LatestStage() (*StageSnapshot, error)
	// GetStage returns the stage with the given id.
	GetStage(stageID int64) (*StageSnapshot, error)
	// ListStages returns saved stages, newest first, without their scenes.
	ListStages(limit int) ([]*StageSnapshot, error)
	// DeleteStage removes a saved stage and its scenes.
	DeleteStage(stageID int64) error

	// Close gracefully shuts down the database connection.
	Close() error
}

// ============================================================
// Domain Models
// ============================================================

// SceneSnapshot is the persisted form of one scene.
type SceneSnapshot struct {
	SceneID string         `json:"scene_id"`
	Kind    string         `json:"kind"`
	Bundle  map[string]any `json:"bundle"`
}

// StageSnapshot is a saved navigation stack.
type StageSnapshot struct {
	StageID    int64           `json:"stage_id"`
	SavedAt    time.Time       `json:"saved_at"`
	SceneCount int             `json:"scene_count"`
	Scenes     []SceneSnapshot `json:"scenes,omitempty"`
}

// ============================================================
// DBService Implementation
// ============================================================

// DBService implements the Store interface using SQLite.
type DBService struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
	now  func() time.Time
}

// NewDBService opens (creating if needed) the database at path and
// initializes the schema.
//
// Use ":memory:" for in-memory databases (useful for testing).
func NewDBService(path string) (*DBService, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir for %s: %w", path, err)
		}
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=ON", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}

	// One connection: an in-memory database is private to its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	svc := &DBService{
		db:   db,
		path: path,
		now:  time.Now,
	}

	if err := svc.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return svc, nil
}

// initSchema executes the embedded schema.sql.
func (s *DBService) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("reading embedded schema: %w", err)
	}

	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	return nil
}

// SaveStage persists all scenes within a single transaction.
func (s *DBService) SaveStage(scenes []SceneSnapshot) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning save transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.Exec(`INSERT INTO stages (saved_at) VALUES (?)`, s.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("inserting stage: %w", err)
	}
	stageID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading stage id: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO scene_snapshots (stage_id, position, scene_id, kind, bundle)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing scene insert: %w", err)
	}
	defer stmt.Close()

	for i, sc := range scenes {
		b, err := json.Marshal(sc.Bundle)
		if err != nil {
			return 0, fmt.Errorf("marshaling bundle for scene %s: %w", sc.SceneID, err)
		}
		if _, err := stmt.Exec(stageID, i, sc.SceneID, sc.Kind, string(b)); err != nil {
			return 0, fmt.Errorf("inserting scene %s: %w", sc.SceneID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing save transaction: %w", err)
	}
	return stageID, nil
}

// LatestStage returns the newest saved stage with its scenes.
func (s *DBService) LatestStage() (*StageSnapshot, error) {
	s.mu.RLock()
	var stageID int64
	err := s.db.QueryRow(`SELECT stage_id FROM stages ORDER BY saved_at DESC, stage_id DESC LIMIT 1`).Scan(&stageID)
	s.mu.RUnlock()
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest stage: %w", err)
	}
	return s.GetStage(stageID)
}

// GetStage returns one stage with its scenes in stack order.
func (s *DBService) GetStage(stageID int64) (*StageSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var savedAt int64
	err := s.db.QueryRow(`SELECT saved_at FROM stages WHERE stage_id = ?`, stageID).Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("stage %d: %w", stageID, ErrNoSnapshot)
	}
	if err != nil {
		return nil, fmt.Errorf("querying stage %d: %w", stageID, err)
	}

	rows, err := s.db.Query(`
		SELECT scene_id, kind, bundle FROM scene_snapshots
		WHERE stage_id = ? ORDER BY position ASC
	`, stageID)
	if err != nil {
		return nil, fmt.Errorf("querying scenes of stage %d: %w", stageID, err)
	}
	defer rows.Close()

	stage := &StageSnapshot{StageID: stageID, SavedAt: time.Unix(0, savedAt)}
	for rows.Next() {
		var (
			sc  SceneSnapshot
			raw string
		)
		if err := rows.Scan(&sc.SceneID, &sc.Kind, &raw); err != nil {
			return nil, fmt.Errorf("scanning scene: %w", err)
		}
		sc.Bundle, err = decodeBundle(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding bundle of scene %s: %w", sc.SceneID, err)
		}
		stage.Scenes = append(stage.Scenes, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	stage.SceneCount = len(stage.Scenes)
	return stage, nil
}

// ListStages returns stage headers, newest first.
func (s *DBService) ListStages(limit int) ([]*StageSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT st.stage_id, st.saved_at, COUNT(sc.scene_id)
		FROM stages st
		LEFT JOIN scene_snapshots sc ON sc.stage_id = st.stage_id
		GROUP BY st.stage_id
		ORDER BY st.saved_at DESC, st.stage_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing stages: %w", err)
	}
	defer rows.Close()

	var stages []*StageSnapshot
	for rows.Next() {
		var (
			st      StageSnapshot
			savedAt int64
		)
		if err := rows.Scan(&st.StageID, &savedAt, &st.SceneCount); err != nil {
			return nil, fmt.Errorf("scanning stage: %w", err)
		}
		st.SavedAt = time.Unix(0, savedAt)
		stages = append(stages, &st)
	}
	return stages, rows.Err()
}

// DeleteStage removes a stage and its scenes.
func (s *DBService) DeleteStage(stageID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM scene_snapshots WHERE stage_id = ?`, stageID); err != nil {
		return fmt.Errorf("deleting scenes of stage %d: %w", stageID, err)
	}
	res, err := tx.Exec(`DELETE FROM stages WHERE stage_id = ?`, stageID)
	if err != nil {
		return fmt.Errorf("deleting stage %d: %w", stageID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("stage %d: %w", stageID, ErrNoSnapshot)
	}
	return tx.Commit()
}

// Close closes the database connection.
func (s *DBService) Close() error {
	return s.db.Close()
}

// decodeBundle keeps numbers as json.Number so integer values survive.
func decodeBundle(raw string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}
