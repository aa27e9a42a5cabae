/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gcodekit5/internal/domain"
	applog "gcodekit5/internal/log"
	"gcodekit5/internal/version"
	"log/slog"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName stores all per-project ephemeral/index data under the project root.
	IndexDirName  = ".gcodekit5"
	IndexFileName = "index.sqlite"

	// schemaVersion tracks the local SQLite schema for the embedded index.
	// Bump this when you perform breaking schema changes and add migrations.
	schemaVersion = 2
)

// IndexPath returns the full path to the project's embedded index database file.
func IndexPath(projectRoot string) string {
	return filepath.Join(projectRoot, IndexDirName, IndexFileName)
}

// InitOrOpenIndex ensures that the per-project SQLite index exists at
// .gcodekit5/index.sqlite, opens the database, enables WAL mode, and
// ensures the meta/version tables exist. The returned *sql.DB is ready for
// use. Callers may close it when no longer needed.
func InitOrOpenIndex(projectRoot string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_init").With(
		slog.String("root", projectRoot),
	)
	if stringsTrim(projectRoot) == "" {
		return nil, errors.New("project root is required")
	}
	if err := os.MkdirAll(filepath.Join(projectRoot, IndexDirName), 0o755); err != nil {
		l.Error("create index dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	path := IndexPath(projectRoot)
	uriPath := filepath.ToSlash(path)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", uriPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}

	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure index schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.Info("index ready", slog.String("path", path))
	return db, nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		switch next {
		case 2:
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("begin migration %d: %w", next, err)
			}
			stmts := []string{
				`CREATE INDEX IF NOT EXISTS idx_cross_refs_to ON cross_refs(to_id);`,
				`CREATE INDEX IF NOT EXISTS idx_cross_refs_from ON cross_refs(from_id);`,
				`CREATE INDEX IF NOT EXISTS idx_job_records_created ON job_records(created_at);`,
			}
			for _, q := range stmts {
				if _, err := tx.ExecContext(ctx, q); err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("migration %d stmt failed: %w", next, err)
				}
			}
			if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d update version: %w", next, err)
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("migration %d commit: %w", next, err)
			}
			if _, err := db.ExecContext(ctx, `INSERT INTO fts_documents(fts_documents) VALUES('optimize')`); err != nil {
				// best-effort optimize; ignore errors
				_ = err
			}
		default:
			// unknown future step
		}
		cur = next
	}
	return nil
}

// ensureIndexSchema creates core index tables and FTS structures if they do not exist.
func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		// Searchable text extracted from shape labels, tool names, op notes.
		`CREATE TABLE IF NOT EXISTS documents (
			doc_id    INTEGER PRIMARY KEY,
			type      TEXT    NOT NULL,
			path      TEXT    NOT NULL,
			shape_id  INTEGER,
			tool_id   TEXT,
			text      TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_path ON documents(path);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_shape ON documents(shape_id);`,

		// Contentless FTS5 index fed from documents via triggers.
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_documents USING fts5(
			text,
			content='',
			tokenize = 'unicode61'
		);`,

		// Cross references: which CAM operation (from_id) touches which shape (to_id).
		`CREATE TABLE IF NOT EXISTS cross_refs (
			from_id INTEGER NOT NULL,
			to_id   INTEGER NOT NULL,
			PRIMARY KEY(from_id, to_id)
		);`,

		// Assets catalog (imported SVG/DXF/bitmap sources).
		`CREATE TABLE IF NOT EXISTS assets (
			hash TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			type TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_assets_path ON assets(path);`,

		// Toolpath preview render cache (PNG thumbnails keyed by operation).
		`CREATE TABLE IF NOT EXISTS previews (
			id         INTEGER PRIMARY KEY,
			op_id      INTEGER NOT NULL,
			variant    TEXT,
			thumb_blob BLOB,
			updated_at TEXT    NOT NULL
		);`,
		// The unique (op_id, variant, w, h) key is added by EnsurePreviewsMigrated.

		// Design document history (undo-journal snapshots for crash recovery).
		`CREATE TABLE IF NOT EXISTS snapshots (
			id         INTEGER PRIMARY KEY,
			ts         TEXT    NOT NULL,
			delta_blob BLOB    NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON snapshots(ts);`,

		// JobRecord history: one row per completed toolpath generation.
		`CREATE TABLE IF NOT EXISTS job_records (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at   TEXT    NOT NULL,
			op_kind      TEXT    NOT NULL,
			shape_ids    TEXT    NOT NULL,
			tool_id      TEXT,
			params       TEXT,
			program_hash TEXT    NOT NULL,
			duration_sec REAL    NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
			INSERT INTO fts_documents(rowid, text) VALUES (new.doc_id, new.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
			INSERT INTO fts_documents(fts_documents, rowid, text) VALUES ('delete', old.doc_id, old.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE OF text ON documents BEGIN
			INSERT INTO fts_documents(fts_documents, rowid, text) VALUES ('delete', old.doc_id, old.text);
			INSERT INTO fts_documents(rowid, text) VALUES (new.doc_id, new.text);
		END;`,
	}
	for _, q := range triggers {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts triggers: %w", err)
		}
	}
	if err := EnsurePreviewsMigrated(ctx, db); err != nil {
		return err
	}
	return nil
}

// DetectAndRebuildIndex checks for corruption or missing schema and rebuilds
// the index if needed. It returns true when a rebuild was performed.
func DetectAndRebuildIndex(ctx context.Context, projectRoot string, doc domain.Document) (bool, error) {
	path := IndexPath(projectRoot)
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		backupIndexFile(path)
		_ = os.Remove(path)
		if rbErr := RebuildIndex(ctx, projectRoot, doc); rbErr != nil {
			return false, fmt.Errorf("rebuild after open failure: %w (open err: %v)", rbErr, err)
		}
		return true, nil
	}
	defer db.Close()
	needs := false
	var chk string
	if err := db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.Contains(strings.ToLower(chk), "ok") {
		needs = true
	}
	if !needs {
		if _, err := db.ExecContext(ctx, `SELECT 1 FROM documents LIMIT 1;`); err != nil {
			needs = true
		}
	}
	if !needs {
		return false, nil
	}
	backupIndexFile(path)
	_ = os.Remove(path)
	if err := RebuildIndex(ctx, projectRoot, doc); err != nil {
		return false, err
	}
	return true, nil
}

// backupIndexFile copies the current index file into a timestamped backup.
func backupIndexFile(indexPath string) {
	bdir := filepath.Join(filepath.Dir(indexPath), "backups")
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(indexPath), stamp))
	if data, err := os.ReadFile(indexPath); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}

// stringsTrim is a tiny helper to avoid importing strings here just for TrimSpace.
func stringsTrim(s string) string {
	i := 0
	j := len(s)
	for i < j {
		c := s[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			i++
			continue
		}
		break
	}
	for i < j {
		c := s[j-1]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			j--
			continue
		}
		break
	}
	return s[i:j]
}

// BuildIndexIfEmpty performs a minimal index build if the index
// has no documents content yet, populating it from the given document.
func BuildIndexIfEmpty(ctx context.Context, projectRoot string, doc domain.Document) error {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	var cnt int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents;").Scan(&cnt); err != nil {
		return fmt.Errorf("check documents count: %w", err)
	}
	if cnt > 0 {
		return nil
	}
	return rebuildDocumentsFromDesign(ctx, db, doc)
}

// UpdateIndex replaces the documents content from the provided design document.
func UpdateIndex(ctx context.Context, projectRoot string, doc domain.Document) error {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	return rebuildDocumentsFromDesign(ctx, db, doc)
}

// RebuildIndex drops and recreates core index tables and rebuilds content
// from the design document. Preserves meta/version/job_records tables; the
// searchable index is entirely derived from design.json and is safe to
// regenerate at any time.
func RebuildIndex(ctx context.Context, projectRoot string, doc domain.Document) error {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	drops := []string{
		"DROP TABLE IF EXISTS cross_refs;",
		"DROP TABLE IF EXISTS assets;",
		"DROP TABLE IF EXISTS previews;",
		"DROP TABLE IF EXISTS snapshots;",
		"DROP TRIGGER IF EXISTS documents_ai;",
		"DROP TRIGGER IF EXISTS documents_ad;",
		"DROP TRIGGER IF EXISTS documents_au;",
		"DROP TABLE IF EXISTS documents;",
		"DROP TABLE IF EXISTS fts_documents;",
	}
	for _, q := range drops {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("drop schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("drop commit: %w", err)
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		return err
	}
	return rebuildDocumentsFromDesign(ctx, db, doc)
}

// rebuildDocumentsFromDesign replaces the documents table content from the
// given design document: shape labels, tool names, and operation notes.
// cross_refs link an operation's document row to each shape document row it
// touches, keyed by the documents table's own doc_id (not the domain id).
func rebuildDocumentsFromDesign(ctx context.Context, db *sql.DB, doc domain.Document) error {
	type row struct {
		typeStr string
		path    string
		shapeID sql.NullInt64
		toolID  sql.NullString
		text    string
	}
	rows := make([]row, 0, 256)

	if s := stringsTrim(doc.Name); s != "" {
		rows = append(rows, row{typeStr: "design_name", path: "design:name", text: s})
	}
	if s := stringsTrim(doc.Metadata.Notes); s != "" {
		rows = append(rows, row{typeStr: "design_notes", path: "design:notes", text: s})
	}
	shapeDocRow := make(map[uint64]int) // shape domain id -> index into rows
	for _, sh := range doc.Shapes {
		if sh.Kind == "" {
			continue
		}
		shapeDocRow[sh.ID] = len(rows)
		rows = append(rows, row{
			typeStr: "shape",
			path:    fmt.Sprintf("shape:%d", sh.ID),
			shapeID: sql.NullInt64{Int64: int64(sh.ID), Valid: true},
			text:    sh.Kind,
		})
	}
	for _, t := range doc.Tools {
		if s := stringsTrim(t.Name); s != "" {
			rows = append(rows, row{typeStr: "tool", path: "tool:" + t.ID, toolID: sql.NullString{String: t.ID, Valid: true}, text: s})
		}
	}
	opDocRow := make(map[uint64]int) // operation domain id -> index into rows
	for _, op := range doc.Operations {
		opDocRow[op.ID] = len(rows)
		rows = append(rows, row{
			typeStr: "operation",
			path:    fmt.Sprintf("operation:%d", op.ID),
			toolID:  sql.NullString{String: op.ToolID, Valid: op.ToolID != ""},
			text:    op.Kind,
		})
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents;"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear documents: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM cross_refs;"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear cross_refs: %w", err)
	}
	ins, err := tx.PrepareContext(ctx, "INSERT INTO documents(type, path, shape_id, tool_id, text) VALUES(?,?,?,?,?);")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()
	docIDs := make([]int64, len(rows))
	for i, r := range rows {
		res, err := ins.ExecContext(ctx, r.typeStr, r.path, r.shapeID, r.toolID, r.text)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert document: %w", err)
		}
		docIDs[i], err = res.LastInsertId()
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("read inserted document id: %w", err)
		}
	}
	xref, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO cross_refs(from_id, to_id) VALUES(?,?);")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare cross_ref insert: %w", err)
	}
	defer xref.Close()
	for _, op := range doc.Operations {
		opIdx, ok := opDocRow[op.ID]
		if !ok {
			continue
		}
		for _, sid := range op.ShapeIDs {
			shapeIdx, ok := shapeDocRow[sid]
			if !ok {
				continue
			}
			if _, err := xref.ExecContext(ctx, docIDs[opIdx], docIDs[shapeIdx]); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("insert cross_ref: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// AppendJobRecord inserts a completed toolpath generation into the
// project's embedded index.
func AppendJobRecord(ctx context.Context, projectRoot string, rec domain.JobRecord) (int64, error) {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	shapeIDs, err := json.Marshal(rec.ShapeIDs)
	if err != nil {
		return 0, fmt.Errorf("marshal shape ids: %w", err)
	}
	var paramsJSON []byte
	if rec.Params != nil {
		paramsJSON, err = json.Marshal(rec.Params)
		if err != nil {
			return 0, fmt.Errorf("marshal params: %w", err)
		}
	}
	createdAt := rec.CreatedAt
	if createdAt == "" {
		createdAt = time.Now().UTC().Format(time.RFC3339)
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO job_records(created_at, op_kind, shape_ids, tool_id, params, program_hash, duration_sec) VALUES(?,?,?,?,?,?,?);`,
		createdAt, rec.OperationKind, string(shapeIDs), rec.ToolID, string(paramsJSON), rec.ProgramHash, rec.DurationSec)
	if err != nil {
		return 0, fmt.Errorf("insert job record: %w", err)
	}
	return res.LastInsertId()
}

// ListJobRecords returns the most recent job records, newest first,
// limited to limit rows (0 means no limit).
func ListJobRecords(ctx context.Context, projectRoot string, limit int) ([]domain.JobRecord, error) {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := "SELECT id, created_at, op_kind, shape_ids, tool_id, params, program_hash, duration_sec FROM job_records ORDER BY created_at DESC"
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query job records: %w", err)
	}
	defer rows.Close()

	var out []domain.JobRecord
	for rows.Next() {
		var rec domain.JobRecord
		var shapeIDsJSON string
		var toolID, paramsJSON sql.NullString
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &rec.OperationKind, &shapeIDsJSON, &toolID, &paramsJSON, &rec.ProgramHash, &rec.DurationSec); err != nil {
			return nil, fmt.Errorf("scan job record: %w", err)
		}
		rec.ToolID = toolID.String
		_ = json.Unmarshal([]byte(shapeIDsJSON), &rec.ShapeIDs)
		if paramsJSON.Valid && paramsJSON.String != "" {
			_ = json.Unmarshal([]byte(paramsJSON.String), &rec.Params)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
