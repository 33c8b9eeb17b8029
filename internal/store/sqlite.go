package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/i474232898/surfcams/internal/cams"
)

const schema = `
CREATE TABLE IF NOT EXISTS categories (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT    NOT NULL,
	color TEXT    NOT NULL DEFAULT '',
	ord   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS cams (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	slug             TEXT    NOT NULL,
	title            TEXT    NOT NULL,
	subtitle         TEXT    NOT NULL DEFAULT '',
	url              TEXT    NOT NULL,
	title_color      TEXT    NOT NULL DEFAULT '#ffffff',
	subtitle_color   TEXT    NOT NULL DEFAULT '#ffffff',
	background_color TEXT    NOT NULL DEFAULT '#000000',
	spot_id          TEXT,
	proxy            INTEGER NOT NULL DEFAULT 0,
	offline_since    TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_cams_slug ON cams(slug);

CREATE TABLE IF NOT EXISTS category_cams (
	category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
	cam_id      INTEGER NOT NULL REFERENCES cams(id) ON DELETE CASCADE,
	ord         INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (category_id, cam_id)
);
`

const camColumns = `c.id, c.slug, c.title, c.subtitle, c.url, c.title_color, c.subtitle_color,
	c.background_color, c.spot_id, c.proxy, c.offline_since`

// SQLiteStore keeps the cam catalog in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and ensures
// the schema. Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection: SQLite serialises writers anyway and :memory:
	// databases are per-connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configuring database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ReplaceCatalog swaps the whole catalog in one transaction.
func (s *SQLiteStore) ReplaceCatalog(ctx context.Context, categories []cams.Category) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range []string{`DELETE FROM category_cams`, `DELETE FROM cams`, `DELETE FROM categories`} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clearing catalog: %w", err)
		}
	}

	byURL := make(map[string]int64)
	for i, cat := range categories {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO categories (title, color, ord) VALUES (?, ?, ?)`,
			cat.Title, cat.Color, i)
		if err != nil {
			return fmt.Errorf("inserting category %q: %w", cat.Title, err)
		}
		catID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		for j, c := range cat.Cams {
			camID, ok := byURL[c.URL]
			if !ok {
				res, err := tx.ExecContext(ctx, `
					INSERT INTO cams (slug, title, subtitle, url, title_color, subtitle_color,
						background_color, spot_id, proxy, offline_since)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
					c.Slug, c.Title, c.Subtitle, c.URL, c.TitleColor, c.SubtitleColor,
					c.BackgroundColor, nullString(c.SpotID), c.Proxy, formatTime(c.OfflineSince))
				if err != nil {
					return fmt.Errorf("inserting cam %q: %w", c.Title, err)
				}
				if camID, err = res.LastInsertId(); err != nil {
					return err
				}
				byURL[c.URL] = camID
			}

			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO category_cams (category_id, cam_id, ord) VALUES (?, ?, ?)`,
				catID, camID, j); err != nil {
				return fmt.Errorf("linking cam %q: %w", c.Title, err)
			}
		}
	}

	return tx.Commit()
}

// ListCategories returns categories by order, each with its ordered cams.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]cams.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, color, ord FROM categories ORDER BY ord, id`)
	if err != nil {
		return nil, err
	}
	var categories []cams.Category
	index := make(map[int64]int)
	for rows.Next() {
		var cat cams.Category
		if err := rows.Scan(&cat.ID, &cat.Title, &cat.Color, &cat.Order); err != nil {
			rows.Close()
			return nil, err
		}
		cat.Cams = []cams.Cam{}
		index[cat.ID] = len(categories)
		categories = append(categories, cat)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT cc.category_id, `+camColumns+`
		FROM category_cams cc
		JOIN cams c ON c.id = cc.cam_id
		ORDER BY cc.category_id, cc.ord, c.id`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var catID int64
		cam, err := scanCam(rows, &catID)
		if err != nil {
			rows.Close()
			return nil, err
		}
		if i, ok := index[catID]; ok {
			categories[i].Cams = append(categories[i].Cams, cam)
		}
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	if categories == nil {
		categories = []cams.Category{}
	}
	return categories, nil
}

// ListCams returns every cam by id.
func (s *SQLiteStore) ListCams(ctx context.Context) ([]cams.Cam, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+camColumns+` FROM cams c ORDER BY c.id`)
	if err != nil {
		return nil, err
	}
	list := []cams.Cam{}
	for rows.Next() {
		cam, err := scanCam(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		list = append(list, cam)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}
	return list, nil
}

// GetCam returns the cam with the given id.
func (s *SQLiteStore) GetCam(ctx context.Context, id int64) (cams.Cam, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+camColumns+` FROM cams c WHERE c.id = ?`, id)
	return getCam(row)
}

// GetCamBySlug returns the cam with the given slug.
func (s *SQLiteStore) GetCamBySlug(ctx context.Context, slug string) (cams.Cam, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+camColumns+` FROM cams c WHERE c.slug = ?`, slug)
	return getCam(row)
}

// UpdateOfflineSince stores OfflineSince for the given cams in one
// transaction.
func (s *SQLiteStore) UpdateOfflineSince(ctx context.Context, list []cams.Cam) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `UPDATE cams SET offline_since = ? WHERE id = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range list {
		if _, err = stmt.ExecContext(ctx, formatTime(c.OfflineSince), c.ID); err != nil {
			return fmt.Errorf("updating cam %d: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

// scanCam reads camColumns, preceded by any extra destinations.
func scanCam(row scanner, extra ...any) (cams.Cam, error) {
	var (
		c       cams.Cam
		spotID  sql.NullString
		offline sql.NullString
	)
	dest := append(extra,
		&c.ID, &c.Slug, &c.Title, &c.Subtitle, &c.URL, &c.TitleColor, &c.SubtitleColor,
		&c.BackgroundColor, &spotID, &c.Proxy, &offline)
	if err := row.Scan(dest...); err != nil {
		return cams.Cam{}, err
	}
	c.SpotID = spotID.String
	if offline.Valid {
		t, err := time.Parse(time.RFC3339Nano, offline.String)
		if err != nil {
			return cams.Cam{}, fmt.Errorf("cam %d offline_since: %w", c.ID, err)
		}
		c.OfflineSince = &t
	}
	return c, nil
}

func getCam(row *sql.Row) (cams.Cam, error) {
	c, err := scanCam(row)
	if errors.Is(err, sql.ErrNoRows) {
		return cams.Cam{}, ErrNotFound
	}
	return c, err
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func formatTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}
