// Package export writes snapshots of the license table to disk and renders
// license lists as CSV.
package export

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"winsbygroup.com/keyserver/internal/license"
	"winsbygroup.com/keyserver/internal/version"
)

type Service struct {
	db     *sqlx.DB
	dbPath string
	now    func() time.Time
}

func NewService(db *sqlx.DB, dbPath string) *Service {
	return &Service{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}
}

// Result describes a completed export file.
type Result struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Count    int    `json:"count"`
}

// Snapshot is the JSON document stored inside an export file.
type Snapshot struct {
	Version   string           `json:"version"`
	Generated string           `json:"generated"`
	Count     int              `json:"count"`
	Licenses  []license.Record `json:"licenses"`
}

// CreateExport writes every license record as gzip compressed JSON into an
// "exports" directory next to the database file.
func (s *Service) CreateExport(ctx context.Context) (*Result, error) {
	exportDir := filepath.Join(filepath.Dir(s.dbPath), "exports")
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	// read from a consolidated copy so concurrent writes cannot tear the snapshot
	tempPath := filepath.Join(exportDir, "temp_export.db")
	os.Remove(tempPath)
	defer os.Remove(tempPath)

	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, tempPath); err != nil {
		return nil, fmt.Errorf("vacuum into temp: %w", err)
	}

	tempDB, err := sqlx.Open("sqlite3", tempPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open temp db: %w", err)
	}
	defer tempDB.Close()

	recs, err := license.New(tempDB).ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	filename := now.Format("2006-01-02_15.04.05") + "_licenses.json.gz"
	exportPath := filepath.Join(exportDir, filename)

	if err := writeSnapshot(exportPath, Snapshot{
		Version:   version.Version,
		Generated: now.Format(time.RFC3339),
		Count:     len(recs),
		Licenses:  recs,
	}); err != nil {
		return nil, err
	}

	info, err := os.Stat(exportPath)
	if err != nil {
		return nil, fmt.Errorf("stat export file: %w", err)
	}

	return &Result{
		Filename: filename,
		Path:     exportPath,
		Size:     info.Size(),
		Count:    len(recs),
	}, nil
}

func writeSnapshot(path string, snap Snapshot) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	enc := json.NewEncoder(gzWriter)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("write export data: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("close gzip writer: %w", err)
	}
	return file.Close()
}

// ReadSnapshot decodes an export file written by CreateExport.
func ReadSnapshot(path string) (*Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer gz.Close()

	var snap Snapshot
	if err := json.NewDecoder(gz).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	return &snap, nil
}
