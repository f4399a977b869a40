package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/GuiaBolso/darwin"
	_ "github.com/mattn/go-sqlite3"
)

// ApplicationID marks a SQLite file as a keyserver database.
// "KEYS" in ASCII: K=0x4B, E=0x45, Y=0x59, S=0x53
const ApplicationID = 0x4B455953

// ErrInvalidDatabase is returned when the file belongs to some other application.
var ErrInvalidDatabase = errors.New("not a valid 'keyserver' database")

// defineMigrations lists every schema step in ascending version order.
// Scripts are minified (lowercased, comments stripped) before darwin checksums them,
// so string literals must not depend on case. Released steps are never edited.
func defineMigrations() []darwin.Migration {
	return []darwin.Migration{
		{Version: 1.00, Description: "Set application_id", Script: `
		PRAGMA application_id = 0x4B455953;`},

		// seq keeps insertion order stable across upserts keyed by license_id
		{Version: 1.01, Description: "Create Table 'license'", Script: `
		CREATE TABLE IF NOT EXISTS license (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			license_id VARCHAR(36) NOT NULL UNIQUE,
			name VARCHAR(255) NOT NULL,
			mobile VARCHAR(64),
			email VARCHAR(255),
			country VARCHAR(64),
			hwid VARCHAR(255) NOT NULL,
			license_key VARCHAR(17) NOT NULL,
			expiry VARCHAR(10) NOT NULL,
			status VARCHAR(10) NOT NULL,
			created VARCHAR(10) NOT NULL
		);`},

		{Version: 1.02, Description: "Create Unique Index 'idx_license_key'", Script: `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_license_key ON license (license_key);`},

		{Version: 1.03, Description: "Create Index 'idx_license_expiry'", Script: `
		CREATE INDEX IF NOT EXISTS idx_license_expiry ON license (expiry ASC);`},
	}
}

// RunMigrations brings an open database up to the latest schema version.
func RunMigrations(db *sql.DB) error {
	if err := VerifyApplicationID(db); err != nil {
		return err
	}

	applied, from, err := currentVersion(db)
	if err != nil {
		return err
	}

	migrations := minifiedMigrations()
	last := migrations[len(migrations)-1].Version
	if applied == len(migrations) && from == last {
		log.Printf("Database version %.2f is current", from)
		return nil
	}

	infoChan := make(chan darwin.MigrationInfo, len(migrations))
	driver := darwin.NewGenericDriver(db, darwin.SqliteDialect{})
	d := darwin.New(driver, migrations, infoChan)

	migrateErr := d.Migrate()
	close(infoChan)
	if migrateErr != nil {
		_, to, _ := currentVersion(db)
		steps := progress(infoChan)
		log.Printf("migration stopped at v%.2f (started at v%.2f): %v\n%s", to, from, migrateErr, steps)
		return fmt.Errorf("migration error: %w\n%s", migrateErr, steps)
	}

	_, to, err := currentVersion(db)
	if err != nil {
		return err
	}
	log.Print(changes(from, to))
	return nil
}

// VerifyApplicationID accepts a keyserver database or a brand new empty one.
func VerifyApplicationID(db *sql.DB) error {
	var appID int
	if err := db.QueryRow("PRAGMA application_id;").Scan(&appID); err != nil {
		return fmt.Errorf("read application_id: %w", err)
	}

	switch {
	case appID == ApplicationID:
		return nil
	case appID != 0:
		return fmt.Errorf("%w (application_id 0x%X)", ErrInvalidDatabase, appID)
	}

	var tables int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'`).Scan(&tables)
	if err != nil {
		return fmt.Errorf("check tables: %w", err)
	}
	if tables > 0 {
		return fmt.Errorf("%w (has tables but no application_id)", ErrInvalidDatabase)
	}
	return nil
}

// Schema renders the migration scripts for display.
func Schema() string {
	var b strings.Builder
	for _, m := range defineMigrations() {
		_, _ = fmt.Fprintf(&b, "-- %s (%.2f)\n%s\n\n", m.Description, m.Version, strings.TrimSpace(m.Script))
	}
	return b.String()
}

func changes(from, to float64) string {
	if from != to {
		return fmt.Sprintf("DB Version: %.2f (migrated from %.2f)", to, from)
	}
	return fmt.Sprintf("DB Version: %.2f", to)
}

// currentVersion returns how many steps are recorded and the highest version.
func currentVersion(db *sql.DB) (count int, ver float64, err error) {
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE tbl_name = 'darwin_migrations';`).Scan(&count)
	if err != nil || count == 0 {
		return 0, 0, err
	}

	var maxVer sql.NullFloat64
	err = db.QueryRow(`SELECT COUNT(*), MAX(version) FROM darwin_migrations;`).Scan(&count, &maxVer)
	return count, maxVer.Float64, err
}

func minifiedMigrations() []darwin.Migration {
	migrations := defineMigrations()
	for i := range migrations {
		migrations[i].Script = minify(migrations[i].Script)
	}
	return migrations
}

// minify lowercases the script, strips comments and collapses whitespace so
// cosmetic edits do not change the stored checksum.
func minify(script string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.ToLower(strings.ReplaceAll(script, "/*", "--")), "\n") {
		if i := strings.Index(line, "--"); i != -1 {
			line = line[:i]
		}
		b.WriteString(strings.TrimSpace(line))
		b.WriteByte(' ')
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func progress(ch <-chan darwin.MigrationInfo) string {
	var b strings.Builder
	for info := range ch {
		_, _ = fmt.Fprintf(&b, "v%.2f: %q (%s) Error: %v\n",
			info.Migration.Version, info.Migration.Description, info.Status.String(), info.Error)
	}
	return b.String()
}
