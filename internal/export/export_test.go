package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"winsbygroup.com/keyserver/internal/export"
	"winsbygroup.com/keyserver/internal/keycodec"
	"winsbygroup.com/keyserver/internal/license"
	"winsbygroup.com/keyserver/internal/testutil"
)

func seed(t *testing.T, svc *license.Service) []*license.Record {
	t.Helper()
	ctx := context.Background()

	var out []*license.Record
	for _, req := range []license.IssueRequest{
		{HardwareID: "HW-A", Days: 30, Name: "Alice", Mobile: "0100", Country: "Egypt"},
		{HardwareID: "HW-B", Days: 365, Name: "Bob, Jr."},
	} {
		rec, err := svc.Issue(ctx, &req)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		out = append(out, rec)
	}
	return out
}

func TestCreateExport(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "licenses.db")
	db := testutil.NewTestDBAt(t, dbPath)

	now := time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC)
	svc := license.NewService(db, keycodec.New("s"), license.WithClock(testutil.Clock(now)))
	recs := seed(t, svc)

	result, err := export.NewService(db, dbPath).CreateExport(ctx)
	if err != nil {
		t.Fatalf("CreateExport: %v", err)
	}

	if !strings.HasSuffix(result.Filename, "_licenses.json.gz") {
		t.Errorf("unexpected filename %q", result.Filename)
	}
	if result.Count != 2 {
		t.Errorf("expected count 2, got %d", result.Count)
	}
	if result.Size <= 0 {
		t.Errorf("expected non-empty file, got size %d", result.Size)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dbPath), "exports", "temp_export.db")); !os.IsNotExist(err) {
		t.Error("temporary database should be removed")
	}

	snap, err := export.ReadSnapshot(result.Path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if snap.Count != 2 || len(snap.Licenses) != 2 {
		t.Fatalf("expected 2 licenses, got %d/%d", snap.Count, len(snap.Licenses))
	}
	for i, rec := range snap.Licenses {
		if rec.Key != recs[i].Key || rec.ID != recs[i].ID {
			t.Errorf("license %d: got %s/%s, want %s/%s", i, rec.ID, rec.Key, recs[i].ID, recs[i].Key)
		}
	}
}

func TestCreateExport_Empty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "licenses.db")
	db := testutil.NewTestDBAt(t, dbPath)

	result, err := export.NewService(db, dbPath).CreateExport(context.Background())
	if err != nil {
		t.Fatalf("CreateExport: %v", err)
	}
	if result.Count != 0 {
		t.Errorf("expected count 0, got %d", result.Count)
	}
}

func TestWriteCSV(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := license.NewService(db, keycodec.New("s"))
	seed(t, svc)

	recs, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, recs); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][6] != "Key" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][1] != "Alice" || rows[1][2] != "0100" || rows[1][4] != "Egypt" {
		t.Errorf("unexpected first row %v", rows[1])
	}
	if rows[2][1] != "Bob, Jr." || rows[2][2] != "" {
		t.Errorf("unexpected second row %v", rows[2])
	}
	if rows[2][8] != "Active" {
		t.Errorf("expected Active status, got %q", rows[2][8])
	}
}
