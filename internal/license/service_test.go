package license_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"winsbygroup.com/keyserver/internal/keycodec"
	"winsbygroup.com/keyserver/internal/license"
	"winsbygroup.com/keyserver/internal/testutil"
)

const testSecret = "test-secret"

var base = time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC)

// newService returns a service whose clock reads *now.
func newService(t *testing.T, now *time.Time) (*license.Service, *sqlx.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	svc := license.NewService(db, keycodec.New(testSecret), license.WithClock(func() time.Time { return *now }))
	return svc, db
}

func issue(t *testing.T, svc *license.Service, hwid string, days int) *license.Record {
	t.Helper()
	rec, err := svc.Issue(context.Background(), &license.IssueRequest{
		HardwareID: hwid,
		Days:       days,
		Name:       "Test User",
	})
	if err != nil {
		t.Fatalf("issue %s: %v", hwid, err)
	}
	return rec
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	ctx := context.Background()
	now := base
	svc, _ := newService(t, &now)

	rec, err := svc.Issue(ctx, &license.IssueRequest{
		HardwareID: "TEST-001",
		Days:       30,
		Name:       "Acme",
		Email:      "ops@acme.test",
		Country:    "EG",
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if rec.ID == "" {
		t.Error("expected an id to be assigned")
	}
	if rec.Status != license.StatusActive {
		t.Errorf("expected status Active, got %s", rec.Status)
	}
	if rec.Expiry != "2026-11-18" {
		t.Errorf("expected expiry 2026-11-18, got %s", rec.Expiry)
	}
	if rec.Created != "2026-10-19" {
		t.Errorf("expected created 2026-10-19, got %s", rec.Created)
	}
	want := keycodec.New(testSecret).DeriveKey("TEST-001", time.Date(2026, time.November, 18, 0, 0, 0, 0, time.UTC))
	if rec.Key != want {
		t.Errorf("expected key %s, got %s", want, rec.Key)
	}
	if rec.Mobile != nil {
		t.Errorf("expected empty mobile to be stored as NULL, got %q", *rec.Mobile)
	}

	res := svc.Verify(ctx, rec.Key, "TEST-001")
	if !res.Valid {
		t.Fatalf("expected valid, got reason %q", res.Reason)
	}
	if res.Expiry != "2026-11-18" {
		t.Errorf("expected expiry 2026-11-18, got %s", res.Expiry)
	}
	// 30 calendar days minus the part of today already elapsed
	if res.DaysLeft < 29 || res.DaysLeft > 30 {
		t.Errorf("expected about 30 days left, got %d", res.DaysLeft)
	}

	stored, err := svc.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Email == nil || *stored.Email != "ops@acme.test" {
		t.Errorf("expected stored email, got %v", stored.Email)
	}
}

func TestIssue_CreatedUsesUTCDate(t *testing.T) {
	// 01:00 on the 19th at UTC+3 is still the 18th in UTC
	now := time.Date(2026, time.October, 19, 1, 0, 0, 0, time.FixedZone("UTC+3", 3*3600))
	svc, _ := newService(t, &now)

	rec := issue(t, svc, "HW-TZ", 10)
	if rec.Created != "2026-10-18" {
		t.Errorf("expected created 2026-10-18, got %s", rec.Created)
	}
	if rec.Expiry != "2026-10-29" {
		t.Errorf("expected expiry from the local date 2026-10-29, got %s", rec.Expiry)
	}
}

func TestIssueValidation(t *testing.T) {
	now := base
	svc, _ := newService(t, &now)

	tests := []struct {
		name string
		req  license.IssueRequest
		want error
	}{
		{"hardware id is required", license.IssueRequest{Days: 30, Name: "n"}, license.ErrHardwareIDRequired},
		{"days must not be negative", license.IssueRequest{HardwareID: "HW", Days: -1, Name: "n"}, license.ErrNegativeDays},
		{"name is required", license.IssueRequest{HardwareID: "HW", Days: 30, Name: "  "}, license.ErrNameRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Issue(context.Background(), &tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if !errors.Is(err, license.ErrValidation) {
				t.Errorf("expected error to be a validation error, got %v", err)
			}
		})
	}

	t.Run("zero days expires today", func(t *testing.T) {
		rec := issue(t, svc, "HW-ZERO", 0)
		if rec.Expiry != "2026-10-19" {
			t.Errorf("expected expiry today, got %s", rec.Expiry)
		}
	})
}

func TestIssueDuplicateKey(t *testing.T) {
	ctx := context.Background()
	now := base
	svc, _ := newService(t, &now)

	issue(t, svc, "TEST-001", 30)

	// same normalized hardware id and same expiry derive the same key
	_, err := svc.Issue(ctx, &license.IssueRequest{HardwareID: "test001", Days: 30, Name: "Other"})
	if !errors.Is(err, license.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	recs, _ := svc.List(ctx)
	if len(recs) != 1 {
		t.Errorf("expected no partial write, got %d records", len(recs))
	}

	// a different expiry is a different key
	if _, err := svc.Issue(ctx, &license.IssueRequest{HardwareID: "test001", Days: 31, Name: "Other"}); err != nil {
		t.Errorf("expected different expiry to succeed, got %v", err)
	}
}

func TestToggleBlock(t *testing.T) {
	ctx := context.Background()

	t.Run("block then unblock before expiry returns to Active", func(t *testing.T) {
		now := base
		svc, _ := newService(t, &now)
		rec := issue(t, svc, "HW-A", 30)

		st, err := svc.ToggleBlock(ctx, rec.ID)
		if err != nil {
			t.Fatalf("block: %v", err)
		}
		if st != license.StatusBlocked {
			t.Fatalf("expected Blocked, got %s", st)
		}

		// the expiry day itself still counts as not expired
		now = time.Date(2026, time.November, 18, 23, 0, 0, 0, time.UTC)
		st, err = svc.ToggleBlock(ctx, rec.ID)
		if err != nil {
			t.Fatalf("unblock: %v", err)
		}
		if st != license.StatusActive {
			t.Errorf("expected Active, got %s", st)
		}

		stored, _ := svc.Get(ctx, rec.ID)
		if stored.Status != license.StatusActive {
			t.Errorf("expected stored status Active, got %s", stored.Status)
		}
	})

	t.Run("block then unblock after expiry becomes Expired", func(t *testing.T) {
		now := base
		svc, _ := newService(t, &now)
		rec := issue(t, svc, "HW-B", 30)

		if st, _ := svc.ToggleBlock(ctx, rec.ID); st != license.StatusBlocked {
			t.Fatalf("expected Blocked, got %s", st)
		}

		now = time.Date(2026, time.November, 19, 0, 30, 0, 0, time.UTC)
		st, err := svc.ToggleBlock(ctx, rec.ID)
		if err != nil {
			t.Fatalf("unblock: %v", err)
		}
		if st != license.StatusExpired {
			t.Errorf("expected Expired, got %s", st)
		}

		// Expired is blocked unconditionally
		st, err = svc.ToggleBlock(ctx, rec.ID)
		if err != nil {
			t.Fatalf("block expired: %v", err)
		}
		if st != license.StatusBlocked {
			t.Errorf("expected Blocked, got %s", st)
		}
	})

	t.Run("unknown id reports not found", func(t *testing.T) {
		now := base
		svc, _ := newService(t, &now)

		_, err := svc.ToggleBlock(ctx, "does-not-exist")
		if !errors.Is(err, license.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("toggling keeps list position", func(t *testing.T) {
		now := base
		svc, _ := newService(t, &now)
		first := issue(t, svc, "HW-1", 10)
		issue(t, svc, "HW-2", 10)

		if _, err := svc.ToggleBlock(ctx, first.ID); err != nil {
			t.Fatalf("toggle: %v", err)
		}

		recs, _ := svc.List(ctx)
		if len(recs) != 2 || recs[0].ID != first.ID {
			t.Errorf("expected toggled record to stay first, got %+v", recs)
		}
	})
}

// storeRecord writes rec directly, bypassing Issue.
func storeRecord(t *testing.T, svc *license.Service, db *sqlx.DB, rec *license.Record) {
	t.Helper()
	ctx := context.Background()
	err := svc.WithTx(ctx, func(tx *sqlx.Tx) error {
		return license.New(db).Upsert(ctx, tx, rec)
	})
	if err != nil {
		t.Fatalf("store record: %v", err)
	}
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	now := base
	svc, db := newService(t, &now)

	active := issue(t, svc, "HW-ACTIVE", 10)

	storeRecord(t, svc, db, &license.Record{
		ID: "blocked-everything", Name: "n", HardwareID: "HW-REAL",
		Key: "20200101-AAAAAAAA", Expiry: "2020-01-01", Status: license.StatusBlocked, Created: "2019-01-01",
	})
	storeRecord(t, svc, db, &license.Record{
		ID: "stale-active", Name: "n", HardwareID: "HW-OLD",
		Key: "20260101-BBBBBBBB", Expiry: "2026-01-01", Status: license.StatusActive, Created: "2025-01-01",
	})

	tests := []struct {
		name   string
		key    string
		hwid   string
		reason license.Reason
	}{
		{"missing key", "", "HW-ACTIVE", license.ReasonMissingData},
		{"missing hwid", active.Key, "", license.ReasonMissingData},
		{"unknown key", "20991231-00000000", "HW-ACTIVE", license.ReasonNotFound},
		{"blocked wins over mismatch and expiry", "20200101-AAAAAAAA", "HW-OTHER", license.ReasonBlocked},
		{"hardware mismatch", active.Key, "HW-OTHER", license.ReasonHardwareMismatch},
		{"hardware id compared without normalization", active.Key, "hw-active", license.ReasonHardwareMismatch},
		{"stored Active past expiry", "20260101-BBBBBBBB", "HW-OLD", license.ReasonExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.Verify(ctx, tt.key, tt.hwid)
			if res.Valid {
				t.Fatal("expected invalid result")
			}
			if res.Reason != tt.reason {
				t.Errorf("expected reason %q, got %q", tt.reason, res.Reason)
			}
			if res.Reason.Message() == "" {
				t.Errorf("expected a message for reason %q", res.Reason)
			}
		})
	}

	t.Run("verification does not mutate stored status", func(t *testing.T) {
		rec, err := svc.Get(ctx, "stale-active")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if rec.Status != license.StatusActive {
			t.Errorf("expected stored status to stay Active, got %s", rec.Status)
		}
	})
}

// The expiry check compares UTC calendar dates while daysLeft subtracts the
// current instant from midnight of the expiry date. On the expiry day both
// run: the license is accepted and daysLeft is negative.
func TestVerify_DaysLeftOnExpiryDay(t *testing.T) {
	ctx := context.Background()
	now := base
	svc, _ := newService(t, &now)
	rec := issue(t, svc, "HW-EDGE", 3)

	now = time.Date(2026, time.October, 22, 10, 0, 0, 0, time.UTC)
	res := svc.Verify(ctx, rec.Key, "HW-EDGE")
	if !res.Valid {
		t.Fatalf("expected valid on the expiry day, got %q", res.Reason)
	}
	if res.DaysLeft != -1 {
		t.Errorf("expected daysLeft -1 on the expiry day, got %d", res.DaysLeft)
	}

	now = time.Date(2026, time.October, 23, 0, 0, 1, 0, time.UTC)
	if res := svc.Verify(ctx, rec.Key, "HW-EDGE"); res.Reason != license.ReasonExpired {
		t.Errorf("expected expired the day after, got %+v", res)
	}
}

func TestVerify_MissingDataSkipsStorage(t *testing.T) {
	ctx := context.Background()
	now := base
	svc, db := newService(t, &now)

	// with the database closed any lookup would fail
	db.Close()

	if res := svc.Verify(ctx, "", "hwid1"); res.Reason != license.ReasonMissingData {
		t.Errorf("expected missing data, got %q", res.Reason)
	}
	if res := svc.Verify(ctx, "key1", ""); res.Reason != license.ReasonMissingData {
		t.Errorf("expected missing data, got %q", res.Reason)
	}

	// a failed read is indistinguishable from an absent record
	if res := svc.Verify(ctx, "key1", "hwid1"); res.Reason != license.ReasonNotFound {
		t.Errorf("expected not found on storage failure, got %q", res.Reason)
	}
}

func TestStorageFailureOnWrite(t *testing.T) {
	ctx := context.Background()
	now := base
	svc, db := newService(t, &now)
	db.Close()

	_, err := svc.Issue(ctx, &license.IssueRequest{HardwareID: "HW", Days: 1, Name: "n"})
	if !errors.Is(err, license.ErrStorage) {
		t.Errorf("issue: expected ErrStorage, got %v", err)
	}
	if err := svc.Delete(ctx, "x"); !errors.Is(err, license.ErrStorage) {
		t.Errorf("delete: expected ErrStorage, got %v", err)
	}
	if _, err := svc.ToggleBlock(ctx, "x"); !errors.Is(err, license.ErrStorage) {
		t.Errorf("toggle: expected ErrStorage, got %v", err)
	}
	if _, err := svc.List(ctx); !errors.Is(err, license.ErrStorage) {
		t.Errorf("list: expected ErrStorage, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	now := base
	svc, _ := newService(t, &now)

	rec := issue(t, svc, "HW-DEL", 30)
	keep := issue(t, svc, "HW-KEEP", 30)

	if err := svc.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}

	recs, _ := svc.List(ctx)
	for _, r := range recs {
		if r.ID == rec.ID {
			t.Fatal("deleted record still listed")
		}
	}
	if len(recs) != 1 || recs[0].ID != keep.ID {
		t.Errorf("expected only the kept record, got %+v", recs)
	}

	if err := svc.Delete(ctx, rec.ID); err != nil {
		t.Errorf("second delete should not fail, got %v", err)
	}

	if res := svc.Verify(ctx, rec.Key, "HW-DEL"); res.Reason != license.ReasonNotFound {
		t.Errorf("expected deleted key to be unknown, got %q", res.Reason)
	}
}

func TestListAndExpiring(t *testing.T) {
	ctx := context.Background()
	now := base
	svc, _ := newService(t, &now)

	a := issue(t, svc, "HW-A", 5)
	b := issue(t, svc, "HW-B", 60)
	c := issue(t, svc, "HW-C", 20)

	recs, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 3 || recs[0].ID != a.ID || recs[1].ID != b.ID || recs[2].ID != c.ID {
		t.Fatalf("expected creation order, got %+v", recs)
	}

	exp, err := svc.Expiring(ctx, "2026-11-30")
	if err != nil {
		t.Fatalf("expiring: %v", err)
	}
	if len(exp) != 2 {
		t.Fatalf("expected 2 expiring, got %d", len(exp))
	}
	if exp[0].ID != c.ID || exp[1].ID != a.ID {
		t.Errorf("expected latest expiry first, got %s then %s", exp[0].Expiry, exp[1].Expiry)
	}

	if _, err := svc.Expiring(ctx, "30/11/2026"); !errors.Is(err, license.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}

	none, err := svc.Expiring(ctx, "")
	if err != nil {
		t.Fatalf("expiring today: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected nothing expired before today, got %d", len(none))
	}
}
