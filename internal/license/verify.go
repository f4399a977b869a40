package license

import (
	"context"
	"errors"
	"log"
	"math"
	"strconv"
	"strings"
	"time"
)

// Reason explains why a verification failed.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonMissingData      Reason = "missing_data"
	ReasonNotFound         Reason = "not_found"
	ReasonBlocked          Reason = "blocked"
	ReasonHardwareMismatch Reason = "hardware_mismatch"
	ReasonExpired          Reason = "expired"
)

var reasonMessages = map[Reason]string{
	ReasonMissingData:      "Missing Data",
	ReasonNotFound:         "License Not Found",
	ReasonBlocked:          "License Blocked by Admin",
	ReasonHardwareMismatch: "HWID Mismatch",
	ReasonExpired:          "License Expired",
}

// Message is the short text shown to clients.
func (r Reason) Message() string {
	return reasonMessages[r]
}

// VerifyResult is the verdict for a (key, hardware id) pair. Expiry and
// DaysLeft are set only when Valid.
type VerifyResult struct {
	Valid    bool
	Reason   Reason
	Expiry   string
	DaysLeft int
}

func rejected(r Reason) VerifyResult {
	return VerifyResult{Reason: r}
}

// Verify checks a presented key against the stored record. The checks run in
// order and the first failure wins:
//
//  1. key and hardware id present
//  2. a record with this key exists
//  3. the record is not Blocked
//  4. the stored hardware id equals the presented one exactly
//  5. today's UTC date is not after the expiry date
//
// Stored status and live expiry are independent signals: a record whose stored
// status is Active is still rejected once its expiry has passed. The key is
// not recomputed; only the stored fields are compared.
func (s *Service) Verify(ctx context.Context, key, hardwareID string) VerifyResult {
	if key == "" || hardwareID == "" {
		return rejected(ReasonMissingData)
	}

	rec, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		// a failed read is reported the same way as a missing record
		if !errors.Is(err, ErrNotFound) {
			log.Printf("verify: storage read failed: %v", err)
		}
		return rejected(ReasonNotFound)
	}

	if rec.Status == StatusBlocked {
		return rejected(ReasonBlocked)
	}

	if rec.HardwareID != hardwareID {
		return rejected(ReasonHardwareMismatch)
	}

	now := s.now()
	exp, err := dateNumber(rec.Expiry)
	if err != nil || todayNumber(now) > exp {
		return rejected(ReasonExpired)
	}

	return VerifyResult{
		Valid:    true,
		Expiry:   rec.Expiry,
		DaysLeft: daysLeft(rec.Expiry, now),
	}
}

// todayNumber is the UTC calendar date of now as a YYYYMMDD integer.
func todayNumber(now time.Time) int {
	n, _ := strconv.Atoi(now.UTC().Format("20060102"))
	return n
}

// dateNumber turns a stored YYYY-MM-DD date into a YYYYMMDD integer.
func dateNumber(date string) (int, error) {
	n, err := strconv.Atoi(strings.ReplaceAll(date, "-", ""))
	if err != nil || len(date) != len(dateLayout) {
		return 0, ErrInvalidDate
	}
	return n, nil
}

// daysLeft counts whole days from now until midnight UTC at the start of the
// expiry date, rounding down. On the expiry day itself this is -1 even though
// the integer date comparison still accepts the license.
func daysLeft(expiry string, now time.Time) int {
	exp, err := time.Parse(dateLayout, expiry)
	if err != nil {
		return 0
	}
	return int(math.Floor(exp.Sub(now).Hours() / 24))
}
