// Package demodata provides sample licenses for demo deployments.
package demodata

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"winsbygroup.com/keyserver/internal/keycodec"
	"winsbygroup.com/keyserver/internal/license"
)

type sample struct {
	req       license.IssueRequest
	issuedAgo int // days before now the license was issued
	blocked   bool
}

var samples = []sample{
	{req: license.IssueRequest{Name: "Ahmed Hassan", Mobile: "01001234567", Email: "ahmed@example.com", Country: "EG", HardwareID: "DEMO-4C4C-4544-0031", Days: 365}},
	{req: license.IssueRequest{Name: "Sara Mostafa", Mobile: "01117654321", Country: "Egypt", HardwareID: "DEMO-8E2A-11EC-9A01", Days: 90}, issuedAgo: 60},
	{req: license.IssueRequest{Name: "Youssef Adel", Mobile: "01229876543", Country: "SA", HardwareID: "DEMO-F00D-CAFE-0042", Days: 30}, issuedAgo: 45},
	{req: license.IssueRequest{Name: "Mariam Fathy", Email: "mariam@example.com", Country: "AE", HardwareID: "DEMO-0BAD-BEEF-0007", Days: 3650}, blocked: true},
	{req: license.IssueRequest{Name: "Khaled Samir", Mobile: "01551112223", Country: "EG", HardwareID: "DEMO-1234-5678-9ABC", Days: 30}, issuedAgo: 10},
}

// Load issues the sample licenses through the registry so keys and states are
// real. Lapsed samples are blocked and unblocked to land on Expired.
// This should only be called on a freshly created database after migrations.
func Load(ctx context.Context, db *sqlx.DB, codec *keycodec.Codec) error {
	now := time.Now()
	current := license.NewService(db, codec, license.WithClock(func() time.Time { return now }))

	for _, s := range samples {
		issuedAt := now.AddDate(0, 0, -s.issuedAgo)
		issuer := license.NewService(db, codec, license.WithClock(func() time.Time { return issuedAt }))

		req := s.req
		rec, err := issuer.Issue(ctx, &req)
		if err != nil {
			return fmt.Errorf("issue demo license for %s: %w", s.req.Name, err)
		}

		lapsed := s.issuedAgo > s.req.Days
		if !s.blocked && !lapsed {
			continue
		}
		if _, err := current.ToggleBlock(ctx, rec.ID); err != nil {
			return err
		}
		if lapsed {
			if _, err := current.ToggleBlock(ctx, rec.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
