package admin

import (
	"context"

	"winsbygroup.com/keyserver/internal/export"
	"winsbygroup.com/keyserver/internal/license"
)

type Service struct {
	licenses *license.Service
	exports  *export.Service
}

func NewService(lic *license.Service, exp *export.Service) *Service {
	return &Service{
		licenses: lic,
		exports:  exp,
	}
}

// -------------------------
// Licenses
// -------------------------

// GetLicenses returns the records matching search (all when empty) and the
// stats of the whole table.
func (s *Service) GetLicenses(ctx context.Context, search string) (*ListLicensesResponse, error) {
	all, err := s.licenses.List(ctx)
	if err != nil {
		return nil, err
	}
	return &ListLicensesResponse{
		Stats:    license.Summarize(all),
		Licenses: license.Filter(all, search),
	}, nil
}

func (s *Service) GetLicense(ctx context.Context, id string) (*license.Record, error) {
	return s.licenses.Get(ctx, id)
}

func (s *Service) CreateLicense(ctx context.Context, req *CreateLicenseRequest) (*license.Record, error) {
	return s.licenses.Issue(ctx, req.toIssue())
}

func (s *Service) ToggleBlock(ctx context.Context, id string) (*ToggleBlockResponse, error) {
	st, err := s.licenses.ToggleBlock(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ToggleBlockResponse{ID: id, Status: st}, nil
}

func (s *Service) DeleteLicense(ctx context.Context, id string) error {
	return s.licenses.Delete(ctx, id)
}

// -------------------------
// Expirations
// -------------------------

func (s *Service) GetExpirations(ctx context.Context, before string) ([]license.Record, error) {
	return s.licenses.Expiring(ctx, before)
}

// -------------------------
// Export
// -------------------------

func (s *Service) Export(ctx context.Context) (*export.Result, error) {
	return s.exports.CreateExport(ctx)
}
