package export

import (
	"encoding/csv"
	"io"

	"winsbygroup.com/keyserver/internal/license"
)

var csvHeader = []string{"ID", "Name", "Mobile", "Email", "Country", "HWID", "Key", "Expiry", "Status", "Created"}

// WriteCSV renders recs with a header row. Missing contact fields are empty.
func WriteCSV(w io.Writer, recs []license.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{
			r.ID,
			r.Name,
			deref(r.Mobile),
			deref(r.Email),
			deref(r.Country),
			r.HardwareID,
			r.Key,
			r.Expiry,
			string(r.Status),
			r.Created,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
