// FilePath: internal/export/export.go

// Package export renders analysis series into interchange formats.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/edsonsantana1/agrosilo/internal/models"
)

// WriteSeriesCSV streams a series as two-column CSV with a "t,v" header.
// Timestamps are RFC 3339 UTC; values keep their shortest exact
// representation.
func WriteSeriesCSV(w io.Writer, series models.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"t", "v"}); err != nil {
		return err
	}
	for _, p := range series.Points {
		record := []string{
			p.T.UTC().Format(time.RFC3339),
			strconv.FormatFloat(p.V, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
