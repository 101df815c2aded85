package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/san-kum/cltlab/internal/trial"
)

// ExportData bundles everything recorded for one run into a single
// JSON-friendly document.
type ExportData struct {
	Metadata  RunMetadata      `json:"metadata"`
	Histogram *HistogramData   `json:"histogram,omitempty"`
	Series    []trial.Snapshot `json:"series,omitempty"`
}

// Export collects a stored run into one document. Histogram and
// series files that were never written are simply absent.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	data := &ExportData{Metadata: *meta}
	if hist, err := s.LoadHistogram(runID); err == nil {
		data.Histogram = hist
	}
	if series, err := s.LoadSeries(runID); err == nil && len(series) > 0 {
		data.Series = series
	}
	return data, nil
}

// ExportJSON writes a stored run to w as indented JSON, suitable for
// piping into jq or another tool.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	data, err := s.Export(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrapf(enc.Encode(data), "encode export for %s", runID)
}

// ExportCSV writes a stored run's histogram to w in the same
// bucket_low,bucket_high,count shape used on disk.
func (s *Store) ExportCSV(runID string, w io.Writer) error {
	hist, err := s.LoadHistogram(runID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"bucket_low", "bucket_high", "count"}); err != nil {
		return errors.Wrap(err, "write header")
	}
	for i, c := range hist.Counts {
		row := []string{
			strconv.FormatFloat(hist.Edges[i], 'f', 6, 64),
			strconv.FormatFloat(hist.Edges[i+1], 'f', 6, 64),
			strconv.FormatUint(c, 10),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "write row %d", i)
		}
	}
	if err := cw.Write([]string{"underflow", "", strconv.FormatUint(hist.Underflow, 10)}); err != nil {
		return errors.Wrap(err, "write underflow row")
	}
	return errors.Wrap(cw.Write([]string{"overflow", "", strconv.FormatUint(hist.Overflow, 10)}), "write overflow row")
}
