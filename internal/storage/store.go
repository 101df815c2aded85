package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/san-kum/cltlab/internal/trial"
)

// Store persists completed runs under a base directory, one
// subdirectory per run holding metadata.json, histogram.csv, and
// (when snapshots were recorded) series.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return errors.Wrapf(os.MkdirAll(s.baseDir, 0755), "create data dir %s", s.baseDir)
}

func (s *Store) Dir() string {
	return s.baseDir
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Source       string             `json:"source"`
	Params       map[string]float64 `json:"params,omitempty"`
	Samples      int                `json:"samples"`
	Seed         int64              `json:"seed"`
	Timestamp    time.Time          `json:"timestamp"`
	Summary      trial.Summary      `json:"summary"`
	ElapsedMs    int64              `json:"elapsed_ms"`
	TrialsPerSec float64            `json:"trials_per_sec"`
}

// HistogramData is the on-disk shape of a histogram: bucket edges with
// counts, plus the out-of-range tallies.
type HistogramData struct {
	Edges     []float64 `json:"edges"`
	Counts    []uint64  `json:"counts"`
	Underflow uint64    `json:"underflow"`
	Overflow  uint64    `json:"overflow"`
}

// Save writes one completed run and returns its ID. IDs follow
// source_unixtime; saving twice within a second bumps a numeric
// suffix rather than clobbering the earlier run.
func (s *Store) Save(res *trial.Result, params map[string]float64) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}

	base := fmt.Sprintf("%s_%d", res.Source, time.Now().Unix())
	runID := base
	for i := 2; ; i++ {
		if _, err := os.Stat(filepath.Join(s.baseDir, runID)); os.IsNotExist(err) {
			break
		}
		runID = fmt.Sprintf("%s_%d", base, i)
	}
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", errors.Wrapf(err, "create run dir %s", runDir)
	}

	meta := RunMetadata{
		ID:           runID,
		Source:       res.Source,
		Params:       params,
		Samples:      res.Samples,
		Seed:         res.Seed,
		Timestamp:    time.Now(),
		Summary:      res.Summary,
		ElapsedMs:    res.Elapsed.Milliseconds(),
		TrialsPerSec: res.TrialsPerSec,
	}
	if err := s.writeMetadata(runDir, meta); err != nil {
		return "", err
	}
	if err := s.writeHistogram(runDir, res.Histogram); err != nil {
		return "", err
	}
	if len(res.Series) > 0 {
		if err := s.writeSeries(runDir, res.Series); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) writeMetadata(runDir string, meta RunMetadata) error {
	f, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return errors.Wrap(err, "create metadata.json")
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(meta), "encode metadata")
}

func (s *Store) writeHistogram(runDir string, h *trial.Histogram) error {
	f, err := os.Create(filepath.Join(runDir, "histogram.csv"))
	if err != nil {
		return errors.Wrap(err, "create histogram.csv")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"bucket_low", "bucket_high", "count"}); err != nil {
		return errors.Wrap(err, "write histogram header")
	}

	layout := h.Layout()
	edges := layout.Edges()
	counts := h.Counts()
	for i, c := range counts {
		row := []string{
			strconv.FormatFloat(edges[i], 'f', 6, 64),
			strconv.FormatFloat(edges[i+1], 'f', 6, 64),
			strconv.FormatUint(c, 10),
		}
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, "write histogram row")
		}
	}
	if err := w.Write([]string{"underflow", "", strconv.FormatUint(h.Underflow(), 10)}); err != nil {
		return errors.Wrap(err, "write underflow row")
	}
	if err := w.Write([]string{"overflow", "", strconv.FormatUint(h.Overflow(), 10)}); err != nil {
		return errors.Wrap(err, "write overflow row")
	}
	return nil
}

func (s *Store) writeSeries(runDir string, series []trial.Snapshot) error {
	f, err := os.Create(filepath.Join(runDir, "series.csv"))
	if err != nil {
		return errors.Wrap(err, "create series.csv")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"trials", "mean", "variance", "skewness", "ex_kurtosis", "jarque_bera"}
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, "write series header")
	}
	for _, snap := range series {
		row := []string{
			strconv.FormatUint(snap.Trials, 10),
			strconv.FormatFloat(snap.Mean, 'f', 6, 64),
			strconv.FormatFloat(snap.Variance, 'f', 6, 64),
			strconv.FormatFloat(snap.Skewness, 'f', 6, 64),
			strconv.FormatFloat(snap.ExcessKurtosis, 'f', 6, 64),
			strconv.FormatFloat(snap.JarqueBera, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, "write series row")
		}
	}
	return nil
}

// List returns metadata for every stored run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, errors.Wrapf(err, "read data dir %s", s.baseDir)
	}

	runs := make([]RunMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, errors.Wrapf(err, "load run %s", runID)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrapf(err, "decode metadata for %s", runID)
	}
	return &meta, nil
}

func (s *Store) LoadHistogram(runID string) (*HistogramData, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "histogram.csv"))
	if err != nil {
		return nil, errors.Wrapf(err, "load histogram for %s", runID)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "parse histogram for %s", runID)
	}

	data := &HistogramData{}
	for i, rec := range records {
		if i == 0 || len(rec) != 3 {
			continue
		}
		switch rec[0] {
		case "underflow":
			data.Underflow, _ = strconv.ParseUint(rec[2], 10, 64)
			continue
		case "overflow":
			data.Overflow, _ = strconv.ParseUint(rec[2], 10, 64)
			continue
		}

		lo, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			continue
		}
		hi, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			continue
		}
		count, err := strconv.ParseUint(rec[2], 10, 64)
		if err != nil {
			continue
		}

		if len(data.Edges) == 0 {
			data.Edges = append(data.Edges, lo)
		}
		data.Edges = append(data.Edges, hi)
		data.Counts = append(data.Counts, count)
	}
	return data, nil
}

func (s *Store) LoadSeries(runID string) ([]trial.Snapshot, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "series.csv"))
	if err != nil {
		return nil, errors.Wrapf(err, "load series for %s", runID)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "parse series for %s", runID)
	}

	series := make([]trial.Snapshot, 0, len(records))
	for i, rec := range records {
		if i == 0 || len(rec) != 6 {
			continue
		}
		trials, err := strconv.ParseUint(rec[0], 10, 64)
		if err != nil {
			continue
		}
		mean, _ := strconv.ParseFloat(rec[1], 64)
		variance, _ := strconv.ParseFloat(rec[2], 64)
		skew, _ := strconv.ParseFloat(rec[3], 64)
		kurt, _ := strconv.ParseFloat(rec[4], 64)
		jb, _ := strconv.ParseFloat(rec[5], 64)

		series = append(series, trial.Snapshot{
			Trials:         trials,
			Mean:           mean,
			Variance:       variance,
			Skewness:       skew,
			ExcessKurtosis: kurt,
			JarqueBera:     jb,
		})
	}
	return series, nil
}
