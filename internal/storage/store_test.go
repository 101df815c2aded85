package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/san-kum/cltlab/internal/dist"
	"github.com/san-kum/cltlab/internal/trial"
)

func sampleResult(t *testing.T) *trial.Result {
	t.Helper()

	cfg := trial.Config{
		Source:        dist.NewCoin(),
		Samples:       19,
		Trials:        1000,
		Seed:          42,
		SnapshotEvery: 250,
	}
	runner, err := trial.New(cfg)
	require.NoError(t, err)

	res, err := runner.Run(context.Background())
	require.NoError(t, err)
	return res
}

func TestSaveAndLoad(t *testing.T) {
	store := New(t.TempDir())
	res := sampleResult(t)

	runID, err := store.Save(res, map[string]float64{"bias": 0.5})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(runID, "coin_"))

	meta, err := store.Load(runID)
	require.NoError(t, err)
	require.Equal(t, runID, meta.ID)
	require.Equal(t, "coin", meta.Source)
	require.Equal(t, 19, meta.Samples)
	require.Equal(t, int64(42), meta.Seed)
	require.Equal(t, 0.5, meta.Params["bias"])
	require.Equal(t, uint64(1000), meta.Summary.Trials)
	require.InDelta(t, res.Summary.Mean, meta.Summary.Mean, 1e-9)
}

func TestSaveFileStructure(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	runID, err := store.Save(sampleResult(t), nil)
	require.NoError(t, err)

	for _, name := range []string{"metadata.json", "histogram.csv", "series.csv"} {
		_, err := os.Stat(filepath.Join(dir, runID, name))
		require.NoError(t, err, "missing %s", name)
	}
}

func TestSaveWithoutSeries(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	res := sampleResult(t)
	res.Series = nil
	runID, err := store.Save(res, nil)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, runID, "series.csv"))
	require.True(t, os.IsNotExist(err))
}

func TestSaveCollisionBumpsSuffix(t *testing.T) {
	store := New(t.TempDir())
	res := sampleResult(t)

	first, err := store.Save(res, nil)
	require.NoError(t, err)
	second, err := store.Save(res, nil)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestListNewestFirst(t *testing.T) {
	store := New(t.TempDir())

	runs, err := store.List()
	require.NoError(t, err)
	require.Empty(t, runs)

	res := sampleResult(t)
	first, err := store.Save(res, nil)
	require.NoError(t, err)
	second, err := store.Save(res, nil)
	require.NoError(t, err)

	runs, err = store.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, second, runs[0].ID)
	require.Equal(t, first, runs[1].ID)
}

func TestLoadHistogramRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	res := sampleResult(t)

	runID, err := store.Save(res, nil)
	require.NoError(t, err)

	hist, err := store.LoadHistogram(runID)
	require.NoError(t, err)

	layout := res.Histogram.Layout()
	require.Len(t, hist.Counts, layout.Buckets)
	require.Len(t, hist.Edges, layout.Buckets+1)
	require.InDelta(t, layout.Lo, hist.Edges[0], 1e-6)
	require.InDelta(t, layout.Hi, hist.Edges[len(hist.Edges)-1], 1e-6)
	require.Equal(t, res.Histogram.Counts(), hist.Counts)
	require.Equal(t, res.Histogram.Underflow(), hist.Underflow)
	require.Equal(t, res.Histogram.Overflow(), hist.Overflow)
}

func TestLoadSeriesRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	res := sampleResult(t)
	require.NotEmpty(t, res.Series)

	runID, err := store.Save(res, nil)
	require.NoError(t, err)

	series, err := store.LoadSeries(runID)
	require.NoError(t, err)
	require.Len(t, series, len(res.Series))
	require.Equal(t, res.Series[0].Trials, series[0].Trials)
	require.InDelta(t, res.Series[0].Mean, series[0].Mean, 1e-5)

	last := len(series) - 1
	require.Equal(t, uint64(1000), series[last].Trials)
	require.InDelta(t, res.Summary.JarqueBera, series[last].JarqueBera, 1e-5)
}

func TestLoadMissingRun(t *testing.T) {
	store := New(t.TempDir())

	_, err := store.Load("coin_0")
	require.Error(t, err)
	require.Contains(t, err.Error(), "coin_0")
}

func TestExportJSON(t *testing.T) {
	store := New(t.TempDir())

	runID, err := store.Save(sampleResult(t), map[string]float64{"bias": 0.5})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, store.ExportJSON(runID, &buf))

	out := buf.String()
	require.Contains(t, out, `"metadata"`)
	require.Contains(t, out, `"histogram"`)
	require.Contains(t, out, `"series"`)
	require.Contains(t, out, `"coin"`)
}

func TestExportCSV(t *testing.T) {
	store := New(t.TempDir())

	runID, err := store.Save(sampleResult(t), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, store.ExportCSV(runID, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Equal(t, "bucket_low,bucket_high,count", lines[0])
	layout := sampleResult(t).Histogram.Layout()
	require.Len(t, lines, 1+layout.Buckets+2)
	require.True(t, strings.HasPrefix(lines[len(lines)-2], "underflow,"))
	require.True(t, strings.HasPrefix(lines[len(lines)-1], "overflow,"))
}
