package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
	"github.com/muesli/termenv"
	"github.com/san-kum/cltlab/internal/batch"
	"github.com/san-kum/cltlab/internal/config"
	"github.com/san-kum/cltlab/internal/experiment"
	"github.com/san-kum/cltlab/internal/export"
	"github.com/san-kum/cltlab/internal/logging"
	"github.com/san-kum/cltlab/internal/optim"
	"github.com/san-kum/cltlab/internal/stats"
	"github.com/san-kum/cltlab/internal/storage"
	"github.com/san-kum/cltlab/internal/trial"
	"github.com/san-kum/cltlab/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir string
	logFile string
	noColor bool

	paramFlags    []string
	samples       int
	trials        int
	seed          int64
	workers       int
	batchSize     int
	maxTrials     int
	mode          string
	frameMs       int
	buckets       int
	themeName     string
	snapshotEvery int
	// Config file and preset
	configFile string
	preset     string
	// Run persistence
	noSave bool
	// Histogram and plot output
	histWidth  int
	histHeight int
	metricName string
	svgFile    string
	// Export target
	outFile string
	// Sweep knob
	sweepOver   string
	sweepFrom   float64
	sweepTo     float64
	sweepPoints int
	// Seed study
	baseSeed int64
	seedRuns int
	// Parameter search
	objectiveName string
	searchRanges  []string

	// Theme from the environment, applied when flags and files stay silent
	envTheme string
)

func main() {
	envCfg, err := config.ParseEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	envTheme = envCfg.Theme
	if envTheme != "" {
		viz.SetTheme(envTheme)
	}

	rootCmd := &cobra.Command{
		Use:   "cltlab",
		Short: "central limit theorem laboratory",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to the interactive launcher when no command given
			return viz.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", envCfg.DataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", envCfg.LogFile, "append logfmt events to this file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", envCfg.NoColor, "disable colored output")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if noColor {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	}

	liveCmd := &cobra.Command{
		Use:   "live [source]",
		Short: "watch trial sums converge in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLiveView,
	}
	liveCmd.Flags().StringSliceVar(&paramFlags, "param", nil, "source parameter (name=value, repeatable)")
	liveCmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "samples summed per trial")
	liveCmd.Flags().IntVar(&batchSize, "batch", config.DefaultTrialsPerFrame, "trials per frame")
	liveCmd.Flags().IntVar(&maxTrials, "max-trials", 0, "pause after this many trials (0 = unlimited)")
	liveCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	liveCmd.Flags().StringVar(&mode, "mode", config.ModeAccumulate, "accumulate or refresh")
	liveCmd.Flags().IntVar(&frameMs, "frame-ms", config.DefaultFrameMs, "milliseconds per frame")
	liveCmd.Flags().IntVar(&buckets, "buckets", config.DefaultMaxBuckets, "histogram buckets")
	liveCmd.Flags().StringVar(&themeName, "theme", "matrix", "color theme")
	liveCmd.Flags().IntVar(&snapshotEvery, "snapshot-every", config.DefaultSnapshotEvery, "record moments every n trials")
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	runCmd := &cobra.Command{
		Use:   "run [source]",
		Short: "run a headless experiment and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExperiment,
	}
	runCmd.Flags().StringSliceVar(&paramFlags, "param", nil, "source parameter (name=value, repeatable)")
	runCmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "samples summed per trial")
	runCmd.Flags().IntVar(&trials, "trials", 50000, "trials to run")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	runCmd.Flags().IntVar(&workers, "workers", 1, "parallel workers (>1 runs an ensemble)")
	runCmd.Flags().IntVar(&snapshotEvery, "snapshot-every", config.DefaultSnapshotEvery, "record moments every n trials")
	runCmd.Flags().IntVar(&buckets, "buckets", config.DefaultMaxBuckets, "histogram buckets")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "print the summary without saving the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	histCmd := &cobra.Command{
		Use:   "hist [run_id]",
		Short: "render a saved histogram",
		Args:  cobra.ExactArgs(1),
		RunE:  histRun,
	}
	histCmd.Flags().IntVar(&histWidth, "width", 80, "chart width in columns")
	histCmd.Flags().IntVar(&histHeight, "height", 20, "chart height in rows")
	histCmd.Flags().StringVar(&svgFile, "svg", "", "write an svg file instead of terminal output")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot convergence of the running moments",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&metricName, "metric", "all", "mean, variance, skewness, kurtosis, jb, or all")
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "write an svg file instead of terminal output")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "test a saved run against the normal fit",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSONRun,
	}
	exportJSONCmd.Flags().StringVar(&outFile, "out", "", "write to file instead of stdout")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSVRun,
	}
	exportCSVCmd.Flags().StringVar(&outFile, "out", "", "write to file instead of stdout")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted scenario of experiments",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatchFile,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [source]",
		Short: "sweep one knob and tabulate convergence",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweepCmd,
	}
	sweepCmd.Flags().StringSliceVar(&paramFlags, "param", nil, "fixed source parameter (name=value, repeatable)")
	sweepCmd.Flags().StringVar(&sweepOver, "over", experiment.ParamSamples, "knob to sweep (samples or a source parameter)")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 1, "first knob value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 41, "last knob value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 9, "number of sweep points")
	sweepCmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "samples summed per trial")
	sweepCmd.Flags().IntVar(&trials, "trials", 50000, "trials per point")
	sweepCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	sweepCmd.Flags().IntVar(&workers, "workers", 1, "parallel workers per point")

	seedsCmd := &cobra.Command{
		Use:   "seeds [source]",
		Short: "repeat one experiment across seeds",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSeedsCmd,
	}
	seedsCmd.Flags().StringSliceVar(&paramFlags, "param", nil, "source parameter (name=value, repeatable)")
	seedsCmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "samples summed per trial")
	seedsCmd.Flags().IntVar(&trials, "trials", 50000, "trials per seed")
	seedsCmd.Flags().Int64Var(&baseSeed, "base-seed", 0, "first seed (0 = time based)")
	seedsCmd.Flags().IntVar(&seedRuns, "runs", 8, "number of seeds")
	seedsCmd.Flags().IntVar(&workers, "workers", 1, "seeds run in parallel")

	searchCmd := &cobra.Command{
		Use:   "search [source]",
		Short: "grid search parameters for the most normal sums",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSearchCmd,
	}
	searchCmd.Flags().StringSliceVar(&searchRanges, "range", nil, "grid axis (name=lo:hi:points, repeatable)")
	searchCmd.Flags().StringSliceVar(&paramFlags, "param", nil, "fixed source parameter (name=value, repeatable)")
	searchCmd.Flags().StringVar(&objectiveName, "objective", "jb", "jb, skew, or kurt")
	searchCmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "samples summed per trial")
	searchCmd.Flags().IntVar(&trials, "trials", 50000, "trials per grid point")
	searchCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	searchCmd.Flags().IntVar(&workers, "workers", 1, "parallel workers per point")

	benchCmd := &cobra.Command{
		Use:   "bench [source]",
		Short: "benchmark trial throughput across worker counts",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchWorkers,
	}
	benchCmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "samples summed per trial")
	benchCmd.Flags().IntVar(&trials, "trials", 50000, "trials per measurement")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Printf("  %-8s %s\n", name, config.PresetInfo(name))
			}
			return nil
		},
	}

	themesCmd := &cobra.Command{
		Use:   "themes",
		Short: "list color themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range viz.ThemeNames() {
				marker := " "
				if name == viz.CurrentTheme.Name {
					marker = "*"
				}
				fmt.Printf("%s %s\n", marker, name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(liveCmd, runCmd, listCmd, showCmd, histCmd, plotCmd, analyzeCmd, exportJSONCmd, exportCSVCmd, batchCmd, sweepCmd, seedsCmd, searchCmd, benchCmd, presetsCmd, themesCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runLiveView(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	return viz.RunLive(cfg)
}

func runExperiment(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	total := trials
	if !cmd.Flags().Changed("trials") && cfg.MaxTrials > 0 {
		total = cfg.MaxTrials
	}

	logger, closeLog, err := logging.Open(logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	reg := experiment.NewRegistry()
	exp := experiment.New(experiment.Config{
		Source:        cfg.Source,
		Params:        cfg.Params,
		Samples:       cfg.Samples,
		Trials:        total,
		Seed:          cfg.Seed,
		SnapshotEvery: cfg.SnapshotEvery,
		MaxBuckets:    cfg.Buckets,
		Workers:       workers,
	})
	if err := exp.Setup(reg); err != nil {
		return err
	}

	logger.Log("event", logging.EventRunStarted,
		"source", cfg.Source, "samples", cfg.Samples, "trials", total, "seed", cfg.Seed)
	fmt.Printf("summing %d x %s, %s trials...\n",
		cfg.Samples, cfg.Source, humanize.Comma(int64(total)))

	res, err := exp.Run(context.Background())
	if err != nil {
		logger.Log("event", logging.EventRunCanceled, "err", err)
		return err
	}
	logger.Log("event", logging.EventRunCompleted,
		"trials", res.Summary.Trials, "mean", res.Summary.Mean,
		"jarque_bera", res.Summary.JarqueBera, "elapsed_ms", res.Elapsed.Milliseconds())

	fmt.Printf("completed in %v (%s)\n",
		res.Elapsed.Round(time.Millisecond),
		humanize.SIWithDigits(res.TrialsPerSec, 1, "trials/s"))
	printSummary(res.Summary, cfg.Source, cfg.Params, cfg.Samples)

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	runID, err := st.Save(res, cfg.Params)
	if err != nil {
		logger.Log("event", logging.EventSaveFailed, "err", err)
		return err
	}
	fmt.Printf("\nsaved as %s\n", runID)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tSAMPLES\tTRIALS\tMEAN\tSTD\tJB\tAGE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%.4f\t%.4f\t%.2f\t%s\n",
			run.ID, run.Source, run.Samples,
			humanize.Comma(int64(run.Summary.Trials)),
			run.Summary.Mean, run.Summary.StdDev, run.Summary.JarqueBera,
			humanize.Time(run.Timestamp))
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run:     %s\n", meta.ID)
	fmt.Printf("source:  %s%s\n", meta.Source, paramList(meta.Params))
	fmt.Printf("samples: %d per trial\n", meta.Samples)
	fmt.Printf("seed:    %d\n", meta.Seed)
	fmt.Printf("time:    %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("elapsed: %v (%.0f trials/s)\n",
		(time.Duration(meta.ElapsedMs) * time.Millisecond).Round(time.Millisecond), meta.TrialsPerSec)
	printSummary(meta.Summary, meta.Source, meta.Params, meta.Samples)
	return nil
}

func histRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	data, err := st.LoadHistogram(args[0])
	if err != nil {
		return err
	}
	if len(data.Counts) == 0 {
		return fmt.Errorf("run %s has an empty histogram", args[0])
	}

	var total uint64
	for _, c := range data.Counts {
		total += c
	}
	expected := stats.ExpectedCounts(data.Edges, float64(total), meta.Summary.Mean, meta.Summary.StdDev)

	if svgFile != "" {
		doc := export.HistogramSVG(data.Edges, data.Counts, meta.Summary.Mean, meta.Summary.StdDev,
			640, 360, string(viz.CurrentTheme.Primary), string(viz.CurrentTheme.Accent))
		if doc == "" {
			return fmt.Errorf("histogram for %s could not be rendered", args[0])
		}
		if err := os.WriteFile(svgFile, []byte(doc), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgFile)
		return nil
	}

	fmt.Printf("%s: %d x %s, %s trials\n\n",
		meta.ID, meta.Samples, meta.Source, humanize.Comma(int64(total)))
	fmt.Println(viz.Bars(data.Edges, data.Counts, expected, histWidth, histHeight))
	if data.Underflow > 0 || data.Overflow > 0 {
		fmt.Printf("\nout of range: %d below, %d above\n", data.Underflow, data.Overflow)
	}
	return nil
}

var plotMetrics = []string{"mean", "variance", "skewness", "kurtosis", "jb"}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(series) < 2 {
		return fmt.Errorf("run %s has no convergence series (snapshots disabled?)", args[0])
	}

	if svgFile != "" {
		if metricName == "all" {
			return fmt.Errorf("pick one metric with --metric for svg export")
		}
		values, err := metricSeries(series, metricName)
		if err != nil {
			return err
		}
		doc := export.SeriesSVG(values, 640, 240, string(viz.CurrentTheme.Primary))
		if doc == "" {
			return fmt.Errorf("series for %s could not be rendered", args[0])
		}
		if err := os.WriteFile(svgFile, []byte(doc), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgFile)
		return nil
	}

	metrics := []string{metricName}
	if metricName == "all" {
		metrics = plotMetrics
	}
	final := humanize.Comma(int64(series[len(series)-1].Trials))
	for _, name := range metrics {
		values, err := metricSeries(series, name)
		if err != nil {
			return err
		}
		fmt.Println(asciigraph.Plot(values,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s over %s trials", name, final))))
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	data, err := st.LoadHistogram(args[0])
	if err != nil {
		return err
	}

	var total uint64
	for _, c := range data.Counts {
		total += c
	}
	if total == 0 {
		return fmt.Errorf("run %s has an empty histogram", args[0])
	}

	expected := stats.ExpectedCounts(data.Edges, float64(total), meta.Summary.Mean, meta.Summary.StdDev)
	chi2, dof := stats.ChiSquare(data.Counts, expected)

	fmt.Printf("normality of %s (%d x %s, %s trials)\n\n",
		meta.ID, meta.Samples, meta.Source, humanize.Comma(int64(total)))
	fmt.Printf("  skewness     %+10.4f   (normal: 0)\n", meta.Summary.Skewness)
	fmt.Printf("  ex kurtosis  %+10.4f   (normal: 0)\n", meta.Summary.ExcessKurtosis)
	fmt.Printf("  jarque-bera  %10.2f   (5%% cutoff: 5.99)\n", meta.Summary.JarqueBera)
	if dof > 0 {
		fmt.Printf("  chi-square   %10.2f   over %d dof (%.2f per dof)\n", chi2, dof, chi2/float64(dof))
	}

	fmt.Println()
	for _, p := range []float64{0.50, 0.90, 0.99} {
		z := stats.NormalQuantile(p)
		fmt.Printf("  p%.0f          %10.4f   (normal: %.4f)\n",
			p*100, bucketQuantile(data, total, p),
			meta.Summary.Mean+z*meta.Summary.StdDev)
	}

	fmt.Println()
	switch {
	case meta.Summary.JarqueBera < 5.99:
		fmt.Println("verdict: indistinguishable from normal at the 5% level")
	case meta.Summary.JarqueBera < 20:
		fmt.Println("verdict: close to normal; more samples per trial would finish the job")
	default:
		fmt.Println("verdict: visibly non-normal at this sample count")
	}
	return nil
}

func exportJSONRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return writeExport(args[0], st.ExportJSON)
}

func exportCSVRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return writeExport(args[0], st.ExportCSV)
}

func runBatchFile(cmd *cobra.Command, args []string) error {
	scenario, err := batch.LoadScenario(args[0])
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.Open(logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	st := storage.New(dataDir)
	reg := experiment.NewRegistry()

	fmt.Printf("scenario %s: %d steps\n\n", scenario.Name, len(scenario.Steps))
	results, runErr := batch.RunScenario(context.Background(), scenario, reg, st, logger)

	if len(results) > 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STEP\tSOURCE\tTRIALS\tMEAN\tJB\tSAVED")
		for _, r := range results {
			saved := "-"
			if r.RunID != "" {
				saved = r.RunID
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%.4f\t%.2f\t%s\n",
				r.Step, r.Source, humanize.Comma(int64(r.Result.Summary.Trials)),
				r.Result.Summary.Mean, r.Result.Summary.JarqueBera, saved)
		}
		w.Flush()
	}
	return runErr
}

func runSweepCmd(cmd *cobra.Command, args []string) error {
	fixed, err := parseParams(paramFlags)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.Open(logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	sw := &batch.Sweep{
		Source:  sourceArg(args),
		Param:   sweepOver,
		Min:     sweepFrom,
		Max:     sweepTo,
		Points:  sweepPoints,
		Params:  fixed,
		Samples: samples,
		Trials:  trials,
		Seed:    seed,
		Workers: workers,
	}
	reg := experiment.NewRegistry()
	points, runErr := batch.RunSweep(context.Background(), sw, reg, logger)

	if len(points) > 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, strings.ToUpper(sweepOver)+"\tMEAN\tVARIANCE\tSKEWNESS\tEX_KURT\tJB")
		for _, p := range points {
			fmt.Fprintf(w, "%g\t%.4f\t%.4f\t%+.4f\t%+.4f\t%.2f\n",
				p.Value, p.Summary.Mean, p.Summary.Variance,
				p.Summary.Skewness, p.Summary.ExcessKurtosis, p.Summary.JarqueBera)
		}
		w.Flush()
	}
	if runErr != nil {
		return runErr
	}

	if len(points) > 1 {
		jbs := make([]float64, len(points))
		for i, p := range points {
			jbs[i] = p.Summary.JarqueBera
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(jbs,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("jarque-bera vs %s", sweepOver))))
	}
	return nil
}

func runSeedsCmd(cmd *cobra.Command, args []string) error {
	params, err := parseParams(paramFlags)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.Open(logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	study := &batch.SeedStudy{
		Source:   sourceArg(args),
		Params:   params,
		Samples:  samples,
		Trials:   trials,
		BaseSeed: baseSeed,
		Runs:     seedRuns,
		Workers:  workers,
	}
	reg := experiment.NewRegistry()
	results, err := batch.RunSeedStudy(context.Background(), study, reg, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tMEAN\tSTD\tJB")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.5f\t%.5f\t%.2f\n",
			r.Seed, r.Summary.Mean, r.Summary.StdDev, r.Summary.JarqueBera)
	}
	w.Flush()

	spread := batch.Summarize(results)
	fmt.Println()
	fmt.Printf("across %d seeds:\n", spread.Runs)
	fmt.Printf("  mean of means  %.5f (std %.5f)\n", spread.MeanOfMeans, spread.StdOfMeans)
	fmt.Printf("  mean variance  %.5f\n", spread.MeanVariance)
	fmt.Printf("  jarque-bera    mean %.2f, max %.2f\n", spread.MeanJB, spread.MaxJB)
	return nil
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	if len(searchRanges) == 0 {
		return fmt.Errorf("at least one --range name=lo:hi:points is required")
	}
	names, ranges, err := parseRanges(searchRanges)
	if err != nil {
		return err
	}
	obj, err := optim.ParseObjective(objectiveName)
	if err != nil {
		return err
	}
	fixed, err := parseParams(paramFlags)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.Open(logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	base := experiment.Config{
		Source:  sourceArg(args),
		Params:  fixed,
		Samples: samples,
		Trials:  trials,
		Seed:    seed,
		Workers: workers,
	}
	grid := optim.NewGridSearch(names, ranges)

	reg := experiment.NewRegistry()
	res, err := optim.SearchSource(context.Background(), reg, base, grid, obj, logger)
	if err != nil {
		return err
	}

	fmt.Printf("best of %d grid points (%d skipped), %s = %.4f:\n",
		res.Evals, res.Skipped, obj, res.Score)
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, res.Params[name])
	}
	return nil
}

func benchWorkers(cmd *cobra.Command, args []string) error {
	name := sourceArg(args)
	reg := experiment.NewRegistry()

	maxWorkers := runtime.GOMAXPROCS(0)
	counts := []int{1}
	for n := 2; n < maxWorkers; n *= 2 {
		counts = append(counts, n)
	}
	if maxWorkers > 1 {
		counts = append(counts, maxWorkers)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tWORKERS\tTRIALS\tTIME\tTRIALS/SEC")
	for _, n := range counts {
		exp := experiment.New(experiment.Config{
			Source:  name,
			Samples: samples,
			Trials:  trials,
			Seed:    42,
			Workers: n,
		})
		if err := exp.Setup(reg); err != nil {
			return err
		}
		res, err := exp.Run(context.Background())
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%v\t%.0f\n",
			name, n, humanize.Comma(int64(res.Summary.Trials)),
			res.Elapsed.Round(time.Millisecond), res.TrialsPerSec)
	}
	return w.Flush()
}

// buildConfig assembles the effective config for live and run: defaults,
// then preset, then config file, then any flags the user actually set.
// A positional source argument wins over all of them.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if envTheme != "" {
		cfg.Theme = envTheme
	}

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("samples") {
		cfg.Samples = samples
	}
	if cmd.Flags().Changed("batch") {
		cfg.TrialsPerFrame = batchSize
	}
	if cmd.Flags().Changed("max-trials") {
		cfg.MaxTrials = maxTrials
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("mode") {
		cfg.Mode = mode
	}
	if cmd.Flags().Changed("frame-ms") {
		cfg.FrameMs = frameMs
	}
	if cmd.Flags().Changed("buckets") {
		cfg.Buckets = buckets
	}
	if cmd.Flags().Changed("theme") {
		cfg.Theme = themeName
	}
	if cmd.Flags().Changed("snapshot-every") {
		cfg.SnapshotEvery = snapshotEvery
	}
	if len(paramFlags) > 0 {
		params, err := parseParams(paramFlags)
		if err != nil {
			return nil, err
		}
		cfg.Params = params
	}
	if len(args) > 0 {
		cfg.Source = args[0]
	}

	return cfg, cfg.Validate()
}

func printSummary(s trial.Summary, sourceName string, params map[string]float64, samples int) {
	src, err := experiment.NewRegistry().NewSource(sourceName, params)

	fmt.Println("\nmoments:")
	fmt.Printf("  mean         %12.5f", s.Mean)
	if err == nil {
		fmt.Printf("   (theory %.5f)", float64(samples)*src.Mean())
	}
	fmt.Println()
	fmt.Printf("  std dev      %12.5f", s.StdDev)
	if err == nil {
		fmt.Printf("   (theory %.5f)", math.Sqrt(float64(samples)*src.Variance()))
	}
	fmt.Println()
	fmt.Printf("  skewness     %+12.5f\n", s.Skewness)
	fmt.Printf("  ex kurtosis  %+12.5f\n", s.ExcessKurtosis)
	fmt.Printf("  jarque-bera  %12.2f\n", s.JarqueBera)
}

func paramList(params map[string]float64) string {
	if len(params) == 0 {
		return ""
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%g", name, params[name])
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func sourceArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "coin"
}

// bucketQuantile reads an approximate quantile off stored bucket
// counts: the center of the bucket where the cumulative count crosses
// p of the total.
func bucketQuantile(data *storage.HistogramData, total uint64, p float64) float64 {
	target := p * float64(total)
	cum := 0.0
	for i, c := range data.Counts {
		cum += float64(c)
		if cum >= target {
			return (data.Edges[i] + data.Edges[i+1]) / 2
		}
	}
	return (data.Edges[len(data.Edges)-2] + data.Edges[len(data.Edges)-1]) / 2
}

func metricSeries(series []trial.Snapshot, name string) ([]float64, error) {
	values := make([]float64, len(series))
	for i, snap := range series {
		switch name {
		case "mean":
			values[i] = snap.Mean
		case "variance":
			values[i] = snap.Variance
		case "skewness":
			values[i] = snap.Skewness
		case "kurtosis":
			values[i] = snap.ExcessKurtosis
		case "jb":
			values[i] = snap.JarqueBera
		default:
			return nil, fmt.Errorf("unknown metric %q (want one of %s)", name, strings.Join(plotMetrics, ", "))
		}
	}
	return values, nil
}

func writeExport(runID string, exportFn func(string, io.Writer) error) error {
	if outFile == "" {
		return exportFn(runID, os.Stdout)
	}
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := exportFn(runID, f); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func parseParams(pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, val, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("bad parameter %q (want name=value)", pair)
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("bad parameter %q: %w", pair, err)
		}
		params[name] = f
	}
	return params, nil
}

func parseRanges(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, bounds, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, nil, fmt.Errorf("bad range %q (want name=lo:hi:points)", spec)
		}
		parts := strings.Split(bounds, ":")
		if len(parts) != 3 {
			return nil, nil, fmt.Errorf("bad range %q (want name=lo:hi:points)", spec)
		}
		lo, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("bad range %q: %w", spec, err)
		}
		hi, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("bad range %q: %w", spec, err)
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil || n < 1 {
			return nil, nil, fmt.Errorf("bad range %q: points must be a positive integer", spec)
		}
		names = append(names, name)
		ranges = append(ranges, linspace(lo, hi, n))
	}
	return names, ranges, nil
}

func linspace(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	step := (hi - lo) / float64(n-1)
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = lo + float64(i)*step
	}
	return vals
}
