package viz

import (
	"fmt"
	"image"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/cltlab/internal/config"
	"github.com/san-kum/cltlab/internal/dist"
	"github.com/san-kum/cltlab/internal/experiment"
	"github.com/san-kum/cltlab/internal/export"
	"github.com/san-kum/cltlab/internal/stats"
	"github.com/san-kum/cltlab/internal/trial"
)

// TickMsg drives the animation loop.
type TickMsg time.Time

type viewMode int

const (
	viewBars viewMode = iota
	viewCurve
	viewQQ
)

func (v viewMode) String() string {
	switch v {
	case viewCurve:
		return "density"
	case viewQQ:
		return "qq"
	default:
		return "bars"
	}
}

const (
	sidebarWidth = 44
	jbHistoryCap = 120
	statusFrames = 6
)

// Model is the live view state. Each tick runs a batch of trials and
// redraws; keys retune the running study without restarting it.
type Model struct {
	cfg       *config.Config
	reg       *experiment.Registry
	runner    *trial.Runner
	quantiles *stats.Quantiles

	width  int
	height int

	view     viewMode
	overlay  bool
	paused   bool
	showHelp bool

	recording  bool
	frames     []*image.Paletted
	recW, recH int

	totalTrials uint64
	jbSeries    []float64
	start       time.Time
	frame       int

	statusMsg string
	msgTTL    int
}

func NewModel(cfg *config.Config) (Model, error) {
	if err := cfg.Validate(); err != nil {
		return Model{}, err
	}
	SetTheme(cfg.Theme)

	m := Model{
		cfg:     cfg,
		reg:     experiment.NewRegistry(),
		overlay: true,
		width:   80,
		height:  24,
		start:   time.Now(),
	}
	if err := m.rebuild(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// rebuild creates a fresh runner for the current config. Used at
// startup and whenever the source or sample count changes, since those
// change the histogram geometry.
func (m *Model) rebuild() error {
	src, err := m.reg.NewSource(m.cfg.Source, m.cfg.Params)
	if err != nil {
		return err
	}
	runner, err := trial.New(trial.Config{
		Source:     src,
		Samples:    m.cfg.Samples,
		Trials:     m.cfg.MaxTrials,
		Seed:       m.cfg.Seed,
		MaxBuckets: m.cfg.Buckets,
	})
	if err != nil {
		return err
	}
	m.quantiles = stats.NewQuantiles()
	runner.AddObserver(m.quantiles)
	m.runner = runner
	m.totalTrials = 0
	m.jbSeries = nil
	m.start = time.Now()
	return nil
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.cfg.FrameInterval(), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m *Model) setStatus(msg string) {
	m.statusMsg = msg
	m.msgTTL = statusFrames
}

func (m *Model) step() {
	if m.cfg.Mode == config.ModeRefresh {
		m.runner.Reset()
	}
	m.runner.RunBatch(m.cfg.TrialsPerFrame)
	m.totalTrials += uint64(m.cfg.TrialsPerFrame)

	m.jbSeries = append(m.jbSeries, m.runner.Moments().JarqueBera())
	if len(m.jbSeries) > jbHistoryCap {
		m.jbSeries = m.jbSeries[len(m.jbSeries)-jbHistoryCap:]
	}

	if m.cfg.Mode == config.ModeAccumulate && m.cfg.MaxTrials > 0 &&
		m.runner.Moments().Count() >= float64(m.cfg.MaxTrials) {
		m.paused = true
		m.setStatus("trial budget reached")
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		m.frame++
		if m.msgTTL > 0 {
			m.msgTTL--
			if m.msgTTL == 0 {
				m.statusMsg = ""
			}
		}
		if !m.paused {
			m.step()
			if m.recording {
				m.frames = append(m.frames, m.captureFrame())
			}
		}
		return m, m.tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case " ":
		m.paused = !m.paused

	case "r":
		m.runner.Reset()
		m.totalTrials = 0
		m.jbSeries = nil
		m.start = time.Now()
		m.paused = false

	case "m":
		if m.cfg.Mode == config.ModeAccumulate {
			m.cfg.Mode = config.ModeRefresh
		} else {
			m.cfg.Mode = config.ModeAccumulate
		}
		m.setStatus("mode: " + m.cfg.Mode)

	case "v":
		m.view = (m.view + 1) % 3
		m.setStatus("view: " + m.view.String())

	case "n":
		m.overlay = !m.overlay

	case "t":
		m.cfg.Theme = NextTheme()
		m.setStatus("theme: " + m.cfg.Theme)

	case "d":
		m.cycleSource()

	case "+", "=":
		m.cfg.Samples += 2
		if err := m.rebuild(); err != nil {
			m.setStatus(err.Error())
		} else {
			m.setStatus(fmt.Sprintf("samples: %d", m.cfg.Samples))
		}

	case "-", "_":
		if m.cfg.Samples > 2 {
			m.cfg.Samples -= 2
		} else {
			m.cfg.Samples = 1
		}
		if err := m.rebuild(); err != nil {
			m.setStatus(err.Error())
		} else {
			m.setStatus(fmt.Sprintf("samples: %d", m.cfg.Samples))
		}

	case "[":
		if m.cfg.TrialsPerFrame > 1 {
			m.cfg.TrialsPerFrame /= 2
		}
		m.setStatus(fmt.Sprintf("batch: %s", humanize.Comma(int64(m.cfg.TrialsPerFrame))))

	case "]":
		if m.cfg.TrialsPerFrame < 1_000_000 {
			m.cfg.TrialsPerFrame *= 2
		}
		m.setStatus(fmt.Sprintf("batch: %s", humanize.Comma(int64(m.cfg.TrialsPerFrame))))

	case "g":
		if m.recording {
			m.recording = false
			name, err := saveGIF(m.frames, m.cfg.FrameMs)
			if err != nil {
				m.setStatus("gif failed: " + err.Error())
			} else {
				m.setStatus("saved " + name)
			}
			m.frames = nil
		} else {
			m.recording = true
			m.frames = nil
			m.recW, m.recH = m.plotSize()
			m.setStatus("recording")
		}

	case "s":
		name, err := m.saveSVG()
		if err != nil {
			m.setStatus("svg failed: " + err.Error())
		} else {
			m.setStatus("saved " + name)
		}

	case "?":
		m.showHelp = !m.showHelp
	}

	return m, nil
}

func (m *Model) cycleSource() {
	sources := m.reg.Sources()
	idx := 0
	for i, name := range sources {
		if name == m.cfg.Source {
			idx = i
			break
		}
	}
	m.cfg.Source = sources[(idx+1)%len(sources)]
	m.cfg.Params = nil
	if err := m.rebuild(); err != nil {
		m.setStatus(err.Error())
		return
	}
	m.setStatus("source: " + m.cfg.Source)
}

// theory returns the limit normal parameters for the current source
// and sample count.
func (m Model) theory() (mu, sigma float64) {
	src := m.runner.Config().Source
	n := float64(m.cfg.Samples)
	return n * src.Mean(), math.Sqrt(n * src.Variance())
}

func (m Model) plotSize() (w, h int) {
	w = m.width - sidebarWidth - 2
	if w < 20 {
		w = 20
	}
	h = m.height - 4
	if h < 8 {
		h = 8
	}
	return
}

func (m Model) View() string {
	if m.showHelp {
		return m.helpView()
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")

	plotW, plotH := m.plotSize()
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.plotView(plotW, plotH), m.sidebarView())
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) headerView() string {
	title := GradientText(" central limit lab ", CurrentTheme.Primary, CurrentTheme.Secondary)

	var status string
	if m.paused {
		status = warningStyle().Render("⏸ paused")
	} else {
		status = successStyle().Render(AnimatedSpinner(m.frame) + " running")
	}
	if m.recording {
		status += "  " + errorStyle().Render("● rec")
	}
	if m.statusMsg != "" {
		status += "  " + accentStyle().Render(m.statusMsg)
	}

	return title + "  " + status
}

func (m Model) plotView(w, h int) string {
	hist := m.runner.Histogram()
	edges := hist.Layout().Edges()
	counts := hist.Counts()
	moments := m.runner.Moments()

	switch m.view {
	case viewCurve:
		return primaryStyle().Render(Curve(edges, counts, moments.Mean(), overlaySigma(m.overlay, moments), w, h))
	case viewQQ:
		return primaryStyle().Render(QQ(m.quantiles, moments.Mean(), moments.StdDev(), w, h))
	default:
		var overlay []float64
		if sigma := overlaySigma(m.overlay, moments); sigma > 0 {
			overlay = stats.ExpectedCounts(edges, moments.Count(), moments.Mean(), sigma)
		}
		return Bars(edges, counts, overlay, w, h)
	}
}

func overlaySigma(overlay bool, m *stats.Moments) float64 {
	if !overlay || m.Count() < 2 {
		return 0
	}
	return m.StdDev()
}

func (m Model) sidebarView() string {
	moments := m.runner.Moments()
	muT, sigmaT := m.theory()
	label := labelStyle()
	value := textStyle()

	var b strings.Builder
	src := m.runner.Config().Source
	b.WriteString(label.Render("source") + value.Render(src.Name()+paramSuffix(src)) + "\n")
	b.WriteString(label.Render("samples") + value.Render(fmt.Sprintf("%d per trial", m.cfg.Samples)) + "\n")
	b.WriteString(label.Render("mode") + value.Render(m.cfg.Mode) + "\n")
	b.WriteString(label.Render("batch") + value.Render(humanize.Comma(int64(m.cfg.TrialsPerFrame))+" / frame") + "\n")
	b.WriteString(Separator(38) + "\n")

	b.WriteString(label.Render("trials") + value.Render(humanize.Comma(int64(moments.Count()))) + "\n")
	b.WriteString(label.Render("mean") + value.Render(fmt.Sprintf("%.4f", moments.Mean())) +
		mutedStyle().Render(fmt.Sprintf("  μ %.2f", muT)) + "\n")
	b.WriteString(label.Render("std dev") + value.Render(fmt.Sprintf("%.4f", moments.StdDev())) +
		mutedStyle().Render(fmt.Sprintf("  σ %.2f", sigmaT)) + "\n")
	b.WriteString(label.Render("skewness") + value.Render(fmt.Sprintf("%+.4f", moments.Skewness())) + "\n")
	b.WriteString(label.Render("ex kurt") + value.Render(fmt.Sprintf("%+.4f", moments.ExcessKurtosis())) + "\n")
	b.WriteString(label.Render("jarque-bera") + value.Render(fmt.Sprintf("%.2f", moments.JarqueBera())) + "\n")

	if m.quantiles.Count() > 0 {
		b.WriteString(label.Render("p50/p90/p99") + value.Render(fmt.Sprintf("%.1f / %.1f / %.1f",
			m.quantiles.P50(), m.quantiles.P90(), m.quantiles.P99())) + "\n")
	}
	b.WriteString(Separator(38) + "\n")

	elapsed := time.Since(m.start)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(m.totalTrials) / elapsed.Seconds()
	}
	b.WriteString(label.Render("rate") + value.Render(humanize.SIWithDigits(rate, 1, "trials/s")) + "\n")
	b.WriteString(label.Render("elapsed") + value.Render(elapsed.Truncate(time.Second).String()) + "\n")

	if len(m.jbSeries) > 1 {
		b.WriteString("\n" + mutedStyle().Render(asciigraph.Plot(m.jbSeries,
			asciigraph.Height(4),
			asciigraph.Width(30),
			asciigraph.Caption("jarque-bera"))) + "\n")
	}

	if counts := m.runner.Histogram().Counts(); len(counts) > 0 {
		vals := make([]float64, len(counts))
		for i, c := range counts {
			vals[i] = float64(c)
		}
		b.WriteString("\n" + SparklineChart(vals, 36) + "\n")
	}

	normality := math.Exp(-moments.JarqueBera() / 2)
	b.WriteString("\n" + label.Render("normality") + ProgressBar(normality, 20) +
		mutedStyle().Render(fmt.Sprintf(" %.0f%%", normality*100)) + "\n")

	return sidebarStyle().Render(b.String())
}

func paramSuffix(src dist.Source) string {
	c, ok := src.(dist.Configurable)
	if !ok {
		return ""
	}
	params := c.GetParams()
	if len(params) == 0 {
		return ""
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%g", name, params[name]))
	}
	return " (" + strings.Join(parts, " ") + ")"
}

func (m Model) footerView() string {
	return mutedStyle().Render("space pause · r reset · v view · m mode · d source · +/- samples · [/] batch · t theme · g gif · s svg · ? help · q quit")
}

func (m Model) helpView() string {
	keys := [][2]string{
		{"space", "pause / resume"},
		{"r", "reset and start over"},
		{"m", "toggle accumulate / refresh"},
		{"v", "cycle view: bars, density, qq"},
		{"n", "toggle normal overlay"},
		{"d", "cycle source distribution"},
		{"+ / -", "samples per trial ±2"},
		{"[ / ]", "halve / double batch size"},
		{"t", "cycle color theme"},
		{"g", "start / stop gif capture"},
		{"s", "save svg snapshot"},
		{"?", "close help"},
		{"q", "quit"},
	}

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(accentStyle().Width(8).Render(k[0]) + textStyle().Render(k[1]) + "\n")
	}
	return "\n" + BoxWithTitle("keys", strings.TrimRight(b.String(), "\n"), 48)
}

// saveSVG writes the current plot as an SVG in the working directory
// and returns the file name.
func (m Model) saveSVG() (string, error) {
	hist := m.runner.Histogram()
	edges := hist.Layout().Edges()
	counts := hist.Counts()
	moments := m.runner.Moments()

	var doc string
	switch m.view {
	case viewCurve:
		if c := curveCanvas(edges, counts, moments.Mean(), overlaySigma(m.overlay, moments), 80, 20); c != nil {
			doc = export.CanvasSVG(c.Grid, 4, string(CurrentTheme.Primary))
		}
	case viewQQ:
		if c := qqCanvas(m.quantiles, moments.Mean(), moments.StdDev(), 60, 20); c != nil {
			doc = export.CanvasSVG(c.Grid, 4, string(CurrentTheme.Primary))
		}
	default:
		doc = export.HistogramSVG(edges, counts, moments.Mean(), overlaySigma(m.overlay, moments), 640, 360,
			string(CurrentTheme.Primary), string(CurrentTheme.Accent))
	}
	if doc == "" {
		return "", fmt.Errorf("nothing to export yet")
	}

	name := fmt.Sprintf("cltlab_%d.svg", time.Now().Unix())
	if err := os.WriteFile(name, []byte(doc), 0644); err != nil {
		return "", err
	}
	return name, nil
}

// RunLive starts the animated terminal view. It needs a real TTY and
// fails fast without one.
func RunLive(cfg *config.Config) error {
	m, err := NewModel(cfg)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
