package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/cltlab/internal/config"
	"github.com/san-kum/cltlab/internal/dist"
	"github.com/san-kum/cltlab/internal/experiment"
)

var sourceInfo = map[string]string{
	"coin":        "±1 coin flips, the original demo",
	"uniform":     "flat draws on [lo, hi)",
	"die":         "fair die faces 1..6",
	"exponential": "heavy right tail, slow to normalize",
	"bimodal":     "two separated lobes, stubbornly non-normal",
}

const (
	stateMenu = iota
	stateConfig
	stateLive
)

type menuItem struct {
	name   string
	desc   string
	preset bool
}

// launcher is the three screen front door: pick a source or preset,
// tune the numbers, then hand off to the live model.
type launcher struct {
	state  int
	cursor int
	items  []menuItem

	selected    string
	params      map[string]float64
	paramNames  []string
	paramCursor int
	editing     bool
	editBuf     string

	width, height int
	errMsg        string

	reg  *experiment.Registry
	live Model
}

func NewLauncher() *launcher {
	reg := experiment.NewRegistry()

	var items []menuItem
	for _, name := range reg.Sources() {
		items = append(items, menuItem{name: name, desc: sourceInfo[name]})
	}
	for _, name := range config.ListPresets() {
		items = append(items, menuItem{name: name, desc: config.PresetInfo(name), preset: true})
	}

	return &launcher{
		state:  stateMenu,
		items:  items,
		reg:    reg,
		width:  80,
		height: 24,
	}
}

func (l launcher) Init() tea.Cmd { return nil }

func (l launcher) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return l.handleKey(msg)
	case tea.WindowSizeMsg:
		l.width, l.height = msg.Width, msg.Height
		l.live.width, l.live.height = msg.Width, msg.Height
		return l, nil
	default:
		if l.state == stateLive {
			newLive, cmd := l.live.Update(msg)
			l.live = newLive.(Model)
			return l, cmd
		}
	}
	return l, nil
}

func (l launcher) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch l.state {
	case stateMenu:
		return l.menuKey(msg)
	case stateConfig:
		return l.configKey(msg)
	case stateLive:
		newLive, cmd := l.live.Update(msg)
		l.live = newLive.(Model)
		return l, cmd
	}
	return l, nil
}

func (l launcher) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return l, tea.Quit
	case "up", "k":
		if l.cursor > 0 {
			l.cursor--
		}
	case "down", "j":
		if l.cursor < len(l.items)-1 {
			l.cursor++
		}
	case "enter", " ":
		item := l.items[l.cursor]
		if item.preset {
			return l.startWith(config.GetPreset(item.name))
		}
		l.selected = item.name
		l.state, l.paramCursor = stateConfig, 0
		l.errMsg = ""
		l.loadParams()
	}
	return l, nil
}

func (l launcher) configKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if l.editing {
		switch msg.String() {
		case "enter":
			var val float64
			fmt.Sscanf(l.editBuf, "%f", &val)
			l.params[l.paramNames[l.paramCursor]] = val
			l.editing, l.editBuf = false, ""
		case "escape":
			l.editing, l.editBuf = false, ""
		case "backspace":
			if len(l.editBuf) > 0 {
				l.editBuf = l.editBuf[:len(l.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					l.editBuf += string(c)
				}
			}
		}
		return l, nil
	}

	switch msg.String() {
	case "q", "escape":
		l.state = stateMenu
		l.errMsg = ""
	case "up", "k":
		if l.paramCursor > 0 {
			l.paramCursor--
		}
	case "down", "j":
		if l.paramCursor < len(l.paramNames)-1 {
			l.paramCursor++
		}
	case "enter", " ":
		l.editing, l.editBuf = true, trimFloat(l.params[l.paramNames[l.paramCursor]])
	case "left", "h":
		name := l.paramNames[l.paramCursor]
		l.params[name] -= stepFor(name)
	case "right", "l":
		name := l.paramNames[l.paramCursor]
		l.params[name] += stepFor(name)
	case "s":
		return l.startWith(l.buildConfig())
	}
	return l, nil
}

// loadParams seeds the editable rows: the source's own parameters at
// their defaults, then the run knobs.
func (l *launcher) loadParams() {
	l.params = map[string]float64{}
	l.paramNames = nil

	src, err := l.reg.NewSource(l.selected, nil)
	if err == nil {
		if c, ok := src.(dist.Configurable); ok {
			defaults := c.GetParams()
			names := make([]string, 0, len(defaults))
			for name := range defaults {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				l.params[name] = defaults[name]
				l.paramNames = append(l.paramNames, name)
			}
		}
	}

	def := config.DefaultConfig()
	l.params["samples"] = float64(def.Samples)
	l.params["batch"] = float64(def.TrialsPerFrame)
	l.params["frame_ms"] = float64(def.FrameMs)
	l.paramNames = append(l.paramNames, "samples", "batch", "frame_ms")
}

func stepFor(name string) float64 {
	switch name {
	case "samples":
		return 2
	case "batch":
		return 1000
	case "frame_ms":
		return 50
	default:
		return 0.1
	}
}

func (l launcher) buildConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Source = l.selected
	cfg.Samples = int(math.Round(l.params["samples"]))
	cfg.TrialsPerFrame = int(math.Round(l.params["batch"]))
	cfg.FrameMs = int(math.Round(l.params["frame_ms"]))

	srcParams := map[string]float64{}
	for name, v := range l.params {
		switch name {
		case "samples", "batch", "frame_ms":
		default:
			srcParams[name] = v
		}
	}
	if len(srcParams) > 0 {
		cfg.Params = srcParams
	}
	return cfg
}

func (l launcher) startWith(cfg *config.Config) (tea.Model, tea.Cmd) {
	if cfg == nil {
		l.errMsg = "unknown preset"
		return l, nil
	}
	live, err := NewModel(cfg)
	if err != nil {
		l.errMsg = err.Error()
		return l, nil
	}
	live.width, live.height = l.width, l.height
	l.live = live
	l.state = stateLive
	l.errMsg = ""
	return l, l.live.Init()
}

func (l launcher) View() string {
	switch l.state {
	case stateMenu:
		return l.viewMenu()
	case stateConfig:
		return l.viewConfig()
	case stateLive:
		return l.live.View()
	}
	return ""
}

func (l launcher) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + GradientText("CLTLAB", CurrentTheme.Primary, CurrentTheme.Secondary) + "\n")
	b.WriteString("    " + mutedStyle().Render("central limit theorem laboratory") + "\n")
	b.WriteString("    " + mutedStyle().Render(strings.Repeat("─", 32)) + "\n\n")

	inPresets := false
	for i, item := range l.items {
		if item.preset && !inPresets {
			b.WriteString("\n    " + mutedStyle().Render("presets") + "\n")
			inPresets = true
		}
		desc := item.desc
		if len(desc) > 44 {
			desc = desc[:41] + "..."
		}
		if i == l.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n",
				accentStyle().Bold(true).Render("▸"),
				textStyle().Bold(true).Render(fmt.Sprintf("%-12s", item.name)),
				primaryStyle().Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n",
				mutedStyle().Render(fmt.Sprintf("%-12s", item.name)),
				mutedStyle().Render(desc)))
		}
	}

	if l.errMsg != "" {
		b.WriteString("\n    " + errorStyle().Render(l.errMsg) + "\n")
	}
	b.WriteString("\n    " + keyHint("j/k", "navigate") + keyHint("enter", "select") + keyHint("q", "quit") + "\n")
	return b.String()
}

func (l launcher) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + headerStyle().Render(strings.ToUpper(l.selected)) + "\n")
	b.WriteString("    " + mutedStyle().Render(sourceInfo[l.selected]) + "\n")
	b.WriteString("    " + mutedStyle().Render(strings.Repeat("─", 32)) + "\n\n")

	for i, name := range l.paramNames {
		valStr := fmt.Sprintf("%10s", trimFloat(l.params[name]))
		if l.editing && i == l.paramCursor {
			valStr = fmt.Sprintf("%10s", l.editBuf+"_")
		}
		if i == l.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n",
				accentStyle().Bold(true).Render("▸"),
				textStyle().Bold(true).Render(fmt.Sprintf("%-10s", name)),
				primaryStyle().Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("      %s %s\n",
				mutedStyle().Render(fmt.Sprintf("%-10s", name)),
				mutedStyle().Render(valStr)))
		}
	}

	if l.errMsg != "" {
		b.WriteString("\n    " + errorStyle().Render(l.errMsg) + "\n")
	}
	b.WriteString("\n    " + keyHint("j/k", "select") + keyHint("h/l", "adjust") +
		keyHint("enter", "edit") + keyHint("s", "start") + keyHint("esc", "back") + "\n")
	return b.String()
}

func keyHint(key, action string) string {
	return accentStyle().Render(key) + mutedStyle().Render(" "+action+"  ")
}

func trimFloat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e9 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// RunInteractive starts the menu driven launcher.
func RunInteractive() error {
	_, err := tea.NewProgram(NewLauncher(), tea.WithAltScreen()).Run()
	return err
}
