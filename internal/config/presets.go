package config

import "sort"

var Presets = map[string]*Config{
	"classic": {
		Source: "coin", Samples: 19, TrialsPerFrame: 5000,
		Mode: ModeRefresh, FrameMs: 500, Buckets: 41, Theme: "matrix",
		SnapshotEvery: DefaultSnapshotEvery,
	},
	"smooth": {
		Source: "uniform", Samples: 12, TrialsPerFrame: 2000,
		Mode: ModeAccumulate, FrameMs: 100, Buckets: 41, Theme: "ocean",
		SnapshotEvery: DefaultSnapshotEvery,
	},
	"skewed": {
		Source: "exponential", Samples: 5, TrialsPerFrame: 2000,
		Mode: ModeAccumulate, FrameMs: 250, Buckets: 41, Theme: "sunset",
		SnapshotEvery: DefaultSnapshotEvery,
	},
	"dice": {
		Source: "die", Samples: 10, TrialsPerFrame: 3000,
		Mode: ModeAccumulate, FrameMs: 250, Buckets: 41, Theme: "cyberpunk",
		SnapshotEvery: DefaultSnapshotEvery,
	},
	"split": {
		Source: "bimodal", Samples: 30, TrialsPerFrame: 2000,
		Mode: ModeAccumulate, FrameMs: 250, Buckets: 41, Theme: "mono",
		SnapshotEvery: DefaultSnapshotEvery,
	},
	"coarse": {
		Source: "coin", Samples: 9, TrialsPerFrame: 5000,
		Mode: ModeAccumulate, FrameMs: 500, Buckets: 11, Theme: "matrix",
		SnapshotEvery: DefaultSnapshotEvery,
	},
}

var presetInfo = map[string]string{
	"classic": "the original demo: fair coin, 19 draws, fresh batch each frame",
	"smooth":  "uniform draws accumulating fast into a dense bell",
	"skewed":  "exponential draws, watch skew fade as samples grow",
	"dice":    "ten d6 rolls per trial",
	"split":   "bimodal source that still sums to a bell",
	"coarse":  "few samples, few buckets, fast convergence",
}

// GetPreset returns a copy, so callers can layer flag overrides on top
// without mutating the table.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	clone := *cfg
	if cfg.Params != nil {
		clone.Params = make(map[string]float64, len(cfg.Params))
		for k, v := range cfg.Params {
			clone.Params[k] = v
		}
	}
	return &clone
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func PresetInfo(name string) string {
	return presetInfo[name]
}
