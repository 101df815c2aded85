// Package viz renders the laboratory in a terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [RunInteractive]: menu driven launcher over sources and presets
//   - [RunLive]: the animated histogram view itself
//   - [Canvas]: braille pixel canvas behind the density and qq plots
//   - Theme selection with 5 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset the accumulators
//	V     - Cycle views (bars, density, qq)
//	M     - Toggle accumulate/refresh
//	D     - Cycle source distributions
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	S     - Save an SVG snapshot
//	?     - Show help overlay
//
// # Recording
//
// The live view records sessions as looping GIF animations via the G
// key and single frames as SVG via S. Files are saved to the current
// directory.
package viz
