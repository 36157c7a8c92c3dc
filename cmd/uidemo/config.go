package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/uirender"
)

// demoConfig is the optional TOML configuration of the demo. Command-line
// flags given explicitly override values from the file.
//
//	width = 1024
//	height = 768
//	frames = 5
//	upload = "immediate"
//
//	[theme]
//	panel = "#202225"
//	button = ["#5b7cf0", "#3350c0"]
type demoConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Frames int    `toml:"frames"`
	Upload string `toml:"upload"`
	Theme  theme  `toml:"theme"`
}

// theme holds the demo colors as hex strings.
type theme struct {
	Panel   string    `toml:"panel"`
	Button  [2]string `toml:"button"`
	Hover   [2]string `toml:"hover"`
	Pressed [2]string `toml:"pressed"`
}

func defaultConfig() demoConfig {
	return demoConfig{
		Width:  800,
		Height: 600,
		Frames: 3,
		Upload: "deferred",
		Theme: theme{
			Panel:   "#2b2d31",
			Button:  [2]string{"#5b7cf0", "#3350c0"},
			Hover:   [2]string{"#7c9bff", "#4062e0"},
			Pressed: [2]string{"#6d8cff", "#2a3f99"},
		},
	}
}

// parseConfig decodes data over the defaults. Unknown keys are logged and
// otherwise ignored.
func parseConfig(data string) (demoConfig, error) {
	cfg := defaultConfig()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("uidemo: unknown config key", "key", key.String())
	}
	if _, err := cfg.uploadMode(); err != nil {
		return cfg, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Frames < 0 {
		return cfg, fmt.Errorf("invalid target %dx%d with %d frames", cfg.Width, cfg.Height, cfg.Frames)
	}
	return cfg, nil
}

func loadConfig(path string) (demoConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return demoConfig{}, fmt.Errorf("read config: %w", err)
	}
	return parseConfig(string(data))
}

func (c demoConfig) uploadMode() (uirender.UploadMode, error) {
	switch c.Upload {
	case "", "deferred":
		return uirender.UploadDeferred, nil
	case "immediate":
		return uirender.UploadImmediate, nil
	default:
		return 0, fmt.Errorf("unknown upload mode %q", c.Upload)
	}
}

// palette is a theme resolved to colors.
type palette struct {
	panel   uirender.Color
	button  [2]uirender.Color
	hover   [2]uirender.Color
	pressed [2]uirender.Color
}

func (t theme) palette() palette {
	pair := func(p [2]string) [2]uirender.Color {
		return [2]uirender.Color{uirender.Hex(p[0]), uirender.Hex(p[1])}
	}
	return palette{
		panel:   uirender.Hex(t.Panel),
		button:  pair(t.Button),
		hover:   pair(t.Hover),
		pressed: pair(t.Pressed),
	}
}
