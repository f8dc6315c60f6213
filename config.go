package main

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"archcanvas/internal/history"
	"archcanvas/internal/hittest"
	"archcanvas/internal/layout"
	"archcanvas/internal/viewport"
)

const configFileName = ".archcanvasrc"

type Config struct {
	SaveDirectory string
	MinZoom       float64
	MaxZoom       float64
	SnapDistance  float64
	MinSpacing    float64
	HistoryLimit  int
	FontSize      float64
	LogFile       string
	Confirmations bool
}

func defaultConfig() *Config {
	return &Config{
		SaveDirectory: "",
		MinZoom:       viewport.DefaultMinZoom,
		MaxZoom:       viewport.DefaultMaxZoom,
		SnapDistance:  layout.DefaultSnapDistance,
		MinSpacing:    layout.DefaultMinSpacing,
		HistoryLimit:  history.DefaultLimit,
		FontSize:      hittest.DefaultFontSize,
		Confirmations: true,
	}
}

// loadConfig reads ~/.archcanvasrc. A missing or unreadable file leaves the
// defaults in place.
func loadConfig() *Config {
	config := defaultConfig()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return config
	}

	file, err := os.Open(filepath.Join(homeDir, configFileName))
	if err != nil {
		return config
	}
	defer file.Close()

	config.parse(file, homeDir)
	return config
}

// parse applies key=value lines on top of the current values. Unknown keys
// and numbers that do not parse are skipped.
func (c *Config) parse(r io.Reader, homeDir string) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch strings.ToLower(key) {
		case "savedirectory", "save_directory", "savedir":
			c.SaveDirectory = expandPath(value, homeDir)
		case "logfile", "log_file":
			c.LogFile = expandPath(value, homeDir)
		case "minzoom", "min_zoom":
			setFloat(&c.MinZoom, value)
		case "maxzoom", "max_zoom":
			setFloat(&c.MaxZoom, value)
		case "snapdistance", "snap_distance":
			setFloat(&c.SnapDistance, value)
		case "minspacing", "min_spacing":
			setFloat(&c.MinSpacing, value)
		case "fontsize", "font_size":
			setFloat(&c.FontSize, value)
		case "historylimit", "history_limit":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				c.HistoryLimit = n
			}
		case "confirmations", "confirm":
			c.Confirmations = strings.ToLower(value) == "true"
		}
	}
}

func setFloat(dst *float64, value string) {
	if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
		*dst = f
	}
}

func expandPath(value, homeDir string) string {
	if strings.HasPrefix(value, "~") && homeDir != "" {
		value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
	}
	if !filepath.IsAbs(value) {
		if absPath, err := filepath.Abs(value); err == nil {
			value = absPath
		}
	}
	return value
}

// layoutOptions returns the layout defaults with the configured snap and
// spacing distances.
func (c *Config) layoutOptions() layout.Options {
	opts := layout.DefaultOptions()
	opts.SnapDistance = c.SnapDistance
	opts.MinSpacing = c.MinSpacing
	return opts
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" || filepath.IsAbs(filename) {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}
