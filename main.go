package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"archcanvas/internal/hittest"
	"archcanvas/internal/importer"
	"archcanvas/internal/render"
	"archcanvas/internal/scene"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	watchFlag    bool
	logFile      string
	minZoom      float64
	maxZoom      float64
	snapDistance float64
	minSpacing   float64
	historyLimit int

	pngOut  string
	txtOut  string
	yamlOut string
	scale   float64
)

var rootCmd = &cobra.Command{
	Use:   "archcanvas [scene-file]",
	Short: "Terminal canvas for generated architecture diagrams",
	Long: `archcanvas opens a diagram of components and connections, as produced by a
generation service in JSON or YAML, and lets you rearrange, connect and
relabel it with the mouse and keyboard. Missing ids, sizes and positions are
filled in on load and dangling connections are attached to the nearest
component.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runCanvas,
}

var exportCmd = &cobra.Command{
	Use:   "export <scene-file>",
	Short: "Render a scene file to PNG, visual text or normalized YAML",
	Long: `Load a scene the same way the canvas does and write it out without opening
the terminal UI. With no output flag a PNG is written next to the input.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runExport,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logFile, "log-file", "", "write debug logs to this file")
	flags.Float64Var(&snapDistance, "snap-distance", 0, "alignment snap distance in world units")
	flags.Float64Var(&minSpacing, "min-spacing", 0, "minimum gap kept between components")

	rootCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "reload the scene file when it changes on disk")
	rootCmd.Flags().Float64Var(&minZoom, "min-zoom", 0, "smallest zoom factor")
	rootCmd.Flags().Float64Var(&maxZoom, "max-zoom", 0, "largest zoom factor")
	rootCmd.Flags().IntVar(&historyLimit, "history-limit", 0, "number of undo steps kept")

	exportCmd.Flags().StringVar(&pngOut, "png", "", "write a PNG image to this file")
	exportCmd.Flags().StringVar(&txtOut, "txt", "", "write the terminal rendering to this file")
	exportCmd.Flags().StringVar(&yamlOut, "yaml", "", "write the healed scene document to this file")
	exportCmd.Flags().Float64Var(&scale, "scale", 1, "PNG pixels per world unit")

	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyFlags lets explicitly set flags override ~/.archcanvasrc.
func applyFlags(cmd *cobra.Command, cfg *Config) {
	f := cmd.Flags()
	if f.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if f.Changed("snap-distance") && snapDistance > 0 {
		cfg.SnapDistance = snapDistance
	}
	if f.Changed("min-spacing") && minSpacing > 0 {
		cfg.MinSpacing = minSpacing
	}
	if f.Lookup("min-zoom") != nil && f.Changed("min-zoom") && minZoom > 0 {
		cfg.MinZoom = minZoom
	}
	if f.Lookup("max-zoom") != nil && f.Changed("max-zoom") && maxZoom > 0 {
		cfg.MaxZoom = maxZoom
	}
	if f.Lookup("history-limit") != nil && f.Changed("history-limit") && historyLimit > 0 {
		cfg.HistoryLimit = historyLimit
	}
}

// newLogger logs to path through tea.LogToFile, or nowhere when path is
// empty. The terminal belongs to the UI.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := tea.LogToFile(path, "archcanvas")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
	return logger, func() { f.Close() }, nil
}

func runCanvas(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	applyFlags(cmd, cfg)

	logger, closeLog, err := newLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	if watchFlag && path == "" {
		return errors.New("--watch needs a scene file")
	}

	m := newModel(cfg, logger, nil, path)
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if !m.loadScene(path) {
				return errors.New(m.errorMessage)
			}
		} else {
			m.successMessage = fmt.Sprintf("New scene %s", filepath.Base(path))
		}
	}
	if watchFlag {
		m.watchFile(path)
	}
	defer m.closeWatcher()

	logger.Info("starting canvas", "file", path, "watch", watchFlag)
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("canvas: %w", err)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	applyFlags(cmd, cfg)

	logger, closeLog, err := newLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	input := args[0]
	opts := importer.DefaultOptions()
	opts.Layout = cfg.layoutOptions()
	opts.Logger = logger

	s, report, err := importer.LoadFile(input, opts)
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "✗ %v\n", err)
		return err
	}
	fmt.Printf("Loaded %s: %d components, %d connections, %s\n", input, len(s.Components), len(s.Connections), sceneSize(s))
	printReport(report)

	if pngOut == "" && txtOut == "" && yamlOut == "" {
		pngOut = strings.TrimSuffix(input, filepath.Ext(input)) + ".png"
	}

	var failed error
	write := func(kind, path string, fn func() error) {
		if path == "" {
			return
		}
		if err := fn(); err != nil {
			color.New(color.FgRed).Fprintf(os.Stderr, "✗ %s %s: %v\n", kind, path, err)
			failed = errors.Join(failed, err)
			return
		}
		color.Green("✓ %s written to %s", kind, path)
	}

	write("PNG", pngOut, func() error {
		measurer, err := hittest.NewFontMeasurer(cfg.FontSize)
		if err != nil {
			return err
		}
		pngOpts := render.DefaultPNGOptions()
		pngOpts.Scale = scale
		pngOpts.FontSize = cfg.FontSize
		return render.ExportPNG(pngOut, s, hittest.NewPicker(measurer), pngOpts)
	})
	write("TXT", txtOut, func() error {
		view, width, height := fitView(s)
		return writeVisualTXT(txtOut, s, view, hittest.NewPicker(hittest.FixedWidthMeasurer{Advance: cellAdvance}), width, height)
	})
	write("YAML", yamlOut, func() error {
		return importer.SaveFile(yamlOut, s)
	})
	return failed
}

func printReport(report importer.Report) {
	warn := color.New(color.FgYellow)
	if len(report.Rejected) > 0 {
		warn.Printf("! %d component(s) rejected: %s\n", len(report.Rejected), strings.Join(report.Rejected, ", "))
	}
	if len(report.SelfLoops) > 0 {
		warn.Printf("! %d connection(s) pointed back at their source: %s\n", len(report.SelfLoops), strings.Join(report.SelfLoops, ", "))
	}
	if len(report.Dangling) > 0 {
		warn.Printf("! %d connection(s) left dangling: %s\n", len(report.Dangling), strings.Join(report.Dangling, ", "))
	}
}

// sceneSize is the world-space extent of s.
func sceneSize(s *scene.Scene) string {
	b, ok := s.Bounds()
	if !ok {
		return "empty"
	}
	return fmt.Sprintf("%.0fx%.0f", b.W, b.H)
}
