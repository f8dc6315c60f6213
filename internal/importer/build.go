package importer

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"archcanvas/internal/geom"
	"archcanvas/internal/layout"
	"archcanvas/internal/scene"
)

type Options struct {
	Layout    layout.Options
	Tolerance scene.ToleranceFunc
	Logger    *slog.Logger
	// IDs replaces the scene's id generator for ids created after import.
	IDs func(prefix string) string
}

func DefaultOptions() Options {
	return Options{
		Layout:    layout.DefaultOptions(),
		Tolerance: scene.DefaultTolerance,
	}
}

// Report lists what Build had to repair or give up on.
type Report struct {
	// Rejected holds the ids of components that could not be stored.
	Rejected []string
	// Dangling holds the ids of connections with at least one end left
	// unattached.
	Dangling []string
	// SelfLoops holds the ids of connections whose ends resolved to the
	// same component; their target end was detached.
	SelfLoops []string
}

// Build turns a document into a scene. Missing ids become comp-<i> and
// conn-<i>, missing sizes take the defaults and zero coordinates are
// auto-laid out. Each connection end attaches to the component it names
// when that exists, otherwise to the nearest component around its point,
// otherwise it stays a literal point.
func Build(doc Document, opts Options) (*scene.Scene, Report) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Tolerance == nil {
		opts.Tolerance = scene.DefaultTolerance
	}
	if opts.Layout == (layout.Options{}) {
		opts.Layout = layout.DefaultOptions()
	}

	var sceneOpts []scene.Option
	if opts.IDs != nil {
		sceneOpts = append(sceneOpts, scene.WithIDGenerator(opts.IDs))
	}
	s := scene.New(sceneOpts...)
	var report Report

	comps := make([]scene.Component, len(doc.Components))
	for i, cd := range doc.Components {
		comps[i] = componentFromDoc(i, cd)
	}
	for _, c := range layout.AutoLayout(comps, opts.Layout) {
		if _, err := s.AddComponent(c); err != nil {
			logger.Warn("component rejected", "id", c.ID, "error", err)
			report.Rejected = append(report.Rejected, c.ID)
		}
	}

	for i, cd := range doc.Connections {
		conn := scene.Connection{
			ID:       cd.ID,
			From:     resolveEnd(s, cd.From, opts.Tolerance),
			To:       resolveEnd(s, cd.To, opts.Tolerance),
			Kind:     cd.Type,
			Label:    cd.Label,
			Protocol: cd.Protocol,
		}
		if conn.ID == "" {
			conn.ID = fmt.Sprintf("conn-%d", i)
		}
		if conn.From.ComponentID != "" && conn.From.ComponentID == conn.To.ComponentID {
			logger.Warn("connection ends on its own source", "id", conn.ID, "component", conn.From.ComponentID)
			report.SelfLoops = append(report.SelfLoops, conn.ID)
			conn.To.ComponentID = ""
			conn.To.Point = geom.Pt(cd.To.X, cd.To.Y)
		}

		stored, err := s.InsertConnection(conn)
		if err != nil {
			logger.Warn("connection rejected", "id", conn.ID, "error", err)
			continue
		}
		if stored.From.ComponentID == "" || stored.To.ComponentID == "" {
			logger.Warn("connection left dangling", "id", stored.ID,
				"from", stored.From.ComponentID, "to", stored.To.ComponentID)
			report.Dangling = append(report.Dangling, stored.ID)
		}
	}
	return s, report
}

func componentFromDoc(i int, cd ComponentDoc) scene.Component {
	c := scene.Component{
		ID:           cd.ID,
		Kind:         cd.Type,
		Label:        cd.Label,
		Category:     cd.Category,
		Description:  cd.Description,
		Technologies: cd.Technologies,
		X:            cd.X,
		Y:            cd.Y,
		Width:        cd.Width,
		Height:       cd.Height,
		Icon:         cd.Icon,
		Color:        cd.Color,
	}
	if c.ID == "" {
		c.ID = fmt.Sprintf("comp-%d", i)
	}
	if c.Width == 0 {
		c.Width = scene.DefaultWidth
	}
	if c.Height == 0 {
		c.Height = scene.DefaultHeight
	}
	return c
}

func resolveEnd(s *scene.Scene, pd PointDoc, tol scene.ToleranceFunc) scene.Endpoint {
	pt := geom.Pt(pd.X, pd.Y)
	if c, ok := s.Component(pd.ComponentID); ok && pd.ComponentID != "" {
		return scene.Endpoint{ComponentID: c.ID, Point: c.Center()}
	}
	if c, ok := s.ResolveNearestComponent(pt, tol); ok {
		return scene.Endpoint{ComponentID: c.ID, Point: c.Center()}
	}
	return scene.Endpoint{Point: pt}
}

// LoadFile reads and builds the document at path.
func LoadFile(path string, opts Options) (*scene.Scene, Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Report{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return nil, Report{}, fmt.Errorf("%s: %w", path, err)
	}
	s, report := Build(doc, opts)
	return s, report, nil
}

// SaveFile writes the scene as a YAML document.
func SaveFile(path string, s *scene.Scene) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Encode(f, FromScene(s)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
