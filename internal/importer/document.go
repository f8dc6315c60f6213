// Package importer converts generated scene documents into scenes and
// back.
//
// A document is the {components, connections} shape the generation service
// returns. It is read with gopkg.in/yaml.v3, which also accepts the JSON
// form. Connections in a document carry coordinates and, optionally,
// component ids that may not match anything.
package importer

import (
	"bytes"
	"fmt"
	"io"

	"archcanvas/internal/scene"

	"gopkg.in/yaml.v3"
)

type Document struct {
	Components  []ComponentDoc  `yaml:"components"`
	Connections []ConnectionDoc `yaml:"connections"`
}

type ComponentDoc struct {
	ID           string   `yaml:"id,omitempty"`
	Type         string   `yaml:"type"`
	Label        string   `yaml:"label"`
	X            float64  `yaml:"x"`
	Y            float64  `yaml:"y"`
	Width        float64  `yaml:"width,omitempty"`
	Height       float64  `yaml:"height,omitempty"`
	Category     string   `yaml:"category,omitempty"`
	Description  string   `yaml:"description,omitempty"`
	Technologies []string `yaml:"technologies,omitempty"`
	Icon         string   `yaml:"icon,omitempty"`
	Color        string   `yaml:"color,omitempty"`
}

type PointDoc struct {
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	ComponentID string  `yaml:"componentId,omitempty"`
}

type ConnectionDoc struct {
	ID       string   `yaml:"id,omitempty"`
	From     PointDoc `yaml:"from"`
	To       PointDoc `yaml:"to"`
	Type     string   `yaml:"type,omitempty"`
	Label    string   `yaml:"label,omitempty"`
	Protocol string   `yaml:"protocol,omitempty"`
}

// Parse decodes a YAML or JSON document. Empty input is an empty document.
func Parse(data []byte) (Document, error) {
	var doc Document
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to decode scene document: %w", err)
	}
	return doc, nil
}

func Decode(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read scene document: %w", err)
	}
	return Parse(data)
}

// FromScene is the inverse of Build for a healed scene.
func FromScene(s *scene.Scene) Document {
	doc := Document{
		Components:  make([]ComponentDoc, 0, len(s.Components)),
		Connections: make([]ConnectionDoc, 0, len(s.Connections)),
	}
	for _, c := range s.Components {
		doc.Components = append(doc.Components, ComponentDoc{
			ID:           c.ID,
			Type:         c.Kind,
			Label:        c.Label,
			X:            c.X,
			Y:            c.Y,
			Width:        c.Width,
			Height:       c.Height,
			Category:     c.Category,
			Description:  c.Description,
			Technologies: append([]string(nil), c.Technologies...),
			Icon:         c.Icon,
			Color:        c.Color,
		})
	}
	for _, conn := range s.Connections {
		doc.Connections = append(doc.Connections, ConnectionDoc{
			ID:       conn.ID,
			From:     pointDoc(conn.From),
			To:       pointDoc(conn.To),
			Type:     conn.Kind,
			Label:    conn.Label,
			Protocol: conn.Protocol,
		})
	}
	return doc
}

func pointDoc(e scene.Endpoint) PointDoc {
	return PointDoc{X: e.Point.X, Y: e.Point.Y, ComponentID: e.ComponentID}
}

// Encode writes doc as YAML.
func Encode(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode scene document: %w", err)
	}
	return enc.Close()
}

// Marshal is Encode into a string.
func Marshal(doc Document) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
