package main

import (
	"time"

	"archcanvas/internal/editor"
	"archcanvas/internal/render"
)

type Mode int

const (
	ModeNormal Mode = iota
	ModeFileInput
	ModeConfirm
)

type FileOperation int

const (
	FileOpSave FileOperation = iota
	FileOpSavePNG
	FileOpSaveTXT
	FileOpOpen
)

type ConfirmAction int

const (
	ConfirmQuit ConfirmAction = iota
	ConfirmOverwriteFile
	ConfirmReload
)

// Label width per rune on the terminal canvas, one cell.
const cellAdvance = render.CellWidth

// Rows below the canvas: palette bar and status line.
const chromeRows = 2

// Redraw interval while a drag is pulsing.
const pulseTick = 50 * time.Millisecond

const defaultSceneFile = "architecture.yaml"

// palette holds the components dropped with keys 1-9.
var palette = []editor.PalettePayload{
	{Kind: "api", Label: "API Gateway"},
	{Kind: "microservice", Label: "Service"},
	{Kind: "database", Label: "Database"},
	{Kind: "cache", Label: "Cache"},
	{Kind: "loadbalancer", Label: "Load Balancer"},
	{Kind: "cdn", Label: "CDN"},
	{Kind: "auth", Label: "Auth"},
	{Kind: "payment", Label: "Payments"},
	{Kind: "email", Label: "Email"},
}
