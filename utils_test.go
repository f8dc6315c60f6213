package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelFromClipboard(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Data Flow", "Data Flow"},
		{"multi line", "orders\r\n  to\tbilling\n", "orders to billing"},
		{"rtf", `{\rtf1\ansi Hello \b World\b0}`, "Hello World"},
		{"rtf hex escape", `{\rtf1 caf\'e9}`, "café"},
		{"rtf paragraphs", `{\rtf1 gRPC\par stream}`, "gRPC stream"},
		{"rtf literals", `{\rtf1 a\{b\}}`, "a{b}"},
		{"html", "<div>Orders &amp; Billing</div>", "Orders & Billing"},
		{"control characters", "a\x00b\x1bc", "a b c"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, labelFromClipboard(tt.in))
		})
	}
}

func TestIsRTFAndHTML(t *testing.T) {
	assert.True(t, isRTF(`{\rtf1\ansi x}`))
	assert.False(t, isRTF("plain"))
	assert.True(t, isHTML("  <html><body>x</body></html>"))
	assert.False(t, isHTML("a < b"))
}
