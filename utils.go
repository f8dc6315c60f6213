package main

import (
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"unicode"

	"github.com/atotto/clipboard"
)

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

func isRTF(text string) bool {
	return strings.HasPrefix(text, "{\\rtf") || strings.Contains(text, "\\rtf1")
}

func isHTML(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "<") &&
		(strings.Contains(trimmed, "<html") || strings.Contains(trimmed, "<body") ||
			strings.Contains(trimmed, "<div") || strings.Contains(trimmed, "<span"))
}

// labelFromClipboard reduces clipboard content to one line of label text.
// Rich text and HTML are stripped to their visible characters; runs of
// whitespace and control characters become a single space.
func labelFromClipboard(text string) string {
	switch {
	case isRTF(text):
		text = stripRTF(text)
	case isHTML(text):
		text = stripHTML(text)
	}
	return strings.Join(strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}), " ")
}

// stripRTF drops groups, control words and their numeric parameters,
// keeping escaped literals and \'hh code points. \par, \line and \tab
// become whitespace.
func stripRTF(rtf string) string {
	var result strings.Builder
	result.Grow(len(rtf))
	runes := []rune(rtf)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '{' || r == '}':
			continue
		case r != '\\':
			result.WriteRune(r)
			continue
		case i+1 >= len(runes):
			continue
		}

		next := runes[i+1]
		switch {
		case next == '\\' || next == '{' || next == '}':
			result.WriteRune(next)
			i++
		case next == '\'' && i+3 < len(runes):
			if v, err := strconv.ParseUint(string(runes[i+2:i+4]), 16, 8); err == nil {
				result.WriteRune(rune(v))
			}
			i += 3
		case unicode.IsLetter(next):
			j := i + 1
			for j < len(runes) && unicode.IsLetter(runes[j]) {
				j++
			}
			word := string(runes[i+1 : j])
			for j < len(runes) && (runes[j] == '-' || unicode.IsDigit(runes[j])) {
				j++
			}
			if j < len(runes) && runes[j] == ' ' {
				j++
			}
			switch word {
			case "par", "line":
				result.WriteRune('\n')
			case "tab":
				result.WriteRune('\t')
			}
			i = j - 1
		default:
			i++
		}
	}
	return result.String()
}

var htmlEntities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", "\"",
	"&#39;", "'",
	"&nbsp;", " ",
)

func stripHTML(html string) string {
	var result strings.Builder
	result.Grow(len(html))
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			result.WriteRune(' ')
		case !inTag:
			result.WriteRune(r)
		}
	}
	return htmlEntities.Replace(result.String())
}
