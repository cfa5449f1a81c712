// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package legacy imports bulk legacy Infobot factoid exports
// (botname-is.txt / botname-are.txt, one "key => value" record per line)
// into the knowledge base. Each candidate line is parsed, stripped of
// IRC formatting, scored by a fixed heuristic, and persisted only when
// the score clears the configured quality threshold. Streaming telemetry
// (histogram, percentiles, bounded random samples) lets an operator
// judge and tune the threshold in a single pass over the corpus.
package legacy

import (
	"regexp"
	"strings"
)

// ParseFactoidLine splits a raw line on the first "=>" separator into
// (key, value). Both sides are trimmed of plain whitespace only; IRC
// control characters survive for CleanIRCFormatting. ok is false when
// the separator is missing or either side is empty.
func ParseFactoidLine(line string) (key, value string, ok bool) {
	key, value, found := strings.Cut(line, "=>")
	if !found {
		return "", "", false
	}
	key = strings.Trim(key, " \t\r\n")
	value = strings.Trim(value, " \t\r\n")
	if key == "" || value == "" {
		return "", "", false
	}
	return key, value, true
}

var (
	ircBold      = regexp.MustCompile("\x02([^\x02]*?)\x02")
	ircItalic    = regexp.MustCompile("\x1d([^\x1d]*?)\x1d")
	ircUnderline = regexp.MustCompile("\x1f([^\x1f]*?)\x1f")
	ircColor     = regexp.MustCompile(`\x03\d+(?:,\d+)?`)
	ircControl   = regexp.MustCompile(`[\x00-\x08\x0b-\x0c\x0e-\x1f\x7f]`)
)

// CleanIRCFormatting converts IRC formatting codes to Markdown and
// removes control characters. Delimiter pairs are substituted before the
// control-byte sweep; stripping first would destroy the delimiters the
// substitutions depend on.
func CleanIRCFormatting(text string) string {
	text = ircBold.ReplaceAllString(text, "**$1**")
	text = ircItalic.ReplaceAllString(text, "*$1*")
	text = ircUnderline.ReplaceAllString(text, "__$1__")
	text = ircColor.ReplaceAllString(text, "")
	text = ircControl.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
