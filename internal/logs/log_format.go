// Package logs renders container log output with tview color markup for the
// browse log pane.
package logs

import (
	"regexp"
	"strings"
	"time"

	"github.com/rivo/tview"
)

var logLevelColors = map[string]string{
	"TRACE":    "lightblue",
	"DEBUG":    "blue",
	"INFO":     "green",
	"NOTICE":   "aqua",
	"WARN":     "yellow",
	"WARNING":  "yellow",
	"ERROR":    "red",
	"ERR":      "red",
	"CRIT":     "red",
	"CRITICAL": "red",
	"FATAL":    "red",
	"PANIC":    "red",
}

// logfmtLevel finds level=xxx or "level":"xxx" anywhere in a line.
var logfmtLevel = regexp.MustCompile(`(?i)"?\blevel"?\s*[:=]\s*"?([a-z]+)"?`)

// Colorize applies timestamp and level colors using tview markup. Lines are
// expected as produced by `docker logs --timestamps`: the engine's RFC 3339
// timestamp first, then the application's own output.
func Colorize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}

	lines := strings.Split(raw, "\n")
	var b strings.Builder
	for i, line := range lines {
		if line == "" {
			if i < len(lines)-1 {
				b.WriteByte('\n')
			}
			continue
		}
		b.WriteString(formatLogLine(line))
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func formatLogLine(line string) string {
	line = strings.TrimSuffix(line, "\r")
	engineTS, remainder := extractEngineTimestamp(line)
	ts, remainder := extractTimestamp(remainder)
	level, rest := extractLevel(remainder)
	prefixed := level != ""
	if !prefixed {
		level = embeddedLevel(rest)
	}

	var b strings.Builder
	if engineTS != "" {
		b.WriteString("[darkgray]")
		b.WriteString(engineTS)
		b.WriteString("[-] ")
	}
	if ts != "" {
		b.WriteString("[gray]")
		b.WriteString(tview.Escape(ts))
		b.WriteString("[-] ")
	}
	switch {
	case prefixed:
		color := logLevelColors[level]
		b.WriteString("[")
		b.WriteString(color)
		b.WriteString("::b]")
		b.WriteString(level)
		b.WriteString("[-:-:-] ")
		b.WriteString(tview.Escape(rest))
	case level != "":
		// the level sits inside a structured line; tint the whole line
		b.WriteString("[")
		b.WriteString(logLevelColors[level])
		b.WriteString("]")
		b.WriteString(tview.Escape(rest))
		b.WriteString("[-]")
	default:
		b.WriteString(tview.Escape(rest))
	}
	return b.String()
}

// extractEngineTimestamp strips the RFC 3339 nano prefix docker adds and
// returns it as a short UTC clock time.
func extractEngineTimestamp(line string) (string, string) {
	token, rest, ok := strings.Cut(line, " ")
	if !ok || !strings.Contains(token, "T") {
		return "", line
	}
	t, err := time.Parse(time.RFC3339Nano, token)
	if err != nil || !strings.Contains(token, ".") {
		return "", line
	}
	return t.UTC().Format("15:04:05.000"), rest
}

func extractTimestamp(line string) (string, string) {
	trimmed := strings.TrimLeft(line, " \t")
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return "", line
	}

	token := fields[0]
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05.000",
	}
	for _, layout := range layouts {
		if _, err := time.Parse(layout, token); err == nil {
			remainder := strings.TrimLeft(trimmed[len(token):], " \t")
			return token, remainder
		}
	}

	// "2006-01-02 15:04:05" spans two fields
	if len(fields) >= 2 {
		pair := fields[0] + " " + fields[1]
		for _, layout := range layouts[2:] {
			if _, err := time.Parse(layout, pair); err == nil {
				idx := strings.Index(trimmed, fields[1]) + len(fields[1])
				return pair, strings.TrimLeft(trimmed[idx:], " \t")
			}
		}
	}
	return "", line
}

func extractLevel(line string) (string, string) {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return "", trimmed
	}

	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return "", trimmed
	}

	token := fields[0]
	cleaned := strings.Trim(token, "[]:")
	upper := strings.ToUpper(cleaned)
	if _, ok := logLevelColors[upper]; ok {
		remainder := strings.TrimLeft(trimmed[len(token):], " \t-:")
		return upper, remainder
	}

	return "", trimmed
}

func embeddedLevel(line string) string {
	m := logfmtLevel.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	upper := strings.ToUpper(m[1])
	if _, ok := logLevelColors[upper]; ok {
		return upper
	}
	return ""
}
