package utils

import (
	"regexp"
	"strings"
)

var (
	// fencedObjectPattern matches an object inside a markdown fence: ```json { ... } ```
	fencedObjectPattern = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*\\n?(\\{.*\\})\\s*```")
	// objectPattern matches the outermost {...} anywhere in the text
	objectPattern = regexp.MustCompile(`(?s)\{.*\}`)
	// trailingCommaPattern matches a comma right before } or ]
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON pulls the JSON object out of raw model output.
// A fenced block wins over a bare object, so lead-in and closing prose are
// dropped either way. Line comments and trailing commas are removed.
// It returns "" when the text holds no object.
func ExtractJSON(input string) string {
	raw := ""
	if m := fencedObjectPattern.FindStringSubmatch(input); len(m) > 1 {
		raw = m[1]
	} else if m := objectPattern.FindString(input); m != "" {
		raw = m
	}
	if raw == "" {
		return ""
	}

	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = stripLineComment(line)
	}
	cleaned := trailingCommaPattern.ReplaceAllString(strings.Join(lines, "\n"), "$1")
	return strings.TrimSpace(cleaned)
}

// stripLineComment drops a // comment that starts outside a string value
func stripLineComment(line string) string {
	if !strings.Contains(line, "//") {
		return line
	}

	inString, escaped := false, false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case !inString && ch == '/' && i+1 < len(line) && line[i+1] == '/':
			return strings.TrimRight(line[:i], " \t")
		}
	}
	return line
}
