// Package suggest turns free-form assistant replies into candidate todos.
//
// The extractor is a substring and threshold heuristic. Its constants are
// part of its observable behavior.
package suggest

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nhle/smarttodo/internal/model"
)

const (
	// MinLength is the shortest accepted candidate, in code points.
	MinLength = 5
	// MaxLength is the longest accepted candidate, in code points.
	MaxLength = 200
	// Bullets lists the glyphs that open a candidate line.
	Bullets = "•-*"
)

// Denylist holds lowercase phrases that mark a line as a list intro rather
// than an item.
var Denylist = []string{"here are", "i suggest"}

// Project is the part of a project the extractor matches against.
type Project = model.ProjectRef

// Extract scans text for bullet lines and returns one suggestion per
// surviving candidate, in order of appearance. A candidate is assigned the
// first project in projects whose name occurs in it case-insensitively;
// with no match and exactly one project, that project is used.
func Extract(text string, projects []Project) []model.Suggestion {
	out := []model.Suggestion{}
	for _, line := range strings.Split(text, "\n") {
		candidate, ok := bullet(line)
		if !ok || !acceptable(candidate) {
			continue
		}
		out = append(out, model.Suggestion{
			Text:      candidate,
			ProjectID: match(candidate, projects),
		})
	}
	return out
}

// bullet strips the marker from a bullet line. A line qualifies when, after
// leading spaces and tabs, it has a glyph followed by whitespace.
func bullet(line string) (string, bool) {
	line = strings.TrimLeft(line, " \t")
	glyph, size := utf8.DecodeRuneInString(line)
	if size == 0 || !strings.ContainsRune(Bullets, glyph) {
		return "", false
	}
	rest := line[size:]
	next, _ := utf8.DecodeRuneInString(rest)
	if !unicode.IsSpace(next) {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

func acceptable(candidate string) bool {
	n := utf8.RuneCountInString(candidate)
	if n < MinLength || n > MaxLength {
		return false
	}
	lower := strings.ToLower(candidate)
	for _, phrase := range Denylist {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	return true
}

func match(candidate string, projects []Project) string {
	lower := strings.ToLower(candidate)
	for _, p := range projects {
		if p.Name != "" && strings.Contains(lower, strings.ToLower(p.Name)) {
			return p.ID
		}
	}
	if len(projects) == 1 {
		return projects[0].ID
	}
	return ""
}
