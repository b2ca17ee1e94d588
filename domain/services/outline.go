package services

import (
	"regexp"
	"strings"
)

// MarkdownHeading is one entry of a document outline
type MarkdownHeading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id"`
}

var (
	atxHeading  = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ \t]+(.*))?$`)
	closingHash = regexp.MustCompile(`(^|[ \t]+)#+[ \t]*$`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// ExtractHeadings lists the ATX headings of a markdown document in order,
// skipping fenced code blocks. Ids are lower-cased text with whitespace runs
// replaced by '-'.
func ExtractHeadings(markdown string) []MarkdownHeading {
	var headings []MarkdownHeading
	inFence := false
	fence := ""

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimRight(line, "\r")
		if marker := fenceMarker(trimmed); marker != "" {
			switch {
			case !inFence:
				inFence, fence = true, marker
			case strings.HasPrefix(marker, fence):
				inFence, fence = false, ""
			}
			continue
		}
		if inFence {
			continue
		}

		m := atxHeading.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(closingHash.ReplaceAllString(m[2], ""))
		if text == "" {
			continue
		}
		headings = append(headings, MarkdownHeading{
			Level: len(m[1]),
			Text:  text,
			ID:    slug(text),
		})
	}
	return headings
}

func fenceMarker(line string) string {
	s := strings.TrimLeft(line, " ")
	if len(line)-len(s) > 3 {
		return ""
	}
	for _, ch := range []string{"```", "~~~"} {
		if strings.HasPrefix(s, ch) {
			return s[:len(s)-len(strings.TrimLeft(s, ch[:1]))]
		}
	}
	return ""
}

func slug(text string) string {
	return whitespace.ReplaceAllString(strings.ToLower(text), "-")
}
