package pdftext

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	MaxTopics      = 30
	maxTopicLength = 100
)

var (
	sectionRe  = regexp.MustCompile(`(?i)^(unit|chapter|module|section|part|topic)\s*[-:.]?\s*([0-9]+|[ivxlc]+)\b`)
	numberedRe = regexp.MustCompile(`^[0-9]{1,2}(\.[0-9]{1,2})*[.)]?\s+\S`)
)

// Topics picks heading-like lines: "Unit 3 ...", "Chapter IV ...",
// numbered headings and short ALL-CAPS lines. Results keep document order,
// are de-duplicated case-insensitively and capped at MaxTopics.
func Topics(text string) []string {
	out := make([]string, 0, 8)
	seen := map[string]bool{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if !isHeading(line) {
			continue
		}
		topic := strings.TrimRight(line, " .:;-")
		if r := []rune(topic); len(r) > maxTopicLength {
			topic = string(r[:maxTopicLength])
		}
		key := strings.ToLower(topic)
		if topic == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, topic)
		if len(out) == MaxTopics {
			break
		}
	}
	return out
}

func isHeading(line string) bool {
	n := len([]rune(line))
	if n < 4 || n > 120 {
		return false
	}
	if sectionRe.MatchString(line) {
		return true
	}
	if n <= 80 && numberedRe.MatchString(line) && hasLetters(line, 3) {
		return true
	}
	return n <= 80 && isAllCaps(line)
}

func isAllCaps(line string) bool {
	letters := 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 4
}

func hasLetters(line string, min int) bool {
	count := 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			count++
			if count >= min {
				return true
			}
		}
	}
	return false
}
