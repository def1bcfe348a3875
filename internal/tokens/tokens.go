// Package tokens provides the cheap character-based token estimate used to
// bound what is sent to the completion service, and the offline estimator
// over persisted message logs.
package tokens

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// CharsPerToken is the fixed ratio behind every estimate.
const CharsPerToken = 4

// contentMarker separates log-line metadata from the message text.
const contentMarker = "content: "

// Estimate returns the estimated token count of text.
func Estimate(text string) int {
	return utf8.RuneCountInString(text) / CharsPerToken
}

// EstimateLogFile estimates the token count of a message log file. Each line
// contributes the text after its "content: " marker; lines without the marker
// are skipped.
func EstimateLogFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("tokens: failed to open %s: %w", path, err)
	}
	defer f.Close()

	var contents []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if _, after, ok := strings.Cut(scanner.Text(), contentMarker); ok {
			contents = append(contents, strings.TrimSpace(after))
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("tokens: failed to read %s: %w", path, err)
	}

	return Estimate(strings.Join(contents, " ")), nil
}

// TruncateToBudget drops the oldest transcript lines until the estimate fits
// maxTokens. The transcript is chronological, so recent lines are kept in
// preference to old ones. A single over-budget line is returned as-is.
func TruncateToBudget(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}

	budget := maxTokens * CharsPerToken
	total := utf8.RuneCountInString(text)
	if total <= budget {
		return text
	}

	lines := strings.Split(text, "\n")
	start := 0
	for start < len(lines)-1 && total > budget {
		total -= utf8.RuneCountInString(lines[start]) + 1
		start++
	}
	return strings.Join(lines[start:], "\n")
}
