// Package ingestion normalizes resume and job description text before profiling.
package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	spaceRun      = regexp.MustCompile(`[ \t\f\v]+`)
	blankLineRuns = regexp.MustCompile(`\n\n\n+`)
	htmlMarker    = regexp.MustCompile(`(?i)<\s*(?:html|body|div|p|br|ul|ol|li|h[1-6]|span|section|article|table)\b[^>]*>`)
)

// CleanText normalizes line endings, collapses runs of spaces within each
// line and keeps at most one blank line between paragraphs. Bullet and heading
// markers are preserved so section detection still works.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\u00a0", " ")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, cleanLine(line))
	}

	result := strings.Join(cleaned, "\n")
	result = blankLineRuns.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

func cleanLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}
	return spaceRun.ReplaceAllString(trimmed, " ")
}

// LooksLikeHTML reports whether content carries block-level HTML markup.
func LooksLikeHTML(content string) bool {
	return htmlMarker.MatchString(content)
}

// Normalize cleans raw submitted text, converting it from HTML first when it
// contains markup.
func Normalize(content string) (string, error) {
	if LooksLikeHTML(content) {
		text, err := HTMLToText(content)
		if err != nil {
			return "", err
		}
		return CleanText(text), nil
	}
	return CleanText(content), nil
}

// ReadFile reads a plain-text or HTML document and returns its normalized text.
func ReadFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %w", err)
		}
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return Normalize(string(content))
}

// ContentHash returns the hex SHA-256 digest of content.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
