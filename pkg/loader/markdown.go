package loader

import (
	"regexp"
	"strings"
)

var (
	reCodeBlock    = regexp.MustCompile("(?s)```[^`]*```")
	reInlineCode   = regexp.MustCompile("`[^`]+`")
	reImage        = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	reLink         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	reHeading      = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	reBlockquote   = regexp.MustCompile(`(?m)^>\s*`)
	reHorizRule    = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	reListMarker   = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	reNumberedList = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	reManyNewlines = regexp.MustCompile(`\n{3,}`)
)

// flattenMarkdown strips markdown syntax, keeping the prose. Paragraph
// structure survives so the chunker can still cut at paragraph breaks.
func flattenMarkdown(content string) string {
	content = reCodeBlock.ReplaceAllString(content, "")
	content = reInlineCode.ReplaceAllString(content, "")
	content = reImage.ReplaceAllString(content, "")
	content = reLink.ReplaceAllString(content, "$1")
	content = reHeading.ReplaceAllString(content, "")
	content = reBlockquote.ReplaceAllString(content, "")
	content = reHorizRule.ReplaceAllString(content, "")
	content = reListMarker.ReplaceAllString(content, "")
	content = reNumberedList.ReplaceAllString(content, "")

	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")
	content = strings.ReplaceAll(content, "*", "")

	content = reManyNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
