package util

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// UntitledNote title used when content is blank
	// UntitledNote 内容为空时使用的标题
	UntitledNote = "Untitled Note"
	// TitleMaxRunes longest synthesized title before the ellipsis is appended
	// TitleMaxRunes 自动生成标题的最大长度（不含省略号）
	TitleMaxRunes = 50
	// TitleEllipsis marker appended to truncated titles
	// TitleEllipsis 截断标题时追加的省略号
	TitleEllipsis = "..."
)

// SynthesizeTitle derives a display title from note content.
//
// The first sentence terminator (. ! ?) outside a double-quoted span, or the
// first line break, ends the title when it falls within the first
// TitleMaxRunes characters. Otherwise short content is used as is and long
// content is cut at the last whitespace at or before TitleMaxRunes and
// suffixed with TitleEllipsis. The result is always trimmed and never empty.
//
// SynthesizeTitle 根据笔记内容生成标题
func SynthesizeTitle(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return UntitledNote
	}

	runes := []rune(trimmed)

	if i := firstBoundary(runes, TitleMaxRunes); i >= 0 {
		if title := strings.TrimSpace(string(runes[:i+1])); title != "" {
			return title
		}
	}

	if len(runes) <= TitleMaxRunes {
		return trimmed
	}

	cut := TitleMaxRunes
	for j := TitleMaxRunes; j > 0; j-- {
		if unicode.IsSpace(runes[j]) {
			cut = j
			break
		}
	}
	return strings.TrimSpace(string(runes[:cut])) + TitleEllipsis
}

// firstBoundary returns the index of the first title boundary below limit, or -1
// firstBoundary 返回 limit 之前第一个标题边界的位置，没有则返回 -1
func firstBoundary(runes []rune, limit int) int {
	inQuote := false
	for i, r := range runes {
		if i >= limit {
			break
		}
		switch r {
		case '"':
			inQuote = !inQuote
		case '\n':
			return i
		case '.', '!', '?':
			if !inQuote {
				return i
			}
		}
	}
	return -1
}

// WordCount counts whitespace separated tokens
// WordCount 统计以空白分隔的词数
func WordCount(content string) int {
	return len(strings.Fields(content))
}

// RuneLen returns the number of characters in s
// RuneLen 返回字符数
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
