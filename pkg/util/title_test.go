package util

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestSynthesizeTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "", "Untitled Note"},
		{"blank", "   \n\t  ", "Untitled Note"},
		{"short without terminator", "Shopping list: milk, eggs, bread, cheese", "Shopping list: milk, eggs, bread, cheese"},
		{"first sentence", "The quick brown fox jumps over the lazy dog. This sentence contains...", "The quick brown fox jumps over the lazy dog."},
		{"exclamation", "Hello! How are you", "Hello!"},
		{"question", "What? Yes.", "What?"},
		{"newline boundary", "First line\nsecond line", "First line"},
		{"trimmed", "   padded title   ", "padded title"},
		{"quoted period ignored", `She said "Stop. Now." and left the room quickly today`, `She said "Stop. Now." and left the room quickly...`},
		{"newline inside quote", "\"quoted. still\nnext", "\"quoted. still"},
		{"terminator at limit", strings.Repeat("a", 49) + ". rest of it", strings.Repeat("a", 49) + "."},
		{"terminator past limit", strings.Repeat("a", 50) + ". more", strings.Repeat("a", 50) + "..."},
		{"word boundary", "Lorem ipsum dolor sit amet consectetur adipiscing elit sed do eiusmod tempor", "Lorem ipsum dolor sit amet consectetur adipiscing..."},
		{"single long token", strings.Repeat("x", 80), strings.Repeat("x", 50) + "..."},
		{"multibyte", "你好世界。这是第二句", "你好世界。这是第二句"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SynthesizeTitle(tt.content))
		})
	}
}

func TestSynthesizeTitleQuotedPeriodNotBoundary(t *testing.T) {
	title := SynthesizeTitle(`She said "Stop. Now." and left the room quickly today`)
	assert.NotEqual(t, `She said "Stop.`, title)
	assert.True(t, strings.HasPrefix(title, `She said "Stop. Now."`))
}

func TestSynthesizeTitleProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500

	properties := gopter.NewProperties(parameters)

	check := func(s string) bool {
		title := SynthesizeTitle(s)
		if title == "" {
			return false
		}
		if utf8.RuneCountInString(title) > TitleMaxRunes+len(TitleEllipsis) {
			return false
		}
		if strings.TrimSpace(title) != title {
			return false
		}
		return title == SynthesizeTitle(s)
	}

	properties.Property("arbitrary strings yield a bounded non-empty title", prop.ForAll(
		check,
		gen.AnyString(),
	))

	tokens := []string{"word", "longerword", " ", "  ", "\n", "\t", ".", "!", "?", `"`, "a.b", "你好", "e.g."}
	properties.Property("text-like strings yield a bounded non-empty title", prop.ForAll(
		func(idx []int) bool {
			var b strings.Builder
			for _, i := range idx {
				b.WriteString(tokens[i])
			}
			return check(b.String())
		},
		gen.SliceOf(gen.IntRange(0, len(tokens)-1)),
	))

	properties.Property("short content without boundaries is returned trimmed", prop.ForAll(
		func(s string) bool {
			if len(s) > TitleMaxRunes {
				s = s[:TitleMaxRunes]
			}
			want := strings.TrimSpace(s)
			if want == "" {
				want = UntitledNote
			}
			return SynthesizeTitle(s) == want
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 0, WordCount("   \n "))
	assert.Equal(t, 1, WordCount("hello"))
	assert.Equal(t, 4, WordCount("  one two\tthree\nfour  "))
}
