package trimerge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lf",
			text: "a\nb\nc\n",
			want: []string{"a\n", "b\n", "c\n"},
		},
		{
			name: "no_trailing_newline",
			text: "a\nb",
			want: []string{"a\n", "b"},
		},
		{
			name: "crlf",
			text: "a\r\nb\r\n",
			want: []string{"a\r\n", "b\r\n"},
		},
		{
			name: "bare_cr",
			text: "a\rb\r",
			want: []string{"a\r", "b\r"},
		},
		{
			name: "mixed_terminators",
			text: "a\nb\r\nc\rd",
			want: []string{"a\n", "b\r\n", "c\r", "d"},
		},
		{
			name: "empty",
			text: "",
			want: []string{},
		},
		{
			name: "blank_lines",
			text: "\n\n",
			want: []string{"\n", "\n"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLines(tt.text)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.text, strings.Join(got, ""), "tokens must reconstitute the input")
		})
	}
}

func TestSplitWordsFolded(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "words_and_spaces",
			text: "the quick  fox",
			want: []string{"the", " ", "quick", "  ", "fox"},
		},
		{
			name: "newline_folds_into_previous_word",
			text: "the quick\nfox",
			want: []string{"the", " ", "quick\n", "fox"},
		},
		{
			name: "consecutive_newlines_fold_together",
			text: "a\n\nb",
			want: []string{"a\n\n", "b"},
		},
		{
			name: "trailing_newline",
			text: "fox\n",
			want: []string{"fox\n"},
		},
		{
			name: "tabs_are_whitespace_runs",
			text: "a\t \tb",
			want: []string{"a", "\t \t", "b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitWordsFolded(tt.text)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.text, strings.Join(got, ""), "tokens must reconstitute the input")
			for i, w := range got {
				if i == 0 {
					// A newline with no preceding word keeps its own token.
					continue
				}
				assert.NotEqual(t, "\n", w)
			}
		})
	}
}

func TestSinkInterning(t *testing.T) {
	sink := NewSink()
	a := sink.SplitLines("x\ny\nx\n")
	b := sink.SplitLines("x\nz\n")
	require.Len(t, a, 3)
	require.Len(t, b, 2)
	assert.Equal(t, a[0], a[2], "equal tokens share an index")
	assert.Equal(t, a[0], b[0], "interning spans sequences")
	assert.NotEqual(t, a[1], b[1])
	assert.Equal(t, "x\ny\nx\n", sink.joinRange(a, 0, len(a)))
}
