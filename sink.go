package trimerge

import "strings"

// Sink interns tokens: every distinct token maps to a small int, so the
// diff algorithms compare ints instead of strings. Tokens keep their
// terminators, which means concatenating a token sequence reproduces the
// original text byte for byte.
type Sink struct {
	Tokens []string
	Index  map[string]int
}

func NewSink() *Sink {
	return &Sink{
		Tokens: make([]string, 0, 200),
		Index:  make(map[string]int),
	}
}

func (s *Sink) addToken(tok string) int {
	if index, ok := s.Index[tok]; ok {
		return index
	}
	index := len(s.Tokens)
	s.Index[tok] = index
	s.Tokens = append(s.Tokens, tok)
	return index
}

// SplitLines splits text after every line terminator, keeping the
// terminator attached to its line. "\n", "\r\n" and a lone "\r" all end a
// line; the final token may lack a terminator.
func (s *Sink) SplitLines(text string) []int {
	lines := make([]int, 0, 200)
	for _, ln := range SplitLines(text) {
		lines = append(lines, s.addToken(ln))
	}
	return lines
}

// SplitWordsFolded tokenizes text into words with newlines folded into the
// preceding word.
func (s *Sink) SplitWordsFolded(text string) []int {
	words := make([]int, 0, 200)
	for _, w := range SplitWordsFolded(text) {
		words = append(words, s.addToken(w))
	}
	return words
}

// joinRange concatenates the tokens of seq[lo:hi]. Minimization can leave
// a conflict interior empty on one side, so lo may meet or pass hi.
func (s *Sink) joinRange(seq []int, lo, hi int) string {
	var b strings.Builder
	for i := lo; i < hi; i++ {
		b.WriteString(s.Tokens[seq[i]])
	}
	return b.String()
}

// SplitLines splits text into lines, each carrying its own terminator. A
// file with mixed terminators yields a mix of "\n", "\r\n" and "\r" lines.
func SplitLines(text string) []string {
	lines := make([]string, 0, 200)
	offset := 0
	for pos := 0; pos < len(text); pos++ {
		switch text[pos] {
		case '\n':
			lines = append(lines, text[offset:pos+1])
			offset = pos + 1
		case '\r':
			if pos+1 < len(text) && text[pos+1] == '\n' {
				// "\r\n" ends the line after the '\n'.
				continue
			}
			lines = append(lines, text[offset:pos+1])
			offset = pos + 1
		}
	}
	if offset < len(text) {
		lines = append(lines, text[offset:])
	}
	return lines
}

func isWordSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\f', '\v':
		return true
	}
	return false
}

// splitWords splits text into maximal runs of whitespace or
// non-whitespace, with each "\n" as its own token.
func splitWords(text string) []string {
	words := make([]string, 0, 200)
	offset := 0
	for pos := 0; pos < len(text); {
		c := text[pos]
		if c == '\n' {
			words = append(words, text[pos:pos+1])
			pos++
			offset = pos
			continue
		}
		space := isWordSpace(c)
		pos++
		for pos < len(text) && text[pos] != '\n' && isWordSpace(text[pos]) == space {
			pos++
		}
		words = append(words, text[offset:pos])
		offset = pos
	}
	return words
}

// SplitWordsFolded splits text into words, then folds each "\n" token into
// the preceding word. Aligning on such tokens makes word-level conflicts
// less aggressive at line boundaries.
func SplitWordsFolded(text string) []string {
	words := splitWords(text)
	result := make([]string, 0, len(words))
	var buf strings.Builder
	for _, word := range words {
		if word != "\n" && buf.Len() > 0 {
			result = append(result, buf.String())
			buf.Reset()
		}
		buf.WriteString(word)
	}
	if buf.Len() > 0 {
		result = append(result, buf.String())
	}
	return result
}
