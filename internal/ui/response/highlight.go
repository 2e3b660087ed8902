package response

import (
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/shhac/interfere/internal/format"
)

// maxHighlightLen keeps huge formatted bodies to a single segment; RichText
// lays out every segment on each refresh.
const maxHighlightLen = 512 << 10

// role is what a run of body text means, independent of body kind
type role int

const (
	roleText role = iota
	roleKey
	roleString
	roleNumber
	roleLiteral // true, false, null
	roleTag
	roleAttr
	roleComment
)

var roleColor = map[role]fyne.ThemeColorName{
	roleText:    theme.ColorNameForeground,
	roleKey:     theme.ColorNamePrimary,
	roleString:  theme.ColorNameSuccess,
	roleNumber:  theme.ColorNameWarning,
	roleLiteral: theme.ColorNameError,
	roleTag:     theme.ColorNamePrimary,
	roleAttr:    theme.ColorNameWarning,
	roleComment: theme.ColorNameDisabled,
}

// span is src[start:end] drawn in one role
type span struct {
	role       role
	start, end int
}

// lexer walks src left to right. Adjacent runs of the same role are merged,
// so a body becomes as few segments as its colouring allows.
type lexer struct {
	src   string
	pos   int
	spans []span
}

func (l *lexer) emit(r role, end int) {
	end = min(end, len(l.src))
	if end <= l.pos {
		return
	}
	if n := len(l.spans); n > 0 && l.spans[n-1].role == r && l.spans[n-1].end == l.pos {
		l.spans[n-1].end = end
	} else {
		l.spans = append(l.spans, span{role: r, start: l.pos, end: end})
	}
	l.pos = end
}

// highlightBody colours a formatted body according to its kind.
func highlightBody(body string, kind format.Kind) []widget.RichTextSegment {
	if body == "" {
		return nil
	}
	var spans []span
	switch {
	case len(body) > maxHighlightLen:
		spans = []span{{role: roleText, end: len(body)}}
	case kind == format.JSON:
		spans = lexJSON(body)
	case kind == format.XML, kind == format.HTML:
		spans = lexMarkup(body)
	case kind == format.YAML:
		spans = lexYAML(body)
	default:
		spans = []span{{role: roleText, end: len(body)}}
	}

	segments := make([]widget.RichTextSegment, 0, len(spans))
	for _, sp := range spans {
		segments = append(segments, &widget.TextSegment{
			Style: widget.RichTextStyle{
				ColorName: roleColor[sp.role],
				Inline:    true,
				SizeName:  theme.SizeNameText,
				TextStyle: fyne.TextStyle{Monospace: true},
			},
			Text: body[sp.start:sp.end],
		})
	}
	return segments
}

func lexJSON(src string) []span {
	l := &lexer{src: src}
	for l.pos < len(src) {
		i := l.pos
		c := src[i]
		switch {
		case c == '"':
			end := scanQuoted(src, i)
			if nextNonSpace(src, end) == ':' {
				l.emit(roleKey, end)
			} else {
				l.emit(roleString, end)
			}
		case c == '-' || isDigit(c):
			l.emit(roleNumber, scanWhile(src, i+1, isNumberByte))
		case strings.HasPrefix(src[i:], "true"),
			strings.HasPrefix(src[i:], "false"),
			strings.HasPrefix(src[i:], "null"):
			l.emit(roleLiteral, scanWhile(src, i, isLetter))
		default:
			l.emit(roleText, i+1)
		}
	}
	return l.spans
}

func lexMarkup(src string) []span {
	l := &lexer{src: src}
	for l.pos < len(src) {
		i := l.pos
		if src[i] != '<' {
			next := strings.IndexByte(src[i:], '<')
			if next < 0 {
				l.emit(roleText, len(src))
				break
			}
			l.emit(roleText, i+next)
			continue
		}
		switch {
		case strings.HasPrefix(src[i:], "<!--"):
			l.emit(roleComment, indexAfter(src, i+4, "-->"))
		case strings.HasPrefix(src[i:], "<!"), strings.HasPrefix(src[i:], "<?"):
			l.emit(roleComment, indexAfter(src, i+2, ">"))
		default:
			lexTag(l)
		}
	}
	return l.spans
}

// lexTag consumes one start or end tag beginning at l.pos
func lexTag(l *lexer) {
	src := l.src
	end := l.pos + 1
	if end < len(src) && src[end] == '/' {
		end++
	}
	l.emit(roleTag, scanWhile(src, end, isNameByte))

	for l.pos < len(src) {
		i := l.pos
		c := src[i]
		switch {
		case c == '>':
			l.emit(roleTag, i+1)
			return
		case c == '/' && i+1 < len(src) && src[i+1] == '>':
			l.emit(roleTag, i+2)
			return
		case c == '"' || c == '\'':
			closing := strings.IndexByte(src[i+1:], c)
			if closing < 0 {
				l.emit(roleString, len(src))
				return
			}
			l.emit(roleString, i+closing+2)
		case isNameByte(c):
			l.emit(roleAttr, scanWhile(src, i, isNameByte))
		default:
			l.emit(roleText, i+1)
		}
	}
}

func lexYAML(src string) []span {
	l := &lexer{src: src}
	for l.pos < len(src) {
		lineEnd := len(src)
		if nl := strings.IndexByte(src[l.pos:], '\n'); nl >= 0 {
			lineEnd = l.pos + nl + 1
		}
		lexYAMLLine(l, lineEnd)
	}
	return l.spans
}

func lexYAMLLine(l *lexer, lineEnd int) {
	src := l.src
	l.emit(roleText, scanWhile(src, l.pos, isIndent))

	line := src[l.pos:lineEnd]
	switch {
	case strings.HasPrefix(line, "#"),
		strings.HasPrefix(line, "---"),
		strings.HasPrefix(line, "..."):
		l.emit(roleComment, lineEnd)
		return
	}
	for strings.HasPrefix(src[l.pos:lineEnd], "- ") {
		l.emit(roleText, l.pos+2)
	}
	if k := yamlKeyEnd(src[l.pos:lineEnd]); k > 0 {
		l.emit(roleKey, l.pos+k)
		l.emit(roleText, l.pos+1)
	}
	lexYAMLValue(l, lineEnd)
}

// lexYAMLValue colours the scalar after a key or list marker plus any
// trailing comment.
func lexYAMLValue(l *lexer, lineEnd int) {
	src := l.src
	l.emit(roleText, scanWhile(src, l.pos, isIndent))
	if l.pos >= lineEnd {
		return
	}
	rest := src[l.pos:lineEnd]
	if rest[0] == '#' {
		l.emit(roleComment, lineEnd)
		return
	}
	valueEnd := lineEnd
	if k := strings.Index(rest, " #"); k >= 0 && !isQuote(rest[0]) {
		valueEnd = l.pos + k
	}
	value := strings.TrimRight(src[l.pos:valueEnd], " \t\r\n")
	l.emit(yamlScalarRole(value), l.pos+len(value))
	l.emit(roleText, valueEnd)
	l.emit(roleComment, lineEnd)
}

// yamlKeyEnd returns the index of the colon ending a mapping key, or -1.
// "http://x" is not a key: the colon must be followed by a space or EOL.
func yamlKeyEnd(s string) int {
	if s == "" || s[0] == '#' {
		return -1
	}
	for i := 1; i < len(s); i++ {
		if s[i] != ':' {
			continue
		}
		if i+1 == len(s) || s[i+1] == ' ' || s[i+1] == '\n' || s[i+1] == '\r' {
			return i
		}
	}
	return -1
}

func yamlScalarRole(v string) role {
	switch v {
	case "", "|", ">", "|-", ">-", "-":
		return roleText
	case "true", "false", "null", "~", "yes", "no":
		return roleLiteral
	}
	if isQuote(v[0]) {
		return roleString
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return roleNumber
	}
	return roleString
}

// scanQuoted returns the index just past the closing quote of the JSON
// string starting at i, or len(src) when it is unterminated.
func scanQuoted(src string, i int) int {
	j := i + 1
	for j < len(src) {
		switch src[j] {
		case '\\':
			j += 2
		case '"':
			return j + 1
		default:
			j++
		}
	}
	return len(src)
}

func nextNonSpace(src string, from int) byte {
	if i := scanWhile(src, from, isSpace); i < len(src) {
		return src[i]
	}
	return 0
}

func indexAfter(src string, from int, marker string) int {
	k := strings.Index(src[from:], marker)
	if k < 0 {
		return len(src)
	}
	return from + k + len(marker)
}

func scanWhile(src string, from int, ok func(byte) bool) int {
	for from < len(src) && ok(src[from]) {
		from++
	}
	return from
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' }
func isIndent(c byte) bool { return c == ' ' || c == '\t' }
func isQuote(c byte) bool  { return c == '"' || c == '\'' }

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isNumberByte(c byte) bool {
	return isDigit(c) || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-'
}

// isNameByte accepts element and attribute name bytes, including every
// byte of a multi-byte rune.
func isNameByte(c byte) bool {
	return c >= 0x80 || isDigit(c) || (c|0x20 >= 'a' && c|0x20 <= 'z') ||
		c == '-' || c == '_' || c == ':' || c == '.'
}
