// Package format sniffs response bodies and pretty-prints them for display.
package format

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	nethtml "golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

// Kind is the detected body type
type Kind int

const (
	Plain Kind = iota
	JSON
	HTML
	XML
	YAML
)

func (k Kind) String() string {
	switch k {
	case JSON:
		return "JSON"
	case HTML:
		return "HTML"
	case XML:
		return "XML"
	case YAML:
		return "YAML"
	default:
		return "Text"
	}
}

// sniffLen bounds how far into the body the markup checks look
const sniffLen = 512

// Detect guesses the body type: JSON first, then markup, then YAML.
func Detect(body string) Kind {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return Plain
	}
	if looksLikeJSON(trimmed) {
		return JSON
	}
	if kind, ok := detectMarkup(trimmed); ok {
		return kind
	}
	if looksLikeYAML(trimmed) {
		return YAML
	}
	return Plain
}

// Pretty formats body according to Detect. On any formatter error the
// body is returned unchanged with the detected kind.
func Pretty(body string) (string, Kind) {
	kind := Detect(body)

	var (
		out string
		err error
	)
	switch kind {
	case JSON:
		out, err = prettyJSON(body)
	case HTML:
		out, err = prettyHTML(body)
	case XML:
		out, err = prettyXML(body)
	case YAML:
		out, err = prettyYAML(body)
	default:
		return body, kind
	}
	if err != nil {
		return body, kind
	}
	return out, kind
}

func looksLikeJSON(trimmed string) bool {
	first, last := trimmed[0], trimmed[len(trimmed)-1]
	if !(first == '{' && last == '}') && !(first == '[' && last == ']') {
		return false
	}
	return json.Valid([]byte(trimmed))
}

func detectMarkup(trimmed string) (Kind, bool) {
	if trimmed[0] != '<' {
		return Plain, false
	}
	head := strings.ToLower(trimmed[:min(len(trimmed), sniffLen)])
	switch {
	case strings.HasPrefix(head, "<!doctype html"), strings.Contains(head, "<html"):
		return HTML, true
	case strings.HasPrefix(head, "<?xml"):
		return XML, true
	}
	if trimmed[len(trimmed)-1] != '>' {
		return Plain, false
	}
	if wellFormedXML(trimmed) {
		return XML, true
	}
	return HTML, true
}

func wellFormedXML(s string) bool {
	decoder := xml.NewDecoder(strings.NewReader(s))
	for {
		_, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return true
		}
		if err != nil {
			return false
		}
	}
}

// looksLikeYAML accepts a "---" document or a multi-line body that parses
// into a mapping or sequence. Single lines like "Note: hi" stay plain text.
func looksLikeYAML(trimmed string) bool {
	if !strings.HasPrefix(trimmed, "---") && !strings.Contains(trimmed, "\n") {
		return false
	}
	if !strings.Contains(trimmed, ":") && !strings.Contains(trimmed, "- ") {
		return false
	}

	var doc any
	if err := yaml.Unmarshal([]byte(trimmed), &doc); err != nil {
		return false
	}
	switch doc.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}

func prettyJSON(body string) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(strings.TrimSpace(body)), "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func prettyYAML(body string) (string, error) {
	decoder := yaml.NewDecoder(strings.NewReader(body))
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	for {
		var node yaml.Node
		err := decoder.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if err := encoder.Encode(&node); err != nil {
			return "", err
		}
	}
	if err := encoder.Close(); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// prettyXML re-indents from raw tokens so namespace prefixes and xmlns
// attributes come out exactly as the server wrote them.
func prettyXML(body string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(body))
	var buf bytes.Buffer
	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")
	for {
		token, err := decoder.RawToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
		switch t := token.(type) {
		case xml.CharData:
			// whitespace between elements is replaced by the encoder's indent
			if len(bytes.TrimSpace(t)) == 0 {
				continue
			}
		case xml.StartElement:
			token = prefixedStart(t)
		case xml.EndElement:
			token = xml.EndElement{Name: prefixedName(t.Name)}
		}
		if err := encoder.EncodeToken(xml.CopyToken(token)); err != nil {
			return "", err
		}
	}
	if err := encoder.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// prefixedName folds a raw prefix back into the local name. Left in Space,
// the encoder would treat it as a namespace URI and declare it again.
func prefixedName(name xml.Name) xml.Name {
	if name.Space == "" {
		return name
	}
	return xml.Name{Local: name.Space + ":" + name.Local}
}

func prefixedStart(start xml.StartElement) xml.StartElement {
	attrs := make([]xml.Attr, len(start.Attr))
	for i, attr := range start.Attr {
		attrs[i] = xml.Attr{Name: prefixedName(attr.Name), Value: attr.Value}
	}
	return xml.StartElement{Name: prefixedName(start.Name), Attr: attrs}
}

func prettyHTML(body string) (string, error) {
	node, err := nethtml.Parse(strings.NewReader(body))
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	renderHTMLNode(&builder, node, 0)
	return strings.TrimRight(builder.String(), "\n"), nil
}

func renderHTMLNode(builder *strings.Builder, node *nethtml.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch node.Type {
	case nethtml.DocumentNode:
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			renderHTMLNode(builder, child, depth)
		}
	case nethtml.DoctypeNode:
		builder.WriteString("<!DOCTYPE " + node.Data + ">\n")
	case nethtml.ElementNode:
		builder.WriteString(indent)
		builder.WriteString("<" + node.Data)
		for _, attr := range node.Attr {
			fmt.Fprintf(builder, " %s=\"%s\"", attr.Key, html.EscapeString(attr.Val))
		}
		if isVoidElement(node.Data) {
			builder.WriteString(" />\n")
			return
		}
		builder.WriteString(">\n")
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			renderHTMLNode(builder, child, depth+1)
		}
		builder.WriteString(indent)
		builder.WriteString("</" + node.Data + ">\n")
	case nethtml.TextNode:
		text := strings.TrimSpace(node.Data)
		if text == "" {
			return
		}
		builder.WriteString(indent)
		if isRawTextParent(node.Parent) {
			builder.WriteString(text)
		} else {
			builder.WriteString(textEscaper.Replace(text))
		}
		builder.WriteString("\n")
	case nethtml.CommentNode:
		builder.WriteString(indent)
		builder.WriteString("<!--" + strings.TrimSpace(node.Data) + "-->\n")
	}
}

// textEscaper restores the entities the parser decoded so text reads as sent
var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// isRawTextParent reports elements whose text is never entity-decoded
func isRawTextParent(node *nethtml.Node) bool {
	if node == nil || node.Type != nethtml.ElementNode {
		return false
	}
	switch node.Data {
	case "script", "style":
		return true
	default:
		return false
	}
}

func isVoidElement(tag string) bool {
	switch strings.ToLower(tag) {
	case "area", "base", "br", "col", "embed", "hr", "img", "input", "keygen", "link", "meta", "param", "source", "track", "wbr":
		return true
	default:
		return false
	}
}
