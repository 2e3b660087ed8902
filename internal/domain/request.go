package domain

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Method is the HTTP method used for an endpoint
type Method string

const (
	MethodGet  Method = http.MethodGet
	MethodPost Method = http.MethodPost
)

// ParseMethod converts a stored or user supplied method name into a Method
func ParseMethod(s string) (Method, error) {
	switch s {
	case "GET":
		return MethodGet, nil
	case "POST":
		return MethodPost, nil
	default:
		return "", fmt.Errorf("unsupported method %q", s)
	}
}

// Next cycles GET -> POST -> GET
func (m Method) Next() Method {
	if m == MethodPost {
		return MethodGet
	}
	return MethodPost
}

func (m Method) String() string {
	if m == "" {
		return string(MethodGet)
	}
	return string(m)
}

// PairKind selects which key-value list an operation applies to
type PairKind int

const (
	QueryParam PairKind = iota
	Header
)

func (k PairKind) String() string {
	if k == Header {
		return "header"
	}
	return "query_param"
}

// KeyValue is a query parameter or header. Disabled pairs are kept but never sent.
type KeyValue struct {
	ID               int64
	ParentResponseID int64
	Key              string
	Value            string
	On               bool
}

// Request holds the pairs used (or to be used) for a send
type Request struct {
	QueryParams []KeyValue
	Headers     []KeyValue
}

// Pairs returns the list for the given kind
func (r *Request) Pairs(kind PairKind) []KeyValue {
	if kind == Header {
		return r.Headers
	}
	return r.QueryParams
}

// SetPairs replaces the list for the given kind
func (r *Request) SetPairs(kind PairKind, pairs []KeyValue) {
	if kind == Header {
		r.Headers = pairs
		return
	}
	r.QueryParams = pairs
}

// Clone returns a deep copy so edits never leak into the source
func (r Request) Clone() Request {
	out := Request{}
	if r.QueryParams != nil {
		out.QueryParams = append([]KeyValue(nil), r.QueryParams...)
	}
	if r.Headers != nil {
		out.Headers = append([]KeyValue(nil), r.Headers...)
	}
	return out
}

// EncodedQuery returns the enabled query parameters with a non-empty key,
// URL-encoded in list order.
func (r Request) EncodedQuery() string {
	var b strings.Builder
	for _, p := range r.QueryParams {
		if !p.On || p.Key == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// EnabledHeaders returns the enabled headers with a non-empty key
func (r Request) EnabledHeaders() http.Header {
	header := http.Header{}
	for _, p := range r.Headers {
		if !p.On || p.Key == "" {
			continue
		}
		header.Add(p.Key, p.Value)
	}
	return header
}
