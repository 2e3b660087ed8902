package model

import (
	"time"

	"github.com/shhac/interfere/internal/domain"
	"github.com/shhac/interfere/internal/httpclient"
)

// Mode says which request is authoritative for the next send.
type Mode int

const (
	ModeDraft  Mode = iota // no endpoint selected
	ModeCopy               // endpoint selected, edited copy of a stored request
	ModeStored             // endpoint selected, stored response as-is
)

func (m Mode) String() string {
	switch m {
	case ModeCopy:
		return "copy"
	case ModeStored:
		return "stored"
	default:
		return "draft"
	}
}

// Tab is the visible request editor tab
type Tab int

const (
	TabQuery Tab = iota
	TabHeaders
)

// PairKind maps the tab to the pair list it edits
func (t Tab) PairKind() domain.PairKind {
	if t == TabHeaders {
		return domain.Header
	}
	return domain.QueryParam
}

// DraftResponse is an unsaved reply to a copy request
type DraftResponse struct {
	Code       int
	Text       string
	ReceivedAt time.Time
	Request    domain.Request
}

// Flight is the single in-flight send. Target fields are fixed at send time.
type Flight struct {
	Token      string
	Mode       Mode
	EndpointID int64
	ResponseID int64
	Outgoing   httpclient.Outgoing
}

// State is everything the window renders. Only the Reducer mutates it.
type State struct {
	CanSend   bool
	Endpoints []domain.Endpoint

	SelectedEndpoint      *int64
	SelectedResponseIndex int

	// Draft is the URL bar text. In endpoint mode it mirrors the endpoint URL.
	Draft        string
	DraftMethod  domain.Method
	DraftRequest domain.Request

	CopyRequest   *domain.Request
	DraftResponse *DraftResponse

	Search    string
	Formatted *string
	Error     error
	ActiveTab Tab
	Pending   *Flight
}

// NewState returns the empty draft state
func NewState() State {
	return State{
		CanSend:     true,
		DraftMethod: domain.MethodGet,
	}
}

// Mode reports which request the next send uses
func (s *State) Mode() Mode {
	switch {
	case s.SelectedEndpoint == nil:
		return ModeDraft
	case s.CopyRequest != nil:
		return ModeCopy
	default:
		return ModeStored
	}
}

// Endpoint returns the selected endpoint, or nil
func (s *State) Endpoint() *domain.Endpoint {
	if s.SelectedEndpoint == nil {
		return nil
	}
	return s.endpointByID(*s.SelectedEndpoint)
}

func (s *State) endpointByID(id int64) *domain.Endpoint {
	for i := range s.Endpoints {
		if s.Endpoints[i].ID == id {
			return &s.Endpoints[i]
		}
	}
	return nil
}

func (s *State) endpointIndex() int {
	if s.SelectedEndpoint == nil {
		return -1
	}
	for i := range s.Endpoints {
		if s.Endpoints[i].ID == *s.SelectedEndpoint {
			return i
		}
	}
	return -1
}

// Response returns the selected stored response, or nil
func (s *State) Response() *domain.Response {
	e := s.Endpoint()
	if e == nil || s.SelectedResponseIndex < 0 || s.SelectedResponseIndex >= len(e.Responses) {
		return nil
	}
	return &e.Responses[s.SelectedResponseIndex]
}

// Method is the method of the authoritative request
func (s *State) Method() domain.Method {
	if e := s.Endpoint(); e != nil {
		return e.Method
	}
	return s.DraftMethod
}

// Request is the authoritative request: draft, copy or stored
func (s *State) Request() domain.Request {
	switch s.Mode() {
	case ModeDraft:
		return s.DraftRequest
	case ModeCopy:
		return *s.CopyRequest
	default:
		if resp := s.Response(); resp != nil {
			return resp.Request
		}
		return domain.Request{}
	}
}

// Outgoing is what Send would dispatch right now
func (s *State) Outgoing() httpclient.Outgoing {
	url := s.Draft
	if e := s.Endpoint(); e != nil {
		url = e.URL
	}
	return httpclient.Outgoing{
		Method:  s.Method(),
		URL:     url,
		Request: s.Request().Clone(),
	}
}

// DisplayedCode and DisplayedText describe the response panel: the unsaved
// preview when present, otherwise the selected stored response.
func (s *State) DisplayedCode() int {
	if s.DraftResponse != nil {
		return s.DraftResponse.Code
	}
	if resp := s.Response(); resp != nil {
		return resp.Code
	}
	return 0
}

func (s *State) DisplayedText() string {
	if s.DraftResponse != nil {
		return s.DraftResponse.Text
	}
	if resp := s.Response(); resp != nil {
		return resp.Text
	}
	return ""
}

// ErrorMessage is the banner text, empty when there is no error
func (s *State) ErrorMessage() string {
	if s.Error == nil {
		return ""
	}
	return s.Error.Error()
}

// normalize re-establishes the invariants after every event
func (s *State) normalize() {
	if s.SelectedEndpoint != nil && s.Endpoint() == nil {
		s.SelectedEndpoint = nil
	}
	if s.SelectedEndpoint == nil {
		s.CopyRequest = nil
		s.DraftResponse = nil
		s.SelectedResponseIndex = 0
	} else if e := s.Endpoint(); e != nil {
		s.SelectedResponseIndex = clamp(s.SelectedResponseIndex, 0, len(e.Responses)-1)
	}
	if s.DraftMethod == "" {
		s.DraftMethod = domain.MethodGet
	}
	s.CanSend = s.Pending == nil
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}
