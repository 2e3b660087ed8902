package model

import (
	"github.com/shhac/interfere/internal/domain"
	"github.com/shhac/interfere/internal/httpclient"
)

// Event is anything the Reducer reacts to
type Event interface {
	event()
}

// Start loads history when the window opens
type Start struct{}

// SetDraft is an edit of the URL bar
type SetDraft struct{ URL string }

// ClickMethod cycles GET and POST
type ClickMethod struct{}

// Send dispatches the authoritative request
type Send struct{}

// SendDraft dispatches the draft; ignored in endpoint mode
type SendDraft struct{}

// GotResponse delivers a completed send
type GotResponse struct {
	Token string
	Code  int
	Text  string
}

// GotError delivers a failed send
type GotError struct {
	Token string
	Err   error
}

type SaveDraftResponse struct{}
type DiscardDraftResponse struct{}

// Back steps out one level: copy, then endpoint, then error banner
type Back struct{}

// RefetchDB reloads history using the current search
type RefetchDB struct{}

type SetSelectedResponseIndex struct{ Index int }
type DecrementSelectedResponseIndex struct{}
type IncrementSelectedResponseIndex struct{}
type DecrementSelectedEndpoint struct{}
type IncrementSelectedEndpoint struct{}

type ClickEndpoint struct{ ID int64 }
type ClickDeleteEndpoint struct{ ID int64 }
type ClickDeleteResponse struct{ ID int64 }

// Duplicate starts a new draft from the selected request at URL
type Duplicate struct{ URL string }

type SetSearch struct{ Query string }

// FormatResponse toggles the pretty-printed view
type FormatResponse struct{}

type SetTab struct{ Tab Tab }
type ClearErrorMessage struct{}

// FocusTarget names a focusable input
type FocusTarget int

const (
	FocusURL FocusTarget = iota
	FocusSearch
)

type Focus struct{ Target FocusTarget }

// PairOp is an edit applied to a query parameter or header list
type PairOp int

const (
	PairAdd PairOp = iota
	PairSetKey
	PairSetValue
	PairDelete
	PairToggle
)

// Pair edits one key-value row. Text is the new key or value; ID is ignored for PairAdd.
type Pair struct {
	Kind domain.PairKind
	Op   PairOp
	ID   int64
	Text string
}

func (Start) event()                          {}
func (SetDraft) event()                       {}
func (ClickMethod) event()                    {}
func (Send) event()                           {}
func (SendDraft) event()                      {}
func (GotResponse) event()                    {}
func (GotError) event()                       {}
func (SaveDraftResponse) event()              {}
func (DiscardDraftResponse) event()           {}
func (Back) event()                           {}
func (RefetchDB) event()                      {}
func (SetSelectedResponseIndex) event()       {}
func (DecrementSelectedResponseIndex) event() {}
func (IncrementSelectedResponseIndex) event() {}
func (DecrementSelectedEndpoint) event()      {}
func (IncrementSelectedEndpoint) event()      {}
func (ClickEndpoint) event()                  {}
func (ClickDeleteEndpoint) event()            {}
func (ClickDeleteResponse) event()            {}
func (Duplicate) event()                      {}
func (SetSearch) event()                      {}
func (FormatResponse) event()                 {}
func (SetTab) event()                         {}
func (ClearErrorMessage) event()              {}
func (Focus) event()                          {}
func (Pair) event()                           {}

// Cmd is a side effect the Reducer asks the loop to perform
type Cmd interface {
	cmd()
}

// SendCmd asks for Outgoing to be sent; the result must come back as
// GotResponse or GotError carrying Token.
type SendCmd struct {
	Token    string
	Outgoing httpclient.Outgoing
}

// FocusCmd asks the window to focus an input
type FocusCmd struct {
	Target FocusTarget
}

func (SendCmd) cmd()  {}
func (FocusCmd) cmd() {}
