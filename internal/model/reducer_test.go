package model

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shhac/interfere/internal/domain"
	"github.com/shhac/interfere/internal/logging"
	"github.com/shhac/interfere/internal/storage"
)

type harness struct {
	t    *testing.T
	ctx  context.Context
	repo *storage.MemoryRepository
	r    *Reducer
	s    State
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	repo := storage.NewMemoryRepository()
	r := NewReducer(repo, logging.NewNopLogger())

	n := 0
	r.newToken = func() string {
		n++
		return fmt.Sprintf("token-%d", n)
	}
	clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	return &harness{t: t, ctx: context.Background(), repo: repo, r: r, s: NewState()}
}

// do applies ev and checks the invariants that must hold after every event
func (h *harness) do(ev Event) Cmd {
	h.t.Helper()
	cmd := h.r.Update(h.ctx, &h.s, ev)

	if h.s.SelectedEndpoint == nil {
		assert.Nil(h.t, h.s.CopyRequest, "copy request without endpoint after %T", ev)
		assert.Nil(h.t, h.s.DraftResponse, "draft response without endpoint after %T", ev)
	} else {
		assert.NotNil(h.t, h.s.Endpoint(), "selected endpoint missing from list after %T", ev)
	}
	assert.Equal(h.t, h.s.Pending == nil, h.s.CanSend, "CanSend out of sync after %T", ev)
	return cmd
}

// send issues Send and returns the SendCmd
func (h *harness) send() SendCmd {
	h.t.Helper()
	cmd := h.do(Send{})
	require.IsType(h.t, SendCmd{}, cmd)
	return cmd.(SendCmd)
}

// roundTrip sends and completes with the given reply
func (h *harness) roundTrip(code int, text string) SendCmd {
	h.t.Helper()
	cmd := h.send()
	h.do(GotResponse{Token: cmd.Token, Code: code, Text: text})
	return cmd
}

func (h *harness) stored() []domain.Endpoint {
	h.t.Helper()
	endpoints, err := h.repo.LoadEndpoints(h.ctx, "")
	require.NoError(h.t, err)
	return endpoints
}

func (h *harness) seed(url string, texts ...string) int64 {
	h.t.Helper()
	e := domain.Endpoint{URL: url, Method: domain.MethodGet}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, text := range texts {
		e.Responses = append(e.Responses, domain.Response{
			Text:       text,
			Code:       200,
			ReceivedAt: base.Add(time.Duration(i) * time.Minute),
			Request: domain.Request{
				QueryParams: []domain.KeyValue{{Key: "n", Value: fmt.Sprint(i), On: true}},
			},
		})
	}
	id, err := h.repo.CreateEndpointFull(h.ctx, e)
	require.NoError(h.t, err)
	return id
}

func TestDraftSendCreatesEndpoint(t *testing.T) {
	h := newHarness(t)
	h.do(Start{})
	assert.Equal(t, ModeDraft, h.s.Mode())

	h.do(SetDraft{URL: "https://example.com/users"})
	h.do(ClickMethod{})
	h.do(Pair{Kind: domain.QueryParam, Op: PairAdd})
	h.do(Pair{Kind: domain.QueryParam, Op: PairSetKey, ID: 1, Text: "page"})
	h.do(Pair{Kind: domain.QueryParam, Op: PairSetValue, ID: 1, Text: "2"})
	h.do(Pair{Kind: domain.Header, Op: PairAdd, Text: "Accept"})

	cmd := h.send()
	assert.Equal(t, "token-1", cmd.Token)
	assert.Equal(t, domain.MethodPost, cmd.Outgoing.Method)
	assert.Equal(t, "https://example.com/users", cmd.Outgoing.URL)
	assert.Equal(t, "page=2", cmd.Outgoing.Request.EncodedQuery())
	assert.Equal(t, "Accept", cmd.Outgoing.Request.Headers[0].Key)
	assert.False(t, h.s.CanSend)

	h.do(GotResponse{Token: cmd.Token, Code: 201, Text: "created"})

	require.NotNil(t, h.s.SelectedEndpoint)
	assert.Equal(t, ModeStored, h.s.Mode())
	assert.True(t, h.s.CanSend)
	assert.Equal(t, "https://example.com/users", h.s.Draft)
	assert.Empty(t, h.s.DraftRequest.QueryParams)
	assert.Equal(t, 0, h.s.SelectedResponseIndex)
	assert.Equal(t, 201, h.s.DisplayedCode())
	assert.Equal(t, "created", h.s.DisplayedText())

	stored := h.stored()
	require.Len(t, stored, 1)
	assert.Equal(t, domain.MethodPost, stored[0].Method)
	require.Len(t, stored[0].Responses, 1)
	assert.Equal(t, "page", stored[0].Responses[0].Request.QueryParams[0].Key)
}

func TestDraftSendAppendsToMatchingEndpoint(t *testing.T) {
	h := newHarness(t)
	h.do(Start{})

	h.do(SetDraft{URL: "https://example.com"})
	h.roundTrip(200, "first")
	h.do(Back{})
	require.Equal(t, ModeDraft, h.s.Mode())

	h.do(SetDraft{URL: "https://example.com"})
	h.roundTrip(500, "second")

	stored := h.stored()
	require.Len(t, stored, 1)
	require.Len(t, stored[0].Responses, 2)
	assert.Equal(t, "second", h.s.DisplayedText(), "newest response is selected")

	// a different method is a different endpoint
	h.do(Back{})
	h.do(SetDraft{URL: "https://example.com"})
	h.do(ClickMethod{})
	h.roundTrip(200, "post")
	assert.Len(t, h.stored(), 2)
}

func TestSendIgnoredWhilePendingOrWithoutURL(t *testing.T) {
	h := newHarness(t)
	h.do(Start{})

	assert.Nil(t, h.do(Send{}), "empty URL")
	h.do(SetDraft{URL: "   "})
	assert.Nil(t, h.do(SendDraft{}), "blank URL")

	h.do(SetDraft{URL: "https://example.com"})
	h.send()
	assert.Nil(t, h.do(Send{}), "already pending")
}

func TestStaleCompletionsAreIgnored(t *testing.T) {
	h := newHarness(t)
	h.do(Start{})
	h.do(SetDraft{URL: "https://example.com"})
	h.send()

	before := h.s
	h.do(GotResponse{Token: "someone-else", Code: 200, Text: "late"})
	h.do(GotError{Token: "", Err: assert.AnError})
	assert.Equal(t, before, h.s)
	assert.Empty(t, h.stored())
}

func TestNavigationAbandonsFlight(t *testing.T) {
	h := newHarness(t)
	a := h.seed("https://a.example.com", "a0")
	h.seed("https://b.example.com", "b0")
	h.do(Start{})
	h.do(ClickEndpoint{ID: a})

	cmd := h.send()
	h.do(DecrementSelectedEndpoint{})
	require.NotEqual(t, a, *h.s.SelectedEndpoint)
	assert.Nil(t, h.s.Pending)
	assert.True(t, h.s.CanSend)

	h.do(GotResponse{Token: cmd.Token, Code: 418, Text: "teapot"})
	for _, e := range h.stored() {
		assert.NotEqual(t, "teapot", e.Responses[0].Text)
	}
}

func TestGotError(t *testing.T) {
	h := newHarness(t)
	h.do(Start{})
	h.do(SetDraft{URL: "https://example.com"})
	cmd := h.send()

	h.do(GotError{Token: cmd.Token, Err: assert.AnError})
	assert.ErrorIs(t, h.s.Error, assert.AnError)
	assert.Equal(t, assert.AnError.Error(), h.s.ErrorMessage())
	assert.True(t, h.s.CanSend)
	assert.Equal(t, ModeDraft, h.s.Mode())

	h.do(ClearErrorMessage{})
	assert.Empty(t, h.s.ErrorMessage())
}

func TestResendStoredResponseUpdatesInPlace(t *testing.T) {
	h := newHarness(t)
	id := h.seed("https://example.com", "old", "newer")
	h.do(Start{})
	h.do(ClickEndpoint{ID: id})
	h.do(IncrementSelectedResponseIndex{})
	require.Equal(t, "old", h.s.DisplayedText())
	target := h.s.Response().ID

	cmd := h.send()
	assert.Equal(t, "n=0", cmd.Outgoing.Request.EncodedQuery())
	h.do(GotResponse{Token: cmd.Token, Code: 503, Text: "refreshed"})

	stored := h.stored()
	require.Len(t, stored[0].Responses, 2)
	assert.Equal(t, target, h.s.Response().ID, "selection follows the updated response")
	assert.Equal(t, "refreshed", h.s.DisplayedText())
	assert.Equal(t, 503, h.s.DisplayedCode())
}

func TestPairEditForksCopyRequest(t *testing.T) {
	h := newHarness(t)
	id := h.seed("https://example.com", "stored")
	h.do(Start{})
	h.do(ClickEndpoint{ID: id})
	pairID := h.s.Response().Request.QueryParams[0].ID

	h.do(Pair{Kind: domain.QueryParam, Op: PairSetValue, ID: pairID, Text: "99"})
	require.Equal(t, ModeCopy, h.s.Mode())
	assert.Equal(t, "99", h.s.CopyRequest.QueryParams[0].Value)
	assert.Equal(t, "0", h.s.Response().Request.QueryParams[0].Value, "stored response untouched")

	h.do(Pair{Kind: domain.QueryParam, Op: PairToggle, ID: pairID})
	h.do(Pair{Kind: domain.Header, Op: PairAdd, Text: "X-Trace"})
	assert.Len(t, h.s.CopyRequest.Headers, 1)

	cmd := h.send()
	assert.Empty(t, cmd.Outgoing.Request.EncodedQuery(), "toggled off")
	h.do(GotResponse{Token: cmd.Token, Code: 200, Text: "preview"})

	require.NotNil(t, h.s.DraftResponse)
	assert.Equal(t, "preview", h.s.DisplayedText())
	assert.Len(t, h.stored()[0].Responses, 1, "preview is not persisted")

	h.do(SaveDraftResponse{})
	assert.Nil(t, h.s.CopyRequest)
	assert.Nil(t, h.s.DraftResponse)
	assert.Equal(t, ModeStored, h.s.Mode())

	stored := h.stored()
	require.Len(t, stored[0].Responses, 2)
	saved := h.s.Response()
	assert.Equal(t, "preview", saved.Text)
	assert.False(t, saved.Request.QueryParams[0].On)
	assert.Equal(t, "X-Trace", saved.Request.Headers[0].Key)
	assert.Equal(t, "stored", stored[0].Responses[1].Text)
}

func TestPairEditUnknownIDDoesNotFork(t *testing.T) {
	h := newHarness(t)
	id := h.seed("https://example.com", "stored")
	h.do(Start{})
	h.do(ClickEndpoint{ID: id})

	h.do(Pair{Kind: domain.Header, Op: PairDelete, ID: 12345})
	assert.Equal(t, ModeStored, h.s.Mode())
}

func TestDiscardDraftResponseKeepsCopy(t *testing.T) {
	h := newHarness(t)
	id := h.seed("https://example.com", "stored")
	h.do(Start{})
	h.do(ClickEndpoint{ID: id})
	h.do(Pair{Kind: domain.QueryParam, Op: PairAdd, Text: "extra"})
	h.roundTrip(200, "preview")
	require.NotNil(t, h.s.DraftResponse)

	h.do(DiscardDraftResponse{})
	assert.Nil(t, h.s.DraftResponse)
	assert.Equal(t, ModeCopy, h.s.Mode())
	assert.Equal(t, "stored", h.s.DisplayedText())
}

func TestBackSteps(t *testing.T) {
	h := newHarness(t)
	id := h.seed("https://example.com", "stored")
	h.do(Start{})
	h.do(ClickEndpoint{ID: id})
	h.do(Pair{Kind: domain.QueryParam, Op: PairAdd})
	require.Equal(t, ModeCopy, h.s.Mode())

	h.do(Back{})
	assert.Equal(t, ModeStored, h.s.Mode())

	h.do(Back{})
	assert.Equal(t, ModeDraft, h.s.Mode())
	assert.Empty(t, h.s.Draft)
	assert.Empty(t, h.s.DraftRequest.QueryParams)

	h.s.Error = assert.AnError
	h.do(Back{})
	assert.Nil(t, h.s.Error)
}

func TestRefetchIsIdempotent(t *testing.T) {
	h := newHarness(t)
	id := h.seed("https://example.com", "a", "b", "c")
	h.seed("https://other.example.com", "x")
	h.do(Start{})
	h.do(ClickEndpoint{ID: id})
	h.do(SetSelectedResponseIndex{Index: 2})

	before := h.s
	h.do(RefetchDB{})
	assert.Equal(t, before, h.s)
	h.do(RefetchDB{})
	assert.Equal(t, before, h.s)
}

func TestSearchFiltersAndDeselects(t *testing.T) {
	h := newHarness(t)
	a := h.seed("https://alpha.example.com", "a")
	h.seed("https://beta.example.com", "b")
	h.do(Start{})
	h.do(ClickEndpoint{ID: a})

	h.do(SetSearch{Query: "ALPHA"})
	require.Len(t, h.s.Endpoints, 1)
	assert.Equal(t, ModeStored, h.s.Mode())

	h.do(SetSearch{Query: "beta"})
	require.Len(t, h.s.Endpoints, 1)
	assert.Equal(t, ModeDraft, h.s.Mode())
	assert.Empty(t, h.s.Draft)

	h.do(SetSearch{Query: ""})
	assert.Len(t, h.s.Endpoints, 2)
}

func TestResponseIndexNavigation(t *testing.T) {
	h := newHarness(t)
	id := h.seed("https://example.com", "a", "b", "c")
	h.do(Start{})

	h.do(IncrementSelectedResponseIndex{})
	assert.Equal(t, 0, h.s.SelectedResponseIndex, "no endpoint selected")

	h.do(ClickEndpoint{ID: id})
	assert.Equal(t, "c", h.s.DisplayedText())

	h.do(IncrementSelectedResponseIndex{})
	h.do(IncrementSelectedResponseIndex{})
	h.do(IncrementSelectedResponseIndex{})
	assert.Equal(t, 2, h.s.SelectedResponseIndex)
	assert.Equal(t, "a", h.s.DisplayedText())

	h.do(SetSelectedResponseIndex{Index: -5})
	assert.Equal(t, 0, h.s.SelectedResponseIndex)

	h.do(Pair{Kind: domain.QueryParam, Op: PairAdd})
	h.do(IncrementSelectedResponseIndex{})
	assert.Nil(t, h.s.CopyRequest, "changing response drops the copy")

	h.do(DecrementSelectedResponseIndex{})
	assert.Equal(t, 0, h.s.SelectedResponseIndex)
}

func TestEndpointNavigation(t *testing.T) {
	h := newHarness(t)
	first := h.seed("https://first.example.com", "1")
	second := h.seed("https://second.example.com", "2")
	h.do(Start{})

	// newest endpoint is listed first
	require.Equal(t, second, h.s.Endpoints[0].ID)

	h.do(IncrementSelectedEndpoint{})
	assert.Equal(t, second, *h.s.SelectedEndpoint)
	assert.Equal(t, "https://second.example.com", h.s.Draft)

	h.do(IncrementSelectedEndpoint{})
	assert.Equal(t, first, *h.s.SelectedEndpoint)
	h.do(IncrementSelectedEndpoint{})
	assert.Equal(t, first, *h.s.SelectedEndpoint, "clamped at the end")

	h.do(DecrementSelectedEndpoint{})
	assert.Equal(t, second, *h.s.SelectedEndpoint)

	h.do(Back{})
	h.do(DecrementSelectedEndpoint{})
	assert.Equal(t, first, *h.s.SelectedEndpoint, "decrement from none selects the last")
}

func TestDeleteLastResponseDeletesEndpoint(t *testing.T) {
	h := newHarness(t)
	id := h.seed("https://example.com", "a", "b")
	h.do(Start{})
	h.do(ClickEndpoint{ID: id})

	h.do(ClickDeleteResponse{ID: h.s.Response().ID})
	require.Len(t, h.s.Endpoints, 1)
	assert.Equal(t, ModeStored, h.s.Mode())
	assert.Equal(t, "a", h.s.DisplayedText())

	h.do(ClickDeleteResponse{ID: h.s.Response().ID})
	assert.Empty(t, h.s.Endpoints)
	assert.Empty(t, h.stored())
	assert.Equal(t, ModeDraft, h.s.Mode())
}

func TestDeleteNewerResponseKeepsSelection(t *testing.T) {
	h := newHarness(t)
	id := h.seed("https://example.com", "oldest", "middle", "newest")
	h.do(Start{})
	h.do(ClickEndpoint{ID: id})
	h.do(SetSelectedResponseIndex{Index: 1})
	require.Equal(t, "middle", h.s.DisplayedText())

	h.do(Pair{Kind: domain.QueryParam, Op: PairAdd})
	require.NotNil(t, h.s.CopyRequest)

	newest := h.s.Endpoint().Responses[0].ID
	h.do(ClickDeleteResponse{ID: newest})

	require.Len(t, h.s.Endpoint().Responses, 2)
	assert.Equal(t, 0, h.s.SelectedResponseIndex)
	assert.Equal(t, "middle", h.s.Response().Text)
	assert.NotNil(t, h.s.CopyRequest, "copy request stays on the response it was forked from")
}

func TestDeleteSelectedEndpoint(t *testing.T) {
	h := newHarness(t)
	id := h.seed("https://example.com", "a")
	keep := h.seed("https://keep.example.com", "k")
	h.do(Start{})
	h.do(ClickEndpoint{ID: id})

	h.do(ClickDeleteEndpoint{ID: id})
	assert.Equal(t, ModeDraft, h.s.Mode())
	require.Len(t, h.s.Endpoints, 1)
	assert.Equal(t, keep, h.s.Endpoints[0].ID)
}

func TestDuplicate(t *testing.T) {
	h := newHarness(t)
	id := h.seed("https://example.com", "a")
	h.do(Start{})
	h.do(ClickEndpoint{ID: id})
	h.do(ClickMethod{})
	h.do(Pair{Kind: domain.Header, Op: PairAdd, Text: "X-Copy"})

	h.do(Duplicate{URL: "https://example.com/v2"})
	assert.Equal(t, ModeDraft, h.s.Mode())
	assert.Equal(t, "https://example.com/v2", h.s.Draft)
	assert.Equal(t, domain.MethodPost, h.s.DraftMethod)
	require.Len(t, h.s.DraftRequest.QueryParams, 1)
	assert.Equal(t, domain.KeyValue{ID: 1, Key: "n", Value: "0", On: true}, h.s.DraftRequest.QueryParams[0])
	require.Len(t, h.s.DraftRequest.Headers, 1)
	assert.Equal(t, int64(1), h.s.DraftRequest.Headers[0].ID)
}

func TestEndpointEditsPersist(t *testing.T) {
	h := newHarness(t)
	id := h.seed("https://example.com", "a")
	h.do(Start{})
	h.do(ClickEndpoint{ID: id})

	h.do(SetDraft{URL: "https://example.com/renamed"})
	h.do(ClickMethod{})

	stored := h.stored()
	assert.Equal(t, "https://example.com/renamed", stored[0].URL)
	assert.Equal(t, domain.MethodPost, stored[0].Method)
	assert.Equal(t, domain.MethodGet, h.s.DraftMethod, "draft method untouched in endpoint mode")
}

func TestFormatResponseToggle(t *testing.T) {
	h := newHarness(t)
	h.do(FormatResponse{})
	assert.Nil(t, h.s.Formatted, "nothing to format")

	id := h.seed("https://example.com", `{"a":1}`)
	h.do(Start{})
	h.do(ClickEndpoint{ID: id})

	h.do(FormatResponse{})
	require.NotNil(t, h.s.Formatted)
	assert.Equal(t, "{\n  \"a\": 1\n}", *h.s.Formatted)

	h.do(FormatResponse{})
	assert.Nil(t, h.s.Formatted)
}

func TestWriteFailureSetsBanner(t *testing.T) {
	h := newHarness(t)
	h.do(Start{})
	h.do(SetDraft{URL: "https://example.com"})
	cmd := h.send()

	h.repo.Fail = assert.AnError
	h.do(GotResponse{Token: cmd.Token, Code: 200, Text: "ok"})
	assert.ErrorIs(t, h.s.Error, assert.AnError)
	assert.Equal(t, ModeDraft, h.s.Mode())
	assert.True(t, h.s.CanSend)
	assert.Equal(t, "https://example.com", h.s.Draft, "draft kept for retry")
}

func TestFocusAndTab(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, FocusCmd{Target: FocusSearch}, h.do(Focus{Target: FocusSearch}))

	h.do(SetTab{Tab: TabHeaders})
	assert.Equal(t, TabHeaders, h.s.ActiveTab)
	assert.Equal(t, domain.Header, h.s.ActiveTab.PairKind())
}

func TestDraftPairOps(t *testing.T) {
	h := newHarness(t)
	h.do(Pair{Kind: domain.QueryParam, Op: PairAdd, Text: "a"})
	h.do(Pair{Kind: domain.QueryParam, Op: PairAdd, Text: "b"})
	h.do(Pair{Kind: domain.QueryParam, Op: PairDelete, ID: 1})
	h.do(Pair{Kind: domain.QueryParam, Op: PairAdd, Text: "c"})

	pairs := h.s.DraftRequest.QueryParams
	require.Len(t, pairs, 2)
	assert.Equal(t, int64(2), pairs[0].ID)
	assert.Equal(t, int64(3), pairs[1].ID, "new IDs are max+1")
	assert.True(t, pairs[1].On)

	h.do(Pair{Kind: domain.QueryParam, Op: PairToggle, ID: 3})
	assert.False(t, h.s.DraftRequest.QueryParams[1].On)
}
