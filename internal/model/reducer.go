package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shhac/interfere/internal/domain"
	"github.com/shhac/interfere/internal/format"
	"github.com/shhac/interfere/internal/storage"
)

// Reducer maps events to state changes, storage writes and commands.
// It is not safe for concurrent use; the UI loop calls it from one goroutine.
type Reducer struct {
	repo   storage.Repository
	logger *slog.Logger

	newToken func() string
	now      func() time.Time
}

// NewReducer creates a Reducer backed by repo
func NewReducer(repo storage.Repository, logger *slog.Logger) *Reducer {
	return &Reducer{
		repo:     repo,
		logger:   logger,
		newToken: uuid.NewString,
		now:      time.Now,
	}
}

// Update applies ev to s and returns the command to run, if any.
// Storage failures abort the event and set s.Error.
func (r *Reducer) Update(ctx context.Context, s *State, ev Event) Cmd {
	cmd := r.update(ctx, s, ev)
	s.normalize()
	return cmd
}

func (r *Reducer) update(ctx context.Context, s *State, ev Event) Cmd {
	switch ev := ev.(type) {
	case Start, RefetchDB:
		r.refetch(ctx, s)

	case SetDraft:
		r.setDraft(ctx, s, ev.URL)

	case ClickMethod:
		r.clickMethod(ctx, s)

	case Send:
		// without an endpoint this is SendDraft
		return r.startSend(s)

	case SendDraft:
		if s.SelectedEndpoint != nil {
			return nil
		}
		return r.startSend(s)

	case GotResponse:
		r.gotResponse(ctx, s, ev)

	case GotError:
		if !r.isCurrent(s, ev.Token) {
			return nil
		}
		s.Pending = nil
		s.Error = ev.Err
		r.logger.Info("send failed", slog.Any("error", ev.Err))

	case SaveDraftResponse:
		r.saveDraftResponse(ctx, s)

	case DiscardDraftResponse:
		s.DraftResponse = nil
		s.Formatted = nil

	case Back:
		r.back(s)

	case SetSelectedResponseIndex:
		r.selectResponse(s, ev.Index)
	case DecrementSelectedResponseIndex:
		r.selectResponse(s, s.SelectedResponseIndex-1)
	case IncrementSelectedResponseIndex:
		r.selectResponse(s, s.SelectedResponseIndex+1)

	case DecrementSelectedEndpoint:
		r.stepEndpoint(s, -1)
	case IncrementSelectedEndpoint:
		r.stepEndpoint(s, 1)

	case ClickEndpoint:
		if s.endpointByID(ev.ID) == nil {
			return nil
		}
		if s.SelectedEndpoint != nil && *s.SelectedEndpoint == ev.ID {
			return nil
		}
		r.selectEndpoint(s, ev.ID)

	case ClickDeleteEndpoint:
		r.deleteEndpoint(ctx, s, ev.ID)

	case ClickDeleteResponse:
		r.deleteResponse(ctx, s, ev.ID)

	case Duplicate:
		r.duplicate(s, ev.URL)

	case SetSearch:
		s.Search = ev.Query
		r.refetch(ctx, s)

	case FormatResponse:
		if s.Formatted != nil {
			s.Formatted = nil
			return nil
		}
		text := s.DisplayedText()
		if text == "" {
			return nil
		}
		pretty, kind := format.Pretty(text)
		s.Formatted = &pretty
		r.logger.Debug("formatted response", slog.String("kind", kind.String()))

	case SetTab:
		s.ActiveTab = ev.Tab

	case ClearErrorMessage:
		s.Error = nil

	case Focus:
		return FocusCmd{Target: ev.Target}

	case Pair:
		r.editPair(s, ev)

	default:
		r.logger.Warn("unhandled event", slog.String("type", fmt.Sprintf("%T", ev)))
	}
	return nil
}

func (r *Reducer) fail(s *State, action string, err error) {
	r.logger.Error("action failed", slog.String("action", action), slog.Any("error", err))
	s.Error = fmt.Errorf("%s: %w", action, err)
}

// refetch reloads history. A selected endpoint that no longer matches is
// dropped back to an empty draft.
func (r *Reducer) refetch(ctx context.Context, s *State) {
	endpoints, err := r.repo.LoadEndpoints(ctx, s.Search)
	if err != nil {
		r.fail(s, "load history", err)
		return
	}
	s.Endpoints = endpoints

	if s.SelectedEndpoint == nil {
		return
	}
	e := s.Endpoint()
	if e == nil {
		r.clearSelection(s)
		return
	}
	s.Draft = e.URL
	s.SelectedResponseIndex = clamp(s.SelectedResponseIndex, 0, len(e.Responses)-1)
}

func (r *Reducer) setDraft(ctx context.Context, s *State, url string) {
	s.Draft = url
	e := s.Endpoint()
	if e == nil {
		return
	}
	if e.URL == url {
		return
	}
	if err := r.repo.UpdateEndpointURL(ctx, e.ID, url); err != nil {
		r.fail(s, "update endpoint URL", err)
		return
	}
	r.refetch(ctx, s)
}

func (r *Reducer) clickMethod(ctx context.Context, s *State) {
	e := s.Endpoint()
	if e == nil {
		s.DraftMethod = s.DraftMethod.Next()
		return
	}
	if err := r.repo.UpdateEndpointMethod(ctx, e.ID, e.Method.Next()); err != nil {
		r.fail(s, "update endpoint method", err)
		return
	}
	r.refetch(ctx, s)
}

func (r *Reducer) startSend(s *State) Cmd {
	if s.Pending != nil {
		return nil
	}
	out := s.Outgoing()
	if strings.TrimSpace(out.URL) == "" {
		return nil
	}

	flight := &Flight{
		Token:    r.newToken(),
		Mode:     s.Mode(),
		Outgoing: out,
	}
	if e := s.Endpoint(); e != nil {
		flight.EndpointID = e.ID
	}
	if flight.Mode == ModeStored {
		if resp := s.Response(); resp != nil {
			flight.ResponseID = resp.ID
		}
	}

	s.Pending = flight
	s.Error = nil
	r.logger.Debug("send started",
		slog.String("token", flight.Token),
		slog.String("mode", flight.Mode.String()),
		slog.String("method", out.Method.String()),
		slog.String("url", out.URL))
	return SendCmd{Token: flight.Token, Outgoing: out}
}

func (r *Reducer) isCurrent(s *State, token string) bool {
	if s.Pending == nil || token == "" || s.Pending.Token != token {
		r.logger.Debug("ignoring stale completion", slog.String("token", token))
		return false
	}
	return true
}

func (r *Reducer) gotResponse(ctx context.Context, s *State, ev GotResponse) {
	if !r.isCurrent(s, ev.Token) {
		return
	}
	flight := s.Pending
	s.Pending = nil
	s.Formatted = nil
	received := r.now()

	switch flight.Mode {
	case ModeDraft:
		r.persistDraft(ctx, s, flight, ev, received)

	case ModeCopy:
		s.DraftResponse = &DraftResponse{
			Code:       ev.Code,
			Text:       ev.Text,
			ReceivedAt: received,
			Request:    flight.Outgoing.Request.Clone(),
		}

	case ModeStored:
		id := flight.ResponseID
		if id == 0 {
			// bare endpoint with no stored responses yet
			var err error
			id, err = r.repo.CreateResponse(ctx, flight.EndpointID, domain.Response{
				Request:    flight.Outgoing.Request.Clone(),
				Text:       ev.Text,
				Code:       ev.Code,
				ReceivedAt: received,
			})
			if err != nil {
				r.fail(s, "save response", err)
				return
			}
		} else if err := r.repo.UpdateResponse(ctx, id, ev.Text, ev.Code, received); err != nil {
			r.fail(s, "update response", err)
			return
		}
		r.refetch(ctx, s)
		r.selectResponseByID(s, id)
	}
}

// persistDraft stores a draft reply, appending to an existing endpoint with
// the same URL and method, then switches to that endpoint.
func (r *Reducer) persistDraft(ctx context.Context, s *State, flight *Flight, ev GotResponse, received time.Time) {
	out := flight.Outgoing
	resp := domain.Response{
		Request:    out.Request.Clone(),
		Text:       ev.Text,
		Code:       ev.Code,
		ReceivedAt: received,
	}

	var endpointID int64
	existing, err := r.repo.FindEndpoint(ctx, out.URL, out.Method)
	switch {
	case err == nil:
		endpointID = existing.ID
		if _, err := r.repo.CreateResponse(ctx, endpointID, resp); err != nil {
			r.fail(s, "save response", err)
			return
		}
	case errors.Is(err, storage.ErrNotFound):
		endpointID, err = r.repo.CreateEndpointFull(ctx, domain.Endpoint{
			URL:       out.URL,
			Method:    out.Method,
			Responses: []domain.Response{resp},
		})
		if err != nil {
			r.fail(s, "save endpoint", err)
			return
		}
	default:
		r.fail(s, "find endpoint", err)
		return
	}

	if s.Search != "" && !strings.Contains(strings.ToLower(out.URL), strings.ToLower(s.Search)) {
		s.Search = ""
	}
	s.SelectedEndpoint = &endpointID
	s.SelectedResponseIndex = 0
	s.DraftRequest = domain.Request{}
	s.DraftMethod = domain.MethodGet
	s.CopyRequest = nil
	s.DraftResponse = nil
	r.refetch(ctx, s)

	r.logger.Info("saved response",
		slog.Int64("endpoint", endpointID),
		slog.Int("code", ev.Code))
}

func (r *Reducer) saveDraftResponse(ctx context.Context, s *State) {
	e := s.Endpoint()
	if e == nil || s.DraftResponse == nil {
		return
	}
	dr := s.DraftResponse
	id, err := r.repo.CreateResponse(ctx, e.ID, domain.Response{
		Request:    dr.Request.Clone(),
		Text:       dr.Text,
		Code:       dr.Code,
		ReceivedAt: dr.ReceivedAt,
	})
	if err != nil {
		r.fail(s, "save response", err)
		return
	}

	s.CopyRequest = nil
	s.DraftResponse = nil
	s.Formatted = nil
	r.refetch(ctx, s)
	r.selectResponseByID(s, id)
}

func (r *Reducer) back(s *State) {
	switch {
	case s.CopyRequest != nil || s.DraftResponse != nil:
		if s.Pending != nil && s.Pending.Mode == ModeCopy {
			s.Pending = nil
		}
		s.CopyRequest = nil
		s.DraftResponse = nil
		s.Formatted = nil
	case s.SelectedEndpoint != nil:
		r.clearSelection(s)
	default:
		s.Error = nil
	}
}

// clearSelection leaves endpoint mode into an empty draft
func (r *Reducer) clearSelection(s *State) {
	s.SelectedEndpoint = nil
	s.SelectedResponseIndex = 0
	s.CopyRequest = nil
	s.DraftResponse = nil
	s.Formatted = nil
	s.Draft = ""
	s.DraftMethod = domain.MethodGet
	s.DraftRequest = domain.Request{}
	r.dropFlight(s)
}

// dropFlight forgets an in-flight send whose target is no longer on screen
func (r *Reducer) dropFlight(s *State) {
	if s.Pending == nil {
		return
	}
	r.logger.Debug("abandoning send", slog.String("token", s.Pending.Token))
	s.Pending = nil
}

func (r *Reducer) selectEndpoint(s *State, id int64) {
	e := s.endpointByID(id)
	if e == nil {
		return
	}
	s.SelectedEndpoint = &id
	s.SelectedResponseIndex = 0
	s.CopyRequest = nil
	s.DraftResponse = nil
	s.Formatted = nil
	s.Draft = e.URL
	r.dropFlight(s)
}

func (r *Reducer) stepEndpoint(s *State, delta int) {
	if len(s.Endpoints) == 0 {
		return
	}
	idx := s.endpointIndex()
	switch {
	case idx < 0 && delta > 0:
		idx = 0
	case idx < 0:
		idx = len(s.Endpoints) - 1
	default:
		next := clamp(idx+delta, 0, len(s.Endpoints)-1)
		if next == idx {
			return
		}
		idx = next
	}
	r.selectEndpoint(s, s.Endpoints[idx].ID)
}

func (r *Reducer) selectResponse(s *State, index int) {
	e := s.Endpoint()
	if e == nil {
		return
	}
	index = clamp(index, 0, len(e.Responses)-1)
	if index == s.SelectedResponseIndex {
		return
	}
	s.SelectedResponseIndex = index
	s.CopyRequest = nil
	s.DraftResponse = nil
	s.Formatted = nil
	r.dropFlight(s)
}

func (r *Reducer) selectResponseByID(s *State, id int64) {
	if e := s.Endpoint(); e != nil {
		if idx := e.ResponseByID(id); idx >= 0 {
			s.SelectedResponseIndex = idx
		}
	}
}

func (r *Reducer) deleteEndpoint(ctx context.Context, s *State, id int64) {
	if err := r.repo.DeleteEndpoint(ctx, id); err != nil {
		r.fail(s, "delete endpoint", err)
		return
	}
	if s.SelectedEndpoint != nil && *s.SelectedEndpoint == id {
		r.clearSelection(s)
	}
	r.logger.Info("deleted endpoint", slog.Int64("id", id))
	r.refetch(ctx, s)
}

// deleteResponse removes one response; the endpoint goes with its last one
func (r *Reducer) deleteResponse(ctx context.Context, s *State, id int64) {
	var owner *domain.Endpoint
	for i := range s.Endpoints {
		if s.Endpoints[i].ResponseByID(id) >= 0 {
			owner = &s.Endpoints[i]
			break
		}
	}
	if owner == nil {
		return
	}
	ownerID := owner.ID

	if err := r.repo.DeleteResponse(ctx, id); err != nil {
		r.fail(s, "delete response", err)
		return
	}
	// a surviving selection is followed by ID since indexes shift
	var keep int64
	if resp := s.Response(); resp != nil {
		if resp.ID == id {
			s.CopyRequest = nil
			s.DraftResponse = nil
			s.Formatted = nil
			r.dropFlight(s)
		} else {
			keep = resp.ID
		}
	}

	count, err := r.repo.ResponseCount(ctx, ownerID)
	if err != nil {
		r.fail(s, "count responses", err)
		return
	}
	if count == 0 {
		r.deleteEndpoint(ctx, s, ownerID)
		return
	}
	r.refetch(ctx, s)
	if keep != 0 {
		r.selectResponseByID(s, keep)
	}
}

// duplicate copies the authoritative request into a fresh draft
func (r *Reducer) duplicate(s *State, url string) {
	if s.SelectedEndpoint == nil {
		return
	}
	method := s.Method()
	req := s.Request()

	r.clearSelection(s)
	s.Draft = url
	s.DraftMethod = method
	s.DraftRequest = domain.Request{
		QueryParams: renumber(req.QueryParams),
		Headers:     renumber(req.Headers),
	}
}

func renumber(pairs []domain.KeyValue) []domain.KeyValue {
	if len(pairs) == 0 {
		return nil
	}
	out := make([]domain.KeyValue, len(pairs))
	for i, p := range pairs {
		out[i] = domain.KeyValue{ID: int64(i + 1), Key: p.Key, Value: p.Value, On: p.On}
	}
	return out
}
