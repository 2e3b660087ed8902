package model

import "github.com/shhac/interfere/internal/domain"

// editPair applies a key-value edit to the authoritative request. A stored
// response is never edited in place: the first edit forks a CopyRequest.
func (r *Reducer) editPair(s *State, ev Pair) {
	switch s.Mode() {
	case ModeDraft:
		applyPair(&s.DraftRequest, ev)

	case ModeCopy:
		applyPair(s.CopyRequest, ev)

	case ModeStored:
		resp := s.Response()
		if resp == nil {
			return
		}
		if ev.Op != PairAdd && pairIndex(resp.Request.Pairs(ev.Kind), ev.ID) < 0 {
			return
		}
		fork := resp.Request.Clone()
		applyPair(&fork, ev)
		s.CopyRequest = &fork
		r.dropFlight(s)
	}
}

func applyPair(req *domain.Request, ev Pair) {
	pairs := append([]domain.KeyValue(nil), req.Pairs(ev.Kind)...)

	if ev.Op == PairAdd {
		pairs = append(pairs, domain.KeyValue{ID: nextPairID(pairs), Key: ev.Text, On: true})
		req.SetPairs(ev.Kind, pairs)
		return
	}

	i := pairIndex(pairs, ev.ID)
	if i < 0 {
		return
	}
	switch ev.Op {
	case PairSetKey:
		pairs[i].Key = ev.Text
	case PairSetValue:
		pairs[i].Value = ev.Text
	case PairToggle:
		pairs[i].On = !pairs[i].On
	case PairDelete:
		pairs = append(pairs[:i], pairs[i+1:]...)
	}
	req.SetPairs(ev.Kind, pairs)
}

func pairIndex(pairs []domain.KeyValue, id int64) int {
	for i, p := range pairs {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func nextPairID(pairs []domain.KeyValue) int64 {
	var id int64
	for _, p := range pairs {
		id = max(id, p.ID)
	}
	return id + 1
}
