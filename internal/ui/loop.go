package ui

import (
	"context"
	"log/slog"

	"fyne.io/fyne/v2"

	"github.com/shhac/interfere/internal/httpclient"
	"github.com/shhac/interfere/internal/model"
)

// Sender performs one HTTP request
type Sender interface {
	Send(ctx context.Context, out httpclient.Outgoing) (*httpclient.Result, error)
}

// Loop owns the State and is the only caller of the Reducer. Dispatch must
// run on the UI goroutine; Post may be called from anywhere.
type Loop struct {
	reducer *model.Reducer
	sender  Sender
	logger  *slog.Logger
	ctx     context.Context

	state model.State

	// do schedules f on the UI goroutine
	do func(f func())

	onRender func(*model.State)
	onFocus  func(model.FocusTarget)
}

// NewLoop creates a Loop that schedules work with fyne.Do.
func NewLoop(ctx context.Context, reducer *model.Reducer, sender Sender, logger *slog.Logger) *Loop {
	return &Loop{
		reducer: reducer,
		sender:  sender,
		logger:  logger,
		ctx:     ctx,
		state:   model.NewState(),
		do:      fyne.Do,
	}
}

// SetOnRender sets the view callback run after every event
func (l *Loop) SetOnRender(fn func(*model.State)) {
	l.onRender = fn
}

// SetOnFocus sets the callback for FocusCmd
func (l *Loop) SetOnFocus(fn func(model.FocusTarget)) {
	l.onFocus = fn
}

// State returns the current state. Callers must not mutate it.
func (l *Loop) State() *model.State {
	return &l.state
}

// Dispatch applies ev, re-renders and runs the resulting command.
func (l *Loop) Dispatch(ev model.Event) {
	cmd := l.reducer.Update(l.ctx, &l.state, ev)
	if l.onRender != nil {
		l.onRender(&l.state)
	}
	l.run(cmd)
}

// Post queues ev onto the UI goroutine.
func (l *Loop) Post(ev model.Event) {
	l.do(func() { l.Dispatch(ev) })
}

func (l *Loop) run(cmd model.Cmd) {
	switch cmd := cmd.(type) {
	case nil:
	case model.SendCmd:
		go l.send(cmd)
	case model.FocusCmd:
		if l.onFocus != nil {
			l.onFocus(cmd.Target)
		}
	default:
		l.logger.Warn("unhandled command", slog.Any("cmd", cmd))
	}
}

// send runs off the UI goroutine and reports back through Post
func (l *Loop) send(cmd model.SendCmd) {
	res, err := l.sender.Send(l.ctx, cmd.Outgoing)
	if err != nil {
		l.Post(model.GotError{Token: cmd.Token, Err: err})
		return
	}
	if res.Truncated {
		l.logger.Warn("response body truncated",
			slog.String("url", cmd.Outgoing.URL),
			slog.Int("size", res.Size))
	}
	l.Post(model.GotResponse{Token: cmd.Token, Code: res.Code, Text: res.Text})
}
