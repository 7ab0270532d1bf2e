// Package router hosts the active screen and keeps it in step with the
// navigation controller. Screens never touch the controller; they return
// the commands built by Navigate, Back and Reset.
package router

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/learninghub/internal/auth"
	"github.com/abhisek/learninghub/internal/nav"
	"github.com/abhisek/learninghub/internal/screen"
)

// NavigateMsg asks the router to make Screen current with Params merged in.
type NavigateMsg struct {
	Screen nav.Screen
	Params nav.Params
}

// BackMsg asks the router to move to the parent of the current screen.
type BackMsg struct{}

// ResetMsg asks the router to clear navigation state, e.g. after logout.
type ResetMsg struct{}

// Navigate returns a command requesting a transition to s.
func Navigate(s nav.Screen, p nav.Params) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Screen: s, Params: p} }
}

// Back returns a command requesting a back transition.
func Back() tea.Cmd {
	return func() tea.Msg { return BackMsg{} }
}

// Reset returns a command requesting a navigation reset.
func Reset() tea.Cmd {
	return func() tea.Msg { return ResetMsg{} }
}

// Logout returns a command that ends the session and then resets
// navigation, which lands on the login screen.
func Logout(ctx context.Context, session *auth.Store) tea.Cmd {
	return func() tea.Msg {
		if session != nil {
			session.Logout(ctx)
		}
		return ResetMsg{}
	}
}

// Factory builds the screen for s opened with p.
type Factory func(s nav.Screen, p nav.Params) screen.Screen

// Router manages the single hosted screen.
type Router struct {
	ctrl   *nav.Controller
	build  Factory
	logger *zap.Logger

	active   screen.Screen
	activeID nav.Screen
	params   nav.Params

	pending     []tea.Cmd
	unsubscribe func()
}

// New creates a router hosting the controller's current screen.
func New(ctrl *nav.Controller, build Factory, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Router{ctrl: ctrl, build: build, logger: logger}
	r.activeID = ctrl.Current()
	r.params = ctrl.Params()
	r.active = build(r.activeID, r.params)
	r.unsubscribe = ctrl.Subscribe(r.onTransition)
	return r
}

// Init runs the hosted screen's Init.
func (r *Router) Init() tea.Cmd {
	return r.active.Init()
}

// Active returns the hosted screen.
func (r *Router) Active() screen.Screen {
	return r.active
}

// Current returns the identifier of the hosted screen.
func (r *Router) Current() nav.Screen {
	return r.activeID
}

// Controller returns the navigation controller the router follows.
func (r *Router) Controller() *nav.Controller {
	return r.ctrl
}

// Update applies navigation messages and forwards everything else to the
// hosted screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case NavigateMsg:
		r.ctrl.Navigate(msg.Screen, msg.Params)
		return r.drain()
	case BackMsg:
		r.ctrl.Back()
		return r.drain()
	case ResetMsg:
		r.ctrl.Reset()
		return r.drain()
	}

	updated, cmd := r.active.Update(msg)
	r.active = updated
	return cmd
}

// Sync rebuilds the hosted screen if the controller's effective screen
// changed without a transition, which happens when the session changes.
func (r *Router) Sync() tea.Cmd {
	if cur := r.ctrl.Current(); cur != r.activeID {
		r.swap(cur, r.ctrl.Params())
	}
	return r.drain()
}

// View renders the hosted screen.
func (r *Router) View(width, height int) string {
	return r.active.View(width, height)
}

// Close deactivates the hosted screen and stops following the controller.
func (r *Router) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
	closeScreen(r.active)
}

func (r *Router) onTransition(t nav.Transition) {
	switch {
	case t.To != r.activeID:
		r.swap(t.To, t.Params)
	case t.Params != r.params:
		r.params = t.Params
		if rt, ok := r.active.(screen.Retargeter); ok {
			r.logger.Debug("retarget screen", zap.Stringer("screen", t.To))
			r.pending = append(r.pending, rt.Retarget(t.Params))
			return
		}
		r.swap(t.To, t.Params)
	}
}

func (r *Router) swap(to nav.Screen, p nav.Params) {
	r.logger.Debug("swap screen", zap.Stringer("from", r.activeID), zap.Stringer("to", to))
	closeScreen(r.active)
	r.activeID = to
	r.params = p
	r.active = r.build(to, p)
	r.pending = append(r.pending, r.active.Init())
}

func (r *Router) drain() tea.Cmd {
	cmds := r.pending
	r.pending = nil
	return tea.Batch(cmds...)
}

func closeScreen(s screen.Screen) {
	if c, ok := s.(screen.Closer); ok {
		c.Close()
	}
}
