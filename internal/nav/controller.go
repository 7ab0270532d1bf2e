// Package nav holds the navigation state of the client: which screen is
// current and the parameters it was opened with.
//
// The Controller is owned by the UI event loop and is not safe for
// concurrent use. Screens never mutate it directly; they ask the router to
// navigate or go back.
package nav

import "go.uber.org/zap"

// Transition describes a change applied by the controller.
type Transition struct {
	From   Screen
	To     Screen
	Params Params
}

// Listener is notified after every applied transition.
type Listener func(Transition)

// backRule is one row of the parent table.
type backRule struct {
	to   Screen
	keep func(Params) Params
}

func clearAll(Params) Params { return Params{} }

func keepPath(p Params) Params { return Params{PathID: p.PathID} }

func keepPathModule(p Params) Params {
	return Params{PathID: p.PathID, ModuleID: p.ModuleID}
}

// parents maps a screen to where Back() leads and which parameters survive.
var parents = map[Screen]backRule{
	PathOverview: {to: Map, keep: clearAll},
	ModuleMap:    {to: PathOverview, keep: keepPath},
	Lesson:       {to: ModuleMap, keep: keepPathModule},
	Assessment:   {to: ModuleMap, keep: keepPathModule},
}

// Parent returns the screen Back() leads to from s, if any.
func Parent(s Screen) (Screen, bool) {
	r, ok := parents[s]
	return r.to, ok
}

// Controller is the single authority over the current screen and its
// parameters.
type Controller struct {
	current       Screen
	params        Params
	authenticated func() bool
	logger        *zap.Logger
	listeners     map[int]Listener
	nextListener  int
}

// New creates a controller. authenticated is consulted on every read and
// transition; the initial screen is Login without a session and Welcome
// with one.
func New(authenticated func() bool, logger *zap.Logger) *Controller {
	if authenticated == nil {
		authenticated = func() bool { return false }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		authenticated: authenticated,
		logger:        logger,
		listeners:     make(map[int]Listener),
	}
	c.current = c.gate(Welcome)
	return c
}

// Current returns the screen that is displayed right now.
func (c *Controller) Current() Screen {
	return c.gate(c.current)
}

// Params returns the current navigation parameters.
func (c *Controller) Params() Params {
	return c.params
}

// Navigate makes s current and merges p into the existing parameters.
// An identifier outside the enumeration lands on the default screen.
func (c *Controller) Navigate(s Screen, p Params) {
	if !s.Valid() {
		c.logger.Warn("navigate to unknown screen",
			zap.Int("screen", int(s)),
			zap.Stringer("fallback", Landing))
		s = Landing
	}
	from := c.Current()
	c.current = c.gate(s)
	c.params = c.params.Merge(p)
	c.logger.Debug("navigate",
		zap.Stringer("from", from),
		zap.Stringer("to", c.current),
		zap.String("path_id", c.params.PathID),
		zap.String("module_id", c.params.ModuleID),
		zap.String("lesson_id", c.params.LessonID))
	c.notify(Transition{From: from, To: c.current, Params: c.params})
}

// NavigateName is Navigate for a screen given by name.
func (c *Controller) NavigateName(name string, p Params) {
	s, ok := ParseScreen(name)
	if !ok {
		c.logger.Warn("navigate to unknown screen name",
			zap.String("name", name),
			zap.Stringer("fallback", Landing))
	}
	c.Navigate(s, p)
}

// Back moves to the parent of the current screen, keeping only the
// parameters the parent needs. It is a no-op on screens without a parent.
func (c *Controller) Back() {
	from := c.Current()
	rule, ok := parents[from]
	if !ok {
		return
	}
	c.current = c.gate(rule.to)
	c.params = rule.keep(c.params)
	c.logger.Debug("back", zap.Stringer("from", from), zap.Stringer("to", c.current))
	c.notify(Transition{From: from, To: c.current, Params: c.params})
}

// Reset clears the parameters and returns to the gated landing screen.
// Called after logout.
func (c *Controller) Reset() {
	from := c.Current()
	c.params = Params{}
	c.current = c.gate(Welcome)
	c.notify(Transition{From: from, To: c.current, Params: c.params})
}

// Subscribe registers fn for future transitions and returns a function that
// removes it.
func (c *Controller) Subscribe(fn Listener) (unsubscribe func()) {
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	return func() { delete(c.listeners, id) }
}

// gate keeps unauthenticated users on the auth screens and authenticated
// users off them.
func (c *Controller) gate(s Screen) Screen {
	authed := c.authenticated()
	switch {
	case !authed && !s.IsAuth():
		return Login
	case authed && s.IsAuth():
		return Welcome
	}
	return s
}

func (c *Controller) notify(t Transition) {
	for _, fn := range c.listeners {
		fn(t)
	}
}
