// Package northarrow relays a view's heading for a north arrow widget.
package northarrow

import (
	"log/slog"

	"github.com/mohammed-shakir/geotime-toolkit/internal/geoview"
	"github.com/mohammed-shakir/geotime-toolkit/internal/signal"
)

// Controller publishes the heading of the view it is bound to. A controller
// binds at most once; like the time slider it is not safe for concurrent use.
type Controller struct {
	log      *slog.Logger
	view     geoview.Rotator
	conn     *signal.Connection
	heading  float64
	autoHide bool

	headingChanged  signal.Signal[float64]
	autoHideChanged signal.Signal[bool]
}

func New(log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		log:      log.With("component", "northarrow"),
		autoHide: true,
	}
}

// SetView binds v. It refuses nil and any second bind, returning false.
func (c *Controller) SetView(v geoview.Rotator) bool {
	if v == nil {
		return false
	}
	if c.view != nil {
		c.log.Warn("north arrow already bound; ignoring new view")
		return false
	}
	c.view = v
	c.heading = v.Heading()
	c.conn = v.OnHeadingChanged(func(deg float64) {
		if deg == c.heading {
			return
		}
		c.heading = deg
		c.headingChanged.Emit(deg)
	})
	return true
}

// Detach releases the view subscription. The controller stays bound-once:
// SetView still refuses a new view afterwards.
func (c *Controller) Detach() {
	c.conn.Disconnect()
	c.conn = nil
}

func (c *Controller) Bound() bool { return c.view != nil }

func (c *Controller) Heading() float64 { return c.heading }

// SetHeading rotates the bound view. The published heading follows once the
// view reports the change. Without a view it does nothing.
func (c *Controller) SetHeading(deg float64) {
	if c.view == nil || c.conn == nil {
		return
	}
	c.view.SetHeading(deg)
}

func (c *Controller) AutoHide() bool { return c.autoHide }

func (c *Controller) SetAutoHide(v bool) {
	if v == c.autoHide {
		return
	}
	c.autoHide = v
	c.autoHideChanged.Emit(v)
}

func (c *Controller) OnHeadingChanged(fn func(float64)) *signal.Connection {
	return c.headingChanged.Connect(fn)
}

func (c *Controller) OnAutoHideChanged(fn func(bool)) *signal.Connection {
	return c.autoHideChanged.Connect(fn)
}
