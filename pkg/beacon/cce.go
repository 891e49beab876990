// Package beacon manages advertisement of the Configurator
// Connectivity Element (CCE) in beacon and probe response templates.
//
// A device that terminates 802.11 for Easy Connect advertises the CCE
// so that waiting Enrollees know a Configurator is reachable. The
// element must appear in every template or in none: a partially
// updated set of templates would advertise onboarding on some BSSes
// and silently drop Enrollees on others, so any failure rolls all
// templates back to disabled.
package beacon

import (
	"errors"
	"sync"
)

// TemplateUpdater applies the CCE information element to one
// beacon/probe-response template (typically one BSS). Implementations
// talk to the driver or hostapd; SetCCE must be synchronous.
type TemplateUpdater interface {
	// SetCCE includes (true) or removes (false) the CCE IE.
	SetCCE(enable bool) error
}

// TemplateUpdaterFunc adapts a function to the TemplateUpdater interface.
type TemplateUpdaterFunc func(enable bool) error

// SetCCE calls f.
func (f TemplateUpdaterFunc) SetCCE(enable bool) error { return f(enable) }

// ErrNoTemplates indicates a controller with nothing to update.
var ErrNoTemplates = errors.New("no beacon templates registered")

// CCEController toggles CCE advertisement across a set of templates
// with all-or-nothing semantics.
type CCEController struct {
	mu sync.Mutex

	updaters []TemplateUpdater
	enabled  bool

	onStateChange func(oldEnabled, newEnabled bool)
}

// NewCCEController creates a controller over the given templates.
func NewCCEController(updaters ...TemplateUpdater) *CCEController {
	return &CCEController{updaters: updaters}
}

// OnStateChange sets a callback invoked after the advertised state
// changes. The callback runs outside the controller lock.
func (c *CCEController) OnStateChange(fn func(oldEnabled, newEnabled bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStateChange = fn
}

// Enabled reports whether CCE advertisement is currently active on
// all templates.
func (c *CCEController) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Apply enables or disables CCE advertisement on every template.
//
// If any template update fails, Apply strips the CCE from all
// templates (best effort), records the state as disabled, and returns
// false. After a false return the caller must assume advertisement is
// fully off, never partially on.
func (c *CCEController) Apply(enable bool) bool {
	c.mu.Lock()

	if len(c.updaters) == 0 {
		c.mu.Unlock()
		return false
	}

	old := c.enabled
	ok := true
	for _, u := range c.updaters {
		if err := u.SetCCE(enable); err != nil {
			ok = false
			break
		}
	}

	if !ok {
		// Fail safe: remove the element everywhere rather than leave
		// a subset of templates advertising.
		for _, u := range c.updaters {
			_ = u.SetCCE(false)
		}
		c.enabled = false
	} else {
		c.enabled = enable
	}

	newState := c.enabled
	fn := c.onStateChange
	c.mu.Unlock()

	if fn != nil && old != newState {
		fn(old, newState)
	}
	return ok
}

// Disable removes CCE advertisement from all templates. It reports
// whether every removal succeeded; the recorded state is disabled
// either way.
func (c *CCEController) Disable() bool {
	return c.Apply(false)
}
