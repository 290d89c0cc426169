// Package surfacetest provides an in-memory Surface for exercising the
// workflow without a browser.
package surfacetest

import (
	"fmt"
	"sync"
	"time"

	"extranet_rates/surface"
)

// Element is one scripted control. Selector is matched exactly against the
// locator strings the caller uses.
type Element struct {
	Selector string
	Visible  bool
	Disabled bool
	Attrs    map[string]string
	Value    string
	Text     string
	Options  []surface.Option

	// OnClick runs after a click is recorded.
	OnClick func()
	// FillTransform rewrites values written by Fill or Type, emulating
	// widgets that reformat their input.
	FillTransform func(string) string
	// FailClick makes clicks return this error.
	FailClick error
}

func (e *Element) Descriptor() string {
	return e.Selector
}

// Action is one recorded call.
type Action struct {
	Op       string
	Selector string
	Value    string
}

// Surface is a scripted surface.Surface. Waits never block: a locator with
// no visible element fails immediately with surface.ErrTimedOut.
type Surface struct {
	mu         sync.Mutex
	elements   map[string][]*Element
	Actions    []Action
	URL        string
	HTML       string
	OnKey      func(key string)
	OnNavigate func(url string)
	// NetworkIdleErr is returned by WaitForNetworkIdle when set.
	NetworkIdleErr error
}

func New() *Surface {
	return &Surface{elements: make(map[string][]*Element)}
}

// Add registers an element under its selector and returns it for further
// scripting.
func (s *Surface) Add(el *Element) *Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[el.Selector] = append(s.elements[el.Selector], el)
	return el
}

// Lookup returns the elements registered under a selector.
func (s *Surface) Lookup(selector string) []*Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Element(nil), s.elements[selector]...)
}

// SetVisible toggles visibility for every element under selector.
func (s *Surface) SetVisible(selector string, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, el := range s.elements[selector] {
		el.Visible = visible
	}
}

func (s *Surface) record(op, selector, value string) {
	s.Actions = append(s.Actions, Action{Op: op, Selector: selector, Value: value})
}

// Mutations counts recorded actions that could change the remote state.
func (s *Surface) Mutations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.Actions {
		switch a.Op {
		case "click", "fill", "type", "select", "key", "click_at":
			n++
		}
	}
	return n
}

// Count returns the number of recorded actions of op against selector.
func (s *Surface) Count(op, selector string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.Actions {
		if a.Op == op && a.Selector == selector {
			n++
		}
	}
	return n
}

func element(c surface.Control) (*Element, error) {
	el, ok := c.(*Element)
	if !ok || el == nil {
		return nil, fmt.Errorf("control %T was not produced by this surface", c)
	}
	return el, nil
}

func (s *Surface) Navigate(url string) error {
	s.mu.Lock()
	s.URL = url
	s.record("navigate", "", url)
	hook := s.OnNavigate
	s.mu.Unlock()
	if hook != nil {
		hook(url)
	}
	return nil
}

func (s *Surface) WaitFor(locator string, timeout time.Duration) (surface.Control, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, el := range s.elements[locator] {
		if el.Visible {
			return el, nil
		}
	}
	return nil, fmt.Errorf("%w: waiting for %s (%s)", surface.ErrTimedOut, locator, timeout)
}

func (s *Surface) Click(c surface.Control) error {
	el, err := element(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if el.FailClick != nil {
		s.mu.Unlock()
		return el.FailClick
	}
	s.record("click", el.Selector, "")
	hook := el.OnClick
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (s *Surface) write(c surface.Control, op, text string, appendText bool) error {
	el, err := element(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(op, el.Selector, text)
	v := text
	if appendText {
		v = el.Value + text
	}
	if el.FillTransform != nil {
		v = el.FillTransform(v)
	}
	el.Value = v
	return nil
}

func (s *Surface) Fill(c surface.Control, text string) error {
	return s.write(c, "fill", text, false)
}

func (s *Surface) Type(c surface.Control, text string, perCharDelay time.Duration) error {
	return s.write(c, "type", text, true)
}

func (s *Surface) SelectOption(c surface.Control, value string) error {
	el, err := element(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range el.Options {
		if o.Value == value {
			if o.Disabled {
				return fmt.Errorf("option %q is disabled", value)
			}
			el.Value = value
			s.record("select", el.Selector, value)
			return nil
		}
	}
	return fmt.Errorf("option %q not found in %s", value, el.Selector)
}

func (s *Surface) KeyPress(key string) error {
	s.mu.Lock()
	s.record("key", "", key)
	hook := s.OnKey
	s.mu.Unlock()
	if hook != nil {
		hook(key)
	}
	return nil
}

func (s *Surface) QueryAll(locator string) ([]surface.Control, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []surface.Control
	for _, el := range s.elements[locator] {
		out = append(out, el)
	}
	return out, nil
}

func (s *Surface) IsVisible(c surface.Control) (bool, error) {
	el, err := element(c)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return el.Visible, nil
}

func (s *Surface) IsEnabled(c surface.Control) (bool, error) {
	el, err := element(c)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !el.Disabled, nil
}

func (s *Surface) WaitForNetworkIdle(timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.NetworkIdleErr
}

func (s *Surface) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.URL
}

func (s *Surface) InputValue(c surface.Control) (string, error) {
	el, err := element(c)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return el.Value, nil
}

func (s *Surface) TextContent(c surface.Control) (string, error) {
	el, err := element(c)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return el.Text, nil
}

func (s *Surface) Attribute(c surface.Control, name string) (string, bool, error) {
	el, err := element(c)
	if err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := el.Attrs[name]
	return v, ok, nil
}

func (s *Surface) Options(c surface.Control) ([]surface.Option, error) {
	el, err := element(c)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]surface.Option(nil), el.Options...), nil
}

func (s *Surface) Content() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.HTML, nil
}

func (s *Surface) ClickAt(x, y float64) error {
	s.mu.Lock()
	s.record("click_at", "", fmt.Sprintf("%.0f,%.0f", x, y))
	s.mu.Unlock()
	return nil
}

var _ surface.Surface = (*Surface)(nil)
