package surface

import (
	"errors"
	"time"
)

// ErrTimedOut is returned by waits that expire. It is a per-step failure,
// never fatal on its own.
var ErrTimedOut = errors.New("timed out")

// Control is an opaque handle on a located element.
type Control interface {
	Descriptor() string
}

// Option is one entry of a select control, in document order.
type Option struct {
	Value    string
	Label    string
	Disabled bool
}

// Surface is the set of primitive UI operations the engine drives. It has no
// knowledge of the rendering engine behind it.
type Surface interface {
	Navigate(url string) error
	WaitFor(locator string, timeout time.Duration) (Control, error)
	Click(c Control) error
	Fill(c Control, text string) error
	Type(c Control, text string, perCharDelay time.Duration) error
	SelectOption(c Control, value string) error
	KeyPress(key string) error
	QueryAll(locator string) ([]Control, error)
	IsVisible(c Control) (bool, error)
	IsEnabled(c Control) (bool, error)
	WaitForNetworkIdle(timeout time.Duration) error
	CurrentURL() string

	InputValue(c Control) (string, error)
	TextContent(c Control) (string, error)
	// Attribute reports the attribute value and whether it is present.
	Attribute(c Control, name string) (string, bool, error)
	Options(c Control) ([]Option, error)
	// Content returns the serialised DOM of the current page.
	Content() (string, error)
	ClickAt(x, y float64) error
}
