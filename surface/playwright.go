package surface

import (
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Playwright drives a single playwright-go page.
type Playwright struct {
	page playwright.Page
}

func NewPlaywright(page playwright.Page) *Playwright {
	return &Playwright{page: page}
}

func (p *Playwright) Page() playwright.Page {
	return p.page
}

type locatorControl struct {
	loc  playwright.Locator
	desc string
}

func (c *locatorControl) Descriptor() string {
	return c.desc
}

func (p *Playwright) locator(c Control) (playwright.Locator, error) {
	lc, ok := c.(*locatorControl)
	if !ok || lc == nil {
		return nil, fmt.Errorf("control %T was not produced by this surface", c)
	}
	return lc.loc, nil
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

func timeoutErr(err error) error {
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %v", ErrTimedOut, err)
	}
	return err
}

func (p *Playwright) Navigate(url string) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(60000),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	return timeoutErr(err)
}

func (p *Playwright) WaitFor(locator string, timeout time.Duration) (Control, error) {
	loc := p.page.Locator(locator).First()
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms(timeout),
	})
	if err != nil {
		return nil, timeoutErr(err)
	}
	return &locatorControl{loc: loc, desc: locator}, nil
}

func (p *Playwright) Click(c Control) error {
	loc, err := p.locator(c)
	if err != nil {
		return err
	}
	return timeoutErr(loc.Click())
}

func (p *Playwright) Fill(c Control, text string) error {
	loc, err := p.locator(c)
	if err != nil {
		return err
	}
	return timeoutErr(loc.Fill(text))
}

func (p *Playwright) Type(c Control, text string, perCharDelay time.Duration) error {
	loc, err := p.locator(c)
	if err != nil {
		return err
	}
	return timeoutErr(loc.PressSequentially(text, playwright.LocatorPressSequentiallyOptions{
		Delay: ms(perCharDelay),
	}))
}

func (p *Playwright) SelectOption(c Control, value string) error {
	loc, err := p.locator(c)
	if err != nil {
		return err
	}
	_, err = loc.SelectOption(playwright.SelectOptionValues{Values: &[]string{value}})
	return timeoutErr(err)
}

func (p *Playwright) KeyPress(key string) error {
	return p.page.Keyboard().Press(key)
}

func (p *Playwright) QueryAll(locator string) ([]Control, error) {
	all, err := p.page.Locator(locator).All()
	if err != nil {
		return nil, err
	}
	controls := make([]Control, 0, len(all))
	for i, loc := range all {
		controls = append(controls, &locatorControl{loc: loc, desc: fmt.Sprintf("%s >> nth=%d", locator, i)})
	}
	return controls, nil
}

func (p *Playwright) IsVisible(c Control) (bool, error) {
	loc, err := p.locator(c)
	if err != nil {
		return false, err
	}
	return loc.IsVisible()
}

func (p *Playwright) IsEnabled(c Control) (bool, error) {
	loc, err := p.locator(c)
	if err != nil {
		return false, err
	}
	return loc.IsEnabled()
}

func (p *Playwright) WaitForNetworkIdle(timeout time.Duration) error {
	return timeoutErr(p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: ms(timeout),
	}))
}

func (p *Playwright) CurrentURL() string {
	return p.page.URL()
}

func (p *Playwright) InputValue(c Control) (string, error) {
	loc, err := p.locator(c)
	if err != nil {
		return "", err
	}
	return loc.InputValue()
}

func (p *Playwright) TextContent(c Control) (string, error) {
	loc, err := p.locator(c)
	if err != nil {
		return "", err
	}
	return loc.TextContent()
}

func (p *Playwright) Attribute(c Control, name string) (string, bool, error) {
	loc, err := p.locator(c)
	if err != nil {
		return "", false, err
	}
	present, err := loc.Evaluate(`(el, name) => el.hasAttribute(name)`, name)
	if err != nil {
		return "", false, err
	}
	if ok, _ := present.(bool); !ok {
		return "", false, nil
	}
	val, err := loc.GetAttribute(name)
	return val, true, err
}

func (p *Playwright) Options(c Control) ([]Option, error) {
	loc, err := p.locator(c)
	if err != nil {
		return nil, err
	}
	raw, err := loc.Evaluate(`el => Array.from(el.options || []).map(o => ({
		value: o.value,
		label: (o.label || o.textContent || '').trim(),
		disabled: o.disabled,
	}))`, nil)
	if err != nil {
		return nil, err
	}

	items, _ := raw.([]interface{})
	options := make([]Option, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		var o Option
		o.Value, _ = m["value"].(string)
		o.Label, _ = m["label"].(string)
		o.Disabled, _ = m["disabled"].(bool)
		options = append(options, o)
	}
	return options, nil
}

func (p *Playwright) Content() (string, error) {
	return p.page.Content()
}

func (p *Playwright) ClickAt(x, y float64) error {
	return p.page.Mouse().Click(x, y)
}
