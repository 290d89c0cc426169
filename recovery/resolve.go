package recovery

import (
	"fmt"
	"log"
	"strings"

	"extranet_rates/apperror"
	"extranet_rates/pacing"
	"extranet_rates/surface"
)

// Target is one interactive element described by ordered candidate locators.
type Target struct {
	Name           string
	Candidates     []string
	RequireEnabled bool
}

// Point is a page coordinate used for background clicks.
type Point struct {
	X float64
	Y float64
}

type Resolver struct {
	surface surface.Surface
	pacer   *pacing.Controller
}

func NewResolver(s surface.Surface, pacer *pacing.Controller) *Resolver {
	if pacer == nil {
		pacer = pacing.NoDelay()
	}
	return &Resolver{surface: s, pacer: pacer}
}

func (r *Resolver) Surface() surface.Surface {
	return r.surface
}

func (r *Resolver) Pacer() *pacing.Controller {
	return r.pacer
}

// Resolve returns the first control, in candidate order, that is visible and
// (when required) enabled.
func (r *Resolver) Resolve(t Target) (surface.Control, error) {
	for _, sel := range t.Candidates {
		controls, err := r.surface.QueryAll(sel)
		if err != nil {
			log.Printf("[debug] resolve %s: query %q failed: %v", t.Name, sel, err)
			continue
		}
		for _, c := range controls {
			if r.usable(c, t.RequireEnabled) {
				return c, nil
			}
		}
	}
	return nil, apperror.New(apperror.SelectorNotFound,
		fmt.Sprintf("%s: none of %d candidates resolved", t.Name, len(t.Candidates)))
}

func (r *Resolver) usable(c surface.Control, requireEnabled bool) bool {
	if visible, err := r.surface.IsVisible(c); err != nil || !visible {
		return false
	}
	if !requireEnabled {
		return true
	}
	if enabled, err := r.surface.IsEnabled(c); err != nil || !enabled {
		return false
	}
	if _, disabled, _ := r.surface.Attribute(c, "disabled"); disabled {
		return false
	}
	if aria, ok, _ := r.surface.Attribute(c, "aria-disabled"); ok && strings.EqualFold(aria, "true") {
		return false
	}
	return true
}

// AnyVisible reports whether any control matching any locator is visible.
func (r *Resolver) AnyVisible(locators []string) bool {
	_, ok := r.firstVisible(locators)
	return ok
}

func (r *Resolver) firstVisible(locators []string) (surface.Control, bool) {
	for _, sel := range locators {
		controls, err := r.surface.QueryAll(sel)
		if err != nil {
			continue
		}
		for _, c := range controls {
			if visible, _ := r.surface.IsVisible(c); visible {
				return c, true
			}
		}
	}
	return nil, false
}

// VerifiedSave clicks the first enabled save control, waits out the save
// pacing, then fails if any error banner is showing.
func (r *Resolver) VerifiedSave(save Target, banners []string) error {
	save.RequireEnabled = true
	btn, err := r.Resolve(save)
	if err != nil {
		return err
	}
	if err := r.surface.Click(btn); err != nil {
		return apperror.Wrap(apperror.SaveRejected, save.Name+": click failed", err)
	}
	r.pacer.After(pacing.Save)

	if banner, ok := r.firstVisible(banners); ok {
		text, _ := r.surface.TextContent(banner)
		text = strings.Join(strings.Fields(text), " ")
		if text == "" {
			text = banner.Descriptor()
		}
		return apperror.New(apperror.SaveRejected, fmt.Sprintf("%s: error banner %q", save.Name, text))
	}
	return nil
}
