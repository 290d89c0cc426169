package workflow

import (
	"fmt"
	"strings"
	"time"

	"extranet_rates/apperror"
	"extranet_rates/config"
	"extranet_rates/daterange"
	"extranet_rates/pacing"
	"extranet_rates/recovery"
	"extranet_rates/surface"
)

func (w *Workflow) target(name string, candidates []string, requireEnabled bool) recovery.Target {
	return recovery.Target{Name: name, Candidates: candidates, RequireEnabled: requireEnabled}
}

// waitAny waits for the first candidate to become visible, splitting the
// timeout across candidates.
func (w *Workflow) waitAny(candidates []string, timeout time.Duration) (surface.Control, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no candidates")
	}
	per := timeout / time.Duration(len(candidates))
	if per < time.Second {
		per = time.Second
	}
	var lastErr error
	for _, sel := range candidates {
		c, err := w.rc.Surface.WaitFor(sel, per)
		if err == nil {
			return c, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (w *Workflow) click(name string, candidates []string, op pacing.Op) error {
	c, err := w.resolver.Resolve(w.target(name, candidates, true))
	if err != nil {
		return err
	}
	if err := w.rc.Surface.Click(c); err != nil {
		return apperror.Wrap(apperror.SelectorNotFound, name+": click failed", err)
	}
	w.rc.Pacer.After(op)
	return nil
}

// enter clears a field, types the value and reads it back.
func (w *Workflow) enter(name string, candidates []string, value string) (surface.Control, error) {
	c, err := w.resolver.Resolve(w.target(name, candidates, true))
	if err != nil {
		return nil, err
	}
	s := w.rc.Surface
	if err := s.Fill(c, ""); err != nil {
		return nil, apperror.Wrap(apperror.SelectorNotFound, name+": clear failed", err)
	}
	if err := s.Type(c, value, w.rc.TypeDelay); err != nil {
		return nil, apperror.Wrap(apperror.SelectorNotFound, name+": typing failed", err)
	}
	w.rc.Pacer.After(pacing.Field)
	return c, nil
}

func (w *Workflow) verifyValue(name string, c surface.Control, want string) error {
	got, err := w.rc.Surface.InputValue(c)
	if err != nil {
		return apperror.Wrap(apperror.Verification, name+": read back failed", err)
	}
	if strings.TrimSpace(got) != want {
		return apperror.New(apperror.Verification, fmt.Sprintf("%s: expected %q, field shows %q", name, want, got))
	}
	return nil
}

func (w *Workflow) openModal(roomID string) error {
	sel := w.rc.Selectors
	trigger := w.target("bulk edit trigger", config.ForRoom(sel.BulkEditOpen, roomID), true)

	return w.retry.Do("open bulk edit for room "+roomID, func() error {
		btn, err := w.resolver.Resolve(trigger)
		if err != nil {
			return apperror.Wrap(apperror.ModalLifecycle, "bulk edit trigger not found", err)
		}
		if err := w.rc.Surface.Click(btn); err != nil {
			return apperror.Wrap(apperror.ModalLifecycle, "bulk edit trigger click failed", err)
		}
		w.rc.Pacer.After(pacing.Modal)

		if _, err := w.waitAny(sel.ModalMarkers, w.rc.WaitTimeout); err != nil {
			// a partial modal from this click must not be left under the next one
			w.resolver.EmergencyClose(sel.ModalClose, sel.ModalMarkers, w.point())
			return apperror.Wrap(apperror.ModalLifecycle, "bulk edit modal did not render", err)
		}
		return nil
	})
}

func (w *Workflow) setDates(iv daterange.Interval) error {
	sel := w.rc.Selectors

	from, err := w.enter("date from", sel.DateFrom, iv.StartString())
	if err != nil {
		return err
	}
	to, err := w.enter("date to", sel.DateTo, iv.EndString())
	if err != nil {
		return err
	}

	if err := w.rc.Surface.KeyPress("Tab"); err != nil {
		return apperror.Wrap(apperror.Verification, "date commit failed", err)
	}
	w.rc.Pacer.After(pacing.Field)

	if err := w.verifyValue("date from", from, iv.StartString()); err != nil {
		return err
	}
	return w.verifyValue("date to", to, iv.EndString())
}

func (w *Workflow) setInventory(count string) error {
	sel := w.rc.Selectors
	count = strings.TrimSpace(count)

	if err := w.click("inventory group", sel.InventoryGroup, pacing.Click); err != nil {
		return err
	}
	input, err := w.enter("rooms to sell", sel.InventoryInput, count)
	if err != nil {
		return err
	}
	if err := w.verifyValue("rooms to sell", input, count); err != nil {
		return err
	}
	return w.resolver.VerifiedSave(w.target("inventory save", sel.InventorySave, true), sel.SaveErrorBanner)
}

func (w *Workflow) setPrice(price string) error {
	sel := w.rc.Selectors
	price = strings.TrimSpace(price)

	if err := w.click("price group", sel.PriceGroup, pacing.Click); err != nil {
		return err
	}

	plan, err := w.resolver.Resolve(w.target("rate plan", sel.RatePlanSelect, true))
	if err != nil {
		return err
	}
	options, err := w.rc.Surface.Options(plan)
	if err != nil {
		return apperror.Wrap(apperror.SelectorNotFound, "rate plan: options unreadable", err)
	}
	choice, ok := LastEnabledOption(options)
	if !ok {
		return apperror.New(apperror.SelectorNotFound, "rate plan: no enabled option")
	}
	if err := w.rc.Surface.SelectOption(plan, choice.Value); err != nil {
		return apperror.Wrap(apperror.SelectorNotFound, "rate plan: select failed", err)
	}
	w.rc.Pacer.After(pacing.Field)

	input, err := w.enter("price", sel.PriceInput, price)
	if err != nil {
		return err
	}
	if err := w.verifyValue("price", input, price); err != nil {
		return err
	}
	return w.resolver.VerifiedSave(w.target("price save", sel.PriceSave, true), sel.SaveErrorBanner)
}

// LastEnabledOption picks the last option that is enabled and has a value.
func LastEnabledOption(options []surface.Option) (surface.Option, bool) {
	for i := len(options) - 1; i >= 0; i-- {
		o := options[i]
		if !o.Disabled && strings.TrimSpace(o.Value) != "" {
			return o, true
		}
	}
	return surface.Option{}, false
}

func (w *Workflow) setStatus() error {
	sel := w.rc.Selectors

	if err := w.click("status group", sel.StatusGroup, pacing.Click); err != nil {
		return err
	}

	open, err := w.resolver.Resolve(w.target("status open label", sel.StatusOpenLabel, true))
	if err != nil {
		open, err = w.resolver.Resolve(w.target("status open radio", sel.StatusOpenRadio, true))
		if err != nil {
			return err
		}
		logf("", "", StepSetStatus, "info", "open label missing, using radio %s", open.Descriptor())
	}
	if err := w.rc.Surface.Click(open); err != nil {
		return apperror.Wrap(apperror.SelectorNotFound, "status open: click failed", err)
	}
	w.rc.Pacer.After(pacing.Click)

	return w.resolver.VerifiedSave(w.target("status save", sel.StatusSave, true), sel.SaveErrorBanner)
}

func (w *Workflow) closeModal() error {
	sel := w.rc.Selectors

	btn, err := w.resolver.Resolve(w.target("modal close", sel.ModalClose, false))
	if err != nil {
		return apperror.Wrap(apperror.ModalLifecycle, "close control not found", err)
	}
	if err := w.rc.Surface.Click(btn); err != nil {
		return apperror.Wrap(apperror.ModalLifecycle, "close click failed", err)
	}
	w.rc.Pacer.After(pacing.Modal)

	if w.resolver.AnyVisible(sel.ModalMarkers) {
		return apperror.New(apperror.ModalLifecycle, "modal still open after close")
	}
	return nil
}
