package workflow

import (
	"log"

	"extranet_rates/apperror"
	"extranet_rates/pacing"
)

// NavigateToCalendar opens the rates and availability calendar through the
// navigation menu, falling back to the calendar URL, and confirms the
// calendar rendered.
func (w *Workflow) NavigateToCalendar() error {
	sel := w.rc.Selectors
	s := w.rc.Surface

	if err := w.navigateByMenu(); err != nil {
		log.Printf("[warn] calendar: menu navigation failed: %v", err)
		if w.rc.CalendarURL == "" {
			return err
		}
		log.Printf("[info] calendar: opening %s", w.rc.CalendarURL)
		if err := s.Navigate(w.rc.CalendarURL); err != nil {
			return apperror.Wrap(apperror.SelectorNotFound, "calendar navigation failed", err)
		}
		w.rc.Pacer.After(pacing.Navigate)
	}

	if err := s.WaitForNetworkIdle(w.rc.WaitTimeout); err != nil {
		log.Printf("[debug] calendar: network not idle: %v", err)
	}

	marker, err := w.waitAny(sel.CalendarLoaded, w.rc.WaitTimeout)
	if err != nil {
		return apperror.Wrap(apperror.SelectorNotFound, "calendar did not load", err)
	}
	log.Printf("[info] calendar loaded (%s) at %s", marker.Descriptor(), s.CurrentURL())
	return nil
}

func (w *Workflow) navigateByMenu() error {
	sel := w.rc.Selectors
	s := w.rc.Surface

	nav, err := w.waitAny(sel.NavAvailability, w.rc.WaitTimeout)
	if err != nil {
		return apperror.Wrap(apperror.SelectorNotFound, "availability menu not found", err)
	}
	if err := s.Click(nav); err != nil {
		return err
	}
	w.rc.Pacer.After(pacing.Click)

	link, err := w.waitAny(sel.NavCalendar, w.rc.WaitTimeout/2)
	if err != nil {
		return apperror.Wrap(apperror.SelectorNotFound, "calendar link not found", err)
	}
	if err := s.Click(link); err != nil {
		return err
	}
	w.rc.Pacer.After(pacing.Navigate)
	return nil
}
