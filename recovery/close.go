package recovery

import (
	"log"

	"extranet_rates/pacing"
)

// EmergencyClose tears a modal down with escalating strategies: the close
// control, the Escape key, then a click on a neutral background point. A
// half-rendered modal may show no marker at all, so the cascade always starts;
// it stops early only once a strategy has gone through and no marker is
// visible. A failing strategy never stops the next one. It never fails; the
// return value reports whether the modal is gone.
func (r *Resolver) EmergencyClose(closeCandidates, markers []string, background Point) bool {
	strategies := []struct {
		name string
		run  func() error
	}{
		{"close control", func() error {
			c, err := r.Resolve(Target{Name: "modal close", Candidates: closeCandidates})
			if err != nil {
				return err
			}
			return r.surface.Click(c)
		}},
		{"escape key", func() error {
			return r.surface.KeyPress("Escape")
		}},
		{"background click", func() error {
			return r.surface.ClickAt(background.X, background.Y)
		}},
	}

	for _, s := range strategies {
		err := s.run()
		if err != nil {
			log.Printf("[warn] emergency close: %s failed: %v", s.name, err)
		}
		r.pacer.After(pacing.Click)
		if err == nil && !r.AnyVisible(markers) {
			log.Printf("[info] emergency close: modal dismissed via %s", s.name)
			return true
		}
	}

	if r.AnyVisible(markers) {
		log.Printf("[error] emergency close: modal still visible after all strategies")
		return false
	}
	return true
}
