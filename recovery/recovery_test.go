package recovery

import (
	"errors"
	"strings"
	"testing"
	"time"

	"extranet_rates/apperror"
	"extranet_rates/surface/surfacetest"
)

func TestResolvePicksFirstVisibleEnabledCandidate(t *testing.T) {
	s := surfacetest.New()
	s.Add(&surfacetest.Element{Selector: "#primary", Visible: false})
	s.Add(&surfacetest.Element{Selector: "button.save", Visible: true, Disabled: true})
	s.Add(&surfacetest.Element{Selector: "button.save", Visible: true, Attrs: map[string]string{"aria-disabled": "true"}})
	want := s.Add(&surfacetest.Element{Selector: "button.save", Visible: true})
	s.Add(&surfacetest.Element{Selector: "button.fallback", Visible: true})

	r := NewResolver(s, nil)
	got, err := r.Resolve(Target{Name: "save", Candidates: []string{"#primary", "button.save", "button.fallback"}, RequireEnabled: true})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got != want {
		t.Fatalf("expected the enabled button.save, got %s", got.Descriptor())
	}
}

func TestResolveDisabledAttributeBlocksEnabledTargets(t *testing.T) {
	s := surfacetest.New()
	el := s.Add(&surfacetest.Element{Selector: "button", Visible: true, Attrs: map[string]string{"disabled": ""}})
	r := NewResolver(s, nil)

	if _, err := r.Resolve(Target{Name: "btn", Candidates: []string{"button"}, RequireEnabled: true}); !apperror.Is(err, apperror.SelectorNotFound) {
		t.Fatalf("expected SelectorNotFound, got %v", err)
	}
	got, err := r.Resolve(Target{Name: "btn", Candidates: []string{"button"}})
	if err != nil || got != el {
		t.Fatalf("visibility-only resolve should accept the button, got %v", err)
	}
}

func TestResolveNothingMatches(t *testing.T) {
	r := NewResolver(surfacetest.New(), nil)
	_, err := r.Resolve(Target{Name: "inventory group", Candidates: []string{"#a", "#b"}})
	if !apperror.Is(err, apperror.SelectorNotFound) {
		t.Fatalf("expected SelectorNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "inventory group") {
		t.Fatalf("error should name the target: %v", err)
	}
}

func TestVerifiedSaveDetectsBanner(t *testing.T) {
	s := surfacetest.New()
	banner := s.Add(&surfacetest.Element{Selector: ".error-banner", Text: "  Something went\n wrong "})
	s.Add(&surfacetest.Element{Selector: "button.save", Visible: true, OnClick: func() { banner.Visible = true }})

	r := NewResolver(s, nil)
	err := r.VerifiedSave(Target{Name: "price save", Candidates: []string{"button.save"}}, []string{".error-banner"})
	if !apperror.Is(err, apperror.SaveRejected) {
		t.Fatalf("expected SaveRejected, got %v", err)
	}
	if !strings.Contains(err.Error(), "Something went wrong") {
		t.Fatalf("expected banner text in error, got %v", err)
	}
}

func TestVerifiedSaveSucceeds(t *testing.T) {
	s := surfacetest.New()
	s.Add(&surfacetest.Element{Selector: ".error-banner"})
	s.Add(&surfacetest.Element{Selector: "button.save", Visible: true})

	r := NewResolver(s, nil)
	if err := r.VerifiedSave(Target{Name: "save", Candidates: []string{"button.save"}}, []string{".error-banner"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if s.Count("click", "button.save") != 1 {
		t.Fatalf("expected exactly one save click")
	}
}

func TestVerifiedSaveRequiresEnabledControl(t *testing.T) {
	s := surfacetest.New()
	s.Add(&surfacetest.Element{Selector: "button.save", Visible: true, Disabled: true})

	r := NewResolver(s, nil)
	err := r.VerifiedSave(Target{Name: "save", Candidates: []string{"button.save"}}, nil)
	if !apperror.Is(err, apperror.SelectorNotFound) {
		t.Fatalf("expected SelectorNotFound, got %v", err)
	}
	if s.Mutations() != 0 {
		t.Fatalf("disabled save must not be clicked")
	}
}

func TestEmergencyCloseStopsAtFirstWorkingStrategy(t *testing.T) {
	s := surfacetest.New()
	s.Add(&surfacetest.Element{Selector: ".modal", Visible: true})
	s.Add(&surfacetest.Element{Selector: "button.close", Visible: true, OnClick: func() { s.SetVisible(".modal", false) }})

	r := NewResolver(s, nil)
	if !r.EmergencyClose([]string{"button.close"}, []string{".modal"}, Point{X: 5, Y: 5}) {
		t.Fatalf("expected modal to be closed")
	}
	if s.Count("key", "") != 0 {
		t.Fatalf("escape should not be pressed once the close control worked")
	}
}

func TestEmergencyCloseEscalates(t *testing.T) {
	s := surfacetest.New()
	s.Add(&surfacetest.Element{Selector: ".modal", Visible: true})
	s.Add(&surfacetest.Element{Selector: "button.close", Visible: true, FailClick: errors.New("detached")})

	r := NewResolver(s, nil)
	if r.EmergencyClose([]string{"button.close"}, []string{".modal"}, Point{X: 5, Y: 5}) {
		t.Fatalf("modal never closes, expected false")
	}
	if s.Count("key", "") != 1 || s.Count("click_at", "") != 1 {
		t.Fatalf("expected escape and background click to be attempted, got %+v", s.Actions)
	}
}

func TestEmergencyCloseRunsWithoutMarkers(t *testing.T) {
	s := surfacetest.New()
	s.Add(&surfacetest.Element{Selector: ".modal"})
	s.Add(&surfacetest.Element{Selector: "button.close", Visible: true})

	r := NewResolver(s, nil)
	if !r.EmergencyClose([]string{"button.close"}, []string{".modal"}, Point{}) {
		t.Fatalf("no visible marker should count as closed")
	}
	if s.Count("click", "button.close") != 1 {
		t.Fatalf("a half-rendered modal must still get the close control, got %+v", s.Actions)
	}
	if s.Count("key", "") != 0 {
		t.Fatalf("escape is not needed once the close control went through")
	}
}

func TestEmergencyCloseEscalatesPastMissingCloseControl(t *testing.T) {
	s := surfacetest.New()
	r := NewResolver(s, nil)
	if !r.EmergencyClose([]string{"button.close"}, []string{".modal"}, Point{}) {
		t.Fatalf("no visible marker should count as closed")
	}
	if s.Count("key", "") != 1 {
		t.Fatalf("expected escape after the close control failed to resolve, got %+v", s.Actions)
	}
	if s.Count("click_at", "") != 0 {
		t.Fatalf("background click is not needed once escape went through")
	}
}

func TestRetryDoublesDelay(t *testing.T) {
	var delays []time.Duration
	r := &Retry{Attempts: 3, BaseDelay: time.Second, sleep: func(d time.Duration) { delays = append(delays, d) }}

	calls := 0
	err := r.Do("open modal", func() error {
		calls++
		return apperror.New(apperror.ModalLifecycle, "no marker")
	})
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if !apperror.Is(err, apperror.ModalLifecycle) {
		t.Fatalf("expected kind preserved, got %v", err)
	}
	if len(delays) != 2 || delays[0] != time.Second || delays[1] != 2*time.Second {
		t.Fatalf("unexpected delays %v", delays)
	}
}

func TestRetryStopsOnSuccessAndFatal(t *testing.T) {
	r := &Retry{Attempts: 5, sleep: func(time.Duration) {}}

	calls := 0
	if err := r.Do("ok", func() error {
		calls++
		if calls < 2 {
			return errors.New("flaky")
		}
		return nil
	}); err != nil || calls != 2 {
		t.Fatalf("expected success on second call, got %v after %d", err, calls)
	}

	calls = 0
	err := r.Do("fatal", func() error {
		calls++
		return apperror.New(apperror.LedgerIO, "disk full")
	})
	if calls != 1 || !apperror.IsFatal(err) {
		t.Fatalf("fatal error should not be retried, calls=%d err=%v", calls, err)
	}
}
