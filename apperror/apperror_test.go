package apperror

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestKindOfWrapped(t *testing.T) {
	base := Wrap(LedgerIO, "persist ledger", os.ErrPermission)
	err := fmt.Errorf("room 100: %w", base)

	if KindOf(err) != LedgerIO {
		t.Fatalf("expected %s, got %q", LedgerIO, KindOf(err))
	}
	if !IsFatal(err) {
		t.Fatal("ledger errors must be fatal")
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Fatal("expected cause to be reachable through Unwrap")
	}
}

func TestNonFatalKinds(t *testing.T) {
	for _, k := range []Kind{ParseError, SelectorNotFound, SaveRejected, Verification, ModalLifecycle} {
		if IsFatal(New(k, "x")) {
			t.Errorf("%s should not be fatal", k)
		}
	}
	if !IsFatal(New(SessionBootstrap, "login")) {
		t.Error("session bootstrap should be fatal")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("plain errors have no kind")
	}
}

func TestErrorMessage(t *testing.T) {
	err := Wrap(SaveRejected, "inventory save", errors.New("banner: Something went wrong"))
	if err.Error() != "inventory save: banner: Something went wrong" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if New(ParseError, "bad range").Error() != "bad range" {
		t.Fatal("unexpected message without cause")
	}
}
