package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/zalando/go-keyring"

	"extranet_rates/apperror"
	"extranet_rates/config"
	"extranet_rates/surface/surfacetest"
)

const (
	testLoginURL = "https://admin.booking.com/hotel/hoteladmin/"
	testHomeURL  = "https://admin.booking.com/hotel/hoteladmin/extranet_ng/manage/home.html"
	testSignIn   = "https://account.booking.com/sign-in?op_token=abc"
)

type fixedPrompter struct {
	code  string
	err   error
	calls int
}

func (p *fixedPrompter) PromptCode(ctx context.Context) (string, error) {
	p.calls++
	return p.code, p.err
}

// loginPage scripts the sign-in screens. The second submit click lands on
// the admin home page.
func loginPage(withCode bool) *surfacetest.Surface {
	fake := surfacetest.New()
	fake.OnNavigate = func(string) { fake.URL = testSignIn }
	fake.Add(&surfacetest.Element{Selector: usernameField, Visible: true})
	fake.Add(&surfacetest.Element{Selector: nextButton, Visible: true})
	fake.Add(&surfacetest.Element{Selector: passwordField, Visible: true})
	if withCode {
		fake.Add(&surfacetest.Element{Selector: codeField, Visible: true})
	}

	submits := 0
	fake.Add(&surfacetest.Element{Selector: submitButton, Visible: true, OnClick: func() {
		submits++
		if submits == 2 {
			fake.URL = testHomeURL
		}
	}})
	return fake
}

func newFlow(fake *surfacetest.Surface, p CodePrompter) *LoginFlow {
	return &LoginFlow{
		Surface:  fake,
		LoginURL: testLoginURL,
		Prompter: p,
		pause:    func(time.Duration) {},
	}
}

func TestLoginFlowSucceeds(t *testing.T) {
	fake := loginPage(true)
	p := &fixedPrompter{code: "123456"}

	err := newFlow(fake, p).Run(context.Background(), Credentials{Username: "hotel", Password: "secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if p.calls != 1 {
		t.Fatalf("expected one code prompt, got %d", p.calls)
	}
	if v := fake.Lookup(usernameField)[0].Value; v != "hotel" {
		t.Fatalf("username = %q", v)
	}
	if v := fake.Lookup(passwordField)[0].Value; v != "secret" {
		t.Fatalf("password = %q", v)
	}
	if v := fake.Lookup(codeField)[0].Value; v != "123456" {
		t.Fatalf("code = %q", v)
	}
	if fake.Count("key", "") != 0 {
		t.Fatal("expected submit button, not Enter")
	}
}

func TestLoginFlowClicksPulseLink(t *testing.T) {
	fake := loginPage(true)
	fake.Add(&surfacetest.Element{Selector: pulseLink, Visible: true})

	if err := newFlow(fake, &fixedPrompter{code: "1"}).Run(context.Background(), Credentials{Username: "u", Password: "p"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if fake.Count("click", pulseLink) != 1 {
		t.Fatal("expected the pulse verification link to be clicked")
	}
}

func TestLoginFlowMissingCodeField(t *testing.T) {
	fake := loginPage(false)
	p := &fixedPrompter{code: "123456"}

	err := newFlow(fake, p).Run(context.Background(), Credentials{Username: "u", Password: "p"})
	if !apperror.Is(err, apperror.SessionBootstrap) {
		t.Fatalf("expected %s, got %v", apperror.SessionBootstrap, err)
	}
	if p.calls != 0 {
		t.Fatal("code must not be requested when the field never appears")
	}
}

func TestLoginFlowPromptFailure(t *testing.T) {
	fake := loginPage(true)
	p := &fixedPrompter{err: context.Canceled}

	err := newFlow(fake, p).Run(context.Background(), Credentials{Username: "u", Password: "p"})
	if !apperror.Is(err, apperror.SessionBootstrap) {
		t.Fatalf("expected %s, got %v", apperror.SessionBootstrap, err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected the prompt error in the chain, got %v", err)
	}
}

func TestLoginFlowStuckOnLoginPage(t *testing.T) {
	fake := loginPage(true)
	fake.Lookup(submitButton)[0].OnClick = nil

	err := newFlow(fake, &fixedPrompter{code: "1"}).Run(context.Background(), Credentials{Username: "u", Password: "p"})
	if !apperror.Is(err, apperror.SessionBootstrap) {
		t.Fatalf("expected %s, got %v", apperror.SessionBootstrap, err)
	}
	if !strings.Contains(err.Error(), "still at") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIsAdminURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{testHomeURL, true},
		{"https://admin.booking.com/dashboard", true},
		{"https://account.booking.com/sign-in", false},
		{"https://admin.booking.com/login", false},
	}
	for _, tt := range tests {
		if got := isAdminURL(tt.url); got != tt.want {
			t.Errorf("isAdminURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestConsolePrompterReadsLine(t *testing.T) {
	var out strings.Builder
	p := ConsolePrompter{In: strings.NewReader(" 654321 \n"), Out: &out}

	code, err := p.PromptCode(context.Background())
	if err != nil {
		t.Fatalf("prompt: %v", err)
	}
	if code != "654321" {
		t.Fatalf("code = %q", code)
	}
	if !strings.Contains(out.String(), "2FA") {
		t.Fatalf("prompt text missing: %q", out.String())
	}
}

func TestConsolePrompterEmptyInput(t *testing.T) {
	p := ConsolePrompter{In: strings.NewReader(""), Out: io.Discard}
	if _, err := p.PromptCode(context.Background()); err == nil {
		t.Fatal("expected an error for empty input")
	}
}

func TestConsolePrompterCancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := ConsolePrompter{In: r, Out: io.Discard}
	if _, err := p.PromptCode(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestResolveCredentialsPrefersEnvironment(t *testing.T) {
	keyring.MockInit()
	if err := StorePassword("hotel", "from-keyring"); err != nil {
		t.Fatalf("store: %v", err)
	}

	creds, err := ResolveCredentials(config.SessionConfig{Username: "hotel", Password: "from-env"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if creds.Password != "from-env" {
		t.Fatalf("password = %q", creds.Password)
	}
}

func TestResolveCredentialsFallsBackToKeyring(t *testing.T) {
	keyring.MockInit()
	if err := StorePassword("hotel", "from-keyring"); err != nil {
		t.Fatalf("store: %v", err)
	}

	creds, err := ResolveCredentials(config.SessionConfig{Username: "hotel"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if creds.Password != "from-keyring" {
		t.Fatalf("password = %q", creds.Password)
	}
}

func TestResolveCredentialsMissing(t *testing.T) {
	keyring.MockInit()

	_, err := ResolveCredentials(config.SessionConfig{Username: "nobody"})
	if !apperror.Is(err, apperror.SessionBootstrap) {
		t.Fatalf("expected %s, got %v", apperror.SessionBootstrap, err)
	}

	_, err = ResolveCredentials(config.SessionConfig{})
	if !apperror.Is(err, apperror.SessionBootstrap) {
		t.Fatalf("expected %s without a username, got %v", apperror.SessionBootstrap, err)
	}
}
