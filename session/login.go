package session

import (
	"context"
	"log"
	"strings"
	"time"

	"extranet_rates/apperror"
	"extranet_rates/surface"
)

const (
	usernameField = `input[name="loginname"]`
	nextButton    = `button[type="submit"] span:text("Next")`
	passwordField = `input[name="password"]`
	submitButton  = `button[type="submit"]`
	pulseLink     = `a.nw-pulse-verification-link`
	codeField     = `input[name="sms_code"]`

	adminHost = "admin.booking.com"
)

// LoginFlow signs in to the extranet and clears the second-factor step.
type LoginFlow struct {
	Surface  surface.Surface
	LoginURL string
	Prompter CodePrompter

	// AdminURL reports whether a URL is inside the signed-in admin area.
	AdminURL func(url string) bool

	pause func(time.Duration)
}

func (f *LoginFlow) sleep(d time.Duration) {
	if f.pause != nil {
		f.pause(d)
		return
	}
	time.Sleep(d)
}

func isAdminURL(url string) bool {
	return strings.Contains(url, "/hoteladmin/") ||
		(strings.Contains(url, adminHost) && !strings.Contains(url, "login"))
}

// Run performs the login. Every failure is a SessionBootstrap error.
func (f *LoginFlow) Run(ctx context.Context, creds Credentials) error {
	if err := f.run(ctx, creds); err != nil {
		if apperror.Is(err, apperror.SessionBootstrap) {
			return err
		}
		return apperror.Wrap(apperror.SessionBootstrap, "login failed", err)
	}
	return nil
}

func (f *LoginFlow) run(ctx context.Context, creds Credentials) error {
	s := f.Surface
	log.Println("Starting login process...")

	if err := s.Navigate(f.LoginURL); err != nil {
		return err
	}
	if err := s.WaitForNetworkIdle(15 * time.Second); err != nil {
		log.Printf("[debug] login page not idle: %v", err)
	}

	user, err := s.WaitFor(usernameField, 5*time.Second)
	if err != nil {
		return apperror.Wrap(apperror.SessionBootstrap, "username field not found", err)
	}
	if err := s.Fill(user, creds.Username); err != nil {
		return err
	}
	log.Println("Username entered")

	next, err := s.WaitFor(nextButton, 5*time.Second)
	if err != nil {
		return apperror.Wrap(apperror.SessionBootstrap, "next button not found", err)
	}
	if err := s.Click(next); err != nil {
		return err
	}
	f.sleep(time.Second)

	pass, err := s.WaitFor(passwordField, 10*time.Second)
	if err != nil {
		return apperror.Wrap(apperror.SessionBootstrap, "password field not found", err)
	}
	if err := s.Fill(pass, creds.Password); err != nil {
		return err
	}
	log.Println("Password entered")

	submit, err := s.WaitFor(submitButton, 5*time.Second)
	if err != nil {
		return apperror.Wrap(apperror.SessionBootstrap, "sign in button not found", err)
	}
	if err := s.Click(submit); err != nil {
		return err
	}
	f.sleep(2 * time.Second)

	if pulse, err := s.WaitFor(pulseLink, 10*time.Second); err == nil {
		if err := s.Click(pulse); err == nil {
			log.Println("Clicked Pulse app verification button")
			f.sleep(3 * time.Second)
		}
	} else {
		log.Println("Pulse app button not found or already clicked")
	}

	if err := f.secondFactor(ctx); err != nil {
		return err
	}

	return f.confirm()
}

func (f *LoginFlow) secondFactor(ctx context.Context) error {
	s := f.Surface

	field, err := s.WaitFor(codeField, 15*time.Second)
	if err != nil {
		return apperror.Wrap(apperror.SessionBootstrap, "2FA code input not found", err)
	}
	log.Println("2FA code input field found")

	code, err := f.Prompter.PromptCode(ctx)
	if err != nil {
		return apperror.Wrap(apperror.SessionBootstrap, "2FA code not provided", err)
	}
	if err := s.Fill(field, code); err != nil {
		return err
	}
	log.Println("2FA code entered")

	if btn, err := s.WaitFor(submitButton, 5*time.Second); err == nil && s.Click(btn) == nil {
		log.Println("2FA code submitted")
	} else {
		if err := s.KeyPress("Enter"); err != nil {
			return err
		}
		log.Println("2FA code submitted via Enter key")
	}
	f.sleep(3 * time.Second)
	return nil
}

// confirm polls the URL until it lands in the admin area.
func (f *LoginFlow) confirm() error {
	admin := f.AdminURL
	if admin == nil {
		admin = isAdminURL
	}

	deadline := 15 * time.Second
	for waited := time.Duration(0); ; waited += 500 * time.Millisecond {
		url := f.Surface.CurrentURL()
		if admin(url) {
			log.Println("Login successful!")
			return nil
		}
		if waited >= deadline {
			return apperror.New(apperror.SessionBootstrap, "login failed, still at "+url)
		}
		f.sleep(500 * time.Millisecond)
	}
}
