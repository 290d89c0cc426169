package session

import (
	"context"
	"log"
	"sync"

	"github.com/playwright-community/playwright-go"

	"extranet_rates/apperror"
	"extranet_rates/config"
	"extranet_rates/surface"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var launchArgs = []string{
	"--no-sandbox",
	"--disable-blink-features=AutomationControlled",
	"--disable-web-security",
	"--disable-features=VizDisplayCompositor",
}

// Session owns the browser for one run: a single context with a single page.
type Session struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	surface *surface.Playwright
}

// Launch starts Chromium and opens the page the run will drive.
func Launch(headless bool) (*Session, error) {
	s := &Session{}

	var err error
	s.pw, err = playwright.Run()
	if err != nil {
		return nil, apperror.Wrap(apperror.SessionBootstrap, "failed to start playwright", err)
	}

	s.browser, err = s.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args:     launchArgs,
	})
	if err != nil {
		s.Close()
		return nil, apperror.Wrap(apperror.SessionBootstrap, "failed to launch browser", err)
	}

	s.context, err = s.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:  playwright.String(userAgent),
		Viewport:   &playwright.Size{Width: 1920, Height: 1080},
		Locale:     playwright.String("en-US"),
		TimezoneId: playwright.String("UTC"),
		ExtraHttpHeaders: map[string]string{
			"Accept-Language": "en-US,en;q=0.9",
			"Accept-Encoding": "gzip, deflate, br",
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		},
	})
	if err != nil {
		s.Close()
		return nil, apperror.Wrap(apperror.SessionBootstrap, "failed to create browser context", err)
	}

	s.page, err = s.context.NewPage()
	if err != nil {
		s.Close()
		return nil, apperror.Wrap(apperror.SessionBootstrap, "failed to create page", err)
	}
	s.surface = surface.NewPlaywright(s.page)

	log.Printf("Browser started (headless=%v)", headless)
	return s, nil
}

// Bootstrap launches the browser and signs in. The returned session is ready
// for the calendar to be opened.
func Bootstrap(ctx context.Context, cfg config.SessionConfig, prompter CodePrompter) (*Session, error) {
	creds, err := ResolveCredentials(cfg)
	if err != nil {
		return nil, err
	}

	s, err := Launch(cfg.Headless)
	if err != nil {
		return nil, err
	}

	flow := &LoginFlow{
		Surface:  s.surface,
		LoginURL: cfg.LoginURL,
		Prompter: prompter,
	}
	if err := flow.Run(ctx, creds); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) Surface() *surface.Playwright {
	return s.surface
}

func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page != nil {
		s.page.Close()
		s.page = nil
	}
	if s.context != nil {
		s.context.Close()
		s.context = nil
	}
	if s.browser != nil {
		s.browser.Close()
		s.browser = nil
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			log.Printf("Warning: failed to stop playwright: %v", err)
		}
		s.pw = nil
	}
}
