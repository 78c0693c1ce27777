// Package browser connects the reply pipeline to a live Chrome tab through
// the DevTools protocol.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/zap"
)

// DefaultURLMatch limits activation to LinkedIn tabs.
const DefaultURLMatch = "linkedin.com"

// ErrNoTab is returned when no open tab matches the URL filter.
var ErrNoTab = errors.New("no matching tab is open")

// Config describes how to reach the browser.
type Config struct {
	// ControlURL is a DevTools websocket URL or an http://host:port debugging endpoint.
	// When empty a local browser is launched.
	ControlURL  string `mapstructure:"control-url"`
	Bin         string `mapstructure:"bin"`
	Headless    bool   `mapstructure:"headless"`
	UserDataDir string `mapstructure:"user-data-dir"`
	URLMatch    string `mapstructure:"url-match"`
}

// Session is a connected browser.
type Session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	urlMatch string
	logger   *zap.Logger
}

// Connect attaches to the configured browser, launching one if needed.
func Connect(ctx context.Context, cfg Config, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{urlMatch: cfg.URLMatch, logger: logger}
	if strings.TrimSpace(s.urlMatch) == "" {
		s.urlMatch = DefaultURLMatch
	}

	controlURL := strings.TrimSpace(cfg.ControlURL)
	switch {
	case controlURL == "":
		l := launcher.New().Headless(cfg.Headless)
		if cfg.Bin != "" {
			l = l.Bin(cfg.Bin)
		}
		if cfg.UserDataDir != "" {
			l = l.UserDataDir(cfg.UserDataDir)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		s.launcher = l
		controlURL = u
	case !strings.HasPrefix(controlURL, "ws"):
		u, err := launcher.ResolveURL(controlURL)
		if err != nil {
			return nil, fmt.Errorf("resolve control url %q: %w", controlURL, err)
		}
		controlURL = u
	}

	// rod's ControlURL path panics on dial errors; dial explicitly to get an error back.
	ws := &cdp.WebSocket{}
	if err := ws.Connect(ctx, controlURL, nil); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("dial %s: %w", controlURL, err)
	}

	b := rod.New().Client(cdp.New().Start(ws)).Context(ctx)
	if err := b.Connect(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}
	s.browser = b

	logger.Debug("connected to browser", zap.String("control_url", controlURL))
	return s, nil
}

// FindTab returns the first open tab whose URL matches the session's filter.
func (s *Session) FindTab(ctx context.Context) (*Page, error) {
	pages, err := s.browser.Context(ctx).Pages()
	if err != nil {
		return nil, fmt.Errorf("list tabs: %w", err)
	}

	for _, p := range pages {
		info, err := p.Info()
		if err != nil {
			s.logger.Debug("reading tab info", zap.Error(err))
			continue
		}
		if matchesURL(info.URL, s.urlMatch) {
			s.logger.Info("using tab", zap.String("url", info.URL), zap.String("title", info.Title))
			return NewPage(p), nil
		}
	}

	return nil, fmt.Errorf("%w: url must contain %q", ErrNoTab, s.urlMatch)
}

// Close disconnects from the browser and stops it if this session launched it.
func (s *Session) Close() error {
	var err error
	if s.launcher != nil && s.browser != nil {
		err = s.browser.Close()
	}
	s.cleanup()
	return err
}

func (s *Session) cleanup() {
	if s.launcher != nil {
		s.launcher.Cleanup()
	}
}

func matchesURL(url, match string) bool {
	return match != "" && strings.Contains(strings.ToLower(url), strings.ToLower(match))
}
