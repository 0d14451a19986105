// Package preferences keeps the theme and display language consistent
// across every instance sharing the same storage. Explicit changes, operating
// system theme changes and changes written by other instances all converge
// on the persisted value.
package preferences

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/events"
	"github.com/utafrali/storefront/internal/storage"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/middleware"
)

// Theme is the color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme accepts exactly "light" or "dark".
func ParseTheme(s string) (Theme, bool) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), true
	}
	return "", false
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// MaxPollInterval bounds the polling fallback.
const MaxPollInterval = time.Second

// DefaultPollInterval is used when no interval is configured.
const DefaultPollInterval = 500 * time.Millisecond

// Options configure a Synchronizer.
type Options struct {
	PollInterval    time.Duration
	DefaultLanguage domain.Language
}

// State is the current theme and language.
type State struct {
	Theme     Theme  `json:"theme"`
	Language  string `json:"language"`
	Direction string `json:"direction"`
	// ThemeStored is false while the theme follows the operating system.
	ThemeStored bool `json:"themeStored"`
}

// Synchronizer owns the theme and language of the session.
type Synchronizer struct {
	store        storage.Store
	bus          *events.Bus
	logger       *slog.Logger
	pollInterval time.Duration
	defaultLang  domain.Language

	mu          sync.RWMutex
	theme       Theme
	lang        domain.Language
	themeStored bool
	systemDark  bool
}

// New creates a synchronizer. Call Init before use.
func New(store storage.Store, bus *events.Bus, logger *slog.Logger, opts Options) *Synchronizer {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	interval = min(interval, MaxPollInterval)

	lang := opts.DefaultLanguage
	if lang == "" {
		lang = domain.English
	}
	return &Synchronizer{
		store:        store,
		bus:          bus,
		logger:       logger,
		pollInterval: interval,
		defaultLang:  lang,
		theme:        ThemeLight,
		lang:         lang,
	}
}

// Init loads the persisted preferences without publishing events. A missing
// or invalid stored theme follows the operating system preference.
func (s *Synchronizer) Init(ctx context.Context, systemDark bool) error {
	s.mu.Lock()
	s.systemDark = systemDark
	s.mu.Unlock()

	theme, stored, err := s.storedTheme(ctx)
	if err != nil {
		return err
	}
	lang, err := s.storedLanguage(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.themeStored = stored
	s.theme = theme
	s.lang = lang
	return nil
}

// State returns the current preferences.
func (s *Synchronizer) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Theme:       s.theme,
		Language:    string(s.lang),
		Direction:   s.lang.Direction(),
		ThemeStored: s.themeStored,
	}
}

// Theme returns the active theme.
func (s *Synchronizer) Theme() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// Language returns the active language.
func (s *Synchronizer) Language() domain.Language {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lang
}

// SetTheme persists an explicit theme choice.
func (s *Synchronizer) SetTheme(ctx context.Context, t Theme) error {
	if _, ok := ParseTheme(string(t)); !ok {
		return apperrors.InvalidInput(fmt.Sprintf("unknown theme %q", t))
	}
	if err := s.store.Set(ctx, storage.KeyTheme, string(t)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	s.applyTheme(ctx, t, true)
	return nil
}

// ToggleTheme switches between light and dark and persists the result.
func (s *Synchronizer) ToggleTheme(ctx context.Context) (Theme, error) {
	next := s.Theme().Toggle()
	if err := s.SetTheme(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}

// SetSystemTheme records an operating system theme change. It only takes
// effect while no explicit theme is stored.
func (s *Synchronizer) SetSystemTheme(ctx context.Context, dark bool) error {
	s.mu.Lock()
	s.systemDark = dark
	s.mu.Unlock()

	_, stored, err := s.storedTheme(ctx)
	if err != nil {
		return err
	}
	if stored {
		return nil
	}
	s.applyTheme(ctx, systemTheme(dark), false)
	return nil
}

// SetLanguage persists the display language, "en" or "ar".
func (s *Synchronizer) SetLanguage(ctx context.Context, lang string) error {
	if lang != string(domain.English) && lang != string(domain.Arabic) {
		return apperrors.InvalidInput(fmt.Sprintf("unsupported language %q", lang))
	}
	if err := s.store.Set(ctx, storage.KeyLanguage, lang); err != nil {
		return fmt.Errorf("save language: %w", err)
	}
	s.applyLanguage(ctx, domain.Language(lang))
	return nil
}

// Sync re-reads both preferences from storage and applies any difference.
func (s *Synchronizer) Sync(ctx context.Context) error {
	theme, stored, err := s.storedTheme(ctx)
	if err != nil {
		return err
	}
	s.applyTheme(ctx, theme, stored)

	lang, err := s.storedLanguage(ctx)
	if err != nil {
		return err
	}
	s.applyLanguage(ctx, lang)
	return nil
}

// Run keeps the preferences in sync with storage until ctx is done. It
// subscribes to w when it is non-nil and always polls, since writes made
// through this instance's own Store are not reported by its watcher.
func (s *Synchronizer) Run(ctx context.Context, w storage.Watcher) {
	var changes <-chan storage.Change
	if w != nil {
		ch, err := w.Watch(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "storage watch unavailable, polling only", slog.String("error", err.Error()))
		} else {
			changes = ch
		}
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncLogged(ctx)
		case c, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			if c.Key == storage.KeyTheme || c.Key == storage.KeyLanguage {
				s.syncLogged(ctx)
			}
		}
	}
}

func (s *Synchronizer) syncLogged(ctx context.Context) {
	if err := s.Sync(ctx); err != nil && ctx.Err() == nil {
		s.logger.WarnContext(ctx, "preference sync failed", slog.String("error", err.Error()))
	}
}

// storedTheme returns the persisted theme, or the system theme with
// stored=false when none is persisted.
func (s *Synchronizer) storedTheme(ctx context.Context) (Theme, bool, error) {
	v, ok, err := storage.Lookup(ctx, s.store, storage.KeyTheme)
	if err != nil {
		return "", false, fmt.Errorf("read theme: %w", err)
	}
	if ok {
		if t, valid := ParseTheme(v); valid {
			return t, true, nil
		}
	}
	s.mu.RLock()
	dark := s.systemDark
	s.mu.RUnlock()
	return systemTheme(dark), false, nil
}

func (s *Synchronizer) storedLanguage(ctx context.Context) (domain.Language, error) {
	v, ok, err := storage.Lookup(ctx, s.store, storage.KeyLanguage)
	if err != nil {
		return "", fmt.Errorf("read language: %w", err)
	}
	if ok {
		if code := middleware.Match(v); code != "" {
			return domain.Language(code), nil
		}
	}
	return s.defaultLang, nil
}

func (s *Synchronizer) applyTheme(ctx context.Context, t Theme, stored bool) {
	s.mu.Lock()
	changed := s.theme != t
	s.theme = t
	s.themeStored = stored
	s.mu.Unlock()

	if changed {
		s.logger.DebugContext(ctx, "theme changed", slog.String("theme", string(t)))
		s.bus.Publish(ctx, events.ThemeChanged, events.ThemeChangedPayload{Theme: string(t)})
	}
}

func (s *Synchronizer) applyLanguage(ctx context.Context, lang domain.Language) {
	s.mu.Lock()
	changed := s.lang != lang
	s.lang = lang
	s.mu.Unlock()

	if changed {
		s.logger.DebugContext(ctx, "language changed", slog.String("language", string(lang)))
		s.bus.Publish(ctx, events.LanguageChanged, events.LanguageChangedPayload{
			Language:  string(lang),
			Direction: lang.Direction(),
		})
	}
}

func systemTheme(dark bool) Theme {
	if dark {
		return ThemeDark
	}
	return ThemeLight
}
