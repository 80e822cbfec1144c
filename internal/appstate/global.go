package appstate

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/sakinah-dev/sakinah/pkg/store"
)

// GlobalStoreName is the registry name of the global store.
const GlobalStoreName = "global"

// ErrInvalidValue is returned by actions given a value outside their domain.
var ErrInvalidValue = errors.New("appstate: invalid value")

// ColorScheme selects light or dark rendering.
type ColorScheme string

const (
	ColorSchemeSystem ColorScheme = "system"
	ColorSchemeLight  ColorScheme = "light"
	ColorSchemeDark   ColorScheme = "dark"
)

// Valid reports whether c is a known scheme.
func (c ColorScheme) Valid() bool {
	switch c {
	case ColorSchemeSystem, ColorSchemeLight, ColorSchemeDark:
		return true
	}
	return false
}

// ThemeTokens are the design tokens applied across screens.
type ThemeTokens struct {
	Primary    string  `json:"primary"`
	Background string  `json:"background"`
	Text       string  `json:"text"`
	Accent     string  `json:"accent"`
	Radius     float64 `json:"radius"`
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// Validate checks that every color is a hex color and the radius is not
// negative.
func (t ThemeTokens) Validate() error {
	colors := map[string]string{
		"primary":    t.Primary,
		"background": t.Background,
		"text":       t.Text,
		"accent":     t.Accent,
	}
	for _, name := range []string{"primary", "background", "text", "accent"} {
		if !hexColor.MatchString(colors[name]) {
			return fmt.Errorf("%w: theme %s color %q", ErrInvalidValue, name, colors[name])
		}
	}
	if t.Radius < 0 {
		return fmt.Errorf("%w: theme radius %v", ErrInvalidValue, t.Radius)
	}
	return nil
}

// DefaultTheme returns the tokens the app ships with.
func DefaultTheme() ThemeTokens {
	return ThemeTokens{
		Primary:    "#1B5E20",
		Background: "#FAF7F0",
		Text:       "#1C1C1C",
		Accent:     "#C9A227",
		Radius:     12,
	}
}

// GlobalState is app-wide UI state.
type GlobalState struct {
	Onboarded   bool        `json:"onboarded"`
	ColorScheme ColorScheme `json:"colorScheme"`
	Theme       ThemeTokens `json:"theme"`
}

// DefaultGlobalState returns the declared defaults of the global store.
func DefaultGlobalState() GlobalState {
	return GlobalState{
		Onboarded:   false,
		ColorScheme: ColorSchemeSystem,
		Theme:       DefaultTheme(),
	}
}

// GlobalActions are the only way to change the global store.
type GlobalActions struct {
	set store.Setter[GlobalState]
}

// NewGlobalStore creates the global store and its actions.
func NewGlobalStore(opts ...store.Option) (*store.Store[GlobalState], GlobalActions) {
	return store.Create(GlobalStoreName, func(set store.Setter[GlobalState]) (GlobalState, GlobalActions) {
		return DefaultGlobalState(), GlobalActions{set: set}
	}, opts...)
}

// SetOnboarded records whether the user finished onboarding.
func (a GlobalActions) SetOnboarded(onboarded bool) error {
	return a.set.Named("setOnboarded").Merge(store.Patch{"Onboarded": onboarded})
}

// SetColorScheme switches the color scheme.
func (a GlobalActions) SetColorScheme(scheme ColorScheme) error {
	if !scheme.Valid() {
		return fmt.Errorf("%w: color scheme %q", ErrInvalidValue, scheme)
	}
	return a.set.Named("setColorScheme").Merge(store.Patch{"ColorScheme": scheme})
}

// SetTheme replaces the theme tokens.
func (a GlobalActions) SetTheme(theme ThemeTokens) error {
	if err := theme.Validate(); err != nil {
		return err
	}
	return a.set.Named("setTheme").Merge(store.Patch{"Theme": theme})
}

// ResetGlobalStore restores the defaults but leaves Onboarded set, so a
// reset never sends the user back through onboarding.
func (a GlobalActions) ResetGlobalStore() error {
	return a.set.Named("resetGlobalStore").Reset(store.Patch{"Onboarded": true})
}
