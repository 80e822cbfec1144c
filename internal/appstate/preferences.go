package appstate

import (
	"fmt"
	"slices"

	"golang.org/x/text/language"

	"github.com/sakinah-dev/sakinah/pkg/store"
)

// PreferencesStoreName is the registry name of the preferences store.
const PreferencesStoreName = "preferences"

// CalculationMethod is the prayer time calculation convention.
type CalculationMethod string

const (
	MethodMWL     CalculationMethod = "MWL"
	MethodISNA    CalculationMethod = "ISNA"
	MethodEgypt   CalculationMethod = "Egypt"
	MethodMakkah  CalculationMethod = "Makkah"
	MethodKarachi CalculationMethod = "Karachi"
	MethodTehran  CalculationMethod = "Tehran"
	MethodJafari  CalculationMethod = "Jafari"
)

// CalculationMethods lists every supported method.
var CalculationMethods = []CalculationMethod{
	MethodMWL, MethodISNA, MethodEgypt, MethodMakkah, MethodKarachi, MethodTehran, MethodJafari,
}

// Madhab selects the Asr juristic convention.
type Madhab string

const (
	MadhabShafi  Madhab = "shafi"
	MadhabHanafi Madhab = "hanafi"
)

const (
	minHijriAdjustment = -2
	maxHijriAdjustment = 2

	// NameCount is the number of Asma ul Husna.
	NameCount = 99
)

// PreferencesState holds user settings.
type PreferencesState struct {
	Language          string            `json:"language"`
	CalculationMethod CalculationMethod `json:"calculationMethod"`
	Madhab            Madhab            `json:"madhab"`
	HijriAdjustment   int               `json:"hijriAdjustment"`
	Notifications     bool              `json:"notifications"`
	FavoriteDuas      []int             `json:"favoriteDuas"`
	FavoriteNames     []int             `json:"favoriteNames"`
}

// DefaultPreferences returns the declared defaults of the preferences store.
func DefaultPreferences() PreferencesState {
	return PreferencesState{
		Language:          "en",
		CalculationMethod: MethodMWL,
		Madhab:            MadhabShafi,
		Notifications:     true,
		FavoriteDuas:      []int{},
		FavoriteNames:     []int{},
	}
}

// PreferenceActions change the preferences store.
type PreferenceActions struct {
	set store.Setter[PreferencesState]
}

// NewPreferencesStore creates the preferences store and its actions.
func NewPreferencesStore(opts ...store.Option) (*store.Store[PreferencesState], PreferenceActions) {
	return store.Create(PreferencesStoreName, func(set store.Setter[PreferencesState]) (PreferencesState, PreferenceActions) {
		return DefaultPreferences(), PreferenceActions{set: set}
	}, opts...)
}

// CanonicalLanguage parses a BCP 47 tag and returns its canonical form.
func CanonicalLanguage(tag string) (string, error) {
	t, err := language.Parse(tag)
	if err != nil {
		return "", fmt.Errorf("%w: language %q: %v", ErrInvalidValue, tag, err)
	}
	return t.String(), nil
}

// SetLanguage sets the UI language from a BCP 47 tag.
func (a PreferenceActions) SetLanguage(tag string) error {
	lang, err := CanonicalLanguage(tag)
	if err != nil {
		return err
	}
	return a.set.Named("setLanguage").Merge(store.Patch{"Language": lang})
}

// SetCalculationMethod sets the prayer time convention.
func (a PreferenceActions) SetCalculationMethod(m CalculationMethod) error {
	if !slices.Contains(CalculationMethods, m) {
		return fmt.Errorf("%w: calculation method %q", ErrInvalidValue, m)
	}
	return a.set.Named("setCalculationMethod").Merge(store.Patch{"CalculationMethod": m})
}

// SetMadhab sets the Asr convention.
func (a PreferenceActions) SetMadhab(m Madhab) error {
	if m != MadhabShafi && m != MadhabHanafi {
		return fmt.Errorf("%w: madhab %q", ErrInvalidValue, m)
	}
	return a.set.Named("setMadhab").Merge(store.Patch{"Madhab": m})
}

// SetHijriAdjustment shifts the Hijri date by -2 to 2 days.
func (a PreferenceActions) SetHijriAdjustment(days int) error {
	if days < minHijriAdjustment || days > maxHijriAdjustment {
		return fmt.Errorf("%w: hijri adjustment %d outside [%d, %d]", ErrInvalidValue, days, minHijriAdjustment, maxHijriAdjustment)
	}
	return a.set.Named("setHijriAdjustment").Merge(store.Patch{"HijriAdjustment": days})
}

// SetNotifications turns reminders on or off.
func (a PreferenceActions) SetNotifications(on bool) error {
	return a.set.Named("setNotifications").Merge(store.Patch{"Notifications": on})
}

// ToggleFavoriteDua adds or removes a dua from the favorites.
func (a PreferenceActions) ToggleFavoriteDua(id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: dua id %d", ErrInvalidValue, id)
	}
	return a.set.Named("toggleFavoriteDua").Update(func(s PreferencesState) PreferencesState {
		s.FavoriteDuas = toggle(s.FavoriteDuas, id)
		return s
	})
}

// ToggleFavoriteName adds or removes one of the 99 names from the favorites.
func (a PreferenceActions) ToggleFavoriteName(n int) error {
	if n < 1 || n > NameCount {
		return fmt.Errorf("%w: name number %d outside [1, %d]", ErrInvalidValue, n, NameCount)
	}
	return a.set.Named("toggleFavoriteName").Update(func(s PreferencesState) PreferencesState {
		s.FavoriteNames = toggle(s.FavoriteNames, n)
		return s
	})
}

// ResetPreferences restores every preference to its default.
func (a PreferenceActions) ResetPreferences() error {
	return a.set.Named("resetPreferences").Reset(nil)
}

// toggle returns a new slice with v removed if present, appended otherwise.
// ids is never modified; subscribers may still hold it.
func toggle(ids []int, v int) []int {
	if i := slices.Index(ids, v); i >= 0 {
		out := make([]int, 0, len(ids)-1)
		out = append(out, ids[:i]...)
		return append(out, ids[i+1:]...)
	}
	out := make([]int, 0, len(ids)+1)
	out = append(out, ids...)
	return append(out, v)
}
