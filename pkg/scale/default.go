package scale

import (
	"errors"
	"fmt"
	"sync"
)

// ErrAlreadyInitialized is returned when Init is called a second time.
var ErrAlreadyInitialized = errors.New("scale: geometry already initialized")

// Provider supplies the device geometry at startup.
type Provider interface {
	ScreenGeometry() (Geometry, error)
}

// Static returns a provider that always yields g.
func Static(g Geometry) Provider {
	return staticProvider(g)
}

type staticProvider Geometry

func (p staticProvider) ScreenGeometry() (Geometry, error) {
	return Geometry(p), nil
}

var (
	defaultMu     sync.RWMutex
	defaultScaler Scaler
	initialized   bool
)

// Init sets the process-wide geometry snapshot. It must be called once,
// before any consumer reads the package-level functions.
func Init(g Geometry) error {
	if err := g.Validate(); err != nil {
		return err
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if initialized {
		return ErrAlreadyInitialized
	}
	defaultScaler = New(g)
	initialized = true
	return nil
}

// InitFrom reads the geometry from p and calls Init.
func InitFrom(p Provider) error {
	g, err := p.ScreenGeometry()
	if err != nil {
		return fmt.Errorf("scale: read screen geometry: %w", err)
	}
	return Init(g)
}

// Default returns the process-wide scaler.
func Default() Scaler {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultScaler
}

// Initialized reports whether Init has run.
func Initialized() bool {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return initialized
}

// Scale scales size with the process-wide snapshot.
func Scale(size float64) float64 { return Default().Scale(size) }

// VerticalScale scales size vertically with the process-wide snapshot.
func VerticalScale(size float64) float64 { return Default().VerticalScale(size) }

// ModerateScale moderates size by factor with the process-wide snapshot.
func ModerateScale(size, factor float64) float64 { return Default().ModerateScale(size, factor) }

// Moderate moderates size by DefaultModerateFactor with the process-wide
// snapshot.
func Moderate(size float64) float64 { return Default().Moderate(size) }

// ResponsiveFontSize snaps a scaled font size with the process-wide snapshot.
func ResponsiveFontSize(size float64) float64 { return Default().ResponsiveFontSize(size) }
