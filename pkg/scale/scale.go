package scale

import (
	"errors"
	"fmt"
	"math"
)

// DefaultModerateFactor is the damping factor used by Moderate.
const DefaultModerateFactor = 0.5

// Size is a width and height in logical pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Reference is the design viewport all authored sizes are expressed against.
var Reference = Size{Width: 375, Height: 812}

// ErrInvalidGeometry is returned by Geometry.Validate.
var ErrInvalidGeometry = errors.New("scale: invalid geometry")

// Geometry is an immutable screen snapshot.
type Geometry struct {
	Reference  Size    `json:"reference"`
	Screen     Size    `json:"screen"`
	PixelRatio float64 `json:"pixelRatio"`
}

// ReferenceGeometry returns a geometry whose screen is the reference
// viewport at a pixel ratio of 1.
func ReferenceGeometry() Geometry {
	return Geometry{Reference: Reference, Screen: Reference, PixelRatio: 1}
}

// Validate rejects geometries with non-positive or non-finite dimensions.
// Scaler never calls it; it is meant for configuration boundaries.
func (g Geometry) Validate() error {
	check := func(name string, v float64) error {
		if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			return fmt.Errorf("%w: %s must be a positive number, got %v", ErrInvalidGeometry, name, v)
		}
		return nil
	}
	for _, c := range []struct {
		name string
		v    float64
	}{
		{"reference width", g.Reference.Width},
		{"reference height", g.Reference.Height},
		{"screen width", g.Screen.Width},
		{"screen height", g.Screen.Height},
		{"pixel ratio", g.PixelRatio},
	} {
		if err := check(c.name, c.v); err != nil {
			return err
		}
	}
	return nil
}

// Scaler scales design sizes for one geometry snapshot.
// The zero value scales against the reference viewport.
type Scaler struct {
	geometry Geometry
}

// New returns a scaler for g. A zero reference falls back to Reference.
func New(g Geometry) Scaler {
	if g.Reference == (Size{}) {
		g.Reference = Reference
	}
	return Scaler{geometry: g}
}

// Geometry returns the snapshot the scaler was built from.
func (s Scaler) Geometry() Geometry {
	if s.geometry == (Geometry{}) {
		return ReferenceGeometry()
	}
	return s.geometry
}

// Scale scales size by the ratio of screen width to reference width.
func (s Scaler) Scale(size float64) float64 {
	g := s.Geometry()
	return size * (g.Screen.Width / g.Reference.Width)
}

// VerticalScale scales size by the ratio of screen height to reference
// height.
func (s Scaler) VerticalScale(size float64) float64 {
	g := s.Geometry()
	return size * (g.Screen.Height / g.Reference.Height)
}

// ModerateScale moves size towards Scale(size) by factor. A factor of 0
// returns size, a factor of 1 returns Scale(size).
func (s Scaler) ModerateScale(size, factor float64) float64 {
	return size + (s.Scale(size)-size)*factor
}

// Moderate is ModerateScale with DefaultModerateFactor.
func (s Scaler) Moderate(size float64) float64 {
	return s.ModerateScale(size, DefaultModerateFactor)
}

// ResponsiveFontSize returns Scale(size) snapped to the nearest physical
// pixel, expressed in logical pixels. Ties round away from zero. A pixel
// ratio that is not positive counts as 1.
func (s Scaler) ResponsiveFontSize(size float64) float64 {
	ratio := s.Geometry().PixelRatio
	if !(ratio > 0) {
		ratio = 1
	}
	return math.Round(s.Scale(size)*ratio) / ratio
}
