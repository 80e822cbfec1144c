// Package scale converts design-time pixel sizes into device pixel sizes.
//
// Sizes are authored against a reference viewport (375×812). A Scaler holds
// a Geometry snapshot (reference, current screen, pixel ratio) and its
// methods are pure functions of their argument and that snapshot:
//
//	s := scale.New(scale.Geometry{
//	    Reference:  scale.Reference,
//	    Screen:     scale.Size{Width: 390, Height: 844},
//	    PixelRatio: 3,
//	})
//	s.Scale(16)              // 16.64
//	s.ModerateScale(16, 0.5) // 16.32
//
// The process-wide snapshot is set once with Init during startup; the
// package-level functions read it. Before Init they scale against the
// reference viewport, which makes them an identity.
//
// Inputs are not validated: non-finite or negative sizes propagate through
// the arithmetic unchanged.
package scale
