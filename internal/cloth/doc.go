// Package cloth implements a position based dynamics (PBD) cloth solver for
// draping garment meshes over a tracked body.
//
// The package is organised around a single [Engine] that exclusively owns
// all simulation state:
//
//   - [Particle]: point mass with position, previous position and velocity
//   - [Constraint]: distance constraint derived from mesh edges
//   - [Handle]: opaque garment identity issued by [Engine.AddGarment]
//   - [Sphere]: landmark sphere used to approximate the body surface
//   - [BodyBuffer]: double-buffered landmark handoff between goroutines
//
// # Example
//
//	eng := cloth.New()
//	_ = eng.Initialize(cloth.DefaultConfig())
//	h, _ := eng.AddGarment(mesh)
//	eng.UpdateCollisionBody(landmarks)
//	_, _ = eng.Step(1.0 / 60)
//	positions, _ := eng.Positions(h)
//
// # Thread Safety
//
// Engine instances are NOT thread-safe. Step must not be called concurrently
// on the same engine. Landmarks produced on another goroutine should be
// passed through a [BodyBuffer] and applied with [Engine.UpdateCollisionBody]
// from the goroutine that steps the engine.
package cloth
