// Package viz draws try-on sessions in the terminal.
//
// Frames are rasterised onto a [Canvas] of braille cells, each cell
// holding a 2x4 grid of dots. A [Camera] orbits the body and projects
// world points onto the canvas. [Scene] implements session.Renderer so a
// session can draw into it every frame, and [Model] is the interactive
// Bubble Tea viewer built on top of it.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Try on the next catalog garment
//	D     - Take off the most recent garment
//	C     - Clear every garment
//	M     - Cycle body motion
//	F     - Gust of wind
//	Arrows/HJKL - Orbit camera
//	+/-   - Zoom
//	B     - Toggle skeleton
//	T     - Cycle themes
//	G     - Toggle GIF recording
//	R     - Restart the scenario
//	?     - Help overlay
package viz
