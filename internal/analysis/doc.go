// Package analysis characterises the recorded series of a run.
//
//   - [Spectrum] and [DominantFrequency]: how fast a garment swings, from
//     the centroid height or kinetic energy series
//   - [SettleTime]: when the cloth comes to rest
//   - [Portrait] and [PortraitASCII]: one series against another, e.g.
//     strain against kinetic energy
//
// Series are sampled once per frame at a fixed dt:
//
//	hz, power := analysis.DominantFrequency(centroid, dt)
package analysis
