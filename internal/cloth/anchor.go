package cloth

import "math"

// collarAnchors binds the collar of a garment to the shoulders. Vertices in
// the top AnchorBand of the mesh height are candidates. With a tracked body,
// every candidate within AnchorRadius of a shoulder binds to the nearest one.
// Otherwise, or when nothing is close enough, the outermost candidate on each
// side binds to that side's shoulder (+x is the left shoulder).
func collarAnchors(verts []Vec3, body []Vec3, cfg Config) map[int]Landmark {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, v := range verts {
		minX, maxX = math.Min(minX, v.X()), math.Max(maxX, v.X())
		minY, maxY = math.Min(minY, v.Y()), math.Max(maxY, v.Y())
	}
	threshold := maxY - cfg.AnchorBand*(maxY-minY) - Epsilon

	candidates := make([]int, 0)
	for i, v := range verts {
		if v.Y() >= threshold {
			candidates = append(candidates, i)
		}
	}

	anchors := make(map[int]Landmark)
	left, okL := LandmarkAt(body, LeftShoulder)
	right, okR := LandmarkAt(body, RightShoulder)
	if okL && okR {
		for _, i := range candidates {
			dl := verts[i].Sub(left).Len()
			dr := verts[i].Sub(right).Len()
			l, d := LeftShoulder, dl
			if dr < dl {
				l, d = RightShoulder, dr
			}
			if d <= cfg.AnchorRadius {
				anchors[i] = l
			}
		}
		if len(anchors) > 0 {
			return anchors
		}
	}

	lo, hi := candidates[0], candidates[0]
	for _, i := range candidates {
		if verts[i].X() < verts[lo].X() {
			lo = i
		}
		if verts[i].X() > verts[hi].X() {
			hi = i
		}
	}
	if lo == hi {
		if verts[lo].X() >= (minX+maxX)/2 {
			anchors[lo] = LeftShoulder
		} else {
			anchors[lo] = RightShoulder
		}
		return anchors
	}
	anchors[hi] = LeftShoulder
	anchors[lo] = RightShoulder
	return anchors
}
