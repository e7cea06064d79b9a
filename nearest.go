package korloc

import (
	"math"
	"sort"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// s2CellLevel sets the granularity of the spatial index used by Nearest.
// Level 7 cells are roughly 60-80km across, so a 100km search circle is
// covered by a couple dozen of them.
const s2CellLevel = 7

// maxNearestDistance is ~100km in radians on the unit sphere.
const maxNearestDistance = 0.0157

// cellIndex maps an S2 cell to the locations placed inside it.
type cellIndex map[s2.CellID][]int

// buildCellIndex indexes the locations whose coordinates come from their own
// table entry. Inherited coordinates would pile every neighborhood of a city
// onto the city center.
func buildCellIndex(locs []Location, exact []bool) cellIndex {
	ci := make(cellIndex)
	for i, loc := range locs {
		if !exact[i] || loc.Coordinates == nil {
			continue
		}
		ll := s2.LatLngFromDegrees(loc.Coordinates.Lat, loc.Coordinates.Lon)
		cell := s2.CellIDFromLatLng(ll).Parent(s2CellLevel)
		ci[cell] = append(ci[cell], i)
	}
	return ci
}

// searchCells returns the cells at s2CellLevel that together cover every
// point within maxNearestDistance of q.
func searchCells(q s2.LatLng) []s2.CellID {
	rc := &s2.RegionCoverer{MinLevel: s2CellLevel, MaxLevel: s2CellLevel, MaxCells: 32}
	region := s2.CapFromCenterAngle(s2.PointFromLatLng(q), s1.Angle(maxNearestDistance))
	return rc.Covering(region)
}

type nearCandidate struct {
	idx  int
	dist float64
}

// Nearest returns the closest location with its own coordinates to lat/lon.
// Ties are broken by deeper level, then gazetteer order. Returns false when
// the index isn't built, the input is not a valid position, or nothing lies
// within about 100km.
func (x *Index) Nearest(lat, lon float64) (Location, bool) {
	s := x.snap.Load()
	if s == nil || !validPosition(lat, lon) {
		return Location{}, false
	}

	q := s2.LatLngFromDegrees(lat, lon)
	var candidates []nearCandidate
	for _, cell := range searchCells(q) {
		for _, i := range s.cells[cell] {
			candidates = append(candidates, s.distanceTo(q, i))
		}
	}
	if len(candidates) == 0 {
		return Location{}, false
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		ca, cb := candidates[a], candidates[b]
		if ca.dist != cb.dist {
			return ca.dist < cb.dist
		}
		da, db := s.locations[ca.idx].Level.depth(), s.locations[cb.idx].Level.depth()
		if da != db {
			return da > db
		}
		return ca.idx < cb.idx
	})

	best := candidates[0]
	if best.dist > maxNearestDistance {
		return Location{}, false
	}
	return s.locations[best.idx], true
}

func (s *snapshot) distanceTo(q s2.LatLng, i int) nearCandidate {
	c := s.locations[i].Coordinates
	ll := s2.LatLngFromDegrees(c.Lat, c.Lon)
	return nearCandidate{idx: i, dist: float64(q.Distance(ll))}
}

func validPosition(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
