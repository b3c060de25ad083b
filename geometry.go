package safemap

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
)

// geohashPrecision keeps ~150m cells, enough to anchor a label on a borough.
const geohashPrecision = 7

// FeatureCollection is the subset of GeoJSON read from area geometry
// documents.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is one GeoJSON feature. Crime data for the second city lives in
// its properties.
type Feature struct {
	Type       string           `json:"type"`
	Properties AreaProperties   `json:"properties"`
	Geometry   *GeoJSONGeometry `json:"geometry"`
}

// AreaProperties are the crime attributes carried on a feature.
type AreaProperties struct {
	Name           string        `json:"name"`
	TotalCrimes    OptionalCount `json:"total_crimes"`
	SafetyScore    Score         `json:"safety_score"`
	SafetyLevel    string        `json:"safety_level"`
	CrimeBreakdown CrimeCounts   `json:"crime_breakdown"`

	// Boundary files name the area in other fields; see featureName.
	LAD22NM  string `json:"LAD22NM"`
	BoroName string `json:"boro_name"`
}

// featureName returns the first non-empty name field.
func (p AreaProperties) featureName() string {
	for _, n := range []string{p.Name, p.BoroName, p.LAD22NM} {
		if n = strings.TrimSpace(n); n != "" {
			return n
		}
	}
	return ""
}

// GeoJSONGeometry holds a Polygon or MultiPolygon. Coordinates are decoded
// lazily by type.
type GeoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// ParseFeatureCollection decodes a GeoJSON FeatureCollection. A single
// Feature is accepted and wrapped.
func ParseFeatureCollection(b []byte) (*FeatureCollection, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, fmt.Errorf("decoding geometry: %w", err)
	}
	switch strings.ToLower(probe.Type) {
	case "featurecollection":
		var fc FeatureCollection
		if err := json.Unmarshal(b, &fc); err != nil {
			return nil, fmt.Errorf("decoding feature collection: %w", err)
		}
		return &fc, nil
	case "feature":
		var f Feature
		if err := json.Unmarshal(b, &f); err != nil {
			return nil, fmt.Errorf("decoding feature: %w", err)
		}
		return &FeatureCollection{Type: "FeatureCollection", Features: []Feature{f}}, nil
	}
	return nil, fmt.Errorf("decoding geometry: unsupported GeoJSON type %q", probe.Type)
}

// AreaGeometry is the boundary of a borough on the sphere. Each part is an
// outer loop followed by its holes; all loops are normalized.
type AreaGeometry struct {
	parts    [][]*s2.Loop
	bound    s2.Rect
	centroid s2.LatLng
	geohash  string
}

// NewAreaGeometry builds the boundary from a GeoJSON Polygon or MultiPolygon.
// A nil or empty geometry yields (nil, nil).
func NewAreaGeometry(g *GeoJSONGeometry) (*AreaGeometry, error) {
	if g == nil || len(g.Coordinates) == 0 {
		return nil, nil
	}
	var polys [][][][]float64
	switch strings.ToLower(g.Type) {
	case "polygon":
		var rings [][][]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return nil, fmt.Errorf("polygon coordinates: %w", err)
		}
		polys = [][][][]float64{rings}
	case "multipolygon":
		if err := json.Unmarshal(g.Coordinates, &polys); err != nil {
			return nil, fmt.Errorf("multipolygon coordinates: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}

	ag := &AreaGeometry{bound: s2.EmptyRect()}
	var sum r3.Vector
	for pi, rings := range polys {
		var part []*s2.Loop
		for ri, ring := range rings {
			loop, err := loopFromRing(ring)
			if err != nil {
				return nil, fmt.Errorf("polygon %d ring %d: %w", pi, ri, err)
			}
			if ri == 0 {
				ag.bound = ag.bound.Union(loop.RectBound())
				var v r3.Vector
				for _, p := range loop.Vertices() {
					v = v.Add(p.Vector)
				}
				sum = sum.Add(v.Normalize().Mul(loop.Area()))
			}
			part = append(part, loop)
		}
		if len(part) > 0 {
			ag.parts = append(ag.parts, part)
		}
	}
	if len(ag.parts) == 0 {
		return nil, nil
	}
	if sum.Norm() > 0 {
		ag.centroid = s2.LatLngFromPoint(s2.Point{Vector: sum.Normalize()})
	}
	ag.geohash = encodeGeohash(ag.centroid.Lat.Degrees(), ag.centroid.Lng.Degrees())
	return ag, nil
}

// loopFromRing converts a GeoJSON ring of [lng, lat] pairs. The closing
// vertex is dropped; s2 loops are implicitly closed.
func loopFromRing(ring [][]float64) (*s2.Loop, error) {
	pts := make([]s2.Point, 0, len(ring))
	for i, c := range ring {
		if len(c) < 2 {
			return nil, fmt.Errorf("vertex %d: want [lng, lat]", i)
		}
		lng, lat := c[0], c[1]
		if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return nil, fmt.Errorf("vertex %d: invalid coordinate [%v, %v]", i, lng, lat)
		}
		pts = append(pts, s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lng)))
	}
	if n := len(pts); n > 1 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	if len(pts) < 3 {
		return nil, fmt.Errorf("ring has %d distinct vertices, need 3", len(pts))
	}
	loop := s2.LoopFromPoints(pts)
	loop.Normalize()
	return loop, nil
}

func encodeGeohash(lat, lng float64) string {
	h := geohash.Encode(lat, lng)
	if len(h) > geohashPrecision {
		h = h[:geohashPrecision]
	}
	return h
}

// ContainsLatLng reports whether the point lies inside the boundary: inside
// some part's outer loop and outside that part's holes.
func (g *AreaGeometry) ContainsLatLng(lat, lng float64) bool {
	if g == nil {
		return false
	}
	ll := s2.LatLngFromDegrees(lat, lng)
	if !g.bound.ContainsLatLng(ll) {
		return false
	}
	p := s2.PointFromLatLng(ll)
	for _, part := range g.parts {
		if !part[0].ContainsPoint(p) {
			continue
		}
		inHole := false
		for _, hole := range part[1:] {
			if hole.ContainsPoint(p) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}

// Centroid returns the area-weighted mean of the outer rings' vertex
// centroids, in degrees. It is a label anchor, not the exact centroid.
func (g *AreaGeometry) Centroid() (lat, lng float64) {
	if g == nil {
		return 0, 0
	}
	return g.centroid.Lat.Degrees(), g.centroid.Lng.Degrees()
}

// Geohash returns the geohash of Centroid.
func (g *AreaGeometry) Geohash() string {
	if g == nil {
		return ""
	}
	return g.geohash
}

// Parts returns the number of polygon parts.
func (g *AreaGeometry) Parts() int {
	if g == nil {
		return 0
	}
	return len(g.parts)
}
