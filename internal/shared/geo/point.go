// Package geo holds WGS84 points and great-circle distances.
package geo

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"

	"github.com/golang/geo/s2"

	"wizardgo/internal/shared/errors"
)

// EarthRadiusMeters is the IUGG mean Earth radius.
const EarthRadiusMeters = 6371008.8

// SRID of WGS84 latitude/longitude degrees, as stored by PostGIS.
const SRID = 4326

type Point struct {
	Lat float64
	Lng float64
}

func NewPoint(lat, lng float64) Point {
	return Point{Lat: lat, Lng: lng}
}

func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return errors.Validation("coordinates must be finite numbers")
	}
	if p.Lat < -90 || p.Lat > 90 {
		return errors.Validationf("latitude %v out of range [-90, 90]", p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return errors.Validationf("longitude %v out of range [-180, 180]", p.Lng)
	}
	return nil
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b Point) float64 {
	angle := s2.LatLngFromDegrees(a.Lat, a.Lng).Distance(s2.LatLngFromDegrees(b.Lat, b.Lng))
	return angle.Radians() * EarthRadiusMeters
}

// Within reports whether b lies at most meters away from a.
func Within(a, b Point, meters float64) bool {
	return Distance(a, b) <= meters
}

func (p Point) String() string {
	return fmt.Sprintf("(%f, %f)", p.Lat, p.Lng)
}

type geoJSONPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// MarshalJSON encodes the point as GeoJSON, longitude first.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(geoJSONPoint{Type: "Point", Coordinates: [2]float64{p.Lng, p.Lat}})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var raw geoJSONPoint
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Type != "Point" {
		return fmt.Errorf("unsupported geometry type %q", raw.Type)
	}
	p.Lng, p.Lat = raw.Coordinates[0], raw.Coordinates[1]
	return nil
}

// FromNull builds a point from nullable lat/lng columns.
func FromNull(lat, lng sql.NullFloat64) *Point {
	if !lat.Valid || !lng.Valid {
		return nil
	}
	return &Point{Lat: lat.Float64, Lng: lng.Float64}
}
