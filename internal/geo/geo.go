// Package geo contains pure geographic computation helpers.
package geo

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

// HaversineKm returns the great-circle distance in kilometres between two
// points.
func HaversineKm(a, b Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// Interpolate returns the point at fraction f (0..1) along the great circle
// from a to b. Fractions outside the range are clamped.
func Interpolate(a, b Point, f float64) Point {
	switch {
	case f <= 0:
		return a
	case f >= 1:
		return b
	}

	lat1, lng1 := degreesToRadians(a.Lat), degreesToRadians(a.Lng)
	lat2, lng2 := degreesToRadians(b.Lat), degreesToRadians(b.Lng)

	d := HaversineKm(a, b) / earthRadiusKm
	if d == 0 {
		return a
	}

	sinD := math.Sin(d)
	wa := math.Sin((1-f)*d) / sinD
	wb := math.Sin(f*d) / sinD

	x := wa*math.Cos(lat1)*math.Cos(lng1) + wb*math.Cos(lat2)*math.Cos(lng2)
	y := wa*math.Cos(lat1)*math.Sin(lng1) + wb*math.Cos(lat2)*math.Sin(lng2)
	z := wa*math.Sin(lat1) + wb*math.Sin(lat2)

	lat := math.Atan2(z, math.Sqrt(x*x+y*y))
	lng := math.Atan2(y, x)

	return Point{Lat: radiansToDegrees(lat), Lng: radiansToDegrees(lng)}
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func radiansToDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// SortByDistance performs a stable insertion sort (fine for small N) on any
// slice where each element exposes a distance via the accessor function.
func SortByDistance[T any](items []T, dist func(T) float64) {
	for i := 1; i < len(items); i++ {
		key := items[i]
		j := i - 1
		for j >= 0 && dist(items[j]) > dist(key) {
			items[j+1] = items[j]
			j--
		}
		items[j+1] = key
	}
}
