// Package rbf implements the Request-Bound Function curve: a monotone step
// function mapping an (inclusive) time distance to the maximum cumulative
// execution cost observed over any window of that length.
package rbf

import "github.com/rbftrace/rbftrace/pkg/rtime"

// Point is a single step of an RBF curve: at distance Delta the curve's
// value becomes Cost. Distance 0 always maps to cost 0; distance 1 covers a
// single arrival.
type Point struct {
	Delta rtime.Time
	Cost  rtime.Time
}

// NewPoint builds a Point.
func NewPoint(delta, cost rtime.Time) Point {
	return Point{Delta: delta, Cost: cost}
}
