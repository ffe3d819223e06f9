/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package geom defines the narrow geometry contract the aggregation engine
// consumes: envelopes, centroids, areas and distances. Real geometry
// libraries plug in by implementing Geometry.
package geom

import (
	"fmt"
	"math"
)

// Geometry is an opaque planar geometry.
type Geometry interface {
	Envelope() Envelope
	Centroid() Point
	Area() float64
	// Distance returns the minimum planar distance to other.
	Distance(other Geometry) float64
}

// Point is a 2D coordinate.
type Point struct {
	X, Y float64
}

func (p Point) Envelope() Envelope {
	return Envelope{MinX: p.X, MaxX: p.X, MinY: p.Y, MaxY: p.Y}
}

func (p Point) Centroid() Point { return p }

func (p Point) Area() float64 { return 0 }

func (p Point) Distance(other Geometry) float64 {
	if q, ok := other.(Point); ok {
		return math.Hypot(p.X-q.X, p.Y-q.Y)
	}
	return p.Envelope().Distance(other)
}

func (p Point) String() string {
	return fmt.Sprintf("POINT(%g %g)", p.X, p.Y)
}

// Envelope is an axis aligned bounding box. An envelope whose MaxX is lower
// than its MinX is empty; use EmptyEnvelope to obtain one.
type Envelope struct {
	MinX, MaxX, MinY, MaxY float64
}

// EmptyEnvelope returns an envelope that contains nothing.
func EmptyEnvelope() Envelope {
	return Envelope{MinX: 0, MaxX: -1, MinY: 0, MaxY: -1}
}

// NewEnvelope builds an envelope from two corner coordinates in any order.
func NewEnvelope(x1, x2, y1, y2 float64) Envelope {
	return Envelope{
		MinX: math.Min(x1, x2), MaxX: math.Max(x1, x2),
		MinY: math.Min(y1, y2), MaxY: math.Max(y1, y2),
	}
}

func (e Envelope) IsEmpty() bool {
	return e.MaxX < e.MinX
}

func (e Envelope) Width() float64 {
	if e.IsEmpty() {
		return 0
	}
	return e.MaxX - e.MinX
}

func (e Envelope) Height() float64 {
	if e.IsEmpty() {
		return 0
	}
	return e.MaxY - e.MinY
}

// ExpandToInclude returns the union of e and other.
func (e Envelope) ExpandToInclude(other Envelope) Envelope {
	if other.IsEmpty() {
		return e
	}
	if e.IsEmpty() {
		return other
	}
	return Envelope{
		MinX: math.Min(e.MinX, other.MinX), MaxX: math.Max(e.MaxX, other.MaxX),
		MinY: math.Min(e.MinY, other.MinY), MaxY: math.Max(e.MaxY, other.MaxY),
	}
}

// Contains reports whether p lies inside or on the boundary of e.
func (e Envelope) Contains(p Point) bool {
	return !e.IsEmpty() && p.X >= e.MinX && p.X <= e.MaxX && p.Y >= e.MinY && p.Y <= e.MaxY
}

func (e Envelope) Envelope() Envelope { return e }

func (e Envelope) Centroid() Point {
	return Point{X: (e.MinX + e.MaxX) / 2, Y: (e.MinY + e.MaxY) / 2}
}

func (e Envelope) Area() float64 {
	return e.Width() * e.Height()
}

// Distance returns the gap between e and the envelope of other; zero when
// they intersect.
func (e Envelope) Distance(other Geometry) float64 {
	o := other.Envelope()
	if e.IsEmpty() || o.IsEmpty() {
		return math.Inf(1)
	}
	dx := math.Max(0, math.Max(o.MinX-e.MaxX, e.MinX-o.MaxX))
	dy := math.Max(0, math.Max(o.MinY-e.MaxY, e.MinY-o.MaxY))
	return math.Hypot(dx, dy)
}

func (e Envelope) String() string {
	if e.IsEmpty() {
		return "ENVELOPE EMPTY"
	}
	return fmt.Sprintf("ENVELOPE(%g %g, %g %g)", e.MinX, e.MinY, e.MaxX, e.MaxY)
}

// Polygon is a simple polygon given by its exterior ring. The ring does not
// need to repeat its first vertex.
type Polygon struct {
	Shell []Point
}

func (p Polygon) Envelope() Envelope {
	env := EmptyEnvelope()
	for _, pt := range p.Shell {
		env = env.ExpandToInclude(pt.Envelope())
	}
	return env
}

// signedArea is positive for counter-clockwise rings.
func (p Polygon) signedArea() float64 {
	n := len(p.Shell)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		a, b := p.Shell[i], p.Shell[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

func (p Polygon) Area() float64 {
	return math.Abs(p.signedArea())
}

func (p Polygon) Centroid() Point {
	a := p.signedArea()
	if a == 0 {
		return p.Envelope().Centroid()
	}
	var cx, cy float64
	n := len(p.Shell)
	for i := 0; i < n; i++ {
		s, t := p.Shell[i], p.Shell[(i+1)%n]
		cross := s.X*t.Y - t.X*s.Y
		cx += (s.X + t.X) * cross
		cy += (s.Y + t.Y) * cross
	}
	return Point{X: cx / (6 * a), Y: cy / (6 * a)}
}

func (p Polygon) Distance(other Geometry) float64 {
	return p.Envelope().Distance(other)
}
