// Package vector implements sparse term-weight vectors and the similarity
// math used for ranking.
package vector

import "math"

// Vector is a sparse mapping from term to non-negative weight. A term absent
// from the map has weight zero.
type Vector map[string]float64

// Magnitude returns the Euclidean norm of v.
func Magnitude(v Vector) float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Dot returns the dot product of a and b, iterating only the shared terms.
func Dot(a, b Vector) float64 {
	// Iterate the smaller vector.
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for term, wa := range a {
		if wb, ok := b[term]; ok {
			dot += wa * wb
		}
	}
	return dot
}

// Cosine returns the cosine similarity of a and b. Similarity against a
// zero-magnitude vector is defined as 0 rather than NaN.
func Cosine(a, b Vector) float64 {
	magA := Magnitude(a)
	magB := Magnitude(b)
	if magA == 0 || magB == 0 {
		return 0
	}
	return Dot(a, b) / (magA * magB)
}
