// Package vecmath holds the small amount of linear algebra the categorizer
// needs over embedding vectors.
package vecmath

import "math"

// Dot computes the dot product of two vectors, accumulated in float64.
// Vectors of different length are truncated to the shorter one.
func Dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Norm computes the L2 norm of a vector.
func Norm(v []float32) float64 {
	return math.Sqrt(Dot(v, v))
}

// Normalize scales v to unit length in place. A zero vector is left as is.
func Normalize(v []float32) []float32 {
	n := Norm(v)
	if n == 0 {
		return v
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / n)
	}
	return v
}

// CosineSimilarity returns dot(a,b) / (|a| |b|) in [-1, 1].
//
// It returns 0 when either vector has zero norm, and also when the vectors are
// empty or differ in length, so callers never see NaN.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	normA := Norm(a)
	normB := Norm(b)
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := Dot(a, b) / (normA * normB)
	// Rounding can push |sim| a hair past 1.
	if sim > 1 {
		return 1
	}
	if sim < -1 {
		return -1
	}
	return sim
}
