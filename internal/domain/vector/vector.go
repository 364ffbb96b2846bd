// Package vector holds dense vector math used by the retriever.
package vector

import "math"

// Norm returns the Euclidean norm of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		f := float64(x)
		sum += f * f
	}
	return math.Sqrt(sum)
}

// Dot returns the dot product of a and b. Both must have the same length.
func Dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// CosineWithNorms computes dot(a,b)/(na*nb) with precomputed norms.
// A zero norm on either side yields 0, never NaN.
func CosineWithNorms(a, b []float32, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	s := Dot(a, b) / (na * nb)
	if math.IsNaN(s) {
		return 0
	}
	return s
}

// Cosine computes the cosine similarity of a and b.
func Cosine(a, b []float32) float64 {
	return CosineWithNorms(a, b, Norm(a), Norm(b))
}
