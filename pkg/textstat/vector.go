package textstat

import "math"

// Mean returns the column-wise mean of rows, or nil when rows is empty.
// All rows must share the first row's length.
func Mean(rows [][]float64) []float64 {
	if len(rows) == 0 {
		return nil
	}

	mean := make([]float64, len(rows[0]))
	for _, row := range rows {
		for i := range mean {
			mean[i] += row[i]
		}
	}
	for i := range mean {
		mean[i] /= float64(len(rows))
	}
	return mean
}

// Norm is the Euclidean length of v
func Norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of a and b. It is 0 when either
// vector is all zeros or the lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}

	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot / (na * nb)
}
