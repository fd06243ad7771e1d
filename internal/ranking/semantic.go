package ranking

import "math"

// semanticExponent spreads mid-range similarities apart.
const semanticExponent = 0.7

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either vector is empty, their lengths differ, or either has zero norm.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return clamp(dot/math.Sqrt(normA*normB), -1, 1)
}

// SemanticSimilarity maps the cosine of two embeddings into [0,1] and applies
// a power curve. Missing or degenerate embeddings score 0.
func SemanticSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) || isZero(a) || isZero(b) {
		return 0
	}
	normalized := math.Max(0, (CosineSimilarity(a, b)+1)/2)
	return clamp(math.Pow(normalized, semanticExponent), 0, 1)
}

func isZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
