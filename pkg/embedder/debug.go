package embedder

import "math"

// DebugInfo summarizes a vector for inspection.
type DebugInfo struct {
	First10   []float32  `json:"first10"`
	Dimension int        `json:"dimension"`
	Stats     DebugStats `json:"stats"`
}

type DebugStats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	Norm float64 `json:"norm"`
}

// ComputeDebugInfo returns the leading ten components and summary statistics.
// An empty vector yields zero statistics.
func ComputeDebugInfo(vec []float32) DebugInfo {
	n := len(vec)
	head := n
	if head > 10 {
		head = 10
	}

	info := DebugInfo{
		First10:   append([]float32{}, vec[:head]...),
		Dimension: n,
	}
	if n == 0 {
		return info
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	var sum float64
	for _, v := range vec {
		f := float64(v)
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
		sum += f
	}

	info.Stats = DebugStats{
		Min:  lo,
		Max:  hi,
		Mean: sum / float64(n),
		Norm: Norm(vec),
	}
	return info
}
