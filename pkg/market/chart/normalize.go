package chart

// Normalize converts aligned absolute values into percent change from each
// asset's first present value. Assets whose base is zero are omitted.
func Normalize(points []AlignedPoint) []AlignedPoint {
	bases := make(map[string]float64)
	seen := make(map[string]bool)
	for _, p := range points {
		for id, v := range p.Values {
			if seen[id] {
				continue
			}
			seen[id] = true
			if v != 0 {
				bases[id] = v
			}
		}
	}

	out := make([]AlignedPoint, 0, len(points))
	for _, p := range points {
		values := make(map[string]float64, len(p.Values))
		for id, v := range p.Values {
			base, ok := bases[id]
			if !ok {
				continue
			}
			values[id] = (v - base) / base * 100
		}
		out = append(out, AlignedPoint{Timestamp: p.Timestamp, Label: p.Label, Values: values})
	}
	return out
}
