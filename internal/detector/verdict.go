package detector

import (
	"encoding/json"
	"math"
)

// Verdict is the detector's JSON object, passed through to callers untouched.
type Verdict map[string]interface{}

// Score returns the numeric "score" field. Missing, non-numeric or
// non-finite values report false.
func (v Verdict) Score() (float64, bool) {
	raw, ok := v["score"]
	if !ok {
		return 0, false
	}

	var score float64
	switch n := raw.(type) {
	case float64:
		score = n
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		score = f
	default:
		return 0, false
	}

	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, false
	}
	return score, true
}
