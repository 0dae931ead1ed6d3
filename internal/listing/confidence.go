package listing

import "math"

// Classify maps a score pair to a status and a confidence in [0, 1].
func Classify(scam, legit float64) (Status, float64) {
	var (
		status     Status
		confidence float64
	)

	switch {
	case scam > legit && scam >= 2:
		status = StatusScam
		confidence = math.Min(0.9, 0.5+scam*0.1)
	case legit > scam && legit >= 2:
		status = StatusLegit
		confidence = math.Min(0.9, 0.5+legit*0.1)
	default:
		status = StatusUncertain
		if scam+legit == 0 {
			confidence = 0.3
		} else {
			confidence = 0.4 + math.Max(scam, legit)*0.1
		}
	}

	return status, clamp01(confidence)
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
