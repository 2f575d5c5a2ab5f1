package mathutil

import (
	"math"
)

// KaiserBeta returns the Kaiser window β that reaches the given stopband
// attenuation in dB (Kaiser & Schafer):
//
//	att > 50:       β = 0.1102·(att − 8.7)
//	21 ≤ att ≤ 50:  β = 0.5842·(att − 21)^0.4 + 0.07886·(att − 21)
//	att < 21:       β = 0
func KaiserBeta(attenuation float64) float64 {
	switch {
	case attenuation > kaiserAttHigh:
		return kaiserBetaHighCoeff * (attenuation - kaiserBetaHighOffset)
	case attenuation >= kaiserAttMedium:
		delta := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(delta, kaiserBetaMediumPower) + kaiserBetaMediumCoeff2*delta
	default:
		return 0.0
	}
}

// KaiserAttenuation approximates the stopband attenuation reached by β.
// It inverts the high-attenuation branch of KaiserBeta.
func KaiserAttenuation(beta float64) float64 {
	if beta < kaiserBetaMinThreshold {
		return 0.0
	}
	return kaiserBetaHighOffset + beta/kaiserBetaHighCoeff
}

// KaiserAt evaluates the continuous Kaiser window at u, where u = ±1 are the
// window edges. Values outside [-1, 1] are zero. i0Beta is BesselI0(β), passed
// in so table builders compute it once.
func KaiserAt(u, beta, i0Beta float64) float64 {
	if u < -1 || u > 1 {
		return 0.0
	}
	return BesselI0(beta*math.Sqrt(1.0-u*u)) / i0Beta
}

// EstimateFilterLength estimates the odd tap count an FIR low-pass needs to
// reach attenuation dB with a transition band of transitionBW (fraction of the
// sample rate), using Kaiser's formula N ≈ (att − 8) / (2.285·2π·Δf).
func EstimateFilterLength(attenuation, transitionBW float64) int {
	if transitionBW <= 0 {
		transitionBW = defaultTransitionBW
	}

	n := (attenuation - kaiserLengthOffset) / (kaiserLengthMultiplier * 2 * math.Pi * transitionBW)

	taps := int(math.Ceil(n))
	if taps%2 == 0 {
		taps++
	}
	return min(max(taps, minFilterLength), maxFilterLength)
}
