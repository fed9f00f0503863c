package coalescent

// Multipliers applied to k(k-1)/2 on either side of the changepoint.
const (
	rateBeforeChangepoint = 2.0
	rateAfterChangepoint  = 1.0
)

// pairs returns the number of lineage pairs k(k-1)/2.
func pairs(k int) float64 {
	return float64(k) * float64(k-1) / 2
}

// CoalescenceTime returns the candidate time of the next coalescence among k
// active lineages, given the current clock prev and an optional changepoint t0.
//
// Without a changepoint the waiting time is Exp(k(k-1)/2). Past the
// changepoint it is Exp(1·k(k-1)/2). Before it the draw uses Exp(2·k(k-1)/2);
// a draw that crosses t0 keeps its part below t0 and has the part beyond t0
// compressed by half.
func CoalescenceTime(src Source, prev float64, k int, t0 *float64) (float64, error) {
	if t0 == nil {
		wait, err := Exponential(src, pairs(k))
		if err != nil {
			return 0, err
		}
		return prev + wait, nil
	}

	if prev > *t0 {
		wait, err := Exponential(src, rateAfterChangepoint*pairs(k))
		if err != nil {
			return 0, err
		}
		return prev + wait, nil
	}

	raw, err := Exponential(src, rateBeforeChangepoint*pairs(k))
	if err != nil {
		return 0, err
	}
	if prev+raw < *t0 {
		return prev + raw, nil
	}
	return *t0 + 0.5*(prev+raw-*t0), nil
}

// MutationTime returns the candidate time of the next mutation among k
// active lineages: prev + Exp(theta·k/2).
func MutationTime(src Source, prev, theta float64, k int) (float64, error) {
	wait, err := Exponential(src, theta*float64(k)/2)
	if err != nil {
		return 0, err
	}
	return prev + wait, nil
}
