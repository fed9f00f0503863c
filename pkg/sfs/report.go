package sfs

// Row is one line of a spectrum report.
type Row struct {
	Count     int     `json:"count"`              // Folded derived-allele count i
	Sites     int     `json:"sites"`              // Observed sites in bin i
	Frequency float64 `json:"frequency"`          // Sites divided by the sample size
	Expected  float64 `json:"expected,omitempty"` // Neutral expectation; 0 without theta
}

// Report lists the bins 1..max(n/2, largest observed bin) of spec for a
// sample of n, next to their neutral expectation when theta is set. Bins
// without sites are included with zero counts.
func Report(spec Spectrum, n int, theta *float64) []Row {
	if n <= 0 {
		return nil
	}
	last := max(n/2, spec.MaxCount())
	rows := make([]Row, 0, max(last, 0))
	for i := 1; i <= last; i++ {
		r := Row{
			Count:     i,
			Sites:     spec[i],
			Frequency: float64(spec[i]) / float64(n),
		}
		if theta != nil {
			r.Expected = ExpectedFolded(*theta, i, n)
		}
		rows = append(rows, r)
	}
	return rows
}
