package plan

import (
	"math"
	"regexp"
	"strconv"
)

var (
	rangePattern  = regexp.MustCompile(`(\d+)-(\d+)`)
	leadingNumber = regexp.MustCompile(`^\d+`)
)

// roundHalfUp rounds .5 away from zero for the non-negative values used here.
// It reports false when the result does not fit in an int.
func roundHalfUp(x float64) (int, bool) {
	r := math.Floor(x + 0.5)
	if math.IsNaN(r) || r >= float64(math.MaxInt) || r < float64(math.MinInt) {
		return 0, false
	}
	return int(r), true
}

func scale(digits string, multiplier float64) string {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return digits
	}
	scaled, ok := roundHalfUp(float64(n) * multiplier)
	if !ok {
		return digits
	}
	return strconv.Itoa(scaled)
}

// ApplyLoadMultiplier scales a prescription like "6-10 reps" or "15 reps",
// keeping the surrounding text. In a range both bounds are scaled and
// rounded independently; only the first range is touched. Values in any
// other shape ("max reps", "hold for 30s") are returned unchanged.
func ApplyLoadMultiplier(base string, multiplier float64) string {
	if loc := rangePattern.FindStringSubmatchIndex(base); loc != nil {
		lo := scale(base[loc[2]:loc[3]], multiplier)
		hi := scale(base[loc[4]:loc[5]], multiplier)
		return base[:loc[0]] + lo + "-" + hi + base[loc[1]:]
	}

	if loc := leadingNumber.FindStringIndex(base); loc != nil {
		return scale(base[loc[0]:loc[1]], multiplier) + base[loc[1]:]
	}

	return base
}

// ApplyLoadMultiplierInt scales a bare count. A result too large for an int
// leaves base unchanged.
func ApplyLoadMultiplierInt(base int, multiplier float64) string {
	scaled, ok := roundHalfUp(float64(base) * multiplier)
	if !ok {
		return strconv.Itoa(base)
	}
	return strconv.Itoa(scaled)
}
