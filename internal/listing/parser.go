package listing

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// decimalToken matches "12", "12.5", "12." and ".5".
	decimalToken = regexp.MustCompile(`[0-9]+(?:\.[0-9]*)?|\.[0-9]+`)
	countToken   = regexp.MustCompile(`[0-9]+`)

	numberNoise = strings.NewReplacer("$", "", ",", "")
)

// ParseDecimal extracts the first integer or decimal number from a free-form
// field such as "$1,099.99" or "4.5 out of 5". ok is false when the field is
// empty, has no number, or the number does not fit a float64.
func ParseDecimal(field string) (value float64, ok bool) {
	return parseToken(decimalToken, field)
}

// ParseCount extracts the first run of digits, e.g. 1204 from "1,204 ratings".
func ParseCount(field string) (value float64, ok bool) {
	return parseToken(countToken, field)
}

func parseToken(pattern *regexp.Regexp, field string) (float64, bool) {
	if field == "" {
		return 0, false
	}

	token := pattern.FindString(numberNoise.Replace(field))
	if token == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(strings.TrimSuffix(token, "."), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
