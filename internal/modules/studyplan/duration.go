package studyplan

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	compactDurationRe = regexp.MustCompile(`^(\d+)[h:](\d{1,2})$`)
	hoursRe           = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*h`)
	minutesRe         = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*m`)
)

// ParseMinutes converts free-text durations ("4h", "1.5h", "45m", "1:30", "2h30m")
// into whole minutes. The second result is false when no duration can be read.
func ParseMinutes(text string) (int, bool) {
	lowered := strings.ToLower(strings.TrimSpace(text))
	compact := strings.ReplaceAll(lowered, " ", "")
	if compact == "" {
		return 0, false
	}

	if m := compactDurationRe.FindStringSubmatch(compact); m != nil {
		h, errH := strconv.Atoi(m[1])
		mins, errM := strconv.Atoi(m[2])
		if errH == nil && errM == nil {
			return max(1, h*60+mins), true
		}
	}

	var total float64
	hm := hoursRe.FindStringSubmatch(lowered)
	mm := minutesRe.FindStringSubmatch(lowered)
	if hm != nil {
		total += parseDecimal(hm[1])
	}
	if mm != nil {
		total += parseDecimal(mm[1]) / 60
	}
	if mm != nil && !strings.Contains(compact, "h") && strings.Contains(compact, "m") {
		total = parseDecimal(mm[1]) / 60
	}

	if total == 0 {
		bare := strings.NewReplacer("h", "", "m", "", ",", ".").Replace(compact)
		f, err := strconv.ParseFloat(bare, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
			return 0, false
		}
		total = f
	}
	return int(math.Round(total * 60)), true
}

func parseDecimal(s string) float64 {
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0
	}
	return f
}
