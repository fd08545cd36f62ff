package attendance

import "math"

// Rate returns round(100 * present / total), or 0 when there are no records.
func Rate(present, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(present) / float64(total)))
}

// Summarize counts records per status and computes the attendance rate.
// Records with an unknown status count towards the total only.
func Summarize(records []Record) Summary {
	var s Summary
	for _, rec := range records {
		switch rec.Status {
		case StatusPresent:
			s.Present++
		case StatusAbsent:
			s.Absent++
		case StatusLate:
			s.Late++
		case StatusExcused:
			s.Excused++
		}
	}
	s.Rate = Rate(s.Present, len(records))
	return s
}
