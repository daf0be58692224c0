package detection

// CountLines counts rows whose edge count exceeds factor times the mean row
// count. Document-like icons show a few such rows, one per ruled line.
// All-zero input has no lines.
func CountLines(rowCounts []int, factor float64) int {
	if len(rowCounts) == 0 {
		return 0
	}
	total := 0
	for _, n := range rowCounts {
		total += n
	}
	limit := factor * float64(total) / float64(len(rowCounts))

	lines := 0
	for _, n := range rowCounts {
		if float64(n) > limit {
			lines++
		}
	}
	return lines
}
