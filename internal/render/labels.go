// Package render draws chart series as static pages and images.
package render

import (
	"fmt"
	"strconv"
)

// Ref labels a relative commit index the way git does: the head of the
// branch is the branch itself, older commits are branch~N.
func Ref(branch string, relCommit int) string {
	if relCommit == 0 {
		return branch
	}
	if relCommit < 0 {
		relCommit = -relCommit
	}
	return fmt.Sprintf("%s~%d", branch, relCommit)
}

// FormatValue prints a metric value with three significant digits.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 3, 64)
}
