// README: Tests pinning the shape of the rating update statement.
package driver

import (
	"strings"
	"testing"
)

// PostgreSQL has no round(double precision, integer) overload, so the rating
// expression must go through numeric or the update fails at runtime.
func TestApplyRatingQueryCastsBeforeRounding(t *testing.T) {
	roundAt := strings.Index(applyRatingSQL, "ROUND(")
	if roundAt < 0 {
		t.Fatalf("rating update no longer rounds: %s", applyRatingSQL)
	}
	castAt := strings.Index(applyRatingSQL, "::numeric")
	if castAt < 0 {
		t.Fatalf("rating expression is not cast to numeric: %s", applyRatingSQL)
	}
	if castAt < roundAt {
		t.Fatalf("numeric cast must sit inside the ROUND call: %s", applyRatingSQL)
	}
	if !strings.Contains(applyRatingSQL, "rating_count = rating_count + 1") {
		t.Fatalf("rating update must advance the count in the same statement: %s", applyRatingSQL)
	}
}
