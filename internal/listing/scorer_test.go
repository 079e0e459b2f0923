package listing

import "testing"

func TestDefaultScorer(t *testing.T) {
	cases := []struct {
		name    string
		baseQty int64
		mult    float64
		season  float64
		want    int64
	}{
		{"neutral", 10, 1, 1, 10},
		{"discount boost", 10, 1.3, 1, 13},
		{"rounds", 10, 0.75, 1.2, 9},
		{"price block", 10, 0, 1, 0},
		{"season block", 10, 1, 0, 0},
		{"negative clamps", 10, -1, 1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DefaultScorer(tc.baseQty, tc.mult, tc.season)
			if got != tc.want {
				t.Fatalf("got=%d want=%d", got, tc.want)
			}
		})
	}
}
