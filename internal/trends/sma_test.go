package trends

import (
	"math"
	"testing"
)

func fp(v float64) *float64 { return &v }

func TestSMA(t *testing.T) {
	tests := []struct {
		name   string
		values []*float64
		window int
		want   []*float64
	}{
		{
			name:   "window not yet full yields nulls",
			values: []*float64{fp(1), fp(2), fp(3), fp(4)},
			window: 3,
			want:   []*float64{nil, nil, fp(2), fp(3)},
		},
		{
			name:   "null inside full window is skipped not zeroed",
			values: []*float64{fp(2), nil, fp(4)},
			window: 3,
			want:   []*float64{nil, nil, fp(3)},
		},
		{
			name:   "all null window yields null",
			values: []*float64{fp(1), nil, nil, nil},
			window: 3,
			want:   []*float64{nil, nil, nil, nil},
		},
		{
			name:   "window of one mirrors the series",
			values: []*float64{fp(5), nil, fp(7)},
			window: 1,
			want:   []*float64{fp(5), nil, fp(7)},
		},
		{
			name:   "series shorter than window",
			values: []*float64{fp(1), fp(2)},
			window: 7,
			want:   []*float64{nil, nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SMA(tt.values, tt.window)
			if len(got) != len(tt.want) {
				t.Fatalf("SMA() length = %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				assertNullableFloat(t, i, got[i], tt.want[i])
			}
		})
	}
}

func assertNullableFloat(t *testing.T, i int, got, want *float64) {
	t.Helper()
	if want == nil {
		if got != nil {
			t.Errorf("index %d = %v, want null", i, *got)
		}
		return
	}
	if got == nil {
		t.Errorf("index %d = null, want %v", i, *want)
		return
	}
	if math.Abs(*got-*want) > 1e-9 {
		t.Errorf("index %d = %v, want %v", i, *got, *want)
	}
}
