package spectra6

import (
	"errors"
	"math"
	"testing"
)

func TestCIE76(t *testing.T) {
	t.Parallel()

	a := Lab{50, 10, -10}
	b := Lab{53, 14, -10}
	if d := (CIE76Method{}).Distance(a, b); math.Abs(d-5) > 1e-12 {
		t.Errorf("Expected distance 5, got %v", d)
	}
	if d := (CIE76Method{}).Distance(a, a); d != 0 {
		t.Errorf("Expected zero self distance, got %v", d)
	}
}

// Reference pairs from Sharma, Wu and Dalal, "The CIEDE2000 color-difference
// formula: implementation notes, supplementary test data, and mathematical
// observations".
func TestCIEDE2000(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b Lab
		want float64
	}{
		{Lab{50, 2.6772, -79.7751}, Lab{50, 0, -82.7485}, 2.0425},
		{Lab{50, 3.1571, -77.2803}, Lab{50, 0, -82.7485}, 2.8615},
		{Lab{50, 0, 0}, Lab{50, -1, 2}, 2.3669},
		{Lab{50, 2.5, 0}, Lab{73, 25, -18}, 27.1492},
		{Lab{50, 2.5, 0}, Lab{50, 0, -2.5}, 4.3065},
		{Lab{60.2574, -34.0099, 36.2677}, Lab{60.4626, -34.1751, 39.4387}, 1.2644},
	}
	for _, tt := range tests {
		m := CIEDE2000Method{}
		if got := m.Distance(tt.a, tt.b); math.Abs(got-tt.want) > 1e-4 {
			t.Errorf("Distance(%+v, %+v) = %.4f, want %.4f", tt.a, tt.b, got, tt.want)
		}
		if got := m.Distance(tt.b, tt.a); math.Abs(got-tt.want) > 1e-4 {
			t.Errorf("Distance should be symmetric: reversed pair gave %.4f", got)
		}
	}
}

func TestDistanceMethodByName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":          "CIE76",
		"cie76":     "CIE76",
		"LAB":       "CIE76",
		"ciede2000": "CIEDE2000",
		"de2000":    "CIEDE2000",
	}
	for in, want := range tests {
		m, err := DistanceMethodByName(in)
		if err != nil {
			t.Errorf("DistanceMethodByName(%q) failed: %v", in, err)
			continue
		}
		if m.Name() != want {
			t.Errorf("DistanceMethodByName(%q) = %s, want %s", in, m.Name(), want)
		}
	}
	if _, err := DistanceMethodByName("redmean"); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("Expected ErrInvalidOptions, got %v", err)
	}
}

func TestMetricMarker(t *testing.T) {
	t.Parallel()

	var m DistanceMethod = CIE76Method{}
	if mm, ok := m.(MetricMethod); !ok || !mm.Metric() {
		t.Error("CIE76 should be marked metric")
	}
	m = CIEDE2000Method{}
	if _, ok := m.(MetricMethod); ok {
		t.Error("CIEDE2000 is not a metric and should not be marked")
	}
}
