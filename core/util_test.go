package core

import "testing"

func TestCleanString(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		lower []bool
		want  string
	}{
		{name: "trims whitespace", s: "  0102030405\t", want: "0102030405"},
		{name: "keeps case by default", s: " Enfermería ", want: "Enfermería"},
		{name: "lowers on demand", s: " ANA@UNI.TEST ", lower: []bool{true}, want: "ana@uni.test"},
		{name: "empty", s: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanString(tt.s, tt.lower...); got != tt.want {
				t.Errorf("CleanString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		name string
		f    float64
		want float64
	}{
		{name: "repeating decimal", f: 58 / 0.7, want: 82.86},
		{name: "third", f: 100. / 3, want: 33.33},
		{name: "exact", f: 60, want: 60},
		{name: "half rounds up", f: 1.005 * 100 / 100, want: 1.0}, // 1.005 is not exactly representable
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Round2(tt.f); got != tt.want {
				t.Errorf("Round2(%v) = %v, want %v", tt.f, got, tt.want)
			}
		})
	}
}
