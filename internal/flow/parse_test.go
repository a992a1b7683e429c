package flow

import (
	"errors"
	"testing"
)

// TestParseExerciseLine covers the token grammar: leading name tokens, then
// reps/sets/weight read right-to-left, with an optional trailing media token.
func TestParseExerciseLine(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want ExerciseLine
	}{
		{
			name: "simple",
			in:   "Bench Press 12 3 60",
			want: ExerciseLine{Name: "Bench Press", Reps: 12, Sets: 3, Weight: 60},
		},
		{
			name: "single word name",
			in:   "Row 10 3 50",
			want: ExerciseLine{Name: "Row", Reps: 10, Sets: 3, Weight: 50},
		},
		{
			name: "bodyweight",
			in:   "Pull Up 8 4 0",
			want: ExerciseLine{Name: "Pull Up", Reps: 8, Sets: 4, Weight: 0},
		},
		{
			name: "fractional weight",
			in:   "Curl 12 3 12.5",
			want: ExerciseLine{Name: "Curl", Reps: 12, Sets: 3, Weight: 12.5},
		},
		{
			name: "trailing url media",
			in:   "Squat 5 5 100 https://cdn.example.com/squat.gif",
			want: ExerciseLine{Name: "Squat", Reps: 5, Sets: 5, Weight: 100, MediaRef: "https://cdn.example.com/squat.gif"},
		},
		{
			name: "trailing gif filename",
			in:   "Deadlift 5 3 140 deadlift.gif",
			want: ExerciseLine{Name: "Deadlift", Reps: 5, Sets: 3, Weight: 140, MediaRef: "deadlift.gif"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseExerciseLine(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

// TestParseExerciseLineRejects verifies that malformed lines come back as
// validation errors, including the weight-omitted case where only two
// trailing numeric tokens remain.
func TestParseExerciseLineRejects(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"name only", "Bench Press"},
		{"weight omitted", "Bench Press 12 3"},
		{"non numeric weight", "Bench Press 12 3 heavy"},
		{"non numeric sets", "Bench Press 12 three 60"},
		{"no name", "12 3 60"},
		{"media eats the weight", "Squat 5 5 https://example.com/a.gif"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseExerciseLine(tc.in)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var v *ValidationError
			if !errors.As(err, &v) {
				t.Errorf("error type = %T, want *ValidationError", err)
			}
		})
	}
}

// TestIsMediaRef pins the classifier whitelist: URL schemes and animated
// image extensions only. A bare number or a plain word is never media.
func TestIsMediaRef(t *testing.T) {
	cases := []struct {
		token string
		want  bool
	}{
		{"https://example.com/x.gif", true},
		{"http://example.com/x", true},
		{"demo.gif", true},
		{"demo.webp", true},
		{"demo.APNG", true},
		{"60", false},
		{"12.5", false},
		{"bench", false},
		{"ftp://example.com/x.bin", false},
		{"demo.jpg", false},
	}

	for _, tc := range cases {
		if got := isMediaRef(tc.token); got != tc.want {
			t.Errorf("isMediaRef(%q) = %v, want %v", tc.token, got, tc.want)
		}
	}
}
