package dialog

import (
	"errors"
	"testing"

	"github.com/alikaskat/calendar-bot/internal/session"
)

func TestParseClock(t *testing.T) {
	t.Parallel()

	t.Run("accepts valid wall-clock times", func(t *testing.T) {
		t.Parallel()
		cases := []struct {
			input string
			want  session.TimeOfDay
		}{
			{"00:00", session.TimeOfDay{Hour: 0, Minute: 0}},
			{"23:59", session.TimeOfDay{Hour: 23, Minute: 59}},
			{"09:30", session.TimeOfDay{Hour: 9, Minute: 30}},
			{"9:05", session.TimeOfDay{Hour: 9, Minute: 5}},
			{" 14:00 ", session.TimeOfDay{Hour: 14, Minute: 0}},
		}
		for _, tc := range cases {
			got, err := ParseClock(tc.input)
			if err != nil {
				t.Fatalf("ParseClock(%q) returned error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Fatalf("ParseClock(%q) = %+v, want %+v", tc.input, got, tc.want)
			}
		}
	})

	t.Run("rejects anything else", func(t *testing.T) {
		t.Parallel()
		inputs := []string{
			"24:00",
			"12:60",
			"-1:00",
			"12:5",
			"12:345",
			"123:00",
			"12.30",
			"12:30:00",
			"ab:cd",
			"полдень",
			"",
			":",
			"12:",
		}
		for _, input := range inputs {
			if _, err := ParseClock(input); !errors.Is(err, ErrInvalidClock) {
				t.Fatalf("ParseClock(%q) = %v, want ErrInvalidClock", input, err)
			}
		}
	})
}
