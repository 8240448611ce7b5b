package contract

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// FuzzTruncateText fuzzes TruncateText with random text and widths.
func FuzzTruncateText(f *testing.F) {
	seeds := []struct {
		text  string
		width int
	}{
		{"Sid, Braut, Deruto", 10},
		{"", 5},
		{"Ação", 2},
		{"–", 4},
		{"very long composition of characters", 0},
	}
	for _, seed := range seeds {
		f.Add(seed.text, seed.width)
	}

	f.Fuzz(func(t *testing.T, text string, width int) {
		if !utf8.ValidString(text) {
			return
		}
		got := TruncateText(text, width)
		n := utf8.RuneCountInString(got)
		if width > 3 && utf8.RuneCountInString(text) > width {
			if n != width {
				t.Errorf("TruncateText(%q, %d) has %d runes", text, width, n)
			}
			if !strings.HasSuffix(got, "...") {
				t.Errorf("TruncateText(%q, %d) = %q lacks ellipsis", text, width, got)
			}
			return
		}
		if got != text {
			t.Errorf("TruncateText(%q, %d) = %q, want unchanged", text, width, got)
		}
	})
}

// FuzzParseTriState checks that parsing never panics and only yields known states.
func FuzzParseTriState(f *testing.F) {
	for _, s := range []string{"any", "yes", "no", "all", "", "1", "maybe"} {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, s string) {
		got, err := ParseTriState(s)
		if err != nil {
			return
		}
		switch got {
		case "any", "yes", "no":
		default:
			t.Errorf("ParseTriState(%q) = %q", s, got)
		}
	})
}
