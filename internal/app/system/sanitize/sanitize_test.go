package sanitize

import "testing"

func TestNote(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"weekly run", "weekly run"},
		{"<script>alert(1)</script>weekly run", "weekly run"},
		{"<b>bold</b> claim", "bold claim"},
		{"  padded  ", "padded"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Note(tc.in); got != tc.want {
			t.Errorf("Note(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}
