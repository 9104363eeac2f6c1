package sanitize

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Foo@Bar.com ", "foo@bar.com"},
		{"  USER@EXAMPLE.FR", "user@example.fr"},
		{"already@lower.fr", "already@lower.fr"},
		{"", ""},
		{"   ", ""},
	}

	for _, tc := range tests {
		if got := Email(tc.input); got != tc.want {
			t.Errorf("Email(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Atelier Propre & Net", "atelierproprenet"},
		{"Garage-2000", "garage2000"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := Slug(tc.input); got != tc.want {
			t.Errorf("Slug(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestStripHTML(t *testing.T) {
	if got := StripHTML("<b>hello</b> world"); got != "hello world" {
		t.Errorf("StripHTML = %q", got)
	}
	if got := StripHTML("&lt;script&gt;alert(1)&lt;/script&gt;"); got != "alert(1)" {
		t.Errorf("StripHTML encoded tags = %q", got)
	}
}
