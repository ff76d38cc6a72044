//go:build !integration

package telegram

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		text string
		want Kind
	}{
		{"/start", KindCommand},
		{"/help extra words", KindCommand},
		{"  /unknown", KindCommand},
		{"https://youtu.be/abc123", KindURL},
		{"http://example.com/video", KindURL},
		{"  https://www.tiktok.com/@user/video/1  ", KindURL},
		{"not a url", KindOther},
		{"www.youtube.com/watch?v=x", KindOther},
		{"look at https://youtu.be/x", KindOther},
		{"ftp://example.com", KindOther},
		{"", KindOther},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			if got := Classify(tc.text); got != tc.want {
				t.Fatalf("Classify(%q) = %s, want %s", tc.text, got, tc.want)
			}
		})
	}
}

func TestIsNotModified(t *testing.T) {
	if !isNotModified(errors.New("Bad Request: message is not modified: specified new message content and reply markup are exactly the same")) {
		t.Fatalf("expected not-modified error to match")
	}
	if isNotModified(errors.New("Bad Request: message to edit not found")) {
		t.Fatalf("unexpected match")
	}
	if isNotModified(nil) {
		t.Fatalf("nil should not match")
	}
}
