package attachment

import (
	"errors"
	"testing"
)

func TestCheck(t *testing.T) {
	cases := []struct {
		name        string
		size        int64
		contentType string
		want        error
	}{
		{"small png", 512, "image/png", nil},
		{"exactly 1MiB", MaxBytes, "image/jpeg", nil},
		{"one byte over", MaxBytes + 1, "image/jpeg", ErrTooLarge},
		{"2MiB image", 2 * MaxBytes, "image/png", ErrTooLarge},
		{"zero size", 0, "image/png", ErrEmpty},
		{"negative size", -1, "image/png", ErrEmpty},
		{"pdf", 512, "application/pdf", ErrNotImage},
		{"no content type", 512, "", ErrNotImage},
		{"gif", 1024, "image/gif", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := Check(tc.size, tc.contentType); !errors.Is(err, tc.want) {
				t.Fatalf("Check(%d, %q) = %v, want %v", tc.size, tc.contentType, err, tc.want)
			}
		})
	}
}

func TestObjectKey(t *testing.T) {
	got := ObjectKey(7, "minji", 42)
	want := "posts/7-minji/42"
	if got != want {
		t.Fatalf("ObjectKey = %q, want %q", got, want)
	}
}
