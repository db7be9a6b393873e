// SPDX-License-Identifier: MPL-2.0

package secret

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	for _, length := range []int{1, 8, 32, 256} {
		got, err := Generate(length)
		if err != nil {
			t.Fatalf("Generate(%d) error = %v", length, err)
		}
		if len(got) != length {
			t.Errorf("Generate(%d) returned %d characters", length, len(got))
		}
		if i := strings.IndexFunc(got, func(r rune) bool { return !strings.ContainsRune(Alphanumeric, r) }); i >= 0 {
			t.Errorf("Generate(%d) = %q has non-alphanumeric character at %d", length, got, i)
		}
	}
}

func TestGenerate_Distinct(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for range 100 {
		s, err := Generate(32)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if seen[s] {
			t.Fatalf("Generate() repeated %q", s)
		}
		seen[s] = true
	}
}

func TestGenerate_InvalidLength(t *testing.T) {
	t.Parallel()

	for _, length := range []int{0, -1} {
		if _, err := Generate(length); !errors.Is(err, ErrInvalidLength) {
			t.Errorf("Generate(%d) error = %v, want ErrInvalidLength", length, err)
		}
	}
}

func TestGenerate_ReaderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("entropy exhausted")
	if _, err := generate(iotest.ErrReader(boom), 32); !errors.Is(err, boom) {
		t.Errorf("generate() error = %v, want %v", err, boom)
	}
}
