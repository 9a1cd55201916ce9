package usecase

import "testing"

func TestPayloadHash(t *testing.T) {
	t.Parallel()

	t.Run("stable across calls", func(t *testing.T) {
		a, err := PayloadHash(samplePayload())
		if err != nil {
			t.Fatalf("hash failed: %v", err)
		}
		b, err := PayloadHash(samplePayload())
		if err != nil {
			t.Fatalf("hash failed: %v", err)
		}
		if a != b {
			t.Fatalf("same payload hashed differently: %q vs %q", a, b)
		}
		if len(a) != 64 {
			t.Fatalf("expected hex sha256, got %q", a)
		}
	})

	t.Run("content change moves the hash", func(t *testing.T) {
		base, err := PayloadHash(samplePayload())
		if err != nil {
			t.Fatalf("hash failed: %v", err)
		}

		changed := samplePayload()
		changed.Schedule[0].Results[0].Placement = strPtr("9")
		got, err := PayloadHash(changed)
		if err != nil {
			t.Fatalf("hash failed: %v", err)
		}
		if got == base {
			t.Fatal("changed payload produced identical hash")
		}
	})
}
