package race

import "testing"

func TestFingerprint(t *testing.T) {
	t.Parallel()

	t.Run("joins components lowercased", func(t *testing.T) {
		got := Fingerprint("Head Of The River", "2024-12-08", "12", "MV8", "")
		want := "head_of_the_river_2024-12-08_12_mv8"
		if got != want {
			t.Fatalf("Fingerprint = %q, want %q", got, want)
		}
	})

	t.Run("empty components are dropped", func(t *testing.T) {
		got := Fingerprint("Sprints", "", "3", "", "")
		if got != "sprints_3" {
			t.Fatalf("Fingerprint = %q, want sprints_3", got)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		a := Fingerprint("City Regatta", "2025-05-01", "7", "WJ4", "A")
		b := Fingerprint("City Regatta", "2025-05-01", "7", "WJ4", "A")
		if a != b {
			t.Fatalf("same inputs produced %q and %q", a, b)
		}
	})

	t.Run("distinct races stay distinct", func(t *testing.T) {
		a := Fingerprint("City Regatta", "2025-05-01", "7", "WJ4", "")
		b := Fingerprint("City Regatta", "2025-05-01", "8", "WJ4", "")
		c := Fingerprint("City Regatta", "2025-05-01", "7", "MV8", "")
		if a == b || a == c {
			t.Fatalf("expected distinct fingerprints, got %q %q %q", a, b, c)
		}
	})
}
