package version

import "testing"

func TestVersionIsSet(t *testing.T) {
	if v := String(); v == "" {
		t.Fatal("String() must not be empty")
	}
}

func TestVersionPrefersLdflags(t *testing.T) {
	old := version
	t.Cleanup(func() { version = old })

	version = "v9.9.9"
	if got := String(); got != "v9.9.9" {
		t.Errorf("String() = %q, want v9.9.9", got)
	}
}
