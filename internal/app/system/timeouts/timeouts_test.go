package timeouts

import (
	"testing"
	"time"
)

func TestConfigureOverridesAndReset(t *testing.T) {
	t.Cleanup(Reset)

	Configure(Config{Short: 1 * time.Second, Long: 2 * time.Minute})

	if got := Short(); got != 1*time.Second {
		t.Errorf("Short() = %v, want 1s", got)
	}
	if got := Long(); got != 2*time.Minute {
		t.Errorf("Long() = %v, want 2m", got)
	}

	// Zero values must not clobber existing settings.
	if got := Medium(); got != DefaultMedium {
		t.Errorf("Medium() = %v, want default %v", got, DefaultMedium)
	}

	Reset()
	if got := Short(); got != DefaultShort {
		t.Errorf("Short() after Reset = %v, want %v", got, DefaultShort)
	}
}
