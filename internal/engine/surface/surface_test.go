package surface

import (
	"errors"
	"testing"
)

func TestAcquireIsExclusive(t *testing.T) {
	if err := Acquire(); err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	defer Release()

	if err := Acquire(); !errors.Is(err, ErrAlreadyOpen) {
		t.Errorf("second Acquire() = %v, want ErrAlreadyOpen", err)
	}
}

func TestReleaseAllowsReopen(t *testing.T) {
	if err := Acquire(); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	Release()
	if err := Acquire(); err != nil {
		t.Errorf("Acquire() after Release = %v", err)
	}
	Release()
}

func TestBackendValid(t *testing.T) {
	tests := []struct {
		backend Backend
		want    bool
	}{
		{BackendSDL, true},
		{BackendGLFW, true},
		{"vulkan", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := tt.backend.Valid(); got != tt.want {
			t.Errorf("Backend(%q).Valid() = %v, want %v", tt.backend, got, tt.want)
		}
	}
}
