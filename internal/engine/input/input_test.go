package input

import "testing"

func TestPressRelease(t *testing.T) {
	s := New()
	s.Press(KeyLeft)
	if !s.Held(KeyLeft) || !s.IsKeyPressed(KeyLeft) {
		t.Fatal("left should be held after Press")
	}

	s.BeginFrame()
	if !s.IsKeyPressed(KeyLeft) {
		t.Error("held key must stay pressed across frames")
	}

	s.Release(KeyLeft)
	if s.IsKeyPressed(KeyLeft) {
		t.Error("released key still pressed")
	}
}

func TestTapBetweenPollsIsLatched(t *testing.T) {
	s := New()
	s.BeginFrame()
	s.Press(KeyCapture)
	s.Release(KeyCapture)

	if s.Held(KeyCapture) {
		t.Error("Held() = true after release")
	}
	if !s.IsKeyPressed(KeyCapture) {
		t.Error("tap within one poll window was lost")
	}

	s.BeginFrame()
	if s.IsKeyPressed(KeyCapture) {
		t.Error("latched press survived the next frame")
	}
}

func TestUnknownKeyIgnored(t *testing.T) {
	s := New()
	s.Press(KeyUnknown)
	if s.IsKeyPressed(KeyUnknown) {
		t.Error("unknown key should never read as pressed")
	}
}

func TestReset(t *testing.T) {
	s := New()
	s.Press(KeyUp)
	s.Press(KeyEscape)
	s.Reset()
	for _, k := range []Key{KeyUp, KeyEscape} {
		if s.IsKeyPressed(k) {
			t.Errorf("%s pressed after Reset", k)
		}
	}
}

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{KeyEscape, "escape"},
		{KeyReset, "reset"},
		{Key(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("Key(%d).String() = %q, want %q", tt.key, got, tt.want)
		}
	}
}
