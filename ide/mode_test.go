package ide

import "testing"

func TestModeString(t *testing.T) {
	cases := map[Mode]string{
		ModeForward:     "forward",
		ModeIDE:         "ide",
		ModeIncremental: "incremental",
		Mode(99):        "unknown",
	}
	for mode, want := range cases {
		if got := mode.String(); got != want {
			t.Errorf("Mode(%d).String() = %q, want %q", mode, got, want)
		}
	}
}
