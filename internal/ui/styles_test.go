package ui

import "testing"

func TestSetTheme(t *testing.T) {
	t.Cleanup(func() { SetTheme(false) })

	SetTheme(true)
	if !Dark() || ColorPrimary != darkPalette.primary {
		t.Errorf("dark palette not applied: %v", ColorPrimary)
	}
	SetTheme(false)
	if Dark() || ColorBorder != lightPalette.border {
		t.Errorf("light palette not applied: %v", ColorBorder)
	}
}

func TestKeyMapHelp(t *testing.T) {
	if len(Keys.ShortHelp()) == 0 {
		t.Error("short help empty")
	}
	n := 0
	for _, col := range Keys.FullHelp() {
		n += len(col)
	}
	if n < len(Keys.ShortHelp()) {
		t.Errorf("full help has %d bindings", n)
	}
}
