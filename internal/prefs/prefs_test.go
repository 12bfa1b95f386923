package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func detector(theme string) Detector {
	return DetectorFunc(func() string { return theme })
}

func TestResolveTheme(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		os     string
		want   Theme
	}{
		{"stored wins over os", `{"theme":"light"}`, "dark", ThemeLight},
		{"stored dark", `{"theme":"dark"}`, "none", ThemeDark},
		{"os dark", "", "dark", ThemeDark},
		{"os light", "", "light", ThemeLight},
		{"fallback light", "", "none", ThemeLight},
		{"invalid stored ignored", `{"theme":"sepia"}`, "dark", ThemeDark},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "prefs.json")
			if tt.stored != "" {
				if err := os.WriteFile(path, []byte(tt.stored), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			got, err := ResolveTheme(NewStore(path), detector(tt.os))
			if err != nil {
				t.Fatalf("ResolveTheme: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolveWithoutDetector(t *testing.T) {
	got, _ := ResolveTheme(NewStore(filepath.Join(t.TempDir(), "p.json")), nil)
	if got != ThemeLight {
		t.Errorf("got %s", got)
	}
}

func TestCorruptStoreFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	_ = os.WriteFile(path, []byte("{not json"), 0o644)
	got, err := ResolveTheme(NewStore(path), detector("dark"))
	if err == nil {
		t.Error("expected read error")
	}
	if got != ThemeDark {
		t.Errorf("got %s, want dark", got)
	}
}

func TestTogglePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.json")
	s := NewStore(path)

	next, err := ToggleTheme(s, ThemeLight)
	if err != nil || next != ThemeDark {
		t.Fatalf("ToggleTheme = %s, %v", next, err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != `{"theme":"dark"}` {
		t.Errorf("stored %s", data)
	}

	// A persisted choice beats the environment on the next load.
	got, _ := ResolveTheme(NewStore(path), detector("light"))
	if got != ThemeDark {
		t.Errorf("reload = %s, want dark", got)
	}

	next, _ = ToggleTheme(s, next)
	if next != ThemeLight {
		t.Errorf("second toggle = %s", next)
	}
	if err := s.SetTheme("blue"); err == nil {
		t.Error("expected error for invalid theme")
	}
}
