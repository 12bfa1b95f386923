// Package prefs persists user preferences between sessions.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cli/go-gh/v2/pkg/term"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

func (t Theme) Toggled() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Detector reports the environment's colour scheme as "dark", "light" or
// anything else when unknown.
type Detector interface {
	Theme() string
}

type DetectorFunc func() string

func (f DetectorFunc) Theme() string { return f() }

// TerminalDetector inspects the terminal background colour.
func TerminalDetector() Detector {
	t := term.FromEnv()
	return DetectorFunc(t.Theme)
}

type preferences struct {
	Theme Theme `json:"theme,omitempty"`
}

// Store keeps preferences in a JSON file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Theme returns the stored theme. ok is false when nothing valid is stored.
func (s *Store) Theme() (Theme, bool, error) {
	p, err := s.read()
	if err != nil {
		return "", false, err
	}
	return p.Theme, p.Theme.Valid(), nil
}

func (s *Store) SetTheme(t Theme) error {
	if !t.Valid() {
		return fmt.Errorf("invalid theme %q", t)
	}
	p, err := s.read()
	if err != nil {
		p = preferences{}
	}
	p.Theme = t
	return s.write(p)
}

func (s *Store) read() (preferences, error) {
	var p preferences
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, fmt.Errorf("read preferences: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return preferences{}, fmt.Errorf("decode preferences: %w", err)
	}
	return p, nil
}

func (s *Store) write(p preferences) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}

// ResolveTheme picks the starting theme: a stored choice, else what the
// detector reports, else light. A store that cannot be read counts as empty
// and the read error is returned alongside the resolved theme.
func ResolveTheme(s *Store, d Detector) (Theme, error) {
	t, ok, err := s.Theme()
	if ok {
		return t, nil
	}
	if d != nil {
		switch d.Theme() {
		case string(ThemeDark):
			return ThemeDark, err
		case string(ThemeLight):
			return ThemeLight, err
		}
	}
	return ThemeLight, err
}

// ToggleTheme flips current and persists the result. The flipped theme is
// returned even when saving fails.
func ToggleTheme(s *Store, current Theme) (Theme, error) {
	next := current.Toggled()
	return next, s.SetTheme(next)
}
