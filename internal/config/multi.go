package config

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var ErrNoConfig = errors.New("no config selected")

// DefaultLabel is the profile created by InitDefaultConfig. It cannot be
// removed or renamed.
const DefaultLabel = "Default"

// RootEnv points the profile store somewhere else entirely.
const RootEnv = "MANGAPDF_CONFIG_HOME"

const profileExt = ".yaml"

func ConfigRoot() string {
	if dir := os.Getenv(RootEnv); dir != "" {
		return dir
	}

	// Windows
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, "mangapdf")
	}

	// Linux/macOS XDG
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mangapdf")
	}

	// Linux/macOS default
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "mangapdf")
}

// Store keeps labeled profiles as <root>/configs/<label>.yaml and the active
// label in <root>/current_config.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

// DefaultStore is the store at ConfigRoot, resolved on every call so that
// environment changes take effect.
func DefaultStore() *Store {
	return NewStore(ConfigRoot())
}

func (s *Store) Dir() string {
	return filepath.Join(s.root, "configs")
}

func (s *Store) currentFile() string {
	return filepath.Join(s.root, "current_config")
}

// Path returns the file of a profile, which may not exist yet.
func (s *Store) Path(label string) (string, error) {
	if err := checkLabel(label); err != nil {
		return "", err
	}

	return filepath.Join(s.Dir(), label+profileExt), nil
}

func (s *Store) exists(label string) (string, bool, error) {
	path, err := s.Path(label)
	if err != nil {
		return "", false, err
	}

	_, statErr := os.Stat(path)
	return path, statErr == nil, nil
}

func (s *Store) ensure() error {
	return os.MkdirAll(s.Dir(), 0755)
}

func (s *Store) setCurrent(label string) error {
	return os.WriteFile(s.currentFile(), []byte(label), 0644)
}

// Current returns the active label, or ErrNoConfig when none is set.
func (s *Store) Current() (string, error) {
	b, err := os.ReadFile(s.currentFile())
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoConfig
	}
	if err != nil {
		return "", err
	}

	label := strings.TrimSpace(string(b))
	if label == "" {
		return "", ErrNoConfig
	}

	return label, nil
}

func (s *Store) Active() (string, error) {
	label, err := s.Current()
	if err != nil {
		return "", err
	}

	return s.Path(label)
}

type ConfigInfo struct {
	Label  string
	Path   string
	Active bool
}

func (s *Store) List() ([]ConfigInfo, error) {
	entries, err := os.ReadDir(s.Dir())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	active, _ := s.Current()
	var out []ConfigInfo

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != profileExt {
			continue
		}

		label := strings.TrimSuffix(name, profileExt)
		out = append(out, ConfigInfo{
			Label:  label,
			Path:   filepath.Join(s.Dir(), name),
			Active: label == active,
		})
	}

	slices.SortFunc(out, func(a, b ConfigInfo) int { return cmp.Compare(a.Label, b.Label) })

	return out, nil
}

func (s *Store) Switch(label string) error {
	_, ok, err := s.exists(label)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("config %q does not exist", label)
	}

	return s.setCurrent(label)
}

// Create writes a fresh profile with default values.
func (s *Store) Create(label string) (string, error) {
	path, ok, err := s.exists(label)
	if err != nil {
		return "", err
	}
	if ok {
		return "", fmt.Errorf("config %q already exists", label)
	}
	if err := s.ensure(); err != nil {
		return "", err
	}

	return path, SaveYAML(DefaultConfig(), path)
}

// Import copies an existing YAML file in as a new profile. The file must
// parse and validate.
func (s *Store) Import(label, srcPath string) error {
	dst, ok, err := s.exists(label)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("config %q already exists", label)
	}

	cfg, err := LoadYAML(srcPath)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", srcPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", srcPath, err)
	}

	raw, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	if err := s.ensure(); err != nil {
		return err
	}

	return os.WriteFile(dst, raw, 0644)
}

func (s *Store) Rename(oldLabel, newLabel string) error {
	if oldLabel == DefaultLabel {
		return errors.New("cannot rename the Default config")
	}

	oldPath, ok, err := s.exists(oldLabel)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("config %q does not exist", oldLabel)
	}

	newPath, taken, err := s.exists(newLabel)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("config %q already exists", newLabel)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return err
	}

	if active, _ := s.Current(); active == oldLabel {
		return s.setCurrent(newLabel)
	}

	return nil
}

// Remove deletes a profile. Removing the active one switches back to Default
// first; switched reports whether that happened.
func (s *Store) Remove(label string) (switched bool, err error) {
	if label == DefaultLabel {
		return false, errors.New("cannot remove the Default config")
	}

	path, ok, err := s.exists(label)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("config %q does not exist", label)
	}

	if active, _ := s.Current(); active == label {
		if err := s.Switch(DefaultLabel); err != nil {
			return false, fmt.Errorf("failed switching to Default: %w", err)
		}
		switched = true
	}

	return switched, os.Remove(path)
}

// Init creates the Default profile and makes it active. An existing Default
// is left alone, reactivated, and reported with os.ErrExist.
func (s *Store) Init() (string, error) {
	path, ok, err := s.exists(DefaultLabel)
	if err != nil {
		return "", err
	}
	if err := s.ensure(); err != nil {
		return "", err
	}

	if ok {
		_ = s.setCurrent(DefaultLabel)
		return path, os.ErrExist
	}

	if err := SaveYAML(DefaultConfig(), path); err != nil {
		return "", err
	}

	return path, s.setCurrent(DefaultLabel)
}

// Reset overwrites a profile with the defaults.
func (s *Store) Reset(label string) (string, error) {
	path, ok, err := s.exists(label)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("config %q does not exist", label)
	}

	return path, SaveYAML(DefaultConfig(), path)
}

func checkLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return errors.New("label cannot be empty")
	}
	if strings.ContainsAny(label, `/\`) || label == "." || label == ".." {
		return fmt.Errorf("invalid label %q", label)
	}

	return nil
}

// Package-level helpers operate on DefaultStore.

func ConfigsDir() string                            { return DefaultStore().Dir() }
func ConfigPathByLabel(label string) (string, error) { return DefaultStore().Path(label) }
func CurrentLabel() (string, error)                  { return DefaultStore().Current() }
func ActiveConfigPath() (string, error)              { return DefaultStore().Active() }
func ListConfigs() ([]ConfigInfo, error)             { return DefaultStore().List() }
func SwitchConfig(label string) error                { return DefaultStore().Switch(label) }
func AddConfig(label, srcPath string) error          { return DefaultStore().Import(label, srcPath) }
func CreateEmptyConfig(label string) (string, error) { return DefaultStore().Create(label) }
func RenameConfig(oldLabel, newLabel string) error   { return DefaultStore().Rename(oldLabel, newLabel) }
func RemoveConfig(label string) (bool, error)        { return DefaultStore().Remove(label) }
func InitDefaultConfig() (string, error)             { return DefaultStore().Init() }
func ResetConfig(label string) (string, error)       { return DefaultStore().Reset(label) }
