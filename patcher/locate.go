package patcher

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// The installation layout the patch is built against. A directory is only
// patched when it carries this name and the marker file below it.
const (
	ProductDirName = "Hearthstone"
	DataDirName    = "Hearthstone_Data"
	ManagedDirName = "Managed"
	MarkerFileName = "Assembly-CSharp.dll"

	// HomeEnv overrides installation discovery.
	HomeEnv = "HEARTHSTONE_HOME"
)

var errNoDefaultRoot = errors.New("no conventional installation root on this platform")

// IsValidTarget reports whether path is a Hearthstone installation directory.
// It only inspects the filesystem.
func IsValidTarget(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	root, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return false
	}
	if filepath.Base(root) != ProductDirName {
		return false
	}

	marker, err := os.Stat(filepath.Join(root, DataDirName, ManagedDirName, MarkerFileName))
	return err == nil && marker.Mode().IsRegular()
}

// Locator discovers the installation directory.
type Locator struct {
	// Getenv reads the HomeEnv override. Nil skips the override.
	Getenv func(string) string

	// DefaultRoot returns the directory the product installs under by
	// default, e.g. Program Files (x86). Nil skips that step.
	DefaultRoot func() (string, error)
}

// NewLocator returns a Locator reading the process environment and the
// platform's conventional install root.
func NewLocator() *Locator {
	return &Locator{
		Getenv:      os.Getenv,
		DefaultRoot: defaultInstallRoot,
	}
}

// Find returns the absolute installation directory, trying the HomeEnv
// override first and then the default install root. It reports false when
// neither is a valid target.
func (l *Locator) Find() (string, bool) {
	if l.Getenv != nil {
		if dir := l.Getenv(HomeEnv); dir != "" {
			if IsValidTarget(dir) {
				if abs, err := filepath.Abs(dir); err == nil {
					return abs, true
				}
			}
			slog.Debug("Ignoring invalid installation override", "env", HomeEnv, "path", dir)
		}
	}

	if l.DefaultRoot != nil {
		root, err := l.DefaultRoot()
		if err != nil {
			slog.Debug("No default installation root", "error", err)
			return "", false
		}
		dir := filepath.Join(root, ProductDirName)
		if IsValidTarget(dir) {
			if abs, err := filepath.Abs(dir); err == nil {
				return abs, true
			}
		}
		slog.Debug("Default installation directory is not valid", "path", dir)
	}

	return "", false
}

// Target is a validated installation directory. Only NewTarget builds one.
type Target struct {
	root string
}

// NewTarget validates path and returns it as a Target with an absolute root.
func NewTarget(path string) (Target, error) {
	if !IsValidTarget(path) {
		return Target{}, &InvalidTargetError{Path: path}
	}
	root, err := filepath.Abs(path)
	if err != nil {
		return Target{}, &InvalidTargetError{Path: path}
	}
	return Target{root: root}, nil
}

// Root is the absolute installation directory.
func (t Target) Root() string { return t.root }
