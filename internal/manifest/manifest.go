// Package manifest reads and writes the bot's pinned dependency manifest
// (requirements.txt).
package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultFileName is the manifest file name the bot and pip both expect.
const DefaultFileName = "requirements.txt"

// CriticalPackage is the one dependency whose installation failure aborts
// provisioning. The bot cannot sign a single transaction without it.
const CriticalPackage = "solders"

// Requirement is a single named, optionally version-pinned package.
type Requirement struct {
	Name    string
	Version string
}

// Spec renders the requirement as a pip install spec ("name==version" or "name").
func (r Requirement) Spec() string {
	if r.Version == "" {
		return r.Name
	}
	return r.Name + "==" + r.Version
}

// Critical reports whether this requirement is the critical dependency.
func (r Requirement) Critical() bool {
	return strings.EqualFold(r.Name, CriticalPackage)
}

// Default returns the pinned package set the bot was developed against.
func Default() []Requirement {
	return []Requirement{
		{Name: "solders", Version: "0.21.0"},
		{Name: "solana", Version: "0.34.3"},
		{Name: "aiohttp", Version: "3.9.5"},
		{Name: "aiodns", Version: "3.2.0"},
		{Name: "base58", Version: "2.1.1"},
		{Name: "colorama", Version: "0.4.6"},
	}
}

// ImportNames returns the module names to load during the install smoke test.
// For this package set, pip names and import names happen to match.
func ImportNames(reqs []Requirement) []string {
	names := make([]string, 0, len(reqs))
	for _, r := range reqs {
		names = append(names, strings.ToLower(r.Name))
	}
	return names
}

// Parse reads requirements from r. Blank lines and '#' comments are skipped.
// Only the "name" and "name==version" forms are supported; anything else is
// an error so a typo never silently drops a dependency.
func Parse(r io.Reader) ([]Requirement, error) {
	var reqs []Requirement

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.Index(line, " #"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}

		name, version, pinned := strings.Cut(line, "==")
		name = strings.TrimSpace(name)
		version = strings.TrimSpace(version)
		if name == "" || strings.ContainsAny(name, " \t") || (pinned && version == "") {
			return nil, fmt.Errorf("invalid requirement on line %d: %q", lineNum, line)
		}
		reqs = append(reqs, Requirement{Name: name, Version: version})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	return reqs, nil
}

// Load reads the manifest at path.
func Load(path string) ([]Requirement, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest %s: %w", path, err)
	}
	defer file.Close()

	reqs, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return reqs, nil
}

// Write persists requirements to path, overwriting any existing file.
func Write(path string, reqs []Requirement) error {
	var b strings.Builder
	b.WriteString("# Python dependencies for the FOGO swap bot.\n")
	b.WriteString("# Managed by fogoctl: edit pins here, then run 'fogoctl update'.\n")
	for _, r := range reqs {
		b.WriteString(r.Spec())
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	return nil
}

// Ensure writes the default manifest if none exists yet. An existing file is
// never touched, even if its contents have drifted from the defaults.
func Ensure(path string) (created bool, err error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat manifest %s: %w", path, err)
	}
	if err := Write(path, Default()); err != nil {
		return false, err
	}
	return true, nil
}
