// Package build turns cfgstack settings into a merged configuration file:
// it locates the layered documents, folds them, renders the result and
// replaces the output file atomically.
package build

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/skekre98/cfgstack/config"
	"github.com/skekre98/cfgstack/config/source"
)

// Plan is the resolved set of paths for one build.
type Plan struct {
	// Profile is the selected profile name, without extension.
	Profile string

	Template    string
	ProfilesDir string
	ProfilePath string
	Local       string
	Output      string

	// OutputName is the output path as configured, for messages.
	OutputName string

	// Format is "toml" or "yaml".
	Format string
}

// NewPlan resolves every relative path in s against s.Dir.
func NewPlan(s config.Root) Plan {
	join := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(s.Dir, p)
	}

	profile := strings.TrimSuffix(s.Profile, ".toml")
	profiles := join(s.Profiles)
	return Plan{
		Profile:     profile,
		Template:    join(s.Template),
		ProfilesDir: profiles,
		ProfilePath: ProfilePath(profiles, profile),
		Local:       join(s.Local),
		Output:      join(s.Output),
		OutputName:  s.Output,
		Format:      s.Format,
	}
}

// ProfilePath returns where the named profile lives under dir.
func ProfilePath(dir, profile string) string {
	return filepath.Join(dir, filepath.FromSlash(profile)+".toml")
}

// WithProfile returns a copy of p selecting another profile.
func (p Plan) WithProfile(profile string) Plan {
	p.Profile = strings.TrimSuffix(profile, ".toml")
	p.ProfilePath = ProfilePath(p.ProfilesDir, p.Profile)
	return p
}

// Sources lists the layered documents, lowest priority first: the template
// and the local override may be absent, the profile may not.
func (p Plan) Sources() []config.ConfigSource {
	return []config.ConfigSource{
		&source.FileSource{Path: p.Template, Optional: true},
		&source.FileSource{Path: p.ProfilePath},
		&source.FileSource{Path: p.Local, Optional: true},
	}
}

// ProfileFile is the profile's file name as shown to users, e.g. "fast.toml".
// Nested profiles show only their last element: "team/fast" is "fast.toml".
func (p Plan) ProfileFile() string {
	return path.Base(p.Profile) + ".toml"
}
