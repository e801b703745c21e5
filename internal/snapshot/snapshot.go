// Package snapshot defines the YAML profile describing an observed runtime
// state. A profile is enough to reconstruct the object graph the probe
// introspects: the package-info creator singleton, class loaders, the
// package-manager proxy, the component factory and the installed package
// paths. The CLI and tests build simulated environments from profiles.
package snapshot

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Creator describes the package-info creator singleton.
type Creator struct {
	Class        string   `yaml:"class"`
	String       string   `yaml:"string,omitempty"` // toString(); defaults to Class+"@7f8a1c2d"
	Loader       string   `yaml:"loader"`
	SystemLoader string   `yaml:"system_loader"`
	Fields       []string `yaml:"fields,omitempty"` // declared field names, expected empty
}

// Paths holds the independently-sourced strings naming the installed
// package location.
type Paths struct {
	Resource        string `yaml:"resource"`
	Code            string `yaml:"code"`
	SourceDir       string `yaml:"source_dir"`
	PublicSourceDir string `yaml:"public_source_dir"`
	PackageManager  string `yaml:"package_manager"` // as returned by a fresh PM query
}

// File describes the filesystem state reported for every package path.
type File struct {
	Mode    string `yaml:"mode"`    // octal, e.g. "0644"
	UID     int    `yaml:"uid"`     // owning uid
	Mutable bool   `yaml:"mutable"` // whether a permission-change attempt succeeds
	Missing bool   `yaml:"missing,omitempty"`
}

// Profile is one recorded runtime state.
type Profile struct {
	Package          string  `yaml:"package"`
	Creator          Creator `yaml:"creator"`
	PMProxyClass     string  `yaml:"pm_proxy_class"`
	ComponentFactory string  `yaml:"component_factory"`
	// PMComponentFactory overrides the factory string a fresh
	// package-manager query returns. Empty means same as ComponentFactory.
	PMComponentFactory string `yaml:"pm_component_factory,omitempty"`
	Paths              Paths  `yaml:"paths"`
	File               File   `yaml:"file"`
}

// Default returns the profile of an untampered installation.
func Default() Profile {
	path := "/data/app/~~9XqTfk2w==/com.example.app-Zx1/base.apk"
	return Profile{
		Package: "com.example.app",
		Creator: Creator{
			Class:        "android.content.pm.PackageInfo$1",
			Loader:       "java.lang.BootClassLoader",
			SystemLoader: "dalvik.system.PathClassLoader",
		},
		PMProxyClass:     "android.content.pm.IPackageManager$Stub$Proxy",
		ComponentFactory: "androidx.core.app.CoreComponentFactory",
		Paths: Paths{
			Resource:        path,
			Code:            path,
			SourceDir:       path,
			PublicSourceDir: path,
			PackageManager:  path,
		},
		File: File{Mode: "0644", UID: 1000},
	}
}

// Load reads a profile from a YAML file. Missing fields fall back to the
// untampered defaults so a snapshot only has to spell out what deviates.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("snapshot: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a profile from YAML bytes over the defaults.
func Parse(data []byte) (Profile, error) {
	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("snapshot: parse: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate rejects profiles that cannot build a coherent object graph.
func (p Profile) Validate() error {
	if p.Package == "" {
		return fmt.Errorf("snapshot: package name is required")
	}
	if p.Creator.Class == "" {
		return fmt.Errorf("snapshot: creator class is required")
	}
	if p.File.Mode != "" {
		var mode uint32
		if _, err := fmt.Sscanf(p.File.Mode, "%o", &mode); err != nil {
			return fmt.Errorf("snapshot: file mode %q is not octal", p.File.Mode)
		}
	}
	return nil
}

// FileMode returns the profile's file mode bits.
func (p Profile) FileMode() uint32 {
	var mode uint32
	fmt.Sscanf(p.File.Mode, "%o", &mode)
	return mode
}
