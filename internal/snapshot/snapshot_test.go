package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultProfileValidates(t *testing.T) {
	p := Default()
	if err := p.Validate(); err != nil {
		t.Fatalf("default profile invalid: %v", err)
	}
	if p.FileMode() != 0o644 {
		t.Errorf("default mode = %04o", p.FileMode())
	}
	if !strings.HasPrefix(p.Paths.SourceDir, "/data/app/") {
		t.Errorf("default path %q outside installation root", p.Paths.SourceDir)
	}
}

func TestParseOverlaysDefaults(t *testing.T) {
	p, err := Parse([]byte(`
creator:
  class: com.evil.FakeCreator
file:
  mutable: true
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Creator.Class != "com.evil.FakeCreator" {
		t.Errorf("creator class = %q", p.Creator.Class)
	}
	if !p.File.Mutable {
		t.Error("mutable override lost")
	}
	// Untouched fields keep their defaults.
	if p.Package != "com.example.app" {
		t.Errorf("package = %q", p.Package)
	}
	if p.PMProxyClass != "android.content.pm.IPackageManager$Stub$Proxy" {
		t.Errorf("proxy class = %q", p.PMProxyClass)
	}
}

func TestParseRejectsBadMode(t *testing.T) {
	_, err := Parse([]byte("file:\n  mode: \"rw-r--r--\"\n"))
	if err == nil {
		t.Fatal("non-octal mode accepted")
	}
}

func TestValidateRequiresPackageAndCreator(t *testing.T) {
	p := Default()
	p.Package = ""
	if err := p.Validate(); err == nil {
		t.Error("empty package accepted")
	}
	p = Default()
	p.Creator.Class = ""
	if err := p.Validate(); err == nil {
		t.Error("empty creator class accepted")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.yaml")
	if err := os.WriteFile(path, []byte("package: com.other.app\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Package != "com.other.app" {
		t.Errorf("package = %q", p.Package)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}
