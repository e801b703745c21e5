package probe

import (
	"context"
	"strings"

	"github.com/eyad-hamdy98/CheckBeer/boundary"
)

// PackagePaths cross-checks six independently-sourced strings naming the
// application's installed package location, then inspects the filesystem
// state of each path. Any pairwise mismatch, a missing installation-root
// prefix or base-artifact suffix, wrong permissions or owner, or a
// permission-change attempt that succeeds is suspicious — a path that
// should be immutable must not be mutable.
func (p *Probe) PackagePaths(ctx context.Context, appContext boundary.ObjectRef) DetectorResult {
	t := p.begin("package-paths")

	sc := boundary.NewScope(p.env)
	defer sc.Release()

	paths, err := p.collectPaths(sc, appContext)
	if err != nil {
		t.fail(err)
		return t.result()
	}

	for _, src := range paths {
		t.infof("%s: %s", src.source, src.path)
	}

	consistent := true
	for _, src := range paths[1:] {
		if src.path != paths[0].path {
			consistent = false
			t.flagf("path mismatch: %s (%s) != %s (%s)",
				paths[0].path, paths[0].source, src.path, src.source)
		}
	}
	if consistent {
		t.infof("package paths are consistent")
	} else {
		t.errorf("package paths are inconsistent")
	}

	prefixOK := true
	for _, src := range paths {
		if !strings.HasPrefix(src.path, ExpectedPathPrefix) {
			prefixOK = false
			t.flagf("path does not start with %s: %s", ExpectedPathPrefix, src.path)
		}
	}
	if prefixOK {
		t.infof("all package paths start with %s", ExpectedPathPrefix)
	}

	suffixOK := true
	for _, src := range paths {
		if !strings.HasSuffix(src.path, ExpectedPathSuffix) {
			suffixOK = false
			t.flagf("path does not end with %s: %s", ExpectedPathSuffix, src.path)
		}
	}
	if suffixOK {
		t.infof("all package paths end with %s", ExpectedPathSuffix)
	}

	for _, src := range paths {
		p.inspectPath(ctx, t, src.path)
	}

	return t.result()
}

type sourcedPath struct {
	source string
	path   string
}

// collectPaths gathers the installed-package location from every
// independent source.
func (p *Probe) collectPaths(sc *boundary.Scope, appContext boundary.ObjectRef) ([]sourcedPath, error) {
	resourceV, err := boundary.CallMethod(p.env, sc, appContext,
		"getPackageResourcePath", "()Ljava/lang/String;", boundary.KindString)
	if err != nil {
		return nil, err
	}
	resource, err := p.stringResult(resourceV, "package resource path")
	if err != nil {
		return nil, err
	}

	codeV, err := boundary.CallMethod(p.env, sc, appContext,
		"getPackageCodePath", "()Ljava/lang/String;", boundary.KindString)
	if err != nil {
		return nil, err
	}
	code, err := p.stringResult(codeV, "package code path")
	if err != nil {
		return nil, err
	}

	infoV, err := boundary.CallMethod(p.env, sc, appContext,
		"getApplicationInfo", "()Landroid/content/pm/ApplicationInfo;", boundary.KindObject)
	if err != nil {
		return nil, err
	}
	info, err := infoV.AsRef()
	if err != nil || info == boundary.NullRef {
		return nil, &MalformedObservationError{What: "application info"}
	}

	sourceDir, err := p.infoString(sc, info, "sourceDir")
	if err != nil {
		return nil, err
	}
	publicSourceDir, err := p.infoString(sc, info, "publicSourceDir")
	if err != nil {
		return nil, err
	}

	pmInfo, err := p.packageManagerAppInfo(sc, appContext)
	if err != nil {
		return nil, err
	}
	pmSourceDir, err := p.infoString(sc, pmInfo, "sourceDir")
	if err != nil {
		return nil, err
	}

	// Native-side read: re-resolve the application info freshly and read
	// the same field again, bypassing any value cached above.
	nativePath, err := p.nativeSourceDir(sc, appContext)
	if err != nil {
		return nil, err
	}

	return []sourcedPath{
		{"package resource path", resource},
		{"package code path", code},
		{"application info sourceDir", sourceDir},
		{"application info publicSourceDir", publicSourceDir},
		{"package manager sourceDir", pmSourceDir},
		{"native sourceDir", nativePath},
	}, nil
}

func (p *Probe) infoString(sc *boundary.Scope, info boundary.ObjectRef, field string) (string, error) {
	v, err := boundary.GetField(p.env, sc, info, field, "Ljava/lang/String;", boundary.KindString)
	if err != nil {
		return "", err
	}
	return p.stringResult(v, field)
}

// nativeSourceDir reads sourceDir through a fresh resolution chain of its
// own, independent of the handles used by the other reads.
func (p *Probe) nativeSourceDir(sc *boundary.Scope, appContext boundary.ObjectRef) (string, error) {
	infoV, err := boundary.CallMethod(p.env, sc, appContext,
		"getApplicationInfo", "()Landroid/content/pm/ApplicationInfo;", boundary.KindObject)
	if err != nil {
		return "", err
	}
	info, err := infoV.AsRef()
	if err != nil || info == boundary.NullRef {
		return "", &MalformedObservationError{What: "application info"}
	}
	return p.infoString(sc, info, "sourceDir")
}

// inspectPath checks the filesystem state of one path: mode, owner, and
// whether a permission-change attempt succeeds.
func (p *Probe) inspectPath(ctx context.Context, t *trace, path string) {
	st, err := p.insp.Stat(path)
	if err != nil {
		t.flagf("error accessing path %s: %v", path, err)
		return
	}

	if st.Mode.Perm() != ExpectedFileMode {
		t.flagf("path %s has incorrect permissions: %04o (expected %04o)",
			path, st.Mode.Perm(), ExpectedFileMode)
	}
	if st.UID != ExpectedOwnerUID {
		t.flagf("path %s has incorrect owner: %d (expected %d/system)",
			path, st.UID, ExpectedOwnerUID)
	}

	changed, err := p.insp.Chmod(ctx, path, 0o777)
	switch {
	case err != nil:
		// The probe itself failed to run; fail closed.
		t.flagf("permission probe failed on %s: %v", path, err)
	case changed:
		t.flagf("path %s permissions could be changed - suspicious", path)
		// Best-effort restore; a failure here changes nothing about the verdict.
		if _, err := p.insp.Chmod(ctx, path, ExpectedFileMode); err != nil {
			t.errorf("restore permissions on %s: %v", path, err)
		}
	default:
		t.infof("path %s permission check passed", path)
	}
}
