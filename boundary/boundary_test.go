package boundary_test

import (
	"errors"
	"testing"

	"github.com/eyad-hamdy98/CheckBeer/boundary"
	"github.com/eyad-hamdy98/CheckBeer/internal/simenv"
	"github.com/eyad-hamdy98/CheckBeer/internal/snapshot"
)

func newEnv(t *testing.T) *simenv.Env {
	t.Helper()
	return simenv.New(snapshot.Default())
}

func TestCallMethodReturnsManagedString(t *testing.T) {
	env := newEnv(t)
	sc := boundary.NewScope(env)
	defer sc.Release()

	ctx := sc.Track(env.Context())
	v, err := boundary.CallMethod(env, sc, ctx,
		"getPackageName", "()Ljava/lang/String;", boundary.KindString)
	if err != nil {
		t.Fatalf("getPackageName: %v", err)
	}
	ref, err := v.AsRef()
	if err != nil {
		t.Fatalf("AsRef: %v", err)
	}
	name, err := boundary.GoString(env, ref)
	if err != nil {
		t.Fatalf("GoString: %v", err)
	}
	if name != "com.example.app" {
		t.Errorf("package name = %q", name)
	}
}

func TestGetStaticFieldResolvesCreator(t *testing.T) {
	env := newEnv(t)
	sc := boundary.NewScope(env)
	defer sc.Release()

	v, err := boundary.GetStaticField(env, sc,
		"android/content/pm/PackageInfo", "CREATOR", "Landroid/os/Parcelable$Creator;",
		boundary.KindObject)
	if err != nil {
		t.Fatalf("GetStaticField: %v", err)
	}
	ref, err := v.AsRef()
	if err != nil || ref == boundary.NullRef {
		t.Fatalf("creator ref = %v, %v", ref, err)
	}
}

func TestCallStaticMethod(t *testing.T) {
	env := newEnv(t)
	sc := boundary.NewScope(env)
	defer sc.Release()

	v, err := boundary.CallStaticMethod(env, sc,
		"java/lang/ClassLoader", "getSystemClassLoader", "()Ljava/lang/ClassLoader;",
		boundary.KindObject)
	if err != nil {
		t.Fatalf("getSystemClassLoader: %v", err)
	}
	if ref, _ := v.AsRef(); ref == boundary.NullRef {
		t.Error("system class loader is null")
	}
}

func TestNewObject(t *testing.T) {
	env := newEnv(t)
	sc := boundary.NewScope(env)
	defer sc.Release()

	obj, err := boundary.NewObject(env, sc, "java/lang/Object", "()V")
	if err != nil {
		t.Fatalf("NewObject: %v", err)
	}
	if obj == boundary.NullRef {
		t.Error("constructed object is null")
	}
}

func TestScopeReleasesEveryHandleExactlyOnce(t *testing.T) {
	env := newEnv(t)
	sc := boundary.NewScope(env)

	ctx := sc.Track(env.Context())
	if _, err := boundary.CallMethod(env, sc, ctx,
		"getPackageResourcePath", "()Ljava/lang/String;", boundary.KindString); err != nil {
		t.Fatalf("crossing: %v", err)
	}
	if _, err := boundary.GetStaticField(env, sc,
		"android/content/pm/PackageInfo", "CREATOR", "Landroid/os/Parcelable$Creator;",
		boundary.KindObject); err != nil {
		t.Fatalf("crossing: %v", err)
	}

	if env.LiveRefs() == 0 {
		t.Fatal("no live references before release")
	}
	sc.Release()
	if n := env.LiveRefs(); n != 0 {
		t.Errorf("%d references leaked after release", n)
	}

	// A second release must be a no-op.
	sc.Release()
	if n := env.LiveRefs(); n != 0 {
		t.Errorf("%d references after double release", n)
	}
}

func TestPromoteTransfersOwnership(t *testing.T) {
	env := newEnv(t)
	sc := boundary.NewScope(env)

	ctx := sc.Track(env.Context())
	v, err := boundary.CallMethod(env, sc, ctx,
		"getPackageName", "()Ljava/lang/String;", boundary.KindString)
	if err != nil {
		t.Fatalf("crossing: %v", err)
	}
	ref, _ := v.AsRef()
	sc.Promote(ref)
	sc.Release()

	// The promoted handle must survive the scope.
	name, err := boundary.GoString(env, ref)
	if err != nil {
		t.Fatalf("promoted handle dead after release: %v", err)
	}
	if name != "com.example.app" {
		t.Errorf("promoted string = %q", name)
	}

	env.DeleteLocalRef(ref)
	if n := env.LiveRefs(); n != 0 {
		t.Errorf("%d references leaked after manual delete", n)
	}
}

func TestMissingClassYieldsResolutionError(t *testing.T) {
	env := newEnv(t)
	sc := boundary.NewScope(env)
	defer sc.Release()

	_, err := boundary.FindClass(env, sc, "does/not/Exist")
	var rerr *boundary.ResolutionError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
	if rerr.What != "class" || rerr.Name != "does/not/Exist" {
		t.Errorf("wrong resolution error: %v", rerr)
	}
	var berr *boundary.BoundaryError
	if !errors.As(err, &berr) {
		t.Error("resolution error does not wrap the runtime error")
	}

	// The failed resolution must have been drained.
	if env.ExceptionPending() {
		t.Error("pending error left behind")
	}
}

func TestMissingMemberYieldsResolutionError(t *testing.T) {
	env := newEnv(t)
	sc := boundary.NewScope(env)
	defer sc.Release()

	ctx := sc.Track(env.Context())
	_, err := boundary.CallMethod(env, sc, ctx,
		"noSuchMethod", "()V", boundary.KindVoid)
	var rerr *boundary.ResolutionError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
	if rerr.What != "method" || rerr.Name != "noSuchMethod" {
		t.Errorf("wrong resolution error: %v", rerr)
	}
	if env.ExceptionPending() {
		t.Error("pending error left behind")
	}
}

func TestDrainConvertsAndClearsPendingError(t *testing.T) {
	env := newEnv(t)

	env.RaiseNow("boom")
	err := boundary.Drain(env)
	var berr *boundary.BoundaryError
	if !errors.As(err, &berr) {
		t.Fatalf("expected BoundaryError, got %v", err)
	}
	if berr.Description != "boom" {
		t.Errorf("description = %q", berr.Description)
	}
	if env.ExceptionPending() {
		t.Error("drain did not clear the pending flag")
	}
	if err := boundary.Drain(env); err != nil {
		t.Errorf("second drain: %v", err)
	}
	// The drain owns the thrown error object's reference.
	if n := env.LiveRefs(); n != 0 {
		t.Errorf("%d references leaked by the drain", n)
	}
}

func TestFailedResolutionLeaksNoHandles(t *testing.T) {
	env := newEnv(t)
	sc := boundary.NewScope(env)

	if _, err := boundary.FindClass(env, sc, "does/not/Exist"); err == nil {
		t.Fatal("unknown class resolved")
	}
	ctx := sc.Track(env.Context())
	if _, err := boundary.CallMethod(env, sc, ctx,
		"noSuchMethod", "()V", boundary.KindVoid); err == nil {
		t.Fatal("unknown method resolved")
	}
	sc.Release()
	if n := env.LiveRefs(); n != 0 {
		t.Errorf("%d references leaked on error paths", n)
	}
}

// A pending error poisons every later crossing on the thread. The wrapper
// drains after each crossing, so the poisoned result surfaces as an error
// on the first call and the thread is usable again right after.
func TestPendingErrorSurfacesOnNextCrossing(t *testing.T) {
	env := newEnv(t)
	sc := boundary.NewScope(env)
	defer sc.Release()

	env.RaiseNow("interference")
	if _, err := boundary.FindClass(env, sc, "android/content/pm/PackageInfo"); err == nil {
		t.Fatal("crossing with pending error did not fail")
	}
	if env.ExceptionPending() {
		t.Fatal("error not drained by the failed crossing")
	}
	if _, err := boundary.FindClass(env, sc, "android/content/pm/PackageInfo"); err != nil {
		t.Errorf("thread still poisoned after drain: %v", err)
	}
}

func TestUnsupportedArgumentYieldsMarshalError(t *testing.T) {
	env := newEnv(t)
	sc := boundary.NewScope(env)
	defer sc.Release()

	ctx := sc.Track(env.Context())
	_, err := boundary.CallMethod(env, sc, ctx,
		"getPackageName", "()Ljava/lang/String;", boundary.KindString, struct{}{})
	var merr *boundary.MarshalError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MarshalError, got %v", err)
	}
	if merr.Index != 0 {
		t.Errorf("index = %d", merr.Index)
	}
}

func TestOversizedIntArgumentYieldsMarshalError(t *testing.T) {
	env := newEnv(t)
	sc := boundary.NewScope(env)
	defer sc.Release()

	ctx := sc.Track(env.Context())
	_, err := boundary.CallMethod(env, sc, ctx,
		"getPackageName", "()Ljava/lang/String;", boundary.KindString, 1<<40)
	var merr *boundary.MarshalError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MarshalError for oversized int, got %v", err)
	}

	// Values inside the 32-bit range still marshal.
	if _, err := boundary.CallMethod(env, sc, ctx,
		"getPackageName", "()Ljava/lang/String;", boundary.KindString, 1<<20); err != nil {
		t.Errorf("in-range int rejected: %v", err)
	}
}

func TestSetFieldRoundTrip(t *testing.T) {
	env := newEnv(t)
	sc := boundary.NewScope(env)
	defer sc.Release()

	cls, err := boundary.FindClass(env, sc, "android/app/ActivityThread")
	if err != nil {
		t.Fatalf("FindClass: %v", err)
	}
	m, err := boundary.FieldOf(env, cls, "mInitialApplication", "Landroid/app/Application;")
	if err != nil {
		t.Fatalf("FieldOf: %v", err)
	}
	at, err := boundary.CallStaticMethod(env, sc,
		"android/app/ActivityThread", "currentActivityThread", "()Landroid/app/ActivityThread;",
		boundary.KindObject)
	if err != nil {
		t.Fatalf("currentActivityThread: %v", err)
	}
	recv, _ := at.AsRef()

	sentinel, err := boundary.NewString(env, sc, "sentinel")
	if err != nil {
		t.Fatalf("NewString: %v", err)
	}
	if err := m.Set(env, recv, boundary.String(sentinel)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	v, err := m.Get(env, sc, recv, boundary.KindObject)
	if err != nil {
		t.Fatalf("Get after Set: %v", err)
	}
	ref, err := v.AsRef()
	if err != nil {
		t.Fatalf("AsRef: %v", err)
	}
	got, err := boundary.GoString(env, ref)
	if err != nil || got != "sentinel" {
		t.Errorf("field read back = %q, %v", got, err)
	}

	var verr *boundary.ValueError
	if err := m.Set(env, recv, boundary.Void()); !errors.As(err, &verr) {
		t.Errorf("Set(void) = %v, want ValueError", err)
	}
}

func TestGoStringOnNullHandle(t *testing.T) {
	env := newEnv(t)
	s, err := boundary.GoString(env, boundary.NullRef)
	if err != nil || s != "" {
		t.Errorf("GoString(null) = %q, %v", s, err)
	}
}
