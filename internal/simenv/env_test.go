package simenv

import (
	"strings"
	"testing"

	"github.com/eyad-hamdy98/CheckBeer/boundary"
	"github.com/eyad-hamdy98/CheckBeer/internal/snapshot"
)

func TestEveryCrossingMintsAFreshLocalReference(t *testing.T) {
	env := New(snapshot.Default())

	a := env.Context()
	b := env.Context()
	if a == b {
		t.Error("two crossings returned the same local reference")
	}
	c1 := env.FindClass("android/content/pm/PackageInfo")
	c2 := env.FindClass("android/content/pm/PackageInfo")
	if c1 == c2 {
		t.Error("two class lookups returned the same handle")
	}
}

func TestUnknownClassRaisesPendingError(t *testing.T) {
	env := New(snapshot.Default())

	cls := env.FindClass("no/such/Class")
	if cls != 0 {
		t.Errorf("lookup returned %d for unknown class", cls)
	}
	if !env.ExceptionPending() {
		t.Fatal("no pending error after failed lookup")
	}
	if msg := env.ExceptionDescribe(); !strings.Contains(msg, "ClassNotFoundException") {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestCrossingsWhilePendingArePoisoned(t *testing.T) {
	env := New(snapshot.Default())
	ctx := env.Context()

	env.RaiseNow("boom")
	if cls := env.FindClass("android/content/pm/PackageInfo"); cls != 0 {
		t.Errorf("poisoned FindClass returned %d", cls)
	}
	if cls := env.GetObjectClass(ctx); cls != 0 {
		t.Errorf("poisoned GetObjectClass returned %d", cls)
	}
	if ref := env.NewString("x"); ref != boundary.NullRef {
		t.Errorf("poisoned NewString returned %d", ref)
	}
	// The original message must not have been replaced.
	if msg := env.ExceptionDescribe(); msg != "boom" {
		t.Errorf("pending message overwritten: %q", msg)
	}
	env.ExceptionClear()
	if env.ExceptionPending() {
		t.Error("clear left the flag set")
	}
}

func TestReleasedReferenceIsRejected(t *testing.T) {
	env := New(snapshot.Default())

	ref := env.NewString("hello")
	env.DeleteLocalRef(ref)
	if s := env.StringChars(ref); s != "" {
		t.Errorf("released handle still readable: %q", s)
	}
	if !env.ExceptionPending() {
		t.Fatal("no pending error after use of released reference")
	}
	if msg := env.ExceptionDescribe(); !strings.Contains(msg, "released local reference") {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestNullReferenceRaises(t *testing.T) {
	env := New(snapshot.Default())

	env.GetObjectClass(boundary.NullRef)
	if !env.ExceptionPending() {
		t.Fatal("no pending error on null dereference")
	}
	if msg := env.ExceptionDescribe(); !strings.Contains(msg, "NullPointerException") {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestFailOnInducesResolutionFailure(t *testing.T) {
	env := New(snapshot.Default())
	env.FailOn("android/content/pm/PackageInfo", "java.lang.ClassNotFoundException: induced")

	if cls := env.FindClass("android/content/pm/PackageInfo"); cls != 0 {
		t.Errorf("induced failure returned %d", cls)
	}
	if msg := env.ExceptionDescribe(); msg != "java.lang.ClassNotFoundException: induced" {
		t.Errorf("unexpected message %q", msg)
	}

	env.ExceptionClear()
	env.ClearFail("android/content/pm/PackageInfo")
	if cls := env.FindClass("android/content/pm/PackageInfo"); cls == 0 {
		t.Error("lookup still failing after ClearFail")
	}
}

func TestPackageManagerQueryValidatesPackageName(t *testing.T) {
	env := New(snapshot.Default())
	sc := boundary.NewScope(env)
	defer sc.Release()

	ctx := sc.Track(env.Context())
	pmV, err := boundary.CallMethod(env, sc, ctx,
		"getPackageManager", "()Landroid/content/pm/PackageManager;", boundary.KindObject)
	if err != nil {
		t.Fatalf("getPackageManager: %v", err)
	}
	pm, _ := pmV.AsRef()

	_, err = boundary.CallMethod(env, sc, pm,
		"getApplicationInfo", "(Ljava/lang/String;I)Landroid/content/pm/ApplicationInfo;",
		boundary.KindObject, "com.wrong.package", 0)
	if err == nil {
		t.Fatal("query for foreign package succeeded")
	}
	if !strings.Contains(err.Error(), "NameNotFoundException") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestGenericObjectMethods(t *testing.T) {
	env := New(snapshot.Default())
	sc := boundary.NewScope(env)
	defer sc.Release()

	ctx := sc.Track(env.Context())
	clsV, err := boundary.CallMethod(env, sc, ctx,
		"getClass", "()Ljava/lang/Class;", boundary.KindObject)
	if err != nil {
		t.Fatalf("getClass: %v", err)
	}
	clsObj, _ := clsV.AsRef()
	nameV, err := boundary.CallMethod(env, sc, clsObj,
		"getName", "()Ljava/lang/String;", boundary.KindString)
	if err != nil {
		t.Fatalf("getName: %v", err)
	}
	ref, _ := nameV.AsRef()
	name, err := boundary.GoString(env, ref)
	if err != nil {
		t.Fatalf("GoString: %v", err)
	}
	if name != "android.app.ContextImpl" {
		t.Errorf("context class = %q", name)
	}
}

func TestSharedLoaderClassesCollapse(t *testing.T) {
	// A profile where the creator loader and the system loader carry the
	// same class name must produce one shared class, the way a single
	// runtime class serves both loader instances.
	p := snapshot.Default()
	p.Creator.Loader = p.Creator.SystemLoader
	env := New(p)

	a := env.FindClass("dalvik/system/PathClassLoader")
	if a == 0 {
		t.Fatal("loader class not registered")
	}
}
