package probe

import "github.com/eyad-hamdy98/CheckBeer/boundary"

// PackageManagerProxy checks the concrete implementation class backing the
// package-manager service handle held by the application's package-manager
// object. A signature-spoofing hook replaces the stub proxy with its own
// dynamic proxy, which shows up as a different class name on the hidden
// mPM field.
func (p *Probe) PackageManagerProxy(appContext boundary.ObjectRef) DetectorResult {
	t := p.begin("pm-proxy-identity")
	t.infof("expected package manager proxy: %s", ExpectedPMProxyClass)

	sc := boundary.NewScope(p.env)
	defer sc.Release()

	pmV, err := boundary.CallMethod(p.env, sc, appContext,
		"getPackageManager", "()Landroid/content/pm/PackageManager;", boundary.KindObject)
	if err != nil {
		t.fail(err)
		return t.result()
	}
	pm, err := pmV.AsRef()
	if err != nil || pm == boundary.NullRef {
		t.fail(&MalformedObservationError{What: "package manager"})
		return t.result()
	}

	pmClsV, err := boundary.CallMethod(p.env, sc, pm,
		"getClass", "()Ljava/lang/Class;", boundary.KindObject)
	if err != nil {
		t.fail(err)
		return t.result()
	}
	pmClsObj, _ := pmClsV.AsRef()

	fieldV, err := boundary.CallMethod(p.env, sc, pmClsObj,
		"getDeclaredField", "(Ljava/lang/String;)Ljava/lang/reflect/Field;",
		boundary.KindObject, "mPM")
	if err != nil {
		t.fail(err)
		return t.result()
	}
	field, _ := fieldV.AsRef()

	if _, err := boundary.CallMethod(p.env, sc, field,
		"setAccessible", "(Z)V", boundary.KindVoid, true); err != nil {
		t.fail(err)
		return t.result()
	}

	proxyV, err := boundary.CallMethod(p.env, sc, field,
		"get", "(Ljava/lang/Object;)Ljava/lang/Object;", boundary.KindObject, pm)
	if err != nil {
		t.fail(err)
		return t.result()
	}
	proxy, err := proxyV.AsRef()
	if err != nil || proxy == boundary.NullRef {
		t.fail(&MalformedObservationError{What: "package manager service handle"})
		return t.result()
	}

	name, err := p.classNameOf(sc, proxy)
	if err != nil {
		t.fail(err)
		return t.result()
	}
	t.infof("current package manager proxy: %s", name)

	if name != ExpectedPMProxyClass {
		t.flagf("proxy name mismatch: expected=%s, found=%s", ExpectedPMProxyClass, name)
	} else {
		t.infof("proxy name verification passed")
	}

	return t.result()
}
