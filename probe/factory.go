package probe

import "github.com/eyad-hamdy98/CheckBeer/boundary"

// ComponentFactory checks the app component factory recorded in the
// application's metadata against the expected default. The value is read
// two independent ways — through the live application singleton and through
// a fresh package-manager query — because a hook that patches one source
// usually forgets the other.
func (p *Probe) ComponentFactory(appContext boundary.ObjectRef) DetectorResult {
	t := p.begin("component-factory")
	t.infof("expected component factory: %s", ExpectedComponentFactory)

	sc := boundary.NewScope(p.env)
	defer sc.Release()

	viaApp, err := p.factoryViaApplication(sc)
	if err != nil {
		t.fail(err)
	} else {
		t.infof("component factory via application: %s", viaApp)
		if viaApp != ExpectedComponentFactory {
			t.flagf("component factory mismatch via application: expected=%s, found=%s",
				ExpectedComponentFactory, viaApp)
		} else {
			t.infof("application read verification passed")
		}
	}

	viaPM, err := p.factoryViaPackageManager(sc, appContext)
	if err != nil {
		t.fail(err)
	} else {
		t.infof("component factory via package manager: %s", viaPM)
		if viaPM != ExpectedComponentFactory {
			t.flagf("component factory mismatch via package manager: expected=%s, found=%s",
				ExpectedComponentFactory, viaPM)
		} else {
			t.infof("package manager read verification passed")
		}
	}

	return t.result()
}

// factoryViaApplication reads appComponentFactory from the application info
// of the activity thread's initial application.
func (p *Probe) factoryViaApplication(sc *boundary.Scope) (string, error) {
	appV, err := boundary.CallStaticMethod(p.env, sc,
		"android/app/ActivityThread", "currentActivityThread",
		"()Landroid/app/ActivityThread;", boundary.KindObject)
	if err != nil {
		return "", err
	}
	at, err := appV.AsRef()
	if err != nil || at == boundary.NullRef {
		return "", &MalformedObservationError{What: "activity thread"}
	}

	applicationV, err := boundary.GetField(p.env, sc, at,
		"mInitialApplication", "Landroid/app/Application;", boundary.KindObject)
	if err != nil {
		return "", err
	}
	application, err := applicationV.AsRef()
	if err != nil || application == boundary.NullRef {
		return "", &MalformedObservationError{What: "initial application"}
	}

	infoV, err := boundary.CallMethod(p.env, sc, application,
		"getApplicationInfo", "()Landroid/content/pm/ApplicationInfo;", boundary.KindObject)
	if err != nil {
		return "", err
	}
	info, err := infoV.AsRef()
	if err != nil || info == boundary.NullRef {
		return "", &MalformedObservationError{What: "application info"}
	}

	factoryV, err := boundary.GetField(p.env, sc, info,
		"appComponentFactory", "Ljava/lang/String;", boundary.KindString)
	if err != nil {
		return "", err
	}
	return p.stringResult(factoryV, "app component factory")
}

// factoryViaPackageManager reads appComponentFactory from a fresh
// package-manager query for the context's own package.
func (p *Probe) factoryViaPackageManager(sc *boundary.Scope, appContext boundary.ObjectRef) (string, error) {
	info, err := p.packageManagerAppInfo(sc, appContext)
	if err != nil {
		return "", err
	}
	factoryV, err := boundary.GetField(p.env, sc, info,
		"appComponentFactory", "Ljava/lang/String;", boundary.KindString)
	if err != nil {
		return "", err
	}
	return p.stringResult(factoryV, "app component factory")
}

// packageManagerAppInfo performs a fresh getApplicationInfo(pkg, 0) query
// through the context's package manager.
func (p *Probe) packageManagerAppInfo(sc *boundary.Scope, appContext boundary.ObjectRef) (boundary.ObjectRef, error) {
	pmV, err := boundary.CallMethod(p.env, sc, appContext,
		"getPackageManager", "()Landroid/content/pm/PackageManager;", boundary.KindObject)
	if err != nil {
		return boundary.NullRef, err
	}
	pm, err := pmV.AsRef()
	if err != nil || pm == boundary.NullRef {
		return boundary.NullRef, &MalformedObservationError{What: "package manager"}
	}

	pkgV, err := boundary.CallMethod(p.env, sc, appContext,
		"getPackageName", "()Ljava/lang/String;", boundary.KindString)
	if err != nil {
		return boundary.NullRef, err
	}
	pkgRef, err := pkgV.AsRef()
	if err != nil || pkgRef == boundary.NullRef {
		return boundary.NullRef, &MalformedObservationError{What: "package name"}
	}

	infoV, err := boundary.CallMethod(p.env, sc, pm,
		"getApplicationInfo", "(Ljava/lang/String;I)Landroid/content/pm/ApplicationInfo;",
		boundary.KindObject, pkgRef, 0)
	if err != nil {
		return boundary.NullRef, err
	}
	info, err := infoV.AsRef()
	if err != nil || info == boundary.NullRef {
		return boundary.NullRef, &MalformedObservationError{What: "application info"}
	}
	return info, nil
}
