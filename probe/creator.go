package probe

import (
	"strings"

	"github.com/eyad-hamdy98/CheckBeer/boundary"
)

// CreatorIdentity checks the class name of the package-info creator
// singleton against the expected implementation: the name must carry the
// owning-class prefix and match the expected name exactly.
func (p *Probe) CreatorIdentity() DetectorResult {
	t := p.begin("creator-identity")
	t.infof("expected creator name: %s", ExpectedCreatorClass)

	sc := boundary.NewScope(p.env)
	defer sc.Release()

	creator, err := p.creatorObject(sc)
	if err != nil {
		t.fail(err)
		return t.result()
	}

	name, err := p.classNameOf(sc, creator)
	if err != nil {
		t.fail(err)
		return t.result()
	}
	t.infof("current creator name: %s", name)

	if !strings.HasPrefix(name, ExpectedCreatorPrefix) {
		t.flagf("creator name does not start with expected prefix %s", ExpectedCreatorPrefix)
	}
	if name != ExpectedCreatorClass {
		t.flagf("creator name mismatch: expected=%s, found=%s", ExpectedCreatorClass, name)
	} else {
		t.infof("creator name verification passed")
	}

	return t.result()
}

// CreatorFields checks the declared fields of the creator singleton's
// class. The legitimate creator declares none; an instrumented replacement
// usually smuggles state in as fields.
func (p *Probe) CreatorFields() DetectorResult {
	t := p.begin("declared-field-shape")

	sc := boundary.NewScope(p.env)
	defer sc.Release()

	creator, err := p.creatorObject(sc)
	if err != nil {
		t.fail(err)
		return t.result()
	}

	clsV, err := boundary.CallMethod(p.env, sc, creator,
		"getClass", "()Ljava/lang/Class;", boundary.KindObject)
	if err != nil {
		t.fail(err)
		return t.result()
	}
	clsObj, _ := clsV.AsRef()

	arrV, err := boundary.CallMethod(p.env, sc, clsObj,
		"getDeclaredFields", "()[Ljava/lang/reflect/Field;", boundary.KindObject)
	if err != nil {
		t.fail(err)
		return t.result()
	}
	arr, err := arrV.AsRef()
	if err != nil || arr == boundary.NullRef {
		t.fail(&MalformedObservationError{What: "declared field array"})
		return t.result()
	}

	count, err := boundary.ArrayLen(p.env, arr)
	if err != nil {
		t.fail(err)
		return t.result()
	}
	t.infof("expected declared field count: 0, found: %d", count)

	if count == 0 {
		t.infof("no suspicious fields found")
		return t.result()
	}

	t.flagf("found %d unexpected fields on creator class", count)
	for i := 0; i < count; i++ {
		elem, err := boundary.ArrayElement(p.env, sc, arr, i)
		if err != nil {
			t.errorf("field %d: %v", i, err)
			continue
		}
		nameV, err := boundary.CallMethod(p.env, sc, elem,
			"getName", "()Ljava/lang/String;", boundary.KindString)
		if err != nil {
			t.errorf("field %d name: %v", i, err)
			continue
		}
		name, err := p.stringResult(nameV, "field name")
		if err != nil {
			t.errorf("field %d name: %v", i, err)
			continue
		}
		t.errorf("declared field name: %s", name)
	}

	return t.result()
}

// CreatorClassLoader compares the creator singleton's class loader against
// the system class loader. The legitimate creator is loaded by a
// component-specific loader; identical loader class names mean the creator
// was replaced from application space.
func (p *Probe) CreatorClassLoader() DetectorResult {
	t := p.begin("creator-classloader")

	sc := boundary.NewScope(p.env)
	defer sc.Release()

	creator, err := p.creatorObject(sc)
	if err != nil {
		t.fail(err)
		return t.result()
	}

	strV, err := boundary.CallMethod(p.env, sc, creator,
		"toString", "()Ljava/lang/String;", boundary.KindString)
	if err != nil {
		t.fail(err)
		return t.result()
	}
	if ref, _ := strV.AsRef(); ref != boundary.NullRef {
		s, err := boundary.GoString(p.env, ref)
		if err != nil {
			t.fail(err)
			return t.result()
		}
		if s != "" {
			if !strings.HasPrefix(s, ExpectedCreatorPrefix) {
				t.flagf("creator object is suspicious: %s", s)
			} else {
				t.infof("creator object is correct: %s", s)
			}
		}
	}

	clsV, err := boundary.CallMethod(p.env, sc, creator,
		"getClass", "()Ljava/lang/Class;", boundary.KindObject)
	if err != nil {
		t.fail(err)
		return t.result()
	}
	clsObj, _ := clsV.AsRef()

	creatorLoaderV, err := boundary.CallMethod(p.env, sc, clsObj,
		"getClassLoader", "()Ljava/lang/ClassLoader;", boundary.KindObject)
	if err != nil {
		t.fail(err)
		return t.result()
	}
	sysLoaderV, err := boundary.CallStaticMethod(p.env, sc,
		"java/lang/ClassLoader", "getSystemClassLoader", "()Ljava/lang/ClassLoader;",
		boundary.KindObject)
	if err != nil {
		t.fail(err)
		return t.result()
	}

	creatorLoader, _ := creatorLoaderV.AsRef()
	sysLoader, _ := sysLoaderV.AsRef()
	if creatorLoader == boundary.NullRef || sysLoader == boundary.NullRef {
		t.flagf("one of the class loaders is null")
		return t.result()
	}

	creatorLoaderName, err := p.classNameOf(sc, creatorLoader)
	if err != nil {
		t.fail(err)
		return t.result()
	}
	sysLoaderName, err := p.classNameOf(sc, sysLoader)
	if err != nil {
		t.fail(err)
		return t.result()
	}

	t.infof("creator class loader: %s", creatorLoaderName)
	t.infof("system class loader: %s", sysLoaderName)

	if creatorLoaderName == sysLoaderName {
		t.flagf("class loaders are identical - suspicious")
	} else {
		t.infof("class loaders are different - good")
	}

	return t.result()
}
