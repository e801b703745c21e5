package simenv

import (
	"strings"

	"github.com/eyad-hamdy98/CheckBeer/boundary"
	"github.com/eyad-hamdy98/CheckBeer/internal/snapshot"
)

// New builds a simulated runtime from a snapshot profile. The resulting
// object graph mirrors the pieces the probe introspects: the package-info
// creator singleton, class loaders, the application context with its package
// manager and application info, and the activity-thread application
// singleton.
func New(p snapshot.Profile) *Env {
	e := &Env{
		classes:   map[string]*class{},
		byRef:     map[boundary.ObjectRef]*object{},
		classRefs: map[boundary.ClassRef]*class{},
		methods:   map[boundary.MethodID]methodBinding{},
		fields:    map[boundary.FieldID]fieldBinding{},
		live:      map[boundary.ObjectRef]bool{},
		failOn:    map[string]string{},
	}

	e.classClass = e.register("java.lang.Class")
	e.stringClass = e.register("java.lang.String")
	e.fieldClass = e.register("java.lang.reflect.Field")
	e.throwClass = e.register("java.lang.RuntimeException")

	objectClass := e.register("java.lang.Object")
	objectClass.methods["<init>()V"] = func(e *Env, self *object, args []boundary.Value) boundary.Value {
		return boundary.Void()
	}

	// Class loaders.
	bootLoaderClass := e.register(p.Creator.Loader)
	sysLoaderClass := e.register(p.Creator.SystemLoader)
	creatorLoader := &object{class: bootLoaderClass}
	systemLoader := &object{class: sysLoaderClass}

	loaderClass := e.register("java.lang.ClassLoader")
	loaderClass.statics["getSystemClassLoader()Ljava/lang/ClassLoader;"] =
		func(e *Env, self *object, args []boundary.Value) boundary.Value {
			return e.val(systemLoader)
		}

	// The package-info creator singleton.
	creatorClass := e.register(p.Creator.Class)
	creatorClass.loader = creatorLoader
	for _, name := range p.Creator.Fields {
		fname := name
		creatorClass.declared = append(creatorClass.declared, &fieldInfo{name: fname})
	}
	creatorString := p.Creator.String
	if creatorString == "" {
		creatorString = p.Creator.Class + "@7f8a1c2d"
	}
	creatorClass.methods["toString()Ljava/lang/String;"] =
		func(e *Env, self *object, args []boundary.Value) boundary.Value {
			return e.val(e.stringObj(creatorString))
		}
	creator := &object{class: creatorClass}

	packageInfo := e.register("android.content.pm.PackageInfo")
	packageInfo.sfields["CREATORLandroid/os/Parcelable$Creator;"] = creator

	// Reflection surface of java.lang.Class.
	e.classClass.methods["getName()Ljava/lang/String;"] =
		func(e *Env, self *object, args []boundary.Value) boundary.Value {
			return e.val(e.stringObj(self.denotesClass.name))
		}
	e.classClass.methods["getClassLoader()Ljava/lang/ClassLoader;"] =
		func(e *Env, self *object, args []boundary.Value) boundary.Value {
			return e.val(self.denotesClass.loader)
		}
	e.classClass.methods["getDeclaredFields()[Ljava/lang/reflect/Field;"] =
		func(e *Env, self *object, args []boundary.Value) boundary.Value {
			arr := &object{class: e.register("[Ljava.lang.reflect.Field;")}
			for _, fi := range self.denotesClass.declared {
				arr.array = append(arr.array, &object{class: e.fieldClass, denotesField: fi})
			}
			return e.val(arr)
		}
	e.classClass.methods["getDeclaredField(Ljava/lang/String;)Ljava/lang/reflect/Field;"] =
		func(e *Env, self *object, args []boundary.Value) boundary.Value {
			name := e.argString(args, 0)
			for _, fi := range self.denotesClass.declared {
				if fi.name == name {
					return e.val(&object{class: e.fieldClass, denotesField: fi})
				}
			}
			e.raise("java.lang.NoSuchFieldException: " + name)
			return boundary.Value{}
		}

	// Reflection surface of java.lang.reflect.Field.
	e.fieldClass.methods["getName()Ljava/lang/String;"] =
		func(e *Env, self *object, args []boundary.Value) boundary.Value {
			return e.val(e.stringObj(self.denotesField.name))
		}
	e.fieldClass.methods["setAccessible(Z)V"] =
		func(e *Env, self *object, args []boundary.Value) boundary.Value {
			return boundary.Void()
		}
	e.fieldClass.methods["get(Ljava/lang/Object;)Ljava/lang/Object;"] =
		func(e *Env, self *object, args []boundary.Value) boundary.Value {
			if self.denotesField.get == nil {
				return boundary.Null()
			}
			return e.val(self.denotesField.get(e))
		}

	// Application info, two independent instances: one reachable through the
	// live context/application, one served by fresh package-manager queries.
	appInfoClass := e.register("android.content.pm.ApplicationInfo")
	appInfoClass.ifields["sourceDirLjava/lang/String;"] = true
	appInfoClass.ifields["publicSourceDirLjava/lang/String;"] = true
	appInfoClass.ifields["appComponentFactoryLjava/lang/String;"] = true

	appInfo := &object{class: appInfoClass, fields: map[string]*object{
		"sourceDirLjava/lang/String;":           e.stringObjOrNil(p.Paths.SourceDir),
		"publicSourceDirLjava/lang/String;":     e.stringObjOrNil(p.Paths.PublicSourceDir),
		"appComponentFactoryLjava/lang/String;": e.stringObjOrNil(p.ComponentFactory),
	}}

	pmFactory := p.PMComponentFactory
	if pmFactory == "" {
		pmFactory = p.ComponentFactory
	}
	pmAppInfo := &object{class: appInfoClass, fields: map[string]*object{
		"sourceDirLjava/lang/String;":           e.stringObjOrNil(p.Paths.PackageManager),
		"publicSourceDirLjava/lang/String;":     e.stringObjOrNil(p.Paths.PackageManager),
		"appComponentFactoryLjava/lang/String;": e.stringObjOrNil(pmFactory),
	}}

	// Package manager with its hidden service handle.
	proxyClass := e.register(p.PMProxyClass)
	proxy := &object{class: proxyClass}

	pmClass := e.register("android.app.ApplicationPackageManager")
	pmClass.declared = append(pmClass.declared, &fieldInfo{
		name: "mPM",
		get:  func(e *Env) *object { return proxy },
	})
	pmClass.methods["getApplicationInfo(Ljava/lang/String;I)Landroid/content/pm/ApplicationInfo;"] =
		func(e *Env, self *object, args []boundary.Value) boundary.Value {
			pkg := e.argString(args, 0)
			if pkg != p.Package {
				e.raise("android.content.pm.PackageManager$NameNotFoundException: " + pkg)
				return boundary.Value{}
			}
			return e.val(pmAppInfo)
		}
	pm := &object{class: pmClass}

	// Application context.
	ctxClass := e.register("android.app.ContextImpl")
	ctxClass.methods["getPackageManager()Landroid/content/pm/PackageManager;"] =
		func(e *Env, self *object, args []boundary.Value) boundary.Value {
			return e.val(pm)
		}
	ctxClass.methods["getPackageName()Ljava/lang/String;"] =
		func(e *Env, self *object, args []boundary.Value) boundary.Value {
			return e.val(e.stringObj(p.Package))
		}
	ctxClass.methods["getPackageResourcePath()Ljava/lang/String;"] =
		func(e *Env, self *object, args []boundary.Value) boundary.Value {
			return e.val(e.stringObjOrNil(p.Paths.Resource))
		}
	ctxClass.methods["getPackageCodePath()Ljava/lang/String;"] =
		func(e *Env, self *object, args []boundary.Value) boundary.Value {
			return e.val(e.stringObjOrNil(p.Paths.Code))
		}
	ctxClass.methods["getApplicationInfo()Landroid/content/pm/ApplicationInfo;"] =
		func(e *Env, self *object, args []boundary.Value) boundary.Value {
			return e.val(appInfo)
		}
	e.context = &object{class: ctxClass}

	// The activity-thread application singleton.
	appClass := e.register("android.app.Application")
	appClass.methods["getApplicationInfo()Landroid/content/pm/ApplicationInfo;"] =
		func(e *Env, self *object, args []boundary.Value) boundary.Value {
			return e.val(appInfo)
		}
	application := &object{class: appClass}

	atClass := e.register("android.app.ActivityThread")
	atClass.ifields["mInitialApplicationLandroid/app/Application;"] = true
	activityThread := &object{class: atClass, fields: map[string]*object{
		"mInitialApplicationLandroid/app/Application;": application,
	}}
	atClass.statics["currentActivityThread()Landroid/app/ActivityThread;"] =
		func(e *Env, self *object, args []boundary.Value) boundary.Value {
			return e.val(activityThread)
		}

	return e
}

// register creates (or returns) the class with the given dotted name and
// indexes it under its slash-separated lookup name.
func (e *Env) register(dotted string) *class {
	slash := strings.ReplaceAll(dotted, ".", "/")
	if c, ok := e.classes[slash]; ok {
		return c
	}
	c := &class{
		name:    dotted,
		methods: map[string]behavior{},
		statics: map[string]behavior{},
		sfields: map[string]*object{},
		ifields: map[string]bool{},
	}
	e.classes[slash] = c
	return c
}

func (e *Env) stringObjOrNil(s string) *object {
	if s == "" {
		return nil
	}
	return e.stringObj(s)
}

// argString reads a managed-string argument slot.
func (e *Env) argString(args []boundary.Value, i int) string {
	if i >= len(args) {
		return ""
	}
	ref, err := args[i].AsRef()
	if err != nil || ref == boundary.NullRef {
		return ""
	}
	o, ok := e.byRef[ref]
	if !ok || o.class != e.stringClass {
		return ""
	}
	return o.str
}
