// Package simenv is an in-memory implementation of the boundary.Env
// collaborator, built from a snapshot profile. It reproduces the managed
// runtime's calling convention faithfully enough to drive the probe: lookups
// fail by setting the per-thread pending-error flag, every returned handle
// is a fresh local reference, and a crossing attempted while an error is
// pending is poisoned (returns zero values), which is exactly the corruption
// the invocation layer's drain discipline exists to prevent.
package simenv

import (
	"fmt"

	"github.com/eyad-hamdy98/CheckBeer/boundary"
)

// behavior implements one method on a simulated class.
type behavior func(e *Env, self *object, args []boundary.Value) boundary.Value

// fieldInfo is a reflect-visible declared field.
type fieldInfo struct {
	name string
	get  func(e *Env) *object // nil when the field is never read
}

// class is a simulated runtime class.
type class struct {
	name     string // dotted runtime name
	methods  map[string]behavior
	statics  map[string]behavior
	sfields  map[string]*object // static fields by name+sig
	ifields  map[string]bool    // declared instance field keys
	declared []*fieldInfo       // fields visible through reflection
	loader   *object
	classObj *object // cached java.lang.Class instance
}

// object is a simulated runtime object.
type object struct {
	class        *class
	str          string
	array        []*object
	fields       map[string]*object
	denotesClass *class
	denotesField *fieldInfo
}

type methodBinding struct {
	cls    *class
	key    string
	static bool
}

type fieldBinding struct {
	cls    *class
	key    string
	static bool
}

// Env simulates one attached runtime thread.
type Env struct {
	classes   map[string]*class // by slash-separated name
	byRef     map[boundary.ObjectRef]*object
	classRefs map[boundary.ClassRef]*class
	methods   map[boundary.MethodID]methodBinding
	fields    map[boundary.FieldID]fieldBinding
	live      map[boundary.ObjectRef]bool
	next      uint64

	pending    bool
	pendingMsg string
	thrown     boundary.ObjectRef

	failOn map[string]string

	context *object

	classClass  *class
	stringClass *class
	fieldClass  *class
	throwClass  *class
}

var _ boundary.Env = (*Env)(nil)

// LiveRefs returns the number of local references currently alive.
// Tests use it to assert exactly-once release.
func (e *Env) LiveRefs() int {
	n := 0
	for _, alive := range e.live {
		if alive {
			n++
		}
	}
	return n
}

// Context returns a caller-owned reference to the application context.
func (e *Env) Context() boundary.ObjectRef {
	return e.mint(e.context)
}

// FailOn makes any resolution of the named class or member raise msg.
func (e *Env) FailOn(name, msg string) {
	if e.failOn == nil {
		e.failOn = map[string]string{}
	}
	e.failOn[name] = msg
}

// ClearFail removes an induced failure.
func (e *Env) ClearFail(name string) {
	delete(e.failOn, name)
}

// RaiseNow sets the pending-error flag directly, as a runtime operation
// outside the probe's control would.
func (e *Env) RaiseNow(msg string) {
	e.raise(msg)
}

func (e *Env) mint(o *object) boundary.ObjectRef {
	if o == nil {
		return boundary.NullRef
	}
	e.next++
	ref := boundary.ObjectRef(e.next)
	e.byRef[ref] = o
	e.live[ref] = true
	return ref
}

func (e *Env) mintClass(c *class) boundary.ClassRef {
	if c == nil {
		return 0
	}
	e.next++
	ref := boundary.ClassRef(e.next)
	e.classRefs[ref] = c
	e.live[boundary.ObjectRef(ref)] = true
	return ref
}

func (e *Env) raise(msg string) {
	e.pending = true
	e.pendingMsg = msg
	e.thrown = e.mint(&object{class: e.throwClass, str: msg})
}

// deref resolves a local reference, raising on null or released handles.
func (e *Env) deref(ref boundary.ObjectRef) (*object, bool) {
	if ref == boundary.NullRef {
		e.raise("java.lang.NullPointerException")
		return nil, false
	}
	if !e.live[ref] {
		e.raise(fmt.Sprintf("use of released local reference %d", ref))
		return nil, false
	}
	o, ok := e.byRef[ref]
	if !ok {
		e.raise(fmt.Sprintf("invalid local reference %d", ref))
		return nil, false
	}
	return o, true
}

func (e *Env) derefClass(ref boundary.ClassRef) (*class, bool) {
	if ref == 0 || !e.live[boundary.ObjectRef(ref)] {
		e.raise(fmt.Sprintf("use of invalid class reference %d", ref))
		return nil, false
	}
	c, ok := e.classRefs[ref]
	if !ok {
		e.raise(fmt.Sprintf("invalid class reference %d", ref))
		return nil, false
	}
	return c, true
}

// val wraps an object in a fresh local reference Value.
func (e *Env) val(o *object) boundary.Value {
	if o == nil {
		return boundary.Null()
	}
	ref := e.mint(o)
	if o.class == e.stringClass {
		return boundary.String(ref)
	}
	return boundary.Object(ref)
}

func (e *Env) stringObj(s string) *object {
	return &object{class: e.stringClass, str: s}
}

// classObject returns the java.lang.Class instance denoting c.
func (e *Env) classObject(c *class) *object {
	if c.classObj == nil {
		c.classObj = &object{class: e.classClass, denotesClass: c}
	}
	return c.classObj
}

func memberKey(name, sig string) string { return name + sig }

// --- boundary.Env ---

func (e *Env) FindClass(name string) boundary.ClassRef {
	if e.pending {
		return 0
	}
	if msg, ok := e.failOn[name]; ok {
		e.raise(msg)
		return 0
	}
	c, ok := e.classes[name]
	if !ok {
		e.raise("java.lang.ClassNotFoundException: " + name)
		return 0
	}
	return e.mintClass(c)
}

func (e *Env) GetObjectClass(obj boundary.ObjectRef) boundary.ClassRef {
	if e.pending {
		return 0
	}
	o, ok := e.deref(obj)
	if !ok {
		return 0
	}
	return e.mintClass(o.class)
}

func (e *Env) resolveMethod(cls boundary.ClassRef, name, sig string, static bool) boundary.MethodID {
	if e.pending {
		return 0
	}
	if msg, ok := e.failOn[name]; ok {
		e.raise(msg)
		return 0
	}
	c, ok := e.derefClass(cls)
	if !ok {
		return 0
	}
	key := memberKey(name, sig)
	if static {
		if _, ok := c.statics[key]; !ok {
			e.raise(fmt.Sprintf("java.lang.NoSuchMethodError: static %s.%s%s", c.name, name, sig))
			return 0
		}
	} else if !hasInstanceMethod(c, key) {
		e.raise(fmt.Sprintf("java.lang.NoSuchMethodError: %s.%s%s", c.name, name, sig))
		return 0
	}
	e.next++
	mid := boundary.MethodID(e.next)
	e.methods[mid] = methodBinding{cls: c, key: key, static: static}
	return mid
}

// hasInstanceMethod includes the generic methods every object answers.
func hasInstanceMethod(c *class, key string) bool {
	if _, ok := c.methods[key]; ok {
		return true
	}
	switch key {
	case "getClass()Ljava/lang/Class;", "toString()Ljava/lang/String;":
		return true
	}
	return false
}

func (e *Env) GetMethodID(cls boundary.ClassRef, name, sig string) boundary.MethodID {
	return e.resolveMethod(cls, name, sig, false)
}

func (e *Env) GetStaticMethodID(cls boundary.ClassRef, name, sig string) boundary.MethodID {
	return e.resolveMethod(cls, name, sig, true)
}

func (e *Env) resolveField(cls boundary.ClassRef, name, sig string, static bool) boundary.FieldID {
	if e.pending {
		return 0
	}
	if msg, ok := e.failOn[name]; ok {
		e.raise(msg)
		return 0
	}
	c, ok := e.derefClass(cls)
	if !ok {
		return 0
	}
	key := memberKey(name, sig)
	if static {
		if _, ok := c.sfields[key]; !ok {
			e.raise(fmt.Sprintf("java.lang.NoSuchFieldError: static %s.%s", c.name, name))
			return 0
		}
	} else if !c.ifields[key] {
		e.raise(fmt.Sprintf("java.lang.NoSuchFieldError: %s.%s", c.name, name))
		return 0
	}
	e.next++
	fid := boundary.FieldID(e.next)
	e.fields[fid] = fieldBinding{cls: c, key: key, static: static}
	return fid
}

func (e *Env) GetFieldID(cls boundary.ClassRef, name, sig string) boundary.FieldID {
	return e.resolveField(cls, name, sig, false)
}

func (e *Env) GetStaticFieldID(cls boundary.ClassRef, name, sig string) boundary.FieldID {
	return e.resolveField(cls, name, sig, true)
}

func (e *Env) CallMethod(obj boundary.ObjectRef, mid boundary.MethodID, ret boundary.Kind, args []boundary.Value) boundary.Value {
	if e.pending {
		return boundary.Value{}
	}
	b, ok := e.methods[mid]
	if !ok || b.static {
		e.raise("invalid method id")
		return boundary.Value{}
	}
	o, ok := e.deref(obj)
	if !ok {
		return boundary.Value{}
	}
	if fn, ok := o.class.methods[b.key]; ok {
		return fn(e, o, args)
	}
	switch b.key {
	case "getClass()Ljava/lang/Class;":
		return e.val(e.classObject(o.class))
	case "toString()Ljava/lang/String;":
		return e.val(e.stringObj(fmt.Sprintf("%s@%x", o.class.name, 0x7f8a1c2d)))
	}
	e.raise("java.lang.AbstractMethodError: " + b.key)
	return boundary.Value{}
}

func (e *Env) CallStaticMethod(cls boundary.ClassRef, mid boundary.MethodID, ret boundary.Kind, args []boundary.Value) boundary.Value {
	if e.pending {
		return boundary.Value{}
	}
	b, ok := e.methods[mid]
	if !ok || !b.static {
		e.raise("invalid method id")
		return boundary.Value{}
	}
	if _, ok := e.derefClass(cls); !ok {
		return boundary.Value{}
	}
	fn, ok := b.cls.statics[b.key]
	if !ok {
		e.raise("java.lang.AbstractMethodError: " + b.key)
		return boundary.Value{}
	}
	return fn(e, nil, args)
}

func (e *Env) NewObject(cls boundary.ClassRef, ctor boundary.MethodID, args []boundary.Value) boundary.ObjectRef {
	if e.pending {
		return boundary.NullRef
	}
	b, ok := e.methods[ctor]
	if !ok {
		e.raise("invalid constructor id")
		return boundary.NullRef
	}
	if _, ok := e.derefClass(cls); !ok {
		return boundary.NullRef
	}
	return e.mint(&object{class: b.cls, fields: map[string]*object{}})
}

func (e *Env) GetField(obj boundary.ObjectRef, fid boundary.FieldID, kind boundary.Kind) boundary.Value {
	if e.pending {
		return boundary.Value{}
	}
	b, ok := e.fields[fid]
	if !ok || b.static {
		e.raise("invalid field id")
		return boundary.Value{}
	}
	o, ok := e.deref(obj)
	if !ok {
		return boundary.Value{}
	}
	return e.val(o.fields[b.key])
}

func (e *Env) GetStaticField(cls boundary.ClassRef, fid boundary.FieldID, kind boundary.Kind) boundary.Value {
	if e.pending {
		return boundary.Value{}
	}
	b, ok := e.fields[fid]
	if !ok || !b.static {
		e.raise("invalid field id")
		return boundary.Value{}
	}
	if _, ok := e.derefClass(cls); !ok {
		return boundary.Value{}
	}
	return e.val(b.cls.sfields[b.key])
}

func (e *Env) SetField(obj boundary.ObjectRef, fid boundary.FieldID, v boundary.Value) {
	if e.pending {
		return
	}
	b, ok := e.fields[fid]
	if !ok || b.static {
		e.raise("invalid field id")
		return
	}
	o, ok := e.deref(obj)
	if !ok {
		return
	}
	ref, err := v.AsRef()
	if err != nil {
		e.raise("field type mismatch: " + b.key)
		return
	}
	if ref == boundary.NullRef {
		o.fields[b.key] = nil
		return
	}
	target, ok := e.deref(ref)
	if !ok {
		return
	}
	o.fields[b.key] = target
}

func (e *Env) NewString(s string) boundary.ObjectRef {
	if e.pending {
		return boundary.NullRef
	}
	return e.mint(e.stringObj(s))
}

func (e *Env) StringChars(ref boundary.ObjectRef) string {
	if e.pending {
		return ""
	}
	o, ok := e.deref(ref)
	if !ok {
		return ""
	}
	if o.class != e.stringClass {
		e.raise("not a string reference")
		return ""
	}
	return o.str
}

func (e *Env) ArrayLength(arr boundary.ObjectRef) int {
	if e.pending {
		return 0
	}
	o, ok := e.deref(arr)
	if !ok {
		return 0
	}
	return len(o.array)
}

func (e *Env) ArrayElement(arr boundary.ObjectRef, i int) boundary.ObjectRef {
	if e.pending {
		return boundary.NullRef
	}
	o, ok := e.deref(arr)
	if !ok {
		return boundary.NullRef
	}
	if i < 0 || i >= len(o.array) {
		e.raise("java.lang.ArrayIndexOutOfBoundsException")
		return boundary.NullRef
	}
	return e.mint(o.array[i])
}

func (e *Env) DeleteLocalRef(ref boundary.ObjectRef) {
	if ref == boundary.NullRef {
		return
	}
	delete(e.live, ref)
}

func (e *Env) ExceptionPending() bool { return e.pending }

func (e *Env) ExceptionOccurred() boundary.ObjectRef { return e.thrown }

func (e *Env) ExceptionDescribe() string { return e.pendingMsg }

func (e *Env) ExceptionClear() {
	e.pending = false
	e.pendingMsg = ""
	e.thrown = boundary.NullRef
}
