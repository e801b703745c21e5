package boundary

// Scope owns the transient handles acquired while it is open and releases
// every one of them exactly once, on every exit path. Callers open a scope,
// defer Release, and track each handle a crossing hands back. A handle that
// must outlive the scope is promoted, transferring ownership to the caller.
type Scope struct {
	env      Env
	refs     []ObjectRef
	released bool
}

// NewScope opens a scope over env.
func NewScope(env Env) *Scope {
	return &Scope{env: env}
}

// Track takes ownership of a local reference. NullRef is ignored.
func (s *Scope) Track(ref ObjectRef) ObjectRef {
	if ref != NullRef && !s.released {
		s.refs = append(s.refs, ref)
	}
	return ref
}

// TrackClass takes ownership of a class handle; classes resolved purely to
// look up a member are released with the block that resolved them.
func (s *Scope) TrackClass(cls ClassRef) ClassRef {
	s.Track(ObjectRef(cls))
	return cls
}

// TrackValue takes ownership of the reference inside a value, if any.
func (s *Scope) TrackValue(v Value) Value {
	if v.kind == KindObject || v.kind == KindString {
		s.Track(v.ref)
	}
	return v
}

// Promote removes ref from the scope and hands ownership to the caller.
// The caller becomes responsible for the one release.
func (s *Scope) Promote(ref ObjectRef) ObjectRef {
	for i, r := range s.refs {
		if r == ref {
			s.refs = append(s.refs[:i], s.refs[i+1:]...)
			break
		}
	}
	return ref
}

// Release frees every tracked handle in reverse acquisition order.
// Idempotent: a second call is a no-op.
func (s *Scope) Release() {
	if s.released {
		return
	}
	s.released = true
	for i := len(s.refs) - 1; i >= 0; i-- {
		s.env.DeleteLocalRef(s.refs[i])
	}
	s.refs = nil
}
