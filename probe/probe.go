package probe

import (
	"context"

	"github.com/eyad-hamdy98/CheckBeer/boundary"
	"github.com/eyad-hamdy98/CheckBeer/internal/diag"
)

// Probe runs the integrity detectors against one runtime environment.
// A Probe holds no resolved handles between runs: every detector re-resolves
// everything it needs, trading performance for resistance to cached-stale-
// reference attacks. Not safe for concurrent use — the environment's error
// state is thread-local.
type Probe struct {
	env  boundary.Env
	log  *diag.Logger
	insp PathInspector
}

// Option configures a Probe.
type Option func(*Probe)

// WithLogger routes diagnostic lines to l instead of stderr.
func WithLogger(l *diag.Logger) Option {
	return func(p *Probe) { p.log = l }
}

// WithInspector substitutes the filesystem inspector used by the
// package-path detector.
func WithInspector(pi PathInspector) Option {
	return func(p *Probe) { p.insp = pi }
}

// New creates a Probe over env.
func New(env boundary.Env, opts ...Option) *Probe {
	p := &Probe{
		env:  env,
		log:  diag.Default(),
		insp: NewOSInspector(DefaultProbeTimeout),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Probe) begin(name string) *trace {
	return &trace{name: name, log: p.log}
}

// CheckAll runs all six detectors unconditionally, in fixed order, and
// returns the OR-combined verdict. It never short-circuits — every
// detector's diagnostics are useful even when an earlier one already
// flagged tampering — and it never returns an error: local failures are
// contained in the detector that produced them.
func (p *Probe) CheckAll(ctx context.Context, appContext boundary.ObjectRef) AggregateReport {
	p.log.Infof("starting runtime tamper checks")

	results := []DetectorResult{
		p.CreatorIdentity(),
		p.CreatorFields(),
		p.CreatorClassLoader(),
		p.PackageManagerProxy(appContext),
		p.ComponentFactory(appContext),
		p.PackagePaths(ctx, appContext),
	}

	report := AggregateReport{Results: results}
	for _, r := range results {
		report.Suspicious = report.Suspicious || r.Suspicious
	}

	p.log.Infof("runtime tamper checks completed, suspicious: %t", report.Suspicious)
	return report
}

// creatorObject resolves the package-info creator singleton.
func (p *Probe) creatorObject(sc *boundary.Scope) (boundary.ObjectRef, error) {
	v, err := boundary.GetStaticField(p.env, sc,
		"android/content/pm/PackageInfo", "CREATOR", "Landroid/os/Parcelable$Creator;",
		boundary.KindObject)
	if err != nil {
		return boundary.NullRef, err
	}
	ref, err := v.AsRef()
	if err != nil {
		return boundary.NullRef, err
	}
	if ref == boundary.NullRef {
		return boundary.NullRef, &MalformedObservationError{What: "creator singleton"}
	}
	return ref, nil
}

// classNameOf returns the runtime class name of obj.
func (p *Probe) classNameOf(sc *boundary.Scope, obj boundary.ObjectRef) (string, error) {
	clsV, err := boundary.CallMethod(p.env, sc, obj,
		"getClass", "()Ljava/lang/Class;", boundary.KindObject)
	if err != nil {
		return "", err
	}
	clsObj, err := clsV.AsRef()
	if err != nil {
		return "", err
	}
	nameV, err := boundary.CallMethod(p.env, sc, clsObj,
		"getName", "()Ljava/lang/String;", boundary.KindString)
	if err != nil {
		return "", err
	}
	nameRef, err := nameV.AsRef()
	if err != nil {
		return "", err
	}
	if nameRef == boundary.NullRef {
		return "", &MalformedObservationError{What: "class name"}
	}
	return boundary.GoString(p.env, nameRef)
}

// stringResult converts a string-valued crossing result, treating null as
// a malformed observation named what.
func (p *Probe) stringResult(v boundary.Value, what string) (string, error) {
	ref, err := v.AsRef()
	if err != nil {
		return "", err
	}
	if ref == boundary.NullRef {
		return "", &MalformedObservationError{What: what}
	}
	return boundary.GoString(p.env, ref)
}
