// Package scoped provides a dependency-resolution engine for call graphs.
//
// # Overview
//
// Scoped organizes code around three core concepts:
//
//  1. Producers: recipes for values, with explicit dependencies of their own
//  2. Dependencies: descriptors declaring how a callable's parameter is produced
//  3. Scopes: lifetimes that cache resolved values and release acquired resources
//
// # Basic Usage
//
// Declare producers and wire them into a callable:
//
//	db := scoped.NewProducer("db", func(ctx context.Context, args scoped.Args) (scoped.Result, error) {
//	    return scoped.Resource(openDB(), func(ctx context.Context) error {
//	        return closeDB()
//	    }), nil
//	})
//
//	handler := scoped.NewFunc("handler",
//	    func(ctx context.Context, args scoped.Args) (any, error) {
//	        return query(args["db"].(*DB), args["name"].(string)), nil
//	    },
//	    scoped.WithParam("name"),
//	    scoped.WithDep("db", scoped.Scoped(db)),
//	)
//
// Resolve once and invoke, or bridge for repeated calls:
//
//	res, err := scoped.Resolve(ctx, handler, nil)
//	defer res.Close(ctx)
//
//	bridged := scoped.Bridge(handler)
//	out, err := bridged.Invoke(ctx, scoped.Args{"name": "alice"})
//
// # Lifetimes
//
// Dependencies come in two lifetimes plus an observer form:
//
//	// Scoped: resolved fresh once per resolution scope
//	scoped.WithDep("db", scoped.Scoped(dbProducer))
//
//	// Shared: resolved once per shared scope, reused across resolutions
//	scoped.WithDep("pool", scoped.Shared(poolProducer))
//
//	// Tag-bound: observes the parameter's final value, injects nothing
//	scoped.WithTagged("customer", auditTrail)
//
// Within one resolution scope a producer is invoked at most once; two
// descriptors over the same producer receive the identical value. Caches
// key by producer pointer identity, never by value equality.
//
// # Shared Scopes
//
// Shared dependencies need an open shared scope:
//
//	shared := scoped.OpenShared()
//	defer shared.Close(ctx)
//
// First initialization per producer is exactly-once under concurrent
// callers; the cached path is lock-free. Acquiring a shared dependency
// with no open scope fails fast rather than improvising one.
//
// # Producer Results
//
// Producers yield one of four result shapes:
//
//	scoped.Final(v)                  // plain value
//	scoped.Deferred(compute)         // eventual value
//	scoped.Resource(v, release)      // value with cleanup
//	scoped.OpenResource(open)        // resource opened on adaptation
//
// Releases run in exact reverse acquisition order when the owning scope
// ends, even under partial failure.
//
// # Failure Handling
//
// A scoped producer failure is captured in the resolved-arguments map as a
// Failed marker, so one broken dependency does not abort the call. A
// tag-bound failure propagates and aborts the resolution (guards and
// validators must not be silently suppressed); the release stack still
// unwinds. Callers wanting best-effort injection inspect the map for
// Failed values; callers wanting fail-fast semantics prefer tag-bound
// descriptors.
//
// # Uniqueness Validation
//
// Embed Single to flag a descriptor type as exclusive, then check a
// callable with Validate:
//
//	type FailureHandler struct{ scoped.Single }
//	type Retry struct{ FailureHandler }
//	type Fallback struct{ FailureHandler }
//
//	err := scoped.Validate(handler)
//
// Two Retry instances report the concrete type; a Retry plus a Fallback
// report the shared FailureHandler ancestor with both offenders listed.
// Validation is caller-invoked, never automatic.
//
// # Extensions
//
// Extensions observe producer invocations and release failures:
//
//	type TimingExtension struct {
//	    scoped.BaseExtension
//	}
//
//	func (e *TimingExtension) WrapAcquire(ctx context.Context, next func() (any, error), op *scoped.Operation) (any, error) {
//	    start := time.Now()
//	    result, err := next()
//	    log.Printf("%s %s took %v", op.Kind, op.Producer.Name(), time.Since(start))
//	    return result, err
//	}
//
//	res, err := scoped.Resolve(ctx, fn, nil, scoped.WithExtensions(&TimingExtension{
//	    BaseExtension: scoped.NewBaseExtension("timing"),
//	}))
//
// The extensions subpackage ships structured logging (zap) and Prometheus
// metrics built on this hook.
//
// # Concurrency
//
// A ResolveCtx is scope-local: one logical caller per resolution scope,
// with state threaded explicitly so concurrent unrelated resolutions never
// observe each other. A SharedScope tolerates interleaved concurrent
// callers. There is no cycle detection: a self-referential producer graph
// recurses until the stack limit, and timeouts are the producer's
// responsibility via ctx.
package scoped
