// Package runx runs collections of operations with explicit ordering and
// concurrency guarantees.
//
// # Parallel
//
// [Parallel] processes a slice with a bounded concurrency window. Up to
// concurrency items run at once; each completion dispatches the next
// unstarted item. The first error stops further dispatch and is returned
// once every already-started item has finished:
//
//	err := runx.Parallel(ctx, urls, 8, func(ctx context.Context, u string) error {
//	    return fetch(ctx, u)
//	})
//
// Passing concurrency <= 0 fans out fully, running every item at once.
//
// # Sequential
//
// [Sequential] processes a slice strictly in order, starting item i only
// after item i-1 succeeded, and bails on the first error:
//
//	err := runx.Sequential(ctx, migrations, func(ctx context.Context, m Migration) error {
//	    return m.Apply(ctx)
//	})
//
// Neither runner cancels work it has already started; "stop on error" only
// prevents new dispatch. Side effects of items completed before the error
// remain in place.
package runx
