// Package lock serializes access to shared filesystem resources.
//
// Operations that touch the same files must not interleave, while
// operations on unrelated files should proceed in parallel. This package
// provides per-resource reentrant locks, a bounded TTL-leased registry
// mapping canonical paths to those locks, a heuristic extractor that finds
// the paths a shell command touches, and an executor that acquires every
// needed lock in sorted order before running an operation.
//
// # Components
//
//   - Handle: a reentrant mutual-exclusion lock. Reentrancy is keyed on an
//     Owner token carried in the context, since goroutines have no stable
//     identity.
//
//   - Registry: a bounded map from canonical resource path to Handle.
//     Entries are leased: unheld locks idle past LockTTL are swept, and at
//     capacity the oldest unheld entries are pruned. A held lock is never
//     removed.
//
//   - ExtractPaths: regex heuristics over a shell-like command string,
//     returning the canonical paths it appears to touch. Deliberately not
//     a shell parser; see the function documentation for its limits.
//
//   - Executor: acquires the locks for all extracted paths in sorted order
//     (so overlapping callers cannot deadlock), runs the operation, and
//     releases in reverse order.
//
// # Usage
//
//	reg := lock.NewRegistry(lock.RegistryConfig{
//	    LockTTL:  10 * time.Minute,
//	    MaxLocks: 512,
//	})
//
//	exec, err := lock.NewExecutor(reg,
//	    lock.WithAcquireTimeout(30*time.Second),
//	)
//	if err != nil {
//	    return err
//	}
//
//	err = exec.Run(ctx, "cp /etc/app.conf /etc/app.conf.bak", func(ctx context.Context) error {
//	    return runCommand(ctx)
//	})
package lock
