// Package diagnostic provides structured warnings, errors and notes for the
// glue generator, and the fatal error taxonomy.
//
// Key capabilities:
//   - Per-declaration diagnostics carrying file, declaration name and span
//   - Error kinds (syntax collaborator, model build, policy validation,
//     adaptation, output splice) as errors.Is-able marks
//   - Strict promotion of collected diagnostics to a fatal error
//   - Console reporting through a zap logger, suppressed in quiet mode
package diagnostic
