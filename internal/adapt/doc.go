// Package adapt decides how each parameter and return value of a function is
// represented on the Python side.
//
// Parameters are classified in a fixed order and the first applicable
// strategy wins:
//
//  1. Dropped: a C variadic tail. A preceding format string is forwarded as
//     ("%s", fmt) so user text is never interpreted.
//  2. FixedArray(N): a one-dimensional array of numbers or bools whose size is
//     a literal or a named number from the policy.
//  3. Boxed: a non-const pointer or reference to a single scalar. Pointers
//     are nullable.
//  4. BufferView: a pointer to numbers followed by an integer count. The
//     count becomes Dropped and is derived from the view.
//  5. SentinelDefault: a default written as sizeof(...) is exposed as -1 and
//     resolved inside the glue.
//  6. PromotedOut: a non-const pointer or reference named by a promote rule
//     is removed from the arguments and returned.
//  7. Passthrough.
//
// Every strategy but Passthrough needs a matching row in the policy table of
// the same name.
package adapt
