// Package mython implements an interpreter for Mython, a small,
// indentation-sensitive, dynamically typed scripting language with the
// following constructs:
//   - Integer, string, True/False and None literals.
//   - Arithmetic (+, -, *, /) and comparisons (==, !=, <, >, <=, >=).
//   - Short-circuit and/or and prefix not, always yielding a bool.
//   - print with comma-separated arguments, and str(...) for the
//     textual form of any value.
//   - Classes with single inheritance, methods via `def name(self, ...)`,
//     dotted field access, and the special methods __init__, __str__,
//     __eq__, __lt__ and __add__.
//   - if/else over indented blocks (two spaces per level) and return.
//
// Comments beginning with `#` run to end of line. The interpreter
// enforces a step quota and a recursion limit, rejecting scripts that
// exceed the configured bounds.
package mython
