// Package demangle turns mangled symbol names from coverage data into
// readable function names.
//
// Rust's legacy mangling scheme (symbols shaped like _ZN...E with a trailing
// hash component) is decoded in this package because the readable form we
// want, "crate::module::function" without the hash, is specific to that
// scheme. Every other symbol (Rust v0 _R names, C++ Itanium names) is
// delegated to github.com/ianlancetaylor/demangle.
//
// Design decision: Demangling never fails. A symbol that cannot be decoded
// is returned unchanged, so the report always has a name for every method
// and callers do not need an error path for display-only output.
package demangle
