// Package scadparse reads CAD DSL source files far enough to discover what
// they define: module and function signatures, global assignments, and the
// file's own use/include statements.
//
// The reader is token based. Default-value expressions may nest brackets,
// parentheses and braces to any depth; their text is discarded because the
// CAD engine supplies the actual defaults. Statement bodies are skipped with
// bracket matching, so definitions nested inside other modules are not
// reported.
package scadparse
