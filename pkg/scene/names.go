package scene

import (
	"strings"
	"unicode"
)

// hostReserved holds the Go keywords. DSL identifiers that collide with them
// get a trailing underscore on the host side.
var hostReserved = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true,
	"for": true, "func": true, "go": true, "goto": true, "if": true,
	"import": true, "interface": true, "map": true, "package": true,
	"range": true, "return": true, "select": true, "struct": true,
	"switch": true, "type": true, "var": true,
}

// IsHostReserved reports whether name is a Go keyword.
func IsHostReserved(name string) bool {
	return hostReserved[name]
}

// HostName adjusts a DSL identifier for use on the host side: reserved words
// get a trailing underscore ("import" -> "import_") and identifiers starting
// with a digit get a leading one ("3d" -> "_3d").
func HostName(dsl string) string {
	if hostReserved[dsl] {
		return dsl + "_"
	}
	if dsl != "" && unicode.IsDigit(rune(dsl[0])) {
		return "_" + dsl
	}
	return dsl
}

// DSLName reverses HostName.
func DSLName(host string) string {
	if short, ok := strings.CutSuffix(host, "_"); ok && hostReserved[short] {
		return short
	}
	if len(host) > 1 && host[0] == '_' && unicode.IsDigit(rune(host[1])) {
		return host[1:]
	}
	return host
}
