package demangle

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	itanium "github.com/ianlancetaylor/demangle"
)

// Demangle returns the readable form of a mangled symbol name. Legacy Rust
// symbols are decoded here; everything else goes through the Itanium
// demangler, which also covers Rust v0 names and returns the input
// unchanged when it does not apply.
func Demangle(name string) string {
	if decoded, ok := demangleLegacyRust(name); ok {
		return decoded
	}
	return itanium.Filter(name)
}

// demangleLegacyRust decodes symbols produced by Rust's legacy mangling
// scheme: a ZN prefix, length-prefixed path components, a closing E, and a
// compiler-appended hash as the last component. The hash is dropped from
// the readable form.
func demangleLegacyRust(name string) (string, bool) {
	name = trimThinLTOSuffix(name)

	var inner string
	switch {
	case len(name) > 4 && strings.HasPrefix(name, "_ZN"):
		inner = name[3:]
	case len(name) > 3 && strings.HasPrefix(name, "ZN"):
		inner = name[2:]
	case len(name) > 5 && strings.HasPrefix(name, "__ZN"):
		inner = name[4:]
	default:
		return "", false
	}

	components, suffix, ok := splitComponents(inner)
	if !ok {
		return "", false
	}
	if n := len(components); n > 1 && isHashComponent(components[n-1]) {
		components = components[:n-1]
	}

	var b strings.Builder
	for i, component := range components {
		if i > 0 {
			b.WriteString("::")
		}
		writeComponent(&b, component)
	}
	b.WriteString(suffix)
	return b.String(), true
}

// trimThinLTOSuffix strips the ".llvm.<hex>" ending LLVM appends when it
// imports and renames internal symbols during ThinLTO.
func trimThinLTOSuffix(name string) string {
	const marker = ".llvm."
	i := strings.Index(name, marker)
	if i < 0 {
		return name
	}
	candidate := name[i+len(marker):]
	for j := 0; j < len(candidate); j++ {
		c := candidate[j]
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'F' || c == '@') {
			return name
		}
	}
	return name[:i]
}

// splitComponents cuts the length-prefixed components out of the mangled
// body. Anything after the closing E must be empty or a dot-led fragment
// such as ".cold"; the fragment is kept verbatim as suffix.
func splitComponents(inner string) (components []string, suffix string, ok bool) {
	for i := 0; i < len(inner); i++ {
		if inner[i] >= utf8.RuneSelf {
			return nil, "", false
		}
	}

	for {
		if inner == "" {
			return nil, "", false
		}
		if inner[0] == 'E' {
			suffix = inner[1:]
			break
		}
		if inner[0] < '0' || inner[0] > '9' {
			return nil, "", false
		}
		length := 0
		i := 0
		for i < len(inner) && inner[i] >= '0' && inner[i] <= '9' {
			length = length*10 + int(inner[i]-'0')
			if length > len(inner) {
				return nil, "", false
			}
			i++
		}
		if len(inner)-i < length {
			return nil, "", false
		}
		components = append(components, inner[i:i+length])
		inner = inner[i+length:]
	}

	if suffix != "" && (suffix[0] != '.' || !isSymbolLike(suffix)) {
		return nil, "", false
	}
	return components, suffix, true
}

// isHashComponent reports whether s is the compiler-appended hash, an "h"
// followed by hex digits.
func isHashComponent(s string) bool {
	if len(s) == 0 || s[0] != 'h' {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

func isSymbolLike(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '!' || s[i] > '~' {
			return false
		}
	}
	return true
}

// writeComponent prints one path component, expanding the $LT$-style
// escapes and turning ".." into "::". An escape that cannot be decoded
// ends the component early.
func writeComponent(b *strings.Builder, component string) {
	rest := component
	if strings.HasPrefix(rest, "_$") {
		rest = rest[1:]
	}
	for rest != "" {
		if rest[0] == '.' {
			if strings.HasPrefix(rest, "..") {
				b.WriteString("::")
				rest = rest[2:]
			} else {
				b.WriteString(".")
				rest = rest[1:]
			}
			continue
		}
		if rest[0] == '$' {
			end := strings.IndexByte(rest[1:], '$')
			if end < 0 {
				return
			}
			escape, after := rest[1:1+end], rest[end+2:]
			unescaped, decoded := decodeEscape(escape)
			if !decoded {
				return
			}
			b.WriteString(unescaped)
			rest = after
			continue
		}
		idx := strings.IndexAny(rest, "$.")
		if idx < 0 {
			idx = len(rest)
		}
		b.WriteString(rest[:idx])
		rest = rest[idx:]
	}
}

// decodeEscape expands one $...$ escape. Besides the fixed punctuation
// escapes, $u<hex>$ encodes an arbitrary non-control code point with
// lowercase hex digits.
func decodeEscape(escape string) (string, bool) {
	switch escape {
	case "SP":
		return "@", true
	case "BP":
		return "*", true
	case "RF":
		return "&", true
	case "LT":
		return "<", true
	case "GT":
		return ">", true
	case "LP":
		return "(", true
	case "RP":
		return ")", true
	case "C":
		return ",", true
	}
	if len(escape) < 2 || escape[0] != 'u' {
		return "", false
	}
	digits := escape[1:]
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return "", false
		}
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return "", false
	}
	r := rune(v)
	if !utf8.ValidRune(r) || unicode.IsControl(r) {
		return "", false
	}
	return string(r), true
}
