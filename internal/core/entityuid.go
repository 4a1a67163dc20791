package core

import (
	"fmt"
	"strings"
)

// EntityTypeName is a namespaced entity type, e.g. "Library::Book".
// It is immutable after construction; compare with ==.
type EntityTypeName struct {
	path string
}

// ParseEntityTypeName parses a "::"-joined identifier path.
func ParseEntityTypeName(s string) (EntityTypeName, error) {
	if s == "" {
		return EntityTypeName{}, fmt.Errorf("entity type name must not be empty")
	}
	parts := strings.Split(s, "::")
	for _, part := range parts {
		if !isIdent(part) {
			return EntityTypeName{}, fmt.Errorf("invalid entity type name component '%s'", part)
		}
	}
	return EntityTypeName{path: strings.Join(parts, "::")}, nil
}

// Basename returns the last component of the type path.
func (t EntityTypeName) Basename() string {
	parts := strings.Split(t.path, "::")
	return parts[len(parts)-1]
}

// Namespace returns the leading components of the type path, if any.
func (t EntityTypeName) Namespace() []string {
	parts := strings.Split(t.path, "::")
	return parts[:len(parts)-1]
}

func (t EntityTypeName) String() string {
	return t.path
}

// EntityUID identifies a single entity: a type plus a quoted id literal,
// written Namespace::Type::"id". The zero value is not a valid UID.
type EntityUID struct {
	typ EntityTypeName
	id  string
}

// NewEntityUID builds a UID from an already-validated type name and raw id.
func NewEntityUID(typ EntityTypeName, id string) EntityUID {
	return EntityUID{typ: typ, id: id}
}

// ParseEntityUID parses the textual form Namespace::Type::"id".
// The id literal supports the escapes \\ \" \' \n \r \t \0.
func ParseEntityUID(s string) (EntityUID, error) {
	s = strings.TrimSpace(s)
	open := strings.Index(s, `"`)
	if open < 0 {
		return EntityUID{}, fmt.Errorf("invalid entity UID '%s': missing quoted id", s)
	}
	typePart := s[:open]
	if !strings.HasSuffix(typePart, "::") {
		return EntityUID{}, fmt.Errorf("invalid entity UID '%s': expected '::' before id", s)
	}
	typ, err := ParseEntityTypeName(strings.TrimSuffix(typePart, "::"))
	if err != nil {
		return EntityUID{}, fmt.Errorf("invalid entity UID '%s': %w", s, err)
	}
	id, rest, err := unquote(s[open:])
	if err != nil {
		return EntityUID{}, fmt.Errorf("invalid entity UID '%s': %w", s, err)
	}
	if rest != "" {
		return EntityUID{}, fmt.Errorf("invalid entity UID '%s': trailing input after id", s)
	}
	return EntityUID{typ: typ, id: id}, nil
}

// Type returns the entity type name.
func (u EntityUID) Type() EntityTypeName {
	return u.typ
}

// ID returns the unescaped id literal.
func (u EntityUID) ID() string {
	return u.id
}

// String renders the canonical textual form, re-escaping the id literal.
func (u EntityUID) String() string {
	return u.typ.String() + "::" + quote(u.id)
}

// isIdent reports whether s is a bare identifier: a letter or underscore
// followed by letters, digits or underscores.
func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// unquote consumes a leading double-quoted string literal from s and returns
// the unescaped content plus the remaining input.
func unquote(s string) (string, string, error) {
	if len(s) == 0 || s[0] != '"' {
		return "", "", fmt.Errorf("expected opening quote")
	}
	var b strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		switch c {
		case '"':
			return b.String(), s[i+1:], nil
		case '\\':
			if i+1 >= len(s) {
				return "", "", fmt.Errorf("unterminated escape sequence")
			}
			i++
			switch s[i] {
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case '\'':
				b.WriteByte('\'')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case '0':
				b.WriteByte(0)
			default:
				return "", "", fmt.Errorf("unsupported escape '\\%c'", s[i])
			}
		default:
			b.WriteByte(c)
		}
		i++
	}
	return "", "", fmt.Errorf("unterminated string literal")
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
