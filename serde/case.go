// Package serde interprets the handful of serde attributes that change how a
// Rust type is serialized: rename, rename_all, with and skip.
package serde

import (
	"strings"
	"unicode"
)

// RenameRule is a #[serde(rename_all = "...")] case convention.
type RenameRule int

const (
	// None leaves names unchanged.
	None RenameRule = iota
	LowerCase
	UpperCase
	PascalCase
	CamelCase
	SnakeCase
	ScreamingSnakeCase
	KebabCase
	ScreamingKebabCase
)

var ruleNames = map[string]RenameRule{
	"lowercase":            LowerCase,
	"UPPERCASE":            UpperCase,
	"PascalCase":           PascalCase,
	"camelCase":            CamelCase,
	"snake_case":           SnakeCase,
	"SCREAMING_SNAKE_CASE": ScreamingSnakeCase,
	"kebab-case":           KebabCase,
	"SCREAMING-KEBAB-CASE": ScreamingKebabCase,
}

// ParseRenameRule returns the rule spelled s. Unknown spellings, "none"
// included, map to None.
func ParseRenameRule(s string) RenameRule {
	if rule, ok := ruleNames[s]; ok {
		return rule
	}
	return None
}

func (r RenameRule) String() string {
	for name, rule := range ruleNames {
		if rule == r {
			return name
		}
	}
	return "none"
}

// ApplyToVariant renames a variant declared in PascalCase.
func (r RenameRule) ApplyToVariant(variant string) string {
	switch r {
	case LowerCase:
		return asciiLower(variant)
	case UpperCase:
		return asciiUpper(variant)
	case CamelCase:
		return lowerFirst(variant)
	case SnakeCase:
		return pascalToSnake(variant)
	case ScreamingSnakeCase:
		return asciiUpper(pascalToSnake(variant))
	case KebabCase:
		return strings.ReplaceAll(pascalToSnake(variant), "_", "-")
	case ScreamingKebabCase:
		return strings.ReplaceAll(asciiUpper(pascalToSnake(variant)), "_", "-")
	}
	return variant
}

// ApplyToField renames a field declared in snake_case.
func (r RenameRule) ApplyToField(field string) string {
	switch r {
	case UpperCase, ScreamingSnakeCase:
		return asciiUpper(field)
	case PascalCase:
		return snakeToPascal(field)
	case CamelCase:
		return lowerFirst(snakeToPascal(field))
	case KebabCase:
		return strings.ReplaceAll(field, "_", "-")
	case ScreamingKebabCase:
		return strings.ReplaceAll(asciiUpper(field), "_", "-")
	}
	return field
}

// pascalToSnake inserts an underscore before every uppercase letter but the first.
// Acronyms are not special: "HTTPGet" becomes "h_t_t_p_get", as serde does.
func pascalToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('_')
		}
		b.WriteRune(toASCIILower(r))
	}
	return b.String()
}

func snakeToPascal(s string) string {
	var b strings.Builder
	capitalize := true
	for _, r := range s {
		switch {
		case r == '_':
			capitalize = true
		case capitalize:
			b.WriteRune(toASCIIUpper(r))
			capitalize = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = toASCIILower(runes[0])
	return string(runes)
}

func asciiLower(s string) string {
	return strings.Map(toASCIILower, s)
}

func asciiUpper(s string) string {
	return strings.Map(toASCIIUpper, s)
}

func toASCIILower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

func toASCIIUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
