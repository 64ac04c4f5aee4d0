package serde

import "regexp"

// Only these four attribute shapes are interpreted. Combined forms such as
// #[serde(rename = "x", default)] are not recognised.
var (
	renamePattern    = regexp.MustCompile(`\[serde\(rename\s*=\s*"(\w+)"\)\]`)
	renameAllPattern = regexp.MustCompile(`\[serde\(rename_all\s*=\s*"([\w-]+)"\)\]`)
	withPattern      = regexp.MustCompile(`\[serde\(with\s*=\s*"(\w+)"\)\]`)
	skipPattern      = regexp.MustCompile(`\[serde\s*\(\s*skip\s*\)\s*\]`)
)

// BytesModule is the only #[serde(with = ...)] module with a known format.
const BytesModule = "serde_bytes"

// Rename returns the value of the first #[serde(rename = "...")] attribute.
func Rename(attrs []string) (string, bool) {
	return firstCapture(renamePattern, attrs)
}

// RenameAll returns the container's #[serde(rename_all = "...")] rule.
func RenameAll(attrs []string) RenameRule {
	if s, ok := firstCapture(renameAllPattern, attrs); ok {
		return ParseRenameRule(s)
	}
	return None
}

// With returns the module named by #[serde(with = "...")].
func With(attrs []string) (string, bool) {
	return firstCapture(withPattern, attrs)
}

// ShouldSkip reports whether any attribute is #[serde(skip)].
func ShouldSkip(attrs []string) bool {
	for _, attr := range attrs {
		if skipPattern.MatchString(attr) {
			return true
		}
	}
	return false
}

// ItemName is the serialization name of an item: its rename if present,
// otherwise its declared name.
func ItemName(name string, attrs []string) string {
	if rename, ok := Rename(attrs); ok {
		return rename
	}
	return name
}

// FieldName resolves a field's serialized name from its own attributes and
// those of the struct or variant declaring it.
func FieldName(name string, fieldAttrs, containerAttrs []string) string {
	if rename, ok := Rename(fieldAttrs); ok {
		return rename
	}
	return RenameAll(containerAttrs).ApplyToField(name)
}

// VariantName resolves a variant's serialized name from its own attributes
// and those of the enum declaring it.
func VariantName(name string, variantAttrs, enumAttrs []string) string {
	if rename, ok := Rename(variantAttrs); ok {
		return rename
	}
	return RenameAll(enumAttrs).ApplyToVariant(name)
}

func firstCapture(re *regexp.Regexp, attrs []string) (string, bool) {
	for _, attr := range attrs {
		if m := re.FindStringSubmatch(attr); m != nil {
			return m[1], true
		}
	}
	return "", false
}
