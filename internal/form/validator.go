package form

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/na2kera/ai-rent-navi/constants"
)

// User-facing validation messages.
const (
	msgRequired       = "必須項目です。"
	msgWhitespace     = "空白文字が含まれています。削除してください。"
	msgNotInteger     = "半角数字のみ入力してください。(小数不可)"
	msgNegative       = "0以上を入力してください。"
	msgLayoutRange    = "間取りは1から12までの数値を入力してください。"
	msgStructureRange = "構造は1から5までの数値を入力してください。"
)

// Half-width digits only; decimals and signs are rejected.
var integerPattern = regexp.MustCompile(`^[0-9]+$`)

func hasWhitespace(v string) bool {
	// Covers full-width spaces as well, not just ASCII.
	return strings.ContainsFunc(v, unicode.IsSpace)
}

// Validate re-evaluates the form and returns the updated error map.
//
// With changed == "" every rule runs and the map is rebuilt in declared
// order. With a changed field only that field's rules (plus the layout and
// structure range rules, when they are the changed field) run, and their
// outcome is merged into existing; all other entries are preserved as-is.
func Validate(values Values, existing Errors, changed Field) Errors {
	errs := existing.Clone()

	for _, f := range requiredFields {
		if changed != "" && changed != f.key {
			continue
		}
		validateRequired(f, values[f.key], errs)
	}

	// Range rules for the enumerated codes. A violation overrides whatever
	// the generic pass decided for the field.
	if changed == "" || changed == FieldLayout {
		validateRange(FieldLayout, values[FieldLayout], constants.LayoutMin, constants.LayoutMax, msgLayoutRange, errs)
	}
	if changed == "" || changed == FieldStructure {
		validateRange(FieldStructure, values[FieldStructure], constants.StructureMin, constants.StructureMax, msgStructureRange, errs)
	}

	for _, key := range optionalNumberFields {
		if changed != "" && changed != key {
			continue
		}
		validateOptionalNumber(key, values[key], errs)
	}

	return errs
}

func validateRequired(f fieldRule, value string, errs Errors) {
	switch {
	case strings.TrimSpace(value) == "":
		errs[f.key] = msgRequired
	case hasWhitespace(value):
		errs[f.key] = msgWhitespace
	case f.kind == kindNumber && !integerPattern.MatchString(value):
		errs[f.key] = msgNotInteger
	case f.kind == kindNumber && mustInt(value) < 0:
		errs[f.key] = msgNegative
	default:
		delete(errs, f.key)
	}
}

func validateRange(key Field, value string, min, max int, msg string, errs Errors) {
	if value == "" {
		return
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		if integerPattern.MatchString(value) {
			// All digits but too large for int: certainly out of range.
			errs[key] = msg
		}
		// Otherwise the generic pass already flagged it.
		return
	}
	if n < min || n > max {
		errs[key] = msg
	}
}

func validateOptionalNumber(key Field, value string, errs Errors) {
	switch {
	case value == "":
		delete(errs, key)
	case hasWhitespace(value):
		errs[key] = msgWhitespace
	case !integerPattern.MatchString(value):
		errs[key] = msgNotInteger
	case mustInt(value) < 0:
		errs[key] = msgNegative
	default:
		delete(errs, key)
	}
}

// mustInt is only called on values that matched integerPattern.
func mustInt(v string) int {
	n, _ := strconv.Atoi(v)
	return n
}
