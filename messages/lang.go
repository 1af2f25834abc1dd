package messages

import (
	"sync/atomic"

	"golang.org/x/text/language"
)

// English returns a fresh copy of the English table.
func English() *Messages {
	return &Messages{
		Default:    "Validation error on field %s",
		Required:   "%s is required",
		Enum:       "%s must be one of %s",
		Whitespace: "%s cannot be empty",
		Date: DateMessages{
			Format:  "%s date %s is invalid for format %s",
			Parse:   "%s date could not be parsed, %s is invalid ",
			Invalid: "%s date %s is invalid",
		},
		Types: TypeMessages{
			String:  "%s is not a %s",
			Method:  "%s is not a %s (function)",
			Array:   "%s is not an %s",
			Object:  "%s is not an %s",
			Number:  "%s is not a %s",
			Date:    "%s is not a %s",
			Boolean: "%s is not a %s",
			Integer: "%s is not an %s",
			Float:   "%s is not a %s",
			Regexp:  "%s is not a valid %s",
			Email:   "%s is not a valid %s",
			URL:     "%s is not a valid %s",
			Hex:     "%s is not a valid %s",
		},
		String: RangeMessages{
			Len:   "%s must be exactly %s characters",
			Min:   "%s must be at least %s characters",
			Max:   "%s cannot be longer than %s characters",
			Range: "%s must be between %s and %s characters",
		},
		Number: RangeMessages{
			Len:   "%s must equal %s",
			Min:   "%s cannot be less than %s",
			Max:   "%s cannot be greater than %s",
			Range: "%s must be between %s and %s",
		},
		Array: RangeMessages{
			Len:   "%s must be exactly %s in length",
			Min:   "%s cannot be less than %s in length",
			Max:   "%s cannot be greater than %s in length",
			Range: "%s must be between %s and %s in length",
		},
		Pattern: PatternMessages{
			Mismatch: "%s value %s does not match pattern %s",
		},
	}
}

// Chinese returns a fresh copy of the Simplified Chinese table.
func Chinese() *Messages {
	return &Messages{
		Default:    "字段%s验证错误",
		Required:   "%s是必需的",
		Enum:       "%s必须是%s之一",
		Whitespace: "%s不能为空",
		Date: DateMessages{
			Format:  "%s日期%s格式无效，应为%s",
			Parse:   "%s日期无法解析，%s无效",
			Invalid: "%s日期%s无效",
		},
		Types: TypeMessages{
			String:  "%s不是%s",
			Method:  "%s不是%s（函数）",
			Array:   "%s不是%s",
			Object:  "%s不是%s",
			Number:  "%s不是%s",
			Date:    "%s不是%s",
			Boolean: "%s不是%s",
			Integer: "%s不是%s",
			Float:   "%s不是%s",
			Regexp:  "%s不是有效的%s",
			Email:   "%s不是有效的%s",
			URL:     "%s不是有效的%s",
			Hex:     "%s不是有效的%s",
		},
		String: RangeMessages{
			Len:   "%s必须是%s个字符",
			Min:   "%s至少必须是%s个字符",
			Max:   "%s不能超过%s个字符",
			Range: "%s必须在%s和%s个字符之间",
		},
		Number: RangeMessages{
			Len:   "%s必须等于%s",
			Min:   "%s不能小于%s",
			Max:   "%s不能大于%s",
			Range: "%s必须在%s和%s之间",
		},
		Array: RangeMessages{
			Len:   "%s的长度必须正好是%s",
			Min:   "%s的长度不能小于%s",
			Max:   "%s的长度不能大于%s",
			Range: "%s的长度必须在%s和%s之间",
		},
		Pattern: PatternMessages{
			Mismatch: "%s的值%s不符合模式%s",
		},
	}
}

var (
	supported = []language.Tag{language.English, language.Chinese}
	matcher   = language.NewMatcher(supported)

	current atomic.Pointer[Messages]
)

func init() { current.Store(English()) }

// Default returns the process-wide default table. The returned table is
// shared and must be treated as read-only; use Clone or Merge to derive one.
func Default() *Messages { return current.Load() }

// ForLanguage returns a fresh table for the best supported match of the
// given BCP 47 tags (for example "zh-CN" or "en-US,en;q=0.8") together with
// the matched tag. Unsupported languages fall back to English.
func ForLanguage(tags ...string) (*Messages, language.Tag) {
	_, idx := language.MatchStrings(matcher, tags...)
	tag := supported[idx]
	if tag == language.Chinese {
		return Chinese(), tag
	}
	return English(), tag
}

// SetLanguage replaces the default table with the one for lang. The swap is
// atomic; validations already running keep the table they started with.
func SetLanguage(lang string) language.Tag {
	m, tag := ForLanguage(lang)
	current.Store(m)
	return tag
}

// Set installs m as the default table. A nil table restores English.
func Set(m *Messages) {
	if m == nil {
		m = English()
	}
	current.Store(m.Clone())
}
