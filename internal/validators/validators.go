// Package validators checks form input before it is sent to the API.
//
// Validators never fail: they return "" for valid input and a display message otherwise.
package validators

import (
	"regexp"
	"unicode/utf16"
)

const (
	MsgEmailRequired    = "邮箱不能为空"
	MsgEmailInvalid     = "请输入有效的邮箱地址"
	MsgPasswordRequired = "密码不能为空"
	MsgPasswordTooShort = "密码长度至少为6位"
	MsgPasswordCharset  = "密码只能包含字母、数字和特殊字符"

	// MinPasswordLength counts UTF-16 code units, as browser form validation does.
	MinPasswordLength = 6
)

// emailChar excludes "@" and every character a browser regexp treats as whitespace,
// which is wider than RE2's \s.
const emailChar = `[^@\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}]`

var (
	emailPattern    = regexp.MustCompile(`^` + emailChar + `+@` + emailChar + `+\.` + emailChar + `+$`)
	passwordPattern = regexp.MustCompile(`^[A-Za-z0-9!@#$%^&*()_+\-=\[\]{};:'",.<>/?]*$`)
)

// ValidateEmail checks for a local@domain.tld shape.
func ValidateEmail(email string) string {
	if email == "" {
		return MsgEmailRequired
	}
	if !emailPattern.MatchString(email) {
		return MsgEmailInvalid
	}
	return ""
}

// ValidatePassword checks length first, then the allowed character set.
func ValidatePassword(password string) string {
	if password == "" {
		return MsgPasswordRequired
	}
	if len(utf16.Encode([]rune(password))) < MinPasswordLength {
		return MsgPasswordTooShort
	}
	if !passwordPattern.MatchString(password) {
		return MsgPasswordCharset
	}
	return ""
}

// Field pairs a form field name with its validation message.
type Field struct {
	Name    string
	Message string
}

// Collect returns the fields that failed validation, in order.
func Collect(fields ...Field) []Field {
	var failed []Field
	for _, f := range fields {
		if f.Message != "" {
			failed = append(failed, f)
		}
	}
	return failed
}
