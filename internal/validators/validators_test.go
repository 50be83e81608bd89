package validators

import (
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"", MsgEmailRequired},
		{"alice@example.com", ""},
		{"a.b+c@sub.example.co", ""},
		{"alice", MsgEmailInvalid},
		{"alice@example", MsgEmailInvalid},
		{"@example.com", MsgEmailInvalid},
		{"alice@.com", MsgEmailInvalid},
		{"al ice@example.com", MsgEmailInvalid},
		{"alice@@example.com", MsgEmailInvalid},
		{"alice@example.com ", MsgEmailInvalid},
		{"用户@例子.中国", ""},
		{"a\vb@x.com", MsgEmailInvalid},
		{"a\u00a0b@x.com", MsgEmailInvalid},
		{"ab@x\u2028y.com", MsgEmailInvalid},
		{"\ufeffab@x.com", MsgEmailInvalid},
		{"ab@x.c\u3000om", MsgEmailInvalid},
		{"a\u2005b@x.com", MsgEmailInvalid},
		{"ab@x\u1680.com", MsgEmailInvalid},
		{"a\u200bb@x.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := ValidateEmail(tt.email); got != tt.want {
				t.Errorf("ValidateEmail(%q) = %q, want %q", tt.email, got, tt.want)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     string
	}{
		{"Empty", "", MsgPasswordRequired},
		{"Short", "abc12", MsgPasswordTooShort},
		{"Short With Bad Characters", "密码", MsgPasswordTooShort},
		{"Short With Spaces", "a b c", MsgPasswordTooShort},
		{"Minimum Length", "abc123", ""},
		{"Punctuation", `Ab1!@#$%^&*()_+-=[]{};:'",.<>/?`, ""},
		{"Space", "abc 123", MsgPasswordCharset},
		{"Non ASCII", "密码密码密码", MsgPasswordCharset},
		{"Backslash", `abc\123`, MsgPasswordCharset},
		{"Pipe", "abc|123", MsgPasswordCharset},
		{"Long", strings.Repeat("a", 128), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidatePassword(tt.password); got != tt.want {
				t.Errorf("ValidatePassword(%q) = %q, want %q", tt.password, got, tt.want)
			}
		})
	}

	t.Run("Every Short Password Reports Length", func(t *testing.T) {
		for _, p := range []string{"a", "!!", "   ", "é", "\t\t\t\t\t", "12345"} {
			if got := ValidatePassword(p); got != MsgPasswordTooShort {
				t.Errorf("ValidatePassword(%q) = %q, want length message", p, got)
			}
		}
	})
}

func TestCollect(t *testing.T) {
	failed := Collect(
		Field{Name: "email", Message: ValidateEmail("nope")},
		Field{Name: "password", Message: ValidatePassword("abc123")},
	)
	if len(failed) != 1 || failed[0].Name != "email" {
		t.Errorf("unexpected failures %+v", failed)
	}
}
