package session

import (
	"errors"

	"github.com/desertthunder/melody/internal/models"
	"github.com/desertthunder/melody/internal/services"
	"github.com/desertthunder/melody/internal/shared"
)

// Fallback messages shown when neither the server nor the cause supplies one.
const (
	MsgLoginFailed       = "登录失败"
	MsgLoginBadPayload   = "登录响应数据格式错误"
	MsgLoginInvalidID    = "登录失败：无效的用户ID"
	MsgNotLoggedIn       = "未登录状态"
	MsgUserInfoFailed    = "获取用户信息失败"
	MsgUpdateFailed      = "更新用户资料失败"
	MsgAvatarFailed      = "上传头像失败"
	MsgNoUserInfo        = "未获取到用户信息"
	MsgBadServerResponse = "服务器响应错误"
	MsgPasswordChanged   = "密码修改成功"
	MsgPasswordRejected  = "密码修改失败"
	MsgPasswordFailed    = "修改密码失败"
	MsgRegisterFailed    = "注册失败"
	MsgDeleteFailed      = "注销账号失败"

	// DefaultAvatar is merged into profiles that come back without an avatar.
	DefaultAvatar = "/api/default-avatar.jpg"
)

// Error is the flattened failure of a session operation.
type Error struct {
	Op  string // operation name, e.g. "login"
	Msg string // display message
	Err error  // underlying cause, may be nil
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Err }

// flatten converts err into an [*Error], preferring the cause's own message over fallback.
//
// Errors already flattened pass through unchanged so nested operations keep the innermost message.
func flatten(op, fallback string, err error) *Error {
	var flat *Error
	if errors.As(err, &flat) {
		return flat
	}

	msg := fallback
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &Error{Op: op, Msg: msg, Err: err}
}

// rejected builds the error for an envelope failure sentinel: msg, then payload, then fallback.
func rejected(op, fallback string, env models.Envelope, status int) *Error {
	msg := env.Msg
	if msg == "" {
		msg = env.DataMessage()
	}
	if msg == "" {
		msg = fallback
	}
	return &Error{
		Op:  op,
		Msg: msg,
		Err: &services.APIError{Status: status, Code: env.Code, Msg: env.Msg, Data: env.DataMessage()},
	}
}

func notLoggedIn(op string) *Error {
	return &Error{Op: op, Msg: MsgNotLoggedIn, Err: shared.ErrNotAuthenticated}
}
