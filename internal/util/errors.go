package util

import "errors"

var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrAlreadyCheckedIn = errors.New("今天已经签到过了")
	ErrGroupNotFound    = errors.New("群组不存在")
	ErrPermissionDenied = errors.New("没有权限执行此操作")
	ErrBadCredentials   = errors.New("用户名或密码错误")
)
