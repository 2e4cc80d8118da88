package util

import "errors"

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrWeakPassword       = errors.New("password must be at least 8 characters and contain an uppercase letter and a number")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrInvalidProfile     = errors.New("invalid profile")
	ErrCurriculumNotFound = errors.New("curriculum not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidKnowledge   = errors.New("invalid knowledge item")
	ErrVoiceUnavailable   = errors.New("voice service unavailable")
)
