package response

import "fmt"

// AppError 携带 HTTP 状态码的错误包装，Code 直接作为响应状态码。
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode 响应状态码，未设置时按 500 处理。
func (e *AppError) StatusCode() int {
	if e == nil || e.Code == 0 {
		return CodeInternal
	}
	return e.Code
}

// WrapError 包装错误
func WrapError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
