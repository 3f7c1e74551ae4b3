package apperr

import "net/http"

// E 统一业务错误：Code 即 HTTP 状态码，Msg 可直接回给客户端
type E struct {
	Code int
	Msg  string
	Err  error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e *E) Unwrap() error { return e.Err }

func BadRequest(msg string) *E   { return &E{Code: http.StatusBadRequest, Msg: msg} }
func Unauthorized(msg string) *E { return &E{Code: http.StatusUnauthorized, Msg: msg} }
func Forbidden(msg string) *E    { return &E{Code: http.StatusForbidden, Msg: msg} }
func NotFound(msg string) *E     { return &E{Code: http.StatusNotFound, Msg: msg} }
func Conflict(msg string) *E     { return &E{Code: http.StatusConflict, Msg: msg} }

// Internal 包住底层错误；Msg 对外，Err 只进日志
func Internal(msg string, err error) *E {
	return &E{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}
