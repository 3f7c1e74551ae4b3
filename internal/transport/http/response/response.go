package response

import "net/http"

// Envelope 统一响应体。Data 永远是单元素列表——历史契约，客户端按下标 0 取值，
// 改成裸对象会破坏线上调用方。
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       []any  `json:"data"`
}

func New(status int, data any, msg string) Envelope {
	return Envelope{
		StatusCode: status,
		Success:    status >= 200 && status < 300,
		Message:    msg,
		Data:       []any{data},
	}
}

func OK(data any, msg string) Envelope      { return New(http.StatusOK, data, msg) }
func Created(data any, msg string) Envelope { return New(http.StatusCreated, data, msg) }

func Fail(status int, msg string) Envelope { return New(status, nil, msg) }
