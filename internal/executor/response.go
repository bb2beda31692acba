package executor

import (
	"net/http"
	"time"
)

// Response — результат запуска для вызывающей стороны.
type Response[R any] struct {
	// StatusCode — HTTP-подобный код результата.
	StatusCode int `json:"status_code"`

	// Status — текст статуса или сообщение ошибки.
	Status string `json:"status"`

	// TimeTakenMs — время выполнения в миллисекундах.
	TimeTakenMs int64 `json:"time_taken_in_ms"`

	// Data — данные результата; нулевое значение при ошибке.
	Data R `json:"data"`
}

// OK возвращает true для кодов 2xx.
func (r Response[R]) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Failure строит Response для ошибки.
func Failure[R any](err error, elapsed time.Duration) Response[R] {
	var zero R
	return Response[R]{
		StatusCode:  http.StatusInternalServerError,
		Status:      err.Error(),
		TimeTakenMs: elapsed.Milliseconds(),
		Data:        zero,
	}
}
