// Package logger wraps http.ResponseWriter to remember what was sent.
package logger

import "net/http"

type ResponseLogger struct {
	w      http.ResponseWriter
	status int
	size   int
}

func New(w http.ResponseWriter) *ResponseLogger {
	return &ResponseLogger{w: w, status: http.StatusOK}
}

func (l *ResponseLogger) WriteHeader(code int) {
	l.status = code
	l.w.WriteHeader(code)
}

func (l *ResponseLogger) Write(b []byte) (int, error) {
	n, err := l.w.Write(b)
	l.size += n
	return n, err
}

func (l *ResponseLogger) Header() http.Header {
	return l.w.Header()
}

// Status returns the status code sent, http.StatusOK if none was set explicitly.
func (l *ResponseLogger) Status() int {
	return l.status
}

// Size returns the number of body bytes written.
func (l *ResponseLogger) Size() int {
	return l.size
}

func (l *ResponseLogger) Unwrap() http.ResponseWriter {
	return l.w
}
