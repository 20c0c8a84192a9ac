package middleware

import (
	"context"
	"log"
	"net/http"
	"time"
)

const requestInfoKey contextKey = "request_info"

// requestInfo collects values set by inner middleware for the access log.
type requestInfo struct {
	subject string
}

func infoFrom(ctx context.Context) *requestInfo {
	info, _ := ctx.Value(requestInfoKey).(*requestInfo)
	return info
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		info := &requestInfo{}

		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestInfoKey, info)))

		subject := info.subject
		if subject == "" {
			subject = "-"
		}
		log.Printf("%s %s -> %d (%v) request_id=%s subject=%s",
			r.Method, r.URL.Path, rec.status, time.Since(start), GetRequestID(r.Context()), subject)
	})
}
