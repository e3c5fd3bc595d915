// 包 logger：http 访问日志中间件
package logger

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// respRecorder 记录状态码与响应字节数
type respRecorder struct {
	http.ResponseWriter
	code    int
	written int64
}

func (rr *respRecorder) WriteHeader(code int) {
	rr.code = code
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *respRecorder) Write(b []byte) (int, error) {
	n, err := rr.ResponseWriter.Write(b)
	rr.written += int64(n)
	return n, err
}

func accessLevel(code int) slog.Level {
	switch {
	case code >= 500:
		return slog.LevelWarn
	case code == http.StatusTooManyRequests:
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

// AccessMiddleware：生成访问日志中间件
// 约束：只记录路径不记录查询串与请求体（地址属于个人信息）；探活与指标抓取路径不记录
func AccessMiddleware(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/healthz") || strings.HasSuffix(r.URL.Path, "/metrics") {
				next.ServeHTTP(w, r)
				return
			}
			rec := &respRecorder{ResponseWriter: w, code: http.StatusOK}
			began := time.Now()
			next.ServeHTTP(rec, r)
			l.LogAttrs(r.Context(), accessLevel(rec.code), "http_access",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.code),
				slog.Int64("bytes", rec.written),
				slog.Int64("duration_ms", time.Since(began).Milliseconds()),
				slog.String("remote", r.RemoteAddr),
			)
		})
	}
}
