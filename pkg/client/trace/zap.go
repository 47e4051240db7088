package trace

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/iexkit/go-client/pkg/request"
)

// ZapTracer writes structured request events to the logger.
//
// HTTP level events are logged with the Debug level.
// The processed request is logged with the Info level, or with the Warn level if it failed.
// The access token is masked in all URLs.
func ZapTracer(logger *zap.Logger) Factory {
	var idGenerator uint64
	return func(ctx context.Context, def request.Definition) (context.Context, *ClientTrace) {
		requestID := atomic.AddUint64(&idGenerator, 1)
		log := logger.With(
			zap.Uint64("request.id", requestID),
			zap.String("request.method", def.Method),
			zap.String("request.endpoint", def.Endpoint),
		)

		var startTime, httpStartTime, parseStartTime time.Time
		var statusCode int
		var size int64

		t := &ClientTrace{}
		startTime = time.Now()
		t.HTTPRequestStart = func(r *http.Request) {
			httpStartTime = time.Now()
			log.Debug("http request start", zap.String("http.url", request.RedactURL(r.URL)))
		}
		t.HTTPRequestDone = func(r *http.Response, err error) {
			fields := []zap.Field{zap.Duration("http.duration", time.Since(httpStartTime))}
			if r != nil {
				statusCode = r.StatusCode
				fields = append(fields, zap.Int("http.status_code", r.StatusCode))
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}
			log.Debug("http request done", fields...)
		}
		t.BodyParseStart = func(r *http.Response) {
			parseStartTime = time.Now()
		}
		t.BodyParseDone = func(r *http.Response, bytes int64, result any, err error) {
			size = bytes
			fields := []zap.Field{zap.Int64("body.size", bytes), zap.Duration("body.duration", time.Since(parseStartTime))}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}
			log.Debug("response body parsed", fields...)
		}
		t.RequestProcessed = func(result any, err error) {
			fields := []zap.Field{
				zap.Int("http.status_code", statusCode),
				zap.Int64("body.size", size),
				zap.Duration("duration", time.Since(startTime)),
			}
			if err != nil {
				log.Warn("request failed", append(fields, zap.Error(err))...)
				return
			}
			log.Info("request processed", fields...)
		}
		return ctx, t
	}
}
