package logger

import (
	"context"
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"
)

type appKey struct{}

const ginAppKey = "app"

func InitLogger(w io.Writer, level slog.Level) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// WithApp tags every record logged with ctx with the given app name.
func WithApp(ctx context.Context, app string) context.Context {
	return context.WithValue(ctx, appKey{}, app)
}

func Middleware(app string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ginAppKey, app)
		c.Next()
	}
}

func logBase(ctx context.Context, level slog.Level, msg string, args ...any) {
	l := slog.Default()
	if !l.Enabled(ctx, level) {
		return
	}
	app, ok := ctx.Value(appKey{}).(string)
	if !ok {
		if gc, isGin := ctx.(*gin.Context); isGin {
			if val, exists := gc.Get(ginAppKey); exists {
				app, ok = val.(string)
			}
		}
	}
	if ok {
		l = l.With("app", app)
	}
	l.Log(ctx, level, msg, args...)
}

func Debug(ctx context.Context, msg string, args ...any) {
	logBase(ctx, slog.LevelDebug, msg, args...)
}

func Info(ctx context.Context, msg string, args ...any) {
	logBase(ctx, slog.LevelInfo, msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	logBase(ctx, slog.LevelWarn, msg, args...)
}

func Error(ctx context.Context, msg string, args ...any) {
	logBase(ctx, slog.LevelError, msg, args...)
}
