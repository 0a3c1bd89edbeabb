package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	citadel "vinr.eu/kubesecrets/api/citadel/v1"
	"vinr.eu/kubesecrets/internal/logger"
)

// Server answers secret lookups from SECRET_<ID> environment variables. A
// value holding a JSON object is served as entries, anything else as plain
// text.
type Server struct {
	lookup func(string) (string, bool)
}

func NewServer() Server {
	return Server{lookup: os.LookupEnv}
}

func envKey(id string) string {
	r := strings.NewReplacer("-", "_", ".", "_", "/", "_")
	return "SECRET_" + strings.ToUpper(r.Replace(id))
}

func (s Server) GetAwsSecretsId(c *gin.Context, id string) {
	key := envKey(id)
	val, exists := s.lookup(key)
	if !exists {
		logger.Warn(c, "secret not found", "id", id, "env", key)
		c.JSON(http.StatusNotFound, citadel.ErrorResponse{
			Code:    http.StatusNotFound,
			Message: fmt.Sprintf("Secret not found. Expected environment variable: %s", key),
		})
		return
	}
	c.JSON(http.StatusOK, toResponse(val))
}

func toResponse(val string) citadel.GetAwsSecretResponse {
	var fields map[string]string
	if err := json.Unmarshal([]byte(val), &fields); err != nil || fields == nil {
		return citadel.GetAwsSecretResponse{PlainText: &val}
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]citadel.SecretEntry, 0, len(keys))
	for _, k := range keys {
		key, value := k, fields[k]
		entries = append(entries, citadel.SecretEntry{Key: &key, Value: &value})
	}
	return citadel.GetAwsSecretResponse{Entries: &entries}
}

func (s Server) GetPing(c *gin.Context) {
	version := "1.0.0"
	c.JSON(http.StatusOK, citadel.PingResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   &version,
	})
}

func main() {
	logger.InitLogger(os.Stderr, slog.LevelInfo)

	router := gin.Default()
	router.Use(logger.Middleware("citadel-mock"))
	citadel.RegisterHandlers(router, NewServer())
	srv := &http.Server{
		Handler: router,
		Addr:    "0.0.0.0:9080",
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server Shutdown", "error", err)
	}
	slog.Info("Server exiting")
}
