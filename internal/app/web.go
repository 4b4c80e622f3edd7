// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/logrusorgru/aurora"
	"go.uber.org/zap"

	"github.com/relabs-tech/device_motion/internal/config"
	"github.com/relabs-tech/device_motion/internal/motion"
	"github.com/relabs-tech/device_motion/internal/telemetry"
)

const (
	frameQueue     = 16
	wsWriteTimeout = 5 * time.Second
	shutdownGrace  = 5 * time.Second
)

// WebServer serves the latest frames over HTTP and streams them over a
// websocket.
type WebServer struct {
	store    *FrameStore
	frames   chan telemetry.Frame
	fan      *DynamicFanOut[telemetry.Frame]
	reset    func() error
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu     sync.Mutex
	closed bool
}

// NewWebServer returns a server. reset is called by POST /api/session/reset;
// nil disables that endpoint.
func NewWebServer(reset func() error, log *zap.Logger) *WebServer {
	if log == nil {
		log = zap.NewNop()
	}
	frames := make(chan telemetry.Frame, frameQueue)
	return &WebServer{
		store:  &FrameStore{},
		frames: frames,
		fan:    NewDynamicFanOut[telemetry.Frame](frames),
		reset:  reset,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// HandleFrame stores f and forwards it to websocket clients.
func (w *WebServer) HandleFrame(f telemetry.Frame) {
	w.store.Set(f)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.frames <- f:
	default:
		w.log.Debug("websocket queue full, frame skipped", zap.Int("iteration", f.Iteration))
	}
}

// Close ends every websocket stream. Later frames are only stored.
func (w *WebServer) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.frames)
	}
}

// Router builds the gin engine.
func (w *WebServer) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(recoveryMiddleware(w.log))
	router.Use(loggerMiddleware(w.log))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})
		api.GET("/motion", w.getMotion)
		api.GET("/motion/:channel", w.getChannel)
		api.GET("/status", w.getStatus)
		api.POST("/session/reset", w.postReset)
	}
	router.GET("/ws/motion", w.streamMotion)

	return router
}

func (w *WebServer) latest(c *gin.Context) (telemetry.Frame, bool) {
	f, ok := w.store.Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no data yet"})
	}
	return f, ok
}

func (w *WebServer) getMotion(c *gin.Context) {
	if f, ok := w.latest(c); ok {
		c.JSON(http.StatusOK, f)
	}
}

func (w *WebServer) getChannel(c *gin.Context) {
	f, ok := w.latest(c)
	if !ok {
		return
	}
	ch := motion.Channel(strings.ToUpper(c.Param("channel")))
	st, ok := f.Channel(ch)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("channel %s not in frame", ch)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": f.SessionID,
		"iteration":  f.Iteration,
		"channel":    ch,
		"state":      st,
	})
}

func (w *WebServer) getStatus(c *gin.Context) {
	if f, ok := w.latest(c); ok {
		c.String(http.StatusOK, RenderFrame(f, aurora.NewAurora(false)))
	}
}

func (w *WebServer) postReset(c *gin.Context) {
	if w.reset == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session control unavailable"})
		return
	}
	if err := w.reset(); err != nil {
		w.log.Warn("session reset request failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"action": telemetry.ActionReset})
}

func (w *WebServer) streamMotion(c *gin.Context) {
	// spawn before the handshake so no frame is lost to a fresh client
	id, out, err := w.fan.SpawnOutput()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	defer func() { _ = w.fan.DespawnOutput(id) }()

	conn, err := w.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		w.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := w.log.With(zap.Int64("stream", id), zap.String("client_ip", c.ClientIP()))
	log.Info("websocket client connected")

	// the read side only notices the client going away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			log.Info("websocket client disconnected")
			return
		case f, ok := <-out:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(wsWriteTimeout))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(f); err != nil {
				log.Info("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}

func loggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func recoveryMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("panic recovered",
					zap.Any("error", err),
					zap.String("stack", string(debug.Stack())),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}

// RunWeb subscribes to frames and serves the web API until ctx is done.
func RunWeb(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	client, err := telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientIDWeb, log)
	if err != nil {
		return err
	}
	defer client.Disconnect(telemetry.DisconnectQuiesce)

	reset := func() error {
		return telemetry.PublishControl(client, cfg.TopicControl, telemetry.Control{Action: telemetry.ActionReset})
	}
	server := NewWebServer(reset, log)

	if err := telemetry.SubscribeFrames(client, cfg.TopicMotion, log, server.HandleFrame); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler: server.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("web server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("web server: %w", err)
	case <-ctx.Done():
	}

	client.Unsubscribe(cfg.TopicMotion).Wait()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	server.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server shutdown: %w", err)
	}
	return nil
}
