package application

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/KOMKZ/go-yogan-chat/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HTTPServer wraps the gin engine in an http.Server
type HTTPServer struct {
	engine     *gin.Engine
	httpServer *http.Server
	cfg        HTTPConfig
	log        *logger.CtxZapLogger
	addr       net.Addr
}

func NewHTTPServer(engine *gin.Engine, cfg HTTPConfig, log *logger.CtxZapLogger) *HTTPServer {
	return &HTTPServer{engine: engine, cfg: cfg, log: log}
}

func (s *HTTPServer) Engine() *gin.Engine {
	return s.engine
}

// Addr is the bound address once Start has returned, useful with ":0"
func (s *HTTPServer) Addr() net.Addr {
	return s.addr
}

// Start binds the listener synchronously, then serves in the background.
// It waits briefly so an immediate serve failure is reported to the caller.
func (s *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	s.addr = ln.Addr()

	s.httpServer = &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		s.log.Error("http server start failed", zap.Error(err))
		return fmt.Errorf("serve http: %w", err)
	case <-time.After(50 * time.Millisecond):
		s.log.Info("http server started", zap.String("addr", s.addr.String()), zap.String("mode", s.cfg.Mode))
		return nil
	}
}

// Shutdown drains in-flight requests until ctx expires
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.log.Debug("shutting down http server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.log.Debug("http server closed")
	return nil
}
