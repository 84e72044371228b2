package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"smartlighting/internal/config"
	"smartlighting/internal/metrics"
	"smartlighting/internal/ratelimit"
	"smartlighting/internal/site"
)

// Server はHTTPサーバーを管理する構造体
type Server struct {
	config     *config.Config
	logger     *logrus.Logger
	engine     *gin.Engine
	httpServer *http.Server
	opsServer  *http.Server
	metrics    *metrics.Metrics
	limiter    *ratelimit.Limiter

	templates fs.FS
	static    fs.FS
}

// New は新しいServerインスタンスを作成する
func New(cfg *config.Config, logger *logrus.Logger) *Server {
	s := &Server{
		config:  cfg,
		logger:  logger,
		engine:  gin.New(),
		metrics: metrics.New(prometheus.NewRegistry()),
	}

	if cfg.Site.Embedded {
		s.templates, s.static = site.Embedded()
	} else {
		s.templates = site.Dir(cfg.Site.TemplateDir)
		s.static = site.Dir(cfg.Site.StaticDir)
	}

	s.engine.HandleMethodNotAllowed = true
	// プロキシヘッダーは信頼しない
	_ = s.engine.SetTrustedProxies(nil)

	s.engine.Use(
		requestID(),
		accessLog(logger),
		recovery(logger),
		s.metrics.Middleware(),
	)
	if cfg.RateLimit.RPS > 0 {
		s.limiter = ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		s.engine.Use(ratelimit.Middleware(s.limiter, s.metrics.RateLimitDropped.Inc))
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      s.engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	if cfg.Metrics.Addr != "" {
		s.opsServer = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           s.opsHandler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return s
}

// SetMode はログレベルに合わせて gin の動作モードを設定する
func SetMode(logger *logrus.Logger) {
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
		return
	}
	gin.SetMode(gin.ReleaseMode)
}

// Handler は公開ルートの http.Handler を返す
func (s *Server) Handler() http.Handler {
	return s.engine
}

// opsHandler は運用リスナー用のハンドラを返す
func (s *Server) opsHandler() http.Handler {
	ops := gin.New()
	ops.Use(recovery(s.logger))

	ops.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	ops.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	return ops
}

// Start はサーバーを起動する
// ポートのバインドに失敗した場合はすぐにエラーを返す
func (s *Server) Start(ctx context.Context) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Listen は設定されたアドレスでTCPリスナーを作成する
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.config.ServerAddress())
	if err != nil {
		return nil, fmt.Errorf("%s のバインドに失敗: %w", s.config.ServerAddress(), err)
	}
	return ln, nil
}

// Serve は ln で接続を受け付け、ctx のキャンセルかシグナルで停止する
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()

	s.checkSite()

	// シャットダウン用のチャンネル
	errCh := make(chan error, 2)

	// サーバーを別ゴルーチンで起動
	go func() {
		s.logger.WithField("addr", ln.Addr().String()).Info("HTTPサーバーを起動しています")
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("サーバーの実行に失敗: %w", err)
		}
	}()

	if s.opsServer != nil {
		go func() {
			s.logger.WithField("addr", s.opsServer.Addr).Info("運用リスナーを起動しています")
			if err := s.opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("運用リスナーの起動に失敗: %w", err)
			}
		}()
	}

	if s.limiter != nil {
		limiterCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go s.limiter.Run(limiterCtx)
	}

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// コンテキストかシグナルを待つ
	select {
	case <-ctx.Done():
		s.logger.Info("コンテキストがキャンセルされました")
	case sig := <-sigCh:
		s.logger.WithField("signal", sig.String()).Info("シグナルを受信しました")
	case err := <-errCh:
		_ = s.Shutdown()
		return err
	}

	// グレースフルシャットダウン
	return s.Shutdown()
}

// Shutdown はサーバーをグレースフルにシャットダウンする
func (s *Server) Shutdown() error {
	s.logger.Info("サーバーをシャットダウンしています...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("サーバーのシャットダウンに失敗: %w", err))
	}
	if s.opsServer != nil {
		if err := s.opsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("運用リスナーのシャットダウンに失敗: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	s.logger.Info("サーバーが正常にシャットダウンされました")
	return nil
}

// checkSite はテンプレートと静的ディレクトリの有無を確認して警告を出す
// 存在しなくても起動は続け、リクエスト時に 500 / 404 を返す
func (s *Server) checkSite() {
	if err := site.Check(s.templates, s.config.Site.IndexTemplate); err != nil {
		s.logger.WithError(err).
			WithField("template", s.config.Site.IndexTemplate).
			Warn("インデックステンプレートが見つかりません")
	}
	if err := site.Check(s.static, "."); err != nil {
		s.logger.WithError(err).Warn("静的アセットディレクトリが見つかりません")
	}
}
