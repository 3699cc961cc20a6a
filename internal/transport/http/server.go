package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"riptide/internal/backtest"
	"riptide/internal/gateway/database"
	"riptide/internal/scanner"
)

// Server 提供扫描结果查询与回测任务管理的 Gin 接口。
type Server struct {
	addr     string
	scanner  *scanner.Scanner
	backtest *backtest.Service
	signals  *database.SignalLogStore
	router   *gin.Engine
}

type Config struct {
	Addr     string
	Scanner  *scanner.Scanner
	Backtest *backtest.Service
	Signals  *database.SignalLogStore
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.Scanner == nil {
		return nil, errors.New("scanner 不能为空")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9991"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		addr:     cfg.Addr,
		scanner:  cfg.Scanner,
		backtest: cfg.Backtest,
		signals:  cfg.Signals,
		router:   router,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api")
	api.GET("/reports", s.handleReports)
	api.GET("/reports/:symbol", s.handleReport)
	api.GET("/signals/:symbol", s.handleSignals)
	if s.backtest != nil {
		bt := api.Group("/backtest")
		bt.POST("/run", s.handleBacktestRun)
		bt.GET("/run/:id", s.handleBacktestStatus)
		bt.GET("/jobs", s.handleBacktestJobs)
	}
}

func (s *Server) handleReports(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"reports": s.scanner.Latest()})
}

func (s *Server) handleReport(c *gin.Context) {
	symbol := c.Param("symbol")
	report, ok := s.scanner.Report(symbol)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

func (s *Server) handleSignals(c *gin.Context) {
	if s.signals == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "signal log 未启用"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit 非法"})
		return
	}
	records, err := s.signals.RecentSignals(c.Request.Context(), c.Param("symbol"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signals": records})
}

func (s *Server) handleBacktestRun(c *gin.Context) {
	var req struct {
		Symbol     string  `json:"symbol" binding:"required"`
		Timeframe  string  `json:"timeframe" binding:"required"`
		Period     int     `json:"period"`
		Oversold   float64 `json:"oversold"`
		Overbought float64 `json:"overbought"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	job, err := s.backtest.Submit(req.Symbol, req.Timeframe, backtest.Params{
		Period:     req.Period,
		Oversold:   req.Oversold,
		Overbought: req.Overbought,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job": job})
}

func (s *Server) handleBacktestStatus(c *gin.Context) {
	id := c.Param("id")
	job, ok := s.backtest.Snapshot(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job})
}

func (s *Server) handleBacktestJobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": s.backtest.Jobs()})
}

// Start 启动 HTTP 服务，阻塞直到 ctx 取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
