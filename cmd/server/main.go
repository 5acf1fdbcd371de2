// Package main runs the address analysis HTTP service:
// - POST /analyze and GET /analyze/:address run a full risk analysis
// - GET /healthz reports liveness
// - GET /metrics exposes Prometheus metrics
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"ethyr-engine/internal/blocktime"
	"ethyr-engine/internal/dex"
	"ethyr-engine/internal/domain"
	"ethyr-engine/internal/ethereum"
	"ethyr-engine/internal/holders"
	"ethyr-engine/internal/indexer"
	"ethyr-engine/internal/observability"
	"ethyr-engine/internal/orchestrator"
	"ethyr-engine/internal/profile"
	"ethyr-engine/internal/registry"
	"ethyr-engine/internal/risk"
)

// Server holds the analysis pipeline behind the HTTP handlers.
type Server struct {
	orch   *orchestrator.Orchestrator
	logger *log.Logger
}

func main() {
	// Load .env file if exists
	godotenv.Load()

	// Parse flags (env vars as defaults)
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("ETH_RPC_ENDPOINT"), "Ethereum RPC endpoint (http(s):// or ws(s)://)")
	indexerURL := flag.String("indexer-url", envOrDefault("INDEXER_URL", "https://api.etherscan.io/api"), "Indexer API base URL")
	indexerKey := flag.String("indexer-key", os.Getenv("INDEXER_API_KEY"), "Indexer API key")
	registryDSN := flag.String("registry-dsn", os.Getenv("REGISTRY_DSN"), "PostgreSQL connection string for the protocol registry")
	registryFile := flag.String("registry-file", os.Getenv("REGISTRY_FILE"), "JSON file with the protocol registry")
	listenAddr := flag.String("listen-addr", envOrDefault("LISTEN_ADDR", ":8080"), "HTTP listen address")
	timeout := flag.Duration("analysis-timeout", orchestrator.DefaultTimeout, "Per-analysis timeout")
	verbose := flag.Bool("verbose", false, "Verbose component logging")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if *indexerKey == "" {
		logger.Fatal("--indexer-key is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chain, cleanup, err := createChainClient(ctx, *rpcEndpoint)
	if err != nil {
		logger.Fatalf("Failed to create chain client: %v", err)
	}
	defer cleanup()

	reg, err := loadRegistry(ctx, *registryDSN, *registryFile)
	if err != nil {
		logger.Fatalf("Failed to load protocol registry: %v", err)
	}
	logger.Printf("Registry loaded: %d protocols, %d lockers", reg.ProtocolCount(), reg.LockerCount())

	index := indexer.NewClient(*indexerURL, *indexerKey,
		indexer.WithCallObserver(func(action string, d time.Duration) {
			observability.RecordIndexerLatency(action, d.Seconds())
		}))

	orch := buildOrchestrator(chain, index, reg, *timeout, *verbose)
	server := &Server{orch: orch, logger: logger}

	httpServer := &http.Server{
		Addr:    *listenAddr,
		Handler: server.setupRouter(),
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Graceful shutdown failed: %v", err)
		}
		cancel()
	}()

	logger.Printf("Listening on %s", *listenAddr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// buildOrchestrator wires the analysis components around one chain
// client and one indexer client.
func buildOrchestrator(chain ethereum.Client, index *indexer.Client, reg *registry.Registry, timeout time.Duration, verbose bool) *orchestrator.Orchestrator {
	blocks := blocktime.New(chain, blocktime.Options{})

	return orchestrator.New(orchestrator.Options{
		Chain: chain,
		Contracts: profile.NewContractProfiler(profile.ContractProfilerOptions{
			Chain:    chain,
			Source:   index,
			Registry: reg,
			Verbose:  verbose,
		}),
		Wallets: profile.NewWalletProfiler(profile.WalletProfilerOptions{
			Chain:    chain,
			Source:   index,
			Registry: reg,
			Verbose:  verbose,
		}),
		Oracle: dex.NewOracle(dex.OracleOptions{
			Chain:   chain,
			Market:  index,
			Blocks:  blocks,
			Verbose: verbose,
		}),
		Holders: holders.NewAnalyzer(index, blocks, reg),
		Scorer:  risk.NewEngine(),
		Timeout: timeout,
		Verbose: verbose,
	})
}

// createChainClient connects to the RPC endpoint. WebSocket endpoints
// get the reconnecting client; everything else goes over HTTP.
func createChainClient(ctx context.Context, endpoint string) (ethereum.Client, func(), error) {
	if strings.HasPrefix(endpoint, "ws://") || strings.HasPrefix(endpoint, "wss://") {
		ws, err := ethereum.NewWSClient(ctx, endpoint, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("connect websocket client: %w", err)
		}
		return ws, func() { ws.Close() }, nil
	}

	client := ethereum.NewHTTPClient(endpoint,
		ethereum.WithCallObserver(func(method string, d time.Duration) {
			observability.RecordRPCLatency(method, d.Seconds())
		}))
	return client, func() {}, nil
}

// loadRegistry resolves the protocol registry: PostgreSQL when a DSN is
// given, a JSON file when a path is given, the built-in set otherwise.
func loadRegistry(ctx context.Context, dsn, file string) (*registry.Registry, error) {
	if dsn != "" {
		pool, err := registry.NewPool(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()
		return registry.LoadPostgres(ctx, pool)
	}
	if file != "" {
		return registry.LoadFile(file)
	}
	return registry.Default(), nil
}

// setupRouter creates the gin router with all routes registered.
func (s *Server) setupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(observability.Handler()))

	r.POST("/analyze", s.handleAnalyzeBody)
	r.GET("/analyze/:address", s.handleAnalyzePath)

	return r
}

// analyzeRequest is the POST /analyze body.
type analyzeRequest struct {
	Address string `json:"address" binding:"required"`
}

// handleAnalyzeBody runs an analysis for the address in the JSON body.
func (s *Server) handleAnalyzeBody(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. Expected: {\"address\": \"0x...\"}"})
		return
	}
	s.runAnalysis(c, req.Address)
}

// handleAnalyzePath runs an analysis for the address in the URL path.
func (s *Server) handleAnalyzePath(c *gin.Context) {
	s.runAnalysis(c, c.Param("address"))
}

// runAnalysis executes the analysis and maps the outcome to a status:
// 400 for a malformed address, 500 for an analysis that could not
// complete, 200 otherwise. The report body is returned in every case.
func (s *Server) runAnalysis(c *gin.Context, address string) {
	start := time.Now()

	report, err := s.orch.Analyze(c.Request.Context(), address)
	if err != nil {
		observability.RecordAnalysisError()
		if errors.Is(err, domain.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, report)
			return
		}
		s.logger.Printf("Analysis failed for %s: %v", address, err)
		c.JSON(http.StatusInternalServerError, report)
		return
	}

	observability.RecordAnalysis(report.Type, report.RiskTier, time.Since(start).Seconds())
	c.JSON(http.StatusOK, report)
}

// handleHealth returns service liveness.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// envOrDefault returns the env var value or a default for non-secret
// settings.
func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
