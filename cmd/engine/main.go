package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"recruitsync-engine/internal/brazen"
	"recruitsync-engine/internal/config"
	"recruitsync-engine/internal/events"
	"recruitsync-engine/internal/httpapi"
	"recruitsync-engine/internal/mapper"
	"recruitsync-engine/internal/netutil"
	"recruitsync-engine/internal/poll"
	"recruitsync-engine/internal/scheduler"
	"recruitsync-engine/internal/secrets"
	"recruitsync-engine/internal/sjb"
	"recruitsync-engine/internal/store"
	syncer "recruitsync-engine/internal/sync"
	"recruitsync-engine/internal/zoho"
)

func main() {
	// Credentials may come from a local .env on headless hosts.
	_ = godotenv.Load()

	dataDir := os.Getenv("RECRUITSYNC_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		config.OverlayEnv(&cfg)
		return cfg, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfg, vr := config.NormalizeAndValidate(cfg)
	if !vr.OK() {
		log.Fatalf("config invalid (%s):\n- %s", userCfgPath, strings.Join(vr.Errors, "\n- "))
	}
	for _, warn := range vr.Warnings {
		log.Printf("[config] warning: %s", warn)
	}
	cfgVal.Store(cfg)

	dbPath := filepath.Join(dataDir, "recruitsync.db")
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	sjbKey, err := secrets.Get(secrets.AccountSJBAPIKey)
	if err != nil {
		log.Fatalf("sjb api key: %v", err)
	}
	zohoSecret, err := secrets.Get(secrets.AccountZohoClientSecret)
	if err != nil {
		log.Fatalf("zoho client secret: %v", err)
	}
	zohoRefresh, err := secrets.Get(secrets.AccountZohoRefreshToken)
	if err != nil {
		log.Fatalf("zoho refresh token: %v", err)
	}
	brazenSecret := secrets.GetOptional(secrets.AccountBrazenSecret)

	limiter := netutil.NewHostLimiter(cfg.Limits.RequestsPerSecond, cfg.Limits.Burst)

	source := sjb.New(cfg.SJB.BaseURL, sjbKey, limiter)
	tokens := zoho.NewTokenProvider(cfg.Zoho.AccountsURL, cfg.Zoho.ClientID, zohoSecret, zohoRefresh)
	ats := zoho.New(cfg.Zoho.APIBaseURL, tokens, limiter)

	var registrar syncer.Registrar
	if cfg.Brazen.BaseURL != "" && brazenSecret != "" {
		registrar = brazen.New(cfg.Brazen.BaseURL, cfg.Brazen.ClientID, brazenSecret, limiter)
	} else {
		log.Printf("[main] brazen not configured; event registration and intake disabled")
	}

	pm := mapper.ProfileMapper{SourceLabel: cfg.Labels.Source, ClientLabel: cfg.Labels.Client}
	pipeline := &syncer.Pipeline{
		Source:     source,
		Registrar:  registrar,
		Reconciler: &syncer.Reconciler{ATS: ats, Mapper: pm},
		Mapper:     pm,
		RegMapper:  mapper.RegistrationMapper{SourceLabel: cfg.Labels.Source},
		JobID:      cfg.SJB.JobID,
		EventID:    cfg.Brazen.EventID,
		PageSize:   cfg.Sync.PageSize,
	}

	hub := events.NewHub()
	runner := &poll.Runner{
		Pipeline: pipeline,
		DB:       db.Pool,
		Hub:      hub,
		LockPath: filepath.Join(dataDir, "sync.lock"),
	}

	mux := httpapi.NewMux(httpapi.Deps{
		DB:          db.Pool,
		Hub:         hub,
		Runner:      runner,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
	})

	srv := &http.Server{ReadHeaderTimeout: 5 * time.Second}

	token, err := randomToken(16)
	if err != nil {
		log.Fatal(err)
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&token, srv))

	srv.Handler = httpapi.Chain(mux,
		httpapi.Cors,
		httpapi.RequestID,
		httpapi.Recover,
		httpapi.AccessLog,
	)

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s (db=%s)", addr, dbPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		interval := time.Duration(cfg.Sync.IntervalSeconds) * time.Second
		scheduler.Every(gctx, interval, "sync", runner.Scheduled)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("engine stopped: %v", err)
	}
	log.Printf("engine stopped")
}
