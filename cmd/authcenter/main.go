package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/flizi/authcenter/internal/account"
	"github.com/flizi/authcenter/internal/auth"
	"github.com/flizi/authcenter/internal/config"
	accountctrl "github.com/flizi/authcenter/internal/http/controllers/account"
	authctrl "github.com/flizi/authcenter/internal/http/controllers/auth"
	"github.com/flizi/authcenter/internal/http/router"
	"github.com/flizi/authcenter/internal/metrics"
	"github.com/flizi/authcenter/internal/observability/logger"
	"github.com/flizi/authcenter/internal/provider"
	"github.com/flizi/authcenter/internal/resolver"
	"github.com/flizi/authcenter/internal/security/token"
	"github.com/flizi/authcenter/internal/store"
	"github.com/flizi/authcenter/internal/store/smsredis"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/config.example.yaml"
	}

	root := &cobra.Command{
		Use:   "authcenter",
		Short: "Multi-provider authentication gateway",
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", cfgPath, "path to YAML config (env CONFIG_PATH)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cfgPath)
		},
	}
	root.AddCommand(serveCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.Log.Env,
		Level:       cfg.Log.Level,
		ServiceName: "authcenter",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()
	log := logger.Named("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		Driver:          cfg.Storage.Driver,
		DSN:             cfg.Storage.DSN,
		MaxConns:        cfg.Storage.Postgres.MaxConns,
		ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("store open: %w", err)
	}
	defer store.Close(st)
	if cfg.SMS.Backend == "redis" {
		redisClient := smsredis.NewClient(cfg.SMS.Redis.Addr, cfg.SMS.Redis.DB)
		defer func() { _ = redisClient.Close() }()
		st = smsredis.Wrap(st, redisClient, cfg.SMS.Redis.Prefix)
	}

	timeout := cfg.SocialTimeout()
	wxMP := provider.NewWechatMP(cfg.Social.WxMp.Key, cfg.Social.WxMp.Secret, timeout)
	wxOpen := provider.NewWechatOpen(cfg.Social.WxOpen.Key, cfg.Social.WxOpen.Secret, timeout)
	gitee := provider.NewGitee(cfg.Social.Github.Key, cfg.Social.Github.Secret, cfg.Social.Github.RedirectURI, timeout)

	registry := resolver.NewRegistry()
	registry.Register(resolver.MethodSMS, &resolver.SMS{Store: st, Window: cfg.CodeTTL()})
	registry.Register(resolver.MethodWxMP, &resolver.WechatMP{Store: st, Client: wxMP})
	registry.Register(resolver.MethodWxOpen, &resolver.WechatOpen{
		Store:          st,
		Client:         wxOpen,
		RequireUnionID: cfg.Social.WxOpen.RequireUnionID,
	})
	registry.Register(resolver.MethodGithub, &resolver.Github{Store: st, Client: gitee})

	facade := auth.NewFacade(&resolver.Password{Store: st}, registry)
	signer := token.NewSigner(cfg.Auth.StateSecret, cfg.Auth.Issuer, cfg.StateTTL(), cfg.SessionTTL())
	accountSvc := &account.Service{Store: st, WxMP: wxMP, WxOpen: wxOpen, Window: cfg.CodeTTL()}

	if err := metrics.RegisterAuth(nil); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	handler := router.New(router.Deps{
		Login:   authctrl.NewLoginController(facade, signer),
		Social:  authctrl.NewSocialController(facade, signer, wxMP, wxOpen, gitee),
		Account: accountctrl.NewController(accountSvc),
		Signer:  signer,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			log.Info("metrics server listening", logger.String("addr", cfg.Metrics.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}
