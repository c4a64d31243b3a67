// cmd/web/main.go
//
// CardForge HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Parse flags (--root, --listen).
//
//  2. Load config: .env → conf/global.yaml → CARDFORGE_* env, with vault:
//     references resolved when VAULT_ADDR is set.
//
//  3. Start the logger (rotating file when configured, console tee in a
//     TTY).  Warn loudly when the CAPTCHA test key is active.
//
//  4. Open the database and log the published-site count.
//
//  5. Build the domain cache, resolver, request enricher, CAPTCHA client,
//     notifier, upload store, renderer, and API.
//
//  6. Middleware order: recoverer → security headers → HTTPS redirect →
//     request info → tenant routing → session auth.
//
//  7. Serve until SIGINT/SIGTERM, then drain.
//
// Large comment blocks are framed by blank "//" lines; inline comments use
// a single "//".
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/yanizio/cardforge/internal/api"
	"github.com/yanizio/cardforge/internal/auth"
	"github.com/yanizio/cardforge/internal/captcha"
	"github.com/yanizio/cardforge/internal/config"
	"github.com/yanizio/cardforge/internal/contact"
	"github.com/yanizio/cardforge/internal/csrf"
	"github.com/yanizio/cardforge/internal/database"
	"github.com/yanizio/cardforge/internal/domaincache"
	"github.com/yanizio/cardforge/internal/logger"
	"github.com/yanizio/cardforge/internal/middleware"
	"github.com/yanizio/cardforge/internal/notify"
	"github.com/yanizio/cardforge/internal/render"
	"github.com/yanizio/cardforge/internal/requestinfo"
	"github.com/yanizio/cardforge/internal/server"
	"github.com/yanizio/cardforge/internal/site"
	"github.com/yanizio/cardforge/internal/tenant"
	"github.com/yanizio/cardforge/internal/upload"
	"github.com/yanizio/cardforge/internal/vault"
)

type cliFlags struct {
	Root   string `long:"root"   env:"CARDFORGE_ROOT" description:"project root containing conf/global.yaml"`
	Listen string `long:"listen" description:"override http.listen_addr"`
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	var opts cliFlags
	if _, err := flags.Parse(&opts); err != nil {
		var fe *flags.Error
		if errors.As(err, &fe) && fe.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	// Console logger until config says where logs go.
	boot, _ := zap.NewDevelopment()
	zap.ReplaceGlobals(boot)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		zap.L().Error("fatal", zap.Error(err))
		_ = zap.L().Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts cliFlags) error {
	//
	// ── 1.  Config and logger ───────────────────────────────────────────
	//
	lopts := config.Options{Root: opts.Root}
	if vault.Enabled() {
		vc, err := vault.New(ctx, zap.L())
		if err != nil {
			return fmt.Errorf("vault: %w", err)
		}
		lopts.Secrets = vc
	}
	cfg, err := config.Load(ctx, lopts)
	if err != nil {
		return err
	}
	if opts.Listen != "" {
		cfg.HTTP.ListenAddr = opts.Listen
	}

	log, err := logger.New(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File, Tee: runningInTTY()})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.UsingTestCaptcha() {
		log.Warn("CAPTCHA is using the public test secret; every token will pass. Set captcha.secret before going live.")
	}

	//
	// ── 2.  Database ────────────────────────────────────────────────────
	//
	db, err := database.Open(ctx, cfg.Database.DSNWithPassword())
	if err != nil {
		return err
	}
	defer db.Close()

	sites := site.NewRepository(db)
	if n, err := sites.CountPublished(ctx); err == nil {
		log.Info("database online", zap.Int("published_sites", n))
	} else {
		log.Warn("published-site count failed", zap.Error(err))
	}

	//
	// ── 3.  Domain cache and resolver ───────────────────────────────────
	//
	cache := domaincache.New(domaincache.Options{TTL: cfg.Cache.TTL, Capacity: cfg.Cache.Capacity})
	resolver := tenant.NewResolver(cache, sites, log.Named("tenant"))

	//
	// ── 4.  Request enrichment, CAPTCHA, notifications, uploads ────────
	//
	enricher, err := requestinfo.NewEnricher(cfg.RequestInfo.GeoIPPath)
	if err != nil {
		return fmt.Errorf("geoip: %w", err)
	}
	defer enricher.Close()

	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Audience)
	store := upload.NewFSStore(afero.NewOsFs(), cfg.Storage.Root, cfg.Storage.BaseURL)

	renderer, err := render.New(cfg.Captcha.SiteKey, log)
	if err != nil {
		return err
	}

	handlers := api.New(api.Options{
		Sites:      sites,
		Domains:    resolver,
		Renderer:   renderer,
		Verifier:   verifier,
		CSRF:       csrf.New(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL),
		AdminToken: cfg.Auth.AdminToken,
		SessionTTL: cfg.Auth.SessionTTL,
		BaseURL:    primaryURL(cfg.HTTP.PrimaryHosts),
		Log:        log,
		Contact: contact.NewHandler(
			captcha.New(cfg.Captcha.Secret, cfg.Captcha.VerifyURL, nil),
			sites,
			notify.New(cfg.Notify.URL, cfg.Notify.APIKey, log.Named("notify")),
			log.Named("contact"),
		),
		Upload: upload.NewHandler(store, cfg.Storage.MaxBytes, log.Named("upload")),
	})

	//
	// ── 5.  Router ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.Security)
	if cfg.HTTP.ForceHTTPS {
		r.Use(middleware.ForceHTTPS(resolver, cfg.HTTP.PrimaryHosts))
	}
	r.Use(enricher.Handler)
	r.Use(tenant.Middleware(resolver, tenant.MiddlewareOptions{
		PrimaryHosts:        cfg.HTTP.PrimaryHosts,
		LocalhostAlias:      cfg.HTTP.LocalhostAlias,
		PassthroughPrefixes: []string{"/static/", "/uploads/", "/api/"},
	}))
	r.Use(auth.Middleware(verifier))

	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", render.Static())
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", store.FileServer()))
	handlers.Mount(r)

	//
	// ── 6.  Serve ───────────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, r, server.Timeouts{
		Read:  cfg.HTTP.ReadTimeout,
		Write: cfg.HTTP.WriteTimeout,
		Idle:  cfg.HTTP.IdleTimeout,
	})
	return server.Run(ctx, srv, log)
}

// primaryURL is the https origin of the first primary host, or "".
func primaryURL(hosts []string) string {
	if len(hosts) == 0 {
		return ""
	}
	return "https://" + tenant.NormalizeHost(hosts[0])
}
