package daemon

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/NayandG07/LifeSync-AI-sub001/internal/adapter"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/api"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/bus"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/config"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/envcfg"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/gateway"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/health"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/localstore"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/lock"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/logging"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/notify"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/profile"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/record"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/remote"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/session"
	intsync "github.com/NayandG07/LifeSync-AI-sub001/internal/sync"
)

// Params holds the resolved session configuration passed to the fx module.
type Params struct {
	SessionName string
	ConfigPath  string // optional override for testing; empty = default path
}

// Module returns the fx module for the agent, composing all providers and
// lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("agent",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideConfig,
			provideBus,
			provideNotifyCenter,
			provideLock,
			provideStore,
			provideRemoteClient,
			provideEnvLoader,
			provideReporter,
			provideMonitor,
			provideAdapter,
			provideReconciler,
			provideProfileService,
			provideAIHandler,
			provideServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(session.LogPath(p.SessionName), p.SessionName)
}

func provideConfig(p Params, logger *zap.Logger) *config.Config {
	path := p.ConfigPath
	if path == "" {
		path = session.ConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		logger.Warn("config not loaded, using defaults", zap.String("path", path), zap.Error(err))
		return config.Default()
	}
	return cfg
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideNotifyCenter(b *bus.Bus, logger *zap.Logger) *notify.Center {
	return notify.NewCenter(b, logger)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := session.EnsureDir(p.SessionName); err != nil {
		return nil, err
	}
	logger.Info("acquiring session lock", zap.String("session", p.SessionName))
	l, err := lock.Acquire(session.Dir(p.SessionName))
	if err != nil {
		return nil, err
	}
	logger.Info("session lock acquired")
	return l, nil
}

func provideStore(p Params, logger *zap.Logger) (*localstore.DB, error) {
	dbPath := session.StoreDBPath(p.SessionName)
	db, err := localstore.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("fallback store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideRemoteClient(cfg *config.Config, logger *zap.Logger) *remote.Client {
	timeout := time.Duration(cfg.Remote.TimeoutSeconds) * time.Second
	return remote.NewClient(cfg.Remote.BaseURL, timeout, logger)
}

func provideEnvLoader(cfg *config.Config, center *notify.Center, logger *zap.Logger) *envcfg.Loader {
	return envcfg.NewLoader(cfg.AI.EnvScriptURL, center, logger)
}

func provideReporter(cfg *config.Config, client *remote.Client, b *bus.Bus, center *notify.Center, db *localstore.DB, logger *zap.Logger) *health.Reporter {
	r := health.NewReporter(cfg.Remote.ProbeURL, client, b, center, db, logger, nil)
	// Seed from the last known state for fast initial status display.
	if v, err := db.GetMeta("last_online"); err == nil && v != "" {
		r.SetInitial(v == "true")
	}
	return r
}

func provideMonitor(cfg *config.Config, reporter *health.Reporter, logger *zap.Logger) *health.Monitor {
	interval := time.Duration(cfg.Remote.CheckIntervalSeconds) * time.Second
	return health.NewMonitor(reporter, interval, logger)
}

func provideAdapter(client *remote.Client, db *localstore.DB, reporter *health.Reporter, b *bus.Bus, logger *zap.Logger) *adapter.Adapter {
	return adapter.New(client, db, reporter, record.NewIDGenerator(nil), b, logger)
}

func provideReconciler(cfg *config.Config, client *remote.Client, db *localstore.DB, reporter *health.Reporter, b *bus.Bus, logger *zap.Logger) *intsync.Reconciler {
	return intsync.New(client, db, reporter, b, logger, intsync.Options{
		PruneAfterSync: cfg.Sync.PruneAfterSync,
	})
}

func provideProfileService(client *remote.Client, logger *zap.Logger) *profile.Service {
	return profile.NewService(client, logger)
}

func provideAIHandler(cfg *config.Config, env *envcfg.Loader, logger *zap.Logger) *gateway.Handler {
	key := func() string {
		return env.Get("NEXT_PUBLIC_HUGGINGFACE_API_KEY", "")
	}
	return gateway.NewHandler(cfg.AI.UpstreamURL, cfg.AI.Model, key, logger)
}

func provideServer(cfg *config.Config, ad *adapter.Adapter, prof *profile.Service, reporter *health.Reporter, rec *intsync.Reconciler, center *notify.Center, ai *gateway.Handler, logger *zap.Logger) *api.Server {
	return api.NewServer(cfg.ListenAddr, api.Deps{
		UserID:     cfg.UserID,
		Records:    ad,
		Profiles:   prof,
		Reporter:   reporter,
		Reconciler: rec,
		Center:     center,
		AI:         ai,
	}, logger)
}

func registerLifecycle(lc fx.Lifecycle, cfg *config.Config, srv *api.Server, lk *lock.Lock, monitor *health.Monitor, rec *intsync.Reconciler, b *bus.Bus, logger *zap.Logger) {
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			monitor.Start(runCtx)

			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("http server error", zap.Error(err))
				}
			}()

			// Opportunistic reconciliation: once at startup and again
			// whenever connectivity is restored.
			go func() {
				runReconciliation(runCtx, rec, cfg.UserID, logger)
				ch, unsub := b.Subscribe("conn.online", 8)
				defer unsub()
				for {
					select {
					case <-ch:
						runReconciliation(runCtx, rec, cfg.UserID, logger)
					case <-runCtx.Done():
						return
					}
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			monitor.Stop()
			srv.Stop(ctx)
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("agent stopped")
			return nil
		},
	})
}

func runReconciliation(ctx context.Context, rec *intsync.Reconciler, userID string, logger *zap.Logger) {
	if userID == "" {
		return
	}
	report, err := rec.Run(ctx, userID)
	if err != nil {
		logger.Info("reconciliation deferred", zap.Error(err))
		return
	}
	if report.Synced > 0 || report.Failed > 0 {
		logger.Info("reconciliation report",
			zap.Int("synced", report.Synced),
			zap.Int("skipped", report.Skipped),
			zap.Int("failed", report.Failed))
	}
}
