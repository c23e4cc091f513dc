package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/oxjadex/catchme--catchyou/audit"
	"github.com/oxjadex/catchme--catchyou/bus"
	"github.com/oxjadex/catchme--catchyou/config"
	"github.com/oxjadex/catchme--catchyou/game"
	"github.com/oxjadex/catchme--catchyou/logger"
	"github.com/oxjadex/catchme--catchyou/metrics"
	"github.com/oxjadex/catchme--catchyou/storage"
	"github.com/oxjadex/catchme--catchyou/web"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinLogger())
	r.GET("/health", func(ctx *gin.Context) { ctx.String(http.StatusOK, "healthy") })

	var corsHandler gin.HandlerFunc
	if len(allowedOrigins) > 0 {
		corsHandler = cors.New(cors.Config{
			AllowOrigins:     allowedOrigins,
			AllowCredentials: true,
			AllowMethods:     []string{"GET", "OPTIONS"},
			AllowHeaders: []string{
				"Content-Type",
				"Upgrade",
				"Connection",
				"Sec-WebSocket-Key",
				"Sec-WebSocket-Version",
				"Sec-WebSocket-Extensions",
				"Sec-WebSocket-Protocol",
			},
		})
	}

	r.Use(func(ctx *gin.Context) {
		if !game.OriginAllowed(allowedOrigins, ctx.Request) {
			ctx.String(http.StatusForbidden, "forbidden origin")
			ctx.Abort()
			return
		}
		// same host pages need no cors headers
		if corsHandler != nil && slices.Contains(allowedOrigins, ctx.Request.Header.Get("Origin")) {
			corsHandler(ctx)
		}
	})

	return r
}

// newRouter mounts the game client, its socket and the metrics endpoint.
func newRouter(allowedOrigins []string, gateway *game.Gateway) *gin.Engine {
	r := CreateServer(allowedOrigins)
	r.GET("/", web.IndexHandler)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/socket", game.NewGameHandler(gateway, allowedOrigins).SocketHandler)
	return r
}

func main() {
	// Load local .env (dev only)
	_ = godotenv.Load()

	cfg := &config.Config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}

func run(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fabric, closeFabric, err := newFabric(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFabric()

	errs := make(chan error, 1)

	if cfg.OwnsSession() {
		session, flushed, err := newSession(ctx, cfg, fabric)
		if err != nil {
			return err
		}
		// the recorder flushes its queue once ctx is done
		defer func() {
			stop()
			<-flushed
		}()

		if err := startActor(ctx, errs, session.Serve); err != nil {
			return err
		}
	}

	gateway := game.NewGateway(cfg.Room, fabric)
	if err := startActor(ctx, errs, gateway.Run); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(cfg.AllowedOrigins, gateway),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("role", string(cfg.Role)).Str("room", cfg.Room).Msg("game server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err = <-errs:
		log.Error().Err(err).Msg("server failed")
		stop()
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		log.Warn().Err(serr).Msg("http shutdown")
	}

	return err
}

func newFabric(ctx context.Context, cfg *config.Config) (bus.Fabric, func(), error) {
	if !cfg.Clustered() {
		return bus.NewMemory(), func() {}, nil
	}

	redisBus, err := bus.NewRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	return redisBus, func() { _ = redisBus.Close() }, nil
}

// newSession builds the room owner and its audit pipeline. The returned channel is
// closed once the audit recorder has flushed after ctx is done.
func newSession(ctx context.Context, cfg *config.Config, fabric bus.Fabric) (*game.Session, <-chan struct{}, error) {
	keywords, err := loadKeywords(cfg)
	if err != nil {
		return nil, nil, err
	}

	var sink audit.Sink = audit.Discard{}
	var closeSink func()
	if cfg.PostgresURL != "" {
		if err := storage.Migrate(cfg.PostgresURL); err != nil {
			return nil, nil, err
		}
		repo, err := storage.NewPostgresRepo(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		sink, closeSink = repo, repo.Close
	} else {
		log.Warn().Msg("no postgres url configured, chat history will not be persisted")
	}

	recorder := audit.NewRecorder(sink, cfg.AuditQueue)
	flushed := make(chan struct{})
	go func() {
		defer close(flushed)
		recorder.Run(ctx)
		if closeSink != nil {
			closeSink()
		}
	}()

	return game.NewSession(cfg.Room, fabric, keywords, recorder, cfg.MaxPlayers), flushed, nil
}

func loadKeywords(cfg *config.Config) (*game.WordList, error) {
	if cfg.KeywordsFile == "" {
		return game.NewWordList(game.DefaultKeywords)
	}
	words, err := game.LoadWordList(cfg.KeywordsFile)
	if err != nil {
		return nil, err
	}
	log.Info().Int("count", words.Len()).Str("file", cfg.KeywordsFile).Msg("keywords loaded")
	return words, nil
}

// startActor runs serve in the background and waits until it reports started.
func startActor(ctx context.Context, errs chan<- error, serve func(context.Context, chan struct{}) error) error {
	started := make(chan struct{})
	failed := make(chan error, 1)

	go func() {
		if err := serve(ctx, started); err != nil {
			failed <- err
			select {
			case errs <- err:
			default:
			}
		}
	}()

	select {
	case <-started:
		return nil
	case err := <-failed:
		return err
	}
}
