// README: Entry point; loads config, wires services, starts HTTP server and background jobs.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"wajba/internal/ai"
	"wajba/internal/config"
	httptransport "wajba/internal/http"
	"wajba/internal/infra"
	gmaps "wajba/internal/maps"
	"wajba/internal/modules/catalog"
	"wajba/internal/modules/channel"
	"wajba/internal/modules/correlate"
	"wajba/internal/modules/rating"
	"wajba/internal/modules/registry"
	"wajba/internal/modules/session"
	"wajba/internal/modules/throttle"
	"wajba/internal/transport"
	"wajba/internal/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	locker := infra.NewLocker(redisClient)

	sender := transport.NewRetrySender(
		transport.NewClient(cfg.Transport.BaseURL),
		cfg.Transport.RetryAttempts,
		cfg.Transport.RetryDelay,
	)

	registryStore := registry.NewStore(dbPool)
	registrySvc := registry.NewService(registryStore, locker)

	ratingStore := rating.NewStore(dbPool)
	ratingSvc := rating.NewService(ratingStore)

	catalogStore := catalog.NewStore(dbPool)
	correlStore := correlate.NewStore(redisClient)
	limiter := throttle.NewLimiter()

	var geocoder session.Geocoder
	if cfg.Maps.APIKey != "" {
		g, err := gmaps.NewGeocodeService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		geocoder = g
	}

	sessionSvc := session.NewService(session.Deps{
		Orders:       registrySvc,
		Menu:         catalogStore,
		Gate:         limiter,
		Ratings:      ratingSvc,
		Correlations: correlStore,
		Sender:       sender,
		Geocoder:     geocoder,
		OperatorChat: types.ID(cfg.Operator.ChannelChat),
	})

	var classifier ai.Classifier
	if cfg.AI.GeminiKey != "" {
		c, err := ai.NewGeminiClassifier(ctx, cfg.AI.GeminiKey)
		if err != nil {
			log.Fatalf("gemini init: %v", err)
		}
		defer c.Close()
		classifier = c
	}

	dispatcher := channel.NewDispatcher(channel.DispatcherDeps{
		Orders:       registrySvc,
		Sessions:     sessionSvc,
		Correlations: correlStore,
		Sender:       sender,
		Classifier:   classifier,
		OperatorChat: types.ID(cfg.Operator.ChannelChat),
	})

	handler := httptransport.NewRouter(sessionSvc, dispatcher, registrySvc)
	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go registrySvc.RunDailyCounterReset(ctx)

	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
