package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"visitgate/internal/accesscontrol"
	acmetrics "visitgate/internal/accesscontrol/metrics"
	"visitgate/internal/accesscontrol/ports"
	authservice "visitgate/internal/authorization/service"
	authstore "visitgate/internal/authorization/store"
	facilityservice "visitgate/internal/facility/service"
	facilitystore "visitgate/internal/facility/store"
	inmateservice "visitgate/internal/inmate/service"
	inmatestore "visitgate/internal/inmate/store"
	operatorservice "visitgate/internal/operator/service"
	operatorstore "visitgate/internal/operator/store"
	"visitgate/internal/platform/config"
	"visitgate/internal/platform/database"
	"visitgate/internal/platform/httpserver"
	"visitgate/internal/platform/logger"
	"visitgate/internal/platform/metrics"
	"visitgate/internal/platform/redis"
	restrictionservice "visitgate/internal/restriction/service"
	restrictionstore "visitgate/internal/restriction/store"
	visitstore "visitgate/internal/visit/store"
	visitorservice "visitgate/internal/visitor/service"
	visitorstore "visitgate/internal/visitor/store"
	"visitgate/pkg/platform/audit"
	"visitgate/pkg/platform/audit/publisher"
	auditmemory "visitgate/pkg/platform/audit/store/memory"
	auditpostgres "visitgate/pkg/platform/audit/store/postgres"
)

// gaugeInterval is how often occupancy and expiring-grant gauges refresh.
const gaugeInterval = time.Minute

// expiringWindowDays is the look-ahead for the expiring authorizations gauge.
const expiringWindowDays = 7

// main wires the stores, services and the access controller, then serves the
// ops router until interrupted. Business logic lives in internal packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

type stores struct {
	visitors       visitorservice.Store
	inmates        inmateservice.Store
	operators      operatorservice.Store
	authorizations authservice.Store
	restrictions   restrictionservice.Store
	visits         ports.VisitStore
	audit          audit.Store
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	var checks []httpserver.HealthCheck

	var db *sql.DB
	if cfg.Database.URL != "" {
		var err error
		db, err = database.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		checks = append(checks, httpserver.HealthCheck{Name: "postgres", Check: db.PingContext})
		log.Info("using postgres storage")
	} else {
		log.Warn("DATABASE_URL not set, using in-memory storage")
	}
	st := newStores(db)

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var facilities facilityservice.Store = facilitystore.NewInMemory()
	if redisClient != nil {
		defer redisClient.Close()
		facilities = facilitystore.NewRedis(redisClient.Client)
		checks = append(checks, httpserver.HealthCheck{Name: "redis", Check: redisClient.Health})
	}

	reg := prometheus.DefaultRegisterer
	platformMetrics := metrics.New(reg)
	checkInMetrics := acmetrics.New(reg)

	auditPublisher := publisher.NewPublisher(st.audit,
		publisher.WithAsyncBuffer(1024),
		publisher.WithLogger(log),
	)
	defer auditPublisher.Close()

	facilitySvc := facilityservice.New(facilities, facilityservice.WithLogger(log))
	defaultFacility, err := facilitySvc.EnsureDefault(ctx, cfg.Facility)
	if err != nil {
		return err
	}

	visitorSvc := visitorservice.New(st.visitors,
		visitorservice.WithLogger(log),
		visitorservice.WithAuditPublisher(auditPublisher),
		visitorservice.WithMetrics(platformMetrics),
	)
	inmateSvc := inmateservice.New(st.inmates,
		inmateservice.WithLogger(log),
		inmateservice.WithAuditPublisher(auditPublisher),
		inmateservice.WithMetrics(platformMetrics),
	)
	operatorSvc := operatorservice.New(st.operators,
		operatorservice.WithLogger(log),
		operatorservice.WithAuditPublisher(auditPublisher),
		operatorservice.WithMetrics(platformMetrics),
	)
	resolver := authservice.New(st.authorizations,
		authservice.WithLogger(log),
		authservice.WithAuditPublisher(auditPublisher),
		authservice.WithMetrics(platformMetrics),
	)
	evaluator := restrictionservice.New(st.restrictions,
		restrictionservice.WithLogger(log),
		restrictionservice.WithAuditPublisher(auditPublisher),
		restrictionservice.WithMetrics(platformMetrics),
		restrictionservice.WithMinMotiveLength(cfg.Rules.MinRestrictionMotiveLength),
	)

	opts := []accesscontrol.Option{
		accesscontrol.WithLogger(log),
		accesscontrol.WithAuditPublisher(auditPublisher),
		accesscontrol.WithMetrics(checkInMetrics),
		accesscontrol.WithMinVisitorAge(cfg.Rules.MinVisitorAge),
		accesscontrol.WithDefaultFacility(defaultFacility.ID),
	}
	if db != nil {
		opts = append(opts, accesscontrol.WithTx(newCheckInPostgresTx(db, cfg.Server.TxTimeout)))
	} else {
		opts = append(opts, accesscontrol.WithTx(accesscontrol.NewFacilityLockTx(cfg.Server.TxTimeout)))
	}
	controller, err := accesscontrol.New(accesscontrol.Deps{
		Visitors:       visitorSvc,
		Inmates:        inmateSvc,
		Operators:      operatorSvc,
		Authorizations: resolver,
		Restrictions:   evaluator,
		Facilities:     facilitySvc,
		Capacity:       facilityservice.NewCapacityGate(st.visits),
		Visits:         st.visits,
	}, opts...)
	if err != nil {
		return err
	}

	go refreshGauges(ctx, log, controller, resolver, facilitySvc)

	srv := httpserver.New(cfg.Server.Addr, httpserver.NewOpsRouter(checks...))
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting visitgate", "addr", cfg.Server.Addr, "facility", defaultFacility.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func newStores(db *sql.DB) stores {
	if db == nil {
		return stores{
			visitors:       visitorstore.NewInMemory(),
			inmates:        inmatestore.NewInMemory(),
			operators:      operatorstore.NewInMemory(),
			authorizations: authstore.NewInMemory(),
			restrictions:   restrictionstore.NewInMemory(),
			visits:         visitstore.NewInMemory(),
			audit:          auditmemory.NewInMemoryStore(),
		}
	}
	return stores{
		visitors:       visitorstore.NewPostgres(db),
		inmates:        inmatestore.NewPostgres(db),
		operators:      operatorstore.NewPostgres(db),
		authorizations: authstore.NewPostgres(db),
		restrictions:   restrictionstore.NewPostgres(db),
		visits:         visitstore.NewPostgres(db),
		audit:          auditpostgres.New(db),
	}
}

// refreshGauges keeps the occupancy of every facility and the count of
// authorizations about to expire current until ctx ends.
func refreshGauges(ctx context.Context, log *slog.Logger, controller *accesscontrol.Controller, resolver *authservice.Resolver, facilities *facilityservice.Service) {
	ticker := time.NewTicker(gaugeInterval)
	defer ticker.Stop()
	for {
		all, err := facilities.List(ctx)
		if err != nil {
			log.Warn("failed to list facilities", "error", err)
		}
		for _, f := range all {
			if _, err := controller.RefreshOccupancy(ctx, f.ID); err != nil {
				log.Warn("failed to refresh occupancy", "facility_id", f.ID.String(), "error", err)
			}
		}
		if _, err := resolver.FindExpiringWithin(ctx, expiringWindowDays); err != nil {
			log.Warn("failed to refresh expiring authorizations", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
