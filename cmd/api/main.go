package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadp "loanappl-backend/internal/adapter/http"
	"loanappl-backend/internal/adapter/repository/mysql"
	redisrepo "loanappl-backend/internal/adapter/repository/redis"
	"loanappl-backend/internal/config"
	"loanappl-backend/internal/domain/loanappl"
	"loanappl-backend/internal/infrastructure/cache"
	"loanappl-backend/internal/infrastructure/db"
	"loanappl-backend/internal/infrastructure/logging"
	"loanappl-backend/internal/infrastructure/metrics"
	applUC "loanappl-backend/internal/usecase/loanappl"
	loantypeUC "loanappl-backend/internal/usecase/loantype"
	partyUC "loanappl-backend/internal/usecase/party"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.AppEnv, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	gdb, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Fatal("open database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	if err := db.AutoMigrate(gdb); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	rdb, err := cache.OpenRedis(context.Background(), cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal("open redis", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	col := metrics.New()
	apps := mysql.NewApplicationRepository(gdb)
	parties := mysql.NewPartyRepository(gdb)
	loanTypes := mysql.NewLoanTypeRepository(gdb)
	handoffs := redisrepo.NewHandoffStore(rdb)

	applications := applUC.NewUsecase(applUC.Deps{
		Engine:       loanappl.NewEngine(cfg.Settings(), col),
		Applications: apps,
		UoW:          mysql.NewGormUoW(gdb),
		Parties:      parties,
		LoanTypes:    loanTypes,
		Handoffs:     handoffs,
		HandoffTTL:   cfg.HandoffTTL(),
		Logger:       log.Named("loanappl"),
		Lookups:      col,
	})

	e := httpadp.NewServer(httpadp.Routes{
		Health:         httpadp.NewHandler(col.Handler()),
		Applications:   httpadp.NewApplicationHandler(applications, log),
		Parties:        httpadp.NewPartyHandler(partyUC.NewUsecase(parties, handoffs, applications, log.Named("party")), log),
		LoanTypes:      httpadp.NewLoanTypeHandler(loantypeUC.NewUsecase(loanTypes, log.Named("loantype")), log),
		Redis:          rdb,
		IdempotencyTTL: cfg.IdempotencyTTL(),
		Logger:         log.Named("http"),
	})

	addr := ":" + cfg.AppPort
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.AppEnv), zap.String("db", cfg.DBDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	log.Info("bye")
}
