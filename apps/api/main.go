package main

import (
	"context"
	"expvar"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	echoapi "github.com/killingspree001/lautechmarket/apps/api/echo"
	"github.com/killingspree001/lautechmarket/core"
	"github.com/killingspree001/lautechmarket/core/cart"
	"github.com/killingspree001/lautechmarket/core/catalog"
	"github.com/killingspree001/lautechmarket/core/upload"
	cloudinarysvc "github.com/killingspree001/lautechmarket/services/cloudinary"
	logsvc "github.com/killingspree001/lautechmarket/services/logger"
	"github.com/killingspree001/lautechmarket/storage/database"
	inmemdb "github.com/killingspree001/lautechmarket/storage/database/inmem"
	sqlxrepos "github.com/killingspree001/lautechmarket/storage/database/sqlx"
	firestoredb "github.com/killingspree001/lautechmarket/storage/firestore"
	inmemkv "github.com/killingspree001/lautechmarket/storage/kv/inmem"
	rediskv "github.com/killingspree001/lautechmarket/storage/kv/redis"
	sqlitekv "github.com/killingspree001/lautechmarket/storage/kv/sqlite"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()
	ctx := context.Background()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	defer logger.Close()

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up cart storage
	kv, err := setUpKV(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up cart storage: %v", err), err)
	}
	if closer, ok := kv.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				dbLogger.Error("Failed to close cart storage", err)
			}
		}()
	}

	// set up catalog storage
	prodRepo, closeCatalog, err := setUpCatalog(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up catalog: %v", err), err)
	}
	defer func() {
		if err := closeCatalog(); err != nil {
			dbLogger.Error("Failed to close catalog", err)
		}
	}()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	// set up services
	catalogSvc := catalog.NewService(prodRepo, validate)
	cartStore := cart.NewStore(kv, logger)
	uploads := upload.NewClient(upload.AccountsFromConfig(conf), cloudinarysvc.NewUploaderFromConfig(conf), logger)
	if uploads.AccountCount() == 0 {
		logger.Warn("no image host account configured; uploads are disabled")
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("cartStore").Set(conf.Cart.Store)
	expvar.NewString("catalogDriver").Set(conf.Catalog.Driver)
	expvar.NewString("uploadAccounts").Set(strconv.Itoa(uploads.AccountCount()))

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Catalog:    catalogSvc,
			Cart:       cartStore,
			Uploads:    uploads,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(ctx, conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpKV(ctx context.Context, conf *core.Config) (core.KVStore, error) {
	switch conf.Cart.Store {
	case "", "memory":
		return inmemkv.New(), nil
	case "redis":
		store := rediskv.New(conf.Cart.RedisAddr, conf.Cart.RedisPassword, conf.Cart.RedisDB)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	case "sqlite":
		store, err := sqlitekv.Open(conf.Cart.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, errors.Errorf("unknown cart store %q", conf.Cart.Store)
	}
}

func setUpCatalog(ctx context.Context, conf *core.Config) (catalog.Repository, func() error, error) {
	noop := func() error { return nil }

	switch conf.Catalog.Driver {
	case "", "memory":
		return inmemdb.NewProductRepository(inmemdb.Open()), noop, nil
	case "postgres":
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, nil, err
		}
		db, err := database.Open(ctx, conf)
		if err != nil {
			return nil, nil, err
		}
		if err = database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return sqlxrepos.NewProductRepository(db), db.Close, nil
	case "firestore":
		client, err := firestoredb.NewClient(ctx, conf)
		if err != nil {
			return nil, nil, err
		}
		return firestoredb.NewProductRepository(client), client.Close, nil
	default:
		return nil, nil, errors.Errorf("unknown catalog driver %q", conf.Catalog.Driver)
	}
}
