package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/killingspree001/lautechmarket/core"
	"github.com/killingspree001/lautechmarket/core/catalog"
	"github.com/killingspree001/lautechmarket/core/upload"
	cloudinarysvc "github.com/killingspree001/lautechmarket/services/cloudinary"
	logsvc "github.com/killingspree001/lautechmarket/services/logger"
	"github.com/killingspree001/lautechmarket/storage/database"
	inmemdb "github.com/killingspree001/lautechmarket/storage/database/inmem"
	sqlxrepos "github.com/killingspree001/lautechmarket/storage/database/sqlx"
	firestoredb "github.com/killingspree001/lautechmarket/storage/firestore"
)

func main() {
	conf := core.NewConfig()
	ctx := context.Background()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())

	// set up catalog storage
	var db *sql.DB
	var repo catalog.Repository
	switch conf.Catalog.Driver {
	case "postgres":
		var err error
		if err = database.CreateIfNotExist(ctx, conf); err != nil {
			logger.Fatal("creating database", err)
		}
		if db, err = database.Open(ctx, conf); err != nil {
			logger.Fatal("opening database", err)
		}
		defer func() { _ = db.Close() }()
		repo = sqlxrepos.NewProductRepository(db)
	case "firestore":
		client, err := firestoredb.NewClient(ctx, conf)
		if err != nil {
			logger.Fatal("opening firestore", err)
		}
		defer func() { _ = client.Close() }()
		repo = firestoredb.NewProductRepository(client)
	default:
		repo = inmemdb.NewProductRepository(inmemdb.Open())
	}

	// start CLI
	cli := commandLine{
		ctx:     ctx,
		out:     os.Stdout,
		db:      db,
		catalog: catalog.NewService(repo, validate),
		uploads: upload.NewClient(upload.AccountsFromConfig(conf), cloudinarysvc.NewUploaderFromConfig(conf), logger),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		os.Exit(1)
	}
}
