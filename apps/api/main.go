package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/hfarfan/evadocente/apps/api/echo"
	"github.com/hfarfan/evadocente/core"
	"github.com/hfarfan/evadocente/core/evaluation"
	emailsvc "github.com/hfarfan/evadocente/services/email"
	logsvc "github.com/hfarfan/evadocente/services/logger"
	"github.com/hfarfan/evadocente/storage/database"
	"github.com/hfarfan/evadocente/storage/database/academicrepos"
	"github.com/hfarfan/evadocente/storage/database/evalrepos"
)

const shutdownTimeout = 20 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.Conf

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// evaluation store: system of record, migrated on boot
	evalDB, err := setUpEvalDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up evaluation store: %v", err), err)
	}
	defer closeDB(evalDB, logger)

	// academic store: institutional records, read-only
	academicDB, err := database.OpenAcademic(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up academic store: %v", err), err)
	}
	defer closeDB(academicDB, logger)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	academicRepo := academicrepos.NewRepository(academicDB)
	evalSvc := evaluation.NewService(evalrepos.NewRepository(evalDB), academicRepo, mailSvc, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Logger:       logger,
			EvalSvc:      evalSvc,
			AcademicRepo: academicRepo,
		},
	)

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpEvalDB(conf *core.Config) (*sqlx.DB, error) {
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}

func closeDB(db *sqlx.DB, logger core.Logger) {
	if err := db.Close(); err != nil {
		logger.Error(fmt.Sprintf("closing database: %v", err), err)
	}
}
