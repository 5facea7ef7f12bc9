package main

import (
	"io"
	"log"
	"net/http"
	"taxflow/account"
	"taxflow/bizerror"
	"taxflow/common"
	"taxflow/domain"
	"taxflow/infra/tracing"
	"taxflow/persistence"
	"taxflow/servehttp"
	"taxflow/session"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	jaegerlog "github.com/uber/jaeger-client-go/log"
	"github.com/uber/jaeger-lib/metrics"
)

func main() {
	common.Log.Info("service start")

	closer, err := bootstrapTracing()
	if err != nil {
		log.Fatalf("failed to bootstrap tracing %v\n", err)
	}
	defer closer.Close()

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(nil).AutoMigrate(
		&account.User{},
		&domain.Client{}, &domain.AssignmentOverride{},
		&domain.FilingPeriod{}, &domain.DeadlineOverride{},
		&domain.WorkflowRecord{}, &domain.WorkflowMilestone{}, &domain.WorkflowHistoryEntry{},
	).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	engine := gin.Default()
	engine.Use(bizerror.ErrorHandling(), tracing.TracingIngress())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "taxflow")
	})

	servehttp.RegisterWorkflowRecordHandler(engine, session.SimpleAuthFilter())
	servehttp.RegisterFilingPeriodHandler(engine, session.SimpleAuthFilter())
	servehttp.RegisterReportHandler(engine, session.SimpleAuthFilter())

	servehttp.StartHTTPServer(engine)
}

func bootstrapTracing() (io.Closer, error) {
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		return nil, err
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = common.GetServiceName()
	}

	tracer, closer, err := cfg.NewTracer(
		jaegercfg.Logger(jaegerlog.StdLogger),
		jaegercfg.Metrics(metrics.NullFactory),
	)
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(tracer)
	return closer, nil
}
