// Command legalctl is the operator CLI: schema migration, content seeding,
// offline PDF export and sitemap generation.
package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"legalpub/internal/config"
	"legalpub/internal/database"
	"legalpub/internal/export"
	"legalpub/internal/logger"
	"legalpub/internal/repository"
	"legalpub/internal/repository/cache"
	"legalpub/internal/repository/postgres"
	"legalpub/internal/service"
	"legalpub/internal/storage"
)

var (
	// logMode overrides LOG_MODE
	logMode string

	cfg *config.AppConfig
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "legalctl",
	Short: "Operate the legal document publishing site",
	Long: `legalctl manages the content repository behind the publishing site.

Available subcommands:
  migrate - Create the legal_documents schema if it is missing
  seed    - Load documents from a YAML file
  export  - Render one document to PDF with the configured strategy
  sitemap - Print sitemap.xml for the published documents`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		mode := cfg.LogMode
		if logMode != "" {
			mode = logMode
		}
		l, err := logger.New(mode)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "", "log mode (dev or prod); defaults to LOG_MODE")

	rootCmd.AddCommand(migrateCmd, seedCmd, exportCmd, sitemapCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// deps holds the dependencies a subcommand opened; close releases them.
type deps struct {
	db      *sql.DB
	svc     service.DocumentService
	closers []io.Closer
}

func (r *deps) close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		_ = r.closers[i].Close()
	}
}

// newRepository returns the Postgres repository, behind the same Redis
// cache the API server reads through when rdb is set. Writes made here then
// invalidate the entries the server would otherwise keep serving.
func newRepository(db *sql.DB, rdb redis.UniversalClient) repository.DocumentRepository {
	var repo repository.DocumentRepository = postgres.NewDocumentPostgres(db)
	if rdb != nil {
		repo = cache.NewDocumentCache(repo, rdb, cfg.Site.Revalidate(), log)
	}
	return repo
}

// openDeps connects the database, the repository cache when configured
// and, on request, attachment storage and the exporter.
func openDeps(withStorage, withExporter bool) (*deps, error) {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	rt := &deps{db: db, closers: []io.Closer{db}}

	var rdb redis.UniversalClient
	if cfg.Redis.Enabled() {
		client, err := database.NewRedis(cfg.Redis)
		if err != nil {
			log.Warn("cache_unreachable", "error", err.Error(), "effect", "cached pages stay stale until they expire")
		} else {
			rdb = client
			rt.closers = append(rt.closers, client)
		}
	}

	var store storage.Storage
	if withStorage && cfg.MinIO.Enabled() {
		store, err = storage.NewMinIO(cfg.MinIO)
		if err != nil {
			rt.close()
			return nil, fmt.Errorf("init storage: %w", err)
		}
	}

	var exporter export.Exporter
	if withExporter {
		exporter, err = export.New(cfg.Export, cfg.Site, log)
		if err != nil {
			rt.close()
			return nil, err
		}
		if c, ok := exporter.(io.Closer); ok {
			rt.closers = append(rt.closers, c)
		}
	}

	rt.svc = service.NewDocumentService(newRepository(db, rdb), exporter, store, log)
	return rt, nil
}
