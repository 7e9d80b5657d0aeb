package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/traveldiary/internal/client/client"
	"github.com/dmitrijs2005/traveldiary/internal/client/config"
	"github.com/dmitrijs2005/traveldiary/internal/client/models"
	"github.com/dmitrijs2005/traveldiary/internal/client/repositories/uploads"
	"github.com/dmitrijs2005/traveldiary/internal/client/services"
	"github.com/dmitrijs2005/traveldiary/internal/client/storage"
	"github.com/dmitrijs2005/traveldiary/internal/filex"
	"github.com/dmitrijs2005/traveldiary/internal/logging"
)

// MetricsNamespace prefixes every collector the client registers.
const MetricsNamespace = "traveldiary"

type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	gw      client.Gateway
	metrics *client.Metrics

	session *services.Session
	entries services.EntryService
	tips    services.TipService

	reader *bufio.Reader
	out    io.Writer

	// listing is the order entries were last printed in, so commands can
	// take a list number instead of an id.
	listing []models.TravelEntry
}

// NewApp opens local state, builds the backend gateway and the services on
// top of it. The session is not resumed until Run.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {

	if _, err := filex.EnsureParentDir(c.DBPath); err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DBPath, "error", err)
		return nil, err
	}

	api, err := client.NewAppwriteClient(client.Options{
		Endpoint:          c.Endpoint,
		Platform:          c.Platform,
		Project:           c.Project,
		Database:          c.Database,
		UsersCollection:   c.UsersCollection,
		EntriesCollection: c.EntriesCollection,
		TipsCollection:    c.TipsCollection,
		ListLimit:         c.ListLimit,
		RequestTimeout:    c.RequestTimeout,
		BreakerThreshold:  c.BreakerThreshold,
		BreakerTimeout:    c.BreakerTimeout,
		Credentials:       client.NewMetadataCredentialStore(db),
		Logger:            log,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	metrics := client.NewMetrics(MetricsNamespace)
	gw := client.NewInstrumentedGateway(api, metrics)
	session := services.NewSession(gw, log)

	opts := []services.EntryOption{services.WithLogger(log)}
	if c.UploadImages {
		up, err := storage.NewS3Uploader(ctx, storage.S3Config{
			Bucket:        c.S3Bucket,
			Region:        c.S3Region,
			BaseEndpoint:  c.S3BaseEndpoint,
			AccessKey:     c.S3AccessKey,
			SecretKey:     c.S3SecretKey,
			PublicBaseURL: c.S3PublicBaseURL,
		})
		if err != nil {
			_ = gw.Close()
			_ = db.Close()
			return nil, fmt.Errorf("image upload: %w", err)
		}
		resolver := services.NewImageSync(uploads.NewSQLiteRepository(db), up, log)
		opts = append(opts, services.WithImageResolver(resolver))
		log.Info(ctx, "image upload enabled", "bucket", c.S3Bucket)
	}

	return &App{
		config:  c,
		log:     log,
		db:      db,
		gw:      gw,
		metrics: metrics,
		session: session,
		entries: services.NewEntryService(gw, session, opts...),
		tips:    services.NewTipService(gw, session),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run resumes any stored session and blocks in the REPL until the user
// exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

// Close releases the gateway and the local database.
func (a *App) Close() error {
	var errs []error
	if a.gw != nil {
		errs = append(errs, a.gw.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	return a.session.IsLoggedIn()
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
