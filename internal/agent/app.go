package agent

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/tetete478/Snipee-sub000/internal/config"
	"github.com/tetete478/Snipee-sub000/internal/logging"
	"github.com/tetete478/Snipee-sub000/internal/remote"
	"github.com/tetete478/Snipee-sub000/internal/repositories/metadata"
	"github.com/tetete478/Snipee-sub000/internal/repositories/replica"
	"github.com/tetete478/Snipee-sub000/internal/services"
	"github.com/tetete478/Snipee-sub000/internal/syncer"
)

// App wires the local replica, the sync engine and the interactive shell
// together. All state lives on the instance.
type App struct {
	config     *config.Config
	logger     logging.Logger
	engine     *syncer.Engine
	collection *services.CollectionService
	deviceID   string
	reader     *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	var logger logging.Logger = logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	if c.DeviceName != "" {
		logger = logger.With("device_name", c.DeviceName)
	}

	db, err := InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	metaRepo := metadata.NewSQLiteRepository(db)
	store := replica.NewSQLiteRepository(db)

	deviceID, err := EnsureDeviceID(ctx, metaRepo)
	if err != nil {
		return nil, err
	}

	// The codec keeps the passphrase for the process lifetime and derives a
	// key per document from the salt carried in the remote envelope.
	var pass []byte
	if c.EncryptionEnabled {
		pass, err = GetPassphrase(os.Stdout)
		if err != nil {
			return nil, fmt.Errorf("reading passphrase: %w", err)
		}
	}

	client, err := remote.NewS3Client(ctx, remote.S3Options{
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		User:         c.S3User,
		Password:     c.S3Password,
		Bucket:       c.S3Bucket,
		ObjectKey:    c.S3ObjectKey,
	}, remote.NewCodec(pass), logger)
	if err != nil {
		return nil, fmt.Errorf("s3 init error: %w", err)
	}

	engine := syncer.NewEngine(store, metaRepo, client, deviceID, syncer.Config{
		SyncInterval:       c.SyncInterval,
		DebounceDelay:      c.DebounceDelay,
		TombstoneRetention: c.TombstoneRetention,
	}, logger)

	collection := services.NewCollectionService(store, engine, logger)

	return &App{
		config:     c,
		logger:     logger,
		engine:     engine,
		collection: collection,
		deviceID:   deviceID,
		reader:     bufio.NewReader(os.Stdin),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run starts the background sync loop and the interactive shell, and blocks
// until the shell exits or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting agent...", "device_id", app.deviceID)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = app.engine.Run(ctx)
	}()

	app.Main(ctx)

	cancelFunc()
	wg.Wait()
}
