package cmd

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/twiced-technology-gmbh/taskdeck/internal/activity"
	"github.com/twiced-technology-gmbh/taskdeck/internal/config"
	"github.com/twiced-technology-gmbh/taskdeck/internal/log"
	"github.com/twiced-technology-gmbh/taskdeck/internal/notify"
	"github.com/twiced-technology-gmbh/taskdeck/internal/repository"
	"github.com/twiced-technology-gmbh/taskdeck/internal/store"
	"github.com/twiced-technology-gmbh/taskdeck/internal/store/filestore"
	"github.com/twiced-technology-gmbh/taskdeck/internal/store/memstore"
	"github.com/twiced-technology-gmbh/taskdeck/internal/store/reststore"
	"github.com/twiced-technology-gmbh/taskdeck/internal/store/sqlstore"
)

// backend is an opened store plus what the caller needs to watch and
// release it.
type backend struct {
	store.Store
	// watch lists the paths whose changes mean the board moved under us.
	// Empty for backends that cannot be watched.
	watch []string
	close func() error
}

// Close releases the backend.
func (b *backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// openBackend builds the store named by backend.kind.
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	logger := log.GetLogger()

	switch cfg.Backend.Kind {
	case config.BackendFile, "":
		s, err := filestore.New(cfg.Dir(), cfg.Backend.TasksDir, filestore.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return &backend{Store: s, watch: s.WatchPaths()}, nil

	case config.BackendSQLite, config.BackendPostgres:
		dialect, err := sqlstore.ParseDialect(cfg.Backend.Kind)
		if err != nil {
			return nil, err
		}
		s, err := sqlstore.Open(ctx, dialect, cfg.DSN())
		if err != nil {
			return nil, err
		}
		b := &backend{Store: s, close: s.Close}
		if dialect == sqlstore.SQLite {
			b.watch = []string{cfg.Dir()}
		}
		logger.WithField("dialect", dialect).Debug("opened sql backend")
		return b, nil

	case config.BackendREST:
		var opts []reststore.Option
		if path := cfg.TokenPath(); path != "" {
			tok, err := reststore.TokenFromFile(path)
			if err != nil {
				return nil, err
			}
			opts = append(opts, reststore.WithTokenSource(oauth2.StaticTokenSource(tok)))
		}
		s, err := reststore.New(cfg.Backend.URL, cfg.BackendAPIKey(), opts...)
		if err != nil {
			return nil, err
		}
		logger.WithField("url", cfg.Backend.URL).Debug("using rest backend")
		return &backend{Store: s}, nil

	case config.BackendMemory:
		return &backend{Store: memstore.New()}, nil
	}
	return nil, fmt.Errorf("%w: unknown backend %q", config.ErrInvalid, cfg.Backend.Kind)
}

// cliNotifier records every outcome in the activity log. Notices also go
// to the logger in verbose mode; otherwise the returned error is enough.
func cliNotifier(cfg *config.Config) notify.Notifier {
	logger := log.GetLogger()
	n := []notify.Notifier{activity.NewNotifier(cfg.Dir(), logger)}
	if flagVerbose {
		n = append(n, notify.NewLog(logger))
	}
	return notify.Multi(n...)
}

// openRepository opens the backend, wraps it in a repository reporting
// to n (cliNotifier when nil) and loads both collections.
func openRepository(ctx context.Context, cfg *config.Config, n notify.Notifier) (*repository.Repository, *backend, error) {
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if n == nil {
		n = cliNotifier(cfg)
	}
	repo := repository.New(b, repository.WithNotifier(n))
	if err := repo.Load(ctx); err != nil {
		_ = b.Close()
		return nil, nil, err
	}
	return repo, b, nil
}

// withRepository loads the board config and repository, runs fn and
// releases the backend.
func withRepository(ctx context.Context, fn func(*config.Config, *repository.Repository) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	repo, b, err := openRepository(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer b.Close() //nolint:errcheck // read-mostly; close errors are not actionable
	return fn(cfg, repo)
}
