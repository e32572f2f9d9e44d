package main

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"github.com/reuben-baek/entity-service/auth"
	"github.com/reuben-baek/entity-service/config"
	"github.com/reuben-baek/entity-service/data"
	"github.com/reuben-baek/entity-service/domain"
	"github.com/reuben-baek/entity-service/notify"
	"github.com/reuben-baek/entity-service/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// app holds what a single command invocation works with.
type app struct {
	config    *config.Config
	db        *gorm.DB
	container *service.Container
	closers   []func() error
}

// newRootCmd returns the command tree and the app it opens. Callers close
// the app once the command returns, whether or not it failed.
func newRootCmd() (*cobra.Command, *app) {
	var (
		configPath string
		actingUser uint
	)
	a := &app{}

	root := &cobra.Command{
		Use:   "entityctl",
		Short: "Manage tasks, products and their comments, attachments and notifications",
		Long: `entityctl drives the entity services from the command line.

Examples:
  entityctl migrate
  entityctl user create --name reuben --email reuben@example.com
  entityctl task create --title "write docs"
  entityctl task comment 5 "done" --as 42
  entityctl product notify 3 low-stock --param minimumStock=3`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := cfg.SetupLogging(); err != nil {
				return err
			}
			if err := a.open(cfg); err != nil {
				return err
			}
			if actingUser == 0 {
				return nil
			}
			ctx, err := a.authenticate(cmd.Context(), actingUser)
			if err != nil {
				return err
			}
			cmd.SetContext(ctx)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (toml, yaml or json)")
	root.PersistentFlags().UintVar(&actingUser, "as", 0, "id of the acting user")

	root.AddCommand(newMigrateCmd(a))
	root.AddCommand(newUserCmd(a))
	root.AddCommand(newTaskCmd(a))
	root.AddCommand(newProductCmd(a))
	return root, a
}

func (a *app) open(cfg *config.Config) error {
	a.config = cfg

	var (
		manager   data.EntityManager
		paginator data.Paginator
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		memManager, err := data.NewMemEntityManager(domain.Models()...)
		if err != nil {
			return err
		}
		manager, paginator = memManager, memManager
	default:
		db, err := data.OpenSqlite(cfg.Database.DSN, cfg.GormLogLevel())
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return errors.Wrap(err, "sqlite connection pool")
		}
		a.closers = append(a.closers, sqlDB.Close)
		a.db = db
		gormManager := data.NewGormEntityManager(data.NewGormTransactionManager(db))
		manager, paginator = gormManager, gormManager
	}

	var publisher notify.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := notify.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		a.closers = append(a.closers, kafkaPublisher.Close)
		publisher = kafkaPublisher
	} else {
		publisher = notify.NewLogPublisher(logrus.StandardLogger())
	}

	container, err := service.NewContainer(manager, paginator, publisher)
	if err != nil {
		return err
	}
	a.container = container
	logrus.Debugf("entityctl: driver [%s] publisher [%T]", cfg.Database.Driver, publisher)
	return nil
}

// authenticate puts a token for the user into ctx. Operations given a zero
// service.Actor act as that user.
func (a *app) authenticate(ctx context.Context, userID uint) (context.Context, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	user, err := a.container.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.Mark(errors.Newf("user %d not found", userID), service.EntityNotFoundError)
	}
	return auth.WithToken(ctx, auth.NewToken(user)), nil
}

func (a *app) close() error {
	var result error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			result = errors.CombineErrors(result, err)
		}
	}
	a.closers = nil
	return result
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.db == nil {
				logrus.Infof("entityctl migrate: nothing to migrate for driver [%s]", a.config.Database.Driver)
				return nil
			}
			if err := data.Migrate(a.db, domain.Models()...); err != nil {
				return err
			}
			logrus.Infof("entityctl migrate: migrated %d models", len(domain.Models()))
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode output")
	}
	_, err = w.Write(append(out, '\n'))
	return err
}

func printEntities[T domain.Entity](w io.Writer, entities []T) error {
	maps := make([]map[string]any, 0, len(entities))
	for _, e := range entities {
		maps = append(maps, e.ToMap())
	}
	return printJSON(w, maps)
}
