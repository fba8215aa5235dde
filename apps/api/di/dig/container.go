package dig_container

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/masomo-roster/apps/api/echo"
	"github.com/trezcool/masomo-roster/core"
	"github.com/trezcool/masomo-roster/core/student"
	logsvc "github.com/trezcool/masomo-roster/services/logger"
	"github.com/trezcool/masomo-roster/storage/database"
	inmemdb "github.com/trezcool/masomo-roster/storage/database/inmem"
	sqlxrepos "github.com/trezcool/masomo-roster/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	return logsvc.NewLogger("API", conf, log.LstdFlags)
}

func newDBLogger(conf *core.Config) core.Logger {
	return logsvc.NewLogger("DB", conf, log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
}

// newDB opens postgres when database.url is set. A nil *sqlx.DB means the in-memory store.
func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	if conf.Database.URL == "" {
		loggerParam.Logger.Info("database.url not set: students are kept in memory")
		return nil
	}

	setUp := func() (*sqlx.DB, error) {
		ctx := context.Background()
		db, err := database.Open(ctx, conf.Database.URL)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newStudentRepository(db *sqlx.DB) student.Repository {
	if db == nil {
		return inmemdb.NewStudentRepository(inmemdb.Open())
	}
	return sqlxrepos.NewStudentRepository(db)
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newStudentRepository))
	must(c.Provide(student.NewService, dig.As(new(student.ServiceInterface))))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(student.NewValidator))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
