package dig_container

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/class"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/grade"
	"github.com/trezcool/darasa/core/user"
	logsvc "github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/database"
	sqlxrepos "github.com/trezcool/darasa/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

// newDB opens and migrates the database. The same handle is provided as *sqlx.DB (to close it),
// core.DB (for transactions) and core.DBExecutor (for repositories).
func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, core.DB, core.DBExecutor) {
	setUp := func() (*sqlx.DB, error) {
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(db, conf.Database.Engine); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db, db
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// newValidator returns a validator with every domain's custom validations registered.
func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)
	return validate
}

func newServerDeps(
	conf *core.Config,
	logger core.Logger,
	usrSvc *user.Service,
	clsSvc *class.Service,
	enrSvc *enrollment.Service,
	attSvc *attendance.Service,
	grdSvc *grade.Service,
	validate *validator.Validate,
	translator ut.Translator,
) echoapi.ServerDeps {
	return echoapi.ServerDeps{
		Conf:          conf,
		Logger:        logger,
		UserSvc:       usrSvc,
		ClassSvc:      clsSvc,
		EnrollmentSvc: enrSvc,
		AttendanceSvc: attSvc,
		GradeSvc:      grdSvc,
		Validate:      validate,
		Translator:    translator,
	}
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newTranslator))
	must(c.Provide(newValidator))

	// repositories
	must(c.Provide(sqlxrepos.NewUserRepository, dig.As(new(user.Repository))))
	must(c.Provide(sqlxrepos.NewClassRepository, dig.As(new(class.Repository))))
	must(c.Provide(sqlxrepos.NewEnrollmentRepository, dig.As(new(enrollment.Repository))))
	must(c.Provide(sqlxrepos.NewAttendanceRepository, dig.As(new(attendance.Repository))))
	must(c.Provide(sqlxrepos.NewGradeRepository, dig.As(new(grade.Repository))))

	// services
	must(c.Provide(user.NewService))
	must(c.Provide(class.NewService))
	must(c.Provide(attendance.NewService))
	must(c.Provide(grade.NewService))
	must(c.Provide(enrollment.NewService))

	must(c.Provide(newServerDeps))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
