package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/class"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/grade"
	"github.com/trezcool/darasa/core/user"
	logsvc "github.com/trezcool/darasa/services/logger"
	sqlxrepos "github.com/trezcool/darasa/storage/database/sqlx"
	"github.com/trezcool/darasa/storage/database/testutil"
)

var (
	usrRepo user.Repository
	clsRepo class.Repository
	enrRepo enrollment.Repository
	attRepo attendance.Repository
	grdRepo grade.Repository
)

// setup wires a Server on a fresh database and points the package repositories at it.
func setup(t *testing.T, confFuncs ...func(*core.Config)) *echoapi.Server {
	conf := testutil.NewConfig(t)
	conf.Server.DisableRequestLogs = true
	for _, f := range confFuncs {
		f(conf)
	}

	// set up DB & repos
	db := testutil.PrepareDB(t, conf)
	usrRepo = sqlxrepos.NewUserRepository(db)
	clsRepo = sqlxrepos.NewClassRepository(db)
	enrRepo = sqlxrepos.NewEnrollmentRepository(db)
	attRepo = sqlxrepos.NewAttendanceRepository(db)
	grdRepo = sqlxrepos.NewGradeRepository(db)

	// set up validation
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)

	// set up services
	usrSvc := user.NewService(usrRepo)
	clsSvc := class.NewService(db, clsRepo, usrSvc, conf)
	attSvc := attendance.NewService(db, attRepo, clsSvc, usrSvc)
	grdSvc := grade.NewService(db, grdRepo, clsSvc, usrSvc)
	enrSvc := enrollment.NewService(enrRepo, usrSvc, clsSvc, attSvc, grdSvc)

	// set up server
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:          conf,
		Logger:        logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf),
		UserSvc:       usrSvc,
		ClassSvc:      clsSvc,
		EnrollmentSvc: enrSvc,
		AttendanceSvc: attSvc,
		GradeSvc:      grdSvc,
		Validate:      validate,
		Translator:    translator,
	})
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
	extra    interface{}
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

// do sends a request to the app and returns the recorder.
func do(app http.Handler, method, path string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newRequest(method, path, data...)
	app.ServeHTTP(rec, req)
	return rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

// unmarshal decodes a response body into dest.
func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("unmarshal(): %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		assert.JSONEq(t, string(tt.wantData), rec.Body.String())
	}
}

func runTests(t *testing.T, app http.Handler, tests []httpTest) {
	for _, tt := range tests {
		if tt.method == "" {
			tt.method = http.MethodGet
		}
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
