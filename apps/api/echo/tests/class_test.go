package tests

import (
	"context"
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/class"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/storage/database/testutil"
)

var classCodeRegex = regexp.MustCompile(`^[A-Z0-9]{1,4}-[A-Z0-9]{6}$`)

func Test_classApi_create(t *testing.T) {
	app := setup(t)
	path := "/api/classes"

	teacher := testutil.CreateUser(t, usrRepo, "Mrs Smith", "smith", "", user.RoleTeacher)
	student := testutil.CreateUser(t, usrRepo, "Amy Pond", "amy", "", user.RoleStudent)

	rec := do(app, http.MethodPost, path, marchallObj(t, class.NewClass{
		TeacherID:   teacher.ID,
		Name:        " Algebra I ",
		Subject:     "Math ematics",
		Description: "Linear equations",
		GradeLevel:  "Grade 9",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var cls class.Class
	unmarshal(t, rec, &cls)
	assert.NotEmpty(t, cls.ID)
	assert.Equal(t, "Algebra I", cls.Name)
	assert.Equal(t, null.StringFrom("Linear equations"), cls.Description)
	assert.Equal(t, teacher.ID, cls.TeacherID)
	assert.Regexp(t, classCodeRegex, cls.ClassCode)
	assert.Equal(t, "MATH-", cls.ClassCode[:5])

	// optional description is null
	rec = do(app, http.MethodPost, path, marchallObj(t, class.NewClass{
		TeacherID: teacher.ID, Name: "Art", Subject: "Art", GradeLevel: "Grade 9",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var art map[string]interface{}
	unmarshal(t, rec, &art)
	assert.Nil(t, art["description"])
	assert.Regexp(t, `^ART-[A-Z0-9]{6}$`, art["classCode"])

	// punctuation never reaches the code
	rec = do(app, http.MethodPost, path, marchallObj(t, class.NewClass{
		TeacherID: teacher.ID, Name: "Intro to C++", Subject: "C++ Programming", GradeLevel: "Grade 11",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var cpp class.Class
	unmarshal(t, rec, &cpp)
	assert.Regexp(t, classCodeRegex, cpp.ClassCode)
	assert.Equal(t, "CPRO-", cpp.ClassCode[:5])

	tests := []httpTest{
		{
			name: "required fields", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"teacherId":  "this field is required",
				"name":       "this field is required",
				"subject":    "this field is required",
				"gradeLevel": "this field is required",
			}),
		},
		{
			name: "unknown teacher", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, class.NewClass{TeacherID: "lol", Name: "X", Subject: "Y", GradeLevel: "Z"}),
			wantData: marchallObj(t, map[string]string{"teacherId": "teacher not found"}),
		},
		{
			name: "student as teacher", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, class.NewClass{TeacherID: student.ID, Name: "X", Subject: "Y", GradeLevel: "Z"}),
			wantData: marchallObj(t, map[string]string{"teacherId": "teacher not found"}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = path
	}
	runTests(t, app, tests)
}

func Test_classApi_query(t *testing.T) {
	app := setup(t)

	smith := testutil.CreateUser(t, usrRepo, "Mrs Smith", "smith", "", user.RoleTeacher)
	jones := testutil.CreateUser(t, usrRepo, "Mr Jones", "jones", "", user.RoleTeacher)
	algebra := testutil.CreateClass(t, clsRepo, smith.ID, "Algebra", "Mathematics", "MATH-AAAAAA")
	biology := testutil.CreateClass(t, clsRepo, smith.ID, "Biology", "Science", "SCIE-BBBBBB")
	chemistry := testutil.CreateClass(t, clsRepo, jones.ID, "Chemistry", "Science", "SCIE-CCCCCC")

	runTests(t, app, []httpTest{
		{name: "by teacher", path: "/api/classes?teacherId=" + smith.ID + "&ordering=name", wantData: marchallList(t, algebra, biology)},
		{name: "search subject", path: "/api/classes?search=science&ordering=-name", wantData: marchallList(t, chemistry, biology)},
		{name: "by teacher (unknown)", path: "/api/classes?teacherId=lol", wantData: marchallList(t)},
		{name: "retrieve", path: "/api/classes/" + algebra.ID, wantData: marchallObj(t, algebra)},
		{
			name: "retrieve (unknown)", path: "/api/classes/lol", wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "class not found"}),
		},
	})
}

func Test_classApi_update(t *testing.T) {
	app := setup(t)

	smith := testutil.CreateUser(t, usrRepo, "Mrs Smith", "smith", "", user.RoleTeacher)
	algebra := testutil.CreateClass(t, clsRepo, smith.ID, "Algebra", "Mathematics", "MATH-AAAAAA")

	updated := algebra
	updated.Name = "Algebra II"
	updated.Description = null.StringFrom("Quadratics")

	rec := do(app, http.MethodPut, "/api/classes/"+algebra.ID, []byte(`{"name":" Algebra II ","subject":"","description":"Quadratics"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, string(marchallObj(t, updated)), rec.Body.String())

	stored, err := clsRepo.GetClass(context.Background(), class.GetFilter{ID: algebra.ID})
	require.NoError(t, err)
	assert.Equal(t, updated, stored)

	// empty description clears it
	rec = do(app, http.MethodPut, "/api/classes/"+algebra.ID, []byte(`{"description":""}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stored, err = clsRepo.GetClass(context.Background(), class.GetFilter{ID: algebra.ID})
	require.NoError(t, err)
	assert.False(t, stored.Description.Valid)
	assert.Equal(t, "MATH-AAAAAA", stored.ClassCode)

	rec = do(app, http.MethodPut, "/api/classes/lol", []byte(`{"name":"X"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_classApi_delete(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	smith := testutil.CreateUser(t, usrRepo, "Mrs Smith", "smith", "", user.RoleTeacher)
	amy := testutil.CreateUser(t, usrRepo, "Amy Pond", "amy", "", user.RoleStudent)
	algebra := testutil.CreateClass(t, clsRepo, smith.ID, "Algebra", "Mathematics", "MATH-AAAAAA")
	testutil.Enroll(t, enrRepo, amy.ID, algebra.ID)
	quiz := testutil.CreateAssessment(t, grdRepo, algebra.ID, "Quiz", "2024-05-01")

	rec := do(app, http.MethodPost, "/api/assessments/"+quiz.ID+"/grades", []byte(`{"studentId":"`+amy.ID+`","score":9.5}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = do(app, http.MethodPost, "/api/classes/"+algebra.ID+"/attendance", []byte(`{"studentId":"`+amy.ID+`","date":"2024-05-01","status":"present"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	runTests(t, app, []httpTest{
		{
			name: "delete", method: http.MethodDelete, path: "/api/classes/" + algebra.ID,
			wantData: []byte(`{"success":"Class deleted."}`),
		},
		{
			name: "delete again", method: http.MethodDelete, path: "/api/classes/" + algebra.ID,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "class not found"}),
		},
	})

	students, err := enrRepo.QueryClassStudents(ctx, algebra.ID)
	require.NoError(t, err)
	assert.Empty(t, students)
	records, err := attRepo.QueryAttendance(ctx, attendance.QueryFilter{StudentID: amy.ID})
	require.NoError(t, err)
	assert.Empty(t, records)
	_, err = grdRepo.GetAssessment(ctx, quiz.ID)
	assert.True(t, core.IsNotFound(err))
}

func Test_classApi_students(t *testing.T) {
	app := setup(t)

	smith := testutil.CreateUser(t, usrRepo, "Mrs Smith", "smith", "", user.RoleTeacher)
	rory := testutil.CreateUser(t, usrRepo, "Rory Williams", "rory", "", user.RoleStudent)
	amy := testutil.CreateUser(t, usrRepo, "Amy Pond", "amy", "", user.RoleStudent)
	algebra := testutil.CreateClass(t, clsRepo, smith.ID, "Algebra", "Mathematics", "MATH-AAAAAA")
	empty := testutil.CreateClass(t, clsRepo, smith.ID, "Empty", "Nothing", "NOTH-AAAAAA")
	testutil.Enroll(t, enrRepo, rory.ID, algebra.ID)
	testutil.Enroll(t, enrRepo, amy.ID, algebra.ID)

	runTests(t, app, []httpTest{
		{name: "enrolled", path: "/api/classes/" + algebra.ID + "/students", wantData: marchallList(t, amy, rory)},
		{name: "none", path: "/api/classes/" + empty.ID + "/students", wantData: marchallList(t)},
		{name: "unknown class", path: "/api/classes/lol/students", wantCode: http.StatusNotFound},
	})
}
