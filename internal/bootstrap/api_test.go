package bootstrap

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/unirecords/internal/pkg/querylog"
	"github.com/yigit/unirecords/internal/pkg/testutil"
)

type envelope struct {
	Data      json.RawMessage  `json:"data"`
	QueryLogs []querylog.Entry `json:"queryLogs"`
	raw       map[string]json.RawMessage
	header    http.Header
}

func newTestAPI(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := testutil.Config(t)
	cfg.Server.Mode = "test"
	lgr := zerolog.Nop()

	database, err := SetupDatabase(cfg, lgr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	router, err := SetupRouter(cfg, BuildDependencies(cfg, database, lgr))
	require.NoError(t, err)
	return router
}

func do(t *testing.T, router http.Handler, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env.raw))
	env.header = rec.Header()
	return rec.Code, env
}

func (e envelope) object(t *testing.T) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(e.Data, &m), string(e.Data))
	return m
}

func TestDepartmentLifecycle(t *testing.T) {
	api := newTestAPI(t)

	status, env := do(t, api, http.MethodPost, "/api/departments/", `{"name":"Computer Science","head":"Dr. Hopper"}`)
	require.Equal(t, http.StatusCreated, status)
	assert.JSONEq(t, `{"id":1,"name":"Computer Science","head":"Dr. Hopper"}`, string(env.Data))
	require.Len(t, env.QueryLogs, 2)
	assert.True(t, strings.HasPrefix(env.QueryLogs[0].SQL, "INSERT INTO departments"), env.QueryLogs[0].SQL)
	assert.Equal(t, []any{"Computer Science", "Dr. Hopper"}, env.QueryLogs[0].Params)
	assert.True(t, strings.HasPrefix(env.QueryLogs[1].SQL, "SELECT"), env.QueryLogs[1].SQL)

	status, env = do(t, api, http.MethodPost, "/api/departments/", `{"name":"Computer Science"}`)
	require.Equal(t, http.StatusConflict, status)
	assert.JSONEq(t, `{"error":"Department name already exists"}`, string(env.Data))
	assert.Len(t, env.QueryLogs, 1, "the rejected insert is still traced")

	status, env = do(t, api, http.MethodGet, "/api/departments/1", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"id":1,"name":"Computer Science","head":"Dr. Hopper"}`, string(env.Data))
	assert.Len(t, env.QueryLogs, 1)

	status, env = do(t, api, http.MethodGet, "/api/departments/", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[{"id":1,"name":"Computer Science","head":"Dr. Hopper"}]`, string(env.Data))
	assert.Len(t, env.QueryLogs, 1)

	status, env = do(t, api, http.MethodDelete, "/api/departments/1", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"Department deleted successfully"}`, string(env.Data))
	assert.Len(t, env.QueryLogs, 2)

	status, env = do(t, api, http.MethodGet, "/api/departments/1", "")
	require.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"error":"Department not found"}`, string(env.Data))
	assert.Len(t, env.QueryLogs, 1)
}

func TestEmptyListAndTraceShape(t *testing.T) {
	api := newTestAPI(t)

	status, env := do(t, api, http.MethodGet, "/api/students/", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "[]", string(env.Data))
	require.Len(t, env.QueryLogs, 1)

	var logs []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env.raw["queryLogs"], &logs))
	assert.Equal(t, "[]", string(logs[0]["params"]), "params is never null")
	assert.Contains(t, logs[0], "duration")
	assert.Contains(t, logs[0], "sql")
}

func TestValidationFailuresTouchNoStore(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		status  int
		message string
	}{
		{"empty object", http.MethodPost, "/api/students/", `{}`, http.StatusBadRequest, "Missing required fields"},
		{"no body", http.MethodPost, "/api/faculty/", ``, http.StatusBadRequest, "Missing required fields"},
		{"null required field", http.MethodPost, "/api/courses/", `{"code":"CS1","name":"Intro","credits":null}`, http.StatusBadRequest, "Missing required fields"},
		{"missing natural key", http.MethodPost, "/api/courses/", `{"name":"Intro","credits":3}`, http.StatusBadRequest, "Missing required fields"},
		{"malformed json", http.MethodPost, "/api/departments/", `{"name":`, http.StatusBadRequest, "Invalid request body"},
		{"array body", http.MethodPost, "/api/departments/", `[1,2]`, http.StatusBadRequest, "Invalid request body"},
		{"update without data", http.MethodPut, "/api/departments/1", `{}`, http.StatusBadRequest, "No data provided"},
		{"update without body", http.MethodPut, "/api/enrollments/1", ``, http.StatusBadRequest, "No data provided"},
		{"malformed integer key", http.MethodGet, "/api/students/abc", ``, http.StatusNotFound, "Student not found"},
		{"malformed key on delete", http.MethodDelete, "/api/faculty/1.5", ``, http.StatusNotFound, "Faculty member not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, api, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, env.object(t)["error"])
			assert.Empty(t, env.QueryLogs)
			assert.Equal(t, "[]", string(env.raw["queryLogs"]))
		})
	}
}

func TestStudentPartialUpdate(t *testing.T) {
	api := newTestAPI(t)

	status, _ := do(t, api, http.MethodPost, "/api/departments/", `{"name":"Mathematics"}`)
	require.Equal(t, http.StatusCreated, status)

	status, env := do(t, api, http.MethodPost, "/api/students/",
		`{"firstName":"Ada","lastName":"Lovelace","email":"ada@uni.edu","phone":"555-0100","departmentId":1,"enrollmentYear":2023}`)
	require.Equal(t, http.StatusCreated, status)
	assert.JSONEq(t, `{"id":1,"firstName":"Ada","lastName":"Lovelace","email":"ada@uni.edu","phone":"555-0100","departmentId":1,"enrollmentYear":2023}`, string(env.Data))

	status, env = do(t, api, http.MethodPut, "/api/students/1", `{"phone":"555-0199"}`)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"id":1,"firstName":"Ada","lastName":"Lovelace","email":"ada@uni.edu","phone":"555-0199","departmentId":1,"enrollmentYear":2023}`, string(env.Data))
	require.Len(t, env.QueryLogs, 3)
	assert.True(t, strings.HasPrefix(env.QueryLogs[1].SQL, "UPDATE students SET"), env.QueryLogs[1].SQL)

	status, env = do(t, api, http.MethodPut, "/api/students/1", `{"phone":null,"enrollmentYear":2024}`)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"id":1,"firstName":"Ada","lastName":"Lovelace","email":"ada@uni.edu","phone":null,"departmentId":1,"enrollmentYear":2024}`, string(env.Data))

	status, env = do(t, api, http.MethodPut, "/api/students/99", `{"phone":"1"}`)
	require.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Student not found", env.object(t)["error"])
	assert.Len(t, env.QueryLogs, 1)

	// optional fields omitted on create are stored as null
	status, env = do(t, api, http.MethodPost, "/api/students/", `{"firstName":"Alan","lastName":"Turing","email":"alan@uni.edu"}`)
	require.Equal(t, http.StatusCreated, status)
	assert.JSONEq(t, `{"id":2,"firstName":"Alan","lastName":"Turing","email":"alan@uni.edu","phone":null,"departmentId":null,"enrollmentYear":null}`, string(env.Data))
}

func TestEmailConflicts(t *testing.T) {
	api := newTestAPI(t)

	for _, plural := range []string{"students", "faculty"} {
		body := `{"firstName":"Grace","lastName":"Hopper","email":"grace@uni.edu"}`
		status, _ := do(t, api, http.MethodPost, "/api/"+plural+"/", body)
		require.Equal(t, http.StatusCreated, status, plural)

		status, env := do(t, api, http.MethodPost, "/api/"+plural+"/", body)
		require.Equal(t, http.StatusConflict, status, plural)
		assert.Equal(t, "Email already exists", env.object(t)["error"])
	}

	// updating into an existing email conflicts as well
	status, _ := do(t, api, http.MethodPost, "/api/students/", `{"firstName":"Alan","lastName":"Turing","email":"alan@uni.edu"}`)
	require.Equal(t, http.StatusCreated, status)
	status, env := do(t, api, http.MethodPut, "/api/students/2", `{"email":"grace@uni.edu"}`)
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Email already exists", env.object(t)["error"])
	assert.Len(t, env.QueryLogs, 2, "lookup and rejected write")
}

func TestUpdateConflicts(t *testing.T) {
	tests := []struct {
		plural  string
		first   string
		second  string
		update  string
		message string
	}{
		{"departments", `{"name":"Physics"}`, `{"name":"Chemistry"}`, `{"name":"Physics"}`, "Department name already exists"},
		{"faculty", `{"firstName":"Grace","lastName":"Hopper","email":"grace@uni.edu"}`, `{"firstName":"Carl","lastName":"Gauss","email":"carl@uni.edu"}`, `{"email":"grace@uni.edu"}`, "Email already exists"},
	}
	for _, tt := range tests {
		t.Run(tt.plural, func(t *testing.T) {
			api := newTestAPI(t)
			collection := "/api/" + tt.plural + "/"

			status, _ := do(t, api, http.MethodPost, collection, tt.first)
			require.Equal(t, http.StatusCreated, status)
			status, env := do(t, api, http.MethodPost, collection, tt.second)
			require.Equal(t, http.StatusCreated, status)
			before := string(env.Data)

			status, env = do(t, api, http.MethodPut, collection+"2", tt.update)
			require.Equal(t, http.StatusConflict, status)
			assert.Equal(t, tt.message, env.object(t)["error"])
			assert.Len(t, env.QueryLogs, 2, "lookup and rejected write")

			status, env = do(t, api, http.MethodGet, collection+"2", "")
			require.Equal(t, http.StatusOK, status)
			assert.JSONEq(t, before, string(env.Data), "a rejected update changes nothing")
		})
	}
}

// TestResourceLifecycle walks every resource through create, get, partial
// update, unchanged update, delete and get.
func TestResourceLifecycle(t *testing.T) {
	tests := []struct {
		plural  string
		name    string
		key     string
		setup   []string
		create  string
		partial string
		changed map[string]any
	}{
		{
			plural:  "departments",
			name:    "Department",
			key:     "1",
			create:  `{"name":"Physics","head":"Dr. Curie"}`,
			partial: `{"head":"Dr. Bohr"}`,
			changed: map[string]any{"head": "Dr. Bohr"},
		},
		{
			plural:  "students",
			name:    "Student",
			key:     "1",
			create:  `{"firstName":"Ada","lastName":"Lovelace","email":"ada@uni.edu","phone":"555-0100","enrollmentYear":2023}`,
			partial: `{"enrollmentYear":2024}`,
			changed: map[string]any{"enrollmentYear": float64(2024)},
		},
		{
			plural:  "faculty",
			name:    "Faculty member",
			key:     "1",
			create:  `{"firstName":"Grace","lastName":"Hopper","email":"grace@uni.edu","designation":"Lecturer"}`,
			partial: `{"designation":"Professor"}`,
			changed: map[string]any{"designation": "Professor"},
		},
		{
			plural:  "courses",
			name:    "Course",
			key:     "CS101",
			create:  `{"code":"CS101","name":"Intro to Programming","credits":3}`,
			partial: `{"name":"Programming I"}`,
			changed: map[string]any{"name": "Programming I"},
		},
		{
			plural: "enrollments",
			name:   "Enrollment",
			key:    "1",
			setup: []string{
				"/api/students/", `{"firstName":"Ada","lastName":"Lovelace","email":"ada@uni.edu"}`,
				"/api/courses/", `{"code":"CS101","name":"Intro to Programming","credits":3}`,
			},
			create:  `{"studentId":1,"courseCode":"CS101","grade":"B"}`,
			partial: `{"grade":"A"}`,
			changed: map[string]any{"grade": "A"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.plural, func(t *testing.T) {
			api := newTestAPI(t)
			for i := 0; i < len(tt.setup); i += 2 {
				status, _ := do(t, api, http.MethodPost, tt.setup[i], tt.setup[i+1])
				require.Equal(t, http.StatusCreated, status, tt.setup[i])
			}
			item := "/api/" + tt.plural + "/" + tt.key

			status, env := do(t, api, http.MethodPost, "/api/"+tt.plural+"/", tt.create)
			require.Equal(t, http.StatusCreated, status)
			assert.Len(t, env.QueryLogs, 2)
			created := env.object(t)

			status, env = do(t, api, http.MethodGet, item, "")
			require.Equal(t, http.StatusOK, status)
			assert.Len(t, env.QueryLogs, 1)
			assert.Equal(t, created, env.object(t))

			status, env = do(t, api, http.MethodPut, item, tt.partial)
			require.Equal(t, http.StatusOK, status)
			assert.Len(t, env.QueryLogs, 3)
			updated := env.object(t)
			want := map[string]any{}
			for k, v := range created {
				want[k] = v
			}
			for k, v := range tt.changed {
				want[k] = v
			}
			assert.Equal(t, want, updated, "only the supplied fields change")

			// writing back the stored record leaves it as is
			status, env = do(t, api, http.MethodPut, item, string(env.Data))
			require.Equal(t, http.StatusOK, status)
			assert.Len(t, env.QueryLogs, 3)
			assert.Equal(t, updated, env.object(t))

			status, env = do(t, api, http.MethodDelete, item, "")
			require.Equal(t, http.StatusOK, status)
			assert.Len(t, env.QueryLogs, 2)
			assert.Equal(t, tt.name+" deleted successfully", env.object(t)["message"])

			status, env = do(t, api, http.MethodGet, item, "")
			require.Equal(t, http.StatusNotFound, status)
			assert.Len(t, env.QueryLogs, 1)
			assert.Equal(t, tt.name+" not found", env.object(t)["error"])
		})
	}
}

func TestCourseNaturalKey(t *testing.T) {
	api := newTestAPI(t)

	status, env := do(t, api, http.MethodPost, "/api/courses/", `{"code":"CS101","name":"Intro to Programming","credits":0}`)
	require.Equal(t, http.StatusCreated, status)
	assert.JSONEq(t, `{"code":"CS101","name":"Intro to Programming","credits":0,"description":null,"departmentId":null,"facultyId":null}`, string(env.Data))
	assert.Len(t, env.QueryLogs, 2)

	status, env = do(t, api, http.MethodPost, "/api/courses/", `{"code":"CS101","name":"Again","credits":3}`)
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Course code already exists", env.object(t)["error"])

	status, env = do(t, api, http.MethodPut, "/api/courses/CS101", `{"credits":4,"description":"Basics"}`)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"code":"CS101","name":"Intro to Programming","credits":4,"description":"Basics","departmentId":null,"facultyId":null}`, string(env.Data))
	assert.Len(t, env.QueryLogs, 3)

	status, env = do(t, api, http.MethodGet, "/api/courses/NOPE", "")
	require.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Course not found", env.object(t)["error"])

	status, env = do(t, api, http.MethodDelete, "/api/courses/CS101", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Course deleted successfully", env.object(t)["message"])
}

func TestEnrollmentLifecycle(t *testing.T) {
	api := newTestAPI(t)

	status, _ := do(t, api, http.MethodPost, "/api/students/", `{"firstName":"Ada","lastName":"Lovelace","email":"ada@uni.edu"}`)
	require.Equal(t, http.StatusCreated, status)
	status, _ = do(t, api, http.MethodPost, "/api/courses/", `{"code":"MATH201","name":"Linear Algebra","credits":3}`)
	require.Equal(t, http.StatusCreated, status)

	status, env := do(t, api, http.MethodPost, "/api/enrollments/", `{"studentId":1,"courseCode":"MATH201"}`)
	require.Equal(t, http.StatusCreated, status)
	record := env.object(t)
	assert.Equal(t, float64(1), record["id"])
	assert.Equal(t, float64(1), record["studentId"])
	assert.Equal(t, "MATH201", record["courseCode"])
	assert.Nil(t, record["grade"])
	assert.NotEmpty(t, record["enrolledAt"], "stamped by the store")

	// the same student may enroll in a course more than once
	status, env = do(t, api, http.MethodPost, "/api/enrollments/", `{"studentId":1,"courseCode":"MATH201","grade":"B"}`)
	require.Equal(t, http.StatusCreated, status)
	second := env.object(t)
	assert.Equal(t, float64(2), second["id"])
	assert.Equal(t, "B", second["grade"])
	assert.Len(t, env.QueryLogs, 2)

	status, env = do(t, api, http.MethodPut, "/api/enrollments/1", `{"grade":"A","enrolledAt":"2000-01-01T00:00:00Z"}`)
	require.Equal(t, http.StatusOK, status)
	updated := env.object(t)
	assert.Equal(t, "A", updated["grade"])
	assert.Equal(t, record["enrolledAt"], updated["enrolledAt"], "read-only fields are never written")

	// deleting the course cascades to its enrollments
	status, _ = do(t, api, http.MethodDelete, "/api/courses/MATH201", "")
	require.Equal(t, http.StatusOK, status)
	status, env = do(t, api, http.MethodGet, "/api/enrollments/1", "")
	require.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Enrollment not found", env.object(t)["error"])
	status, _ = do(t, api, http.MethodGet, "/api/enrollments/2", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStoreErrorsSurfaceDriverText(t *testing.T) {
	api := newTestAPI(t)

	status, env := do(t, api, http.MethodPost, "/api/enrollments/", `{"studentId":42,"courseCode":"NOPE"}`)
	require.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, env.object(t)["error"], "FOREIGN KEY constraint failed")
	assert.Len(t, env.QueryLogs, 1)
}

func TestDepartmentDeleteNullsReferences(t *testing.T) {
	api := newTestAPI(t)

	status, _ := do(t, api, http.MethodPost, "/api/departments/", `{"name":"Physics"}`)
	require.Equal(t, http.StatusCreated, status)
	status, _ = do(t, api, http.MethodPost, "/api/faculty/", `{"firstName":"Marie","lastName":"Curie","email":"marie@uni.edu","departmentId":1}`)
	require.Equal(t, http.StatusCreated, status)

	status, _ = do(t, api, http.MethodDelete, "/api/departments/1", "")
	require.Equal(t, http.StatusOK, status)

	status, env := do(t, api, http.MethodGet, "/api/faculty/1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, env.object(t)["departmentId"])
}

func TestAuxiliaryRoutes(t *testing.T) {
	api := newTestAPI(t)

	status, env := do(t, api, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"Backend server is running!"}`, string(env.Data))
	assert.Equal(t, "[]", string(env.raw["queryLogs"]))
	assert.NotEmpty(t, env.header.Get("X-Request-ID"))

	status, env = do(t, api, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))

	status, env = do(t, api, http.MethodGet, "/api/unknown", "")
	require.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"error":"Not found"}`, string(env.Data))

	status, env = do(t, api, http.MethodPatch, "/api/departments/", `{}`)
	require.Equal(t, http.StatusMethodNotAllowed, status)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, string(env.Data))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "unirecords_http_requests_total")

	req = httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	rec = httptest.NewRecorder()
	api.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/departments/")
}

func TestRequestIDIsEchoed(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}
