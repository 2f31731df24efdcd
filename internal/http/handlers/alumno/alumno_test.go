package alumno

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/config"
	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/storage/sqlite"
	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/types"
)

// fakeMedia satisfies media.Store without a running MinIO.
type fakeMedia struct {
	objects map[string][]byte
}

func (f *fakeMedia) Upload(_ context.Context, name, _ string, r io.Reader, _ int64) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[name] = b
	return "http://fotos.local/fotos-perfil/" + name, nil
}

// fakeNotifier records what was published.
type fakeNotifier struct {
	subject string
	message string
	err     error
}

func (f *fakeNotifier) Publish(_ context.Context, subject, message string) error {
	if f.err != nil {
		return f.err
	}
	f.subject = subject
	f.message = message
	return nil
}

func newTestRouter(t *testing.T, m *fakeMedia, n *fakeNotifier) *http.ServeMux {
	t.Helper()
	cfg := &config.Config{StoragePath: filepath.Join(t.TempDir(), "test.db")}
	st, err := sqlite.New(cfg)
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	t.Cleanup(func() { st.Db.Close() })

	router := http.NewServeMux()
	router.HandleFunc("POST /alumnos", New(st))
	router.HandleFunc("GET /alumnos", GetList(st))
	router.HandleFunc("GET /alumnos/{id}", GetByID(st))
	router.HandleFunc("PUT /alumnos/{id}", Update(st))
	router.HandleFunc("DELETE /alumnos/{id}", Delete(st))
	router.HandleFunc("DELETE /alumnos", DeleteAll())
	router.HandleFunc("POST /alumnos/{id}/fotoPerfil", FotoPerfil(st, m))
	router.HandleFunc("POST /alumnos/{id}/email", Email(st, n))
	return router
}

func doJSON(t *testing.T, router *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeAlumno(t *testing.T, body *bytes.Buffer) types.Alumno {
	t.Helper()
	var a types.Alumno
	if err := json.NewDecoder(body).Decode(&a); err != nil {
		t.Fatalf("decode alumno response: %v", err)
	}
	return a
}

const anaJSON = `{"nombres":"Ana","apellidos":"Lopez","matricula":"A001","promedio":9.5}`

// Full lifecycle: POST → GET same object → DELETE → GET 404.
func TestAlumnoLifecycle(t *testing.T) {
	router := newTestRouter(t, &fakeMedia{}, &fakeNotifier{})

	rec := doJSON(t, router, http.MethodPost, "/alumnos", anaJSON)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST: expected 201, got %d (%s)", rec.Code, rec.Body)
	}
	created := decodeAlumno(t, rec.Body)
	if created.ID == 0 {
		t.Fatal("POST response must carry the assigned id")
	}
	if created.Nombres != "Ana" || created.Matricula != "A001" || *created.Promedio != 9.5 {
		t.Errorf("POST response differs from payload: %+v", created)
	}

	path := fmt.Sprintf("/alumnos/%d", created.ID)

	rec = doJSON(t, router, http.MethodGet, path, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET: expected 200, got %d", rec.Code)
	}
	got := decodeAlumno(t, rec.Body)
	if got.ID != created.ID || got.Nombres != created.Nombres ||
		got.Apellidos != created.Apellidos || got.Matricula != created.Matricula ||
		*got.Promedio != *created.Promedio {
		t.Errorf("GET must return the POST response object:\n post: %+v\n  get: %+v", created, got)
	}

	rec = doJSON(t, router, http.MethodDelete, path, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, path, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET after DELETE: expected 404, got %d", rec.Code)
	}
}

func TestAlumnoValidation(t *testing.T) {
	router := newTestRouter(t, &fakeMedia{}, &fakeNotifier{})

	cases := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"missing nombres", `{"apellidos":"Lopez","matricula":"A001","promedio":9.5}`},
		{"empty apellidos", `{"nombres":"Ana","apellidos":"","matricula":"A001","promedio":9.5}`},
		{"missing promedio", `{"nombres":"Ana","apellidos":"Lopez","matricula":"A001"}`},
		{"negative promedio", `{"nombres":"Ana","apellidos":"Lopez","matricula":"A001","promedio":-1}`},
		{"numeric matricula", `{"nombres":"Ana","apellidos":"Lopez","matricula":123,"promedio":9.5}`},
		{"string promedio", `{"nombres":"Ana","apellidos":"Lopez","matricula":"A001","promedio":"9.5"}`},
	}

	for _, tc := range cases {
		rec := doJSON(t, router, http.MethodPost, "/alumnos", tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d (%s)", tc.name, rec.Code, rec.Body)
		}
	}

	// Nothing must have been written.
	rec := doJSON(t, router, http.MethodGet, "/alumnos", "")
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("rejected POSTs must not write: expected [], got %s", body)
	}
}

func TestAlumnoUpdateInvalidLeavesRecordUnchanged(t *testing.T) {
	router := newTestRouter(t, &fakeMedia{}, &fakeNotifier{})

	rec := doJSON(t, router, http.MethodPost, "/alumnos", anaJSON)
	created := decodeAlumno(t, rec.Body)
	path := fmt.Sprintf("/alumnos/%d", created.ID)

	// Missing matricula: must 400 and leave the stored entity intact.
	rec = doJSON(t, router, http.MethodPut, path,
		`{"nombres":"Cambiada","apellidos":"Lopez","promedio":1.0}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid PUT: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, path, "")
	got := decodeAlumno(t, rec.Body)
	if got.Nombres != "Ana" || *got.Promedio != 9.5 {
		t.Errorf("invalid PUT must not modify the record: %+v", got)
	}
}

func TestAlumnoUpdate(t *testing.T) {
	router := newTestRouter(t, &fakeMedia{}, &fakeNotifier{})

	rec := doJSON(t, router, http.MethodPost, "/alumnos", anaJSON)
	created := decodeAlumno(t, rec.Body)

	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/alumnos/%d", created.ID),
		`{"nombres":"Ana Maria","apellidos":"Lopez","matricula":"A001","promedio":8.0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT: expected 200, got %d (%s)", rec.Code, rec.Body)
	}
	updated := decodeAlumno(t, rec.Body)
	if updated.Nombres != "Ana Maria" || *updated.Promedio != 8.0 {
		t.Errorf("PUT must return the replaced entity: %+v", updated)
	}

	rec = doJSON(t, router, http.MethodPut, "/alumnos/999",
		`{"nombres":"X","apellidos":"Y","matricula":"Z9","promedio":1}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("PUT unknown id: expected 404, got %d", rec.Code)
	}
}

func TestAlumnoDuplicateMatriculaIsClientError(t *testing.T) {
	router := newTestRouter(t, &fakeMedia{}, &fakeNotifier{})

	doJSON(t, router, http.MethodPost, "/alumnos", anaJSON)
	rec := doJSON(t, router, http.MethodPost, "/alumnos",
		`{"nombres":"Otra","apellidos":"Alumna","matricula":"A001","promedio":7}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate matricula: expected 400, got %d (%s)", rec.Code, rec.Body)
	}
}

func TestAlumnoDeleteEdgeCases(t *testing.T) {
	router := newTestRouter(t, &fakeMedia{}, &fakeNotifier{})

	rec := doJSON(t, router, http.MethodDelete, "/alumnos/42", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("DELETE unknown id: expected 404, got %d", rec.Code)
	}

	// Bulk delete is always 405, empty or not.
	rec = doJSON(t, router, http.MethodDelete, "/alumnos", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE collection: expected 405, got %d", rec.Code)
	}

	doJSON(t, router, http.MethodPost, "/alumnos", anaJSON)
	rec = doJSON(t, router, http.MethodDelete, "/alumnos", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE non-empty collection: expected 405, got %d", rec.Code)
	}
}

func TestAlumnoPasswordNeverReturned(t *testing.T) {
	router := newTestRouter(t, &fakeMedia{}, &fakeNotifier{})

	rec := doJSON(t, router, http.MethodPost, "/alumnos",
		`{"nombres":"Ana","apellidos":"Lopez","matricula":"A001","promedio":9.5,"password":"Secreta123"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST: expected 201, got %d (%s)", rec.Code, rec.Body)
	}
	if strings.Contains(rec.Body.String(), "Secreta123") ||
		strings.Contains(rec.Body.String(), "password") {
		t.Errorf("password must not appear in any response: %s", rec.Body)
	}

	created := decodeAlumno(t, rec.Body)
	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/alumnos/%d", created.ID), "")
	if strings.Contains(rec.Body.String(), "password") {
		t.Errorf("password must not appear on GET either: %s", rec.Body)
	}
}

func TestFotoPerfil(t *testing.T) {
	m := &fakeMedia{}
	router := newTestRouter(t, m, &fakeNotifier{})

	rec := doJSON(t, router, http.MethodPost, "/alumnos", anaJSON)
	created := decodeAlumno(t, rec.Body)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("foto", "perfil.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write([]byte("fake-png-bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/alumnos/%d/fotoPerfil", created.ID), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	recU := httptest.NewRecorder()
	router.ServeHTTP(recU, req)

	if recU.Code != http.StatusOK {
		t.Fatalf("fotoPerfil: expected 200, got %d (%s)", recU.Code, recU.Body)
	}

	var resp struct {
		FotoPerfilURL string       `json:"fotoPerfilUrl"`
		Alumno        types.Alumno `json:"alumno"`
	}
	if err := json.NewDecoder(recU.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.FotoPerfilURL == "" || resp.Alumno.FotoPerfilURL != resp.FotoPerfilURL {
		t.Errorf("url must be returned and stored on the alumno: %+v", resp)
	}
	if !strings.Contains(resp.FotoPerfilURL, "perfil.png") {
		t.Errorf("object name must keep the original filename: %s", resp.FotoPerfilURL)
	}
	if len(m.objects) != 1 {
		t.Errorf("expected exactly one uploaded object, got %d", len(m.objects))
	}
	for _, b := range m.objects {
		if string(b) != "fake-png-bytes" {
			t.Errorf("uploaded bytes corrupted: %q", b)
		}
	}
}

func TestFotoPerfilErrors(t *testing.T) {
	router := newTestRouter(t, &fakeMedia{}, &fakeNotifier{})

	// Unknown alumno: 404 before any upload happens.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("foto", "perfil.png")
	fw.Write([]byte("x"))
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/alumnos/99/fotoPerfil", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown alumno: expected 404, got %d", rec.Code)
	}

	// Known alumno but no file part: 400.
	recP := doJSON(t, router, http.MethodPost, "/alumnos", anaJSON)
	created := decodeAlumno(t, recP.Body)

	var empty bytes.Buffer
	mw2 := multipart.NewWriter(&empty)
	mw2.WriteField("otra", "cosa")
	mw2.Close()
	req = httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/alumnos/%d/fotoPerfil", created.ID), &empty)
	req.Header.Set("Content-Type", mw2.FormDataContentType())
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing foto part: expected 400, got %d", rec.Code)
	}
}

func TestEmail(t *testing.T) {
	n := &fakeNotifier{}
	router := newTestRouter(t, &fakeMedia{}, n)

	rec := doJSON(t, router, http.MethodPost, "/alumnos", anaJSON)
	created := decodeAlumno(t, rec.Body)

	rec = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/alumnos/%d/email", created.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("email: expected 200, got %d (%s)", rec.Code, rec.Body)
	}
	if !strings.Contains(n.message, "Ana Lopez") || !strings.Contains(n.message, "9.5") {
		t.Errorf("notification must carry name and promedio: %q", n.message)
	}

	rec = doJSON(t, router, http.MethodPost, "/alumnos/99/email", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("email unknown alumno: expected 404, got %d", rec.Code)
	}
}

func TestEmailPublishFailureIs500(t *testing.T) {
	n := &fakeNotifier{err: fmt.Errorf("broker unreachable")}
	router := newTestRouter(t, &fakeMedia{}, n)

	rec := doJSON(t, router, http.MethodPost, "/alumnos", anaJSON)
	created := decodeAlumno(t, rec.Body)

	rec = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/alumnos/%d/email", created.ID), "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("publish failure: expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "broker unreachable") {
		t.Errorf("underlying message must pass through: %s", rec.Body)
	}
}
