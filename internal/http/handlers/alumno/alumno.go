// Package alumno contains all HTTP handlers for the Alumno resource.
//
// HANDLER PATTERN — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────
// Go's router expects func(http.ResponseWriter, *http.Request), which
// leaves no room for dependencies. Each exported function here is a
// factory: it accepts its dependencies (storage, media store, notifier)
// once at route-registration time and returns the actual handler, which
// closes over them:
//
//	router.HandleFunc("POST /alumnos", alumno.New(storage))
//
// Every handler is a single linear flow: decode → validate → store op →
// respond. Validation always completes before any store mutation.
package alumno

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/auth"
	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/media"
	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/notifier"
	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/storage"
	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/types"
	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// errNotFound is the client-facing message for an unknown alumno id.
var errNotFound = errors.New("Alumno no encontrado")

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /alumnos
// Creates a new alumno from the JSON request body.
//
// Request body (JSON):
//
//	{ "nombres": "Ana", "apellidos": "Lopez", "matricula": "A001", "promedio": 9.5 }
//
// An optional "password" field is bcrypt-hashed before storage and never
// echoed back.
//
// Success response (201 Created): the stored alumno with its assigned id.
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, wrong field type,
//	                   failed validation, or duplicate matricula
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating an alumno")

		var alumno types.Alumno

		err := json.NewDecoder(r.Body).Decode(&alumno)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			// Malformed JSON or a wrong primitive type (e.g. a numeric
			// matricula) — the decoder's message names the field.
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validator.New().Struct(alumno); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		if alumno.Password != "" {
			hash, err := auth.HashPassword(alumno.Password)
			if err != nil {
				response.WriteJSON(w, http.StatusInternalServerError,
					response.GeneralError(err))
				return
			}
			alumno.PasswordHash = hash
		}

		created, err := st.CreateAlumno(alumno)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		slog.Info("alumno created", slog.Int64("id", created.ID))
		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /alumnos
// Returns a JSON array of all alumnos; [] (not null) when empty.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all alumnos")

		alumnos, err := st.GetAlumnos()
		if err != nil {
			slog.Error("error getting alumnos", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, alumnos)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /alumnos/{id}
//
// Error responses:
//
//	400 Bad Request — id is not a valid integer
//	404 Not Found   — no alumno with that id
//	500 Internal    — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting an alumno", slog.String("id", id))

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("invalid id: must be an integer")))
			return
		}

		alumno, err := st.GetAlumnoByID(intID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound,
					response.GeneralError(errNotFound))
				return
			}
			slog.Error("error getting alumno",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, alumno)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /alumnos/{id}
// Fully replaces an existing alumno. All required fields must be
// resupplied; a missing "password" keeps the stored one.
//
// Error responses:
//
//	400 Bad Request — invalid id, empty body, validation failure,
//	                  or duplicate matricula
//	404 Not Found   — no alumno with that id
//	500 Internal    — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("updating an alumno", slog.String("id", id))

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("invalid id: must be an integer")))
			return
		}

		var alumno types.Alumno
		err = json.NewDecoder(r.Body).Decode(&alumno)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		// Same rules as creation — the update must not leave the record
		// in a shape a POST would have rejected.
		if err := validator.New().Struct(alumno); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		if alumno.Password != "" {
			hash, err := auth.HashPassword(alumno.Password)
			if err != nil {
				response.WriteJSON(w, http.StatusInternalServerError,
					response.GeneralError(err))
				return
			}
			alumno.PasswordHash = hash
		}

		updated, err := st.UpdateAlumnoByID(intID, alumno)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound,
					response.GeneralError(errNotFound))
				return
			}
			if errors.Is(err, storage.ErrDuplicate) {
				response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
				return
			}
			slog.Error("error updating alumno",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		slog.Info("alumno updated", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /alumnos/{id}
//
// Success response (200 OK):
//
//	{ "message": "Alumno eliminado correctamente" }
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting an alumno", slog.String("id", id))

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("invalid id: must be an integer")))
			return
		}

		if err := st.DeleteAlumnoByID(intID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound,
					response.GeneralError(errNotFound))
				return
			}
			slog.Error("error deleting alumno",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		slog.Info("alumno deleted", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK,
			map[string]string{"message": "Alumno eliminado correctamente"})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// DeleteAll handles DELETE /alumnos — a deliberate 405 guard so a caller
// who forgets the id cannot wipe the collection.
// ─────────────────────────────────────────────────────────────────────────────
func DeleteAll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusMethodNotAllowed,
			response.GeneralError(
				errors.New("Método no permitido: no se puede eliminar la colección completa")))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// FotoPerfil handles POST /alumnos/{id}/fotoPerfil
// Accepts a multipart upload (file field "foto"), stores the bytes in
// object storage under "<id>_<unixSeconds>_<filename>", persists the
// resulting URL on the alumno, and returns both.
//
// Success response (200 OK):
//
//	{ "fotoPerfilUrl": "<url>", "alumno": { ... } }
//
// Error responses:
//
//	400 Bad Request — invalid id or no "foto" file part
//	404 Not Found   — no alumno with that id
//	500 Internal    — upload or database failure
//
// The object write and the URL write are two independent operations; a
// crash between them leaves an orphan object, not a broken record.
// ─────────────────────────────────────────────────────────────────────────────
func FotoPerfil(st storage.Storage, store media.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("uploading foto de perfil", slog.String("id", id))

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("invalid id: must be an integer")))
			return
		}

		// Existence check before touching object storage.
		if _, err := st.GetAlumnoByID(intID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound,
					response.GeneralError(errNotFound))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		file, header, err := r.FormFile("foto")
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("el archivo 'foto' es obligatorio")))
			return
		}
		defer file.Close()

		name := media.ObjectName(intID, header.Filename, time.Now())

		url, err := store.Upload(r.Context(), name,
			header.Header.Get("Content-Type"), file, header.Size)
		if err != nil {
			slog.Error("error uploading foto",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		if err := st.SetFotoPerfilURL(intID, url); err != nil {
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		alumno, err := st.GetAlumnoByID(intID)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		slog.Info("foto de perfil stored",
			slog.String("id", id), slog.String("object", name))
		response.WriteJSON(w, http.StatusOK, map[string]any{
			"fotoPerfilUrl": url,
			"alumno":        alumno,
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Email handles POST /alumnos/{id}/email
// Composes a plain-text grade notification for the alumno and publishes
// it to the configured topic. No delivery confirmation, no retry.
//
// Success response (200 OK):
//
//	{ "message": "Notificación enviada correctamente" }
//
// ─────────────────────────────────────────────────────────────────────────────
func Email(st storage.Storage, n notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("sending grade notification", slog.String("id", id))

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("invalid id: must be an integer")))
			return
		}

		alumno, err := st.GetAlumnoByID(intID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound,
					response.GeneralError(errNotFound))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		subject := "Calificaciones del alumno"
		message := fmt.Sprintf("La calificación final de %s %s es %.1f",
			alumno.Nombres, alumno.Apellidos, *alumno.Promedio)

		if err := n.Publish(r.Context(), subject, message); err != nil {
			slog.Error("error publishing notification",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		slog.Info("notification sent", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK,
			map[string]string{"message": "Notificación enviada correctamente"})
	}
}
