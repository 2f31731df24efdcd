// Package profesor contains all HTTP handlers for the Profesor
// resource. Same closure/factory pattern and decode → validate →
// store op → respond flow as the alumno handlers.
package profesor

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/storage"
	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/types"
	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

var errNotFound = errors.New("Profesor no encontrado")

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /profesores
//
// Request body (JSON):
//
//	{ "numeroEmpleado": "E1", "nombres": "Juan", "apellidos": "Perez", "horasClase": 20 }
//
// Success response (201 Created): the stored profesor with its id.
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, wrong field type,
//	                   failed validation (negative horasClase included),
//	                   or duplicate numeroEmpleado
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a profesor")

		var profesor types.Profesor

		err := json.NewDecoder(r.Body).Decode(&profesor)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validator.New().Struct(profesor); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		created, err := st.CreateProfesor(profesor)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		slog.Info("profesor created", slog.Int64("id", created.ID))
		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /profesores
// Returns a JSON array of all profesores; [] (not null) when empty.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all profesores")

		profesores, err := st.GetProfesores()
		if err != nil {
			slog.Error("error getting profesores", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, profesores)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /profesores/{id}
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a profesor", slog.String("id", id))

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("invalid id: must be an integer")))
			return
		}

		profesor, err := st.GetProfesorByID(intID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound,
					response.GeneralError(errNotFound))
				return
			}
			slog.Error("error getting profesor",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, profesor)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /profesores/{id}
// Fully replaces an existing profesor; all fields must be resupplied.
// ─────────────────────────────────────────────────────────────────────────────
func Update(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("updating a profesor", slog.String("id", id))

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("invalid id: must be an integer")))
			return
		}

		var profesor types.Profesor
		err = json.NewDecoder(r.Body).Decode(&profesor)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validator.New().Struct(profesor); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		updated, err := st.UpdateProfesorByID(intID, profesor)
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
			slog.Error("error updating profesor",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		slog.Info("profesor updated", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /profesores/{id}
//
// Success response (200 OK):
//
//	{ "message": "Profesor eliminado correctamente" }
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a profesor", slog.String("id", id))

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("invalid id: must be an integer")))
			return
		}

		if err := st.DeleteProfesorByID(intID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound,
					response.GeneralError(errNotFound))
				return
			}
			slog.Error("error deleting profesor",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		slog.Info("profesor deleted", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK,
			map[string]string{"message": "Profesor eliminado correctamente"})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// DeleteAll handles DELETE /profesores — the same deliberate 405 guard
// as the alumno collection.
// ─────────────────────────────────────────────────────────────────────────────
func DeleteAll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusMethodNotAllowed,
			response.GeneralError(
				errors.New("Método no permitido: no se puede eliminar la colección completa")))
	}
}
