// Package sesion contains the session handlers mounted under
// /alumnos/{id}/session/. A session is issued on login, checked on
// verify, and deactivated on logout; the bearer credential is the
// opaque sessionString, never the session's row id.
package sesion

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/auth"
	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/storage"
	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/types"
	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// loginRequest is the body of POST .../session/login.
type loginRequest struct {
	Password string `json:"password" validate:"required"`
}

// tokenRequest is the body of verify and logout.
type tokenRequest struct {
	SessionString string `json:"sessionString" validate:"required"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Login handles POST /alumnos/{id}/session/login
//
// Request body (JSON):
//
//	{ "password": "..." }
//
// Success response (200 OK):
//
//	{ "sessionString": "<opaque token>" }
//
// Error responses:
//
//	400 Bad Request — missing password, no password set on the alumno,
//	                  or mismatch
//	404 Not Found   — unknown alumno id
//	500 Internal    — session-table failure
//
// ─────────────────────────────────────────────────────────────────────────────
func Login(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("alumno login", slog.String("id", id))

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("invalid id: must be an integer")))
			return
		}

		var req loginRequest
		err = json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validator.New().Struct(req); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		alumno, err := st.GetAlumnoByID(intID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound,
					response.GeneralError(errors.New("Alumno no encontrado")))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		// An alumno that never set a password cannot log in. The same
		// message covers both cases so the response does not reveal
		// whether a password exists.
		if !auth.CheckPassword(req.Password, alumno.PasswordHash) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("Contraseña incorrecta")))
			return
		}

		token, err := auth.NewSessionString()
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		session := types.Session{
			ID:            uuid.NewString(),
			Fecha:         time.Now().Unix(),
			AlumnoID:      intID,
			Active:        true,
			SessionString: token,
		}

		if err := st.CreateSession(session); err != nil {
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		slog.Info("session created",
			slog.String("session_id", session.ID),
			slog.Int64("alumno_id", intID))
		response.WriteJSON(w, http.StatusOK,
			map[string]string{"sessionString": token})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Verify handles POST /alumnos/{id}/session/verify
//
// Request body (JSON):
//
//	{ "sessionString": "<token>" }
//
// Success response (200 OK): the full session record, active: true.
//
// Error responses:
//
//	400 Bad Request — missing token, or no active session matches
//
// ─────────────────────────────────────────────────────────────────────────────
func Verify(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("verifying session")

		var req tokenRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validator.New().Struct(req); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		session, err := st.GetSessionByString(req.SessionString, true)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusBadRequest,
					response.GeneralError(errors.New("Sesión inválida o expirada")))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, session)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Logout handles POST /alumnos/{id}/session/logout
//
// Request body (JSON):
//
//	{ "sessionString": "<token>" }
//
// Success response (200 OK):
//
//	{ "message": "Sesión cerrada correctamente" }
//
// The lookup ignores the active flag, so logging out twice reports the
// session as unknown only if the token never existed; a second logout on
// an already-inactive session still succeeds idempotently.
// ─────────────────────────────────────────────────────────────────────────────
func Logout(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("closing session")

		var req tokenRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validator.New().Struct(req); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		// Active or not — logout must find sessions that were already
		// closed, per the contract.
		session, err := st.GetSessionByString(req.SessionString, false)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusBadRequest,
					response.GeneralError(errors.New("Sesión no encontrada")))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		if err := st.DeactivateSession(session.ID); err != nil {
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		slog.Info("session closed", slog.String("session_id", session.ID))
		response.WriteJSON(w, http.StatusOK,
			map[string]string{"message": "Sesión cerrada correctamente"})
	}
}
