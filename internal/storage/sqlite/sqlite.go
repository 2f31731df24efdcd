// Package sqlite provides the SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite stores everything in a single file on disk — no network, no
// separate server process. The blank import below registers the sqlite3
// driver with database/sql; its init() does that automatically when the
// package is loaded.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/config"
	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/storage"
	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/types"

	"github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// A single *sql.DB is a connection pool, safe for concurrent use.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at cfg.StoragePath, creates the three
// tables if they do not already exist, and returns a ready-to-use
// *SQLite.
//
// Schema notes:
//   - matricula and numero_empleado carry UNIQUE constraints; the store
//     (not the handlers) is the authority on business-key uniqueness.
//   - session_string is UNIQUE so token lookup is an index hit and the
//     "first match wins" question can never arise.
//   - sessions are never deleted, only deactivated, so the table doubles
//     as a login audit log.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open("sqlite3", cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Uniqueness constraints must be ON from the first write; foreign
	// keys are off by default in sqlite3 and we do not rely on them.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS alumnos (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			nombres         TEXT NOT NULL,
			apellidos       TEXT NOT NULL,
			matricula       TEXT NOT NULL UNIQUE,
			promedio        REAL NOT NULL CHECK (promedio >= 0),
			foto_perfil_url TEXT,
			password_hash   TEXT
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: create alumnos table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS profesores (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			numero_empleado TEXT NOT NULL UNIQUE,
			nombres         TEXT NOT NULL,
			apellidos       TEXT NOT NULL,
			horas_clase     REAL NOT NULL CHECK (horas_clase >= 0)
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: create profesores table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id             TEXT PRIMARY KEY,
			fecha          INTEGER NOT NULL,
			alumno_id      INTEGER NOT NULL,
			active         INTEGER NOT NULL DEFAULT 1,
			session_string TEXT NOT NULL UNIQUE
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: create sessions table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// mapErr converts driver-level errors into the package sentinels the
// handlers know about. A UNIQUE constraint violation becomes
// ErrDuplicate; anything else passes through untouched.
func mapErr(err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%v: %w", err, storage.ErrDuplicate)
	}
	return err
}

// ─────────────────────────────────────────────────────────────────────────────
// Alumnos
// ─────────────────────────────────────────────────────────────────────────────

// CreateAlumno inserts a new row and re-reads it so the caller gets
// exactly what the database stored (including the generated id).
func (s *SQLite) CreateAlumno(a types.Alumno) (types.Alumno, error) {
	stmt, err := s.Db.Prepare(`
		INSERT INTO alumnos (nombres, apellidos, matricula, promedio, foto_perfil_url, password_hash)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return types.Alumno{}, fmt.Errorf("CreateAlumno: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(a.Nombres, a.Apellidos, a.Matricula, *a.Promedio,
		a.FotoPerfilURL, a.PasswordHash)
	if err != nil {
		return types.Alumno{}, fmt.Errorf("CreateAlumno: exec: %w", mapErr(err))
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return types.Alumno{}, fmt.Errorf("CreateAlumno: last insert id: %w", err)
	}

	return s.GetAlumnoByID(lastID)
}

// GetAlumnos returns all alumno rows ordered by id.
func (s *SQLite) GetAlumnos() ([]types.Alumno, error) {
	stmt, err := s.Db.Prepare(`
		SELECT id, nombres, apellidos, matricula, promedio, COALESCE(foto_perfil_url, '')
		FROM alumnos ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("GetAlumnos: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.Query()
	if err != nil {
		return nil, fmt.Errorf("GetAlumnos: query: %w", err)
	}
	defer rows.Close()

	// Non-nil so an empty table encodes as [] rather than null.
	alumnos := make([]types.Alumno, 0)

	for rows.Next() {
		var a types.Alumno
		var promedio float64
		if err := rows.Scan(&a.ID, &a.Nombres, &a.Apellidos, &a.Matricula,
			&promedio, &a.FotoPerfilURL); err != nil {
			return nil, fmt.Errorf("GetAlumnos: scan row: %w", err)
		}
		a.Promedio = &promedio
		alumnos = append(alumnos, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetAlumnos: rows iteration: %w", err)
	}

	return alumnos, nil
}

// GetAlumnoByID fetches one alumno by primary key. The password hash is
// included for the login path; the JSON tag on the field keeps it out of
// every response.
func (s *SQLite) GetAlumnoByID(id int64) (types.Alumno, error) {
	stmt, err := s.Db.Prepare(`
		SELECT id, nombres, apellidos, matricula, promedio,
		       COALESCE(foto_perfil_url, ''), COALESCE(password_hash, '')
		FROM alumnos WHERE id = ? LIMIT 1
	`)
	if err != nil {
		return types.Alumno{}, fmt.Errorf("GetAlumnoByID: prepare: %w", err)
	}
	defer stmt.Close()

	var a types.Alumno
	var promedio float64

	err = stmt.QueryRow(id).Scan(&a.ID, &a.Nombres, &a.Apellidos, &a.Matricula,
		&promedio, &a.FotoPerfilURL, &a.PasswordHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Alumno{}, storage.ErrNotFound
		}
		return types.Alumno{}, fmt.Errorf("GetAlumnoByID: scan: %w", err)
	}

	a.Promedio = &promedio
	return a, nil
}

// UpdateAlumnoByID replaces all fields of an existing alumno. The
// COALESCE/NULLIF pair keeps the stored password hash whenever the
// update carries an empty one (PUT without a password field).
func (s *SQLite) UpdateAlumnoByID(id int64, a types.Alumno) (types.Alumno, error) {
	stmt, err := s.Db.Prepare(`
		UPDATE alumnos
		SET nombres = ?, apellidos = ?, matricula = ?, promedio = ?,
		    password_hash = COALESCE(NULLIF(?, ''), password_hash)
		WHERE id = ?
	`)
	if err != nil {
		return types.Alumno{}, fmt.Errorf("UpdateAlumnoByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(a.Nombres, a.Apellidos, a.Matricula, *a.Promedio,
		a.PasswordHash, id)
	if err != nil {
		return types.Alumno{}, fmt.Errorf("UpdateAlumnoByID: exec: %w", mapErr(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.Alumno{}, fmt.Errorf("UpdateAlumnoByID: rows affected: %w", err)
	}
	if affected == 0 {
		return types.Alumno{}, storage.ErrNotFound
	}

	return s.GetAlumnoByID(id)
}

// DeleteAlumnoByID removes an alumno row by primary key.
func (s *SQLite) DeleteAlumnoByID(id int64) error {
	stmt, err := s.Db.Prepare("DELETE FROM alumnos WHERE id = ?")
	if err != nil {
		return fmt.Errorf("DeleteAlumnoByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(id)
	if err != nil {
		return fmt.Errorf("DeleteAlumnoByID: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteAlumnoByID: rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// SetFotoPerfilURL stores the uploaded photo's public URL on the alumno.
func (s *SQLite) SetFotoPerfilURL(id int64, url string) error {
	stmt, err := s.Db.Prepare("UPDATE alumnos SET foto_perfil_url = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("SetFotoPerfilURL: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(url, id)
	if err != nil {
		return fmt.Errorf("SetFotoPerfilURL: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("SetFotoPerfilURL: rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Profesores
// ─────────────────────────────────────────────────────────────────────────────

// CreateProfesor inserts a new row and re-reads it with its generated id.
func (s *SQLite) CreateProfesor(p types.Profesor) (types.Profesor, error) {
	stmt, err := s.Db.Prepare(`
		INSERT INTO profesores (numero_empleado, nombres, apellidos, horas_clase)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return types.Profesor{}, fmt.Errorf("CreateProfesor: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(p.NumeroEmpleado, p.Nombres, p.Apellidos, *p.HorasClase)
	if err != nil {
		return types.Profesor{}, fmt.Errorf("CreateProfesor: exec: %w", mapErr(err))
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return types.Profesor{}, fmt.Errorf("CreateProfesor: last insert id: %w", err)
	}

	return s.GetProfesorByID(lastID)
}

// GetProfesores returns all profesor rows ordered by id.
func (s *SQLite) GetProfesores() ([]types.Profesor, error) {
	stmt, err := s.Db.Prepare(`
		SELECT id, numero_empleado, nombres, apellidos, horas_clase
		FROM profesores ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("GetProfesores: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.Query()
	if err != nil {
		return nil, fmt.Errorf("GetProfesores: query: %w", err)
	}
	defer rows.Close()

	profesores := make([]types.Profesor, 0)

	for rows.Next() {
		var p types.Profesor
		var horas float64
		if err := rows.Scan(&p.ID, &p.NumeroEmpleado, &p.Nombres, &p.Apellidos,
			&horas); err != nil {
			return nil, fmt.Errorf("GetProfesores: scan row: %w", err)
		}
		p.HorasClase = &horas
		profesores = append(profesores, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetProfesores: rows iteration: %w", err)
	}

	return profesores, nil
}

// GetProfesorByID fetches one profesor by primary key.
func (s *SQLite) GetProfesorByID(id int64) (types.Profesor, error) {
	stmt, err := s.Db.Prepare(`
		SELECT id, numero_empleado, nombres, apellidos, horas_clase
		FROM profesores WHERE id = ? LIMIT 1
	`)
	if err != nil {
		return types.Profesor{}, fmt.Errorf("GetProfesorByID: prepare: %w", err)
	}
	defer stmt.Close()

	var p types.Profesor
	var horas float64

	err = stmt.QueryRow(id).Scan(&p.ID, &p.NumeroEmpleado, &p.Nombres,
		&p.Apellidos, &horas)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Profesor{}, storage.ErrNotFound
		}
		return types.Profesor{}, fmt.Errorf("GetProfesorByID: scan: %w", err)
	}

	p.HorasClase = &horas
	return p, nil
}

// UpdateProfesorByID replaces all fields of an existing profesor.
func (s *SQLite) UpdateProfesorByID(id int64, p types.Profesor) (types.Profesor, error) {
	stmt, err := s.Db.Prepare(`
		UPDATE profesores
		SET numero_empleado = ?, nombres = ?, apellidos = ?, horas_clase = ?
		WHERE id = ?
	`)
	if err != nil {
		return types.Profesor{}, fmt.Errorf("UpdateProfesorByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(p.NumeroEmpleado, p.Nombres, p.Apellidos,
		*p.HorasClase, id)
	if err != nil {
		return types.Profesor{}, fmt.Errorf("UpdateProfesorByID: exec: %w", mapErr(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.Profesor{}, fmt.Errorf("UpdateProfesorByID: rows affected: %w", err)
	}
	if affected == 0 {
		return types.Profesor{}, storage.ErrNotFound
	}

	return s.GetProfesorByID(id)
}

// DeleteProfesorByID removes a profesor row by primary key.
func (s *SQLite) DeleteProfesorByID(id int64) error {
	stmt, err := s.Db.Prepare("DELETE FROM profesores WHERE id = ?")
	if err != nil {
		return fmt.Errorf("DeleteProfesorByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(id)
	if err != nil {
		return fmt.Errorf("DeleteProfesorByID: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteProfesorByID: rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Sessions
// ─────────────────────────────────────────────────────────────────────────────

// CreateSession persists a new session row. session_string is UNIQUE, so
// a token collision maps to ErrDuplicate rather than aliasing sessions.
func (s *SQLite) CreateSession(sess types.Session) error {
	stmt, err := s.Db.Prepare(`
		INSERT INTO sessions (id, fecha, alumno_id, active, session_string)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("CreateSession: prepare: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(sess.ID, sess.Fecha, sess.AlumnoID, sess.Active,
		sess.SessionString)
	if err != nil {
		return fmt.Errorf("CreateSession: exec: %w", mapErr(err))
	}

	return nil
}

// GetSessionByString looks a session up by its token — an index hit on
// the UNIQUE session_string column. With activeOnly, logged-out rows are
// invisible (the verify path); without it, logout can still find them.
func (s *SQLite) GetSessionByString(sessionString string, activeOnly bool) (types.Session, error) {
	query := `
		SELECT id, fecha, alumno_id, active, session_string
		FROM sessions WHERE session_string = ? LIMIT 1
	`
	if activeOnly {
		query = `
			SELECT id, fecha, alumno_id, active, session_string
			FROM sessions WHERE session_string = ? AND active = 1 LIMIT 1
		`
	}

	stmt, err := s.Db.Prepare(query)
	if err != nil {
		return types.Session{}, fmt.Errorf("GetSessionByString: prepare: %w", err)
	}
	defer stmt.Close()

	var sess types.Session
	err = stmt.QueryRow(sessionString).Scan(&sess.ID, &sess.Fecha,
		&sess.AlumnoID, &sess.Active, &sess.SessionString)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Session{}, storage.ErrNotFound
		}
		return types.Session{}, fmt.Errorf("GetSessionByString: scan: %w", err)
	}

	return sess, nil
}

// DeactivateSession flips the active flag to false. The row stays.
func (s *SQLite) DeactivateSession(id string) error {
	stmt, err := s.Db.Prepare("UPDATE sessions SET active = 0 WHERE id = ?")
	if err != nil {
		return fmt.Errorf("DeactivateSession: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(id)
	if err != nil {
		return fmt.Errorf("DeactivateSession: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeactivateSession: rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}
