// Package storage defines the Storage interface — a contract that any
// database backend must satisfy to work with this application.
//
// Handlers depend only on this interface, never on the SQLite package
// directly. Switching databases means implementing the interface for the
// new backend and changing one line in main.go; tests can pass a fake.
package storage

import (
	"errors"

	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/types"
)

// Sentinel errors returned by implementations. Handlers translate these
// into HTTP status codes with errors.Is; everything else is a 500.
var (
	// ErrNotFound means no record matched the given id or token.
	ErrNotFound = errors.New("registro no encontrado")

	// ErrDuplicate means a UNIQUE business key (matricula or
	// numeroEmpleado) is already taken. This is a client error, never a
	// server error.
	ErrDuplicate = errors.New("valor duplicado en campo único")
)

// Storage is the database contract. Any concrete type implementing all
// of these methods satisfies it implicitly.
type Storage interface {
	// CreateAlumno inserts a new alumno and returns it with the
	// auto-generated id. Returns ErrDuplicate when the matricula is
	// already in use.
	CreateAlumno(a types.Alumno) (types.Alumno, error)

	// GetAlumnos returns every alumno, ordered by id.
	// Returns an empty slice (not nil) when the table is empty.
	GetAlumnos() ([]types.Alumno, error)

	// GetAlumnoByID fetches one alumno by primary key, including its
	// password hash. Returns ErrNotFound when the id is unknown.
	GetAlumnoByID(id int64) (types.Alumno, error)

	// UpdateAlumnoByID fully replaces an alumno's fields and returns the
	// stored result. An empty PasswordHash preserves the existing one.
	// Returns ErrNotFound / ErrDuplicate as applicable.
	UpdateAlumnoByID(id int64, a types.Alumno) (types.Alumno, error)

	// DeleteAlumnoByID removes an alumno permanently.
	// Returns ErrNotFound when the id is unknown.
	DeleteAlumnoByID(id int64) error

	// SetFotoPerfilURL stores the profile-photo URL for an alumno after
	// a successful object-storage upload.
	SetFotoPerfilURL(id int64, url string) error

	// CreateProfesor inserts a new profesor and returns it with the
	// auto-generated id. Returns ErrDuplicate when the numeroEmpleado is
	// already in use.
	CreateProfesor(p types.Profesor) (types.Profesor, error)

	// GetProfesores returns every profesor, ordered by id.
	GetProfesores() ([]types.Profesor, error)

	// GetProfesorByID fetches one profesor by primary key.
	GetProfesorByID(id int64) (types.Profesor, error)

	// UpdateProfesorByID fully replaces a profesor's fields.
	UpdateProfesorByID(id int64, p types.Profesor) (types.Profesor, error)

	// DeleteProfesorByID removes a profesor permanently.
	DeleteProfesorByID(id int64) error

	// CreateSession persists a new session row. The session string has a
	// UNIQUE index, so a (vanishingly unlikely) token collision surfaces
	// as ErrDuplicate instead of silently aliasing two sessions.
	CreateSession(s types.Session) error

	// GetSessionByString looks a session up by its token. With
	// activeOnly, rows already logged out are ignored. Returns
	// ErrNotFound when nothing matches.
	GetSessionByString(sessionString string, activeOnly bool) (types.Session, error)

	// DeactivateSession flips a session's active flag to false.
	// The row itself is kept for audit.
	DeactivateSession(id string) error
}
