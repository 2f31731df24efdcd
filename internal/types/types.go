// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, and utils can all import types without depending
// on each other.
package types

// Alumno represents a student record.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  — controls how the field appears when encoded to JSON.
//     The key names (nombres, matricula, ...) are part of the public API
//     contract and must not change.
//
//  2. validate:"..." — rules checked by the go-playground/validator
//     package before any write reaches the store.
//
// Promedio is a pointer so validation can tell "field absent" apart from
// a legitimate 0.0 average — `required` on a plain float64 would reject
// zero.
//
// Password is write-only: clients may send it on POST/PUT, but it is
// hashed before storage and never appears in a response. PasswordHash is
// the at-rest form and is excluded from JSON entirely.
type Alumno struct {
	ID            int64    `json:"id"`
	Nombres       string   `json:"nombres"   validate:"required"`
	Apellidos     string   `json:"apellidos" validate:"required"`
	Matricula     string   `json:"matricula" validate:"required"`
	Promedio      *float64 `json:"promedio"  validate:"required,gte=0"`
	FotoPerfilURL string   `json:"fotoPerfilUrl,omitempty"`
	Password      string   `json:"password,omitempty"`
	PasswordHash  string   `json:"-"`
}

// Profesor represents a teacher record.
//
// NumeroEmpleado is a string: the API has always validated it as one.
// HorasClase follows the same pointer convention as Alumno.Promedio.
type Profesor struct {
	ID             int64    `json:"id"`
	NumeroEmpleado string   `json:"numeroEmpleado" validate:"required"`
	Nombres        string   `json:"nombres"        validate:"required"`
	Apellidos      string   `json:"apellidos"      validate:"required"`
	HorasClase     *float64 `json:"horasClase"     validate:"required,gte=0"`
}

// Session is one login session for an alumno.
//
// ID is a server-generated UUID (the row key). SessionString is the
// opaque high-entropy token handed to the caller on login — it is the
// bearer credential for verify/logout. Sessions are deactivated on
// logout, never deleted.
type Session struct {
	ID            string `json:"id"`
	Fecha         int64  `json:"fecha"` // creation time, Unix seconds
	AlumnoID      int64  `json:"alumnoId"`
	Active        bool   `json:"active"`
	SessionString string `json:"sessionString"`
}
