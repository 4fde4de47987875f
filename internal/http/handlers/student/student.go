// Package student contains all HTTP handlers related to the Student resource.
//
// These handlers are the presentation side of the record store: the
// list/search view, the create and edit forms, the detail view and the
// dashboard. They validate input and translate "not found" into 404; the
// store itself never rejects well-typed data.
//
// HANDLER PATTERN — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────
// Each exported function receives the store once, at route registration,
// and returns the func(http.ResponseWriter, *http.Request) the router calls
// on every request:
//
//	router.HandleFunc("POST /api/students", student.New(store))
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// RecentCount is how many records the dashboard lists.
const RecentCount = 5

// Store is what the handlers need from the record store.
// *records.Store satisfies it.
type Store interface {
	Recent(n int) []types.Student
	Get(id string) (types.Student, bool)
	Create(fields types.Fields) (types.Student, error)
	Update(id string, fields types.Fields) (types.Student, bool, error)
	Delete(id string) (bool, error)
	Search(query string) []types.Student
	Stats() types.Stats
}

// Dashboard is the body of GET /api/dashboard.
type Dashboard struct {
	Stats  types.Stats     `json:"stats"`
	Recent []types.Student `json:"recent"`
}

var validate = newValidator()

// Register wires every student route into router.
//
// Route table:
//
//	GET    /api/students          → list, or search with ?q=
//	POST   /api/students          → create a student
//	GET    /api/students/{id}     → get one student
//	PUT    /api/students/{id}     → replace a student's fields
//	DELETE /api/students/{id}     → delete a student
//	GET    /api/dashboard         → stats + recent students
func Register(router *http.ServeMux, store Store) {
	router.HandleFunc("POST /api/students", New(store))
	router.HandleFunc("GET /api/students", GetList(store))
	router.HandleFunc("GET /api/students/{id}", GetByID(store))
	router.HandleFunc("PUT /api/students/{id}", Update(store))
	router.HandleFunc("DELETE /api/students/{id}", Delete(store))
	router.HandleFunc("GET /api/dashboard", GetDashboard(store))
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
//
// Request body: every Fields attribute (no id). Success: 201 Created with the
// stored student, id included.
//
//	400 Bad Request  — empty body, malformed JSON, or failed validation
//	500 Internal     — the collection could not be persisted
//
// ─────────────────────────────────────────────────────────────────────────────
func New(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		fields, ok := decodeFields(w, r)
		if !ok {
			return
		}

		student, err := store.Create(fields)
		if err != nil {
			slog.Error("error creating student", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		slog.Info("student created", slog.String("id", student.ID))
		response.WriteJSON(w, http.StatusCreated, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/{id}
//
//	404 Not Found    — no student with that id
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a student", slog.String("id", id))

		student, ok := store.Get(id)
		if !ok {
			writeNotFound(w, id)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students and GET /api/students?q=term
//
// Without q (or with an empty q) every student is returned in insertion
// order. With q, only students whose name, email or course contains q,
// ignoring case. Always an array, [] when nothing matches.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "" {
			slog.Info("getting all students")
		} else {
			slog.Info("searching students", slog.String("q", q))
		}

		response.WriteJSON(w, http.StatusOK, store.Search(q))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{id}
// Replaces ALL fields of an existing student; the id never changes.
//
//	400 Bad Request  — empty body, malformed JSON, or failed validation
//	404 Not Found    — no student with that id
//	500 Internal     — the collection could not be persisted
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("updating a student", slog.String("id", id))

		fields, ok := decodeFields(w, r)
		if !ok {
			return
		}

		updated, found, err := store.Update(id, fields)
		if err != nil {
			slog.Error("error updating student",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}
		if !found {
			writeNotFound(w, id)
			return
		}

		slog.Info("student updated", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
//
// Success response (200 OK):
//
//	{ "status": "deleted" }
//
//	404 Not Found    — no student with that id
//	500 Internal     — the collection could not be persisted
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a student", slog.String("id", id))

		removed, err := store.Delete(id)
		if err != nil {
			slog.Error("error deleting student",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}
		if !removed {
			writeNotFound(w, id)
			return
		}

		slog.Info("student deleted", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// GetDashboard handles GET /api/dashboard: the collection stats plus the
// first RecentCount students.
func GetDashboard(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting dashboard")

		response.WriteJSON(w, http.StatusOK, Dashboard{
			Stats:  store.Stats(),
			Recent: store.Recent(RecentCount),
		})
	}
}

// decodeFields reads and validates a Fields body. On failure it has already
// written the 400 response and returns ok=false.
func decodeFields(w http.ResponseWriter, r *http.Request) (fields types.Fields, ok bool) {
	err := json.NewDecoder(r.Body).Decode(&fields)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return fields, false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return fields, false
	}

	if err := validate.Struct(fields); err != nil {
		var validateErrs validator.ValidationErrors
		if !errors.As(err, &validateErrs) {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return fields, false
		}
		response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
		return fields, false
	}

	return fields, true
}

func writeNotFound(w http.ResponseWriter, id string) {
	response.WriteJSON(w, http.StatusNotFound,
		response.GeneralError(errors.New("no student found with id: "+id)))
}
