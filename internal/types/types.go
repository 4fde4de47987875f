// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, records, and storage can all import types without depending
// on each other.
package types

import (
	"fmt"
	"strconv"
)

// Status is the enrolment state of a student.
//
// It is a closed set: the only values that can be decoded from JSON or YAML
// are "active", "inactive" and "graduated". The zero value is StatusActive,
// so a record created without a status is active.
type Status int

const (
	StatusActive Status = iota
	StatusInactive
	StatusGraduated
)

var statusNames = [...]string{
	StatusActive:    "active",
	StatusInactive:  "inactive",
	StatusGraduated: "graduated",
}

// ParseStatus converts the text form of a status. Empty text is active.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return StatusActive, nil
	}
	for i, name := range statusNames {
		if name == s {
			return Status(i), nil
		}
	}
	return StatusActive, fmt.Errorf("unknown status %q", s)
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
	return statusNames[s]
}

// Valid reports whether s is one of the declared statuses.
func (s Status) Valid() bool {
	return s >= 0 && int(s) < len(statusNames)
}

// MarshalText implements encoding.TextMarshaler. Both encoding/json and
// yaml.v3 use it, so a Status always travels as its name.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Fields is every caller-supplied attribute of a student, i.e. a Student
// without its identifier. Create and Update take Fields; the store owns ids.
//
// The validate:"..." rules are checked by the HTTP layer before calling the
// store. The store itself accepts any well-typed Fields.
//
//	notblank   — non-empty after trimming whitespace
//	emailshape — something@something.something (registered in the handlers)
//	datetime   — ISO calendar date
type Fields struct {
	FirstName      string   `json:"firstName"              yaml:"firstName"              validate:"notblank"`
	LastName       string   `json:"lastName"               yaml:"lastName"               validate:"notblank"`
	Email          string   `json:"email"                  yaml:"email"                  validate:"notblank,emailshape"`
	Phone          string   `json:"phone"                  yaml:"phone"                  validate:"notblank"`
	DateOfBirth    string   `json:"dateOfBirth"            yaml:"dateOfBirth"            validate:"notblank,datetime=2006-01-02"`
	Address        string   `json:"address"                yaml:"address"`
	Course         string   `json:"course"                 yaml:"course"                 validate:"notblank"`
	EnrollmentDate string   `json:"enrollmentDate"         yaml:"enrollmentDate"         validate:"notblank,datetime=2006-01-02"`
	Status         Status   `json:"status"                 yaml:"status"`
	GPA            *float64 `json:"gpa,omitempty"          yaml:"gpa,omitempty"          validate:"omitempty,gte=0,lte=4"`
	ProfileImage   string   `json:"profileImage,omitempty" yaml:"profileImage,omitempty"`
}

// Student is one stored record. Fields is embedded so the JSON and YAML
// forms are flat: { "id": "1", "firstName": "John", ... }.
type Student struct {
	ID     string `json:"id" yaml:"id"`
	Fields `yaml:",inline"`
}

// FullName is "First Last", the form search matches against.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Clone returns a copy that shares no memory with s.
func (s Student) Clone() Student {
	if s.GPA != nil {
		gpa := *s.GPA
		s.GPA = &gpa
	}
	return s
}

// GPA returns a pointer to v, for building Fields literals.
func GPA(v float64) *float64 {
	return &v
}

// Decimal2 is a number shown with exactly two decimals. It encodes to JSON
// as a string ("3.80") so clients never see float noise.
type Decimal2 float64

func (d Decimal2) String() string {
	return strconv.FormatFloat(float64(d), 'f', 2, 64)
}

func (d Decimal2) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

func (d *Decimal2) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("decimal2: %w", err)
	}
	*d = Decimal2(v)
	return nil
}

// Stats is the dashboard summary of the collection.
type Stats struct {
	Total      int      `json:"total"`
	Active     int      `json:"active"`
	Graduated  int      `json:"graduated"`
	AverageGPA Decimal2 `json:"averageGpa"`
}
