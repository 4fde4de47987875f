package records

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aanand-mishra/student-records/internal/types"
)

// DefaultSeed returns the example records written to an empty slot:
// two active students and one graduate.
func DefaultSeed() []types.Student {
	return []types.Student{
		{
			ID: "1",
			Fields: types.Fields{
				FirstName:      "John",
				LastName:       "Doe",
				Email:          "john.doe@email.com",
				Phone:          "+1234567890",
				DateOfBirth:    "1995-05-15",
				Address:        "123 Main St, City, State 12345",
				Course:         "Computer Science",
				EnrollmentDate: "2023-09-01",
				Status:         types.StatusActive,
				GPA:            types.GPA(3.8),
			},
		},
		{
			ID: "2",
			Fields: types.Fields{
				FirstName:      "Jane",
				LastName:       "Smith",
				Email:          "jane.smith@email.com",
				Phone:          "+1234567891",
				DateOfBirth:    "1996-08-22",
				Address:        "456 Oak Ave, City, State 12345",
				Course:         "Business Administration",
				EnrollmentDate: "2023-09-01",
				Status:         types.StatusActive,
				GPA:            types.GPA(3.9),
			},
		},
		{
			ID: "3",
			Fields: types.Fields{
				FirstName:      "Mike",
				LastName:       "Johnson",
				Email:          "mike.johnson@email.com",
				Phone:          "+1234567892",
				DateOfBirth:    "1994-12-10",
				Address:        "789 Pine St, City, State 12345",
				Course:         "Engineering",
				EnrollmentDate: "2023-01-15",
				Status:         types.StatusGraduated,
				GPA:            types.GPA(3.7),
			},
		},
	}
}

// LoadSeedFile reads seed records from a YAML list:
//
//	- id: "1"
//	  firstName: John
//	  status: active
//	  gpa: 3.8
func LoadSeedFile(path string) ([]types.Student, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("records.LoadSeedFile: read: %w", err)
	}

	var seed []types.Student
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("records.LoadSeedFile: decode: %w", err)
	}
	if err := checkUnique(seed); err != nil {
		return nil, fmt.Errorf("records.LoadSeedFile: %w", err)
	}
	return seed, nil
}

func checkUnique(records []types.Student) error {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateID, r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}
