package submission

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
)

type Submission struct {
	ID           string    `json:"id"`
	AssignmentID string    `json:"assignment_id"`
	StudentID    string    `json:"student_id"`
	Reflection   string    `json:"reflection"`
	SubmittedAt  time.Time `json:"submitted_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"`   // UTC
	IsLate       bool      `json:"is_late"`

	// joined
	AssignmentTitle string     `json:"assignment_title,omitempty"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	StudentName     string     `json:"student_name,omitempty"`
}

// SetLate computes IsLate from DueDate.
func (s *Submission) SetLate() {
	s.IsLate = s.DueDate != nil && s.SubmittedAt.After(*s.DueDate)
}

// NewSubmission is a student's completion record; submitting again replaces the reflection.
type NewSubmission struct {
	Reflection string `json:"reflection" validate:"required,notblank,max=5000"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	ns.Reflection = core.CleanString(ns.Reflection)
	return validate.Struct(ns)
}

type QueryFilter struct {
	AssignmentID string
	StudentID    string
	// AuthorID keeps submissions on assignments created by that teacher.
	AuthorID string
	Limit    int
}
