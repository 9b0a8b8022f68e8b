package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
)

// OrderingFields are the fields assignments can be ordered by.
var OrderingFields = []string{"title", "subject", "due_date", "created_at", "updated_at"}

type Assignment struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"` // markdown
	Subject     string     `json:"subject"`
	DueDate     *time.Time `json:"due_date"` // UTC
	CreatedBy   string     `json:"created_by"`
	AuthorName  string     `json:"author_name,omitempty"`
	CreatedAt   time.Time  `json:"created_at"` // UTC
	UpdatedAt   time.Time  `json:"updated_at"` // UTC

	// Submitted is only set when listing for a student.
	Submitted *bool `json:"submitted,omitempty"`
}

// IsOverdue reports whether the due date is past at t.
func (a Assignment) IsOverdue(t time.Time) bool {
	return a.DueDate != nil && t.After(*a.DueDate)
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	Title       string     `json:"title" validate:"required,notblank,max=200"`
	Description string     `json:"description" validate:"max=10000"`
	Subject     string     `json:"subject" validate:"max=100"`
	DueDate     *time.Time `json:"due_date"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.Subject = core.CleanString(na.Subject)
	if na.DueDate != nil {
		due := na.DueDate.UTC()
		na.DueDate = &due
	}
	return validate.Struct(na)
}

// UpdateAssignment defines what information may be provided to modify an existing Assignment.
// Nil fields are left untouched; ClearDueDate removes the due date.
type UpdateAssignment struct {
	Title        *string    `json:"title" validate:"omitempty,notblank,max=200"`
	Description  *string    `json:"description" validate:"omitempty,max=10000"`
	Subject      *string    `json:"subject" validate:"omitempty,max=100"`
	DueDate      *time.Time `json:"due_date"`
	ClearDueDate bool       `json:"clear_due_date"`
}

func (ua *UpdateAssignment) Validate(validate *validator.Validate) error {
	clean := func(s *string) {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
	clean(ua.Title)
	clean(ua.Description)
	clean(ua.Subject)
	if ua.DueDate != nil {
		due := ua.DueDate.UTC()
		ua.DueDate = &due
	}
	return validate.Struct(ua)
}

type QueryFilter struct {
	Search    string    `query:"search"`
	Subject   string    `query:"subject"`
	CreatedBy string    `query:"created_by"`
	DueFrom   time.Time `query:"due_from"`
	DueTo     time.Time `query:"due_to"`

	// StudentID fills Assignment.Submitted for that student.
	StudentID string `query:"-"`
	// Submitted keeps only (un)submitted assignments of StudentID.
	Submitted *bool `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Subject = core.CleanString(qf.Subject)
	qf.CreatedBy = core.CleanString(qf.CreatedBy)
}

// Reminder is a pending due-date reminder for one student.
type Reminder struct {
	Assignment   Assignment
	StudentID    string
	StudentName  string
	StudentEmail string
}
