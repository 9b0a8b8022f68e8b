package doubt

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
)

type Doubt struct {
	ID           string    `json:"id"`
	AssignmentID string    `json:"assignment_id"`
	StudentID    string    `json:"student_id"`
	Question     string    `json:"question"`
	IsResolved   bool      `json:"is_resolved"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC

	// joined
	AssignmentTitle    string  `json:"assignment_title"`
	AssignmentAuthorID string  `json:"assignment_author_id"`
	StudentName        string  `json:"student_name"`
	ReplyCount         int     `json:"reply_count"`
	Replies            []Reply `json:"replies,omitempty"`
}

type Reply struct {
	ID         string    `json:"id"`
	DoubtID    string    `json:"doubt_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

type NewDoubt struct {
	AssignmentID string `json:"assignment_id" validate:"required,uuid"`
	Question     string `json:"question" validate:"required,notblank,max=5000"`
}

func (nd *NewDoubt) Validate(validate *validator.Validate) error {
	nd.AssignmentID = core.CleanString(nd.AssignmentID, true /* lower */)
	nd.Question = core.CleanString(nd.Question)
	return validate.Struct(nd)
}

type NewReply struct {
	Body string `json:"body" validate:"required,notblank,max=5000"`
}

func (nr *NewReply) Validate(validate *validator.Validate) error {
	nr.Body = core.CleanString(nr.Body)
	return validate.Struct(nr)
}

type QueryFilter struct {
	AssignmentID string `query:"assignment_id"`
	IsResolved   *bool  `query:"is_resolved"`

	// set from the acting user
	StudentID     string `query:"-"`
	AuthorID      string `query:"-"` // assignment author
	ParticipantID string `query:"-"` // student or assignment author
}
