package application

import (
	"strings"
	"time"

	"ceoacademy/internal/common"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusReviewing Status = "REVIEWING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusWaitlist  Status = "WAITLIST"
)

// Statuses lists every review state. PENDING is assigned at creation; the
// transition graph is deliberately unrestricted, so any of these may follow
// any other.
var Statuses = []Status{StatusPending, StatusReviewing, StatusApproved, StatusRejected, StatusWaitlist}

func NormalizeStatus(status Status) Status {
	return Status(strings.ToUpper(strings.TrimSpace(string(status))))
}

func IsKnownStatus(status Status) bool {
	switch status {
	case StatusPending, StatusReviewing, StatusApproved, StatusRejected, StatusWaitlist:
		return true
	default:
		return false
	}
}

const (
	GolfYes = "Yes"
	GolfNo  = "No"

	TaxInvoiceIssue   = "발행"
	TaxInvoiceNoIssue = "미발행"
)

// Interests holds the fixed interest-category choices offered on the
// application form.
var Interests = []string{
	"경제, 경영, 산업 전반",
	"인문학",
	"예술분야",
	"리더쉽 및 소통 (조직관리)",
	"의료 및 건강관리",
	"미래기술 (AI, 챗GPT)",
	"기타",
}

// OpenGenerations lists the cohorts currently accepting applications.
var OpenGenerations = []int{2, 3, 4}

func IsOpenGeneration(generation int) bool {
	for _, open := range OpenGenerations {
		if generation == open {
			return true
		}
	}
	return false
}

func IsKnownInterest(value string) bool {
	for _, interest := range Interests {
		if value == interest {
			return true
		}
	}
	return false
}

// Reviewer is the cached identity of the staff member attributed to the last
// status transition. The application does not own this identity; it is a weak
// lookup against the reviewers table.
type Reviewer struct {
	ID    common.UUID `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
}

type Application struct {
	ID              common.UUID  `json:"id"`
	Name            string       `json:"name"`
	Phone           string       `json:"phone"`
	BirthDate       string       `json:"birthDate,omitempty"`
	Gender          string       `json:"gender,omitempty"`
	CompanyPosition string       `json:"companyPosition"`
	Address         string       `json:"address,omitempty"`
	Interests       []string     `json:"interests"`
	Golf            string       `json:"golf"`
	Referrer        string       `json:"referrer,omitempty"`
	TaxInvoice      string       `json:"taxInvoice"`
	Generation      int          `json:"generation"`
	Status          Status       `json:"status"`
	AdminNotes      *string      `json:"adminNotes,omitempty"`
	SubmittedAt     time.Time    `json:"submittedAt"`
	ReviewedAt      *time.Time   `json:"reviewedAt,omitempty"`
	ReviewedBy      *common.UUID `json:"reviewedBy,omitempty"`
	Reviewer        *Reviewer    `json:"reviewer,omitempty"`
}
