package app

import (
	"regexp"
	"strings"

	"ceoacademy/internal/common"
	"ceoacademy/internal/domain/application"
)

// Submission is the raw intake payload before validation. Optional fields
// (birth date, gender, address, referrer) pass through untouched.
type Submission struct {
	Name            string
	Phone           string
	BirthDate       string
	Gender          string
	CompanyPosition string
	Address         string
	Interests       []string
	Golf            string
	Referrer        string
	TaxInvoice      string
	Generation      int
}

var phonePattern = regexp.MustCompile(`^010-\d{4}-\d{4}$`)

// ValidateSubmission normalizes a submission into an application record or
// reports every violated field at once. It never touches the store.
func ValidateSubmission(sub Submission) (application.Application, error) {
	fields := make(map[string]string)

	name := strings.TrimSpace(sub.Name)
	if name == "" {
		fields["name"] = "name is required"
	}
	phone := strings.TrimSpace(sub.Phone)
	if !phonePattern.MatchString(phone) {
		fields["phone"] = "phone must match the 010-0000-0000 format"
	}
	companyPosition := strings.TrimSpace(sub.CompanyPosition)
	if companyPosition == "" {
		fields["companyPosition"] = "company and position are required"
	}
	if len(sub.Interests) == 0 {
		fields["interests"] = "select at least one interest"
	} else {
		for _, interest := range sub.Interests {
			if !application.IsKnownInterest(interest) {
				fields["interests"] = "unknown interest: " + interest
				break
			}
		}
	}
	if sub.Golf != application.GolfYes && sub.Golf != application.GolfNo {
		fields["golf"] = "golf must be Yes or No"
	}
	if sub.TaxInvoice != application.TaxInvoiceIssue && sub.TaxInvoice != application.TaxInvoiceNoIssue {
		fields["taxInvoice"] = "taxInvoice must be 발행 or 미발행"
	}
	if sub.Generation < 1 {
		fields["generation"] = "generation is required"
	} else if !application.IsOpenGeneration(sub.Generation) {
		fields["generation"] = "generation is not open for applications"
	}

	if len(fields) > 0 {
		return application.Application{}, common.NewValidationError("invalid application payload", fields)
	}

	return application.Application{
		Name:            name,
		Phone:           phone,
		BirthDate:       strings.TrimSpace(sub.BirthDate),
		Gender:          strings.TrimSpace(sub.Gender),
		CompanyPosition: companyPosition,
		Address:         strings.TrimSpace(sub.Address),
		Interests:       sub.Interests,
		Golf:            sub.Golf,
		Referrer:        strings.TrimSpace(sub.Referrer),
		TaxInvoice:      sub.TaxInvoice,
		Generation:      sub.Generation,
	}, nil
}
