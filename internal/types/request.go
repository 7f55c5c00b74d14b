// Package types provides type definitions for structured data used throughout the career-matcher system.
package types

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Input bounds enforced before any model call is made.
const (
	ResumeMinChars = 50
	ResumeMaxChars = 15000
	AnswerMinChars = 10
)

// MatchRequest is the raw input to a matching run: resume text plus the five
// preference answers. Resume parsing (PDF, DOCX) happens upstream; by the time
// a request reaches this service the resume is plain text.
type MatchRequest struct {
	ResumeText string            `json:"resume_text"`
	Answers    PreferenceAnswers `json:"answers"`
}

// FieldError represents a single validation failure keyed by input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// InputValidationError collects every field that failed validation
type InputValidationError struct {
	Fields []FieldError
}

func (e *InputValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid input:")
	for _, fe := range e.Fields {
		sb.WriteString(fmt.Sprintf(" %s %s;", fe.Field, fe.Message))
	}
	return strings.TrimSuffix(sb.String(), ";")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON field names so API errors match the request body keys
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalize trims surrounding whitespace from every input field in place
func (r *MatchRequest) Normalize() {
	r.ResumeText = strings.TrimSpace(r.ResumeText)
	r.Answers.CareerGoals = strings.TrimSpace(r.Answers.CareerGoals)
	r.Answers.SkillsToDevelop = strings.TrimSpace(r.Answers.SkillsToDevelop)
	r.Answers.WorkEnvironment = strings.TrimSpace(r.Answers.WorkEnvironment)
	r.Answers.Compensation = strings.TrimSpace(r.Answers.Compensation)
	r.Answers.Industries = strings.TrimSpace(r.Answers.Industries)
}

// Validate checks the resume bounds and every answer independently.
// Returns *InputValidationError listing all failing fields, or nil.
func (r *MatchRequest) Validate() error {
	var fields []FieldError

	switch n := utf8.RuneCountInString(r.ResumeText); {
	case n == 0:
		fields = append(fields, FieldError{Field: "resume_text", Message: "is required"})
	case n < ResumeMinChars:
		fields = append(fields, FieldError{
			Field:   "resume_text",
			Message: fmt.Sprintf("must be at least %d characters", ResumeMinChars),
		})
	case n > ResumeMaxChars:
		fields = append(fields, FieldError{
			Field:   "resume_text",
			Message: fmt.Sprintf("must be at most %d characters", ResumeMaxChars),
		})
	}

	if err := validate.Struct(&r.Answers); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, ve := range validationErrors {
				fields = append(fields, FieldError{
					Field:   "answers." + ve.Field(),
					Message: messageForTag(ve),
				})
			}
		} else {
			fields = append(fields, FieldError{Field: "answers", Message: err.Error()})
		}
	}

	if len(fields) > 0 {
		return &InputValidationError{Fields: fields}
	}
	return nil
}

func messageForTag(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", ve.Param())
	default:
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
