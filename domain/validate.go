package domain

import (
	"regexp"
	"strings"
)

// FieldError describes a failed form check for a single field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

const (
	msgEmpty        = "This field cannot be empty."
	msgInvalidEmail = "Invalid email address!"
	msgInvalidPhone = "Invalid phone number!"
	msgPastDueDate  = "The due date must not be in the past."
	msgBadCategory  = "Please select a category."
)

var (
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phonePattern = regexp.MustCompile(`^\+?\d+$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// TaskForm carries the user-entered fields checked before a task mutation.
type TaskForm struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     string    `json:"dueDate"`
	Category    string    `json:"category"`
	Priority    string    `json:"priority"`
	Subtasks    []Subtask `json:"subtasks"`
	AssignedTo  []string  `json:"assignedTo"`
}

// CheckTaskForm runs every task form check and collects all failures.
// A non-empty result must abort the submit before any store call.
// The due date is compared lexicographically against today's ISO date,
// which is ordering-correct for zero-padded yyyy-mm-dd strings.
func CheckTaskForm(f TaskForm, today string) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(f.Title) == "" {
		errs = append(errs, FieldError{Field: "title", Message: msgEmpty})
	}
	switch {
	case strings.TrimSpace(f.DueDate) == "":
		errs = append(errs, FieldError{Field: "dueDate", Message: msgEmpty})
	case !datePattern.MatchString(f.DueDate) || f.DueDate < today:
		errs = append(errs, FieldError{Field: "dueDate", Message: msgPastDueDate})
	}
	if f.Category != CategoryTechnicalTask && f.Category != CategoryUserStory {
		errs = append(errs, FieldError{Field: "category", Message: msgBadCategory})
	}
	return errs
}

// ContactForm carries the user-entered fields checked before a contact mutation.
type ContactForm struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CheckContactForm validates a contact form. Phone is optional but must be
// digits with an optional leading + when present.
func CheckContactForm(f ContactForm) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: msgEmpty})
	}
	email := strings.TrimSpace(f.Email)
	switch {
	case email == "":
		errs = append(errs, FieldError{Field: "email", Message: msgEmpty})
	case !emailPattern.MatchString(email):
		errs = append(errs, FieldError{Field: "email", Message: msgInvalidEmail})
	}
	if phone := strings.TrimSpace(f.Phone); phone != "" && !phonePattern.MatchString(phone) {
		errs = append(errs, FieldError{Field: "phone", Message: msgInvalidPhone})
	}
	return errs
}
