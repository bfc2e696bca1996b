// Package validate holds the client-side form validation rules. Rules are
// pure and synchronous: they map a form snapshot to a field→message map
// containing only the fields that currently violate a rule. They never touch
// the network; the backend remains the authority on the final word.
package validate

import (
	"regexp"
	"strconv"
	"strings"
)

// Snapshot provides read access to a form's current values. Text fields are
// read through Value, checkboxes through Flag.
type Snapshot interface {
	Value(name string) string
	Flag(name string) bool
}

// Errors maps a field name to a human-readable failure message. Absence of a
// key means the field is currently valid.
type Errors map[string]string

// RuleSet validates a whole form in one synchronous pass.
type RuleSet func(s Snapshot) Errors

// Field names shared across forms. They double as the JSON attribute names
// where the backend uses the same field.
const (
	FieldEmail             = "email"
	FieldPassword          = "password"
	FieldConfirmPassword   = "confirmPassword"
	FieldRememberMe        = "rememberMe"
	FieldFirstName         = "firstName"
	FieldLastName          = "lastName"
	FieldAgreeToTerms      = "agreeToTerms"
	FieldName              = "name"
	FieldMessage           = "message"
	FieldTitle             = "title"
	FieldDescription       = "description"
	FieldPrice             = "price"
	FieldAvailableQuantity = "available_quantity"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	lowerPattern = regexp.MustCompile(`[a-z]`)
	upperPattern = regexp.MustCompile(`[A-Z]`)
	digitPattern = regexp.MustCompile(`[0-9]`)
)

// Login validates the sign-in form: a well-formed email and a password of at
// least 6 characters.
func Login(s Snapshot) Errors {
	errs := Errors{}
	checkEmail(errs, s.Value(FieldEmail))

	password := s.Value(FieldPassword)
	switch {
	case password == "":
		errs[FieldPassword] = "Password is required"
	case len(password) < 6:
		errs[FieldPassword] = "Password must be at least 6 characters long"
	}
	return errs
}

// Register validates the account creation form. The password policy is
// stricter than login: 8+ characters with at least one lowercase letter, one
// uppercase letter, and one digit, in any order.
func Register(s Snapshot) Errors {
	errs := Errors{}

	first := strings.TrimSpace(s.Value(FieldFirstName))
	switch {
	case first == "":
		errs[FieldFirstName] = "First name is required"
	case len(first) < 2:
		errs[FieldFirstName] = "First name must be at least 2 characters"
	}

	last := strings.TrimSpace(s.Value(FieldLastName))
	switch {
	case last == "":
		errs[FieldLastName] = "Last name is required"
	case len(last) < 2:
		errs[FieldLastName] = "Last name must be at least 2 characters"
	}

	checkEmail(errs, s.Value(FieldEmail))

	password := s.Value(FieldPassword)
	switch {
	case password == "":
		errs[FieldPassword] = "Password is required"
	case len(password) < 8:
		errs[FieldPassword] = "Password must be at least 8 characters long"
	case !lowerPattern.MatchString(password) ||
		!upperPattern.MatchString(password) ||
		!digitPattern.MatchString(password):
		errs[FieldPassword] = "Password must contain at least one uppercase letter, one lowercase letter, and one number"
	}

	confirm := s.Value(FieldConfirmPassword)
	switch {
	case confirm == "":
		errs[FieldConfirmPassword] = "Please confirm your password"
	case confirm != password:
		errs[FieldConfirmPassword] = "Passwords do not match"
	}

	if !s.Flag(FieldAgreeToTerms) {
		errs[FieldAgreeToTerms] = "You must agree to the terms and conditions"
	}
	return errs
}

// Contact validates the contact form: name 2-50 characters, a well-formed
// email, and a message of 10-500 characters (lengths after trimming).
func Contact(s Snapshot) Errors {
	errs := Errors{}

	name := strings.TrimSpace(s.Value(FieldName))
	switch {
	case name == "":
		errs[FieldName] = "Name is required"
	case len(name) < 2:
		errs[FieldName] = "Name must be at least 2 characters long"
	case len(name) > 50:
		errs[FieldName] = "Name must be less than 50 characters"
	}

	checkEmail(errs, s.Value(FieldEmail))

	message := strings.TrimSpace(s.Value(FieldMessage))
	switch {
	case message == "":
		errs[FieldMessage] = "Message is required"
	case len(message) < 10:
		errs[FieldMessage] = "Message must be at least 10 characters long"
	case len(message) > 500:
		errs[FieldMessage] = "Message must be less than 500 characters"
	}
	return errs
}

// Product validates the create/edit product form. Price must parse as a
// number greater than zero; quantity must parse as a non-negative integer.
func Product(s Snapshot) Errors {
	errs := Errors{}

	name := strings.TrimSpace(s.Value(FieldName))
	switch {
	case name == "":
		errs[FieldName] = "Name is required"
	case len(name) < 2:
		errs[FieldName] = "Name must be at least 2 characters long"
	}

	title := strings.TrimSpace(s.Value(FieldTitle))
	switch {
	case title == "":
		errs[FieldTitle] = "Title is required"
	case len(title) < 2:
		errs[FieldTitle] = "Title must be at least 2 characters long"
	}

	description := strings.TrimSpace(s.Value(FieldDescription))
	switch {
	case description == "":
		errs[FieldDescription] = "Description is required"
	case len(description) < 10:
		errs[FieldDescription] = "Description must be at least 10 characters long"
	}

	price := strings.TrimSpace(s.Value(FieldPrice))
	if price == "" {
		errs[FieldPrice] = "Price is required"
	} else if v, err := strconv.ParseFloat(price, 64); err != nil || v <= 0 {
		errs[FieldPrice] = "Price must be a valid number greater than 0"
	}

	quantity := strings.TrimSpace(s.Value(FieldAvailableQuantity))
	if quantity == "" {
		errs[FieldAvailableQuantity] = "Available quantity is required"
	} else if v, err := strconv.Atoi(quantity); err != nil || v < 0 {
		errs[FieldAvailableQuantity] = "Available quantity must be a valid number greater than or equal to 0"
	}
	return errs
}

func checkEmail(errs Errors, value string) {
	email := strings.TrimSpace(value)
	switch {
	case email == "":
		errs[FieldEmail] = "Email is required"
	case !emailPattern.MatchString(email):
		errs[FieldEmail] = "Please enter a valid email address"
	}
}
