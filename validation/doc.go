// Package validation checks configuration structs against their
// `validate` struct tags using go-playground/validator.
package validation
