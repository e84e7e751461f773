package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aliskhannn/hafiz-bot/internal/domain/entities"
)

// AddStudentInput holds the fields of a new student.
type AddStudentInput struct {
	Name     string                 `json:"name" validate:"required,max=100"`
	Level    entities.Level         `json:"level"`    // empty means entities.DefaultLevel
	Notes    string                 `json:"notes" validate:"max=2000"`
	Revision entities.RevisionDraft `json:"revision"` // blank means no revision range
}

// AddProgressInput holds one day of progress. SurahNumber and AyahNumber are
// both zero when only a level is recorded.
type AddProgressInput struct {
	Date        string                  `json:"date" validate:"required,max=32"`
	Level       entities.Level          `json:"level" validate:"required"`
	SurahNumber int                     `json:"surahNumber" validate:"min=0"`
	AyahNumber  int                     `json:"ayahNumber" validate:"min=0"`
	Notes       string                  `json:"notes" validate:"max=2000"`
	Revision    *entities.RevisionDraft `json:"revision"` // nil keeps the current range
}

// EditStudentInput replaces the descriptive fields of a student.
type EditStudentInput struct {
	Name     string                 `json:"name" validate:"required,max=100"`
	Notes    string                 `json:"notes" validate:"max=2000"`
	Revision entities.RevisionDraft `json:"revision"` // blank clears the revision range
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateStruct maps validator failures to entities.ValidationError.
func validateStruct(v *validator.Validate, in any) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate input: %w", err)
	}

	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "max":
		msg = fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		msg = fmt.Sprintf("must be at least %s", fe.Param())
	default:
		msg = fmt.Sprintf("failed %q check", fe.Tag())
	}

	return &entities.ValidationError{Field: fe.Field(), Message: msg}
}

func (in *AddStudentInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Notes = strings.TrimSpace(in.Notes)
}

func (in *AddProgressInput) normalize() {
	in.Date = strings.TrimSpace(in.Date)
	in.Notes = strings.TrimSpace(in.Notes)
}

func (in *EditStudentInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Notes = strings.TrimSpace(in.Notes)
}

func checkLevel(l entities.Level, field string) error {
	if !l.Valid() {
		return &entities.ValidationError{Field: field, Message: fmt.Sprintf("unknown level %q", string(l))}
	}
	return nil
}
