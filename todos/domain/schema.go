package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid casa com qualquer *ValidationError via errors.Is.
var ErrInvalid = errors.New("invalid todo")

// Violation é uma regra que falhou em um campo.
type Violation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func (v Violation) String() string { return v.Field + ": " + v.Rule }

// ValidationError lista todas as regras que um valor violou.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "invalid todo: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

// Schema valida todos e candidates. Pode ser usado por várias goroutines.
type Schema struct {
	v *validator.Validate
}

func NewSchema() *Schema {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// "trimmed": sem espaço em branco no começo nem no fim
	if err := v.RegisterValidation("trimmed", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == strings.TrimSpace(s)
	}); err != nil {
		panic(err)
	}
	return &Schema{v: v}
}

// ValidateCandidate confere um todo vindo do cliente: id presente, não vazio,
// sem vírgula e sem espaço nas pontas; todo presente (pode ser vazio).
func (s *Schema) ValidateCandidate(c Candidate) error {
	return s.check("", c)
}

// ValidateTodo confere um registro já armazenado.
func (s *Schema) ValidateTodo(t Todo) error {
	return s.check("", t)
}

// ValidateTodos confere uma sequência. As violações levam o índice do
// elemento como prefixo, ex: "[1].id".
func (s *Schema) ValidateTodos(ts []Todo) error {
	var all []Violation
	for i, t := range ts {
		err := s.check(fmt.Sprintf("[%d].", i), t)
		var verr *ValidationError
		if errors.As(err, &verr) {
			all = append(all, verr.Violations...)
		} else if err != nil {
			return err
		}
	}
	if len(all) > 0 {
		return &ValidationError{Violations: all}
	}
	return nil
}

func (s *Schema) check(prefix string, value any) error {
	err := s.v.Struct(value)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}
	out := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, Violation{Field: prefix + fe.Field(), Rule: fe.Tag()})
	}
	return &ValidationError{Violations: out}
}
