package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/linguaflow/delivery-client/internal/errors"
	"github.com/linguaflow/delivery-client/internal/models"
)

// Validator wraps go-playground struct validation with the custom tags used
// by the delivery client.
type Validator struct {
	structValidator *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	registerCustomValidators(v)
	return &Validator{structValidator: v}
}

// Validate checks struct tags and converts failures into the shared
// ValidationErrors type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if ve := errors.ToValidationErrors(err); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

// ValidateQuestionType accepts any of the eight supported type tags.
func ValidateQuestionType(fl validator.FieldLevel) bool {
	validTypes := []models.QuestionType{
		models.SingleChoice,
		models.MultiChoice,
		models.Matching,
		models.Labeling,
		models.FillBlank,
		models.TrueFalseNG,
		models.YesNoNG,
		models.ShortAnswer,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

// ValidateAnswerToken accepts the literal tokens of the true/false/not-given
// and yes/no/not-given types.
func ValidateAnswerToken(fl validator.FieldLevel) bool {
	validTokens := []string{
		models.TokenTrue,
		models.TokenFalse,
		models.TokenYes,
		models.TokenNo,
		models.TokenNotGiven,
	}

	value := fl.Field().String()
	for _, validToken := range validTokens {
		if validToken == value {
			return true
		}
	}
	return false
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", ValidateQuestionType)
	validate.RegisterValidation("answer_token", ValidateAnswerToken)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
