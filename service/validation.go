package service

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"loan-simulator/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// fieldMessages are the form messages shown next to each input.
var fieldMessages = map[string]string{
	FieldPropertyValue:         "Valor mínimo de R$ " + groupThousands(int64(MinPropertyValue)),
	FieldDownPaymentPercentage: fmt.Sprintf("Entre %g%% e %g%%", MinDownPaymentPercentage, MaxDownPaymentPercentage),
	FieldTermMonths:            fmt.Sprintf("Entre %d e %d meses", MinTermMonths, MaxTermMonths),
}

var maxPropertyValueMessage = "Valor máximo de R$ " + groupThousands(int64(MaxPropertyValue))

func fieldMessage(field, tag string) string {
	if field == FieldPropertyValue && tag == "lte" {
		return maxPropertyValueMessage
	}
	if msg, ok := fieldMessages[field]; ok {
		return msg
	}
	return fmt.Sprintf("valor inválido (%s)", tag)
}

// groupThousands formats n with dots between thousands, as in "50.000".
func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	return b.String()
}

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Reject NaN and ±Inf before the range tags run.
		if err := v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
			f := fl.Field().Float()
			return !math.IsNaN(f) && !math.IsInf(f, 0)
		}); err != nil {
			panic(fmt.Sprintf("register finite validation: %v", err))
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		validate = v
	})
	return validate
}

// ValidateRequest checks every LoanRequest range. It returns a
// *domain.ValidationError naming all failing fields, or nil.
func ValidateRequest(req domain.LoanRequest) error {
	err := requestValidator().Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate request: %w", err)
	}

	out := &domain.ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, domain.FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe.Field(), fe.Tag()),
		})
	}
	return out
}
