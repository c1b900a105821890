// Package validation checks appointment contact details: a non-empty name, an
// RFC 5322 style email address and a phone number that is both parseable and
// plausible under its country's numbering plan.
package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/nyaruka/phonenumbers"

	"github.com/markdave123-py/Deskmate/internal/core"
	"github.com/markdave123-py/Deskmate/internal/models"
)

// TagPhone validates a phone number against the libphonenumber metadata.
const TagPhone = "phone"

// Validator wraps go-playground/validator with the phone rule and English messages.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
	region   string
}

// New builds a validator. defaultRegion is an ISO 3166-1 alpha-2 code used for
// numbers written without a leading "+"; empty means only international numbers parse.
func New(defaultRegion string) *Validator {
	v := &Validator{
		validate: validator.New(),
		region:   strings.ToUpper(strings.TrimSpace(defaultRegion)),
	}

	// Use JSON tag names for error field names
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	v.trans, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v.validate, v.trans)

	_ = v.validate.RegisterValidation(TagPhone, func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true // Let 'required' handle empty values
		}
		return v.IsValidPhone(value)
	})
	_ = v.validate.RegisterTranslation(TagPhone, v.trans,
		func(t ut.Translator) error {
			return t.Add(TagPhone, "{0} must be a valid phone number", true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(TagPhone, fe.Field())
			return msg
		},
	)

	return v
}

// IsValidPhone reports whether number parses and is an assigned-looking number.
// Parse failures and implausible numbers are deliberately indistinguishable.
func (v *Validator) IsValidPhone(number string) bool {
	num, err := phonenumbers.Parse(number, v.region)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}

// Validate returns the contact on success, otherwise the first failing field
// (name, then email, then phone) as a *core.ValidationError.
func (v *Validator) Validate(name, phone, email string) (*models.ContactInfo, error) {
	info, errs := v.ValidateAll(name, phone, email)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return info, nil
}

// ValidateAll checks every field and reports all failures at once.
func (v *Validator) ValidateAll(name, phone, email string) (*models.ContactInfo, FieldErrors) {
	info := &models.ContactInfo{
		Name:        strings.TrimSpace(name),
		Email:       strings.TrimSpace(email),
		PhoneNumber: strings.TrimSpace(phone),
	}

	err := v.validate.Struct(info)
	if err == nil {
		return info, nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil, FieldErrors{{Field: "unknown", Reason: err.Error()}}
	}

	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, &core.ValidationError{
			Field:  fe.Field(),
			Reason: fe.Translate(v.trans),
		})
	}
	return nil, out
}
