// Package validation checks request structs against their validate tags and reports failures as
// apperr field errors. Field names follow the json tags; messages come from the message tag, or
// from a <rule>_message tag when a field carries several rules.
package validation

import (
	"errors"
	"reflect"
	"slices"
	"strings"

	"civiclink/pkg/apperr"
	"civiclink/pkg/models"

	"github.com/go-playground/validator/v10"
)

// MaxPasswordBytes is the longest password bcrypt will hash
const MaxPasswordBytes = 72

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})

	enum := func(tag string, valid func(string) bool) {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return valid(fl.Field().String())
		}); err != nil {
			panic(err)
		}
	}

	enum("language", func(s string) bool { return models.Language(s).IsValid() })
	enum("translation_language", func(s string) bool { return models.Language(s).IsTranslationTarget() })
	enum("category", func(s string) bool { return models.Category(s).IsValid() })
	enum("difficulty", func(s string) bool { return models.Difficulty(s).IsValid() })
	enum("verdict", func(s string) bool { return models.Verdict(s).IsValid() })
	enum("priority", func(s string) bool { return models.Priority(s).IsValid() })
	enum("source_type", func(s string) bool { return models.SourceType(s).IsValid() })
	enum("role", func(s string) bool { return models.Role(s).IsValid() })
	enum("review_status", func(s string) bool {
		return slices.Contains(models.ReviewStatuses, models.ClaimStatus(s))
	})
	enum("bcrypt", func(s string) bool { return len(s) <= MaxPasswordBytes })

	return v
}

// Struct validates req, returning a validation error listing every rejected field
func Struct(req any) error {
	var fields apperr.Fields
	Check(&fields, req)
	return fields.Err()
}

// Check adds the rejected fields of req to fields, so callers can combine tag rules with checks
// that need the store.
func Check(fields *apperr.Fields, req any) {
	err := validate.Struct(req)
	if err == nil {
		return
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		fields.Add("request", "Invalid request", nil)
		return
	}

	root := reflect.TypeOf(req)
	for _, fe := range errs {
		var value any = fe.Value()
		message := "Invalid " + fe.Field()

		if sf, ok := structField(root, fe.StructNamespace()); ok {
			if m := sf.Tag.Get(fe.Tag() + "_message"); len(m) > 0 {
				message = m
			} else if m = sf.Tag.Get("message"); len(m) > 0 {
				message = m
			}
			if sf.Tag.Get("sensitive") == "true" {
				value = nil
			}
		}

		fields.Add(fieldPath(fe.Namespace()), message, value)
	}
}

// fieldPath drops the struct name and slice indexes, so Request.sources[1].type is sources.type
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")[1:]
	for i, p := range parts {
		if n := strings.IndexByte(p, '['); n >= 0 {
			parts[i] = p[:n]
		}
	}
	return strings.Join(parts, ".")
}

func structField(t reflect.Type, namespace string) (reflect.StructField, bool) {
	var sf reflect.StructField
	for _, part := range strings.Split(namespace, ".")[1:] {
		if n := strings.IndexByte(part, '['); n >= 0 {
			part = part[:n]
		}

		t = indirect(t)
		if t.Kind() != reflect.Struct {
			return reflect.StructField{}, false
		}

		var ok bool
		if sf, ok = t.FieldByName(part); !ok {
			return reflect.StructField{}, false
		}
		t = sf.Type
	}
	return sf, len(sf.Name) > 0
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice || t.Kind() == reflect.Array || t.Kind() == reflect.Map {
		t = t.Elem()
	}
	return t
}
