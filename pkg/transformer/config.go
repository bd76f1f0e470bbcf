// Package transformer post-processes exported Notion HTML pages.
//
// A page goes through a fixed sequence of DOM passes: element ids are
// stripped, empty class attributes are dropped, attachment links are given
// their file name as visible text, a stylesheet is appended to the page's
// <style> element, and the result is pretty-printed.
package transformer

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/jmylchreest/notionbackup/pkg/htmlfmt"
)

// Config defines the transformer settings.
type Config struct {
	// Stylesheet is the CSS appended to the page's <style> element. Required.
	Stylesheet string `json:"stylesheet" yaml:"stylesheet" validate:"required"`

	// WrapperClass is the class token that marks an attachment link wrapper.
	WrapperClass string `json:"wrapper_class" yaml:"wrapper_class" validate:"required,classtoken"`

	// ExternalPrefix marks hrefs that point off the export and are left alone.
	ExternalPrefix string `json:"external_prefix" yaml:"external_prefix" validate:"required"`

	// Format configures the pretty printer applied after serialization.
	Format htmlfmt.Config `json:"format" yaml:"format"`

	// Logger receives diagnostics about skipped links. Defaults to the package logger.
	Logger *slog.Logger `json:"-" yaml:"-" validate:"-"`
}

// DefaultConfig returns the settings for Notion exports. The stylesheet is
// left empty and must be supplied by the caller.
func DefaultConfig() *Config {
	return &Config{
		WrapperClass:   "source",
		ExternalPrefix: "http",
		Format:         htmlfmt.DefaultConfig(),
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("classtoken", func(fl validator.FieldLevel) bool {
		return !strings.ContainsFunc(fl.Field().String(), unicode.IsSpace)
	})
	return v
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			msgs = append(msgs, e.Namespace()+" "+formatValidationError(e))
		}
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
	}

	if strings.TrimSpace(c.Stylesheet) == "" {
		return fmt.Errorf("%w: Config.Stylesheet is blank", ErrInvalidConfig)
	}
	return nil
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", e.Param())
	case "classtoken":
		return "must be a single class token without whitespace"
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}
