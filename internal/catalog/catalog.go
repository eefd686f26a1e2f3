// Package catalog loads course content authored as YAML.
package catalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/lingo/internal/lesson"
)

//go:embed courses/*.yaml
var builtin embed.FS

// Course is a language course: ordered units of ordered lessons.
type Course struct {
	Title    string `yaml:"title" validate:"required,max=100"`
	ImageSrc string `yaml:"image"`
	Units    []Unit `yaml:"units" validate:"required,min=1,dive"`
}

// Unit groups lessons under a heading.
type Unit struct {
	Title       string   `yaml:"title" validate:"required"`
	Description string   `yaml:"description"`
	Lessons     []Lesson `yaml:"lessons" validate:"required,min=1,dive"`
}

// Lesson is an ordered run of challenges.
type Lesson struct {
	Title      string      `yaml:"title" validate:"required"`
	Challenges []Challenge `yaml:"challenges" validate:"required,min=1,dive"`
}

// Challenge is one question. Type defaults to SELECT.
type Challenge struct {
	Type     string   `yaml:"type" validate:"omitempty,oneof=SELECT STANDARD ASSIST"`
	Question string   `yaml:"question" validate:"required"`
	Options  []Option `yaml:"options" validate:"min=2,max=4,dive"`
}

// Option is one answer choice.
type Option struct {
	Text     string `yaml:"text" validate:"required"`
	Correct  bool   `yaml:"correct"`
	ImageSrc string `yaml:"image"`
	AudioSrc string `yaml:"audio"`
}

// ChallengeType returns the engine's challenge type.
func (c Challenge) ChallengeType() lesson.ChallengeType {
	t, _ := lesson.ParseChallengeType(c.Type)
	return t
}

// ChallengeCount sums challenges across every lesson.
func (c *Course) ChallengeCount() int {
	n := 0
	for _, u := range c.Units {
		for _, l := range u.Lessons {
			n += len(l.Challenges)
		}
	}
	return n
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		c := sl.Current().Interface().(Challenge)
		correct := 0
		for _, o := range c.Options {
			if o.Correct {
				correct++
			}
		}
		if correct != 1 {
			sl.ReportError(c.Options, "Options", "options", "onecorrect", "")
		}
	}, Challenge{})
	return v
}

// ErrEmpty is returned when the document contains no course.
var ErrEmpty = errors.New("catalog: empty document")

// Parse decodes and validates a single course document.
func Parse(r io.Reader) (*Course, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Course
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("decode course: %w", err)
	}
	if err := Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks structural rules: non-empty units and lessons, 2 to 4
// options per challenge, exactly one of them correct.
func Validate(c *Course) error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid course %q: %s failed %q", c.Title, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid course %q: %w", c.Title, err)
	}
	return nil
}

// Default returns the built-in starter courses.
func Default() ([]*Course, error) {
	entries, err := builtin.ReadDir("courses")
	if err != nil {
		return nil, fmt.Errorf("read builtin courses: %w", err)
	}
	var out []*Course
	for _, e := range entries {
		data, err := builtin.ReadFile("courses/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		c, err := Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		out = append(out, c)
	}
	return out, nil
}
