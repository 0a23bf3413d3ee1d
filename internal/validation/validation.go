// Package validation holds the business rules a film or user must satisfy
// before it is persisted.
//
// Rules are checked in a fixed order and the first failing rule wins, so a
// caller always gets one clear reason back. Each rule is a validator/v10 tag
// evaluated with Validate.Var; the domain specific tags are registered once
// in New.
//
// Besides checking, Film and User normalise their input: empty relationship
// sets become non-nil, a missing rating becomes G, a blank user name becomes
// the login. These are the only side effects.
package validation

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/model"
)

const MaxDescriptionLength = 200

// FirstScreening is the date of the first public film screening. No film can
// be released before it.
var FirstScreening = model.NewDate(1895, time.December, 28)

// Rules validates films and users. It is safe for concurrent use.
type Rules struct {
	validate       *validator.Validate
	minDescription int
	now            func() time.Time
}

type Option func(*Rules)

// WithMinDescription sets the lower bound on the trimmed description length.
// The default is 0, which allows an empty description.
func WithMinDescription(n int) Option {
	return func(r *Rules) { r.minDescription = n }
}

// WithClock replaces time.Now when deciding whether a birthday is in the
// future.
func WithClock(now func() time.Time) Option {
	return func(r *Rules) { r.now = now }
}

func New(opts ...Option) *Rules {
	r := &Rules{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}

	v := validator.New()
	mustRegister(v, "nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "nowhitespace", func(fl validator.FieldLevel) bool {
		return !strings.ContainsFunc(fl.Field().String(), unicode.IsSpace)
	})
	mustRegister(v, "description", func(fl validator.FieldLevel) bool {
		n := utf8.RuneCountInString(strings.TrimSpace(fl.Field().String()))
		return n >= r.minDescription && n <= MaxDescriptionLength
	})
	mustRegister(v, "screened", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && !t.IsZero() && !t.Before(FirstScreening.Time)
	})
	mustRegister(v, "notfuture", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && !t.IsZero() && !t.After(model.DateOf(r.now()).Time)
	})
	r.validate = v
	return r
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: registering %q: %v", tag, err))
	}
}

// check is one ordered rule: value must satisfy tag, otherwise the caller
// gets message.
type check struct {
	field   string
	value   any
	tag     string
	message string
}

func (r *Rules) run(checks ...check) error {
	for _, c := range checks {
		err := r.validate.Var(c.value, c.tag)
		if err == nil {
			continue
		}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return apperror.ValidationFailed(c.field, c.message)
		}
		return fmt.Errorf("validation: checking %s: %w", c.field, err)
	}
	return nil
}

// Film checks f and fills in defaults. On success f.Likes and f.Genres are
// non-nil, f.MPA is set and resolved against the rating table, and genres are
// deduplicated, resolved and sorted by id.
func (r *Rules) Film(f *model.Film) error {
	err := r.run(
		check{"name", f.Name, "nonblank", "film name must not be blank"},
		check{"description", f.Description, "description",
			fmt.Sprintf("film description must be between %d and %d characters", r.minDescription, MaxDescriptionLength)},
		check{"releaseDate", f.ReleaseDate.Time, "screened",
			"film release date must not be before " + FirstScreening.String()},
		check{"duration", f.Duration, "min=1", "film duration must be a positive number of minutes"},
	)
	if err != nil {
		return err
	}

	if f.Likes == nil {
		f.Likes = []int64{}
	}

	genres, err := resolveGenres(f.Genres)
	if err != nil {
		return err
	}
	f.Genres = genres

	ratingID := model.DefaultMPAID
	if f.MPA != nil {
		ratingID = f.MPA.ID
	}
	rating, ok := model.MPAByID(ratingID)
	if !ok {
		return apperror.ValidationFailed("mpa", fmt.Sprintf("unknown rating id %d", ratingID))
	}
	f.MPA = &rating

	return nil
}

func resolveGenres(in []model.Genre) ([]model.Genre, error) {
	out := make([]model.Genre, 0, len(in))
	for _, g := range in {
		genre, ok := model.GenreByID(g.ID)
		if !ok {
			return nil, apperror.ValidationFailed("genres", fmt.Sprintf("unknown genre id %d", g.ID))
		}
		if !slices.Contains(out, genre) {
			out = append(out, genre)
		}
	}
	slices.SortFunc(out, func(a, b model.Genre) int { return a.ID - b.ID })
	return out, nil
}

// User checks u and fills in defaults. A blank name is replaced by the login;
// a non-blank name is never touched.
func (r *Rules) User(u *model.User) error {
	err := r.run(
		check{"email", u.Email, "nonblank,contains=@", "email must not be blank and must contain @"},
		check{"login", u.Login, "nonblank,nowhitespace", "login must not be blank or contain whitespace"},
	)
	if err != nil {
		return err
	}

	if strings.TrimSpace(u.Name) == "" {
		u.Name = u.Login
	}

	if err := r.run(
		check{"birthday", u.Birthday.Time, "notfuture", "birthday must be set and must not be in the future"},
	); err != nil {
		return err
	}

	if u.Friends == nil {
		u.Friends = []int64{}
	}
	return nil
}
