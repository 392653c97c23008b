package domain

import (
	"encoding/json"
	"errors"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Category is the fixed classification of a decision. The zero value means
// the decision has no category.
type Category string

// Known categories.
const (
	CategoryHealth        Category = "Health"
	CategoryMoney         Category = "Money"
	CategoryWork          Category = "Work"
	CategoryStudy         Category = "Study"
	CategoryRelationships Category = "Relationships"
	CategoryHabits        Category = "Habits"
	CategoryOther         Category = "Other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryHealth,
	CategoryMoney,
	CategoryWork,
	CategoryStudy,
	CategoryRelationships,
	CategoryHabits,
	CategoryOther,
}

// IsValid reports whether c is one of Categories.
func (c Category) IsValid() bool {
	return slices.Contains(Categories, c)
}

// DefaultCheckInDays returns the suggested reminder delay for a category.
func DefaultCheckInDays(c Category) int {
	switch c {
	case CategoryHealth:
		return 1
	case CategoryMoney, CategoryRelationships, CategoryHabits:
		return 7
	default:
		return 3
	}
}

// FollowThrough records whether the person went through with the decision.
type FollowThrough int8

// Possible FollowThrough values.
const (
	FollowUnknown FollowThrough = iota
	FollowYes
	FollowNo
)

// FollowThroughFromPtr converts a nullable boolean into a FollowThrough.
func FollowThroughFromPtr(b *bool) FollowThrough {
	switch {
	case b == nil:
		return FollowUnknown
	case *b:
		return FollowYes
	default:
		return FollowNo
	}
}

// Ptr converts f into a nullable boolean, nil when unknown.
func (f FollowThrough) Ptr() *bool {
	switch f {
	case FollowYes:
		v := true
		return &v
	case FollowNo:
		v := false
		return &v
	default:
		return nil
	}
}

// MarshalJSON encodes FollowThrough as true, false or null.
func (f FollowThrough) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Ptr())
}

// UnmarshalJSON decodes true, false or null.
func (f *FollowThrough) UnmarshalJSON(data []byte) error {
	var b *bool
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	*f = FollowThroughFromPtr(b)
	return nil
}

// Decision is one logged decision together with its prediction and, once
// recorded, its outcome. Decisions are values: updates produce a new
// Decision rather than mutating an existing one.
//
// Quantitative fields are pointers so that an absent value can be told apart
// from zero, which is a valid reading on every scale.
type Decision struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"                validate:"required,max=200"`
	Description string   `json:"description"`
	Prediction  string   `json:"prediction"`
	Outcome     string   `json:"outcome,omitempty"`
	Category    Category `json:"category,omitempty"   validate:"omitempty,category"`
	Tags        []string `json:"tags"`
	GroupID     *int64   `json:"group_id,omitempty"`

	CreatedAt         time.Time  `json:"created_at"                    validate:"required"`
	ReminderAt        *time.Time `json:"reminder_at,omitempty"`
	OutcomeRecordedAt *time.Time `json:"outcome_recorded_at,omitempty"`

	// Predictions on a -5..+5 scale, confidence on 0..100.
	PredictedEnergy        *float64 `json:"predicted_energy,omitempty"         validate:"omitempty,gte=-5,lte=5"`
	PredictedMood          *float64 `json:"predicted_mood,omitempty"           validate:"omitempty,gte=-5,lte=5"`
	PredictedStress        *float64 `json:"predicted_stress,omitempty"         validate:"omitempty,gte=-5,lte=5"`
	PredictedRegretChance  *float64 `json:"predicted_regret_chance,omitempty"  validate:"omitempty,gte=-5,lte=5"`
	PredictedOverallImpact *float64 `json:"predicted_overall_impact,omitempty" validate:"omitempty,gte=-5,lte=5"`
	PredictionConfidence   *float64 `json:"prediction_confidence,omitempty"    validate:"omitempty,gte=0,lte=100"`

	// Outcomes on a -5..+5 scale, regret on 0..10.
	ActualEnergy *float64      `json:"actual_energy,omitempty" validate:"omitempty,gte=-5,lte=5"`
	ActualMood   *float64      `json:"actual_mood,omitempty"   validate:"omitempty,gte=-5,lte=5"`
	ActualStress *float64      `json:"actual_stress,omitempty" validate:"omitempty,gte=-5,lte=5"`
	ActualRegret *float64      `json:"actual_regret,omitempty" validate:"omitempty,gte=0,lte=10"`
	Followed     FollowThrough `json:"followed"`
}

// Float returns a pointer to v. It keeps literals for optional fields short.
func Float(v float64) *float64 {
	return &v
}

// IsCompleted reports whether an outcome has been recorded, either as text
// or as at least one quantitative reading.
func (d Decision) IsCompleted() bool {
	return d.Outcome != "" ||
		d.ActualEnergy != nil ||
		d.ActualMood != nil ||
		d.ActualStress != nil ||
		d.ActualRegret != nil
}

// DisplayCategory returns the category name, or "Other" when unset.
func (d Decision) DisplayCategory() Category {
	if d.Category == "" {
		return CategoryOther
	}
	return d.Category
}

// HasTag reports whether d carries tag, ignoring case.
func (d Decision) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Clone returns a copy of d that shares no slices with the original.
func (d Decision) Clone() Decision {
	d.Tags = slices.Clone(d.Tags)
	return d
}

// Validate checks field ranges and required values.
func (d Decision) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return NewValidationError("title", "cannot be blank", ErrValidation)
	}
	return validateStruct(d)
}

// DecisionInput carries the user-supplied fields of a new decision.
type DecisionInput struct {
	Title                  string   `json:"title"                              validate:"required,max=200"`
	Description            string   `json:"description"`
	Prediction             string   `json:"prediction"`
	Category               Category `json:"category"                           validate:"omitempty,category"`
	Tags                   []string `json:"tags"`
	GroupID                *int64   `json:"group_id,omitempty"`
	ReminderDays           int      `json:"reminder_days"                      validate:"gte=0,lte=365"`
	PredictedEnergy        *float64 `json:"predicted_energy,omitempty"         validate:"omitempty,gte=-5,lte=5"`
	PredictedMood          *float64 `json:"predicted_mood,omitempty"           validate:"omitempty,gte=-5,lte=5"`
	PredictedStress        *float64 `json:"predicted_stress,omitempty"         validate:"omitempty,gte=-5,lte=5"`
	PredictedRegretChance  *float64 `json:"predicted_regret_chance,omitempty"  validate:"omitempty,gte=-5,lte=5"`
	PredictedOverallImpact *float64 `json:"predicted_overall_impact,omitempty" validate:"omitempty,gte=-5,lte=5"`
	PredictionConfidence   *float64 `json:"prediction_confidence,omitempty"    validate:"omitempty,gte=0,lte=100"`
}

// NewDecision builds an unsaved Decision from input. Text fields are
// trimmed, empty tags dropped, and the reminder placed ReminderDays after now.
func NewDecision(in DecisionInput, now time.Time) (Decision, error) {
	if strings.TrimSpace(in.Title) == "" {
		return Decision{}, NewValidationError("title", "cannot be blank", ErrValidation)
	}
	if err := validateStruct(in); err != nil {
		return Decision{}, err
	}

	d := Decision{
		Title:                  strings.TrimSpace(in.Title),
		Description:            strings.TrimSpace(in.Description),
		Prediction:             strings.TrimSpace(in.Prediction),
		Category:               in.Category,
		Tags:                   NormalizeTags(in.Tags),
		GroupID:                in.GroupID,
		CreatedAt:              now,
		PredictedEnergy:        in.PredictedEnergy,
		PredictedMood:          in.PredictedMood,
		PredictedStress:        in.PredictedStress,
		PredictedRegretChance:  in.PredictedRegretChance,
		PredictedOverallImpact: in.PredictedOverallImpact,
		PredictionConfidence:   in.PredictionConfidence,
	}
	if in.ReminderDays > 0 {
		reminder := now.AddDate(0, 0, in.ReminderDays)
		d.ReminderAt = &reminder
	}
	return d, nil
}

// OutcomeInput carries what actually happened after a decision.
type OutcomeInput struct {
	Outcome      string        `json:"outcome"`
	ActualEnergy *float64      `json:"actual_energy,omitempty" validate:"omitempty,gte=-5,lte=5"`
	ActualMood   *float64      `json:"actual_mood,omitempty"   validate:"omitempty,gte=-5,lte=5"`
	ActualStress *float64      `json:"actual_stress,omitempty" validate:"omitempty,gte=-5,lte=5"`
	ActualRegret *float64      `json:"actual_regret,omitempty" validate:"omitempty,gte=0,lte=10"`
	Followed     FollowThrough `json:"followed"`
}

func (in OutcomeInput) hasData() bool {
	return strings.TrimSpace(in.Outcome) != "" ||
		in.ActualEnergy != nil ||
		in.ActualMood != nil ||
		in.ActualStress != nil ||
		in.ActualRegret != nil ||
		in.Followed != FollowUnknown
}

// WithOutcome returns a copy of d with the outcome fields replaced by in and
// OutcomeRecordedAt set to at. d itself is left untouched.
func (d Decision) WithOutcome(in OutcomeInput, at time.Time) (Decision, error) {
	if d.ID == 0 {
		return Decision{}, NewValidationError("id", "is required", ErrInvalidID)
	}
	if !in.hasData() {
		return Decision{}, NewValidationError("", "provide at least one outcome value", ErrNoOutcomeData)
	}
	if err := validateStruct(in); err != nil {
		return Decision{}, err
	}

	next := d.Clone()
	next.Outcome = strings.TrimSpace(in.Outcome)
	next.ActualEnergy = in.ActualEnergy
	next.ActualMood = in.ActualMood
	next.ActualStress = in.ActualStress
	next.ActualRegret = in.ActualRegret
	next.Followed = in.Followed
	next.OutcomeRecordedAt = &at
	return next, nil
}

// NormalizeTags trims tags, drops empty ones and removes duplicates while
// keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Names in errors follow the json tags so API clients see their own field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).IsValid()
	})
	return v
}

// validateStruct runs the struct validator and converts the first failure
// into a *ValidationError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return NewValidationError("", err.Error(), ErrValidation)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "category":
		return NewValidationError(fe.Field(), "is not a known category", ErrInvalidCategory)
	case "gte", "lte":
		return NewValidationError(fe.Field(), "is out of range", ErrOutOfRange)
	case "required":
		return NewValidationError(fe.Field(), "is required", ErrValidation)
	case "max":
		return NewValidationError(fe.Field(), "is too long", ErrValidation)
	case "hexcolor", "len":
		return NewValidationError(fe.Field(), "must be in #RRGGBB form", ErrValidation)
	default:
		return NewValidationError(fe.Field(), "failed on "+fe.Tag(), ErrValidation)
	}
}
