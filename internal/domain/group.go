package domain

import (
	"strings"
	"time"
)

// DefaultGroupColor is used when a group is created without a color.
const DefaultGroupColor = "#6C5CE7"

// DecisionGroup organizes decisions into a project or theme.
type DecisionGroup struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"        validate:"required,max=100"`
	Description string    `json:"description"`
	Color       string    `json:"color"       validate:"required,hexcolor,len=7"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewDecisionGroup creates a validated group. An empty color falls back to
// DefaultGroupColor.
func NewDecisionGroup(name, description, color string, now time.Time) (DecisionGroup, error) {
	g := DecisionGroup{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Color:       strings.TrimSpace(color),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if g.Color == "" {
		g.Color = DefaultGroupColor
	}
	if err := g.Validate(); err != nil {
		return DecisionGroup{}, err
	}
	return g, nil
}

// Validate checks that the group has a name and a #RRGGBB color.
func (g DecisionGroup) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return NewValidationError("name", "cannot be blank", ErrValidation)
	}
	return validateStruct(g)
}

// DefaultGroups are the groups offered on first use.
func DefaultGroups(now time.Time) []DecisionGroup {
	return []DecisionGroup{
		{Name: "Personal", Description: "Personal life decisions", Color: "#6C5CE7", CreatedAt: now, UpdatedAt: now},
		{Name: "Work", Description: "Work and career decisions", Color: "#00B894", CreatedAt: now, UpdatedAt: now},
		{Name: "Health", Description: "Health and fitness decisions", Color: "#FD79A8", CreatedAt: now, UpdatedAt: now},
	}
}
