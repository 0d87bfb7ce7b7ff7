package model

import (
	"fmt"
	"time"
)

// SchemeCategory classifies a government opportunity record.
type SchemeCategory string

const (
	CategoryScholarship      SchemeCategory = "scholarship"
	CategoryInternship       SchemeCategory = "internship"
	CategoryEmployment       SchemeCategory = "employment"
	CategorySkillDevelopment SchemeCategory = "skill_development"
)

// ParseSchemeCategory validates a category value coming from a filter or
// ingestion payload.
func ParseSchemeCategory(v string) (SchemeCategory, error) {
	switch SchemeCategory(v) {
	case CategoryScholarship, CategoryInternship, CategoryEmployment, CategorySkillDevelopment:
		return SchemeCategory(v), nil
	default:
		return "", fmt.Errorf("unknown scheme category %q", v)
	}
}

// CriterionType names the profile dimension a criterion inspects.
type CriterionType string

const (
	CriterionAge       CriterionType = "age"
	CriterionEducation CriterionType = "education"
	CriterionIncome    CriterionType = "income"
	CriterionLocation  CriterionType = "location"
	CriterionCategory  CriterionType = "category"
)

// CriterionOperator is the comparison applied between a profile field and the
// criterion value.
type CriterionOperator string

const (
	OpEq  CriterionOperator = "eq"
	OpGte CriterionOperator = "gte"
	OpLte CriterionOperator = "lte"
	OpIn  CriterionOperator = "in"
)

// EligibilityCriterion is a single typed predicate over a user profile.
// Value is typed per criterion: float64 for age/income, string for
// education/category and eq-location, []string for in-operators.
type EligibilityCriterion struct {
	Type     CriterionType     `json:"type"`
	Operator CriterionOperator `json:"operator"`
	Value    any               `json:"value"`
}

// Validate checks operator/type compatibility. Numeric comparisons only make
// sense for age and income; location supports only eq and in.
func (c EligibilityCriterion) Validate() error {
	switch c.Operator {
	case OpGte, OpLte:
		if c.Type != CriterionAge && c.Type != CriterionIncome {
			return fmt.Errorf("operator %s is not valid for criterion type %s", c.Operator, c.Type)
		}
	case OpEq, OpIn:
		// valid for every type
	default:
		return fmt.Errorf("unknown operator %q", c.Operator)
	}
	return nil
}

// Step is one ordered instruction in a scheme application process.
type Step struct {
	Order       int    `json:"order"`
	Instruction string `json:"instruction"`
}

// Scheme is a government program, scholarship, internship or public service
// record. The core treats schemes as immutable; updates arrive through the
// ingestion collaborator and only trigger cache invalidation here.
type Scheme struct {
	ID                  string                 `json:"id"`
	Name                string                 `json:"name"`
	Description         string                 `json:"description"`
	Category            SchemeCategory         `json:"category"`
	EligibilityCriteria []EligibilityCriterion `json:"eligibilityCriteria"`
	Benefits            []string               `json:"benefits"`
	ApplicationSteps    []Step                 `json:"applicationSteps"`
	Deadline            *time.Time             `json:"deadline,omitempty"`
	OfficialLink        string                 `json:"officialLink"`
	SourceDepartment    string                 `json:"sourceDepartment"`
	LastUpdated         time.Time              `json:"lastUpdated"`
	Keywords            []string               `json:"keywords"`
}

// Validate enforces the published-scheme invariants: criteria never empty and
// deadline, when present, strictly after the last update.
func (s Scheme) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("scheme id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("scheme %s: name is required", s.ID)
	}
	if _, err := ParseSchemeCategory(string(s.Category)); err != nil {
		return fmt.Errorf("scheme %s: %w", s.ID, err)
	}
	if len(s.EligibilityCriteria) == 0 {
		return fmt.Errorf("scheme %s: eligibility criteria must not be empty", s.ID)
	}
	for i, c := range s.EligibilityCriteria {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("scheme %s: criterion %d: %w", s.ID, i, err)
		}
	}
	if s.Deadline != nil && !s.Deadline.After(s.LastUpdated) {
		return fmt.Errorf("scheme %s: deadline must be after lastUpdated", s.ID)
	}
	return nil
}
