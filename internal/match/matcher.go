// Package match evaluates user profiles against scheme eligibility criteria
// and orders the results.
package match

import (
	"strings"

	"github.com/yojanamitra-core/server/internal/core/errx"
	"github.com/yojanamitra-core/server/internal/model"
	logx "github.com/yojanamitra-core/server/pkg/logger"
)

// Result is the outcome of one profile/scheme evaluation. TotalEvaluable == 0
// means nothing could be checked against a sparse profile; the scheme is then
// provisionally eligible and the caller should treat the match as low
// confidence.
type Result struct {
	Eligible       bool
	MatchedCount   int
	TotalEvaluable int
}

// Match applies every criterion of the scheme to the profile. Criteria whose
// profile field is absent are skipped, not failed. A numeric operator over a
// non-numeric stored value is a type mismatch: logged, counted as a failed
// criterion, never an abort.
func Match(profile model.UserProfile, scheme model.Scheme) Result {
	var res Result
	failed := 0

	for _, c := range scheme.EligibilityCriteria {
		outcome := evaluate(profile, c)
		switch outcome {
		case outcomeSkipped:
			continue
		case outcomeMatched:
			res.TotalEvaluable++
			res.MatchedCount++
		case outcomeFailed:
			res.TotalEvaluable++
			failed++
		case outcomeTypeMismatch:
			appErr := errx.TypeMismatch(string(c.Type), string(c.Operator))
			logx.Warn().
				Str("scheme_id", scheme.ID).
				Str("criterion_type", string(c.Type)).
				Str("operator", string(c.Operator)).
				Str("error_kind", string(appErr.Kind)).
				Msg("criterion value not comparable, treating as failed")
			res.TotalEvaluable++
			failed++
		}
	}

	res.Eligible = failed == 0
	return res
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeMatched
	outcomeFailed
	outcomeTypeMismatch
)

func evaluate(p model.UserProfile, c model.EligibilityCriterion) outcome {
	switch c.Type {
	case model.CriterionAge:
		age, ok := p.Age.Get()
		if !ok {
			return outcomeSkipped
		}
		return evaluateNumeric(float64(age), c)
	case model.CriterionIncome:
		income, ok := p.AnnualIncome.Get()
		if !ok {
			return outcomeSkipped
		}
		return evaluateNumeric(income, c)
	case model.CriterionEducation:
		level, ok := p.EducationLevel.Get()
		if !ok {
			return outcomeSkipped
		}
		return evaluateString(level, c)
	case model.CriterionLocation:
		loc, ok := p.Location.Get()
		if !ok || loc.State == "" {
			return outcomeSkipped
		}
		return evaluateString(loc.State, c)
	case model.CriterionCategory:
		cat, ok := p.Category.Get()
		if !ok {
			return outcomeSkipped
		}
		return evaluateString(cat, c)
	default:
		// unknown criterion type cannot be evaluated against any profile
		return outcomeSkipped
	}
}

func evaluateNumeric(have float64, c model.EligibilityCriterion) outcome {
	want, ok := toNumber(c.Value)
	if !ok {
		return outcomeTypeMismatch
	}
	switch c.Operator {
	case model.OpEq:
		if have == want {
			return outcomeMatched
		}
	case model.OpGte:
		if have >= want {
			return outcomeMatched
		}
	case model.OpLte:
		if have <= want {
			return outcomeMatched
		}
	case model.OpIn:
		values, ok := toNumberSlice(c.Value)
		if !ok {
			return outcomeTypeMismatch
		}
		for _, v := range values {
			if have == v {
				return outcomeMatched
			}
		}
	}
	return outcomeFailed
}

func evaluateString(have string, c model.EligibilityCriterion) outcome {
	have = strings.ToLower(strings.TrimSpace(have))
	switch c.Operator {
	case model.OpEq:
		want, ok := c.Value.(string)
		if !ok {
			return outcomeFailed
		}
		if have == strings.ToLower(want) {
			return outcomeMatched
		}
	case model.OpIn:
		values, ok := toStringSlice(c.Value)
		if !ok {
			return outcomeFailed
		}
		for _, v := range values {
			if have == strings.ToLower(v) {
				return outcomeMatched
			}
		}
	case model.OpGte, model.OpLte:
		// numeric operator over a string-typed criterion
		return outcomeTypeMismatch
	}
	return outcomeFailed
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func toNumberSlice(v any) ([]float64, bool) {
	switch vs := v.(type) {
	case []float64:
		return vs, true
	case []any:
		out := make([]float64, 0, len(vs))
		for _, item := range vs {
			n, ok := toNumber(item)
			if !ok {
				return nil, false
			}
			out = append(out, n)
		}
		return out, true
	default:
		return nil, false
	}
}

func toStringSlice(v any) ([]string, bool) {
	switch vs := v.(type) {
	case []string:
		return vs, true
	case []any:
		out := make([]string, 0, len(vs))
		for _, item := range vs {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
