package model

// Opt is an explicit tagged option for profile fields. Matching distinguishes
// "criterion not evaluable" (absent field) from "criterion fails", so plain
// zero values are not enough.
type Opt[T any] struct {
	Value T
	Set   bool
}

// Some wraps a present value.
func Some[T any](v T) Opt[T] {
	return Opt[T]{Value: v, Set: true}
}

// None is the absent value.
func None[T any]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// Language is the user's preferred response language.
type Language string

const (
	LangEnglish  Language = "en"
	LangHindi    Language = "hi"
	LangHinglish Language = "hinglish"
)

// ParseLanguage normalises a language value, defaulting to English so a
// request with a missing or unknown preference still gets a response.
func ParseLanguage(v string) Language {
	switch Language(v) {
	case LangHindi:
		return LangHindi
	case LangHinglish:
		return LangHinglish
	default:
		return LangEnglish
	}
}

// Location describes where the user lives. District and the rural flag are
// finer-grained than most criteria need; state is what location criteria
// compare against.
type Location struct {
	State    string `json:"state"`
	District string `json:"district,omitempty"`
	Rural    bool   `json:"rural,omitempty"`
}

// UserProfile carries everything the matcher can evaluate. Every field except
// LanguagePreference is optional; anonymous sessions omit UserID too.
type UserProfile struct {
	UserID             Opt[string]
	Age                Opt[int]
	EducationLevel     Opt[string]
	Location           Opt[Location]
	Category           Opt[string]
	AnnualIncome       Opt[float64]
	Interests          []string
	LanguagePreference Language
}
