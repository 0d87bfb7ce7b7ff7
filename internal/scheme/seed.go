package scheme

import (
	"context"
	"time"

	"github.com/yojanamitra-core/server/internal/model"
)

func deadline(v string) *time.Time {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		panic(err)
	}
	return &t
}

var seedUpdatedAt = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// SeedSchemes is the demo catalogue for local runs and tests. Production
// deployments replace it with the ingestion collaborator's feed.
var SeedSchemes = []model.Scheme{
	{
		ID:          "sch-001",
		Name:        "PM Scholarship",
		Description: "Central scholarship for higher education students from economically weaker families. Covers tuition and a monthly stipend. छात्रवृत्ति",
		Category:    model.CategoryScholarship,
		EligibilityCriteria: []model.EligibilityCriterion{
			{Type: model.CriterionAge, Operator: model.OpLte, Value: float64(25)},
			{Type: model.CriterionEducation, Operator: model.OpIn, Value: []string{"12th_pass", "undergraduate"}},
			{Type: model.CriterionIncome, Operator: model.OpLte, Value: float64(800000)},
		},
		Benefits: []string{
			"Full tuition fee reimbursement",
			"Monthly stipend of ₹3,000",
			"One-time book allowance of ₹5,000",
		},
		ApplicationSteps: []model.Step{
			{Order: 1, Instruction: "Register on the National Scholarship Portal"},
			{Order: 2, Instruction: "Upload income certificate and latest marksheet"},
			{Order: 3, Instruction: "Submit the application before the deadline and note the reference number"},
		},
		Deadline:         deadline("2025-10-31"),
		OfficialLink:     "https://scholarships.gov.in/pm-scholarship",
		SourceDepartment: "Ministry of Education",
		LastUpdated:      seedUpdatedAt,
		Keywords:         []string{"scholarship", "students", "tuition", "stipend", "chhatravritti"},
	},
	{
		ID:          "sch-002",
		Name:        "National Apprenticeship Training",
		Description: "Paid apprenticeship placements in public sector units for fresh graduates and diploma holders. प्रशिक्षुता",
		Category:    model.CategoryInternship,
		EligibilityCriteria: []model.EligibilityCriterion{
			{Type: model.CriterionAge, Operator: model.OpLte, Value: float64(28)},
			{Type: model.CriterionEducation, Operator: model.OpIn, Value: []string{"diploma", "undergraduate", "graduate"}},
		},
		Benefits: []string{
			"Monthly stipend of ₹9,000 during training",
			"Certificate recognised by central government recruiters",
		},
		ApplicationSteps: []model.Step{
			{Order: 1, Instruction: "Create a profile on the apprenticeship portal"},
			{Order: 2, Instruction: "Apply to open positions matching your qualification"},
		},
		Deadline:         deadline("2025-12-15"),
		OfficialLink:     "https://apprenticeshipindia.gov.in",
		SourceDepartment: "Ministry of Skill Development",
		LastUpdated:      seedUpdatedAt,
		Keywords:         []string{"internship", "apprenticeship", "training", "graduates", "stipend"},
	},
	{
		ID:          "sch-003",
		Name:        "Rural Employment Guarantee",
		Description: "Guaranteed wage employment for adult members of rural households willing to do unskilled manual work. रोज़गार",
		Category:    model.CategoryEmployment,
		EligibilityCriteria: []model.EligibilityCriterion{
			{Type: model.CriterionAge, Operator: model.OpGte, Value: float64(18)},
			{Type: model.CriterionLocation, Operator: model.OpIn, Value: []string{"bihar", "uttar pradesh", "jharkhand", "madhya pradesh", "rajasthan"}},
		},
		Benefits: []string{
			"100 days of guaranteed wage employment per household per year",
			"Wages paid directly to bank accounts within 15 days",
		},
		ApplicationSteps: []model.Step{
			{Order: 1, Instruction: "Apply for a job card at the gram panchayat office"},
			{Order: 2, Instruction: "Submit a written work demand once the card is issued"},
		},
		OfficialLink:     "https://nrega.nic.in",
		SourceDepartment: "Ministry of Rural Development",
		LastUpdated:      seedUpdatedAt,
		Keywords:         []string{"employment", "rural", "wages", "job card", "rozgar"},
	},
	{
		ID:          "sch-004",
		Name:        "Skill India Digital Training",
		Description: "Free short-term digital skills courses with placement assistance for youth. कौशल विकास",
		Category:    model.CategorySkillDevelopment,
		EligibilityCriteria: []model.EligibilityCriterion{
			{Type: model.CriterionAge, Operator: model.OpGte, Value: float64(18)},
			{Type: model.CriterionAge, Operator: model.OpLte, Value: float64(35)},
			{Type: model.CriterionEducation, Operator: model.OpIn, Value: []string{"10th_pass", "12th_pass", "diploma", "undergraduate"}},
		},
		Benefits: []string{
			"Free certified training in digital and IT trades",
			"Placement assistance on course completion",
		},
		ApplicationSteps: []model.Step{
			{Order: 1, Instruction: "Register on the Skill India portal with Aadhaar"},
			{Order: 2, Instruction: "Pick a training centre and course batch"},
			{Order: 3, Instruction: "Attend counselling and confirm enrolment"},
		},
		Deadline:         deadline("2026-03-31"),
		OfficialLink:     "https://skillindia.gov.in",
		SourceDepartment: "Ministry of Skill Development",
		LastUpdated:      seedUpdatedAt,
		Keywords:         []string{"skills", "training", "digital", "courses", "kaushal"},
	},
	{
		ID:          "sch-005",
		Name:        "Post-Matric SC Scholarship",
		Description: "Scholarship for scheduled caste students pursuing post-matriculation studies.",
		Category:    model.CategoryScholarship,
		EligibilityCriteria: []model.EligibilityCriterion{
			{Type: model.CriterionCategory, Operator: model.OpEq, Value: "sc"},
			{Type: model.CriterionIncome, Operator: model.OpLte, Value: float64(250000)},
			{Type: model.CriterionEducation, Operator: model.OpIn, Value: []string{"10th_pass", "12th_pass", "undergraduate"}},
		},
		Benefits: []string{
			"Full reimbursement of compulsory fees",
			"Monthly maintenance allowance",
		},
		ApplicationSteps: []model.Step{
			{Order: 1, Instruction: "Apply through the state scholarship portal"},
			{Order: 2, Instruction: "Upload caste and income certificates"},
		},
		Deadline:         deadline("2025-11-30"),
		OfficialLink:     "https://scholarships.gov.in/post-matric-sc",
		SourceDepartment: "Ministry of Social Justice",
		LastUpdated:      seedUpdatedAt,
		Keywords:         []string{"scholarship", "sc", "post-matric", "students"},
	},
}

// Seed publishes the demo catalogue into the store.
func Seed(ctx context.Context, s *MemoryStore) error {
	for _, sc := range SeedSchemes {
		if err := s.Upsert(ctx, sc); err != nil {
			return err
		}
	}
	return nil
}
