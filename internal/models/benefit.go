package models

import "errors"

// Benefit category enums.
const (
	BenefitFamily       = "Family"
	BenefitWellness     = "Wellness"
	BenefitProfessional = "Professional"
	BenefitTeam         = "Team"
)

// ValidBenefitCategory reports whether c is one of the benefit category enums.
func ValidBenefitCategory(c string) bool {
	switch c {
	case BenefitFamily, BenefitWellness, BenefitProfessional, BenefitTeam:
		return true
	}
	return false
}

type Benefit struct {
	ID              string  `json:"id,omitempty"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	CreditsRequired float64 `json:"credits_required"`
	Category        string  `json:"category"`
	IsActive        bool    `json:"is_active"`
}

// Validate checks that a benefit has a name, a positive cost and a known category.
func (b *Benefit) Validate() error {
	if b.Name == "" {
		return errors.New("benefit name is required")
	}
	if b.CreditsRequired <= 0 {
		return errors.New("benefit credits_required must be > 0")
	}
	if !ValidBenefitCategory(b.Category) {
		return errors.New("benefit category must be one of Family, Wellness, Professional, Team")
	}
	return nil
}

// DefaultBenefits is the seed catalog used by the local store.
func DefaultBenefits() []Benefit {
	return []Benefit{
		{Name: "Family Day Off", Description: "Take a day off to spend with family", CreditsRequired: 100, Category: BenefitFamily, IsActive: true},
		{Name: "Extended Break", Description: "Take an extended lunch break", CreditsRequired: 30, Category: BenefitWellness, IsActive: true},
		{Name: "Professional Course", Description: "Enroll in a professional development course", CreditsRequired: 200, Category: BenefitProfessional, IsActive: true},
		{Name: "Team Lunch", Description: "Organize a team lunch", CreditsRequired: 50, Category: BenefitTeam, IsActive: true},
		{Name: "Work From Home Day", Description: "Additional work from home day", CreditsRequired: 80, Category: BenefitWellness, IsActive: true},
	}
}
