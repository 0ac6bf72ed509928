// Package models defines the domain models for the ESG compliance service.
// This file contains the Tenant (company) domain model with business logic.
package models

import (
	"fmt"
	"time"

	"github.com/turtacn/esg/pkg/constants"
	"github.com/turtacn/esg/pkg/utils"
)

// Allowed profile choices for a tenant company.
var (
	BusinessSectors = []string{"hospitality", "construction", "logistics", "retail", "manufacturing",
		"technology", "finance", "healthcare", "education", "other"}
	EmployeeSizes = []string{"1-10", "11-50", "51-200", "201-500", "500+"}
	Emirates      = []string{"abu-dhabi", "dubai", "sharjah", "ajman", "umm-al-quwain",
		"ras-al-khaimah", "fujairah"}
	LicenseTypes = []string{"commercial", "professional", "industrial", "tourism", "free-zone"}
)

// Tenant represents a company using the platform. Every task, attachment and
// score belongs to exactly one tenant.
// Tenant 代表使用平台的公司，所有任务、附件和评分都归属于唯一租户。
type Tenant struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string `json:"name" gorm:"type:varchar(200);not null"`
	Description string `json:"description" gorm:"type:text"`

	BusinessSector string `json:"business_sector" gorm:"type:varchar(50)"`
	EmployeeSize   string `json:"employee_size" gorm:"type:varchar(20)"`
	MainLocation   string `json:"main_location" gorm:"type:varchar(200)"`
	Emirate        string `json:"emirate" gorm:"type:varchar(50)"`
	LicenseType    string `json:"license_type" gorm:"type:varchar(50)"`

	ESGScopingCompleted bool                   `json:"esg_scoping_completed"`
	OnboardingCompleted bool                   `json:"onboarding_completed"`
	SetupStep           int                    `json:"setup_step" gorm:"default:1"`
	ScopingData         map[string]interface{} `json:"scoping_data" gorm:"type:text;serializer:json"`

	ESGScores       `gorm:"embedded"`
	ProgressMetrics `gorm:"embedded"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name independent of gorm's pluralisation rules.
func (Tenant) TableName() string { return "tenants" }

// NewTenant builds a freshly onboarded tenant with all scores at zero.
func NewTenant(id, name string) *Tenant {
	now := time.Now().UTC()
	return &Tenant{
		ID:           id,
		Name:         name,
		MainLocation: constants.DefaultMainLocation,
		SetupStep:    1,
		ScopingData:  map[string]interface{}{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ValidateProfile checks the optional profile choices. Empty values are allowed.
func (t *Tenant) ValidateProfile() error {
	checks := []struct {
		field   string
		value   string
		choices []string
	}{
		{"business_sector", t.BusinessSector, BusinessSectors},
		{"employee_size", t.EmployeeSize, EmployeeSizes},
		{"emirate", t.Emirate, Emirates},
		{"license_type", t.LicenseType, LicenseTypes},
	}
	for _, c := range checks {
		if c.value != "" && !utils.Contains(c.choices, c.value) {
			return fmt.Errorf("%s %q is not one of %v", c.field, c.value, c.choices)
		}
	}
	if t.SetupStep < 1 || t.SetupStep > 4 {
		return fmt.Errorf("setup_step must be between 1 and 4, got %d", t.SetupStep)
	}
	return nil
}

// ResetToOnboarding clears profile, progress and scores back to a fresh state,
// keeping identity and name.
func (t *Tenant) ResetToOnboarding() {
	t.Description = ""
	t.BusinessSector = ""
	t.EmployeeSize = ""
	t.MainLocation = constants.DefaultMainLocation
	t.Emirate = ""
	t.LicenseType = ""
	t.ESGScopingCompleted = false
	t.OnboardingCompleted = false
	t.SetupStep = 1
	t.ScopingData = map[string]interface{}{}
	t.ESGScores = ESGScores{}
	t.ProgressMetrics = ProgressMetrics{}
	t.UpdatedAt = time.Now().UTC()
}
