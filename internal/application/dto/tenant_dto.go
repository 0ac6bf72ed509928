// Package dto provides data transfer objects for the application layer.
package dto

import (
	"time"

	"github.com/turtacn/esg/internal/domain/models"
)

// CreateTenantRequest represents the request to onboard a new tenant company.
type CreateTenantRequest struct {
	Name           string                 `json:"name" yaml:"name" validate:"required,max=200"`
	Description    string                 `json:"description" yaml:"description"`
	BusinessSector string                 `json:"business_sector" yaml:"business_sector"`
	EmployeeSize   string                 `json:"employee_size" yaml:"employee_size"`
	MainLocation   string                 `json:"main_location" yaml:"main_location" validate:"max=200"`
	Emirate        string                 `json:"emirate" yaml:"emirate"`
	LicenseType    string                 `json:"license_type" yaml:"license_type"`
	ScopingData    map[string]interface{} `json:"scoping_data" yaml:"scoping_data"`
}

// UpdateTenantRequest carries a partial profile update. Nil fields are left unchanged.
type UpdateTenantRequest struct {
	Name                *string                `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description         *string                `json:"description,omitempty"`
	BusinessSector      *string                `json:"business_sector,omitempty"`
	EmployeeSize        *string                `json:"employee_size,omitempty"`
	MainLocation        *string                `json:"main_location,omitempty" validate:"omitempty,max=200"`
	Emirate             *string                `json:"emirate,omitempty"`
	LicenseType         *string                `json:"license_type,omitempty"`
	ESGScopingCompleted *bool                  `json:"esg_scoping_completed,omitempty"`
	OnboardingCompleted *bool                  `json:"onboarding_completed,omitempty"`
	SetupStep           *int                   `json:"setup_step,omitempty" validate:"omitempty,gte=1,lte=4"`
	ScopingData         map[string]interface{} `json:"scoping_data,omitempty"`
}

// ListTenantsRequest represents the request to list tenants.
type ListTenantsRequest struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"page_size" json:"page_size"`
}

// TenantResponse is the API view of a tenant.
type TenantResponse struct {
	ID                  string                 `json:"id"`
	Name                string                 `json:"name"`
	Description         string                 `json:"description"`
	BusinessSector      string                 `json:"business_sector"`
	EmployeeSize        string                 `json:"employee_size"`
	MainLocation        string                 `json:"main_location"`
	Emirate             string                 `json:"emirate"`
	LicenseType         string                 `json:"license_type"`
	ESGScopingCompleted bool                   `json:"esg_scoping_completed"`
	OnboardingCompleted bool                   `json:"onboarding_completed"`
	SetupStep           int                    `json:"setup_step"`
	ScopingData         map[string]interface{} `json:"scoping_data" yaml:"scoping_data"`
	models.ESGScores
	models.ProgressMetrics
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListTenantsResponse represents the response for a list tenants request.
type ListTenantsResponse struct {
	Tenants    []TenantResponse   `json:"tenants"`
	Pagination PaginationResponse `json:"pagination"`
}

// ScoresResponse is the dashboard view of a tenant's scores and progress.
type ScoresResponse struct {
	TenantID string `json:"tenant_id"`
	models.ESGScores
	Progress models.ProgressMetrics `json:"progress"`
}

// ResetTenantResponse reports the outcome of a tenant reset.
type ResetTenantResponse struct {
	TenantID     string `json:"tenant_id"`
	DeletedTasks int64  `json:"deleted_tasks"`
}

// NewTenantResponse converts a tenant model.
func NewTenantResponse(t *models.Tenant) TenantResponse {
	scoping := t.ScopingData
	if scoping == nil {
		scoping = map[string]interface{}{}
	}
	return TenantResponse{
		ID:                  t.ID,
		Name:                t.Name,
		Description:         t.Description,
		BusinessSector:      t.BusinessSector,
		EmployeeSize:        t.EmployeeSize,
		MainLocation:        t.MainLocation,
		Emirate:             t.Emirate,
		LicenseType:         t.LicenseType,
		ESGScopingCompleted: t.ESGScopingCompleted,
		OnboardingCompleted: t.OnboardingCompleted,
		SetupStep:           t.SetupStep,
		ScopingData:         scoping,
		ESGScores:           t.ESGScores,
		ProgressMetrics:     t.ProgressMetrics,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}

// NewScoresResponse converts a dashboard read model.
func NewScoresResponse(d *models.Dashboard) ScoresResponse {
	return ScoresResponse{
		TenantID:  d.TenantID,
		ESGScores: d.Scores,
		Progress:  d.Progress,
	}
}
