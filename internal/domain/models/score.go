package models

import "github.com/turtacn/esg/pkg/constants"

// ESGScores holds the four persisted score fields of a tenant. Each value is
// in [0, 100] and rounded to one decimal place.
type ESGScores struct {
	Environmental float64 `json:"environmental_score" gorm:"column:environmental_score;not null;default:0"`
	Social        float64 `json:"social_score" gorm:"column:social_score;not null;default:0"`
	Governance    float64 `json:"governance_score" gorm:"column:governance_score;not null;default:0"`
	Overall       float64 `json:"overall_esg_score" gorm:"column:overall_esg_score;not null;default:0"`
}

// ProgressMetrics holds the tenant's data and evidence completion figures.
type ProgressMetrics struct {
	DataCompletionPercentage     float64 `json:"data_completion_percentage" gorm:"not null;default:0"`
	EvidenceCompletionPercentage float64 `json:"evidence_completion_percentage" gorm:"not null;default:0"`
	TotalFields                  int     `json:"total_fields" gorm:"not null;default:0"`
	CompletedFields              int     `json:"completed_fields" gorm:"not null;default:0"`
	TotalEvidenceFiles           int     `json:"total_evidence_files" gorm:"not null;default:0"`
	UploadedEvidenceFiles        int     `json:"uploaded_evidence_files" gorm:"not null;default:0"`
}

// MeterReadings are tenant-wide sums of recognised numeric meter keys found in
// task data entries.
type MeterReadings struct {
	EnergyKWh float64 `json:"energy_consumption_kwh"`
	WaterM3   float64 `json:"water_usage_m3"`
	GasM3     float64 `json:"gas_usage_m3"`
}

// AnyPositive reports whether at least one meter aggregate is above zero.
func (m MeterReadings) AnyPositive() bool {
	return m.EnergyKWh > 0 || m.WaterM3 > 0 || m.GasM3 > 0
}

// Add folds one task's data entries into the running sums. Values that are
// not numbers or numeric strings are ignored.
func (m *MeterReadings) Add(entries DataEntries) {
	m.EnergyKWh += entries.Numeric(constants.MeterKeyEnergyKWh)
	m.WaterM3 += entries.Numeric(constants.MeterKeyWaterM3)
	m.GasM3 += entries.Numeric(constants.MeterKeyGasM3)
}

// ScoringInput is the minimal view of a task the score aggregator and
// progress tracker need.
type ScoringInput struct {
	TaskID          string      `json:"task_id"`
	Category        string      `json:"category"`
	DataEntries     DataEntries `json:"data_entries"`
	AttachmentCount int         `json:"attachment_count"`
	ExpectedFiles   int         `json:"expected_files"`
}

// Dashboard is the read model served to the dashboard.
type Dashboard struct {
	TenantID string          `json:"tenant_id"`
	Scores   ESGScores       `json:"scores"`
	Progress ProgressMetrics `json:"progress"`
}
