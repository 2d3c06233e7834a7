package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Metric is a derived computation over one or more series, described by a
// typed expression tree stored as jsonb. Metrics are immutable once runs
// reference them.
type Metric struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Code           string         `gorm:"column:code;not null;uniqueIndex" json:"code"`
	ExpressionType ExpressionType `gorm:"column:expression_type;not null" json:"expression_type"`
	ExpressionJSON datatypes.JSON `gorm:"column:expression_json;type:jsonb;not null" json:"expression_json"`
	Frequency      string         `gorm:"column:frequency" json:"frequency,omitempty"`
	Unit           string         `gorm:"column:unit" json:"unit,omitempty"`
	Description    string         `gorm:"column:description" json:"description,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Metric) TableName() string { return "metrics" }

// Expression parses the stored expression tree.
func (m *Metric) Expression() (Expression, error) {
	return ParseExpression(m.ExpressionJSON)
}
