package clti

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrCaseNotFound = errors.New("case not found")

// CaseRecord is a stored case: the snapshot plus the columns indexed for
// listing. The indexed columns are copied from the snapshot on every write.
type CaseRecord struct {
	ID             uuid.UUID `json:"id"`
	Label          *string   `json:"label,omitempty"`
	Snapshot       Snapshot  `json:"snapshot"`
	ClinicalStage  *int      `json:"clinical_stage,omitempty"`
	AmputationRisk Risk      `json:"amputation_risk"`
	GlassStage     string    `json:"glass_stage"`
	Method         string    `json:"recommended_method"`
	CreatedBy      *string   `json:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (r *CaseRecord) syncColumns() {
	r.ClinicalStage = r.Snapshot.ClinicalStage
	r.AmputationRisk = r.Snapshot.AmputationRisk
	r.GlassStage = r.Snapshot.GlassStage
	r.Method = string(r.Snapshot.RecommendedMethod)
}

type CaseRepository interface {
	Create(ctx context.Context, r *CaseRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*CaseRecord, error)
	Update(ctx context.Context, r *CaseRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*CaseRecord, int, error)
}
