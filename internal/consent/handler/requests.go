package handler

import (
	"time"

	"github.com/YashDiwan-16/algorand-sub001/internal/consent/models"
	dErrors "github.com/YashDiwan-16/algorand-sub001/pkg/domain-errors"
)

// createRequest is the POST /consent payload.
type createRequest struct {
	Sender        string   `json:"sender"`
	Recipient     string   `json:"recipient"`
	DocumentTypes []string `json:"documentTypes"`
	Reason        string   `json:"reason"`
}

func (r createRequest) toModel() models.Request {
	return models.Request{
		Sender:        r.Sender,
		Recipient:     r.Recipient,
		DocumentTypes: r.DocumentTypes,
		Reason:        r.Reason,
	}
}

// updateRequest is the PUT /consent/{id} payload. Absent fields leave the
// stored value untouched.
type updateRequest struct {
	Status      *string             `json:"status"`
	Permissions *models.Permissions `json:"permissions"`
	Expiry      *time.Time          `json:"expiry"`
	GrantedAt   *time.Time          `json:"grantedAt"`
	RevokedAt   *time.Time          `json:"revokedAt"`
	Documents   *[]string           `json:"documents"`
	Reason      *string             `json:"reason"`
	LedgerTxID  *string             `json:"ledgerTxId"`
}

func (r updateRequest) toPatch() (models.Patch, error) {
	p := models.Patch{
		Permissions: r.Permissions,
		Expiry:      r.Expiry,
		GrantedAt:   r.GrantedAt,
		RevokedAt:   r.RevokedAt,
		Documents:   r.Documents,
		Reason:      r.Reason,
		LedgerTxID:  r.LedgerTxID,
	}
	if r.Status != nil {
		status := models.Status(*r.Status)
		if !status.IsValid() {
			return models.Patch{}, dErrors.New(dErrors.CodeValidation, "invalid status: "+*r.Status)
		}
		p.Status = &status
	}
	return p, nil
}
