package models

import (
	"time"

	dErrors "github.com/YashDiwan-16/algorand-sub001/pkg/domain-errors"
)

// Permissions captures what the recipient may do with shared documents.
type Permissions struct {
	View       bool `json:"view"`
	Edit       bool `json:"edit"`
	Download   bool `json:"download"`
	Screenshot bool `json:"screenshot"`
}

// Request is the unit of authorization between a sender (data subject) and a
// recipient (data consumer), scoped to document types and carrying a status
// lifecycle:
//
//	pending --grant--> granted --revoke--> revoked (terminal)
//
// Expiry is evaluated lazily: once Expiry passes nothing flips Status
// automatically; a granted request stays granted until explicitly revoked.
// There is deliberately no cancel transition out of pending either — a
// pending request is either granted or left pending indefinitely.
type Request struct {
	ID            string      `json:"id"`
	RequestID     string      `json:"requestId"`
	Sender        string      `json:"sender"`
	Recipient     string      `json:"recipient"`
	DocumentTypes []string    `json:"documentTypes"`
	Reason        string      `json:"reason"`
	Status        Status      `json:"status"`
	Permissions   Permissions `json:"permissions"`
	Expiry        *time.Time  `json:"expiry,omitempty"`
	GrantedAt     *time.Time  `json:"grantedAt,omitempty"`
	RevokedAt     *time.Time  `json:"revokedAt,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	Documents     []string    `json:"-"`
	LedgerTxID    string      `json:"ledgerTxId,omitempty"`
}

// Patch carries a partial update. Nil fields are left untouched by Apply.
type Patch struct {
	Status      *Status
	Permissions *Permissions
	Expiry      *time.Time
	GrantedAt   *time.Time
	RevokedAt   *time.Time
	Documents   *[]string
	Reason      *string
	LedgerTxID  *string
}

// Apply merges the patch into a copy of the request, re-validating the
// lifecycle invariants. The original is never mutated so a failed merge
// leaves nothing half-applied.
func (r Request) Apply(p Patch) (Request, error) {
	if p.Status != nil {
		if !p.Status.IsValid() {
			return Request{}, dErrors.New(dErrors.CodeValidation, "invalid status: "+string(*p.Status))
		}
		if !r.Status.CanTransitionTo(*p.Status) {
			return Request{}, dErrors.New(dErrors.CodeInvalidTransition,
				"cannot move status from "+string(r.Status)+" to "+string(*p.Status))
		}
		r.Status = *p.Status
	}
	if p.Permissions != nil {
		r.Permissions = *p.Permissions
	}
	if p.Expiry != nil {
		if r.Expiry != nil && !r.Expiry.Equal(*p.Expiry) {
			return Request{}, dErrors.New(dErrors.CodeValidation, "expiry is immutable once set")
		}
		r.Expiry = p.Expiry
	}
	if p.GrantedAt != nil {
		r.GrantedAt = p.GrantedAt
	}
	if p.RevokedAt != nil {
		r.RevokedAt = p.RevokedAt
	}
	if p.Documents != nil {
		r.Documents = append([]string(nil), (*p.Documents)...)
	}
	if p.Reason != nil {
		r.Reason = *p.Reason
	}
	if p.LedgerTxID != nil {
		r.LedgerTxID = *p.LedgerTxID
	}
	if err := r.validateTimestamps(); err != nil {
		return Request{}, err
	}
	return r, nil
}

// validateTimestamps enforces that lifecycle timestamps only exist in the
// states that define them.
func (r Request) validateTimestamps() error {
	if r.RevokedAt != nil && r.Status != StatusRevoked {
		return dErrors.New(dErrors.CodeValidation, "revokedAt requires status revoked")
	}
	if r.GrantedAt != nil && r.Status == StatusPending {
		return dErrors.New(dErrors.CodeValidation, "grantedAt requires status granted")
	}
	return nil
}

// IsParticipant reports whether address is the sender or the recipient.
func (r Request) IsParticipant(address string) bool {
	return r.Sender == address || r.Recipient == address
}
