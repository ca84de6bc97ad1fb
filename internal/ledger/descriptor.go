package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TxType labels the ledger operation a descriptor encodes.
type TxType string

const (
	TxTypeRegister TxType = "register"
	TxTypeGrant    TxType = "grant"
	TxTypeRevoke   TxType = "revoke"
)

// TxDescriptor is the canonical, signable form of a ledger transaction. It is
// built the same way by every backend and carries no live network parameters,
// so a signing client produces identical bytes whether the transaction later
// lands on the real network or in the local simulation.
type TxDescriptor struct {
	Type          TxType   `json:"type"`
	Sender        string   `json:"sender"`
	ScopeKey      string   `json:"scopeKey,omitempty"`
	Policy        string   `json:"policy,omitempty"`
	ExpirySeconds uint64   `json:"expirySeconds,omitempty"`
	DataItems     []string `json:"dataItems,omitempty"`
	Nonce         string   `json:"nonce"`
	BuiltAt       int64    `json:"builtAt"`
}

// newDescriptor stamps a fresh nonce and build time.
func newDescriptor(txType TxType, sender, scopeKey, policy string, expirySeconds uint64, dataItems []string) TxDescriptor {
	if dataItems == nil {
		dataItems = []string{}
	}
	return TxDescriptor{
		Type:          txType,
		Sender:        sender,
		ScopeKey:      scopeKey,
		Policy:        policy,
		ExpirySeconds: expirySeconds,
		DataItems:     dataItems,
		Nonce:         uuid.New().String(),
		BuiltAt:       time.Now().UTC().Unix(),
	}
}

// CanonicalBytes returns the deterministic signing payload: JSON with struct
// field order fixed by the type definition.
func (d TxDescriptor) CanonicalBytes() ([]byte, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode descriptor: %w", err)
	}
	return payload, nil
}

// Digest returns the hex sha256 of the canonical bytes.
func (d TxDescriptor) Digest() (string, error) {
	payload, err := d.CanonicalBytes()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
