// Package ledger records consent grants and revocations on a distributed
// ledger, or on a deterministic local simulation when the network is out of
// reach. The backend is chosen exactly once, by a reachability probe at
// construction; callers cannot tell the modes apart through the interface.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/YashDiwan-16/algorand-sub001/internal/platform/metrics"
	dErrors "github.com/YashDiwan-16/algorand-sub001/pkg/domain-errors"
)

// Option configures optional backend dependencies; both backends accept the
// same set.
type Option func(*backendOptions)

type backendOptions struct {
	metrics *metrics.Metrics
}

// WithMetrics attaches prometheus instrumentation to a ledger backend:
// submissions are counted by mode and operation, confirmation timeouts
// separately.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *backendOptions) {
		o.metrics = m
	}
}

func applyOptions(opts []Option) backendOptions {
	var o backendOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Mode identifies which backend a client runs against.
type Mode string

const (
	ModeRemote    Mode = "remote"
	ModeSimulated Mode = "simulated"
)

// Receipt confirms acceptance of a submitted transaction.
type Receipt struct {
	TxID       string       `json:"txId"`
	Round      uint64       `json:"round"`
	Confirmed  bool         `json:"confirmed"`
	Descriptor TxDescriptor `json:"descriptor"`
}

// Grant is the persisted record shape shared by both backends.
type Grant struct {
	Subject   string     `json:"subject"`
	ScopeKey  string     `json:"scopeKey"`
	Policy    string     `json:"policy"`
	DataItems []string   `json:"dataItems"`
	TxID      string     `json:"txId"`
	GrantedAt time.Time  `json:"grantedAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Revoked   bool       `json:"revoked"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
}

// Active reports whether the grant currently authorizes access.
func (g Grant) Active(now time.Time) bool {
	if g.Revoked {
		return false
	}
	if g.ExpiresAt != nil && g.ExpiresAt.Before(now) {
		return false
	}
	return true
}

// Client is the dual-mode transaction layer for consent scope management.
//
// Contract:
//   - Granting twice for the same (subject, scopeKey) overwrites, never duplicates.
//   - Revoking a non-existent or already-revoked scope is a no-op, not an error.
//   - WaitForConfirmation takes a round budget (>= 1) and returns a
//     confirmation_timeout domain error once the budget is exhausted;
//     it never blocks unboundedly.
type Client interface {
	// Mode reports which backend the probe selected. Diagnostic only;
	// business logic must never branch on it.
	Mode() Mode
	Register(ctx context.Context, address string) (*Receipt, error)
	Grant(ctx context.Context, sender, scopeKey, policy string, expirySeconds uint64, dataItems []string) (*Receipt, error)
	Revoke(ctx context.Context, sender, scopeKey string) (*Receipt, error)
	Check(ctx context.Context, subject, scopeKey string) (bool, error)
	List(ctx context.Context, subject string) ([]string, error)
	WaitForConfirmation(ctx context.Context, txID string, rounds int) (*Receipt, error)
}

// errConfirmationTimeout builds the domain error surfaced when a confirmation
// wait exhausts its round budget.
func errConfirmationTimeout(txID string, rounds int) error {
	return dErrors.New(dErrors.CodeConfirmationTimeout,
		fmt.Sprintf("transaction %s not confirmed within %d rounds", txID, rounds))
}

// validateRounds rejects budgets below one so waits always terminate.
func validateRounds(rounds int) error {
	if rounds < 1 {
		return dErrors.New(dErrors.CodeValidation, "round budget must be at least 1")
	}
	return nil
}
