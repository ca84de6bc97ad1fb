package ledger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/YashDiwan-16/algorand-sub001/internal/ledger/kv"
	"github.com/YashDiwan-16/algorand-sub001/internal/ledger/tracer"
	"github.com/YashDiwan-16/algorand-sub001/internal/platform/metrics"
	"github.com/YashDiwan-16/algorand-sub001/internal/sentinel"
	dErrors "github.com/YashDiwan-16/algorand-sub001/pkg/domain-errors"
)

const (
	grantKeyPrefix    = "consent/"
	receiptKeyPrefix  = "tx/"
	registerKeyPrefix = "account/"
	roundKey          = "meta/round"
)

// Simulated is the local ledger backend. It persists the same record shape a
// real network write would produce, fabricates transaction ids from the
// canonical descriptor digest, and confirms every transaction in the round it
// was submitted. State lives in an injected key-value store so tests run on a
// map and production runs on Postgres.
type Simulated struct {
	mu      sync.Mutex
	store   kv.Store
	logger  *slog.Logger
	tracer  tracer.Tracer
	metrics *metrics.Metrics
}

// NewSimulated constructs the simulation backend.
func NewSimulated(store kv.Store, logger *slog.Logger, tr tracer.Tracer, opts ...Option) *Simulated {
	if tr == nil {
		tr = tracer.NewNoop()
	}
	o := applyOptions(opts)
	return &Simulated{store: store, logger: logger, tracer: tr, metrics: o.metrics}
}

func (s *Simulated) Mode() Mode {
	return ModeSimulated
}

func (s *Simulated) Register(ctx context.Context, address string) (*Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	desc := newDescriptor(TxTypeRegister, address, "", "", 0, nil)
	receipt, err := s.commit(ctx, desc)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, registerKeyPrefix+address, []byte(receipt.TxID)); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist registration")
	}
	return receipt, nil
}

// Grant overwrites any existing grant for (sender, scopeKey).
func (s *Simulated) Grant(ctx context.Context, sender, scopeKey, policy string, expirySeconds uint64, dataItems []string) (*Receipt, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanGrant,
		tracer.String(tracer.AttrMode, string(ModeSimulated)),
		tracer.String(tracer.AttrScopeKey, scopeKey),
	)
	var err error
	defer func() { span.End(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	desc := newDescriptor(TxTypeGrant, sender, scopeKey, policy, expirySeconds, dataItems)
	receipt, err := s.commit(ctx, desc)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	grant := Grant{
		Subject:   sender,
		ScopeKey:  scopeKey,
		Policy:    policy,
		DataItems: append([]string(nil), dataItems...),
		TxID:      receipt.TxID,
		GrantedAt: now,
	}
	if expirySeconds > 0 {
		expires := now.Add(time.Duration(expirySeconds) * time.Second)
		grant.ExpiresAt = &expires
	}
	if err = s.putGrant(ctx, grant); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "consent granted on simulated ledger",
		"subject", sender,
		"scope_key", scopeKey,
		"tx_id", receipt.TxID,
	)
	span.SetAttributes(tracer.String(tracer.AttrTxID, receipt.TxID))
	return receipt, nil
}

// Revoke marks the grant revoked. Absent or already-revoked scopes are a
// no-op: the returned receipt still confirms, mirroring the real network
// where such a transaction commits without effect.
func (s *Simulated) Revoke(ctx context.Context, sender, scopeKey string) (*Receipt, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanRevoke,
		tracer.String(tracer.AttrMode, string(ModeSimulated)),
		tracer.String(tracer.AttrScopeKey, scopeKey),
	)
	var err error
	defer func() { span.End(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	desc := newDescriptor(TxTypeRevoke, sender, scopeKey, "", 0, nil)
	receipt, err := s.commit(ctx, desc)
	if err != nil {
		return nil, err
	}

	grant, found, err := s.getGrant(ctx, sender, scopeKey)
	if err != nil {
		return nil, err
	}
	if !found || grant.Revoked {
		return receipt, nil
	}

	now := time.Now().UTC()
	grant.Revoked = true
	grant.RevokedAt = &now
	if err = s.putGrant(ctx, grant); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "consent revoked on simulated ledger",
		"subject", sender,
		"scope_key", scopeKey,
		"tx_id", receipt.TxID,
	)
	return receipt, nil
}

func (s *Simulated) Check(ctx context.Context, subject, scopeKey string) (bool, error) {
	_, span := s.tracer.Start(ctx, tracer.SpanCheck,
		tracer.String(tracer.AttrMode, string(ModeSimulated)),
		tracer.String(tracer.AttrScopeKey, scopeKey),
	)
	var err error
	defer func() { span.End(err) }()

	grant, found, err := s.getGrant(ctx, subject, scopeKey)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	return grant.Active(time.Now().UTC()), nil
}

func (s *Simulated) List(ctx context.Context, subject string) ([]string, error) {
	entries, err := s.store.ListPrefix(ctx, grantKeyPrefix+subject+"/")
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list grants")
	}
	now := time.Now().UTC()
	var scopes []string
	for _, raw := range entries {
		var grant Grant
		if err := json.Unmarshal(raw, &grant); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to decode grant")
		}
		if grant.Active(now) {
			scopes = append(scopes, grant.ScopeKey)
		}
	}
	sort.Strings(scopes)
	return scopes, nil
}

// WaitForConfirmation resolves known transaction ids immediately; unknown ids
// burn through the round budget and end in a confirmation_timeout.
func (s *Simulated) WaitForConfirmation(ctx context.Context, txID string, rounds int) (*Receipt, error) {
	if err := validateRounds(rounds); err != nil {
		return nil, err
	}
	_, span := s.tracer.Start(ctx, tracer.SpanConfirm,
		tracer.String(tracer.AttrMode, string(ModeSimulated)),
		tracer.String(tracer.AttrTxID, txID),
		tracer.Int64(tracer.AttrRounds, int64(rounds)),
	)
	var err error
	defer func() { span.End(err) }()

	for round := 0; round < rounds; round++ {
		raw, getErr := s.store.Get(ctx, receiptKeyPrefix+txID)
		if getErr == nil {
			var receipt Receipt
			if err = json.Unmarshal(raw, &receipt); err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to decode receipt")
			}
			return &receipt, nil
		}
		if !errors.Is(getErr, sentinel.ErrNotFound) {
			err = dErrors.Wrap(getErr, dErrors.CodeInternal, "failed to read receipt")
			return nil, err
		}
		if ctx.Err() != nil {
			err = ctx.Err()
			return nil, err
		}
	}
	if s.metrics != nil {
		s.metrics.ConfirmationTimeouts.Inc()
	}
	err = errConfirmationTimeout(txID, rounds)
	return nil, err
}

// commit advances the simulated round, fabricates the transaction id from the
// descriptor digest, and persists the confirmation receipt.
func (s *Simulated) commit(ctx context.Context, desc TxDescriptor) (*Receipt, error) {
	digest, err := desc.Digest()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build descriptor")
	}
	round, err := s.nextRound(ctx)
	if err != nil {
		return nil, err
	}
	receipt := &Receipt{
		TxID:       "sim-" + digest[:12],
		Round:      round,
		Confirmed:  true,
		Descriptor: desc,
	}
	raw, err := json.Marshal(receipt)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode receipt")
	}
	if err := s.store.Put(ctx, receiptKeyPrefix+receipt.TxID, raw); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist receipt")
	}
	if s.metrics != nil {
		s.metrics.LedgerSubmissions.WithLabelValues(string(ModeSimulated), string(desc.Type)).Inc()
	}
	return receipt, nil
}

func (s *Simulated) nextRound(ctx context.Context) (uint64, error) {
	var round uint64
	raw, err := s.store.Get(ctx, roundKey)
	switch {
	case err == nil:
		round = binary.BigEndian.Uint64(raw)
	case errors.Is(err, sentinel.ErrNotFound):
		round = 0
	default:
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read round counter")
	}
	round++
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, round)
	if err := s.store.Put(ctx, roundKey, buf); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to advance round counter")
	}
	return round, nil
}

func (s *Simulated) getGrant(ctx context.Context, subject, scopeKey string) (Grant, bool, error) {
	raw, err := s.store.Get(ctx, grantKey(subject, scopeKey))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Grant{}, false, nil
		}
		return Grant{}, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read grant")
	}
	var grant Grant
	if err := json.Unmarshal(raw, &grant); err != nil {
		return Grant{}, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to decode grant")
	}
	return grant, true, nil
}

func (s *Simulated) putGrant(ctx context.Context, grant Grant) error {
	raw, err := json.Marshal(grant)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode grant")
	}
	if err := s.store.Put(ctx, grantKey(grant.Subject, grant.ScopeKey), raw); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist grant")
	}
	return nil
}

func grantKey(subject, scopeKey string) string {
	// scope keys are caller-controlled; strip the separator to keep keys flat
	return fmt.Sprintf("%s%s/%s", grantKeyPrefix, subject, strings.ReplaceAll(scopeKey, "/", "_"))
}
