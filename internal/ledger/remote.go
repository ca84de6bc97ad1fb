package ledger

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/hyperledger/fabric-gateway/pkg/client"

	"github.com/YashDiwan-16/algorand-sub001/internal/ledger/tracer"
	"github.com/YashDiwan-16/algorand-sub001/internal/platform/metrics"
	dErrors "github.com/YashDiwan-16/algorand-sub001/pkg/domain-errors"
)

// Remote is the real network backend. Mutations are submitted asynchronously
// so the transaction id comes back immediately and confirmation is a separate,
// round-budgeted wait. Reads evaluate chaincode without endorsement.
type Remote struct {
	contract      *client.Contract
	logger        *slog.Logger
	tracer        tracer.Tracer
	metrics       *metrics.Metrics
	roundInterval time.Duration

	mu      sync.Mutex
	commits map[string]*client.Commit
}

// NewRemote wraps an already-connected gateway contract.
func NewRemote(contract *client.Contract, roundInterval time.Duration, logger *slog.Logger, tr tracer.Tracer, opts ...Option) *Remote {
	if tr == nil {
		tr = tracer.NewNoop()
	}
	if roundInterval <= 0 {
		roundInterval = time.Second
	}
	o := applyOptions(opts)
	return &Remote{
		contract:      contract,
		logger:        logger,
		tracer:        tr,
		metrics:       o.metrics,
		roundInterval: roundInterval,
		commits:       make(map[string]*client.Commit),
	}
}

func (r *Remote) Mode() Mode {
	return ModeRemote
}

func (r *Remote) Register(ctx context.Context, address string) (*Receipt, error) {
	desc := newDescriptor(TxTypeRegister, address, "", "", 0, nil)
	return r.submit(ctx, "RegisterAddress", desc, address)
}

func (r *Remote) Grant(ctx context.Context, sender, scopeKey, policy string, expirySeconds uint64, dataItems []string) (*Receipt, error) {
	ctx, span := r.tracer.Start(ctx, tracer.SpanGrant,
		tracer.String(tracer.AttrMode, string(ModeRemote)),
		tracer.String(tracer.AttrScopeKey, scopeKey),
	)
	desc := newDescriptor(TxTypeGrant, sender, scopeKey, policy, expirySeconds, dataItems)
	items, err := json.Marshal(desc.DataItems)
	if err != nil {
		span.End(err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode data items")
	}
	receipt, err := r.submit(ctx, "GrantConsent", desc,
		sender, scopeKey, policy, strconv.FormatUint(expirySeconds, 10), string(items))
	if err == nil {
		span.SetAttributes(tracer.String(tracer.AttrTxID, receipt.TxID))
	}
	span.End(err)
	return receipt, err
}

func (r *Remote) Revoke(ctx context.Context, sender, scopeKey string) (*Receipt, error) {
	ctx, span := r.tracer.Start(ctx, tracer.SpanRevoke,
		tracer.String(tracer.AttrMode, string(ModeRemote)),
		tracer.String(tracer.AttrScopeKey, scopeKey),
	)
	desc := newDescriptor(TxTypeRevoke, sender, scopeKey, "", 0, nil)
	// the chaincode treats revoking an absent scope as a committed no-op
	receipt, err := r.submit(ctx, "RevokeConsent", desc, sender, scopeKey)
	span.End(err)
	return receipt, err
}

func (r *Remote) Check(ctx context.Context, subject, scopeKey string) (bool, error) {
	_, span := r.tracer.Start(ctx, tracer.SpanCheck,
		tracer.String(tracer.AttrMode, string(ModeRemote)),
		tracer.String(tracer.AttrScopeKey, scopeKey),
	)
	var err error
	defer func() { span.End(err) }()

	result, err := r.contract.EvaluateTransaction("CheckConsent", subject, scopeKey)
	if err != nil {
		err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to evaluate consent check")
		return false, err
	}
	return string(result) == "true", nil
}

func (r *Remote) List(ctx context.Context, subject string) ([]string, error) {
	result, err := r.contract.EvaluateTransaction("ListConsents", subject)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to evaluate consent list")
	}
	if len(result) == 0 {
		return nil, nil
	}
	var scopes []string
	if err := json.Unmarshal(result, &scopes); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to decode consent list")
	}
	return scopes, nil
}

// WaitForConfirmation polls the tracked commit until it reports a status or
// the round budget runs out.
func (r *Remote) WaitForConfirmation(ctx context.Context, txID string, rounds int) (*Receipt, error) {
	if err := validateRounds(rounds); err != nil {
		return nil, err
	}
	_, span := r.tracer.Start(ctx, tracer.SpanConfirm,
		tracer.String(tracer.AttrMode, string(ModeRemote)),
		tracer.String(tracer.AttrTxID, txID),
		tracer.Int64(tracer.AttrRounds, int64(rounds)),
	)
	var err error
	defer func() { span.End(err) }()

	r.mu.Lock()
	commit, ok := r.commits[txID]
	r.mu.Unlock()
	if !ok {
		err = dErrors.New(dErrors.CodeNotFound, "unknown transaction id "+txID)
		return nil, err
	}

	type statusResult struct {
		status *client.Status
		err    error
	}
	resultCh := make(chan statusResult, 1)
	go func() {
		status, statusErr := commit.Status()
		resultCh <- statusResult{status: status, err: statusErr}
	}()

	budget := time.NewTimer(time.Duration(rounds) * r.roundInterval)
	defer budget.Stop()

	select {
	case res := <-resultCh:
		if res.err != nil {
			err = dErrors.Wrap(res.err, dErrors.CodeInternal, "failed to read commit status")
			return nil, err
		}
		receipt := &Receipt{
			TxID:      txID,
			Round:     res.status.BlockNumber,
			Confirmed: res.status.Successful,
		}
		r.forget(txID)
		return receipt, nil
	case <-ctx.Done():
		err = ctx.Err()
		return nil, err
	case <-budget.C:
		if r.metrics != nil {
			r.metrics.ConfirmationTimeouts.Inc()
		}
		err = errConfirmationTimeout(txID, rounds)
		return nil, err
	}
}

// submit sends a transaction and tracks its commit for a later confirmation wait.
func (r *Remote) submit(ctx context.Context, name string, desc TxDescriptor, args ...string) (*Receipt, error) {
	_, commit, err := r.contract.SubmitAsync(name, client.WithArguments(args...))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to submit "+name)
	}
	txID := commit.TransactionID()

	r.mu.Lock()
	r.commits[txID] = commit
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "ledger transaction submitted",
		"operation", name,
		"tx_id", txID,
	)
	if r.metrics != nil {
		r.metrics.LedgerSubmissions.WithLabelValues(string(ModeRemote), string(desc.Type)).Inc()
	}
	return &Receipt{TxID: txID, Descriptor: desc}, nil
}

func (r *Remote) forget(txID string) {
	r.mu.Lock()
	delete(r.commits, txID)
	r.mu.Unlock()
}
