package ledger

import (
	"crypto/x509"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path"
	"time"

	"github.com/hyperledger/fabric-gateway/pkg/client"
	"github.com/hyperledger/fabric-gateway/pkg/identity"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/YashDiwan-16/algorand-sub001/internal/ledger/kv"
	"github.com/YashDiwan-16/algorand-sub001/internal/ledger/tracer"
	"github.com/YashDiwan-16/algorand-sub001/internal/platform/config"
)

// New selects the ledger backend exactly once: a reachability probe against
// the configured endpoint decides between the real network and the local
// simulation. Network unavailability is recovered here, not surfaced — callers
// get a working Client either way and never branch on the mode themselves.
func New(cfg config.Ledger, store kv.Store, logger *slog.Logger, tr tracer.Tracer, opts ...Option) Client {
	if cfg.Endpoint == "" || !probe(cfg.Endpoint, cfg.ProbeTimeout) {
		logger.Info("ledger network unreachable, using local simulation",
			"endpoint", cfg.Endpoint,
		)
		return NewSimulated(store, logger, tr, opts...)
	}

	remote, err := connect(cfg, logger, tr, opts...)
	if err != nil {
		logger.Warn("ledger connection failed, using local simulation",
			"endpoint", cfg.Endpoint,
			"error", err,
		)
		return NewSimulated(store, logger, tr, opts...)
	}

	logger.Info("connected to ledger network",
		"endpoint", cfg.Endpoint,
		"channel", cfg.ChannelName,
		"chaincode", cfg.ChaincodeName,
	)
	return remote
}

// probe reports whether the endpoint accepts a TCP connection within timeout.
func probe(endpoint string, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	conn, err := net.DialTimeout("tcp", endpoint, timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// connect builds the gateway client for the remote backend.
func connect(cfg config.Ledger, logger *slog.Logger, tr tracer.Tracer, opts ...Option) (*Remote, error) {
	connection, err := newGrpcConnection(cfg)
	if err != nil {
		return nil, err
	}

	id, err := newIdentity(cfg)
	if err != nil {
		return nil, err
	}
	sign, err := newSign(cfg)
	if err != nil {
		return nil, err
	}

	gw, err := client.Connect(
		id,
		client.WithSign(sign),
		client.WithClientConnection(connection),
		client.WithEvaluateTimeout(5*time.Second),
		client.WithEndorseTimeout(15*time.Second),
		client.WithSubmitTimeout(5*time.Second),
		client.WithCommitStatusTimeout(1*time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("connect gateway: %w", err)
	}

	network := gw.GetNetwork(cfg.ChannelName)
	contract := network.GetContract(cfg.ChaincodeName)
	return NewRemote(contract, cfg.RoundInterval, logger, tr, opts...), nil
}

// newGrpcConnection creates a gRPC connection to the gateway peer.
func newGrpcConnection(cfg config.Ledger) (*grpc.ClientConn, error) {
	certificate, err := loadCertificate(cfg.TLSCertPath)
	if err != nil {
		return nil, err
	}

	certPool := x509.NewCertPool()
	certPool.AddCert(certificate)
	transportCredentials := credentials.NewClientTLSFromCert(certPool, cfg.GatewayPeer)

	connection, err := grpc.Dial(cfg.Endpoint, grpc.WithTransportCredentials(transportCredentials))
	if err != nil {
		return nil, fmt.Errorf("create gRPC connection: %w", err)
	}
	return connection, nil
}

// newIdentity creates a client identity for this gateway connection using an X.509 certificate.
func newIdentity(cfg config.Ledger) (*identity.X509Identity, error) {
	certificate, err := loadCertificate(cfg.CertPath)
	if err != nil {
		return nil, err
	}
	id, err := identity.NewX509Identity(cfg.MSPID, certificate)
	if err != nil {
		return nil, fmt.Errorf("create identity: %w", err)
	}
	return id, nil
}

func loadCertificate(filename string) (*x509.Certificate, error) {
	certificatePEM, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read certificate file: %w", err)
	}
	return identity.CertificateFromPEM(certificatePEM)
}

// newSign creates a signing function from the first key in the key directory.
func newSign(cfg config.Ledger) (identity.Sign, error) {
	files, err := os.ReadDir(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no private key in %s", cfg.KeyPath)
	}
	privateKeyPEM, err := os.ReadFile(path.Join(cfg.KeyPath, files[0].Name()))
	if err != nil {
		return nil, fmt.Errorf("read private key file: %w", err)
	}
	privateKey, err := identity.PrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	sign, err := identity.NewPrivateKeySign(privateKey)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}
	return sign, nil
}
