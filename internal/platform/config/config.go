package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr           string
	ProductionMode bool
	DatabaseURL    string
	JWTSigningKey  string
	Ledger         Ledger
}

// Ledger captures everything needed to reach (or decide not to reach) the
// consent ledger network. An empty Endpoint always selects the local
// simulation backend.
type Ledger struct {
	Endpoint      string
	GatewayPeer   string
	MSPID         string
	CertPath      string
	KeyPath       string
	TLSCertPath   string
	ChannelName   string
	ChaincodeName string
	ProbeTimeout  time.Duration
	RoundInterval time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CONSENT_VAULT_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	channel := os.Getenv("LEDGER_CHANNEL")
	if channel == "" {
		channel = "consentchannel"
	}
	chaincode := os.Getenv("LEDGER_CHAINCODE")
	if chaincode == "" {
		chaincode = "consent"
	}

	return Server{
		Addr:           addr,
		ProductionMode: os.Getenv("PRODUCTION_MODE") == "true",
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSigningKey:  os.Getenv("JWT_SIGNING_KEY"),
		Ledger: Ledger{
			Endpoint:      os.Getenv("LEDGER_ENDPOINT"),
			GatewayPeer:   os.Getenv("LEDGER_GATEWAY_PEER"),
			MSPID:         os.Getenv("LEDGER_MSP_ID"),
			CertPath:      os.Getenv("LEDGER_CERT_PATH"),
			KeyPath:       os.Getenv("LEDGER_KEY_PATH"),
			TLSCertPath:   os.Getenv("LEDGER_TLS_CERT_PATH"),
			ChannelName:   channel,
			ChaincodeName: chaincode,
			ProbeTimeout:  envDuration("LEDGER_PROBE_TIMEOUT", 3*time.Second),
			RoundInterval: envDuration("LEDGER_ROUND_INTERVAL", time.Second),
		},
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	// plain seconds are accepted too
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
