package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/YashDiwan-16/algorand-sub001/internal/ledger"
	"github.com/YashDiwan-16/algorand-sub001/internal/ledger/kv"
	"github.com/YashDiwan-16/algorand-sub001/internal/ledger/tracer"
	"github.com/YashDiwan-16/algorand-sub001/internal/platform/config"
	"github.com/YashDiwan-16/algorand-sub001/internal/platform/database"
	"github.com/YashDiwan-16/algorand-sub001/internal/platform/logger"
)

const usage = `ledgerctl drives the consent ledger directly, bypassing the API.

Usage:
  ledgerctl register -address <addr>
  ledgerctl grant    -sender <addr> -scope <key> [-policy <name>] [-expiry <seconds>] [-data <id,id,...>]
  ledgerctl revoke   -sender <addr> -scope <key>
  ledgerctl check    -subject <addr> -scope <key>
  ledgerctl list     -subject <addr>
  ledgerctl wait     -tx <txid> [-rounds <n>]

The ledger backend comes from the LEDGER_* environment variables; with no
LEDGER_ENDPOINT set the simulated backend is used.`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	log := logger.New()
	cfg := config.FromEnv()

	// Simulated-mode state lives in postgres when DATABASE_URL is set, so
	// grants persist across invocations. Otherwise each run starts empty.
	store := kv.Store(kv.NewMemory())
	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	if pool, err := database.New(dbCfg); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	} else if pool != nil {
		defer pool.Close()
		store = kv.NewPostgres(pool.DB())
	}

	client := ledger.New(cfg.Ledger, store, log, tracer.NewNoop())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, client, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client ledger.Client, command string, args []string) error {
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	var (
		address = fs.String("address", "", "account address")
		sender  = fs.String("sender", "", "granting address")
		subject = fs.String("subject", "", "subject address")
		scope   = fs.String("scope", "", "scope key, e.g. recipient/purpose")
		policy  = fs.String("policy", "default", "policy name recorded with the grant")
		expiry  = fs.Uint64("expiry", 0, "grant lifetime in seconds, 0 for none")
		data    = fs.String("data", "", "comma-separated document ids")
		txID    = fs.String("tx", "", "transaction id to wait on")
		rounds  = fs.Int("rounds", 4, "round budget for confirmation")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch command {
	case "register":
		if *address == "" {
			return fmt.Errorf("register requires -address")
		}
		receipt, err := client.Register(ctx, *address)
		if err != nil {
			return err
		}
		return print(receipt)

	case "grant":
		if *sender == "" || *scope == "" {
			return fmt.Errorf("grant requires -sender and -scope")
		}
		var dataItems []string
		if *data != "" {
			dataItems = strings.Split(*data, ",")
		}
		receipt, err := client.Grant(ctx, *sender, *scope, *policy, *expiry, dataItems)
		if err != nil {
			return err
		}
		return print(receipt)

	case "revoke":
		if *sender == "" || *scope == "" {
			return fmt.Errorf("revoke requires -sender and -scope")
		}
		receipt, err := client.Revoke(ctx, *sender, *scope)
		if err != nil {
			return err
		}
		return print(receipt)

	case "check":
		if *subject == "" || *scope == "" {
			return fmt.Errorf("check requires -subject and -scope")
		}
		active, err := client.Check(ctx, *subject, *scope)
		if err != nil {
			return err
		}
		return print(map[string]any{
			"mode":     client.Mode(),
			"subject":  *subject,
			"scopeKey": *scope,
			"active":   active,
		})

	case "list":
		if *subject == "" {
			return fmt.Errorf("list requires -subject")
		}
		scopes, err := client.List(ctx, *subject)
		if err != nil {
			return err
		}
		return print(map[string]any{
			"mode":    client.Mode(),
			"subject": *subject,
			"scopes":  scopes,
		})

	case "wait":
		if *txID == "" {
			return fmt.Errorf("wait requires -tx")
		}
		receipt, err := client.WaitForConfirmation(ctx, *txID, *rounds)
		if err != nil {
			return err
		}
		return print(receipt)

	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func print(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
