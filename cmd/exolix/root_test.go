package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/myshadowbank/exolix-sdk/core"
	"github.com/myshadowbank/exolix-sdk/devkit"
	sqlstore "github.com/myshadowbank/exolix-sdk/store/sql"
)

var cliLedgerSeq atomic.Int64

func runCLI(t *testing.T, transport core.Transport, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root := newRootCommand(stdout, stderr, transport)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRateCommand_PrintsQuoteAndSendsQuery(t *testing.T) {
	transport := devkit.NewFakeTransport(devkit.JSONScript(http.StatusOK,
		`{"fromAmount":0.5,"toAmount":8.2,"rate":16.4,"message":null,"minAmount":0.001,"withdrawMin":0.01,"maxAmount":10}`))

	out, _, err := runCLI(t, transport,
		"--api-key", "cli-key", "--base-url", "https://exolix.test/api/v2",
		"rate", "--from", "BTC", "--to", "ETH", "--amount", "0.5")
	if err != nil {
		t.Fatalf("rate: %v", err)
	}

	var rate core.Rate
	if err := json.Unmarshal([]byte(out), &rate); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if rate.Rate != 16.4 {
		t.Fatalf("expected rate 16.4, got %v", rate.Rate)
	}

	requests := transport.Requests()
	if len(requests) != 1 {
		t.Fatalf("expected one request, got %d", len(requests))
	}
	if !strings.HasPrefix(requests[0].URL, "https://exolix.test/api/v2/rate?") {
		t.Fatalf("unexpected url %q", requests[0].URL)
	}
	if requests[0].Headers["Authorization"] != "cli-key" {
		t.Fatalf("expected api key header, got %#v", requests[0].Headers)
	}
}

func TestRateCommand_ValidationFailsBeforeTransport(t *testing.T) {
	transport := devkit.NewFakeTransport()
	_, _, err := runCLI(t, transport, "rate", "--from", "BTC", "--to", "ETH")
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !core.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(transport.Requests()) != 0 {
		t.Fatalf("expected no transport call")
	}
}

func TestNetworksCommand_RequiresCode(t *testing.T) {
	if _, _, err := runCLI(t, devkit.NewFakeTransport(), "networks"); err == nil {
		t.Fatalf("expected argument error")
	}
}

func TestCreateCommand_RecordsIntoLedger(t *testing.T) {
	transport := devkit.NewFakeTransport(
		devkit.JSONScript(http.StatusCreated, devkit.TransactionJSON("ex_cli", core.TransactionStatusWait)),
	)
	dsn := fmt.Sprintf("file:exolix-cli-%d?mode=memory&cache=shared", cliLedgerSeq.Add(1))

	out, _, err := runCLI(t, transport,
		"--ledger-dsn", dsn,
		"create", "--from", "BTC", "--to", "ETH", "--amount", "0.5", "--address", "0xwithdrawal")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var tx core.Transaction
	if err := json.Unmarshal([]byte(out), &tx); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if tx.ID != "ex_cli" || tx.Status != core.TransactionStatusWait {
		t.Fatalf("unexpected transaction %#v", tx)
	}
	if requests := transport.Requests(); len(requests) != 1 || requests[0].Method != http.MethodPost {
		t.Fatalf("expected one POST, got %#v", requests)
	}
}

func TestRefreshAndStoredList_RequireLedger(t *testing.T) {
	if _, _, err := runCLI(t, devkit.NewFakeTransport(), "refresh", "ex_1"); err == nil {
		t.Fatalf("expected refresh to need a ledger")
	}
	if _, _, err := runCLI(t, devkit.NewFakeTransport(), "txs", "--stored"); err == nil {
		t.Fatalf("expected stored listing to need a ledger")
	}
}

func TestTransactionsCommand_RejectsBadDate(t *testing.T) {
	_, _, err := runCLI(t, devkit.NewFakeTransport(), "txs", "--date-from", "yesterday")
	if err == nil || !strings.Contains(err.Error(), "invalid date") {
		t.Fatalf("expected invalid date error, got %v", err)
	}
}

func TestConfigFile_SuppliesClientSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exolix.yaml")
	content := "exolix:\n  base_url: https://config.exolix.test/api/v2\n  api_key: from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	transport := devkit.NewFakeTransport(devkit.JSONScript(http.StatusOK, devkit.TransactionJSON("ex_cfg", core.TransactionStatusSuccess)))

	if _, _, err := runCLI(t, transport, "--config", path, "tx", "ex_cfg"); err != nil {
		t.Fatalf("tx: %v", err)
	}
	request := transport.Requests()[0]
	if request.URL != "https://config.exolix.test/api/v2/transactions/ex_cfg" {
		t.Fatalf("unexpected url %q", request.URL)
	}
	if request.Headers["Authorization"] != "from-file" {
		t.Fatalf("expected api key from file, got %#v", request.Headers)
	}
}

func TestMetricsFlag_WritesRequestCounters(t *testing.T) {
	transport := devkit.NewFakeTransport(devkit.JSONScript(http.StatusOK, `{"data":[],"count":0}`))
	_, stderr, err := runCLI(t, transport, "--metrics", "currencies")
	if err != nil {
		t.Fatalf("currencies: %v", err)
	}
	if !strings.Contains(stderr, "exolix_request_total{") {
		t.Fatalf("expected request counter in %q", stderr)
	}
}

func TestMergeLedgerSection_FlagsWin(t *testing.T) {
	cfg := mergeLedgerSection(sqlstore.Config{Driver: sqlstore.DriverSQLite, DSN: "flag.db"}, map[string]any{
		"dsn":    "file.db",
		"driver": "postgres",
	})
	if cfg.DSN != "flag.db" {
		t.Fatalf("expected flag dsn, got %q", cfg.DSN)
	}
	if cfg.Driver != sqlstore.DriverPostgres {
		t.Fatalf("expected driver from file when flag is default, got %q", cfg.Driver)
	}
}
