package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpHandler "custodial-wallet-ledger/internal/adapter/http/handler"
	"custodial-wallet-ledger/internal/adapter/quote"
	"custodial-wallet-ledger/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// testApp builds the full application stack: real HTTP layer, services
// and quote adapter, against the in-memory store and a stubbed spot
// price endpoint shaped like the upstream provider.

type testApp struct {
	server   *httptest.Server
	quoteSrv *httptest.Server
	store    *memStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	// Spot price stub: USD-EUR at 0.9, everything else unavailable.
	quoteSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "USD-EUR") {
			fmt.Fprint(w, `{"data":{"amount":"0.9","base":"USD","currency":"EUR"}}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"errors":[{"id":"not_found","message":"Invalid base currency"}]}`)
	}))

	store := newMemStore()
	keySvc := service.NewKeyService(20, 32)
	quotes := quote.NewCoinbaseClient(quoteSrv.URL, 5*time.Second)

	log := testLogger()
	walletSvc := service.NewWalletService(memWallets{store}, store, keySvc, log)
	ledgerSvc := service.NewLedgerService(
		memWallets{store}, memCurrencies{store}, store, store, store,
		keySvc, quotes, service.NewFeeRates(0.01, 0.02, 0.01), log,
	)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		WalletSvc: walletSvc,
		LedgerSvc: ledgerSvc,
		Logger:    log,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		quoteSrv.Close()
	})
	return &testApp{server: srv, quoteSrv: quoteSrv, store: store}
}

func (a *testApp) do(t *testing.T, method, path string, body any) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &parsed), "body: %s", raw)
	return resp.StatusCode, parsed
}

func (a *testApp) createWallet(t *testing.T) (address, privateKey string) {
	t.Helper()
	code, resp := a.do(t, http.MethodPost, "/api/v1/wallets", nil)
	require.Equal(t, http.StatusCreated, code)
	data := resp["data"].(map[string]interface{})
	return data["address"].(string), data["private_key"].(string)
}

func (a *testApp) deposit(t *testing.T, address, currency string, amount float64) {
	t.Helper()
	code, _ := a.do(t, http.MethodPost, "/api/v1/wallets/"+address+"/deposits",
		map[string]any{"currency": currency, "amount": amount})
	require.Equal(t, http.StatusCreated, code)
}

func (a *testApp) balance(t *testing.T, address, currency string) string {
	t.Helper()
	code, resp := a.do(t, http.MethodGet, "/api/v1/wallets/"+address+"/balances", nil)
	require.Equal(t, http.StatusOK, code)
	for _, item := range resp["data"].([]interface{}) {
		row := item.(map[string]interface{})
		if row["currency"] == currency {
			return row["amount"].(string)
		}
	}
	t.Fatalf("currency %s not in balances", currency)
	return ""
}

func TestWalletLifecycle(t *testing.T) {
	app := newTestApp(t)

	address, privateKey := app.createWallet(t)
	assert.Len(t, address, 40)
	assert.Len(t, privateKey, 64)

	// Fetch never exposes the key.
	code, resp := app.do(t, http.MethodGet, "/api/v1/wallets/"+address, nil)
	require.Equal(t, http.StatusOK, code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ACTIVE", data["status"])
	assert.NotContains(t, data, "private_key")

	// Listing includes it.
	code, resp = app.do(t, http.MethodGet, "/api/v1/wallets", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resp["data"].([]interface{}), 1)

	// Unknown wallet is a 404.
	code, resp = app.do(t, http.MethodGet, "/api/v1/wallets/deadbeef", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "WLT_001", resp["error_code"])
}

func TestDepositAndBalances(t *testing.T) {
	app := newTestApp(t)
	address, _ := app.createWallet(t)

	code, resp := app.do(t, http.MethodPost, "/api/v1/wallets/"+address+"/deposits",
		map[string]any{"currency": "USD", "amount": 100.0})
	require.Equal(t, http.StatusCreated, code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "DEPOSIT", data["type"])
	assert.Equal(t, "0", data["fee"])
	assert.Equal(t, "100", data["new_balance"])

	// Untouched currencies read as zero.
	assert.Equal(t, "100", app.balance(t, address, "USD"))
	assert.Equal(t, "0", app.balance(t, address, "EUR"))

	// Unknown currency is rejected.
	code, resp = app.do(t, http.MethodPost, "/api/v1/wallets/"+address+"/deposits",
		map[string]any{"currency": "XYZ", "amount": 10.0})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "LED_002", resp["error_code"])
}

func TestWithdrawal(t *testing.T) {
	app := newTestApp(t)
	address, privateKey := app.createWallet(t)
	app.deposit(t, address, "USD", 100.0)

	// Wrong key is rejected before any balance check.
	code, resp := app.do(t, http.MethodPost, "/api/v1/wallets/"+address+"/withdrawals",
		map[string]any{"currency": "USD", "amount": 10.0, "private_key": "wrong"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "WLT_002", resp["error_code"])

	// Valid withdrawal: 10 + 1% fee leaves 89.9.
	code, resp = app.do(t, http.MethodPost, "/api/v1/wallets/"+address+"/withdrawals",
		map[string]any{"currency": "USD", "amount": 10.0, "private_key": privateKey})
	require.Equal(t, http.StatusCreated, code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "WITHDRAWAL", data["type"])
	assert.Equal(t, "0.1", data["fee"])
	assert.Equal(t, "89.9", data["new_balance"])

	// Amount plus fee above balance fails, balance untouched.
	code, resp = app.do(t, http.MethodPost, "/api/v1/wallets/"+address+"/withdrawals",
		map[string]any{"currency": "USD", "amount": 89.9, "private_key": privateKey})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "LED_001", resp["error_code"])
	assert.Equal(t, "89.9", app.balance(t, address, "USD"))
}

func TestConversion(t *testing.T) {
	app := newTestApp(t)
	address, privateKey := app.createWallet(t)
	app.deposit(t, address, "USD", 100.0)

	// Convert 50 USD at the stubbed 0.9 rate: fee 1, debit 51, credit 45.
	code, resp := app.do(t, http.MethodPost, "/api/v1/wallets/"+address+"/conversions",
		map[string]any{"from_currency": "USD", "to_currency": "EUR", "amount": 50.0, "private_key": privateKey})
	require.Equal(t, http.StatusCreated, code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "0.9", data["rate"])
	assert.Equal(t, "45", data["to_amount"])
	assert.Equal(t, "1", data["fee_amount"])

	assert.Equal(t, "49", app.balance(t, address, "USD"))
	assert.Equal(t, "45", app.balance(t, address, "EUR"))

	// The provider has no BTC quote: every failure mode is one error.
	code, resp = app.do(t, http.MethodPost, "/api/v1/wallets/"+address+"/conversions",
		map[string]any{"from_currency": "USD", "to_currency": "BTC", "amount": 5.0, "private_key": privateKey})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "FX_001", resp["error_code"])
}

func TestTransfer(t *testing.T) {
	app := newTestApp(t)
	src, srcKey := app.createWallet(t)
	dst, _ := app.createWallet(t)
	app.deposit(t, src, "USD", 100.0)

	// Self-transfer is invalid regardless of balance.
	code, resp := app.do(t, http.MethodPost, "/api/v1/wallets/"+src+"/transfers",
		map[string]any{"to_address": src, "currency": "USD", "amount": 10.0, "private_key": srcKey})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "LED_004", resp["error_code"])

	// Valid transfer: source pays 20 + 0.2 fee, destination gets 20.
	code, resp = app.do(t, http.MethodPost, "/api/v1/wallets/"+src+"/transfers",
		map[string]any{"to_address": dst, "currency": "USD", "amount": 20.0, "private_key": srcKey})
	require.Equal(t, http.StatusCreated, code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "0.2", data["fee"])

	assert.Equal(t, "79.8", app.balance(t, src, "USD"))
	assert.Equal(t, "20", app.balance(t, dst, "USD"))

	// Unknown destination fails before any debit.
	code, resp = app.do(t, http.MethodPost, "/api/v1/wallets/"+src+"/transfers",
		map[string]any{"to_address": "deadbeef", "currency": "USD", "amount": 1.0, "private_key": srcKey})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "WLT_001", resp["error_code"])
	assert.Equal(t, "79.8", app.balance(t, src, "USD"))
}

func TestBlockedWalletRules(t *testing.T) {
	app := newTestApp(t)
	src, srcKey := app.createWallet(t)
	blocked, blockedKey := app.createWallet(t)
	app.deposit(t, src, "USD", 50.0)
	app.deposit(t, blocked, "USD", 50.0)

	code, resp := app.do(t, http.MethodDelete, "/api/v1/wallets/"+blocked, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "BLOCKED", resp["data"].(map[string]interface{})["status"])

	// A blocked wallet cannot originate debits.
	code, resp = app.do(t, http.MethodPost, "/api/v1/wallets/"+blocked+"/withdrawals",
		map[string]any{"currency": "USD", "amount": 5.0, "private_key": blockedKey})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "WLT_003", resp["error_code"])

	// Nor receive transfers.
	code, resp = app.do(t, http.MethodPost, "/api/v1/wallets/"+src+"/transfers",
		map[string]any{"to_address": blocked, "currency": "USD", "amount": 5.0, "private_key": srcKey})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "WLT_004", resp["error_code"])

	// Deposits still land.
	code, _ = app.do(t, http.MethodPost, "/api/v1/wallets/"+blocked+"/deposits",
		map[string]any{"currency": "USD", "amount": 5.0})
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "55", app.balance(t, blocked, "USD"))
}
