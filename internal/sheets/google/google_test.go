package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"posjournal/internal/core"
)

// fakeSheets records the calls the client makes against the Sheets REST API.
type fakeSheets struct {
	mu       sync.Mutex
	appended [][]any
	options  []string
	cleared  []string
	ids      []string
	header   bool
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		var vr struct {
			Values [][]any `json:"values"`
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.appended = append(f.appended, vr.Values...)
		f.options = append(f.options, r.URL.Query().Get("valueInputOption"))
		for _, row := range vr.Values {
			f.ids = append(f.ids, row[0].(string))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"updates": map[string]any{"updatedRange": "Transactions!A2:H2"},
		})
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.cleared = append(f.cleared, path)
		f.ids = nil
		json.NewEncoder(w).Encode(map[string]any{})
	case r.Method == http.MethodPut:
		f.header = true
		json.NewEncoder(w).Encode(map[string]any{})
	case r.Method == http.MethodGet && strings.HasSuffix(path, "A1:H1"):
		values := [][]any{}
		if f.header {
			values = append(values, Header)
		}
		json.NewEncoder(w).Encode(map[string]any{"values": values})
	case r.Method == http.MethodGet:
		values := make([][]any, 0, len(f.ids))
		for _, id := range f.ids {
			values = append(values, []any{id})
		}
		json.NewEncoder(w).Encode(map[string]any{"values": values})
	default:
		http.NotFound(w, r)
	}
}

func newFakeClient(t *testing.T) (*Client, *fakeSheets) {
	t.Helper()
	fake := &fakeSheets{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	return &Client{svc: svc, spreadsheetID: "sheet-1", sheetName: DefaultSheetName}, fake
}

func testTransaction() core.Transaction {
	return core.Transaction{
		ID:         "tx-1",
		CreatedAt:  time.Date(2024, 3, 5, 10, 0, 0, 123000000, time.UTC),
		Date:       "2024-03-05",
		ItemName:   "Pad Kra Pao",
		Category:   "food",
		UnitPrice:  mustMoney("79.5"),
		Quantity:   2,
		TotalPrice: mustMoney("159"),
	}
}

func TestTransactionRow(t *testing.T) {
	row := transactionRow(testTransaction())

	if len(row) != len(Header) {
		t.Fatalf("row has %d cells, header has %d", len(row), len(Header))
	}
	want := []any{"tx-1", "2024-03-05T10:00:00.123Z", "2024-03-05", "Pad Kra Pao", "food", json.Number("79.5"), 2, json.Number("159")}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("cell %d (%v) = %v, want %v", i, Header[i], row[i], want[i])
		}
	}
}

func TestFirstColumn(t *testing.T) {
	values := [][]any{
		{"tx-1", "ignored"},
		{},
		{"  "},
		{" tx-2 "},
	}
	got := firstColumn(values)
	if len(got) != 2 || got[0] != "tx-1" || got[1] != "tx-2" {
		t.Errorf("firstColumn() = %v", got)
	}
}

func TestClient_AppendAndClear(t *testing.T) {
	ctx := context.Background()
	c, fake := newFakeClient(t)

	if err := c.EnsureHeader(ctx); err != nil {
		t.Fatalf("EnsureHeader() error = %v", err)
	}
	if !fake.header {
		t.Fatal("header was not written")
	}

	ref, err := c.AppendTransaction(ctx, testTransaction())
	if err != nil {
		t.Fatalf("AppendTransaction() error = %v", err)
	}
	if ref != "Transactions!A2:H2" {
		t.Errorf("ref = %q", ref)
	}
	if len(fake.appended) != 1 || fake.appended[0][3] != "Pad Kra Pao" {
		t.Errorf("appended rows = %v", fake.appended)
	}

	ids, err := c.TransactionIDs(ctx)
	if err != nil || len(ids) != 1 || ids[0] != "tx-1" {
		t.Errorf("TransactionIDs() = %v, %v", ids, err)
	}

	if err := c.ClearJournal(ctx); err != nil {
		t.Fatalf("ClearJournal() error = %v", err)
	}
	if len(fake.cleared) != 1 || !strings.Contains(fake.cleared[0], "A2:H") {
		t.Errorf("cleared ranges = %v", fake.cleared)
	}
	ids, err = c.TransactionIDs(ctx)
	if err != nil || len(ids) != 0 {
		t.Errorf("TransactionIDs after clear = %v, %v", ids, err)
	}
}

func TestClient_AppendWritesRawValues(t *testing.T) {
	c, fake := newFakeClient(t)
	tx := testTransaction()
	tx.ItemName = `=HYPERLINK("http://example.com")`

	if _, err := c.AppendTransaction(context.Background(), tx); err != nil {
		t.Fatalf("AppendTransaction() error = %v", err)
	}
	if len(fake.options) != 1 || fake.options[0] != "RAW" {
		t.Fatalf("valueInputOption = %v, want [RAW]", fake.options)
	}
	row := fake.appended[0]
	if row[2] != "2024-03-05" || row[3] != tx.ItemName {
		t.Errorf("text cells = %v, %v", row[2], row[3])
	}
	// Money arrives as a JSON number, not a string.
	if row[5] != 79.5 || row[7] != float64(159) {
		t.Errorf("money cells = %#v, %#v", row[5], row[7])
	}
}

func TestClient_NotInitialized(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	ctx := context.Background()

	if _, err := c.AppendTransaction(ctx, testTransaction()); err == nil {
		t.Error("AppendTransaction should fail without a service")
	}
	if err := c.ClearJournal(ctx); err == nil {
		t.Error("ClearJournal should fail without a service")
	}
	if _, err := c.TransactionIDs(ctx); err == nil {
		t.Error("TransactionIDs should fail without a service")
	}
	if err := c.EnsureHeader(ctx); err == nil {
		t.Error("EnsureHeader should fail without a service")
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{CredentialsJSON: "{}"})
	if err == nil || err.Error() != "missing spreadsheet ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadCredentials(t *testing.T) {
	ctx := context.Background()
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	got, err := loadCredentials(ctx, Options{CredentialsJSON: ` {"type":"service_account"} `})
	if err != nil || string(got) != `{"type":"service_account"}` {
		t.Errorf("inline credentials = %q, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"from":"file"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err = loadCredentials(ctx, Options{CredentialsFile: path})
	if err != nil || string(got) != `{"from":"file"}` {
		t.Errorf("file credentials = %q, %v", got, err)
	}

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", path)
	if _, err := loadCredentials(ctx, Options{}); err != nil {
		t.Errorf("GOOGLE_APPLICATION_CREDENTIALS fallback failed: %v", err)
	}

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if _, err := loadCredentials(ctx, Options{}); err == nil {
		t.Error("expected missing credentials error")
	}

	if _, err := loadCredentials(ctx, Options{CredentialsFile: filepath.Join(t.TempDir(), "missing.json")}); err == nil {
		t.Error("expected read error for a missing file")
	}
}

func mustMoney(s string) core.Money {
	m, err := core.ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}
