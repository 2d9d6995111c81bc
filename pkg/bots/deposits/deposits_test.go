package deposits

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"scraper-station/pkg/config"
	"scraper-station/pkg/fetch"
	"scraper-station/pkg/storage"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

const ratePage = `<html><body>
<table>
	<tr><th>Product</th><th>Term</th><th>Interest Rate</th></tr>
	<tr><td>Fixed Deposit</td><td>3 months</td><td>1.50%</td></tr>
	<tr><td>Fixed Deposit</td><td>12 months</td><td>1.85%</td></tr>
</table>
</body></html>`

func newBot(t *testing.T, sources map[string][]string) *Bot {
	t.Helper()
	cfg := &config.AppConfig{
		DefaultUserAgent: "station-test/1.0",
		FetchTimeout:     5 * time.Second,
		MaxRequests:      2,
	}
	snapshots := storage.NewSnapshotStore(t.TempDir(), testLogger())
	fetcher := fetch.NewFetcher(&http.Client{}, cfg, testLogger())
	return New(fetcher, snapshots, config.DepositsConfig{BankSources: sources}, testLogger())
}

func TestRun_ScrapesConfiguredBanks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rates":
			io.WriteString(w, ratePage)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	bot := newBot(t, map[string][]string{
		// First candidate 404s, second works
		"bangkok_bank": {server.URL + "/moved", server.URL + "/rates"},
	})

	got, err := bot.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	res := got.(*Result)
	if res.Status != "success" || len(res.Banks) != 1 || res.Banks[0] != "bangkok_bank" {
		t.Fatalf("Run() = %+v", res)
	}

	data, err := os.ReadFile(res.OutputFile)
	if err != nil {
		t.Fatalf("cannot read snapshot: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}

	bank := snap.Banks["bangkok_bank"]
	if len(bank.TriedURLs) != 2 {
		t.Errorf("TriedURLs = %v, want both candidates", bank.TriedURLs)
	}
	if len(bank.Offers) != 2 {
		t.Fatalf("offers = %+v, want 2", bank.Offers)
	}
	if bank.Offers[0].Term != "3M" || bank.Offers[0].Rate != 1.50 {
		t.Errorf("first offer = %+v", bank.Offers[0])
	}
}

func TestRun_UnsupportedBank(t *testing.T) {
	bot := newBot(t, map[string][]string{})

	got, err := bot.Run(context.Background(), []string{"unknown_bank"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	res := got.(*Result)
	if res.Status != "success" {
		t.Fatalf("Run() = %+v", res)
	}
	if res.Errors["unknown_bank"] == "" {
		t.Errorf("Errors = %v, want entry for unknown_bank", res.Errors)
	}
	if len(res.Banks) != 0 {
		t.Errorf("Banks = %v, want none", res.Banks)
	}
}

func TestRun_AllCandidatesFail(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)

	bot := newBot(t, map[string][]string{
		"gh_bank": {server.URL + "/a", server.URL + "/b"},
	})

	got, err := bot.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	res := got.(*Result)
	if res.Status != "success" {
		t.Fatalf("Run() = %+v", res)
	}

	data, _ := os.ReadFile(res.OutputFile)
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if len(snap.Banks["gh_bank"].Offers) != 0 {
		t.Errorf("offers = %+v, want none when every candidate fails", snap.Banks["gh_bank"].Offers)
	}
}

func TestAnalyze(t *testing.T) {
	snap := &Snapshot{
		Banks: map[string]BankResult{
			"bangkok_bank": {Offers: []Offer{
				{Product: "Fixed", Term: "3M", Rate: 1.5},
				{Product: "Fixed", Term: "12M", Rate: 1.8},
			}},
			"kasikorn": {Offers: []Offer{
				{Product: "K-Fixed", Term: "3M", Rate: 1.7},
				{Product: "K-Fixed", Term: "12M", Rate: 1.6},
			}},
		},
	}

	best := Analyze(snap)
	if got := best["3M"]; got.Bank != "kasikorn" || got.Rate != 1.7 {
		t.Errorf("best[3M] = %+v, want kasikorn at 1.7", got)
	}
	if got := best["12M"]; got.Bank != "bangkok_bank" || got.Rate != 1.8 {
		t.Errorf("best[12M] = %+v, want bangkok_bank at 1.8", got)
	}
}

func TestAnalyze_Empty(t *testing.T) {
	if got := Analyze(&Snapshot{Banks: map[string]BankResult{}}); len(got) != 0 {
		t.Errorf("Analyze() = %v, want empty", got)
	}
}
