// Package deposits implements the thai_fixed_deposits bot: it scrapes
// fixed/time-deposit interest rate tables from major Thai banks and
// snapshots normalized offers for comparison.
package deposits

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"scraper-station/pkg/bots"
	"scraper-station/pkg/config"
	"scraper-station/pkg/fetch"
	"scraper-station/pkg/storage"
)

// BankResult is the scrape outcome for one bank
type BankResult struct {
	Bank      string   `json:"bank"`
	ScrapedAt string   `json:"scraped_at"`
	TriedURLs []string `json:"tried_urls"`
	Offers    []Offer  `json:"offers"`
}

// Snapshot is the JSON document written per run
type Snapshot struct {
	ScrapedAt string                `json:"scraped_at"`
	Banks     map[string]BankResult `json:"banks"`
	Errors    map[string]string     `json:"errors"`
}

// Result is the bot's run outcome
type Result struct {
	Status     string            `json:"status"`
	OutputFile string            `json:"output_file"`
	Banks      []string          `json:"banks"`
	Errors     map[string]string `json:"errors"`
}

// BestRate is the highest offer found for a term across banks
type BestRate struct {
	Bank string  `json:"bank"`
	Rate float64 `json:"rate"`
	Name string  `json:"name,omitempty"`
}

// Bot scrapes Thai bank fixed-deposit rates
type Bot struct {
	fetcher   fetch.Getter
	snapshots *storage.SnapshotStore
	cfg       config.DepositsConfig
	log       *logrus.Entry
}

// New creates the thai_fixed_deposits bot
func New(fetcher fetch.Getter, snapshots *storage.SnapshotStore, cfg config.DepositsConfig, logger *logrus.Entry) *Bot {
	return &Bot{
		fetcher:   fetcher,
		snapshots: snapshots,
		cfg:       cfg,
		log:       logger.WithField("bot", "thai_fixed_deposits"),
	}
}

// Manifest implements the bots.Bot interface
func (b *Bot) Manifest() bots.Manifest {
	return bots.Manifest{
		Name:        "thai_fixed_deposits",
		Description: "Scrapes fixed deposit (time deposit) interest rates from major Thai banks in Thailand",
		Author:      "Scraper Kit",
		Version:     "0.1.0",
		Operations:  []string{"run", "analyze"},
	}
}

// Run implements the bots.Bot interface. Positional parameters are bank
// keys to scrape; with none given all configured banks are scraped.
func (b *Bot) Run(ctx context.Context, params []string) (any, error) {
	targets := params
	if len(targets) == 0 {
		targets = make([]string, 0, len(b.cfg.BankSources))
		for bank := range b.cfg.BankSources {
			targets = append(targets, bank)
		}
		sort.Strings(targets)
	}

	snapshot := Snapshot{
		ScrapedAt: time.Now().UTC().Format(time.RFC3339),
		Banks:     make(map[string]BankResult),
		Errors:    make(map[string]string),
	}

	for _, bank := range targets {
		bankRes, err := b.scrapeBank(ctx, bank)
		if err != nil {
			b.log.WithField("bank", bank).Warnf("Bank scrape failed: %v", err)
			snapshot.Errors[bank] = err.Error()
		} else {
			snapshot.Banks[bank] = bankRes
		}
		if err := b.sleep(ctx); err != nil {
			return nil, err
		}
	}

	path, err := b.snapshots.Write("thai_fixed_deposits", "fd_rates", snapshot)
	if err != nil {
		return nil, err
	}

	banks := make([]string, 0, len(snapshot.Banks))
	for bank := range snapshot.Banks {
		banks = append(banks, bank)
	}
	sort.Strings(banks)

	b.log.Infof("Saved results to %s", path)
	return &Result{Status: "success", OutputFile: path, Banks: banks, Errors: snapshot.Errors}, nil
}

// scrapeBank walks the bank's candidate URLs until one yields offers.
// Pages move and endpoints rot, so failures on individual URLs are
// tolerated and the next candidate is tried.
func (b *Bot) scrapeBank(ctx context.Context, bank string) (BankResult, error) {
	urls, ok := b.cfg.BankSources[bank]
	if !ok {
		return BankResult{}, fmt.Errorf("unsupported bank: %s", bank)
	}

	bankLog := b.log.WithField("bank", bank)
	result := BankResult{
		Bank:      bank,
		ScrapedAt: time.Now().UTC().Format(time.RFC3339),
		Offers:    []Offer{},
	}

	var offers []Offer
	for _, u := range urls {
		result.TriedURLs = append(result.TriedURLs, u)

		res, err := b.fetcher.Get(ctx, u)
		if err != nil || res.StatusCode >= 400 {
			bankLog.WithField("url", u).Debug("Candidate URL unusable, trying next")
			if err := b.sleep(ctx); err != nil {
				return BankResult{}, err
			}
			continue
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
		if err != nil {
			bankLog.WithField("url", u).Debugf("HTML parse failed: %v", err)
			if err := b.sleep(ctx); err != nil {
				return BankResult{}, err
			}
			continue
		}

		offers = append(offers, ExtractFromTables(doc)...)
		offers = append(offers, ExtractGenericBlocks(doc)...)

		if err := b.sleep(ctx); err != nil {
			return BankResult{}, err
		}
		if len(offers) > 0 {
			break
		}
	}

	result.Offers = DedupeOffers(offers)
	bankLog.Infof("Extracted %d offer(s)", len(result.Offers))
	return result, nil
}

// sleep pauses between requests to stay polite, honoring cancellation
func (b *Bot) sleep(ctx context.Context) error {
	if b.cfg.DelayPerRequest <= 0 {
		return nil
	}
	select {
	case <-time.After(b.cfg.DelayPerRequest):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Analyze finds the highest offered rate per term across all banks in a
// snapshot.
func Analyze(snap *Snapshot) map[string]BestRate {
	best := make(map[string]BestRate)
	for bank, payload := range snap.Banks {
		for _, offer := range payload.Offers {
			if offer.Term == "" {
				continue
			}
			cur, ok := best[offer.Term]
			if !ok || offer.Rate > cur.Rate {
				best[offer.Term] = BestRate{Bank: bank, Rate: offer.Rate, Name: offer.Product}
			}
		}
	}
	return best
}
