// Package depositreport implements the thai_fd_report bot: it reads the
// latest thai_fixed_deposits snapshot (or an explicit file) and prints a
// per-bank offers report.
package depositreport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"scraper-station/pkg/bots"
	"scraper-station/pkg/bots/deposits"
	"scraper-station/pkg/storage"
	"scraper-station/pkg/utils"
)

// Result is the bot's run outcome
type Result struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Banks  int    `json:"banks"`
	Offers int    `json:"offers"`
}

// Bot renders deposit snapshots as a text report
type Bot struct {
	snapshots *storage.SnapshotStore
	output    io.Writer
	log       *logrus.Entry
}

// New creates the thai_fd_report bot
func New(snapshots *storage.SnapshotStore, output io.Writer, logger *logrus.Entry) *Bot {
	return &Bot{
		snapshots: snapshots,
		output:    output,
		log:       logger.WithField("bot", "thai_fd_report"),
	}
}

// Manifest implements the bots.Bot interface
func (b *Bot) Manifest() bots.Manifest {
	return bots.Manifest{
		Name:        "thai_fd_report",
		Description: "Reads thai_fixed_deposits scraped results and prints a CLI report",
		Author:      "Scraper Kit",
		Version:     "0.1.0",
		Operations:  []string{"run"},
	}
}

// Run implements the bots.Bot interface. The single optional parameter is
// an explicit snapshot file path; by default the latest
// thai_fixed_deposits snapshot is used.
func (b *Bot) Run(_ context.Context, params []string) (any, error) {
	data, err := b.loadSnapshot(params)
	if err != nil {
		if errors.Is(err, utils.ErrNoSnapshot) {
			fmt.Fprintln(b.output, "No data found to report.")
			return &Result{Status: "error", Error: "no_data"}, nil
		}
		return nil, err
	}

	var snap deposits.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: failed to decode deposits snapshot: %w", utils.ErrParsing, err)
	}

	totalOffers := b.write(&snap)
	return &Result{Status: "success", Banks: len(snap.Banks), Offers: totalOffers}, nil
}

func (b *Bot) loadSnapshot(params []string) ([]byte, error) {
	if len(params) > 0 && strings.TrimSpace(params[0]) != "" {
		return b.snapshots.Load(strings.TrimSpace(params[0]))
	}
	_, data, err := b.snapshots.Latest("thai_fixed_deposits", "fd_rates")
	return data, err
}

// write renders the report and returns the total offer count
func (b *Bot) write(snap *deposits.Snapshot) int {
	var out strings.Builder

	out.WriteString("\nThai Fixed Deposit Offers Report\n")
	out.WriteString(strings.Repeat("=", 40) + "\n")
	scrapedAt := snap.ScrapedAt
	if scrapedAt == "" {
		scrapedAt = "unknown"
	}
	fmt.Fprintf(&out, "Scraped at: %s\n\n", scrapedAt)

	banks := make([]string, 0, len(snap.Banks))
	for bank := range snap.Banks {
		banks = append(banks, bank)
	}
	sort.Strings(banks)

	totalOffers := 0
	for _, bank := range banks {
		fmt.Fprintf(&out, "Bank: %s\n", bank)
		offers := snap.Banks[bank].Offers
		if len(offers) == 0 {
			out.WriteString("  (no offers found)\n")
			out.WriteString(strings.Repeat("-", 40) + "\n")
			continue
		}
		for _, offer := range offers {
			product := offer.Product
			if product == "" {
				product = "(product)"
			}
			term := offer.Term
			if term == "" {
				term = "?"
			}
			fmt.Fprintf(&out, "  - %s: %.2f%%  |  %s\n", term, offer.Rate, product)
			totalOffers++
		}
		out.WriteString(strings.Repeat("-", 40) + "\n")
	}

	if len(snap.Errors) > 0 {
		out.WriteString("Errors:\n")
		errBanks := make([]string, 0, len(snap.Errors))
		for bank := range snap.Errors {
			errBanks = append(errBanks, bank)
		}
		sort.Strings(errBanks)
		for _, bank := range errBanks {
			fmt.Fprintf(&out, "  %s: %s\n", bank, snap.Errors[bank])
		}
		out.WriteString(strings.Repeat("-", 40) + "\n")
	}

	io.WriteString(b.output, out.String())
	return totalOffers
}
