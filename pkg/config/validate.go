package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"scraper-station/pkg/utils"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// Validate checks AppConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *AppConfig) Validate() (warnings []string, err error) {
	if c.DefaultUserAgent == "" {
		c.DefaultUserAgent = defaultUserAgent
	}

	if c.FetchTimeout < 0 {
		return warnings, fmt.Errorf("%w: fetch_timeout must not be negative", utils.ErrConfigValidation)
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = 15 * time.Second
	}

	if c.MaxRequests <= 0 {
		warnings = append(warnings, "max_requests should be > 0, defaulting to 10")
		c.MaxRequests = 10
	}

	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.StateDir == "" {
		c.StateDir = filepath.Join(xdg.DataHome, "scraper-station")
	}

	// Mapper defaults
	if c.Mapper.MaxDepth < 0 {
		return warnings, fmt.Errorf("%w: mapper.max_depth must not be negative", utils.ErrConfigValidation)
	}
	if c.Mapper.MaxDepth == 0 {
		c.Mapper.MaxDepth = 2
	}
	if c.Mapper.MaxPages <= 0 {
		c.Mapper.MaxPages = 200 // safety cap
	}
	if c.Mapper.Parallelism <= 0 {
		warnings = append(warnings, "mapper.parallelism should be > 0, defaulting to 4")
		c.Mapper.Parallelism = 4
	}

	// Deposits defaults
	if len(c.Deposits.BankSources) == 0 {
		c.Deposits.BankSources = defaultBankSources()
	}
	if c.Deposits.DelayPerRequest <= 0 {
		c.Deposits.DelayPerRequest = 800 * time.Millisecond
	}

	return warnings, nil
}

// defaultBankSources returns the built-in candidate URLs per bank.
// Interest rate pages periodically move, so several likely endpoints are tried per bank.
func defaultBankSources() map[string][]string {
	return map[string][]string{
		"bangkok_bank": {
			"https://www.bangkokbank.com/en/Personal/Saving-and-Investment/Savings/Time-Deposit/Interest-Rates",
			"https://www.bangkokbank.com/th-TH/Personal/Saving-and-Investment/Savings/Time-Deposit/Interest-Rates",
		},
		"kasikorn": {
			"https://www.kasikornbank.com/en/rate/Pages/depositRate.aspx",
			"https://www.kasikornbank.com/en/personal/saving-investment/Pages/interest-rates.aspx",
			"https://www.kasikornbank.com/th/personal/save/pages/interest-rate.aspx",
		},
		"gh_bank": {
			"https://www.ghbank.co.th/en/interest-rate",
			"https://www.ghbank.co.th/en/deposit/interest-rate",
			"https://www.ghbank.co.th/interest-rate",
		},
	}
}
