// Package corpus loads the promotion corpus from disk, falling back to
// a built-in seed set when no usable data file is available.
package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/gypgypgyp/PromoSearchMCP/internal/promo"
)

// DefaultDataPath is the default location of the promotions JSONL file.
const DefaultDataPath = "data/promotions.jsonl"

// Load reads promotions from the JSONL file at path. A missing or
// unparsable file is not an error: the seed corpus is returned instead
// so the pipeline stays demonstrable without any data set up.
func Load(path string, logger *slog.Logger) []promo.Promotion {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		path = DefaultDataPath
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Warn("promotions data file not available, using seed corpus",
			"path", path,
			"error", err,
		)
		return Seed()
	}
	defer f.Close()

	promotions, err := ParseJSONL(f)
	if err != nil {
		logger.Warn("failed to parse promotions data, using seed corpus",
			"path", path,
			"error", err,
		)
		return Seed()
	}

	logger.Info("loaded promotions", "count", len(promotions), "path", path)
	return promotions
}

// ParseJSONL decodes one promotion per non-blank line. Records without
// an id get a generated one so every promotion stays addressable through
// ranking and placement.
func ParseJSONL(r io.Reader) ([]promo.Promotion, error) {
	var promotions []promo.Promotion

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var p promo.Promotion
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		promotions = append(promotions, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read promotions: %w", err)
	}

	return promotions, nil
}

// Seed returns the built-in demonstration corpus. Callers own the
// returned slice.
func Seed() []promo.Promotion {
	return []promo.Promotion{
		{
			ID:          "aws-ec2-1",
			Title:       "AWS EC2 Instance Discount",
			Description: "Save 30% on AWS EC2 instances for new customers. Perfect for cloud computing and web hosting needs.",
			Link:        "https://aws.amazon.com/ec2/pricing/",
			Categories:  []string{"cloud", "computing", "aws", "hosting"},
			PriceTier:   promo.PriceTierMedium,
			BaseCTR:     0.12,
		},
		{
			ID:          "laptop-deal-1",
			Title:       "Gaming Laptop Special Offer",
			Description: "High-performance gaming laptops with RTX graphics cards. 25% off for limited time.",
			Link:        "https://example.com/gaming-laptops",
			Categories:  []string{"electronics", "gaming", "laptop", "computer"},
			PriceTier:   promo.PriceTierHigh,
			BaseCTR:     0.08,
		},
		{
			ID:          "phone-promo-1",
			Title:       "Smartphone Bundle Deal",
			Description: "Latest smartphones with free accessories and extended warranty. Best value for mobile users.",
			Link:        "https://example.com/phone-deals",
			Categories:  []string{"mobile", "phone", "electronics", "smartphone"},
			PriceTier:   promo.PriceTierMedium,
			BaseCTR:     0.15,
		},
		{
			ID:          "cloud-storage-1",
			Title:       "Cloud Storage Premium Plan",
			Description: "Unlimited cloud storage with advanced security features. 50% off first year.",
			Link:        "https://example.com/cloud-storage",
			Categories:  []string{"cloud", "storage", "backup", "security"},
			PriceTier:   promo.PriceTierLow,
			BaseCTR:     0.10,
		},
		{
			ID:          "web-hosting-1",
			Title:       "Professional Web Hosting",
			Description: "Fast and reliable web hosting with 99.9% uptime guarantee. Perfect for businesses.",
			Link:        "https://example.com/web-hosting",
			Categories:  []string{"hosting", "web", "business", "server"},
			PriceTier:   promo.PriceTierMedium,
			BaseCTR:     0.11,
		},
		{
			ID:          "software-license-1",
			Title:       "Office Software Suite",
			Description: "Complete office productivity suite with word processing, spreadsheets, and presentations.",
			Link:        "https://example.com/office-suite",
			Categories:  []string{"software", "productivity", "office", "business"},
			PriceTier:   promo.PriceTierMedium,
			BaseCTR:     0.09,
		},
		{
			ID:          "vpn-service-1",
			Title:       "Premium VPN Service",
			Description: "Secure VPN with global servers and no-logs policy. Protect your privacy online.",
			Link:        "https://example.com/vpn",
			Categories:  []string{"security", "privacy", "vpn", "internet"},
			PriceTier:   promo.PriceTierLow,
			BaseCTR:     0.13,
		},
		{
			ID:          "domain-hosting-1",
			Title:       "Domain Registration Special",
			Description: "Register your domain name with free DNS management and email forwarding.",
			Link:        "https://example.com/domains",
			Categories:  []string{"domain", "web", "hosting", "business"},
			PriceTier:   promo.PriceTierLow,
			BaseCTR:     0.07,
		},
		{
			ID:          "ai-service-1",
			Title:       "AI API Platform",
			Description: "Access powerful AI models through our API. Perfect for developers and businesses.",
			Link:        "https://example.com/ai-api",
			Categories:  []string{"ai", "api", "development", "machine-learning"},
			PriceTier:   promo.PriceTierHigh,
			BaseCTR:     0.14,
		},
		{
			ID:          "database-service-1",
			Title:       "Managed Database Service",
			Description: "Fully managed database with automatic backups and scaling. Focus on your application.",
			Link:        "https://example.com/database",
			Categories:  []string{"database", "cloud", "managed", "development"},
			PriceTier:   promo.PriceTierMedium,
			BaseCTR:     0.06,
		},
	}
}
