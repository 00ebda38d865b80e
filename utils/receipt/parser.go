package receipt

import (
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/Aashish23092/expense-ocr/dto"
)

const (
	// ReceiptConfidence is attached to transactions built from a whole receipt.
	ReceiptConfidence = 80
	// ListLineConfidence is attached to transactions built from a single line.
	ListLineConfidence = 60
)

var (
	lineHasAmount    = regexp.MustCompile(`\d`)
	lineAmountNoise  = regexp.MustCompile(`[₹$€£¥,\s]`)
	lineAmountNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)
	lineNumericNoise = regexp.MustCompile(`[\d.,₹$€£¥]+`)
)

// Parser turns recognized document text into transaction candidates. A
// Parser holds no per-document state and is safe for concurrent use.
type Parser struct {
	classifier   *Classifier
	amounts      *AmountExtractor
	dates        *DateExtractor
	merchants    MerchantResolver
	descriptions *DescriptionBuilder
	now          func() time.Time
}

// Option customises a Parser.
type Option func(*parserConfig)

type parserConfig struct {
	table        CategoryTable
	groups       []KeywordGroup
	amountMatch  PatternMatcher
	dateMatch    PatternMatcher
	itemMatchers map[string]PatternMatcher
	now          func() time.Time
}

// WithClock sets the source of "now" used for undated documents.
func WithClock(now func() time.Time) Option {
	return func(c *parserConfig) { c.now = now }
}

// WithCategoryTable replaces the category keyword table.
func WithCategoryTable(table CategoryTable) Option {
	return func(c *parserConfig) { c.table = table }
}

// WithKeywordGroups replaces the total keyword ranking.
func WithKeywordGroups(groups []KeywordGroup) Option {
	return func(c *parserConfig) { c.groups = groups }
}

// WithAmountMatcher replaces the amount token patterns.
func WithAmountMatcher(m PatternMatcher) Option {
	return func(c *parserConfig) { c.amountMatch = m }
}

// WithDateMatcher replaces the date token patterns.
func WithDateMatcher(m PatternMatcher) Option {
	return func(c *parserConfig) { c.dateMatch = m }
}

// WithItemMatchers replaces the per-category item vocabularies.
func WithItemMatchers(m map[string]PatternMatcher) Option {
	return func(c *parserConfig) { c.itemMatchers = m }
}

// NewParser builds a Parser with the default tables unless overridden.
func NewParser(opts ...Option) *Parser {
	cfg := parserConfig{
		table:        DefaultCategoryTable(),
		groups:       DefaultKeywordGroups(),
		amountMatch:  DefaultAmountMatcher(),
		dateMatch:    DefaultDateMatcher(),
		itemMatchers: DefaultItemMatchers(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Parser{
		classifier:   NewClassifier(cfg.table),
		amounts:      NewAmountExtractor(cfg.amountMatch, cfg.groups),
		dates:        NewDateExtractor(cfg.dateMatch, cfg.now),
		descriptions: NewDescriptionBuilder(NewItemExtractor(cfg.itemMatchers)),
		now:          cfg.now,
	}
}

// Classify exposes the parser's category classifier.
func (p *Parser) Classify(text string) string {
	return p.classifier.Classify(text)
}

// ParseTransactions reads text as a single receipt first and, when that
// yields nothing, as a list of one transaction per amount-bearing line.
func (p *Parser) ParseTransactions(text string) []dto.ExtractedTransaction {
	txs, _ := FirstSuccess(
		func() ([]dto.ExtractedTransaction, bool) {
			tx, ok := p.ParseReceipt(text)
			if !ok {
				return nil, false
			}
			return []dto.ExtractedTransaction{tx}, true
		},
		func() ([]dto.ExtractedTransaction, bool) {
			list := p.ParseTransactionList(text)
			return list, len(list) > 0
		},
	)
	if txs == nil {
		txs = []dto.ExtractedTransaction{}
	}
	return txs
}

// ParseReceipt extracts one expense from a receipt. ok is false when no
// positive total is found.
func (p *Parser) ParseReceipt(text string) (dto.ExtractedTransaction, bool) {
	cleaned := Normalize(text)
	lines := Lines(cleaned)

	candidates := p.amounts.ExtractAmounts(cleaned)
	total, found := p.amounts.SelectTotal(candidates, cleaned)
	if !found || !total.IsPositive() {
		log.Debug("no receipt total found", "candidates", len(candidates))
		return dto.ExtractedTransaction{}, false
	}

	date := p.dates.ExtractDate(cleaned)
	merchant := p.merchants.ResolveMerchant(text, lines)

	categorySource := merchant
	if merchant == UnknownMerchant {
		categorySource = cleaned
	}
	category := p.classifier.Classify(categorySource)
	description := p.descriptions.GenerateDescription(merchant, cleaned, category)

	log.Info("extracted receipt transaction",
		"amount", total.StringFixed(2), "category", category,
		"merchant", merchant, "date", date.Format(time.DateOnly))

	return dto.ExtractedTransaction{
		Type:        dto.TransactionTypeExpense,
		Category:    category,
		Amount:      total,
		Date:        date,
		Description: description,
		Confidence:  ReceiptConfidence,
	}, true
}

// ParseTransactionList builds one expense per line that carries a number.
// Lines whose amount is not positive are dropped.
func (p *Parser) ParseTransactionList(text string) []dto.ExtractedTransaction {
	var txs []dto.ExtractedTransaction
	for _, line := range Lines(text) {
		if !lineHasAmount.MatchString(line) {
			continue
		}

		date := p.now()
		remainder := line
		if d, ok := p.dates.Find(line); ok {
			date = d
		}
		for _, tok := range p.dates.Tokens(line) {
			remainder = strings.Replace(remainder, tok.Value, " ", 1)
		}

		amount := parseLineAmount(remainder)
		if !amount.IsPositive() {
			continue
		}

		category := CategoryMiscellaneous
		description := strings.TrimSpace(spaceRun.ReplaceAllString(lineNumericNoise.ReplaceAllString(remainder, ""), " "))
		if len(description) > 2 {
			category = p.classifier.Classify(description)
		} else {
			description = category + " expense"
		}

		txs = append(txs, dto.ExtractedTransaction{
			Type:        dto.TransactionTypeExpense,
			Category:    category,
			Amount:      amount,
			Date:        date,
			Description: truncate(description, maxDescriptionLen),
			Confidence:  ListLineConfidence,
		})
	}
	log.Debug("parsed transaction list", "transactions", len(txs))
	return txs
}

// parseLineAmount reads the first number on a line once currency symbols,
// thousands separators and spaces are removed.
func parseLineAmount(line string) decimal.Decimal {
	token := lineAmountNumber.FindString(lineAmountNoise.ReplaceAllString(line, ""))
	if token == "" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(token)
	if err != nil {
		return decimal.Zero
	}
	return v.Round(2)
}
