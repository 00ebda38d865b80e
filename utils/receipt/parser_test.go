package receipt

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser(opts ...Option) *Parser {
	return NewParser(append([]Option{WithClock(fixedClock)}, opts...)...)
}

func TestParseTransactionsReceipt(t *testing.T) {
	p := newTestParser()

	txs := p.ParseTransactions("WALMART SUPERCENTER\n... Subtotal 45.00\nTotal $48.60\n03/14/2024")
	require.Len(t, txs, 1)

	tx := txs[0]
	assert.Equal(t, "48.60", tx.Amount.StringFixed(2))
	assert.Equal(t, CategoryShopping, tx.Category)
	assert.Equal(t, "2024-03-14", tx.Date.Format(time.DateOnly))
	assert.Equal(t, ReceiptConfidence, tx.Confidence)
	assert.Equal(t, "expense", string(tx.Type))
	assert.Equal(t, "Walmart Supercenter - purchase", tx.Description)
}

func TestParseTransactionsThousandsSeparatedTotal(t *testing.T) {
	p := newTestParser()

	_, ok := p.ParseReceipt("BEST BUY\nLaptop\nTotal: $1,234.56\n03/14/2024")
	assert.False(t, ok)

	txs := p.ParseTransactions("BEST BUY\nLaptop\nTotal: $1,234.56\n03/14/2024")
	require.Len(t, txs, 1)
	assert.Equal(t, "1234.56", txs[0].Amount.StringFixed(2))
	assert.Equal(t, ListLineConfidence, txs[0].Confidence)
}

func TestParseTransactionsNoAmounts(t *testing.T) {
	p := newTestParser()

	txs := p.ParseTransactions("THANK YOU FOR SHOPPING\nPLEASE COME AGAIN")
	assert.NotNil(t, txs)
	assert.Empty(t, txs)

	assert.Empty(t, p.ParseTransactions(""))
}

func TestParseTransactionsListFallback(t *testing.T) {
	p := newTestParser()

	txs := p.ParseTransactions("Coffee 4.50\nTaxi 12.00\n")
	require.Len(t, txs, 2)

	assert.Equal(t, "4.50", txs[0].Amount.StringFixed(2))
	assert.Equal(t, "Coffee", txs[0].Description)
	assert.Equal(t, CategoryFoodDining, txs[0].Category)

	assert.Equal(t, "12.00", txs[1].Amount.StringFixed(2))
	assert.Equal(t, "Taxi", txs[1].Description)
	assert.Equal(t, CategoryTransportation, txs[1].Category)

	for _, tx := range txs {
		assert.Equal(t, ListLineConfidence, tx.Confidence)
		assert.True(t, fixedNow.Equal(tx.Date))
	}
}

func TestParseTransactionList(t *testing.T) {
	p := newTestParser()

	txs := p.ParseTransactionList("03/01/2024 Uber ride 23.40\nAdjustment 0.00\nno digits here\n₹1,250 groceries\n7")
	require.Len(t, txs, 3)

	assert.Equal(t, "2024-03-01", txs[0].Date.Format(time.DateOnly))
	assert.Equal(t, "23.40", txs[0].Amount.StringFixed(2))
	assert.Equal(t, "Uber ride", txs[0].Description)
	assert.Equal(t, CategoryTransportation, txs[0].Category)

	assert.Equal(t, "1250.00", txs[1].Amount.StringFixed(2))
	assert.Equal(t, "groceries", txs[1].Description)

	assert.Equal(t, "Miscellaneous expense", txs[2].Description)
	assert.Equal(t, CategoryMiscellaneous, txs[2].Category)
}

func TestParseReceiptUnknownMerchantClassifiesText(t *testing.T) {
	p := newTestParser()

	text := "12\ncvs pharmacy pickup for prescription order ref ABCDEFGHIJ\n34\n56\n78\nTotal: $15.00"
	tx, ok := p.ParseReceipt(text)
	require.True(t, ok)
	assert.Equal(t, CategoryHealthcare, tx.Category)
	assert.Equal(t, "15.00", tx.Amount.StringFixed(2))
	assert.True(t, fixedNow.Equal(tx.Date))
	assert.Equal(t, "Prescription", tx.Description)
}

func TestParserInjectedTables(t *testing.T) {
	p := newTestParser(
		WithCategoryTable(CategoryTable{{Category: CategoryTravel, Keywords: []string{"walmart"}}}),
		WithKeywordGroups([]KeywordGroup{{Keywords: []string{"subtotal"}, Priority: 10}}),
	)

	tx, ok := p.ParseReceipt("WALMART\nSubtotal $45.00\nTotal $48.60")
	require.True(t, ok)
	assert.Equal(t, CategoryTravel, tx.Category)
	assert.Equal(t, "45.00", tx.Amount.StringFixed(2))
	assert.Equal(t, CategoryTravel, p.Classify("walmart"))
}

func TestParserConcurrentUse(t *testing.T) {
	p := newTestParser()
	inputs := []string{
		"WALMART SUPERCENTER\nTotal $48.60\n03/14/2024",
		"Coffee 4.50\nTaxi 12.00",
		"STORE #12 TARGET\nTotal $9.99",
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(text string) {
			defer wg.Done()
			assert.NotEmpty(t, p.ParseTransactions(text))
		}(inputs[i%len(inputs)])
	}
	wg.Wait()
}
