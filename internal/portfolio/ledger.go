package portfolio

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"paper_trader/internal/models"
)

var (
	// ErrPositionOpen is returned when a BUY targets a symbol that already
	// has an open position. The ledger holds one lot per symbol.
	ErrPositionOpen = errors.New("position already open")

	// ErrNoPosition is returned when a SELL targets a symbol with no open
	// position.
	ErrNoPosition = errors.New("no open position")
)

// Ledger tracks the open position per symbol. It enforces the single-lot
// policy: a second BUY while a lot is open is rejected rather than averaged
// in, and a close always removes the full lot.
type Ledger struct {
	positions map[string]*models.Position
}

func NewLedger() *Ledger {
	return &Ledger{positions: make(map[string]*models.Position)}
}

// Open inserts a new position. Fails with ErrPositionOpen if one exists.
func (l *Ledger) Open(symbol string, quantity int64, price decimal.Decimal) error {
	if _, ok := l.positions[symbol]; ok {
		return ErrPositionOpen
	}
	l.positions[symbol] = &models.Position{
		Symbol:     symbol,
		Quantity:   quantity,
		EntryPrice: price,
	}
	return nil
}

// Close removes and returns the position for symbol. Fails with
// ErrNoPosition if absent.
func (l *Ledger) Close(symbol string) (*models.Position, error) {
	pos, ok := l.positions[symbol]
	if !ok {
		return nil, ErrNoPosition
	}
	delete(l.positions, symbol)
	return pos, nil
}

// Get returns the open position for symbol, if any.
func (l *Ledger) Get(symbol string) (*models.Position, bool) {
	pos, ok := l.positions[symbol]
	return pos, ok
}

// Len reports the number of open positions.
func (l *Ledger) Len() int { return len(l.positions) }

// Symbols returns the open symbols in sorted order, so that iteration over
// the ledger is deterministic.
func (l *Ledger) Symbols() []string {
	symbols := make([]string, 0, len(l.positions))
	for s := range l.positions {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}
