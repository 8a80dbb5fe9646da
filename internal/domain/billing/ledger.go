package billing

// Ledger tracks, per medicine name, the quantity reserved by the rows of one
// billing session. It only stops a session from over-reserving one medicine
// across several rows; the remote API re-checks stock when the bill is saved.
//
// Entries are never zero or negative: an entry that drops to zero is removed.
type Ledger map[string]int

// NewLedger creates an empty ledger
func NewLedger() Ledger {
	return make(Ledger)
}

// Reserved returns the quantity currently reserved for a medicine
func (l Ledger) Reserved(name string) int {
	return l[name]
}

// Reserve adds qty to the medicine's entry, creating it if absent
func (l Ledger) Reserve(name string, qty int) {
	if qty <= 0 || name == "" {
		return
	}
	l[name] += qty
}

// Release subtracts qty from the medicine's entry, removing it at zero
func (l Ledger) Release(name string, qty int) {
	if qty <= 0 {
		return
	}
	cur, ok := l[name]
	if !ok {
		return
	}
	if cur <= qty {
		delete(l, name)
		return
	}
	l[name] = cur - qty
}
