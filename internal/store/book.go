package store

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/fleshka4/cpamm/internal/apperrors"
	"github.com/fleshka4/cpamm/internal/dexmath"
)

// Book is a staged view over the LP balances of one pool.
type Book struct {
	committed map[common.Address]uint256.Int
	staged    map[common.Address]uint256.Int
}

func newBook(committed map[common.Address]uint256.Int) *Book {
	return &Book{
		committed: committed,
		staged:    make(map[common.Address]uint256.Int),
	}
}

// Balance returns the balance of holder including staged changes.
func (b *Book) Balance(holder common.Address) *uint256.Int {
	if v, ok := b.staged[holder]; ok {
		return &v
	}
	v := b.committed[holder]
	return &v
}

// Credit stages an increase of holder's balance.
func (b *Book) Credit(holder common.Address, amount *uint256.Int) error {
	next, err := dexmath.AddChecked(b.Balance(holder), amount)
	if err != nil {
		return errors.Wrap(err, "dexmath.AddChecked")
	}
	b.staged[holder] = *next
	return nil
}

// Debit stages a decrease of holder's balance. It fails with
// ErrInsufficientLpBalance when the balance is too small.
func (b *Book) Debit(holder common.Address, amount *uint256.Int) error {
	balance := b.Balance(holder)
	if amount.Gt(balance) {
		return errors.Wrapf(apperrors.ErrInsufficientLpBalance,
			"holder %s has %s, needs %s", holder.Hex(), balance.Dec(), amount.Dec())
	}
	b.staged[holder] = *new(uint256.Int).Sub(balance, amount)
	return nil
}

// apply merges the staged balances into the committed ones. Zero balances are
// dropped.
func (b *Book) apply() {
	for holder, v := range b.staged {
		if v.IsZero() {
			delete(b.committed, holder)
			continue
		}
		b.committed[holder] = v
	}
}
