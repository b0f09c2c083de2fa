/*
rounder.go - Zero-sum settlement rounding

PURPOSE:
  Turns fractional, zero-sum user balances into an integer payout plan
  where every amount is a whole multiple of an agreed denomination (the
  smallest coin the group is willing to move around) and the plan still
  sums to exactly zero.

ALGORITHM:
  1. Round each share independently to the nearest multiple of the
     denomination, ties toward positive infinity (floor(x/m + 1/2)*m).
  2. The rounded values rarely sum to zero; the residual is itself a
     whole number of denominations, n.
  3. If the pot is short (n < 0), bump the |n| payers that were rounded
     down the most (largest unrounded remainder first). If the pot has
     excess (n > 0), take one denomination back from each of the n
     smallest positive payers; receivers are never touched.
  4. The result must sum to exactly zero, asserted.

  Ties in step 3 break on user ID so the plan is deterministic.

EDGE CASE:
  When every share is smaller in magnitude than half a denomination,
  everything rounds to zero and the settlement is a no-op. That is the
  intended "too small to bother" behavior, not an error.
*/
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

var half = decimal.New(5, -1) // 0.5

// RoundShares rounds zero-sum fractional shares to a zero-sum plan of
// whole multiples of minimum. Shares must sum to ~0 (checked at 1/1000
// resolution); a violation fails with UnbalanceableError, as does a
// failed zero-sum postcondition (which indicates an internal fault and
// should never happen for valid input).
func RoundShares(minimum int64, shares map[string]decimal.Decimal) (map[string]int64, error) {
	if minimum <= 0 {
		return nil, ErrInvalidMinimum
	}

	sum := decimal.Zero
	for _, share := range shares {
		sum = sum.Add(share)
	}
	if !sum.Mul(decimal.NewFromInt(1000)).Round(0).IsZero() {
		return nil, &UnbalanceableError{Sum: sum}
	}

	// Nearest-rounding pass, ties toward +inf.
	minDec := decimal.NewFromInt(minimum)
	rounded := make(map[string]int64, len(shares))
	for userID, share := range shares {
		units := share.Div(minDec).Add(half).Floor().IntPart()
		rounded[userID] = units * minimum
	}

	// Residual correction. Every term is a multiple of minimum, so the
	// residual divides evenly.
	var residual int64
	for _, v := range rounded {
		residual += v
	}
	n := residual / minimum

	switch {
	case n < 0:
		// Pot is short: bump the payers that were rounded down the most.
		type payer struct {
			userID string
			rest   decimal.Decimal // unrounded remainder of their debt
		}
		var payers []payer
		for userID, v := range rounded {
			if v > 0 {
				payers = append(payers, payer{
					userID: userID,
					rest:   shares[userID].Sub(decimal.NewFromInt(v)),
				})
			}
		}
		sort.Slice(payers, func(i, j int) bool {
			if c := payers[i].rest.Cmp(payers[j].rest); c != 0 {
				return c > 0
			}
			return payers[i].userID < payers[j].userID
		})
		for i := 0; i < int(-n) && i < len(payers); i++ {
			rounded[payers[i].userID] += minimum
		}

	case n > 0:
		// Pot has excess: return one denomination each to the smallest
		// positive payers. Receivers keep what they were promised.
		type payer struct {
			userID string
			value  int64
		}
		var payers []payer
		for userID, v := range rounded {
			if v > 0 {
				payers = append(payers, payer{userID: userID, value: v})
			}
		}
		sort.Slice(payers, func(i, j int) bool {
			if payers[i].value != payers[j].value {
				return payers[i].value < payers[j].value
			}
			return payers[i].userID < payers[j].userID
		})
		for i := 0; i < int(n) && i < len(payers); i++ {
			rounded[payers[i].userID] -= minimum
		}
	}

	var check int64
	for _, v := range rounded {
		check += v
	}
	if check != 0 {
		return nil, &UnbalanceableError{Sum: decimal.NewFromInt(check)}
	}
	return rounded, nil
}
