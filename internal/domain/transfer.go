package domain

// Transfer is a normalized token transfer event.
// Amount is already scaled by the token's decimals.
type Transfer struct {
	TxID      string
	From      string
	To        string
	Amount    float64
	Timestamp int64
}

// DedupTransfers drops transfers whose TxID was already seen, preserving
// order. Indexers report one row per log, so a single swap transaction can
// appear several times.
func DedupTransfers(transfers []Transfer) []Transfer {
	seen := make(map[string]bool, len(transfers))
	out := make([]Transfer, 0, len(transfers))
	for _, tr := range transfers {
		if tr.TxID != "" && seen[tr.TxID] {
			continue
		}
		seen[tr.TxID] = true
		out = append(out, tr)
	}
	return out
}
