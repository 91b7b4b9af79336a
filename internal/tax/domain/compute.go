package domain

// ComputeTax derives sales tax from a taxable amount and a rate in basis
// points. Division truncates toward zero, matching the fee calculator.
func ComputeTax(amountCents, rateBps int64) int64 {
	if amountCents <= 0 || rateBps <= 0 {
		return 0
	}
	return amountCents * rateBps / 10000
}
