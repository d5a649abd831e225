// Package policy maps how far in advance a booking is cancelled to the share
// of the total that comes back as a cash refund versus a credit voucher. It is
// deliberately side-effect free so the cancellation preview endpoint and the
// actual cancellation commit always agree.
package policy

import "time"

// Tier is one bucket of the cancellation policy. RefundBps and VoucherBps are
// basis points of the booking total (10000 = 100%).
type Tier struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description"`
	MinDays     int    `json:"min_days"`
	RefundBps   int64  `json:"refund_bps"`
	VoucherBps  int64  `json:"voucher_bps"`
}

// tiers is ordered by MinDays descending; TierFor picks the first matching
// entry. The refund share is non-increasing as the stay gets closer.
var tiers = []Tier{
	{Key: "flexible_60", Label: "Free cancellation", Description: "Full refund up to 60 days before arrival", MinDays: 60, RefundBps: 10000, VoucherBps: 0},
	{Key: "half_30", Label: "Half refund", Description: "50% refund plus 25% credit voucher between 30 and 59 days before arrival", MinDays: 30, RefundBps: 5000, VoucherBps: 2500},
	{Key: "voucher_14", Label: "Voucher only", Description: "50% credit voucher between 14 and 29 days before arrival", MinDays: 14, RefundBps: 0, VoucherBps: 5000},
	{Key: "voucher_7", Label: "Reduced voucher", Description: "25% credit voucher between 7 and 13 days before arrival", MinDays: 7, RefundBps: 0, VoucherBps: 2500},
	{Key: "forfeit", Label: "No refund", Description: "No refund within 7 days of arrival", MinDays: 0, RefundBps: 0, VoucherBps: 0},
}

// Tiers returns the full policy table, most lenient first.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// TierFor returns the tier covering the given number of days before the stay
// starts. Negative values (cancellation after the start date) fall into the
// strictest tier.
func TierFor(daysBeforeStart int) Tier {
	for _, t := range tiers {
		if daysBeforeStart >= t.MinDays {
			return t
		}
	}
	return tiers[len(tiers)-1]
}

// Outcome is the money split a tier yields for a concrete booking total.
type Outcome struct {
	Tier         Tier  `json:"tier"`
	RefundCents  int64 `json:"refund_cents"`
	VoucherCents int64 `json:"voucher_cents"`
}

// ComputeRefundOutcome applies the tier for daysBeforeStart to totalCents.
// Both shares round to the nearest cent.
func ComputeRefundOutcome(daysBeforeStart int, totalCents int64) Outcome {
	t := TierFor(daysBeforeStart)
	return Outcome{
		Tier:         t,
		RefundCents:  ApplyBps(totalCents, t.RefundBps),
		VoucherCents: ApplyBps(totalCents, t.VoucherBps),
	}
}

// ApplyBps returns round(total * bps / 10000) for non-negative inputs.
func ApplyBps(totalCents, bps int64) int64 {
	if totalCents <= 0 || bps <= 0 {
		return 0
	}
	return (totalCents*bps + 5000) / 10000
}

// DaysBeforeStart counts whole days between now and the booking start date,
// both truncated to UTC midnight. This is the single day-count convention for
// the whole codebase: cancelling at 23:59 UTC the day before arrival is 1 day
// before start, cancelling on the arrival date itself is 0.
func DaysBeforeStart(now, start time.Time) int {
	n := truncateUTC(now)
	s := truncateUTC(start)
	return int(s.Sub(n).Hours() / 24)
}

func truncateUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
