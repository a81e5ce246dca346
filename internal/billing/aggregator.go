package billing

// Summarize combines a lease's classified periods and recorded payments into
// a PaymentSummary. The four figures are mutually exclusive: a period with a
// matching paid payment contributes to TotalReceived through its payment
// record and to nothing else, so no period is counted twice.
func Summarize(periods []Period, payments []PaymentRecord) PaymentSummary {
	var summary PaymentSummary

	for _, p := range payments {
		if p.State == PaymentStatePaid {
			summary.TotalReceived += p.Amount
		}
	}

	for i := range periods {
		p := &periods[i]
		switch p.Status {
		case PeriodPending, PeriodDueSoon:
			summary.PendingAmount += p.Amount
			if summary.NextPayment == nil || p.End.Before(summary.NextPayment.End) {
				next := *p
				summary.NextPayment = &next
			}
		case PeriodLate:
			summary.LateAmount += p.Amount + p.Penalty
		case PeriodPaid:
			// Already counted via its payment record.
		}
	}
	return summary
}
