package library

import "time"

// Policy holds the lending rules shared by the services.
type Policy struct {
	// LoanPeriodDays is the length of a loan and of each renewal.
	LoanPeriodDays int
	// RenewWindowDays: a loan is renewable once at most this many days remain.
	RenewWindowDays int
	// MaxLoans caps concurrent loans per user. Zero means no cap.
	MaxLoans int
	// LateFeePerDay is charged for every day a book comes back late.
	LateFeePerDay float64
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// DefaultPolicy lends for a week, allows renewal any time before the due
// date, caps loans at five and charges one unit per late day.
func DefaultPolicy() Policy {
	return Policy{
		LoanPeriodDays:  7,
		RenewWindowDays: 7,
		MaxLoans:        5,
		LateFeePerDay:   1,
	}
}

func (p Policy) today() time.Time {
	if p.Now != nil {
		return civil(p.Now())
	}
	return civil(time.Now())
}

func (p Policy) dueDate(from time.Time) time.Time {
	return civil(from).AddDate(0, 0, p.LoanPeriodDays)
}
