// Package document builds and maintains the contract's aggregate document of
// record: the denormalized JSON blob combining client, development, contract
// and request data that placeholder derivation feeds on.
package document

import (
	"strconv"

	"github.com/ventaro/deedflow/internal/core/domain"
	"github.com/ventaro/deedflow/internal/core/normalize"
)

// FormInput carries the fields of one contract form submission. Key presence
// decides whether a field participates in the merge; absent keys never touch
// the prior aggregate.
type FormInput map[string]string

// =============================================================================
// Build / Merge
// =============================================================================

// BuildOrMerge returns the contract aggregate after applying one form
// submission. With a nil existing aggregate it assembles a fresh document
// from the client and development snapshots; otherwise it merges only the
// fields present in the form into the prior aggregate (left-biased: absent
// fields are preserved, never deleted). Derived fields are recomputed after
// the merge and never trusted from input.
func BuildOrMerge(existing *domain.Aggregate, form FormInput, client *domain.Client, dev *domain.Development, req *domain.Request) domain.Aggregate {
	var agg domain.Aggregate
	if existing != nil {
		agg = *existing
	} else {
		agg.Client = clientSegment(client)
		agg.Development = developmentSegment(dev)
	}
	agg.Version = domain.AggregateVersion

	prior := agg.Contract
	mergeContract(&agg.Contract, form)
	if req != nil {
		agg.Request = requestSegment(req)
	}

	deriveContract(&agg.Contract, prior, form)
	deriveClient(&agg.Client)
	deriveDevelopment(&agg.Development)
	deriveRequest(&agg.Request)

	return agg
}

// mergeContract writes the form's contract fields onto the segment. Balance
// and start day are derived, never merged.
func mergeContract(seg *domain.ContractSegment, form FormInput) {
	set := func(key string, dst *string, coerce func(string) string) {
		if raw, ok := form[key]; ok {
			if coerce != nil {
				*dst = coerce(raw)
			} else {
				*dst = raw
			}
		}
	}
	asDate := func(raw string) string {
		if d, ok := normalize.ParseDate(raw); ok {
			return normalize.ToStorage(d)
		}
		return ""
	}

	set("folio", &seg.Folio, domain.NormalizeFolio)
	set("contract_date", &seg.Date, asDate)
	set("contract_date_text", &seg.DateText, nil)
	set("price", &seg.Price, normalize.Money)
	set("down_payment", &seg.DownPayment, normalize.Money)
	set("monthly_payment", &seg.MonthlyPayment, normalize.Money)
	set("term_months", &seg.TermMonths, nil)
	set("first_payment_date", &seg.FirstPaymentDate, asDate)
	set("first_payment_date_text", &seg.FirstPaymentDateText, nil)
	set("payment_place", &seg.PaymentPlace, nil)
}

// =============================================================================
// Snapshots
// =============================================================================

func clientSegment(c *domain.Client) domain.ClientSegment {
	if c == nil {
		return domain.ClientSegment{}
	}
	return domain.ClientSegment{
		Name:          c.Name,
		BirthDate:     c.BirthDate,
		BirthPlace:    c.BirthPlace,
		Nationality:   c.Nationality,
		MaritalStatus: c.MaritalStatus,
		Occupation:    c.Occupation,
		Gender:        c.Gender,
		Phone:         c.Phone,
		Email:         c.Email,
		Address:       c.Address,
		TaxID:         c.TaxID,
		IDNumber:      c.IDNumber,
	}
}

func developmentSegment(d *domain.Development) domain.DevelopmentSegment {
	if d == nil {
		return domain.DevelopmentSegment{}
	}
	return domain.DevelopmentSegment{
		Name:         d.Name,
		Location:     d.Location,
		Lot:          d.Lot,
		Block:        d.Block,
		AreaM2:       d.AreaM2,
		DeedNumber:   d.DeedNumber,
		DeedDate:     d.DeedDate,
		NotaryName:   d.NotaryName,
		NotaryNumber: d.NotaryNumber,
	}
}

func requestSegment(r *domain.Request) domain.RequestSegment {
	seg := domain.RequestSegment{
		ID:                   r.ID,
		State:                string(r.State),
		ExecutorActive:       normalize.Display(r.Executor.Active),
		AnnualPaymentEnabled: normalize.Display(r.AnnualPayment.Enabled),
	}
	if r.State == domain.StateApproved {
		seg.ApprovalDate = normalize.ToStorage(r.StateChangedAt)
	}
	if r.Executor.Active {
		seg.ExecutorName = r.Executor.Name
		seg.ExecutorAge = r.Executor.Age
		seg.ExecutorRelationship = r.Executor.Relationship
		seg.ExecutorPhone = r.Executor.Phone
	}
	if r.AnnualPayment.Enabled {
		seg.AnnualPaymentAmount = r.AnnualPayment.Amount
		seg.AnnualPaymentDate = r.AnnualPayment.Date
		if r.AnnualPayment.TermYears > 0 {
			seg.AnnualPaymentTerm = strconv.Itoa(r.AnnualPayment.TermYears)
		}
	}
	return seg
}

// =============================================================================
// Derived Fields
// =============================================================================

func deriveContract(seg *domain.ContractSegment, prior domain.ContractSegment, form FormInput) {
	// Balance: price minus down payment, filled only when absent and at
	// least one operand is present.
	if seg.Balance == "" && (seg.Price != "" || seg.DownPayment != "") {
		seg.Balance = subtractMoney(seg.Price, seg.DownPayment)
	}

	// Start day of month from the contract date.
	if seg.Date != "" {
		if d, ok := normalize.ParseDate(seg.Date); ok {
			seg.StartDay = strconv.Itoa(d.Day())
		}
	} else {
		seg.StartDay = ""
	}

	_, dateTextSupplied := form["contract_date_text"]
	seg.DateText = deriveDateText(seg.Date, seg.DateText, prior.Date, dateTextSupplied)

	_, firstTextSupplied := form["first_payment_date_text"]
	seg.FirstPaymentDateText = deriveDateText(seg.FirstPaymentDate, seg.FirstPaymentDateText, prior.FirstPaymentDate, firstTextSupplied)
}

func deriveClient(seg *domain.ClientSegment) {
	seg.BirthDateText = deriveDateText(seg.BirthDate, seg.BirthDateText, seg.BirthDate, false)
}

func deriveDevelopment(seg *domain.DevelopmentSegment) {
	seg.DeedDateText = deriveDateText(seg.DeedDate, seg.DeedDateText, seg.DeedDate, false)
}

func deriveRequest(seg *domain.RequestSegment) {
	seg.ApprovalDateText = deriveDateText(seg.ApprovalDate, seg.ApprovalDateText, seg.ApprovalDate, false)
	seg.AnnualPaymentDateText = deriveDateText(seg.AnnualPaymentDate, seg.AnnualPaymentDateText, seg.AnnualPaymentDate, false)
}

// deriveDateText keeps a long-form text sibling consistent with its
// canonical date. Text supplied by the user in this form call is trusted
// verbatim; otherwise the text is recomputed whenever it is blank or the
// canonical date changed.
func deriveDateText(canonical, text, priorCanonical string, supplied bool) string {
	if supplied {
		return text
	}
	if canonical == "" {
		return text
	}
	if text == "" || canonical != priorCanonical {
		if d, ok := normalize.ParseDate(canonical); ok {
			return normalize.ToLongForm(d)
		}
	}
	return text
}

// subtractMoney computes a − b over canonical money strings, treating a
// missing operand as zero.
func subtractMoney(a, b string) string {
	af, _ := strconv.ParseFloat(a, 64)
	bf, _ := strconv.ParseFloat(b, 64)
	return strconv.FormatFloat(af-bf, 'f', 2, 64)
}

// =============================================================================
// Cancellation Ordering
// =============================================================================

// ValidateCancellationOrder enforces the ordering rule on contract
// cancellation: a contract linked to a request may only be cancelled after
// that request — re-read live, not from the aggregate snapshot — is itself
// cancelled.
func ValidateCancellationOrder(linked *domain.Request) error {
	if linked == nil {
		return nil
	}
	if linked.State != domain.StateCancelled {
		return domain.ErrRequestNotCancelled
	}
	return nil
}
