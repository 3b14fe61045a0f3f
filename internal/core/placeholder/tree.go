package placeholder

import (
	"github.com/ventaro/deedflow/internal/core/domain"
	"github.com/ventaro/deedflow/internal/core/normalize"
)

// =============================================================================
// Typed Tree
// =============================================================================

// NodeKind tags a tree node.
type NodeKind int

const (
	KindScalar NodeKind = iota
	KindObject
)

// Node is one vertex of the typed tree the generic pass walks. Scalars carry
// a raw value; objects carry an ordered field list so the walk is
// deterministic.
type Node struct {
	Kind   NodeKind
	Value  string
	Fields []Field
}

// Field is a named child of an object node. Name is already in placeholder
// form (upper snake case).
type Field struct {
	Name string
	Node Node
}

func scalar(v string) Node { return Node{Kind: KindScalar, Value: v} }

func object(fields ...Field) Node { return Node{Kind: KindObject, Fields: fields} }

// =============================================================================
// Generic Walk
// =============================================================================

// walk emits <PREFIX>_<FIELD> keys for every scalar leaf, skipping keys the
// explicit table already produced. Date-shaped leaves additionally emit a
// long-form _TEXT sibling.
func walk(out map[string]string, prefix string, n Node) {
	switch n.Kind {
	case KindObject:
		for _, f := range n.Fields {
			key := f.Name
			if prefix != "" {
				key = prefix + "_" + f.Name
			}
			walk(out, key, f.Node)
		}
	case KindScalar:
		if _, exists := out[prefix]; exists {
			return
		}
		out[prefix] = normalize.Display(n.Value)
		if d, ok := normalize.ParseDate(n.Value); ok && n.Value == normalize.ToStorage(d) {
			textKey := prefix + "_TEXT"
			if _, exists := out[textKey]; !exists {
				out[textKey] = normalize.ToLongForm(d)
			}
		}
	}
}

// =============================================================================
// Tree Construction
// =============================================================================

// buildTree lays the aggregate out as a typed tree for the generic pass.
// Field order mirrors the segment structs so the emitted key set is stable.
func buildTree(agg *domain.Aggregate) Node {
	return object(
		Field{"CLIENT", clientNode(agg.Client)},
		Field{"DEVELOPMENT", developmentNode(agg.Development)},
		Field{"CONTRACT", contractNode(agg.Contract)},
		Field{"REQUEST", requestNode(agg.Request)},
	)
}

func clientNode(s domain.ClientSegment) Node {
	return object(
		Field{"NAME", scalar(s.Name)},
		Field{"BIRTH_DATE", scalar(s.BirthDate)},
		Field{"BIRTH_DATE_TEXT", scalar(s.BirthDateText)},
		Field{"BIRTH_PLACE", scalar(s.BirthPlace)},
		Field{"NATIONALITY", scalar(s.Nationality)},
		Field{"MARITAL_STATUS", scalar(s.MaritalStatus)},
		Field{"OCCUPATION", scalar(s.Occupation)},
		Field{"GENDER", scalar(s.Gender)},
		Field{"PHONE", scalar(s.Phone)},
		Field{"EMAIL", scalar(s.Email)},
		Field{"ADDRESS", scalar(s.Address)},
		Field{"TAX_ID", scalar(s.TaxID)},
		Field{"ID_NUMBER", scalar(s.IDNumber)},
	)
}

func developmentNode(s domain.DevelopmentSegment) Node {
	return object(
		Field{"NAME", scalar(s.Name)},
		Field{"LOCATION", scalar(s.Location)},
		Field{"LOT", scalar(s.Lot)},
		Field{"BLOCK", scalar(s.Block)},
		Field{"AREA_M2", scalar(s.AreaM2)},
		Field{"DEED_NUMBER", scalar(s.DeedNumber)},
		Field{"DEED_DATE", scalar(s.DeedDate)},
		Field{"DEED_DATE_TEXT", scalar(s.DeedDateText)},
		Field{"NOTARY_NAME", scalar(s.NotaryName)},
		Field{"NOTARY_NUMBER", scalar(s.NotaryNumber)},
	)
}

func contractNode(s domain.ContractSegment) Node {
	return object(
		Field{"FOLIO", scalar(s.Folio)},
		Field{"DATE", scalar(s.Date)},
		Field{"DATE_TEXT", scalar(s.DateText)},
		Field{"PRICE", scalar(s.Price)},
		Field{"DOWN_PAYMENT", scalar(s.DownPayment)},
		Field{"BALANCE", scalar(s.Balance)},
		Field{"MONTHLY_PAYMENT", scalar(s.MonthlyPayment)},
		Field{"TERM_MONTHS", scalar(s.TermMonths)},
		Field{"START_DAY", scalar(s.StartDay)},
		Field{"FIRST_PAYMENT_DATE", scalar(s.FirstPaymentDate)},
		Field{"FIRST_PAYMENT_DATE_TEXT", scalar(s.FirstPaymentDateText)},
		Field{"PAYMENT_PLACE", scalar(s.PaymentPlace)},
	)
}

func requestNode(s domain.RequestSegment) Node {
	return object(
		Field{"ID", scalar(s.ID)},
		Field{"STATE", scalar(s.State)},
		Field{"APPROVAL_DATE", scalar(s.ApprovalDate)},
		Field{"APPROVAL_DATE_TEXT", scalar(s.ApprovalDateText)},
		Field{"EXECUTOR", object(
			Field{"NAME", scalar(s.ExecutorName)},
			Field{"AGE", scalar(s.ExecutorAge)},
			Field{"RELATIONSHIP", scalar(s.ExecutorRelationship)},
			Field{"PHONE", scalar(s.ExecutorPhone)},
		)},
		Field{"ANNUAL_PAYMENT", object(
			Field{"AMOUNT", scalar(s.AnnualPaymentAmount)},
			Field{"DATE", scalar(s.AnnualPaymentDate)},
			Field{"DATE_TEXT", scalar(s.AnnualPaymentDateText)},
			Field{"TERM", scalar(s.AnnualPaymentTerm)},
		)},
	)
}
