// Package csvio reads and writes transactions as CSV.
//
// The column set is date,type,amount,description,category. The header row
// is required on input and columns may appear in any order. The category
// column holds a category id or name.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/validate"
)

// Columns is the canonical header.
var Columns = []string{"date", "type", "amount", "description", "category"}

// RowError is a problem with one input line.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e RowError) Unwrap() error { return e.Err }

// Row is a parsed, validated draft with its source line.
type Row struct {
	Line  int
	Draft model.TransactionDraft
}

// Parse reads drafts from r, resolving categories against cats. Bad rows are
// reported and skipped; a missing header is a hard error.
func Parse(r io.Reader, cats []model.Category) ([]Row, []RowError, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("csv: empty input")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("csv: reading header: %w", err)
	}
	idx, err := indexHeader(header)
	if err != nil {
		return nil, nil, err
	}

	var (
		rows    []Row
		rowErrs []RowError
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				rowErrs = append(rowErrs, RowError{Line: pe.Line, Err: pe.Err})
				continue
			}
			return rows, rowErrs, fmt.Errorf("csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if blank(rec) {
			continue
		}
		d, err := parseRecord(rec, idx, cats)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}
		rows = append(rows, Row{Line: line, Draft: d})
	}
	return rows, rowErrs, nil
}

func indexHeader(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, c := range Columns {
		if c == "description" {
			continue
		}
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("csv: header missing %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func field(rec []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseRecord(rec []string, idx map[string]int, cats []model.Category) (model.TransactionDraft, error) {
	var d model.TransactionDraft

	date, err := model.ParseDate(field(rec, idx, "date"))
	if err != nil {
		return d, err
	}
	typ, err := model.ParseType(strings.ToLower(field(rec, idx, "type")))
	if err != nil {
		return d, err
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimPrefix(field(rec, idx, "amount"), "$"), ",", ""))
	if err != nil {
		return d, fmt.Errorf("amount: %w", err)
	}
	cat, err := resolve(cats, field(rec, idx, "category"), typ)
	if err != nil {
		return d, err
	}

	d = model.TransactionDraft{
		Amount:      amount,
		Type:        typ,
		Date:        date,
		Description: field(rec, idx, "description"),
		CategoryID:  cat.ID,
	}
	if err := validate.Transaction(&d); err != nil {
		return d, err
	}
	if err := validate.TypeMatchesCategory(d, cat); err != nil {
		return d, err
	}
	return d, nil
}

// resolve prefers an id match, then a case-insensitive name match of the
// same type.
func resolve(cats []model.Category, ref string, typ model.Type) (model.Category, error) {
	if ref == "" {
		return model.Category{}, errors.New("category is required")
	}
	for _, c := range cats {
		if c.ID == ref {
			return c, nil
		}
	}
	var fallback *model.Category
	for i, c := range cats {
		if !strings.EqualFold(c.Name, ref) {
			continue
		}
		if c.Type == typ {
			return c, nil
		}
		if fallback == nil {
			fallback = &cats[i]
		}
	}
	if fallback != nil {
		return *fallback, nil
	}
	return model.Category{}, fmt.Errorf("unknown category %q", ref)
}

// Write emits txs with the canonical header. Category names come from the
// embedded category when present, otherwise the id is written.
func Write(w io.Writer, txs []model.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, t := range txs {
		cat := t.CategoryID
		if t.Category != nil {
			cat = t.Category.Name
		}
		if err := cw.Write([]string{
			t.Date.String(),
			string(t.Type),
			t.Amount.StringFixed(2),
			t.Description,
			cat,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
