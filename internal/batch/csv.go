package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/avvvet/cardcheck-services/internal/checksvc/models"
)

var requiredColumns = []string{"card_number", "exp_month", "exp_year", "cvc"}

// Header returns the column set shared by the valid and invalid report files.
func Header() []string {
	return []string{
		"card_number",
		"exp_month",
		"exp_year",
		"cvc",
		"card_type",
		"mii",
		"bank",
		"country",
		"brand",
		"type",
		"can_purchase",
		"transaction_error",
	}
}

// ReadRecords reads batch input rows. Extra columns are ignored; short rows
// yield empty fields and are rejected later, row by row. A row the parser
// cannot read becomes a record carrying ReadError. Only header and I/O errors
// are returned.
func ReadRecords(r io.Reader) ([]models.CardRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	var records []models.CardRecord
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				records = append(records, models.CardRecord{ReadError: "unreadable row: " + perr.Error()})
				continue
			}
			return nil, fmt.Errorf("read row: %w", err)
		}

		get := func(col string) string {
			i := index[col]
			if i >= len(rec) {
				return ""
			}
			return rec[i]
		}

		records = append(records, models.CardRecord{
			CardNumber: get("card_number"),
			ExpMonth:   get("exp_month"),
			ExpYear:    get("exp_year"),
			CVC:        get("cvc"),
		})
	}
}

// WriteReports writes reports with the stable Header(). The header is written
// even when reports is empty.
func WriteReports(w io.Writer, reports []models.CardReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return err
	}
	for _, r := range reports {
		if err := cw.Write([]string{
			r.CardNumber,
			r.ExpMonth,
			r.ExpYear,
			r.CVC,
			r.CardType,
			r.MII,
			r.Bank,
			r.Country,
			r.Brand,
			r.Type,
			strconv.FormatBool(r.CanPurchase),
			r.TransactionError,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
