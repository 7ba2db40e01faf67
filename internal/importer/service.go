package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/MrJamesThe3rd/pillbox/internal/encoding"
	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
)

// productRecord maps a stock sheet row. Columns are matched by header name.
type productRecord struct {
	Name              string `csv:"name"`
	Category          string `csv:"category"`
	QuantityRemaining string `csv:"quantity_remaining"`
	QuantityToExpire  string `csv:"quantity_to_expire"`
	Price             string `csv:"price"`
	ExpiryDate        string `csv:"expiry_date"`
	ModeOfPayment     string `csv:"mode_of_payment"`
}

type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Parse reads a product CSV into raw inputs. Values are not validated here;
// the ledger applies the same rules as a manual product entry.
func (s *Service) Parse(r io.Reader) ([]inventory.ProductInput, error) {
	utf8Reader, err := encoding.ToUTF8(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	br := bufio.NewReader(utf8Reader)

	header, err := br.Peek(1024)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	if len(bytes.TrimSpace(header)) == 0 {
		return nil, nil
	}

	reader := csv.NewReader(br)
	reader.Comma = delimiter(header)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	var records []productRecord
	if err := gocsv.UnmarshalCSV(reader, &records); err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	inputs := make([]inventory.ProductInput, 0, len(records))
	for _, rec := range records {
		inputs = append(inputs, inventory.ProductInput{
			Name:              rec.Name,
			Category:          rec.Category,
			QuantityRemaining: rec.QuantityRemaining,
			QuantityToExpire:  rec.QuantityToExpire,
			Price:             rec.Price,
			ExpiryDate:        rec.ExpiryDate,
			ModeOfPayment:     rec.ModeOfPayment,
		})
	}

	return inputs, nil
}

// delimiter picks ';' for sheets exported with a European locale, ',' otherwise.
func delimiter(head []byte) rune {
	line, _, _ := strings.Cut(string(head), "\n")
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}

	return ','
}
