package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"shopping-backend/internal/domain"
	itemsvc "shopping-backend/internal/service/item"

	"github.com/shopspring/decimal"
)

// ItemWriter is satisfied by the item service, so imported rows get the same
// validation and events as API writes.
type ItemWriter interface {
	Create(ctx context.Context, in itemsvc.Input) (*domain.Item, error)
	Update(ctx context.Context, id int64, in itemsvc.Input) (*domain.Item, error)
}

// CSVImporter reads a catalog CSV with the header
// id,name,description,price,stock,image. Rows with an id replace that item;
// rows without one create a new item. Column order is taken from the header.
// An updated item keeps its description, stock and image when the file has no
// column for them or the stock cell is empty.
type CSVImporter struct {
	reader *csv.Reader
	items  ItemWriter
}

// Result counts what a run did.
type Result struct {
	Created int
	Updated int
}

func NewCSVImporter(r io.Reader, items ItemWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{reader: csvr, items: items}
}

// Run imports every row. It stops at the first row that fails and reports
// its line number; rows before it stay imported.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	var res Result

	headers, err := i.reader.Read()
	if err != nil {
		return res, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{"name", "price"} {
		if _, ok := index[required]; !ok {
			return res, fmt.Errorf("missing %q column", required)
		}
	}

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)

		if blank(record) {
			continue
		}
		id, in, err := parseRow(record, index)
		if err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}

		if id == 0 {
			if _, err := i.items.Create(ctx, in); err != nil {
				return res, fmt.Errorf("line %d: create item: %w", line, err)
			}
			res.Created++
			continue
		}
		if _, err := i.items.Update(ctx, id, in); err != nil {
			return res, fmt.Errorf("line %d: update item %d: %w", line, id, err)
		}
		res.Updated++
	}

	return res, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (int64, itemsvc.Input, error) {
	var (
		id int64
		in itemsvc.Input
	)

	if raw := pick(record, index, "id"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v <= 0 {
			return 0, in, fmt.Errorf("invalid id %q", raw)
		}
		id = v
	}

	name := pick(record, index, "name")
	in.Name = &name

	if _, ok := index["description"]; ok {
		desc := pick(record, index, "description")
		in.Description = &desc
	}

	if raw := pick(record, index, "price"); raw != "" {
		p, err := decimal.NewFromString(raw)
		if err != nil {
			return 0, in, fmt.Errorf("invalid price %q", raw)
		}
		in.Price = &p
	}

	if raw := pick(record, index, "stock"); raw != "" {
		s, err := strconv.Atoi(raw)
		if err != nil {
			return 0, in, fmt.Errorf("invalid stock %q", raw)
		}
		in.Stock = &s
	}

	if _, ok := index["image"]; ok {
		img := pick(record, index, "image")
		in.Image = &img
	}

	return id, in, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
