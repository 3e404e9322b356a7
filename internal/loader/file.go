package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"

	"fashionetl/internal/model"
)

// csvRow fixes the file layout; field order is column order.
type csvRow struct {
	Title     string `csv:"Title"`
	Price     string `csv:"Price"`
	Rating    string `csv:"Rating"`
	Size      string `csv:"Size"`
	Gender    string `csv:"Gender"`
	Colors    string `csv:"Colors"`
	Timestamp string `csv:"Timestamp"`
	Image     string `csv:"Image"`
}

var errNoPath = errors.New("no output path configured")

// CSVSink overwrites Path with the table as comma separated UTF-8 text.
type CSVSink struct {
	Path string
}

var _ Sink = (*CSVSink)(nil)

func (s *CSVSink) Name() string { return "CSV" }

func (s *CSVSink) Load(_ context.Context, table model.Table) Outcome {
	return outcome(s.Name(), table.Len(), s.write(table))
}

func (s *CSVSink) write(table model.Table) error {
	if s.Path == "" {
		return &IOError{Path: s.Path, Err: errNoPath}
	}
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &IOError{Path: s.Path, Err: err}
		}
	}

	rows := make([]*csvRow, 0, table.Len())
	for i := range table.Rows {
		v := table.Values(i)
		rows = append(rows, &csvRow{
			Title: v[0], Price: v[1], Rating: v[2], Size: v[3],
			Gender: v[4], Colors: v[5], Timestamp: v[6], Image: v[7],
		})
	}

	f, err := os.Create(s.Path)
	if err != nil {
		return &IOError{Path: s.Path, Err: err}
	}
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		f.Close()
		return &IOError{Path: s.Path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Path: s.Path, Err: err}
	}
	return nil
}

// ReadCSV loads a file written by CSVSink back into a Table.
func ReadCSV(path string) (model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Table{}, err
	}
	defer f.Close()

	var rows []*csvRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return model.Table{}, fmt.Errorf("decode %s: %w", path, err)
	}

	table := model.Table{Rows: make([]model.ProductRecord, 0, len(rows))}
	for i, r := range rows {
		rec, err := r.record()
		if err != nil {
			return model.Table{}, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		table.Rows = append(table.Rows, rec)
	}
	return table, nil
}

func (r *csvRow) record() (model.ProductRecord, error) {
	price, err := strconv.ParseFloat(r.Price, 64)
	if err != nil {
		return model.ProductRecord{}, fmt.Errorf("price: %w", err)
	}
	ts, err := time.Parse(model.TimestampLayout, r.Timestamp)
	if err != nil {
		return model.ProductRecord{}, fmt.Errorf("timestamp: %w", err)
	}
	rec := model.ProductRecord{
		Title:     r.Title,
		Price:     price,
		Size:      r.Size,
		Gender:    r.Gender,
		Colors:    r.Colors,
		Timestamp: ts,
		Image:     r.Image,
	}
	if r.Rating != "" {
		rating, err := strconv.ParseFloat(r.Rating, 64)
		if err != nil {
			return model.ProductRecord{}, fmt.Errorf("rating: %w", err)
		}
		rec.Rating = &rating
	}
	return rec, nil
}
