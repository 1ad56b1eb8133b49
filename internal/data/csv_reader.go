package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var nanTokens = []string{"", "NA", "NaN", "<nil>"}

func loadOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(nanTokens),
	}
}

// Source describes where a Dataset came from.
type Source struct {
	Path        string
	Rows        int
	Columns     int
	Fingerprint uint64
}

func (s Source) FingerprintHex() string {
	return fmt.Sprintf("%016x", s.Fingerprint)
}

// Load reads a CSV file with a header row. A missing file is reported as
// ErrFileNotFound so callers can halt without side effects.
func Load(path string) (*Dataset, Source, error) {
	src := Source{Path: path}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, src, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, src, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	digest := xxhash.New()
	ds, err := Read(io.TeeReader(file, digest))
	if err != nil {
		return nil, src, fmt.Errorf("loading %s: %w", path, err)
	}

	src.Rows = ds.Len()
	src.Columns = len(ds.Names())
	src.Fingerprint = digest.Sum64()
	return ds, src, nil
}

func Read(r io.Reader) (*Dataset, error) {
	df := dataframe.ReadCSV(r, loadOptions()...)
	if df.Err != nil {
		return nil, fmt.Errorf("reading csv: %w", df.Err)
	}
	if df.Nrow() == 0 {
		return nil, fmt.Errorf("insufficient data in file")
	}
	return newDataset(df)
}

// WriteCSV writes the dataset with a header row. Missing values become empty
// fields and floats use their shortest representation.
func (d *Dataset) WriteCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := d.Write(file); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return file.Close()
}

func (d *Dataset) Write(w io.Writer) error {
	writer := csv.NewWriter(w)

	names := d.df.Names()
	if err := writer.Write(names); err != nil {
		return err
	}

	cols := make([]series.Series, len(names))
	for j, name := range names {
		cols[j] = d.df.Col(name)
	}

	record := make([]string, len(names))
	for i := 0; i < d.Len(); i++ {
		for j, col := range cols {
			e := col.Elem(i)
			if isMissing(e) {
				record[j] = ""
				continue
			}
			record[j] = csvField(e)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// csvField renders booleans as True and False.
func csvField(e series.Element) string {
	if e.Type() == series.Bool {
		if v, err := e.Bool(); err == nil && v {
			return "True"
		}
		return "False"
	}
	return formatElement(e)
}
