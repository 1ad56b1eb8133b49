package data

import (
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/go-gota/gota/series"
)

// WriteParquet writes the dataset as a snappy-compressed Parquet file.
// Missing entries are stored as nulls.
func (d *Dataset) WriteParquet(path string) error {
	mem := memory.NewGoAllocator()

	table, err := d.arrowTable(mem)
	if err != nil {
		return fmt.Errorf("converting dataset to arrow table: %w", err)
	}
	defer table.Release()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(mem))

	writer, err := pqarrow.NewFileWriter(table.Schema(), file, props, arrowProps)
	if err != nil {
		return fmt.Errorf("creating parquet writer: %w", err)
	}

	chunk := int64(d.Len())
	if chunk < 1 {
		chunk = 1
	}
	if err := writer.WriteTable(table, chunk); err != nil {
		writer.Close()
		return fmt.Errorf("writing table: %w", err)
	}
	return writer.Close()
}

func (d *Dataset) arrowTable(mem memory.Allocator) (arrow.Table, error) {
	names := d.df.Names()
	fields := make([]arrow.Field, 0, len(names))
	columns := make([]arrow.Column, 0, len(names))

	for _, name := range names {
		arr, err := d.arrowArray(name, mem)
		if err != nil {
			return nil, fmt.Errorf("converting column %s: %w", name, err)
		}

		field := arrow.Field{Name: name, Type: arr.DataType(), Nullable: true}
		chunked := arrow.NewChunked(arr.DataType(), []arrow.Array{arr})
		arr.Release()
		column := arrow.NewColumn(field, chunked)
		chunked.Release()

		fields = append(fields, field)
		columns = append(columns, *column)
	}

	schema := arrow.NewSchema(fields, nil)
	table := array.NewTable(schema, columns, int64(d.Len()))
	for i := range columns {
		columns[i].Release()
	}
	return table, nil
}

func (d *Dataset) arrowArray(name string, mem memory.Allocator) (arrow.Array, error) {
	col := d.df.Col(name)
	n := col.Len()

	switch col.Type() {
	case series.Float:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		for i := 0; i < n; i++ {
			e := col.Elem(i)
			if isMissing(e) {
				builder.AppendNull()
				continue
			}
			builder.Append(e.Float())
		}
		return builder.NewArray(), nil

	case series.Int:
		builder := array.NewInt64Builder(mem)
		defer builder.Release()
		for i := 0; i < n; i++ {
			e := col.Elem(i)
			if isMissing(e) {
				builder.AppendNull()
				continue
			}
			v, err := e.Int()
			if err != nil {
				return nil, err
			}
			builder.Append(int64(v))
		}
		return builder.NewArray(), nil

	case series.Bool:
		builder := array.NewBooleanBuilder(mem)
		defer builder.Release()
		for i := 0; i < n; i++ {
			e := col.Elem(i)
			if isMissing(e) {
				builder.AppendNull()
				continue
			}
			v, err := e.Bool()
			if err != nil {
				return nil, err
			}
			builder.Append(v)
		}
		return builder.NewArray(), nil

	default:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		for i := 0; i < n; i++ {
			e := col.Elem(i)
			if isMissing(e) {
				builder.AppendNull()
				continue
			}
			builder.Append(e.String())
		}
		return builder.NewArray(), nil
	}
}
