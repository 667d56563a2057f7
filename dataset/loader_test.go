package dataset

import (
	"strings"
	"testing"

	"github.com/credigo/credigo/pkg/errors"
)

func TestReadCSVFrom_TypeInference(t *testing.T) {
	csv := strings.Join([]string{
		"id,purpose,amount",
		"1,car,1049",
		"2,furniture,2799",
		"3,car,841",
	}, "\n")

	ds, err := ReadCSVFrom(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSVFrom() error = %v", err)
	}

	if ds.NumRows() != 3 {
		t.Errorf("NumRows() = %d, want 3", ds.NumRows())
	}
	if ds.NumCols() != 3 {
		t.Errorf("NumCols() = %d, want 3", ds.NumCols())
	}

	wantTypes := map[string]ColumnType{"id": Int, "purpose": String, "amount": Int}
	for name, want := range wantTypes {
		got, err := ds.Type(name)
		if err != nil {
			t.Fatalf("Type(%q) error = %v", name, err)
		}
		if got != want {
			t.Errorf("Type(%q) = %v, want %v", name, got, want)
		}
	}

	amounts, err := ds.Ints("amount")
	if err != nil {
		t.Fatalf("Ints(amount) error = %v", err)
	}
	if amounts[0] != 1049 || amounts[2] != 841 {
		t.Errorf("Ints(amount) = %v, want [1049 2799 841]", amounts)
	}

	purposes, err := ds.Strings("purpose")
	if err != nil {
		t.Fatalf("Strings(purpose) error = %v", err)
	}
	if purposes[1] != "furniture" {
		t.Errorf("Strings(purpose)[1] = %q, want furniture", purposes[1])
	}
}

func TestReadCSVFrom_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "header only", input: "a,b\n"},
		{name: "ragged row", input: "a,b\n1,2\n3\n"},
		{name: "duplicate header", input: "a,a\n1,2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSVFrom(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("ReadCSVFrom() expected error, got nil")
			}
		})
	}
}

func TestReadCSVFrom_EmptyDataSentinel(t *testing.T) {
	_, err := ReadCSVFrom(strings.NewReader("a,b\n"))
	if !errors.Is(err, errors.ErrEmptyData) {
		t.Errorf("expected ErrEmptyData, got %v", err)
	}
}

func TestReadCSVFrom_DuplicateHeaderIsSchemaError(t *testing.T) {
	_, err := ReadCSVFrom(strings.NewReader("a,a\n1,2\n"))
	var schemaErr *errors.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if schemaErr.Column != "a" {
		t.Errorf("SchemaError.Column = %q, want a", schemaErr.Column)
	}
}

func TestReadCSV_MissingFile(t *testing.T) {
	_, err := ReadCSV("testdata/no_such_file.csv")
	if err == nil {
		t.Fatal("ReadCSV() expected error for missing file")
	}
}

func TestReadCSV_File(t *testing.T) {
	ds, err := ReadCSV("testdata/credit_sample.csv")
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if ds.NumRows() != 8 {
		t.Errorf("NumRows() = %d, want 8", ds.NumRows())
	}
	if !ds.HasColumn("creditability") {
		t.Error("expected creditability column")
	}
}

func TestTypedAccess_WrongTypeIsSchemaError(t *testing.T) {
	csv := "id,purpose\n1,car\n"
	ds, err := ReadCSVFrom(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSVFrom() error = %v", err)
	}

	if _, err := ds.Ints("purpose"); err == nil {
		t.Error("Ints(purpose) expected error for string column")
	}
	if _, err := ds.Strings("id"); err == nil {
		t.Error("Strings(id) expected error for int column")
	}
	if _, err := ds.Floats("missing"); err == nil {
		t.Error("Floats(missing) expected error for absent column")
	}
}

func TestWithVector(t *testing.T) {
	ds, err := ReadCSVFrom(strings.NewReader("a,b\n1,2\n3,4\n"))
	if err != nil {
		t.Fatalf("ReadCSVFrom() error = %v", err)
	}

	vecs := [][]float64{{1, 2}, {3, 4}}
	out, err := ds.WithVector("features", vecs)
	if err != nil {
		t.Fatalf("WithVector() error = %v", err)
	}

	if out.NumCols() != 3 {
		t.Errorf("NumCols() = %d, want 3", out.NumCols())
	}
	if ds.NumCols() != 2 {
		t.Errorf("receiver mutated: NumCols() = %d, want 2", ds.NumCols())
	}

	got, err := out.Vectors("features")
	if err != nil {
		t.Fatalf("Vectors() error = %v", err)
	}
	if got[1][0] != 3 {
		t.Errorf("Vectors()[1][0] = %v, want 3", got[1][0])
	}

	// Duplicate name and wrong length are rejected.
	if _, err := out.WithVector("features", vecs); err == nil {
		t.Error("WithVector() expected duplicate-name error")
	}
	if _, err := ds.WithVector("short", [][]float64{{1}}); err == nil {
		t.Error("WithVector() expected row-count error")
	}
}

func TestSubset(t *testing.T) {
	ds, err := ReadCSVFrom(strings.NewReader("id,tag\n10,a\n11,b\n12,c\n"))
	if err != nil {
		t.Fatalf("ReadCSVFrom() error = %v", err)
	}

	sub, err := ds.Subset([]int{2, 0})
	if err != nil {
		t.Fatalf("Subset() error = %v", err)
	}

	ids, _ := sub.Ints("id")
	if len(ids) != 2 || ids[0] != 12 || ids[1] != 10 {
		t.Errorf("Subset ids = %v, want [12 10]", ids)
	}
	tags, _ := sub.Strings("tag")
	if tags[0] != "c" || tags[1] != "a" {
		t.Errorf("Subset tags = %v, want [c a]", tags)
	}

	if _, err := ds.Subset([]int{3}); err == nil {
		t.Error("Subset() expected out-of-range error")
	}
}
