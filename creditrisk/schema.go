// Package creditrisk wires the German-credit scoring workflow end to end:
// load the coded CSV, explore it, assemble the fixed feature vector, split,
// train a random forest, and evaluate the held-out ranking by AUC.
//
// The package owns the dataset schema. Everything downstream (the assembled
// vector, the importance table, the named tree dump) follows the column order
// fixed by FeatureColumns.
package creditrisk

import (
	"github.com/credigo/credigo/dataset"
	"github.com/credigo/credigo/pkg/errors"
)

// LabelColumn is the binary outcome column: 1 for a customer judged
// credit-worthy, 0 for one judged not credit-worthy.
const LabelColumn = "creditability"

// FeaturesColumn names the vector column the assembler appends.
const FeaturesColumn = "features"

// FeatureColumns lists the twenty model inputs in their fixed vector order.
var FeatureColumns = []string{
	"balance",
	"duration",
	"history",
	"purpose",
	"amount",
	"savings",
	"employment",
	"instPercent",
	"sexMarried",
	"guarantors",
	"residenceDuration",
	"assets",
	"age",
	"concCredit",
	"apartment",
	"credits",
	"occupation",
	"dependents",
	"hasPhone",
	"foreign",
}

// BalanceDescriptions maps the checking-account balance codes to display
// text. Exactly the codes 1 through 4 are defined; any other code in the
// data is a LookupError, never a silent default.
var BalanceDescriptions = dataset.Lookup{
	1: "no checking account",
	2: "no balance",
	3: "below 200 DM",
	4: "200 DM or more",
}

// LoadDataset reads the credit CSV and verifies that the label column and
// all twenty feature columns are present and numeric. A column that parsed
// as text, usually a typo or an unquoted header shift, is rejected here
// rather than halfway through the workflow.
func LoadDataset(path string) (*dataset.Dataset, error) {
	ds, err := dataset.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	if err := checkSchema(ds); err != nil {
		return nil, err
	}
	return ds, nil
}

func checkSchema(ds *dataset.Dataset) error {
	required := append([]string{LabelColumn}, FeatureColumns...)
	for _, name := range required {
		typ, err := ds.Type(name)
		if err != nil {
			return errors.NewSchemaError("creditrisk.LoadDataset", name, "column missing")
		}
		if typ != dataset.Int {
			return errors.NewSchemaError("creditrisk.LoadDataset", name, "is "+typ.String()+", want int")
		}
	}
	return nil
}
