package creditrisk

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/credigo/credigo/dataset"
	"github.com/credigo/credigo/metrics"
	"github.com/credigo/credigo/pkg/errors"
	"github.com/credigo/credigo/pkg/log"
	"github.com/credigo/credigo/preprocessing"
	"github.com/credigo/credigo/sklearn/ensemble"
	"github.com/credigo/credigo/sklearn/tree"
	"github.com/credigo/credigo/visualize"
)

// Run executes the scoring workflow end to end and returns the collected
// Report. Every failure is fatal and surfaces immediately; there are no
// retries and no partial results.
func Run(cfg Config) (*Report, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	logger := log.GetLoggerWithName("credigo.creditrisk")

	ds, err := LoadDataset(cfg.DataPath)
	if err != nil {
		return nil, err
	}
	if err := checkBinaryLabels(ds); err != nil {
		return nil, err
	}

	report := &Report{NumRows: ds.NumRows()}

	// Exploration tables, in the order the analysis prints them.
	report.Summaries, err = ds.Describe("amount", "duration", "age")
	if err != nil {
		return nil, err
	}
	report.AmountByLabel, err = ds.GroupMeanBy("amount", LabelColumn)
	if err != nil {
		return nil, err
	}
	report.BalanceByLabel, err = ds.CrossTab("balance", LabelColumn)
	if err != nil {
		return nil, err
	}
	if err := report.BalanceByLabel.ApplyRowLookup(BalanceDescriptions); err != nil {
		return nil, err
	}

	assembler := preprocessing.NewVectorAssembler(FeatureColumns, FeaturesColumn)
	assembled, err := assembler.Transform(ds)
	if err != nil {
		return nil, err
	}

	parts, err := assembled.RandomSplit([]float64{cfg.TrainFraction, 1 - cfg.TrainFraction}, cfg.Seed)
	if err != nil {
		return nil, err
	}
	train, test := parts[0], parts[1]
	if train.NumRows() == 0 || test.NumRows() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "creditrisk.Run: degenerate split")
	}
	report.TrainRows = train.NumRows()
	report.TestRows = test.NumRows()
	logger.Debug("Dataset split",
		log.OperationKey, log.OperationSplit,
		"train_rows", report.TrainRows,
		"test_rows", report.TestRows,
		log.RandomSeedKey, cfg.Seed,
	)

	XTrain, yTrain, err := matrixAndLabels(train)
	if err != nil {
		return nil, err
	}
	XTest, yTest, err := matrixAndLabels(test)
	if err != nil {
		return nil, err
	}

	clf := ensemble.NewRandomForestClassifier(
		ensemble.WithNEstimators(cfg.NumTrees),
		ensemble.WithMaxDepth(cfg.MaxDepth),
		ensemble.WithMaxBins(cfg.MaxBins),
		ensemble.WithSeed(cfg.Seed),
	)
	if err := clf.Fit(XTrain, yTrain); err != nil {
		return nil, err
	}

	scores, err := classOneScores(clf, XTest)
	if err != nil {
		return nil, err
	}
	report.AUC, err = metrics.AUC(yTest, scores)
	if err != nil {
		return nil, err
	}
	report.Brier, err = metrics.MSE(yTest, scores)
	if err != nil {
		return nil, err
	}
	report.Accuracy, err = testAccuracy(clf, XTest, yTest)
	if err != nil {
		return nil, err
	}

	report.Importances, err = ensemble.ImportanceTable(FeatureColumns, clf.GetFeatureImportances())
	if err != nil {
		return nil, err
	}

	dump, err := clf.DumpTree(0)
	if err != nil {
		return nil, err
	}
	report.TreeDump = tree.NameFeatures(dump, FeatureColumns)

	if cfg.PlotDir != "" {
		if err := writePlots(cfg.PlotDir, ds, report); err != nil {
			return nil, err
		}
	}

	logger.Info("Credit scoring workflow complete",
		log.ModelNameKey, "RandomForestClassifier",
		log.SamplesKey, report.NumRows,
		log.NumTreesKey, cfg.NumTrees,
		log.AUCKey, report.AUC,
		log.AccuracyKey, report.Accuracy,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return report, nil
}

// checkBinaryLabels rejects label values outside {0, 1} before any modeling
// starts, so a miscoded label column fails at the door rather than inside
// the evaluator.
func checkBinaryLabels(ds *dataset.Dataset) error {
	labels, err := ds.Ints(LabelColumn)
	if err != nil {
		return err
	}
	for i, v := range labels {
		if v != 0 && v != 1 {
			return errors.NewValueError("creditrisk.Run",
				fmt.Sprintf("label %d at row %d is not 0 or 1", v, i))
		}
	}
	return nil
}

// matrixAndLabels bridges one split into the estimator types: the assembled
// vector column becomes the n x 20 design matrix, the label column the
// target vector.
func matrixAndLabels(ds *dataset.Dataset) (*mat.Dense, *mat.VecDense, error) {
	vecs, err := ds.Vectors(FeaturesColumn)
	if err != nil {
		return nil, nil, err
	}
	labels, err := ds.Floats(LabelColumn)
	if err != nil {
		return nil, nil, err
	}

	X := mat.NewDense(len(vecs), len(FeatureColumns), nil)
	for i, vec := range vecs {
		X.SetRow(i, vec)
	}
	return X, mat.NewVecDense(len(labels), labels), nil
}

// classOneScores extracts p(credit-worthy) per test row. A training split
// that never saw class 1 leaves every score at 0.
func classOneScores(clf *ensemble.RandomForestClassifier, X mat.Matrix) (*mat.VecDense, error) {
	proba, err := clf.PredictProba(X)
	if err != nil {
		return nil, err
	}

	classCol := -1
	for j, c := range clf.Classes() {
		if c == 1 {
			classCol = j
		}
	}

	n, _ := proba.Dims()
	scores := mat.NewVecDense(n, nil)
	if classCol >= 0 {
		for i := 0; i < n; i++ {
			scores.SetVec(i, proba.At(i, classCol))
		}
	}
	return scores, nil
}

func testAccuracy(clf *ensemble.RandomForestClassifier, X mat.Matrix, y *mat.VecDense) (float64, error) {
	pred, err := clf.Predict(X)
	if err != nil {
		return 0, err
	}
	n, _ := pred.Dims()
	predVec := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		predVec.SetVec(i, pred.At(i, 0))
	}
	return metrics.Accuracy(y, predVec)
}

// writePlots renders the two analysis charts into dir: the amount-by-outcome
// box plot and the sorted feature-importance bar chart.
func writePlots(dir string, ds *dataset.Dataset, report *Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "plot dir %s", dir)
	}

	groups, err := ds.GroupValues("amount", LabelColumn)
	if err != nil {
		return err
	}
	names := make([]string, len(groups))
	series := make([][]float64, len(groups))
	for i, g := range groups {
		names[i] = fmt.Sprintf("%s %d", LabelColumn, g.Key)
		series[i] = g.Values
	}
	box, err := visualize.BoxPlot("Credit amount by outcome", names, series)
	if err != nil {
		return err
	}
	boxPath := filepath.Join(dir, "amount_by_creditability.png")
	if err := visualize.SavePNG(box, boxPath); err != nil {
		return err
	}

	sorted := ensemble.SortByScore(report.Importances)
	impNames := make([]string, len(sorted))
	impScores := make([]float64, len(sorted))
	for i, fi := range sorted {
		impNames[i] = fi.Name
		impScores[i] = fi.Score
	}
	bar, err := visualize.ImportanceBar("Feature importance", impNames, impScores)
	if err != nil {
		return err
	}
	barPath := filepath.Join(dir, "feature_importance.png")
	if err := visualize.SavePNG(bar, barPath); err != nil {
		return err
	}

	report.PlotPaths = []string{boxPath, barPath}
	return nil
}
