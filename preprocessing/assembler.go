package preprocessing

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/credigo/credigo/dataset"
	"github.com/credigo/credigo/pkg/errors"
)

// VectorAssembler は複数の数値列を1つの特徴量ベクトル列にまとめる変換器。
// ベクトル内の要素順は InputCols の順序と完全に一致する。
// 状態を持たないため Fit は不要で、同じ入力に対して常に同じ結果を返す。
type VectorAssembler struct {
	// InputCols は結合する数値列の名前（この順序がベクトルの要素順になる）
	InputCols []string

	// OutputCol は追加されるベクトル列の名前
	OutputCol string
}

// NewVectorAssembler は新しいVectorAssemblerを作成する
//
// パラメータ:
//   - inputCols: 結合する数値列の名前
//   - outputCol: 追加するベクトル列の名前
//
// 戻り値:
//   - *VectorAssembler: 新しいVectorAssemblerインスタンス
//
// 使用例:
//
//	assembler := preprocessing.NewVectorAssembler(creditrisk.FeatureColumns, "features")
//	assembled, err := assembler.Transform(ds)
func NewVectorAssembler(inputCols []string, outputCol string) *VectorAssembler {
	return &VectorAssembler{
		InputCols: inputCols,
		OutputCol: outputCol,
	}
}

// Transform は入力データセットに特徴量ベクトル列を追加した新しいデータセットを返す
//
// パラメータ:
//   - ds: 入力データセット
//
// 戻り値:
//   - *dataset.Dataset: ベクトル列が追加された新しいデータセット
//   - error: 入力列が存在しない、または数値列でない場合はSchemaError
func (a *VectorAssembler) Transform(ds *dataset.Dataset) (*dataset.Dataset, error) {
	vectors, err := a.assemble(ds)
	if err != nil {
		return nil, err
	}
	return ds.WithVector(a.OutputCol, vectors)
}

// Matrix は特徴量を n×k の行列として直接取り出す
// （推定器へ渡すためのブリッジ。kはInputColsの数）
//
// パラメータ:
//   - ds: 入力データセット
//
// 戻り値:
//   - *mat.Dense: n_samples × n_features の行列
//   - error: 入力列が解決できない場合はSchemaError
func (a *VectorAssembler) Matrix(ds *dataset.Dataset) (*mat.Dense, error) {
	vectors, err := a.assemble(ds)
	if err != nil {
		return nil, err
	}

	n := len(vectors)
	k := len(a.InputCols)
	out := mat.NewDense(n, k, nil)
	for i, vec := range vectors {
		out.SetRow(i, vec)
	}
	return out, nil
}

// assemble は行ごとの特徴量ベクトルを構築する
func (a *VectorAssembler) assemble(ds *dataset.Dataset) ([][]float64, error) {
	if len(a.InputCols) == 0 {
		return nil, errors.NewValueError("VectorAssembler.Transform", "no input columns")
	}

	columns := make([][]float64, len(a.InputCols))
	for j, name := range a.InputCols {
		values, err := ds.Floats(name)
		if err != nil {
			return nil, err
		}
		columns[j] = values
	}

	n := ds.NumRows()
	k := len(a.InputCols)
	backing := make([]float64, n*k)
	vectors := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := backing[i*k : (i+1)*k : (i+1)*k]
		for j := range columns {
			row[j] = columns[j][i]
		}
		vectors[i] = row
	}
	return vectors, nil
}

// String はアセンブラの文字列表現を返す
func (a *VectorAssembler) String() string {
	return fmt.Sprintf("VectorAssembler(inputCols=[%s], outputCol=%s)",
		strings.Join(a.InputCols, ", "), a.OutputCol)
}
