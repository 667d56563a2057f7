package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// FeatureImporter は特徴量重要度を公開するモデルのインターフェース
type FeatureImporter interface {
	// GetFeatureImportances は正規化された特徴量重要度を返す
	// 各要素は非負で、合計は1になる
	GetFeatureImportances() []float64
}
