package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		kind     string
		err      error
		wantMsg  string
		hasStack bool
	}{
		{
			name:     "with original error",
			op:       "Fit",
			kind:     "invalid input",
			err:      fmt.Errorf("test error"),
			wantMsg:  "credigo: Fit: invalid input: test error",
			hasStack: true,
		},
		{
			name:     "without original error",
			op:       "Predict",
			kind:     "not fitted",
			err:      nil,
			wantMsg:  "credigo: Predict: not fitted",
			hasStack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			// 基本的なエラーメッセージの確認
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			if tt.hasStack {
				formatted := fmt.Sprintf("%+v", err)
				if !strings.Contains(formatted, "errors_test.go") {
					t.Error("Expected stack trace to contain test file name")
				}
			}

			// ModelError型にキャスト可能か確認
			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 10, 10, 0)

	// 基本的なエラーメッセージの確認
	want := "credigo: Predict: dimension mismatch on axis 0 (rows). Expected 10, got 10"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	// DimensionError型にキャスト可能か確認
	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("RandomForestClassifier", "Predict")

	// 基本的なエラーメッセージの確認
	want := "credigo: RandomForestClassifier: this model is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	// NotFittedError型にキャスト可能か確認
	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestNewValueError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		param   string
		value   interface{}
		message string
		wantMsg string
	}{
		{
			name:    "with message",
			op:      "SetParam",
			param:   "max_depth",
			value:   -5,
			message: "must be positive",
			wantMsg: "credigo: SetParam: max_depth: -5 (must be positive)",
		},
		{
			name:    "without message",
			op:      "SetParam",
			param:   "n_estimators",
			value:   0,
			message: "",
			wantMsg: "credigo: SetParam: n_estimators: 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.message != "" {
				err = NewValueError(tt.op, fmt.Sprintf("%s: %v (%s)", tt.param, tt.value, tt.message))
			} else {
				err = NewValueError(tt.op, fmt.Sprintf("%s: %v", tt.param, tt.value))
			}

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// ValueError型にキャスト可能か確認
			var valErr *ValueError
			if !As(err, &valErr) {
				t.Error("Error should be castable to *ValueError")
			}
		})
	}
}

func TestNewSchemaError(t *testing.T) {
	err := NewSchemaError("Describe", "amount", "not found")

	want := "credigo: Describe: column 'amount': not found"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	// SchemaError型にキャスト可能か確認
	var schemaErr *SchemaError
	if !As(err, &schemaErr) {
		t.Error("Error should be castable to *SchemaError")
	}
	if schemaErr.Column != "amount" {
		t.Errorf("Column = %v, want amount", schemaErr.Column)
	}
}

func TestNewLookupError(t *testing.T) {
	err := NewLookupError("balance lookup", 5)

	want := "credigo: balance lookup: no description for code 5"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	// LookupError型にキャスト可能か確認
	var lookupErr *LookupError
	if !As(err, &lookupErr) {
		t.Error("Error should be castable to *LookupError")
	}
	if lookupErr.Code != 5 {
		t.Errorf("Code = %v, want 5", lookupErr.Code)
	}

	// スタックトレースの存在確認
	formatted := fmt.Sprintf("%+v", err)
	if !strings.Contains(formatted, "errors_test.go") {
		t.Error("Expected stack trace to contain test file name")
	}
}

func TestNewUndefinedMetricWarning(t *testing.T) {
	warn := NewUndefinedMetricWarning("AUC", "only one class present in y_true", 0.5)

	// 基本的なエラーメッセージの確認
	want := "'AUC' is ill-defined and being set to 0.500000 due to only one class present in y_true."
	if warn.Error() != want {
		t.Errorf("Error() = %v, want %v", warn.Error(), want)
	}

	// UndefinedMetricWarning型へのキャストのみ確認
	var metricWarn *UndefinedMetricWarning
	if !As(warn, &metricWarn) {
		t.Error("Warning should be castable to *UndefinedMetricWarning")
	}
}

func TestWrapAndIs(t *testing.T) {
	// 元のエラー
	baseErr := ErrNotImplemented

	// ラップ
	wrapped := Wrap(baseErr, "in RandomForestClassifier.Predict")

	// Is関数でチェック
	if !Is(wrapped, ErrNotImplemented) {
		t.Error("Expected Is(wrapped, ErrNotImplemented) to be true")
	}

	// エラーメッセージの確認
	if !strings.Contains(wrapped.Error(), "in RandomForestClassifier.Predict") {
		t.Error("Expected wrapped error to contain wrapping message")
	}
}

func TestWrapf(t *testing.T) {
	// 元のエラー
	baseErr := ErrEmptyData

	// フォーマット付きラップ
	wrapped := Wrapf(baseErr, "in %s: expected %d, got %d", "Predict", 10, 5)

	// Is関数でチェック
	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}

	// エラーメッセージの確認
	expectedMsg := "in Predict: expected 10, got 5"
	if !strings.Contains(wrapped.Error(), expectedMsg) {
		t.Errorf("Expected wrapped error to contain %q", expectedMsg)
	}
}

func TestErrorChaining(t *testing.T) {
	// エラーチェーンの作成
	err1 := fmt.Errorf("base error")
	err2 := Wrap(err1, "wrapped once")
	err3 := NewModelError("Operation", "failed", err2)

	// チェーン全体を確認
	if !strings.Contains(err3.Error(), "base error") {
		t.Error("Expected error chain to contain base error")
	}

	// スタックトレースの確認（詳細表示）
	formatted := fmt.Sprintf("%+v", err3)
	if !strings.Contains(formatted, "errors_test.go") {
		t.Error("Expected detailed error to contain stack trace")
	}
}
