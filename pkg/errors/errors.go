// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// Error kinds exposed by the trainer (invalid hyperparameters, allocation
// failures, shape mismatches) are typed errors that also match a sentinel via
// errors.Is, so callers can branch on the kind without type assertions.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("asgd-warning: %v\n", w)
	}
	// set by pkg/log.SetupLogger; kept as a func to avoid an import cycle
	zerologWarnFunc func(warning error)
)

// SetWarningHandler replaces the fallback warning handler used when no
// zerolog sink is installed.
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs a structured warning sink. Passing nil restores
// the fallback handler.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Sentinels
//
// ===========================================================================

var (
	// ErrInvalidHyperparameter is matched by every HyperparameterError.
	ErrInvalidHyperparameter = New("invalid hyperparameter")

	// ErrAllocationFailure is matched by every AllocationError.
	ErrAllocationFailure = New("allocation failure")

	// ErrShapeMismatch is matched by every DimensionError.
	ErrShapeMismatch = New("shape mismatch")

	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrNotFitted is matched by every NotFittedError.
	ErrNotFitted = New("not fitted")
)

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// ConvergenceWarning は最適化アルゴリズムが収束しなかった場合に発生する警告です。
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations. Consider increasing n_iterations.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning は新しいConvergenceWarningを作成します。
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// HyperparameterError reports a constructor argument outside its legal range.
type HyperparameterError struct {
	Param  string
	Reason string
	Value  interface{}
}

func (e *HyperparameterError) Error() string {
	return fmt.Sprintf("asgd: invalid hyperparameter '%s': %s (got: %v)", e.Param, e.Reason, e.Value)
}

// Unwrap lets errors.Is match ErrInvalidHyperparameter.
func (e *HyperparameterError) Unwrap() error {
	return ErrInvalidHyperparameter
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *HyperparameterError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.Param).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "HyperparameterError")
}

// NewHyperparameterError は新しいHyperparameterErrorを作成し、スタックトレースを付与します。
func NewHyperparameterError(param, reason string, value interface{}) error {
	return errors.WithStack(&HyperparameterError{Param: param, Reason: reason, Value: value})
}

// AllocationError reports that a parameter buffer could not be allocated.
type AllocationError struct {
	Op       string
	Elements int
	Cause    interface{} // recovered runtime value, if any
}

func (e *AllocationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("asgd: %s: cannot allocate %d elements: %v", e.Op, e.Elements, e.Cause)
	}
	return fmt.Sprintf("asgd: %s: cannot allocate %d elements", e.Op, e.Elements)
}

// Unwrap lets errors.Is match ErrAllocationFailure.
func (e *AllocationError) Unwrap() error {
	return ErrAllocationFailure
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *AllocationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("elements", e.Elements).
		Str("type", "AllocationError")
}

// NewAllocationError は新しいAllocationErrorを作成し、スタックトレースを付与します。
func NewAllocationError(op string, elements int, cause interface{}) error {
	return errors.WithStack(&AllocationError{Op: op, Elements: elements, Cause: cause})
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("asgd: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, e.axisName(), e.Expected, e.Got)
}

// Unwrap lets errors.Is match ErrShapeMismatch.
func (e *DimensionError) Unwrap() error {
	return ErrShapeMismatch
}

func (e *DimensionError) axisName() string {
	if e.Axis == 0 {
		return "rows"
	}
	return "features"
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", e.axisName()).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
// 例えば、ラベルが ±1 以外の値を含む場合など。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("asgd: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// NotFittedError はモデルが学習前に使用された場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("asgd: this %s instance is not fitted yet. Call Fit or PartialFit before using %s.", e.ModelName, e.Method)
}

// Unwrap lets errors.Is match ErrNotFitted.
func (e *NotFittedError) Unwrap() error {
	return ErrNotFitted
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// NumericalInstabilityError は数値計算が不安定になった場合のエラーです。
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
	Iteration int
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("asgd: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	return errors.WithStack(&NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	})
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}
