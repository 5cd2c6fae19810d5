// Package metrics provides evaluation metrics for binary classifiers whose
// labels are encoded as -1 / +1.
package metrics

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	asgdErrors "github.com/ezoic/asgd/pkg/errors"
)

func checkPair(op string, yTrue, yPred mat.Vector) (int, error) {
	if yTrue == nil || yPred == nil {
		return 0, asgdErrors.NewValueError(op, "input vectors cannot be nil")
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, asgdErrors.NewValueError(op, "input vectors cannot be empty")
	}
	if n != yPred.Len() {
		return 0, asgdErrors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

func checkSignedLabels(op string, y mat.Vector) error {
	for i := 0; i < y.Len(); i++ {
		if v := y.AtVec(i); v != 1 && v != -1 {
			return asgdErrors.NewValueError(op,
				fmt.Sprintf("labels must be -1 or +1, found %g at index %d", v, i))
		}
	}
	return nil
}

// ClassificationError returns the fraction of positions where yPred differs
// from yTrue.
func ClassificationError(yTrue, yPred mat.Vector) (float64, error) {
	n, err := checkPair("ClassificationError", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	errors := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) != yPred.AtVec(i) {
			errors++
		}
	}
	return float64(errors) / float64(n), nil
}

// Accuracy calculates the classification accuracy.
//
// Example:
//
//	yTrue := mat.NewVecDense(4, []float64{1, -1, 1, -1})
//	yPred := mat.NewVecDense(4, []float64{1, -1, -1, -1})
//	acc, _ := metrics.Accuracy(yTrue, yPred) // 0.75
func Accuracy(yTrue, yPred mat.Vector) (float64, error) {
	errorRate, err := ClassificationError(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1.0 - errorRate, nil
}

// HingeLoss returns mean(max(0, 1 - y * score)) for ±1 labels and raw
// decision scores.
func HingeLoss(yTrue, scores mat.Vector) (float64, error) {
	n, err := checkPair("HingeLoss", yTrue, scores)
	if err != nil {
		return 0, err
	}
	if err := checkSignedLabels("HingeLoss", yTrue); err != nil {
		return 0, err
	}

	losses := make([]float64, n)
	for i := range losses {
		if margin := yTrue.AtVec(i) * scores.AtVec(i); margin < 1 {
			losses[i] = 1 - margin
		}
	}
	return floats.Sum(losses) / float64(n), nil
}

// AUC calculates the area under the ROC curve from ±1 labels and decision
// scores. Tied scores contribute a single ROC point. If only one class is
// present the AUC is undefined and 0.5 is returned together with an
// UndefinedMetric warning.
func AUC(yTrue, scores mat.Vector) (float64, error) {
	n, err := checkPair("AUC", yTrue, scores)
	if err != nil {
		return 0, err
	}
	if err := checkSignedLabels("AUC", yTrue); err != nil {
		return 0, err
	}

	type pair struct {
		score    float64
		positive bool
	}
	pairs := make([]pair, n)
	var totalPos, totalNeg float64
	for i := range pairs {
		pairs[i] = pair{score: scores.AtVec(i), positive: yTrue.AtVec(i) > 0}
		if pairs[i].positive {
			totalPos++
		} else {
			totalNeg++
		}
	}
	if totalPos == 0 || totalNeg == 0 {
		asgdErrors.Warn(asgdErrors.NewValueError("AUC", "only one class present in yTrue; returning 0.5"))
		return 0.5, nil
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].score > pairs[j].score
	})

	// trapezoid rule over (fpr, tpr) points, one point per distinct score
	var auc, tp, fp, prevTPR, prevFPR float64
	for i, p := range pairs {
		if p.positive {
			tp++
		} else {
			fp++
		}
		if i+1 < n && pairs[i+1].score == p.score {
			continue
		}
		tpr, fpr := tp/totalPos, fp/totalNeg
		auc += (fpr - prevFPR) * (tpr + prevTPR) / 2
		prevTPR, prevFPR = tpr, fpr
	}
	return auc, nil
}
