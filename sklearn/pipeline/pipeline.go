// Package pipeline chains feature transformers in front of a final
// classifier, so the same preprocessing is applied at training and
// prediction time.
//
// Example usage:
//
//	clf, _ := linear_model.NewBinaryASGD(5, 0, 1e-4, 10, false)
//	pipe := pipeline.New(
//		pipeline.Step{Name: "scaler", Estimator: preprocessing.NewStandardScalerDefault()},
//		pipeline.Step{Name: "asgd", Estimator: clf},
//	)
//	if err := pipe.Fit(XTrain, yTrain); err != nil {
//		log.Fatal(err)
//	}
//	accuracy, err := pipe.Score(XTest, yTest)
package pipeline

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/asgd/core/model"
	"github.com/ezoic/asgd/pkg/errors"
	"github.com/ezoic/asgd/pkg/log"
)

var _ model.StreamingClassifier = (*Pipeline)(nil)

// Step represents a single step in the pipeline.
type Step struct {
	Name      string      // Name of this step (for identification)
	Estimator interface{} // Transformer for intermediate steps, classifier for the last
}

// Pipeline chains transformers and a final classifier. Intermediate steps
// must implement model.Transformer. The final step must have the method
// being called (Fit, PartialFit, Predict, DecisionFunction or Score).
type Pipeline struct {
	state  *model.StateManager
	logger log.Logger

	steps   []Step
	verbose bool // If True, time elapsed while fitting each step

	namedSteps map[string]interface{}
}

// Estimators with a Fit that shuffles its input in place, like BinaryASGD.
type denseFitter interface {
	Fit(X, y *mat.Dense) error
}

type matrixFitter interface {
	Fit(X, y mat.Matrix) error
}

type partialFitter interface {
	PartialFit(X, y mat.Matrix) error
}

// New creates a new Pipeline with the given steps.
func New(steps ...Step) *Pipeline {
	namedSteps := make(map[string]interface{}, len(steps))
	for _, step := range steps {
		namedSteps[step.Name] = step.Estimator
	}

	return &Pipeline{
		state:      model.NewStateManager(),
		logger:     log.GetLoggerWithName("pipeline").With(log.ComponentKey, "pipeline"),
		steps:      steps,
		namedSteps: namedSteps,
	}
}

// Make builds a pipeline with generated step names "step1", "step2", ...
func Make(estimators ...interface{}) *Pipeline {
	steps := make([]Step, len(estimators))
	for i, estimator := range estimators {
		steps[i] = Step{Name: fmt.Sprintf("step%d", i+1), Estimator: estimator}
	}
	return New(steps...)
}

// SetVerbose logs the time spent fitting each step at info level.
func (p *Pipeline) SetVerbose(verbose bool) {
	p.verbose = verbose
}

// Fit fits every transformer in turn on the output of the previous one,
// then fits the final classifier on the transformed data.
//
// A final step whose Fit takes *mat.Dense receives a private copy of the
// data when no transformer has produced one, so the caller's X and y are
// never reordered.
func (p *Pipeline) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "Pipeline.Fit")

	if X == nil || y == nil {
		return errors.NewValueError("Pipeline.Fit", "X and y cannot be nil")
	}
	final, err := p.finalStep("Pipeline.Fit")
	if err != nil {
		return err
	}

	Xt := X
	owned := false
	for _, step := range p.steps[:len(p.steps)-1] {
		transformer, ok := step.Estimator.(model.Transformer)
		if !ok {
			return notTransformer("Pipeline.Fit", step)
		}

		start := time.Now()
		if err := transformer.Fit(Xt); err != nil {
			return errors.Wrap(err, fmt.Sprintf("failed to fit step '%s'", step.Name))
		}
		if Xt, err = transformer.Transform(Xt); err != nil {
			return errors.Wrap(err, fmt.Sprintf("failed to transform at step '%s'", step.Name))
		}
		owned = true
		p.logStep(step.Name, start)
	}

	start := time.Now()
	switch fitter := final.Estimator.(type) {
	case denseFitter:
		Xd, ok := Xt.(*mat.Dense)
		if !owned || !ok {
			Xd = mat.DenseCopyOf(Xt)
		}
		err = fitter.Fit(Xd, mat.DenseCopyOf(y))
	case matrixFitter:
		err = fitter.Fit(Xt, y)
	default:
		return errors.NewValueError("Pipeline.Fit", fmt.Sprintf("final step '%s' has no Fit method", final.Name))
	}
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to fit final step '%s'", final.Name))
	}
	p.logStep(final.Name, start)

	r, c := X.Dims()
	p.state.Reset()
	p.state.Observe(c, r)
	p.state.SetFitted()
	return nil
}

// PartialFit updates every transformer's statistics with X, transforms it,
// and runs one PartialFit pass of the final classifier. Intermediate steps
// must implement model.IncrementalTransformer.
func (p *Pipeline) PartialFit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "Pipeline.PartialFit")

	final, err := p.finalStep("Pipeline.PartialFit")
	if err != nil {
		return err
	}
	learner, ok := final.Estimator.(partialFitter)
	if !ok {
		return errors.NewValueError("Pipeline.PartialFit", fmt.Sprintf("final step '%s' has no PartialFit method", final.Name))
	}

	Xt := X
	for _, step := range p.steps[:len(p.steps)-1] {
		transformer, ok := step.Estimator.(model.IncrementalTransformer)
		if !ok {
			return errors.NewValueError("Pipeline.PartialFit",
				fmt.Sprintf("step '%s' does not support incremental fitting", step.Name))
		}
		if err := transformer.PartialFit(Xt); err != nil {
			return errors.Wrap(err, fmt.Sprintf("failed to update step '%s'", step.Name))
		}
		if Xt, err = transformer.Transform(Xt); err != nil {
			return errors.Wrap(err, fmt.Sprintf("failed to transform at step '%s'", step.Name))
		}
	}

	if err := learner.PartialFit(Xt, y); err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to update final step '%s'", final.Name))
	}

	r, c := X.Dims()
	p.state.Observe(c, r)
	p.state.SetFitted()
	return nil
}

// FitStream runs PartialFit on batches from dataChan until it is closed or
// ctx is done.
func (p *Pipeline) FitStream(ctx context.Context, dataChan <-chan *model.Batch) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-dataChan:
			if !ok {
				return nil
			}
			if err := p.PartialFit(batch.X, batch.Y); err != nil {
				return err
			}
		}
	}
}

// Predict applies the transforms to X and predicts with the final step.
func (p *Pipeline) Predict(X mat.Matrix) (mat.Matrix, error) {
	Xt, final, err := p.prepare("Predict", X)
	if err != nil {
		return nil, err
	}
	predictor, ok := final.Estimator.(interface {
		Predict(mat.Matrix) (mat.Matrix, error)
	})
	if !ok {
		return nil, errors.NewValueError("Pipeline.Predict", fmt.Sprintf("final step '%s' has no Predict method", final.Name))
	}
	return predictor.Predict(Xt)
}

// DecisionFunction applies the transforms to X and returns the final step's
// raw scores.
func (p *Pipeline) DecisionFunction(X mat.Matrix) (mat.Matrix, error) {
	Xt, final, err := p.prepare("DecisionFunction", X)
	if err != nil {
		return nil, err
	}
	scorer, ok := final.Estimator.(interface {
		DecisionFunction(mat.Matrix) (mat.Matrix, error)
	})
	if !ok {
		return nil, errors.NewValueError("Pipeline.DecisionFunction",
			fmt.Sprintf("final step '%s' has no DecisionFunction method", final.Name))
	}
	return scorer.DecisionFunction(Xt)
}

// Score applies the transforms to X and returns the final step's score
// against y.
func (p *Pipeline) Score(X, y mat.Matrix) (float64, error) {
	Xt, final, err := p.prepare("Score", X)
	if err != nil {
		return 0, err
	}
	scorer, ok := final.Estimator.(interface {
		Score(mat.Matrix, mat.Matrix) (float64, error)
	})
	if !ok {
		return 0, errors.NewValueError("Pipeline.Score", fmt.Sprintf("final step '%s' has no Score method", final.Name))
	}
	return scorer.Score(Xt, y)
}

// IsFitted reports whether Fit or PartialFit has completed.
func (p *Pipeline) IsFitted() bool { return p.state.IsFitted() }

// GetParams returns the pipeline's parameters and those of every step,
// prefixed with "<step name>__".
func (p *Pipeline) GetParams() map[string]interface{} {
	params := make(map[string]interface{})
	params["verbose"] = p.verbose

	for _, step := range p.steps {
		if paramsGetter, ok := step.Estimator.(interface {
			GetParams() map[string]interface{}
		}); ok {
			for key, value := range paramsGetter.GetParams() {
				params[fmt.Sprintf("%s__%s", step.Name, key)] = value
			}
		}
	}
	return params
}

// NamedSteps returns the steps as a map for easy access by name.
func (p *Pipeline) NamedSteps() map[string]interface{} {
	return p.namedSteps
}

// Steps returns the list of steps.
func (p *Pipeline) Steps() []Step {
	steps := make([]Step, len(p.steps))
	copy(steps, p.steps)
	return steps
}

func (p *Pipeline) finalStep(op string) (Step, error) {
	if len(p.steps) == 0 {
		return Step{}, errors.NewValueError(op, "pipeline has no steps")
	}
	return p.steps[len(p.steps)-1], nil
}

// prepare checks the pipeline is fitted and applies every transform except
// the final step.
func (p *Pipeline) prepare(method string, X mat.Matrix) (_ mat.Matrix, _ Step, err error) {
	op := "Pipeline." + method
	defer errors.Recover(&err, op)

	if !p.state.IsFitted() {
		return nil, Step{}, errors.NewNotFittedError("Pipeline", method)
	}
	final, err := p.finalStep(op)
	if err != nil {
		return nil, Step{}, err
	}

	Xt := X
	for _, step := range p.steps[:len(p.steps)-1] {
		transformer, ok := step.Estimator.(model.Transformer)
		if !ok {
			return nil, Step{}, notTransformer(op, step)
		}
		if Xt, err = transformer.Transform(Xt); err != nil {
			return nil, Step{}, errors.Wrap(err, fmt.Sprintf("failed to transform at step '%s'", step.Name))
		}
	}
	return Xt, final, nil
}

func (p *Pipeline) logStep(name string, start time.Time) {
	if !p.verbose {
		return
	}
	p.logger.Info("Step fitted",
		log.OperationKey, log.OperationFit,
		log.StepKey, name,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
}

func notTransformer(op string, step Step) error {
	return errors.NewValueError(op, fmt.Sprintf("intermediate step '%s' must be a transformer", step.Name))
}
