// Command asgd_demo trains a BinaryASGD classifier on two Gaussian blobs and
// reports held-out accuracy, hinge loss and AUC.
//
// Usage:
//
//	go run ./cmd/asgd_demo -samples 2000 -features 5 -iterations 10 -plot loss.png
package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ezoic/asgd/core/tensor"
	"github.com/ezoic/asgd/metrics"
	"github.com/ezoic/asgd/pkg/log"
	"github.com/ezoic/asgd/preprocessing"
	"github.com/ezoic/asgd/sklearn/linear_model"
	"github.com/ezoic/asgd/sklearn/pipeline"
)

type config struct {
	samples     int
	features    int
	iterations  int
	eta0        float64
	l2          float64
	feedback    bool
	seed        uint64
	noise       float64
	standardize bool
	plotFile    string
	logLevel    string
}

func parseFlags() config {
	var cfg config
	flag.IntVar(&cfg.samples, "samples", 2000, "number of generated examples")
	flag.IntVar(&cfg.features, "features", 5, "number of features per example")
	flag.IntVar(&cfg.iterations, "iterations", 10, "training epochs")
	flag.Float64Var(&cfg.eta0, "eta0", 0, "initial step size (0 calibrates it)")
	flag.Float64Var(&cfg.l2, "l2", 1e-4, "L2 regularization")
	flag.BoolVar(&cfg.feedback, "feedback", false, "copy averaged weights onto the primal ones after each epoch")
	flag.Uint64Var(&cfg.seed, "seed", 42, "random seed for data generation and shuffling")
	flag.Float64Var(&cfg.noise, "noise", 1.0, "standard deviation of each blob")
	flag.BoolVar(&cfg.standardize, "standardize", true, "scale features to zero mean and unit variance using training statistics")
	flag.StringVar(&cfg.plotFile, "plot", "", "write the training objective history to this PNG file")
	flag.StringVar(&cfg.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()
	return cfg
}

// makeBlobs draws n examples from two isotropic Gaussians centred at +1 and
// -1 on every axis, labelled +1 and -1.
func makeBlobs(n, features int, noise float64, src rand.Source) (X, y *tensor.Tensor, err error) {
	if X, err = tensor.New(n, features, 0); err != nil {
		return nil, nil, err
	}
	if y, err = tensor.New(n, 1, 0); err != nil {
		return nil, nil, err
	}
	pos := distuv.Normal{Mu: 1, Sigma: noise, Src: src}
	neg := distuv.Normal{Mu: -1, Sigma: noise, Src: src}
	pick := distuv.Bernoulli{P: 0.5, Src: src}

	for i := 0; i < n; i++ {
		dist, label := neg, -1.0
		if pick.Rand() == 1 {
			dist, label = pos, 1.0
		}
		row := X.Row(i)
		for j := range row {
			row[j] = dist.Rand()
		}
		y.Set(i, 0, label)
	}
	return X, y, nil
}

func savePlot(filename string, history []float64) error {
	p := plot.New()
	p.Title.Text = "ASGD training objective"
	p.X.Label.Text = "Epoch"
	p.Y.Label.Text = "Hinge loss + L2"

	pts := make(plotter.XYs, len(history))
	for i, v := range history {
		pts[i].X = float64(i + 1)
		pts[i].Y = v
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	line.Width = vg.Points(2)
	p.Add(line, points, plotter.NewGrid())

	return p.Save(8*vg.Inch, 5*vg.Inch, filename)
}

func run(cfg config, logger log.Logger) error {
	src := rand.NewPCG(cfg.seed, cfg.seed)
	X, y, err := makeBlobs(cfg.samples, cfg.features, cfg.noise, src)
	if err != nil {
		return err
	}

	nTrain := cfg.samples * 4 / 5
	XTrain, err := X.Slice(0, nTrain)
	if err != nil {
		return err
	}
	yTrain, err := y.Slice(0, nTrain)
	if err != nil {
		return err
	}
	XTest, err := X.Slice(nTrain, cfg.samples)
	if err != nil {
		return err
	}
	yTest, err := y.Slice(nTrain, cfg.samples)
	if err != nil {
		return err
	}

	clf, err := linear_model.NewBinaryASGD(cfg.features, cfg.eta0, cfg.l2, cfg.iterations, cfg.feedback,
		linear_model.WithRandomState(int64(cfg.seed)),
	)
	if err != nil {
		return err
	}

	var steps []pipeline.Step
	if cfg.standardize {
		steps = append(steps, pipeline.Step{Name: "scaler", Estimator: preprocessing.NewStandardScalerDefault()})
	}
	steps = append(steps, pipeline.Step{Name: "asgd", Estimator: clf})
	pipe := pipeline.New(steps...)
	pipe.SetVerbose(cfg.logLevel == "debug")

	start := time.Now()
	if err := pipe.Fit(XTrain, yTrain); err != nil {
		return err
	}
	elapsed := time.Since(start)

	accuracy, err := pipe.Score(XTest, yTest)
	if err != nil {
		return err
	}
	scores, err := pipe.DecisionFunction(XTest)
	if err != nil {
		return err
	}
	yTrue := yTest.Data().ColView(0)
	scoreVec := mat.DenseCopyOf(scores).ColView(0)

	hinge, err := metrics.HingeLoss(yTrue, scoreVec)
	if err != nil {
		return err
	}
	auc, err := metrics.AUC(yTrue, scoreVec)
	if err != nil {
		return err
	}

	logger.Info("Evaluation completed",
		log.OperationKey, log.OperationScore,
		log.SamplesKey, cfg.samples-nTrain,
		log.AccuracyKey, accuracy,
		log.DurationMsKey, elapsed.Milliseconds(),
	)

	fmt.Printf("step size (eta0):  %.6g\n", clf.SGDStepSize0())
	fmt.Printf("observations:      %d\n", clf.NObservations())
	fmt.Printf("test accuracy:     %.4f\n", accuracy)
	fmt.Printf("test hinge loss:   %.4f\n", hinge)
	fmt.Printf("test AUC:          %.4f\n", auc)
	fmt.Printf("weights:           %.4f\n", clf.Coef())
	fmt.Printf("bias:              %.4f\n", clf.Intercept())

	if cfg.plotFile != "" {
		if err := savePlot(cfg.plotFile, clf.LossHistory()); err != nil {
			return err
		}
		fmt.Printf("objective history written to %s\n", cfg.plotFile)
	}
	return nil
}

func main() {
	cfg := parseFlags()

	log.SetupLogger(cfg.logLevel)
	logger := log.GetLoggerWithName("asgd_demo")

	if cfg.samples < 10 {
		logger.Error("at least 10 samples are required", "samples", cfg.samples)
		os.Exit(2)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Demo failed", err)
		os.Exit(1)
	}
}
