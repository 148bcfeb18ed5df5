package model

import (
	"fmt"
	"math"

	"github.com/cheggaaa/pb/v3"
	log "github.com/golang/glog"

	"github.com/hakobayato/ldadf/config"
	"github.com/hakobayato/ldadf/corpus"
)

// Train runs the sampling rounds on an initialized and preprocessed model
// and writes the final snapshot to cfg.Out + ".final". It returns the
// perplexity of the last round.
func Train(m Model, cfg *config.Config) (float64, error) {
	log.Infof("* Inference")
	stepEvery := cfg.MaxSteps / 10
	oldPP := -1.0
	pp := math.NaN()

	var bar *pb.ProgressBar
	if cfg.Progress {
		bar = pb.StartNew(cfg.MaxSteps)
	}
	for i := 0; i < cfg.MaxSteps; i += 1 {
		m.Resample()
		pp = m.Perplexity()
		if bar != nil {
			bar.Increment()
		}

		if stepEvery == 0 || i%stepEvery == 0 {
			log.Infof("- step %d: pp = %g", i, pp)
			if cfg.Verbose {
				if err := m.Save(fmt.Sprintf("%s.step_%d", cfg.Out, i)); err != nil {
					return pp, err
				}
			}
		}

		if i < cfg.BurnIn {
			continue
		}
		// heuristic, the sampler may only have reached a local optimum
		if cfg.Converge && math.Abs(pp-oldPP) < cfg.ConvergeLimit {
			log.Infof("- converged")
			break
		}
		oldPP = pp

		for j := 0; j < cfg.NumLoops; j += 1 {
			m.UpdateParams()
		}
	}
	if bar != nil {
		bar.Finish()
	}

	if err := m.Save(cfg.Out + ".final"); err != nil {
		return pp, err
	}
	log.Infof("* Finish")
	return pp, nil
}

// Run loads the corpus, builds the sampler the configuration selects and
// trains it
func Run(cfg *config.Config) (float64, error) {
	if err := cfg.Validate(); err != nil {
		return math.NaN(), err
	}
	log.Infof("* Initialization")
	log.Infof("- loading %s", cfg.Data)
	data, err := corpus.Load(cfg.Data)
	if err != nil {
		return math.NaN(), err
	}

	ctor, err := GetModel(cfg.Model())
	if err != nil {
		return math.NaN(), err
	}
	m := ctor(data, cfg)
	if err := m.Initialize(); err != nil {
		return math.NaN(), err
	}
	log.Infof("* Preprocessing")
	m.Preprocess()
	return Train(m, cfg)
}
