package model

import (
	"fmt"

	"github.com/hakobayato/ldadf/config"
	"github.com/hakobayato/ldadf/corpus"
	"github.com/hakobayato/ldadf/matrix"
)

var constructors = make(map[string]ModelCtor)

// the common interface the Gibbs samplers follow, one Resample call is
// one round of the training loop
type Model interface {
	// size and zero all counts, seed the random generator
	Initialize() error
	// draw the initial topic of every token
	Preprocess()
	// resample every latent variable once
	Resample()
	// re-estimate the topic concentration hyperparameters once
	UpdateParams()
	// perplexity of the corpus under the current point estimates
	Perplexity() float64
	// topic-word distribution, topics x words
	Phi() *matrix.Float64Matrix
	// document-topic distribution, documents x topics
	Theta() *matrix.Float64Matrix
	// write the parameter snapshot to prefix.*
	Save(prefix string) error
}

// new samplers should register themselves using this function
func Register(modelType string, m ModelCtor) {
	constructors[modelType] = m
}

type ModelCtor func(dat *corpus.Corpus, cfg *config.Config) Model

func GetModel(modelType string) (ModelCtor, error) {
	if _, ok := constructors[modelType]; !ok {
		return nil, fmt.Errorf("model %s not registered", modelType)
	}
	return constructors[modelType], nil
}
