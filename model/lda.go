package model

import (
	"fmt"
	"math"
	"math/rand"

	log "github.com/golang/glog"

	"github.com/hakobayato/ldadf/config"
	"github.com/hakobayato/ldadf/corpus"
	"github.com/hakobayato/ldadf/matrix"
	"github.com/hakobayato/ldadf/util"
)

func init() {
	Register("lda", NewLDA)
}

// floor of the alpha update, also added to a non-positive
// numerator or denominator of the fixed point ratio
const minAlpha = 0.00001

// tokenModel is what a sampling sweep needs from a sampler. Counts of a
// token are removed before its topic distribution is computed and
// inserted again right after the draw.
type tokenModel interface {
	remove(d, w, z uint32)
	insert(d, w, z uint32)
	calcProbs(d, w uint32, probs []float64)
}

type LDA struct {
	data     *corpus.Corpus
	cfg      *config.Config
	alphas   []float64 // document topic mixture hyperparameters
	beta     float64   // topic word mixture hyperparameter
	topicNum uint32
	rng      *rand.Rand

	wt  *matrix.Uint32Matrix // word-topic count table
	dt  *matrix.Uint32Matrix // doc-topic count table
	wts *matrix.Uint32Matrix // word-topic-sum count table
	dwt [][]uint32           // dwt[d][i] = topic of the i-th token of doc d

	probs []float64
}

// NewLDA creates a LDA instance with collapsed gibbs sampler
func NewLDA(dat *corpus.Corpus, cfg *config.Config) Model {
	return newLDA(dat, cfg)
}

func newLDA(dat *corpus.Corpus, cfg *config.Config) *LDA {
	return &LDA{
		data:     dat,
		cfg:      cfg,
		beta:     cfg.Beta,
		topicNum: uint32(cfg.Topics),
	}
}

func (this *LDA) Initialize() error {
	if this.topicNum == 0 {
		return fmt.Errorf("%w: no topics", config.ErrInvalid)
	}
	if this.data.VocabSize == 0 {
		return fmt.Errorf("%w: empty vocabulary", config.ErrInvalid)
	}

	log.Infof("* Parameters")
	log.Infof("- num topics: %d", this.topicNum)
	log.Infof("- alpha: %g", this.cfg.Alpha)
	log.Infof("- beta: %g", this.beta)
	log.Infof("- rand seed: %d", this.cfg.Seed)

	this.rng = rand.New(rand.NewSource(this.cfg.Seed))

	this.wt = matrix.NewUint32Matrix(this.data.VocabSize, this.topicNum)
	this.dt = matrix.NewUint32Matrix(this.data.DocNum, this.topicNum)
	this.wts = matrix.NewUint32Matrix(this.topicNum, uint32(1))
	this.dwt = make([][]uint32, this.data.DocNum)
	for d, doc := range this.data.Docs {
		this.dwt[d] = make([]uint32, len(doc))
	}

	this.alphas = make([]float64, this.topicNum)
	for k := range this.alphas {
		this.alphas[k] = this.cfg.Alpha
	}
	this.probs = make([]float64, this.topicNum)
	return nil
}

func (this *LDA) Preprocess() {
	this.preprocess(this)
}

// randomly assign topic to word
func (this *LDA) preprocess(tm tokenModel) {
	uniform := make([]float64, this.topicNum)
	for k := range uniform {
		uniform[k] = 1.0 / float64(this.topicNum)
	}
	for d, doc := range this.data.Docs {
		for i, w := range doc {
			k := uint32(util.Multi(this.rng, uniform))
			tm.insert(uint32(d), w, k)
			this.dwt[d][i] = k
		}
	}
}

func (this *LDA) Resample() {
	this.sweep(this)
}

// collapsed gibbs sampling over every token in corpus order
func (this *LDA) sweep(tm tokenModel) {
	for d, doc := range this.data.Docs {
		for i, w := range doc {
			k := this.dwt[d][i]

			// decrease corresponding sufficient statistics
			tm.remove(uint32(d), w, k)

			// resample the topic
			tm.calcProbs(uint32(d), w, this.probs)
			k = uint32(util.Multi(this.rng, this.probs))

			// increase corresponding sufficient statistics
			tm.insert(uint32(d), w, k)
			this.dwt[d][i] = k
		}
	}
}

func (this *LDA) remove(d, w, k uint32) {
	this.dt.Decr(d, k, uint32(1))
	this.wt.Decr(w, k, uint32(1))
	this.wts.Decr(k, uint32(0), uint32(1))
}

func (this *LDA) insert(d, w, k uint32) {
	this.dt.Incr(d, k, uint32(1))
	this.wt.Incr(w, k, uint32(1))
	this.wts.Incr(k, uint32(0), uint32(1))
}

func (this *LDA) calcProbs(d, w uint32, probs []float64) {
	vocab := float64(this.data.VocabSize)
	docRow := this.dt.Row(d)
	wordRow := this.wt.Row(w)
	for k := uint32(0); k < this.topicNum; k += 1 {
		probs[k] = (float64(wordRow[k]) + this.beta) * (float64(docRow[k]) + this.alphas[k])
		denom := float64(this.wts.Get(k, uint32(0))) + this.beta*vocab
		if denom > 0 {
			probs[k] /= denom
		} else if log.V(1) {
			log.Warningf("calc probs: zero denominator for topic %d", k)
		}
	}
	if !util.Normalize(probs) {
		log.V(1).Infof("calc probs: zero mass for doc %d word %d, using uniform", d, w)
	}
}

// hyperparameter update by Minka's fixed point iteration
// cf. https://tminka.github.io/papers/dirichlet/minka-dirichlet.pdf
func (this *LDA) UpdateParams() {
	sumAlpha := 0.0
	for _, a := range this.alphas {
		sumAlpha += a
	}
	for k := uint32(0); k < this.topicNum; k += 1 {
		num, denom := 0.0, 0.0
		for d := uint32(0); d < this.data.DocNum; d += 1 {
			num += util.Digamma(float64(this.dt.Get(d, k))+this.alphas[k]) - util.Digamma(this.alphas[k])
			denom += util.Digamma(float64(this.data.DocLen(d))+sumAlpha) - util.Digamma(sumAlpha)
		}
		if num <= 0 || denom <= 0 {
			log.V(1).Infof("update params: invalid update for topic %d", k)
			num += minAlpha
			denom += minAlpha
		}
		this.alphas[k] = this.alphas[k] * num / denom
		if this.alphas[k] < minAlpha {
			this.alphas[k] = minAlpha
		}
	}
}

// compute the posterior point estimation of word-topic mixture
// beta (Dirichlet prior) + data -> phi, one row per topic
func (this *LDA) Phi() *matrix.Float64Matrix {
	phi := matrix.NewFloat64Matrix(this.topicNum, this.data.VocabSize)
	for k := uint32(0); k < this.topicNum; k += 1 {
		row := phi.Row(k)
		for v := uint32(0); v < this.data.VocabSize; v += 1 {
			row[v] = float64(this.wt.Get(v, k)) + this.beta
		}
	}
	phi.NormalizeRows()
	return phi
}

// compute the posterior point estimation of document-topic mixture
// alpha (Dirichlet prior) + data -> theta
func (this *LDA) Theta() *matrix.Float64Matrix {
	theta := matrix.NewFloat64Matrix(this.data.DocNum, this.topicNum)
	for d := uint32(0); d < this.data.DocNum; d += 1 {
		row := theta.Row(d)
		for k, cnt := range this.dt.Row(d) {
			row[k] = float64(cnt) + this.alphas[k]
		}
	}
	theta.NormalizeRows()
	return theta
}

func (this *LDA) Perplexity() float64 {
	return perplexity(this.data, this.Phi(), this.Theta())
}

// perplexity = exp(-1/N sum_{d,i} log sum_z theta[d][z] phi[z][w_di])
func perplexity(data *corpus.Corpus, phi, theta *matrix.Float64Matrix) float64 {
	topicNum, _ := phi.Shape()
	lik := 0.0
	for d, doc := range data.Docs {
		thetaRow := theta.Row(uint32(d))
		for _, w := range doc {
			prob := 0.0
			for k := uint32(0); k < topicNum; k += 1 {
				prob += thetaRow[k] * phi.Get(k, w)
			}
			if !(prob > 0) {
				panic(fmt.Sprintf("perplexity: token probability %g for doc %d word %d", prob, d, w))
			}
			lik += math.Log(prob)
		}
	}
	if data.TermNum == 0 {
		return math.NaN()
	}
	return math.Exp(-lik / float64(data.TermNum))
}

func (this *LDA) Save(prefix string) error {
	return this.saveParams(prefix, this.Phi())
}

// serialize prefix.theta (docs x topics), prefix.phi (words x topics) and
// the raw word-topic counts prefix.smp (words x topics)
func (this *LDA) saveParams(prefix string, phi *matrix.Float64Matrix) error {
	if err := matrix.Float64Serialize(this.Theta(), prefix+".theta"); err != nil {
		return err
	}
	if err := matrix.Float64Serialize(phi.Transpose(), prefix+".phi"); err != nil {
		return err
	}
	if err := matrix.Uint32Serialize(this.wt, prefix+".smp"); err != nil {
		return err
	}
	log.V(1).Infof("wrote to %s.*", prefix)
	return nil
}

// Alphas returns a copy of the current topic concentrations
func (this *LDA) Alphas() []float64 {
	return append([]float64(nil), this.alphas...)
}
