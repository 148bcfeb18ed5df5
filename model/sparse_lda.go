package model

import (
	"github.com/hakobayato/ldadf/config"
	"github.com/hakobayato/ldadf/corpus"
	"github.com/hakobayato/ldadf/matrix"
	"github.com/hakobayato/ldadf/util"
)

func init() {
	Register("sparselda", NewSparseLDA)
}

// SparseLDA draws from the same conditional as LDA but splits it into
// three buckets (Yao et al., 2009):
//
//	p(k) ∝ alpha_k*beta/(n_k+beta*V)          smoothing bucket
//	     + n_dk*beta/(n_k+beta*V)             document-topic bucket
//	     + n_wk*(alpha_k+n_dk)/(n_k+beta*V)   word-topic bucket
//
// only the topics with nonzero counts are visited for the last two.
type SparseLDA struct {
	lda *LDA
	wtm *matrix.SortedCounts // word-topic counts sorted by count

	smoothingBucket float64
	docTopicBucket  float64
	wtbCache        []float64 // wtbCache[k] = (alpha_k+n_dk)/(n_k+beta*V)
}

// NewSparseLDA creates a sparse lda instance with time
// and memory efficient gibbs sampler
func NewSparseLDA(dat *corpus.Corpus, cfg *config.Config) Model {
	return &SparseLDA{lda: newLDA(dat, cfg)}
}

func (this *SparseLDA) Initialize() error {
	if err := this.lda.Initialize(); err != nil {
		return err
	}
	this.wtm = matrix.NewSortedCounts(this.lda.data.VocabSize, this.lda.topicNum)
	this.wtbCache = make([]float64, this.lda.topicNum)
	return nil
}

func (this *SparseLDA) Preprocess() {
	this.lda.preprocess(this)
}

func (this *SparseLDA) remove(d, w, k uint32) {
	this.lda.remove(d, w, k)
	this.wtm.Decr(w, k, uint32(1))
}

func (this *SparseLDA) insert(d, w, k uint32) {
	this.lda.insert(d, w, k)
	this.wtm.Incr(w, k, uint32(1))
}

func (this *SparseLDA) calcProbs(d, w uint32, probs []float64) {
	this.lda.calcProbs(d, w, probs)
}

func (this *SparseLDA) denom(k uint32) float64 {
	return this.lda.beta*float64(this.lda.data.VocabSize) + float64(this.lda.wts.Get(k, uint32(0)))
}

// take the bucket terms of topic k out before its counts change
func (this *SparseLDA) bucketsOut(d, k uint32) {
	denom := this.denom(k)
	this.smoothingBucket -= this.lda.alphas[k] * this.lda.beta / denom
	this.docTopicBucket -= this.lda.beta * float64(this.lda.dt.Get(d, k)) / denom
}

// put the bucket terms of topic k back after its counts changed
func (this *SparseLDA) bucketsIn(d, k uint32) {
	denom := this.denom(k)
	ndk := float64(this.lda.dt.Get(d, k))
	this.smoothingBucket += this.lda.alphas[k] * this.lda.beta / denom
	this.docTopicBucket += this.lda.beta * ndk / denom
	this.wtbCache[k] = (this.lda.alphas[k] + ndk) / denom
}

// compute the document dependent bucket and cache
func (this *SparseLDA) startDoc(d uint32) {
	this.docTopicBucket = 0.0
	for k := uint32(0); k < this.lda.topicNum; k += 1 {
		denom := this.denom(k)
		ndk := float64(this.lda.dt.Get(d, k))
		this.docTopicBucket += this.lda.beta * ndk / denom
		this.wtbCache[k] = (this.lda.alphas[k] + ndk) / denom
	}
}

func (this *SparseLDA) Resample() {
	// alphas may have changed since the last round
	this.smoothingBucket = 0.0
	for k := uint32(0); k < this.lda.topicNum; k += 1 {
		this.smoothingBucket += this.lda.alphas[k] * this.lda.beta / this.denom(k)
	}

	// fast sparse gibbs sampling
	for d, doc := range this.lda.data.Docs {
		this.startDoc(uint32(d))
		for i, w := range doc {
			k := this.lda.dwt[d][i]

			// decrease corresponding sufficient statistics
			this.bucketsOut(uint32(d), k)
			this.remove(uint32(d), w, k)
			this.bucketsIn(uint32(d), k)

			k = this.draw(uint32(d), w)

			// increase corresponding sufficient statistics
			this.bucketsOut(uint32(d), k)
			this.insert(uint32(d), w, k)
			this.bucketsIn(uint32(d), k)
			this.lda.dwt[d][i] = k
		}
	}
}

// draw a topic for word w of document d from the buckets
func (this *SparseLDA) draw(d, w uint32) uint32 {
	// compute word-topic bucket sum
	wtbSum := 0.0
	for idx := 0; idx < this.wtm.Len(w); idx += 1 {
		tid, count := this.wtm.Entry(w, idx)
		wtbSum += this.wtbCache[tid] * float64(count)
	}

	u := this.lda.rng.Float64() * (wtbSum + this.docTopicBucket + this.smoothingBucket)
	if u < wtbSum { // word-topic bucket
		cumsum := 0.0
		tid := uint32(0)
		for idx := 0; idx < this.wtm.Len(w); idx += 1 {
			var count uint32
			tid, count = this.wtm.Entry(w, idx)
			cumsum += this.wtbCache[tid] * float64(count)
			if cumsum > u {
				break
			}
		}
		return tid
	}

	u -= wtbSum
	last := uint32(0)
	if u < this.docTopicBucket { // doc-topic bucket
		cumsum := 0.0
		for k := uint32(0); k < this.lda.topicNum; k += 1 {
			ndk := this.lda.dt.Get(d, k)
			if ndk == 0 {
				continue
			}
			last = k
			cumsum += this.lda.beta * float64(ndk) / this.denom(k)
			if cumsum > u {
				return k
			}
		}
		return last
	}

	// smoothing bucket
	u -= this.docTopicBucket
	cumsum := 0.0
	for k := uint32(0); k < this.lda.topicNum; k += 1 {
		cumsum += this.lda.alphas[k] * this.lda.beta / this.denom(k)
		if cumsum > u {
			return k
		}
	}
	return this.lda.topicNum - 1
}

// bucketProbs is the normalized topic distribution the buckets draw from
func (this *SparseLDA) bucketProbs(d, w uint32, probs []float64) {
	this.startDoc(d)
	for k := uint32(0); k < this.lda.topicNum; k += 1 {
		denom := this.denom(k)
		probs[k] = this.lda.alphas[k]*this.lda.beta/denom +
			this.lda.beta*float64(this.lda.dt.Get(d, k))/denom
	}
	for idx := 0; idx < this.wtm.Len(w); idx += 1 {
		tid, count := this.wtm.Entry(w, idx)
		probs[tid] += this.wtbCache[tid] * float64(count)
	}
	util.Normalize(probs)
}

func (this *SparseLDA) UpdateParams() {
	this.lda.UpdateParams()
}

func (this *SparseLDA) Perplexity() float64 {
	return this.lda.Perplexity()
}

func (this *SparseLDA) Phi() *matrix.Float64Matrix {
	return this.lda.Phi()
}

func (this *SparseLDA) Theta() *matrix.Float64Matrix {
	return this.lda.Theta()
}

func (this *SparseLDA) Save(prefix string) error {
	return this.lda.Save(prefix)
}
