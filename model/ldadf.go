package model

import (
	"fmt"
	"math"

	log "github.com/golang/glog"

	"github.com/hakobayato/ldadf/config"
	"github.com/hakobayato/ldadf/constraint"
	"github.com/hakobayato/ldadf/corpus"
	"github.com/hakobayato/ldadf/matrix"
	"github.com/hakobayato/ldadf/util"
)

func init() {
	Register("ldadf", NewLDADF)
}

// LDADF is LDA with a forest of constraint trees as the topic-word prior.
// Every topic is owned by one tree which shapes its word distribution,
// ownership is resampled once per round before the token sweep.
type LDADF struct {
	lda    *LDA
	forest constraint.Forest
	eta    float64

	dz   []uint32               // dz[z] = tree owning topic z
	ctz  *matrix.Uint32Matrix   // tree-topic count of non independent tokens
	ctze []*matrix.Uint32Matrix // ctze[t] is topics x partitions of tree t

	numNonNp []uint32   // numNonNp[t] = W - |np of tree t|
	free     [][]uint32 // free[t] = unconstrained words of tree t

	treeProbs []float64
}

// NewLDADF creates a constrained sampler reading its forest from cfg.Forest
func NewLDADF(dat *corpus.Corpus, cfg *config.Config) Model {
	return newLDADF(dat, cfg, nil)
}

// a nil forest is loaded from cfg.Forest on Initialize
func newLDADF(dat *corpus.Corpus, cfg *config.Config, forest constraint.Forest) *LDADF {
	return &LDADF{
		lda:    newLDA(dat, cfg),
		forest: forest,
		eta:    cfg.Eta,
	}
}

func (this *LDADF) Initialize() error {
	if err := this.lda.Initialize(); err != nil {
		return err
	}
	log.Infof("- dnf file: %s", this.lda.cfg.Forest)
	log.Infof("- eta: %g", this.eta)

	if this.forest == nil {
		forest, err := constraint.LoadForest(this.lda.cfg.Forest)
		if err != nil {
			return err
		}
		this.forest = forest
	}
	if len(this.forest) == 0 {
		return fmt.Errorf("%w: empty constraint forest", config.ErrInvalid)
	}
	log.Infof("# dtrees: %d", len(this.forest))

	vocab := this.lda.data.VocabSize
	if maxWord := this.forest.MaxWord(); maxWord >= int(vocab) {
		return fmt.Errorf("%w: word %d, vocabulary size %d", constraint.ErrBadWordID, maxWord, vocab)
	}

	topicNum := this.lda.topicNum
	treeNum := uint32(len(this.forest))
	this.ctz = matrix.NewUint32Matrix(treeNum, topicNum)
	this.ctze = make([]*matrix.Uint32Matrix, treeNum)
	this.numNonNp = make([]uint32, treeNum)
	this.free = make([][]uint32, treeNum)
	for t, tree := range this.forest {
		this.ctze[t] = matrix.NewUint32Matrix(topicNum, uint32(len(tree.Partitions)))
		this.numNonNp[t] = vocab - uint32(len(tree.Independent))
		if this.numNonNp[t] == 0 {
			return fmt.Errorf("%w: tree %d makes every word independent", config.ErrInvalid, t)
		}
		this.free[t] = make([]uint32, 0, int(vocab)-tree.ConstrainedCount())
		for w := uint32(0); w < vocab; w += 1 {
			if tree.TypeOf(w) == constraint.Unconstrained {
				this.free[t] = append(this.free[t], w)
			}
		}
	}
	this.dz = make([]uint32, topicNum)
	this.treeProbs = make([]float64, treeNum)
	return nil
}

func (this *LDADF) Preprocess() {
	// tree ownership proportional to the size of the non independent side
	for t := range this.forest {
		this.treeProbs[t] = float64(this.numNonNp[t])
	}
	util.Normalize(this.treeProbs)
	for z := range this.dz {
		this.dz[z] = uint32(util.Multi(this.lda.rng, this.treeProbs))
	}

	this.lda.preprocess(this)
}

func (this *LDADF) Resample() {
	this.resampleTrees()
	this.lda.sweep(this)
}

func (this *LDADF) resampleTrees() {
	for z := uint32(0); z < this.lda.topicNum; z += 1 {
		this.calcDTreeProbs(z, this.treeProbs)
		this.dz[z] = uint32(util.Multi(this.lda.rng, this.treeProbs))
	}
}

func (this *LDADF) remove(d, w, z uint32) {
	this.lda.remove(d, w, z)
	for t, tree := range this.forest {
		switch typ, e := tree.Lookup(w); typ {
		case constraint.PartitionMember:
			this.ctz.Decr(uint32(t), z, uint32(1))
			this.ctze[t].Decr(z, uint32(e), uint32(1))
		case constraint.Unconstrained:
			this.ctz.Decr(uint32(t), z, uint32(1))
		}
	}
}

func (this *LDADF) insert(d, w, z uint32) {
	this.lda.insert(d, w, z)
	for t, tree := range this.forest {
		switch typ, e := tree.Lookup(w); typ {
		case constraint.PartitionMember:
			this.ctz.Incr(uint32(t), z, uint32(1))
			this.ctze[t].Incr(z, uint32(e), uint32(1))
		case constraint.Unconstrained:
			this.ctz.Incr(uint32(t), z, uint32(1))
		}
	}
}

func (this *LDADF) calcProbs(d, w uint32, probs []float64) {
	docRow := this.lda.dt.Row(d)
	for z := uint32(0); z < this.lda.topicNum; z += 1 {
		probs[z] = (float64(docRow[z]) + this.lda.alphas[z]) * this.calcProbWeight(w, z)
	}
	if !util.Normalize(probs) {
		log.V(1).Infof("calc probs: zero mass for doc %d word %d, using uniform", d, w)
	}
}

// posterior probability of every tree owning topic z, the log marginal
// likelihoods are normalized with the log-sum-exp trick
func (this *LDADF) calcDTreeProbs(z uint32, probs []float64) {
	for t := range this.forest {
		probs[t] = this.calcDTreeProbWeight(z, uint32(t))
	}
	if !util.LogNormalize(probs) {
		log.V(1).Infof("calc dtree probs: degenerate weights for topic %d", z)
	}
}

// log marginal likelihood of the words of topic z under tree t. The root
// splits into the independent words and the non independent node, which
// splits into the unconstrained leaves and one node per partition.
func (this *LDADF) calcDTreeProbWeight(z, t uint32) float64 {
	tree := this.forest[t]
	beta, eta := this.lda.beta, this.eta
	numNp := float64(len(tree.Independent))
	numNonNp := float64(this.numNonNp[t])
	cz := float64(this.lda.wts.Get(z, uint32(0)))
	ctz := float64(this.ctz.Get(t, z))
	lg := util.LogGamma

	// number of trees of this size
	prob := math.Log(numNonNp)

	// root node
	prob += lg(beta*eta*numNonNp+beta*numNp) - lg(cz+beta*eta*numNonNp+beta*numNp)
	prob += lg(ctz+beta*eta*numNonNp) - lg(beta*eta*numNonNp)
	for _, w := range tree.Independent {
		prob += lg(float64(this.lda.wt.Get(w, z))+beta) - lg(beta)
	}

	// non independent node
	prob += lg(beta*numNonNp) - lg(ctz+beta*numNonNp)
	for _, w := range this.free[t] {
		prob += lg(float64(this.lda.wt.Get(w, z))+beta) - lg(beta)
	}
	ctze := this.ctze[t].Row(z)
	for e, ep := range tree.Partitions {
		numEp := float64(len(ep))
		prob += lg(float64(ctze[e])+beta*numEp) - lg(beta*numEp)
	}

	// partition nodes
	for e, ep := range tree.Partitions {
		numEp := float64(len(ep))
		prob += lg(beta*eta*numEp) - lg(float64(ctze[e])+beta*eta*numEp)
		for _, w := range ep {
			prob += lg(float64(this.lda.wt.Get(w, z))+beta*eta) - lg(beta*eta)
		}
	}
	return prob
}

// predictive weight of word w in topic z under the tree owning z
func (this *LDADF) calcProbWeight(w, z uint32) float64 {
	t := this.dz[z]
	tree := this.forest[t]
	beta, eta := this.lda.beta, this.eta
	numNp := float64(len(tree.Independent))
	numNonNp := float64(this.numNonNp[t])
	cwz := float64(this.lda.wt.Get(w, z))
	cz := float64(this.lda.wts.Get(z, uint32(0)))
	ctz := float64(this.ctz.Get(t, z))
	root := cz + beta*eta*numNonNp + beta*numNp

	switch typ, e := tree.Lookup(w); typ {
	case constraint.PartitionMember:
		numEp := float64(len(tree.Partitions[e]))
		ctze := float64(this.ctze[t].Get(z, uint32(e)))
		prob := (cwz + beta*eta) / (ctze + beta*eta*numEp)
		prob *= (ctze + beta*numEp) / (ctz + beta*numNonNp)
		prob *= (ctz + beta*eta*numNonNp) / root
		return prob
	case constraint.Independent:
		return (cwz + beta) / root
	default:
		prob := (cwz + beta) / (ctz + beta*numNonNp)
		prob *= (ctz + beta*eta*numNonNp) / root
		return prob
	}
}

func (this *LDADF) UpdateParams() {
	this.lda.UpdateParams()
}

// topic-word distribution from the tree-aware weights, topics x words
func (this *LDADF) Phi() *matrix.Float64Matrix {
	phi := matrix.NewFloat64Matrix(this.lda.topicNum, this.lda.data.VocabSize)
	for z := uint32(0); z < this.lda.topicNum; z += 1 {
		row := phi.Row(z)
		for w := range row {
			row[w] = this.calcProbWeight(uint32(w), z)
		}
	}
	phi.NormalizeRows()
	return phi
}

func (this *LDADF) Theta() *matrix.Float64Matrix {
	return this.lda.Theta()
}

func (this *LDADF) Perplexity() float64 {
	return perplexity(this.lda.data, this.Phi(), this.Theta())
}

// Save writes the base snapshot plus prefix.dti, the tree index of every
// topic on one row
func (this *LDADF) Save(prefix string) error {
	if err := this.lda.saveParams(prefix, this.Phi()); err != nil {
		return err
	}
	dti := matrix.NewUint32Matrix(uint32(1), this.lda.topicNum)
	for z, t := range this.dz {
		dti.Set(uint32(0), uint32(z), t)
	}
	return matrix.Uint32Serialize(dti, prefix+".dti")
}

// Ownership returns a copy of the topic to tree assignment
func (this *LDADF) Ownership() []uint32 {
	return append([]uint32(nil), this.dz...)
}
