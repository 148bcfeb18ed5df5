package model

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakobayato/ldadf/config"
	"github.com/hakobayato/ldadf/constraint"
	"github.com/hakobayato/ldadf/matrix"
)

func newTestLDADF(t *testing.T, forest constraint.Forest) *LDADF {
	cfg := testConfig(1.0, 0.01)
	cfg.Eta = 10
	if forest == nil {
		cfg.Forest = "testdata/test.dnf"
	}
	m := newLDADF(loadTestCorpus(t), cfg, forest)
	require.NoError(t, m.Initialize())
	return m
}

func parseForest(t *testing.T, text string) constraint.Forest {
	forest, err := constraint.ReadForest(strings.NewReader(text))
	require.NoError(t, err)
	return forest
}

// tokens placed by hand, tree 0 owns topic 0 and tree 1 owns topic 1
func insertFixed(m *LDADF, docs []uint32) {
	m.dz[0] = 0
	m.dz[1] = 1
	for i := 0; i < 4; i += 1 {
		m.insert(docs[0], 0, 1)
		m.insert(docs[1], 0, 0)
		m.insert(docs[2], 1, 1)
		m.insert(docs[3], 2, 0)
	}
}

func assertTreeCounts(t *testing.T, m *LDADF) {
	for tr, tree := range m.forest {
		for z := uint32(0); z < m.lda.topicNum; z += 1 {
			ctz := uint32(0)
			ctze := make([]uint32, len(tree.Partitions))
			for w := uint32(0); w < m.lda.data.VocabSize; w += 1 {
				switch typ, e := tree.Lookup(w); typ {
				case constraint.PartitionMember:
					ctze[e] += m.lda.wt.Get(w, z)
					ctz += m.lda.wt.Get(w, z)
				case constraint.Unconstrained:
					ctz += m.lda.wt.Get(w, z)
				}
			}
			assert.Equal(t, ctz, m.ctz.Get(uint32(tr), z))
			assert.Equal(t, ctze, m.ctze[tr].GetRow(z))
		}
	}
}

func TestLDADFInitialize(t *testing.T) {
	m := newTestLDADF(t, nil)

	require.Len(t, m.forest, 2)
	r, c := m.ctz.Shape()
	assert.Equal(t, uint32(2), r)
	assert.Equal(t, uint32(2), c)
	require.Len(t, m.ctze, 2)
	for tr, tree := range m.forest {
		r, c := m.ctze[tr].Shape()
		assert.Equal(t, uint32(2), r)
		assert.Equal(t, uint32(len(tree.Partitions)), c)
		assert.Equal(t, uint64(0), m.ctze[tr].Sum())
	}
	assert.Equal(t, uint64(0), m.ctz.Sum())
	assert.Len(t, m.dz, 2)

	assert.Equal(t, []uint32{1, 2}, m.numNonNp)
	assert.Equal(t, []uint32{2}, m.free[0])
	assert.Empty(t, m.free[1])
	for tr, tree := range m.forest {
		assert.Len(t, m.free[tr], int(m.lda.data.VocabSize)-tree.ConstrainedCount())
	}
}

func TestLDADFInitializeBadForest(t *testing.T) {
	cfg := testConfig(1.0, 0.01)

	m := newLDADF(loadTestCorpus(t), cfg, parseForest(t, "0,5;1\n"))
	assert.ErrorIs(t, m.Initialize(), constraint.ErrBadWordID)

	m = newLDADF(loadTestCorpus(t), cfg, parseForest(t, ";0,1,2\n"))
	assert.ErrorIs(t, m.Initialize(), config.ErrInvalid)

	m = newLDADF(loadTestCorpus(t), cfg, constraint.Forest{})
	assert.ErrorIs(t, m.Initialize(), config.ErrInvalid)

	cfg.Forest = filepath.Join(t.TempDir(), "missing.dnf")
	m = newLDADF(loadTestCorpus(t), cfg, nil)
	assert.Error(t, m.Initialize())
}

func TestLDADFPreprocess(t *testing.T) {
	m := newTestLDADF(t, nil)
	m.Preprocess()

	assertLDACounts(t, m.lda)
	assertTreeCounts(t, m)
	for _, tr := range m.dz {
		assert.Less(t, tr, uint32(len(m.forest)))
	}
}

func TestLDADFResample(t *testing.T) {
	m := newTestLDADF(t, nil)
	m.Preprocess()
	for i := 0; i < 5; i += 1 {
		m.Resample()
		assertLDACounts(t, m.lda)
		assertTreeCounts(t, m)
		for _, tr := range m.Ownership() {
			assert.Less(t, tr, uint32(len(m.forest)))
		}
	}
}

func TestLDADFInsertRemove(t *testing.T) {
	m := newTestLDADF(t, nil)
	insertFixed(m, []uint32{0, 1, 2, 3})

	assert.Equal(t, uint32(4), m.lda.dt.Get(0, 1))
	assert.Equal(t, uint32(4), m.lda.dt.Get(1, 0))
	assert.Equal(t, uint32(4), m.lda.dt.Get(2, 1))
	assert.Equal(t, uint32(4), m.lda.dt.Get(3, 0))
	assert.Equal(t, uint32(0), m.lda.dt.Get(0, 0))
	assert.Equal(t, uint32(0), m.lda.dt.Get(3, 1))
	assert.Equal(t, uint32(8), m.lda.wts.Get(0, 0))
	assert.Equal(t, uint32(8), m.lda.wts.Get(1, 0))
	assert.Equal(t, []uint32{4, 4}, m.lda.wt.GetRow(0))
	assert.Equal(t, []uint32{0, 4}, m.lda.wt.GetRow(1))
	assert.Equal(t, []uint32{4, 0}, m.lda.wt.GetRow(2))

	assert.Equal(t, uint32(4), m.ctz.Get(0, 0))
	assert.Equal(t, uint32(0), m.ctz.Get(0, 1))
	assert.Equal(t, uint32(4), m.ctz.Get(1, 0))
	assert.Equal(t, uint32(8), m.ctz.Get(1, 1))
	assert.Equal(t, uint32(8), m.ctze[1].Get(1, 0))
	assert.Equal(t, uint32(4), m.ctze[1].Get(0, 0))
	assertTreeCounts(t, m)

	for i := 0; i < 4; i += 1 {
		m.remove(0, 0, 1)
		m.remove(1, 0, 0)
		m.remove(2, 1, 1)
		m.remove(3, 2, 0)
	}
	assert.Equal(t, uint64(0), m.lda.dt.Sum())
	assert.Equal(t, uint64(0), m.lda.wt.Sum())
	assert.Equal(t, uint64(0), m.lda.wts.Sum())
	assert.Equal(t, uint64(0), m.ctz.Sum())
	assert.Equal(t, uint64(0), m.ctze[1].Sum())
}

func TestLDADFCalcDTreeProbs(t *testing.T) {
	m := newTestLDADF(t, nil)
	insertFixed(m, []uint32{0, 0, 0, 0})

	beta, eta := 0.01, 10.0
	g := math.Gamma
	probs := make([]float64, 2)
	norm := func(v []float64) []float64 {
		s := v[0] + v[1]
		return []float64{v[0] / s, v[1] / s}
	}

	m.calcDTreeProbs(0, probs)
	// ";0,1": np = {0,1}, word 2 unconstrained
	np, nonNp := 2.0, 1.0
	t0 := nonNp *
		g(beta*eta*nonNp+beta*np) / g(8+beta*eta*nonNp+beta*np) *
		g(4+beta*eta*nonNp) / g(beta*eta*nonNp) *
		g(4+beta) / g(beta) *
		g(0+beta) / g(beta) *
		g(beta*nonNp) / g(4+beta*nonNp) *
		g(4+beta) / g(beta)
	// "0,1;2": one partition {0,1}, np = {2}
	np, nonNp = 1.0, 2.0
	ep := 2.0
	t1 := nonNp *
		g(beta*eta*nonNp+beta*np) / g(8+beta*eta*nonNp+beta*np) *
		g(4+beta*eta*nonNp) / g(beta*eta*nonNp) *
		g(4+beta) / g(beta) *
		g(beta*nonNp) / g(4+beta*nonNp) *
		g(4+beta*ep) / g(beta*ep) *
		g(beta*eta*ep) / g(4+beta*eta*ep) *
		g(4+beta*eta) / g(beta*eta) *
		g(0+beta*eta) / g(beta*eta)
	assert.InDeltaSlice(t, norm([]float64{t0, t1}), probs, delta)

	m.calcDTreeProbs(1, probs)
	np, nonNp = 2.0, 1.0
	t0 = nonNp *
		g(beta*eta*nonNp+beta*np) / g(8+beta*eta*nonNp+beta*np) *
		g(0+beta*eta*nonNp) / g(beta*eta*nonNp) *
		g(4+beta) / g(beta) *
		g(4+beta) / g(beta) *
		g(beta*nonNp) / g(0+beta*nonNp) *
		g(0+beta) / g(beta)
	np, nonNp = 1.0, 2.0
	t1 = nonNp *
		g(beta*eta*nonNp+beta*np) / g(8+beta*eta*nonNp+beta*np) *
		g(8+beta*eta*nonNp) / g(beta*eta*nonNp) *
		g(0+beta) / g(beta) *
		g(beta*nonNp) / g(8+beta*nonNp) *
		g(8+beta*ep) / g(beta*ep) *
		g(beta*eta*ep) / g(8+beta*eta*ep) *
		g(4+beta*eta) / g(beta*eta) *
		g(4+beta*eta) / g(beta*eta)
	assert.InDeltaSlice(t, norm([]float64{t0, t1}), probs, delta)
}

func TestLDADFCalcDTreeProbsForest(t *testing.T) {
	// (ML(0,1) | ML(0,2)) & CL(1,2)
	m := newTestLDADF(t, parseForest(t, ";1,0\n0,1;2\n0,2;1\n;2,0"))

	hz := [][]uint32{
		{1, 0, 1, 1},
		{0, 1, 0, 0},
		{1, 1, 1, 1},
		{0, 1, 1, 1},
	}
	for d, doc := range m.lda.data.Docs {
		for i, w := range doc {
			m.insert(uint32(d), w, hz[d][i])
		}
	}

	truth := [][]float64{
		{0.0764325, 0.0770787, 0.839471, 0.0070179},
		{0.0410388, 0.47415, 0.440653, 0.0441584},
	}
	probs := make([]float64, len(m.forest))
	for z, row := range truth {
		m.calcDTreeProbs(uint32(z), probs)
		assert.InDeltaSlice(t, row, probs, delta)
	}
}

func TestLDADFCalcProbWeight(t *testing.T) {
	m := newTestLDADF(t, nil)
	insertFixed(m, []uint32{0, 0, 0, 0})

	beta, eta := 0.01, 10.0

	// topic 0 owned by ";0,1"
	np, nonNp := 2.0, 1.0
	root := 8 + beta*eta*nonNp + beta*np
	assert.InDelta(t, (4+beta)/root, m.calcProbWeight(0, 0), 1e-12)
	assert.InDelta(t, beta/root, m.calcProbWeight(1, 0), 1e-12)
	assert.InDelta(t, (4+beta)/(4+beta*nonNp)*(4+beta*eta*nonNp)/root,
		m.calcProbWeight(2, 0), 1e-12)

	// topic 1 owned by "0,1;2"
	np, nonNp = 1.0, 2.0
	ep := 2.0
	root = 8 + beta*eta*nonNp + beta*np
	member := (4 + beta*eta) / (8 + beta*eta*ep) *
		(8 + beta*ep) / (8 + beta*nonNp) *
		(8 + beta*eta*nonNp) / root
	assert.InDelta(t, member, m.calcProbWeight(0, 1), 1e-12)
	assert.InDelta(t, member, m.calcProbWeight(1, 1), 1e-12)
	assert.InDelta(t, beta/root, m.calcProbWeight(2, 1), 1e-12)
}

func TestLDADFNormalization(t *testing.T) {
	m := newTestLDADF(t, parseForest(t, ";1,0\n0,1;2\n0,2;1\n;2,0"))
	m.Preprocess()
	m.Resample()

	probs := make([]float64, 2)
	for d, doc := range m.lda.data.Docs {
		for _, w := range doc {
			m.calcProbs(uint32(d), w, probs)
			assert.InDelta(t, 1.0, probs[0]+probs[1], 1e-4)
		}
	}
	treeProbs := make([]float64, len(m.forest))
	for z := uint32(0); z < 2; z += 1 {
		m.calcDTreeProbs(z, treeProbs)
		sum := 0.0
		for _, p := range treeProbs {
			assert.GreaterOrEqual(t, p, 0.0)
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-4)
	}

	phi := m.Phi()
	for z := uint32(0); z < 2; z += 1 {
		sum := 0.0
		for _, p := range phi.Row(z) {
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-4)
	}
	pp := m.Perplexity()
	assert.False(t, math.IsNaN(pp))
	assert.Greater(t, pp, 1.0)
}

func TestLDADFSave(t *testing.T) {
	m := newTestLDADF(t, nil)
	m.Preprocess()
	m.Resample()

	prefix := filepath.Join(t.TempDir(), "out")
	require.NoError(t, m.Save(prefix))

	dti, err := matrix.Float64Deserialize(prefix + ".dti")
	require.NoError(t, err)
	r, c := dti.Shape()
	assert.Equal(t, uint32(1), r)
	assert.Equal(t, uint32(2), c)
	for z, tr := range m.Ownership() {
		assert.Equal(t, float64(tr), dti.Get(0, uint32(z)))
	}

	phi, err := matrix.Float64Deserialize(prefix + ".phi")
	require.NoError(t, err)
	r, c = phi.Shape()
	assert.Equal(t, uint32(3), r)
	assert.Equal(t, uint32(2), c)
	assert.InDelta(t, m.Phi().Get(1, 2), phi.Get(2, 1), delta)
}
