package model

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakobayato/ldadf/config"
	"github.com/hakobayato/ldadf/corpus"
	"github.com/hakobayato/ldadf/matrix"
)

const delta = 0.00001

func testConfig(alpha, beta float64) *config.Config {
	cfg := config.Default()
	cfg.Data = "testdata/test.dat"
	cfg.Topics = 2
	cfg.Alpha = alpha
	cfg.Beta = beta
	cfg.Seed = 0
	return cfg
}

func loadTestCorpus(t *testing.T) *corpus.Corpus {
	dat, err := corpus.Load("testdata/test.dat")
	require.NoError(t, err)
	return dat
}

func newTestLDA(t *testing.T) *LDA {
	m := newLDA(loadTestCorpus(t), testConfig(0.1, 0.1))
	require.NoError(t, m.Initialize())
	return m
}

// all tokens of the corpus counted as topic 0 of document 0
func setToyCounts(m *LDA) {
	n := m.data.TermNum
	m.wts.Set(0, 0, n)
	m.dt.Set(0, 0, n)
	m.wt.Set(0, 0, n)
}

func assertLDACounts(t *testing.T, m *LDA) {
	assert.Equal(t, uint64(m.data.TermNum), m.wts.Sum())
	assert.Equal(t, uint64(m.data.TermNum), m.dt.Sum())
	for d := uint32(0); d < m.data.DocNum; d += 1 {
		sum := uint32(0)
		for _, cnt := range m.dt.Row(d) {
			sum += cnt
		}
		assert.Equal(t, m.data.DocLen(d), sum)
	}
	for k := uint32(0); k < m.topicNum; k += 1 {
		sum := uint32(0)
		for _, cnt := range m.wt.GetCol(k) {
			sum += cnt
		}
		assert.Equal(t, m.wts.Get(k, 0), sum)
	}
	// assignments agree with the tables
	dt := matrix.NewUint32Matrix(m.data.DocNum, m.topicNum)
	for d, doc := range m.data.Docs {
		require.Len(t, m.dwt[d], len(doc))
		for _, k := range m.dwt[d] {
			dt.Incr(uint32(d), k, 1)
		}
	}
	assert.True(t, dt.Equal(m.dt))
}

func TestLDAInitialize(t *testing.T) {
	m := newTestLDA(t)

	r, c := m.wt.Shape()
	assert.Equal(t, uint32(3), r)
	assert.Equal(t, uint32(2), c)
	r, c = m.dt.Shape()
	assert.Equal(t, uint32(4), r)
	assert.Equal(t, uint32(2), c)
	assert.Equal(t, uint64(0), m.wt.Sum())
	assert.Equal(t, uint64(0), m.dt.Sum())
	assert.Equal(t, uint64(0), m.wts.Sum())

	require.Len(t, m.dwt, 4)
	for _, hz := range m.dwt {
		assert.Equal(t, []uint32{0, 0, 0, 0}, hz)
	}
	assert.InDeltaSlice(t, []float64{0.1, 0.1}, m.Alphas(), delta)
}

func TestLDAInitializeNoTopics(t *testing.T) {
	cfg := testConfig(0.1, 0.1)
	cfg.Topics = 0
	m := newLDA(loadTestCorpus(t), cfg)
	assert.ErrorIs(t, m.Initialize(), config.ErrInvalid)
}

func TestLDAPreprocess(t *testing.T) {
	m := newTestLDA(t)
	m.Preprocess()
	assertLDACounts(t, m)
}

func TestLDARemoveInsert(t *testing.T) {
	m := newTestLDA(t)
	m.Preprocess()

	cz := m.wts.Get(0, 0)
	cdz := m.dt.Get(0, 0)
	cwz := m.wt.Get(0, 0)

	m.insert(0, 0, 0)
	assert.Equal(t, cz+1, m.wts.Get(0, 0))
	assert.Equal(t, cdz+1, m.dt.Get(0, 0))
	assert.Equal(t, cwz+1, m.wt.Get(0, 0))

	m.remove(0, 0, 0)
	assert.Equal(t, cz, m.wts.Get(0, 0))
	assert.Equal(t, cdz, m.dt.Get(0, 0))
	assert.Equal(t, cwz, m.wt.Get(0, 0))
}

func TestLDAResample(t *testing.T) {
	m := newTestLDA(t)
	m.Preprocess()
	for i := 0; i < 5; i += 1 {
		m.Resample()
		assertLDACounts(t, m)
	}
}

func TestLDACalcProbs(t *testing.T) {
	m := newTestLDA(t)
	setToyCounts(m)

	probs := make([]float64, 2)
	m.calcProbs(0, 0, probs)

	alpha, beta := 0.1, 0.1
	n, w := 16.0, 3.0
	truth := []float64{
		(n + beta) * (n + alpha) / (n + beta*w),
		beta * alpha / (beta * w),
	}
	sum := truth[0] + truth[1]
	truth[0] /= sum
	truth[1] /= sum

	assert.InDeltaSlice(t, truth, probs, delta)
}

func TestLDACalcProbsZeroDenominator(t *testing.T) {
	m := newLDA(loadTestCorpus(t), testConfig(0.1, 0))
	require.NoError(t, m.Initialize())

	// no counts and beta = 0: every topic has zero mass
	probs := []float64{0.3, 0.7}
	m.calcProbs(0, 0, probs)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, probs, delta)
}

func TestLDAPerplexity(t *testing.T) {
	m := newTestLDA(t)
	setToyCounts(m)
	assert.InDelta(t, 4.15282, m.Perplexity(), delta)
}

func TestLDAPhiTheta(t *testing.T) {
	m := newTestLDA(t)
	setToyCounts(m)

	alpha, beta := 0.1, 0.1
	n, w, k := 16.0, 3.0, 2.0

	phi := m.Phi()
	truePhi := [][]float64{
		{(n + beta) / (n + w*beta), beta / (n + w*beta), beta / (n + w*beta)},
		{1 / w, 1 / w, 1 / w},
	}
	for z, row := range truePhi {
		assert.InDeltaSlice(t, row, phi.Row(uint32(z)), delta)
	}

	theta := m.Theta()
	trueTheta := [][]float64{
		{(n + alpha) / (n + k*alpha), alpha / (n + k*alpha)},
		{0.5, 0.5},
		{0.5, 0.5},
		{0.5, 0.5},
	}
	for d, row := range trueTheta {
		assert.InDeltaSlice(t, row, theta.Row(uint32(d)), delta)
	}
}

func TestLDAUpdateParams(t *testing.T) {
	m := newTestLDA(t)
	m.Preprocess()
	for i := 0; i < 10; i += 1 {
		m.UpdateParams()
	}
	for _, a := range m.Alphas() {
		assert.GreaterOrEqual(t, a, minAlpha)
		assert.False(t, math.IsNaN(a))
	}
}

func TestLDAUpdateParamsFloor(t *testing.T) {
	m := newTestLDA(t)
	// topic 1 never used, its alpha shrinks towards the floor
	for d, doc := range m.data.Docs {
		for range doc {
			m.insert(uint32(d), doc[0], 0)
		}
	}
	for i := 0; i < 200; i += 1 {
		m.UpdateParams()
	}
	alphas := m.Alphas()
	assert.Less(t, alphas[1], 0.1)
	assert.GreaterOrEqual(t, alphas[1], minAlpha)
}

func TestLDASave(t *testing.T) {
	m := newTestLDA(t)
	setToyCounts(m)

	prefix := filepath.Join(t.TempDir(), "out")
	require.NoError(t, m.Save(prefix))

	phi, err := matrix.Float64Deserialize(prefix + ".phi")
	require.NoError(t, err)
	r, c := phi.Shape()
	assert.Equal(t, uint32(3), r)
	assert.Equal(t, uint32(2), c)
	assert.InDelta(t, 16.1/16.3, phi.Get(0, 0), delta)

	theta, err := matrix.Float64Deserialize(prefix + ".theta")
	require.NoError(t, err)
	r, c = theta.Shape()
	assert.Equal(t, uint32(4), r)
	assert.Equal(t, uint32(2), c)

	smp, err := os.ReadFile(prefix + ".smp")
	require.NoError(t, err)
	assert.Equal(t, "16 0\n0 0\n0 0\n", string(smp))
}

func TestRegistry(t *testing.T) {
	ctor, err := GetModel("lda")
	require.NoError(t, err)
	assert.IsType(t, &LDA{}, ctor(loadTestCorpus(t), testConfig(0.1, 0.1)))

	ctor, err = GetModel("ldadf")
	require.NoError(t, err)
	assert.IsType(t, &LDADF{}, ctor(loadTestCorpus(t), testConfig(0.1, 0.1)))

	ctor, err = GetModel("sparselda")
	require.NoError(t, err)
	assert.IsType(t, &SparseLDA{}, ctor(loadTestCorpus(t), testConfig(0.1, 0.1)))

	_, err = GetModel("hdp")
	assert.Error(t, err)
}
