package service

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-qualifier/domain"
	"loan-qualifier/repository"
)

type MockDecisionRepository struct {
	mu         sync.Mutex
	Saved      []domain.DecisionRecord
	ForceError bool
}

func (m *MockDecisionRepository) Save(record domain.DecisionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ForceError {
		return errors.New("save error")
	}
	m.Saved = append(m.Saved, record)
	return nil
}

func (m *MockDecisionRepository) Recent(limit int) ([]domain.DecisionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Saved, nil
}

type countingScorer struct {
	p     float64
	calls atomic.Int32
}

func (c *countingScorer) Score(domain.FeatureRecord) (float64, error) {
	c.calls.Add(1)
	return c.p, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(s1, s2 Scorer, cache repository.CacheRepository, repo repository.DecisionRepository, opts ...Option) *QualificationService {
	stage2Cfg, _ := domain.NewScoringConfig(map[string]any{
		"threshold": 0.5,
		"band_policy": map[string]any{
			"risk_bands": map[string]any{"low": map[string]any{"max": 0.2}},
		},
	}, map[string]any{"terms": []any{36, 60}})
	stage1Cfg, _ := domain.NewScoringConfig(map[string]any{"threshold": 0.6}, nil)

	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return NewQualificationService(
		Stage{Scorer: s1, Config: stage1Cfg},
		Stage{Scorer: s2, Config: stage2Cfg},
		cache, repo, opts...,
	)
}

func TestQualify_Baseline(t *testing.T) {
	repo := &MockDecisionRepository{}
	svc := newTestService(fixedScorer(0.8), fixedScorer(0.1), nil, repo)

	res, err := svc.Qualify(rawFromJSON(t, baselineApplication))
	require.NoError(t, err)

	assert.Equal(t, domain.DecisionApprove, res.Stage1.Decision)
	assert.Equal(t, 0.6, res.Stage1.Threshold)
	assert.Equal(t, 0, res.Stage1.InputsUsed.FicoMissing)
	assert.Equal(t, 720.0, res.Stage1.InputsUsed.FicoEst)

	assert.Equal(t, domain.RiskBandLow, res.Stage2.RiskBand)
	assert.Equal(t, domain.BandThresholds{Medium: 0.2, High: 0.5}, res.Stage2.Thresholds)
	assert.False(t, res.Stage2.Informational)

	assert.Equal(t, []string{fallbackDriver}, res.Explanations.Drivers)
	assert.Equal(t, []string{fallbackSuggestion}, res.Explanations.Suggestions)
	assert.Equal(t, ResponseDisclaimer, res.Disclaimer)

	require.Len(t, repo.Saved, 1)
	assert.Equal(t, domain.DecisionApprove, repo.Saved[0].Decision)
	assert.Equal(t, "debt_consolidation", repo.Saved[0].Purpose)
	assert.NotEmpty(t, repo.Saved[0].ID)
}

func TestQualify_ReferStillScoresStage2(t *testing.T) {
	s2 := &countingScorer{p: 0.55}
	svc := newTestService(fixedScorer(0.3), s2, nil, nil)

	res, err := svc.Qualify(rawFromJSON(t, baselineApplication))
	require.NoError(t, err)

	assert.Equal(t, domain.DecisionRefer, res.Stage1.Decision)
	assert.Equal(t, domain.RiskBandHigh, res.Stage2.RiskBand)
	assert.True(t, res.Stage2.Informational)
	assert.Equal(t, int32(1), s2.calls.Load())
}

func TestQualify_ValidationErrorSkipsScoring(t *testing.T) {
	s1 := &countingScorer{p: 0.9}
	s2 := &countingScorer{p: 0.1}
	repo := &MockDecisionRepository{}
	svc := newTestService(s1, s2, nil, repo)

	_, err := svc.Qualify(rawWith(t, map[string]any{"term": 45}))
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Equal(t, "term must be 36 or 60", err.Error())

	assert.Zero(t, s1.calls.Load())
	assert.Zero(t, s2.calls.Load())
	assert.Empty(t, repo.Saved)
}

func TestQualify_ScoringErrorFailsWholeRequest(t *testing.T) {
	failing := ScorerFunc(func(domain.FeatureRecord) (float64, error) {
		return 0, errors.New("artifact corrupted")
	})
	repo := &MockDecisionRepository{}
	cache := repository.NewMemoryCache(0)
	svc := newTestService(fixedScorer(0.9), failing, cache, repo)

	res, err := svc.Qualify(rawFromJSON(t, baselineApplication))
	require.Error(t, err)
	assert.True(t, domain.IsScoringError(err))
	assert.Contains(t, err.Error(), "artifact corrupted")
	assert.Equal(t, domain.QualificationResult{}, res)
	assert.Empty(t, repo.Saved)
	assert.Zero(t, cache.Len())
}

func TestQualify_CacheHitSkipsScorers(t *testing.T) {
	s1 := &countingScorer{p: 0.7}
	s2 := &countingScorer{p: 0.3}
	repo := &MockDecisionRepository{}
	svc := newTestService(s1, s2, repository.NewMemoryCache(0), repo)

	first, err := svc.Qualify(rawFromJSON(t, baselineApplication))
	require.NoError(t, err)
	second, err := svc.Qualify(rawFromJSON(t, baselineApplication))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), s1.calls.Load())
	assert.Equal(t, int32(1), s2.calls.Load())
	assert.Len(t, repo.Saved, 2)
}

func TestQualify_CacheKeyDependsOnFingerprintAndPresence(t *testing.T) {
	svcA := newTestService(fixedScorer(0.7), fixedScorer(0.3), nil, nil, WithFingerprint("a"))
	svcB := newTestService(fixedScorer(0.7), fixedScorer(0.3), nil, nil, WithFingerprint("b"))

	p, err := NormalizeApplication(rawFromJSON(t, baselineApplication), NormalizeOptions{})
	require.NoError(t, err)

	assert.NotEqual(t, svcA.cacheKey(p), svcB.cacheKey(p))

	imputed := p
	imputed.FicoPresent = false
	assert.NotEqual(t, svcA.cacheKey(p), svcA.cacheKey(imputed))
	assert.Equal(t, svcA.cacheKey(p), svcA.cacheKey(p))
}

func TestQualify_BadCacheEntryIsRecomputed(t *testing.T) {
	cache := repository.NewMemoryCache(0)
	s1 := &countingScorer{p: 0.7}
	svc := newTestService(s1, fixedScorer(0.3), cache, nil)

	p, err := NormalizeApplication(rawFromJSON(t, baselineApplication), NormalizeOptions{})
	require.NoError(t, err)
	require.NoError(t, cache.Set(svc.cacheKey(p), "{not json"))

	_, err = svc.Qualify(rawFromJSON(t, baselineApplication))
	require.NoError(t, err)
	assert.Equal(t, int32(1), s1.calls.Load())
}

func TestQualify_SaveFailureIsNotFatal(t *testing.T) {
	svc := newTestService(fixedScorer(0.8), fixedScorer(0.1), nil, &MockDecisionRepository{ForceError: true})

	_, err := svc.Qualify(rawFromJSON(t, baselineApplication))
	assert.NoError(t, err)
}

func TestQualify_ImputeMissing(t *testing.T) {
	svc := newTestService(fixedScorer(0.8), fixedScorer(0.1), nil, nil,
		WithNormalizeOptions(NormalizeOptions{ImputeMissing: true}))

	res, err := svc.Qualify(rawWith(t, map[string]any{"fico": nil}))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stage1.InputsUsed.FicoMissing)
	assert.Equal(t, 650.0, res.Stage1.InputsUsed.FicoEst)
	assert.Equal(t, 1, res.Stage2.InputsUsed.FicoMissing)
	assert.Equal(t, 650.0, res.Stage2.InputsUsed.FicoEst)
}

func TestQualify_Concurrent(t *testing.T) {
	// el scorer depende solo de su entrada; las solicitudes no se mezclan
	byFico := ScorerFunc(func(f domain.FeatureRecord) (float64, error) {
		return f.Numeric["fico_est"] / 1000, nil
	})
	svc := newTestService(byFico, byFico, repository.NewMemoryCache(0), repository.NewDecisionRepositoryMemory(0))

	raws := make([]domain.RawApplication, 50)
	for i := range raws {
		raws[i] = rawWith(t, map[string]any{"fico": 600 + i})
	}

	var wg sync.WaitGroup
	for i, raw := range raws {
		fico := 600 + i
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Qualify(raw)
			if assert.NoError(t, err) {
				assert.InDelta(t, float64(fico)/1000, res.Stage1.AcceptProbability, 1e-12)
			}
		}()
	}
	wg.Wait()

	list, err := svc.RecentDecisions(0)
	require.NoError(t, err)
	assert.Len(t, list, 50)
}

func TestMetadata_Passthrough(t *testing.T) {
	svc := newTestService(fixedScorer(0.8), fixedScorer(0.1), nil, nil)

	md := svc.Metadata()
	assert.Equal(t, 0.6, md.Stage1.Metrics["threshold"])
	assert.Equal(t, []any{36, 60}, md.Stage2.UIMetadata["terms"])
	assert.NotNil(t, md.Stage1.UIMetadata)
}

func TestRecentDecisions_NoRepository(t *testing.T) {
	svc := newTestService(fixedScorer(0.8), fixedScorer(0.1), nil, nil)

	list, err := svc.RecentDecisions(10)
	require.NoError(t, err)
	assert.Empty(t, list)
}
