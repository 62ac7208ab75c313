package service

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"loan-qualifier/domain"
	"loan-qualifier/repository"
)

// ResponseDisclaimer accompanies every qualification response.
const ResponseDisclaimer = "Educational demo. No PII collected. Not financial advice."

type QualificationService struct {
	stage1      Stage
	stage2      Stage
	cache       repository.CacheRepository
	decisions   repository.DecisionRepository
	opts        NormalizeOptions
	fingerprint string
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string
}

type Option func(*QualificationService)

func WithLogger(logger *slog.Logger) Option {
	return func(s *QualificationService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithNormalizeOptions(opts NormalizeOptions) Option {
	return func(s *QualificationService) { s.opts = opts }
}

// WithFingerprint scopes cache keys to a model bundle version.
func WithFingerprint(fingerprint string) Option {
	return func(s *QualificationService) { s.fingerprint = fingerprint }
}

// NewQualificationService creates the two-stage pipeline. cache and
// decisions may be nil.
func NewQualificationService(
	stage1, stage2 Stage,
	cache repository.CacheRepository,
	decisions repository.DecisionRepository,
	opts ...Option,
) *QualificationService {
	if cache == nil {
		cache = repository.NoopCache{}
	}
	s := &QualificationService{
		stage1:    stage1,
		stage2:    stage2,
		cache:     cache,
		decisions: decisions,
		logger:    slog.Default(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Qualify runs the full pipeline for one application. It either returns a
// complete result or a ValidationError / ScoringError.
func (s *QualificationService) Qualify(
	raw domain.RawApplication,
) (domain.QualificationResult, error) {

	payload, err := NormalizeApplication(raw, s.opts)
	if err != nil {
		return domain.QualificationResult{}, err
	}

	key := s.cacheKey(payload)
	result, hit := s.cached(key)
	if !hit {
		if result, err = s.evaluate(payload); err != nil {
			return domain.QualificationResult{}, err
		}
		s.store(key, result)
	}

	s.logger.Debug("qualification evaluated",
		"decision", result.Stage1.Decision,
		"risk_band", result.Stage2.RiskBand,
		"cached", hit,
	)
	s.record(payload, result)

	return result, nil
}

// evaluate runs both stages concurrently; stage 1 referring does not stop
// stage 2.
func (s *QualificationService) evaluate(
	payload domain.ApplicationPayload,
) (domain.QualificationResult, error) {

	var (
		s1 domain.Stage1Result
		s2 domain.Stage2Result
		g  errgroup.Group
	)

	g.Go(func() error {
		var err error
		s1, err = Gate(s.stage1.Scorer, ProjectStage1(payload), s.stage1.Config.Threshold)
		return err
	})
	g.Go(func() error {
		var err error
		s2, err = AssessRisk(s.stage2.Scorer, ProjectStage2(payload), s.stage2.Config)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.QualificationResult{}, err
	}

	s2.Informational = s1.Decision == domain.DecisionRefer

	return domain.QualificationResult{
		Stage1:       s1,
		Stage2:       s2,
		Explanations: BuildExplanations(payload, s2),
		Disclaimer:   ResponseDisclaimer,
	}, nil
}

// Metadata returns the stage metrics and UI metadata as loaded.
func (s *QualificationService) Metadata() domain.Metadata {
	return domain.Metadata{
		Stage1: domain.StageMetadata{
			Metrics:    s.stage1.Config.Metrics,
			UIMetadata: s.stage1.Config.UIMetadata,
		},
		Stage2: domain.StageMetadata{
			Metrics:    s.stage2.Config.Metrics,
			UIMetadata: s.stage2.Config.UIMetadata,
		},
	}
}

// RecentDecisions lists the audit trail, most recent first.
func (s *QualificationService) RecentDecisions(limit int) ([]domain.DecisionRecord, error) {
	if s.decisions == nil {
		return []domain.DecisionRecord{}, nil
	}
	return s.decisions.Recent(limit)
}

func (s *QualificationService) cacheKey(p domain.ApplicationPayload) string {
	b, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	d := xxhash.New()
	_, _ = d.WriteString(s.fingerprint)
	_, _ = d.Write(b)
	return fmt.Sprintf("qualify:%016x", d.Sum64())
}

func (s *QualificationService) cached(key string) (domain.QualificationResult, bool) {
	if key == "" {
		return domain.QualificationResult{}, false
	}
	val, ok := s.cache.Get(key)
	if !ok {
		return domain.QualificationResult{}, false
	}

	var result domain.QualificationResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		s.logger.Warn("discarding unreadable cache entry", "key", key, "error", err)
		return domain.QualificationResult{}, false
	}
	return result, true
}

// El caché es opcional: un fallo no invalida la respuesta
func (s *QualificationService) store(key string, result domain.QualificationResult) {
	if key == "" {
		return
	}
	b, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("failed to encode result for cache", "error", err)
		return
	}
	if err := s.cache.Set(key, string(b)); err != nil {
		s.logger.Warn("failed to cache qualification result", "key", key, "error", err)
	}
}

// Guardar el resultado (no crítico si falla)
func (s *QualificationService) record(p domain.ApplicationPayload, result domain.QualificationResult) {
	if s.decisions == nil {
		return
	}
	rec := domain.DecisionRecord{
		ID:                 s.newID(),
		CreatedAt:          s.now().UTC(),
		Decision:           result.Stage1.Decision,
		AcceptProbability:  result.Stage1.AcceptProbability,
		DefaultProbability: result.Stage2.DefaultProbability,
		RiskBand:           result.Stage2.RiskBand,
		Term:               p.Term,
		Purpose:            p.Purpose,
	}
	if err := s.decisions.Save(rec); err != nil {
		s.logger.Warn("failed to save decision", "id", rec.ID, "error", err)
	}
}
