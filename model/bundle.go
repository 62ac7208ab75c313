package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"loan-qualifier/domain"
)

// StageBundle is a scoring capability with its configuration.
type StageBundle struct {
	Model  *LogisticModel
	Config domain.ScoringConfig
}

// Bundle holds both stages, loaded once at startup.
type Bundle struct {
	Stage1      StageBundle
	Stage2      StageBundle
	fingerprint string
}

// Fingerprint identifies the artifact contents the bundle was loaded from.
func (b *Bundle) Fingerprint() string {
	return b.fingerprint
}

// LoadBundle reads stage1_* and stage2_* artifacts from dir:
// <stage>_model.json, <stage>_metrics.json and <stage>_ui_metadata.json.
func LoadBundle(dir string) (*Bundle, error) {
	if dir == "" {
		return nil, errors.New("artifacts dir not specified")
	}

	digest := xxhash.New()

	s1, err := loadStage(dir, "stage1", digest)
	if err != nil {
		return nil, err
	}
	s2, err := loadStage(dir, "stage2", digest)
	if err != nil {
		return nil, err
	}

	return &Bundle{
		Stage1:      s1,
		Stage2:      s2,
		fingerprint: fmt.Sprintf("%016x", digest.Sum64()),
	}, nil
}

func loadStage(dir, stage string, digest *xxhash.Digest) (StageBundle, error) {
	var m LogisticModel
	if err := readJSON(filepath.Join(dir, stage+"_model.json"), &m, digest); err != nil {
		return StageBundle{}, err
	}
	if err := m.prepare(); err != nil {
		return StageBundle{}, errors.Wrapf(err, "invalid %s model", stage)
	}

	var metrics map[string]any
	if err := readJSON(filepath.Join(dir, stage+"_metrics.json"), &metrics, digest); err != nil {
		return StageBundle{}, err
	}

	var ui map[string]any
	if err := readJSON(filepath.Join(dir, stage+"_ui_metadata.json"), &ui, digest); err != nil {
		return StageBundle{}, err
	}

	cfg, err := domain.NewScoringConfig(metrics, ui)
	if err != nil {
		return StageBundle{}, errors.Wrapf(err, "invalid %s metrics", stage)
	}

	return StageBundle{Model: &m, Config: cfg}, nil
}

// readJSON keeps numbers as json.Number so metrics are served back exactly
// as written.
func readJSON(path string, dst any, digest *xxhash.Digest) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read artifact: %s", path)
	}
	_, _ = digest.Write(b)

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return errors.Wrapf(err, "failed to parse artifact: %s", path)
	}
	return nil
}
