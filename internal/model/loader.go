package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// envelope is the on-disk layout shared by every artifact kind.
type envelope struct {
	Kind      string          `json:"kind"`
	Version   string          `json:"version"`
	NFeatures int             `json:"n_features"`
	Params    json.RawMessage `json:"params"`
}

// LoadPredictor reads a predictor artifact from path.
func LoadPredictor(path string) (Predictor, Info, error) {
	env, err := readEnvelope(path)
	if err != nil {
		return nil, Info{}, err
	}
	p, n, err := decodePredictor(env)
	if err != nil {
		return nil, Info{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, Info{Kind: env.Kind, Version: env.Version, NFeatures: n, Path: path}, nil
}

// LoadTransformer reads a transformer artifact from path.
func LoadTransformer(path string) (Transformer, Info, error) {
	env, err := readEnvelope(path)
	if err != nil {
		return nil, Info{}, err
	}
	if env.Kind != KindStandardScaler {
		return nil, Info{}, fmt.Errorf("%s: %w: %q is not a transformer", path, ErrUnknownKind, env.Kind)
	}
	var p scalerParams
	if err := decodeParams(env, &p); err != nil {
		return nil, Info{}, fmt.Errorf("%s: %w", path, err)
	}
	s, err := NewStandardScaler(p.Mean, p.Scale)
	if err != nil {
		return nil, Info{}, fmt.Errorf("%s: %w", path, err)
	}
	n, err := resolveFeatures(env.NFeatures, len(p.Mean))
	if err != nil {
		return nil, Info{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, Info{Kind: env.Kind, Version: env.Version, NFeatures: n, Path: path}, nil
}

func readEnvelope(path string) (*envelope, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model artifact: %w", err)
	}
	defer f.Close()
	return decodeEnvelope(f)
}

func decodeEnvelope(r io.Reader) (*envelope, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	if env.Kind == "" {
		return nil, fmt.Errorf("%w: missing kind", ErrInvalidArtifact)
	}
	if env.NFeatures < 0 {
		return nil, fmt.Errorf("%w: negative n_features", ErrInvalidArtifact)
	}
	return &env, nil
}

func decodeParams(env *envelope, v interface{}) error {
	if len(env.Params) == 0 {
		return fmt.Errorf("%w: missing params", ErrInvalidArtifact)
	}
	dec := json.NewDecoder(bytes.NewReader(env.Params))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s params: %v", ErrInvalidArtifact, env.Kind, err)
	}
	return nil
}

func decodePredictor(env *envelope) (Predictor, int, error) {
	switch env.Kind {
	case KindLinearRegression:
		var p linearParams
		if err := decodeParams(env, &p); err != nil {
			return nil, 0, err
		}
		m, err := NewLinearRegressor(p.Coefficients, p.Intercept)
		if err != nil {
			return nil, 0, err
		}
		n, err := resolveFeatures(env.NFeatures, m.NFeatures())
		return m, n, err

	case KindRandomForestRegressor:
		var p forestParams
		if err := decodeParams(env, &p); err != nil {
			return nil, 0, err
		}
		if env.NFeatures == 0 {
			return nil, 0, fmt.Errorf("%w: %s requires n_features", ErrInvalidArtifact, env.Kind)
		}
		m, err := newRandomForestRegressor(p, env.NFeatures)
		return m, env.NFeatures, err

	case KindIsolationForest:
		var p isolationParams
		if err := decodeParams(env, &p); err != nil {
			return nil, 0, err
		}
		if env.NFeatures == 0 {
			return nil, 0, fmt.Errorf("%w: %s requires n_features", ErrInvalidArtifact, env.Kind)
		}
		m, err := newIsolationForest(p, env.NFeatures)
		return m, env.NFeatures, err

	case KindZScore:
		var p zscoreParams
		if err := decodeParams(env, &p); err != nil {
			return nil, 0, err
		}
		m, err := NewZScoreDetector(p.Mean, p.Std, p.Threshold)
		if err != nil {
			return nil, 0, err
		}
		n, err := resolveFeatures(env.NFeatures, len(p.Mean))
		return m, n, err

	case KindKMeans:
		var p kmeansParams
		if err := decodeParams(env, &p); err != nil {
			return nil, 0, err
		}
		m, err := NewKMeans(p.Centroids)
		if err != nil {
			return nil, 0, err
		}
		n, err := resolveFeatures(env.NFeatures, m.nFeatures)
		return m, n, err
	}
	return nil, 0, fmt.Errorf("%w: %q", ErrUnknownKind, env.Kind)
}

// resolveFeatures reconciles the declared feature count with the one implied by the
// parameters. A zero declaration accepts the implied count.
func resolveFeatures(declared, implied int) (int, error) {
	if declared != 0 && declared != implied {
		return 0, fmt.Errorf("%w: n_features is %d but params imply %d", ErrInvalidArtifact, declared, implied)
	}
	return implied, nil
}
