package ranker

import (
	"encoding/binary"
	"encoding/json"
	"hash/fnv"
	"log/slog"
	"math"
	"math/rand"
	"os"
)

const (
	// MinScore and MaxScore bound every predicted click-through score.
	MinScore = 0.01
	MaxScore = 0.5

	noiseStdDev = 0.02
)

// Scorer predicts click-through scores for a batch of feature vectors.
// Implementations return exactly one score per input vector.
type Scorer interface {
	Score(batch []Features) ([]float64, error)
	Name() string
}

// fallbackWeights is the built-in linear combination used when no
// trained model is available.
var fallbackWeights = Features{0.4, 0.3, 0.2, 0.05, 0.03, 0.02}

// FallbackScorer is the heuristic model used when no trained weights are
// configured: a fixed linear combination of the features plus a small
// amount of noise. The noise source is seeded from the whole feature
// batch, so identical batches always score identically.
type FallbackScorer struct{}

// Name identifies the scorer in logs and responses.
func (FallbackScorer) Name() string { return "fallback" }

// Score predicts one score per vector, clipped to [MinScore, MaxScore].
func (FallbackScorer) Score(batch []Features) ([]float64, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	scores := make([]float64, len(batch))
	for i, f := range batch {
		var dot float64
		for j, w := range fallbackWeights {
			dot += w * f[j]
		}
		scores[i] = dot
	}

	rng := rand.New(rand.NewSource(batchSeed(batch)))
	for i := range scores {
		scores[i] = clipScore(scores[i] + rng.NormFloat64()*noiseStdDev)
	}
	return scores, nil
}

// batchSeed hashes every feature bit in the batch, making the noise a
// pure function of the input.
func batchSeed(batch []Features) int64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, f := range batch {
		for _, v := range f {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			h.Write(buf[:])
		}
	}
	return int64(h.Sum64())
}

func clipScore(s float64) float64 {
	if s < MinScore {
		return MinScore
	}
	if s > MaxScore {
		return MaxScore
	}
	return s
}

// LinearScorer applies trained per-feature weights plus a bias, without
// noise, clipped to the same score range as the fallback.
type LinearScorer struct {
	weights Features
	bias    float64
}

// NewLinearScorer builds a scorer from weights keyed by feature name.
// Missing names weigh 0.
func NewLinearScorer(byName map[string]float64, bias float64) *LinearScorer {
	var w Features
	for i, name := range FeatureNames {
		w[i] = byName[name]
	}
	return &LinearScorer{weights: w, bias: bias}
}

// Name identifies the scorer in logs and responses.
func (s *LinearScorer) Name() string { return "linear" }

// Score predicts one score per vector, clipped to [MinScore, MaxScore].
func (s *LinearScorer) Score(batch []Features) ([]float64, error) {
	scores := make([]float64, len(batch))
	for i, f := range batch {
		dot := s.bias
		for j, w := range s.weights {
			dot += w * f[j]
		}
		scores[i] = clipScore(dot)
	}
	return scores, nil
}

// weightsFile is the on-disk format for trained linear weights. Weights
// are keyed by feature name so a partial file overrides only what it
// names.
type weightsFile struct {
	Weights map[string]float64 `json:"weights"`
	Bias    float64            `json:"bias"`
}

// DefaultLinearWeights returns the fallback weight set keyed by name.
func DefaultLinearWeights() map[string]float64 {
	m := make(map[string]float64, FeatureCount)
	for i, name := range FeatureNames {
		m[name] = fallbackWeights[i]
	}
	return m
}

// LoadLinearScorer reads trained weights from path. A missing or invalid
// file is not fatal: the scorer starts from the default weights, with a
// warning. Weights naming unknown features are skipped.
func LoadLinearScorer(path string, logger *slog.Logger) *LinearScorer {
	if logger == nil {
		logger = slog.Default()
	}
	weights := DefaultLinearWeights()

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("ranker weights not readable, using default weights",
			"path", path,
			"error", err,
		)
		return NewLinearScorer(weights, 0)
	}

	var doc weightsFile
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warn("ranker weights invalid, using default weights",
			"path", path,
			"error", err,
		)
		return NewLinearScorer(weights, 0)
	}

	for name, w := range doc.Weights {
		if _, known := weights[name]; !known {
			logger.Warn("ignoring unknown ranker weight", "name", name)
			continue
		}
		weights[name] = w
	}
	logger.Info("loaded ranker weights", "path", path, "bias", doc.Bias)
	return NewLinearScorer(weights, doc.Bias)
}

// ScorerForType selects a scorer from configuration: "linear" (or
// "learned") loads trained weights from weightsPath, anything else gets
// the fallback scorer.
func ScorerForType(modelType, weightsPath string, logger *slog.Logger) Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	switch modelType {
	case "linear", "learned":
		return LoadLinearScorer(weightsPath, logger)
	default:
		if modelType != "" && modelType != "fallback" && modelType != "mock" {
			logger.Warn("unknown ranking model type, using fallback scorer", "type", modelType)
		}
		return FallbackScorer{}
	}
}
