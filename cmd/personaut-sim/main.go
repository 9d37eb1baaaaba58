// Command personaut-sim runs a seeded emotional-trajectory simulation
// for one persona and emits the states as JSON lines. The final state is
// indexed as a memory and retrieved back through the trust gate, so a
// single run exercises the full engine: transition matrix, state
// calculator, embedder stack, and vector store.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/personaut/personaut/internal/config"
	"github.com/personaut/personaut/internal/engine"
	"github.com/personaut/personaut/internal/graph"
	"github.com/personaut/personaut/internal/llm"
	"github.com/personaut/personaut/internal/storage"
	memstore "github.com/personaut/personaut/internal/storage/memory"
	"github.com/personaut/personaut/internal/storage/postgres"
	"github.com/personaut/personaut/internal/storage/sqlite"
	"github.com/personaut/personaut/pkg/types"
)

var (
	seed       = flag.Int64("seed", 1, "RNG seed; equal seeds reproduce trajectories exactly")
	steps      = flag.Int("steps", 10, "Number of transition steps to simulate")
	volatility = flag.Float64("volatility", -1, "Step magnitude in [0,1] (overrides config)")
	settings   = flag.String("settings", "", "Path to YAML settings document (overrides config)")
	persona    = flag.String("persona", "sim", "Persona id owning the simulated memories")
	observer   = flag.String("observer", "", "Recall memories as this persona instead of the owner; trust comes from the network")
	emotions   = flag.String("emotions", "hopeful=0.8,excited=0.5,anxious=0.2", "Initial emotion intensities as name=value pairs")
	traitSpec  = flag.String("traits", "warmth=0.7,emotional_stability=0.4,liveliness=0.8", "Trait intensities as name=value pairs, empty for none")
)

// stepRecord is one JSON line of trajectory output.
type stepRecord struct {
	Step             int                `json:"step"`
	Dominant         string             `json:"dominant"`
	DominantCategory string             `json:"dominant_category"`
	Valence          float64            `json:"valence"`
	Arousal          float64            `json:"arousal"`
	Emotions         map[string]float64 `json:"emotions"`
}

func main() {
	flag.Parse()

	cfg := config.LoadConfig()
	if *settings != "" {
		cfg.SettingsPath = *settings
	}

	vol := cfg.Engine.Volatility
	if *volatility >= 0 {
		vol = *volatility
	}

	strangerTrust := cfg.Trust.StrangerTrust

	matrixOpts := []engine.MatrixOption{}
	if cfg.SettingsPath != "" {
		doc, err := config.LoadSettings(cfg.SettingsPath)
		if err != nil {
			log.Fatalf("failed to load settings: %v", err)
		}
		matrixOpts = append(matrixOpts,
			engine.WithTransitions(doc.TransitionTable()),
			engine.WithCoefficients(doc.TraitCoefficients()))
		if doc.Volatility != nil && *volatility < 0 {
			vol = *doc.Volatility
		}
		if doc.StrangerTrust != nil {
			strangerTrust = *doc.StrangerTrust
		}
	}

	initial, err := types.NewEmotionalStateFromMap(parsePairs(*emotions))
	if err != nil {
		log.Fatalf("invalid -emotions: %v", err)
	}
	traits := parsePairs(*traitSpec)

	matrix, err := engine.NewTransitionMatrix(vol, rand.New(rand.NewSource(*seed)), matrixOpts...)
	if err != nil {
		log.Fatalf("failed to build transition matrix: %v", err)
	}

	calculator, err := engine.NewStateCalculator(engine.ModeRecent,
		engine.WithHistorySize(cfg.Engine.HistorySize),
		engine.WithDecayFactor(cfg.Engine.DecayFactor))
	if err != nil {
		log.Fatalf("failed to build state calculator: %v", err)
	}

	out := json.NewEncoder(os.Stdout)
	trajectory := matrix.SimulateTrajectory(initial, *steps, traits)
	for i, state := range trajectory {
		calculator.AddState(state)
		dominant, _ := state.Dominant()
		record := stepRecord{
			Step:             i,
			Dominant:         dominant,
			DominantCategory: string(state.DominantCategory()),
			Valence:          state.Valence(),
			Arousal:          state.Arousal(),
			Emotions:         state.ToMap(),
		}
		if err := out.Encode(record); err != nil {
			log.Fatalf("failed to encode step: %v", err)
		}
	}

	aggregate, err := calculator.CalculatedState()
	if err != nil {
		log.Fatalf("failed to aggregate trajectory: %v", err)
	}
	if err := out.Encode(map[string]any{
		"aggregate": string(engine.ModeRecent),
		"emotions":  aggregate.ToMap(),
	}); err != nil {
		log.Fatalf("failed to encode aggregate: %v", err)
	}

	if err := indexAndRecall(cfg, strangerTrust, trajectory[len(trajectory)-1], out); err != nil {
		log.Fatalf("memory round trip failed: %v", err)
	}
}

// indexAndRecall snapshots the final state into a memory, indexes it,
// and searches it back out through the configured store and embedder.
// With -observer set the recall goes through the trust network, so a
// stranger sees only what the stranger-trust level unlocks.
func indexAndRecall(cfg *config.Config, strangerTrust float64, final *types.EmotionalState, out *json.Encoder) error {
	ctx := context.Background()

	store, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}

	dominant, value := final.Dominant()
	memory, err := types.NewIndividualMemory(*persona,
		fmt.Sprintf("Simulation ended feeling %s (%.2f)", dominant, value),
		types.DefaultSalience)
	if err != nil {
		return err
	}
	memory.SetEmotionalState(final)

	if err := engine.IndexMemory(ctx, store, embedder, memory, ""); err != nil {
		return err
	}

	query := "feeling " + dominant
	record := map[string]any{}
	var results []storage.SearchResult
	if *observer != "" {
		network := graph.NewNetwork(strangerTrust)
		results, err = engine.RelevantMemories(ctx, store, embedder, network,
			query, 3, *observer, *persona)
		record["observer"] = *observer
		record["observer_trust"] = network.TrustBetween(*persona, *observer)
		record["path"] = network.FindPath(*observer, *persona, cfg.Trust.MaxPathDepth)
	} else {
		// The owner recalls their own memories with full trust.
		results, err = engine.SearchMemories(ctx, store, embedder,
			query, 3, *persona, 1.0)
	}
	if err != nil {
		return err
	}

	recalled := make([]map[string]any, 0, len(results))
	for _, r := range results {
		recalled = append(recalled, map[string]any{
			"id":          r.Memory.ID,
			"description": r.Memory.Description,
			"similarity":  r.Similarity,
		})
	}
	record["recalled"] = recalled
	return out.Encode(record)
}

// buildStore selects the vector store from configuration.
func buildStore(cfg *config.Config) (storage.VectorStore, error) {
	switch cfg.Storage.Engine {
	case "memory":
		return memstore.NewStore(), nil
	case "sqlite":
		return sqlite.NewStore(cfg.Storage.DSN)
	case "postgres":
		return postgres.NewStore(cfg.Storage.DSN)
	default:
		return nil, fmt.Errorf("%w: storage engine %q", types.ErrConfiguration, cfg.Storage.Engine)
	}
}

// buildEmbedder assembles the embedder decorator stack around the
// deterministic hash embedder: circuit breaker, rate limiter, then the
// LRU cache (and Redis when configured) so cache hits skip the limiter.
func buildEmbedder(cfg *config.Config) (llm.Embedder, error) {
	base, err := llm.NewHashEmbedder(cfg.Embedding.Dimension)
	if err != nil {
		return nil, err
	}

	var embedder llm.Embedder = llm.NewCircuitBreakerEmbedder(base, llm.DefaultCircuitBreakerConfig())
	embedder = llm.NewRateLimitedEmbedder(embedder, cfg.Embedding.RequestsPerSecond, cfg.Embedding.Burst)
	embedder, err = llm.NewCachedEmbedder(embedder, cfg.Embedding.CacheSize)
	if err != nil {
		return nil, err
	}

	if cfg.Embedding.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Embedding.RedisAddr})
		embedder = llm.NewRedisCachedEmbedder(embedder, client, cfg.Embedding.RedisTTL)
	}
	return embedder, nil
}

// parsePairs parses "name=value,name=value" into a map, skipping
// malformed entries.
func parsePairs(spec string) map[string]float64 {
	out := make(map[string]float64)
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, raw, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			continue
		}
		out[strings.TrimSpace(name)] = value
	}
	return out
}
