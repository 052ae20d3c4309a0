package agent

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/FellowTraveler/WebRAgent/internal/common"
	"github.com/FellowTraveler/WebRAgent/internal/interfaces"
	"github.com/FellowTraveler/WebRAgent/internal/models"
)

// Stage is the controller's position in the pipeline. A run moves strictly
// forward and always terminates at StageDone.
type Stage string

const (
	StageInit             Stage = "init"
	StageInitialRetrieval Stage = "initial_retrieval"
	StageDecompose        Stage = "decompose"
	StageFanOut           Stage = "fan_out"
	StageAggregate        Stage = "aggregate"
	StageSynthesize       Stage = "synthesize"
	StageDone             Stage = "done"
)

// Controller drives a full pipeline run: conversation folding, decomposition,
// fan-out retrieval, aggregation, synthesis. Run always returns a populated
// result; stage failures degrade to fallbacks and are recorded on it.
type Controller struct {
	cfg        *common.AgentConfig
	provider   interfaces.CompletionProvider
	backend    interfaces.RetrievalBackend
	decomposer *Decomposer
	executor   *FanOutExecutor
	aggregator *ContextAggregator
	synth      *Synthesizer
	maxResults int
	logger     arbor.ILogger

	stage Stage
}

// NewController wires the pipeline stages around the given backend. The
// backend's source type decides whether prompts use web or document phrasing.
func NewController(cfg *common.AgentConfig, provider interfaces.CompletionProvider, backend interfaces.RetrievalBackend, maxResults int, logger arbor.ILogger) *Controller {
	web := backend.SourceType() != models.SourceTypeDocument
	return &Controller{
		cfg:        cfg,
		provider:   provider,
		backend:    backend,
		decomposer: NewDecomposer(provider, web, logger),
		executor:   NewFanOutExecutor(backend, maxResults, logger),
		aggregator: NewContextAggregator(),
		synth:      NewSynthesizer(provider, web, logger),
		maxResults: maxResults,
		logger:     logger,
		stage:      StageInit,
	}
}

// Stage reports the controller's current pipeline stage.
func (c *Controller) Stage() Stage {
	return c.stage
}

func (c *Controller) setStage(s Stage) {
	c.stage = s
	c.logger.Debug().Str("stage", string(s)).Msg("Pipeline stage")
}

// Run executes the pipeline for one query and returns the result. It never
// returns an error: decomposition and synthesis failures fall back and are
// recorded in the result's Failures.
func (c *Controller) Run(ctx context.Context, query models.Query) *models.PipelineResult {
	c.setStage(StageInit)

	strategy := c.resolveStrategy(query.Strategy)
	effective := FormatConversation(query.Text, query.Conversation)

	c.logger.Info().
		Str("strategy", string(strategy)).
		Str("backend", string(c.backend.SourceType())).
		Msg("Starting pipeline run")

	result := &models.PipelineResult{
		Query:     query.Text,
		Strategy:  strategy,
		ModelInfo: c.provider.ModelInfo(),
	}

	var initial *models.IntermediateResult
	if strategy == models.StrategyInformed {
		c.setStage(StageInitialRetrieval)
		initial = c.initialRetrieval(ctx, effective)
	}

	c.setStage(StageDecompose)
	subqueries := c.decompose(ctx, effective, initial, result)
	result.Subqueries = subqueries

	c.setStage(StageFanOut)
	intermediate := c.executor.Run(ctx, subqueries)
	if initial != nil {
		intermediate = append([]models.IntermediateResult{*initial}, intermediate...)
	}
	result.Intermediate = intermediate

	c.setStage(StageAggregate)
	result.Contexts = c.aggregator.Collect(intermediate)
	contextView := c.aggregator.FormatForPrompt(result.Contexts, c.cfg.ContextBudget)

	c.setStage(StageSynthesize)
	answer, err := c.synth.Synthesize(ctx, effective, intermediate, contextView)
	if err != nil {
		result.Failures = append(result.Failures, models.Failure{
			Stage:   models.FailureStageSynthesize,
			Message: err.Error(),
		})
	}
	result.Answer = answer

	c.setStage(StageDone)
	c.logger.Info().
		Int("subqueries", len(result.Subqueries)).
		Int("contexts", len(result.Contexts)).
		Int("failures", len(result.Failures)).
		Msg("Pipeline run complete")
	return result
}

// resolveStrategy prefers the query's strategy, then the configured default,
// then blind.
func (c *Controller) resolveStrategy(s models.Strategy) models.Strategy {
	if s == models.StrategyBlind || s == models.StrategyInformed {
		return s
	}
	if parsed, err := models.ParseStrategy(c.cfg.Strategy); err == nil {
		return parsed
	}
	return models.StrategyBlind
}

// initialRetrieval runs the original query against the backend before
// decomposition so the decomposer can see what a first pass turns up.
func (c *Controller) initialRetrieval(ctx context.Context, query string) *models.IntermediateResult {
	res := c.backend.Retrieve(ctx, query, c.maxResults)
	if res == nil {
		res = &models.RetrievalResult{Answer: "No results available."}
	}

	answer := res.Answer
	if c.backend.SourceType() == models.SourceTypeDeepWeb {
		// the deep web answer is expensive and redundant here; the contexts
		// are what informed decomposition needs
		answer = "Initial context gathering for informed decomposition"
	}

	c.logger.Debug().Int("contexts", len(res.Contexts)).Msg("Initial retrieval complete")
	return &models.IntermediateResult{
		Subquery: fmt.Sprintf("Initial query: %s", query),
		Answer:   answer,
		Contexts: res.Contexts,
	}
}

func (c *Controller) decompose(ctx context.Context, query string, initial *models.IntermediateResult, result *models.PipelineResult) []string {
	var (
		subqueries []string
		err        error
	)
	if initial != nil {
		contextBlock := c.aggregator.FormatForPrompt(initial.Contexts, c.cfg.InformedContextBudget)
		subqueries, err = c.decomposer.Informed(ctx, query, contextBlock)
	} else {
		subqueries, err = c.decomposer.Blind(ctx, query)
	}
	if err != nil {
		result.Failures = append(result.Failures, models.Failure{
			Stage:   models.FailureStageDecompose,
			Message: err.Error(),
		})
	}
	return subqueries
}
