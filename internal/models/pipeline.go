package models

// Context is one retrieved piece of evidence, normalized across document,
// web and deep web sources.
type Context struct {
	DocumentID    string     `json:"document_id"`
	DocumentTitle string     `json:"document_title"`
	Content       string     `json:"content"`
	Score         float64    `json:"score"`
	FilePath      string     `json:"file_path,omitempty"`
	URL           string     `json:"url,omitempty"`
	SourceType    SourceType `json:"source_type"`
}

// RetrievalResult is what a retrieval backend returns for a single subquery:
// an answer plus the contexts it was grounded on. Backends never fail; on
// error the contexts are empty and the answer explains what happened.
type RetrievalResult struct {
	Answer   string    `json:"answer"`
	Contexts []Context `json:"contexts"`
}

// IntermediateResult pairs a subquery with its retrieval outcome.
type IntermediateResult struct {
	Subquery string    `json:"subquery"`
	Answer   string    `json:"answer"`
	Contexts []Context `json:"contexts"`
}

// ModelInfo records which provider and model produced the final answer.
type ModelInfo struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// FailureStage identifies the pipeline stage a degraded step belongs to.
type FailureStage string

const (
	FailureStageDecompose  FailureStage = "decompose"
	FailureStageRetrieve   FailureStage = "retrieve"
	FailureStageSynthesize FailureStage = "synthesize"
)

// Failure records a step that degraded to a fallback instead of aborting
// the run. The pipeline still produces a valid result when failures occur.
type Failure struct {
	Stage   FailureStage `json:"stage"`
	Message string       `json:"message"`
}

// PipelineResult is the final output of a pipeline run. Always populated,
// even when individual stages degraded.
type PipelineResult struct {
	Query        string               `json:"query"`
	Strategy     Strategy             `json:"strategy"`
	Answer       string               `json:"answer"`
	Subqueries   []string             `json:"subqueries"`
	Intermediate []IntermediateResult `json:"intermediate_results"`
	Contexts     []Context            `json:"contexts"`
	ModelInfo    ModelInfo            `json:"model_info"`
	Failures     []Failure            `json:"failures,omitempty"`
}
