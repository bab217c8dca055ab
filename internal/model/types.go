package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// ProgramRecord is the persisted form of a bid program. Programs are stored
// once per graph and referenced by id from the edges sharing them.
type ProgramRecord struct {
	ID          string    `json:"id"`
	SourceIndex int       `json:"source_index"`
	Weights     []float64 `json:"weights"`
	Bias        float64   `json:"bias"`
}

type VertexRecord struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	ActionID uint64 `json:"action_id,omitempty"`
}

type EdgeRecord struct {
	ID            string `json:"id"`
	SourceID      string `json:"source_id"`
	DestinationID string `json:"destination_id"`
	ProgramID     string `json:"program_id"`
}

// GraphRecord is a complete persisted policy graph.
type GraphRecord struct {
	VersionedRecord
	ID       string          `json:"id"`
	Vertices []VertexRecord  `json:"vertices"`
	Edges    []EdgeRecord    `json:"edges"`
	Programs []ProgramRecord `json:"programs"`
}

// GenerationRecord is one generation's outcome inside a run.
type GenerationRecord struct {
	Generation      uint64  `json:"generation"`
	NbRoots         int     `json:"nb_roots"`
	NbVertices      int     `json:"nb_vertices"`
	NbEdges         int     `json:"nb_edges"`
	BestScore       float64 `json:"best_score"`
	MeanScore       float64 `json:"mean_score"`
	ValidationScore float64 `json:"validation_score,omitempty"`
	Validated       bool    `json:"validated,omitempty"`
	ElapsedMillis   int64   `json:"elapsed_ms"`
}

// RunRecord summarizes one training run.
type RunRecord struct {
	VersionedRecord
	ID            string             `json:"id"`
	Environment   string             `json:"environment"`
	Seed          int64              `json:"seed"`
	BestScore     float64            `json:"best_score"`
	FinalGraphID  string             `json:"final_graph_id,omitempty"`
	CreatedAtUnix int64              `json:"created_at_unix"`
	Generations   []GenerationRecord `json:"generations"`
}

// ScapeSummary describes a registered training environment.
type ScapeSummary struct {
	VersionedRecord
	Name        string  `json:"name"`
	Description string  `json:"description"`
	BestScore   float64 `json:"best_score"`
}
