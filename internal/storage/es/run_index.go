package es

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/refresh"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"

	"github.com/mberliner/reflexio/internal/bench/report"
)

// RunIndex indexes run records so runs can be searched and charted. It
// implements report.RecordSink.
type RunIndex struct {
	client    *elasticsearch.TypedClient
	indexName string
}

// Document is the indexed form of a run record.
type Document struct {
	RunID              string    `json:"run_id"`
	RecordedAt         time.Time `json:"recorded_at"`
	Case               string    `json:"case"`
	TaskModel          string    `json:"task_model"`
	ReflectionModel    string    `json:"reflection_model,omitempty"`
	BaselineScore      *float64  `json:"baseline_score,omitempty"`
	OptimizedScore     *float64  `json:"optimized_score,omitempty"`
	RobustnessScore    *float64  `json:"robustness_score,omitempty"`
	Improvement        *float64  `json:"improvement,omitempty"`
	RunDir             string    `json:"run_dir"`
	PositiveReflection *bool     `json:"positive_reflection,omitempty"`
	Budget             *int      `json:"budget,omitempty"`
	Notes              string    `json:"notes,omitempty"`
	IndexedAt          time.Time `json:"indexed_at"`
}

func NewRunIndex(ctx context.Context, config ClientConfig) (*RunIndex, error) {
	client, err := newClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	if config.IndexName == "" {
		config.IndexName = DefaultIndexName
	}

	idx := &RunIndex{client: client, indexName: config.IndexName}
	if err := idx.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}
	return idx, nil
}

func (r *RunIndex) Name() string { return "elasticsearch" }

func (r *RunIndex) Save(ctx context.Context, rec report.RunRecord) error {
	doc := toDocument(rec)
	res, err := r.client.Index(r.indexName).
		Id(doc.RunID).
		Document(doc).
		Refresh(refresh.Waitfor).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to index run record %s: %w", rec.RunID, err)
	}

	slog.Debug("run record indexed", "run_id", doc.RunID, "index", r.indexName, "result", res.Result)
	return nil
}

// SearchByCase returns the newest records of caseName first.
func (r *RunIndex) SearchByCase(ctx context.Context, caseName string, size int) ([]Document, error) {
	desc := sortorder.Desc
	res, err := r.client.Search().
		Index(r.indexName).
		Query(&types.Query{
			Term: map[string]types.TermQuery{
				"case": {Value: caseName},
			},
		}).
		Sort(&types.SortOptions{
			SortOptions: map[string]types.FieldSort{
				"recorded_at": {Order: &desc},
			},
		}).
		Size(size).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search run records: %w", err)
	}

	docs := make([]Document, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var doc Document
		if err := json.Unmarshal(hit.Source_, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode run record: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (r *RunIndex) EnsureIndex(ctx context.Context) error {
	exists, err := r.client.Indices.Exists(r.indexName).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check if index exists: %w", err)
	}
	if exists {
		slog.Debug("index already exists", "index", r.indexName)
		return nil
	}

	mappings := types.TypeMapping{
		Properties: map[string]types.Property{
			"run_id":              types.NewKeywordProperty(),
			"recorded_at":         types.NewDateProperty(),
			"case":                types.NewKeywordProperty(),
			"task_model":          types.NewKeywordProperty(),
			"reflection_model":    types.NewKeywordProperty(),
			"baseline_score":      types.NewDoubleNumberProperty(),
			"optimized_score":     types.NewDoubleNumberProperty(),
			"robustness_score":    types.NewDoubleNumberProperty(),
			"improvement":         types.NewDoubleNumberProperty(),
			"run_dir":             types.NewKeywordProperty(),
			"positive_reflection": types.NewBooleanProperty(),
			"budget":              types.NewIntegerNumberProperty(),
			"notes":               types.NewTextProperty(),
			"indexed_at":          types.NewDateProperty(),
		},
	}

	res, err := r.client.Indices.Create(r.indexName).Mappings(&mappings).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	if !res.Acknowledged {
		return fmt.Errorf("index creation was not acknowledged")
	}

	slog.Info("index created", "index", r.indexName)
	return nil
}

func toDocument(rec report.RunRecord) Document {
	doc := Document{
		RunID:              rec.RunID,
		RecordedAt:         rec.Timestamp,
		Case:               rec.Case,
		TaskModel:          rec.TaskModel,
		ReflectionModel:    rec.ReflectionModel,
		BaselineScore:      rec.BaselineScore,
		OptimizedScore:     rec.OptimizedScore,
		RobustnessScore:    rec.RobustnessScore,
		RunDir:             rec.RunDir,
		PositiveReflection: rec.PositiveReflection,
		Budget:             rec.Budget,
		Notes:              rec.Notes,
		IndexedAt:          time.Now().UTC(),
	}
	if rec.BaselineScore != nil && rec.OptimizedScore != nil {
		v := *rec.OptimizedScore - *rec.BaselineScore
		doc.Improvement = &v
	}
	return doc
}

func (r *RunIndex) Healthy(ctx context.Context) bool {
	ok, err := r.client.Ping().Do(ctx)
	if err != nil {
		slog.Warn("elasticsearch ping failed", "error", err)
		return false
	}
	return ok
}
