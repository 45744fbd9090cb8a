package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadwise-ai/intervener/internal/cache"
	"github.com/roadwise-ai/intervener/internal/kb"
	"github.com/roadwise-ai/intervener/internal/observability"
	"github.com/roadwise-ai/intervener/internal/retrieval"
)

func newTestStore(t *testing.T) *kb.Store {
	t.Helper()
	store, err := kb.NewStore([]kb.Record{
		{
			ID:              1,
			IssueKeywords:   []string{"blind curve", "chevron signs"},
			Intervention:    "Install chevron alignment markers",
			Reference:       "IRC 67",
			Rationale:       "Reduces vehicle speed at high-risk curves.",
			RoadTypes:       []string{"highway", "rural"},
			EnvironmentTags: []string{"curve"},
			Priority:        kb.PriorityHigh,
		},
		{
			ID:            2,
			IssueKeywords: []string{"pedestrian crossing", "zebra crossing"},
			Intervention:  "Provide raised zebra crossing",
			Reference:     "IRC 103",
			RoadTypes:     []string{"urban"},
			Priority:      kb.PriorityHigh,
		},
	})
	require.NoError(t, err)
	return store
}

func newRecommendHandler(t *testing.T, c cache.Client) *RecommendHandler {
	t.Helper()
	engine := retrieval.NewEngine(newTestStore(t), retrieval.ScoringConfig{})
	return NewRecommendHandler(observability.Nop(), engine, c, time.Minute, Defaults{})
}

func postRecommend(t *testing.T, h *RecommendHandler, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.Recommend(rec, req)
	return rec
}

func TestRecommend_Success(t *testing.T) {
	h := newRecommendHandler(t, nil)

	rec := postRecommend(t, h, RecommendRequestDTO{
		Query:       "Accidents at blind curve, missing chevron signs",
		RoadType:    "highway",
		Environment: "curve",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RecommendResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, "highway", resp.Query.RoadType)
	assert.Equal(t, "curve", resp.Query.Environment)
	assert.False(t, resp.UsedDefaultRoadType)
	require.NotEmpty(t, resp.Recommendations)
	assert.Equal(t, 1, resp.Recommendations[0].ID)
	assert.Equal(t, "Very High", string(resp.Recommendations[0].Confidence))
}

func TestRecommend_DefaultRoadTypeLabel(t *testing.T) {
	h := newRecommendHandler(t, nil)

	rec := postRecommend(t, h, RecommendRequestDTO{Query: "faded zebra crossing"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RecommendResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.UsedDefaultRoadType)
	assert.Equal(t, "urban (default)", resp.Query.RoadType)
	assert.Equal(t, "general", resp.Query.Environment)
}

func TestRecommend_FallbackOnUnconfidentResult(t *testing.T) {
	h := newRecommendHandler(t, nil)

	rec := postRecommend(t, h, RecommendRequestDTO{Query: "xyzzy unrelated nonsense blather"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "no_match", resp["status"])
	assert.NotEmpty(t, resp["suggestions"])
}

func TestRecommend_EmptyQuery(t *testing.T) {
	h := newRecommendHandler(t, nil)

	rec := postRecommend(t, h, RecommendRequestDTO{Query: "the at to"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "empty_query", resp["error"])
}

func TestRecommend_InvalidArguments(t *testing.T) {
	h := newRecommendHandler(t, nil)

	bad := 1.5
	rec := postRecommend(t, h, RecommendRequestDTO{Query: "potholes", MinScore: &bad})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postRecommend(t, h, RecommendRequestDTO{Query: "potholes", TopK: -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommend_MalformedBody(t *testing.T) {
	h := newRecommendHandler(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Recommend(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommend_ServesFromCache(t *testing.T) {
	c := cache.NewMemoryClient(10)
	h := newRecommendHandler(t, c)

	dto := RecommendRequestDTO{Query: "faded zebra crossing", RoadType: "urban"}

	first := postRecommend(t, h, dto)
	require.Equal(t, http.StatusOK, first.Code)

	// Same request again must come back byte-identical, request id included,
	// which proves the cached payload was served.
	second := postRecommend(t, h, dto)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())

	key := cache.RequestKey(dto.Query, dto.RoadType, "", retrieval.DefaultTopK, retrieval.DefaultMinScore)
	_, err := c.Get(context.Background(), key)
	assert.NoError(t, err)
}
