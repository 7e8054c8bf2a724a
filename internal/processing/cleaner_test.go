package processing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/counterflow/internal/clients"
	"github.com/spacesedan/counterflow/internal/models"
	"github.com/spacesedan/counterflow/internal/pipeline"
	"github.com/spacesedan/counterflow/internal/storage"
)

// geminiStub serves canned JSON-mode responses in the generateContent shape.
func geminiStub(t *testing.T, reply func(prompt string) string) *clients.GeminiClient {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.GeminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
			len(req.Contents) == 0 || len(req.Contents[0].Parts) == 0 {
			t.Errorf("malformed generateContent request: %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		body := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{
					"parts": []map[string]any{
						{"text": reply(req.Contents[0].Parts[0].Text)},
					},
				}},
			},
		}
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("failed to encode stub response: %v", err)
		}
	}))
	t.Cleanup(server.Close)

	return clients.NewGeminiClient(server.URL, "test-model", []string{"test-key"})
}

func TestCleanerProcess(t *testing.T) {
	gemini := geminiStub(t, func(string) string {
		items := []models.CleanedBatchItem{
			{Classification: models.LangEnglish, CleanedText: "india is beautiful"},
			{Classification: models.LangRomHindi, CleanedText: "bahut accha video"},
		}
		out, _ := json.Marshal(items)
		return string(out)
	})

	cleaner := &Cleaner{Gemini: gemini, Seen: NewMemorySeen()}
	batch := pipeline.Batch[string]{Index: 0, Records: []string{"India is beautiful 😍", "Bahut accha video!!"}}

	items, err := cleaner.Process(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.LangEnglish, items[0].Classification)
	assert.Equal(t, "bahut accha video", items[1].CleanedText)
}

func TestCleanerProcessLengthMismatchFailsBatch(t *testing.T) {
	gemini := geminiStub(t, func(string) string {
		items := []models.CleanedBatchItem{
			{Classification: models.LangEnglish, CleanedText: "only one"},
		}
		out, _ := json.Marshal(items)
		return string(out)
	})

	cleaner := &Cleaner{Gemini: gemini, Seen: NewMemorySeen()}
	batch := pipeline.Batch[string]{Index: 2, Records: []string{"a", "b", "c"}}

	_, err := cleaner.Process(context.Background(), batch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 results for 3 comments")
}

func TestCleanerMergeDeduplicatesAndBuckets(t *testing.T) {
	cleaner := &Cleaner{
		Seen:       NewMemorySeen(),
		OutputPath: filepath.Join(t.TempDir(), "final_API_data.json"),
	}

	first := []models.CleanedBatchItem{
		{Classification: models.LangRomHindi, CleanedText: "kya baat hai"},
		{Classification: models.LangEnglish, CleanedText: "so true"},
		{Classification: "klingon", CleanedText: "unclassifiable"},
		{Classification: models.LangEnglish, CleanedText: "   "},
	}
	require.NoError(t, cleaner.Merge(context.Background(), first))

	// A second merge with overlapping text must not duplicate entries.
	second := []models.CleanedBatchItem{
		{Classification: models.LangEnglish, CleanedText: "so true"},
		{Classification: models.LangEnglish, CleanedText: "brand new"},
	}
	require.NoError(t, cleaner.Merge(context.Background(), second))

	var got models.CleanedComments
	require.NoError(t, storage.ReadJSON(cleaner.OutputPath, &got))

	assert.Equal(t, []string{"kya baat hai"}, got.RomHindi)
	assert.Equal(t, []string{"so true", "brand new"}, got.English)
	assert.Equal(t, []string{"unclassifiable"}, got.Other, "unknown classifications land in other")
}

func TestCleanerMergeSeedsSeenFromExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "final_API_data.json")
	require.NoError(t, storage.WriteJSONAtomic(path, models.CleanedComments{
		English: []string{"already stored"},
	}))

	// Fresh seen set, simulating a restart without a cache.
	cleaner := &Cleaner{Seen: NewMemorySeen(), OutputPath: path}
	items := []models.CleanedBatchItem{
		{Classification: models.LangEnglish, CleanedText: "already stored"},
	}
	require.NoError(t, cleaner.Merge(context.Background(), items))

	var got models.CleanedComments
	require.NoError(t, storage.ReadJSON(path, &got))
	assert.Equal(t, []string{"already stored"}, got.English)
}

func TestFlattenComments(t *testing.T) {
	videos := []models.VideoComments{
		{VideoID: "v1", Comments: []string{"a", "b"}},
		{VideoID: "v2", Comments: nil},
		{VideoID: "v3", Comments: []string{"c"}},
	}

	assert.Equal(t, []string{"a", "b", "c"}, FlattenComments(videos))
}
