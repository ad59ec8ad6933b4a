package adaptive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Finding is one piece of retrieved evidence.
type Finding struct {
	Source  string  `json:"source"`
	Excerpt string  `json:"excerpt"`
	Score   float64 `json:"score"`
}

// ResearchContext is the outcome of a research lookup. The orchestrator
// injects it into the question context only when Confidence clears
// ResearchFloor.
type ResearchContext struct {
	Query      string    `json:"query"`
	Findings   []Finding `json:"findings"`
	Confidence float64   `json:"confidence"`
}

// Render formats the findings as context text for an LLM call.
func (rc *ResearchContext) Render() string {
	if rc == nil || len(rc.Findings) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Research findings:\n")
	for _, f := range rc.Findings {
		fmt.Fprintf(&b, "- [%s] %s\n", f.Source, f.Excerpt)
	}
	return b.String()
}

// Researcher is the external search/retrieval capability. The backend
// itself is out of scope; the orchestrator only depends on this contract.
type Researcher interface {
	Research(ctx context.Context, query string) (*ResearchContext, error)
}

// StaticResearcher serves canned research contexts, keyed by substring
// match on the query. Useful for tests and offline runs.
type StaticResearcher struct {
	entries map[string]*ResearchContext
}

// NewStaticResearcher builds a researcher over fixed entries.
func NewStaticResearcher(entries map[string]*ResearchContext) *StaticResearcher {
	return &StaticResearcher{entries: entries}
}

// Research returns the first entry whose key appears in the query,
// case-insensitively, else an empty zero-confidence context.
func (r *StaticResearcher) Research(_ context.Context, query string) (*ResearchContext, error) {
	lowered := strings.ToLower(query)
	for key, rc := range r.entries {
		if strings.Contains(lowered, strings.ToLower(key)) {
			return rc, nil
		}
	}
	return &ResearchContext{Query: query, Confidence: 0.0}, nil
}

// researchFromQuestion pulls an injected research context, if any.
func researchFromQuestion(q Question) *ResearchContext {
	v, ok := q.ContextValue(ContextResearch)
	if !ok {
		return nil
	}
	rc, ok := v.(*ResearchContext)
	if !ok {
		return nil
	}
	return rc
}

// Embedder generates vector embeddings from text. Used to deduplicate
// research findings and to attach embeddings to persisted attempts.
type Embedder interface {
	Embed(ctx context.Context, text string) (Vector, error)
	Dimensions() int
}

// dedupeSimilarity is the cosine similarity above which two findings are
// treated as duplicates.
const dedupeSimilarity = 0.95

// DedupeFindings drops findings whose excerpts embed within
// dedupeSimilarity of an earlier finding. Embedding failures keep the
// finding; dedupe is best effort.
func DedupeFindings(ctx context.Context, embedder Embedder, findings []Finding) []Finding {
	if embedder == nil || len(findings) < 2 {
		return findings
	}

	var kept []Finding
	var vectors []Vector
	for _, f := range findings {
		vec, err := embedder.Embed(ctx, f.Excerpt)
		if err != nil {
			kept = append(kept, f)
			vectors = append(vectors, nil)
			continue
		}

		duplicate := false
		for _, prior := range vectors {
			if prior != nil && vec.Cosine(prior) >= dedupeSimilarity {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, f)
			vectors = append(vectors, vec)
		}
	}
	return kept
}

// OpenAIEmbedder implements Embedder over the OpenAI embeddings API.
type OpenAIEmbedder struct {
	apiKey     string
	model      string
	dimensions int
	baseURL    string
	client     *http.Client
}

// Embedding model defaults.
const (
	defaultEmbeddingModel = "text-embedding-3-small"
	defaultDimensions     = 1536
)

// NewOpenAIEmbedder creates an embedder with the given API key.
func NewOpenAIEmbedder(apiKey string) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		apiKey:     apiKey,
		model:      defaultEmbeddingModel,
		dimensions: defaultDimensions,
		baseURL:    "https://api.openai.com/v1",
		client:     http.DefaultClient,
	}
}

// WithModel overrides the embedding model and its dimensions.
func (e *OpenAIEmbedder) WithModel(model string, dimensions int) *OpenAIEmbedder {
	e.model = model
	e.dimensions = dimensions
	return e
}

// WithBaseURL points the embedder at a proxy or compatible API.
func (e *OpenAIEmbedder) WithBaseURL(url string) *OpenAIEmbedder {
	e.baseURL = url
	return e
}

// WithHTTPClient sets a custom HTTP client.
func (e *OpenAIEmbedder) WithHTTPClient(client *http.Client) *OpenAIEmbedder {
	e.client = client
	return e
}

type embeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Embed generates an embedding for the given text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	body, err := json.Marshal(embeddingRequest{Input: text, Model: e.model})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(respBody, &embResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if embResp.Error != nil {
		return nil, fmt.Errorf("embeddings API error: %s", embResp.Error.Message)
	}
	if len(embResp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	return Vector(embResp.Data[0].Embedding), nil
}

// Dimensions returns the configured vector dimensions.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

var _ Embedder = (*OpenAIEmbedder)(nil)
