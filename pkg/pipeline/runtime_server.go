package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// ServerRuntimeConfig points the runtime at a running llama.cpp server (or any
// OpenAI-compatible completion endpoint).
type ServerRuntimeConfig struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	ConnectTimeout time.Duration
}

// ServerRuntime loads nothing locally; models live in an external server and
// "loading" verifies the id is served. It supports native batching through
// prompt arrays on /v1/completions.
type ServerRuntime struct {
	baseURL    string
	apiKey     string
	reqTimeout time.Duration
	httpClient *http.Client
}

func NewServerRuntime(cfg ServerRuntimeConfig) (*ServerRuntime, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrConfiguration("server runtime needs a base url")
	}
	connect := cfg.ConnectTimeout
	if connect <= 0 {
		connect = 10 * time.Second
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connect,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// Timeout stays 0 on the client: every request carries a context deadline
	// derived from RequestTimeout instead.
	cli := &http.Client{Transport: tr, Timeout: 0}
	return &ServerRuntime{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		reqTimeout: cfg.RequestTimeout,
		httpClient: cli,
	}, nil
}

func (r *ServerRuntime) Name() string { return "server" }

// serverTokenizer is a placeholder handle; tokenization happens server-side.
type serverTokenizer struct{}

func (serverTokenizer) Close() error { return nil }

func (r *ServerRuntime) LoadTokenizer(ctx context.Context, modelID string) (Tokenizer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(modelID) == "" {
		return nil, fmt.Errorf("model id is empty")
	}
	return serverTokenizer{}, nil
}

// serverModel records the verified remote model id.
type serverModel struct {
	id string
}

func (m *serverModel) ID() string   { return m.id }
func (m *serverModel) Close() error { return nil }

func (r *ServerRuntime) LoadModel(ctx context.Context, modelID string, placement Placement, options map[string]any) (Model, error) {
	if !placement.OnCPU() {
		return nil, fmt.Errorf("placement is decided by the server; leave device and device_map unset")
	}
	if len(options) > 0 {
		return nil, fmt.Errorf("server runtime does not accept model options")
	}
	if err := r.verifyModel(ctx, modelID); err != nil {
		return nil, err
	}
	return &serverModel{id: modelID}, nil
}

// verifyModel checks /v1/models lists the id so a bad id fails at load time,
// not on the first call.
func (r *ServerRuntime) verifyModel(ctx context.Context, modelID string) error {
	if r.reqTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.reqTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/v1/models", nil)
	if err != nil {
		return err
	}
	r.authorize(req)
	resp, err := r.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpStatusError(resp)
	}
	var list struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return fmt.Errorf("decode model list: %w", err)
	}
	for _, m := range list.Data {
		if m.ID == modelID {
			return nil
		}
	}
	return fmt.Errorf("model %q is not served at %s", modelID, r.baseURL)
}

func (r *ServerRuntime) BuildTaskPipeline(task Task, model Model, tokenizer Tokenizer, options map[string]any) (InferenceObject, error) {
	sm, ok := model.(*serverModel)
	if !ok {
		return nil, fmt.Errorf("model %T was not loaded by this runtime", model)
	}
	defaults := CallParams{}
	for key, v := range options {
		handled, err := setGenerationDefault(&defaults, key, v)
		if err != nil {
			return nil, err
		}
		if !handled {
			return nil, fmt.Errorf("unknown pipeline option %q", key)
		}
	}
	return &serverObject{task: task, modelID: sm.id, rt: r, defaults: defaults}, nil
}

func (r *ServerRuntime) authorize(req *http.Request) {
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}
}

func httpStatusError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("server http error: %s: %s", resp.Status, strings.TrimSpace(string(b)))
}

// completionRequest is the /v1/completions payload. Prompt is a string for
// single calls and a string array for batches.
type completionRequest struct {
	Model         string   `json:"model,omitempty"`
	Prompt        any      `json:"prompt"`
	MaxTokens     int      `json:"max_tokens,omitempty"`
	Temperature   float32  `json:"temperature,omitempty"`
	TopP          float32  `json:"top_p,omitempty"`
	TopK          int      `json:"top_k,omitempty"`
	Stop          []string `json:"stop,omitempty"`
	Seed          int      `json:"seed,omitempty"`
	Stream        bool     `json:"stream"`
	Echo          bool     `json:"echo,omitempty"`
	RepeatPenalty float32  `json:"repeat_penalty,omitempty"`
}

type completionChoice struct {
	Index        int    `json:"index"`
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason"`
}

type completionResponse struct {
	Choices []completionChoice `json:"choices"`
}

// serverObject serves one task against one remote model.
type serverObject struct {
	task     Task
	modelID  string
	rt       *ServerRuntime
	defaults CallParams
}

func (o *serverObject) Task() Task { return o.task }

func (o *serverObject) Run(ctx context.Context, text string, params CallParams) (Payload, error) {
	outs, err := o.complete(ctx, []string{text}, params)
	if err != nil {
		return Payload{}, err
	}
	return taskPayload(o.task, outs[0]), nil
}

func (o *serverObject) RunBatch(ctx context.Context, texts []string, params CallParams) ([]Payload, error) {
	outs, err := o.complete(ctx, texts, params)
	if err != nil {
		return nil, err
	}
	payloads := make([]Payload, len(outs))
	for i, out := range outs {
		payloads[i] = taskPayload(o.task, out)
	}
	return payloads, nil
}

// complete sends one completion request for the given prompts and returns one
// text per prompt, reordered by choice index.
func (o *serverObject) complete(ctx context.Context, prompts []string, params CallParams) ([]string, error) {
	merged := mergeCallParams(o.defaults, params)
	if o.rt.reqTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.rt.reqTimeout)
		defer cancel()
	}
	var prompt any = prompts[0]
	if len(prompts) > 1 {
		prompt = prompts
	}
	payload := completionRequest{
		Model:         o.modelID,
		Prompt:        prompt,
		MaxTokens:     zn(merged.MaxNewTokens, defaultMaxNewTokens),
		Temperature:   merged.Temperature,
		TopP:          merged.TopP,
		TopK:          merged.TopK,
		Stop:          merged.Stop,
		Seed:          merged.Seed,
		Stream:        false,
		Echo:          merged.Echo && o.task == TaskTextGeneration,
		RepeatPenalty: merged.RepeatPenalty,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.rt.baseURL+"/v1/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	o.rt.authorize(req)
	resp, err := o.rt.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpStatusError(resp)
	}
	var cr completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("decode completion: %w", err)
	}
	if len(cr.Choices) != len(prompts) {
		return nil, fmt.Errorf("server returned %d choices for %d prompts", len(cr.Choices), len(prompts))
	}
	outs := make([]string, len(prompts))
	seen := make([]bool, len(prompts))
	for _, c := range cr.Choices {
		if c.Index < 0 || c.Index >= len(prompts) {
			return nil, fmt.Errorf("server returned choice index %d for %d prompts", c.Index, len(prompts))
		}
		if seen[c.Index] {
			return nil, fmt.Errorf("server returned choice index %d twice", c.Index)
		}
		seen[c.Index] = true
		outs[c.Index] = c.Text
	}
	return outs, nil
}
