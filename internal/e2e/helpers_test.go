package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"textpipe/internal/httpapi"
	"textpipe/internal/manager"
	"textpipe/internal/registry"
	"textpipe/pkg/pipeline"
	"textpipe/pkg/types"
)

// echoRuntime builds pipelines that wrap the input in angle brackets, so
// end-to-end tests exercise the full HTTP path without model weights.
// runDelay slows each generation down for backpressure scenarios.
type echoRuntime struct {
	runDelay time.Duration
}

func (r *echoRuntime) Name() string { return "echo" }

func (r *echoRuntime) LoadTokenizer(ctx context.Context, modelID string) (pipeline.Tokenizer, error) {
	return echoTokenizer{}, nil
}

func (r *echoRuntime) LoadModel(ctx context.Context, modelID string, placement pipeline.Placement, options map[string]any) (pipeline.Model, error) {
	return echoModel{id: modelID}, nil
}

func (r *echoRuntime) BuildTaskPipeline(task pipeline.Task, model pipeline.Model, tok pipeline.Tokenizer, options map[string]any) (pipeline.InferenceObject, error) {
	return &echoObject{task: task, delay: r.runDelay}, nil
}

type echoTokenizer struct{}

func (echoTokenizer) Close() error { return nil }

type echoModel struct{ id string }

func (m echoModel) ID() string   { return m.id }
func (m echoModel) Close() error { return nil }

type echoObject struct {
	task  pipeline.Task
	delay time.Duration
}

func (o *echoObject) Task() pipeline.Task { return o.task }

func (o *echoObject) Run(ctx context.Context, text string, params pipeline.CallParams) (pipeline.Payload, error) {
	if o.delay > 0 {
		select {
		case <-time.After(o.delay):
		case <-ctx.Done():
			return pipeline.Payload{}, ctx.Err()
		}
	}
	out := "<" + text + ">"
	switch o.task {
	case pipeline.TaskSummarization:
		return pipeline.Payload{SummaryText: out}, nil
	case pipeline.TaskTranslation:
		return pipeline.Payload{TranslationText: out}, nil
	default:
		return pipeline.Payload{GeneratedText: out}, nil
	}
}

func (o *echoObject) Close() error { return nil }

// createTempModelsDir lays out a models directory containing the given .gguf
// filenames so the scanner has something real to find.
func createTempModelsDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("gguf"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

// newServerForDir starts a full server over dir with rt serving the
// pipelines. A nil rt selects the build-tag default runtime.
func newServerForDir(t *testing.T, dir string, rt pipeline.ModelRuntime) *httptest.Server {
	t.Helper()
	return newServerForDirWithConfig(t, dir, func(cfg *manager.ManagerConfig) {
		cfg.Runtime = rt
	})
}

// newServerForDirWithConfig scans dir, fills a baseline manager config and
// lets mutate adjust it before the server comes up. The first scanned model
// becomes the default.
func newServerForDirWithConfig(t *testing.T, dir string, mutate func(*manager.ManagerConfig)) *httptest.Server {
	t.Helper()
	models, err := registry.NewGGUFScanner().Scan(dir)
	if err != nil {
		t.Fatalf("scan models dir: %v", err)
	}
	cfg := manager.ManagerConfig{
		Registry: models,
		Logger:   zerolog.Nop(),
	}
	if len(models) > 0 {
		cfg.DefaultModel = models[0].ID
	}
	if mutate != nil {
		mutate(&cfg)
	}
	mgr := manager.NewWithConfig(cfg)
	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(func() {
		srv.Close()
		_ = mgr.Close()
	})
	return srv
}

func httpGet(t *testing.T, url string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, body
}

func httpPostJSON(t *testing.T, url string, payload any) (int, []byte) {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, body
}

func httpDelete(t *testing.T, url string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		t.Fatalf("build DELETE %s: %v", url, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, body
}

func decodeBody(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("decode %q: %v", clip(body), err)
	}
}

// waitForInstance polls /status until an instance for (model, task) reports
// the wanted state, failing the test after the deadline.
func waitForInstance(t *testing.T, baseURL, model, task, state string, within time.Duration) {
	t.Helper()
	deadline := time.Now().Add(within)
	for {
		_, body := httpGet(t, baseURL+"/status")
		var st types.StatusResponse
		decodeBody(t, body, &st)
		for _, inst := range st.Instances {
			if inst.ModelID == model && inst.Task == task && inst.State == state {
				return
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("instance %s/%s never reached %s; status: %s", model, task, state, clip(body))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func clip(b []byte) string {
	const max = 300
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
