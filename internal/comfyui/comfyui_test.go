package comfyui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"omniflow/pkg/config"
)

func TestResolutionFor(t *testing.T) {
	tests := []struct {
		quality string
		want    Resolution
	}{
		{"1080p", Resolution{1920, 1080}},
		{"2K", Resolution{2560, 1440}},
		{"4K", Resolution{3840, 2160}},
		{"8K", Resolution{1920, 1080}},
		{"", Resolution{1920, 1080}},
	}
	for _, tt := range tests {
		if got := ResolutionFor(tt.quality); got != tt.want {
			t.Errorf("ResolutionFor(%q) = %v, want %v", tt.quality, got, tt.want)
		}
	}
}

func TestNewWorkflowGraph(t *testing.T) {
	wf := NewWorkflow(Options{Positive: "a sunrise", Negative: "blurry", Quality: "4K", Seed: 7})

	want := map[string]string{
		"1": "CheckpointLoaderSimple",
		"2": "CLIPTextEncode",
		"3": "CLIPTextEncode",
		"4": "EmptyLatentImage",
		"5": "KSampler",
		"6": "VAEDecode",
		"7": "SaveImage",
	}
	got := make(map[string]string, len(wf))
	for id, n := range wf {
		got[id] = n.ClassType
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("node classes mismatch (-want +got):\n%s", diff)
	}

	if wf["1"].Inputs["ckpt_name"] != DefaultCheckpoint {
		t.Errorf("checkpoint = %v", wf["1"].Inputs["ckpt_name"])
	}
	if wf["4"].Inputs["width"] != 3840 || wf["4"].Inputs["height"] != 2160 {
		t.Errorf("latent size = %vx%v", wf["4"].Inputs["width"], wf["4"].Inputs["height"])
	}
	sampler := wf["5"].Inputs
	if sampler["seed"] != int64(7) || sampler["steps"] != 20 || sampler["cfg"] != 7.0 || sampler["sampler_name"] != "euler" {
		t.Errorf("sampler inputs = %v", sampler)
	}
	if diff := cmp.Diff([]any{"4", 0}, sampler["latent_image"]); diff != "" {
		t.Errorf("latent link mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{"1", 2}, wf["6"].Inputs["vae"]); diff != "" {
		t.Errorf("vae link mismatch (-want +got):\n%s", diff)
	}
}

func TestPresetWorkflows(t *testing.T) {
	gospel := GospelWorkflow("Faith & Trust", 8, "1080p")
	if got := gospel["2"].Inputs["text"]; got != "Gospel music video, theme: Faith & Trust, duration: 8min, spiritual, uplifting" {
		t.Errorf("gospel positive = %q", got)
	}
	if got := gospel["7"].Inputs["filename_prefix"]; got != "gospel_faith_&_trust_8min" {
		t.Errorf("gospel prefix = %q", got)
	}
	if gospel["5"].Inputs["seed"] != int64(12345) {
		t.Errorf("gospel seed = %v", gospel["5"].Inputs["seed"])
	}

	tech := TechWorkflow("Neural Networks", "intermediate", "2K")
	if got := tech["3"].Inputs["text"]; got != "blurry, low quality, confusing" {
		t.Errorf("tech negative = %q", got)
	}
	if tech["5"].Inputs["seed"] != int64(54321) || tech["4"].Inputs["width"] != 2560 {
		t.Errorf("tech inputs = %v / %v", tech["5"].Inputs, tech["4"].Inputs)
	}
}

func TestSaveWorkflow(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "workflows")
	path, err := SaveWorkflow(dir, "gospel.json", GospelWorkflow("worship", 5, "1080p"))
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "gospel.json") {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var back map[string]Node
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("saved workflow is not JSON: %v", err)
	}
	if back["7"].ClassType != "SaveImage" {
		t.Errorf("round trip lost nodes: %v", back)
	}
}

type fakeComfy struct {
	pendingPolls int32
	polls        atomic.Int32
	submitted    atomic.Int32
	lastClientID atomic.Value
}

func (f *fakeComfy) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>ComfyUI</html>"))
	})
	mux.HandleFunc("POST /api/prompt", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Prompt   Workflow `json:"prompt"`
			ClientID string   `json:"client_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode submit: %v", err)
		}
		if body.Prompt["7"].ClassType != "SaveImage" {
			t.Errorf("submitted graph missing SaveImage: %v", body.Prompt)
		}
		f.lastClientID.Store(body.ClientID)
		n := f.submitted.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{"prompt_id": fmt.Sprintf("p%d", n), "number": n})
	})
	mux.HandleFunc("GET /history/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if f.polls.Add(1) <= f.pendingPolls {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			id: map[string]any{
				"outputs": map[string]any{
					"7": map[string]any{"images": []map[string]string{
						{"filename": id + "_00001_.png", "subfolder": "", "type": "output"},
						{"filename": id + "_00002_.png", "subfolder": "", "type": "output"},
					}},
				},
				"status": map[string]any{"status_str": "success", "completed": true},
			},
		})
	})
	mux.HandleFunc("GET /view", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "output" {
			t.Errorf("view query = %v", r.URL.Query())
		}
		_, _ = w.Write([]byte("png:" + r.URL.Query().Get("filename")))
	})
	mux.HandleFunc("GET /api/systeminfo", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"system": {"os": "posix"}, "devices": [{"name": "cuda:0"}]}`))
	})
	return mux
}

func newTestClient(t *testing.T, f *fakeComfy, timeout time.Duration) *Client {
	t.Helper()
	server := httptest.NewServer(f.handler(t))
	t.Cleanup(server.Close)
	return NewClient(config.ComfyUIConfig{
		URL:      server.URL,
		ClientID: "omniflow-test",
		Quality:  "1080p",
		Timeout:  timeout,
	}, WithHTTPClient(server.Client()), WithPollInterval(5*time.Millisecond))
}

func TestGenerate(t *testing.T) {
	f := &fakeComfy{pendingPolls: 2}
	c := newTestClient(t, f, time.Second)

	images, err := c.Generate(context.Background(), "a quiet chapel at dawn", Options{})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	want := [][]byte{[]byte("png:p1_00001_.png"), []byte("png:p1_00002_.png")}
	if diff := cmp.Diff(want, images); diff != "" {
		t.Errorf("Generate() mismatch (-want +got):\n%s", diff)
	}
	if got := f.polls.Load(); got != 3 {
		t.Errorf("history polled %d times, want 3", got)
	}
	if got := f.lastClientID.Load(); got != "omniflow-test" {
		t.Errorf("client_id = %v", got)
	}
}

func TestWaitTimeout(t *testing.T) {
	f := &fakeComfy{pendingPolls: 1 << 20}
	c := newTestClient(t, f, 30*time.Millisecond)

	_, err := c.Wait(context.Background(), "p1")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Wait() error = %v, want ErrTimeout", err)
	}
}

func TestWaitCancelled(t *testing.T) {
	f := &fakeComfy{pendingPolls: 1 << 20}
	c := newTestClient(t, f, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Wait(ctx, "p1"); err == nil {
		t.Fatal("Wait() expected error after cancellation")
	}
}

func TestSubmitWithoutPromptID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"node_errors": {"5": "bad sampler"}}`))
	}))
	defer server.Close()
	c := NewClient(config.ComfyUIConfig{URL: server.URL}, WithHTTPClient(server.Client()))

	if _, err := c.Submit(context.Background(), NewWorkflow(Options{})); err == nil {
		t.Fatal("Submit() expected error without prompt_id")
	}
}

func TestSubmitDoesNotResubmitAfterServerError(t *testing.T) {
	var submits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if submits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"prompt_id": "dup"}`))
	}))
	defer server.Close()
	c := NewClient(config.ComfyUIConfig{URL: server.URL})

	if _, err := c.Submit(context.Background(), NewWorkflow(Options{})); err == nil {
		t.Error("Submit() should surface the 502 instead of queueing twice")
	}
	if got := submits.Load(); got != 1 {
		t.Errorf("server received %d submissions, want 1", got)
	}
}

func TestImagesDownloadConcurrently(t *testing.T) {
	var inflight atomic.Int32
	overlap := make(chan struct{})
	var once sync.Once
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inflight.Add(1) >= 2 {
			once.Do(func() { close(overlap) })
		}
		defer inflight.Add(-1)
		select {
		case <-overlap:
		case <-time.After(time.Second):
		}
		_, _ = w.Write([]byte(r.URL.Query().Get("filename")))
	}))
	defer server.Close()
	c := NewClient(config.ComfyUIConfig{URL: server.URL}, WithHTTPClient(server.Client()))

	res := &Result{PromptID: "p1"}
	for _, name := range []string{"a.png", "b.png", "c.png", "d.png"} {
		res.Images = append(res.Images, ImageRef{Filename: name, Type: "output"})
	}
	images, err := c.Images(context.Background(), res)
	if err != nil {
		t.Fatalf("Images() error: %v", err)
	}
	want := [][]byte{[]byte("a.png"), []byte("b.png"), []byte("c.png"), []byte("d.png")}
	if diff := cmp.Diff(want, images); diff != "" {
		t.Errorf("Images() order mismatch (-want +got):\n%s", diff)
	}
	select {
	case <-overlap:
	default:
		t.Error("downloads never overlapped")
	}
}

func TestBatch(t *testing.T) {
	f := &fakeComfy{}
	c := newTestClient(t, f, time.Second)

	wfs := []Workflow{
		GospelWorkflow("worship", 5, "1080p"),
		TechWorkflow("AI", "beginner", "1080p"),
		TechWorkflow("Python", "beginner", "1080p"),
	}
	results, err := c.Batch(context.Background(), wfs, 2)
	if err != nil {
		t.Fatalf("Batch() error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Batch() = %d results, want 3", len(results))
	}
	seen := map[string]bool{}
	for i, r := range results {
		if r == nil || len(r.Images) != 2 {
			t.Errorf("result %d = %+v", i, r)
			continue
		}
		seen[r.PromptID] = true
	}
	if len(seen) != 3 {
		t.Errorf("prompt IDs not distinct: %v", seen)
	}
}

func TestHealthAndSystemInfo(t *testing.T) {
	c := newTestClient(t, &fakeComfy{}, time.Second)

	if err := c.Health(context.Background()); err != nil {
		t.Errorf("Health() error: %v", err)
	}
	info, err := c.SystemInfo(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := info["devices"]; !ok {
		t.Errorf("SystemInfo() = %v", info)
	}
}

func TestHealthUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := NewClient(config.ComfyUIConfig{URL: url}, WithHTTPClient(http.DefaultClient))
	if err := c.Health(context.Background()); err == nil {
		t.Error("Health() expected error for closed server")
	}
}
