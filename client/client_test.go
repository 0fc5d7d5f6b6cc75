package client

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/rowanvale/auxpack/graphapi"
)

// fakeHost is a minimal in-process stand-in for a generation host. It serves
// the node catalog, accepts prompts, and exposes the websocket the client
// listens on so tests can push status messages.
type fakeHost struct {
	ts       *httptest.Server
	upgrader websocket.Upgrader
	conns    chan *websocket.Conn
	prompts  chan graphapi.Prompt
	reject   *PromptErrorMessage

	mu   sync.Mutex
	live []*websocket.Conn
}

func newFakeHost(t *testing.T) *fakeHost {
	h := &fakeHost{
		conns:   make(chan *websocket.Conn, 1),
		prompts: make(chan graphapi.Prompt, 4),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/object_info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"AIO_Preprocessor": {"display_name": "AIO Aux Preprocessor", "category": "ControlNet Preprocessors", "output_node": false},
			"SaveImage": {"display_name": "Save Image", "category": "image", "output_node": true}
		}`))
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Failed to upgrade websocket: %v", err)
			return
		}
		h.mu.Lock()
		h.live = append(h.live, conn)
		h.mu.Unlock()
		h.conns <- conn
	})
	mux.HandleFunc("/prompt", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Write([]byte(`{"exec_info": {"queue_remaining": 0}}`))
			return
		}
		var p graphapi.Prompt
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("Failed to decode queued prompt: %v", err)
		}
		h.prompts <- p
		if h.reject != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(h.reject)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"prompt_id":   "test-prompt",
			"number":      1,
			"node_errors": map[string]interface{}{},
		})
	})
	mux.HandleFunc("/Preprocessor", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]string{"none", "CannyEdgePreprocessor", "TilePreprocessor"})
	})
	mux.HandleFunc("/upload/image", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(4 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		files := r.MultipartForm.File["image"]
		if len(files) != 1 {
			http.Error(w, "missing image form file", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"name": files[0].Filename,
			"type": r.FormValue("type"),
		})
	})
	mux.HandleFunc("/view", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png-bytes-for-" + r.URL.Query().Get("filename")))
	})

	h.ts = httptest.NewServer(mux)
	t.Cleanup(func() {
		// close hijacked websocket connections first so the server shutdown
		// does not wait on them
		h.mu.Lock()
		for _, conn := range h.live {
			conn.Close()
		}
		h.mu.Unlock()
		h.ts.Close()
	})
	return h
}

func (h *fakeHost) client(t *testing.T) *HostClient {
	host, portstr, err := net.SplitHostPort(h.ts.Listener.Addr().String())
	if err != nil {
		t.Fatalf("Failed to split test server address: %v", err)
	}
	port, _ := strconv.Atoi(portstr)
	return NewHostClientWithTimeout(host, port, nil, 5)
}

func (h *fakeHost) push(t *testing.T, conn *websocket.Conn, payload string) {
	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatalf("Failed to write websocket message: %v", err)
	}
}

// TestInitFetchesCatalog verifies Init retrieves the node class catalog and
// connects the websocket.
func TestInitFetchesCatalog(t *testing.T) {
	h := newFakeHost(t)
	c := h.client(t)

	if err := c.Init(); err != nil {
		t.Fatalf("Failed to init client: %v", err)
	}
	if !c.IsInitialized() {
		t.Errorf("Expected client to report initialized")
	}
	if !c.HasNodeClass("AIO_Preprocessor") {
		t.Errorf("Expected catalog to contain AIO_Preprocessor")
	}
	if c.HasNodeClass("NoSuchNode") {
		t.Errorf("Expected NoSuchNode to be absent from the catalog")
	}
	info := c.NodeClass("SaveImage")
	if info == nil || !info.OutputNode {
		t.Errorf("Expected SaveImage to be an output node, got %+v", info)
	}
	if info.Name != "SaveImage" {
		t.Errorf("Expected catalog key mirrored into Name, got %q", info.Name)
	}
}

// TestQueuePromptLifecycle queues a graph and walks the full websocket
// message sequence of one execution.
func TestQueuePromptLifecycle(t *testing.T) {
	h := newFakeHost(t)
	c := h.client(t)
	if err := c.Init(); err != nil {
		t.Fatalf("Failed to init client: %v", err)
	}
	conn := <-h.conns

	g := graphapi.Graph{
		"9": {
			ClassType: "CannyEdgePreprocessor",
			Inputs:    map[string]interface{}{"image": []interface{}{"4", 0}},
		},
	}
	item, err := c.QueuePrompt(g)
	if err != nil {
		t.Fatalf("Failed to queue prompt: %v", err)
	}
	if item.PromptID != "test-prompt" {
		t.Errorf("Expected prompt id test-prompt, got %s", item.PromptID)
	}

	queued := <-h.prompts
	if queued.ClientID != c.ClientID() {
		t.Errorf("Expected client id %s on the queued prompt, got %s", c.ClientID(), queued.ClientID)
	}
	if _, ok := queued.Nodes["9"]; !ok {
		t.Errorf("Expected queued prompt to contain node 9")
	}

	h.push(t, conn, `{"type": "execution_start", "data": {"prompt_id": "test-prompt"}}`)
	h.push(t, conn, `{"type": "executing", "data": {"node": "9", "prompt_id": "test-prompt"}}`)
	h.push(t, conn, `{"type": "progress", "data": {"value": 1, "max": 2, "prompt_id": "test-prompt"}}`)
	h.push(t, conn, `{"type": "executed", "data": {"node": "9", "output": {"images": [{"filename": "edges.png", "subfolder": "", "type": "output"}]}, "prompt_id": "test-prompt"}}`)
	h.push(t, conn, `{"type": "executing", "data": {"node": null, "prompt_id": "test-prompt"}}`)

	var titles []string
	var outputs []DataOutput
	handlers := &MessageHandlers{
		OnExecuting: func(msg *PromptMessageExecuting) {
			titles = append(titles, msg.Title)
		},
		OnData: func(msg *PromptMessageData) {
			outputs = append(outputs, msg.Data["images"]...)
		},
	}
	if err := item.ProcessMessages(handlers); err != nil {
		t.Fatalf("Failed to process messages: %v", err)
	}

	if len(titles) != 1 || titles[0] != "CannyEdgePreprocessor" {
		t.Errorf("Expected executing title resolved from the graph, got %v", titles)
	}
	if len(outputs) != 1 || outputs[0].Filename != "edges.png" {
		t.Errorf("Expected one edges.png output, got %v", outputs)
	}
	if c.GetQueuedItem("test-prompt") != nil {
		t.Errorf("Expected queue item to be removed after completion")
	}
}

// TestQueuePromptExecutionError delivers an execution_error message and
// expects ProcessMessages to surface it.
func TestQueuePromptExecutionError(t *testing.T) {
	h := newFakeHost(t)
	c := h.client(t)
	if err := c.Init(); err != nil {
		t.Fatalf("Failed to init client: %v", err)
	}
	conn := <-h.conns

	g := graphapi.Graph{
		"9": {ClassType: "MiDaS-DepthMapPreprocessor", Inputs: map[string]interface{}{}},
	}
	item, err := c.QueuePrompt(g)
	if err != nil {
		t.Fatalf("Failed to queue prompt: %v", err)
	}

	h.push(t, conn, `{"type": "execution_start", "data": {"prompt_id": "test-prompt"}}`)
	h.push(t, conn, `{"type": "execution_error", "data": {"prompt_id": "test-prompt", "node_id": "9", "node_type": "MiDaS-DepthMapPreprocessor", "exception_message": "model not found", "exception_type": "RuntimeError", "traceback": []}}`)

	var gotError *PromptMessageStoppedException
	handlers := &MessageHandlers{
		OnError: func(exc *PromptMessageStoppedException) {
			gotError = exc
		},
	}
	err = item.ProcessMessages(handlers)
	if err == nil {
		t.Fatal("Expected an execution error")
	}
	if gotError == nil || gotError.NodeName != "MiDaS-DepthMapPreprocessor" {
		t.Errorf("Expected the error to name the failing node, got %+v", gotError)
	}
}

// TestQueuePromptRejected exercises the prompt error document the host
// returns for invalid prompts.
func TestQueuePromptRejected(t *testing.T) {
	h := newFakeHost(t)
	h.reject = &PromptErrorMessage{
		Error: PromptError{
			Type:    "prompt_no_outputs",
			Message: "Prompt has no outputs",
		},
		NodeErrors: []interface{}{},
	}
	c := h.client(t)
	if err := c.Init(); err != nil {
		t.Fatalf("Failed to init client: %v", err)
	}

	_, err := c.QueuePrompt(graphapi.Graph{})
	if err == nil {
		t.Fatal("Expected queueing to fail")
	}
	if err.Error() != "Prompt has no outputs" {
		t.Errorf("Expected the host error message, got %q", err.Error())
	}
}

// TestGetPreprocessors hits the pack's query route.
func TestGetPreprocessors(t *testing.T) {
	h := newFakeHost(t)
	c := h.client(t)

	names, err := c.GetPreprocessors()
	if err != nil {
		t.Fatalf("Failed to get preprocessors: %v", err)
	}
	if len(names) != 3 {
		t.Fatalf("Expected 3 names, got %d", len(names))
	}
	if names[0] != "none" {
		t.Errorf("Expected the none sentinel first, got %v", names)
	}
}

// TestUploadFileFromReader uploads a hint image and checks the stored name
// comes back from the host.
func TestUploadFileFromReader(t *testing.T) {
	h := newFakeHost(t)
	c := h.client(t)

	name, err := c.UploadFileFromReader(bytes.NewReader([]byte("fake image bytes")), "hint.png", true, InputImageType, "")
	if err != nil {
		t.Fatalf("Failed to upload: %v", err)
	}
	if name != "hint.png" {
		t.Errorf("Expected stored name hint.png, got %s", name)
	}
}

// TestGetImage downloads an output referenced by a data message.
func TestGetImage(t *testing.T) {
	h := newFakeHost(t)
	c := h.client(t)

	data, err := c.GetImage(DataOutput{Filename: "edges.png", Type: "output"})
	if err != nil {
		t.Fatalf("Failed to get image: %v", err)
	}
	if string(*data) != "png-bytes-for-edges.png" {
		t.Errorf("Unexpected image payload: %s", string(*data))
	}
}

// TestNodeTitleCompoundID resolves expansion style compound node IDs against
// the queued graph.
func TestNodeTitleCompoundID(t *testing.T) {
	qi := &QueueItem{
		Graph: graphapi.Graph{
			"57": {ClassType: "ExecuteAllControlNetPreprocessors"},
		},
	}
	if got := qi.NodeTitle("57"); got != "ExecuteAllControlNetPreprocessors" {
		t.Errorf("Expected direct lookup, got %s", got)
	}
	if got := qi.NodeTitle("57:8"); got != "ExecuteAllControlNetPreprocessors" {
		t.Errorf("Expected parent lookup for compound ID, got %s", got)
	}
	if got := qi.NodeTitle("99"); got != "99" {
		t.Errorf("Expected unknown IDs to pass through, got %s", got)
	}
}
