package devserver

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-drift/reactron/pkg/core"
	"github.com/go-drift/reactron/pkg/scheduler"
)

const loopTimeout = 2 * time.Second

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<div id="root">{{.Body}}</div>
<script>
(function () {
  var root = document.getElementById("root");
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");
  ws.onmessage = function (msg) {
    var data = JSON.parse(msg.data);
    if (typeof data.html === "string") { root.innerHTML = data.html; }
  };
  function forward(type) {
    root.addEventListener(type, function (e) {
      var el = e.target.closest("[data-rid]");
      if (!el || ws.readyState !== WebSocket.OPEN) { return; }
      if (type === "keydown" && e.key !== "Enter" && e.key !== "Escape") { return; }
      ws.send(JSON.stringify({
        rid: parseInt(el.getAttribute("data-rid"), 10),
        type: type,
        value: el.value || "",
        key: e.key || "",
        checked: !!el.checked
      }));
    }, true);
  }
  ["click", "change", "blur", "keydown"].forEach(forward);
})();
</script>
</body>
</html>
`))

// handleIndex serves the live page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexTemplate.Execute(w, struct {
		Title string
		Body  template.HTML
	}{
		Title: s.cfg.Title,
		Body:  template.HTML(s.doc.HTML()),
	})
	if err != nil {
		s.logger.Warn("render index", "error", err)
	}
}

// FiberTreeResponse is the /fiber-tree response shape.
type FiberTreeResponse struct {
	State      string              `json:"state"`
	Stats      core.Stats          `json:"stats"`
	Tree       *core.TreeNode      `json:"tree"`
	LastCommit []core.EffectRecord `json:"lastCommit"`
}

// handleFiberTree returns the committed fiber tree as JSON.
func (s *Server) handleFiberTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var resp FiberTreeResponse
	ctx, cancel := context.WithTimeout(r.Context(), loopTimeout)
	defer cancel()
	err := s.onLoop(ctx, func() {
		engine := s.sched.Context()
		resp = FiberTreeResponse{
			State:      engine.State().String(),
			Stats:      engine.Stats(),
			Tree:       engine.Snapshot(),
			LastCommit: engine.LastCommit(),
		}
	})
	if err != nil {
		http.Error(w, "engine busy", http.StatusServiceUnavailable)
		return
	}
	if resp.Tree == nil {
		http.Error(w, "no committed tree", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, resp)
}

// handleFrames returns recent frame samples. ?limit=N keeps the newest N.
func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := s.sched.Trace().Snapshot()
	applyFrameFilters(r, &resp)
	writeJSON(w, resp)
}

func applyFrameFilters(r *http.Request, resp *scheduler.FrameTimeline) {
	q := r.URL.Query()
	if q.Get("committed") == "1" {
		kept := resp.Samples[:0]
		for _, sample := range resp.Samples {
			if sample.Flags.Committed {
				kept = append(kept, sample)
			}
		}
		resp.Samples = kept
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit >= 0 && limit < len(resp.Samples) {
		resp.Samples = resp.Samples[len(resp.Samples)-limit:]
	}
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, v any) {
	// Encode to buffer first so we can catch errors
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
