package events

import "github.com/atomicstack/popup-launcher/internal/logging"

type SurfaceTracer struct{}

type QueryTracer struct{}

type ActionTracer struct{}

type CommandTracer struct{}

var (
	Surface = SurfaceTracer{}
	Query   = QueryTracer{}
	Action  = ActionTracer{}
	Command = CommandTracer{}
)

func (SurfaceTracer) Create(id uint64, width, height int) {
	logging.Trace("surface.create", map[string]interface{}{"id": id, "width": width, "height": height})
}

func (SurfaceTracer) Destroy(id uint64, reason string) {
	logging.Trace("surface.destroy", map[string]interface{}{"id": id, "reason": reason})
}

func (SurfaceTracer) Resize(id uint64, width, height int) {
	logging.Trace("surface.resize", map[string]interface{}{"id": id, "width": width, "height": height})
}

func (SurfaceTracer) Stale(id, current uint64) {
	logging.Trace("surface.stale", map[string]interface{}{"id": id, "current": current})
}

func (QueryTracer) Changed(query string) {
	logging.Trace("query.change", map[string]interface{}{"query": query})
}

func (QueryTracer) Fill(text string) {
	logging.Trace("query.fill", map[string]interface{}{"text": text})
}

func (QueryTracer) Cleared() {
	logging.Trace("query.clear", nil)
}

func (QueryTracer) Select(index int) {
	logging.Trace("query.select", map[string]interface{}{"index": index})
}

func (ActionTracer) Activate(index int, id uint32, name string) {
	logging.Trace("action.activate", map[string]interface{}{"index": index, "id": id, "name": name})
}

func (ActionTracer) Spawn(path, gpu string) {
	logging.Trace("action.spawn", map[string]interface{}{"path": path, "gpu": gpu})
}

func (ActionTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("action.error", map[string]interface{}{"error": err.Error()})
}

func (ActionTracer) Success(info string) {
	logging.Trace("action.success", map[string]interface{}{"info": info})
}

func (CommandTracer) Queue(kind string, seq uint64) {
	logging.Trace("command.queue", map[string]interface{}{"kind": kind, "seq": seq})
}

func (CommandTracer) Skip(kind, reason string) {
	logging.Trace("command.skip", map[string]interface{}{"kind": kind, "reason": reason})
}

func (CommandTracer) Result(kind string, err error) {
	payload := map[string]interface{}{"kind": kind}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("command.result", payload)
}
