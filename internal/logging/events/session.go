package events

import "github.com/atomicstack/popup-launcher/internal/logging"

type SessionTracer struct{}

type ToggleTracer struct{}

var (
	Session = SessionTracer{}
	Toggle  = ToggleTracer{}
)

func (SessionTracer) Connect(session, backend string) {
	logging.Trace("session.connect", map[string]interface{}{"session": session, "backend": backend})
}

func (SessionTracer) Started(session string) {
	logging.Trace("session.started", map[string]interface{}{"session": session})
}

func (SessionTracer) Write(session, kind string, seq uint64) {
	logging.Trace("session.write", map[string]interface{}{"session": session, "kind": kind, "seq": seq})
}

func (SessionTracer) Response(session, kind string, seq uint64) {
	logging.Trace("session.response", map[string]interface{}{"session": session, "kind": kind, "seq": seq})
}

func (SessionTracer) Stale(seq, latest uint64) {
	logging.Trace("session.stale", map[string]interface{}{"seq": seq, "latest": latest})
}

func (SessionTracer) Ignored(kind string) {
	logging.Trace("session.ignored", map[string]interface{}{"kind": kind})
}

func (SessionTracer) Terminated(session string, dropped int, err error) {
	payload := map[string]interface{}{"session": session, "dropped": dropped}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("session.terminated", payload)
}

func (ToggleTracer) Bound(name string) {
	logging.Trace("toggle.bound", map[string]interface{}{"name": name})
}

func (ToggleTracer) Received(pending int) {
	logging.Trace("toggle.received", map[string]interface{}{"pending": pending})
}

func (ToggleTracer) Finished(reason string) {
	logging.Trace("toggle.finished", map[string]interface{}{"reason": reason})
}

func (ToggleTracer) HostHide(err error) {
	payload := map[string]interface{}{}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("toggle.host-hide", payload)
}
