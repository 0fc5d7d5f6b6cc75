// Auxpack is a Go implementation of a ControlNet auxiliary preprocessor node
// pack for ComfyUI-compatible graph hosts. It discovers preprocessor units from
// tolerant wrapper sources, infers missing call parameters from unit schemas,
// and composes deferred fan-out/fan-in preview graphs, offering the pack's
// functionality to both in-process hosts and remote ComfyUI servers.
package auxpack
