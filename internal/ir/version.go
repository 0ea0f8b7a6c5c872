package ir

// TraceVersion is the golden trace format version. Bump it when the
// snapshot layout changes so stale fixtures fail loudly.
const TraceVersion = "1"
