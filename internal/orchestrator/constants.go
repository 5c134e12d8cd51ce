package orchestrator

// History configuration
const (
	HistoryMaxEntries  = 200
	HistoryEventBuffer = 64
)

// Terminal reasons reported in Result and Status.
const (
	ReasonTarget    = "target attribute found"
	ReasonSpecial   = "special card found"
	ReasonCancelled = "cancelled"
)
