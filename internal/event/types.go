package event

const (
	LookAt         EventType = "LookAt"         // Data: heatmap.Hit
	ClearRequested EventType = "ClearRequested" // no data
	LiveToggled    EventType = "LiveToggled"    // Data: bool, the new live-input state
	ModeToggled    EventType = "ModeToggled"    // Data: heatmap.UVMode
)
