package nav

// Fallback identifiers used when a screen is opened without the parameter it
// needs.
const (
	DefaultPathID   = "ai-fundamentals"
	DefaultModuleID = "neural-networks"
	DefaultLessonID = "what-are-neural-networks"
)

// Params is the small context carried between screens. An empty field means
// the key is absent.
type Params struct {
	PathID   string
	ModuleID string
	LessonID string
}

// Merge returns p with every non-empty field of update applied on top.
func (p Params) Merge(update Params) Params {
	if update.PathID != "" {
		p.PathID = update.PathID
	}
	if update.ModuleID != "" {
		p.ModuleID = update.ModuleID
	}
	if update.LessonID != "" {
		p.LessonID = update.LessonID
	}
	return p
}

// Path returns the path identifier or DefaultPathID.
func (p Params) Path() string {
	if p.PathID == "" {
		return DefaultPathID
	}
	return p.PathID
}

// Module returns the module identifier or DefaultModuleID.
func (p Params) Module() string {
	if p.ModuleID == "" {
		return DefaultModuleID
	}
	return p.ModuleID
}

// Lesson returns the lesson identifier or DefaultLessonID.
func (p Params) Lesson() string {
	if p.LessonID == "" {
		return DefaultLessonID
	}
	return p.LessonID
}

// IsZero reports whether no key is set.
func (p Params) IsZero() bool {
	return p == Params{}
}
