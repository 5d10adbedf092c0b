package types

// LifecycleTag represents the approval state of a decision record
type LifecycleTag string

const (
	TagProposed   LifecycleTag = "Proposed"
	TagAccepted   LifecycleTag = "Accepted"
	TagDeprecated LifecycleTag = "Deprecated"
	TagSuperseded LifecycleTag = "Superseded"
	TagUnknown    LifecycleTag = "Unknown"
)

// LifecycleTags lists every tag in classification precedence order.
// Unknown is always last.
var LifecycleTags = []LifecycleTag{
	TagProposed,
	TagAccepted,
	TagDeprecated,
	TagSuperseded,
	TagUnknown,
}
