package gate

// Action is the operation a subject wants to perform on a resource type.
type Action string

const (
	ActionView   Action = "view"
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"

	ActionSign     Action = "sign"
	ActionRefuse   Action = "refuse"
	ActionCancel   Action = "cancel"
	ActionEvaluate Action = "evaluate"
	ActionConvoke  Action = "convoke"
	ActionDecide   Action = "decide"
)
