package input

// ActionSource indicates the origin of an action.
type ActionSource uint8

const (
	// SourceKeyboard indicates the action originated from keyboard input.
	SourceKeyboard ActionSource = iota
	// SourceAPI indicates the action originated from an API call, e.g. the
	// command line.
	SourceAPI
)

// String returns a string representation of the action source.
func (s ActionSource) String() string {
	switch s {
	case SourceKeyboard:
		return "keyboard"
	case SourceAPI:
		return "api"
	default:
		return "unknown"
	}
}

// Action is a named command invocation.
type Action struct {
	// Name is the action identifier (e.g., "editor.rename").
	Name string

	// Args holds optional arguments.
	Args map[string]any

	// Source is where the action came from.
	Source ActionSource

	// Key is the key that triggered the action, if any.
	Key string
}

// NewAction creates an action from the given source.
func NewAction(name string, source ActionSource) Action {
	return Action{Name: name, Source: source}
}

// Arg returns an argument value.
func (a Action) Arg(key string) (any, bool) {
	if a.Args == nil {
		return nil, false
	}
	v, ok := a.Args[key]
	return v, ok
}

// StringArg returns a string argument, or "" if missing or not a string.
func (a Action) StringArg(key string) string {
	v, _ := a.Arg(key)
	s, _ := v.(string)
	return s
}
