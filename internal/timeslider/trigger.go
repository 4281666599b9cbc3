package timeslider

// Trigger names the event that caused a reconcile.
type Trigger int

const (
	TriggerViewRebound Trigger = iota
	TriggerCollectionChanged
	TriggerLayerAdded
	TriggerLayerRemoved
	TriggerLoadStatusChanged
	TriggerViewWindowChanged
)

var triggerNames = [...]string{
	TriggerViewRebound:       "view_rebound",
	TriggerCollectionChanged: "collection_changed",
	TriggerLayerAdded:        "layer_added",
	TriggerLayerRemoved:      "layer_removed",
	TriggerLoadStatusChanged: "load_status_changed",
	TriggerViewWindowChanged: "view_window_changed",
}

func (t Trigger) String() string {
	if t < 0 || int(t) >= len(triggerNames) {
		return "unknown"
	}
	return triggerNames[t]
}

// State is the binding lifecycle of a Controller.
type State int

const (
	Unbound State = iota
	Bound
	Synchronized
)

func (s State) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case Bound:
		return "bound"
	case Synchronized:
		return "synchronized"
	default:
		return "unknown"
	}
}

// Property is a bit set of published properties.
type Property uint8

const (
	PropFullTimeExtent Property = 1 << iota
	PropTimeInterval
	PropNumberOfSteps
	PropStartStep
	PropEndStep
)

var propertyNames = []struct {
	p    Property
	name string
}{
	{PropFullTimeExtent, "full_time_extent"},
	{PropTimeInterval, "time_interval"},
	{PropNumberOfSteps, "number_of_steps"},
	{PropStartStep, "start_step"},
	{PropEndStep, "end_step"},
}

func (p Property) Has(q Property) bool { return p&q != 0 }

// Names lists the set properties in declaration order.
func (p Property) Names() []string {
	var out []string
	for _, pn := range propertyNames {
		if p.Has(pn.p) {
			out = append(out, pn.name)
		}
	}
	return out
}
