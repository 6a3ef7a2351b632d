package timeline

// Workflow steps bound the layers and catalog groups shown to the user.
const (
	MinStep = 1
	MaxStep = 7
)

// LayerDef describes one fixed analytical layer.
type LayerDef struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Step int    `json:"step" yaml:"step"`
}

var defaultLayers = []LayerDef{
	{ID: "estructura", Name: "Estructura Formal", Step: 1},
	{ID: "melodia-principal", Name: "Melodía Principal", Step: 2},
	{ID: "acompañamiento", Name: "Acompañamiento", Step: 3},
	{ID: "conectores", Name: "Conectores", Step: 4},
	{ID: "melodia-secundaria", Name: "Melodía Secundaria", Step: 5},
	{ID: "instrumentacion", Name: "Instrumentación", Step: 6},
	{ID: "otros", Name: "Otros (Armonía, Dinámicas, etc.)", Step: 7},
}

// DefaultLayers returns the predeclared layer set in declaration order.
func DefaultLayers() []LayerDef {
	out := make([]LayerDef, len(defaultLayers))
	copy(out, defaultLayers)
	return out
}

// VisibleLayers filters defs to those unlocked at the given workflow step.
func VisibleLayers(defs []LayerDef, step int) []LayerDef {
	step = ClampStep(step)
	var out []LayerDef
	for _, d := range defs {
		if d.Step <= step {
			out = append(out, d)
		}
	}
	return out
}

// ClampStep bounds a workflow step to [MinStep, MaxStep].
func ClampStep(step int) int {
	if step < MinStep {
		return MinStep
	}
	if step > MaxStep {
		return MaxStep
	}
	return step
}
