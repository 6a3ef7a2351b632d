package catalog

var builtin = []Group{
	{Name: "Estructura Formal", Step: 1, Categories: []Category{
		{Type: "intro", Label: "Intro", Color: "#e9d5ff", DefaultDuration: 8},
		{Type: "verse", Label: "A (Estrofa)", Color: "#d8b4fe", DefaultDuration: 16},
		{Type: "chorus", Label: "B (Estribillo)", Color: "#c084fc", DefaultDuration: 16},
		{Type: "bridge", Label: "Puente", Color: "#a855f7", DefaultDuration: 8},
		{Type: "coda", Label: "Coda", Color: "#9333ea", DefaultDuration: 4},
	}},
	{Name: "Melodía Principal", Step: 2, Categories: []Category{
		{Type: "tema-a", Label: "TEMA A", Color: "#bfdbfe", DefaultDuration: 8},
		{Type: "tema-b", Label: "TEMA B", Color: "#93c5fd", DefaultDuration: 8},
		{Type: "tema-c", Label: "TEMA C", Color: "#60a5fa", DefaultDuration: 8},
		{Type: "melodia-ritmica", Label: "Melodía Rítmica", Color: "#3b82f6", DefaultDuration: 4},
		{Type: "melodia-expresiva", Label: "Melodía Expresiva", Color: "#2563eb", DefaultDuration: 4},
		{Type: "desarrollo-motivico", Label: "Desarrollo motívico", Color: "#1d4ed8", DefaultDuration: 4},
	}},
	{Name: "Acompañamiento", Step: 3, Categories: []Category{
		{Type: "marcacion", Label: "Marcación", Color: "#bbf7d0", DefaultDuration: 4},
		{Type: "comping", Label: "Comping", Color: "#86efac", DefaultDuration: 8},
		{Type: "groove", Label: "Groove", Color: "#4ade80", DefaultDuration: 8},
	}},
	{Name: "Conectores", Step: 4, Categories: []Category{
		{Type: "fill", Label: "Fill", Color: "#a7f3d0", DefaultDuration: 2},
		{Type: "transition", Label: "Transición", Color: "#6ee7b7", DefaultDuration: 4},
		{Type: "pickup", Label: "Anacrusa / Pickup", Color: "#34d399", DefaultDuration: 1},
	}},
	{Name: "Melodía Secundaria", Step: 5, Categories: []Category{
		{Type: "linea-armonica", Label: "Línea Armónica", Color: "#a5f3fc", DefaultDuration: 8},
		{Type: "contracanto-una-voz", Label: "Contracanto (una voz)", Color: "#67e8f9", DefaultDuration: 8},
		{Type: "voicing-estable", Label: "Voicing estable (3 o más voces)", Color: "#22d3ee", DefaultDuration: 8},
		{Type: "soli-unisono", Label: "Soli unísono", Color: "#06b6d4", DefaultDuration: 4},
		{Type: "soli-dos-voces", Label: "Soli a dos voces", Color: "#0891b2", DefaultDuration: 4},
		{Type: "soli-tres-voces", Label: "Soli a 3 voces o más", Color: "#0e7490", DefaultDuration: 4},
	}},
	{Name: "Contracanto/Voicing", Step: 5, Categories: []Category{
		{Type: "counterpoint", Label: "Contracanto", Color: "#99f6e4", DefaultDuration: 4},
		{Type: "voicing", Label: "Voicing", Color: "#5eead4", DefaultDuration: 8},
		{Type: "harmony-line", Label: "Línea Armónica", Color: "#2dd4bf", DefaultDuration: 4},
	}},
	{Name: "Instrumentación", Step: 6, Categories: []Category{
		{Type: "solo", Label: "Solo", Color: "#fecaca", DefaultDuration: 16},
		{Type: "soli", Label: "Soli", Color: "#fca5a5", DefaultDuration: 8},
		{Type: "riff", Label: "Riff", Color: "#f87171", DefaultDuration: 4},
		{Type: "hit", Label: "Hit", Color: "#ef4444", DefaultDuration: 0.5},
		{Type: "textura", Label: "Textura", Color: "#dc2626", DefaultDuration: 8},
	}},
	{Name: "Otros", Step: 7, Categories: []Category{
		{Type: "dynamics", Label: "Dinámicas", Color: "#e5e7eb", DefaultDuration: 4},
		{Type: "articulation", Label: "Articulación", Color: "#d1d5db", DefaultDuration: 2},
		{Type: "effect", Label: "Efecto", Color: "#9ca3af", DefaultDuration: 1},
	}},
	{Name: "Armonía", Step: 7, Categories: []Category{
		{Type: "rearmonizacion", Label: "Rearmonización", Color: "#fef08a", DefaultDuration: 8},
		{Type: "modulacion", Label: "Modulación", Color: "#fde047", DefaultDuration: 4},
		{Type: "cadencia", Label: "Cadencia", Color: "#facc15", DefaultDuration: 2},
		{Type: "tonicizacion", Label: "Tonicización", Color: "#eab308", DefaultDuration: 4},
	}},
}
