package config

// DomainConfig holds the configurable rules and constants of the task-graph engine
type DomainConfig struct {
	// Markdown rendering
	MaxHeadingLevel int

	// Transfer documents
	MaxImportNodes int
	MaxImportEdges int

	// Task constraints
	MaxTitleLength int
	MaxMemoLength  int

	// Canvas placement
	DefaultChildX         float64
	DefaultChildY         float64
	TemplateRecenterX     float64
	TemplateRecenterY     float64
	NodeWidth             float64
	NodeHeight            float64
	NodeSpacing           float64
	FreePositionStep      float64
	FreePositionMaxProbes int

	// Templates
	MaxTemplateDepth int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxHeadingLevel: 6,

		MaxImportNodes: 10000,
		MaxImportEdges: 50000,

		MaxTitleLength: 500,
		MaxMemoLength:  200000,

		DefaultChildX:         100,
		DefaultChildY:         100,
		TemplateRecenterX:     250,
		TemplateRecenterY:     0,
		NodeWidth:             200,
		NodeHeight:            100,
		NodeSpacing:           20,
		FreePositionStep:      50,
		FreePositionMaxProbes: 200,

		MaxTemplateDepth: 16,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// Tighter limits for shared deployments
	config.MaxImportNodes = 5000
	config.MaxImportEdges = 25000
	config.MaxMemoLength = 100000

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.MaxImportNodes = 100000
	config.MaxImportEdges = 500000

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// HeadingLevel clamps a nesting depth to a valid markdown heading level
func (c *DomainConfig) HeadingLevel(depth int) int {
	if depth < 1 {
		return 1
	}
	if depth > c.MaxHeadingLevel {
		return c.MaxHeadingLevel
	}
	return depth
}
