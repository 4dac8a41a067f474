package rotation

import (
	"fmt"
	"strings"

	"croprotation/domain/core"
	domainRotation "croprotation/domain/rotation"
)

// registry maps strategy keys to constructors. Adding a strategy means adding
// one entry here; callers resolve strategies by key only.
var registry = map[domainRotation.StrategyKey]func() Strategy{
	domainRotation.StrategyNutrient: func() Strategy { return &NutrientBasedStrategy{} },
	domainRotation.StrategyPest:     func() Strategy { return &PestManagementStrategy{} },
	domainRotation.StrategySeasonal: func() Strategy { return &SeasonalStrategy{} },
}

// registryOrder fixes listing order
var registryOrder = []domainRotation.StrategyKey{
	domainRotation.StrategyNutrient,
	domainRotation.StrategyPest,
	domainRotation.StrategySeasonal,
}

// AvailableStrategies returns a new instance of every registered strategy
func AvailableStrategies() map[domainRotation.StrategyKey]Strategy {
	out := make(map[domainRotation.StrategyKey]Strategy, len(registry))
	for key, build := range registry {
		out[key] = build()
	}
	return out
}

// Lookup constructs the strategy registered under key
func Lookup(key domainRotation.StrategyKey) (Strategy, error) {
	normalized := domainRotation.StrategyKey(strings.ToLower(strings.TrimSpace(string(key))))
	build, ok := registry[normalized]
	if !ok {
		return nil, fmt.Errorf("%w: unknown strategy %q", core.ErrInvalidStrategy, key)
	}
	return build(), nil
}

// Keys returns the registered keys in listing order
func Keys() []domainRotation.StrategyKey {
	return append([]domainRotation.StrategyKey(nil), registryOrder...)
}

// Infos describes every registered strategy in listing order
func Infos() []Info {
	infos := make([]Info, 0, len(registryOrder))
	for _, key := range registryOrder {
		s := registry[key]()
		infos = append(infos, Info{
			Key:         key,
			Name:        s.Name(),
			Description: s.Description(),
		})
	}
	return infos
}
