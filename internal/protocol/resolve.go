package protocol

import (
	"github.com/sadopc/eprotocol/internal/model"
	"github.com/sadopc/eprotocol/internal/reference"
)

// resolver maps a key to a meal, or reports no match.
type resolver func(key string) (model.Meal, bool)

// resolverChain tries each resolver in order and ends with a fallback that
// always answers.
type resolverChain struct {
	resolvers []resolver
	fallback  func() model.Meal
}

func (c resolverChain) resolve(key string) (model.Meal, bool) {
	for _, r := range c.resolvers {
		if m, ok := r(key); ok {
			return m, true
		}
	}
	return c.fallback(), false
}

func staticResolver(slot model.Slot) resolver {
	return func(key string) (model.Meal, bool) {
		return reference.Lookup(slot, key)
	}
}

func recipeResolver(slot model.Slot, recipes []model.Recipe) resolver {
	return func(key string) (model.Meal, bool) {
		for _, r := range recipes {
			if slot.Accepts(r) && r.ID == key {
				return r.Meal(), true
			}
		}
		return model.Meal{}, false
	}
}

// defaultMeal is the slot's rotation pick for the day. Every rotation key is
// present in the slot's static table.
func defaultMeal(slot model.Slot, dayIndex int) func() model.Meal {
	return func() model.Meal {
		m, _ := reference.Lookup(slot, DefaultKey(slot, dayIndex))
		return m
	}
}

func chain(slot model.Slot, dayIndex int, recipes []model.Recipe) resolverChain {
	return resolverChain{
		resolvers: []resolver{
			staticResolver(slot),
			recipeResolver(slot, recipes),
		},
		fallback: defaultMeal(slot, dayIndex),
	}
}
