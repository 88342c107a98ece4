package item

import "math/rand/v2"

// SubtypeIronCrate is the only chest that currently pays out gems.
const SubtypeIronCrate = "Iron Crate"

type effectKey struct {
	itemType Type
	subtype  string
}

type effectFunc func(s *Service, it Item) (Effect, error)

// effects is keyed on (type, subtype); anything missing is consumed with no effect.
var effects = map[effectKey]effectFunc{
	{TypeChest, SubtypeIronCrate}: openIronCrate,
}

func openIronCrate(s *Service, _ Item) (Effect, error) {
	return Effect{GemsAwarded: s.rollGems(s.cfg.ChestMinGems, s.cfg.ChestMaxGems)}, nil
}

func (s *Service) effectFor(it Item) (Effect, error) {
	fn, ok := effects[effectKey{it.Type, it.Subtype}]
	if !ok {
		return Effect{}, nil
	}
	return fn(s, it)
}

// GemRoller returns a uniformly distributed integer in [min, max].
type GemRoller func(min, max int) int

func defaultGemRoller(min, max int) int {
	if max <= min {
		return min
	}
	return min + rand.IntN(max-min+1)
}
