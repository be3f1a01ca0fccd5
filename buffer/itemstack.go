package buffer

// ItemStack is one immutable bundle of items, per spec.md §3.
type ItemStack struct {
	ID     string
	Damage int32
	Count  int32
	NBT    NBT
}

// Equal compares all four attributes.
func (s ItemStack) Equal(o ItemStack) bool {
	return s.ID == o.ID && s.Damage == o.Damage && s.Count == o.Count && s.NBT.Equal(o.NBT)
}

// ITEM_BUFFER_LIMIT is the hard cap on stored stacks per frequency (spec.md §3).
const ITEM_BUFFER_LIMIT = 100
