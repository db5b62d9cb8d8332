package js_scope

// Ranks are computed top-down. Each scope first ranks its own locals by the
// ordering law. Then, for each child, it pretends the child's whole subtree
// was part of this scope, ranks that merged table, and raises every local's
// rank to the highest rank it got in any of those merges. A nested scope that
// uses a name heavily therefore pushes the locals it outranks up, which
// leaves a gap of reserved short names for it when names are allocated.
//
// The merges all start from the same base ranks and the result is a maximum,
// so the order children are visited in doesn't matter.
func ComputeRanks(tree *Tree) {
	computeRanks(tree.Root())
}

func computeRanks(scope *Scope) {
	locals := make([]*Symbol, 0, len(scope.Symbols))
	for _, symbol := range scope.SortedSymbols() {
		if symbol.Class == ClassLocal {
			locals = append(locals, symbol)
		}
	}

	base := make(map[string]uint32, len(locals))
	for i, symbol := range locals {
		symbol.Rank = uint32(i)
		base[symbol.Name] = uint32(i)
	}

	for _, child := range scope.Children {
		merged := make(map[SymbolKey]*Symbol, len(scope.Symbols))
		for key, symbol := range scope.Symbols {
			merged[key] = &Symbol{Name: symbol.Name, Class: symbol.Class, Count: symbol.Count, Rank: base[symbol.Name]}
		}
		mergeInto(merged, scope, child.Transitive())

		rank := uint32(0)
		for _, symbol := range sortedByLaw(merged) {
			if symbol.Class == ClassOuter {
				continue
			}
			if symbol.Class == ClassLocal {
				if local := scope.Local(symbol.Name); local.Rank < rank {
					local.Rank = rank
				}
			}
			rank++
		}
	}

	for _, child := range scope.Children {
		computeRanks(child)
	}
}
