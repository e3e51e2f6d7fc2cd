package zone

// typeAt resolves the local time type governing an instant: before the
// first transition the default type, at or beyond the last transition
// the footer rule when there is one, and in between the type of the
// greatest transition at or before t. An instant exactly on a transition
// belongs to the new type.
func (z *Zone) typeAt(t int64) ztype {
	if len(z.trans) == 0 {
		if z.hasExtend {
			return z.extendType(t)
		}
		return z.types[z.first]
	}
	if t < z.trans[0].at {
		return z.types[z.first]
	}
	if z.hasExtend && t >= z.trans[len(z.trans)-1].at {
		return z.extendType(t)
	}
	lo, hi := 0, len(z.trans)
	for hi-lo > 1 {
		m := lo + (hi-lo)/2
		if t < z.trans[m].at {
			hi = m
		} else {
			lo = m
		}
	}
	return z.types[z.trans[lo].typ]
}

func (z *Zone) extendType(t int64) ztype {
	abbr, off, dst := z.extend.OffsetAt(t)
	return ztype{utoff: off, dst: dst, abbr: abbr}
}
