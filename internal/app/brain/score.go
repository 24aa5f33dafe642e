package brain

import "instinct/internal/domain/decision"

// scoreContext evaluates an action's consideration chain against one context.
// The score starts at the action's weight; each consideration normalizes its
// raw input between resolved bookends, transforms it through the response
// curve and multiplies into the running score. A score that reaches zero
// short-circuits the rest of the chain.
func (b *Brain) scoreContext(def *decision.ActionDef, ctx *decision.Context) float64 {
	score := def.Weight
	for ci := range def.Considerations {
		con := &def.Considerations[ci]
		ip, ok := b.reg.Input(con.InputTag)
		if !ok {
			b.log.Warn().Str("action", def.ActionTag.String()).Str("input", con.InputTag.String()).
				Msg("unknown input provider, skipping consideration")
			if b.metrics != nil {
				b.metrics.RecordConfigError()
			}
			continue
		}

		params, release := b.pool.BorrowParams()
		b.resolveParameters(con.Params, params)
		raw := ip.Evaluate(b, ctx, params)
		release()

		// Bookends may themselves be auto parameters; they resolve against
		// the full evaluation context.
		lo := b.resolveParameter(ctx, con.BookendMin).Float()
		hi := b.resolveParameter(ctx, con.BookendMax).Float()
		u := normalize(raw, lo, hi)

		score *= con.Curve.Evaluate(u)
		if nearlyZero(score) {
			return 0
		}
	}
	return score
}

func normalize(raw, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	u := (raw - lo) / (hi - lo)
	if u < 0 {
		return 0
	}
	if u > 1 {
		return 1
	}
	return u
}
