package brain

import (
	"instinct/internal/app/ports"
	"instinct/internal/domain/decision"
)

// generateContexts expands an action's query list into the flat set of
// evaluation contexts. With no queries the single self context survives.
// Uncorrelated queries Cartesian-multiply into the existing set and collapse
// it to nothing when they return no results; correlated queries intersect,
// dropping source contexts they cannot extend.
func (b *Brain) generateContexts(def *decision.ActionDef, out *[]decision.Context) {
	*out = append(*out, decision.Context{Self: b.self})
	if len(def.Queries) == 0 {
		return
	}

	seenElements := make(map[decision.ContextElement]bool, 2)
	seenNames := make(map[string]bool, 2)

	for qi := range def.Queries {
		q := &def.Queries[qi]
		qp, ok := b.reg.Query(q.QueryTag)
		if !ok {
			b.log.Warn().Str("action", def.ActionTag.String()).Str("query", q.QueryTag.String()).
				Msg("unknown query provider, skipping")
			if b.metrics != nil {
				b.metrics.RecordConfigError()
			}
			continue
		}

		elem := qp.ElementKind()
		name := ""
		if elem == decision.ElementNamedValue {
			nqp, isNamed := qp.(ports.NamedValueQueryProvider)
			if !isNamed {
				b.log.Warn().Str("query", q.QueryTag.String()).Msg("named-value query without a value name, skipping")
				if b.metrics != nil {
					b.metrics.RecordConfigError()
				}
				continue
			}
			name = nqp.ValueName()
			// Multiple named-value queries are fine as long as each exports a
			// distinct name.
			if seenNames[name] {
				b.log.Warn().Str("action", def.ActionTag.String()).Str("query", q.QueryTag.String()).
					Str("name", name).Msg("duplicate named-value query, skipping")
				if b.metrics != nil {
					b.metrics.RecordConfigError()
				}
				continue
			}
			seenNames[name] = true
		} else {
			// At most one query may fill each of the target/location slots,
			// otherwise combinations would multiply targets by targets.
			if seenElements[elem] {
				b.log.Warn().Str("action", def.ActionTag.String()).Str("query", q.QueryTag.String()).
					Str("element", elem.String()).Msg("duplicate query element, skipping")
				if b.metrics != nil {
					b.metrics.RecordConfigError()
				}
				continue
			}
			seenElements[elem] = true
		}

		params, releaseParams := b.pool.BorrowParams()
		b.resolveParameters(q.Params, params)

		if qp.Correlated() {
			b.intersectCorrelatedContexts(qp, elem, name, params, out)
		} else if !b.appendUncorrelatedContexts(qp, elem, name, q.MaxFrequency, params, out) {
			// N x 0 combinations: the whole context set collapses.
			*out = (*out)[:0]
			releaseParams()
			return
		}
		releaseParams()
	}
}

// intersectCorrelatedContexts runs the query once per existing context and
// replaces each with its derived combinations; contexts yielding no results
// are dropped.
func (b *Brain) intersectCorrelatedContexts(
	qp ports.QueryProvider,
	elem decision.ContextElement,
	name string,
	params decision.ParamMap,
	contexts *[]decision.Context,
) {
	derived, release := b.pool.BorrowContexts()
	defer release()

	for i := range *contexts {
		src := &(*contexts)[i]
		for _, v := range qp.ResultsInContext(b, b.self, src, params) {
			c := src.Clone()
			writeContextSlot(&c, elem, name, v)
			*derived = append(*derived, c)
		}
	}

	*contexts = (*contexts)[:0]
	*contexts = append(*contexts, *derived...)
}

// appendUncorrelatedContexts runs the query once and Cartesian-combines its
// results with every existing context. Returns false when the query produced
// nothing.
func (b *Brain) appendUncorrelatedContexts(
	qp ports.QueryProvider,
	elem decision.ContextElement,
	name string,
	maxFrequency float64,
	params decision.ParamMap,
	contexts *[]decision.Context,
) bool {
	results := qp.Results(b, b.self, maxFrequency, params)
	if len(results) == 0 {
		return false
	}

	combined, release := b.pool.BorrowContexts()
	defer release()

	for i := range *contexts {
		src := &(*contexts)[i]
		for _, v := range results {
			c := src.Clone()
			writeContextSlot(&c, elem, name, v)
			*combined = append(*combined, c)
		}
	}

	*contexts = (*contexts)[:0]
	*contexts = append(*contexts, *combined...)
	return true
}

func writeContextSlot(ctx *decision.Context, elem decision.ContextElement, name string, v decision.ContextValue) {
	switch elem {
	case decision.ElementTarget:
		ctx.Target = v.Actor
	case decision.ElementLocation:
		ctx.Location = v.Location
	case decision.ElementNamedValue:
		ctx.SetNamedValue(name, v)
	}
}

// resolveParameters resolves a parameter map against a self-only context:
// literals pass through, references consult their providers.
func (b *Brain) resolveParameters(in decision.ParamMap, out decision.ParamMap) {
	selfCtx := decision.Context{Self: b.self}
	for k, p := range in {
		out[k] = b.resolveParameter(&selfCtx, p)
	}
}

// resolveParameter reduces reference parameters to literals. Input references
// always resolve to floats; auto references under the "param" parent may
// return any literal kind.
func (b *Brain) resolveParameter(ctx *decision.Context, p decision.Param) decision.Param {
	switch p.Kind {
	case decision.ParamInputRef:
		if ip, ok := b.reg.Input(p.Ref); ok {
			return decision.FloatParam(ip.Evaluate(b, ctx, nil))
		}
	case decision.ParamAutoRef:
		if p.Ref.MatchesParent(decision.TagInputParent) {
			if ip, ok := b.reg.Input(p.Ref); ok {
				return decision.FloatParam(ip.Evaluate(b, ctx, nil))
			}
		} else if p.Ref.MatchesParent(decision.TagParamParent) {
			if pp, ok := b.reg.Parameter(p.Ref); ok {
				return valueToParam(pp.Evaluate(b, ctx, nil))
			}
		}
	}
	return p
}

func valueToParam(v decision.ContextValue) decision.Param {
	switch v.Kind {
	case decision.ValueFloat:
		return decision.FloatParam(v.FloatValue)
	case decision.ValueInt:
		return decision.IntParam(v.IntValue)
	case decision.ValueTag:
		return decision.TagParam(v.TagValue)
	default:
		return decision.FloatParam(0)
	}
}
