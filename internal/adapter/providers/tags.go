package providers

import "instinct/internal/domain/decision"

func paramStatTag(name string) decision.Tag {
	return decision.Tag("param.stat." + name)
}

func inputStatTag(name string) decision.Tag {
	return decision.Tag("input.stat." + name)
}
