package precedence

import (
	"sort"

	"github.com/zapponejosh/churchyear/internal/calendar"
)

// candidates is what a rule sees: the moveable day, its observance form,
// and the fixed observances in lookup order.
type candidates struct {
	temporal calendar.TemporalDay
	moveable Observance
	fixed    []Observance
}

type outcome struct {
	primary        Observance
	commemorations []Observance
}

// rule is one step of the precedence pipeline. The first rule whose when
// returns true decides the day.
type rule struct {
	name string
	when func(c candidates) bool
	then func(c candidates) outcome
}

// Rule names, reported on every ResolvedDay.
const (
	RuleHolyWeek          = "holy-week"
	RuleBothPrincipal     = "both-principal"
	RuleMoveablePrincipal = "moveable-principal"
	RuleFixedPrincipal    = "fixed-principal"
	RuleSunday            = "sunday"
	RuleWeekday           = "weekday"
	RuleMoveableDefault   = "moveable-default"
)

var rules = []rule{
	{
		name: RuleHolyWeek,
		when: func(c candidates) bool { return c.temporal.Season == calendar.SeasonHolyWeek },
		then: func(c candidates) outcome { return outcome{primary: c.moveable} },
	},
	{
		name: RuleBothPrincipal,
		when: func(c candidates) bool {
			return c.moveable.Rank == calendar.RankPrincipalFeast && len(principals(c.fixed)) > 0
		},
		then: func(c candidates) outcome {
			top := principals(c.fixed)
			return outcome{
				primary:        c.moveable,
				commemorations: concat(pick(c.fixed, top), omit(c.fixed, top)),
			}
		},
	},
	{
		name: RuleMoveablePrincipal,
		when: func(c candidates) bool { return c.moveable.Rank == calendar.RankPrincipalFeast },
		then: moveableWins,
	},
	{
		name: RuleFixedPrincipal,
		when: func(c candidates) bool { return len(principals(c.fixed)) > 0 },
		then: func(c candidates) outcome {
			top := principals(c.fixed)
			return outcome{
				primary:        c.fixed[top[0]],
				commemorations: concat([]Observance{c.moveable}, pick(c.fixed, top[1:]), omit(c.fixed, top)),
			}
		},
	},
	{
		name: RuleSunday,
		when: func(c candidates) bool { return c.temporal.Type == calendar.TypeSunday },
		then: moveableWins,
	},
	{
		name: RuleWeekday,
		when: func(c candidates) bool { return c.temporal.Type == calendar.TypeWeekday && len(c.fixed) > 0 },
		then: func(c candidates) outcome {
			if ranked := byRank(c.fixed, calendar.RankApostle); len(ranked) > 0 {
				return outcome{
					primary:        c.fixed[ranked[0]],
					commemorations: concat([]Observance{c.moveable}, pick(c.fixed, ranked[1:]), omit(c.fixed, ranked)),
				}
			}
			best := byRank(c.fixed, calendar.Rank(0))[0]
			return outcome{
				primary:        c.fixed[best],
				commemorations: concat([]Observance{c.moveable}, omit(c.fixed, []int{best})),
			}
		},
	},
	{
		name: RuleMoveableDefault,
		when: func(candidates) bool { return true },
		then: moveableWins,
	},
}

func moveableWins(c candidates) outcome {
	return outcome{primary: c.moveable, commemorations: concat(c.fixed)}
}

// decide runs the pipeline and reports which rule fired.
func decide(c candidates) (outcome, string) {
	for _, r := range rules {
		if r.when(c) {
			return r.then(c), r.name
		}
	}
	// unreachable: the last rule always applies
	return moveableWins(c), RuleMoveableDefault
}

// principals returns the indexes of PrincipalFeast observances in order.
func principals(obs []Observance) []int {
	var idx []int
	for i, o := range obs {
		if o.Rank == calendar.RankPrincipalFeast {
			idx = append(idx, i)
		}
	}
	return idx
}

// byRank returns the indexes of observances at or above floor, highest tier
// first. Equal tiers keep input order.
func byRank(obs []Observance, floor calendar.Rank) []int {
	var idx []int
	for i, o := range obs {
		if o.Rank.AtLeast(floor) {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return obs[idx[a]].Rank.Tier() > obs[idx[b]].Rank.Tier()
	})
	return idx
}

func pick(obs []Observance, idx []int) []Observance {
	out := make([]Observance, 0, len(idx))
	for _, i := range idx {
		out = append(out, obs[i])
	}
	return out
}

// omit returns the observances whose index is not in idx, in input order.
func omit(obs []Observance, idx []int) []Observance {
	skip := make(map[int]bool, len(idx))
	for _, i := range idx {
		skip[i] = true
	}
	out := make([]Observance, 0, len(obs))
	for i, o := range obs {
		if !skip[i] {
			out = append(out, o)
		}
	}
	return out
}

func concat(parts ...[]Observance) []Observance {
	out := []Observance{}
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
