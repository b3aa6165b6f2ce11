package precedence

import (
	"testing"
	"time"

	"github.com/zapponejosh/churchyear/internal/calendar"
)

func obs(name string, rank calendar.Rank) Observance {
	return Observance{Name: name, Source: SourceSanctoral, Rank: rank, Color: calendar.ColorRed}
}

func moveable(season calendar.Season, typ calendar.DayType, rank calendar.Rank, name string) candidates {
	td := calendar.TemporalDay{
		Date:   calendar.Date(2024, time.June, 5),
		Season: season,
		Type:   typ,
		Rank:   rank,
		Name:   name,
		Color:  calendar.ColorGreen,
	}
	return candidates{
		temporal: td,
		moveable: Observance{Name: td.DisplayName(), Source: SourceTemporal, Rank: rank, Color: td.Color},
	}
}

func namesOf(list []Observance) []string {
	out := make([]string, len(list))
	for i, o := range list {
		out[i] = o.Name
	}
	return out
}

func equalNames(got []Observance, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i].Name != want[i] {
			return false
		}
	}
	return true
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name    string
		in      candidates
		fixed   []Observance
		rule    string
		primary string
		comms   []string
	}{
		{
			name:    "holy week drops every fixed candidate",
			in:      moveable(calendar.SeasonHolyWeek, calendar.TypeWeekday, calendar.RankCommemoration, ""),
			fixed:   []Observance{obs("Big Feast", calendar.RankPrincipalFeast)},
			rule:    RuleHolyWeek,
			primary: "Holy Week - Wednesday",
			comms:   []string{},
		},
		{
			name:    "both principal keeps moveable, fixed principals first",
			in:      moveable(calendar.SeasonChristmas, calendar.TypePrincipalFeast, calendar.RankPrincipalFeast, "Christmas Day"),
			fixed:   []Observance{obs("Minor", calendar.RankLesserFeast), obs("Nativity", calendar.RankPrincipalFeast)},
			rule:    RuleBothPrincipal,
			primary: "Christmas Day",
			comms:   []string{"Nativity", "Minor"},
		},
		{
			name:    "moveable principal beats lesser fixed",
			in:      moveable(calendar.SeasonEaster, calendar.TypePrincipalFeast, calendar.RankPrincipalFeast, "Ascension"),
			fixed:   []Observance{obs("St. Someone", calendar.RankApostle)},
			rule:    RuleMoveablePrincipal,
			primary: "Ascension",
			comms:   []string{"St. Someone"},
		},
		{
			name:    "first fixed principal wins over ordinary moveable",
			in:      moveable(calendar.SeasonTrinity, calendar.TypeSunday, calendar.RankFeast, "Trinity 3"),
			fixed:   []Observance{obs("Lesser", calendar.RankLesserFeast), obs("P1", calendar.RankPrincipalFeast), obs("P2", calendar.RankPrincipalFeast)},
			rule:    RuleFixedPrincipal,
			primary: "P1",
			comms:   []string{"Trinity 3", "P2", "Lesser"},
		},
		{
			name:    "sunday beats a feast",
			in:      moveable(calendar.SeasonTrinity, calendar.TypeSunday, calendar.RankFeast, "Sexagesima Sunday"),
			fixed:   []Observance{obs("Feast Day", calendar.RankFeast), obs("Apostle Day", calendar.RankApostle)},
			rule:    RuleSunday,
			primary: "Sexagesima Sunday",
			comms:   []string{"Feast Day", "Apostle Day"},
		},
		{
			name:    "weekday: highest tier wins, ties keep order",
			in:      moveable(calendar.SeasonTrinity, calendar.TypeWeekday, calendar.RankCommemoration, ""),
			fixed:   []Observance{obs("Lesser", calendar.RankLesserFeast), obs("Evangelist", calendar.RankEvangelist), obs("Feast A", calendar.RankFeast), obs("Feast B", calendar.RankFeast)},
			rule:    RuleWeekday,
			primary: "Feast A",
			comms:   []string{"Trinity - Wednesday", "Feast B", "Evangelist", "Lesser"},
		},
		{
			name:    "weekday: apostle and evangelist share a tier",
			in:      moveable(calendar.SeasonLent, calendar.TypeWeekday, calendar.RankCommemoration, ""),
			fixed:   []Observance{obs("Evangelist", calendar.RankEvangelist), obs("Apostle", calendar.RankApostle)},
			rule:    RuleWeekday,
			primary: "Evangelist",
			comms:   []string{"Lent - Wednesday", "Apostle"},
		},
		{
			name:    "weekday: lesser feast still beats plain weekday",
			in:      moveable(calendar.SeasonTrinity, calendar.TypeWeekday, calendar.RankCommemoration, ""),
			fixed:   []Observance{obs("Comm", calendar.RankCommemoration), obs("Martyr", calendar.RankLesserFeast)},
			rule:    RuleWeekday,
			primary: "Martyr",
			comms:   []string{"Trinity - Wednesday", "Comm"},
		},
		{
			name:    "weekday without fixed candidates",
			in:      moveable(calendar.SeasonTrinity, calendar.TypeWeekday, calendar.RankCommemoration, ""),
			rule:    RuleMoveableDefault,
			primary: "Trinity - Wednesday",
			comms:   []string{},
		},
		{
			name:    "named lesser moveable day keeps precedence",
			in:      moveable(calendar.SeasonTrinity, calendar.TypeLesserFeast, calendar.RankLesserFeast, "Trinity 22"),
			fixed:   []Observance{obs("Reformation Day", calendar.RankFeast)},
			rule:    RuleMoveableDefault,
			primary: "Trinity 22",
			comms:   []string{"Reformation Day"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			in.fixed = tt.fixed
			got, rule := decide(in)
			if rule != tt.rule {
				t.Errorf("rule = %s, want %s", rule, tt.rule)
			}
			if got.primary.Name != tt.primary {
				t.Errorf("primary = %q, want %q", got.primary.Name, tt.primary)
			}
			if !equalNames(got.commemorations, tt.comms...) {
				t.Errorf("commemorations = %v, want %v", namesOf(got.commemorations), tt.comms)
			}
		})
	}
}

func TestNote(t *testing.T) {
	tests := []struct {
		comms []Observance
		want  string
	}{
		{nil, ""},
		{[]Observance{obs("St. Stephen", calendar.RankLesserFeast)}, "St. Stephen is commemorated"},
		{[]Observance{obs("A", calendar.RankFeast), obs("B", calendar.RankFeast)}, "Also commemorated: A, B"},
	}
	for _, tt := range tests {
		if got := note(tt.comms); got != tt.want {
			t.Errorf("note(%v) = %q, want %q", namesOf(tt.comms), got, tt.want)
		}
	}
}
