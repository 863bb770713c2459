package season

import "league-engine/models"

// generateRegularSeason builds a double round robin per conference: every
// ordered pair (A,B) of conference members gets exactly one fixture with A at
// home. The flat slice order is the play order.
func generateRegularSeason(conferences map[models.Conference][]string) []*models.Fixture {
	var schedule []*models.Fixture

	for _, conf := range models.Conferences {
		ids := conferences[conf]
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				schedule = append(schedule, &models.Fixture{
					Conference: conf,
					HomeTeamID: ids[i],
					AwayTeamID: ids[j],
				})
				schedule = append(schedule, &models.Fixture{
					Conference: conf,
					HomeTeamID: ids[j],
					AwayTeamID: ids[i],
				})
			}
		}
	}

	return schedule
}

// Schedule returns a copy of the regular-season fixture list.
func (s *Season) Schedule() []models.Fixture {
	out := make([]models.Fixture, len(s.schedule))
	for i, f := range s.schedule {
		out[i] = *f
		if f.Result != nil {
			r := *f.Result
			out[i].Result = &r
		}
	}
	return out
}
