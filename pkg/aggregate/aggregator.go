package aggregate

import (
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/chrismah84/ai-competitive-intel/pkg/domain"
)

// Result carries the outcome of fetching and extracting one source.
// Err is a *domain.FetchError or *domain.ExtractError when the source degraded.
type Result struct {
	Source domain.Source
	Posts  []domain.Post
	Err    error
}

// Aggregate merges per-source results, dropping posts already present in
// seen and collecting the keys of newly observed ones. Sections come out in
// the order results were supplied (configuration order), posts keep their
// extraction order within a section. Degraded sources contribute zero posts
// and are reported separately, they never abort aggregation.
func Aggregate(results []Result, seen map[domain.PostKey]time.Time) (sections []domain.Section, newKeys []domain.PostKey, degraded []domain.DegradedSource) {
	sections = make([]domain.Section, 0, len(results))
	degraded = make([]domain.DegradedSource, 0)

	// guards against the same post appearing twice on one page
	inRun := make(map[domain.PostKey]struct{})

	for _, res := range results {
		if res.Err != nil {
			degraded = append(degraded, domain.DegradedSource{
				Source: res.Source.Name,
				Reason: domain.FailureReason(res.Err),
			})
			continue
		}

		section := domain.Section{Source: res.Source.Name, Posts: make([]domain.Post, 0, len(res.Posts))}
		for _, post := range res.Posts {
			key := post.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			if _, ok := inRun[key]; ok {
				continue
			}
			inRun[key] = struct{}{}
			section.Posts = append(section.Posts, post)
			newKeys = append(newKeys, key)
		}

		lgr.Printf("[INFO] source %s: %d extracted, %d new", res.Source.Name, len(res.Posts), len(section.Posts))
		sections = append(sections, section)
	}

	return sections, newKeys, degraded
}
